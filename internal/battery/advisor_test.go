package battery

import (
	"testing"

	"github.com/shopspring/decimal"
)

func defaultConfig() Config {
	return Config{
		SafetyBuffer:     decimal.RequireFromString("1.1"),
		DepthOfDischarge: decimal.RequireFromString("0.9"),
		IncrementKwh:     decimal.NewFromInt(5),
		FloorKwh:         decimal.NewFromInt(10),
	}
}

func recommendOK(t *testing.T, in Inputs) Recommendation {
	t.Helper()
	rec, err := Recommend(defaultConfig(), in)
	if err != nil {
		t.Fatalf("Recommend returned error: %v", err)
	}
	return rec
}

func TestRecommendStandardOvernightLoad(t *testing.T) {
	// 8 kWh overnight: 8*1.1/0.9 = 9.78, rounds up to 10, floor not binding
	rec := recommendOK(t, Inputs{
		NighttimeKwh: decimal.NewFromInt(8),
		EveningKwh:   decimal.NewFromInt(4),
	})

	if !rec.MinimumKwh.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected minimum 10, got %s", rec.MinimumKwh)
	}
	if !rec.RecommendedKwh.Equal(rec.MinimumKwh) {
		t.Fatalf("recommended must equal minimum, got %s", rec.RecommendedKwh)
	}
	if !rec.OptimalKwh.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("optimal must be one increment up, got %s", rec.OptimalKwh)
	}
	if rec.Explanation == "" {
		t.Fatal("expected a sizing explanation")
	}
}

func TestRecommendZeroNeedReturnsFloor(t *testing.T) {
	rec := recommendOK(t, Inputs{})
	if !rec.MinimumKwh.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("zero need must still return the 10 kWh floor, got %s", rec.MinimumKwh)
	}
}

func TestRecommendEVOvernightChargeAddsToTarget(t *testing.T) {
	withoutEV := recommendOK(t, Inputs{NighttimeKwh: decimal.NewFromInt(8)})
	withEV := recommendOK(t, Inputs{
		NighttimeKwh:   decimal.NewFromInt(8),
		EVOvernightKwh: decimal.NewFromInt(10),
	})

	// 18*1.1/0.9 = 22, rounds up to 25
	if !withEV.MinimumKwh.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected 25 with overnight EV charge, got %s", withEV.MinimumKwh)
	}
	if withEV.MinimumKwh.LessThan(withoutEV.MinimumKwh) {
		t.Fatal("adding EV load must never shrink the recommendation")
	}
}

func TestRecommendMonotonicInNighttimeLoad(t *testing.T) {
	previous := decimal.Zero
	for kwh := 0; kwh <= 40; kwh++ {
		rec := recommendOK(t, Inputs{NighttimeKwh: decimal.NewFromInt(int64(kwh))})
		if rec.RecommendedKwh.LessThan(previous) {
			t.Fatalf("recommendation shrank at %d kWh: %s < %s", kwh, rec.RecommendedKwh, previous)
		}
		previous = rec.RecommendedKwh
	}
}

func TestRecommendRoundsUpToIncrement(t *testing.T) {
	// 12 kWh overnight: 12*1.1/0.9 = 14.67, rounds up to 15
	rec := recommendOK(t, Inputs{NighttimeKwh: decimal.NewFromInt(12)})
	if !rec.MinimumKwh.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected 15, got %s", rec.MinimumKwh)
	}
}

func TestRecommendRespectsChargingBound(t *testing.T) {
	bound := decimal.NewFromInt(17)
	rec := recommendOK(t, Inputs{
		NighttimeKwh:     decimal.NewFromInt(20),
		MaxChargeableKwh: &bound,
	})

	// 20*1.1/0.9 = 24.4 -> 25, but only 17 kWh of charge is available,
	// which rounds down to the 15 kWh unit size
	if !rec.MinimumKwh.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected bound-limited 15, got %s", rec.MinimumKwh)
	}
	if !rec.OptimalKwh.Equal(rec.MinimumKwh) {
		t.Fatalf("optimal must not exceed the charging bound, got %s", rec.OptimalKwh)
	}
}

func TestRecommendProductionShareBound(t *testing.T) {
	production := decimal.NewFromInt(30)
	share := decimal.RequireFromString("0.5")
	rec := recommendOK(t, Inputs{
		NighttimeKwh:       decimal.NewFromInt(20),
		DailyProductionKwh: &production,
		MaxProductionShare: &share,
	})

	// bound = 30*0.5 = 15
	if !rec.MinimumKwh.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected production-bounded 15, got %s", rec.MinimumKwh)
	}
}

func TestRecommendRejectsNegativeInputs(t *testing.T) {
	_, err := Recommend(defaultConfig(), Inputs{NighttimeKwh: decimal.NewFromInt(-1)})
	if err == nil {
		t.Fatal("expected negative consumption to be rejected")
	}
}

func TestRecommendRejectsBrokenConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.DepthOfDischarge = decimal.Zero
	_, err := Recommend(cfg, Inputs{NighttimeKwh: decimal.NewFromInt(8)})
	if err == nil {
		t.Fatal("expected zero depth of discharge to be rejected")
	}
}
