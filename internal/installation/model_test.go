package installation

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/pkg/db/models"
	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
)

func subcontractorConfig() models.InstallationCostConfig {
	return models.InstallationCostConfig{
		Region:                "WA",
		RateTrack:             enums.RateTrackSubcontractor,
		CalloutFee:            decimal.NewFromInt(450),
		HourlyRate:            decimal.NewFromInt(95),
		PerPanelRate:          decimal.NewFromInt(85),
		PerKwhRate:            decimal.NewFromInt(60),
		BatteryBaseFee:        decimal.NewFromInt(800),
		CommissioningFee:      decimal.NewFromInt(250),
		RoofTileMultiplier:    decimal.RequireFromString("1.1"),
		RoofMetalMultiplier:   decimal.RequireFromString("1.0"),
		RoofKlipLokMultiplier: decimal.RequireFromString("1.15"),
		RoofSlateMultiplier:   decimal.RequireFromString("1.25"),
		RoofFlatMultiplier:    decimal.RequireFromString("1.05"),
		PitchFlatMultiplier:   decimal.RequireFromString("1.0"),
		PitchStdMultiplier:    decimal.RequireFromString("1.0"),
		PitchSteepMultiplier:  decimal.RequireFromString("1.2"),
		StoreysMultiplier:     decimal.RequireFromString("1.15"),
		RakedCeilingSurcharge: decimal.NewFromInt(350),
		PhaseSurcharge:        decimal.NewFromInt(400),
		OptimiserRate:         decimal.NewFromInt(75),
		ExtraInverterFee:      decimal.NewFromInt(600),
		SplitFee:              decimal.NewFromInt(150),
		CommissionPercent:     decimal.NewFromInt(15),
		IsActive:              true,
	}
}

func internalConfig() models.InstallationCostConfig {
	cfg := subcontractorConfig()
	cfg.RateTrack = enums.RateTrackInternal
	cfg.CalloutFee = decimal.NewFromInt(300)
	cfg.PerPanelRate = decimal.NewFromInt(65)
	cfg.CommissioningFee = decimal.NewFromInt(200)
	return cfg
}

func standardJob() Params {
	return Params{
		SystemSizeKw: decimal.RequireFromString("6.6"),
		PanelCount:   16,
		Storeys:      1,
		RoofType:     enums.RoofTypeTile,
		RoofPitch:    enums.RoofPitchStandard,
	}
}

func TestPriceStandardWAJob(t *testing.T) {
	result, err := Price(subcontractorConfig(), standardJob())
	if err != nil {
		t.Fatalf("Price failed: %v", err)
	}

	// base = 450 callout + 16x85 panels + 250 commissioning = 2060
	if !result.Base.Equal(decimal.NewFromInt(2060)) {
		t.Fatalf("expected base 2060, got %s", result.Base)
	}
	// tile x1.1 = 2266.00, standard pitch x1.0 leaves it unchanged
	if !result.Total.Equal(decimal.RequireFromString("2266.00")) {
		t.Fatalf("expected total 2266.00, got %s", result.Total)
	}
}

func TestPriceBatteryJobTrail(t *testing.T) {
	params := standardJob()
	params.HasBattery = true
	params.BatteryKwh = decimal.RequireFromString("13.5")
	params.RoofPitch = enums.RoofPitchSteep
	params.Storeys = 2
	params.RakedCeiling = true
	params.ThreePhase = true

	result, err := Price(subcontractorConfig(), params)
	if err != nil {
		t.Fatalf("Price failed: %v", err)
	}

	// base = 2060 + 800 battery base + 13.5x60 = 3670
	if !result.Base.Equal(decimal.NewFromInt(3670)) {
		t.Fatalf("expected base 3670, got %s", result.Base)
	}
	// x1.1 roof = 4037.00, x1.2 pitch = 4844.40, x1.15 storeys = 5571.06,
	// +350 raked = 5921.06, +400 phase = 6321.06
	if !result.Total.Equal(decimal.RequireFromString("6321.06")) {
		t.Fatalf("expected total 6321.06, got %s", result.Total)
	}

	wantLabels := []string{"roof_type:tile", "roof_pitch:steep", "storeys", "raked_ceiling", "three_phase"}
	if len(result.Trail) != len(wantLabels) {
		t.Fatalf("expected %d trail steps, got %d", len(wantLabels), len(result.Trail))
	}
	for i, label := range wantLabels {
		if result.Trail[i].Label != label {
			t.Fatalf("trail step %d: expected %s got %s", i, label, result.Trail[i].Label)
		}
	}
	last := result.Trail[len(result.Trail)-1]
	if !last.RunningTotal.Equal(result.Total) {
		t.Fatalf("trail must end at the total: %s != %s", last.RunningTotal, result.Total)
	}
}

func TestPriceMultiplierOrderIsLoadBearing(t *testing.T) {
	params := standardJob()
	params.HasBattery = true
	params.BatteryKwh = decimal.RequireFromString("13.5")
	params.RoofPitch = enums.RoofPitchSteep
	params.Storeys = 2
	params.RakedCeiling = true
	params.ThreePhase = true

	cfg := subcontractorConfig()
	result, err := Price(cfg, params)
	if err != nil {
		t.Fatalf("Price failed: %v", err)
	}

	// Applying the raked surcharge before the multipliers instead of after
	// them yields a different number; the documented order is the one that
	// must hold.
	wrongOrder := decimal.NewFromInt(3670).
		Add(cfg.RakedCeilingSurcharge).
		Mul(cfg.RoofTileMultiplier).Round(2).
		Mul(cfg.PitchSteepMultiplier).Round(2).
		Mul(cfg.StoreysMultiplier).Round(2).
		Add(cfg.PhaseSurcharge)

	if result.Total.Equal(wrongOrder) {
		t.Fatalf("reordered multipliers must produce a different total, both were %s", result.Total)
	}
}

func TestPriceAdditiveExtras(t *testing.T) {
	params := standardJob()
	params.Optimisers = 16
	params.ExtraInverters = 1
	params.Splits = 2

	result, err := Price(subcontractorConfig(), params)
	if err != nil {
		t.Fatalf("Price failed: %v", err)
	}

	// 2266.00 + 16x75 + 600 + 2x150 = 4366.00
	if !result.Total.Equal(decimal.RequireFromString("4366.00")) {
		t.Fatalf("expected 4366.00, got %s", result.Total)
	}
}

func TestPriceRetrofitDoublesCallout(t *testing.T) {
	params := standardJob()
	base, err := Price(subcontractorConfig(), params)
	if err != nil {
		t.Fatalf("Price failed: %v", err)
	}

	params.Retrofit = true
	retrofit, err := Price(subcontractorConfig(), params)
	if err != nil {
		t.Fatalf("Price failed: %v", err)
	}

	if !retrofit.Base.Sub(base.Base).Equal(decimal.NewFromInt(450)) {
		t.Fatalf("retrofit must add one extra callout, diff was %s", retrofit.Base.Sub(base.Base))
	}
}

func TestCustomerPriceFloorRule(t *testing.T) {
	params := standardJob()

	customer, err := CustomerPrice(subcontractorConfig(), params)
	if err != nil {
		t.Fatalf("CustomerPrice failed: %v", err)
	}
	internal, err := Price(internalConfig(), params)
	if err != nil {
		t.Fatalf("Price failed: %v", err)
	}

	// 2266.00 x 1.15 commission = 2605.90
	if !customer.Total.Equal(decimal.RequireFromString("2605.90")) {
		t.Fatalf("expected customer total 2605.90, got %s", customer.Total)
	}
	if customer.Total.LessThan(internal.Total) {
		t.Fatalf("customer price %s must never undercut internal cost %s", customer.Total, internal.Total)
	}
	last := customer.Trail[len(customer.Trail)-1]
	if last.Label != "commission" {
		t.Fatalf("expected commission as the final trail step, got %s", last.Label)
	}
}

func TestPriceRejectsBadParams(t *testing.T) {
	cases := []Params{
		{PanelCount: -1, Storeys: 1, RoofType: enums.RoofTypeTile, RoofPitch: enums.RoofPitchStandard},
		{PanelCount: 16, Storeys: 0, RoofType: enums.RoofTypeTile, RoofPitch: enums.RoofPitchStandard},
		{PanelCount: 16, Storeys: 1, RoofType: "thatch", RoofPitch: enums.RoofPitchStandard},
		{PanelCount: 16, Storeys: 1, RoofType: enums.RoofTypeTile, RoofPitch: "vertical"},
	}
	for i, params := range cases {
		if _, err := Price(subcontractorConfig(), params); err == nil {
			t.Fatalf("case %d: expected rejection", i)
		}
	}
}
