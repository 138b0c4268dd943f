package rebates

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/pkg/db/models"
	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
)

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", value, err)
	}
	return d
}

func decPtr(t *testing.T, value string) *decimal.Decimal {
	d := dec(t, value)
	return &d
}

func strPtr(value string) *string {
	return &value
}

func testVars(t *testing.T) Variables {
	return Variables{
		SystemSizeKw:   dec(t, "6.6"),
		PanelCount:     16,
		BatterySizeKwh: dec(t, "13.5"),
		BatteryCost:    dec(t, "9000"),
		PanelCost:      dec(t, "4800"),
		InverterCost:   dec(t, "2200"),
		Subtotal:       dec(t, "18500"),
	}
}

func TestAggregatePerUnitSRES(t *testing.T) {
	defs := []models.RebateDefinition{{
		Name:            "federal-SRES",
		Category:        enums.RebateCategoryFederalSolar,
		CalculationType: enums.RebateCalculationPerUnit,
		Value:           dec(t, "500"),
		Cap:             decPtr(t, "5000"),
		IsActive:        true,
	}}

	result := Aggregate(defs, testVars(t))

	if !result.Total.Equal(dec(t, "3300")) {
		t.Fatalf("expected 6.6kW at 500/kW to total 3300, got %s", result.Total)
	}
	if !result.ByCategory[enums.RebateCategoryFederalSolar].Equal(dec(t, "3300")) {
		t.Fatalf("category total mismatch: %v", result.ByCategory)
	}
	if len(result.LineItems) != 1 || result.LineItems[0].Capped {
		t.Fatalf("3300 is below the 5000 cap and must not be flagged capped: %+v", result.LineItems)
	}
}

func TestAggregateClampsToCap(t *testing.T) {
	defs := []models.RebateDefinition{{
		Name:            "federal-SRES",
		Category:        enums.RebateCategoryFederalSolar,
		CalculationType: enums.RebateCalculationPerUnit,
		Value:           dec(t, "500"),
		Cap:             decPtr(t, "5000"),
		IsActive:        true,
	}}

	vars := testVars(t)
	vars.SystemSizeKw = dec(t, "12")

	result := Aggregate(defs, vars)
	if !result.Total.Equal(dec(t, "5000")) {
		t.Fatalf("expected clamp to cap 5000, got %s", result.Total)
	}
	if !result.LineItems[0].Capped {
		t.Fatal("expected capped flag")
	}
	if !result.LineItems[0].RawAmount.Equal(dec(t, "6000")) {
		t.Fatalf("raw amount should be preserved, got %s", result.LineItems[0].RawAmount)
	}
}

func TestAggregatePercentageNeedsBattery(t *testing.T) {
	defs := []models.RebateDefinition{{
		Name:            "federal-battery",
		Category:        enums.RebateCategoryFederalBattery,
		CalculationType: enums.RebateCalculationPercentage,
		Value:           dec(t, "30"),
		IsActive:        true,
	}}

	withBattery := Aggregate(defs, testVars(t))
	if !withBattery.Total.Equal(dec(t, "2700")) {
		t.Fatalf("expected 30%% of 9000 = 2700, got %s", withBattery.Total)
	}

	vars := testVars(t)
	vars.BatterySizeKwh = decimal.Zero
	vars.BatteryCost = decimal.Zero
	withoutBattery := Aggregate(defs, vars)
	if !withoutBattery.Total.IsZero() {
		t.Fatalf("no battery means no percentage rebate, got %s", withoutBattery.Total)
	}
}

func TestAggregateFormulaDefinition(t *testing.T) {
	defs := []models.RebateDefinition{{
		Name:            "wa-battery-scheme",
		Category:        enums.RebateCategoryStateBattery,
		CalculationType: enums.RebateCalculationFormula,
		Formula:         strPtr("min(batterySizeKwh*500,5000)"),
		IsActive:        true,
	}}

	result := Aggregate(defs, testVars(t))
	if !result.Total.Equal(dec(t, "5000")) {
		t.Fatalf("expected min(6750,5000)=5000, got %s", result.Total)
	}
}

func TestAggregateMalformedDefinitionIsIsolated(t *testing.T) {
	defs := []models.RebateDefinition{
		{
			Name:            "broken",
			Category:        enums.RebateCategoryStateBattery,
			CalculationType: enums.RebateCalculationFormula,
			Formula:         strPtr("batterySizeKwh ** 2"),
			IsActive:        true,
		},
		{
			Name:            "federal-SRES",
			Category:        enums.RebateCategoryFederalSolar,
			CalculationType: enums.RebateCalculationPerUnit,
			Value:           dec(t, "500"),
			IsActive:        true,
		},
	}

	result := Aggregate(defs, testVars(t))

	if !result.Total.Equal(dec(t, "3300")) {
		t.Fatalf("healthy definition must still apply, got total %s", result.Total)
	}
	if len(result.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(result.LineItems))
	}
	broken := result.LineItems[0]
	if !broken.Failed || broken.FailureNote == "" {
		t.Fatalf("malformed definition must be flagged: %+v", broken)
	}
	if !broken.Applied.IsZero() {
		t.Fatalf("malformed definition must contribute 0, got %s", broken.Applied)
	}
}

func TestAggregateSkipsInactiveDefinitions(t *testing.T) {
	defs := []models.RebateDefinition{{
		Name:            "retired",
		Category:        enums.RebateCategoryFederalSolar,
		CalculationType: enums.RebateCalculationPerUnit,
		Value:           dec(t, "500"),
		IsActive:        false,
	}}

	result := Aggregate(defs, testVars(t))
	if !result.Total.IsZero() || len(result.LineItems) != 0 {
		t.Fatalf("inactive definitions must not contribute: %+v", result)
	}
}

func TestAggregateOrderIndependence(t *testing.T) {
	defs := []models.RebateDefinition{
		{
			Name:            "federal-SRES",
			Category:        enums.RebateCategoryFederalSolar,
			CalculationType: enums.RebateCalculationPerUnit,
			Value:           dec(t, "500"),
			Cap:             decPtr(t, "5000"),
			IsActive:        true,
		},
		{
			Name:            "federal-battery",
			Category:        enums.RebateCategoryFederalBattery,
			CalculationType: enums.RebateCalculationPercentage,
			Value:           dec(t, "30"),
			IsActive:        true,
		},
		{
			Name:            "wa-battery-scheme",
			Category:        enums.RebateCategoryStateBattery,
			CalculationType: enums.RebateCalculationFormula,
			Formula:         strPtr("min(batterySizeKwh*500,5000)"),
			Cap:             decPtr(t, "5000"),
			IsActive:        true,
		},
	}

	vars := testVars(t)
	baseline := Aggregate(defs, vars)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := make([]models.RebateDefinition, len(defs))
		copy(shuffled, defs)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		result := Aggregate(shuffled, vars)
		if !result.Total.Equal(baseline.Total) {
			t.Fatalf("shuffle %d changed total: %s != %s", i, result.Total, baseline.Total)
		}
		for category, amount := range baseline.ByCategory {
			if !result.ByCategory[category].Equal(amount) {
				t.Fatalf("shuffle %d changed category %s: %s != %s", i, category, result.ByCategory[category], amount)
			}
		}
	}
}
