package quotes

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/internal/catalog"
	"github.com/suncrest-energy/solarquote-backend/pkg/config"
	"github.com/suncrest-energy/solarquote-backend/pkg/db/models"
	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
	"github.com/suncrest-energy/solarquote-backend/pkg/types"
)

var calcNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func testSettings() Settings {
	return NewSettings(config.EngineConfig{
		CommissionPercent:        15,
		QuoteValidityDays:        30,
		BatterySafetyBuffer:      1.1,
		BatteryDepthOfDischarge:  0.9,
		BatteryIncrementKwh:      5,
		BatteryFloorKwh:          10,
		RetailTariff:             0.28,
		FeedInTariff:             0.03,
		PriceEscalationRate:      0.03,
		PanelDegradationRate:     0.005,
		ProductionFactorKwhPerKw: 1400,
	})
}

func waCostConfig() models.InstallationCostConfig {
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

func testPanelSelection() catalog.Selection {
	watt := decimal.NewFromInt(440)
	return catalog.Selection{
		Product: models.Product{
			ID: uuid.New(), Type: enums.ProductTypePanel,
			Manufacturer: "Trina", Name: "Vertex S", SKU: "TSM-440",
			Tier: enums.ProductTierMid, WattageW: &watt,
			UnitCost: decimal.NewFromInt(180), RetailPrice: decimal.NewFromInt(260),
			IsActive: true,
		},
		Quantity: 15,
	}
}

func testInverterSelection() catalog.Selection {
	kw := decimal.NewFromInt(7)
	return catalog.Selection{
		Product: models.Product{
			ID: uuid.New(), Type: enums.ProductTypeInverter,
			Manufacturer: "Fronius", Name: "Primo 7", SKU: "FR-7",
			Tier: enums.ProductTierMid, CapacityKw: &kw,
			UnitCost: decimal.NewFromInt(1400), RetailPrice: decimal.NewFromInt(2100),
			IsActive: true,
		},
		Quantity: 1,
	}
}

func sresDefinition() models.RebateDefinition {
	cap := decimal.NewFromInt(5000)
	return models.RebateDefinition{
		ID:              uuid.New(),
		Name:            "federal-SRES",
		Category:        enums.RebateCategoryFederalSolar,
		CalculationType: enums.RebateCalculationPerUnit,
		Value:           decimal.NewFromInt(500),
		Cap:             &cap,
		IsActive:        true,
	}
}

func waInput() Input {
	return Input{
		Profile: types.EnergyProfile{
			HouseholdSize: 4,
			NighttimeKwh:  decimal.NewFromInt(8),
			EveningKwh:    decimal.NewFromInt(4),
		},
		Region:   "WA",
		Panel:    testPanelSelection(),
		Inverter: testInverterSelection(),
		Site: types.SiteDetails{
			Storeys:   1,
			RoofType:  enums.RoofTypeTile,
			RoofPitch: enums.RoofPitchStandard,
		},
		CostConfig:  waCostConfig(),
		Definitions: []models.RebateDefinition{sresDefinition()},
		Settings:    testSettings(),
		Now:         calcNow,
	}
}

func TestCalculateEndToEndWAScenario(t *testing.T) {
	computed, err := Calculate(waInput())
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if !computed.SystemSizeKw.Equal(decimal.RequireFromString("6.6")) {
		t.Fatalf("expected 6.6 kW, got %s", computed.SystemSizeKw)
	}

	// panels 15x260 = 3900, inverter 2100, installation:
	// base 450 + 15x85 + 250 = 1975, tile x1.1 = 2172.50, commission x1.15
	// = 2498.38. Subtotal 8498.38.
	if !computed.CostBreakdown.PanelCost.Equal(decimal.NewFromInt(3900)) {
		t.Fatalf("expected panel cost 3900, got %s", computed.CostBreakdown.PanelCost)
	}
	if !computed.CostBreakdown.InstallationCost.Equal(decimal.RequireFromString("2498.38")) {
		t.Fatalf("expected installation 2498.38, got %s", computed.CostBreakdown.InstallationCost)
	}
	if !computed.Subtotal.Equal(decimal.RequireFromString("8498.38")) {
		t.Fatalf("expected subtotal 8498.38, got %s", computed.Subtotal)
	}

	// SRES at 500/kW on 6.6 kW = 3300, below the 5000 cap
	if !computed.TotalRebates.Equal(decimal.NewFromInt(3300)) {
		t.Fatalf("expected rebates 3300, got %s", computed.TotalRebates)
	}
	if !computed.RebateTotals[enums.RebateCategoryFederalSolar].Equal(decimal.NewFromInt(3300)) {
		t.Fatalf("expected federal_solar category total 3300")
	}
	if !computed.FinalPrice.Equal(decimal.RequireFromString("5198.38")) {
		t.Fatalf("expected final price 5198.38, got %s", computed.FinalPrice)
	}
	if computed.RebatesExceed {
		t.Fatal("rebates must not exceed subtotal in this scenario")
	}

	// wholesale 15x180 + 1400 = 4100
	if !computed.WholesaleCost.Equal(decimal.NewFromInt(4100)) {
		t.Fatalf("expected wholesale 4100, got %s", computed.WholesaleCost)
	}
	if !computed.GrossProfit.Equal(decimal.RequireFromString("4398.38")) {
		t.Fatalf("expected profit 4398.38, got %s", computed.GrossProfit)
	}

	if !computed.ValidUntil.Equal(calcNow.AddDate(0, 0, 30)) {
		t.Fatalf("expected 30 day validity, got %s", computed.ValidUntil)
	}
}

func TestCalculateBreakdownSumsToSubtotal(t *testing.T) {
	in := waInput()
	in.Extras = types.ExtraItems{{Label: "bird proofing", Amount: decimal.RequireFromString("320.50")}}

	computed, err := Calculate(in)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	b := computed.CostBreakdown
	sum := b.PanelCost.Add(b.InverterCost).Add(b.BatteryCost).Add(b.InstallationCost).Add(b.ExtrasCost)
	if !sum.Equal(b.Subtotal) {
		t.Fatalf("breakdown parts %s do not sum to subtotal %s", sum, b.Subtotal)
	}
	if !b.ExtrasCost.Equal(decimal.RequireFromString("320.50")) {
		t.Fatalf("expected extras 320.50, got %s", b.ExtrasCost)
	}
}

func TestCalculateSavingsProjection(t *testing.T) {
	computed, err := Calculate(waInput())
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	s := computed.Savings

	// 6.6 kW x 1400 = 9240 kWh; blended rate 0.7x0.28 + 0.3x0.03 = 0.205
	if !s.AnnualProductionKwh.Equal(decimal.NewFromInt(9240)) {
		t.Fatalf("expected 9240 kWh, got %s", s.AnnualProductionKwh)
	}
	if !s.Year1Savings.Equal(decimal.RequireFromString("1894.2")) {
		t.Fatalf("expected year-1 savings 1894.20, got %s", s.Year1Savings)
	}
	if !s.MonthlySavings.Equal(decimal.RequireFromString("157.85")) {
		t.Fatalf("expected monthly savings 157.85, got %s", s.MonthlySavings)
	}
	// 5198.38 / 1894.20 = 2.74, rounded to 0.1
	if !s.PaybackYears.Equal(decimal.RequireFromString("2.7")) {
		t.Fatalf("expected payback 2.7 years, got %s", s.PaybackYears)
	}
	if s.Year10Savings.LessThanOrEqual(s.Year1Savings.Mul(decimal.NewFromInt(9))) {
		t.Fatalf("escalation must lift 10-year savings above 9x year one, got %s", s.Year10Savings)
	}
	if s.Year25Savings.LessThanOrEqual(s.Year10Savings) {
		t.Fatal("25-year savings must exceed 10-year savings")
	}

	// 9240 x 0.68 kg = 6.28 t; / 22 kg per tree = 286
	if !s.CO2TonnesPerYear.Equal(decimal.RequireFromString("6.28")) {
		t.Fatalf("expected 6.28 t CO2, got %s", s.CO2TonnesPerYear)
	}
	if !s.TreeEquivalents.Equal(decimal.NewFromInt(286)) {
		t.Fatalf("expected 286 trees, got %s", s.TreeEquivalents)
	}
	if len(s.MonthlyFactors) != 12 {
		t.Fatalf("expected 12 monthly factors, got %d", len(s.MonthlyFactors))
	}
	sum := decimal.Zero
	for _, f := range s.MonthlyFactors {
		sum = sum.Add(f)
	}
	if !sum.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("monthly factors must sum to 12, got %s", sum)
	}
}

func TestCalculateIsPure(t *testing.T) {
	in := waInput()

	first, err := Calculate(in)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	second, err := Calculate(in)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(a) != string(b) {
		t.Fatal("identical inputs must produce byte-identical output")
	}
}

func TestCalculateRebatesExceedSubtotal(t *testing.T) {
	in := waInput()
	generous := sresDefinition()
	generous.Value = decimal.NewFromInt(10000)
	generous.Cap = nil
	in.Definitions = []models.RebateDefinition{generous}

	computed, err := Calculate(in)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if !computed.FinalPrice.Equal(decimal.Zero) {
		t.Fatalf("final price must clamp to zero, got %s", computed.FinalPrice)
	}
	if !computed.RebatesExceed {
		t.Fatal("overshoot flag must be raised")
	}
}

func TestCalculateBatteryScenario(t *testing.T) {
	in := waInput()
	kwh := decimal.RequireFromString("13.5")
	in.Battery = &catalog.Selection{
		Product: models.Product{
			ID: uuid.New(), Type: enums.ProductTypeBattery,
			Manufacturer: "Tesla", Name: "Powerwall", SKU: "PW-13",
			Tier: enums.ProductTierPremium, CapacityKwh: &kwh,
			UnitCost: decimal.NewFromInt(7800), RetailPrice: decimal.NewFromInt(11500),
			IsActive: true,
		},
		Quantity: 1,
	}

	computed, err := Calculate(in)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if !computed.BatterySizeKwh.Equal(kwh) {
		t.Fatalf("expected 13.5 kWh, got %s", computed.BatterySizeKwh)
	}
	if !computed.CostBreakdown.BatteryCost.Equal(decimal.NewFromInt(11500)) {
		t.Fatalf("expected battery cost 11500, got %s", computed.CostBreakdown.BatteryCost)
	}
	if len(computed.Products) != 3 {
		t.Fatalf("expected 3 product snapshots, got %d", len(computed.Products))
	}
}

func TestCalculateRejectsBadHousehold(t *testing.T) {
	in := waInput()
	in.Profile.HouseholdSize = 9
	if _, err := Calculate(in); err == nil {
		t.Fatal("expected household size 9 to be rejected")
	}
}
