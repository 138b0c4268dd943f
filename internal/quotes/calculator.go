package quotes

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/internal/catalog"
	"github.com/suncrest-energy/solarquote-backend/internal/installation"
	"github.com/suncrest-energy/solarquote-backend/internal/rebates"
	"github.com/suncrest-energy/solarquote-backend/pkg/db/models"
	pkgerrors "github.com/suncrest-energy/solarquote-backend/pkg/errors"
	"github.com/suncrest-energy/solarquote-backend/pkg/types"
)

// Self-consumption share of annual production. The remainder is exported at
// the feed-in tariff. A battery shifts more production into self-use.
var (
	selfUseWithBattery = decimal.RequireFromString("0.9")
	selfUseSolarOnly   = decimal.RequireFromString("0.7")
)

// Grid displacement constants for the environmental figures.
var (
	gridEmissionsKgPerKwh   = decimal.RequireFromString("0.68")
	treeAbsorptionKgPerYear = decimal.NewFromInt(22)
)

// perthMonthlyFactors is the seasonal production split, January first. The
// twelve factors sum to 12 so the monthly figures average to annual/12.
var perthMonthlyFactors = []decimal.Decimal{
	decimal.RequireFromString("1.25"),
	decimal.RequireFromString("1.15"),
	decimal.RequireFromString("1.10"),
	decimal.RequireFromString("0.95"),
	decimal.RequireFromString("0.80"),
	decimal.RequireFromString("0.70"),
	decimal.RequireFromString("0.75"),
	decimal.RequireFromString("0.85"),
	decimal.RequireFromString("0.95"),
	decimal.RequireFromString("1.10"),
	decimal.RequireFromString("1.20"),
	decimal.RequireFromString("1.20"),
}

// Input is the fully resolved snapshot the calculator prices. Everything is
// loaded by the service before the call; Calculate does no I/O, so identical
// inputs always produce identical output.
type Input struct {
	Profile     types.EnergyProfile
	Region      string
	Panel       catalog.Selection
	Inverter    catalog.Selection
	Battery     *catalog.Selection
	Site        types.SiteDetails
	Extras      types.ExtraItems
	CostConfig  models.InstallationCostConfig
	Definitions []models.RebateDefinition
	Settings    Settings
	Now         time.Time
}

// Computed is the priced quote before persistence.
type Computed struct {
	SystemSizeKw      decimal.Decimal
	PanelCount        int
	BatterySizeKwh    decimal.Decimal
	Products          types.ProductSnapshots
	CostBreakdown     types.CostBreakdown
	InstallationTrail types.InstallationTrail
	RebateLineItems   types.RebateLineItems
	RebateTotals      types.RebateTotals
	Subtotal          decimal.Decimal
	TotalRebates      decimal.Decimal
	FinalPrice        decimal.Decimal
	RebatesExceed     bool
	WholesaleCost     decimal.Decimal
	GrossProfit       decimal.Decimal
	Savings           types.SavingsProjection
	ValidUntil        time.Time
}

// Calculate runs the pricing pipeline over a resolved input snapshot:
// hardware line items, installation cost, rebate aggregation, final price,
// profit and the savings projection.
func Calculate(in Input) (Computed, error) {
	if err := validateInput(in); err != nil {
		return Computed{}, err
	}

	systemSizeKw := in.Panel.Product.WattageW.
		Mul(decimal.NewFromInt(int64(in.Panel.Quantity))).
		Div(decimal.NewFromInt(1000)).
		Round(2)

	panelSnap := catalog.Snapshot(in.Panel.Product, in.Panel.Quantity)
	inverterSnap := catalog.Snapshot(in.Inverter.Product, in.Inverter.Quantity)
	products := types.ProductSnapshots{panelSnap, inverterSnap}

	batterySizeKwh := decimal.Zero
	batteryCost := decimal.Zero
	if in.Battery != nil {
		batterySnap := catalog.Snapshot(in.Battery.Product, in.Battery.Quantity)
		products = append(products, batterySnap)
		batterySizeKwh = in.Battery.Product.CapacityKwh.
			Mul(decimal.NewFromInt(int64(in.Battery.Quantity)))
		batteryCost = batterySnap.LineTotal
	}

	install, err := installation.CustomerPrice(in.CostConfig, installation.Params{
		SystemSizeKw:   systemSizeKw,
		PanelCount:     in.Panel.Quantity,
		HasBattery:     in.Battery != nil,
		BatteryKwh:     batterySizeKwh,
		Retrofit:       in.Site.Retrofit,
		Storeys:        in.Site.Storeys,
		RoofType:       in.Site.RoofType,
		RoofPitch:      in.Site.RoofPitch,
		RakedCeiling:   in.Site.RakedCeiling,
		ThreePhase:     in.Site.ThreePhase,
		Optimisers:     in.Site.Optimisers,
		ExtraInverters: in.Site.ExtraInverters,
		Splits:         in.Site.Splits,
	})
	if err != nil {
		return Computed{}, err
	}

	extrasCost := decimal.Zero
	for _, extra := range in.Extras {
		extrasCost = extrasCost.Add(extra.Amount)
	}
	extrasCost = extrasCost.Round(2)

	breakdown := types.CostBreakdown{
		PanelCost:        panelSnap.LineTotal,
		InverterCost:     inverterSnap.LineTotal,
		BatteryCost:      batteryCost,
		InstallationCost: install.Total,
		ExtrasCost:       extrasCost,
	}
	breakdown.Subtotal = breakdown.PanelCost.
		Add(breakdown.InverterCost).
		Add(breakdown.BatteryCost).
		Add(breakdown.InstallationCost).
		Add(breakdown.ExtrasCost).
		Round(2)

	rebateResult := rebates.Aggregate(in.Definitions, rebates.Variables{
		SystemSizeKw:   systemSizeKw,
		PanelCount:     in.Panel.Quantity,
		BatterySizeKwh: batterySizeKwh,
		BatteryCost:    batteryCost,
		PanelCost:      breakdown.PanelCost,
		InverterCost:   breakdown.InverterCost,
		Subtotal:       breakdown.Subtotal,
	})

	finalPrice := breakdown.Subtotal.Sub(rebateResult.Total)
	rebatesExceed := finalPrice.IsNegative()
	if rebatesExceed {
		finalPrice = decimal.Zero
	}

	wholesale := wholesaleCost(in).Round(2)

	computed := Computed{
		SystemSizeKw:      systemSizeKw,
		PanelCount:        in.Panel.Quantity,
		BatterySizeKwh:    batterySizeKwh,
		Products:          products,
		CostBreakdown:     breakdown,
		InstallationTrail: install.Trail,
		RebateLineItems:   rebateResult.LineItems,
		RebateTotals:      rebateResult.ByCategory,
		Subtotal:          breakdown.Subtotal,
		TotalRebates:      rebateResult.Total,
		FinalPrice:        finalPrice,
		RebatesExceed:     rebatesExceed,
		WholesaleCost:     wholesale,
		GrossProfit:       breakdown.Subtotal.Sub(wholesale),
		Savings:           projectSavings(in.Settings, systemSizeKw, in.Battery != nil, finalPrice),
		ValidUntil:        in.Now.UTC().AddDate(0, 0, in.Settings.ValidityDays),
	}
	return computed, nil
}

func validateInput(in Input) error {
	if in.Profile.HouseholdSize < 1 || in.Profile.HouseholdSize > 8 {
		return pkgerrors.New(pkgerrors.CodeValidation, "household size must be between 1 and 8")
	}
	if in.Region == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "region is required")
	}
	if in.Panel.Product.WattageW == nil || !in.Panel.Product.WattageW.IsPositive() || in.Panel.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeConfiguration, "panel selection is missing a usable wattage")
	}
	if in.Inverter.Product.CapacityKw == nil || !in.Inverter.Product.CapacityKw.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeConfiguration, "inverter selection is missing a usable capacity")
	}
	if in.Battery != nil && (in.Battery.Product.CapacityKwh == nil || !in.Battery.Product.CapacityKwh.IsPositive()) {
		return pkgerrors.New(pkgerrors.CodeConfiguration, "battery selection is missing a usable capacity")
	}
	for _, extra := range in.Extras {
		if extra.Amount.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "extra line items must not be negative")
		}
	}
	return nil
}

// wholesaleCost sums supplier unit costs, distinct from retail prices.
func wholesaleCost(in Input) decimal.Decimal {
	total := in.Panel.Product.UnitCost.Mul(decimal.NewFromInt(int64(in.Panel.Quantity))).
		Add(in.Inverter.Product.UnitCost.Mul(decimal.NewFromInt(int64(in.Inverter.Quantity))))
	if in.Battery != nil {
		total = total.Add(in.Battery.Product.UnitCost.Mul(decimal.NewFromInt(int64(in.Battery.Quantity))))
	}
	return total
}

// projectSavings compounds annual savings over 25 years with tariff
// escalation and panel degradation. Production is valued at a blended rate:
// the self-consumed share at the retail tariff, the exported remainder at
// the feed-in tariff.
func projectSavings(s Settings, systemSizeKw decimal.Decimal, hasBattery bool, finalPrice decimal.Decimal) types.SavingsProjection {
	baseProduction := systemSizeKw.Mul(s.ProductionFactorKwhPerKw)

	selfUse := selfUseSolarOnly
	if hasBattery {
		selfUse = selfUseWithBattery
	}
	exportShare := decimal.NewFromInt(1).Sub(selfUse)

	production := baseProduction
	retail := s.RetailTariff
	feedIn := s.FeedInTariff
	degradation := decimal.NewFromInt(1).Sub(s.PanelDegradationRate)
	escalation := decimal.NewFromInt(1).Add(s.PriceEscalationRate)

	var year1, year10, year25, cumulative decimal.Decimal
	for year := 1; year <= 25; year++ {
		rate := selfUse.Mul(retail).Add(exportShare.Mul(feedIn))
		cumulative = cumulative.Add(production.Mul(rate).Round(2))
		switch year {
		case 1:
			year1 = cumulative
		case 10:
			year10 = cumulative
		case 25:
			year25 = cumulative
		}
		production = production.Mul(degradation)
		retail = retail.Mul(escalation)
		feedIn = feedIn.Mul(escalation)
	}

	payback := decimal.Zero
	if year1.IsPositive() {
		payback = finalPrice.Div(year1).Round(1)
	}

	annualKwh := baseProduction.Round(0)
	co2Kg := baseProduction.Mul(gridEmissionsKgPerKwh)

	return types.SavingsProjection{
		AnnualProductionKwh: annualKwh,
		AnnualSavings:       year1,
		MonthlySavings:      year1.Div(decimal.NewFromInt(12)).Round(2),
		Year1Savings:        year1,
		Year10Savings:       year10,
		Year25Savings:       year25,
		PaybackYears:        payback,
		MonthlyFactors:      perthMonthlyFactors,
		CO2TonnesPerYear:    co2Kg.Div(decimal.NewFromInt(1000)).Round(2),
		TreeEquivalents:     co2Kg.Div(treeAbsorptionKgPerYear).Round(0),
	}
}
