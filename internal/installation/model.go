package installation

import (
	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/pkg/db/models"
	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
	pkgerrors "github.com/suncrest-energy/solarquote-backend/pkg/errors"
	"github.com/suncrest-energy/solarquote-backend/pkg/types"
)

// Params describes the physical job the model prices.
type Params struct {
	SystemSizeKw   decimal.Decimal
	PanelCount     int
	HasBattery     bool
	BatteryKwh     decimal.Decimal
	Retrofit       bool
	Storeys        int
	RoofType       enums.RoofType
	RoofPitch      enums.RoofPitch
	RakedCeiling   bool
	ThreePhase     bool
	Optimisers     int
	ExtraInverters int
	Splits         int
}

// Result is the itemized outcome. The trail records every pricing step in
// the order it was applied; the order is load-bearing for reproducibility
// and audit, not a presentation choice.
type Result struct {
	Base  decimal.Decimal
	Trail types.InstallationTrail
	Total decimal.Decimal
}

// Price computes the installation cost from the supplied rate table.
//
// Base = callout (twice for retrofits, the battery visit is separate)
// + panelCount x perPanelRate + commissioning
// + batteryBase + batteryKwh x perKwhRate when a battery is installed.
//
// Multipliers then apply in fixed order: roof type, pitch, storeys,
// raked-ceiling surcharge, phase surcharge, then the additive optimiser /
// extra-inverter / split line items. Every intermediate total is rounded to
// the cent before the next step.
func Price(cfg models.InstallationCostConfig, p Params) (Result, error) {
	if p.PanelCount < 0 || p.Storeys < 1 || p.Optimisers < 0 || p.ExtraInverters < 0 || p.Splits < 0 {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "installation parameters out of range")
	}
	if !p.RoofType.IsValid() || !p.RoofPitch.IsValid() {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown roof type or pitch")
	}

	base := cfg.CalloutFee
	if p.Retrofit {
		base = base.Add(cfg.CalloutFee)
	}
	base = base.Add(cfg.PerPanelRate.Mul(decimal.NewFromInt(int64(p.PanelCount))))
	base = base.Add(cfg.CommissioningFee)
	if p.HasBattery {
		base = base.Add(cfg.BatteryBaseFee).Add(cfg.PerKwhRate.Mul(p.BatteryKwh))
	}
	base = base.Round(2)

	trail := types.InstallationTrail{}
	total := base

	applyFactor := func(label string, factor decimal.Decimal) {
		total = total.Mul(factor).Round(2)
		trail = append(trail, types.InstallationStep{Label: label, Factor: factor, RunningTotal: total})
	}
	applyAmount := func(label string, amount decimal.Decimal) {
		total = total.Add(amount).Round(2)
		trail = append(trail, types.InstallationStep{Label: label, Amount: amount, RunningTotal: total})
	}

	applyFactor("roof_type:"+p.RoofType.String(), roofMultiplier(cfg, p.RoofType))
	applyFactor("roof_pitch:"+p.RoofPitch.String(), pitchMultiplier(cfg, p.RoofPitch))
	if p.Storeys > 1 {
		factor := cfg.StoreysMultiplier.Pow(decimal.NewFromInt(int64(p.Storeys - 1)))
		applyFactor("storeys", factor)
	}
	if p.RakedCeiling {
		applyAmount("raked_ceiling", cfg.RakedCeilingSurcharge)
	}
	if p.ThreePhase {
		applyAmount("three_phase", cfg.PhaseSurcharge)
	}
	if p.Optimisers > 0 {
		applyAmount("optimisers", cfg.OptimiserRate.Mul(decimal.NewFromInt(int64(p.Optimisers))))
	}
	if p.ExtraInverters > 0 {
		applyAmount("extra_inverters", cfg.ExtraInverterFee.Mul(decimal.NewFromInt(int64(p.ExtraInverters))))
	}
	if p.Splits > 0 {
		applyAmount("splits", cfg.SplitFee.Mul(decimal.NewFromInt(int64(p.Splits))))
	}

	return Result{Base: base, Trail: trail, Total: total}, nil
}

// CustomerPrice prices the customer-facing path: always the subcontractor
// rate table plus the configured commission, regardless of who performs the
// work. Internal crews must only ever increase margin, never discount the
// customer.
func CustomerPrice(subcontractorCfg models.InstallationCostConfig, p Params) (Result, error) {
	result, err := Price(subcontractorCfg, p)
	if err != nil {
		return Result{}, err
	}

	commission := subcontractorCfg.CommissionPercent.Div(decimal.NewFromInt(100))
	factor := decimal.NewFromInt(1).Add(commission)
	result.Total = result.Total.Mul(factor).Round(2)
	result.Trail = append(result.Trail, types.InstallationStep{
		Label:        "commission",
		Factor:       factor,
		RunningTotal: result.Total,
	})
	return result, nil
}

func roofMultiplier(cfg models.InstallationCostConfig, roof enums.RoofType) decimal.Decimal {
	switch roof {
	case enums.RoofTypeTile:
		return cfg.RoofTileMultiplier
	case enums.RoofTypeMetal:
		return cfg.RoofMetalMultiplier
	case enums.RoofTypeKlipLok:
		return cfg.RoofKlipLokMultiplier
	case enums.RoofTypeSlate:
		return cfg.RoofSlateMultiplier
	default:
		return cfg.RoofFlatMultiplier
	}
}

func pitchMultiplier(cfg models.InstallationCostConfig, pitch enums.RoofPitch) decimal.Decimal {
	switch pitch {
	case enums.RoofPitchFlat:
		return cfg.PitchFlatMultiplier
	case enums.RoofPitchSteep:
		return cfg.PitchSteepMultiplier
	default:
		return cfg.PitchStdMultiplier
	}
}
