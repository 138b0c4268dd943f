package battery

import (
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/suncrest-energy/solarquote-backend/pkg/errors"
)

// Config carries the sizing tunables. Defaults come from EngineConfig.
type Config struct {
	SafetyBuffer     decimal.Decimal // multiplier on the overnight target
	DepthOfDischarge decimal.Decimal // usable fraction of nominal capacity
	IncrementKwh     decimal.Decimal // commercial unit step
	FloorKwh         decimal.Decimal // smallest battery worth installing
}

// Inputs is the consumption picture the advisor sizes against.
type Inputs struct {
	NighttimeKwh   decimal.Decimal
	EveningKwh     decimal.Decimal
	EVOvernightKwh decimal.Decimal

	// Optional charging bounds. When set, the sizes never exceed what the
	// system can realistically charge.
	MaxChargeableKwh   *decimal.Decimal
	DailyProductionKwh *decimal.Decimal
	MaxProductionShare *decimal.Decimal
}

// Recommendation is the advisor output. Recommended always equals Minimum;
// Optimal is one increment larger, offered as an upsell.
type Recommendation struct {
	MinimumKwh     decimal.Decimal
	RecommendedKwh decimal.Decimal
	OptimalKwh     decimal.Decimal
	Explanation    string
}

// Recommend derives a battery size from the overnight load. The overnight
// target is nighttime consumption plus any EV charge drawn overnight, scaled
// by the safety buffer, divided by depth of discharge, rounded up to the
// configured increment, and never below the floor. A zero target still
// returns the floor; "no battery" is an absent selection, not a zero size.
func Recommend(cfg Config, in Inputs) (Recommendation, error) {
	if err := validateConfig(cfg); err != nil {
		return Recommendation{}, err
	}
	if in.NighttimeKwh.IsNegative() || in.EveningKwh.IsNegative() || in.EVOvernightKwh.IsNegative() {
		return Recommendation{}, pkgerrors.New(pkgerrors.CodeValidation, "consumption values must not be negative")
	}

	target := in.NighttimeKwh.Add(in.EVOvernightKwh)
	required := target.Mul(cfg.SafetyBuffer).Div(cfg.DepthOfDischarge)

	minimum := roundUpToIncrement(required, cfg.IncrementKwh)
	if minimum.LessThan(cfg.FloorKwh) {
		minimum = cfg.FloorKwh
	}

	bound, bounded := upperBound(cfg, in)
	if bounded && minimum.GreaterThan(bound) {
		minimum = bound
	}

	optimal := minimum.Add(cfg.IncrementKwh)
	if bounded && optimal.GreaterThan(bound) {
		optimal = minimum
	}

	rec := Recommendation{
		MinimumKwh:     minimum,
		RecommendedKwh: minimum,
		OptimalKwh:     optimal,
		Explanation: fmt.Sprintf(
			"overnight load %s kWh (nighttime %s + EV %s) with %s buffer at %s usable depth needs %s kWh; sized to %s kWh",
			target, in.NighttimeKwh, in.EVOvernightKwh,
			cfg.SafetyBuffer, cfg.DepthOfDischarge,
			required.Round(2), minimum,
		),
	}
	return rec, nil
}

func validateConfig(cfg Config) error {
	if cfg.SafetyBuffer.LessThanOrEqual(decimal.Zero) ||
		cfg.DepthOfDischarge.LessThanOrEqual(decimal.Zero) ||
		cfg.IncrementKwh.LessThanOrEqual(decimal.Zero) ||
		cfg.FloorKwh.LessThanOrEqual(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeConfiguration, "battery sizing config values must be positive")
	}
	return nil
}

// upperBound resolves the tightest supplied charging constraint, rounded
// down to a commercial increment but never below one increment.
func upperBound(cfg Config, in Inputs) (decimal.Decimal, bool) {
	var bound *decimal.Decimal

	if in.MaxChargeableKwh != nil {
		bound = in.MaxChargeableKwh
	}
	if in.DailyProductionKwh != nil && in.MaxProductionShare != nil {
		share := in.DailyProductionKwh.Mul(*in.MaxProductionShare)
		if bound == nil || share.LessThan(*bound) {
			bound = &share
		}
	}
	if bound == nil {
		return decimal.Zero, false
	}

	rounded := roundDownToIncrement(*bound, cfg.IncrementKwh)
	if rounded.LessThan(cfg.IncrementKwh) {
		rounded = cfg.IncrementKwh
	}
	return rounded, true
}

func roundUpToIncrement(value, increment decimal.Decimal) decimal.Decimal {
	return value.Div(increment).Ceil().Mul(increment)
}

func roundDownToIncrement(value, increment decimal.Decimal) decimal.Decimal {
	return value.Div(increment).Floor().Mul(increment)
}
