package rebates

import (
	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/internal/formula"
	"github.com/suncrest-energy/solarquote-backend/pkg/db/models"
	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
	"github.com/suncrest-energy/solarquote-backend/pkg/types"
)

// Variables is the fixed variable set rebate definitions are computed
// against. It is assembled once per calculation from the quote snapshot.
type Variables struct {
	SystemSizeKw   decimal.Decimal
	PanelCount     int
	BatterySizeKwh decimal.Decimal
	BatteryCost    decimal.Decimal
	PanelCost      decimal.Decimal
	InverterCost   decimal.Decimal
	Subtotal       decimal.Decimal
}

// FormulaVars exposes the variable set to the formula evaluator.
func (v Variables) FormulaVars() map[string]float64 {
	return map[string]float64{
		"systemSizeKw":   v.SystemSizeKw.InexactFloat64(),
		"panelCount":     float64(v.PanelCount),
		"batterySizeKwh": v.BatterySizeKwh.InexactFloat64(),
		"batteryCost":    v.BatteryCost.InexactFloat64(),
		"panelCost":      v.PanelCost.InexactFloat64(),
		"inverterCost":   v.InverterCost.InexactFloat64(),
		"subtotal":       v.Subtotal.InexactFloat64(),
	}
}

// Result is the itemized outcome of applying every active definition.
type Result struct {
	ByCategory types.RebateTotals
	Total      decimal.Decimal
	LineItems  types.RebateLineItems
}

// Aggregate applies the active definitions to the variables. Each amount is
// clamped to [0, cap]. A malformed definition contributes 0 and is flagged in
// the line items; it never aborts the aggregation. Reordering definitions
// does not change Total or ByCategory.
func Aggregate(definitions []models.RebateDefinition, vars Variables) Result {
	result := Result{
		ByCategory: types.RebateTotals{},
		Total:      decimal.Zero,
		LineItems:  types.RebateLineItems{},
	}

	for _, def := range definitions {
		if !def.IsActive {
			continue
		}

		item := types.RebateLineItem{
			Name:        def.Name,
			Category:    def.Category,
			Calculation: def.CalculationType,
		}

		raw, failNote := compute(def, vars)
		if failNote != "" {
			item.Failed = true
			item.FailureNote = failNote
			item.RawAmount = decimal.Zero
			item.Applied = decimal.Zero
		} else {
			item.RawAmount = raw
			item.Applied = clamp(raw, def.Cap)
			item.Capped = item.Applied.LessThan(raw)
		}

		result.ByCategory[def.Category] = result.ByCategory[def.Category].Add(item.Applied)
		result.Total = result.Total.Add(item.Applied)
		result.LineItems = append(result.LineItems, item)
	}

	return result
}

func compute(def models.RebateDefinition, vars Variables) (decimal.Decimal, string) {
	switch def.CalculationType {
	case enums.RebateCalculationPerUnit:
		return perUnit(def, vars).Round(2), ""
	case enums.RebateCalculationPercentage:
		if vars.BatterySizeKwh.IsZero() {
			return decimal.Zero, ""
		}
		return vars.BatteryCost.Mul(def.Value).Div(decimal.NewFromInt(100)).Round(2), ""
	case enums.RebateCalculationFormula:
		if def.Formula == nil || *def.Formula == "" {
			return decimal.Zero, "formula definition has no formula text"
		}
		amount, err := formula.Evaluate(*def.Formula, vars.FormulaVars())
		if err != nil {
			return decimal.Zero, err.Error()
		}
		return amount, ""
	default:
		return decimal.Zero, "unknown calculation type " + string(def.CalculationType)
	}
}

// perUnit picks the unit the category is denominated in: battery rebates are
// per kWh, solar rebates per kW of system size.
func perUnit(def models.RebateDefinition, vars Variables) decimal.Decimal {
	switch def.Category {
	case enums.RebateCategoryFederalBattery, enums.RebateCategoryStateBattery:
		return vars.BatterySizeKwh.Mul(def.Value)
	default:
		return vars.SystemSizeKw.Mul(def.Value)
	}
}

func clamp(amount decimal.Decimal, cap *decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	if cap != nil && amount.GreaterThan(*cap) {
		return *cap
	}
	return amount
}
