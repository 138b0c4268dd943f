package enums

import "fmt"

// RebateCategory groups rebate definitions for itemized disclosure.
type RebateCategory string

const (
	RebateCategoryFederalSolar   RebateCategory = "federal_solar"
	RebateCategoryFederalBattery RebateCategory = "federal_battery"
	RebateCategoryStateBattery   RebateCategory = "state_battery"
)

var validRebateCategories = []RebateCategory{
	RebateCategoryFederalSolar,
	RebateCategoryFederalBattery,
	RebateCategoryStateBattery,
}

// String implements fmt.Stringer.
func (c RebateCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known RebateCategory.
func (c RebateCategory) IsValid() bool {
	for _, candidate := range validRebateCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseRebateCategory converts raw input into a RebateCategory.
func ParseRebateCategory(value string) (RebateCategory, error) {
	for _, candidate := range validRebateCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rebate category %q", value)
}

// RebateCalculationType selects how a rebate definition is computed.
type RebateCalculationType string

const (
	RebateCalculationPerUnit    RebateCalculationType = "per_unit"
	RebateCalculationPercentage RebateCalculationType = "percentage"
	RebateCalculationFormula    RebateCalculationType = "formula"
)

var validRebateCalculationTypes = []RebateCalculationType{
	RebateCalculationPerUnit,
	RebateCalculationPercentage,
	RebateCalculationFormula,
}

// String implements fmt.Stringer.
func (t RebateCalculationType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known RebateCalculationType.
func (t RebateCalculationType) IsValid() bool {
	for _, candidate := range validRebateCalculationTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseRebateCalculationType converts raw input into a RebateCalculationType.
func ParseRebateCalculationType(value string) (RebateCalculationType, error) {
	for _, candidate := range validRebateCalculationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rebate calculation type %q", value)
}
