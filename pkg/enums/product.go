package enums

import "fmt"

// ProductType represents the hardware categories the catalog prices.
type ProductType string

const (
	ProductTypePanel    ProductType = "panel"
	ProductTypeInverter ProductType = "inverter"
	ProductTypeBattery  ProductType = "battery"
)

var validProductTypes = []ProductType{
	ProductTypePanel,
	ProductTypeInverter,
	ProductTypeBattery,
}

// String implements fmt.Stringer.
func (t ProductType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known ProductType.
func (t ProductType) IsValid() bool {
	for _, candidate := range validProductTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseProductType converts raw input into a ProductType.
func ParseProductType(value string) (ProductType, error) {
	for _, candidate := range validProductTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product type %q", value)
}

// ProductTier represents the quality band used by auto-selection.
type ProductTier string

const (
	ProductTierBudget  ProductTier = "budget"
	ProductTierMid     ProductTier = "mid"
	ProductTierPremium ProductTier = "premium"
)

var validProductTiers = []ProductTier{
	ProductTierBudget,
	ProductTierMid,
	ProductTierPremium,
}

// String implements fmt.Stringer.
func (t ProductTier) String() string {
	return string(t)
}

// IsValid reports whether the value is a known ProductTier.
func (t ProductTier) IsValid() bool {
	for _, candidate := range validProductTiers {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseProductTier converts raw input into a ProductTier.
func ParseProductTier(value string) (ProductTier, error) {
	for _, candidate := range validProductTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product tier %q", value)
}
