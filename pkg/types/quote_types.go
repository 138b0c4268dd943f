package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
)

// ProductSnapshot freezes the priced attributes of a catalog product at
// calculation time. Quotes never reference live catalog rows.
type ProductSnapshot struct {
	ID           uuid.UUID         `json:"id"`
	Type         enums.ProductType `json:"type"`
	Manufacturer string            `json:"manufacturer"`
	Name         string            `json:"name"`
	Tier         enums.ProductTier `json:"tier"`
	WattageW     decimal.Decimal   `json:"wattage_w,omitempty"`
	CapacityKw   decimal.Decimal   `json:"capacity_kw,omitempty"`
	CapacityKwh  decimal.Decimal   `json:"capacity_kwh,omitempty"`
	UnitCost     decimal.Decimal   `json:"unit_cost"`
	RetailPrice  decimal.Decimal   `json:"retail_price"`
	Quantity     int               `json:"quantity"`
	LineTotal    decimal.Decimal   `json:"line_total"`
}

// ProductSnapshots is the selected-hardware list marshaled as JSONB.
type ProductSnapshots []ProductSnapshot

// Value serializes the snapshots to JSON.
func (s ProductSnapshots) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Scan decodes JSONB into the snapshot slice.
func (s *ProductSnapshots) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded ProductSnapshots
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*s = decoded
	return nil
}

// CostBreakdown itemizes the quote subtotal. The parts always sum to
// Subtotal exactly.
type CostBreakdown struct {
	PanelCost        decimal.Decimal `json:"panel_cost"`
	InverterCost     decimal.Decimal `json:"inverter_cost"`
	BatteryCost      decimal.Decimal `json:"battery_cost"`
	InstallationCost decimal.Decimal `json:"installation_cost"`
	ExtrasCost       decimal.Decimal `json:"extras_cost"`
	Subtotal         decimal.Decimal `json:"subtotal"`
}

// Value serializes the breakdown to JSON.
func (c CostBreakdown) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan decodes JSONB into the breakdown.
func (c *CostBreakdown) Scan(value interface{}) error {
	if value == nil {
		*c = CostBreakdown{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, c)
}

// InstallationStep is one entry in the itemized installation pricing trail.
// Multiplier steps carry Factor; additive steps carry Amount.
type InstallationStep struct {
	Label        string          `json:"label"`
	Factor       decimal.Decimal `json:"factor,omitempty"`
	Amount       decimal.Decimal `json:"amount,omitempty"`
	RunningTotal decimal.Decimal `json:"running_total"`
}

// InstallationTrail persists the ordered pricing trail as JSONB.
type InstallationTrail []InstallationStep

// Value serializes the trail to JSON.
func (t InstallationTrail) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t)
}

// Scan decodes JSONB into the trail.
func (t *InstallationTrail) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded InstallationTrail
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*t = decoded
	return nil
}

// RebateLineItem records the outcome of a single rebate definition,
// including failures, for regulatory disclosure.
type RebateLineItem struct {
	Name        string                      `json:"name"`
	Category    enums.RebateCategory        `json:"category"`
	Calculation enums.RebateCalculationType `json:"calculation"`
	RawAmount   decimal.Decimal             `json:"raw_amount"`
	Applied     decimal.Decimal             `json:"applied"`
	Capped      bool                        `json:"capped,omitempty"`
	Failed      bool                        `json:"failed,omitempty"`
	FailureNote string                      `json:"failure_note,omitempty"`
}

// RebateLineItems is the itemized rebate list marshaled as JSONB.
type RebateLineItems []RebateLineItem

// Value serializes the line items to JSON.
func (r RebateLineItems) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

// Scan decodes JSONB into the line item slice.
func (r *RebateLineItems) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded RebateLineItems
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}

// RebateTotals maps rebate category to its summed amount.
type RebateTotals map[enums.RebateCategory]decimal.Decimal

// Value serializes the totals to JSON.
func (r RebateTotals) Value() (driver.Value, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r)
}

// Scan decodes JSONB into the totals map.
func (r *RebateTotals) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded RebateTotals
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}

// SavingsProjection carries the multi-horizon savings and environmental
// figures shown on the proposal.
type SavingsProjection struct {
	AnnualProductionKwh decimal.Decimal   `json:"annual_production_kwh"`
	AnnualSavings       decimal.Decimal   `json:"annual_savings"`
	MonthlySavings      decimal.Decimal   `json:"monthly_savings"`
	Year1Savings        decimal.Decimal   `json:"year_1_savings"`
	Year10Savings       decimal.Decimal   `json:"year_10_savings"`
	Year25Savings       decimal.Decimal   `json:"year_25_savings"`
	PaybackYears        decimal.Decimal   `json:"payback_years"`
	MonthlyFactors      []decimal.Decimal `json:"monthly_factors,omitempty"`
	CO2TonnesPerYear    decimal.Decimal   `json:"co2_tonnes_per_year"`
	TreeEquivalents     decimal.Decimal   `json:"tree_equivalents"`
}

// Value serializes the projection to JSON.
func (s SavingsProjection) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan decodes JSONB into the projection.
func (s *SavingsProjection) Scan(value interface{}) error {
	if value == nil {
		*s = SavingsProjection{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, s)
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
