package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
)

// SiteDetails is the physical installation picture a quote was priced
// against, stored on the quote so recalculation can replay it.
type SiteDetails struct {
	Storeys        int             `json:"storeys"`
	RoofType       enums.RoofType  `json:"roof_type"`
	RoofPitch      enums.RoofPitch `json:"roof_pitch"`
	RakedCeiling   bool            `json:"raked_ceiling,omitempty"`
	ThreePhase     bool            `json:"three_phase,omitempty"`
	Retrofit       bool            `json:"retrofit,omitempty"`
	Optimisers     int             `json:"optimisers,omitempty"`
	ExtraInverters int             `json:"extra_inverters,omitempty"`
	Splits         int             `json:"splits,omitempty"`
}

// Value serializes the site details to JSON.
func (s SiteDetails) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan decodes JSONB into the site details.
func (s *SiteDetails) Scan(value interface{}) error {
	if value == nil {
		*s = SiteDetails{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, s)
}

// ExtraItem is a custom additional charge, e.g. bird proofing.
type ExtraItem struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// ExtraItems is the custom charge list marshaled as JSONB.
type ExtraItems []ExtraItem

// Value serializes the extras to JSON.
func (e ExtraItems) Value() (driver.Value, error) {
	if e == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e)
}

// Scan decodes JSONB into the extras list.
func (e *ExtraItems) Scan(value interface{}) error {
	if value == nil {
		*e = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded ExtraItems
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*e = decoded
	return nil
}
