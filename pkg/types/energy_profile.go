package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
)

// EnergyProfile is the customer questionnaire snapshot a quote is priced
// against. It is immutable once stored on a quote.
type EnergyProfile struct {
	HouseholdSize       int                  `json:"household_size"`
	DayKwh              decimal.Decimal      `json:"day_kwh"`
	EveningKwh          decimal.Decimal      `json:"evening_kwh"`
	NighttimeKwh        decimal.Decimal      `json:"nighttime_kwh"`
	HasEV               bool                 `json:"has_ev"`
	EVCount             int                  `json:"ev_count,omitempty"`
	EVChargeTiming      enums.EVChargeTiming `json:"ev_charge_timing,omitempty"`
	EVChargeKwh         decimal.Decimal      `json:"ev_charge_kwh"`
	HasPool             bool                 `json:"has_pool"`
	HasElectricHotWater bool                 `json:"has_electric_hot_water"`
	HasHeavyHVAC        bool                 `json:"has_heavy_hvac"`
	QuarterlyBill       decimal.Decimal      `json:"quarterly_bill"`
}

// OvernightEVChargeKwh returns the EV load that lands on the battery, which
// is only the charge drawn overnight.
func (p EnergyProfile) OvernightEVChargeKwh() decimal.Decimal {
	if !p.HasEV || p.EVChargeTiming != enums.EVChargeTimingNight {
		return decimal.Zero
	}
	return p.EVChargeKwh
}

// Value serializes the profile to JSON for JSONB storage.
func (p EnergyProfile) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan decodes JSONB into the profile.
func (p *EnergyProfile) Scan(value interface{}) error {
	if value == nil {
		*p = EnergyProfile{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, p)
}
