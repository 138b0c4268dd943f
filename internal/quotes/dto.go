package quotes

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
	pkgerrors "github.com/suncrest-energy/solarquote-backend/pkg/errors"
	"github.com/suncrest-energy/solarquote-backend/pkg/types"
)

// EnergyProfileRequest is the questionnaire payload.
type EnergyProfileRequest struct {
	HouseholdSize       int             `json:"household_size" validate:"required,min=1,max=8"`
	DayKwh              decimal.Decimal `json:"day_kwh"`
	EveningKwh          decimal.Decimal `json:"evening_kwh"`
	NighttimeKwh        decimal.Decimal `json:"nighttime_kwh"`
	HasEV               bool            `json:"has_ev"`
	EVCount             int             `json:"ev_count" validate:"min=0,max=4"`
	EVChargeTiming      string          `json:"ev_charge_timing" validate:"omitempty,oneof=day night"`
	EVChargeKwh         decimal.Decimal `json:"ev_charge_kwh"`
	HasPool             bool            `json:"has_pool"`
	HasElectricHotWater bool            `json:"has_electric_hot_water"`
	HasHeavyHVAC        bool            `json:"has_heavy_hvac"`
	QuarterlyBill       decimal.Decimal `json:"quarterly_bill"`
}

// SelectionRequest names the hardware, explicitly by ID or by size for
// auto-selection.
type SelectionRequest struct {
	PanelID    *uuid.UUID `json:"panel_id"`
	InverterID *uuid.UUID `json:"inverter_id"`
	BatteryID  *uuid.UUID `json:"battery_id"`

	SystemSizeKw   decimal.Decimal  `json:"system_size_kw"`
	IncludeBattery bool             `json:"include_battery"`
	BatteryKwh     *decimal.Decimal `json:"battery_kwh"`
	Tier           string           `json:"tier" validate:"omitempty,oneof=budget mid premium"`
}

// SiteRequest carries the physical installation attributes.
type SiteRequest struct {
	Storeys        int    `json:"storeys" validate:"required,min=1,max=3"`
	RoofType       string `json:"roof_type" validate:"required,oneof=tile metal klip_lok slate flat"`
	RoofPitch      string `json:"roof_pitch" validate:"required,oneof=flat standard steep"`
	RakedCeiling   bool   `json:"raked_ceiling"`
	ThreePhase     bool   `json:"three_phase"`
	Retrofit       bool   `json:"retrofit"`
	Optimisers     int    `json:"optimisers" validate:"min=0"`
	ExtraInverters int    `json:"extra_inverters" validate:"min=0"`
	Splits         int    `json:"splits" validate:"min=0"`
}

// CreateQuoteRequest is the full quote-creation payload.
type CreateQuoteRequest struct {
	Region    string               `json:"region" validate:"required,min=2,max=3"`
	Profile   EnergyProfileRequest `json:"profile" validate:"required"`
	Selection SelectionRequest     `json:"selection" validate:"required"`
	Site      SiteRequest          `json:"site" validate:"required"`
	Extras    types.ExtraItems     `json:"extras" validate:"omitempty,dive"`
	Draft     bool                 `json:"draft"`
}

// Profile converts the request into the stored snapshot form.
func (r EnergyProfileRequest) Profile() (types.EnergyProfile, error) {
	profile := types.EnergyProfile{
		HouseholdSize:       r.HouseholdSize,
		DayKwh:              r.DayKwh,
		EveningKwh:          r.EveningKwh,
		NighttimeKwh:        r.NighttimeKwh,
		HasEV:               r.HasEV,
		EVCount:             r.EVCount,
		EVChargeKwh:         r.EVChargeKwh,
		HasPool:             r.HasPool,
		HasElectricHotWater: r.HasElectricHotWater,
		HasHeavyHVAC:        r.HasHeavyHVAC,
		QuarterlyBill:       r.QuarterlyBill,
	}
	if r.DayKwh.IsNegative() || r.EveningKwh.IsNegative() || r.NighttimeKwh.IsNegative() || r.EVChargeKwh.IsNegative() {
		return types.EnergyProfile{}, pkgerrors.New(pkgerrors.CodeValidation, "consumption values must not be negative")
	}
	if r.HasEV {
		if r.EVChargeTiming == "" {
			return types.EnergyProfile{}, pkgerrors.New(pkgerrors.CodeValidation, "ev charge timing is required when an EV is present")
		}
		timing, err := enums.ParseEVChargeTiming(r.EVChargeTiming)
		if err != nil {
			return types.EnergyProfile{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ev charge timing")
		}
		profile.EVChargeTiming = timing
	}
	return profile, nil
}

// SiteAttributes converts the request into the stored snapshot form.
func (r SiteRequest) SiteAttributes() (types.SiteDetails, error) {
	roof, err := enums.ParseRoofType(r.RoofType)
	if err != nil {
		return types.SiteDetails{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid roof type")
	}
	pitch, err := enums.ParseRoofPitch(r.RoofPitch)
	if err != nil {
		return types.SiteDetails{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid roof pitch")
	}
	return types.SiteDetails{
		Storeys:        r.Storeys,
		RoofType:       roof,
		RoofPitch:      pitch,
		RakedCeiling:   r.RakedCeiling,
		ThreePhase:     r.ThreePhase,
		Retrofit:       r.Retrofit,
		Optimisers:     r.Optimisers,
		ExtraInverters: r.ExtraInverters,
		Splits:         r.Splits,
	}, nil
}

// PreferredTier parses the optional tier filter.
func (r SelectionRequest) PreferredTier() enums.ProductTier {
	return enums.ProductTier(r.Tier)
}
