package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
)

// InstallationCostConfig holds the per-region, per-rate-track pricing table
// for the installation cost model. One active row per (region, rate_track).
type InstallationCostConfig struct {
	ID                    uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Region                string          `gorm:"column:region;not null;uniqueIndex:idx_cost_config_region_track"`
	RateTrack             enums.RateTrack `gorm:"column:rate_track;type:rate_track;not null;uniqueIndex:idx_cost_config_region_track"`
	CalloutFee            decimal.Decimal `gorm:"column:callout_fee;type:numeric(12,2);not null"`
	HourlyRate            decimal.Decimal `gorm:"column:hourly_rate;type:numeric(12,2);not null"`
	PerPanelRate          decimal.Decimal `gorm:"column:per_panel_rate;type:numeric(12,2);not null"`
	PerKwhRate            decimal.Decimal `gorm:"column:per_kwh_rate;type:numeric(12,2);not null"`
	BatteryBaseFee        decimal.Decimal `gorm:"column:battery_base_fee;type:numeric(12,2);not null"`
	CommissioningFee      decimal.Decimal `gorm:"column:commissioning_fee;type:numeric(12,2);not null"`
	RoofTileMultiplier    decimal.Decimal `gorm:"column:roof_tile_multiplier;type:numeric(6,4);not null;default:1"`
	RoofMetalMultiplier   decimal.Decimal `gorm:"column:roof_metal_multiplier;type:numeric(6,4);not null;default:1"`
	RoofKlipLokMultiplier decimal.Decimal `gorm:"column:roof_klip_lok_multiplier;type:numeric(6,4);not null;default:1"`
	RoofSlateMultiplier   decimal.Decimal `gorm:"column:roof_slate_multiplier;type:numeric(6,4);not null;default:1"`
	RoofFlatMultiplier    decimal.Decimal `gorm:"column:roof_flat_multiplier;type:numeric(6,4);not null;default:1"`
	PitchFlatMultiplier   decimal.Decimal `gorm:"column:pitch_flat_multiplier;type:numeric(6,4);not null;default:1"`
	PitchStdMultiplier    decimal.Decimal `gorm:"column:pitch_std_multiplier;type:numeric(6,4);not null;default:1"`
	PitchSteepMultiplier  decimal.Decimal `gorm:"column:pitch_steep_multiplier;type:numeric(6,4);not null;default:1"`
	StoreysMultiplier     decimal.Decimal `gorm:"column:storeys_multiplier;type:numeric(6,4);not null;default:1"`
	RakedCeilingSurcharge decimal.Decimal `gorm:"column:raked_ceiling_surcharge;type:numeric(12,2);not null;default:0"`
	PhaseSurcharge        decimal.Decimal `gorm:"column:phase_surcharge;type:numeric(12,2);not null;default:0"`
	OptimiserRate         decimal.Decimal `gorm:"column:optimiser_rate;type:numeric(12,2);not null;default:0"`
	ExtraInverterFee      decimal.Decimal `gorm:"column:extra_inverter_fee;type:numeric(12,2);not null;default:0"`
	SplitFee              decimal.Decimal `gorm:"column:split_fee;type:numeric(12,2);not null;default:0"`
	CommissionPercent     decimal.Decimal `gorm:"column:commission_percent;type:numeric(6,2);not null;default:15"`
	IsActive              bool            `gorm:"column:is_active;not null"`
	CreatedAt             time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
