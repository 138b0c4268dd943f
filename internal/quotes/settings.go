package quotes

import (
	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/internal/battery"
	"github.com/suncrest-energy/solarquote-backend/pkg/config"
)

// Settings is the engine tunable snapshot in decimal form. It is built once
// at startup; the calculator never reads configuration directly.
type Settings struct {
	CommissionPercent        decimal.Decimal
	ValidityDays             int
	Battery                  battery.Config
	RetailTariff             decimal.Decimal
	FeedInTariff             decimal.Decimal
	PriceEscalationRate      decimal.Decimal
	PanelDegradationRate     decimal.Decimal
	ProductionFactorKwhPerKw decimal.Decimal
}

// NewSettings converts the environment-sourced engine config into the
// decimal snapshot the calculator consumes.
func NewSettings(cfg config.EngineConfig) Settings {
	return Settings{
		CommissionPercent: decimal.NewFromFloat(cfg.CommissionPercent),
		ValidityDays:      cfg.QuoteValidityDays,
		Battery: battery.Config{
			SafetyBuffer:     decimal.NewFromFloat(cfg.BatterySafetyBuffer),
			DepthOfDischarge: decimal.NewFromFloat(cfg.BatteryDepthOfDischarge),
			IncrementKwh:     decimal.NewFromFloat(cfg.BatteryIncrementKwh),
			FloorKwh:         decimal.NewFromFloat(cfg.BatteryFloorKwh),
		},
		RetailTariff:             decimal.NewFromFloat(cfg.RetailTariff),
		FeedInTariff:             decimal.NewFromFloat(cfg.FeedInTariff),
		PriceEscalationRate:      decimal.NewFromFloat(cfg.PriceEscalationRate),
		PanelDegradationRate:     decimal.NewFromFloat(cfg.PanelDegradationRate),
		ProductionFactorKwhPerKw: decimal.NewFromFloat(cfg.ProductionFactorKwhPerKw),
	}
}
