package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
	"github.com/suncrest-energy/solarquote-backend/pkg/types"
)

// Quote is the persisted calculation artifact. Quotes are never deleted;
// superseded rows remain for audit. RowVersion serializes concurrent state
// transitions so at most one accept can succeed.
type Quote struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Reference         string                  `gorm:"column:reference;not null;uniqueIndex"`
	Region            string                  `gorm:"column:region;not null"`
	Status            enums.QuoteStatus       `gorm:"column:status;type:quote_status;not null;default:draft"`
	RowVersion        int                     `gorm:"column:row_version;not null;default:1"`
	EnergyProfile     types.EnergyProfile     `gorm:"column:energy_profile;type:jsonb;not null"`
	SiteDetails       types.SiteDetails       `gorm:"column:site_details;type:jsonb;not null"`
	Products          types.ProductSnapshots  `gorm:"column:products;type:jsonb;not null"`
	Extras            types.ExtraItems        `gorm:"column:extras;type:jsonb;not null"`
	SystemSizeKw      decimal.Decimal         `gorm:"column:system_size_kw;type:numeric(8,2);not null"`
	PanelCount        int                     `gorm:"column:panel_count;not null"`
	BatterySizeKwh    decimal.Decimal         `gorm:"column:battery_size_kwh;type:numeric(8,2);not null;default:0"`
	CostBreakdown     types.CostBreakdown     `gorm:"column:cost_breakdown;type:jsonb;not null"`
	InstallationTrail types.InstallationTrail `gorm:"column:installation_trail;type:jsonb;not null"`
	RebateLineItems   types.RebateLineItems   `gorm:"column:rebate_line_items;type:jsonb;not null"`
	RebateTotals      types.RebateTotals      `gorm:"column:rebate_totals;type:jsonb;not null"`
	Subtotal          decimal.Decimal         `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TotalRebates      decimal.Decimal         `gorm:"column:total_rebates;type:numeric(12,2);not null"`
	FinalPrice        decimal.Decimal         `gorm:"column:final_price;type:numeric(12,2);not null"`
	RebatesExceed     bool                    `gorm:"column:rebates_exceed;not null;default:false"`
	WholesaleCost     decimal.Decimal         `gorm:"column:wholesale_cost;type:numeric(12,2);not null"`
	GrossProfit       decimal.Decimal         `gorm:"column:gross_profit;type:numeric(12,2);not null"`
	Savings           types.SavingsProjection `gorm:"column:savings;type:jsonb;not null"`
	ValidUntil        time.Time               `gorm:"column:valid_until;not null"`
	AcceptedAt        *time.Time              `gorm:"column:accepted_at"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
