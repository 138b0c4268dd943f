package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
)

// Product represents a catalog hardware record (panel, inverter or battery).
type Product struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type          enums.ProductType `gorm:"column:type;type:product_type;not null"`
	Manufacturer  string            `gorm:"column:manufacturer;not null"`
	Name          string            `gorm:"column:name;not null"`
	SKU           string            `gorm:"column:sku;not null"`
	Tier          enums.ProductTier `gorm:"column:tier;type:product_tier;not null"`
	WattageW      *decimal.Decimal  `gorm:"column:wattage_w;type:numeric(8,2)"`
	CapacityKw    *decimal.Decimal  `gorm:"column:capacity_kw;type:numeric(8,2)"`
	CapacityKwh   *decimal.Decimal  `gorm:"column:capacity_kwh;type:numeric(8,2)"`
	UnitCost      decimal.Decimal   `gorm:"column:unit_cost;type:numeric(12,2);not null"`
	RetailPrice   decimal.Decimal   `gorm:"column:retail_price;type:numeric(12,2);not null"`
	WarrantyYears int               `gorm:"column:warranty_years;not null;default:0"`
	// no default tag: gorm would omit a false value from the INSERT
	IsActive      bool              `gorm:"column:is_active;not null"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
