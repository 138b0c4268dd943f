package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
)

// RebateDefinition is an admin-authored incentive rule. Quotes store the
// computed amounts, never a live reference to these rows.
type RebateDefinition struct {
	ID              uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string                      `gorm:"column:name;not null"`
	Category        enums.RebateCategory        `gorm:"column:category;type:rebate_category;not null"`
	CalculationType enums.RebateCalculationType `gorm:"column:calculation_type;type:rebate_calculation_type;not null"`
	Value           decimal.Decimal             `gorm:"column:value;type:numeric(12,4);not null;default:0"`
	Formula         *string                     `gorm:"column:formula"`
	Cap             *decimal.Decimal            `gorm:"column:cap;type:numeric(12,2)"`
	IsActive        bool                        `gorm:"column:is_active;not null"`
	CreatedAt       time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}
