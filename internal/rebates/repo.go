package rebates

import (
	"context"

	"gorm.io/gorm"

	"github.com/suncrest-energy/solarquote-backend/pkg/db/models"
)

// Repository loads and stores rebate definitions.
type Repository interface {
	ListActive(ctx context.Context) ([]models.RebateDefinition, error)
	Create(ctx context.Context, def *models.RebateDefinition) (*models.RebateDefinition, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a rebate definition repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListActive(ctx context.Context) ([]models.RebateDefinition, error) {
	var defs []models.RebateDefinition
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&defs).Error
	if err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *repository) Create(ctx context.Context, def *models.RebateDefinition) (*models.RebateDefinition, error) {
	if err := r.db.WithContext(ctx).Create(def).Error; err != nil {
		return nil, err
	}
	return def, nil
}
