package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suncrest-energy/solarquote-backend/pkg/db/models"
	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
)

// Repository loads catalog products.
type Repository interface {
	ListActiveByType(ctx context.Context, productType enums.ProductType) ([]models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a product repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListActiveByType(ctx context.Context, productType enums.ProductType) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("type = ? AND is_active = ?", productType, true).
		Order("unit_cost ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
