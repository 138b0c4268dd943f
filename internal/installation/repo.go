package installation

import (
	"context"

	"gorm.io/gorm"

	"github.com/suncrest-energy/solarquote-backend/pkg/db/models"
	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
)

// Repository loads installation rate tables.
type Repository interface {
	FindActive(ctx context.Context, region string, track enums.RateTrack) (*models.InstallationCostConfig, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cost config repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindActive(ctx context.Context, region string, track enums.RateTrack) (*models.InstallationCostConfig, error) {
	var cfg models.InstallationCostConfig
	err := r.db.WithContext(ctx).
		Where("region = ? AND rate_track = ? AND is_active = ?", region, track, true).
		First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
