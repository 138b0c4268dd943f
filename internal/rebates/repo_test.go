package rebates

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/suncrest-energy/solarquote-backend/pkg/db/models"
	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
)

func setupRebatesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS rebate_definitions (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  calculation_type TEXT NOT NULL,
  value NUMERIC NOT NULL DEFAULT 0,
  formula TEXT,
  cap NUMERIC,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestRepositoryListActive(t *testing.T) {
	db := setupRebatesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cap := decimal.NewFromInt(5000)
	active := &models.RebateDefinition{
		ID:              uuid.New(),
		Name:            "federal-SRES",
		Category:        enums.RebateCategoryFederalSolar,
		CalculationType: enums.RebateCalculationPerUnit,
		Value:           decimal.NewFromInt(500),
		Cap:             &cap,
		IsActive:        true,
	}
	retired := &models.RebateDefinition{
		ID:              uuid.New(),
		Name:            "old-scheme",
		Category:        enums.RebateCategoryStateBattery,
		CalculationType: enums.RebateCalculationPercentage,
		Value:           decimal.NewFromInt(10),
		IsActive:        false,
	}

	_, err := repo.Create(ctx, active)
	require.NoError(t, err)
	_, err = repo.Create(ctx, retired)
	require.NoError(t, err)

	defs, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "federal-SRES", defs[0].Name)
	assert.True(t, defs[0].Value.Equal(decimal.NewFromInt(500)))
	require.NotNil(t, defs[0].Cap)
	assert.True(t, defs[0].Cap.Equal(cap))
}

func TestRepositoryCreatePersistsInactive(t *testing.T) {
	db := setupRebatesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	retired := &models.RebateDefinition{
		ID:              uuid.New(),
		Name:            "withdrawn-scheme",
		Category:        enums.RebateCategoryStateBattery,
		CalculationType: enums.RebateCalculationPercentage,
		Value:           decimal.NewFromInt(10),
		IsActive:        false,
	}
	_, err := repo.Create(ctx, retired)
	require.NoError(t, err)

	// the column default must not override an explicit false on insert
	var stored models.RebateDefinition
	require.NoError(t, db.First(&stored, "id = ?", retired.ID).Error)
	assert.False(t, stored.IsActive)
}
