package quotes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suncrest-energy/solarquote-backend/pkg/db/models"
	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
	pkgerrors "github.com/suncrest-energy/solarquote-backend/pkg/errors"
	"github.com/suncrest-energy/solarquote-backend/pkg/pagination"
)

// Repository persists quotes. Quotes are never deleted; lifecycle changes go
// through UpdateVersioned so concurrent transitions cannot race.
type Repository interface {
	Create(ctx context.Context, quote *models.Quote) (*models.Quote, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, params pagination.Params) ([]models.Quote, string, error)
	UpdateVersioned(ctx context.Context, quote *models.Quote, expectedVersion int) error
	ListExpirable(ctx context.Context, asOf time.Time, limit int) ([]models.Quote, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a quote repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if err := r.db.WithContext(ctx).Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&quote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, err
	}
	return &quote, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params) ([]models.Quote, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var quotes []models.Quote
	if err := query.Find(&quotes).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(quotes) > limit {
		quotes = quotes[:limit]
		last := quotes[len(quotes)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return quotes, next, nil
}

// UpdateVersioned writes the quote only when the stored row_version still
// matches; the version is bumped as part of the same statement. A mismatch
// means a concurrent transition won and surfaces as CONFLICT.
func (r *repository) UpdateVersioned(ctx context.Context, quote *models.Quote, expectedVersion int) error {
	quote.RowVersion = expectedVersion + 1
	result := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("id = ? AND row_version = ?", quote.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(quote)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "quote was modified concurrently")
	}
	return nil
}

func (r *repository) ListExpirable(ctx context.Context, asOf time.Time, limit int) ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.db.WithContext(ctx).
		Where("status IN ? AND valid_until < ?", []enums.QuoteStatus{enums.QuoteStatusDraft, enums.QuoteStatusQuoted}, asOf).
		Order("valid_until ASC").
		Limit(limit).
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}
