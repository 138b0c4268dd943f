package rebates

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/internal/formula"
	"github.com/suncrest-energy/solarquote-backend/pkg/db/models"
	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
	pkgerrors "github.com/suncrest-energy/solarquote-backend/pkg/errors"
)

// Service exposes admin operations on rebate definitions.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.RebateDefinition, error)
	ValidateFormula(ctx context.Context, expression string) error
}

type service struct {
	repo Repository
}

// CreateInput carries a new rebate definition from the admin surface.
type CreateInput struct {
	Name            string
	Category        enums.RebateCategory
	CalculationType enums.RebateCalculationType
	Value           decimal.Decimal
	Formula         *string
	Cap             *decimal.Decimal
	IsActive        bool
}

// NewService builds the rebate admin service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rebates repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.RebateDefinition, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rebate name is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown rebate category")
	}
	if !input.CalculationType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown calculation type")
	}
	if input.Cap != nil && input.Cap.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cap must not be negative")
	}

	// formula definitions are validated before they can go live
	if input.CalculationType == enums.RebateCalculationFormula {
		if input.Formula == nil || *input.Formula == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "formula text is required for formula rebates")
		}
		if err := formula.Validate(*input.Formula); err != nil {
			return nil, err
		}
	}

	def := &models.RebateDefinition{
		Name:            input.Name,
		Category:        input.Category,
		CalculationType: input.CalculationType,
		Value:           input.Value,
		Formula:         input.Formula,
		Cap:             input.Cap,
		IsActive:        input.IsActive,
	}

	created, err := s.repo.Create(ctx, def)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist rebate definition")
	}
	return created, nil
}

func (s *service) ValidateFormula(_ context.Context, expression string) error {
	return formula.Validate(expression)
}
