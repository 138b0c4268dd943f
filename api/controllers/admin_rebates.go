package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/api/responses"
	"github.com/suncrest-energy/solarquote-backend/api/validators"
	"github.com/suncrest-energy/solarquote-backend/internal/rebates"
	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
	pkgerrors "github.com/suncrest-energy/solarquote-backend/pkg/errors"
	"github.com/suncrest-energy/solarquote-backend/pkg/logger"
)

type createRebateRequest struct {
	Name            string           `json:"name" validate:"required,min=2,max=120"`
	Category        string           `json:"category" validate:"required,oneof=federal_solar federal_battery state_battery"`
	CalculationType string           `json:"calculation_type" validate:"required,oneof=per_unit percentage formula"`
	Value           decimal.Decimal  `json:"value"`
	Formula         *string          `json:"formula"`
	Cap             *decimal.Decimal `json:"cap"`
	IsActive        bool             `json:"is_active"`
}

func (r createRebateRequest) toInput() (rebates.CreateInput, error) {
	category, err := enums.ParseRebateCategory(r.Category)
	if err != nil {
		return rebates.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rebate category")
	}
	calcType, err := enums.ParseRebateCalculationType(r.CalculationType)
	if err != nil {
		return rebates.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid calculation type")
	}
	return rebates.CreateInput{
		Name:            validators.SanitizeString(r.Name, 120),
		Category:        category,
		CalculationType: calcType,
		Value:           r.Value,
		Formula:         r.Formula,
		Cap:             r.Cap,
		IsActive:        r.IsActive,
	}, nil
}

type validateFormulaRequest struct {
	Formula string `json:"formula" validate:"required"`
}

func AdminRebateCreate(svc rebates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRebateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		def, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, def)
	}
}

// AdminRebateValidateFormula dry-runs a formula through the evaluator so
// admins can check an expression before saving a definition with it.
func AdminRebateValidateFormula(svc rebates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateFormulaRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ValidateFormula(r.Context(), req.Formula); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"valid": true})
	}
}
