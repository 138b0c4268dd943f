package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/suncrest-energy/solarquote-backend/internal/battery"
	"github.com/suncrest-energy/solarquote-backend/internal/catalog"
	"github.com/suncrest-energy/solarquote-backend/internal/installation"
	"github.com/suncrest-energy/solarquote-backend/internal/rebates"
	"github.com/suncrest-energy/solarquote-backend/pkg/db"
	"github.com/suncrest-energy/solarquote-backend/pkg/db/models"
	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
	pkgerrors "github.com/suncrest-energy/solarquote-backend/pkg/errors"
	"github.com/suncrest-energy/solarquote-backend/pkg/logger"
	"github.com/suncrest-energy/solarquote-backend/pkg/metrics"
	"github.com/suncrest-energy/solarquote-backend/pkg/pagination"
	"github.com/suncrest-energy/solarquote-backend/pkg/types"
)

// expireBatchSize bounds how many quotes one sweep pass touches.
const expireBatchSize = 500

// Service is the quote assembler: it resolves hardware, runs the pricing
// pipeline and owns the quote lifecycle.
type Service interface {
	Create(ctx context.Context, req CreateQuoteRequest) (*models.Quote, error)
	Estimate(ctx context.Context, req CreateQuoteRequest) (*Computed, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, params pagination.Params) ([]models.Quote, string, error)
	Recalculate(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	Finalize(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	Accept(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	ExpireStale(ctx context.Context, asOf time.Time) (int, error)
}

// Dependencies wires the service collaborators.
type Dependencies struct {
	Quotes      Repository
	Catalog     catalog.Repository
	CostConfigs installation.Repository
	Rebates     rebates.Repository
	Settings    Settings
	Logger      *logger.Logger
	Metrics     *metrics.EngineMetrics
	Now         func() time.Time
}

type service struct {
	quotes      Repository
	catalog     catalog.Repository
	costConfigs installation.Repository
	rebates     rebates.Repository
	settings    Settings
	logger      *logger.Logger
	metrics     *metrics.EngineMetrics
	now         func() time.Time
}

// NewService builds the quote service.
func NewService(deps Dependencies) (Service, error) {
	if deps.Quotes == nil {
		return nil, fmt.Errorf("quote repository required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if deps.CostConfigs == nil {
		return nil, fmt.Errorf("cost config repository required")
	}
	if deps.Rebates == nil {
		return nil, fmt.Errorf("rebate repository required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &service{
		quotes:      deps.Quotes,
		catalog:     deps.Catalog,
		costConfigs: deps.CostConfigs,
		rebates:     deps.Rebates,
		settings:    deps.Settings,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		now:         deps.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, req CreateQuoteRequest) (*models.Quote, error) {
	input, err := s.resolveInput(ctx, req)
	if err != nil {
		s.metrics.IncFailure("create")
		return nil, err
	}

	computed, err := s.calculate(ctx, "create", input)
	if err != nil {
		return nil, err
	}

	status := enums.QuoteStatusQuoted
	if req.Draft {
		status = enums.QuoteStatusDraft
	}
	quote := s.buildQuote(input, computed, status)

	created, err := s.quotes.Create(ctx, quote)
	if err != nil && db.IsUniqueViolation(err, "") {
		// reference collision; retry once with a fresh code
		quote.Reference = NewReference(s.now())
		created, err = s.quotes.Create(ctx, quote)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist quote")
	}

	ctx = s.logger.WithQuoteRef(s.logger.WithQuoteID(ctx, created.ID.String()), created.Reference)
	s.logger.Info(ctx, "quote created")
	return created, nil
}

// Estimate runs the full pipeline without persisting anything.
func (s *service) Estimate(ctx context.Context, req CreateQuoteRequest) (*Computed, error) {
	input, err := s.resolveInput(ctx, req)
	if err != nil {
		s.metrics.IncFailure("estimate")
		return nil, err
	}
	computed, err := s.calculate(ctx, "estimate", input)
	if err != nil {
		return nil, err
	}
	return &computed, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	return s.quotes.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]models.Quote, string, error) {
	return s.quotes.List(ctx, params)
}

func (s *service) Recalculate(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	quote, err := s.quotes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !quote.Status.IsRecalculable() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("quote in status %s cannot be recalculated", quote.Status))
	}

	input, err := s.rebuildInput(ctx, quote)
	if err != nil {
		s.metrics.IncFailure("recalculate")
		return nil, err
	}
	computed, err := s.calculate(ctx, "recalculate", input)
	if err != nil {
		return nil, err
	}

	expected := quote.RowVersion
	s.applyComputed(quote, computed)
	if err := s.quotes.UpdateVersioned(ctx, quote, expected); err != nil {
		return nil, err
	}

	ctx = s.logger.WithQuoteRef(s.logger.WithQuoteID(ctx, quote.ID.String()), quote.Reference)
	s.logger.Info(ctx, "quote recalculated")
	return quote, nil
}

// Finalize promotes a draft to a customer-facing quote. Acceptance is only
// reachable through this step.
func (s *service) Finalize(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	quote, err := s.quotes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.Status != enums.QuoteStatusDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("quote in status %s cannot be finalized", quote.Status))
	}

	if quote.ValidUntil.Before(s.now().UTC()) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quote validity window has elapsed")
	}

	expected := quote.RowVersion
	quote.Status = enums.QuoteStatusQuoted
	if err := s.quotes.UpdateVersioned(ctx, quote, expected); err != nil {
		return nil, err
	}

	ctx = s.logger.WithQuoteRef(s.logger.WithQuoteID(ctx, quote.ID.String()), quote.Reference)
	s.logger.Info(ctx, "quote finalized")
	return quote, nil
}

func (s *service) Accept(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	quote, err := s.quotes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !quote.Status.CanTransition(enums.QuoteStatusAccepted) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("quote in status %s cannot be accepted", quote.Status))
	}

	now := s.now().UTC()
	if quote.ValidUntil.Before(now) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quote validity window has elapsed")
	}

	expected := quote.RowVersion
	quote.Status = enums.QuoteStatusAccepted
	quote.AcceptedAt = &now
	if err := s.quotes.UpdateVersioned(ctx, quote, expected); err != nil {
		return nil, err
	}

	ctx = s.logger.WithQuoteRef(s.logger.WithQuoteID(ctx, quote.ID.String()), quote.Reference)
	s.logger.Info(ctx, "quote accepted")
	return quote, nil
}

// ExpireStale marks unsigned quotes past their validity window as expired.
// Per-quote failures are collected, never abort the sweep; a version conflict
// means another writer got there first and is not an error.
func (s *service) ExpireStale(ctx context.Context, asOf time.Time) (int, error) {
	stale, err := s.quotes.ListExpirable(ctx, asOf, expireBatchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expirable quotes")
	}

	var expired int
	var errs error
	for i := range stale {
		quote := stale[i]
		expected := quote.RowVersion
		quote.Status = enums.QuoteStatusExpired
		if err := s.quotes.UpdateVersioned(ctx, &quote, expected); err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("expire quote %s: %w", quote.ID, err))
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.Info(s.logger.WithField(ctx, "expired", expired), "stale quotes expired")
	}
	return expired, errs
}

// calculate wraps the pure calculator with metrics and formula failure
// bookkeeping.
func (s *service) calculate(ctx context.Context, operation string, input Input) (Computed, error) {
	start := s.now()
	computed, err := Calculate(input)
	s.metrics.ObserveDuration(operation, s.now().Sub(start))
	if err != nil {
		s.metrics.IncFailure(operation)
		return Computed{}, err
	}
	s.metrics.IncSuccess(operation)

	for _, item := range computed.RebateLineItems {
		if item.Failed {
			s.metrics.IncFormulaFailure(item.Name)
			s.logger.Warn(s.logger.WithField(ctx, "rebate", item.Name),
				"rebate definition contributed nothing: "+item.FailureNote)
		}
	}
	return computed, nil
}

// resolveInput loads everything the calculator needs into an immutable
// snapshot: resolved hardware, the regional cost config and the active
// rebate definitions.
func (s *service) resolveInput(ctx context.Context, req CreateQuoteRequest) (Input, error) {
	profile, err := req.Profile.Profile()
	if err != nil {
		return Input{}, err
	}
	site, err := req.Site.SiteAttributes()
	if err != nil {
		return Input{}, err
	}

	panel, inverter, batterySel, err := s.resolveHardware(ctx, profile, req.Selection)
	if err != nil {
		return Input{}, err
	}

	costConfig, err := s.loadCostConfig(ctx, req.Region)
	if err != nil {
		return Input{}, err
	}
	definitions, err := s.rebates.ListActive(ctx)
	if err != nil {
		return Input{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rebate definitions")
	}

	return Input{
		Profile:     profile,
		Region:      req.Region,
		Panel:       panel,
		Inverter:    inverter,
		Battery:     batterySel,
		Site:        site,
		Extras:      req.Extras,
		CostConfig:  costConfig,
		Definitions: definitions,
		Settings:    s.settings,
		Now:         s.now(),
	}, nil
}

func (s *service) resolveHardware(ctx context.Context, profile types.EnergyProfile, sel SelectionRequest) (catalog.Selection, catalog.Selection, *catalog.Selection, error) {
	var none catalog.Selection
	if !sel.SystemSizeKw.IsPositive() {
		return none, none, nil, pkgerrors.New(pkgerrors.CodeValidation, "system size must be positive")
	}
	tier := sel.PreferredTier()

	panel, err := s.resolvePanel(ctx, sel, tier)
	if err != nil {
		return none, none, nil, err
	}
	inverter, err := s.resolveInverter(ctx, sel, tier)
	if err != nil {
		return none, none, nil, err
	}
	batterySel, err := s.resolveBattery(ctx, profile, sel, tier)
	if err != nil {
		return none, none, nil, err
	}
	return panel, inverter, batterySel, nil
}

func (s *service) resolvePanel(ctx context.Context, sel SelectionRequest, tier enums.ProductTier) (catalog.Selection, error) {
	if sel.PanelID != nil {
		product, err := s.findProduct(ctx, *sel.PanelID, enums.ProductTypePanel)
		if err != nil {
			return catalog.Selection{}, err
		}
		if product.WattageW == nil || !product.WattageW.IsPositive() {
			return catalog.Selection{}, pkgerrors.New(pkgerrors.CodeConfiguration, "selected panel has no wattage")
		}
		watts := sel.SystemSizeKw.Mul(decimal.NewFromInt(1000))
		count := int(watts.Div(*product.WattageW).Ceil().IntPart())
		if count < 1 {
			count = 1
		}
		return catalog.Selection{Product: *product, Quantity: count}, nil
	}

	panels, err := s.catalog.ListActiveByType(ctx, enums.ProductTypePanel)
	if err != nil {
		return catalog.Selection{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load panel catalog")
	}
	return catalog.SelectPanel(panels, sel.SystemSizeKw, tier)
}

func (s *service) resolveInverter(ctx context.Context, sel SelectionRequest, tier enums.ProductTier) (catalog.Selection, error) {
	if sel.InverterID != nil {
		product, err := s.findProduct(ctx, *sel.InverterID, enums.ProductTypeInverter)
		if err != nil {
			return catalog.Selection{}, err
		}
		return catalog.Selection{Product: *product, Quantity: 1}, nil
	}

	inverters, err := s.catalog.ListActiveByType(ctx, enums.ProductTypeInverter)
	if err != nil {
		return catalog.Selection{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inverter catalog")
	}
	return catalog.SelectInverter(inverters, sel.SystemSizeKw, tier)
}

// resolveBattery returns nil when no battery is wanted. When a capacity is
// not supplied the advisor sizes one from the overnight load.
func (s *service) resolveBattery(ctx context.Context, profile types.EnergyProfile, sel SelectionRequest, tier enums.ProductTier) (*catalog.Selection, error) {
	if sel.BatteryID != nil {
		product, err := s.findProduct(ctx, *sel.BatteryID, enums.ProductTypeBattery)
		if err != nil {
			return nil, err
		}
		if product.CapacityKwh == nil || !product.CapacityKwh.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "selected battery has no capacity")
		}
		quantity := 1
		if sel.BatteryKwh != nil && sel.BatteryKwh.GreaterThan(product.CapacityKwh.Mul(decimal.RequireFromString("1.3"))) {
			quantity = int(sel.BatteryKwh.Div(*product.CapacityKwh).Ceil().IntPart())
		}
		return &catalog.Selection{Product: *product, Quantity: quantity}, nil
	}

	if !sel.IncludeBattery {
		return nil, nil
	}

	targetKwh := decimal.Zero
	if sel.BatteryKwh != nil {
		targetKwh = *sel.BatteryKwh
	} else {
		rec, err := battery.Recommend(s.settings.Battery, battery.Inputs{
			NighttimeKwh:   profile.NighttimeKwh,
			EveningKwh:     profile.EveningKwh,
			EVOvernightKwh: profile.OvernightEVChargeKwh(),
		})
		if err != nil {
			return nil, err
		}
		targetKwh = rec.RecommendedKwh
	}

	batteries, err := s.catalog.ListActiveByType(ctx, enums.ProductTypeBattery)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load battery catalog")
	}
	selection, err := catalog.SelectBattery(batteries, targetKwh, tier)
	if err != nil {
		return nil, err
	}
	return &selection, nil
}

func (s *service) findProduct(ctx context.Context, id uuid.UUID, expected enums.ProductType) (*models.Product, error) {
	found, err := s.catalog.FindByIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if len(found) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", id))
	}
	product := found[0]
	if product.Type != expected {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("product %s is a %s, expected %s", id, product.Type, expected))
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("product %s is no longer active", id))
	}
	return &product, nil
}

// loadCostConfig resolves the subcontractor rate table for the region; the
// customer-facing path never prices off the internal track.
func (s *service) loadCostConfig(ctx context.Context, region string) (models.InstallationCostConfig, error) {
	cfg, err := s.costConfigs.FindActive(ctx, region, enums.RateTrackSubcontractor)
	if err != nil {
		return models.InstallationCostConfig{}, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err,
			fmt.Sprintf("no active installation cost config for region %s", region))
	}
	loaded := *cfg
	if loaded.CommissionPercent.IsZero() {
		loaded.CommissionPercent = s.settings.CommissionPercent
	}
	return loaded, nil
}

// rebuildInput replays a stored quote against the current catalog, cost
// config and rebate definitions. Recalculation deliberately reprices with
// today's configuration; the stored snapshot only fixes what was chosen.
func (s *service) rebuildInput(ctx context.Context, quote *models.Quote) (Input, error) {
	var ids []uuid.UUID
	for _, snap := range quote.Products {
		ids = append(ids, snap.ID)
	}
	found, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return Input{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quoted products")
	}
	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, product := range found {
		byID[product.ID] = product
	}

	var panel, inverter catalog.Selection
	var batterySel *catalog.Selection
	for _, snap := range quote.Products {
		product, ok := byID[snap.ID]
		if !ok {
			return Input{}, pkgerrors.New(pkgerrors.CodeConfiguration,
				fmt.Sprintf("quoted product %s no longer exists", snap.ID))
		}
		selection := catalog.Selection{Product: product, Quantity: snap.Quantity}
		switch product.Type {
		case enums.ProductTypePanel:
			panel = selection
		case enums.ProductTypeInverter:
			inverter = selection
		case enums.ProductTypeBattery:
			b := selection
			batterySel = &b
		}
	}
	if panel.Quantity == 0 || inverter.Quantity == 0 {
		return Input{}, pkgerrors.New(pkgerrors.CodeConfiguration, "stored quote is missing panel or inverter")
	}

	costConfig, err := s.loadCostConfig(ctx, quote.Region)
	if err != nil {
		return Input{}, err
	}
	definitions, err := s.rebates.ListActive(ctx)
	if err != nil {
		return Input{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rebate definitions")
	}

	return Input{
		Profile:     quote.EnergyProfile,
		Region:      quote.Region,
		Panel:       panel,
		Inverter:    inverter,
		Battery:     batterySel,
		Site:        quote.SiteDetails,
		Extras:      quote.Extras,
		CostConfig:  costConfig,
		Definitions: definitions,
		Settings:    s.settings,
		Now:         s.now(),
	}, nil
}

func (s *service) buildQuote(input Input, computed Computed, status enums.QuoteStatus) *models.Quote {
	quote := &models.Quote{
		ID:            uuid.New(),
		Reference:     NewReference(s.now()),
		Region:        input.Region,
		Status:        status,
		RowVersion:    1,
		EnergyProfile: input.Profile,
		SiteDetails:   input.Site,
		Extras:        input.Extras,
	}
	s.applyComputed(quote, computed)
	return quote
}

func (s *service) applyComputed(quote *models.Quote, computed Computed) {
	quote.Products = computed.Products
	quote.SystemSizeKw = computed.SystemSizeKw
	quote.PanelCount = computed.PanelCount
	quote.BatterySizeKwh = computed.BatterySizeKwh
	quote.CostBreakdown = computed.CostBreakdown
	quote.InstallationTrail = computed.InstallationTrail
	quote.RebateLineItems = computed.RebateLineItems
	quote.RebateTotals = computed.RebateTotals
	quote.Subtotal = computed.Subtotal
	quote.TotalRebates = computed.TotalRebates
	quote.FinalPrice = computed.FinalPrice
	quote.RebatesExceed = computed.RebatesExceed
	quote.WholesaleCost = computed.WholesaleCost
	quote.GrossProfit = computed.GrossProfit
	quote.Savings = computed.Savings
	quote.ValidUntil = computed.ValidUntil
}
