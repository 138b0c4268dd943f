package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/pkg/db/models"
	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
	pkgerrors "github.com/suncrest-energy/solarquote-backend/pkg/errors"
	"github.com/suncrest-energy/solarquote-backend/pkg/types"
)

// Inverter sizing window: a match must cover the array size without
// exceeding 130% of it. The same ratio gates when batteries stack into
// multiple units instead of one oversized unit.
var oversizeRatio = decimal.RequireFromString("1.3")

// Battery single-unit match tolerance.
var batteryTolerance = decimal.RequireFromString("0.2")

// Selection is an auto-selected product with its unit count.
type Selection struct {
	Product  models.Product
	Quantity int
}

// SelectPanel picks the active panel with the lowest cost per watt and sizes
// the count to reach the requested system size. Tier narrows the candidates
// when the tier has stock; an empty tier considers everything.
func SelectPanel(products []models.Product, systemSizeKw decimal.Decimal, tier enums.ProductTier) (Selection, error) {
	candidates := filterByTier(withSize(products, func(p models.Product) *decimal.Decimal { return p.WattageW }), tier)
	if len(candidates) == 0 {
		return Selection{}, pkgerrors.New(pkgerrors.CodeConfiguration, "no active panel products in catalog")
	}

	best := candidates[0]
	bestPerWatt := best.UnitCost.Div(*best.WattageW)
	for _, p := range candidates[1:] {
		perWatt := p.UnitCost.Div(*p.WattageW)
		if perWatt.LessThan(bestPerWatt) {
			best, bestPerWatt = p, perWatt
		}
	}

	watts := systemSizeKw.Mul(decimal.NewFromInt(1000))
	count := int(watts.Div(*best.WattageW).Ceil().IntPart())
	if count < 1 {
		count = 1
	}
	return Selection{Product: best, Quantity: count}, nil
}

// SelectInverter picks the cheapest active inverter whose capacity sits in
// [systemSizeKw, 1.3 x systemSizeKw]. When nothing lands in the window the
// closest capacity wins, cheaper on ties.
func SelectInverter(products []models.Product, systemSizeKw decimal.Decimal, tier enums.ProductTier) (Selection, error) {
	candidates := filterByTier(withSize(products, func(p models.Product) *decimal.Decimal { return p.CapacityKw }), tier)
	if len(candidates) == 0 {
		return Selection{}, pkgerrors.New(pkgerrors.CodeConfiguration, "no active inverter products in catalog")
	}

	ceiling := systemSizeKw.Mul(oversizeRatio)
	var inWindow []models.Product
	for _, p := range candidates {
		if p.CapacityKw.GreaterThanOrEqual(systemSizeKw) && p.CapacityKw.LessThanOrEqual(ceiling) {
			inWindow = append(inWindow, p)
		}
	}
	if len(inWindow) > 0 {
		return Selection{Product: cheapest(inWindow), Quantity: 1}, nil
	}

	return Selection{
		Product:  closestBySize(candidates, systemSizeKw, func(p models.Product) decimal.Decimal { return *p.CapacityKw }),
		Quantity: 1,
	}, nil
}

// SelectBattery picks a battery for the requested capacity. A single unit
// within 20% of the request wins on price. A request beyond 1.3x the largest
// unit stacks the best-value unit, ceil(requested/unit) of them. Otherwise
// the closest single unit wins.
func SelectBattery(products []models.Product, requestedKwh decimal.Decimal, tier enums.ProductTier) (Selection, error) {
	candidates := filterByTier(withSize(products, func(p models.Product) *decimal.Decimal { return p.CapacityKwh }), tier)
	if len(candidates) == 0 {
		return Selection{}, pkgerrors.New(pkgerrors.CodeConfiguration, "no active battery products in catalog")
	}

	tolerance := requestedKwh.Mul(batteryTolerance)
	var inWindow []models.Product
	largest := *candidates[0].CapacityKwh
	for _, p := range candidates {
		if p.CapacityKwh.Sub(requestedKwh).Abs().LessThanOrEqual(tolerance) {
			inWindow = append(inWindow, p)
		}
		if p.CapacityKwh.GreaterThan(largest) {
			largest = *p.CapacityKwh
		}
	}
	if len(inWindow) > 0 {
		return Selection{Product: cheapest(inWindow), Quantity: 1}, nil
	}

	if requestedKwh.GreaterThan(largest.Mul(oversizeRatio)) {
		best := candidates[0]
		bestPerKwh := best.UnitCost.Div(*best.CapacityKwh)
		for _, p := range candidates[1:] {
			perKwh := p.UnitCost.Div(*p.CapacityKwh)
			if perKwh.LessThan(bestPerKwh) {
				best, bestPerKwh = p, perKwh
			}
		}
		units := int(requestedKwh.Div(*best.CapacityKwh).Ceil().IntPart())
		return Selection{Product: best, Quantity: units}, nil
	}

	return Selection{
		Product:  closestBySize(candidates, requestedKwh, func(p models.Product) decimal.Decimal { return *p.CapacityKwh }),
		Quantity: 1,
	}, nil
}

// Snapshot freezes a selection into the quote's persisted product record.
func Snapshot(p models.Product, quantity int) types.ProductSnapshot {
	snap := types.ProductSnapshot{
		ID:           p.ID,
		Type:         p.Type,
		Manufacturer: p.Manufacturer,
		Name:         p.Name,
		Tier:         p.Tier,
		UnitCost:     p.UnitCost,
		RetailPrice:  p.RetailPrice,
		Quantity:     quantity,
		LineTotal:    p.RetailPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
	}
	if p.WattageW != nil {
		snap.WattageW = *p.WattageW
	}
	if p.CapacityKw != nil {
		snap.CapacityKw = *p.CapacityKw
	}
	if p.CapacityKwh != nil {
		snap.CapacityKwh = *p.CapacityKwh
	}
	return snap
}

func withSize(products []models.Product, size func(models.Product) *decimal.Decimal) []models.Product {
	var out []models.Product
	for _, p := range products {
		if s := size(p); p.IsActive && s != nil && s.IsPositive() {
			out = append(out, p)
		}
	}
	return out
}

func filterByTier(products []models.Product, tier enums.ProductTier) []models.Product {
	if tier == "" {
		return products
	}
	var out []models.Product
	for _, p := range products {
		if p.Tier == tier {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		// A tier with no stock falls back to the full catalog rather than
		// failing the quote.
		return products
	}
	return out
}

func cheapest(products []models.Product) models.Product {
	best := products[0]
	for _, p := range products[1:] {
		if p.UnitCost.LessThan(best.UnitCost) {
			best = p
		}
	}
	return best
}

func closestBySize(products []models.Product, target decimal.Decimal, size func(models.Product) decimal.Decimal) models.Product {
	best := products[0]
	bestDistance := size(best).Sub(target).Abs()
	for _, p := range products[1:] {
		distance := size(p).Sub(target).Abs()
		if distance.LessThan(bestDistance) ||
			(distance.Equal(bestDistance) && p.RetailPrice.LessThan(best.RetailPrice)) {
			best, bestDistance = p, distance
		}
	}
	return best
}
