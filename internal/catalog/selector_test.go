package catalog

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/suncrest-energy/solarquote-backend/pkg/db/models"
	"github.com/suncrest-energy/solarquote-backend/pkg/enums"
)

func panel(name string, wattage, unitCost int64, tier enums.ProductTier) models.Product {
	w := decimal.NewFromInt(wattage)
	return models.Product{
		Type: enums.ProductTypePanel, Manufacturer: "Acme", Name: name, SKU: name,
		Tier: tier, WattageW: &w,
		UnitCost: decimal.NewFromInt(unitCost), RetailPrice: decimal.NewFromInt(unitCost * 2),
		IsActive: true,
	}
}

func inverter(name string, capacityKw string, unitCost int64) models.Product {
	kw := decimal.RequireFromString(capacityKw)
	return models.Product{
		Type: enums.ProductTypeInverter, Manufacturer: "Acme", Name: name, SKU: name,
		Tier: enums.ProductTierMid, CapacityKw: &kw,
		UnitCost: decimal.NewFromInt(unitCost), RetailPrice: decimal.NewFromInt(unitCost * 2),
		IsActive: true,
	}
}

func battery(name string, capacityKwh string, unitCost int64) models.Product {
	kwh := decimal.RequireFromString(capacityKwh)
	return models.Product{
		Type: enums.ProductTypeBattery, Manufacturer: "Acme", Name: name, SKU: name,
		Tier: enums.ProductTierMid, CapacityKwh: &kwh,
		UnitCost: decimal.NewFromInt(unitCost), RetailPrice: decimal.NewFromInt(unitCost * 2),
		IsActive: true,
	}
}

func TestSelectPanelCheapestPerWatt(t *testing.T) {
	products := []models.Product{
		panel("pricey-440", 440, 220, enums.ProductTierPremium),
		panel("value-415", 415, 166, enums.ProductTierMid), // 0.40 per watt
		panel("cheap-300", 300, 135, enums.ProductTierBudget),
	}

	sel, err := SelectPanel(products, decimal.RequireFromString("6.6"), "")
	if err != nil {
		t.Fatalf("SelectPanel failed: %v", err)
	}
	if sel.Product.Name != "value-415" {
		t.Fatalf("expected value-415, got %s", sel.Product.Name)
	}
	// 6600 W / 415 W = 15.9, rounds up to 16 panels
	if sel.Quantity != 16 {
		t.Fatalf("expected 16 panels, got %d", sel.Quantity)
	}
}

func TestSelectPanelSkipsInactive(t *testing.T) {
	inactive := panel("retired", 500, 100, enums.ProductTierMid)
	inactive.IsActive = false
	products := []models.Product{inactive, panel("current", 440, 200, enums.ProductTierMid)}

	sel, err := SelectPanel(products, decimal.NewFromInt(5), "")
	if err != nil {
		t.Fatalf("SelectPanel failed: %v", err)
	}
	if sel.Product.Name != "current" {
		t.Fatalf("inactive product must never be selected, got %s", sel.Product.Name)
	}
}

func TestSelectPanelEmptyCatalog(t *testing.T) {
	if _, err := SelectPanel(nil, decimal.NewFromInt(5), ""); err == nil {
		t.Fatal("expected configuration error for an empty catalog")
	}
}

func TestSelectPanelTierPreference(t *testing.T) {
	products := []models.Product{
		panel("budget-cheap", 415, 100, enums.ProductTierBudget),
		panel("premium-pick", 440, 250, enums.ProductTierPremium),
	}

	sel, err := SelectPanel(products, decimal.NewFromInt(5), enums.ProductTierPremium)
	if err != nil {
		t.Fatalf("SelectPanel failed: %v", err)
	}
	if sel.Product.Name != "premium-pick" {
		t.Fatalf("tier preference must narrow candidates, got %s", sel.Product.Name)
	}

	// A tier with no stock falls back to the whole catalog.
	sel, err = SelectPanel([]models.Product{products[0]}, decimal.NewFromInt(5), enums.ProductTierPremium)
	if err != nil {
		t.Fatalf("SelectPanel failed: %v", err)
	}
	if sel.Product.Name != "budget-cheap" {
		t.Fatalf("empty tier must fall back, got %s", sel.Product.Name)
	}
}

func TestSelectInverterSizingWindow(t *testing.T) {
	products := []models.Product{
		inverter("under-5", "5", 1200),
		inverter("fit-7", "7", 1500),
		inverter("fit-8-cheaper", "8", 1400),
		inverter("over-10", "10", 1300),
	}

	// window for 6.6 kW is [6.6, 8.58]; the cheaper of the two fits wins
	sel, err := SelectInverter(products, decimal.RequireFromString("6.6"), "")
	if err != nil {
		t.Fatalf("SelectInverter failed: %v", err)
	}
	if sel.Product.Name != "fit-8-cheaper" {
		t.Fatalf("expected fit-8-cheaper, got %s", sel.Product.Name)
	}
	if sel.Quantity != 1 {
		t.Fatalf("expected a single inverter, got %d", sel.Quantity)
	}
}

func TestSelectInverterFallsBackToClosest(t *testing.T) {
	products := []models.Product{
		inverter("small-3", "3", 900),
		inverter("big-15", "15", 2500),
	}

	sel, err := SelectInverter(products, decimal.RequireFromString("6.6"), "")
	if err != nil {
		t.Fatalf("SelectInverter failed: %v", err)
	}
	if sel.Product.Name != "small-3" {
		t.Fatalf("expected closest capacity small-3, got %s", sel.Product.Name)
	}
}

func TestSelectBatterySingleUnitWithinTolerance(t *testing.T) {
	products := []models.Product{
		battery("ten", "10", 6000),
		battery("thirteen-five", "13.5", 7800),
		battery("sixteen", "16", 9500),
	}

	// 13 kWh requested, 20% window is [10.4, 15.6]; only 13.5 fits
	sel, err := SelectBattery(products, decimal.NewFromInt(13), "")
	if err != nil {
		t.Fatalf("SelectBattery failed: %v", err)
	}
	if sel.Product.Name != "thirteen-five" {
		t.Fatalf("expected in-window unit thirteen-five, got %s", sel.Product.Name)
	}
	if sel.Quantity != 1 {
		t.Fatalf("expected one unit, got %d", sel.Quantity)
	}
}

func TestSelectBatteryStacksLargeRequests(t *testing.T) {
	products := []models.Product{
		battery("ten", "10", 6000),
		battery("thirteen-five", "13.5", 7425), // 550 per kWh, best value
	}

	// 30 kWh > 1.3 x 13.5; stack the best-value unit: ceil(30/13.5) = 3
	sel, err := SelectBattery(products, decimal.NewFromInt(30), "")
	if err != nil {
		t.Fatalf("SelectBattery failed: %v", err)
	}
	if sel.Product.Name != "thirteen-five" {
		t.Fatalf("expected best-value unit, got %s", sel.Product.Name)
	}
	if sel.Quantity != 3 {
		t.Fatalf("expected 3 stacked units, got %d", sel.Quantity)
	}
}

func TestSelectBatteryClosestOutsideTolerance(t *testing.T) {
	products := []models.Product{
		battery("ten", "10", 6000),
		battery("sixteen", "16", 9500),
	}

	// 13 kWh with a 2.6 tolerance excludes both units; they tie on distance
	// and the cheaper retail price wins
	sel, err := SelectBattery(products, decimal.NewFromInt(13), "")
	if err != nil {
		t.Fatalf("SelectBattery failed: %v", err)
	}
	if sel.Product.Name != "ten" {
		t.Fatalf("expected tie broken by price, got %s", sel.Product.Name)
	}
}

func TestSnapshotFreezesPricing(t *testing.T) {
	p := battery("thirteen-five", "13.5", 7800)
	snap := Snapshot(p, 2)

	if snap.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", snap.Quantity)
	}
	if !snap.LineTotal.Equal(decimal.NewFromInt(31200)) {
		t.Fatalf("expected line total 31200, got %s", snap.LineTotal)
	}
	if !snap.CapacityKwh.Equal(decimal.RequireFromString("13.5")) {
		t.Fatalf("expected capacity carried onto the snapshot, got %s", snap.CapacityKwh)
	}
}
