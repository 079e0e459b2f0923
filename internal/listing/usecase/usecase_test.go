package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playrise/shopsim-warehouse-service/internal/apperr"
	"github.com/playrise/shopsim-warehouse-service/internal/listing"
	"github.com/playrise/shopsim-warehouse-service/internal/listing/dto"
	"github.com/playrise/shopsim-warehouse-service/internal/listing/repository"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/database"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/logger"
	pricingrepo "github.com/playrise/shopsim-warehouse-service/internal/pricing/repository"
	pricinguc "github.com/playrise/shopsim-warehouse-service/internal/pricing/usecase"
)

type fixture struct {
	db *sqlx.DB
	uc listing.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	pricing := pricinguc.NewPricingUseCase(pricingrepo.NewSQLRepository(db), logger.NewNop())
	uc := NewListingUseCase(repository.NewSQLRepository(db), pricing, nil, 1, logger.NewNop())
	return &fixture{db: db, uc: uc}
}

// seed creates warehouse w1 (company c1, zone z1, tier 2) holding 3 units of
// product p1, with a degenerate [5,5] demand band so the base draw is
// deterministic.
func (f *fixture) seed(t *testing.T) {
	t.Helper()
	now := time.Now().UTC()
	f.db.MustExec(`INSERT INTO warehouses (id, company_id, zone_id, country_code, name, tier, created_at, updated_at) VALUES ('w1', 'c1', 'z1', 'US', 'Main', 2, ?, ?)`, now, now)
	f.db.MustExec(`INSERT INTO categories (id, parent_id, name) VALUES ('cat1', NULL, 'Sneakers')`)
	f.db.MustExec(`INSERT INTO products (id, category_id, name, quality, suggested_price) VALUES ('p1', 'cat1', 'Runner', 'standard', 100)`)
	f.db.MustExec(`INSERT INTO inventory_items (id, warehouse_id, product_id, qty_on_hand, qty_reserved, avg_unit_cost, last_unit_cost, updated_at) VALUES ('item1', 'w1', 'p1', 3, 0, 40, 40, ?)`, now)
	f.db.MustExec(`INSERT INTO demand_bands (id, category_id, quality, tier, min_daily, max_daily) VALUES ('b1', 'cat1', 'standard', 2, 5, 5)`)
}

func TestCreateFreezesBand(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	l, err := f.uc.Create(context.Background(), &dto.CreateListingInput{
		CompanyID:       "c1",
		WarehouseID:     "w1",
		InventoryItemID: "item1",
		SalePrice:       100,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if l.TierUsed != 2 || l.BaseMinDaily != 5 || l.BaseMaxDaily != 5 {
		t.Fatalf("band got tier=%d [%d,%d] want tier=2 [5,5]", l.TierUsed, l.BaseMinDaily, l.BaseMaxDaily)
	}
	if l.BaseQty != 5 {
		t.Fatalf("base qty got=%d want=5", l.BaseQty)
	}
	if !l.BandMatched {
		t.Fatalf("expected a matched band")
	}
	if l.PriceMultiplier != 1 || l.BlockedByPrice {
		t.Fatalf("price snapshot got mult=%v blocked=%v want mult=1 blocked=false", l.PriceMultiplier, l.BlockedByPrice)
	}
}

func TestCreateConflictsOnDuplicate(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()

	input := &dto.CreateListingInput{CompanyID: "c1", WarehouseID: "w1", InventoryItemID: "item1", SalePrice: 100}
	if _, err := f.uc.Create(ctx, input); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := f.uc.Create(ctx, input)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("got err=%v want conflict", err)
	}
}

func TestCreateRejectsForeignWarehouse(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	_, err := f.uc.Create(context.Background(), &dto.CreateListingInput{
		CompanyID:       "intruder",
		WarehouseID:     "w1",
		InventoryItemID: "item1",
		SalePrice:       100,
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("got err=%v want not found", err)
	}
}

func TestUpdatePriceLeavesBandAlone(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()

	l, err := f.uc.Create(ctx, &dto.CreateListingInput{CompanyID: "c1", WarehouseID: "w1", InventoryItemID: "item1", SalePrice: 100})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := f.uc.UpdatePrice(ctx, &dto.UpdatePriceInput{CompanyID: "c1", ListingID: l.ID, SalePrice: 300})
	if err != nil {
		t.Fatalf("update price: %v", err)
	}
	if !updated.BlockedByPrice {
		t.Fatalf("300 against a suggested 100 must block demand")
	}
	if updated.BaseQty != l.BaseQty || updated.BaseMinDaily != l.BaseMinDaily || updated.TierUsed != l.TierUsed {
		t.Fatalf("price update mutated the band snapshot")
	}

	// Persisted state agrees.
	var stored model.Listing
	if err := f.db.Get(&stored, `SELECT * FROM listings WHERE id = ?`, l.ID); err != nil {
		t.Fatalf("reload listing: %v", err)
	}
	if stored.BaseQty != l.BaseQty || !stored.BlockedByPrice || stored.SalePrice != 300 {
		t.Fatalf("stored listing got base_qty=%d blocked=%v price=%v", stored.BaseQty, stored.BlockedByPrice, stored.SalePrice)
	}
}

func TestGenerateDemandCapsReservationAtStock(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()

	if _, err := f.uc.Create(ctx, &dto.CreateListingInput{CompanyID: "c1", WarehouseID: "w1", InventoryItemID: "item1", SalePrice: 100}); err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := f.uc.GenerateDemand(ctx, "c1", "w1", "2026-03-05")
	if err != nil {
		t.Fatalf("generate demand: %v", err)
	}
	if result.RowsCreated != 1 {
		t.Fatalf("rows got=%d want=1", result.RowsCreated)
	}
	if result.UnitsOrdered != 5 {
		t.Fatalf("ordered got=%d want=5", result.UnitsOrdered)
	}
	// Only 3 on hand, so the reservation is capped below the order.
	if result.UnitsReserved != 3 {
		t.Fatalf("reserved got=%d want=3", result.UnitsReserved)
	}

	var reserved int64
	if err := f.db.Get(&reserved, `SELECT qty_reserved FROM inventory_items WHERE id = 'item1'`); err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if reserved != 3 {
		t.Fatalf("qty_reserved got=%d want=3", reserved)
	}
}

func TestGenerateDemandIsOncePerDay(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()

	if _, err := f.uc.Create(ctx, &dto.CreateListingInput{CompanyID: "c1", WarehouseID: "w1", InventoryItemID: "item1", SalePrice: 100}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.uc.GenerateDemand(ctx, "c1", "w1", "2026-03-05"); err != nil {
		t.Fatalf("first run: %v", err)
	}

	replay, err := f.uc.GenerateDemand(ctx, "c1", "w1", "2026-03-05")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if replay.RowsCreated != 0 || replay.UnitsOrdered != 0 || replay.UnitsReserved != 0 {
		t.Fatalf("replay wrote rows=%d ordered=%d reserved=%d, want all zero", replay.RowsCreated, replay.UnitsOrdered, replay.UnitsReserved)
	}

	var reserved int64
	if err := f.db.Get(&reserved, `SELECT qty_reserved FROM inventory_items WHERE id = 'item1'`); err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if reserved != 3 {
		t.Fatalf("replay moved the reservation: got=%d want=3", reserved)
	}
}

func TestGenerateDemandBlockedListings(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()

	// p1: blocked by price. p2: blocked by season in March.
	now := time.Now().UTC()
	f.db.MustExec(`INSERT INTO categories (id, parent_id, name) VALUES ('cat2', NULL, 'Skis')`)
	f.db.MustExec(`INSERT INTO products (id, category_id, name, quality, suggested_price) VALUES ('p2', 'cat2', 'Alpine', 'standard', 200)`)
	f.db.MustExec(`INSERT INTO inventory_items (id, warehouse_id, product_id, qty_on_hand, qty_reserved, avg_unit_cost, last_unit_cost, updated_at) VALUES ('item2', 'w1', 'p2', 10, 0, 90, 90, ?)`, now)
	f.db.MustExec(`INSERT INTO demand_bands (id, category_id, quality, tier, min_daily, max_daily) VALUES ('b2', 'cat2', 'standard', 2, 4, 4)`)
	f.db.MustExec(`INSERT INTO season_factors (category_id, month, score) VALUES ('cat2', 3, 0)`)

	if _, err := f.uc.Create(ctx, &dto.CreateListingInput{CompanyID: "c1", WarehouseID: "w1", InventoryItemID: "item1", SalePrice: 300}); err != nil {
		t.Fatalf("create blocked-by-price listing: %v", err)
	}
	if _, err := f.uc.Create(ctx, &dto.CreateListingInput{CompanyID: "c1", WarehouseID: "w1", InventoryItemID: "item2", SalePrice: 200}); err != nil {
		t.Fatalf("create seasonal listing: %v", err)
	}

	result, err := f.uc.GenerateDemand(ctx, "c1", "w1", "2026-03-05")
	if err != nil {
		t.Fatalf("generate demand: %v", err)
	}
	if result.RowsCreated != 2 {
		t.Fatalf("rows got=%d want=2, blocked listings still get their day row", result.RowsCreated)
	}
	if result.UnitsOrdered != 0 || result.UnitsReserved != 0 {
		t.Fatalf("blocked listings ordered=%d reserved=%d, want zero", result.UnitsOrdered, result.UnitsReserved)
	}

	report, err := f.uc.DemandReport(ctx, "c1", "w1", "2026-03-05")
	if err != nil {
		t.Fatalf("demand report: %v", err)
	}
	if len(report) != 2 {
		t.Fatalf("report lines got=%d want=2", len(report))
	}
	for _, line := range report {
		switch line.ProductID {
		case "p1":
			if !line.BlockedByPrice {
				t.Fatalf("p1 should be blocked by price")
			}
		case "p2":
			if !line.BlockedBySeason {
				t.Fatalf("p2 should be blocked by season")
			}
		default:
			t.Fatalf("unexpected product %s in report", line.ProductID)
		}
		if line.FinalDesired != 0 {
			t.Fatalf("product %s desired got=%d want=0", line.ProductID, line.FinalDesired)
		}
	}
}
