package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playrise/shopsim-warehouse-service/internal/apperr"
	"github.com/playrise/shopsim-warehouse-service/internal/inventory"
	"github.com/playrise/shopsim-warehouse-service/internal/inventory/dto"
	"github.com/playrise/shopsim-warehouse-service/internal/inventory/repository"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/database"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/logger"
)

func newInventory(t *testing.T) (inventory.UseCase, *sqlx.DB) {
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

	now := time.Now().UTC()
	db.MustExec(`INSERT INTO warehouses (id, company_id, zone_id, country_code, name, tier, created_at, updated_at) VALUES ('w1', 'c1', 'z1', 'US', 'Main', 2, ?, ?)`, now, now)
	return NewInventoryUseCase(repository.NewSQLRepository(db), logger.NewNop()), db
}

func TestStockMovingAverage(t *testing.T) {
	uc, _ := newInventory(t)
	ctx := context.Background()

	item, err := uc.Stock(ctx, &dto.StockInput{
		CompanyID: "c1", WarehouseID: "w1", ProductID: "p1",
		Quantity: 10, UnitCost: 10, ReferenceID: "po-1",
	})
	if err != nil {
		t.Fatalf("first stock: %v", err)
	}
	if item.QtyOnHand != 10 || item.AvgUnitCost != 10 {
		t.Fatalf("first stock got qty=%d avg=%v want 10/10", item.QtyOnHand, item.AvgUnitCost)
	}

	item, err = uc.Stock(ctx, &dto.StockInput{
		CompanyID: "c1", WarehouseID: "w1", ProductID: "p1",
		Quantity: 10, UnitCost: 20, ReferenceID: "po-2",
	})
	if err != nil {
		t.Fatalf("second stock: %v", err)
	}
	if item.QtyOnHand != 20 {
		t.Fatalf("qty got=%d want=20", item.QtyOnHand)
	}
	if item.AvgUnitCost != 15 {
		t.Fatalf("avg got=%v want=15", item.AvgUnitCost)
	}
	if item.LastUnitCost != 20 {
		t.Fatalf("last cost got=%v want=20", item.LastUnitCost)
	}
}

func TestStockReplayedReferenceIsNoOp(t *testing.T) {
	uc, db := newInventory(t)
	ctx := context.Background()

	input := &dto.StockInput{
		CompanyID: "c1", WarehouseID: "w1", ProductID: "p1",
		Quantity: 10, UnitCost: 10, ReferenceID: "po-1",
	}
	if _, err := uc.Stock(ctx, input); err != nil {
		t.Fatalf("first stock: %v", err)
	}

	item, err := uc.Stock(ctx, input)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if item.QtyOnHand != 10 {
		t.Fatalf("replay moved stock: qty=%d want=10", item.QtyOnHand)
	}

	var movements int
	if err := db.Get(&movements, `SELECT count(*) FROM inventory_movements WHERE source_ref = 'PURCHASE:po-1'`); err != nil {
		t.Fatalf("movements: %v", err)
	}
	if movements != 1 {
		t.Fatalf("movements got=%d want=1", movements)
	}

	// The charge also lands once.
	var balance float64
	if err := db.Get(&balance, `SELECT balance FROM wallet_balances WHERE company_id = 'c1' AND currency = 'USD'`); err != nil {
		t.Fatalf("wallet: %v", err)
	}
	if balance != -100 {
		t.Fatalf("balance got=%v want=-100", balance)
	}
}

func TestStockValidation(t *testing.T) {
	uc, _ := newInventory(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input *dto.StockInput
	}{
		{"zero quantity", &dto.StockInput{CompanyID: "c1", WarehouseID: "w1", ProductID: "p1", Quantity: 0, UnitCost: 1}},
		{"negative cost", &dto.StockInput{CompanyID: "c1", WarehouseID: "w1", ProductID: "p1", Quantity: 1, UnitCost: -1}},
		{"missing product", &dto.StockInput{CompanyID: "c1", WarehouseID: "w1", Quantity: 1, UnitCost: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Stock(ctx, tc.input)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("got err=%v want validation error", err)
			}
		})
	}
}

func TestStockForeignWarehouse(t *testing.T) {
	uc, _ := newInventory(t)

	_, err := uc.Stock(context.Background(), &dto.StockInput{
		CompanyID: "intruder", WarehouseID: "w1", ProductID: "p1", Quantity: 1, UnitCost: 1,
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("got err=%v want not found", err)
	}
}

func TestGetItemZeroPosition(t *testing.T) {
	uc, _ := newInventory(t)

	item, err := uc.GetItem(context.Background(), "c1", "w1", "p-empty")
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item.QtyOnHand != 0 || item.QtyReserved != 0 {
		t.Fatalf("empty shelf got qty=%d reserved=%d", item.QtyOnHand, item.QtyReserved)
	}
}

func TestListMovementsFilters(t *testing.T) {
	uc, _ := newInventory(t)
	ctx := context.Background()

	for _, ref := range []string{"po-1", "po-2"} {
		if _, err := uc.Stock(ctx, &dto.StockInput{
			CompanyID: "c1", WarehouseID: "w1", ProductID: "p1",
			Quantity: 5, UnitCost: 2, ReferenceID: ref,
		}); err != nil {
			t.Fatalf("stock %s: %v", ref, err)
		}
	}
	if _, err := uc.Stock(ctx, &dto.StockInput{
		CompanyID: "c1", WarehouseID: "w1", ProductID: "p2",
		Quantity: 5, UnitCost: 2, ReferenceID: "po-3",
	}); err != nil {
		t.Fatalf("stock p2: %v", err)
	}

	movements, err := uc.ListMovements(ctx, "c1", &dto.MovementFilters{WarehouseID: "w1", ProductID: "p1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("filtered movements got=%d want=2", len(movements))
	}

	paged, err := uc.ListMovements(ctx, "c1", &dto.MovementFilters{WarehouseID: "w1", Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("paged list: %v", err)
	}
	if len(paged) != 2 {
		t.Fatalf("page got=%d want=2", len(paged))
	}
}
