package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playrise/shopsim-warehouse-service/internal/apperr"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/database"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/logger"
	"github.com/playrise/shopsim-warehouse-service/internal/settlement"
	"github.com/playrise/shopsim-warehouse-service/internal/settlement/repository"
)

func newSettlement(t *testing.T, topN int) (settlement.UseCase, *sqlx.DB) {
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
	return NewSettlementUseCase(repository.NewSQLRepository(db), topN, logger.NewNop()), db
}

func seedSettlement(t *testing.T, db *sqlx.DB) {
	t.Helper()
	now := time.Now().UTC()
	db.MustExec(`INSERT INTO warehouses (id, company_id, zone_id, country_code, name, tier, created_at, updated_at) VALUES ('w1', 'c1', 'z1', 'US', 'Main', 2, ?, ?)`, now, now)
	db.MustExec(`INSERT INTO settlements (id, company_id, warehouse_id, day_key, created_at) VALUES ('s1', 'c1', 'w1', '2026-03-05', ?)`, now)
	db.MustExec(`INSERT INTO settlement_lines (id, settlement_id, product_id, product_name, return_qty) VALUES ('sl1', 's1', 'p1', 'Runner', 20)`)
	db.MustExec(`INSERT INTO settlement_lines (id, settlement_id, product_id, product_name, return_qty) VALUES ('sl2', 's1', 'p2', 'Alpine', 0)`)
	db.MustExec(`INSERT INTO inventory_items (id, warehouse_id, product_id, qty_on_hand, qty_reserved, avg_unit_cost, last_unit_cost, updated_at) VALUES ('item1', 'w1', 'p1', 50, 0, 10, 10, ?)`, now)
}

func TestApplyReturnsRestocksAtExistingCost(t *testing.T) {
	uc, db := newSettlement(t, 3)
	seedSettlement(t, db)
	ctx := context.Background()

	result, err := uc.ApplyReturns(ctx, "s1")
	if err != nil {
		t.Fatalf("apply returns: %v", err)
	}
	if result.TotalReturnedUnits != 20 {
		t.Fatalf("units got=%d want=20", result.TotalReturnedUnits)
	}
	if result.LinesRestocked != 1 {
		t.Fatalf("lines got=%d want=1, zero-return lines are skipped", result.LinesRestocked)
	}
	if !result.NotificationSent {
		t.Fatalf("expected a notification")
	}

	var item model.InventoryItem
	if err := db.Get(&item, `SELECT * FROM inventory_items WHERE id = 'item1'`); err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if item.QtyOnHand != 70 {
		t.Fatalf("on hand got=%d want=70", item.QtyOnHand)
	}
	// Returns are not re-costed.
	if item.AvgUnitCost != 10 {
		t.Fatalf("avg cost got=%v want=10", item.AvgUnitCost)
	}

	var restocked int64
	if err := db.Get(&restocked, `SELECT stock_restocked_total FROM warehouse_metrics WHERE warehouse_id = 'w1'`); err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if restocked != 20 {
		t.Fatalf("stock_restocked_total got=%d want=20", restocked)
	}
}

func TestApplyReturnsReplayIsNoOp(t *testing.T) {
	uc, db := newSettlement(t, 3)
	seedSettlement(t, db)
	ctx := context.Background()

	if _, err := uc.ApplyReturns(ctx, "s1"); err != nil {
		t.Fatalf("first run: %v", err)
	}

	replay, err := uc.ApplyReturns(ctx, "s1")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replay.LinesRestocked != 0 || replay.TotalReturnedUnits != 0 {
		t.Fatalf("replay restocked lines=%d units=%d, want zero", replay.LinesRestocked, replay.TotalReturnedUnits)
	}
	if replay.NotificationSent {
		t.Fatalf("replay must not notify again")
	}

	var onHand int64
	if err := db.Get(&onHand, `SELECT qty_on_hand FROM inventory_items WHERE id = 'item1'`); err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if onHand != 70 {
		t.Fatalf("replay moved stock: on_hand=%d want=70", onHand)
	}

	var notifications int
	if err := db.Get(&notifications, `SELECT count(*) FROM player_notifications WHERE company_id = 'c1'`); err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if notifications != 1 {
		t.Fatalf("notifications got=%d want=1 across both runs", notifications)
	}
}

func TestApplyReturnsCreatesMissingItem(t *testing.T) {
	uc, db := newSettlement(t, 3)
	seedSettlement(t, db)
	db.MustExec(`UPDATE settlement_lines SET return_qty = 5 WHERE id = 'sl2'`)

	if _, err := uc.ApplyReturns(context.Background(), "s1"); err != nil {
		t.Fatalf("apply returns: %v", err)
	}

	var item model.InventoryItem
	if err := db.Get(&item, `SELECT * FROM inventory_items WHERE warehouse_id = 'w1' AND product_id = 'p2'`); err != nil {
		t.Fatalf("p2 item was not created: %v", err)
	}
	if item.QtyOnHand != 5 {
		t.Fatalf("p2 on hand got=%d want=5", item.QtyOnHand)
	}
}

func TestApplyReturnsNotificationSummary(t *testing.T) {
	uc, db := newSettlement(t, 2)
	seedSettlement(t, db)
	db.MustExec(`UPDATE settlement_lines SET return_qty = 5 WHERE id = 'sl2'`)
	db.MustExec(`INSERT INTO settlement_lines (id, settlement_id, product_id, product_name, return_qty) VALUES ('sl3', 's1', 'p3', 'Classic', 12)`)

	if _, err := uc.ApplyReturns(context.Background(), "s1"); err != nil {
		t.Fatalf("apply returns: %v", err)
	}

	var body string
	if err := db.Get(&body, `SELECT body FROM player_notifications WHERE dedupe_key = 'RETURNS_NOTIFY:s1'`); err != nil {
		t.Fatalf("notification: %v", err)
	}
	// Top 2 by quantity, the rest collapsed.
	if !strings.Contains(body, "Runner x20") || !strings.Contains(body, "Classic x12") {
		t.Fatalf("body missing top products: %q", body)
	}
	if !strings.Contains(body, "+1 more") {
		t.Fatalf("body missing overflow trailer: %q", body)
	}
	if strings.Contains(body, "Alpine") {
		t.Fatalf("body should not name products past the top-N: %q", body)
	}
}

func TestApplyReturnsUnknownSettlement(t *testing.T) {
	uc, _ := newSettlement(t, 3)

	_, err := uc.ApplyReturns(context.Background(), "ghost")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("got err=%v want not found", err)
	}
}
