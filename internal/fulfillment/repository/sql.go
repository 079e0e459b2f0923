package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/playrise/shopsim-warehouse-service/internal/fulfillment"
	ledgerdto "github.com/playrise/shopsim-warehouse-service/internal/ledger/dto"
	ledgerrepo "github.com/playrise/shopsim-warehouse-service/internal/ledger/repository"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
)

type SQLRepository struct {
	DB     *sqlx.DB
	ledger *ledgerrepo.SQLRepository
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db, ledger: ledgerrepo.NewSQLRepository(db)}
}

func (r *SQLRepository) FindWarehouse(ctx context.Context, warehouseID string) (*model.Warehouse, error) {
	var wh model.Warehouse
	query := r.DB.Rebind(`SELECT * FROM warehouses WHERE id = ? LIMIT 1`)
	err := r.DB.GetContext(ctx, &wh, query, warehouseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wh, nil
}

func (r *SQLRepository) ListUnshipped(ctx context.Context, warehouseID, dayKey string) ([]model.DailySales, error) {
	var rows []model.DailySales
	query := r.DB.Rebind(`
        SELECT * FROM daily_sales
        WHERE warehouse_id = ? AND day_key = ? AND qty_shipped < qty_ordered
        ORDER BY listing_id ASC
    `)
	err := r.DB.SelectContext(ctx, &rows, query, warehouseID, dayKey)
	return rows, err
}

func (r *SQLRepository) FindItem(ctx context.Context, warehouseID, productID string) (*model.InventoryItem, error) {
	var item model.InventoryItem
	query := r.DB.Rebind(`SELECT * FROM inventory_items WHERE warehouse_id = ? AND product_id = ? LIMIT 1`)
	err := r.DB.GetContext(ctx, &item, query, warehouseID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *SQLRepository) FindListing(ctx context.Context, listingID string) (*model.Listing, error) {
	var l model.Listing
	query := r.DB.Rebind(`SELECT * FROM listings WHERE id = ? LIMIT 1`)
	err := r.DB.GetContext(ctx, &l, query, listingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *SQLRepository) CapacityConsumed(ctx context.Context, warehouseID, dayKey string) (int64, error) {
	var shipped sql.NullInt64
	query := r.DB.Rebind(`
        SELECT SUM(quantity) FROM inventory_movements
        WHERE warehouse_id = ? AND day_key = ? AND direction = ? AND source_type = ?
    `)
	if err := r.DB.GetContext(ctx, &shipped, query, warehouseID, dayKey, model.MovementOut, model.SourceSalesFulfill); err != nil {
		return 0, err
	}
	return shipped.Int64, nil
}

func (r *SQLRepository) ApplyShipments(ctx context.Context, companyID, warehouseID, dayKey string, ships []fulfillment.Shipment) error {
	if len(ships) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	entries := make([]*ledgerdto.PostEntryInput, 0, len(ships))
	var totalShipped int64

	for _, s := range ships {
		// Guarded decrement: never below zero on either column. A zero
		// update means a concurrent writer got there first; abort and let
		// the caller retry from fresh state.
		dec := tx.Rebind(`
            UPDATE inventory_items
            SET qty_on_hand = qty_on_hand - ?, qty_reserved = qty_reserved - ?, updated_at = ?
            WHERE warehouse_id = ? AND product_id = ?
              AND qty_on_hand >= ? AND qty_reserved >= ?
        `)
		res, err := tx.ExecContext(ctx, dec, s.Ship, s.Ship, now, warehouseID, s.Row.ProductID, s.Ship, s.Ship)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("ship %d units of product %s: stock changed underneath", s.Ship, s.Row.ProductID)
		}

		// The movement ref encodes the row's shipped watermark, so one
		// logical shipment can never be recorded twice.
		movement := &model.InventoryMovement{
			ID:          uuid.New().String(),
			WarehouseID: warehouseID,
			ProductID:   s.Row.ProductID,
			Direction:   model.MovementOut,
			SourceType:  model.SourceSalesFulfill,
			SourceRef:   fmt.Sprintf("%s:%d", s.Row.ID, s.Row.QtyShipped),
			Quantity:    s.Ship,
			DayKey:      dayKey,
			CreatedAt:   now,
		}
		if _, err := tx.NamedExecContext(ctx, insertMovementQuery, movement); err != nil {
			return err
		}

		bump := tx.Rebind(`
            UPDATE daily_sales
            SET qty_shipped = qty_shipped + ?, updated_at = ?
            WHERE id = ? AND qty_shipped + ? <= qty_ordered
        `)
		res, err = tx.ExecContext(ctx, bump, s.Ship, now, s.Row.ID, s.Ship)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("record shipment for row %s: would exceed ordered quantity", s.Row.ID)
		}

		entries = append(entries, &ledgerdto.PostEntryInput{
			IdempotencyKey: fmt.Sprintf("SALES:%s:%d", s.Row.ID, s.Row.QtyShipped),
			CompanyID:      companyID,
			DayKey:         dayKey,
			Direction:      model.LedgerCredit,
			AmountUSD:      float64(s.Ship) * s.SalePrice,
			Category:       "sales_revenue",
			Scope:          warehouseID,
			Note:           fmt.Sprintf("shipped=%d listing=%s", s.Ship, s.Row.ListingID),
		})
		totalShipped += s.Ship
	}

	if _, _, err := ledgerrepo.PostEntriesTx(ctx, tx, entries); err != nil {
		return err
	}
	if err := bumpUnitsSoldTx(ctx, tx, warehouseID, totalShipped); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLRepository) TotalBacklog(ctx context.Context, warehouseID string) (int64, error) {
	var backlog sql.NullInt64
	query := r.DB.Rebind(`SELECT SUM(qty_ordered - qty_shipped) FROM daily_sales WHERE warehouse_id = ?`)
	if err := r.DB.GetContext(ctx, &backlog, query, warehouseID); err != nil {
		return 0, err
	}
	return backlog.Int64, nil
}

func (r *SQLRepository) WalletBalance(ctx context.Context, companyID string) (float64, error) {
	var balance float64
	query := r.DB.Rebind(`SELECT balance FROM wallet_balances WHERE company_id = ? AND currency = ?`)
	err := r.DB.GetContext(ctx, &balance, query, companyID, model.CurrencyUSD)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

func (r *SQLRepository) FindClearance(ctx context.Context, key string) (*model.LedgerEntry, error) {
	return r.ledger.FindEntryByKey(ctx, key)
}

func (r *SQLRepository) CountrySalaryMultiplier(ctx context.Context, countryCode string) (float64, error) {
	var mult float64
	query := r.DB.Rebind(`SELECT multiplier FROM country_salary_multipliers WHERE country_code = ?`)
	err := r.DB.GetContext(ctx, &mult, query, countryCode)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return mult, nil
}

func (r *SQLRepository) ApplyClearance(ctx context.Context, c *fulfillment.Clearance) (*fulfillment.ClearanceOutcome, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Post the charge first; a replayed key returns the original entry and
	// short-circuits everything below.
	entry, isNew, err := ledgerrepo.PostEntryTx(ctx, tx, &ledgerdto.PostEntryInput{
		IdempotencyKey: c.IdempotencyKey,
		CompanyID:      c.CompanyID,
		DayKey:         c.DayKey,
		Direction:      model.LedgerDebit,
		AmountUSD:      c.CostUSD,
		Category:       "rush_fulfillment",
		Scope:          c.WarehouseID,
		Note:           fmt.Sprintf("cleared=%d staff=%d", c.Target, c.StaffCount),
	})
	if err != nil {
		return nil, err
	}
	if !isNew {
		var cleared, staff int64
		if _, serr := fmt.Sscanf(entry.Note, "cleared=%d staff=%d", &cleared, &staff); serr != nil {
			cleared = 0
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return &fulfillment.ClearanceOutcome{ClearedUnits: cleared, WasReplay: true}, nil
	}

	// Oldest orders first: day key, then listing id for a stable order
	// within the day.
	var rows []model.DailySales
	query := tx.Rebind(`
        SELECT * FROM daily_sales
        WHERE warehouse_id = ? AND qty_shipped < qty_ordered
        ORDER BY day_key ASC, listing_id ASC
    `)
	if err := tx.SelectContext(ctx, &rows, query, c.WarehouseID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	remaining := c.Target
	var cleared int64
	for i := range rows {
		if remaining <= 0 {
			break
		}
		take := rows[i].Backlog()
		if take > remaining {
			take = remaining
		}
		bump := tx.Rebind(`
            UPDATE daily_sales
            SET qty_shipped = qty_shipped + ?, updated_at = ?
            WHERE id = ? AND qty_shipped + ? <= qty_ordered
        `)
		res, err := tx.ExecContext(ctx, bump, take, now, rows[i].ID, take)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		remaining -= take
		cleared += take
	}

	if cleared != c.Target {
		// The note carries the actual cleared amount for replays.
		upd := tx.Rebind(`UPDATE ledger_entries SET note = ? WHERE id = ?`)
		if _, err := tx.ExecContext(ctx, upd, fmt.Sprintf("cleared=%d staff=%d", cleared, c.StaffCount), entry.ID); err != nil {
			return nil, err
		}
	}
	if err := bumpUnitsSoldTx(ctx, tx, c.WarehouseID, cleared); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &fulfillment.ClearanceOutcome{ClearedUnits: cleared, WasReplay: false}, nil
}

const insertMovementQuery = `
    INSERT INTO inventory_movements (id, warehouse_id, product_id, direction, source_type, source_ref, quantity, unit_cost, day_key, note, created_at)
    VALUES (:id, :warehouse_id, :product_id, :direction, :source_type, :source_ref, :quantity, :unit_cost, :day_key, :note, :created_at)
`

func bumpUnitsSoldTx(ctx context.Context, tx *sqlx.Tx, warehouseID string, units int64) error {
	if units <= 0 {
		return nil
	}
	query := tx.Rebind(`
        INSERT INTO warehouse_metrics (warehouse_id, stock_restocked_total, units_sold_total)
        VALUES (?, 0, ?)
        ON CONFLICT (warehouse_id)
        DO UPDATE SET units_sold_total = warehouse_metrics.units_sold_total + excluded.units_sold_total
    `)
	_, err := tx.ExecContext(ctx, query, warehouseID, units)
	return err
}
