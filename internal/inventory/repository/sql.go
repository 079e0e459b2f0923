package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/playrise/shopsim-warehouse-service/internal/inventory"
	"github.com/playrise/shopsim-warehouse-service/internal/inventory/dto"
	ledgerdto "github.com/playrise/shopsim-warehouse-service/internal/ledger/dto"
	ledgerrepo "github.com/playrise/shopsim-warehouse-service/internal/ledger/repository"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
)

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
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

func (r *SQLRepository) GetItem(ctx context.Context, warehouseID, productID string) (*model.InventoryItem, error) {
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

func (r *SQLRepository) ListItems(ctx context.Context, warehouseID string) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	query := r.DB.Rebind(`SELECT * FROM inventory_items WHERE warehouse_id = ? ORDER BY product_id ASC`)
	err := r.DB.SelectContext(ctx, &items, query, warehouseID)
	return items, err
}

func (r *SQLRepository) StockWithMovement(ctx context.Context, p *inventory.Purchase) (*model.InventoryItem, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Replay guard: the movement ref has been recorded before, so the
	// stock and the charge are already in.
	sourceRef := "PURCHASE:" + p.ReferenceID
	var count int
	check := tx.Rebind(`SELECT count(*) FROM inventory_movements WHERE source_type = ? AND source_ref = ?`)
	if err := tx.GetContext(ctx, &count, check, string(model.SourcePurchase), sourceRef); err != nil {
		return nil, err
	}
	if count > 0 {
		item, err := getItemTx(ctx, tx, p.WarehouseID, p.ProductID)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return item, nil
	}

	now := time.Now().UTC()
	item, err := getItemTx(ctx, tx, p.WarehouseID, p.ProductID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		item = &model.InventoryItem{
			ID:          uuid.New().String(),
			WarehouseID: p.WarehouseID,
			ProductID:   p.ProductID,
		}
	}

	// Moving weighted average, recomputed on inbound only. The snapshot
	// read above happens inside this transaction on purpose.
	totalQty := item.QtyOnHand + p.Quantity
	if totalQty > 0 {
		item.AvgUnitCost = (float64(item.QtyOnHand)*item.AvgUnitCost + float64(p.Quantity)*p.UnitCost) / float64(totalQty)
	}
	item.QtyOnHand = totalQty
	item.LastUnitCost = p.UnitCost
	item.UpdatedAt = now

	_, err = tx.NamedExecContext(ctx, `
        INSERT INTO inventory_items (id, warehouse_id, product_id, qty_on_hand, qty_reserved, avg_unit_cost, last_unit_cost, updated_at)
        VALUES (:id, :warehouse_id, :product_id, :qty_on_hand, :qty_reserved, :avg_unit_cost, :last_unit_cost, :updated_at)
        ON CONFLICT (warehouse_id, product_id)
        DO UPDATE SET qty_on_hand = excluded.qty_on_hand,
                      avg_unit_cost = excluded.avg_unit_cost,
                      last_unit_cost = excluded.last_unit_cost,
                      updated_at = excluded.updated_at
    `, item)
	if err != nil {
		return nil, err
	}

	movement := &model.InventoryMovement{
		ID:          uuid.New().String(),
		WarehouseID: p.WarehouseID,
		ProductID:   p.ProductID,
		Direction:   model.MovementIn,
		SourceType:  model.SourcePurchase,
		SourceRef:   sourceRef,
		Quantity:    p.Quantity,
		UnitCost:    p.UnitCost,
		DayKey:      p.DayKey,
		CreatedAt:   now,
	}
	_, err = tx.NamedExecContext(ctx, `
        INSERT INTO inventory_movements (id, warehouse_id, product_id, direction, source_type, source_ref, quantity, unit_cost, day_key, note, created_at)
        VALUES (:id, :warehouse_id, :product_id, :direction, :source_type, :source_ref, :quantity, :unit_cost, :day_key, :note, :created_at)
    `, movement)
	if err != nil {
		return nil, err
	}

	_, _, err = ledgerrepo.PostEntryTx(ctx, tx, &ledgerdto.PostEntryInput{
		IdempotencyKey: sourceRef,
		CompanyID:      p.CompanyID,
		DayKey:         p.DayKey,
		Direction:      model.LedgerDebit,
		AmountUSD:      float64(p.Quantity) * p.UnitCost,
		Category:       "stock_purchase",
		Scope:          p.WarehouseID,
		Note:           fmt.Sprintf("qty=%d product=%s", p.Quantity, p.ProductID),
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *SQLRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.WarehouseID != "" {
		conditions = append(conditions, "warehouse_id = :warehouse_id")
		args["warehouse_id"] = f.WarehouseID
	}
	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.SourceType != "" {
		conditions = append(conditions, "source_type = :source_type")
		args["source_type"] = f.SourceType
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := "SELECT * FROM inventory_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	var movements []model.InventoryMovement
	err = nstmt.SelectContext(ctx, &movements, args)
	return movements, err
}

func getItemTx(ctx context.Context, tx *sqlx.Tx, warehouseID, productID string) (*model.InventoryItem, error) {
	var item model.InventoryItem
	query := tx.Rebind(`SELECT * FROM inventory_items WHERE warehouse_id = ? AND product_id = ? LIMIT 1`)
	err := tx.GetContext(ctx, &item, query, warehouseID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}
