package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
	"github.com/playrise/shopsim-warehouse-service/internal/settlement"
)

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) FindSettlement(ctx context.Context, settlementID string) (*model.Settlement, error) {
	var s model.Settlement
	query := r.DB.Rebind(`SELECT * FROM settlements WHERE id = ? LIMIT 1`)
	err := r.DB.GetContext(ctx, &s, query, settlementID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SQLRepository) ListLines(ctx context.Context, settlementID string) ([]model.SettlementLine, error) {
	var lines []model.SettlementLine
	query := r.DB.Rebind(`SELECT * FROM settlement_lines WHERE settlement_id = ? ORDER BY id ASC`)
	err := r.DB.SelectContext(ctx, &lines, query, settlementID)
	return lines, err
}

func (r *SQLRepository) MovementExists(ctx context.Context, sourceType model.MovementSource, sourceRef string) (bool, error) {
	var count int
	query := r.DB.Rebind(`SELECT count(*) FROM inventory_movements WHERE source_type = ? AND source_ref = ?`)
	if err := r.DB.GetContext(ctx, &count, query, string(sourceType), sourceRef); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SQLRepository) ApplyReturns(ctx context.Context, s *model.Settlement, restocks []settlement.Restock, total int64, notification *model.PlayerNotification) (bool, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, restock := range restocks {
		// Returns go back on hand at the existing average cost; they are
		// not re-costed, so avg_unit_cost stays put.
		upsert := tx.Rebind(`
            INSERT INTO inventory_items (id, warehouse_id, product_id, qty_on_hand, qty_reserved, avg_unit_cost, last_unit_cost, updated_at)
            VALUES (?, ?, ?, ?, 0, 0, 0, ?)
            ON CONFLICT (warehouse_id, product_id)
            DO UPDATE SET qty_on_hand = inventory_items.qty_on_hand + excluded.qty_on_hand,
                          updated_at = excluded.updated_at
        `)
		if _, err := tx.ExecContext(ctx, upsert, uuid.New().String(), s.WarehouseID, restock.ProductID, restock.Qty, now); err != nil {
			return false, err
		}

		movement := &model.InventoryMovement{
			ID:          uuid.New().String(),
			WarehouseID: s.WarehouseID,
			ProductID:   restock.ProductID,
			Direction:   model.MovementIn,
			SourceType:  model.SourceReturnsRestock,
			SourceRef:   restock.MovementKey,
			Quantity:    restock.Qty,
			DayKey:      s.DayKey,
			CreatedAt:   now,
		}
		if _, err := tx.NamedExecContext(ctx, `
            INSERT INTO inventory_movements (id, warehouse_id, product_id, direction, source_type, source_ref, quantity, unit_cost, day_key, note, created_at)
            VALUES (:id, :warehouse_id, :product_id, :direction, :source_type, :source_ref, :quantity, :unit_cost, :day_key, :note, :created_at)
        `, movement); err != nil {
			return false, err
		}
	}

	if total > 0 {
		bump := tx.Rebind(`
            INSERT INTO warehouse_metrics (warehouse_id, stock_restocked_total, units_sold_total)
            VALUES (?, ?, 0)
            ON CONFLICT (warehouse_id)
            DO UPDATE SET stock_restocked_total = warehouse_metrics.stock_restocked_total + excluded.stock_restocked_total
        `)
		if _, err := tx.ExecContext(ctx, bump, s.WarehouseID, total); err != nil {
			return false, err
		}
	}

	notified := false
	if notification != nil {
		// Check-then-insert rather than insert-and-catch: a failed
		// statement would poison the whole transaction on Postgres.
		var count int
		check := tx.Rebind(`SELECT count(*) FROM player_notifications WHERE dedupe_key = ?`)
		if err := tx.GetContext(ctx, &count, check, notification.DedupeKey); err != nil {
			return false, err
		}
		if count == 0 {
			_, err := tx.NamedExecContext(ctx, `
                INSERT INTO player_notifications (id, company_id, dedupe_key, title, body, created_at)
                VALUES (:id, :company_id, :dedupe_key, :title, :body, :created_at)
            `, notification)
			if err != nil {
				return false, err
			}
			notified = true
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return notified, nil
}
