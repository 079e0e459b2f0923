package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playrise/shopsim-warehouse-service/internal/listing"
	"github.com/playrise/shopsim-warehouse-service/internal/listing/dto"
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

func (r *SQLRepository) ListWarehouses(ctx context.Context, companyID string) ([]model.Warehouse, error) {
	var whs []model.Warehouse
	query := r.DB.Rebind(`SELECT * FROM warehouses WHERE company_id = ? ORDER BY id ASC`)
	err := r.DB.SelectContext(ctx, &whs, query, companyID)
	return whs, err
}

func (r *SQLRepository) FindInventoryItem(ctx context.Context, itemID string) (*model.InventoryItem, error) {
	var item model.InventoryItem
	query := r.DB.Rebind(`SELECT * FROM inventory_items WHERE id = ? LIMIT 1`)
	err := r.DB.GetContext(ctx, &item, query, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *SQLRepository) FindItemByWarehouseProduct(ctx context.Context, warehouseID, productID string) (*model.InventoryItem, error) {
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

func (r *SQLRepository) FindProduct(ctx context.Context, productID string) (*model.Product, error) {
	var p model.Product
	query := r.DB.Rebind(`SELECT * FROM products WHERE id = ? LIMIT 1`)
	err := r.DB.GetContext(ctx, &p, query, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
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

func (r *SQLRepository) ActiveListingExists(ctx context.Context, companyID, zoneID, productID string) (bool, error) {
	var count int
	query := r.DB.Rebind(`
        SELECT count(*) FROM listings
        WHERE company_id = ? AND zone_id = ? AND product_id = ? AND is_active = 1
    `)
	if err := r.DB.GetContext(ctx, &count, query, companyID, zoneID, productID); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SQLRepository) Create(ctx context.Context, l *model.Listing) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO listings (
            id, company_id, warehouse_id, zone_id, product_id, category_id, quality,
            sale_price, is_active, tier_used, base_min_daily, base_max_daily, base_qty,
            band_matched, normal_price, price_index, price_multiplier, blocked_by_price,
            created_at, updated_at
        ) VALUES (
            :id, :company_id, :warehouse_id, :zone_id, :product_id, :category_id, :quality,
            :sale_price, :is_active, :tier_used, :base_min_daily, :base_max_daily, :base_qty,
            :band_matched, :normal_price, :price_index, :price_multiplier, :blocked_by_price,
            :created_at, :updated_at
        )
    `, l)
	return err
}

// UpdatePriceSnapshot rewrites only the mutable price block; the band
// columns are never touched after creation.
func (r *SQLRepository) UpdatePriceSnapshot(ctx context.Context, l *model.Listing) error {
	_, err := r.DB.NamedExecContext(ctx, `
        UPDATE listings SET
            sale_price = :sale_price,
            normal_price = :normal_price,
            price_index = :price_index,
            price_multiplier = :price_multiplier,
            blocked_by_price = :blocked_by_price,
            updated_at = :updated_at
        WHERE id = :id
    `, l)
	return err
}

func (r *SQLRepository) ListActiveByWarehouse(ctx context.Context, warehouseID string) ([]model.Listing, error) {
	var listings []model.Listing
	query := r.DB.Rebind(`SELECT * FROM listings WHERE warehouse_id = ? AND is_active = 1 ORDER BY id ASC`)
	err := r.DB.SelectContext(ctx, &listings, query, warehouseID)
	return listings, err
}

func (r *SQLRepository) HasDemandRow(ctx context.Context, listingID, dayKey string) (bool, error) {
	var count int
	query := r.DB.Rebind(`SELECT count(*) FROM daily_sales WHERE listing_id = ? AND day_key = ?`)
	if err := r.DB.GetContext(ctx, &count, query, listingID, dayKey); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SQLRepository) ApplyDemand(ctx context.Context, writes []listing.DemandWrite) (int, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	inserted := 0
	for _, w := range writes {
		// A (listing, day) row is written at most once; replays skip the
		// row and its reservation together.
		var count int
		query := tx.Rebind(`SELECT count(*) FROM daily_sales WHERE listing_id = ? AND day_key = ?`)
		if err := tx.GetContext(ctx, &count, query, w.Row.ListingID, w.Row.DayKey); err != nil {
			return 0, err
		}
		if count > 0 {
			continue
		}

		_, err = tx.NamedExecContext(ctx, `
            INSERT INTO daily_sales (
                id, listing_id, warehouse_id, product_id, day_key, qty_ordered, qty_shipped,
                price_index, season_score, price_multiplier, final_desired,
                blocked_by_price, blocked_by_season, created_at, updated_at
            ) VALUES (
                :id, :listing_id, :warehouse_id, :product_id, :day_key, :qty_ordered, :qty_shipped,
                :price_index, :season_score, :price_multiplier, :final_desired,
                :blocked_by_price, :blocked_by_season, :created_at, :updated_at
            )
        `, w.Row)
		if err != nil {
			return 0, err
		}

		if w.ReserveQty > 0 {
			reserve := tx.Rebind(`
                UPDATE inventory_items
                SET qty_reserved = qty_reserved + ?, updated_at = ?
                WHERE warehouse_id = ? AND product_id = ?
                  AND qty_reserved + ? <= qty_on_hand
            `)
			res, err := tx.ExecContext(ctx, reserve, w.ReserveQty, time.Now().UTC(), w.Row.WarehouseID, w.Row.ProductID, w.ReserveQty)
			if err != nil {
				return 0, err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return 0, fmt.Errorf("reserve %d units for product %s: would exceed on-hand stock", w.ReserveQty, w.Row.ProductID)
			}
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *SQLRepository) DemandReport(ctx context.Context, warehouseID, dayKey string) ([]dto.DemandLine, error) {
	var lines []dto.DemandLine
	query := r.DB.Rebind(`
        SELECT d.listing_id, d.product_id, d.day_key, d.price_index, d.season_score,
               d.price_multiplier, l.tier_used, l.band_matched, d.final_desired,
               d.blocked_by_price, d.blocked_by_season, d.qty_ordered, d.qty_shipped
        FROM daily_sales d
        JOIN listings l ON l.id = d.listing_id
        WHERE d.warehouse_id = ? AND d.day_key = ?
        ORDER BY d.listing_id ASC
    `)
	err := r.DB.SelectContext(ctx, &lines, query, warehouseID, dayKey)
	return lines, err
}
