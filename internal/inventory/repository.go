package inventory

import (
	"context"

	"github.com/playrise/shopsim-warehouse-service/internal/inventory/dto"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
)

// Purchase is the write set of one stocking operation.
type Purchase struct {
	CompanyID   string
	WarehouseID string
	ProductID   string
	Quantity    int64
	UnitCost    float64
	ReferenceID string
	DayKey      string
}

type Repository interface {
	FindWarehouse(ctx context.Context, warehouseID string) (*model.Warehouse, error)
	GetItem(ctx context.Context, warehouseID, productID string) (*model.InventoryItem, error)
	ListItems(ctx context.Context, warehouseID string) ([]model.InventoryItem, error)
	// StockWithMovement reads the current position, recomputes the moving
	// average, upserts the item, records the IN movement and posts the
	// ledger debit, all in one transaction. A replayed reference returns
	// the current item unchanged.
	StockWithMovement(ctx context.Context, p *Purchase) (*model.InventoryItem, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, error)
}
