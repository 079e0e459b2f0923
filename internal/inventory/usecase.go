package inventory

import (
	"context"

	"github.com/playrise/shopsim-warehouse-service/internal/inventory/dto"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
)

type UseCase interface {
	// Stock receives purchased units into a warehouse. The moving
	// weighted-average unit cost is recomputed inside the same transaction
	// as the write; the purchase amount is charged through the ledger.
	Stock(ctx context.Context, input *dto.StockInput) (*model.InventoryItem, error)
	GetItem(ctx context.Context, companyID, warehouseID, productID string) (*model.InventoryItem, error)
	ListItems(ctx context.Context, companyID, warehouseID string) ([]model.InventoryItem, error)
	ListMovements(ctx context.Context, companyID string, filters *dto.MovementFilters) ([]model.InventoryMovement, error)
}
