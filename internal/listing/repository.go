package listing

import (
	"context"

	"github.com/playrise/shopsim-warehouse-service/internal/listing/dto"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
)

// DemandWrite is one (listing, day) demand row plus the stock reservation
// that goes with it, applied atomically by the repository.
type DemandWrite struct {
	Row        *model.DailySales
	ReserveQty int64
}

type Repository interface {
	FindWarehouse(ctx context.Context, warehouseID string) (*model.Warehouse, error)
	ListWarehouses(ctx context.Context, companyID string) ([]model.Warehouse, error)
	FindInventoryItem(ctx context.Context, itemID string) (*model.InventoryItem, error)
	FindProduct(ctx context.Context, productID string) (*model.Product, error)
	FindListing(ctx context.Context, listingID string) (*model.Listing, error)
	ActiveListingExists(ctx context.Context, companyID, zoneID, productID string) (bool, error)
	Create(ctx context.Context, l *model.Listing) error
	UpdatePriceSnapshot(ctx context.Context, l *model.Listing) error
	ListActiveByWarehouse(ctx context.Context, warehouseID string) ([]model.Listing, error)
	// HasDemandRow reports whether demand was already generated for the
	// (listing, day) pair.
	HasDemandRow(ctx context.Context, listingID, dayKey string) (bool, error)
	FindItemByWarehouseProduct(ctx context.Context, warehouseID, productID string) (*model.InventoryItem, error)
	// ApplyDemand inserts the rows and bumps qty_reserved in one
	// transaction. Rows whose (listing, day) pair already exists are
	// skipped, reservation included. Returns how many rows were inserted.
	ApplyDemand(ctx context.Context, writes []DemandWrite) (int, error)
	DemandReport(ctx context.Context, warehouseID, dayKey string) ([]dto.DemandLine, error)
}
