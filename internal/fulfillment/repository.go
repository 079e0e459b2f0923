package fulfillment

import (
	"context"

	"github.com/playrise/shopsim-warehouse-service/internal/model"
)

// Shipment is one row's shipping decision, applied atomically with its
// inventory decrement, movement record and revenue post.
type Shipment struct {
	Row       *model.DailySales
	Ship      int64
	SalePrice float64
}

// Clearance is the manual-clear write set: ledger debit first, then backlog
// rows bumped oldest-first up to Target.
type Clearance struct {
	CompanyID      string
	WarehouseID    string
	DayKey         string
	IdempotencyKey string
	CostUSD        float64
	Target         int64
	StaffCount     int64
}

// ClearanceOutcome distinguishes a first run from an idempotent replay.
type ClearanceOutcome struct {
	ClearedUnits int64
	WasReplay    bool
}

type Repository interface {
	FindWarehouse(ctx context.Context, warehouseID string) (*model.Warehouse, error)
	// ListUnshipped returns the day's rows with qty_shipped < qty_ordered,
	// ordered by listing id so repeated runs touch rows in the same order.
	ListUnshipped(ctx context.Context, warehouseID, dayKey string) ([]model.DailySales, error)
	FindItem(ctx context.Context, warehouseID, productID string) (*model.InventoryItem, error)
	FindListing(ctx context.Context, listingID string) (*model.Listing, error)
	// CapacityConsumed is the day's shipping budget already spent. It counts
	// sales_fulfillment movements only; manual clearance bumps qty_shipped
	// without writing one, so it never eats the normal budget.
	CapacityConsumed(ctx context.Context, warehouseID, dayKey string) (int64, error)
	// ApplyShipments commits the whole pass in one transaction.
	ApplyShipments(ctx context.Context, companyID, warehouseID, dayKey string, ships []Shipment) error
	// TotalBacklog sums ordered-minus-shipped across all days.
	TotalBacklog(ctx context.Context, warehouseID string) (int64, error)
	WalletBalance(ctx context.Context, companyID string) (float64, error)
	CountrySalaryMultiplier(ctx context.Context, countryCode string) (float64, error)
	// FindClearance looks up a prior clearance charge by idempotency key,
	// nil when none exists.
	FindClearance(ctx context.Context, key string) (*model.LedgerEntry, error)
	// ApplyClearance charges the wallet once (keyed) and walks backlog
	// oldest-first. On replay it parses the original cleared amount back
	// out of the stored ledger note and mutates nothing.
	ApplyClearance(ctx context.Context, c *Clearance) (*ClearanceOutcome, error)
}
