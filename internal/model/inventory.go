package model

import "time"

// Warehouse tiers run 1..5 and drive both daily shipping capacity and band
// selection for new listings.
type Warehouse struct {
	BaseModel
	CompanyID   string `db:"company_id" json:"company_id"`
	ZoneID      string `db:"zone_id" json:"zone_id"`
	CountryCode string `db:"country_code" json:"country_code"`
	Name        string `db:"name" json:"name"`
	Tier        int    `db:"tier" json:"tier"`
}

// InventoryItem is the stock position of one product in one warehouse.
// Invariants: 0 <= QtyReserved <= QtyOnHand; AvgUnitCost moves only on
// inbound movements.
type InventoryItem struct {
	ID          string    `db:"id" json:"id"`
	WarehouseID string    `db:"warehouse_id" json:"warehouse_id"`
	ProductID   string    `db:"product_id" json:"product_id"`
	QtyOnHand   int64     `db:"qty_on_hand" json:"qty_on_hand"`
	QtyReserved int64     `db:"qty_reserved" json:"qty_reserved"`
	AvgUnitCost float64   `db:"avg_unit_cost" json:"avg_unit_cost"`
	LastUnitCost float64  `db:"last_unit_cost" json:"last_unit_cost"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type MovementDirection string

const (
	MovementIn  MovementDirection = "IN"
	MovementOut MovementDirection = "OUT"
)

// MovementSource is the closed set of reasons stock can change. Each value
// pairs with a source reference id; (SourceType, SourceRef) is unique, which
// is what makes movement writes idempotent.
type MovementSource string

const (
	SourcePurchase       MovementSource = "purchase"
	SourceReturnsRestock MovementSource = "returns_restock"
	SourceSalesFulfill   MovementSource = "sales_fulfillment"
	SourceManualClear    MovementSource = "manual_clear"
)

// InventoryMovement is an append-only stock change record.
type InventoryMovement struct {
	ID          string            `db:"id" json:"id"`
	WarehouseID string            `db:"warehouse_id" json:"warehouse_id"`
	ProductID   string            `db:"product_id" json:"product_id"`
	Direction   MovementDirection `db:"direction" json:"direction"`
	SourceType  MovementSource    `db:"source_type" json:"source_type"`
	SourceRef   string            `db:"source_ref" json:"source_ref"`
	Quantity    int64             `db:"quantity" json:"quantity"`
	UnitCost    float64           `db:"unit_cost" json:"unit_cost"`
	DayKey      string            `db:"day_key" json:"day_key"`
	Note        string            `db:"note" json:"note"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
}

// WarehouseMetrics are monotonic per-warehouse counters, mutated only with
// atomic increments.
type WarehouseMetrics struct {
	WarehouseID         string `db:"warehouse_id" json:"warehouse_id"`
	StockRestockedTotal int64  `db:"stock_restocked_total" json:"stock_restocked_total"`
	UnitsSoldTotal      int64  `db:"units_sold_total" json:"units_sold_total"`
}
