package dto

type StockInput struct {
	CompanyID   string  `json:"company_id"`
	WarehouseID string  `json:"warehouse_id"`
	ProductID   string  `json:"product_id"`
	Quantity    int64   `json:"quantity"`
	UnitCost    float64 `json:"unit_cost"`
	// ReferenceID ties the purchase to its order; it doubles as the
	// idempotency ref of the movement and the ledger charge.
	ReferenceID string `json:"reference_id"`
}

type MovementFilters struct {
	WarehouseID string
	ProductID   string
	SourceType  string
	Page        int
	PageSize    int
}
