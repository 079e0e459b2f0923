package dto

type FulfillInput struct {
	CompanyID   string `json:"company_id"`
	WarehouseID string `json:"warehouse_id"`
	DayKey      string `json:"day_key"`
}

// FulfillResult reports one fulfillment pass. CapacityUsed counts the whole
// day (prior passes included), so it never exceeds CapacityTotal.
// WasIdempotent is true when the pass shipped nothing because there was
// nothing left to ship.
type FulfillResult struct {
	ShippedUnits  int64 `json:"shipped_units"`
	BacklogUnits  int64 `json:"backlog_units"`
	ShippedLines  int   `json:"shipped_lines"`
	CapacityUsed  int64 `json:"capacity_used"`
	CapacityTotal int64 `json:"capacity_total"`
	WasIdempotent bool  `json:"was_idempotent"`
}

type ClearBacklogInput struct {
	CompanyID   string `json:"company_id"`
	WarehouseID string `json:"warehouse_id"`
	StaffCount  int64  `json:"staff_count"`
	DayKey      string `json:"day_key"`
	// IdempotencyKey defaults to RUSH:<company>:<warehouse>:<day>:<staff>.
	IdempotencyKey string `json:"idempotency_key"`
}

type ClearResult struct {
	ClearedUnits  int64   `json:"cleared_units"`
	CostUSD       float64 `json:"cost_usd"`
	BacklogBefore int64   `json:"backlog_before"`
	BacklogAfter  int64   `json:"backlog_after"`
	WasReplay     bool    `json:"was_replay"`
}
