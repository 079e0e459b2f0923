package model

import "time"

// Settlement is a batch close-out of a sales period, produced by the
// external billing process and consumed exactly once by returns
// reconciliation.
type Settlement struct {
	ID          string    `db:"id" json:"id"`
	CompanyID   string    `db:"company_id" json:"company_id"`
	WarehouseID string    `db:"warehouse_id" json:"warehouse_id"`
	DayKey      string    `db:"day_key" json:"day_key"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type SettlementLine struct {
	ID           string `db:"id" json:"id"`
	SettlementID string `db:"settlement_id" json:"settlement_id"`
	ProductID    string `db:"product_id" json:"product_id"`
	ProductName  string `db:"product_name" json:"product_name"`
	ReturnQty    int64  `db:"return_qty" json:"return_qty"`
}

type PlayerNotification struct {
	ID        string    `db:"id" json:"id"`
	CompanyID string    `db:"company_id" json:"company_id"`
	DedupeKey string    `db:"dedupe_key" json:"dedupe_key"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
