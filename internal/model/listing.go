package model

type Category struct {
	ID       string  `db:"id" json:"id"`
	ParentID *string `db:"parent_id" json:"parent_id"` // Nullable, NULL = root
	Name     string  `db:"name" json:"name"`
}

type Product struct {
	ID             string  `db:"id" json:"id"`
	CategoryID     string  `db:"category_id" json:"category_id"`
	Name           string  `db:"name" json:"name"`
	Quality        string  `db:"quality" json:"quality"`
	SuggestedPrice float64 `db:"suggested_price" json:"suggested_price"`
}

// Listing offers one product for sale in one warehouse/zone.
//
// The band block (TierUsed..BandMatched) is a snapshot frozen at creation:
// BaseQty is drawn once from [BaseMinDaily, BaseMaxDaily] and never
// recomputed. The price block (NormalPrice..BlockedByPrice) is rewritten on
// every price update.
type Listing struct {
	BaseModel
	CompanyID   string  `db:"company_id" json:"company_id"`
	WarehouseID string  `db:"warehouse_id" json:"warehouse_id"`
	ZoneID      string  `db:"zone_id" json:"zone_id"`
	ProductID   string  `db:"product_id" json:"product_id"`
	CategoryID  string  `db:"category_id" json:"category_id"`
	Quality     string  `db:"quality" json:"quality"`
	SalePrice   float64 `db:"sale_price" json:"sale_price"`
	IsActive    bool    `db:"is_active" json:"is_active"`

	TierUsed     int   `db:"tier_used" json:"tier_used"`
	BaseMinDaily int64 `db:"base_min_daily" json:"base_min_daily"`
	BaseMaxDaily int64 `db:"base_max_daily" json:"base_max_daily"`
	BaseQty      int64 `db:"base_qty" json:"base_qty"`
	BandMatched  bool  `db:"band_matched" json:"band_matched"`

	NormalPrice     float64 `db:"normal_price" json:"normal_price"`
	PriceIndex      float64 `db:"price_index" json:"price_index"`
	PriceMultiplier float64 `db:"price_multiplier" json:"price_multiplier"`
	BlockedByPrice  bool    `db:"blocked_by_price" json:"blocked_by_price"`
}

// DailySales is the per-listing, per-day demand and shipping log.
// QtyOrdered and QtyShipped are cumulative; backlog = ordered - shipped.
// The remaining fields mirror the inputs of demand resolution for the debug
// report.
type DailySales struct {
	BaseModel
	ListingID   string `db:"listing_id" json:"listing_id"`
	WarehouseID string `db:"warehouse_id" json:"warehouse_id"`
	ProductID   string `db:"product_id" json:"product_id"`
	DayKey      string `db:"day_key" json:"day_key"`
	QtyOrdered  int64  `db:"qty_ordered" json:"qty_ordered"`
	QtyShipped  int64  `db:"qty_shipped" json:"qty_shipped"`

	PriceIndex      float64 `db:"price_index" json:"price_index"`
	SeasonScore     float64 `db:"season_score" json:"season_score"`
	PriceMultiplier float64 `db:"price_multiplier" json:"price_multiplier"`
	FinalDesired    int64   `db:"final_desired" json:"final_desired"`
	BlockedByPrice  bool    `db:"blocked_by_price" json:"blocked_by_price"`
	BlockedBySeason bool    `db:"blocked_by_season" json:"blocked_by_season"`
}

// Backlog is the unshipped remainder of the row.
func (d *DailySales) Backlog() int64 {
	return d.QtyOrdered - d.QtyShipped
}
