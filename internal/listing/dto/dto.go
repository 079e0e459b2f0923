package dto

// DemandRunResult summarizes one demand-generation pass over a warehouse.
type DemandRunResult struct {
	DayKey        string `json:"day_key"`
	ListingsSeen  int    `json:"listings_seen"`
	RowsCreated   int    `json:"rows_created"`
	UnitsOrdered  int64  `json:"units_ordered"`
	UnitsReserved int64  `json:"units_reserved"`
}

// DemandLine is one row of the read-only demand diagnostics report.
type DemandLine struct {
	ListingID       string  `db:"listing_id" json:"listing_id"`
	ProductID       string  `db:"product_id" json:"product_id"`
	DayKey          string  `db:"day_key" json:"day_key"`
	PriceIndex      float64 `db:"price_index" json:"price_index"`
	SeasonScore     float64 `db:"season_score" json:"season_score"`
	PriceMultiplier float64 `db:"price_multiplier" json:"price_multiplier"`
	TierUsed        int     `db:"tier_used" json:"tier_used"`
	BandMatched     bool    `db:"band_matched" json:"band_matched"`
	FinalDesired    int64   `db:"final_desired" json:"final_desired"`
	BlockedByPrice  bool    `db:"blocked_by_price" json:"blocked_by_price"`
	BlockedBySeason bool    `db:"blocked_by_season" json:"blocked_by_season"`
	QtyOrdered      int64   `db:"qty_ordered" json:"qty_ordered"`
	QtyShipped      int64   `db:"qty_shipped" json:"qty_shipped"`
}
