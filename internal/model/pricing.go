package model

// DemandBand configures the baseline [min,max] daily demand for a
// (category, quality, tier) triple.
type DemandBand struct {
	ID         string `db:"id" json:"id"`
	CategoryID string `db:"category_id" json:"category_id"`
	Quality    string `db:"quality" json:"quality"`
	Tier       int    `db:"tier" json:"tier"`
	MinDaily   int64  `db:"min_daily" json:"min_daily"`
	MaxDaily   int64  `db:"max_daily" json:"max_daily"`
}

// PriceMultiplierStep maps a price-index ceiling to a demand multiplier.
// Steps are consulted in ascending MaxIndex order; the first step whose
// MaxIndex covers the index wins. Multipliers are non-increasing in
// MaxIndex, reaching 0 where overpricing kills demand.
type PriceMultiplierStep struct {
	MaxIndex   float64 `db:"max_index" json:"max_index"`
	Multiplier float64 `db:"multiplier" json:"multiplier"`
}

// SeasonFactor scales demand for a category in a calendar month.
// Score 0 blocks demand outright.
type SeasonFactor struct {
	CategoryID string  `db:"category_id" json:"category_id"`
	Month      int     `db:"month" json:"month"`
	Score      float64 `db:"score" json:"score"`
}
