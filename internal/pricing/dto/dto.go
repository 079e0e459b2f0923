package dto

// ResolvedBand is the [min,max] daily demand range for a listing.
// Matched is false when no configuration existed at the leaf or parent
// category and the synthetic fallback band was used instead.
type ResolvedBand struct {
	TierUsed int   `json:"tier_used"`
	MinDaily int64 `json:"min_daily"`
	MaxDaily int64 `json:"max_daily"`
	Matched  bool  `json:"matched"`
}

type PriceSnapshot struct {
	NormalPrice     float64 `json:"normal_price"`
	PriceIndex      float64 `json:"price_index"`
	PriceMultiplier float64 `json:"price_multiplier"`
	BlockedByPrice  bool    `json:"blocked_by_price"`
}
