package pricing

import (
	"context"

	"github.com/playrise/shopsim-warehouse-service/internal/pricing/dto"
)

type UseCase interface {
	// ResolveBand never fails on missing configuration: leaf band, then
	// parent-category band, then a synthetic fallback flagged Matched=false.
	ResolveBand(ctx context.Context, categoryID, quality string, tier int) (*dto.ResolvedBand, error)
	// PriceSnapshot derives the demand multiplier from how the sale price
	// relates to the zone-adjusted suggested price.
	PriceSnapshot(ctx context.Context, salePrice, suggestedPrice, zoneMultiplier float64) (*dto.PriceSnapshot, error)
	// SeasonScore is the demand factor for a category in a calendar month,
	// 1 when unconfigured. Score 0 blocks demand.
	SeasonScore(ctx context.Context, categoryID string, month int) (float64, error)
}
