package listing

import (
	"context"
	"math"

	"github.com/playrise/shopsim-warehouse-service/internal/listing/dto"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
)

// Scorer combines the frozen band draw with the day's price multiplier and
// season score into the final desired quantity. The exact weighting is a
// game-design knob, so it is pluggable.
type Scorer func(baseQty int64, priceMultiplier, seasonScore float64) int64

// DefaultScorer is plain multiplicative rounding.
func DefaultScorer(baseQty int64, priceMultiplier, seasonScore float64) int64 {
	desired := int64(math.Round(float64(baseQty) * priceMultiplier * seasonScore))
	if desired < 0 {
		return 0
	}
	return desired
}

type UseCase interface {
	// Create resolves the band, draws the base quantity once, computes the
	// price snapshot and persists the listing. Conflicts when an active
	// listing for the same company/zone/product already exists.
	Create(ctx context.Context, input *dto.CreateListingInput) (*model.Listing, error)
	// UpdatePrice recomputes only the price snapshot; the band is immutable.
	UpdatePrice(ctx context.Context, input *dto.UpdatePriceInput) (*model.Listing, error)
	// GenerateDemand writes the day's demand rows for every active listing
	// of the warehouse and reserves stock against them. Safe to re-invoke:
	// a (listing, day) row is written once.
	GenerateDemand(ctx context.Context, companyID, warehouseID, dayKey string) (*dto.DemandRunResult, error)
	// DemandReport is the read-only diagnostics surface.
	DemandReport(ctx context.Context, companyID, warehouseID, dayKey string) ([]dto.DemandLine, error)
}
