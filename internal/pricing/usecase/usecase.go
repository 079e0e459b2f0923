package usecase

import (
	"context"
	"math"

	"github.com/playrise/shopsim-warehouse-service/internal/model"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/logger"
	"github.com/playrise/shopsim-warehouse-service/internal/pricing"
	"github.com/playrise/shopsim-warehouse-service/internal/pricing/dto"
	"go.uber.org/zap"
)

// defaultPriceSteps backs the multiplier lookup when the table has not been
// seeded. Monotonic: a higher relative price never raises demand.
var defaultPriceSteps = []model.PriceMultiplierStep{
	{MaxIndex: 0.80, Multiplier: 1.30},
	{MaxIndex: 1.00, Multiplier: 1.00},
	{MaxIndex: 1.20, Multiplier: 0.75},
	{MaxIndex: 1.50, Multiplier: 0.40},
	{MaxIndex: 2.00, Multiplier: 0.15},
}

type pricingUseCase struct {
	repo   pricing.Repository
	logger logger.ZapLogger
}

func NewPricingUseCase(repo pricing.Repository, log logger.ZapLogger) pricing.UseCase {
	return &pricingUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *pricingUseCase) ResolveBand(ctx context.Context, categoryID, quality string, tier int) (*dto.ResolvedBand, error) {
	tier = clampTier(tier)

	band, err := uc.repo.FindBand(ctx, categoryID, quality, tier)
	if err != nil {
		return nil, err
	}

	if band == nil {
		parentID, err := uc.repo.FindCategoryParent(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		if parentID != nil && *parentID != "" {
			band, err = uc.repo.FindBand(ctx, *parentID, quality, tier)
			if err != nil {
				return nil, err
			}
		}
	}

	if band == nil {
		// Missing content configuration must never block the player.
		uc.logger.Warn("no demand band configured, using fallback",
			zap.String("category_id", categoryID),
			zap.String("quality", quality),
			zap.Int("tier", tier),
		)
		return &dto.ResolvedBand{
			TierUsed: tier,
			MinDaily: 1,
			MaxDaily: clampInt64(int64(tier)+1, 2, 5),
			Matched:  false,
		}, nil
	}

	minDaily := band.MinDaily
	if minDaily < 1 {
		minDaily = 1
	}
	maxDaily := band.MaxDaily
	if maxDaily < minDaily {
		maxDaily = minDaily
	}
	return &dto.ResolvedBand{
		TierUsed: tier,
		MinDaily: minDaily,
		MaxDaily: maxDaily,
		Matched:  true,
	}, nil
}

func (uc *pricingUseCase) PriceSnapshot(ctx context.Context, salePrice, suggestedPrice, zoneMultiplier float64) (*dto.PriceSnapshot, error) {
	normal := suggestedPrice * zoneMultiplier
	if !(normal > 0) || math.IsInf(normal, 0) || math.IsNaN(normal) {
		normal = salePrice
	}

	index := 1.0
	if normal > 0 {
		index = salePrice / normal
	}
	if math.IsInf(index, 0) || math.IsNaN(index) {
		index = 1.0
	}

	steps, err := uc.repo.ListPriceSteps(ctx)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		steps = defaultPriceSteps
	}

	mult := multiplierFor(steps, index)
	return &dto.PriceSnapshot{
		NormalPrice:     normal,
		PriceIndex:      index,
		PriceMultiplier: mult,
		BlockedByPrice:  mult == 0,
	}, nil
}

func (uc *pricingUseCase) SeasonScore(ctx context.Context, categoryID string, month int) (float64, error) {
	factor, err := uc.repo.FindSeasonFactor(ctx, categoryID, month)
	if err != nil {
		return 0, err
	}
	if factor == nil {
		return 1, nil
	}
	if factor.Score < 0 {
		return 0, nil
	}
	return factor.Score, nil
}

// multiplierFor picks the first step whose MaxIndex covers the price index.
// Past the last step demand collapses to zero.
func multiplierFor(steps []model.PriceMultiplierStep, index float64) float64 {
	for _, step := range steps {
		if index <= step.MaxIndex {
			return step.Multiplier
		}
	}
	return 0
}

func clampTier(tier int) int {
	if tier < 1 {
		return 1
	}
	if tier > 5 {
		return 5
	}
	return tier
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
