package pricing

import (
	"context"

	"github.com/playrise/shopsim-warehouse-service/internal/model"
)

type Repository interface {
	FindBand(ctx context.Context, categoryID, quality string, tier int) (*model.DemandBand, error)
	FindCategoryParent(ctx context.Context, categoryID string) (*string, error)
	ListPriceSteps(ctx context.Context) ([]model.PriceMultiplierStep, error)
	FindSeasonFactor(ctx context.Context, categoryID string, month int) (*model.SeasonFactor, error)
}
