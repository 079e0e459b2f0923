package usecase

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/playrise/shopsim-warehouse-service/internal/apperr"
	"github.com/playrise/shopsim-warehouse-service/internal/listing"
	"github.com/playrise/shopsim-warehouse-service/internal/listing/dto"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/logger"
	"github.com/playrise/shopsim-warehouse-service/internal/pricing"
	"go.uber.org/zap"
)

type listingUseCase struct {
	repo     listing.Repository
	pricing  pricing.UseCase
	scorer   listing.Scorer
	zoneMult float64
	logger   logger.ZapLogger
}

func NewListingUseCase(repo listing.Repository, pricingUC pricing.UseCase, scorer listing.Scorer, zoneMult float64, log logger.ZapLogger) listing.UseCase {
	if scorer == nil {
		scorer = listing.DefaultScorer
	}
	if zoneMult <= 0 {
		zoneMult = 1
	}
	return &listingUseCase{
		repo:     repo,
		pricing:  pricingUC,
		scorer:   scorer,
		zoneMult: zoneMult,
		logger:   log,
	}
}

func (uc *listingUseCase) Create(ctx context.Context, input *dto.CreateListingInput) (*model.Listing, error) {
	if input.SalePrice <= 0 {
		return nil, apperr.Validationf("sale price must be positive")
	}
	if input.WarehouseID == "" || input.InventoryItemID == "" {
		return nil, apperr.Validationf("warehouse id and inventory item id are required")
	}

	wh, err := uc.repo.FindWarehouse(ctx, input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.CompanyID != input.CompanyID {
		return nil, apperr.NotFoundf("warehouse %s", input.WarehouseID)
	}

	item, err := uc.repo.FindInventoryItem(ctx, input.InventoryItemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.WarehouseID != wh.ID {
		return nil, apperr.NotFoundf("inventory item %s", input.InventoryItemID)
	}

	product, err := uc.repo.FindProduct(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperr.NotFoundf("product %s", item.ProductID)
	}

	exists, err := uc.repo.ActiveListingExists(ctx, input.CompanyID, wh.ZoneID, product.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflictf("active listing for product %s in zone %s", product.ID, wh.ZoneID)
	}

	band, err := uc.pricing.ResolveBand(ctx, product.CategoryID, product.Quality, wh.Tier)
	if err != nil {
		return nil, err
	}

	suggested := product.SuggestedPrice
	if input.ListPrice > 0 {
		suggested = input.ListPrice
	}
	snap, err := uc.pricing.PriceSnapshot(ctx, input.SalePrice, suggested, uc.zoneMult)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	l := &model.Listing{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		CompanyID:   input.CompanyID,
		WarehouseID: wh.ID,
		ZoneID:      wh.ZoneID,
		ProductID:   product.ID,
		CategoryID:  product.CategoryID,
		Quality:     product.Quality,
		SalePrice:   input.SalePrice,
		IsActive:    true,

		TierUsed:     band.TierUsed,
		BaseMinDaily: band.MinDaily,
		BaseMaxDaily: band.MaxDaily,
		// Construction-time draw, frozen for the listing's lifetime.
		BaseQty:     band.MinDaily + rand.Int63n(band.MaxDaily-band.MinDaily+1),
		BandMatched: band.Matched,

		NormalPrice:     snap.NormalPrice,
		PriceIndex:      snap.PriceIndex,
		PriceMultiplier: snap.PriceMultiplier,
		BlockedByPrice:  snap.BlockedByPrice,
	}

	if err := uc.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	uc.logger.Info("listing created",
		zap.String("listing_id", l.ID),
		zap.String("product_id", l.ProductID),
		zap.Int64("base_qty", l.BaseQty),
		zap.Bool("band_matched", l.BandMatched),
	)
	return l, nil
}

func (uc *listingUseCase) UpdatePrice(ctx context.Context, input *dto.UpdatePriceInput) (*model.Listing, error) {
	if input.SalePrice <= 0 {
		return nil, apperr.Validationf("sale price must be positive")
	}

	l, err := uc.repo.FindListing(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}
	if l == nil || l.CompanyID != input.CompanyID {
		return nil, apperr.NotFoundf("listing %s", input.ListingID)
	}

	product, err := uc.repo.FindProduct(ctx, l.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperr.NotFoundf("product %s", l.ProductID)
	}

	suggested := product.SuggestedPrice
	if input.ListPrice > 0 {
		suggested = input.ListPrice
	}
	snap, err := uc.pricing.PriceSnapshot(ctx, input.SalePrice, suggested, uc.zoneMult)
	if err != nil {
		return nil, err
	}

	l.SalePrice = input.SalePrice
	l.NormalPrice = snap.NormalPrice
	l.PriceIndex = snap.PriceIndex
	l.PriceMultiplier = snap.PriceMultiplier
	l.BlockedByPrice = snap.BlockedByPrice
	l.UpdatedAt = time.Now().UTC()

	if err := uc.repo.UpdatePriceSnapshot(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (uc *listingUseCase) GenerateDemand(ctx context.Context, companyID, warehouseID, dayKey string) (*dto.DemandRunResult, error) {
	wh, err := uc.repo.FindWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.CompanyID != companyID {
		return nil, apperr.NotFoundf("warehouse %s", warehouseID)
	}

	listings, err := uc.repo.ListActiveByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	month := model.MonthOfDayKey(dayKey)
	result := &dto.DemandRunResult{DayKey: dayKey, ListingsSeen: len(listings)}
	writes := make([]listing.DemandWrite, 0, len(listings))
	now := time.Now().UTC()

	for i := range listings {
		l := &listings[i]

		done, err := uc.repo.HasDemandRow(ctx, l.ID, dayKey)
		if err != nil {
			return nil, err
		}
		if done {
			continue
		}

		season, err := uc.pricing.SeasonScore(ctx, l.CategoryID, month)
		if err != nil {
			return nil, err
		}

		blockedBySeason := season == 0
		desired := int64(0)
		if !l.BlockedByPrice && !blockedBySeason {
			desired = uc.scorer(l.BaseQty, l.PriceMultiplier, season)
		}

		reserve := desired
		if reserve > 0 {
			item, err := uc.repo.FindItemByWarehouseProduct(ctx, l.WarehouseID, l.ProductID)
			if err != nil {
				return nil, err
			}
			if item == nil {
				reserve = 0
			} else if avail := item.QtyOnHand - item.QtyReserved; reserve > avail {
				if avail < 0 {
					avail = 0
				}
				reserve = avail
			}
		}

		writes = append(writes, listing.DemandWrite{
			Row: &model.DailySales{
				BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
				ListingID:   l.ID,
				WarehouseID: l.WarehouseID,
				ProductID:   l.ProductID,
				DayKey:      dayKey,
				QtyOrdered:  desired,
				QtyShipped:  0,

				PriceIndex:      l.PriceIndex,
				SeasonScore:     season,
				PriceMultiplier: l.PriceMultiplier,
				FinalDesired:    desired,
				BlockedByPrice:  l.BlockedByPrice,
				BlockedBySeason: blockedBySeason,
			},
			ReserveQty: reserve,
		})
		result.UnitsOrdered += desired
		result.UnitsReserved += reserve
	}

	created, err := uc.repo.ApplyDemand(ctx, writes)
	if err != nil {
		return nil, err
	}
	result.RowsCreated = created

	uc.logger.Info("demand generated",
		zap.String("warehouse_id", warehouseID),
		zap.String("day_key", dayKey),
		zap.Int("rows", created),
		zap.Int64("units_ordered", result.UnitsOrdered),
	)
	return result, nil
}

func (uc *listingUseCase) DemandReport(ctx context.Context, companyID, warehouseID, dayKey string) ([]dto.DemandLine, error) {
	wh, err := uc.repo.FindWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.CompanyID != companyID {
		return nil, apperr.NotFoundf("warehouse %s", warehouseID)
	}
	return uc.repo.DemandReport(ctx, warehouseID, dayKey)
}
