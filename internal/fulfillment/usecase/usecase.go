package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/playrise/shopsim-warehouse-service/config"
	"github.com/playrise/shopsim-warehouse-service/internal/apperr"
	"github.com/playrise/shopsim-warehouse-service/internal/fulfillment"
	"github.com/playrise/shopsim-warehouse-service/internal/fulfillment/dto"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/cache"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type fulfillmentUseCase struct {
	repo   fulfillment.Repository
	cache  *cache.RedisClient
	sim    config.SimulationConfig
	logger logger.ZapLogger
}

// NewFulfillmentUseCase builds the engine. cache may be nil; the store
// transaction remains the hard consistency boundary, the lock only spares
// concurrent callers wasted aborts.
func NewFulfillmentUseCase(repo fulfillment.Repository, cache *cache.RedisClient, sim config.SimulationConfig, log logger.ZapLogger) fulfillment.UseCase {
	return &fulfillmentUseCase{
		repo:   repo,
		cache:  cache,
		sim:    sim,
		logger: log,
	}
}

func (uc *fulfillmentUseCase) Fulfill(ctx context.Context, input *dto.FulfillInput) (*dto.FulfillResult, error) {
	if input.WarehouseID == "" || input.DayKey == "" {
		return nil, apperr.Validationf("warehouse id and day key are required")
	}

	wh, err := uc.repo.FindWarehouse(ctx, input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.CompanyID != input.CompanyID {
		return nil, apperr.NotFoundf("warehouse %s", input.WarehouseID)
	}

	unlock, err := uc.lockWarehouse(ctx, wh.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	capacityTotal := uc.capacityForTier(wh.Tier)
	consumed, err := uc.repo.CapacityConsumed(ctx, wh.ID, input.DayKey)
	if err != nil {
		return nil, err
	}
	capacityLeft := capacityTotal - consumed
	if capacityLeft < 0 {
		capacityLeft = 0
	}

	rows, err := uc.repo.ListUnshipped(ctx, wh.ID, input.DayKey)
	if err != nil {
		return nil, err
	}

	var ships []fulfillment.Shipment
	var shipped int64
	var backlog int64
	prices := map[string]float64{}

	for i := range rows {
		row := &rows[i]
		remaining := row.Backlog()
		backlog += remaining
		if capacityLeft <= 0 {
			continue
		}

		item, err := uc.repo.FindItem(ctx, wh.ID, row.ProductID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			continue
		}
		available := item.QtyOnHand
		if item.QtyReserved < available {
			available = item.QtyReserved
		}
		if available <= 0 {
			// No stock: skipped, not retried. The backlog persists.
			continue
		}

		ship := remaining
		if ship > capacityLeft {
			ship = capacityLeft
		}
		if ship > available {
			ship = available
		}
		if ship <= 0 {
			continue
		}

		price, ok := prices[row.ListingID]
		if !ok {
			l, err := uc.repo.FindListing(ctx, row.ListingID)
			if err != nil {
				return nil, err
			}
			if l != nil {
				price = l.SalePrice
			}
			prices[row.ListingID] = price
		}

		ships = append(ships, fulfillment.Shipment{Row: row, Ship: ship, SalePrice: price})
		capacityLeft -= ship
		shipped += ship
	}

	if err := uc.repo.ApplyShipments(ctx, input.CompanyID, wh.ID, input.DayKey, ships); err != nil {
		return nil, err
	}

	result := &dto.FulfillResult{
		ShippedUnits:  shipped,
		BacklogUnits:  backlog - shipped,
		ShippedLines:  len(ships),
		CapacityUsed:  consumed + shipped,
		CapacityTotal: capacityTotal,
		WasIdempotent: shipped == 0,
	}

	uc.logger.Info("fulfillment pass",
		zap.String("warehouse_id", wh.ID),
		zap.String("day_key", input.DayKey),
		zap.Int64("shipped", result.ShippedUnits),
		zap.Int64("backlog", result.BacklogUnits),
		zap.Bool("idempotent", result.WasIdempotent),
	)
	return result, nil
}

func (uc *fulfillmentUseCase) ClearBacklog(ctx context.Context, input *dto.ClearBacklogInput) (*dto.ClearResult, error) {
	if input.StaffCount < 1 {
		return nil, apperr.Validationf("staff count must be at least 1")
	}
	if input.DayKey == "" {
		input.DayKey = model.DayKeyOf(time.Now())
	}

	wh, err := uc.repo.FindWarehouse(ctx, input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.CompanyID != input.CompanyID {
		return nil, apperr.NotFoundf("warehouse %s", input.WarehouseID)
	}

	unlock, err := uc.lockWarehouse(ctx, wh.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	key := input.IdempotencyKey
	if key == "" {
		key = fmt.Sprintf("RUSH:%s:%s:%s:%d", input.CompanyID, wh.ID, input.DayKey, input.StaffCount)
	}

	// Replay check comes before the backlog and balance gates: a retried
	// clearance that already emptied the backlog or drained the wallet must
	// still return its original outcome.
	if prior, err := uc.repo.FindClearance(ctx, key); err != nil {
		return nil, err
	} else if prior != nil {
		return uc.replayResult(ctx, wh.ID, prior)
	}

	salaryMult, err := uc.repo.CountrySalaryMultiplier(ctx, wh.CountryCode)
	if err != nil {
		return nil, err
	}
	cost := float64(input.StaffCount) * uc.sim.RushCostPerWorker * salaryMult

	backlogBefore, err := uc.repo.TotalBacklog(ctx, wh.ID)
	if err != nil {
		return nil, err
	}
	if backlogBefore <= 0 {
		return nil, apperr.Validationf("no backlog to clear")
	}

	// Fail fast, before any write. The keyed debit inside the transaction
	// still guards the race.
	balance, err := uc.repo.WalletBalance(ctx, input.CompanyID)
	if err != nil {
		return nil, err
	}
	if balance < cost {
		return nil, fmt.Errorf("%w: need %.2f, have %.2f", apperr.ErrInsufficientFunds, cost, balance)
	}

	target := input.StaffCount * uc.sim.RushUnitsPerWorker
	if target > backlogBefore {
		target = backlogBefore
	}

	outcome, err := uc.repo.ApplyClearance(ctx, &fulfillment.Clearance{
		CompanyID:      input.CompanyID,
		WarehouseID:    wh.ID,
		DayKey:         input.DayKey,
		IdempotencyKey: key,
		CostUSD:        cost,
		Target:         target,
		StaffCount:     input.StaffCount,
	})
	if err != nil {
		return nil, err
	}

	result := &dto.ClearResult{
		ClearedUnits: outcome.ClearedUnits,
		CostUSD:      cost,
		WasReplay:    outcome.WasReplay,
	}
	if outcome.WasReplay {
		result.BacklogBefore = backlogBefore
		result.BacklogAfter = backlogBefore
	} else {
		result.BacklogBefore = backlogBefore
		result.BacklogAfter = backlogBefore - outcome.ClearedUnits
	}

	uc.logger.Info("backlog clearance",
		zap.String("warehouse_id", wh.ID),
		zap.Int64("cleared", result.ClearedUnits),
		zap.Float64("cost_usd", result.CostUSD),
		zap.Bool("replay", result.WasReplay),
	)
	return result, nil
}

// replayResult rebuilds a ClearResult from the stored charge. The cleared
// amount carried in the note is the original outcome; the backlog is reported
// unchanged at its current value.
func (uc *fulfillmentUseCase) replayResult(ctx context.Context, warehouseID string, prior *model.LedgerEntry) (*dto.ClearResult, error) {
	var cleared, staff int64
	if _, err := fmt.Sscanf(prior.Note, "cleared=%d staff=%d", &cleared, &staff); err != nil {
		cleared = 0
	}
	backlogNow, err := uc.repo.TotalBacklog(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	result := &dto.ClearResult{
		ClearedUnits:  cleared,
		CostUSD:       prior.AmountUSD,
		BacklogBefore: backlogNow,
		BacklogAfter:  backlogNow,
		WasReplay:     true,
	}
	uc.logger.Info("backlog clearance",
		zap.String("warehouse_id", warehouseID),
		zap.Int64("cleared", result.ClearedUnits),
		zap.Float64("cost_usd", result.CostUSD),
		zap.Bool("replay", true),
	)
	return result, nil
}

func (uc *fulfillmentUseCase) capacityForTier(tier int) int64 {
	if tier < 1 {
		tier = 1
	}
	if tier > 5 {
		tier = 5
	}
	return uc.sim.TierCapacity[tier]
}

// lockWarehouse serializes callers touching the same warehouse. Without
// redis it is a no-op: the caller contract says day-advance does not overlap
// calls for one warehouse, and guarded SQL updates catch the rest.
func (uc *fulfillmentUseCase) lockWarehouse(ctx context.Context, warehouseID string) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}

	lockKey := "lock:warehouse:" + warehouseID
	lockValue := uuid.New().String()
	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, 30*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire warehouse lock", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return nil, apperr.Conflictf("warehouse %s is busy, retry shortly", warehouseID)
	}
	return func() {
		if err := uc.cache.ReleaseLock(ctx, lockKey, lockValue); err != nil {
			uc.logger.Warn("failed to release warehouse lock", zap.Error(err))
		}
	}, nil
}
