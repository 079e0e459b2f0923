// Package simulation sequences one game day for a company: demand, then
// fulfillment, per warehouse, then returns for any settlements the billing
// process has handed over. Every step it calls is idempotent, so the whole
// advance is safe to re-run.
package simulation

import (
	"context"
	"time"

	"github.com/playrise/shopsim-warehouse-service/internal/fulfillment"
	fulfillmentdto "github.com/playrise/shopsim-warehouse-service/internal/fulfillment/dto"
	"github.com/playrise/shopsim-warehouse-service/internal/listing"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/logger"
	"github.com/playrise/shopsim-warehouse-service/internal/settlement"
	"go.uber.org/zap"
)

type AdvanceResult struct {
	DayKey           string `json:"day_key"`
	WarehousesTicked int    `json:"warehouses_ticked"`
	SettlementsRun   int    `json:"settlements_run"`
	UnitsOrdered     int64  `json:"units_ordered"`
	UnitsShipped     int64  `json:"units_shipped"`
	BacklogUnits     int64  `json:"backlog_units"`
}

type Advancer struct {
	listings     listing.UseCase
	listingRepo  listing.Repository
	fulfillments fulfillment.UseCase
	settlements  settlement.UseCase
	logger       logger.ZapLogger
}

func NewAdvancer(listings listing.UseCase, listingRepo listing.Repository, fulfillments fulfillment.UseCase, settlements settlement.UseCase, log logger.ZapLogger) *Advancer {
	return &Advancer{
		listings:     listings,
		listingRepo:  listingRepo,
		fulfillments: fulfillments,
		settlements:  settlements,
		logger:       log,
	}
}

// AdvanceDay runs the day for every warehouse of the company. dayKey
// defaults to today (UTC). settlementIDs are whatever the billing process
// has closed since the last advance.
func (a *Advancer) AdvanceDay(ctx context.Context, companyID, dayKey string, settlementIDs []string) (*AdvanceResult, error) {
	if dayKey == "" {
		dayKey = model.DayKeyOf(time.Now())
	}

	warehouses, err := a.listingRepo.ListWarehouses(ctx, companyID)
	if err != nil {
		return nil, err
	}

	result := &AdvanceResult{DayKey: dayKey}
	for _, wh := range warehouses {
		demand, err := a.listings.GenerateDemand(ctx, companyID, wh.ID, dayKey)
		if err != nil {
			return nil, err
		}
		result.UnitsOrdered += demand.UnitsOrdered

		shipped, err := a.fulfillments.Fulfill(ctx, &fulfillmentdto.FulfillInput{
			CompanyID:   companyID,
			WarehouseID: wh.ID,
			DayKey:      dayKey,
		})
		if err != nil {
			return nil, err
		}
		result.UnitsShipped += shipped.ShippedUnits
		result.BacklogUnits += shipped.BacklogUnits
		result.WarehousesTicked++
	}

	for _, settlementID := range settlementIDs {
		if _, err := a.settlements.ApplyReturns(ctx, settlementID); err != nil {
			return nil, err
		}
		result.SettlementsRun++
	}

	a.logger.Info("day advanced",
		zap.String("company_id", companyID),
		zap.String("day_key", dayKey),
		zap.Int("warehouses", result.WarehousesTicked),
		zap.Int("settlements", result.SettlementsRun),
	)
	return result, nil
}
