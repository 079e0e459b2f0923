package fulfillment

import (
	"context"

	"github.com/playrise/shopsim-warehouse-service/internal/fulfillment/dto"
)

type UseCase interface {
	// Fulfill ships the oldest unshipped demand of the warehouse/day up to
	// the tier-derived daily capacity. Driven entirely by current row
	// state, so re-invocation is naturally safe.
	Fulfill(ctx context.Context, input *dto.FulfillInput) (*dto.FulfillResult, error)
	// ClearBacklog is the paid acceleration path: temporary staff clear
	// order backlog outside the daily capacity, without touching inventory.
	ClearBacklog(ctx context.Context, input *dto.ClearBacklogInput) (*dto.ClearResult, error)
}
