package settlement

import (
	"context"

	"github.com/playrise/shopsim-warehouse-service/internal/settlement/dto"
)

type UseCase interface {
	// ApplyReturns restocks the settlement's returned units. Each line is
	// deduplicated by its movement key, the player notification by a
	// settlement-scoped key, so re-invocation restocks and notifies
	// nothing twice.
	ApplyReturns(ctx context.Context, settlementID string) (*dto.ReturnsResult, error)
}
