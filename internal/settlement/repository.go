package settlement

import (
	"context"

	"github.com/playrise/shopsim-warehouse-service/internal/model"
)

// Restock is one settlement line's inbound stock effect.
type Restock struct {
	ProductID string
	Qty       int64
	// MovementKey is (settlement, product) scoped; it is the idempotency
	// guard for the line.
	MovementKey string
}

type Repository interface {
	FindSettlement(ctx context.Context, settlementID string) (*model.Settlement, error)
	ListLines(ctx context.Context, settlementID string) ([]model.SettlementLine, error)
	MovementExists(ctx context.Context, sourceType model.MovementSource, sourceRef string) (bool, error)
	// ApplyReturns commits all restocks, the stock metric bump and the
	// notification in one transaction. The notification insert is skipped
	// when its dedupe key exists; the bool reports whether it was written.
	ApplyReturns(ctx context.Context, s *model.Settlement, restocks []Restock, total int64, notification *model.PlayerNotification) (bool, error)
}
