package ledger

import (
	"context"

	"github.com/playrise/shopsim-warehouse-service/internal/ledger/dto"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
)

// UseCase is the exactly-once financial effect applicator. PostEntry and
// PostWalletTransaction return isNew=false (and leave every balance
// untouched) when the idempotency key has been seen before.
type UseCase interface {
	PostEntry(ctx context.Context, input *dto.PostEntryInput) (*model.LedgerEntry, bool, error)
	// PostEntries posts a batch and applies a single aggregate balance
	// increment per company for the entries that were actually new.
	PostEntries(ctx context.Context, inputs []*dto.PostEntryInput) ([]*model.LedgerEntry, int, error)
	PostWalletTransaction(ctx context.Context, input *dto.PostWalletInput) (*model.WalletTransaction, bool, error)
	Balance(ctx context.Context, companyID, currency string) (float64, error)
}
