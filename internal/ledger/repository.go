package ledger

import (
	"context"

	"github.com/playrise/shopsim-warehouse-service/internal/ledger/dto"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
)

type Repository interface {
	// PostEntry runs the check-then-create-then-increment sequence in one
	// transaction. The bool is isNew.
	PostEntry(ctx context.Context, input *dto.PostEntryInput) (*model.LedgerEntry, bool, error)
	PostEntries(ctx context.Context, inputs []*dto.PostEntryInput) ([]*model.LedgerEntry, int, error)
	PostWalletTransaction(ctx context.Context, input *dto.PostWalletInput) (*model.WalletTransaction, bool, error)
	GetBalance(ctx context.Context, companyID, currency string) (float64, error)
	FindEntryByKey(ctx context.Context, key string) (*model.LedgerEntry, error)
}
