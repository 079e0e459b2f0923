package usecase

import (
	"context"

	"github.com/playrise/shopsim-warehouse-service/internal/apperr"
	"github.com/playrise/shopsim-warehouse-service/internal/ledger"
	"github.com/playrise/shopsim-warehouse-service/internal/ledger/dto"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type ledgerUseCase struct {
	repo   ledger.Repository
	logger logger.ZapLogger
}

func NewLedgerUseCase(repo ledger.Repository, log logger.ZapLogger) ledger.UseCase {
	return &ledgerUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *ledgerUseCase) PostEntry(ctx context.Context, input *dto.PostEntryInput) (*model.LedgerEntry, bool, error) {
	if err := validateEntry(input); err != nil {
		return nil, false, err
	}

	entry, isNew, err := uc.repo.PostEntry(ctx, input)
	if err != nil {
		return nil, false, err
	}
	if !isNew {
		uc.logger.Debug("ledger entry replayed",
			zap.String("key", input.IdempotencyKey),
			zap.String("company_id", input.CompanyID),
		)
	}
	return entry, isNew, nil
}

func (uc *ledgerUseCase) PostEntries(ctx context.Context, inputs []*dto.PostEntryInput) ([]*model.LedgerEntry, int, error) {
	for _, input := range inputs {
		if err := validateEntry(input); err != nil {
			return nil, 0, err
		}
	}
	return uc.repo.PostEntries(ctx, inputs)
}

func (uc *ledgerUseCase) PostWalletTransaction(ctx context.Context, input *dto.PostWalletInput) (*model.WalletTransaction, bool, error) {
	if input.IdempotencyKey == "" {
		return nil, false, apperr.Validationf("idempotency key is required")
	}
	if input.CompanyID == "" {
		return nil, false, apperr.Validationf("company id is required")
	}
	if input.Currency == "" {
		return nil, false, apperr.Validationf("currency is required")
	}
	return uc.repo.PostWalletTransaction(ctx, input)
}

func (uc *ledgerUseCase) Balance(ctx context.Context, companyID, currency string) (float64, error) {
	if companyID == "" {
		return 0, apperr.Validationf("company id is required")
	}
	return uc.repo.GetBalance(ctx, companyID, currency)
}

func validateEntry(input *dto.PostEntryInput) error {
	if input.IdempotencyKey == "" {
		return apperr.Validationf("idempotency key is required")
	}
	if input.CompanyID == "" {
		return apperr.Validationf("company id is required")
	}
	if input.AmountUSD < 0 {
		return apperr.Validationf("amount must not be negative")
	}
	if input.Direction != model.LedgerCredit && input.Direction != model.LedgerDebit {
		return apperr.Validationf("direction must be credit or debit")
	}
	return nil
}
