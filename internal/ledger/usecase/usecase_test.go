package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/playrise/shopsim-warehouse-service/internal/apperr"
	"github.com/playrise/shopsim-warehouse-service/internal/ledger"
	"github.com/playrise/shopsim-warehouse-service/internal/ledger/dto"
	"github.com/playrise/shopsim-warehouse-service/internal/ledger/repository"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/database"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/logger"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newLedger(t *testing.T) (ledger.UseCase, *sqlx.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewLedgerUseCase(repository.NewSQLRepository(db), logger.NewNop()), db
}

func TestPostEntryIdempotent(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	input := &dto.PostEntryInput{
		IdempotencyKey: "TEST:credit-1",
		CompanyID:      "c1",
		DayKey:         "2026-03-01",
		Direction:      model.LedgerCredit,
		AmountUSD:      100,
		Category:       "sales_revenue",
	}

	entry, isNew, err := uc.PostEntry(ctx, input)
	if err != nil {
		t.Fatalf("post entry: %v", err)
	}
	if !isNew {
		t.Fatalf("first post reported as replay")
	}

	balance, err := uc.Balance(ctx, "c1", model.CurrencyUSD)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 100 {
		t.Fatalf("balance got=%v want=100", balance)
	}

	replay, isNew, err := uc.PostEntry(ctx, input)
	if err != nil {
		t.Fatalf("replay post: %v", err)
	}
	if isNew {
		t.Fatalf("replay reported as new")
	}
	if replay.ID != entry.ID {
		t.Fatalf("replay returned a different entry: got=%s want=%s", replay.ID, entry.ID)
	}

	balance, err = uc.Balance(ctx, "c1", model.CurrencyUSD)
	if err != nil {
		t.Fatalf("balance after replay: %v", err)
	}
	if balance != 100 {
		t.Fatalf("balance changed on replay: got=%v want=100", balance)
	}
}

func TestPostEntryDebitReducesBalance(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	_, _, err := uc.PostEntry(ctx, &dto.PostEntryInput{
		IdempotencyKey: "TEST:credit",
		CompanyID:      "c1",
		DayKey:         "2026-03-01",
		Direction:      model.LedgerCredit,
		AmountUSD:      100,
		Category:       "sales_revenue",
	})
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	_, _, err = uc.PostEntry(ctx, &dto.PostEntryInput{
		IdempotencyKey: "TEST:debit",
		CompanyID:      "c1",
		DayKey:         "2026-03-01",
		Direction:      model.LedgerDebit,
		AmountUSD:      30,
		Category:       "stock_purchase",
	})
	if err != nil {
		t.Fatalf("debit: %v", err)
	}

	balance, err := uc.Balance(ctx, "c1", model.CurrencyUSD)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 70 {
		t.Fatalf("balance got=%v want=70", balance)
	}
}

func TestPostEntryValidation(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input *dto.PostEntryInput
	}{
		{"missing key", &dto.PostEntryInput{CompanyID: "c1", Direction: model.LedgerCredit, AmountUSD: 1}},
		{"missing company", &dto.PostEntryInput{IdempotencyKey: "k", Direction: model.LedgerCredit, AmountUSD: 1}},
		{"negative amount", &dto.PostEntryInput{IdempotencyKey: "k", CompanyID: "c1", Direction: model.LedgerCredit, AmountUSD: -1}},
		{"bad direction", &dto.PostEntryInput{IdempotencyKey: "k", CompanyID: "c1", Direction: "sideways", AmountUSD: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := uc.PostEntry(ctx, tc.input)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("got err=%v want validation error", err)
			}
		})
	}
}

func TestPostEntriesSkipsReplayedKeys(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	_, _, err := uc.PostEntry(ctx, &dto.PostEntryInput{
		IdempotencyKey: "BATCH:a",
		CompanyID:      "c1",
		DayKey:         "2026-03-01",
		Direction:      model.LedgerCredit,
		AmountUSD:      10,
		Category:       "sales_revenue",
	})
	if err != nil {
		t.Fatalf("seed entry: %v", err)
	}

	entries, applied, err := uc.PostEntries(ctx, []*dto.PostEntryInput{
		{IdempotencyKey: "BATCH:a", CompanyID: "c1", DayKey: "2026-03-01", Direction: model.LedgerCredit, AmountUSD: 10, Category: "sales_revenue"},
		{IdempotencyKey: "BATCH:b", CompanyID: "c1", DayKey: "2026-03-01", Direction: model.LedgerCredit, AmountUSD: 25, Category: "sales_revenue"},
	})
	if err != nil {
		t.Fatalf("post batch: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries got=%d want=2", len(entries))
	}
	if applied != 1 {
		t.Fatalf("applied got=%d want=1", applied)
	}

	balance, err := uc.Balance(ctx, "c1", model.CurrencyUSD)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 35 {
		t.Fatalf("balance got=%v want=35", balance)
	}
}

func TestPostWalletTransactionIdempotent(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	input := &dto.PostWalletInput{
		IdempotencyKey: "XP:quest-1",
		CompanyID:      "c1",
		Currency:       "XP",
		Delta:          50,
		Reason:         "quest reward",
	}
	_, isNew, err := uc.PostWalletTransaction(ctx, input)
	if err != nil {
		t.Fatalf("wallet tx: %v", err)
	}
	if !isNew {
		t.Fatalf("first wallet tx reported as replay")
	}

	_, isNew, err = uc.PostWalletTransaction(ctx, input)
	if err != nil {
		t.Fatalf("wallet tx replay: %v", err)
	}
	if isNew {
		t.Fatalf("replay reported as new")
	}

	balance, err := uc.Balance(ctx, "c1", "XP")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 50 {
		t.Fatalf("XP balance got=%v want=50", balance)
	}
}

func TestBalanceUnknownCompanyIsZero(t *testing.T) {
	uc, _ := newLedger(t)

	balance, err := uc.Balance(context.Background(), "nobody", model.CurrencyUSD)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 0 {
		t.Fatalf("balance got=%v want=0", balance)
	}
}
