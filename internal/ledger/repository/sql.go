package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/playrise/shopsim-warehouse-service/internal/ledger/dto"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
)

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

// IsUniqueViolation reports whether err came from a unique constraint.
// Portable across the sqlite and pgx drivers, which have no shared error
// type for this.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}

func (r *SQLRepository) PostEntry(ctx context.Context, input *dto.PostEntryInput) (*model.LedgerEntry, bool, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	entry, isNew, err := PostEntryTx(ctx, tx, input)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return entry, isNew, nil
}

func (r *SQLRepository) PostEntries(ctx context.Context, inputs []*dto.PostEntryInput) ([]*model.LedgerEntry, int, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	entries, applied, err := PostEntriesTx(ctx, tx, inputs)
	if err != nil {
		return nil, 0, err
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	return entries, applied, nil
}

func (r *SQLRepository) PostWalletTransaction(ctx context.Context, input *dto.PostWalletInput) (*model.WalletTransaction, bool, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	wt, isNew, err := PostWalletTransactionTx(ctx, tx, input)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return wt, isNew, nil
}

func (r *SQLRepository) GetBalance(ctx context.Context, companyID, currency string) (float64, error) {
	var balance float64
	query := r.DB.Rebind(`SELECT balance FROM wallet_balances WHERE company_id = ? AND currency = ?`)
	err := r.DB.GetContext(ctx, &balance, query, companyID, currency)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

func (r *SQLRepository) FindEntryByKey(ctx context.Context, key string) (*model.LedgerEntry, error) {
	var entry model.LedgerEntry
	query := r.DB.Rebind(`SELECT * FROM ledger_entries WHERE idempotency_key = ?`)
	err := r.DB.GetContext(ctx, &entry, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// PostEntryTx is the tx-scoped form of PostEntry, shared with the other
// repositories that post money effects inside their own transactions.
func PostEntryTx(ctx context.Context, tx *sqlx.Tx, input *dto.PostEntryInput) (*model.LedgerEntry, bool, error) {
	existing, err := findEntryByKeyTx(ctx, tx, input.IdempotencyKey)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	entry := &model.LedgerEntry{
		ID:             uuid.New().String(),
		IdempotencyKey: input.IdempotencyKey,
		CompanyID:      input.CompanyID,
		DayKey:         input.DayKey,
		Direction:      input.Direction,
		AmountUSD:      input.AmountUSD,
		Category:       input.Category,
		Scope:          input.Scope,
		Counterparty:   input.Counterparty,
		Note:           input.Note,
		CreatedAt:      time.Now().UTC(),
	}

	_, err = tx.NamedExecContext(ctx, `
        INSERT INTO ledger_entries (id, idempotency_key, company_id, day_key, direction, amount_usd, category, scope, counterparty, note, created_at)
        VALUES (:id, :idempotency_key, :company_id, :day_key, :direction, :amount_usd, :category, :scope, :counterparty, :note, :created_at)
    `, entry)
	if err != nil {
		if IsUniqueViolation(err) {
			// Lost the race to a concurrent writer; their entry wins.
			existing, ferr := findEntryByKeyTx(ctx, tx, input.IdempotencyKey)
			if ferr != nil {
				return nil, false, ferr
			}
			if existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}

	if err := AddBalanceTx(ctx, tx, entry.CompanyID, model.CurrencyUSD, entry.SignedAmount()); err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

// PostEntriesTx posts a batch and applies one aggregate balance increment
// per (company, currency) instead of one per entry, to keep contention on
// the wallet row low. Returns how many entries were new.
func PostEntriesTx(ctx context.Context, tx *sqlx.Tx, inputs []*dto.PostEntryInput) ([]*model.LedgerEntry, int, error) {
	entries := make([]*model.LedgerEntry, 0, len(inputs))
	deltas := map[string]float64{}
	applied := 0

	for _, input := range inputs {
		existing, err := findEntryByKeyTx(ctx, tx, input.IdempotencyKey)
		if err != nil {
			return nil, 0, err
		}
		if existing != nil {
			entries = append(entries, existing)
			continue
		}

		entry := &model.LedgerEntry{
			ID:             uuid.New().String(),
			IdempotencyKey: input.IdempotencyKey,
			CompanyID:      input.CompanyID,
			DayKey:         input.DayKey,
			Direction:      input.Direction,
			AmountUSD:      input.AmountUSD,
			Category:       input.Category,
			Scope:          input.Scope,
			Counterparty:   input.Counterparty,
			Note:           input.Note,
			CreatedAt:      time.Now().UTC(),
		}
		_, err = tx.NamedExecContext(ctx, `
            INSERT INTO ledger_entries (id, idempotency_key, company_id, day_key, direction, amount_usd, category, scope, counterparty, note, created_at)
            VALUES (:id, :idempotency_key, :company_id, :day_key, :direction, :amount_usd, :category, :scope, :counterparty, :note, :created_at)
        `, entry)
		if err != nil {
			return nil, 0, err
		}

		deltas[entry.CompanyID] += entry.SignedAmount()
		entries = append(entries, entry)
		applied++
	}

	for companyID, delta := range deltas {
		if err := AddBalanceTx(ctx, tx, companyID, model.CurrencyUSD, delta); err != nil {
			return nil, 0, err
		}
	}
	return entries, applied, nil
}

// PostWalletTransactionTx mirrors PostEntryTx for secondary currencies.
func PostWalletTransactionTx(ctx context.Context, tx *sqlx.Tx, input *dto.PostWalletInput) (*model.WalletTransaction, bool, error) {
	var existing model.WalletTransaction
	query := tx.Rebind(`SELECT * FROM wallet_transactions WHERE idempotency_key = ?`)
	err := tx.GetContext(ctx, &existing, query, input.IdempotencyKey)
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	wt := &model.WalletTransaction{
		ID:             uuid.New().String(),
		IdempotencyKey: input.IdempotencyKey,
		CompanyID:      input.CompanyID,
		Currency:       input.Currency,
		Delta:          input.Delta,
		Reason:         input.Reason,
		CreatedAt:      time.Now().UTC(),
	}
	_, err = tx.NamedExecContext(ctx, `
        INSERT INTO wallet_transactions (id, idempotency_key, company_id, currency, delta, reason, created_at)
        VALUES (:id, :idempotency_key, :company_id, :currency, :delta, :reason, :created_at)
    `, wt)
	if err != nil {
		if IsUniqueViolation(err) {
			ferr := tx.GetContext(ctx, &existing, query, input.IdempotencyKey)
			if ferr == nil {
				return &existing, false, nil
			}
		}
		return nil, false, err
	}

	if err := AddBalanceTx(ctx, tx, wt.CompanyID, wt.Currency, wt.Delta); err != nil {
		return nil, false, err
	}
	return wt, true, nil
}

// AddBalanceTx applies a signed delta to a wallet with an atomic upsert
// increment, never a read-modify-write.
func AddBalanceTx(ctx context.Context, tx *sqlx.Tx, companyID, currency string, delta float64) error {
	query := tx.Rebind(`
        INSERT INTO wallet_balances (company_id, currency, balance)
        VALUES (?, ?, ?)
        ON CONFLICT (company_id, currency)
        DO UPDATE SET balance = wallet_balances.balance + excluded.balance
    `)
	_, err := tx.ExecContext(ctx, query, companyID, currency, delta)
	return err
}

// GetBalanceTx reads the balance inside the caller's transaction.
func GetBalanceTx(ctx context.Context, tx *sqlx.Tx, companyID, currency string) (float64, error) {
	var balance float64
	query := tx.Rebind(`SELECT balance FROM wallet_balances WHERE company_id = ? AND currency = ?`)
	err := tx.GetContext(ctx, &balance, query, companyID, currency)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

func findEntryByKeyTx(ctx context.Context, tx *sqlx.Tx, key string) (*model.LedgerEntry, error) {
	var entry model.LedgerEntry
	query := tx.Rebind(`SELECT * FROM ledger_entries WHERE idempotency_key = ?`)
	err := tx.GetContext(ctx, &entry, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
