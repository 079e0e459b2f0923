package model

import "time"

type LedgerDirection string

const (
	LedgerCredit LedgerDirection = "credit"
	LedgerDebit  LedgerDirection = "debit"
)

// LedgerEntry is one money movement. Entries are terminal: created once,
// never mutated. IdempotencyKey is the sole dedupe mechanism - a second
// write with the same key returns the original entry and changes nothing.
type LedgerEntry struct {
	ID             string          `db:"id" json:"id"`
	IdempotencyKey string          `db:"idempotency_key" json:"idempotency_key"`
	CompanyID      string          `db:"company_id" json:"company_id"`
	DayKey         string          `db:"day_key" json:"day_key"`
	Direction      LedgerDirection `db:"direction" json:"direction"`
	AmountUSD      float64         `db:"amount_usd" json:"amount_usd"`
	Category       string          `db:"category" json:"category"`
	Scope          string          `db:"scope" json:"scope"`
	Counterparty   string          `db:"counterparty" json:"counterparty"`
	Note           string          `db:"note" json:"note"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// SignedAmount is the delta the entry applies to the company wallet.
func (e *LedgerEntry) SignedAmount() float64 {
	if e.Direction == LedgerDebit {
		return -e.AmountUSD
	}
	return e.AmountUSD
}

// WalletTransaction covers XP and other secondary currencies; same
// idempotency contract as LedgerEntry.
type WalletTransaction struct {
	ID             string    `db:"id" json:"id"`
	IdempotencyKey string    `db:"idempotency_key" json:"idempotency_key"`
	CompanyID      string    `db:"company_id" json:"company_id"`
	Currency       string    `db:"currency" json:"currency"`
	Delta          float64   `db:"delta" json:"delta"`
	Reason         string    `db:"reason" json:"reason"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

const CurrencyUSD = "USD"

type WalletBalance struct {
	CompanyID string  `db:"company_id" json:"company_id"`
	Currency  string  `db:"currency" json:"currency"`
	Balance   float64 `db:"balance" json:"balance"`
}
