package dto

import "github.com/playrise/shopsim-warehouse-service/internal/model"

type PostEntryInput struct {
	IdempotencyKey string
	CompanyID      string
	DayKey         string
	Direction      model.LedgerDirection
	AmountUSD      float64
	Category       string
	Scope          string
	Counterparty   string
	Note           string
}

type PostWalletInput struct {
	IdempotencyKey string
	CompanyID      string
	Currency       string
	Delta          float64
	Reason         string
}
