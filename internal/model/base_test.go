package model

import (
	"testing"
	"time"
)

func TestDayKeyOf(t *testing.T) {
	ts := time.Date(2026, 3, 5, 23, 30, 0, 0, time.FixedZone("CET", 3600))
	if got := DayKeyOf(ts); got != "2026-03-05" {
		t.Fatalf("got=%s want=2026-03-05", got)
	}
}

func TestMonthOfDayKey(t *testing.T) {
	if got := MonthOfDayKey("2026-07-14"); got != 7 {
		t.Fatalf("got=%d want=7", got)
	}
	if got := MonthOfDayKey("garbage"); got != 0 {
		t.Fatalf("unparsable got=%d want=0", got)
	}
}

func TestSignedAmount(t *testing.T) {
	credit := &LedgerEntry{Direction: LedgerCredit, AmountUSD: 10}
	if got := credit.SignedAmount(); got != 10 {
		t.Fatalf("credit got=%v want=10", got)
	}
	debit := &LedgerEntry{Direction: LedgerDebit, AmountUSD: 10}
	if got := debit.SignedAmount(); got != -10 {
		t.Fatalf("debit got=%v want=-10", got)
	}
}

func TestBacklog(t *testing.T) {
	row := &DailySales{QtyOrdered: 250, QtyShipped: 100}
	if got := row.Backlog(); got != 150 {
		t.Fatalf("got=%d want=150", got)
	}
}
