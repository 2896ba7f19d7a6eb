// Package journal keeps the append-only history of realized closes,
// mirroring the book of record so longitudinal queries ("what closed
// today", "show me that trade's fill") do not have to scan the whole
// JSON book. The book stays authoritative: a journal write failure is
// logged by the caller and never blocks a close.
package journal

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/blotter/trade"
)

// Close reasons recorded per entry.
const (
	ReasonFull    = "full"
	ReasonPartial = "partial"
	ReasonExpired = "expired"
	ReasonLeg     = "leg"
)

// Entry is one realized close. Monetary fields are exact decimals and
// serialize as strings in every backend.
type Entry struct {
	TradeID  string
	Strategy string
	Type     string
	Qty      int
	Gross    decimal.Decimal
	Costs    decimal.Decimal
	Net      decimal.Decimal
	OpenedAt time.Time
	ClosedAt time.Time
	Reason   string
}

// EntryFor builds the journal entry for a trade that just closed.
// The trade must be fully closed so gross and net are defined.
func EntryFor(tr *trade.Trade, closedAt time.Time, reason string) (Entry, error) {
	gross := tr.GrossPnL()
	net := tr.NetPnL()
	if gross == nil || net == nil {
		return Entry{}, fmt.Errorf("journal entry for %s: trade still has open legs", tr.ID)
	}

	qty := 0
	for _, l := range tr.Legs {
		qty += l.Qty
	}

	return Entry{
		TradeID:  tr.ID,
		Strategy: tr.Strat,
		Type:     tr.Type,
		Qty:      qty,
		Gross:    *gross,
		Costs:    tr.TotalCosts(),
		Net:      *net,
		OpenedAt: tr.TS,
		ClosedAt: closedAt,
		Reason:   reason,
	}, nil
}

// Journal records realized closes.
type Journal interface {
	RecordClose(Entry) error
	Close() error
}

// Open builds the configured backend: "sqlite", "csv", or "none"/"" for
// the discard journal.
func Open(backend, path string) (Journal, error) {
	switch backend {
	case "sqlite":
		return NewSQLite(path)
	case "csv":
		return NewCSV(path)
	case "none", "":
		return Nop{}, nil
	}
	return nil, fmt.Errorf("unknown journal backend %q", backend)
}

// Nop discards every entry, for books run without a journal.
type Nop struct{}

func (Nop) RecordClose(Entry) error { return nil }
func (Nop) Close() error            { return nil }
