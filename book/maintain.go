package book

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/blotter/trade"
)

// RecordCheckpoint stores the 2H checkpoint P&L on an open trade,
// unlocking the close gate for overnight strategies.
func (e *Engine) RecordCheckpoint(tradeID string, pnl decimal.Decimal) (*trade.Trade, error) {
	tr, err := e.Book.Find(tradeID)
	if err != nil {
		return nil, err
	}
	if tr.Closed() {
		return nil, validationf("trade %q already closed; the checkpoint gates the close, not the history", tradeID)
	}

	ts := e.now().UTC()
	tr.PnL2H = &pnl
	tr.PnL2HRecorded = true
	tr.PnL2HTimestamp = &ts
	return tr, nil
}

// RecalcResult is one trade's before/after P&L cache comparison.
type RecalcResult struct {
	Trade *trade.Trade
	Old   *decimal.Decimal
	New   *decimal.Decimal
}

// Changed reports whether the recompute moved the cached value, meaning
// the cache had gone stale against the legs.
func (r RecalcResult) Changed() bool {
	switch {
	case r.Old == nil && r.New == nil:
		return false
	case r.Old == nil || r.New == nil:
		return true
	}
	return !r.Old.Equal(*r.New)
}

// Recalc recomputes one closed trade's P&L cache from its legs. Running
// it twice in a row yields the same value; the point is to re-sync the
// snapshot after leg edits, with the drift reported instead of silently
// absorbed.
func (e *Engine) Recalc(tradeID string) (*RecalcResult, error) {
	tr, err := e.Book.Find(tradeID)
	if err != nil {
		return nil, err
	}
	if !tr.Closed() {
		return nil, validationf("trade %q is still open; P&L is computed when it closes", tradeID)
	}

	old := tr.PnL
	return &RecalcResult{Trade: tr, Old: old, New: tr.RefreshPnL()}, nil
}

// RecalcAll recomputes every closed trade's cache and returns the
// per-trade results in book order.
func (e *Engine) RecalcAll() []RecalcResult {
	var results []RecalcResult
	for _, tr := range e.Book.ByStatus(trade.StatusClosed) {
		old := tr.PnL
		results = append(results, RecalcResult{Trade: tr, Old: old, New: tr.RefreshPnL()})
	}
	return results
}

// AmendLeg corrects recorded prices on a leg. Entry is editable any
// time; exit only on an already-closed leg, because setting a first exit
// is a close and must go through the gated close paths. Any edit clears
// the P&L cache; run recalc to re-sync it.
func (e *Engine) AmendLeg(tradeID, symbol string, entry, exit *decimal.Decimal) (*trade.Trade, error) {
	tr, err := e.Book.Find(tradeID)
	if err != nil {
		return nil, err
	}

	var leg *trade.Leg
	for _, l := range tr.Legs {
		if l.Symbol == symbol {
			leg = l
			break
		}
	}
	if leg == nil {
		return nil, validationf("trade %q has no leg %q", tradeID, symbol)
	}

	if exit != nil && leg.Open() {
		return nil, validationf("leg %s is open; close it instead of amending an exit onto it", symbol)
	}
	if entry == nil && exit == nil {
		return nil, validationf("nothing to amend for leg %s", symbol)
	}

	if entry != nil {
		leg.Entry = *entry
	}
	if exit != nil {
		x := *exit
		leg.Exit = &x
	}

	tr.InvalidatePnL()
	return tr, nil
}

// AmendTimestamp replaces a trade's entry timestamp, for fixing entries
// recorded late.
func (e *Engine) AmendTimestamp(tradeID string, ts time.Time) (*trade.Trade, error) {
	tr, err := e.Book.Find(tradeID)
	if err != nil {
		return nil, err
	}
	tr.TS = ts
	return tr, nil
}
