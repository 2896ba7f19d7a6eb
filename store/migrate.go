package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/blotter/trade"
)

// flatRecord is the oldest book shape: one implicit leg spread across
// top-level instr/price fields. Its stale pnl is dropped on upgrade; the
// legs recompute it.
type flatRecord struct {
	ID        string           `json:"id"`
	TS        time.Time        `json:"ts"`
	Typ       string           `json:"typ"`
	Strat     string           `json:"strat"`
	Instr     string           `json:"instr"`
	Side      string           `json:"side"`
	Qty       int              `json:"qty"`
	Price     decimal.Decimal  `json:"price"`
	ExitPrice *decimal.Decimal `json:"exit_price"`
	Risk      *trade.Risk      `json:"risk"`
	Status    trade.Status     `json:"status"`
	PnL       json.RawMessage  `json:"pnl"`
}

// migrateFlat upgrades a flat record to a single-leg trade. The type is
// inferred from the symbol when absent: bare roots were futures,
// underscore-coded symbols were options.
func (s *Store) migrateFlat(raw json.RawMessage) (*trade.Trade, error) {
	var rec flatRecord
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if rec.Instr == "" {
		return nil, fmt.Errorf("flat record has no instr")
	}

	side := trade.Side(strings.ToUpper(rec.Side))
	if side == "" {
		side = trade.Buy
	}
	qty := rec.Qty
	if qty == 0 {
		qty = 1
	}

	typ := strings.ToUpper(rec.Typ)
	if typ == "" {
		typ = trade.TypeOption
		if !strings.Contains(rec.Instr, "_") {
			typ = trade.TypeFuture
		}
	}

	tr := &trade.Trade{
		ID:     rec.ID,
		TS:     rec.TS,
		Type:   typ,
		Strat:  rec.Strat,
		Risk:   rec.Risk,
		Status: rec.Status,
		Legs: []*trade.Leg{{
			Symbol: rec.Instr,
			Side:   side,
			Qty:    qty,
			Entry:  rec.Price,
			Exit:   rec.ExitPrice,
		}},
	}
	return s.normalize(tr)
}
