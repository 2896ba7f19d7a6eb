// Package trade defines the blotter's data model: legs, trades, the risk
// checklist and the strategy registry, together with the P&L arithmetic.
// Everything monetary is an exact decimal; P&L functions return nil, not
// zero, while any constituent price is missing. The model is pure: it
// never touches configuration, files, or the clock.
package trade

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status of a trade. There are exactly two: a trade is OPEN until every
// leg has an exit, then CLOSED.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Conventional trade types. Type is free-form on the wire, so imported
// books may carry others; anything not exactly FUTURE is charged at
// option rates.
const (
	TypeFuture       = "FUTURE"
	TypeOption       = "OPTION"
	TypeOptionSpread = "OPTION_SPREAD"
)

// OvernightStrategy is the one strategy whose trades must record a 2H
// checkpoint P&L before any close is allowed.
const OvernightStrategy = "BULL-PUT-OVERNIGHT"

// Trade is one or more legs sharing an identity: entry timestamp,
// strategy, risk checklist and lifecycle status. Partial closes carve
// closed children off an open parent; children share the parent's ID with
// a -P<n> suffix.
type Trade struct {
	ID     string    `json:"id"`
	TS     time.Time `json:"ts"`
	Type   string    `json:"typ"`
	Strat  string    `json:"strat"`
	Legs   []*Leg    `json:"legs"`
	Risk   *Risk     `json:"risk"`
	Status Status    `json:"status"`

	// PnL is a snapshot of NetPnL taken when the trade closes. NetPnL
	// recomputed from the legs stays authoritative; any edit to leg
	// prices outside the close paths clears this cache and recalc
	// re-syncs it.
	PnL *decimal.Decimal `json:"pnl"`

	PnL2H          *decimal.Decimal `json:"pnl_2h"`
	PnL2HRecorded  bool             `json:"pnl_2h_recorded"`
	PnL2HTimestamp *time.Time       `json:"pnl_2h_timestamp"`

	// OriginalQty is set once, on the first partial close, to the open
	// quantity at that moment. Display only: "3 of 10 remaining".
	OriginalQty *int `json:"original_qty"`
}

// GrossPnL sums the legs' gross P&L. It is nil if any leg is still open:
// a half-closed spread has no meaningful aggregate yet, and summing the
// closed side alone would overstate certainty. An empty leg list sums to
// zero (degenerate; construction forbids it).
func (t *Trade) GrossPnL() *decimal.Decimal {
	sum := decimal.Zero
	for _, l := range t.Legs {
		g := l.GrossPnL()
		if g == nil {
			return nil
		}
		sum = sum.Add(*g)
	}
	return &sum
}

// NetPnL sums the legs' net P&L, nil if any leg is still open.
func (t *Trade) NetPnL() *decimal.Decimal {
	sum := decimal.Zero
	for _, l := range t.Legs {
		n := l.NetPnL()
		if n == nil {
			return nil
		}
		sum = sum.Add(*n)
	}
	return &sum
}

// TotalCosts sums every leg's entry and exit costs. Always defined.
func (t *Trade) TotalCosts() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range t.Legs {
		sum = sum.Add(l.TotalCosts())
	}
	return sum
}

// OpenQty is the total quantity still open: the sum of Qty over legs
// without an exit.
func (t *Trade) OpenQty() int {
	qty := 0
	for _, l := range t.Legs {
		if l.Open() {
			qty += l.Qty
		}
	}
	return qty
}

// OpenLegs returns the legs that still lack an exit, in book order.
func (t *Trade) OpenLegs() []*Leg {
	var open []*Leg
	for _, l := range t.Legs {
		if l.Open() {
			open = append(open, l)
		}
	}
	return open
}

// Closed reports whether the trade has fully closed.
func (t *Trade) Closed() bool {
	return t.Status == StatusClosed
}

// LegsAllClosed reports whether every leg carries an exit. Status must
// agree with this; the lifecycle operations keep the two in sync.
func (t *Trade) LegsAllClosed() bool {
	for _, l := range t.Legs {
		if l.Open() {
			return false
		}
	}
	return true
}

// RefreshPnL recomputes the cache from current leg data and returns it.
// Idempotent: with no leg mutation in between, repeated calls store the
// same value.
func (t *Trade) RefreshPnL() *decimal.Decimal {
	t.PnL = t.NetPnL()
	return t.PnL
}

// InvalidatePnL clears the cache after a leg edit outside the close
// paths, forcing a recalc before the snapshot is trusted again.
func (t *Trade) InvalidatePnL() {
	t.PnL = nil
}

// NeedsCheckpoint reports whether closing this trade is gated on a 2H
// checkpoint that has not been recorded yet.
func (t *Trade) NeedsCheckpoint() bool {
	return strings.EqualFold(t.Strat, OvernightStrategy) && !t.PnL2HRecorded
}

// IsOptionType reports whether a trade type counts as options for
// gating and the risk checklist: OPTION, OPTION_SPREAD, and any other
// OPTION-prefixed type.
func IsOptionType(typ string) bool {
	return strings.HasPrefix(strings.ToUpper(typ), "OPTION")
}

// CostKind maps a trade type to the rate-table kind it is charged at.
// Exactly FUTURE trades pay futures rates; everything else, spreads
// included, pays option rates.
func CostKind(typ string) string {
	if strings.ToUpper(typ) == TypeFuture {
		return TypeFuture
	}
	return TypeOption
}

// SymbolRoot is the portion of a symbol before the first underscore,
// used to look up contract multipliers: "MES_P_5850" -> "MES".
func SymbolRoot(symbol string) string {
	if i := strings.IndexByte(symbol, '_'); i >= 0 {
		return symbol[:i]
	}
	return symbol
}
