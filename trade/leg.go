package trade

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/blotter/fees"
)

// Side of a leg. SELL legs profit when price falls.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Leg is one instrument position within a trade: a single contract series
// with its own entry, optional exit, and a cost breakdown per side. An
// absent Exit means the leg is still open; ExitCosts is present exactly
// when Exit is.
type Leg struct {
	Symbol     string           `json:"symbol"`
	Side       Side             `json:"side"`
	Qty        int              `json:"qty"`
	Entry      decimal.Decimal  `json:"entry"`
	Exit       *decimal.Decimal `json:"exit"`
	Multiplier int              `json:"multiplier"`
	EntryCosts fees.Fees        `json:"entry_costs"`
	ExitCosts  *fees.Fees       `json:"exit_costs"`
}

// Open reports whether the leg still lacks an exit price.
func (l *Leg) Open() bool {
	return l.Exit == nil
}

// GrossPnL returns the leg's realized P&L before costs, or nil while the
// leg is open. Callers must treat nil as "undefined", never as zero: an
// open position has no P&L yet.
//
// Sign convention: a BUY leg profits as price rises, (exit - entry); a
// SELL leg is opened by selling and closed by buying back, so its profit
// is (entry - exit), expressed here by negating the BUY difference.
func (l *Leg) GrossPnL() *decimal.Decimal {
	if l.Exit == nil {
		return nil
	}

	diff := l.Exit.Sub(l.Entry)
	if l.Side == Sell {
		diff = diff.Neg()
	}

	pnl := diff.Mul(decimal.NewFromInt(int64(l.Multiplier))).Mul(decimal.NewFromInt(int64(l.Qty)))
	return &pnl
}

// NetPnL returns gross P&L minus entry and exit costs, or nil while open.
func (l *Leg) NetPnL() *decimal.Decimal {
	gross := l.GrossPnL()
	if gross == nil {
		return nil
	}

	net := gross.Sub(l.TotalCosts())
	return &net
}

// TotalCosts sums the entry costs and, when present, the exit costs.
// Always defined, even for an open leg.
func (l *Leg) TotalCosts() decimal.Decimal {
	total := l.EntryCosts.Total()
	if l.ExitCosts != nil {
		total = total.Add(l.ExitCosts.Total())
	}
	return total
}

// Clone returns a deep copy of the leg. Used when a partial close carves
// a closed child out of an open position.
func (l *Leg) Clone() *Leg {
	c := *l
	if l.Exit != nil {
		exit := *l.Exit
		c.Exit = &exit
	}
	if l.ExitCosts != nil {
		costs := *l.ExitCosts
		c.ExitCosts = &costs
	}
	return &c
}
