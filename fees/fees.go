// Package fees implements the commission model: per-contract rates by
// instrument kind, multiplied out to an exact breakdown for one side of a
// leg. All arithmetic is decimal so repeated splits never drift.
package fees

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Rates holds the per-contract charges for one instrument kind.
type Rates struct {
	Commission decimal.Decimal
	Exchange   decimal.Decimal
	Regulatory decimal.Decimal
}

// Table maps an instrument kind (FUTURE, OPTION, ...) to its per-contract
// rates. Lookups are by uppercased kind. The table always comes from
// configuration; this package carries no built-in rates.
type Table map[string]Rates

// Fees is the cost breakdown attached to one side of a leg, entry or exit.
// A value is built once and never mutated; splitting a position produces
// new instances.
type Fees struct {
	Commission decimal.Decimal `json:"commission"`
	Exchange   decimal.Decimal `json:"exchange_fees"`
	Regulatory decimal.Decimal `json:"regulatory_fees"`
}

// Zero returns an all-zero breakdown, used when migrating legacy records
// that predate cost tracking.
func Zero() Fees {
	return Fees{
		Commission: decimal.Zero,
		Exchange:   decimal.Zero,
		Regulatory: decimal.Zero,
	}
}

// Total sums commission, exchange and regulatory fees.
func (f Fees) Total() decimal.Decimal {
	return f.Commission.Add(f.Exchange).Add(f.Regulatory)
}

// IsZero reports whether every component is zero.
func (f Fees) IsZero() bool {
	return f.Commission.IsZero() && f.Exchange.IsZero() && f.Regulatory.IsZero()
}

// Add returns the component-wise sum of two breakdowns.
func (f Fees) Add(o Fees) Fees {
	return Fees{
		Commission: f.Commission.Add(o.Commission),
		Exchange:   f.Exchange.Add(o.Exchange),
		Regulatory: f.Regulatory.Add(o.Regulatory),
	}
}

// Split divides the breakdown between a closed portion of q contracts and
// the remainder of a leg holding qty contracts. The closed share is
// component-wise f x q/qty and the remainder is the exact difference, so
// closed.Total() + remainder.Total() always equals f.Total() to the digit.
func (f Fees) Split(q, qty int) (closed, remainder Fees) {
	num := decimal.NewFromInt(int64(q))
	den := decimal.NewFromInt(int64(qty))
	closed = Fees{
		Commission: f.Commission.Mul(num).Div(den),
		Exchange:   f.Exchange.Mul(num).Div(den),
		Regulatory: f.Regulatory.Mul(num).Div(den),
	}
	remainder = Fees{
		Commission: f.Commission.Sub(closed.Commission),
		Exchange:   f.Exchange.Sub(closed.Exchange),
		Regulatory: f.Regulatory.Sub(closed.Regulatory),
	}
	return closed, remainder
}

// Calculate builds the breakdown for qty contracts of the given kind.
// The kind is uppercased before lookup; a kind missing from the table
// yields all-zero fees rather than an error, matching how broker
// statements simply omit charges they do not apply.
func Calculate(kind string, qty int, tbl Table) (Fees, error) {
	if qty <= 0 {
		return Fees{}, fmt.Errorf("calculate fees: quantity must be positive, got %d", qty)
	}

	rates, ok := tbl[strings.ToUpper(kind)]
	if !ok {
		return Zero(), nil
	}

	n := decimal.NewFromInt(int64(qty))
	return Fees{
		Commission: rates.Commission.Mul(n),
		Exchange:   rates.Exchange.Mul(n),
		Regulatory: rates.Regulatory.Mul(n),
	}, nil
}
