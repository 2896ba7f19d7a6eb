package balance

import (
	"github.com/shopspring/decimal"
)

// SizeCheck is the outcome of a position-sizing check.
type SizeCheck struct {
	OK      bool
	Planned decimal.Decimal
	Limit   decimal.Decimal
}

// CheckSize compares the planned risk of a new position against the
// allowed fraction of the current balance. The planned number is the
// trader's own worst-case estimate; the check only keeps one position
// from swallowing the account.
func CheckSize(planned, current, maxFraction decimal.Decimal) SizeCheck {
	limit := current.Mul(maxFraction)
	return SizeCheck{
		OK:      planned.LessThanOrEqual(limit),
		Planned: planned,
		Limit:   limit,
	}
}
