// Package book holds the trade collection and every lifecycle operation
// against it: opening positions, full and partial closes, expiries, the
// 2H checkpoint, and cache maintenance. The Book owns the list; the
// Engine owns the rules. Neither touches the filesystem: persistence
// happens in the caller after an operation succeeds, which is what makes
// the operations all-or-nothing.
package book

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/blotter/trade"
)

// Book is the in-memory trade collection, loaded wholesale at startup
// and saved wholesale after mutations. It replaces any notion of shared
// global state: every operation receives the Book it works on.
type Book struct {
	trades []*trade.Trade
}

// New returns an empty book.
func New() *Book {
	return &Book{}
}

// FromTrades wraps an already-loaded trade list, keeping its order.
func FromTrades(trades []*trade.Trade) *Book {
	return &Book{trades: trades}
}

// Trades returns the underlying list in book order. Callers iterate and
// read; mutation goes through the lifecycle operations.
func (b *Book) Trades() []*trade.Trade {
	return b.trades
}

// Len is the number of trades in the book.
func (b *Book) Len() int {
	return len(b.trades)
}

// Has reports whether a trade ID exists in the book.
func (b *Book) Has(id string) bool {
	for _, t := range b.trades {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Find returns the trade with the given ID or a wrapped ErrNotFound.
func (b *Book) Find(id string) (*trade.Trade, error) {
	for _, t := range b.trades {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("trade %q: %w", id, ErrNotFound)
}

// Append adds a trade, rejecting duplicate IDs.
func (b *Book) Append(t *trade.Trade) error {
	if t.ID == "" {
		return validationf("trade has no id")
	}
	if b.Has(t.ID) {
		return validationf("trade %q already in book", t.ID)
	}
	b.trades = append(b.trades, t)
	return nil
}

// Remove deletes a trade permanently. Closed history normally stays in
// the book forever; this is the explicit user-invoked delete.
func (b *Book) Remove(id string) error {
	for i, t := range b.trades {
		if t.ID == id {
			b.trades = append(b.trades[:i], b.trades[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("trade %q: %w", id, ErrNotFound)
}

// PartialChildren counts the closed children already carved off the
// given parent, i.e. IDs of the form {parentID}-P{n}.
func (b *Book) PartialChildren(parentID string) int {
	n := 0
	for _, t := range b.trades {
		if strings.HasPrefix(t.ID, parentID+"-P") {
			n++
		}
	}
	return n
}

// ByStatus returns the trades with the given status, in book order.
func (b *Book) ByStatus(status trade.Status) []*trade.Trade {
	var out []*trade.Trade
	for _, t := range b.trades {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}
