// Package balance tracks the account balance alongside the book:
// starting balance plus realized blotter P&L plus manual adjustments for
// deposits, withdrawals and trades made outside the blotter. It also
// carries the simple risk heuristics layered on that history: the
// hot-hand cooldown and the position-sizing check.
package balance

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/blotter/book"
	"github.com/rustyeddy/blotter/pkg/id"
	"github.com/rustyeddy/blotter/trade"
)

// Adjustment is one manual balance entry. Positive for deposits and
// external wins, negative for withdrawals and external losses.
type Adjustment struct {
	ID     string          `json:"id"`
	TS     time.Time       `json:"ts"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// Adjustments is the file-backed adjustment list.
type Adjustments struct {
	Path string
}

// Load reads the adjustment list; a missing file is an empty list.
func (a *Adjustments) Load() ([]Adjustment, error) {
	data, err := os.ReadFile(a.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read adjustments: %w", err)
	}

	var out []Adjustment
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse adjustments %s: %w", a.Path, err)
	}
	return out, nil
}

func (a *Adjustments) save(list []Adjustment) error {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(a.Path, data, 0644); err != nil {
		return fmt.Errorf("write adjustments: %w", err)
	}
	return nil
}

// Add appends a new adjustment and returns it.
func (a *Adjustments) Add(amount decimal.Decimal, note string, ts time.Time) (Adjustment, error) {
	list, err := a.Load()
	if err != nil {
		return Adjustment{}, err
	}

	adj := Adjustment{
		ID:     id.Short(id.New()),
		TS:     ts,
		Amount: amount,
		Note:   note,
	}
	return adj, a.save(append(list, adj))
}

// Remove deletes the adjustment with the given ID.
func (a *Adjustments) Remove(adjID string) (Adjustment, error) {
	list, err := a.Load()
	if err != nil {
		return Adjustment{}, err
	}

	for i, adj := range list {
		if adj.ID == adjID {
			return adj, a.save(append(list[:i], list[i+1:]...))
		}
	}
	return Adjustment{}, fmt.Errorf("adjustment %q not found", adjID)
}

// Recent returns the adjustments from the last given number of days,
// newest first.
func Recent(list []Adjustment, now time.Time, days int) []Adjustment {
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)

	var out []Adjustment
	for _, adj := range list {
		if !adj.TS.Before(cutoff) {
			out = append(out, adj)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TS.After(out[j].TS) })
	return out
}

// Breakdown is the balance arithmetic, itemized for display.
type Breakdown struct {
	Starting    decimal.Decimal
	BlotterPnL  decimal.Decimal
	Adjustments decimal.Decimal
	Current     decimal.Decimal
	ClosedCount int
	AdjCount    int
}

// Summarize computes the current balance: starting + realized net P&L
// over closed trades + the adjustment total. Net P&L is recomputed from
// the legs, never read from the cache, so a stale snapshot cannot skew
// the balance.
func Summarize(starting decimal.Decimal, bk *book.Book, list []Adjustment) Breakdown {
	br := Breakdown{
		Starting:    starting,
		BlotterPnL:  decimal.Zero,
		Adjustments: decimal.Zero,
		AdjCount:    len(list),
	}

	for _, tr := range bk.ByStatus(trade.StatusClosed) {
		if net := tr.NetPnL(); net != nil {
			br.BlotterPnL = br.BlotterPnL.Add(*net)
			br.ClosedCount++
		}
	}
	for _, adj := range list {
		br.Adjustments = br.Adjustments.Add(adj.Amount)
	}

	br.Current = starting.Add(br.BlotterPnL).Add(br.Adjustments)
	return br
}

// Current is Summarize reduced to the one number.
func Current(starting decimal.Decimal, bk *book.Book, list []Adjustment) decimal.Decimal {
	return Summarize(starting, bk, list).Current
}
