package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/blotter/book"
	"github.com/rustyeddy/blotter/trade"
)

// Performance summarizes the closed book. Totals and best/worst stay
// exact decimals; mean and standard deviation are display statistics and
// go through float64.
type Performance struct {
	Trades  int
	Wins    int
	Losses  int
	WinRate float64

	TotalNet decimal.Decimal
	MeanNet  float64
	StdDev   float64
	Best     decimal.Decimal
	Worst    decimal.Decimal

	// CurrentStreak is positive for a run of wins, negative for losses.
	CurrentStreak int
	MaxWinStreak  int
	MaxLossStreak int
}

// Analyze computes performance over the closed trades in entry order.
// Net P&L is recomputed from legs, never the cache.
func Analyze(bk *book.Book) Performance {
	closed := bk.ByStatus(trade.StatusClosed)
	sort.SliceStable(closed, func(i, j int) bool { return closed[i].TS.Before(closed[j].TS) })

	p := Performance{TotalNet: decimal.Zero}
	var nets []float64
	streak := 0

	for _, tr := range closed {
		net := tr.NetPnL()
		if net == nil {
			continue
		}

		p.Trades++
		p.TotalNet = p.TotalNet.Add(*net)
		nets = append(nets, net.InexactFloat64())

		if p.Trades == 1 {
			p.Best = *net
			p.Worst = *net
		} else {
			if net.GreaterThan(p.Best) {
				p.Best = *net
			}
			if net.LessThan(p.Worst) {
				p.Worst = *net
			}
		}

		switch {
		case net.IsPositive():
			p.Wins++
			if streak < 0 {
				streak = 0
			}
			streak++
			if streak > p.MaxWinStreak {
				p.MaxWinStreak = streak
			}
		case net.IsNegative():
			p.Losses++
			if streak > 0 {
				streak = 0
			}
			streak--
			if -streak > p.MaxLossStreak {
				p.MaxLossStreak = -streak
			}
		}
		// Break-even trades leave the streak alone.
	}
	p.CurrentStreak = streak

	if p.Wins+p.Losses > 0 {
		p.WinRate = float64(p.Wins) / float64(p.Wins+p.Losses)
	}
	if len(nets) > 0 {
		p.MeanNet, _ = stats.Mean(nets)
		p.StdDev, _ = stats.StandardDeviation(nets)
	}
	return p
}

// Stats renders the performance summary.
func Stats(w io.Writer, bk *book.Book) {
	p := Analyze(bk)
	if p.Trades == 0 {
		fmt.Fprintln(w, "No closed trades yet")
		return
	}

	fmt.Fprintf(w, "Closed trades:   %d (%d wins, %d losses, %.0f%% win rate)\n",
		p.Trades, p.Wins, p.Losses, p.WinRate*100)
	fmt.Fprintf(w, "Total net P&L:   %s\n", p.TotalNet.StringFixed(2))
	fmt.Fprintf(w, "Mean / stddev:   %.2f / %.2f\n", p.MeanNet, p.StdDev)
	fmt.Fprintf(w, "Best / worst:    %s / %s\n", p.Best.StringFixed(2), p.Worst.StringFixed(2))
	fmt.Fprintf(w, "Streak:          %+d (max win %d, max loss %d)\n",
		p.CurrentStreak, p.MaxWinStreak, p.MaxLossStreak)
}
