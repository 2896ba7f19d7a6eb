// Package report renders the blotter's read-side views: the trade list,
// per-trade audits, the block-window schedule and closed-trade
// performance. Everything writes plain tables to an io.Writer; money is
// shown at two places but computed exactly upstream.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/blotter/book"
	"github.com/rustyeddy/blotter/gate"
	"github.com/rustyeddy/blotter/pkg/id"
	"github.com/rustyeddy/blotter/trade"
)

func money(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(2)
}

// List renders one row per trade. status narrows the view to
// OPEN/CLOSED; empty shows everything.
func List(w io.Writer, bk *book.Book, status trade.Status) {
	trades := bk.Trades()
	if status != "" {
		trades = bk.ByStatus(status)
	}

	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"ID", "OPENED", "TYPE", "STRAT", "LEGS", "QTY", "STATUS", "NET P&L", "COSTS"})
	tbl.SetBorder(false)

	for _, tr := range trades {
		symbols := make([]string, 0, len(tr.Legs))
		qty := 0
		for _, l := range tr.Legs {
			symbols = append(symbols, fmt.Sprintf("%s %s", l.Side, l.Symbol))
			qty += l.Qty
		}

		qtyCol := strconv.Itoa(qty)
		if tr.OriginalQty != nil && tr.Status == trade.StatusOpen {
			qtyCol = fmt.Sprintf("%d of %d", tr.OpenQty(), *tr.OriginalQty)
		}

		costs := tr.TotalCosts()
		tbl.Append([]string{
			id.Short(tr.ID),
			tr.TS.Format("2006-01-02 15:04"),
			tr.Type,
			tr.Strat,
			strings.Join(symbols, ", "),
			qtyCol,
			string(tr.Status),
			money(tr.NetPnL()),
			money(&costs),
		})
	}
	tbl.Render()
}

// Audit renders a leg-by-leg breakdown of one trade and, for closed
// trades, compares the cached P&L snapshot against the recomputed value
// so stale caches surface instead of hiding.
func Audit(w io.Writer, tr *trade.Trade) {
	fmt.Fprintf(w, "Trade %s  %s  %s  %s  %s\n",
		tr.ID, tr.TS.Format(time.RFC3339), tr.Type, tr.Strat, tr.Status)
	if tr.Risk != nil && !tr.Risk.Empty() {
		fmt.Fprintf(w, "Risk: econ=%t earnings=%t bond=%t note=%q\n",
			tr.Risk.Econ, tr.Risk.Earnings, tr.Risk.Bond, tr.Risk.Note)
	}
	if tr.PnL2HRecorded && tr.PnL2H != nil {
		fmt.Fprintf(w, "2H checkpoint: %s at %s\n", money(tr.PnL2H), tr.PnL2HTimestamp.Format(time.RFC3339))
	}

	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"LEG", "SIDE", "QTY", "MULT", "ENTRY", "EXIT", "GROSS", "ENTRY COSTS", "EXIT COSTS", "NET"})
	tbl.SetBorder(false)

	for _, l := range tr.Legs {
		exit := "-"
		if l.Exit != nil {
			exit = l.Exit.String()
		}
		exitCosts := "-"
		if l.ExitCosts != nil {
			exitCosts = l.ExitCosts.Total().StringFixed(2)
		}

		tbl.Append([]string{
			l.Symbol,
			string(l.Side),
			strconv.Itoa(l.Qty),
			strconv.Itoa(l.Multiplier),
			l.Entry.String(),
			exit,
			money(l.GrossPnL()),
			l.EntryCosts.Total().StringFixed(2),
			exitCosts,
			money(l.NetPnL()),
		})
	}
	tbl.Render()

	costs := tr.TotalCosts()
	fmt.Fprintf(w, "Totals: gross %s  costs %s  net %s\n",
		money(tr.GrossPnL()), money(&costs), money(tr.NetPnL()))

	if tr.Closed() {
		net := tr.NetPnL()
		switch {
		case tr.PnL == nil:
			fmt.Fprintln(w, "Cache: no P&L snapshot; run recalc")
		case net != nil && !tr.PnL.Equal(*net):
			fmt.Fprintf(w, "Cache: STALE snapshot %s differs from recomputed %s; run recalc\n",
				money(tr.PnL), money(net))
		default:
			fmt.Fprintln(w, "Cache: snapshot matches recomputed P&L")
		}
	}
}

// AuditAll renders a per-trade summary over the closed book plus totals.
func AuditAll(w io.Writer, bk *book.Book) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"ID", "CLOSED TS", "STRAT", "GROSS", "COSTS", "NET", "CACHE"})
	tbl.SetBorder(false)

	totalGross := decimal.Zero
	totalCosts := decimal.Zero
	totalNet := decimal.Zero
	stale := 0

	for _, tr := range bk.ByStatus(trade.StatusClosed) {
		gross := tr.GrossPnL()
		net := tr.NetPnL()
		costs := tr.TotalCosts()

		cache := "ok"
		if tr.PnL == nil || net == nil || !tr.PnL.Equal(*net) {
			cache = "STALE"
			stale++
		}

		if gross != nil {
			totalGross = totalGross.Add(*gross)
		}
		if net != nil {
			totalNet = totalNet.Add(*net)
		}
		totalCosts = totalCosts.Add(costs)

		tbl.Append([]string{
			id.Short(tr.ID),
			tr.TS.Format("2006-01-02"),
			tr.Strat,
			money(gross),
			costs.StringFixed(2),
			money(net),
			cache,
		})
	}
	tbl.Render()

	fmt.Fprintf(w, "Book totals: gross %s  costs %s  net %s\n",
		totalGross.StringFixed(2), totalCosts.StringFixed(2), totalNet.StringFixed(2))
	if stale > 0 {
		fmt.Fprintf(w, "%d trade(s) have stale P&L snapshots; run recalc\n", stale)
	}
}

// Blocks renders the configured block windows, flagging any that are
// active right now, plus the exempt strategies.
func Blocks(w io.Writer, windows []gate.Window, exemptions []string, now time.Time) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"WINDOW", "START", "END", "ACTIVE"})
	tbl.SetBorder(false)

	minute := gate.ClockOf(now)
	for _, win := range windows {
		active := ""
		if win.Contains(minute) {
			active = "NOW"
		}
		tbl.Append([]string{win.Name, win.Start.String(), win.End.String(), active})
	}
	tbl.Render()

	if len(exemptions) > 0 {
		fmt.Fprintf(w, "Exempt strategies: %s\n", strings.Join(exemptions, ", "))
	}
}
