package cmd

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/blotter/book"
	"github.com/rustyeddy/blotter/journal"
	"github.com/rustyeddy/blotter/stopwatch"
	"github.com/rustyeddy/blotter/trade"
)

var closeCmd = &cobra.Command{
	Use:   "close <trade-id>",
	Short: "Close a position, fully or partially",
	Long: `Close an open position.

With no --qty the whole open quantity closes. A smaller --qty carves a
closed child record off the trade and leaves the remainder open. Exit
prices come from repeated --price SYMBOL=PRICE flags, from --net-debit
for spreads, or from prompts.

Examples:
  blotter close 01HX3... --price MES_P_5800=0.40 --price MES_P_5750=0.10
  blotter close 01HX3... --qty 2 --price MES_P_5900=3.10
  blotter close 01HX3... --net-debit 0.55`,
	Args: cobra.ExactArgs(1),
	RunE: runClose,
}

var (
	closeQty      int
	closeNetDebit string
	closePrices   []string
)

func init() {
	rootCmd.AddCommand(closeCmd)

	closeCmd.Flags().IntVarP(&closeQty, "qty", "q", 0, "quantity to close (default: all open)")
	closeCmd.Flags().StringVar(&closeNetDebit, "net-debit", "", "close a spread at this net debit instead of per-leg prices")
	closeCmd.Flags().StringArrayVarP(&closePrices, "price", "p", nil, "exit price as SYMBOL=PRICE (repeatable)")
}

func runClose(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	tradeID := args[0]

	if closeNetDebit != "" {
		debit, err := parseDec("net-debit", closeNetDebit)
		if err != nil {
			return err
		}

		res, err := a.eng.CloseSpreadNetDebit(tradeID, debit)
		if err != nil {
			return err
		}
		return a.finishClose(res, journal.ReasonFull)
	}

	tr, err := a.bk.Find(tradeID)
	if err != nil {
		return err
	}

	qty := closeQty
	if qty == 0 {
		qty = tr.OpenQty()
	}

	prices, err := exitPrices(tr, closePrices)
	if err != nil {
		return err
	}

	res, err := a.eng.Close(tradeID, qty, prices)
	if err != nil {
		return err
	}

	reason := journal.ReasonFull
	if res.Partial {
		reason = journal.ReasonPartial
	}
	return a.finishClose(res, reason)
}

// exitPrices resolves one exit price per open leg from the flag values,
// prompting for any leg the flags missed.
func exitPrices(tr *trade.Trade, flagged []string) (book.ClosePrices, error) {
	prices := book.ClosePrices{}
	for _, kv := range flagged {
		symbol, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--price wants SYMBOL=PRICE, got %q", kv)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("--price %s: %q is not a decimal", symbol, value)
		}
		prices[strings.TrimSpace(symbol)] = d
	}

	for _, l := range tr.OpenLegs() {
		if _, ok := prices[l.Symbol]; ok {
			continue
		}
		d, err := promptDecimal(fmt.Sprintf("Exit price for %s %s", l.Side, l.Symbol))
		if err != nil {
			return nil, err
		}
		prices[l.Symbol] = d
	}
	return prices, nil
}

func (a *app) finishClose(res *book.CloseResult, reason string) error {
	if err := a.save(); err != nil {
		return err
	}
	a.recordClose(res.Trade, reason)
	a.stopTimer(res.Trade.ID)

	if res.Partial {
		a.stopTimerIfDone(res.Parent)
		fmt.Printf("Partially closed: child %s CLOSED, %d still open on %s\n",
			res.Trade.ID, res.Remaining, res.Parent.ID)
	} else {
		fmt.Printf("Closed %s", res.Trade.ID)
	}

	if pnl := res.Trade.NetPnL(); pnl != nil {
		fmt.Printf("  net P&L %s\n", pnl.StringFixed(2))
	} else {
		fmt.Println()
	}
	return nil
}

func (a *app) stopTimer(tradeID string) {
	m := &stopwatch.Manager{Path: a.cfg.Paths.Timers}
	if err := m.Stop(tradeID); err != nil {
		log.Debugf("timer: %v", err)
	}
}

func (a *app) stopTimerIfDone(tr *trade.Trade) {
	if tr != nil && tr.Closed() {
		a.stopTimer(tr.ID)
	}
}
