package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/blotter/balance"
	"github.com/rustyeddy/blotter/book"
	"github.com/rustyeddy/blotter/pkg/id"
	"github.com/rustyeddy/blotter/report"
	"github.com/rustyeddy/blotter/stopwatch"
	"github.com/rustyeddy/blotter/trade"
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open a new position",
	Long: `Open a new position under a configured strategy.

Single-leg strategies take --symbol/--side/--qty/--price; spread
strategies take the short and long leg flags with one shared --qty.
Anything missing is prompted for. Option entries run the block-window
gate and require the risk checklist.

Examples:
  blotter open -s 5AM --symbol MES --qty 1 --price 5850.25
  blotter open -s BULL-PUT --short-symbol MES_P_5800 --short-price 1.20 \
      --long-symbol MES_P_5750 --long-price 0.80 --qty 2 --note "CPI done"`,
	Args: cobra.NoArgs,
	RunE: runOpen,
}

var (
	openStrategy   string
	openType       string
	openSymbol     string
	openSide       string
	openQty        int
	openPrice      string
	openShortSym   string
	openShortPrice string
	openLongSym    string
	openLongPrice  string
	openEcon       bool
	openEarnings   bool
	openBond       bool
	openNote       string
	openHistorical string
	openDryRun     bool
)

func init() {
	rootCmd.AddCommand(openCmd)

	openCmd.Flags().StringVarP(&openStrategy, "strategy", "s", "", "strategy name (required, from the configured registry)")
	openCmd.Flags().StringVarP(&openType, "type", "t", "", "trade type for single-leg strategies (FUTURE or OPTION)")
	openCmd.Flags().StringVar(&openSymbol, "symbol", "", "single-leg symbol")
	openCmd.Flags().StringVar(&openSide, "side", "", "single-leg side (BUY or SELL)")
	openCmd.Flags().IntVarP(&openQty, "qty", "q", 0, "contract quantity")
	openCmd.Flags().StringVarP(&openPrice, "price", "p", "", "single-leg entry price")
	openCmd.Flags().StringVar(&openShortSym, "short-symbol", "", "spread short leg symbol")
	openCmd.Flags().StringVar(&openShortPrice, "short-price", "", "spread short leg entry price")
	openCmd.Flags().StringVar(&openLongSym, "long-symbol", "", "spread long leg symbol")
	openCmd.Flags().StringVar(&openLongPrice, "long-price", "", "spread long leg entry price")
	openCmd.Flags().BoolVar(&openEcon, "econ", false, "risk checklist: economic releases checked")
	openCmd.Flags().BoolVar(&openEarnings, "earnings", false, "risk checklist: earnings in window")
	openCmd.Flags().BoolVar(&openBond, "bond", false, "risk checklist: bond auction today")
	openCmd.Flags().StringVar(&openNote, "note", "", "risk checklist note")
	openCmd.Flags().StringVar(&openHistorical, "historical", "", "backdate the entry (RFC3339 or '2006-01-02 15:04', treated as UTC)")
	openCmd.Flags().BoolVar(&openDryRun, "dry-run", false, "show the trade that would be created without saving")
}

func runOpen(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	strat := openStrategy
	if strat == "" {
		strat = prompt(fmt.Sprintf("Strategy (%s)", strings.Join(a.eng.Strategies.Names(), ", ")), "")
	}

	info, ok := a.eng.Strategies.Lookup(strat)
	if !ok {
		return &book.ValidationError{Reason: fmt.Sprintf("unknown strategy %q (configured: %s)",
			strat, strings.Join(a.eng.Strategies.Names(), ", "))}
	}

	typ := openType
	if typ == "" && !info.Kind.Spread() && info.DefaultType == "" {
		typ = prompt("Trade type (FUTURE/OPTION)", "OPTION")
	}

	req := book.OpenRequest{Strategy: strat, Type: typ}
	if req.Legs, err = gatherLegs(info); err != nil {
		return err
	}

	if openHistorical != "" {
		ts, err := parseWhen(openHistorical)
		if err != nil {
			return err
		}
		req.Historical = &ts
	}

	optionish := info.Kind.Spread() || trade.IsOptionType(firstNonEmpty(typ, info.DefaultType))
	if optionish {
		req.Risk = &trade.Risk{Econ: openEcon, Earnings: openEarnings, Bond: openBond, Note: openNote}
		if req.Risk.Empty() && !openDryRun {
			req.Risk = promptRisk()
		}
	}

	if openDryRun {
		tr, err := a.eng.Preview(req)
		if err != nil {
			return err
		}
		fmt.Println("Dry run, nothing saved:")
		report.Audit(os.Stdout, tr)
		return nil
	}

	warnCooldown(a)

	res, err := a.eng.Open(req)
	if err != nil {
		return err
	}

	if err := a.save(); err != nil {
		return err
	}
	a.dropInboxCopy(res.Trade)

	if res.Historical && res.Gate.Blocked {
		log.Warnf("historical entry fell inside block window %q; saved anyway", res.Gate.Reason)
	}
	if !res.Gate.Blocked && res.Gate.Reason != "" {
		log.Infof("%s", res.Gate.Reason)
	}

	if res.Trade.NeedsCheckpoint() {
		m := &stopwatch.Manager{Path: a.cfg.Paths.Timers}
		if _, err := m.Start(res.Trade.ID, 2*time.Hour, time.Now().UTC()); err != nil {
			log.Warnf("checkpoint timer: %v", err)
		} else {
			fmt.Printf("2H checkpoint timer started; record it with: blotter pnl2h %s\n", id.Short(res.Trade.ID))
		}
	}

	fmt.Printf("Opened %s (%s %s)\n", res.Trade.ID, res.Trade.Type, res.Trade.Strat)
	return nil
}

func gatherLegs(info trade.StrategyInfo) ([]book.LegSpec, error) {
	qty := openQty
	if qty == 0 {
		var err error
		if qty, err = promptInt("Quantity", 1); err != nil {
			return nil, err
		}
	}

	if info.Kind.Spread() {
		shortSym := openShortSym
		if shortSym == "" {
			shortSym = prompt("Short leg symbol", "")
		}
		shortPrice, err := legPrice("short-price", openShortPrice, "Short leg entry price")
		if err != nil {
			return nil, err
		}

		longSym := openLongSym
		if longSym == "" {
			longSym = prompt("Long leg symbol", "")
		}
		longPrice, err := legPrice("long-price", openLongPrice, "Long leg entry price")
		if err != nil {
			return nil, err
		}

		return []book.LegSpec{
			{Symbol: shortSym, Side: trade.Sell, Qty: qty, Price: shortPrice},
			{Symbol: longSym, Side: trade.Buy, Qty: qty, Price: longPrice},
		}, nil
	}

	symbol := openSymbol
	if symbol == "" {
		symbol = prompt("Symbol", "")
	}

	side := trade.Side(strings.ToUpper(openSide))
	if side == "" {
		side = info.DefaultSide
	}
	if side == "" {
		side = trade.Side(strings.ToUpper(prompt("Side (BUY/SELL)", "BUY")))
	}

	price, err := legPrice("price", openPrice, "Entry price")
	if err != nil {
		return nil, err
	}

	return []book.LegSpec{{Symbol: symbol, Side: side, Qty: qty, Price: price}}, nil
}

func legPrice(flag, value, label string) (decimal.Decimal, error) {
	if value != "" {
		return parseDec(flag, value)
	}
	return promptDecimal(label)
}

func warnCooldown(a *app) {
	st, err := (&balance.StateFile{Path: a.cfg.Paths.RiskState}).Load()
	if err != nil {
		log.Debugf("risk state: %v", err)
		return
	}

	cd := balance.CheckHotHand(a.bk, st, time.Now().UTC(),
		a.cfg.Risk.HotHandWins, time.Duration(a.cfg.Risk.HotHandWindowHours)*time.Hour)
	if cd.Active {
		log.Warnf("hot-hand cooldown active (%s, %s left); consider sitting this one out",
			cd.Reason, cd.Remaining(time.Now().UTC()).Round(time.Minute))
	}
}

func parseWhen(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"} {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp %q", s)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
