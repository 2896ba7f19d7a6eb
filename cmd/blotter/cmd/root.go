package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/blotter/book"
	"github.com/rustyeddy/blotter/config"
	"github.com/rustyeddy/blotter/journal"
	"github.com/rustyeddy/blotter/stopwatch"
	"github.com/rustyeddy/blotter/store"
	"github.com/rustyeddy/blotter/trade"
)

var rootCmd = &cobra.Command{
	Use:   "blotter",
	Short: "A personal options and futures trade journal",
	Long: `Blotter is a single-user command-line trade journal.

It records option and futures trades, computes P&L net of commissions
and fees with exact decimal arithmetic, enforces time-of-day and
risk-checklist gates before opening positions, and keeps everything in
a local JSON book with a file-drop inbox for imports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	cfgPath string
	verbose bool
)

// Execute runs the CLI. Gate refusals print their reason and exit
// non-zero without a stack trace; they are decisions, not faults.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	var gerr *book.GateError
	var verr *book.ValidationError
	switch {
	case errors.As(err, &gerr):
		fmt.Fprintln(os.Stderr, gerr.Error())
	case errors.As(err, &verr):
		fmt.Fprintf(os.Stderr, "invalid: %s\n", verr.Reason)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default $HOME/.blotter.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		log.SetLevel(log.InfoLevel)
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	}
}

func loadConfig() (*config.Config, error) {
	if cfgPath != "" {
		return config.LoadFromFile(cfgPath)
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".blotter.yaml")
		if _, err := os.Stat(p); err == nil {
			return config.LoadFromFile(p)
		}
	}

	log.Debug("no config file found, using defaults")
	return config.Default(), nil
}

// app wires one invocation: config, the loaded book, and the engine
// running under that config's rules.
type app struct {
	cfg *config.Config
	st  *store.Store
	bk  *book.Book
	eng *book.Engine
}

func loadApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	windows, err := cfg.Windows()
	if err != nil {
		return nil, err
	}

	if err := store.EnsureDirs(cfg.Paths.Inbox, cfg.Paths.Archive); err != nil {
		return nil, err
	}

	st := &store.Store{Path: cfg.Paths.Book, Multipliers: cfg.Multipliers}
	bk, err := st.Load()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg: cfg,
		st:  st,
		bk:  bk,
		eng: &book.Engine{
			Book:        bk,
			Rates:       cfg.RateTable(),
			Windows:     windows,
			Exemptions:  cfg.Exemptions,
			Strategies:  cfg.StrategyRegistry(),
			Multipliers: cfg.Multipliers,
		},
	}
	a.reportDueTimers()
	return a, nil
}

// reportDueTimers surfaces overdue checkpoint reminders at startup. The
// timers never act on the book themselves.
func (a *app) reportDueTimers() {
	m := &stopwatch.Manager{Path: a.cfg.Paths.Timers}
	due, err := m.Due(time.Now().UTC())
	if err != nil {
		log.Debugf("timers: %v", err)
		return
	}
	for _, t := range due {
		log.Warnf("timer due for trade %s (deadline %s): run `blotter pnl2h %s`",
			t.TradeID, t.Deadline.Format(time.RFC3339), t.TradeID)
	}
}

func (a *app) save() error {
	return a.st.Save(a.bk)
}

// recordClose mirrors a realized close into the history journal. The
// book already saved; journal trouble is logged and never unwinds it.
func (a *app) recordClose(tr *trade.Trade, reason string) {
	if tr == nil || !tr.Closed() {
		return
	}

	j, err := journal.Open(a.cfg.Journal.Backend, a.cfg.Journal.Path)
	if err != nil {
		log.Warnf("journal: %v", err)
		return
	}
	defer j.Close()

	entry, err := journal.EntryFor(tr, time.Now().UTC(), reason)
	if err != nil {
		log.Warnf("journal: %v", err)
		return
	}
	if err := j.RecordClose(entry); err != nil {
		log.Warnf("journal: %v", err)
	}
}

// dropInboxCopy writes the trade into the inbox so a second machine
// sharing the folder can import it. Best effort.
func (a *app) dropInboxCopy(tr *trade.Trade) {
	if _, err := store.WriteSingleTradeFile(tr, a.cfg.Paths.Inbox, time.Now().UTC()); err != nil {
		log.Warnf("inbox copy: %v", err)
	}
}
