package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var amendCmd = &cobra.Command{
	Use:   "amend <trade-id>",
	Short: "Correct recorded prices or the entry timestamp",
	Long: `Fix a recorded trade. --leg with --entry and/or --exit corrects
that leg's prices; --ts replaces the entry timestamp. An exit can only
be amended on a leg that is already closed, because setting a first
exit is a close and must go through the close commands.

Price edits clear the cached P&L snapshot; run recalc afterwards to
re-sync it and see the drift.

Examples:
  blotter amend 01HX3... --leg MES_P_5800 --entry 1.25
  blotter amend 01HX3... --ts "2026-01-15 09:32"`,
	Args: cobra.ExactArgs(1),
	RunE: runAmend,
}

var (
	amendLegSym string
	amendEntry  string
	amendExit   string
	amendTS     string
)

func init() {
	rootCmd.AddCommand(amendCmd)

	amendCmd.Flags().StringVar(&amendLegSym, "leg", "", "symbol of the leg to amend")
	amendCmd.Flags().StringVar(&amendEntry, "entry", "", "corrected entry price")
	amendCmd.Flags().StringVar(&amendExit, "exit", "", "corrected exit price (closed legs only)")
	amendCmd.Flags().StringVar(&amendTS, "ts", "", "corrected entry timestamp (RFC3339 or '2006-01-02 15:04')")
}

func runAmend(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	tradeID := args[0]

	if amendLegSym == "" && amendTS == "" {
		return fmt.Errorf("nothing to amend: pass --leg with --entry/--exit, or --ts")
	}

	if amendLegSym != "" {
		var entry, exit *decimal.Decimal
		if amendEntry != "" {
			d, err := parseDec("entry", amendEntry)
			if err != nil {
				return err
			}
			entry = &d
		}
		if amendExit != "" {
			d, err := parseDec("exit", amendExit)
			if err != nil {
				return err
			}
			exit = &d
		}

		if _, err := a.eng.AmendLeg(tradeID, amendLegSym, entry, exit); err != nil {
			return err
		}
		fmt.Printf("Amended leg %s on %s; run `blotter recalc %s` to re-sync P&L\n",
			amendLegSym, tradeID, tradeID)
	}

	if amendTS != "" {
		ts, err := parseWhen(amendTS)
		if err != nil {
			return err
		}
		if _, err := a.eng.AmendTimestamp(tradeID, ts); err != nil {
			return err
		}
		fmt.Printf("Timestamp on %s set to %s\n", tradeID, ts.Format("2006-01-02 15:04"))
	}

	return a.save()
}
