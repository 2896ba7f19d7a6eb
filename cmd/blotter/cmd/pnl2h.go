package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var pnl2hCmd = &cobra.Command{
	Use:   "pnl2h <trade-id> [pnl]",
	Short: "Record the 2H checkpoint P&L",
	Long: `Record the intermediate 2H checkpoint P&L on an open trade.
Overnight bull-put trades cannot close until this is recorded.

Example:
  blotter pnl2h 01HX3... 12.50`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPnl2h,
}

func init() {
	rootCmd.AddCommand(pnl2hCmd)
}

func runPnl2h(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	var pnl decimal.Decimal
	if len(args) == 2 {
		pnl, err = parseDec("pnl", args[1])
	} else {
		pnl, err = promptDecimal("Current P&L")
	}
	if err != nil {
		return err
	}

	tr, err := a.eng.RecordCheckpoint(args[0], pnl)
	if err != nil {
		return err
	}

	if err := a.save(); err != nil {
		return err
	}
	a.stopTimer(tr.ID)

	fmt.Printf("Recorded 2H checkpoint %s on %s; close is now unlocked\n",
		pnl.StringFixed(2), tr.ID)
	return nil
}
