package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/blotter/book"
	"github.com/rustyeddy/blotter/pkg/id"
)

var recalcCmd = &cobra.Command{
	Use:   "recalc [trade-id]",
	Short: "Re-sync cached P&L from leg data",
	Long: `Recompute the cached P&L snapshot from current leg data for one
closed trade, or for every closed trade. Reports any drift it fixed;
running it again is a no-op.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecalc,
}

func init() {
	rootCmd.AddCommand(recalcCmd)
}

func runRecalc(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	var results []book.RecalcResult
	if len(args) == 1 {
		res, err := a.eng.Recalc(args[0])
		if err != nil {
			return err
		}
		results = append(results, *res)
	} else {
		results = a.eng.RecalcAll()
	}

	changed := 0
	for _, r := range results {
		if !r.Changed() {
			continue
		}
		changed++
		fmt.Printf("%s: %s -> %s\n", id.Short(r.Trade.ID), fmtPnL(r.Old), fmtPnL(r.New))
	}

	if changed == 0 {
		fmt.Printf("%d trade(s) checked, all snapshots already in sync\n", len(results))
		return nil
	}

	if err := a.save(); err != nil {
		return err
	}
	fmt.Printf("%d of %d snapshot(s) re-synced\n", changed, len(results))
	return nil
}

func fmtPnL(d *decimal.Decimal) string {
	if d == nil {
		return "(none)"
	}
	return d.StringFixed(2)
}
