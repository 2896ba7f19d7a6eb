package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/blotter/journal"
)

var closeLegCmd = &cobra.Command{
	Use:   "close-leg <trade-id> <symbol>",
	Short: "Close one leg of a position",
	Long: `Close a single leg at a given price, leaving the rest of the
position open. The trade itself closes when its last leg does.

Example:
  blotter close-leg 01HX3... MES_P_5800 --price 0.40`,
	Args: cobra.ExactArgs(2),
	RunE: runCloseLeg,
}

var closeLegPrice string

func init() {
	rootCmd.AddCommand(closeLegCmd)

	closeLegCmd.Flags().StringVarP(&closeLegPrice, "price", "p", "", "exit price for the leg")
}

func runCloseLeg(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	tradeID, symbol := args[0], args[1]

	price, err := legPrice("price", closeLegPrice, fmt.Sprintf("Exit price for %s", symbol))
	if err != nil {
		return err
	}

	tr, err := a.eng.CloseLeg(tradeID, symbol, price)
	if err != nil {
		return err
	}

	if err := a.save(); err != nil {
		return err
	}

	if tr.Closed() {
		a.recordClose(tr, journal.ReasonLeg)
		a.stopTimer(tr.ID)
		fmt.Printf("Leg %s closed; trade %s is now CLOSED, net P&L %s\n",
			symbol, tr.ID, tr.NetPnL().StringFixed(2))
	} else {
		fmt.Printf("Leg %s closed; trade %s stays OPEN with %d contract(s) open\n",
			symbol, tr.ID, tr.OpenQty())
	}
	return nil
}
