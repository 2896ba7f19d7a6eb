package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/blotter/journal"
)

var expireCmd = &cobra.Command{
	Use:   "expire <trade-id>",
	Short: "Expire options worthless",
	Long: `Close open legs at an exit price of zero, the worthless-expiry
case. Exit costs still apply. With --leg only that leg expires; the
trade stays open while other legs remain.

Examples:
  blotter expire 01HX3...
  blotter expire 01HX3... --leg MES_P_5750`,
	Args: cobra.ExactArgs(1),
	RunE: runExpire,
}

var expireLeg string

func init() {
	rootCmd.AddCommand(expireCmd)

	expireCmd.Flags().StringVar(&expireLeg, "leg", "", "expire only this leg's symbol")
}

func runExpire(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	tr, err := a.eng.Expire(args[0], expireLeg)
	if err != nil {
		return err
	}

	if err := a.save(); err != nil {
		return err
	}

	if tr.Closed() {
		a.recordClose(tr, journal.ReasonExpired)
		a.stopTimer(tr.ID)
		fmt.Printf("Expired %s, net P&L %s\n", tr.ID, tr.NetPnL().StringFixed(2))
	} else {
		fmt.Printf("Expired leg %s; trade %s stays OPEN\n", expireLeg, tr.ID)
	}
	return nil
}
