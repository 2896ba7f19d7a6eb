package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/blotter/balance"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Account balance and manual adjustments",
	Long: `Show the current balance (starting balance + realized blotter
P&L + manual adjustments) and manage the adjustments that account for
deposits, withdrawals and trades made outside the blotter.

Examples:
  blotter balance
  blotter balance adjust -- -250.00 "withdrawal"
  blotter balance ls
  blotter balance remove 01HX3ABC`,
	Args: cobra.NoArgs,
	RunE: runBalanceShow,
}

var balanceAdjustCmd = &cobra.Command{
	Use:   "adjust <amount> <note>",
	Short: "Add a manual balance adjustment",
	Args:  cobra.ExactArgs(2),
	RunE:  runBalanceAdjust,
}

var balanceLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recent adjustments",
	Args:  cobra.NoArgs,
	RunE:  runBalanceLs,
}

var balanceRemoveCmd = &cobra.Command{
	Use:   "remove <adjustment-id>",
	Short: "Remove an adjustment",
	Args:  cobra.ExactArgs(1),
	RunE:  runBalanceRemove,
}

var balanceLsDays int

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.AddCommand(balanceAdjustCmd)
	balanceCmd.AddCommand(balanceLsCmd)
	balanceCmd.AddCommand(balanceRemoveCmd)

	balanceLsCmd.Flags().IntVar(&balanceLsDays, "days", 30, "how far back to list")
}

func (a *app) adjustments() *balance.Adjustments {
	return &balance.Adjustments{Path: a.cfg.Paths.Adjustments}
}

func runBalanceShow(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	list, err := a.adjustments().Load()
	if err != nil {
		return err
	}

	br := balance.Summarize(a.cfg.Balance(), a.bk, list)
	fmt.Printf("Starting balance:  %s\n", br.Starting.StringFixed(2))
	fmt.Printf("Blotter P&L:       %s over %d closed trade(s)\n", br.BlotterPnL.StringFixed(2), br.ClosedCount)
	fmt.Printf("Adjustments:       %s over %d entr(ies)\n", br.Adjustments.StringFixed(2), br.AdjCount)
	fmt.Printf("Current balance:   %s\n", br.Current.StringFixed(2))
	return nil
}

func runBalanceAdjust(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	amount, err := parseDec("amount", args[0])
	if err != nil {
		return err
	}

	adj, err := a.adjustments().Add(amount, args[1], time.Now().UTC())
	if err != nil {
		return err
	}

	fmt.Printf("Adjustment %s added: %s (%s)\n", adj.ID, adj.Amount.StringFixed(2), adj.Note)
	return nil
}

func runBalanceLs(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	list, err := a.adjustments().Load()
	if err != nil {
		return err
	}

	recent := balance.Recent(list, time.Now().UTC(), balanceLsDays)
	if len(recent) == 0 {
		fmt.Printf("No adjustments in the last %d days\n", balanceLsDays)
		return nil
	}

	for _, adj := range recent {
		fmt.Printf("%s  %10s  %s  (%s)\n",
			adj.TS.Format("2006-01-02 15:04"), adj.Amount.StringFixed(2), adj.Note, adj.ID)
	}
	return nil
}

func runBalanceRemove(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	adj, err := a.adjustments().Remove(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Removed adjustment %s (%s, %s)\n", adj.ID, adj.Amount.StringFixed(2), adj.Note)
	return nil
}
