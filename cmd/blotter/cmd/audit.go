package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/blotter/report"
)

var auditCmd = &cobra.Command{
	Use:   "audit [trade-id]",
	Short: "Show leg-by-leg P&L breakdowns",
	Long: `With a trade ID, show that trade's leg-by-leg breakdown and
whether its cached P&L snapshot matches the recomputed value. Without
one, summarize every closed trade and the book totals.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		tr, err := a.bk.Find(args[0])
		if err != nil {
			return err
		}
		report.Audit(os.Stdout, tr)
		return nil
	}

	report.AuditAll(os.Stdout, a.bk)
	return nil
}
