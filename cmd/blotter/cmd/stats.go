package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/blotter/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Closed-trade performance summary",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	report.Stats(os.Stdout, a.bk)
	return nil
}
