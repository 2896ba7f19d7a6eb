package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/blotter/report"
	"github.com/rustyeddy/blotter/trade"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List trades",
	Args:  cobra.NoArgs,
	RunE:  runLs,
}

var lsStatus string

func init() {
	rootCmd.AddCommand(lsCmd)

	lsCmd.Flags().StringVar(&lsStatus, "status", "", "filter by status (open or closed)")
}

func runLs(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	var status trade.Status
	switch strings.ToUpper(lsStatus) {
	case "":
	case string(trade.StatusOpen):
		status = trade.StatusOpen
	case string(trade.StatusClosed):
		status = trade.StatusClosed
	default:
		return fmt.Errorf("--status must be open or closed, got %q", lsStatus)
	}

	report.List(os.Stdout, a.bk, status)
	return nil
}
