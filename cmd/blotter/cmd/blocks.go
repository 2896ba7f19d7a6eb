package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/blotter/report"
)

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Show the option block windows",
	Args:  cobra.NoArgs,
	RunE:  runBlocks,
}

func init() {
	rootCmd.AddCommand(blocksCmd)
}

func runBlocks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	windows, err := cfg.Windows()
	if err != nil {
		return err
	}

	report.Blocks(os.Stdout, windows, cfg.Exemptions, time.Now().UTC())
	return nil
}
