package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the configured strategies",
	Args:  cobra.NoArgs,
	RunE:  runStrategies,
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}

func runStrategies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg := cfg.StrategyRegistry()
	for _, name := range reg.Names() {
		info, _ := reg.Lookup(name)
		line := fmt.Sprintf("%-22s %s", name, info.Kind)
		if info.Kind.Spread() {
			fmt.Println(line)
			continue
		}
		if info.DefaultType != "" {
			line += fmt.Sprintf("  default %s %s", info.DefaultSide, info.DefaultType)
		}
		fmt.Println(line)
	}
	return nil
}
