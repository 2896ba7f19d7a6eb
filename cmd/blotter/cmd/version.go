package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the blotter CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("blotter version %s\n", version)
		fmt.Println("A single-user options and futures trade blotter")
		fmt.Println("https://github.com/rustyeddy/blotter")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
