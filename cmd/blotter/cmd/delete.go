package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <trade-id>",
	Short: "Delete a trade permanently",
	Long: `Remove a trade from the book permanently. Closed trades are
normally kept forever; this is for entries that were mistakes. Asks for
confirmation unless --force is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteForce bool

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	tradeID := args[0]

	tr, err := a.bk.Find(tradeID)
	if err != nil {
		return err
	}

	if !deleteForce {
		if !promptYes(fmt.Sprintf("Delete %s (%s %s, %s) permanently?", tr.ID, tr.Type, tr.Strat, tr.Status)) {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := a.bk.Remove(tradeID); err != nil {
		return err
	}
	if err := a.save(); err != nil {
		return err
	}

	fmt.Printf("Deleted %s\n", tradeID)
	return nil
}
