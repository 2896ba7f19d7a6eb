package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/blotter/store"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import trades from the inbox",
	Long: `Import trade JSON files dropped into the inbox directory.
Trades already in the book are skipped, so re-importing is harmless;
processed files move to the archive. With --watch, keep running and
import files as they land, until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

var importWatch bool

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVarP(&importWatch, "watch", "w", false, "keep watching the inbox for new files")
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	drain := func() error {
		added, err := a.st.ImportInbox(a.bk, a.cfg.Paths.Inbox, a.cfg.Paths.Archive)
		if err != nil {
			return err
		}
		if added > 0 {
			if err := a.save(); err != nil {
				return err
			}
		}
		fmt.Printf("Imported %d trade(s)\n", added)
		return nil
	}

	if err := drain(); err != nil {
		return err
	}
	if !importWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return store.WatchInbox(ctx, a.cfg.Paths.Inbox, drain)
}
