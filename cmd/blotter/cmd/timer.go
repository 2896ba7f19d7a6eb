package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/blotter/stopwatch"
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Checkpoint reminder timers",
	Long: `Manage reminder timers for open positions. Timers are data in a
file, not background processes: each blotter run reports what has come
due, and watch mode sleeps until the next deadline. A due timer is a
nudge to run pnl2h or close; it never touches the book itself.

Examples:
  blotter timer start 01HX3... --hours 2
  blotter timer ls
  blotter timer watch
  blotter timer stop 01HX3...`,
}

var timerStartCmd = &cobra.Command{
	Use:   "start <trade-id>",
	Short: "Start (or restart) a reminder for a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimerStart,
}

var timerLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List pending timers",
	Args:  cobra.NoArgs,
	RunE:  runTimerLs,
}

var timerStopCmd = &cobra.Command{
	Use:   "stop <trade-id>",
	Short: "Cancel a trade's reminder",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimerStop,
}

var timerWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Block until the next timer fires",
	Args:  cobra.NoArgs,
	RunE:  runTimerWatch,
}

var timerHours float64

func init() {
	rootCmd.AddCommand(timerCmd)
	timerCmd.AddCommand(timerStartCmd)
	timerCmd.AddCommand(timerLsCmd)
	timerCmd.AddCommand(timerStopCmd)
	timerCmd.AddCommand(timerWatchCmd)

	timerStartCmd.Flags().Float64Var(&timerHours, "hours", 2, "hours until the reminder")
}

func timerManager() (*stopwatch.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return &stopwatch.Manager{Path: cfg.Paths.Timers}, nil
}

func runTimerStart(cmd *cobra.Command, args []string) error {
	m, err := timerManager()
	if err != nil {
		return err
	}

	d := time.Duration(timerHours * float64(time.Hour))
	t, err := m.Start(args[0], d, time.Now().UTC())
	if err != nil {
		return err
	}

	fmt.Printf("Timer set for %s, due %s\n", t.TradeID, t.Deadline.Format(time.RFC3339))
	return nil
}

func runTimerLs(cmd *cobra.Command, args []string) error {
	m, err := timerManager()
	if err != nil {
		return err
	}

	list, err := m.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No timers")
		return nil
	}

	now := time.Now().UTC()
	for _, t := range list {
		state := t.Remaining(now).Round(time.Minute).String()
		if t.Remaining(now) <= 0 {
			state = "DUE"
		}
		fmt.Printf("%s  due %s  %s\n", t.TradeID, t.Deadline.Format(time.RFC3339), state)
	}
	return nil
}

func runTimerStop(cmd *cobra.Command, args []string) error {
	m, err := timerManager()
	if err != nil {
		return err
	}

	if err := m.Stop(args[0]); err != nil {
		return err
	}
	fmt.Printf("Timer for %s cancelled\n", args[0])
	return nil
}

func runTimerWatch(cmd *cobra.Command, args []string) error {
	m, err := timerManager()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	due, err := m.Due(now)
	if err != nil {
		return err
	}
	for _, t := range due {
		fmt.Printf("DUE %s: run `blotter pnl2h %s` or close the position\n", t.TradeID, t.TradeID)
	}

	next, ok, err := m.Next(now)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("No pending timers")
		return nil
	}

	fmt.Printf("Waiting until %s for trade %s (Ctrl-C to stop)\n",
		next.Deadline.Format(time.RFC3339), next.TradeID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		return nil
	case <-time.After(next.Remaining(now)):
		fmt.Printf("DUE %s: run `blotter pnl2h %s` or close the position\n", next.TradeID, next.TradeID)
		return nil
	}
}
