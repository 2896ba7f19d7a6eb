package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/blotter/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the close journal",
	Long: `Query close records from the SQLite journal. The journal is the
append-only record of every close; the book file remains the source of
truth for open positions.

Subcommands:
  trade  - Get the close record for a specific trade ID
  today  - List trades closed today
  day    - List trades closed on a specific day

Examples:
  blotter history trade <trade-id>
  blotter history today
  blotter history day 2026-01-15`,
}

var historyTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get the close record for a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryTrade,
}

var historyTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List trades closed today",
	Args:  cobra.NoArgs,
	RunE:  runHistoryToday,
}

var historyDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List trades closed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDay,
}

var historyDBPath string

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyTradeCmd)
	historyCmd.AddCommand(historyTodayCmd)
	historyCmd.AddCommand(historyDayCmd)

	historyCmd.PersistentFlags().StringVarP(&historyDBPath, "db", "d", "", "path to the SQLite journal (default from config)")
}

func openHistoryDB() (*journal.SQLite, error) {
	path := historyDBPath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		if cfg.Journal.Backend != "sqlite" {
			return nil, fmt.Errorf("journal backend is %q; history needs sqlite (or pass --db)", cfg.Journal.Backend)
		}
		path = cfg.Journal.Path
	}

	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return j, nil
}

func runHistoryTrade(cmd *cobra.Command, args []string) error {
	j, err := openHistoryDB()
	if err != nil {
		return err
	}
	defer j.Close()

	e, err := j.GetEntry(args[0])
	if err != nil {
		return err
	}

	printEntry(e)
	return nil
}

func runHistoryToday(cmd *cobra.Command, args []string) error {
	loc := time.Local
	return historyForDay(time.Now().In(loc).Format("2006-01-02"), loc)
}

func runHistoryDay(cmd *cobra.Command, args []string) error {
	return historyForDay(args[0], time.Local)
}

func historyForDay(day string, loc *time.Location) error {
	start, end, err := dayBounds(loc, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	j, err := openHistoryDB()
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.ListClosedBetween(start, end)
	if err != nil {
		return fmt.Errorf("query closes: %w", err)
	}
	if len(entries) == 0 {
		fmt.Printf("No closes on %s\n", day)
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  %-10s %-20s %-7s net %10s  (%s)\n",
			e.ClosedAt.In(loc).Format("15:04"),
			e.TradeID, e.Strategy, e.Type, e.Net.StringFixed(2), e.Reason)
	}
	return nil
}

func printEntry(e journal.Entry) {
	fmt.Printf("Trade:     %s\n", e.TradeID)
	fmt.Printf("Strategy:  %s (%s)\n", e.Strategy, e.Type)
	fmt.Printf("Qty:       %d\n", e.Qty)
	fmt.Printf("Opened:    %s\n", e.OpenedAt.Format(time.RFC3339))
	fmt.Printf("Closed:    %s (%s)\n", e.ClosedAt.Format(time.RFC3339), e.Reason)
	fmt.Printf("Gross:     %s\n", e.Gross.StringFixed(2))
	fmt.Printf("Costs:     %s\n", e.Costs.StringFixed(2))
	fmt.Printf("Net:       %s\n", e.Net.StringFixed(2))
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24 * time.Hour)
	return start, end, nil
}
