package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/blotter/balance"
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Risk heuristics: cooldown and position sizing",
	Long: `Check the discipline heuristics layered on the P&L history.

  check     - run the hot-hand check and show the current win streak
  size      - check a planned risk amount against the sizing limit
  cooldown  - force a cooldown, or clear one

Examples:
  blotter risk check
  blotter risk size 1500
  blotter risk cooldown --hours 24
  blotter risk cooldown --clear`,
}

var riskCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the hot-hand cooldown check",
	Args:  cobra.NoArgs,
	RunE:  runRiskCheck,
}

var riskSizeCmd = &cobra.Command{
	Use:   "size <planned-risk>",
	Short: "Check a planned risk amount against the balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runRiskSize,
}

var riskCooldownCmd = &cobra.Command{
	Use:   "cooldown",
	Short: "Force or clear a cooldown",
	Args:  cobra.NoArgs,
	RunE:  runRiskCooldown,
}

var (
	riskCooldownHours int
	riskCooldownClear bool
)

func init() {
	rootCmd.AddCommand(riskCmd)
	riskCmd.AddCommand(riskCheckCmd)
	riskCmd.AddCommand(riskSizeCmd)
	riskCmd.AddCommand(riskCooldownCmd)

	riskCooldownCmd.Flags().IntVar(&riskCooldownHours, "hours", 24, "cooldown length")
	riskCooldownCmd.Flags().BoolVar(&riskCooldownClear, "clear", false, "clear any active cooldown")
}

func (a *app) riskState() *balance.StateFile {
	return &balance.StateFile{Path: a.cfg.Paths.RiskState}
}

func runRiskCheck(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	st, err := a.riskState().Load()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	window := time.Duration(a.cfg.Risk.HotHandWindowHours) * time.Hour
	cd := balance.CheckHotHand(a.bk, st, now, a.cfg.Risk.HotHandWins, window)

	if !cd.Active {
		fmt.Printf("No cooldown; current win streak %d (trips at %d within %s)\n",
			cd.Wins, a.cfg.Risk.HotHandWins, window)
		return nil
	}

	fmt.Printf("COOLDOWN until %s (%s left): %s\n",
		cd.Until.Format(time.RFC3339), cd.Remaining(now).Round(time.Minute), cd.Reason)

	// A freshly tripped cooldown persists so it outlives this run.
	if st.CooldownUntil == nil || !st.CooldownUntil.After(now) {
		return a.riskState().Save(balance.State{CooldownUntil: &cd.Until, CooldownReason: cd.Reason})
	}
	return nil
}

func runRiskSize(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	planned, err := parseDec("planned-risk", args[0])
	if err != nil {
		return err
	}

	list, err := a.adjustments().Load()
	if err != nil {
		return err
	}

	current := balance.Current(a.cfg.Balance(), a.bk, list)
	chk := balance.CheckSize(planned, current, a.cfg.MaxFraction())
	if chk.OK {
		fmt.Printf("OK: planned %s within limit %s (balance %s)\n",
			chk.Planned.StringFixed(2), chk.Limit.StringFixed(2), current.StringFixed(2))
		return nil
	}

	fmt.Printf("TOO LARGE: planned %s exceeds limit %s (balance %s)\n",
		chk.Planned.StringFixed(2), chk.Limit.StringFixed(2), current.StringFixed(2))
	return nil
}

func runRiskCooldown(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	if riskCooldownClear {
		if err := a.riskState().Clear(); err != nil {
			return err
		}
		fmt.Println("Cooldown cleared")
		return nil
	}

	until := time.Now().UTC().Add(time.Duration(riskCooldownHours) * time.Hour)
	st := balance.State{CooldownUntil: &until, CooldownReason: "forced manually"}
	if err := a.riskState().Save(st); err != nil {
		return err
	}

	fmt.Printf("Cooldown forced until %s\n", until.Format(time.RFC3339))
	return nil
}
