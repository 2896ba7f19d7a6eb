package balance

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rustyeddy/blotter/book"
	"github.com/rustyeddy/blotter/trade"
)

// State is the persisted risk state: whether a hot-hand cooldown is in
// force and why.
type State struct {
	CooldownUntil  *time.Time `json:"cooldown_until"`
	CooldownReason string     `json:"cooldown_reason,omitempty"`
}

// StateFile reads and writes the risk state.
type StateFile struct {
	Path string
}

// Load reads the state; a missing file means no cooldown.
func (s *StateFile) Load() (State, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read risk state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("parse risk state %s: %w", s.Path, err)
	}
	return st, nil
}

// Save writes the state.
func (s *StateFile) Save(st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return fmt.Errorf("write risk state: %w", err)
	}
	return nil
}

// Clear drops any cooldown.
func (s *StateFile) Clear() error {
	return s.Save(State{})
}

// Cooldown is the outcome of a hot-hand check.
type Cooldown struct {
	Active bool
	Until  time.Time
	Reason string
	Wins   int
}

// Remaining is the time left on an active cooldown, zero otherwise.
func (c Cooldown) Remaining(now time.Time) time.Duration {
	if !c.Active || !c.Until.After(now) {
		return 0
	}
	return c.Until.Sub(now)
}

// CheckHotHand decides whether trading should pause. An unexpired
// persisted cooldown stays in force. Otherwise the recent closed trades
// are scanned newest-first: a run of wins at least `wins` long, all
// closed within `window` of now, trips a new cooldown of one window. The
// heuristic is deliberately blunt; winning streaks are when sizing creep
// happens.
func CheckHotHand(bk *book.Book, st State, now time.Time, wins int, window time.Duration) Cooldown {
	if st.CooldownUntil != nil && st.CooldownUntil.After(now) {
		return Cooldown{Active: true, Until: *st.CooldownUntil, Reason: st.CooldownReason}
	}

	streak := winStreak(bk, now, window)
	if streak >= wins {
		return Cooldown{
			Active: true,
			Until:  now.Add(window),
			Reason: fmt.Sprintf("%d consecutive wins inside %s", streak, window),
			Wins:   streak,
		}
	}
	return Cooldown{Wins: streak}
}

// winStreak counts the consecutive profitable closes, newest first,
// among trades entered within the window. Break-even trades are skipped;
// a loss ends the streak.
func winStreak(bk *book.Book, now time.Time, window time.Duration) int {
	closed := bk.ByStatus(trade.StatusClosed)
	sort.SliceStable(closed, func(i, j int) bool { return closed[i].TS.After(closed[j].TS) })

	cutoff := now.Add(-window)
	streak := 0
	for _, tr := range closed {
		if tr.TS.Before(cutoff) {
			break
		}
		net := tr.NetPnL()
		if net == nil || net.IsZero() {
			continue
		}
		if net.IsNegative() {
			break
		}
		streak++
	}
	return streak
}
