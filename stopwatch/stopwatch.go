// Package stopwatch persists reminder deadlines for open positions,
// chiefly the 2H checkpoint on overnight spreads. Timers are data, not
// goroutines: each CLI invocation loads the file and reports what has
// come due, and the optional watch mode just sleeps until the next
// deadline. Nothing here touches the trade book; acting on a due timer
// means running the normal pnl2h or close commands.
package stopwatch

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// Timer is one pending reminder.
type Timer struct {
	TradeID   string    `json:"trade_id"`
	StartedAt time.Time `json:"started_at"`
	Deadline  time.Time `json:"deadline"`
}

// Remaining is the time left until the deadline, negative once overdue.
func (t Timer) Remaining(now time.Time) time.Duration {
	return t.Deadline.Sub(now)
}

// Manager reads and writes the timer file. One timer per trade; starting
// a second one replaces the first.
type Manager struct {
	Path string
}

func (m *Manager) load() (map[string]Timer, error) {
	data, err := os.ReadFile(m.Path)
	if os.IsNotExist(err) {
		return map[string]Timer{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read timers: %w", err)
	}

	timers := map[string]Timer{}
	if err := json.Unmarshal(data, &timers); err != nil {
		return nil, fmt.Errorf("parse timers %s: %w", m.Path, err)
	}
	return timers, nil
}

func (m *Manager) save(timers map[string]Timer) error {
	data, err := json.MarshalIndent(timers, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.Path, data, 0644); err != nil {
		return fmt.Errorf("write timers: %w", err)
	}
	return nil
}

// Start sets a reminder for the trade, d from now.
func (m *Manager) Start(tradeID string, d time.Duration, now time.Time) (Timer, error) {
	if d <= 0 {
		return Timer{}, fmt.Errorf("timer duration must be positive, got %s", d)
	}

	timers, err := m.load()
	if err != nil {
		return Timer{}, err
	}

	t := Timer{TradeID: tradeID, StartedAt: now, Deadline: now.Add(d)}
	timers[tradeID] = t
	return t, m.save(timers)
}

// Stop drops the trade's reminder.
func (m *Manager) Stop(tradeID string) error {
	timers, err := m.load()
	if err != nil {
		return err
	}
	if _, ok := timers[tradeID]; !ok {
		return fmt.Errorf("no timer for trade %q", tradeID)
	}

	delete(timers, tradeID)
	return m.save(timers)
}

// List returns every timer, soonest deadline first.
func (m *Manager) List() ([]Timer, error) {
	timers, err := m.load()
	if err != nil {
		return nil, err
	}

	out := make([]Timer, 0, len(timers))
	for _, t := range timers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Deadline.Before(out[j].Deadline) })
	return out, nil
}

// Due returns the timers whose deadline has passed, soonest first.
func (m *Manager) Due(now time.Time) ([]Timer, error) {
	all, err := m.List()
	if err != nil {
		return nil, err
	}

	var due []Timer
	for _, t := range all {
		if !t.Deadline.After(now) {
			due = append(due, t)
		}
	}
	return due, nil
}

// Next returns the soonest pending timer, if any.
func (m *Manager) Next(now time.Time) (Timer, bool, error) {
	all, err := m.List()
	if err != nil {
		return Timer{}, false, err
	}

	for _, t := range all {
		if t.Deadline.After(now) {
			return t, true, nil
		}
	}
	return Timer{}, false, nil
}
