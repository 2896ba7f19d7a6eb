// Package gate evaluates the time-of-day blackout rules that guard
// option entries. Windows come from configuration; evaluation is pure and
// minute-granular, so a caller can run the same check live at open time
// or informationally against a historical timestamp.
package gate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock parses "HH:MM" (24h) into a Clock.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("parse clock %q: want HH:MM", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("parse clock %q: bad hour", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("parse clock %q: bad minute", s)
	}

	return Clock(hour*60 + minute), nil
}

// ClockOf truncates a timestamp to its minute of day.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Window is one configured blackout interval. Both boundaries are
// inclusive. Start after End means the window crosses midnight and
// blocks [Start, 24:00) plus [00:00, End].
type Window struct {
	Start Clock
	End   Clock
	Name  string
}

// Contains reports whether the given minute of day falls in the window.
func (w Window) Contains(now Clock) bool {
	if w.Start > w.End {
		return now >= w.Start || now <= w.End
	}
	return now >= w.Start && now <= w.End
}

func (w Window) String() string {
	return fmt.Sprintf("%s (%s-%s)", w.Name, w.Start, w.End)
}

// Result is the outcome of a gate check. Reason names the first window
// hit when blocked, or explains the exemption when an exempt strategy
// sailed through an active window.
type Result struct {
	Blocked bool
	Reason  string
}

// Check evaluates the block windows for a strategy at the given moment.
// An exempt strategy (case-insensitive match) short-circuits before any
// window is looked at. Windows are evaluated in configured order and the
// first hit wins; later windows are not aggregated into the reason.
func Check(now time.Time, windows []Window, strategy string, exemptions []string) Result {
	for _, ex := range exemptions {
		if strings.EqualFold(strings.TrimSpace(ex), strings.TrimSpace(strategy)) {
			return Result{Blocked: false, Reason: fmt.Sprintf("strategy %s is exempt from block windows", strategy)}
		}
	}

	minute := ClockOf(now)
	for _, w := range windows {
		if w.Contains(minute) {
			return Result{Blocked: true, Reason: w.Name}
		}
	}

	return Result{}
}
