package trade

import (
	"sort"
	"strings"
)

// StrategyKind classifies how a strategy's trades are constructed and
// which prompts the CLI runs.
type StrategyKind string

const (
	SingleLeg      StrategyKind = "single_leg"
	BullPutSpread  StrategyKind = "bull_put_spread"
	BearCallSpread StrategyKind = "bear_call_spread"
)

// Spread reports whether the kind builds a two-leg option spread.
func (k StrategyKind) Spread() bool {
	return k == BullPutSpread || k == BearCallSpread
}

// Known reports whether the kind is one this code can construct.
func (k StrategyKind) Known() bool {
	switch k {
	case SingleLeg, BullPutSpread, BearCallSpread:
		return true
	}
	return false
}

// StrategyInfo is the registry metadata for one strategy name. For
// single-leg strategies the defaults pre-fill the open prompts; spreads
// ignore them.
type StrategyInfo struct {
	Kind        StrategyKind
	DefaultType string
	DefaultSide Side
}

// Strategies is the configured strategy registry, keyed by uppercase
// name. Opening a trade requires the name to resolve here: an unknown or
// misspelled strategy fails the open instead of silently creating a
// single-leg FUTURE.
type Strategies map[string]StrategyInfo

// Lookup resolves a strategy name case-insensitively.
func (s Strategies) Lookup(name string) (StrategyInfo, bool) {
	info, ok := s[strings.ToUpper(strings.TrimSpace(name))]
	return info, ok
}

// Names returns the registered strategy names in sorted order.
func (s Strategies) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
