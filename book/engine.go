package book

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/blotter/fees"
	"github.com/rustyeddy/blotter/gate"
	"github.com/rustyeddy/blotter/pkg/id"
	"github.com/rustyeddy/blotter/trade"
)

// Engine runs lifecycle operations against a Book under injected rules.
// Rates, windows, exemptions, strategies and multipliers all come from
// configuration; the engine never reads config or defaults them itself.
// Now is overridable so the time gates are testable; nil means UTC wall
// clock.
type Engine struct {
	Book        *Book
	Rates       fees.Table
	Windows     []gate.Window
	Exemptions  []string
	Strategies  trade.Strategies
	Multipliers map[string]int
	Now         func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

func (e *Engine) multiplier(symbol string) int {
	if m, ok := e.Multipliers[trade.SymbolRoot(symbol)]; ok && m > 0 {
		return m
	}
	return 1
}

// LegSpec describes one leg of a position being opened.
type LegSpec struct {
	Symbol string
	Side   trade.Side
	Qty    int
	Price  decimal.Decimal
}

// OpenRequest describes a position to open. Single-leg strategies take
// exactly one leg; spread strategies take two, short leg first. Type is
// only consulted for single-leg strategies and falls back to the
// registry default; spreads are always OPTION_SPREAD. Historical, when
// set, backdates the entry: the block check then runs informationally
// against that timestamp instead of refusing the save.
type OpenRequest struct {
	Strategy   string
	Type       string
	Legs       []LegSpec
	Risk       *trade.Risk
	Historical *time.Time
}

// OpenResult is a successful open. Gate carries what the block check
// said: for a live open that means not-blocked (possibly via exemption,
// worth echoing to the user); for a historical open it may record that
// the backdated entry fell inside a window.
type OpenResult struct {
	Trade      *trade.Trade
	Gate       gate.Result
	Historical bool
}

// Open validates, gates, constructs and appends a new trade. On any
// error the book is untouched: every precondition is checked before the
// trade is built, and the build itself only mutates the new record.
func (e *Engine) Open(req OpenRequest) (*OpenResult, error) {
	info, typ, err := e.resolveStrategy(req)
	if err != nil {
		return nil, err
	}

	optionish := info.Kind.Spread() || trade.IsOptionType(typ)

	res := OpenResult{Historical: req.Historical != nil}
	if optionish {
		when := e.now()
		if req.Historical != nil {
			when = *req.Historical
		}
		res.Gate = gate.Check(when, e.Windows, req.Strategy, e.Exemptions)
		if res.Gate.Blocked && req.Historical == nil {
			return nil, gatef(GateBlockWindow, "no option entries during %s", res.Gate.Reason)
		}

		if req.Risk.Empty() {
			return nil, gatef(GateRiskChecklist, "risk checklist or note required to open option positions")
		}
	}

	tr, err := e.build(req, info, typ)
	if err != nil {
		return nil, err
	}

	if err := e.Book.Append(tr); err != nil {
		return nil, err
	}

	res.Trade = tr
	return &res, nil
}

// Preview builds the trade an OpenRequest would create, without running
// gates and without touching the book. Dry runs only.
func (e *Engine) Preview(req OpenRequest) (*trade.Trade, error) {
	info, typ, err := e.resolveStrategy(req)
	if err != nil {
		return nil, err
	}
	return e.build(req, info, typ)
}

func (e *Engine) resolveStrategy(req OpenRequest) (trade.StrategyInfo, string, error) {
	name := strings.ToUpper(strings.TrimSpace(req.Strategy))
	if name == "" {
		return trade.StrategyInfo{}, "", validationf("strategy required")
	}

	info, ok := e.Strategies.Lookup(name)
	if !ok {
		return trade.StrategyInfo{}, "", validationf("unknown strategy %q (configured: %s)",
			req.Strategy, strings.Join(e.Strategies.Names(), ", "))
	}
	if !info.Kind.Known() {
		return trade.StrategyInfo{}, "", validationf("strategy %q has unrecognized kind %q", name, info.Kind)
	}

	if info.Kind.Spread() {
		return info, trade.TypeOptionSpread, nil
	}

	typ := strings.ToUpper(strings.TrimSpace(req.Type))
	if typ == "" {
		typ = strings.ToUpper(info.DefaultType)
	}
	if typ == "" {
		return trade.StrategyInfo{}, "", validationf("trade type required for single-leg strategy %q", name)
	}
	return info, typ, nil
}

func (e *Engine) build(req OpenRequest, info trade.StrategyInfo, typ string) (*trade.Trade, error) {
	if info.Kind.Spread() {
		if len(req.Legs) != 2 {
			return nil, validationf("%s needs exactly two legs, got %d", info.Kind, len(req.Legs))
		}
		if req.Legs[0].Side != trade.Sell || req.Legs[1].Side != trade.Buy {
			return nil, validationf("spread legs must be short (SELL) then long (BUY)")
		}
		if req.Legs[0].Qty != req.Legs[1].Qty {
			return nil, validationf("spread legs must share one quantity, got %d and %d",
				req.Legs[0].Qty, req.Legs[1].Qty)
		}
	} else if len(req.Legs) != 1 {
		return nil, validationf("single-leg strategy needs exactly one leg, got %d", len(req.Legs))
	}

	costKind := trade.CostKind(typ)
	legs := make([]*trade.Leg, 0, len(req.Legs))
	for _, spec := range req.Legs {
		symbol := strings.TrimSpace(spec.Symbol)
		if symbol == "" {
			return nil, validationf("leg symbol required")
		}
		if spec.Qty <= 0 {
			return nil, validationf("leg quantity must be positive, got %d", spec.Qty)
		}
		if spec.Side != trade.Buy && spec.Side != trade.Sell {
			return nil, validationf("leg side must be BUY or SELL, got %q", spec.Side)
		}

		entryCosts, err := fees.Calculate(costKind, spec.Qty, e.Rates)
		if err != nil {
			return nil, validationf("entry costs for %s: %v", symbol, err)
		}

		legs = append(legs, &trade.Leg{
			Symbol:     symbol,
			Side:       spec.Side,
			Qty:        spec.Qty,
			Entry:      spec.Price,
			Multiplier: e.multiplier(symbol),
			EntryCosts: entryCosts,
		})
	}

	ts := e.now().UTC()
	if req.Historical != nil {
		ts = *req.Historical
	}

	return &trade.Trade{
		ID:     id.New(),
		TS:     ts,
		Type:   typ,
		Strat:  strings.ToUpper(strings.TrimSpace(req.Strategy)),
		Legs:   legs,
		Risk:   req.Risk,
		Status: trade.StatusOpen,
	}, nil
}
