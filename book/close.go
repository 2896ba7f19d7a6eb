package book

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/blotter/fees"
	"github.com/rustyeddy/blotter/trade"
)

// ClosePrices maps an open leg's symbol to its exit price.
type ClosePrices map[string]decimal.Decimal

// Net-debit allocation between the short and long leg of a spread.
var (
	shortDebitShare = decimal.RequireFromString("0.8")
	longDebitShare  = decimal.RequireFromString("0.2")
)

// CloseResult reports what a close did. Trade is the record that ended
// up closed: the trade itself on a full close, or the synthesized child
// on a partial close, in which case Parent is the still-open remainder.
type CloseResult struct {
	Trade     *trade.Trade
	Parent    *trade.Trade
	Partial   bool
	Remaining int
}

// Close closes q contracts of an open trade. q equal to the open
// quantity is a full close; anything smaller carves off a closed child
// record and leaves the parent open. Every precondition is checked
// before any leg is touched, so a refusal of any kind leaves the book
// exactly as it was.
func (e *Engine) Close(tradeID string, q int, prices ClosePrices) (*CloseResult, error) {
	tr, err := e.Book.Find(tradeID)
	if err != nil {
		return nil, err
	}
	if err := e.closeGuard(tr); err != nil {
		return nil, err
	}

	openQty := tr.OpenQty()
	if q <= 0 || q > openQty {
		return nil, validationf("close quantity %d out of range 1-%d", q, openQty)
	}

	if q == openQty {
		return e.fullClose(tr, prices)
	}
	return e.partialClose(tr, q, prices)
}

// closeGuard rejects closes of already-closed trades and overnight
// trades that have not recorded their 2H checkpoint yet.
func (e *Engine) closeGuard(tr *trade.Trade) error {
	if tr.Closed() {
		return validationf("trade %q already closed", tr.ID)
	}
	if tr.NeedsCheckpoint() {
		return gatef(GateCheckpoint, "record the 2H checkpoint first: blotter pnl2h %s", tr.ID)
	}
	return nil
}

type legExit struct {
	leg   *trade.Leg
	price decimal.Decimal
	costs fees.Fees
}

// planExits resolves an exit price and exit costs for each given leg at
// the quantity qty yields for it. Nothing is applied yet, so a missing
// price aborts with the book untouched.
func (e *Engine) planExits(tr *trade.Trade, legs []*trade.Leg, prices ClosePrices, qty func(*trade.Leg) int) ([]legExit, error) {
	costKind := trade.CostKind(tr.Type)

	exits := make([]legExit, 0, len(legs))
	for _, l := range legs {
		price, ok := prices[l.Symbol]
		if !ok {
			return nil, validationf("missing exit price for leg %s", l.Symbol)
		}

		costs, err := fees.Calculate(costKind, qty(l), e.Rates)
		if err != nil {
			return nil, validationf("exit costs for %s: %v", l.Symbol, err)
		}
		exits = append(exits, legExit{leg: l, price: price, costs: costs})
	}
	return exits, nil
}

func (e *Engine) fullClose(tr *trade.Trade, prices ClosePrices) (*CloseResult, error) {
	exits, err := e.planExits(tr, tr.OpenLegs(), prices, func(l *trade.Leg) int { return l.Qty })
	if err != nil {
		return nil, err
	}

	for _, x := range exits {
		price := x.price
		costs := x.costs
		x.leg.Exit = &price
		x.leg.ExitCosts = &costs
	}

	tr.Status = trade.StatusClosed
	tr.RefreshPnL()

	return &CloseResult{Trade: tr}, nil
}

func (e *Engine) partialClose(tr *trade.Trade, q int, prices ClosePrices) (*CloseResult, error) {
	openLegs := tr.OpenLegs()
	for _, l := range openLegs {
		if q >= l.Qty {
			return nil, validationf(
				"partial close of %d would exhaust leg %s (qty %d); close the trade fully or close legs individually",
				q, l.Symbol, l.Qty)
		}
	}

	exits, err := e.planExits(tr, openLegs, prices, func(*trade.Leg) int { return q })
	if err != nil {
		return nil, err
	}

	// Everything below is the mutation: all validation has passed.
	openQty := tr.OpenQty()
	if tr.OriginalQty == nil {
		orig := openQty
		tr.OriginalQty = &orig
	}

	childQty := q
	child := &trade.Trade{
		ID:             fmt.Sprintf("%s-P%d", tr.ID, e.Book.PartialChildren(tr.ID)+1),
		TS:             e.now().UTC(),
		Type:           tr.Type,
		Strat:          tr.Strat,
		Risk:           tr.Risk,
		Status:         trade.StatusClosed,
		PnL2H:          tr.PnL2H,
		PnL2HRecorded:  tr.PnL2HRecorded,
		PnL2HTimestamp: tr.PnL2HTimestamp,
		OriginalQty:    &childQty,
	}

	for _, x := range exits {
		closedShare, remainder := x.leg.EntryCosts.Split(q, x.leg.Qty)

		price := x.price
		costs := x.costs
		child.Legs = append(child.Legs, &trade.Leg{
			Symbol:     x.leg.Symbol,
			Side:       x.leg.Side,
			Qty:        q,
			Entry:      x.leg.Entry,
			Exit:       &price,
			Multiplier: x.leg.Multiplier,
			EntryCosts: closedShare,
			ExitCosts:  &costs,
		})

		x.leg.Qty -= q
		x.leg.EntryCosts = remainder
	}

	child.RefreshPnL()
	if err := e.Book.Append(child); err != nil {
		return nil, err
	}

	return &CloseResult{
		Trade:     child,
		Parent:    tr,
		Partial:   true,
		Remaining: tr.OpenQty(),
	}, nil
}

// CloseLeg closes one leg of an open trade at the given price, leaving
// the rest of the position open. Closing the last open leg closes the
// trade, so that path is subject to the same checkpoint gate as a full
// close.
func (e *Engine) CloseLeg(tradeID, symbol string, price decimal.Decimal) (*trade.Trade, error) {
	tr, err := e.Book.Find(tradeID)
	if err != nil {
		return nil, err
	}
	if tr.Closed() {
		return nil, validationf("trade %q already closed", tr.ID)
	}

	leg := findOpenLeg(tr, symbol)
	if leg == nil {
		return nil, validationf("trade %q has no open leg %q", tradeID, symbol)
	}

	if len(tr.OpenLegs()) == 1 && tr.NeedsCheckpoint() {
		return nil, gatef(GateCheckpoint, "record the 2H checkpoint first: blotter pnl2h %s", tr.ID)
	}

	costs, err := fees.Calculate(trade.CostKind(tr.Type), leg.Qty, e.Rates)
	if err != nil {
		return nil, validationf("exit costs for %s: %v", leg.Symbol, err)
	}

	p := price
	leg.Exit = &p
	leg.ExitCosts = &costs

	if tr.LegsAllClosed() {
		tr.Status = trade.StatusClosed
		tr.RefreshPnL()
	}
	return tr, nil
}

// Expire closes open legs at an exit of zero, the worthless-expiry case.
// An empty symbol expires every open leg and closes the trade; a
// specific symbol expires just that leg.
func (e *Engine) Expire(tradeID, symbol string) (*trade.Trade, error) {
	if symbol != "" {
		return e.CloseLeg(tradeID, symbol, decimal.Zero)
	}

	tr, err := e.Book.Find(tradeID)
	if err != nil {
		return nil, err
	}
	if err := e.closeGuard(tr); err != nil {
		return nil, err
	}

	prices := ClosePrices{}
	for _, l := range tr.OpenLegs() {
		prices[l.Symbol] = decimal.Zero
	}

	res, err := e.fullClose(tr, prices)
	if err != nil {
		return nil, err
	}
	return res.Trade, nil
}

// CloseSpreadNetDebit closes a whole spread from the single net debit
// paid to buy it back, the way the order is actually placed. The true
// P&L is (net credit received at open - net debit paid) per contract;
// that number sets the trade's P&L snapshot. Per-leg exit prices cannot
// be recovered from one net figure, so they are estimated by allocating
// 80% of the debit to the short leg and 20% to the long leg. The
// allocation is an admitted approximation kept for continuity; recalc
// reports the gap between the leg estimates and this snapshot rather
// than hiding it.
func (e *Engine) CloseSpreadNetDebit(tradeID string, netDebit decimal.Decimal) (*CloseResult, error) {
	tr, err := e.Book.Find(tradeID)
	if err != nil {
		return nil, err
	}
	if err := e.closeGuard(tr); err != nil {
		return nil, err
	}
	if len(tr.Legs) < 2 {
		return nil, validationf("trade %q is not a spread; close it with exit prices", tradeID)
	}

	credit := decimal.Zero
	for _, l := range tr.Legs {
		if l.Side == trade.Sell {
			credit = credit.Add(l.Entry)
		} else {
			credit = credit.Sub(l.Entry)
		}
	}
	perContract := credit.Sub(netDebit)

	costKind := trade.CostKind(tr.Type)
	exits := make([]legExit, 0, len(tr.Legs))
	for i, l := range tr.Legs {
		if !l.Open() {
			continue
		}

		exit := netDebit.Mul(longDebitShare)
		if l.Side == trade.Sell {
			exit = netDebit.Mul(shortDebitShare)
		}

		// One spread order pays one set of fees: charge them on the
		// first leg, zero on the rest.
		costs := fees.Zero()
		if i == 0 {
			costs, err = fees.Calculate(costKind, l.Qty, e.Rates)
			if err != nil {
				return nil, validationf("exit costs for %s: %v", l.Symbol, err)
			}
		}
		exits = append(exits, legExit{leg: l, price: exit, costs: costs})
	}

	for _, x := range exits {
		price := x.price
		costs := x.costs
		x.leg.Exit = &price
		x.leg.ExitCosts = &costs
	}

	tr.Status = trade.StatusClosed

	gross := perContract.
		Mul(decimal.NewFromInt(int64(tr.Legs[0].Qty))).
		Mul(decimal.NewFromInt(int64(tr.Legs[0].Multiplier)))
	pnl := gross.Sub(tr.TotalCosts())
	tr.PnL = &pnl

	return &CloseResult{Trade: tr}, nil
}

func findOpenLeg(tr *trade.Trade, symbol string) *trade.Leg {
	for _, l := range tr.Legs {
		if l.Open() && l.Symbol == symbol {
			return l
		}
	}
	return nil
}
