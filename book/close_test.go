package book

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/blotter/trade"
)

// openOption10 opens the canonical partial-close fixture: a single-leg
// option, qty 10, multiplier 5, entry 100.
func openOption10(t *testing.T, eng *Engine) *trade.Trade {
	t.Helper()

	res, err := eng.Open(OpenRequest{
		Strategy: "NORMAL",
		Type:     trade.TypeOption,
		Legs: []LegSpec{
			{Symbol: "MES_P_5900", Side: trade.Buy, Qty: 10, Price: dec(t, "100")},
		},
		Risk: &trade.Risk{Note: "premium play"},
	})
	assert.NoError(t, err)
	return res.Trade
}

func TestCloseNotFound(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	_, err := eng.Close("nope", 1, ClosePrices{})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCloseQuantityRange(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	tr := openOption10(t, eng)

	for _, q := range []int{0, -1, 11} {
		_, err := eng.Close(tr.ID, q, ClosePrices{"MES_P_5900": dec(t, "105")})
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr), "qty %d", q)
	}
	assert.Equal(t, trade.StatusOpen, tr.Status)
}

func TestCloseAlreadyClosed(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	tr := openOption10(t, eng)

	_, err := eng.Close(tr.ID, 10, ClosePrices{"MES_P_5900": dec(t, "105")})
	assert.NoError(t, err)

	_, err = eng.Close(tr.ID, 10, ClosePrices{"MES_P_5900": dec(t, "105")})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestFullCloseComputesCostsAndCachesPnL(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	tr := openOption10(t, eng)

	res, err := eng.Close(tr.ID, 10, ClosePrices{"MES_P_5900": dec(t, "105")})
	assert.NoError(t, err)
	assert.False(t, res.Partial)
	assert.Same(t, tr, res.Trade)

	assert.Equal(t, trade.StatusClosed, tr.Status)
	leg := tr.Legs[0]
	assert.False(t, leg.Open())
	assertDecEq(t, "105", *leg.Exit)
	assertDecEq(t, "17.70", leg.ExitCosts.Total())

	// (105-100)*5*10 - 17.70 - 17.70
	assert.NotNil(t, tr.PnL)
	assertDecEq(t, "214.60", *tr.PnL)
	assert.Nil(t, tr.OriginalQty)
}

func TestFullCloseIsAtomicWhenPriceMissing(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	res, err := eng.Open(bullPutRequest(t, 2))
	assert.NoError(t, err)
	tr := res.Trade

	_, err = eng.Close(tr.ID, 4, ClosePrices{"MES_P_5850": dec(t, "4.00")})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Reason, "MES_P_5800")

	assert.Equal(t, trade.StatusOpen, tr.Status)
	for _, l := range tr.Legs {
		assert.True(t, l.Open())
		assert.Nil(t, l.ExitCosts)
	}
	assert.Nil(t, tr.PnL)
}

func TestPartialCloseConservation(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	tr := openOption10(t, eng)
	assertDecEq(t, "17.70", tr.Legs[0].EntryCosts.Total())

	res, err := eng.Close(tr.ID, 4, ClosePrices{"MES_P_5900": dec(t, "105")})
	assert.NoError(t, err)
	assert.True(t, res.Partial)
	assert.Equal(t, 6, res.Remaining)

	child, parent := res.Trade, res.Parent
	assert.Same(t, tr, parent)
	assert.Equal(t, tr.ID+"-P1", child.ID)
	assert.Equal(t, trade.StatusClosed, child.Status)

	// Entry costs conserved exactly across the split.
	assertDecEq(t, "7.08", child.Legs[0].EntryCosts.Total())
	assertDecEq(t, "10.62", parent.Legs[0].EntryCosts.Total())
	assert.True(t, child.Legs[0].EntryCosts.Total().
		Add(parent.Legs[0].EntryCosts.Total()).
		Equal(dec(t, "17.70")))

	// Child: (105-100)*5*4 - 7.08 entry share - 7.08 exit costs.
	assert.NotNil(t, child.PnL)
	assertDecEq(t, "85.84", *child.PnL)
	assert.Equal(t, 4, *child.OriginalQty)

	// Parent keeps the remainder open.
	assert.Equal(t, trade.StatusOpen, parent.Status)
	assert.Equal(t, 6, parent.Legs[0].Qty)
	assert.Equal(t, 10, *parent.OriginalQty)
	assert.Nil(t, parent.PnL)

	// Close the remaining 6 and check the split settles to the same
	// total as one blended close of all 10 would have.
	res2, err := eng.Close(tr.ID, 6, ClosePrices{"MES_P_5900": dec(t, "102")})
	assert.NoError(t, err)
	assert.False(t, res2.Partial)
	assertDecEq(t, "38.76", *parent.PnL)

	total := child.PnL.Add(*parent.PnL)
	// Blended: gross (100+60) minus entry 17.70 minus exits (7.08+10.62).
	assertDecEq(t, "124.60", total)
}

func TestPartialCloseSequencesChildIDs(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	tr := openOption10(t, eng)

	res1, err := eng.Close(tr.ID, 2, ClosePrices{"MES_P_5900": dec(t, "104")})
	assert.NoError(t, err)
	res2, err := eng.Close(tr.ID, 3, ClosePrices{"MES_P_5900": dec(t, "101")})
	assert.NoError(t, err)

	assert.Equal(t, tr.ID+"-P1", res1.Trade.ID)
	assert.Equal(t, tr.ID+"-P2", res2.Trade.ID)
	assert.Equal(t, 5, tr.OpenQty())
	assert.Equal(t, 10, *tr.OriginalQty)
	assert.Equal(t, 3, eng.Book.Len())
}

func TestPartialCloseRejectedWhenLegWouldHitZero(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	res, err := eng.Open(bullPutRequest(t, 2))
	assert.NoError(t, err)
	tr := res.Trade

	// Open qty is 4 across two legs of 2; closing 2 would zero a leg.
	_, err = eng.Close(tr.ID, 2, ClosePrices{
		"MES_P_5850": dec(t, "4.00"),
		"MES_P_5800": dec(t, "2.00"),
	})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, trade.StatusOpen, tr.Status)
	assert.Equal(t, 2, tr.Legs[0].Qty)
	assert.Nil(t, tr.OriginalQty)
}

func TestPartialCloseSpreadPerLeg(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	res, err := eng.Open(bullPutRequest(t, 2))
	assert.NoError(t, err)
	tr := res.Trade

	out, err := eng.Close(tr.ID, 1, ClosePrices{
		"MES_P_5850": dec(t, "4.00"),
		"MES_P_5800": dec(t, "2.00"),
	})
	assert.NoError(t, err)
	assert.True(t, out.Partial)

	child := out.Trade
	assert.Len(t, child.Legs, 2)
	assert.Equal(t, 1, child.Legs[0].Qty)
	assert.Equal(t, 1, child.Legs[1].Qty)
	assert.Equal(t, 1, tr.Legs[0].Qty)
	assert.Equal(t, 1, tr.Legs[1].Qty)
	assert.Equal(t, 4, *tr.OriginalQty)

	// Entry costs split in half per leg.
	assertDecEq(t, "1.77", child.Legs[0].EntryCosts.Total())
	assertDecEq(t, "1.77", tr.Legs[0].EntryCosts.Total())
}

func TestOvernightCloseGate(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	req := bullPutRequest(t, 2)
	req.Strategy = "BULL-PUT-OVERNIGHT"
	res, err := eng.Open(req)
	assert.NoError(t, err)
	tr := res.Trade

	prices := ClosePrices{
		"MES_P_5850": dec(t, "4.00"),
		"MES_P_5800": dec(t, "2.00"),
	}

	_, err = eng.Close(tr.ID, 4, prices)
	var gerr *GateError
	assert.True(t, errors.As(err, &gerr))
	assert.Equal(t, GateCheckpoint, gerr.Code)
	assert.Equal(t, trade.StatusOpen, tr.Status)
	for _, l := range tr.Legs {
		assert.True(t, l.Open())
	}

	_, err = eng.RecordCheckpoint(tr.ID, dec(t, "12.00"))
	assert.NoError(t, err)
	assert.True(t, tr.PnL2HRecorded)
	assert.NotNil(t, tr.PnL2HTimestamp)

	out, err := eng.Close(tr.ID, 4, prices)
	assert.NoError(t, err)
	assert.Equal(t, trade.StatusClosed, out.Trade.Status)
}

func TestPartialCloseChildCarriesCheckpoint(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	req := bullPutRequest(t, 3)
	req.Strategy = "BULL-PUT-OVERNIGHT"
	res, err := eng.Open(req)
	assert.NoError(t, err)
	tr := res.Trade

	_, err = eng.RecordCheckpoint(tr.ID, dec(t, "-4.50"))
	assert.NoError(t, err)

	out, err := eng.Close(tr.ID, 1, ClosePrices{
		"MES_P_5850": dec(t, "4.00"),
		"MES_P_5800": dec(t, "2.00"),
	})
	assert.NoError(t, err)
	assert.True(t, out.Trade.PnL2HRecorded)
	assert.NotNil(t, out.Trade.PnL2H)
	assertDecEq(t, "-4.50", *out.Trade.PnL2H)
}

func TestCloseLegLeavesTradeOpen(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	res, err := eng.Open(bullPutRequest(t, 2))
	assert.NoError(t, err)
	tr := res.Trade

	got, err := eng.CloseLeg(tr.ID, "MES_P_5850", dec(t, "4.00"))
	assert.NoError(t, err)
	assert.Equal(t, trade.StatusOpen, got.Status)
	assert.False(t, tr.Legs[0].Open())
	assert.True(t, tr.Legs[1].Open())
	assertDecEq(t, "3.54", tr.Legs[0].ExitCosts.Total())
	assert.Nil(t, tr.PnL)

	// Closing the last leg closes the trade.
	got, err = eng.CloseLeg(tr.ID, "MES_P_5800", dec(t, "2.00"))
	assert.NoError(t, err)
	assert.Equal(t, trade.StatusClosed, got.Status)
	assert.NotNil(t, got.PnL)
}

func TestCloseLegValidation(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	res, err := eng.Open(bullPutRequest(t, 2))
	assert.NoError(t, err)
	tr := res.Trade

	_, err = eng.CloseLeg(tr.ID, "MES_P_9999", dec(t, "1.00"))
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = eng.CloseLeg(tr.ID, "MES_P_5850", dec(t, "4.00"))
	assert.NoError(t, err)
	_, err = eng.CloseLeg(tr.ID, "MES_P_5850", dec(t, "4.00"))
	assert.True(t, errors.As(err, &verr))
}

func TestCloseLegLastLegHitsCheckpointGate(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	req := bullPutRequest(t, 2)
	req.Strategy = "BULL-PUT-OVERNIGHT"
	res, err := eng.Open(req)
	assert.NoError(t, err)
	tr := res.Trade

	// First leg is fine: the trade stays open.
	_, err = eng.CloseLeg(tr.ID, "MES_P_5850", dec(t, "4.00"))
	assert.NoError(t, err)

	// The last leg would close the trade, so the gate applies.
	_, err = eng.CloseLeg(tr.ID, "MES_P_5800", dec(t, "2.00"))
	var gerr *GateError
	assert.True(t, errors.As(err, &gerr))
	assert.Equal(t, GateCheckpoint, gerr.Code)
	assert.True(t, tr.Legs[1].Open())
}

func TestExpireWholeTrade(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	res, err := eng.Open(bullPutRequest(t, 2))
	assert.NoError(t, err)
	tr := res.Trade

	got, err := eng.Expire(tr.ID, "")
	assert.NoError(t, err)
	assert.Equal(t, trade.StatusClosed, got.Status)
	for _, l := range tr.Legs {
		assert.NotNil(t, l.Exit)
		assert.True(t, l.Exit.IsZero())
		assert.NotNil(t, l.ExitCosts)
	}

	// Short put collects the full credit, long put loses its debit:
	// (12.50-8.25)*5*2 gross minus four cost sides at 3.54.
	assert.NotNil(t, got.PnL)
	assertDecEq(t, "28.34", *got.PnL)
}

func TestExpireSingleLeg(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	res, err := eng.Open(bullPutRequest(t, 2))
	assert.NoError(t, err)
	tr := res.Trade

	got, err := eng.Expire(tr.ID, "MES_P_5800")
	assert.NoError(t, err)
	assert.Equal(t, trade.StatusOpen, got.Status)
	assert.True(t, tr.Legs[0].Open())
	assert.False(t, tr.Legs[1].Open())
	assert.True(t, tr.Legs[1].Exit.IsZero())
}

func TestCloseSpreadNetDebit(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	res, err := eng.Open(bullPutRequest(t, 2))
	assert.NoError(t, err)
	tr := res.Trade

	out, err := eng.CloseSpreadNetDebit(tr.ID, dec(t, "1.50"))
	assert.NoError(t, err)
	assert.Equal(t, trade.StatusClosed, out.Trade.Status)

	// Credit 12.50-8.25=4.25, debit 1.50, so 2.75/contract over qty 2
	// multiplier 5 = 27.50 gross, minus entry 7.08 and one exit 3.54.
	assert.NotNil(t, tr.PnL)
	assertDecEq(t, "16.88", *tr.PnL)

	// Exit prices are the 80/20 allocation of the debit.
	assertDecEq(t, "1.20", *tr.Legs[0].Exit)
	assertDecEq(t, "0.30", *tr.Legs[1].Exit)
	assertDecEq(t, "3.54", tr.Legs[0].ExitCosts.Total())
	assert.True(t, tr.Legs[1].ExitCosts.IsZero())
}

func TestCloseSpreadNetDebitRejectsSingleLeg(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	tr := openOption10(t, eng)

	_, err := eng.CloseSpreadNetDebit(tr.ID, dec(t, "1.00"))
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, trade.StatusOpen, tr.Status)
}

func TestRecalcIsIdempotent(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	tr := openOption10(t, eng)
	_, err := eng.Close(tr.ID, 10, ClosePrices{"MES_P_5900": dec(t, "105")})
	assert.NoError(t, err)

	first, err := eng.Recalc(tr.ID)
	assert.NoError(t, err)
	assert.False(t, first.Changed())

	second, err := eng.Recalc(tr.ID)
	assert.NoError(t, err)
	assert.False(t, second.Changed())
	assert.True(t, first.New.Equal(*second.New))
}

func TestRecalcReportsDriftAfterAmend(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	tr := openOption10(t, eng)
	_, err := eng.Close(tr.ID, 10, ClosePrices{"MES_P_5900": dec(t, "105")})
	assert.NoError(t, err)
	assertDecEq(t, "214.60", *tr.PnL)

	exit := dec(t, "106")
	_, err = eng.AmendLeg(tr.ID, "MES_P_5900", nil, &exit)
	assert.NoError(t, err)
	assert.Nil(t, tr.PnL)

	res, err := eng.Recalc(tr.ID)
	assert.NoError(t, err)
	assert.True(t, res.Changed())
	// (106-100)*5*10 - 35.40
	assertDecEq(t, "264.60", *res.New)
	assertDecEq(t, "264.60", *tr.PnL)
}

func TestRecalcOpenTradeRejected(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	tr := openOption10(t, eng)

	_, err := eng.Recalc(tr.ID)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestRecalcAllCoversClosedTrades(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	a := openOption10(t, eng)
	_, err := eng.Close(a.ID, 10, ClosePrices{"MES_P_5900": dec(t, "105")})
	assert.NoError(t, err)
	openOption10(t, eng) // stays open, not recalced

	results := eng.RecalcAll()
	assert.Len(t, results, 1)
	assert.Equal(t, a.ID, results[0].Trade.ID)
}

func TestAmendLegRejectsExitOnOpenLeg(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	tr := openOption10(t, eng)

	exit := dec(t, "104")
	_, err := eng.AmendLeg(tr.ID, "MES_P_5900", nil, &exit)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.True(t, tr.Legs[0].Open())
}

func TestRecordCheckpointOnClosedTradeRejected(t *testing.T) {
	t.Parallel()

	eng := testEngine(t)
	tr := openOption10(t, eng)
	_, err := eng.Close(tr.ID, 10, ClosePrices{"MES_P_5900": dec(t, "105")})
	assert.NoError(t, err)

	_, err = eng.RecordCheckpoint(tr.ID, dec(t, "1.00"))
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}
