package report

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/blotter/book"
	"github.com/rustyeddy/blotter/fees"
	"github.com/rustyeddy/blotter/gate"
	"github.com/rustyeddy/blotter/trade"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

func closedNet(t *testing.T, tradeID string, ts time.Time, net string) *trade.Trade {
	t.Helper()

	exit := dec(t, net)
	zero := fees.Zero()
	tr := &trade.Trade{
		ID: tradeID, TS: ts, Type: trade.TypeOption, Strat: "NORMAL",
		Status: trade.StatusClosed,
		Legs: []*trade.Leg{{
			Symbol: "MES_P_5850", Side: trade.Buy, Qty: 1,
			Entry: decimal.Zero, Exit: &exit, Multiplier: 1,
			EntryCosts: fees.Zero(), ExitCosts: &zero,
		}},
	}
	tr.RefreshPnL()
	return tr
}

func perfBook(t *testing.T, nets ...string) *book.Book {
	t.Helper()

	bk := book.New()
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for i, net := range nets {
		require.NoError(t, bk.Append(closedNet(t, string(rune('A'+i)), base.Add(time.Duration(i)*time.Hour), net)))
	}
	return bk
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	p := Analyze(perfBook(t, "10", "20", "-5", "15", "25"))
	assert.Equal(t, 5, p.Trades)
	assert.Equal(t, 4, p.Wins)
	assert.Equal(t, 1, p.Losses)
	assert.InDelta(t, 0.8, p.WinRate, 1e-9)
	assert.True(t, p.TotalNet.Equal(dec(t, "65")))
	assert.InDelta(t, 13.0, p.MeanNet, 1e-9)
	assert.True(t, p.Best.Equal(dec(t, "25")))
	assert.True(t, p.Worst.Equal(dec(t, "-5")))
	assert.Equal(t, 2, p.CurrentStreak)
	assert.Equal(t, 2, p.MaxWinStreak)
	assert.Equal(t, 1, p.MaxLossStreak)
}

func TestAnalyzeLossStreak(t *testing.T) {
	t.Parallel()

	p := Analyze(perfBook(t, "-10", "-20", "-30"))
	assert.Equal(t, -3, p.CurrentStreak)
	assert.Equal(t, 3, p.MaxLossStreak)
	assert.Equal(t, 0, p.MaxWinStreak)
	assert.Equal(t, 0.0, p.WinRate)
}

func TestAnalyzeEmptyBook(t *testing.T) {
	t.Parallel()

	p := Analyze(book.New())
	assert.Equal(t, 0, p.Trades)

	var sb strings.Builder
	Stats(&sb, book.New())
	assert.Contains(t, sb.String(), "No closed trades")
}

func TestListShowsRemainingOfOriginal(t *testing.T) {
	t.Parallel()

	bk := book.New()
	orig := 10
	tr := &trade.Trade{
		ID: "PARENT", TS: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Type: trade.TypeOption, Strat: "NORMAL", Status: trade.StatusOpen,
		OriginalQty: &orig,
		Legs: []*trade.Leg{{
			Symbol: "MES_P_5850", Side: trade.Buy, Qty: 6,
			Entry: dec(t, "100"), Multiplier: 5, EntryCosts: fees.Zero(),
		}},
	}
	require.NoError(t, bk.Append(tr))

	var sb strings.Builder
	List(&sb, bk, "")
	out := sb.String()
	assert.Contains(t, out, "6 of 10")
	assert.Contains(t, out, "OPEN")
	// Open trades show no P&L, not zero.
	assert.Contains(t, out, "-")
}

func TestAuditFlagsStaleCache(t *testing.T) {
	t.Parallel()

	tr := closedNet(t, "X", time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), "42")
	stale := dec(t, "99")
	tr.PnL = &stale

	var sb strings.Builder
	Audit(&sb, tr)
	assert.Contains(t, sb.String(), "STALE")

	tr.RefreshPnL()
	sb.Reset()
	Audit(&sb, tr)
	assert.Contains(t, sb.String(), "snapshot matches")
}

func TestAuditAllTotals(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	AuditAll(&sb, perfBook(t, "10", "-4"))
	out := sb.String()
	assert.Contains(t, out, "net 6.00")
}

func TestBlocks(t *testing.T) {
	t.Parallel()

	windows := []gate.Window{
		{Start: 18 * 60, End: 21*60 + 15, Name: "Asian Open"},
		{Start: 9*60 + 30, End: 9*60 + 45, Name: "Market Open"},
	}
	now := time.Date(2026, 3, 2, 19, 0, 0, 0, time.UTC)

	var sb strings.Builder
	Blocks(&sb, windows, []string{"5AM"}, now)
	out := sb.String()
	assert.Contains(t, out, "Asian Open")
	assert.Contains(t, out, "NOW")
	assert.Contains(t, out, "Exempt strategies: 5AM")
}
