package balance

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/blotter/book"
	"github.com/rustyeddy/blotter/fees"
	"github.com/rustyeddy/blotter/trade"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

// closedAt adds a closed single-leg trade with the given net P&L (costs
// are zero so net equals gross) entered at ts.
func closedAt(t *testing.T, bk *book.Book, tradeID string, ts time.Time, net string) {
	t.Helper()

	// entry 0, exit net/(qty*mult) with qty=1 mult=1 keeps the math exact.
	exit := dec(t, net)
	tr := &trade.Trade{
		ID:     tradeID,
		TS:     ts,
		Type:   trade.TypeOption,
		Strat:  "NORMAL",
		Status: trade.StatusClosed,
		Legs: []*trade.Leg{{
			Symbol:     "MES_P_1",
			Side:       trade.Buy,
			Qty:        1,
			Entry:      decimal.Zero,
			Exit:       &exit,
			Multiplier: 1,
			EntryCosts: fees.Zero(),
			ExitCosts:  func() *fees.Fees { z := fees.Zero(); return &z }(),
		}},
	}
	tr.RefreshPnL()
	require.NoError(t, bk.Append(tr))
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	bk := book.New()
	closedAt(t, bk, "W1", now, "150.25")
	closedAt(t, bk, "L1", now, "-40.75")

	// An open trade contributes nothing.
	open := &trade.Trade{
		ID: "O1", TS: now, Type: trade.TypeOption, Strat: "NORMAL",
		Status: trade.StatusOpen,
		Legs: []*trade.Leg{{
			Symbol: "MES_P_2", Side: trade.Buy, Qty: 1,
			Entry: dec(t, "5"), Multiplier: 5, EntryCosts: fees.Zero(),
		}},
	}
	require.NoError(t, bk.Append(open))

	adjs := []Adjustment{
		{ID: "a1", TS: now, Amount: dec(t, "500"), Note: "deposit"},
		{ID: "a2", TS: now, Amount: dec(t, "-100"), Note: "withdrawal"},
	}

	br := Summarize(dec(t, "10000"), bk, adjs)
	assert.True(t, br.BlotterPnL.Equal(dec(t, "109.50")), "got %s", br.BlotterPnL)
	assert.True(t, br.Adjustments.Equal(dec(t, "400")))
	assert.True(t, br.Current.Equal(dec(t, "10509.50")), "got %s", br.Current)
	assert.Equal(t, 2, br.ClosedCount)
	assert.Equal(t, 2, br.AdjCount)
}

func TestAdjustmentsFile(t *testing.T) {
	t.Parallel()

	a := &Adjustments{Path: filepath.Join(t.TempDir(), "adj.json")}

	list, err := a.Load()
	require.NoError(t, err)
	assert.Empty(t, list)

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	added, err := a.Add(dec(t, "250.50"), "external win", now)
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)

	list, err = a.Load()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Amount.Equal(dec(t, "250.50")))

	removed, err := a.Remove(added.ID)
	require.NoError(t, err)
	assert.Equal(t, added.ID, removed.ID)

	list, err = a.Load()
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = a.Remove("nope")
	assert.Error(t, err)
}

func TestRecent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC)
	list := []Adjustment{
		{ID: "old", TS: now.Add(-40 * 24 * time.Hour)},
		{ID: "older", TS: now.Add(-10 * 24 * time.Hour)},
		{ID: "newest", TS: now.Add(-time.Hour)},
	}

	got := Recent(list, now, 30)
	require.Len(t, got, 2)
	assert.Equal(t, "newest", got[0].ID)
	assert.Equal(t, "older", got[1].ID)
}

func TestCheckHotHandTrips(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	bk := book.New()
	for i, net := range []string{"10", "20", "30", "40"} {
		closedAt(t, bk, string(rune('A'+i)), now.Add(-time.Duration(4-i)*time.Hour), net)
	}

	cd := CheckHotHand(bk, State{}, now, 4, 24*time.Hour)
	assert.True(t, cd.Active)
	assert.Equal(t, 4, cd.Wins)
	assert.Equal(t, now.Add(24*time.Hour), cd.Until)
}

func TestCheckHotHandLossBreaksStreak(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	bk := book.New()
	closedAt(t, bk, "A", now.Add(-4*time.Hour), "10")
	closedAt(t, bk, "B", now.Add(-3*time.Hour), "-5")
	closedAt(t, bk, "C", now.Add(-2*time.Hour), "10")
	closedAt(t, bk, "D", now.Add(-1*time.Hour), "10")

	cd := CheckHotHand(bk, State{}, now, 4, 24*time.Hour)
	assert.False(t, cd.Active)
	assert.Equal(t, 2, cd.Wins)
}

func TestCheckHotHandOldWinsExpire(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	bk := book.New()
	for i := 0; i < 4; i++ {
		closedAt(t, bk, string(rune('A'+i)), now.Add(-48*time.Hour), "10")
	}

	cd := CheckHotHand(bk, State{}, now, 4, 24*time.Hour)
	assert.False(t, cd.Active)
}

func TestCheckHotHandPersistedCooldownHolds(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	until := now.Add(6 * time.Hour)
	st := State{CooldownUntil: &until, CooldownReason: "forced"}

	cd := CheckHotHand(book.New(), st, now, 4, 24*time.Hour)
	assert.True(t, cd.Active)
	assert.Equal(t, "forced", cd.Reason)
	assert.Equal(t, 6*time.Hour, cd.Remaining(now))

	// Expired cooldowns fall away.
	cd = CheckHotHand(book.New(), st, until.Add(time.Minute), 4, 24*time.Hour)
	assert.False(t, cd.Active)
}

func TestStateFile(t *testing.T) {
	t.Parallel()

	sf := &StateFile{Path: filepath.Join(t.TempDir(), "risk_state.json")}

	st, err := sf.Load()
	require.NoError(t, err)
	assert.Nil(t, st.CooldownUntil)

	until := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	require.NoError(t, sf.Save(State{CooldownUntil: &until, CooldownReason: "hot hand"}))

	st, err = sf.Load()
	require.NoError(t, err)
	require.NotNil(t, st.CooldownUntil)
	assert.True(t, st.CooldownUntil.Equal(until))

	require.NoError(t, sf.Clear())
	st, err = sf.Load()
	require.NoError(t, err)
	assert.Nil(t, st.CooldownUntil)
}

func TestCheckSize(t *testing.T) {
	t.Parallel()

	chk := CheckSize(dec(t, "3000"), dec(t, "10000"), dec(t, "0.33"))
	assert.True(t, chk.OK)
	assert.True(t, chk.Limit.Equal(dec(t, "3300.00")), "got %s", chk.Limit)

	chk = CheckSize(dec(t, "3301"), dec(t, "10000"), dec(t, "0.33"))
	assert.False(t, chk.OK)
}
