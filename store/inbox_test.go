package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/blotter/book"
)

type inboxFixture struct {
	store   *Store
	inbox   string
	archive string
}

func newInboxFixture(t *testing.T) inboxFixture {
	t.Helper()

	dir := t.TempDir()
	fx := inboxFixture{
		store: &Store{
			Path:        filepath.Join(dir, "trades.json"),
			Multipliers: map[string]int{"MES": 5},
		},
		inbox:   filepath.Join(dir, "inbox"),
		archive: filepath.Join(dir, "archive"),
	}
	require.NoError(t, EnsureDirs(fx.inbox, fx.archive))
	return fx
}

func TestImportInbox(t *testing.T) {
	t.Parallel()

	fx := newInboxFixture(t)
	tr := spreadTrade(t)
	_, err := WriteSingleTradeFile(tr, fx.inbox, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	bk := book.New()
	added, err := fx.store.ImportInbox(bk, fx.inbox, fx.archive)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.True(t, bk.Has("01SPREAD"))

	// The file moved to the archive.
	left, err := filepath.Glob(filepath.Join(fx.inbox, "*.json"))
	require.NoError(t, err)
	assert.Empty(t, left)
	archived, err := filepath.Glob(filepath.Join(fx.archive, "*.json"))
	require.NoError(t, err)
	assert.Len(t, archived, 1)
	assert.Equal(t, "260302-01SPREAD.trade.json", filepath.Base(archived[0]))
}

func TestImportInboxIdempotent(t *testing.T) {
	t.Parallel()

	fx := newInboxFixture(t)
	tr := spreadTrade(t)

	bk := book.New()
	require.NoError(t, bk.Append(tr))

	// Drop the same trade again: skipped, file still archived.
	_, err := WriteSingleTradeFile(tr, fx.inbox, time.Now().UTC())
	require.NoError(t, err)

	added, err := fx.store.ImportInbox(bk, fx.inbox, fx.archive)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, 1, bk.Len())

	left, err := filepath.Glob(filepath.Join(fx.inbox, "*.json"))
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestImportInboxListFile(t *testing.T) {
	t.Parallel()

	fx := newInboxFixture(t)

	a := spreadTrade(t)
	b := spreadTrade(t)
	b.ID = "01OTHER"
	data, err := json.Marshal([]any{a, b})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(fx.inbox, "batch.json"), data, 0644))

	bk := book.New()
	added, err := fx.store.ImportInbox(bk, fx.inbox, fx.archive)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.True(t, bk.Has("01OTHER"))
}

func TestWatchInboxImportsOnDrop(t *testing.T) {
	t.Parallel()

	fx := newInboxFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- WatchInbox(ctx, fx.inbox, func() error {
			calls.Add(1)
			return nil
		})
	}()

	// Give the watcher a moment to register before dropping the file.
	time.Sleep(200 * time.Millisecond)
	_, err := WriteSingleTradeFile(spreadTrade(t), fx.inbox, time.Now().UTC())
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return calls.Load() > 0 }, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
