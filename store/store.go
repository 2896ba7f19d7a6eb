// Package store persists the trade book as a single JSON file and feeds
// it from the file-drop inbox. The book is read wholesale at startup and
// written wholesale on save; decimals travel as strings end to end, so
// currency never passes through a float. Legacy files are upgraded once,
// at load, by explicit per-shape migrations.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/rustyeddy/blotter/book"
	"github.com/rustyeddy/blotter/fees"
	"github.com/rustyeddy/blotter/trade"
)

// Version is the on-disk schema written by Save: a versioned envelope
// around the trade list.
const Version = 2

// Store reads and writes one book file. Multipliers back-fill contract
// multipliers on legacy legs that never recorded one.
type Store struct {
	Path        string
	Multipliers map[string]int
}

type envelope struct {
	Version int               `json:"version"`
	Trades  []json.RawMessage `json:"trades"`
}

// Load reads the book, upgrading legacy shapes as it goes. A missing
// file is an empty book, not an error.
func (s *Store) Load() (*book.Book, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return book.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read book: %w", err)
	}

	raws, fromLegacy, err := rawTrades(data)
	if err != nil {
		return nil, fmt.Errorf("parse book %s: %w", s.Path, err)
	}
	if fromLegacy {
		log.Infof("book %s predates the versioned envelope, upgrading", s.Path)
	}

	bk := book.New()
	for i, raw := range raws {
		tr, err := s.decodeTrade(raw)
		if err != nil {
			return nil, fmt.Errorf("book %s record %d: %w", s.Path, i, err)
		}
		if err := bk.Append(tr); err != nil {
			return nil, fmt.Errorf("book %s record %d: %w", s.Path, i, err)
		}
	}
	return bk, nil
}

// rawTrades peels the envelope, accepting the legacy bare-array file.
func rawTrades(data []byte) (raws []json.RawMessage, legacy bool, err error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && env.Version > 0 {
		if env.Version > Version {
			return nil, false, fmt.Errorf("book version %d is newer than this blotter understands (%d)", env.Version, Version)
		}
		return env.Trades, false, nil
	}

	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, false, fmt.Errorf("neither a versioned book nor a legacy trade array: %w", err)
	}
	return raws, true, nil
}

// decodeTrade tries the current schema first, then the legacy flat
// shape. Unknown keys fail the decode rather than vanishing silently.
func (s *Store) decodeTrade(raw json.RawMessage) (*trade.Trade, error) {
	var tr trade.Trade
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&tr); err == nil {
		return s.normalize(&tr)
	}

	if tr, err := s.migrateFlat(raw); err == nil {
		return tr, nil
	}

	// Re-run the strict decode for its error message.
	dec = json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	err := dec.Decode(&trade.Trade{})
	return nil, fmt.Errorf("unrecognized trade shape: %v", err)
}

// normalize is the in-place migration for records that parse as the
// current shape but predate some field: legs without cost breakdowns get
// zero fees, legs without multipliers get the configured one, and a
// blank status is derived from the legs.
func (s *Store) normalize(tr *trade.Trade) (*trade.Trade, error) {
	if tr.ID == "" {
		return nil, fmt.Errorf("trade has no id")
	}
	if len(tr.Legs) == 0 {
		return nil, fmt.Errorf("trade %s has no legs", tr.ID)
	}

	for _, l := range tr.Legs {
		if l.Qty <= 0 {
			return nil, fmt.Errorf("trade %s leg %s: quantity %d", tr.ID, l.Symbol, l.Qty)
		}
		if l.Multiplier <= 0 {
			l.Multiplier = s.multiplier(l.Symbol)
		}
		if l.Exit != nil && l.ExitCosts == nil {
			costs := fees.Zero()
			l.ExitCosts = &costs
		}
		if l.Exit == nil {
			l.ExitCosts = nil
		}
	}

	if tr.Status == "" {
		tr.Status = trade.StatusOpen
		if tr.LegsAllClosed() {
			tr.Status = trade.StatusClosed
		}
	}
	return tr, nil
}

func (s *Store) multiplier(symbol string) int {
	if m, ok := s.Multipliers[trade.SymbolRoot(symbol)]; ok && m > 0 {
		return m
	}
	return 1
}

// Save writes the whole book atomically: marshal, write a sibling tmp
// file, rename over the old one.
func (s *Store) Save(bk *book.Book) error {
	trades := bk.Trades()
	raws := make([]json.RawMessage, 0, len(trades))
	for _, tr := range trades {
		raw, err := json.Marshal(tr)
		if err != nil {
			return fmt.Errorf("marshal trade %s: %w", tr.ID, err)
		}
		raws = append(raws, raw)
	}

	data, err := json.MarshalIndent(envelope{Version: Version, Trades: raws}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write book: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace book: %w", err)
	}
	return nil
}

// EnsureDirs creates the inbox and archive directories if missing.
func EnsureDirs(dirs ...string) error {
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Clean(d), err)
		}
	}
	return nil
}
