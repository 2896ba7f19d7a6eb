package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rustyeddy/blotter/book"
	"github.com/rustyeddy/blotter/trade"
)

// ImportInbox drains *.json files from the inbox into the book. A file
// holds one trade or a list; trades whose ID is already in the book are
// skipped, so re-dropping a file is harmless. Every processed file moves
// to the archive whether or not it added anything. Returns the number of
// trades added; the caller saves the book afterwards.
func (s *Store) ImportInbox(bk *book.Book, inboxDir, archiveDir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(inboxDir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("scan inbox: %w", err)
	}
	sort.Strings(paths)

	total := 0
	for _, path := range paths {
		added, err := s.importFile(bk, path)
		if err != nil {
			return total, fmt.Errorf("import %s: %w", filepath.Base(path), err)
		}

		dest := filepath.Join(archiveDir, filepath.Base(path))
		if err := os.Rename(path, dest); err != nil {
			return total, fmt.Errorf("archive %s: %w", filepath.Base(path), err)
		}

		if added > 0 {
			log.Infof("imported %d trade(s) from %s", added, filepath.Base(path))
		}
		total += added
	}
	return total, nil
}

func (s *Store) importFile(bk *book.Book, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		raws = []json.RawMessage{data}
	}

	added := 0
	for i, raw := range raws {
		tr, err := s.decodeTrade(raw)
		if err != nil {
			return added, fmt.Errorf("record %d: %w", i, err)
		}
		if bk.Has(tr.ID) {
			continue
		}
		if err := bk.Append(tr); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// WriteSingleTradeFile drops one trade into the inbox as its own file,
// named {yymmdd}-{id}.trade.json. Another blotter instance pointed at
// the same inbox picks it up through the normal import path.
func WriteSingleTradeFile(tr *trade.Trade, inboxDir string, now time.Time) (string, error) {
	data, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal trade %s: %w", tr.ID, err)
	}

	name := fmt.Sprintf("%s-%s.trade.json", now.Format("060102"), tr.ID)
	path := filepath.Join(inboxDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write trade file: %w", err)
	}
	return path, nil
}
