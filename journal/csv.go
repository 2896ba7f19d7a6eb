package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CSV appends closes to a flat file, header written on creation. No
// query side; the file is for spreadsheets.
type CSV struct {
	w *csv.Writer
	f *os.File
}

var csvHeader = []string{
	"trade_id", "strategy", "type", "qty",
	"gross", "costs", "net", "opened_at", "closed_at", "reason",
}

// NewCSV opens the journal file for appending, writing the header if the
// file is new or empty.
func NewCSV(path string) (*CSV, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open journal csv: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			f.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, err
		}
	}

	return &CSV{w: w, f: f}, nil
}

func (j *CSV) RecordClose(e Entry) error {
	err := j.w.Write([]string{
		e.TradeID,
		e.Strategy,
		e.Type,
		strconv.Itoa(e.Qty),
		e.Gross.String(),
		e.Costs.String(),
		e.Net.String(),
		e.OpenedAt.UTC().Format(time.RFC3339),
		e.ClosedAt.UTC().Format(time.RFC3339),
		e.Reason,
	})
	if err != nil {
		return err
	}

	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.f.Close()
}
