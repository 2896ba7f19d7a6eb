package journal

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the queryable journal backend.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the journal database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// RecordClose inserts the entry, replacing any previous row for the same
// trade ID so a recalc-then-reclose never duplicates history.
func (j *SQLite) RecordClose(e Entry) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO closes
		(trade_id, strategy, type, qty, gross, costs, net, opened_at, closed_at, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.TradeID, e.Strategy, e.Type, e.Qty,
		e.Gross.String(), e.Costs.String(), e.Net.String(),
		e.OpenedAt.UTC(), e.ClosedAt.UTC(), e.Reason,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func scanEntry(row interface{ Scan(...any) error }) (Entry, error) {
	var e Entry
	var gross, costs, net string

	err := row.Scan(
		&e.TradeID, &e.Strategy, &e.Type, &e.Qty,
		&gross, &costs, &net,
		&e.OpenedAt, &e.ClosedAt, &e.Reason,
	)
	if err != nil {
		return Entry{}, err
	}

	if e.Gross, err = decimal.NewFromString(gross); err != nil {
		return Entry{}, fmt.Errorf("journal row %s: bad gross %q", e.TradeID, gross)
	}
	if e.Costs, err = decimal.NewFromString(costs); err != nil {
		return Entry{}, fmt.Errorf("journal row %s: bad costs %q", e.TradeID, costs)
	}
	if e.Net, err = decimal.NewFromString(net); err != nil {
		return Entry{}, fmt.Errorf("journal row %s: bad net %q", e.TradeID, net)
	}
	return e, nil
}
