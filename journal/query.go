package journal

import (
	"database/sql"
	"fmt"
	"time"
)

const selectCols = "trade_id, strategy, type, qty, gross, costs, net, opened_at, closed_at, reason"

// GetEntry returns the close record for one trade ID.
func (j *SQLite) GetEntry(tradeID string) (Entry, error) {
	row := j.db.QueryRow(
		"SELECT "+selectCols+" FROM closes WHERE trade_id = ?", tradeID)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return Entry{}, fmt.Errorf("no close recorded for trade %q", tradeID)
	}
	return e, err
}

// ListClosedBetween returns the closes with closed_at in [start, end),
// oldest first.
func (j *SQLite) ListClosedBetween(start, end time.Time) ([]Entry, error) {
	rows, err := j.db.Query(
		"SELECT "+selectCols+" FROM closes WHERE closed_at >= ? AND closed_at < ? ORDER BY closed_at ASC",
		start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
