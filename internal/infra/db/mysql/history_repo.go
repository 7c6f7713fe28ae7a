package mysql

import (
	"context"
	"database/sql"
	"fmt"

	domain "github.com/bryanwahyu/tidyroom/internal/domain/analysis"
)

// HistoryRepository implements analysis.HistoryStore on the analysis_history table.
// Row order is the auto-increment seq, i.e. insertion order.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Load all records oldest first
func (r *HistoryRepository) Load(ctx context.Context) ([]domain.Record, error) {
	const q = `
SELECT id, ts, result, confidence
FROM analysis_history
ORDER BY seq ASC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Record, 0)
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Result, &rec.Confidence); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Append one row
func (r *HistoryRepository) Append(ctx context.Context, rec domain.Record) error {
	const q = `
INSERT INTO analysis_history (id, ts, result, confidence)
VALUES (?,?,?,?);
`
	_, err := r.db.ExecContext(ctx, q, rec.ID, rec.Timestamp, rec.Result, rec.Confidence)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}
