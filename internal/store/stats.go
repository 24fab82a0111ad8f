package store

import (
	"context"
	"fmt"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string       `json:"db_path"`
	DBSizeBytes int64        `json:"db_size_bytes"`
	TotalRows   int          `json:"total_rows"`
	ActiveRows  int          `json:"active_rows"`
	Sets        []SetStats   `json:"sets"`
	Topics      []TopicStats `json:"topics"`
}

// SetStats holds per-set counts.
type SetStats struct {
	Set      string `json:"set"`
	Versions int    `json:"versions"`
	Keys     int    `json:"keys"`
}

// TopicStats counts live rule versions per topic.
type TopicStats struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rules`).Scan(&st.TotalRows); err != nil {
		return st, fmt.Errorf("count rows: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rules WHERE deleted_at IS NULL`).Scan(&st.ActiveRows); err != nil {
		return st, fmt.Errorf("count active rows: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT set_name, COUNT(*) as cnt, COUNT(DISTINCT rule_key) as keys
		FROM rules WHERE deleted_at IS NULL
		GROUP BY set_name ORDER BY cnt DESC`)
	if err != nil {
		return st, err
	}
	for rows.Next() {
		var ss SetStats
		if err := rows.Scan(&ss.Set, &ss.Versions, &ss.Keys); err != nil {
			rows.Close()
			return st, err
		}
		st.Sets = append(st.Sets, ss)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return st, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT topic, COUNT(*) FROM rules WHERE deleted_at IS NULL
		GROUP BY topic ORDER BY topic`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var ts TopicStats
		if err := rows.Scan(&ts.Topic, &ts.Count); err != nil {
			return st, err
		}
		st.Topics = append(st.Topics, ts)
	}

	return st, rows.Err()
}
