package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/eliza/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rules (
		id             TEXT PRIMARY KEY,
		set_name       TEXT NOT NULL,
		rule_key       TEXT NOT NULL,
		description    TEXT,
		pattern        TEXT NOT NULL,
		priority       INTEGER NOT NULL DEFAULT 0,
		topic          TEXT NOT NULL DEFAULT 'none',
		responses      TEXT NOT NULL,
		context_weight INTEGER NOT NULL DEFAULT 1,
		active         INTEGER NOT NULL DEFAULT 1,
		version        INTEGER NOT NULL DEFAULT 1,
		supersedes     TEXT,
		created_at     TEXT NOT NULL,
		deleted_at     TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_rules_set_key ON rules(set_name, rule_key);
	CREATE INDEX IF NOT EXISTS idx_rules_set_topic ON rules(set_name, topic);
	CREATE INDEX IF NOT EXISTS idx_rules_deleted ON rules(deleted_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

const ruleColumns = `id, set_name, rule_key, description, pattern, priority, topic, responses,
	context_weight, active, version, supersedes, created_at, deleted_at`

func setOrDefault(set string) string {
	if set == "" {
		return DefaultSet
	}
	return set
}

func (s *SQLiteStore) Put(ctx context.Context, p PutParams) (*StoredRule, error) {
	now := time.Now().UTC()
	id := s.newID()
	set := setOrDefault(p.Set)

	r := p.Rule.Clone()
	if strings.TrimSpace(r.Pattern) == "" {
		return nil, fmt.Errorf("rule pattern is required")
	}
	if len(r.Responses) == 0 {
		return nil, fmt.Errorf("rule needs at least one response")
	}
	if r.ID == "" {
		r.ID = strings.ToLower(id)
	}
	if r.ContextWeight == 0 {
		r.ContextWeight = 1
	}

	responsesJSON, err := json.Marshal(r.Responses)
	if err != nil {
		return nil, fmt.Errorf("encode responses: %w", err)
	}

	var descPtr *string
	if r.Description != "" {
		descPtr = &r.Description
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Check for existing latest version
	var prevID string
	var prevVersion int
	err = tx.QueryRowContext(ctx,
		`SELECT id, version FROM rules
		 WHERE set_name = ? AND rule_key = ? AND deleted_at IS NULL
		 ORDER BY version DESC LIMIT 1`, set, r.ID).Scan(&prevID, &prevVersion)

	version := 1
	var supersedes *string
	if err == nil {
		version = prevVersion + 1
		supersedes = &prevID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO rules (`+ruleColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		id, set, r.ID, descPtr, r.Pattern, r.Priority, r.Topic.String(), string(responsesJSON),
		r.ContextWeight, r.Active, version, supersedes, now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert rule: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	sr := &StoredRule{
		Rule:      r,
		RowID:     id,
		Set:       set,
		Version:   version,
		CreatedAt: now,
	}
	if supersedes != nil {
		sr.Supersedes = *supersedes
	}
	return sr, nil
}

func (s *SQLiteStore) Get(ctx context.Context, p GetParams) ([]StoredRule, error) {
	var query string
	var args []interface{}
	set := setOrDefault(p.Set)

	switch {
	case p.History:
		query = `SELECT ` + ruleColumns + ` FROM rules
				 WHERE set_name = ? AND rule_key = ? AND deleted_at IS NULL
				 ORDER BY version DESC`
		args = []interface{}{set, p.Key}
	case p.Version > 0:
		query = `SELECT ` + ruleColumns + ` FROM rules
				 WHERE set_name = ? AND rule_key = ? AND version = ? AND deleted_at IS NULL
				 LIMIT 1`
		args = []interface{}{set, p.Key, p.Version}
	default:
		query = `SELECT ` + ruleColumns + ` FROM rules
				 WHERE set_name = ? AND rule_key = ? AND deleted_at IS NULL
				 ORDER BY version DESC LIMIT 1`
		args = []interface{}{set, p.Key}
	}

	rules, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, set, p.Key)
	}
	return rules, nil
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]StoredRule, error) {
	limit := p.Limit
	if limit == 0 {
		limit = 100
	}

	// Only the latest version of each set+key
	where := []string{"r.deleted_at IS NULL"}
	var args []interface{}

	if p.Set != "" {
		where = append(where, "r.set_name = ?")
		args = append(args, p.Set)
	}
	if p.Topic != nil {
		where = append(where, "r.topic = ?")
		args = append(args, p.Topic.String())
	}
	if !p.IncludeInactive {
		where = append(where, "r.active = 1")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM rules r
		INNER JOIN (
			SELECT set_name, rule_key, MAX(version) AS max_ver
			FROM rules WHERE deleted_at IS NULL
			GROUP BY set_name, rule_key
		) latest ON r.set_name = latest.set_name AND r.rule_key = latest.rule_key AND r.version = latest.max_ver
		WHERE %s
		ORDER BY r.set_name, r.priority DESC, r.rule_key
		LIMIT ?`, prefixed("r", ruleColumns), strings.Join(where, " AND "))
	args = append(args, limit)

	return s.query(ctx, query, args...)
}

// Rules returns the latest active rules of a set, highest priority first.
func (s *SQLiteStore) Rules(ctx context.Context, set string) ([]model.Rule, error) {
	stored, err := s.List(ctx, ListParams{Set: setOrDefault(set), Limit: -1})
	if err != nil {
		return nil, err
	}
	rules := make([]model.Rule, len(stored))
	for i, sr := range stored {
		rules[i] = sr.Rule
	}
	return rules, nil
}

func (s *SQLiteStore) Rm(ctx context.Context, p RmParams) error {
	set := setOrDefault(p.Set)
	if p.Hard {
		if p.AllVersions {
			res, err := s.db.ExecContext(ctx, `DELETE FROM rules WHERE set_name = ? AND rule_key = ?`, set, p.Key)
			if err != nil {
				return err
			}
			return requireAffected(res, set, p.Key)
		}
		// Hard delete latest only
		id, err := s.latestID(ctx, set, p.Key)
		if err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id)
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if p.AllVersions {
		res, err := s.db.ExecContext(ctx,
			`UPDATE rules SET deleted_at = ? WHERE set_name = ? AND rule_key = ? AND deleted_at IS NULL`,
			now, set, p.Key)
		if err != nil {
			return err
		}
		return requireAffected(res, set, p.Key)
	}

	// Soft-delete latest version only
	id, err := s.latestID(ctx, set, p.Key)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE rules SET deleted_at = ? WHERE id = ?`, now, id)
	return err
}

func (s *SQLiteStore) latestID(ctx context.Context, set, key string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM rules WHERE set_name = ? AND rule_key = ? AND deleted_at IS NULL ORDER BY version DESC LIMIT 1`,
		set, key).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%w: %s/%s", ErrNotFound, set, key)
	}
	return id, nil
}

func requireAffected(res sql.Result, set, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, set, key)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...interface{}) ([]StoredRule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []StoredRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func prefixed(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row scanner) (StoredRule, error) {
	var r StoredRule
	var description, supersedes, deletedAt sql.NullString
	var topic, responses, createdAt string

	err := row.Scan(
		&r.RowID, &r.Set, &r.ID, &description, &r.Pattern, &r.Priority, &topic, &responses,
		&r.ContextWeight, &r.Active, &r.Version, &supersedes, &createdAt, &deletedAt,
	)
	if err != nil {
		return r, err
	}

	if r.Topic, err = model.ParseTopic(topic); err != nil {
		return r, fmt.Errorf("rule %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(responses), &r.Responses); err != nil {
		return r, fmt.Errorf("rule %s: decode responses: %w", r.ID, err)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if description.Valid {
		r.Description = description.String
	}
	if supersedes.Valid {
		r.Supersedes = supersedes.String
	}
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339Nano, deletedAt.String)
		r.DeletedAt = &t
	}

	return r, nil
}
