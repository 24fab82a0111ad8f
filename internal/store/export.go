package store

import (
	"context"
	"strings"

	"github.com/rcliao/eliza/internal/model"
)

// ExportAll returns every non-deleted rule version, optionally filtered by set.
func (s *SQLiteStore) ExportAll(ctx context.Context, set string) ([]StoredRule, error) {
	where := []string{"deleted_at IS NULL"}
	args := []interface{}{}

	if set != "" {
		where = append(where, "set_name = ?")
		args = append(args, set)
	}

	query := `SELECT ` + ruleColumns + `
	          FROM rules WHERE ` + strings.Join(where, " AND ") + ` ORDER BY set_name, rule_key, version`

	return s.query(ctx, query, args...)
}

// Import stores rules in set. Re-importing a key adds a new version.
func (s *SQLiteStore) Import(ctx context.Context, set string, rules []model.Rule) (int, error) {
	imported := 0
	for _, r := range rules {
		if _, err := s.Put(ctx, PutParams{Set: set, Rule: r}); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

// Export returns the latest version of every rule in set, including inactive
// ones, as a document ruleset.Encode can write.
func (s *SQLiteStore) Export(ctx context.Context, set string) (model.RuleSet, error) {
	set = setOrDefault(set)
	stored, err := s.List(ctx, ListParams{Set: set, Limit: -1, IncludeInactive: true})
	if err != nil {
		return model.RuleSet{}, err
	}
	rs := model.RuleSet{Name: set, Rules: make([]model.Rule, len(stored))}
	for i, sr := range stored {
		rs.Rules[i] = sr.Rule
	}
	return rs, nil
}

// SetInfo describes one stored rule set.
type SetInfo struct {
	Set   string `json:"set"`
	Rules int    `json:"rules"`
}

// ListSets returns every rule set with its count of live rule keys.
func (s *SQLiteStore) ListSets(ctx context.Context) ([]SetInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT set_name, COUNT(DISTINCT rule_key)
		FROM rules WHERE deleted_at IS NULL
		GROUP BY set_name ORDER BY set_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []SetInfo
	for rows.Next() {
		var si SetInfo
		if err := rows.Scan(&si.Set, &si.Rules); err != nil {
			return nil, err
		}
		sets = append(sets, si)
	}
	return sets, rows.Err()
}
