package store

import (
	"context"
	"fmt"
	"strings"
)

// SearchParams holds parameters for searching rules.
type SearchParams struct {
	Set   string
	Query string
	Limit int
}

// Search finds rules whose key, description, pattern or responses contain
// the query substring. Only the latest version of each rule is considered.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]StoredRule, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := "%" + p.Query + "%"

	where := []string{"r.deleted_at IS NULL"}
	var args []interface{}

	if p.Set != "" {
		where = append(where, "r.set_name = ?")
		args = append(args, p.Set)
	}

	sql := fmt.Sprintf(`
		SELECT %s
		FROM rules r
		INNER JOIN (
			SELECT set_name, rule_key, MAX(version) AS max_ver
			FROM rules WHERE deleted_at IS NULL
			GROUP BY set_name, rule_key
		) latest ON r.set_name = latest.set_name AND r.rule_key = latest.rule_key AND r.version = latest.max_ver
		WHERE %s AND (r.rule_key LIKE ? OR r.description LIKE ? OR r.pattern LIKE ? OR r.responses LIKE ?)
		ORDER BY r.priority DESC, r.rule_key
		LIMIT ?`, prefixed("r", ruleColumns), strings.Join(where, " AND "))

	args = append(args, query, query, query, query, limit)

	return s.query(ctx, sql, args...)
}
