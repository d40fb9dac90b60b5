package store

import (
	"fmt"
	"strings"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

const baseOutcomesSelect = `SELECT id, run_id, identifier, platform, outcome,
	COALESCE(listing_url, ''), COALESCE(reason, ''), posted_at
FROM outcomes`

// ToSQL builds the WHERE clause, ORDER BY, LIMIT, and OFFSET for an outcome
// query, returning the SQL string and the positional parameters.
func (q *OutcomeQuery) ToSQL() (string, []any) {
	var conditions []string
	var args []any
	paramIdx := 1

	if q.Identifier != nil {
		conditions = append(conditions, fmt.Sprintf("identifier = $%d", paramIdx))
		args = append(args, *q.Identifier)
		paramIdx++
	}

	if q.Platform != nil {
		conditions = append(conditions, fmt.Sprintf("platform = $%d", paramIdx))
		args = append(args, string(*q.Platform))
		paramIdx++
	}

	if q.Outcome != nil {
		conditions = append(conditions, fmt.Sprintf("outcome = $%d", paramIdx))
		args = append(args, *q.Outcome)
		paramIdx++
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset := max(q.Offset, 0)

	sql := fmt.Sprintf(
		"%s%s ORDER BY posted_at DESC LIMIT %d OFFSET %d",
		baseOutcomesSelect, whereClause, limit, offset,
	)
	return sql, args
}
