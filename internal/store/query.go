package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/typerel/internal/engine"
	"github.com/roach88/typerel/internal/ir"
)

// CheckQuery selects entries from the relation log. Zero-valued fields
// match every check; set fields are combined with AND.
type CheckQuery struct {
	Outcome  *engine.Outcome
	Left     ir.Node // matched by content hash
	Right    ir.Node // matched by content hash
	DefsHash string
	AfterSeq int64 // only checks with seq > AfterSeq
	Limit    int   // 0 = no limit
}

// predicate is one "column = ?" condition of a compiled query.
type predicate struct {
	column string
	op     string
	value  any
}

// compile converts q to a parameterized SELECT over the relation log.
// Values are never interpolated, and every query ends in a stable
// ORDER BY so results do not depend on SQLite's scan order.
func (q CheckQuery) compile() (string, []any, error) {
	var preds []predicate
	if q.Outcome != nil {
		preds = append(preds, predicate{"c.outcome", "=", q.Outcome.String()})
	}
	for _, side := range []struct {
		column string
		node   ir.Node
	}{{"c.left_hash", q.Left}, {"c.right_hash", q.Right}} {
		if side.node == nil {
			continue
		}
		h, err := ir.Hash(side.node)
		if err != nil {
			return "", nil, fmt.Errorf("compile check query: %w", err)
		}
		preds = append(preds, predicate{side.column, "=", h})
	}
	if q.DefsHash != "" {
		preds = append(preds, predicate{"c.defs_hash", "=", q.DefsHash})
	}
	if q.AfterSeq > 0 {
		preds = append(preds, predicate{"c.seq", ">", q.AfterSeq})
	}
	if q.Limit < 0 {
		return "", nil, fmt.Errorf("compile check query: negative limit %d", q.Limit)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + checkColumns + checkJoins)
	params := make([]any, 0, len(preds)+1)
	for i, p := range preds {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "%s %s ?", p.column, p.op)
		params = append(params, p.value)
	}
	b.WriteString(" ORDER BY c.seq ASC, c.id COLLATE BINARY ASC")
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
	}
	return b.String(), params, nil
}

// QueryChecks returns the checks matching q in seq order.
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) QueryChecks(ctx context.Context, q CheckQuery) ([]CheckRecord, error) {
	query, params, err := q.compile()
	if err != nil {
		return nil, err
	}
	return s.queryChecks(ctx, query, params...)
}
