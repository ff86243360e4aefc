package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/typerel/internal/engine"
	"github.com/roach88/typerel/internal/ir"
)

// CheckRecord is one logged Extends outcome.
type CheckRecord struct {
	ID       string
	Seq      int64
	Left     ir.Node
	Right    ir.Node
	DefsHash string
	Outcome  engine.Outcome
	Bindings engine.Bindings

	// Set on write.
	LeftHash     string
	RightHash    string
	BindingsHash string
}

// RecordCheck appends the outcome of Extends(left, right) evaluated against
// defs. The same (left, right, defs) triple is logged once: a repeat returns
// the original record and false.
func (s *Store) RecordCheck(ctx context.Context, defs map[string]ir.Node, left, right ir.Node, r engine.Result) (CheckRecord, bool, error) {
	defsHash, err := ir.DefinitionsHash(defs)
	if err != nil {
		return CheckRecord{}, false, fmt.Errorf("record check: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CheckRecord{}, false, fmt.Errorf("record check: %w", err)
	}
	defer tx.Rollback()

	rec := CheckRecord{
		Left:     left,
		Right:    right,
		DefsHash: defsHash,
		Outcome:  r.Outcome,
		Bindings: r.Bindings,
	}
	if rec.LeftHash, err = s.putDescriptor(ctx, tx, left); err != nil {
		return CheckRecord{}, false, fmt.Errorf("record check: left: %w", err)
	}
	if rec.RightHash, err = s.putDescriptor(ctx, tx, right); err != nil {
		return CheckRecord{}, false, fmt.Errorf("record check: right: %w", err)
	}
	bindingsText, bindingsHash, err := marshalBindings(r.Bindings)
	if err != nil {
		return CheckRecord{}, false, fmt.Errorf("record check: %w", err)
	}
	rec.BindingsHash = bindingsHash

	var existingID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM checks
		WHERE left_hash = ? AND right_hash = ? AND defs_hash = ?
	`, rec.LeftHash, rec.RightHash, defsHash).Scan(&existingID)
	switch {
	case err == nil:
		if err := tx.Commit(); err != nil {
			return CheckRecord{}, false, fmt.Errorf("record check: %w", err)
		}
		existing, err := s.ReadCheck(ctx, existingID)
		return existing, false, err
	case err != sql.ErrNoRows:
		return CheckRecord{}, false, fmt.Errorf("record check: %w", err)
	}

	rec.ID = s.ids.Generate()
	rec.Seq = s.clock.reserve()
	committed := false
	defer func() { s.clock.release(rec.Seq, committed) }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO checks
		(id, seq, left_hash, right_hash, defs_hash, outcome, bindings, bindings_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Seq,
		rec.LeftHash,
		rec.RightHash,
		rec.DefsHash,
		rec.Outcome.String(),
		bindingsText,
		rec.BindingsHash,
	)
	if err != nil {
		return CheckRecord{}, false, fmt.Errorf("record check: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return CheckRecord{}, false, fmt.Errorf("record check: %w", err)
	}
	committed = true
	return rec, true, nil
}

const checkColumns = `
	c.id, c.seq, c.defs_hash, c.outcome, c.bindings, c.bindings_hash,
	c.left_hash, l.canonical, c.right_hash, r.canonical
`

const checkJoins = `
	FROM checks c
	JOIN descriptors l ON l.hash = c.left_hash
	JOIN descriptors r ON r.hash = c.right_hash
`

// ReadCheck retrieves a single check by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadCheck(ctx context.Context, id string) (CheckRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+checkColumns+checkJoins+` WHERE c.id = ?`, id)
	return scanCheck(row)
}

// Checks returns the relation log in seq order.
// Returns an empty slice (not nil) if the log is empty.
func (s *Store) Checks(ctx context.Context) ([]CheckRecord, error) {
	return s.QueryChecks(ctx, CheckQuery{})
}

// ChecksWithOutcome returns the logged checks with the given outcome in seq
// order.
func (s *Store) ChecksWithOutcome(ctx context.Context, o engine.Outcome) ([]CheckRecord, error) {
	return s.QueryChecks(ctx, CheckQuery{Outcome: &o})
}

func (s *Store) queryChecks(ctx context.Context, query string, args ...any) ([]CheckRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query checks: %w", err)
	}
	defer rows.Close()

	records := []CheckRecord{}
	for rows.Next() {
		rec, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checks: %w", err)
	}
	return records, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCheck(row scanner) (CheckRecord, error) {
	var rec CheckRecord
	var outcome, bindings, leftText, rightText string
	err := row.Scan(
		&rec.ID, &rec.Seq, &rec.DefsHash, &outcome, &bindings, &rec.BindingsHash,
		&rec.LeftHash, &leftText, &rec.RightHash, &rightText,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return CheckRecord{}, err
		}
		return CheckRecord{}, fmt.Errorf("scan check: %w", err)
	}

	o, ok := engine.ParseOutcome(outcome)
	if !ok {
		return CheckRecord{}, fmt.Errorf("scan check %s: unknown outcome %q", rec.ID, outcome)
	}
	rec.Outcome = o

	if rec.Bindings, err = unmarshalBindings(bindings); err != nil {
		return CheckRecord{}, fmt.Errorf("scan check %s: %w", rec.ID, err)
	}
	if rec.Left, err = unmarshalNode(leftText); err != nil {
		return CheckRecord{}, fmt.Errorf("scan check %s: left: %w", rec.ID, err)
	}
	if rec.Right, err = unmarshalNode(rightText); err != nil {
		return CheckRecord{}, fmt.Errorf("scan check %s: right: %w", rec.ID, err)
	}
	return rec, nil
}
