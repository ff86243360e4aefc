package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/typerel/internal/ir"
)

// Definition describes a stored named descriptor.
type Definition struct {
	Name string
	Hash string
	Seq  int64
}

// putDescriptor stores a descriptor blob and returns its hash.
// Uses ON CONFLICT(hash) DO NOTHING - content addressing makes rewrites
// no-ops.
func (s *Store) putDescriptor(ctx context.Context, tx *sql.Tx, n ir.Node) (string, error) {
	text, hash, err := marshalNode(n)
	if err != nil {
		return "", err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO descriptors (hash, canonical)
		VALUES (?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, text)
	if err != nil {
		return "", fmt.Errorf("write descriptor: %w", err)
	}
	return hash, nil
}

// PutDefinition binds name to n and returns the descriptor hash.
//
// Rebinding a name to a structurally identical descriptor is a no-op and
// keeps the original seq; rebinding it to a different one takes a new seq.
func (s *Store) PutDefinition(ctx context.Context, name string, n ir.Node) (string, error) {
	if name == "" {
		return "", fmt.Errorf("put definition: empty name")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("put definition: %w", err)
	}
	defer tx.Rollback()

	hash, err := s.putDescriptor(ctx, tx, n)
	if err != nil {
		return "", fmt.Errorf("put definition %q: %w", name, err)
	}

	var current string
	err = tx.QueryRowContext(ctx, `SELECT hash FROM definitions WHERE name = ?`, name).Scan(&current)
	switch {
	case err == nil && current == hash:
		return hash, tx.Commit()
	case err != nil && err != sql.ErrNoRows:
		return "", fmt.Errorf("put definition %q: %w", name, err)
	}

	seq := s.clock.reserve()
	committed := false
	defer func() { s.clock.release(seq, committed) }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO definitions (name, hash, seq)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET hash = excluded.hash, seq = excluded.seq
	`, name, hash, seq)
	if err != nil {
		return "", fmt.Errorf("put definition %q: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("put definition %q: %w", name, err)
	}
	committed = true
	return hash, nil
}

// GetDefinition retrieves the descriptor bound to name.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetDefinition(ctx context.Context, name string) (ir.Node, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `
		SELECT d.canonical
		FROM definitions f
		JOIN descriptors d ON d.hash = f.hash
		WHERE f.name = ?
	`, name).Scan(&text)
	if err != nil {
		return nil, err
	}
	return unmarshalNode(text)
}

// GetDescriptor retrieves a descriptor by hash.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetDescriptor(ctx context.Context, hash string) (ir.Node, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT canonical FROM descriptors WHERE hash = ?`, hash).Scan(&text)
	if err != nil {
		return nil, err
	}
	return unmarshalNode(text)
}

// ListDefinitions returns every definition ordered by seq, then name.
// Returns an empty slice (not nil) if none exist.
func (s *Store) ListDefinitions(ctx context.Context) ([]Definition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, hash, seq
		FROM definitions
		ORDER BY seq ASC, name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query definitions: %w", err)
	}
	defer rows.Close()

	defs := []Definition{}
	for rows.Next() {
		var d Definition
		if err := rows.Scan(&d.Name, &d.Hash, &d.Seq); err != nil {
			return nil, fmt.Errorf("scan definition: %w", err)
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate definitions: %w", err)
	}
	return defs, nil
}

// Definitions returns the full definitions map.
func (s *Store) Definitions(ctx context.Context) (map[string]ir.Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.name, d.canonical
		FROM definitions f
		JOIN descriptors d ON d.hash = f.hash
		ORDER BY f.seq ASC, f.name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query definitions: %w", err)
	}
	defer rows.Close()

	defs := make(map[string]ir.Node)
	for rows.Next() {
		var name, text string
		if err := rows.Scan(&name, &text); err != nil {
			return nil, fmt.Errorf("scan definition: %w", err)
		}
		n, err := unmarshalNode(text)
		if err != nil {
			return nil, fmt.Errorf("definition %q: %w", name, err)
		}
		defs[name] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate definitions: %w", err)
	}
	return defs, nil
}
