// Package database provides database operations for the award import engine.
package database

import (
	"context"
	"fmt"
)

// CategoryRepository handles category database operations. It implements the
// importer's CategoryStore interface.
type CategoryRepository struct {
	db *DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ResolveOrCreate returns the ID of the named category, creating it when it
// does not exist yet.
func (r *CategoryRepository) ResolveOrCreate(ctx context.Context, name string) (int64, error) {
	// The no-op update makes RETURNING yield the existing row's ID on
	// conflict instead of returning nothing.
	query := `
		INSERT INTO categories (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to resolve category %q: %w", name, err)
	}
	return id, nil
}

// Associate links a candidate to a category. Repeating an existing
// association is a no-op.
func (r *CategoryRepository) Associate(ctx context.Context, candidateID, categoryID int64) error {
	query := `
		INSERT INTO candidate_categories (candidate_id, category_id)
		VALUES ($1, $2)
		ON CONFLICT (candidate_id, category_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, candidateID, categoryID); err != nil {
		return fmt.Errorf("failed to associate category: %w", err)
	}
	return nil
}

// ListForCandidate returns the category names associated with a candidate.
func (r *CategoryRepository) ListForCandidate(ctx context.Context, candidateID int64) ([]string, error) {
	query := `
		SELECT c.name
		FROM categories c
		JOIN candidate_categories cc ON cc.category_id = c.id
		WHERE cc.candidate_id = $1
		ORDER BY c.name`

	rows, err := r.db.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
