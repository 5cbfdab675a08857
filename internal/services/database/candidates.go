// Package database provides database operations for the award import engine.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"award-import-engine/internal/models"
)

// CandidateRepository handles candidate database operations. It implements
// the store interfaces of the importer package.
type CandidateRepository struct {
	db *DB
}

// NewCandidateRepository creates a new candidate repository.
func NewCandidateRepository(db *DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// FindByImportID retrieves a candidate by its external import ID.
// Returns nil without error when no candidate matches.
func (r *CandidateRepository) FindByImportID(ctx context.Context, importID string) (*models.Candidate, error) {
	query := `
		SELECT id, import_id, name, created_at, updated_at
		FROM candidates
		WHERE import_id = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, importID))
}

// FindByName retrieves a candidate by exact name match.
// Returns nil without error when no candidate matches.
func (r *CandidateRepository) FindByName(ctx context.Context, name string) (*models.Candidate, error) {
	query := `
		SELECT id, import_id, name, created_at, updated_at
		FROM candidates
		WHERE name = $1
		ORDER BY id
		LIMIT 1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, name))
}

// Create inserts a new candidate and returns its ID.
func (r *CandidateRepository) Create(ctx context.Context, importID, name string) (int64, error) {
	query := `
		INSERT INTO candidates (import_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query, importID, name, time.Now().UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create candidate: %w", err)
	}
	return id, nil
}

// Update refreshes the base fields of an existing candidate.
func (r *CandidateRepository) Update(ctx context.Context, id int64, importID, name string) error {
	query := `
		UPDATE candidates
		SET import_id = $2, name = $3, updated_at = $4
		WHERE id = $1`

	affected, err := r.db.ExecContext(ctx, query, id, importID, name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update candidate: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("candidate %d not found", id)
	}
	return nil
}

// SetAttribute upserts one named attribute of a candidate.
func (r *CandidateRepository) SetAttribute(ctx context.Context, candidateID int64, key, value string) error {
	query := `
		INSERT INTO candidate_attributes (candidate_id, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (candidate_id, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query, candidateID, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set attribute %s: %w", key, err)
	}
	return nil
}

// GetAttributes returns all attributes of a candidate keyed by name.
func (r *CandidateRepository) GetAttributes(ctx context.Context, candidateID int64) (map[string]string, error) {
	query := `
		SELECT key, value
		FROM candidate_attributes
		WHERE candidate_id = $1`

	rows, err := r.db.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attributes: %w", err)
	}
	defer rows.Close()

	attrs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan attribute: %w", err)
		}
		attrs[key] = value
	}
	return attrs, rows.Err()
}

// ListCandidates returns all candidates ordered by ID.
func (r *CandidateRepository) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	query := `
		SELECT id, import_id, name, created_at, updated_at
		FROM candidates
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.ImportID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// Count returns the total number of candidates.
func (r *CandidateRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM candidates").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count candidates: %w", err)
	}
	return count, nil
}

func (r *CandidateRepository) scanOne(row pgx.Row) (*models.Candidate, error) {
	var c models.Candidate
	err := row.Scan(&c.ID, &c.ImportID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return &c, nil
}
