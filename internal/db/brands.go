package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/voice-api/internal/types"
)

// -----------------------------------------------------------------------------
// Brand Methods
// -----------------------------------------------------------------------------

// CreateBrand inserts a brand and returns the stored row with server timestamps
func (db *DB) CreateBrand(ctx context.Context, brand *types.Brand) (*types.Brand, error) {
	id := brand.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var b types.Brand
	err = tx.QueryRow(ctx,
		`INSERT INTO brands (id, name, canonical_url)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, canonical_url, created_at, updated_at`,
		id, brand.Name, brand.CanonicalURL,
	).Scan(&b.ID, &b.Name, &b.CanonicalURL, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &b, nil
}

// ListBrands retrieves every brand in creation order
func (db *DB) ListBrands(ctx context.Context) ([]types.Brand, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, canonical_url, created_at, updated_at
		 FROM brands ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	brands := []types.Brand{}
	for rows.Next() {
		var b types.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.CanonicalURL, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate brands: %w", err)
	}
	return brands, nil
}

// GetBrand retrieves a brand by ID
func (db *DB) GetBrand(ctx context.Context, id uuid.UUID) (*types.Brand, error) {
	var b types.Brand
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, canonical_url, created_at, updated_at
		 FROM brands WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.Name, &b.CanonicalURL, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	return &b, nil
}
