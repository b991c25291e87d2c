package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/voice-api/internal/types"
)

// -----------------------------------------------------------------------------
// Voice Profile Methods
// -----------------------------------------------------------------------------

const voiceProfileColumns = `id, brand_id, version, metrics, target_demographic, style_guide,
		        writing_example, llm_model, source, created_at, updated_at`

// MaxVoiceVersion returns the highest profile version for a brand, or 0 if none exist
func (db *DB) MaxVoiceVersion(ctx context.Context, brandID uuid.UUID) (int, error) {
	var version int
	err := db.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM voice_profiles WHERE brand_id = $1`,
		brandID,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get max voice version: %w", err)
	}
	return version, nil
}

// CreateVoiceProfile inserts a voice profile. The caller assigns the version;
// a collision on (brand_id, version) is returned as *store.VersionConflictError.
func (db *DB) CreateVoiceProfile(ctx context.Context, profile *types.VoiceProfile) (*types.VoiceProfile, error) {
	id := profile.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	metricsJSON, err := json.Marshal(profile.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metrics: %w", err)
	}
	styleGuide := profile.StyleGuide
	if styleGuide == nil {
		styleGuide = []string{}
	}
	styleJSON, err := json.Marshal(styleGuide)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal style guide: %w", err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx,
		`INSERT INTO voice_profiles (id, brand_id, version, metrics, target_demographic, style_guide,
		                             writing_example, llm_model, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+voiceProfileColumns,
		id, profile.BrandID, profile.Version, metricsJSON, profile.TargetDemographic, styleJSON,
		profile.WritingExample, profile.LLMModel, string(profile.Source),
	)
	p, err := scanVoiceProfile(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create voice profile: %w",
			translateWriteError(err, profile.BrandID, profile.Version))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w",
			translateWriteError(err, profile.BrandID, profile.Version))
	}
	return p, nil
}

// LatestVoiceProfile retrieves the highest-version profile for a brand
func (db *DB) LatestVoiceProfile(ctx context.Context, brandID uuid.UUID) (*types.VoiceProfile, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+voiceProfileColumns+`
		 FROM voice_profiles WHERE brand_id = $1
		 ORDER BY version DESC LIMIT 1`,
		brandID,
	)
	p, err := scanVoiceProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest voice profile: %w", err)
	}
	return p, nil
}

// VoiceProfileByVersion retrieves a profile by exact (brand_id, version)
func (db *DB) VoiceProfileByVersion(ctx context.Context, brandID uuid.UUID, version int) (*types.VoiceProfile, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+voiceProfileColumns+`
		 FROM voice_profiles WHERE brand_id = $1 AND version = $2`,
		brandID, version,
	)
	p, err := scanVoiceProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get voice profile version %d: %w", version, err)
	}
	return p, nil
}

// scanVoiceProfile scans a row selected with voiceProfileColumns.
// pgx.ErrNoRows is returned unwrapped so callers can compare it directly.
func scanVoiceProfile(row pgx.Row) (*types.VoiceProfile, error) {
	var p types.VoiceProfile
	var metricsJSON, styleJSON []byte
	var source string

	if err := row.Scan(&p.ID, &p.BrandID, &p.Version, &metricsJSON, &p.TargetDemographic, &styleJSON,
		&p.WritingExample, &p.LLMModel, &source, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(metricsJSON, &p.Metrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
	}
	if err := json.Unmarshal(styleJSON, &p.StyleGuide); err != nil {
		return nil, fmt.Errorf("failed to unmarshal style guide: %w", err)
	}
	p.Source = types.VoiceSource(source)
	return &p, nil
}
