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
// Voice Evaluation Methods
// -----------------------------------------------------------------------------

// CreateVoiceEvaluation appends an evaluation and returns the reloaded row
func (db *DB) CreateVoiceEvaluation(ctx context.Context, evaluation *types.VoiceEvaluation) (*types.VoiceEvaluation, error) {
	id := evaluation.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	scoresJSON, err := json.Marshal(evaluation.Scores)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scores: %w", err)
	}
	suggestions := evaluation.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	suggestionsJSON, err := json.Marshal(suggestions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal suggestions: %w", err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx,
		`INSERT INTO voice_evaluations (id, brand_id, voice_profile_id, input_text, scores, suggestions)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, brand_id, voice_profile_id, input_text, scores, suggestions, created_at, updated_at`,
		id, evaluation.BrandID, evaluation.VoiceProfileID, evaluation.InputText, scoresJSON, suggestionsJSON,
	)
	e, err := scanVoiceEvaluation(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create voice evaluation: %w",
			translateWriteError(err, evaluation.BrandID, 0))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return e, nil
}

// ListVoiceEvaluations retrieves evaluations recorded against a profile, oldest first
func (db *DB) ListVoiceEvaluations(ctx context.Context, profileID uuid.UUID) ([]types.VoiceEvaluation, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, brand_id, voice_profile_id, input_text, scores, suggestions, created_at, updated_at
		 FROM voice_evaluations WHERE voice_profile_id = $1
		 ORDER BY created_at ASC, id ASC`,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list voice evaluations: %w", err)
	}
	defer rows.Close()

	evaluations := []types.VoiceEvaluation{}
	for rows.Next() {
		e, err := scanVoiceEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voice evaluation: %w", err)
		}
		evaluations = append(evaluations, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate voice evaluations: %w", err)
	}
	return evaluations, nil
}

func scanVoiceEvaluation(row pgx.Row) (*types.VoiceEvaluation, error) {
	var e types.VoiceEvaluation
	var scoresJSON, suggestionsJSON []byte

	if err := row.Scan(&e.ID, &e.BrandID, &e.VoiceProfileID, &e.InputText, &scoresJSON, &suggestionsJSON,
		&e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(scoresJSON, &e.Scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scores: %w", err)
	}
	if err := json.Unmarshal(suggestionsJSON, &e.Suggestions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal suggestions: %w", err)
	}
	return &e, nil
}
