package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"

	"recruitassist-backend/internal/models"
	"recruitassist-backend/internal/store"
)

// The ON CONFLICT arm requires a unique constraint on application_id:
//
//	ALTER TABLE application_analyses
//	    ADD CONSTRAINT application_analyses_application_id_key
//	    UNIQUE (application_id);
const upsertApplicationAnalysis = `
INSERT INTO application_analyses (application_id, match_score, analysis, key_strengths)
VALUES ($1, $2, $3, $4)
ON CONFLICT (application_id)
DO UPDATE SET match_score = EXCLUDED.match_score, analysis = EXCLUDED.analysis,
              key_strengths = EXCLUDED.key_strengths, updated_at = NOW()
RETURNING id, application_id, match_score, analysis, key_strengths, updated_at`

func (s *PostgresStore) UpsertApplicationAnalysis(ctx context.Context, arg store.UpsertApplicationAnalysisParams) (*models.ApplicationAnalysis, error) {
	a, err := scanApplicationAnalysis(s.db.QueryRow(ctx, upsertApplicationAnalysis,
		arg.ApplicationID,
		arg.MatchScore,
		arg.Analysis,
		arg.KeyStrengths,
	))
	if err != nil {
		log.Printf("ERROR [PostgresStore] UpsertApplicationAnalysis: failed for application %d: %v", arg.ApplicationID, err)
		return nil, fmt.Errorf("database error saving application analysis: %w", err)
	}

	log.Printf("[PostgresStore] UpsertApplicationAnalysis: application %d scored %d", a.ApplicationID, a.MatchScore)
	return a, nil
}

const getApplicationAnalysis = `
SELECT id, application_id, match_score, analysis, key_strengths, updated_at
FROM application_analyses
WHERE application_id = $1`

func (s *PostgresStore) GetApplicationAnalysis(ctx context.Context, applicationID int64) (*models.ApplicationAnalysis, error) {
	a, err := scanApplicationAnalysis(s.db.QueryRow(ctx, getApplicationAnalysis, applicationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Printf("ERROR [PostgresStore] GetApplicationAnalysis: failed to query application %d: %v", applicationID, err)
		return nil, fmt.Errorf("database error fetching application analysis: %w", err)
	}
	return a, nil
}

func scanApplicationAnalysis(row pgx.Row) (*models.ApplicationAnalysis, error) {
	a := &models.ApplicationAnalysis{}
	err := row.Scan(
		&a.ID,
		&a.ApplicationID,
		&a.MatchScore,
		&a.Analysis,
		&a.KeyStrengths,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}
