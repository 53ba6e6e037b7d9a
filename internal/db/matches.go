package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UpsertMatch stores a bulk-scoring result, overwriting any prior score for
// the (candidate, vacancy) pair. Running the batch twice with unchanged
// inputs leaves the stored set identical.
func (db *DB) UpsertMatch(ctx context.Context, m Match) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO matches (candidate_id, vacancy_id, score, skill_score, experience_score, location_score)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (candidate_id, vacancy_id) DO UPDATE SET
		    score = $3, skill_score = $4, experience_score = $5,
		    location_score = $6, updated_at = now()`,
		m.CandidateID, m.VacancyID, m.Score, m.SkillScore, m.ExperienceScore, m.LocationScore,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}
	return nil
}

// ListMatches retrieves a candidate's stored matches, best first.
func (db *DB) ListMatches(ctx context.Context, candidateID uuid.UUID) ([]Match, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT candidate_id, vacancy_id, score, skill_score, experience_score, location_score, updated_at
		 FROM matches WHERE candidate_id = $1
		 ORDER BY score DESC, updated_at DESC`,
		candidateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.CandidateID, &m.VacancyID, &m.Score,
			&m.SkillScore, &m.ExperienceScore, &m.LocationScore, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read matches: %w", err)
	}
	return matches, nil
}
