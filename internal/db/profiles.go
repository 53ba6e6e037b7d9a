package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetCandidateProfile retrieves a candidate's profile. Returns nil when absent.
func (db *DB) GetCandidateProfile(ctx context.Context, userID uuid.UUID) (*CandidateProfile, error) {
	var p CandidateProfile
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, skills, years_experience, education_level, preferred_location,
		        remote_preference, availability, headline, bio, updated_at
		 FROM candidate_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.Skills, &p.YearsExperience, &p.EducationLevel, &p.PreferredLocation,
		&p.RemotePreference, &p.Availability, &p.Headline, &p.Bio, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate profile: %w", err)
	}
	return &p, nil
}

// UpsertCandidateProfile creates or replaces the candidate's profile.
func (db *DB) UpsertCandidateProfile(ctx context.Context, p *CandidateProfile) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO candidate_profiles
		    (user_id, skills, years_experience, education_level, preferred_location,
		     remote_preference, availability, headline, bio, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		 ON CONFLICT (user_id) DO UPDATE SET
		    skills = $2, years_experience = $3, education_level = $4,
		    preferred_location = $5, remote_preference = $6, availability = $7,
		    headline = $8, bio = $9, updated_at = now()`,
		p.UserID, p.Skills, p.YearsExperience, p.EducationLevel, p.PreferredLocation,
		p.RemotePreference, p.Availability, p.Headline, p.Bio,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert candidate profile: %w", err)
	}
	return nil
}
