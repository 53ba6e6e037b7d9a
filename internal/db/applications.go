package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// NewApplication carries the fields for an application insert.
type NewApplication struct {
	CandidateID uuid.UUID
	EmployerID  uuid.UUID
	VacancyID   uuid.UUID
	Status      string
	CoverLetter *string
	MatchScore  *int
}

// CreateApplication inserts the application and its dossier thread in one
// transaction. When inviteBody is non-empty a first thread message of type
// invite (employer to candidate) is written in the same transaction.
// Returns ErrDuplicate when the (candidate, vacancy) pair already exists;
// the unique constraint makes concurrent double-submits race-safe.
func (db *DB) CreateApplication(ctx context.Context, na NewApplication, inviteBody string) (*Application, error) {
	var app Application
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO applications
			    (candidate_id, employer_id, vacancy_id, status, cover_letter, match_score)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, candidate_id, employer_id, vacancy_id, status, review_status,
			           cover_letter, match_score, created_at, updated_at`,
			na.CandidateID, na.EmployerID, na.VacancyID, na.Status, na.CoverLetter, na.MatchScore,
		).Scan(&app.ID, &app.CandidateID, &app.EmployerID, &app.VacancyID, &app.Status,
			&app.ReviewStatus, &app.CoverLetter, &app.MatchScore, &app.CreatedAt, &app.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to create application: %w", err)
		}

		var threadID uuid.UUID
		err = tx.QueryRow(ctx,
			`INSERT INTO application_threads (application_id) VALUES ($1) RETURNING id`,
			app.ID,
		).Scan(&threadID)
		if err != nil {
			return fmt.Errorf("failed to create application thread: %w", err)
		}

		if inviteBody != "" {
			_, err = tx.Exec(ctx,
				`INSERT INTO thread_messages (thread_id, sender_id, receiver_id, type, body)
				 VALUES ($1, $2, $3, $4, $5)`,
				threadID, na.EmployerID, na.CandidateID, ThreadTypeInvite, inviteBody,
			)
			if err != nil {
				return fmt.Errorf("failed to create invite thread message: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetApplication retrieves an application by ID. Returns nil when absent.
func (db *DB) GetApplication(ctx context.Context, id uuid.UUID) (*Application, error) {
	var app Application
	err := db.pool.QueryRow(ctx,
		`SELECT id, candidate_id, employer_id, vacancy_id, status, review_status,
		        cover_letter, match_score, created_at, updated_at
		 FROM applications WHERE id = $1`,
		id,
	).Scan(&app.ID, &app.CandidateID, &app.EmployerID, &app.VacancyID, &app.Status,
		&app.ReviewStatus, &app.CoverLetter, &app.MatchScore, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return &app, nil
}

// ApplyDecision moves an invited application to its decided status and
// appends the decision thread message, all in one transaction. The status
// update is conditional on the row still being invited, so a second
// decision (or two racing ones) reports decided=false instead of writing.
func (db *DB) ApplyDecision(ctx context.Context, appID uuid.UUID, newStatus string, msg ThreadMessage) (bool, error) {
	decided := false
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE applications SET status = $2, updated_at = now()
			 WHERE id = $1 AND status = $3`,
			appID, newStatus, StatusInvited,
		)
		if err != nil {
			return fmt.Errorf("failed to update application status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO thread_messages (thread_id, sender_id, receiver_id, type, body)
			 VALUES ($1, $2, $3, $4, $5)`,
			msg.ThreadID, msg.SenderID, msg.ReceiverID, msg.Type, msg.Body,
		)
		if err != nil {
			return fmt.Errorf("failed to append decision message: %w", err)
		}
		decided = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return decided, nil
}

// UpdateReviewStatus sets the employer disposition on a submitted application.
// Reports updated=false when the application is not in the submitted state.
func (db *DB) UpdateReviewStatus(ctx context.Context, appID uuid.UUID, disposition string) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE applications SET review_status = $2, updated_at = now()
		 WHERE id = $1 AND status = $3`,
		appID, disposition, StatusSubmitted,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update review status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListApplicationsByCandidate retrieves a candidate's applications, newest first.
func (db *DB) ListApplicationsByCandidate(ctx context.Context, candidateID uuid.UUID) ([]ApplicationSummary, error) {
	return db.listApplications(ctx,
		`SELECT a.id, a.candidate_id, a.employer_id, a.vacancy_id, a.status, a.review_status,
		        a.cover_letter, a.match_score, a.created_at, a.updated_at, v.title
		 FROM applications a
		 JOIN vacancies v ON v.id = a.vacancy_id
		 WHERE a.candidate_id = $1
		 ORDER BY a.created_at DESC`,
		candidateID)
}

// ListApplicationsByEmployer retrieves the applications on an employer's
// vacancies, newest first.
func (db *DB) ListApplicationsByEmployer(ctx context.Context, employerID uuid.UUID) ([]ApplicationSummary, error) {
	return db.listApplications(ctx,
		`SELECT a.id, a.candidate_id, a.employer_id, a.vacancy_id, a.status, a.review_status,
		        a.cover_letter, a.match_score, a.created_at, a.updated_at, v.title
		 FROM applications a
		 JOIN vacancies v ON v.id = a.vacancy_id
		 WHERE a.employer_id = $1
		 ORDER BY a.created_at DESC`,
		employerID)
}

func (db *DB) listApplications(ctx context.Context, query string, arg any) ([]ApplicationSummary, error) {
	rows, err := db.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var items []ApplicationSummary
	for rows.Next() {
		var it ApplicationSummary
		if err := rows.Scan(&it.ID, &it.CandidateID, &it.EmployerID, &it.VacancyID,
			&it.Status, &it.ReviewStatus, &it.CoverLetter, &it.MatchScore,
			&it.CreatedAt, &it.UpdatedAt, &it.VacancyTitle); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read applications: %w", err)
	}
	return items, nil
}
