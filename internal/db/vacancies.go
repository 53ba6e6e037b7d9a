package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateVacancy inserts a vacancy and its skill requirements in one transaction.
func (db *DB) CreateVacancy(ctx context.Context, v *VacancyPosting) (*VacancyPosting, error) {
	var created VacancyPosting
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO vacancies
			    (employer_id, title, description, location, experience_level,
			     remote_option, employment_type, salary_min, salary_max, active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)
			 RETURNING id, employer_id, title, description, location, experience_level,
			           remote_option, employment_type, salary_min, salary_max, active,
			           created_at, updated_at`,
			v.EmployerID, v.Title, v.Description, v.Location, v.ExperienceLevel,
			v.RemoteOption, v.EmploymentType, v.SalaryMin, v.SalaryMax,
		).Scan(&created.ID, &created.EmployerID, &created.Title, &created.Description,
			&created.Location, &created.ExperienceLevel, &created.RemoteOption,
			&created.EmploymentType, &created.SalaryMin, &created.SalaryMax,
			&created.Active, &created.CreatedAt, &created.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create vacancy: %w", err)
		}
		if err := insertVacancySkills(ctx, tx, created.ID, v.Skills); err != nil {
			return err
		}
		created.Skills = v.Skills
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateVacancy replaces the mutable fields and skill set of an owned vacancy.
func (db *DB) UpdateVacancy(ctx context.Context, v *VacancyPosting) error {
	return db.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE vacancies SET
			    title = $2, description = $3, location = $4, experience_level = $5,
			    remote_option = $6, employment_type = $7, salary_min = $8,
			    salary_max = $9, updated_at = now()
			 WHERE id = $1`,
			v.ID, v.Title, v.Description, v.Location, v.ExperienceLevel,
			v.RemoteOption, v.EmploymentType, v.SalaryMin, v.SalaryMax,
		)
		if err != nil {
			return fmt.Errorf("failed to update vacancy: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("vacancy not found: %s", v.ID)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM vacancy_skills WHERE vacancy_id = $1`, v.ID); err != nil {
			return fmt.Errorf("failed to clear vacancy skills: %w", err)
		}
		return insertVacancySkills(ctx, tx, v.ID, v.Skills)
	})
}

func insertVacancySkills(ctx context.Context, tx pgx.Tx, vacancyID uuid.UUID, skills []SkillRequirement) error {
	for _, s := range skills {
		if _, err := tx.Exec(ctx,
			`INSERT INTO vacancy_skills (vacancy_id, skill, importance)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (vacancy_id, skill) DO UPDATE SET importance = $3`,
			vacancyID, s.Skill, s.Importance,
		); err != nil {
			return fmt.Errorf("failed to insert vacancy skill %q: %w", s.Skill, err)
		}
	}
	return nil
}

// SetVacancyActive flips the active flag. Closed vacancies stay on record.
func (db *DB) SetVacancyActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE vacancies SET active = $2, updated_at = now() WHERE id = $1`,
		id, active,
	)
	if err != nil {
		return fmt.Errorf("failed to set vacancy active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vacancy not found: %s", id)
	}
	return nil
}

// GetVacancy retrieves a vacancy with its skill requirements. Returns nil when absent.
func (db *DB) GetVacancy(ctx context.Context, id uuid.UUID) (*VacancyPosting, error) {
	var v VacancyPosting
	err := db.pool.QueryRow(ctx,
		`SELECT id, employer_id, title, description, location, experience_level,
		        remote_option, employment_type, salary_min, salary_max, active,
		        created_at, updated_at
		 FROM vacancies WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.EmployerID, &v.Title, &v.Description, &v.Location,
		&v.ExperienceLevel, &v.RemoteOption, &v.EmploymentType,
		&v.SalaryMin, &v.SalaryMax, &v.Active, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vacancy: %w", err)
	}

	skills, err := db.listVacancySkills(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Skills = skills
	return &v, nil
}

func (db *DB) listVacancySkills(ctx context.Context, vacancyID uuid.UUID) ([]SkillRequirement, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT skill, importance FROM vacancy_skills WHERE vacancy_id = $1 ORDER BY skill`,
		vacancyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list vacancy skills: %w", err)
	}
	defer rows.Close()

	var skills []SkillRequirement
	for rows.Next() {
		var s SkillRequirement
		if err := rows.Scan(&s.Skill, &s.Importance); err != nil {
			return nil, fmt.Errorf("failed to scan vacancy skill: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, nil
}

// ListActiveVacancies retrieves open vacancies, newest first.
func (db *DB) ListActiveVacancies(ctx context.Context, limit, offset int) ([]VacancyPosting, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, employer_id, title, description, location, experience_level,
		        remote_option, employment_type, salary_min, salary_max, active,
		        created_at, updated_at
		 FROM vacancies WHERE active ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list vacancies: %w", err)
	}
	defer rows.Close()
	return db.scanVacancies(ctx, rows)
}

// ListVacanciesByEmployer retrieves all of an employer's vacancies, open or closed.
func (db *DB) ListVacanciesByEmployer(ctx context.Context, employerID uuid.UUID) ([]VacancyPosting, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, employer_id, title, description, location, experience_level,
		        remote_option, employment_type, salary_min, salary_max, active,
		        created_at, updated_at
		 FROM vacancies WHERE employer_id = $1 ORDER BY created_at DESC`,
		employerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list employer vacancies: %w", err)
	}
	defer rows.Close()
	return db.scanVacancies(ctx, rows)
}

func (db *DB) scanVacancies(ctx context.Context, rows pgx.Rows) ([]VacancyPosting, error) {
	var vacancies []VacancyPosting
	for rows.Next() {
		var v VacancyPosting
		if err := rows.Scan(&v.ID, &v.EmployerID, &v.Title, &v.Description, &v.Location,
			&v.ExperienceLevel, &v.RemoteOption, &v.EmploymentType,
			&v.SalaryMin, &v.SalaryMax, &v.Active, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vacancy: %w", err)
		}
		vacancies = append(vacancies, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vacancies: %w", err)
	}

	for i := range vacancies {
		skills, err := db.listVacancySkills(ctx, vacancies[i].ID)
		if err != nil {
			return nil, err
		}
		vacancies[i].Skills = skills
	}
	return vacancies, nil
}
