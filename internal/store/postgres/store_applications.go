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

const createApplication = `
INSERT INTO applications (job_id, applicant_name, whatsapp_number, resume_url, ai_summary, status)
VALUES ($1, $2, $3, $4, $5, 'new')
RETURNING id, job_id, applicant_name, whatsapp_number, resume_url, status, ai_summary, applied_at`

func (s *PostgresStore) CreateApplication(ctx context.Context, arg store.CreateApplicationParams) (*models.Application, error) {
	row := s.db.QueryRow(ctx, createApplication,
		arg.JobID,
		arg.ApplicantName,
		arg.WhatsAppNumber,
		arg.ResumeURL,
		arg.AISummary,
	)

	app, err := scanApplication(row)
	if err != nil {
		log.Printf("ERROR [PostgresStore] CreateApplication: failed insert for job %d: %v", arg.JobID, err)
		return nil, fmt.Errorf("database error creating application: %w", err)
	}

	log.Printf("[PostgresStore] CreateApplication: inserted application ID %d for job %d (%s)",
		app.ID, app.JobID, app.ApplicantName)
	return app, nil
}

const getApplicationByID = `
SELECT id, job_id, applicant_name, whatsapp_number, resume_url, status, ai_summary, applied_at
FROM applications
WHERE id = $1`

func (s *PostgresStore) GetApplicationByID(ctx context.Context, id int64) (*models.Application, error) {
	app, err := scanApplication(s.db.QueryRow(ctx, getApplicationByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Printf("ERROR [PostgresStore] GetApplicationByID: failed to query application %d: %v", id, err)
		return nil, fmt.Errorf("database error fetching application: %w", err)
	}
	return app, nil
}

const listApplications = `
SELECT id, job_id, applicant_name, whatsapp_number, resume_url, status, ai_summary, applied_at
FROM applications
ORDER BY applied_at DESC`

func (s *PostgresStore) ListApplications(ctx context.Context) ([]models.Application, error) {
	return s.queryApplications(ctx, listApplications)
}

const listApplicationsByJob = `
SELECT id, job_id, applicant_name, whatsapp_number, resume_url, status, ai_summary, applied_at
FROM applications
WHERE job_id = $1
ORDER BY applied_at DESC`

func (s *PostgresStore) ListApplicationsByJob(ctx context.Context, jobID int64) ([]models.Application, error) {
	return s.queryApplications(ctx, listApplicationsByJob, jobID)
}

func (s *PostgresStore) queryApplications(ctx context.Context, query string, args ...any) ([]models.Application, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		log.Printf("ERROR [PostgresStore] queryApplications: query failed: %v", err)
		return nil, fmt.Errorf("database error listing applications: %w", err)
	}
	defer rows.Close()

	apps := []models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("database error scanning application row: %w", err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating applications: %w", err)
	}
	return apps, nil
}

// UpdateApplicationStatus sets the status column. The handler validates the
// status value; the store just writes it.
func (s *PostgresStore) UpdateApplicationStatus(ctx context.Context, id int64, status string) error {
	tag, err := s.db.Exec(ctx, `UPDATE applications SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		log.Printf("ERROR [PostgresStore] UpdateApplicationStatus: failed for application %d: %v", id, err)
		return fmt.Errorf("database error updating application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	log.Printf("[PostgresStore] UpdateApplicationStatus: application %d -> %s", id, status)
	return nil
}

const createAnswer = `
INSERT INTO answers (application_id, question_text, answer_text, required)
VALUES ($1, $2, $3, $4)
RETURNING id, application_id, question_text, answer_text, required`

func (s *PostgresStore) CreateAnswer(ctx context.Context, arg store.CreateAnswerParams) (*models.Answer, error) {
	a := &models.Answer{}
	err := s.db.QueryRow(ctx, createAnswer,
		arg.ApplicationID,
		arg.QuestionText,
		arg.AnswerText,
		arg.Required,
	).Scan(&a.ID, &a.ApplicationID, &a.QuestionText, &a.AnswerText, &a.Required)
	if err != nil {
		log.Printf("ERROR [PostgresStore] CreateAnswer: failed insert for application %d: %v", arg.ApplicationID, err)
		return nil, fmt.Errorf("database error creating answer: %w", err)
	}
	return a, nil
}

const listAnswersByApplication = `
SELECT id, application_id, question_text, answer_text, required
FROM answers
WHERE application_id = $1
ORDER BY id`

func (s *PostgresStore) ListAnswersByApplication(ctx context.Context, applicationID int64) ([]models.Answer, error) {
	rows, err := s.db.Query(ctx, listAnswersByApplication, applicationID)
	if err != nil {
		log.Printf("ERROR [PostgresStore] ListAnswersByApplication: query failed for application %d: %v", applicationID, err)
		return nil, fmt.Errorf("database error listing answers: %w", err)
	}
	defer rows.Close()

	answers := []models.Answer{}
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.ID, &a.ApplicationID, &a.QuestionText, &a.AnswerText, &a.Required); err != nil {
			return nil, fmt.Errorf("database error scanning answer row: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating answers: %w", err)
	}
	return answers, nil
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	app := &models.Application{}
	err := row.Scan(
		&app.ID,
		&app.JobID,
		&app.ApplicantName,
		&app.WhatsAppNumber,
		&app.ResumeURL,
		&app.Status,
		&app.AISummary,
		&app.AppliedAt,
	)
	if err != nil {
		return nil, err
	}
	return app, nil
}
