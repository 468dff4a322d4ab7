package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"

	"recruitassist-backend/internal/models"
	"recruitassist-backend/internal/store"
)

const createJob = `
INSERT INTO jobs (title, department, description, requirements, ai_instructions)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, title, department, description, requirements, ai_instructions, created_at, updated_at`

func (s *PostgresStore) CreateJob(ctx context.Context, arg store.CreateJobParams) (*models.Job, error) {
	row := s.db.QueryRow(ctx, createJob,
		arg.Title,
		arg.Department,
		arg.Description,
		arg.Requirements,
		arg.AIInstructions, // pgx handles *string to NULL automatically
	)

	job, err := scanJob(row)
	if err != nil {
		log.Printf("ERROR [PostgresStore] CreateJob: failed insert for title %q: %v", arg.Title, err)
		return nil, fmt.Errorf("database error creating job: %w", err)
	}

	log.Printf("[PostgresStore] CreateJob: inserted job ID %d (%s)", job.ID, job.Title)
	return job, nil
}

const getJobByID = `
SELECT id, title, department, description, requirements, ai_instructions, created_at, updated_at
FROM jobs
WHERE id = $1`

func (s *PostgresStore) GetJobByID(ctx context.Context, id int64) (*models.Job, error) {
	job, err := scanJob(s.db.QueryRow(ctx, getJobByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Printf("ERROR [PostgresStore] GetJobByID: failed to query job %d: %v", id, err)
		return nil, fmt.Errorf("database error fetching job: %w", err)
	}
	return job, nil
}

const listJobs = `
SELECT id, title, department, description, requirements, ai_instructions, created_at, updated_at
FROM jobs
ORDER BY created_at DESC`

func (s *PostgresStore) ListJobs(ctx context.Context) ([]models.Job, error) {
	rows, err := s.db.Query(ctx, listJobs)
	if err != nil {
		log.Printf("ERROR [PostgresStore] ListJobs: query failed: %v", err)
		return nil, fmt.Errorf("database error listing jobs: %w", err)
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("database error scanning job row: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating jobs: %w", err)
	}
	return jobs, nil
}

// UpdateJob applies the non-nil fields of arg and returns the updated record.
// Returns store.ErrNotFound if the job does not exist.
func (s *PostgresStore) UpdateJob(ctx context.Context, arg store.UpdateJobParams) (*models.Job, error) {
	sets := []string{}
	args := []any{}
	idx := 1

	appendSet := func(col string, val any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if arg.Title != nil {
		appendSet("title", *arg.Title)
	}
	if arg.Department != nil {
		appendSet("department", *arg.Department)
	}
	if arg.Description != nil {
		appendSet("description", *arg.Description)
	}
	if arg.Requirements != nil {
		appendSet("requirements", *arg.Requirements)
	}
	if arg.AIInstructions != nil {
		appendSet("ai_instructions", *arg.AIInstructions)
	}

	if len(sets) == 0 {
		// Nothing to update; return the current record.
		return s.GetJobByID(ctx, arg.ID)
	}

	sets = append(sets, "updated_at = NOW()")
	query := fmt.Sprintf(`
		UPDATE jobs SET %s
		WHERE id = $%d
		RETURNING id, title, department, description, requirements, ai_instructions, created_at, updated_at`,
		strings.Join(sets, ", "), idx)
	args = append(args, arg.ID)

	job, err := scanJob(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Printf("ERROR [PostgresStore] UpdateJob: failed update for job %d: %v", arg.ID, err)
		return nil, fmt.Errorf("database error updating job: %w", err)
	}

	log.Printf("[PostgresStore] UpdateJob: updated job ID %d", job.ID)
	return job, nil
}

// DeleteJob removes a job. Questions and applications cascade at the schema level.
func (s *PostgresStore) DeleteJob(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		log.Printf("ERROR [PostgresStore] DeleteJob: failed delete for job %d: %v", id, err)
		return fmt.Errorf("database error deleting job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	log.Printf("[PostgresStore] DeleteJob: deleted job ID %d", id)
	return nil
}

const createQuestion = `
INSERT INTO questions (job_id, text, required)
VALUES ($1, $2, $3)
RETURNING id, job_id, text, required`

func (s *PostgresStore) CreateQuestion(ctx context.Context, arg store.CreateQuestionParams) (*models.Question, error) {
	q := &models.Question{}
	err := s.db.QueryRow(ctx, createQuestion, arg.JobID, arg.Text, arg.Required).
		Scan(&q.ID, &q.JobID, &q.Text, &q.Required)
	if err != nil {
		log.Printf("ERROR [PostgresStore] CreateQuestion: failed insert for job %d: %v", arg.JobID, err)
		return nil, fmt.Errorf("database error creating question: %w", err)
	}
	return q, nil
}

const listQuestionsByJob = `
SELECT id, job_id, text, required
FROM questions
WHERE job_id = $1
ORDER BY id`

func (s *PostgresStore) ListQuestionsByJob(ctx context.Context, jobID int64) ([]models.Question, error) {
	rows, err := s.db.Query(ctx, listQuestionsByJob, jobID)
	if err != nil {
		log.Printf("ERROR [PostgresStore] ListQuestionsByJob: query failed for job %d: %v", jobID, err)
		return nil, fmt.Errorf("database error listing questions: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.JobID, &q.Text, &q.Required); err != nil {
			return nil, fmt.Errorf("database error scanning question row: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating questions: %w", err)
	}
	return questions, nil
}

// ReplaceQuestions deletes a job's questions and inserts the given set in one
// transaction, so readers never observe a partially replaced list.
func (s *PostgresStore) ReplaceQuestions(ctx context.Context, jobID int64, questions []store.CreateQuestionParams) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("database error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE job_id = $1`, jobID); err != nil {
		log.Printf("ERROR [PostgresStore] ReplaceQuestions: failed delete for job %d: %v", jobID, err)
		return fmt.Errorf("database error clearing questions: %w", err)
	}

	for _, q := range questions {
		if _, err := tx.Exec(ctx, `INSERT INTO questions (job_id, text, required) VALUES ($1, $2, $3)`,
			jobID, q.Text, q.Required); err != nil {
			log.Printf("ERROR [PostgresStore] ReplaceQuestions: failed insert for job %d: %v", jobID, err)
			return fmt.Errorf("database error inserting question: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("database error committing questions: %w", err)
	}
	log.Printf("[PostgresStore] ReplaceQuestions: job %d now has %d questions", jobID, len(questions))
	return nil
}

func scanJob(row pgx.Row) (*models.Job, error) {
	job := &models.Job{}
	err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Department,
		&job.Description,
		&job.Requirements,
		&job.AIInstructions,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}
