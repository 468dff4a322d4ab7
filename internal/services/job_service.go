package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"recruitassist-backend/internal/models"
	"recruitassist-backend/internal/store"
)

var (
	ErrJobNotFound = errors.New("job not found")
)

type JobService struct {
	store store.Store
}

func NewJobService(s store.Store) *JobService {
	return &JobService{
		store: s,
	}
}

// CreateJob creates a job together with its screening questions.
func (s *JobService) CreateJob(ctx context.Context, req models.CreateJobRequest) (*models.JobResponse, error) {
	title := strings.TrimSpace(req.JobTitle)
	if title == "" {
		return nil, fmt.Errorf("%w: jobTitle cannot be empty", ErrValidation)
	}

	job, err := s.store.CreateJob(ctx, store.CreateJobParams{
		Title:          title,
		Department:     strings.TrimSpace(req.Department),
		Description:    req.Description,
		Requirements:   req.Requirements,
		AIInstructions: req.AIInstructions,
	})
	if err != nil {
		log.Printf("Error creating job %q: %v", title, err)
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	questions := make([]models.Question, 0, len(req.Questions))
	for _, q := range req.Questions {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			continue
		}
		required := true
		if q.Required != nil {
			required = *q.Required
		}
		created, err := s.store.CreateQuestion(ctx, store.CreateQuestionParams{
			JobID:    job.ID,
			Text:     text,
			Required: required,
		})
		if err != nil {
			log.Printf("Error creating question for job %d: %v", job.ID, err)
			return nil, fmt.Errorf("failed to create question: %w", err)
		}
		questions = append(questions, *created)
	}

	log.Printf("Successfully created job %d (%s) with %d questions", job.ID, job.Title, len(questions))
	return toJobResponse(job, questions), nil
}

// GetJob returns one job with its questions.
func (s *JobService) GetJob(ctx context.Context, id int64) (*models.JobResponse, error) {
	job, err := s.store.GetJobByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to retrieve job: %w", err)
	}
	questions, err := s.store.ListQuestionsByJob(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve job questions: %w", err)
	}
	return toJobResponse(job, questions), nil
}

// ListJobs returns every job with questions inlined.
func (s *JobService) ListJobs(ctx context.Context) ([]models.JobResponse, error) {
	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	responses := make([]models.JobResponse, 0, len(jobs))
	for _, job := range jobs {
		questions, err := s.store.ListQuestionsByJob(ctx, job.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve questions for job %d: %w", job.ID, err)
		}
		responses = append(responses, *toJobResponse(&job, questions))
	}
	return responses, nil
}

// UpdateJob applies a partial update. When the request carries a questions
// array, the job's question set is replaced wholesale.
func (s *JobService) UpdateJob(ctx context.Context, id int64, req models.UpdateJobRequest) (*models.JobResponse, error) {
	if req.JobTitle != nil && strings.TrimSpace(*req.JobTitle) == "" {
		return nil, fmt.Errorf("%w: jobTitle cannot be empty", ErrValidation)
	}

	job, err := s.store.UpdateJob(ctx, store.UpdateJobParams{
		ID:             id,
		Title:          req.JobTitle,
		Department:     req.Department,
		Description:    req.Description,
		Requirements:   req.Requirements,
		AIInstructions: req.AIInstructions,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		log.Printf("Error updating job %d: %v", id, err)
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	if req.Questions != nil {
		params := make([]store.CreateQuestionParams, 0, len(*req.Questions))
		for _, q := range *req.Questions {
			text := strings.TrimSpace(q.Text)
			if text == "" {
				continue
			}
			required := true
			if q.Required != nil {
				required = *q.Required
			}
			params = append(params, store.CreateQuestionParams{
				JobID:    job.ID,
				Text:     text,
				Required: required,
			})
		}
		if err := s.store.ReplaceQuestions(ctx, job.ID, params); err != nil {
			log.Printf("Error replacing questions for job %d: %v", job.ID, err)
			return nil, fmt.Errorf("failed to replace questions: %w", err)
		}
	}

	questions, err := s.store.ListQuestionsByJob(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve job questions: %w", err)
	}
	return toJobResponse(job, questions), nil
}

// DeleteJob removes a job; questions and applications cascade in the schema.
func (s *JobService) DeleteJob(ctx context.Context, id int64) error {
	if err := s.store.DeleteJob(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrJobNotFound
		}
		log.Printf("Error deleting job %d: %v", id, err)
		return fmt.Errorf("failed to delete job: %w", err)
	}
	log.Printf("Successfully deleted job %d", id)
	return nil
}

func toJobResponse(job *models.Job, questions []models.Question) *models.JobResponse {
	resp := &models.JobResponse{
		ID:           job.ID,
		JobTitle:     job.Title,
		Department:   job.Department,
		Description:  job.Description,
		Requirements: job.Requirements,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
		Questions:    make([]models.QuestionResponse, 0, len(questions)),
	}
	if job.AIInstructions != nil {
		resp.AIInstructions = *job.AIInstructions
	}
	for _, q := range questions {
		resp.Questions = append(resp.Questions, models.QuestionResponse{
			ID:       q.ID,
			Text:     q.Text,
			Required: q.Required,
		})
	}
	return resp
}
