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
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidStatus       = errors.New("invalid application status")
)

type ApplicationService struct {
	store store.Store
}

func NewApplicationService(s store.Store) *ApplicationService {
	return &ApplicationService{
		store: s,
	}
}

// CreateApplication records a new application and its answers. Answer inserts
// are best-effort: a failed answer never rolls back the application.
func (s *ApplicationService) CreateApplication(ctx context.Context, req models.CreateApplicationRequest) (*models.Application, error) {
	name := strings.TrimSpace(req.ApplicantName)
	number := strings.TrimSpace(req.WhatsAppNumber)
	if req.JobID == 0 || name == "" || number == "" {
		return nil, fmt.Errorf("%w: job_id, applicant_name and whatsapp_number are required", ErrValidation)
	}

	if _, err := s.store.GetJobByID(ctx, req.JobID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to verify job: %w", err)
	}

	app, err := s.store.CreateApplication(ctx, store.CreateApplicationParams{
		JobID:          req.JobID,
		ApplicantName:  name,
		WhatsAppNumber: number,
		ResumeURL:      req.ResumeURL,
		AISummary:      req.AISummary,
	})
	if err != nil {
		log.Printf("Error creating application for job %d: %v", req.JobID, err)
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	for _, a := range req.Answers {
		question := strings.TrimSpace(a.Question)
		answer := strings.TrimSpace(a.Answer)
		if question == "" || answer == "" {
			continue
		}
		required := true
		if a.Required != nil {
			required = *a.Required
		}
		_, err := s.store.CreateAnswer(ctx, store.CreateAnswerParams{
			ApplicationID: app.ID,
			QuestionText:  question,
			AnswerText:    answer,
			Required:      required,
		})
		if err != nil {
			log.Printf("Warning: failed to save answer for application %d: %v", app.ID, err)
		}
	}

	log.Printf("Successfully created application %d for job %d", app.ID, app.JobID)
	return app, nil
}

// GetApplication returns one application with its answers.
func (s *ApplicationService) GetApplication(ctx context.Context, id int64) (*models.ApplicationResponse, error) {
	app, err := s.store.GetApplicationByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to retrieve application: %w", err)
	}
	answers, err := s.store.ListAnswersByApplication(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve answers: %w", err)
	}
	return toApplicationResponse(app, answers), nil
}

// ListApplications returns applications, optionally filtered to one job.
// Answers are not inlined on the list endpoint.
func (s *ApplicationService) ListApplications(ctx context.Context, jobID *int64) ([]models.ApplicationResponse, error) {
	var (
		apps []models.Application
		err  error
	)
	if jobID != nil {
		apps, err = s.store.ListApplicationsByJob(ctx, *jobID)
	} else {
		apps, err = s.store.ListApplications(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	responses := make([]models.ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		responses = append(responses, *toApplicationResponse(&app, nil))
	}
	return responses, nil
}

// UpdateStatus moves an application through the pipeline.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !models.IsValidApplicationStatus(status) {
		return fmt.Errorf("%w: %q (valid: %s)", ErrInvalidStatus, status, strings.Join(models.ValidApplicationStatuses, ", "))
	}
	if err := s.store.UpdateApplicationStatus(ctx, id, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrApplicationNotFound
		}
		log.Printf("Error updating status for application %d: %v", id, err)
		return fmt.Errorf("failed to update application status: %w", err)
	}
	log.Printf("Application %d moved to status %q", id, status)
	return nil
}

func toApplicationResponse(app *models.Application, answers []models.Answer) *models.ApplicationResponse {
	resp := &models.ApplicationResponse{
		ID:             app.ID,
		JobID:          app.JobID,
		ApplicantName:  app.ApplicantName,
		WhatsAppNumber: app.WhatsAppNumber,
		ResumeURL:      app.ResumeURL,
		Status:         app.Status,
		AISummary:      app.AISummary,
		AppliedAt:      app.AppliedAt,
		Answers:        make([]models.AnswerResponse, 0, len(answers)),
	}
	for _, a := range answers {
		resp.Answers = append(resp.Answers, models.AnswerResponse{
			Question: a.QuestionText,
			Answer:   a.AnswerText,
			Required: a.Required,
		})
	}
	return resp
}
