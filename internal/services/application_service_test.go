package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"recruitassist-backend/internal/models"
	"recruitassist-backend/internal/store"
)

// stubStore implements the store methods each test needs; calls to anything
// else hit the embedded nil interface and panic, which keeps the stub honest.
type stubStore struct {
	store.Store
	getJobByID        func(ctx context.Context, id int64) (*models.Job, error)
	createApplication func(ctx context.Context, arg store.CreateApplicationParams) (*models.Application, error)
	createAnswer      func(ctx context.Context, arg store.CreateAnswerParams) (*models.Answer, error)
	updateStatus      func(ctx context.Context, id int64, status string) error
}

func (s *stubStore) GetJobByID(ctx context.Context, id int64) (*models.Job, error) {
	return s.getJobByID(ctx, id)
}

func (s *stubStore) CreateApplication(ctx context.Context, arg store.CreateApplicationParams) (*models.Application, error) {
	return s.createApplication(ctx, arg)
}

func (s *stubStore) CreateAnswer(ctx context.Context, arg store.CreateAnswerParams) (*models.Answer, error) {
	return s.createAnswer(ctx, arg)
}

func (s *stubStore) UpdateApplicationStatus(ctx context.Context, id int64, status string) error {
	return s.updateStatus(ctx, id, status)
}

func TestCreateApplicationValidation(t *testing.T) {
	svc := NewApplicationService(&stubStore{})

	_, err := svc.CreateApplication(context.Background(), models.CreateApplicationRequest{
		JobID:         1,
		ApplicantName: "  ",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateApplicationJobMissing(t *testing.T) {
	svc := NewApplicationService(&stubStore{
		getJobByID: func(ctx context.Context, id int64) (*models.Job, error) {
			return nil, store.ErrNotFound
		},
	})

	_, err := svc.CreateApplication(context.Background(), models.CreateApplicationRequest{
		JobID:          42,
		ApplicantName:  "Dana",
		WhatsAppNumber: "15550001111",
	})
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestCreateApplicationAnswersBestEffort(t *testing.T) {
	var answered []string
	svc := NewApplicationService(&stubStore{
		getJobByID: func(ctx context.Context, id int64) (*models.Job, error) {
			return &models.Job{ID: id, Title: "Backend Engineer"}, nil
		},
		createApplication: func(ctx context.Context, arg store.CreateApplicationParams) (*models.Application, error) {
			return &models.Application{ID: 7, JobID: arg.JobID, Status: models.ApplicationStatusNew}, nil
		},
		createAnswer: func(ctx context.Context, arg store.CreateAnswerParams) (*models.Answer, error) {
			if arg.QuestionText == "broken" {
				return nil, errors.New("insert failed")
			}
			answered = append(answered, arg.QuestionText)
			return &models.Answer{ID: 1, ApplicationID: arg.ApplicationID}, nil
		},
	})

	app, err := svc.CreateApplication(context.Background(), models.CreateApplicationRequest{
		JobID:          1,
		ApplicantName:  "Dana",
		WhatsAppNumber: "15550001111",
		Answers: []models.AnswerPayload{
			{Question: "Years of Go?", Answer: "Five"},
			{Question: "broken", Answer: "boom"},
			{Question: "", Answer: "skipped"},
		},
	})
	require.NoError(t, err, "answer failures never fail the application")
	require.Equal(t, int64(7), app.ID)
	require.Equal(t, []string{"Years of Go?"}, answered)
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	svc := NewApplicationService(&stubStore{})

	err := svc.UpdateStatus(context.Background(), 1, "archived")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatusValidValues(t *testing.T) {
	var got []string
	svc := NewApplicationService(&stubStore{
		updateStatus: func(ctx context.Context, id int64, status string) error {
			got = append(got, status)
			return nil
		},
	})

	for _, status := range models.ValidApplicationStatuses {
		require.NoError(t, svc.UpdateStatus(context.Background(), 1, status))
	}
	require.Equal(t, models.ValidApplicationStatuses, got)
}
