package store

import (
	"context"
	"errors"

	"recruitassist-backend/internal/models"
)

// ErrNotFound is returned when a specific record is not found.
var ErrNotFound = errors.New("record not found")

// CreateJobParams contains parameters for creating a job.
type CreateJobParams struct {
	Title          string
	Department     string
	Description    string
	Requirements   string
	AIInstructions *string
}

// UpdateJobParams contains parameters for updating a job.
// Nil pointers leave the corresponding column untouched.
type UpdateJobParams struct {
	ID             int64
	Title          *string
	Department     *string
	Description    *string
	Requirements   *string
	AIInstructions *string
}

// CreateQuestionParams contains parameters for creating a screening question.
type CreateQuestionParams struct {
	JobID    int64
	Text     string
	Required bool
}

// CreateApplicationParams contains parameters for creating an application.
type CreateApplicationParams struct {
	JobID          int64
	ApplicantName  string
	WhatsAppNumber string
	ResumeURL      *string
	AISummary      *string
}

// UpsertApplicationAnalysisParams contains parameters for saving an AI
// assessment of an application. Re-running an analysis overwrites the
// previous row.
type UpsertApplicationAnalysisParams struct {
	ApplicationID int64
	MatchScore    int
	Analysis      string
	KeyStrengths  []string
}

// CreateAnswerParams contains parameters for creating an answer row.
type CreateAnswerParams struct {
	ApplicationID int64
	QuestionText  string
	AnswerText    string
	Required      bool
}

// Store defines the interface for database operations.
// This allows for mocking in tests and potential DB backend switching.
type Store interface {
	// User operations
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	// Job operations
	CreateJob(ctx context.Context, arg CreateJobParams) (*models.Job, error)
	GetJobByID(ctx context.Context, id int64) (*models.Job, error)
	ListJobs(ctx context.Context) ([]models.Job, error)
	UpdateJob(ctx context.Context, arg UpdateJobParams) (*models.Job, error)
	DeleteJob(ctx context.Context, id int64) error

	// Question operations
	CreateQuestion(ctx context.Context, arg CreateQuestionParams) (*models.Question, error)
	ListQuestionsByJob(ctx context.Context, jobID int64) ([]models.Question, error)
	ReplaceQuestions(ctx context.Context, jobID int64, questions []CreateQuestionParams) error

	// Application operations
	CreateApplication(ctx context.Context, arg CreateApplicationParams) (*models.Application, error)
	GetApplicationByID(ctx context.Context, id int64) (*models.Application, error)
	ListApplications(ctx context.Context) ([]models.Application, error)
	ListApplicationsByJob(ctx context.Context, jobID int64) ([]models.Application, error)
	UpdateApplicationStatus(ctx context.Context, id int64, status string) error

	// Analysis operations
	UpsertApplicationAnalysis(ctx context.Context, arg UpsertApplicationAnalysisParams) (*models.ApplicationAnalysis, error)
	GetApplicationAnalysis(ctx context.Context, applicationID int64) (*models.ApplicationAnalysis, error)

	// Answer operations
	CreateAnswer(ctx context.Context, arg CreateAnswerParams) (*models.Answer, error)
	ListAnswersByApplication(ctx context.Context, applicationID int64) ([]models.Answer, error)

	// Conversation operations. A conversation is keyed by (agent name, phone
	// number); it is created lazily on first append and is never deleted.
	ConversationHistory(ctx context.Context, agentName, phoneNumber string, limit int) ([]models.Message, error)
	AppendConversationMessages(ctx context.Context, agentName, phoneNumber string, msgs []models.Message) error
}
