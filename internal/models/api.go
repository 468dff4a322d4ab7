package models

import (
	"time"

	"github.com/google/uuid"
)

// --- Request Structs ---

// SignupRequest defines the expected body for the signup endpoint.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest defines the expected body for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// QuestionPayload is a screening question in a job create/update request.
type QuestionPayload struct {
	Text     string `json:"text"`
	Required *bool  `json:"required,omitempty"` // Defaults to true
}

// CreateJobRequest defines the body for creating or updating a job.
// Field names are camelCase to match the admin frontend.
type CreateJobRequest struct {
	JobTitle       string            `json:"jobTitle"`
	Department     string            `json:"department"`
	Description    string            `json:"description"`
	Requirements   string            `json:"requirements"`
	AIInstructions *string           `json:"aiInstructions,omitempty"`
	Questions      []QuestionPayload `json:"questions,omitempty"`
}

// UpdateJobRequest uses pointers so omitted fields are left untouched.
type UpdateJobRequest struct {
	JobTitle       *string            `json:"jobTitle,omitempty"`
	Department     *string            `json:"department,omitempty"`
	Description    *string            `json:"description,omitempty"`
	Requirements   *string            `json:"requirements,omitempty"`
	AIInstructions *string            `json:"aiInstructions,omitempty"`
	Questions      *[]QuestionPayload `json:"questions,omitempty"` // When present, replaces all questions
}

// AnswerPayload is a question/answer pair in an application submission.
type AnswerPayload struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Required *bool  `json:"required,omitempty"`
}

// CreateApplicationRequest defines the body for the public application endpoint.
type CreateApplicationRequest struct {
	JobID          int64           `json:"job_id"`
	ApplicantName  string          `json:"applicant_name"`
	WhatsAppNumber string          `json:"whatsapp_number"`
	ResumeURL      *string         `json:"resume_url,omitempty"`
	AISummary      *string         `json:"ai_summary,omitempty"`
	Answers        []AnswerPayload `json:"answers,omitempty"`
}

// UpdateApplicationStatusRequest defines the body for the status endpoint.
type UpdateApplicationStatusRequest struct {
	Status string `json:"status"`
}

// --- Response Structs ---

// UserResponse defines the user information returned by the API.
// Avoid returning sensitive info like HashedPassword.
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// AuthResponse defines the response body for successful authentication.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// QuestionResponse is a screening question as returned by the API.
type QuestionResponse struct {
	ID       int64  `json:"id"`
	Text     string `json:"text"`
	Required bool   `json:"required"`
}

// JobResponse is a job as returned by the API, with its questions inlined.
type JobResponse struct {
	ID             int64              `json:"id"`
	JobTitle       string             `json:"jobTitle"`
	Department     string             `json:"department"`
	Description    string             `json:"description"`
	Requirements   string             `json:"requirements"`
	AIInstructions string             `json:"aiInstructions,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Questions      []QuestionResponse `json:"questions"`
}

// AnswerResponse is an answer as returned by the API.
type AnswerResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Required bool   `json:"required"`
}

// ApplicationResponse is an application as returned by the API.
type ApplicationResponse struct {
	ID             int64            `json:"id"`
	JobID          int64            `json:"job_id"`
	ApplicantName  string           `json:"applicant_name"`
	WhatsAppNumber string           `json:"whatsapp_number"`
	ResumeURL      *string          `json:"resume_url,omitempty"`
	Status         string           `json:"status"`
	AISummary      *string          `json:"ai_summary,omitempty"`
	AppliedAt      time.Time        `json:"applied_at"`
	Answers        []AnswerResponse `json:"answers"`
}

// ApplicationAnalysisResponse is the AI assessment of an application as
// returned by the analysis endpoints.
type ApplicationAnalysisResponse struct {
	ApplicationID int64     `json:"application_id"`
	MatchScore    int       `json:"match_score"`
	Analysis      string    `json:"analysis"`
	KeyStrengths  []string  `json:"key_strengths"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateApplicationResponse confirms a public application submission.
type CreateApplicationResponse struct {
	ApplicationID int64  `json:"application_id"`
	Message       string `json:"msg"`
}
