package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an admin user in the database.
type User struct {
	ID             uuid.UUID `db:"id"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Job represents an open position in the database.
// This is the single canonical schema: snake_case columns, camelCase only in
// the API DTOs (see api.go).
type Job struct {
	ID             int64     `db:"id"`
	Title          string    `db:"title"`
	Department     string    `db:"department"`
	Description    string    `db:"description"`
	Requirements   string    `db:"requirements"`
	AIInstructions *string   `db:"ai_instructions"` // Optional agent guidance for this role
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Question represents a screening question attached to a job.
type Question struct {
	ID       int64  `db:"id"`
	JobID    int64  `db:"job_id"`
	Text     string `db:"text"`
	Required bool   `db:"required"`
}

// Application statuses. Status transitions are free-form; the handler only
// validates membership in this set.
const (
	ApplicationStatusNew       = "new"
	ApplicationStatusScreening = "screening"
	ApplicationStatusInterview = "interview"
	ApplicationStatusHired     = "hired"
	ApplicationStatusRejected  = "rejected"
)

// ValidApplicationStatuses lists every accepted application status.
var ValidApplicationStatuses = []string{
	ApplicationStatusNew,
	ApplicationStatusScreening,
	ApplicationStatusInterview,
	ApplicationStatusHired,
	ApplicationStatusRejected,
}

// IsValidApplicationStatus reports whether s is a known application status.
func IsValidApplicationStatus(s string) bool {
	for _, v := range ValidApplicationStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Application represents a candidate's application for a job.
type Application struct {
	ID             int64     `db:"id"`
	JobID          int64     `db:"job_id"`
	ApplicantName  string    `db:"applicant_name"`
	WhatsAppNumber string    `db:"whatsapp_number"`
	ResumeURL      *string   `db:"resume_url"`
	Status         string    `db:"status"`
	AISummary      *string   `db:"ai_summary"`
	AppliedAt      time.Time `db:"applied_at"`
}

// ApplicationAnalysis is the AI-generated assessment of an application: a
// 0-100 match score against the job requirements, free-text analysis, and the
// candidate's key strengths. One row per application, overwritten on re-run.
type ApplicationAnalysis struct {
	ID            int64     `db:"id"`
	ApplicationID int64     `db:"application_id"`
	MatchScore    int       `db:"match_score"`
	Analysis      string    `db:"analysis"`
	KeyStrengths  []string  `db:"key_strengths"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Answer represents a candidate's answer to a screening question. The question
// text is denormalized so answers survive question edits on the job.
type Answer struct {
	ID            int64  `db:"id"`
	ApplicationID int64  `db:"application_id"`
	QuestionText  string `db:"question_text"`
	AnswerText    string `db:"answer_text"`
	Required      bool   `db:"required"`
}
