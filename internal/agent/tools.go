package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/anthropics/anthropic-sdk-go"

	"recruitassist-backend/internal/models"
	"recruitassist-backend/internal/store"
)

// Not-found sentinels returned by the read tools. These are designated
// results, not errors: the model treats them as "this is empty" and explains
// politely, rather than the turn crashing.
const (
	JobNotFoundResult      = "Job not found."
	NoQuestionsFoundResult = "No questions found for this job."
)

// RecruitingStore is the slice of the persistence store the domain tools and
// the prompt composer need.
type RecruitingStore interface {
	ListJobs(ctx context.Context) ([]models.Job, error)
	GetJobByID(ctx context.Context, id int64) (*models.Job, error)
	ListQuestionsByJob(ctx context.Context, jobID int64) ([]models.Question, error)
	CreateApplication(ctx context.Context, arg store.CreateApplicationParams) (*models.Application, error)
	CreateAnswer(ctx context.Context, arg store.CreateAnswerParams) (*models.Answer, error)
}

// jobDetails is the shape of a job serialized for the model.
type jobDetails struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	Department     string         `json:"department"`
	Description    string         `json:"description"`
	Requirements   string         `json:"requirements"`
	AIInstructions string         `json:"ai_instructions,omitempty"`
	Questions      []questionInfo `json:"questions,omitempty"`
}

type questionInfo struct {
	ID       int64  `json:"id"`
	Text     string `json:"text"`
	Required bool   `json:"required"`
}

func toJobDetails(job models.Job, questions []models.Question) jobDetails {
	d := jobDetails{
		ID:           job.ID,
		Title:        job.Title,
		Department:   job.Department,
		Description:  job.Description,
		Requirements: job.Requirements,
	}
	if job.AIInstructions != nil {
		d.AIInstructions = *job.AIInstructions
	}
	for _, q := range questions {
		d.Questions = append(d.Questions, questionInfo{ID: q.ID, Text: q.Text, Required: q.Required})
	}
	return d
}

// --- get_available_jobs ---

// GetAvailableJobsTool lists every open job.
type GetAvailableJobsTool struct {
	store RecruitingStore
}

func NewGetAvailableJobsTool(s RecruitingStore) *GetAvailableJobsTool {
	return &GetAvailableJobsTool{store: s}
}

func (t *GetAvailableJobsTool) Param() anthropic.ToolParam {
	return anthropic.ToolParam{
		Name:        "get_available_jobs",
		Description: anthropic.String("Get a list of all available jobs, as a JSON array with id, title, department, description and requirements."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]any{},
		},
	}
}

func (t *GetAvailableJobsTool) Invoke(ctx context.Context, call ToolCall) (string, error) {
	jobs, err := t.store.ListJobs(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve jobs: %w", err)
	}

	details := make([]jobDetails, 0, len(jobs))
	for _, job := range jobs {
		questions, err := t.store.ListQuestionsByJob(ctx, job.ID)
		if err != nil {
			// Questions are enrichment here; the listing is still useful without them.
			log.Printf("[get_available_jobs] could not load questions for job %d: %v", job.ID, err)
			questions = nil
		}
		details = append(details, toJobDetails(job, questions))
	}

	raw, err := json.Marshal(details)
	if err != nil {
		return "", fmt.Errorf("failed to serialize jobs: %w", err)
	}
	return string(raw), nil
}

// --- get_job_details ---

// GetJobDetailsTool returns one job by id.
type GetJobDetailsTool struct {
	store RecruitingStore
}

func NewGetJobDetailsTool(s RecruitingStore) *GetJobDetailsTool {
	return &GetJobDetailsTool{store: s}
}

func (t *GetJobDetailsTool) Param() anthropic.ToolParam {
	return anthropic.ToolParam{
		Name:        "get_job_details",
		Description: anthropic.String("Get detailed information about a specific job by its id."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]any{
				"job_id": map[string]any{
					"type":        "integer",
					"description": "The ID of the job to retrieve",
				},
			},
			Required: []string{"job_id"},
		},
	}
}

type jobIDInput struct {
	JobID *int64 `json:"job_id"`
}

func (t *GetJobDetailsTool) Invoke(ctx context.Context, call ToolCall) (string, error) {
	var input jobIDInput
	if err := parseArgs(call.Args, &input); err != nil {
		return "", err
	}
	if input.JobID == nil {
		return "", NewArgumentError(fmt.Errorf("job_id is required"))
	}

	job, err := t.store.GetJobByID(ctx, *input.JobID)
	if err != nil {
		if err == store.ErrNotFound {
			return JobNotFoundResult, nil
		}
		return "", fmt.Errorf("failed to retrieve job details: %w", err)
	}

	questions, err := t.store.ListQuestionsByJob(ctx, job.ID)
	if err != nil {
		log.Printf("[get_job_details] could not load questions for job %d: %v", job.ID, err)
		questions = nil
	}

	raw, err := json.Marshal(toJobDetails(*job, questions))
	if err != nil {
		return "", fmt.Errorf("failed to serialize job: %w", err)
	}
	return string(raw), nil
}

// --- get_job_questions ---

// GetJobQuestionsTool returns the screening questions for a job.
type GetJobQuestionsTool struct {
	store RecruitingStore
}

func NewGetJobQuestionsTool(s RecruitingStore) *GetJobQuestionsTool {
	return &GetJobQuestionsTool{store: s}
}

func (t *GetJobQuestionsTool) Param() anthropic.ToolParam {
	return anthropic.ToolParam{
		Name:        "get_job_questions",
		Description: anthropic.String("Get all screening questions for a specific job."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]any{
				"job_id": map[string]any{
					"type":        "integer",
					"description": "The ID of the job",
				},
			},
			Required: []string{"job_id"},
		},
	}
}

func (t *GetJobQuestionsTool) Invoke(ctx context.Context, call ToolCall) (string, error) {
	var input jobIDInput
	if err := parseArgs(call.Args, &input); err != nil {
		return "", err
	}
	if input.JobID == nil {
		return "", NewArgumentError(fmt.Errorf("job_id is required"))
	}

	questions, err := t.store.ListQuestionsByJob(ctx, *input.JobID)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve job questions: %w", err)
	}
	if len(questions) == 0 {
		return NoQuestionsFoundResult, nil
	}

	infos := make([]questionInfo, 0, len(questions))
	for _, q := range questions {
		infos = append(infos, questionInfo{ID: q.ID, Text: q.Text, Required: q.Required})
	}
	raw, err := json.Marshal(infos)
	if err != nil {
		return "", fmt.Errorf("failed to serialize questions: %w", err)
	}
	return string(raw), nil
}

// --- submit_application ---

// SubmitApplicationTool creates an application row and best-effort answer rows.
type SubmitApplicationTool struct {
	store RecruitingStore
}

func NewSubmitApplicationTool(s RecruitingStore) *SubmitApplicationTool {
	return &SubmitApplicationTool{store: s}
}

func (t *SubmitApplicationTool) Param() anthropic.ToolParam {
	return anthropic.ToolParam{
		Name: "submit_application",
		Description: anthropic.String("Submit a new application for a job on behalf of the candidate. " +
			"Collect the candidate's name and answers to the required screening questions first."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]any{
				"job_id": map[string]any{
					"type":        "integer",
					"description": "The ID of the job to apply for",
				},
				"applicant_name": map[string]any{
					"type":        "string",
					"description": "The name of the applicant",
				},
				"whatsapp_number": map[string]any{
					"type":        "string",
					"description": "The WhatsApp number of the applicant",
				},
				"answers": map[string]any{
					"type":        "array",
					"description": "Answers to the screening questions",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"question": map[string]any{"type": "string"},
							"answer":   map[string]any{"type": "string"},
							"required": map[string]any{"type": "boolean"},
						},
						"required": []string{"question", "answer"},
					},
				},
				"resume_url": map[string]any{
					"type":        "string",
					"description": "Optional URL to the candidate's resume",
				},
				"ai_summary": map[string]any{
					"type":        "string",
					"description": "Optional short summary of the candidate based on the conversation",
				},
			},
			Required: []string{"job_id", "applicant_name", "whatsapp_number"},
		},
	}
}

type submitApplicationInput struct {
	JobID          *int64        `json:"job_id"`
	ApplicantName  string        `json:"applicant_name"`
	WhatsAppNumber string        `json:"whatsapp_number"`
	Answers        []answerInput `json:"answers,omitempty"`
	ResumeURL      string        `json:"resume_url,omitempty"`
	AISummary      string        `json:"ai_summary,omitempty"`
}

type answerInput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Required *bool  `json:"required,omitempty"`
}

type submitApplicationResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ApplicationID int64  `json:"application_id,omitempty"`
}

func (t *SubmitApplicationTool) Invoke(ctx context.Context, call ToolCall) (string, error) {
	var input submitApplicationInput
	if err := parseArgs(call.Args, &input); err != nil {
		return "", err
	}
	if input.JobID == nil {
		return "", NewArgumentError(fmt.Errorf("job_id is required"))
	}
	if input.ApplicantName == "" {
		return "", NewArgumentError(fmt.Errorf("applicant_name is required"))
	}
	if input.WhatsAppNumber == "" {
		return "", NewArgumentError(fmt.Errorf("whatsapp_number is required"))
	}

	// Fail fast before writing anything when the job does not exist.
	if _, err := t.store.GetJobByID(ctx, *input.JobID); err != nil {
		if err == store.ErrNotFound {
			return marshalResult(submitApplicationResult{Success: false, Message: JobNotFoundResult}), nil
		}
		return "", fmt.Errorf("failed to verify job: %w", err)
	}

	params := store.CreateApplicationParams{
		JobID:          *input.JobID,
		ApplicantName:  input.ApplicantName,
		WhatsAppNumber: input.WhatsAppNumber,
	}
	if input.ResumeURL != "" {
		params.ResumeURL = &input.ResumeURL
	}
	if input.AISummary != "" {
		params.AISummary = &input.AISummary
	}

	app, err := t.store.CreateApplication(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create application: %w", err)
	}

	// Answers are best-effort enrichment: a failed answer insert leaves the
	// application valid and queryable, never rolled back.
	saved := 0
	for _, a := range input.Answers {
		if a.Question == "" || a.Answer == "" {
			continue
		}
		required := true
		if a.Required != nil {
			required = *a.Required
		}
		_, err := t.store.CreateAnswer(ctx, store.CreateAnswerParams{
			ApplicationID: app.ID,
			QuestionText:  a.Question,
			AnswerText:    a.Answer,
			Required:      required,
		})
		if err != nil {
			log.Printf("ERROR [submit_application] failed to save answer for application %d: %v", app.ID, err)
			continue
		}
		saved++
	}
	log.Printf("[submit_application] application %d submitted for job %d with %d/%d answers",
		app.ID, app.JobID, saved, len(input.Answers))

	return marshalResult(submitApplicationResult{
		Success:       true,
		Message:       "Application submitted successfully.",
		ApplicationID: app.ID,
	}), nil
}

func marshalResult(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		// The result structs marshal unconditionally; this is unreachable in practice.
		return fmt.Sprintf(`{"success":false,"message":%q}`, err.Error())
	}
	return string(raw)
}

// --- delegate tool ---

// DelegateTool routes a query to another agent, resolving a full nested turn.
// The nested turn runs with its own iteration bound; nesting depth is capped
// so federated agents always terminate.
type DelegateTool struct {
	name        string
	description string
	target      *Agent
	maxDepth    int
}

// NewDelegateTool wraps target as a tool named name. maxDepth bounds how many
// delegation hops may stack; a call arriving at that depth yields the
// unavailable sentinel instead of recursing further.
func NewDelegateTool(name, description string, target *Agent, maxDepth int) *DelegateTool {
	return &DelegateTool{
		name:        name,
		description: description,
		target:      target,
		maxDepth:    maxDepth,
	}
}

func (t *DelegateTool) Param() anthropic.ToolParam {
	return anthropic.ToolParam{
		Name:        t.name,
		Description: anthropic.String(t.description),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The query to pass along. Be verbose; include every detail the user gave.",
				},
			},
			Required: []string{"query"},
		},
	}
}

type delegateInput struct {
	Query string `json:"query"`
}

func (t *DelegateTool) Invoke(ctx context.Context, call ToolCall) (string, error) {
	if call.Depth+1 > t.maxDepth {
		log.Printf("[%s] delegation depth %d exhausted", t.name, call.Depth)
		return ToolUnavailableResult, nil
	}

	var input delegateInput
	if err := parseArgs(call.Args, &input); err != nil {
		return "", err
	}
	if input.Query == "" {
		return "", NewArgumentError(fmt.Errorf("query is required"))
	}

	reply, err := t.target.resolve(ctx, TurnRequest{
		UserID:  call.UserID,
		Text:    input.Query,
		Channel: call.Channel,
	}, call.Depth+1)
	if err != nil {
		return "", fmt.Errorf("delegated agent failed: %w", err)
	}
	return reply, nil
}
