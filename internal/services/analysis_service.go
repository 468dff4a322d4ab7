package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"recruitassist-backend/internal/agent"
	"recruitassist-backend/internal/models"
	"recruitassist-backend/internal/store"
)

// ErrAnalysisUnavailable is returned when no model provider is configured.
var ErrAnalysisUnavailable = errors.New("application analysis is unavailable: no model provider configured")

// ErrAnalysisNotFound is returned when an application has not been analyzed yet.
var ErrAnalysisNotFound = errors.New("no analysis found for application")

const analysisMaxTokens = 2048

const analysisSystemPrompt = `You are an HR analyst. You will be given a job's requirements, a candidate's application with their screening answers, and the transcript of their conversation with the recruiting assistant.

Assess how well the candidate matches the job requirements. Respond with a single JSON object and nothing else, in this exact shape:
{"match_score": <integer 0-100>, "analysis": "<2-4 sentence assessment>", "key_strengths": ["<strength>", ...]}`

// AnalysisService produces and stores AI assessments of applications. It
// shares the agent's provider abstraction but runs a single tool-free model
// call per analysis.
type AnalysisService struct {
	store      store.Store
	sender     agent.MessageSender
	model      anthropic.Model
	agentNames []string
}

// NewAnalysisService creates an AnalysisService. agentNames lists the
// conversation transcripts to include as context, in order. A nil sender
// makes every analysis fail with ErrAnalysisUnavailable.
func NewAnalysisService(s store.Store, sender agent.MessageSender, model anthropic.Model, agentNames []string) *AnalysisService {
	return &AnalysisService{
		store:      s,
		sender:     sender,
		model:      model,
		agentNames: agentNames,
	}
}

// AnalyzeApplication runs the AI assessment for one application and persists
// the result, overwriting any previous analysis.
func (s *AnalysisService) AnalyzeApplication(ctx context.Context, applicationID int64) (*models.ApplicationAnalysis, error) {
	if s.sender == nil {
		return nil, ErrAnalysisUnavailable
	}

	app, err := s.store.GetApplicationByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to retrieve application: %w", err)
	}

	job, err := s.store.GetJobByID(ctx, app.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve job %d: %w", app.JobID, err)
	}

	answers, err := s.store.ListAnswersByApplication(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve answers: %w", err)
	}

	prompt := s.buildPrompt(ctx, app, job, answers)

	log.Printf("[AnalysisService] analyzing application %d for job %q", app.ID, job.Title)
	response, err := s.sender.SendMessage(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: analysisMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: analysisSystemPrompt}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
	})
	if err != nil {
		return nil, fmt.Errorf("model request failed: %w", err)
	}

	var texts []string
	for _, block := range response.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			texts = append(texts, b.Text)
		}
	}
	raw := strings.TrimSpace(strings.Join(texts, "\n"))
	if raw == "" {
		return nil, errors.New("model returned no analysis text")
	}

	result := parseAnalysisResult(raw)
	saved, err := s.store.UpsertApplicationAnalysis(ctx, store.UpsertApplicationAnalysisParams{
		ApplicationID: app.ID,
		MatchScore:    result.MatchScore,
		Analysis:      result.Analysis,
		KeyStrengths:  result.KeyStrengths,
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[AnalysisService] application %d analyzed with match score %d", app.ID, saved.MatchScore)
	return saved, nil
}

// GetAnalysis returns the stored assessment for an application.
func (s *AnalysisService) GetAnalysis(ctx context.Context, applicationID int64) (*models.ApplicationAnalysis, error) {
	a, err := s.store.GetApplicationAnalysis(ctx, applicationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("failed to retrieve analysis: %w", err)
	}
	return a, nil
}

// buildPrompt assembles the job requirements, the application with its
// answers, and the candidate's conversation transcripts into the user
// message. Transcript loading is best-effort: a failed read only drops that
// agent's transcript from the context.
func (s *AnalysisService) buildPrompt(ctx context.Context, app *models.Application, job *models.Job, answers []models.Answer) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Job: %s (%s)\nRequirements:\n%s\n", job.Title, job.Department, job.Requirements)

	fmt.Fprintf(&b, "\nCandidate: %s (WhatsApp %s)\n", app.ApplicantName, app.WhatsAppNumber)
	if app.ResumeURL != nil && *app.ResumeURL != "" {
		fmt.Fprintf(&b, "Resume: %s\n", *app.ResumeURL)
	}
	if app.AISummary != nil && *app.AISummary != "" {
		fmt.Fprintf(&b, "Submission summary: %s\n", *app.AISummary)
	}

	if len(answers) > 0 {
		b.WriteString("\nScreening answers:\n")
		for _, a := range answers {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", a.QuestionText, a.AnswerText)
		}
	}

	transcript := s.conversationText(ctx, app.WhatsAppNumber)
	if transcript != "" {
		b.WriteString("\nConversation transcript:\n")
		b.WriteString(transcript)
	}

	return b.String()
}

// conversationText flattens the candidate's transcripts into
// "Applicant:"/"Assistant:" lines. Tool calls and tool results are internal
// bookkeeping and are skipped.
func (s *AnalysisService) conversationText(ctx context.Context, phoneNumber string) string {
	var lines []string
	for _, name := range s.agentNames {
		history, err := s.store.ConversationHistory(ctx, name, phoneNumber, 0)
		if err != nil {
			log.Printf("Warning: could not load %s transcript for %s: %v", name, phoneNumber, err)
			continue
		}
		for _, msg := range history {
			text := msg.Text()
			if strings.TrimSpace(text) == "" {
				continue
			}
			speaker := "Assistant"
			if msg.Role == models.RoleUser {
				speaker = "Applicant"
			}
			lines = append(lines, fmt.Sprintf("%s: %s", speaker, text))
		}
	}
	return strings.Join(lines, "\n")
}

type analysisResult struct {
	MatchScore   int      `json:"match_score"`
	Analysis     string   `json:"analysis"`
	KeyStrengths []string `json:"key_strengths"`
}

// parseAnalysisResult extracts the JSON object from the model's reply.
// Models wrap JSON in prose or code fences often enough that the parse works
// on the outermost brace pair; if no valid object is found the whole reply
// becomes the analysis text with a zero score.
func parseAnalysisResult(raw string) analysisResult {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		var result analysisResult
		if err := json.Unmarshal([]byte(raw[start:end+1]), &result); err == nil {
			if result.MatchScore < 0 {
				result.MatchScore = 0
			}
			if result.MatchScore > 100 {
				result.MatchScore = 100
			}
			return result
		}
	}
	log.Printf("Warning: analysis reply was not valid JSON, storing raw text")
	return analysisResult{Analysis: raw}
}
