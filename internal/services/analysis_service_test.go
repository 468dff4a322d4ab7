package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/require"

	"recruitassist-backend/internal/models"
	"recruitassist-backend/internal/store"
)

// analysisStubStore implements the store methods the analysis path touches;
// anything else panics through the embedded nil interface.
type analysisStubStore struct {
	store.Store
	application *models.Application
	job         *models.Job
	answers     []models.Answer
	history     map[string][]models.Message
	saved       []store.UpsertApplicationAnalysisParams
	analysis    *models.ApplicationAnalysis
}

func (s *analysisStubStore) GetApplicationByID(ctx context.Context, id int64) (*models.Application, error) {
	if s.application == nil || s.application.ID != id {
		return nil, store.ErrNotFound
	}
	return s.application, nil
}

func (s *analysisStubStore) GetJobByID(ctx context.Context, id int64) (*models.Job, error) {
	if s.job == nil || s.job.ID != id {
		return nil, store.ErrNotFound
	}
	return s.job, nil
}

func (s *analysisStubStore) ListAnswersByApplication(ctx context.Context, applicationID int64) ([]models.Answer, error) {
	return s.answers, nil
}

func (s *analysisStubStore) ConversationHistory(ctx context.Context, agentName, phoneNumber string, limit int) ([]models.Message, error) {
	return s.history[agentName], nil
}

func (s *analysisStubStore) UpsertApplicationAnalysis(ctx context.Context, arg store.UpsertApplicationAnalysisParams) (*models.ApplicationAnalysis, error) {
	s.saved = append(s.saved, arg)
	return &models.ApplicationAnalysis{
		ID:            1,
		ApplicationID: arg.ApplicationID,
		MatchScore:    arg.MatchScore,
		Analysis:      arg.Analysis,
		KeyStrengths:  arg.KeyStrengths,
		UpdatedAt:     time.Now().UTC(),
	}, nil
}

func (s *analysisStubStore) GetApplicationAnalysis(ctx context.Context, applicationID int64) (*models.ApplicationAnalysis, error) {
	if s.analysis == nil {
		return nil, store.ErrNotFound
	}
	return s.analysis, nil
}

// cannedSender answers every model call with the same reply text and records
// the requests it saw.
type cannedSender struct {
	reply    string
	requests []anthropic.MessageNewParams
}

func (c *cannedSender) SendMessage(ctx context.Context, params anthropic.MessageNewParams) (anthropic.Message, error) {
	c.requests = append(c.requests, params)
	var msg anthropic.Message
	raw := fmt.Sprintf(`{
		"role": "assistant",
		"stop_reason": "end_turn",
		"content": [{"type": "text", "text": %q}]
	}`, c.reply)
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return anthropic.Message{}, err
	}
	return msg, nil
}

func newAnalysisFixtureStore() *analysisStubStore {
	resume := "https://lookaside.example/media-42"
	now := time.Now().UTC()
	return &analysisStubStore{
		application: &models.Application{
			ID:             7,
			JobID:          3,
			ApplicantName:  "Dana",
			WhatsAppNumber: "15550001111",
			ResumeURL:      &resume,
		},
		job: &models.Job{ID: 3, Title: "Backend Engineer", Department: "Engineering", Requirements: "Go, Postgres"},
		answers: []models.Answer{
			{QuestionText: "Years of Go experience?", AnswerText: "Five"},
		},
		history: map[string][]models.Message{
			"screening": {
				models.NewTextMessage(models.RoleUser, "I would like to apply", now),
				models.NewTextMessage(models.RoleModel, "Great, let's get started.", now),
			},
		},
	}
}

func TestAnalyzeApplication(t *testing.T) {
	st := newAnalysisFixtureStore()
	sender := &cannedSender{reply: `{"match_score": 82, "analysis": "Strong backend background.", "key_strengths": ["Go", "communication"]}`}
	svc := NewAnalysisService(st, sender, "test-model", []string{"screening"})

	analysis, err := svc.AnalyzeApplication(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 82, analysis.MatchScore)
	require.Equal(t, "Strong backend background.", analysis.Analysis)
	require.Equal(t, []string{"Go", "communication"}, analysis.KeyStrengths)

	require.Len(t, st.saved, 1)
	require.Equal(t, int64(7), st.saved[0].ApplicationID)

	// The prompt carries the requirements, the answers and the transcript.
	require.Len(t, sender.requests, 1)
	prompt := sender.requests[0].Messages[0].Content[0].OfText.Text
	require.Contains(t, prompt, "Go, Postgres")
	require.Contains(t, prompt, "Years of Go experience?")
	require.Contains(t, prompt, "Applicant: I would like to apply")
	require.Contains(t, prompt, "https://lookaside.example/media-42")
}

func TestAnalyzeApplicationWrappedJSON(t *testing.T) {
	st := newAnalysisFixtureStore()
	sender := &cannedSender{reply: "Here is my assessment:\n```json\n{\"match_score\": 150, \"analysis\": \"ok\", \"key_strengths\": []}\n```"}
	svc := NewAnalysisService(st, sender, "test-model", []string{"screening"})

	analysis, err := svc.AnalyzeApplication(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 100, analysis.MatchScore, "scores clamp to 0-100")
	require.Equal(t, "ok", analysis.Analysis)
}

func TestAnalyzeApplicationNonJSONReply(t *testing.T) {
	st := newAnalysisFixtureStore()
	sender := &cannedSender{reply: "The candidate looks promising overall."}
	svc := NewAnalysisService(st, sender, "test-model", []string{"screening"})

	analysis, err := svc.AnalyzeApplication(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 0, analysis.MatchScore)
	require.Equal(t, "The candidate looks promising overall.", analysis.Analysis)
}

func TestAnalyzeApplicationNotFound(t *testing.T) {
	svc := NewAnalysisService(&analysisStubStore{}, &cannedSender{reply: "{}"}, "test-model", nil)

	_, err := svc.AnalyzeApplication(context.Background(), 99)
	require.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestAnalyzeApplicationOffline(t *testing.T) {
	svc := NewAnalysisService(newAnalysisFixtureStore(), nil, "test-model", nil)

	_, err := svc.AnalyzeApplication(context.Background(), 7)
	require.ErrorIs(t, err, ErrAnalysisUnavailable)
}

func TestGetAnalysisNotFound(t *testing.T) {
	svc := NewAnalysisService(&analysisStubStore{}, nil, "test-model", nil)

	_, err := svc.GetAnalysis(context.Background(), 7)
	require.ErrorIs(t, err, ErrAnalysisNotFound)
}
