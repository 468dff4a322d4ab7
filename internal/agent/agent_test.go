package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/require"

	"recruitassist-backend/internal/models"
	"recruitassist-backend/internal/store"
)

// unmarshalMessage builds a provider message from its wire form, so the
// content block unions behave exactly as they do for real responses.
func unmarshalMessage(t *testing.T, raw string) anthropic.Message {
	t.Helper()
	var msg anthropic.Message
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	return msg
}

func textResponse(t *testing.T, text string) anthropic.Message {
	t.Helper()
	return unmarshalMessage(t, fmt.Sprintf(`{
		"role": "assistant",
		"stop_reason": "end_turn",
		"content": [{"type": "text", "text": %q}]
	}`, text))
}

func toolUseResponse(t *testing.T, id, name, input string) anthropic.Message {
	t.Helper()
	return unmarshalMessage(t, fmt.Sprintf(`{
		"role": "assistant",
		"stop_reason": "tool_use",
		"content": [{"type": "tool_use", "id": %q, "name": %q, "input": %s}]
	}`, id, name, input))
}

// scriptedSender returns its responses in order and records every request it
// receives.
type scriptedSender struct {
	responses []anthropic.Message
	err       error
	requests  []anthropic.MessageNewParams
}

func (s *scriptedSender) SendMessage(ctx context.Context, params anthropic.MessageNewParams) (anthropic.Message, error) {
	s.requests = append(s.requests, params)
	if s.err != nil {
		return anthropic.Message{}, s.err
	}
	if len(s.responses) == 0 {
		return anthropic.Message{}, errors.New("scriptedSender: no responses left")
	}
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp, nil
}

type fakeConversations struct {
	history    []models.Message
	historyErr error
	appends    [][]models.Message
	appendErr  error
}

func (f *fakeConversations) ConversationHistory(ctx context.Context, agentName, phoneNumber string, limit int) ([]models.Message, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

func (f *fakeConversations) AppendConversationMessages(ctx context.Context, agentName, phoneNumber string, msgs []models.Message) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appends = append(f.appends, msgs)
	return nil
}

// fakeRecruitingStore serves the prompt composer and domain tools in tests.
type fakeRecruitingStore struct {
	jobs        []models.Job
	jobsErr     error
	questions   map[int64][]models.Question
	createdApps []store.CreateApplicationParams
	answerErrOn string
	answers     []store.CreateAnswerParams
	nextAppID   int64
}

func (f *fakeRecruitingStore) ListJobs(ctx context.Context) ([]models.Job, error) {
	if f.jobsErr != nil {
		return nil, f.jobsErr
	}
	return f.jobs, nil
}

func (f *fakeRecruitingStore) GetJobByID(ctx context.Context, id int64) (*models.Job, error) {
	for i := range f.jobs {
		if f.jobs[i].ID == id {
			return &f.jobs[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRecruitingStore) ListQuestionsByJob(ctx context.Context, jobID int64) ([]models.Question, error) {
	return f.questions[jobID], nil
}

func (f *fakeRecruitingStore) CreateApplication(ctx context.Context, arg store.CreateApplicationParams) (*models.Application, error) {
	f.createdApps = append(f.createdApps, arg)
	f.nextAppID++
	return &models.Application{
		ID:             f.nextAppID,
		JobID:          arg.JobID,
		ApplicantName:  arg.ApplicantName,
		WhatsAppNumber: arg.WhatsAppNumber,
		Status:         models.ApplicationStatusNew,
	}, nil
}

func (f *fakeRecruitingStore) CreateAnswer(ctx context.Context, arg store.CreateAnswerParams) (*models.Answer, error) {
	if arg.QuestionText == f.answerErrOn {
		return nil, errors.New("insert failed")
	}
	f.answers = append(f.answers, arg)
	return &models.Answer{ID: int64(len(f.answers)), ApplicationID: arg.ApplicationID}, nil
}

// echoTool responds with its input verbatim.
type echoTool struct {
	calls []ToolCall
}

func (e *echoTool) Param() anthropic.ToolParam {
	return anthropic.ToolParam{
		Name:        "echo",
		Description: anthropic.String("Echoes the input back."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]any{
				"value": map[string]any{"type": "string"},
			},
			Required: []string{"value"},
		},
	}
}

func (e *echoTool) Invoke(ctx context.Context, call ToolCall) (string, error) {
	e.calls = append(e.calls, call)
	return string(call.Args), nil
}

func newTestAgent(sender MessageSender, conversations ConversationStore, tools []Tool, opts ...Option) *Agent {
	registry := NewRegistry(nil)
	for _, tool := range tools {
		registry.Register(tool)
	}
	composer := NewPromptComposer(&fakeRecruitingStore{})
	return New("test-agent", "test-model", sender, registry, conversations, composer, opts...)
}

func TestResolveOfflineMode(t *testing.T) {
	convs := &fakeConversations{}
	a := newTestAgent(nil, convs, nil)

	reply := a.Resolve(context.Background(), TurnRequest{UserID: "15550001111", Text: "hi"})

	require.Equal(t, OfflineReply, reply)
	require.Empty(t, convs.appends, "offline turns must not be persisted")
}

func TestResolveTextReply(t *testing.T) {
	sender := &scriptedSender{responses: []anthropic.Message{textResponse(t, "Hello! How can I help?")}}
	convs := &fakeConversations{}
	a := newTestAgent(sender, convs, nil)

	reply := a.Resolve(context.Background(), TurnRequest{UserID: "15550001111", Text: "hi", Channel: ChannelWhatsApp})

	require.Equal(t, "Hello! How can I help?", reply)
	require.Len(t, convs.appends, 1, "the turn is persisted as one batch")

	turn := convs.appends[0]
	require.Len(t, turn, 2)
	require.Equal(t, models.RoleUser, turn[0].Role)
	require.Equal(t, "hi", turn[0].Text())
	require.Equal(t, models.RoleModel, turn[1].Role)
	require.Equal(t, "Hello! How can I help?", turn[1].Text())
}

func TestResolveToolCallRoundTrip(t *testing.T) {
	sender := &scriptedSender{responses: []anthropic.Message{
		toolUseResponse(t, "tu_1", "echo", `{"value": "ping"}`),
		textResponse(t, "Done."),
	}}
	convs := &fakeConversations{}
	echo := &echoTool{}
	a := newTestAgent(sender, convs, []Tool{echo})

	reply := a.Resolve(context.Background(), TurnRequest{UserID: "15550001111", Text: "run echo"})

	require.Equal(t, "Done.", reply)
	require.Len(t, echo.calls, 1)
	require.JSONEq(t, `{"value": "ping"}`, string(echo.calls[0].Args))
	require.Equal(t, "15550001111", echo.calls[0].UserID)

	// Second request carries the assistant tool_use message and the tool
	// result back to the model.
	require.Len(t, sender.requests, 2)
	require.Len(t, sender.requests[1].Messages, 3)

	require.Len(t, convs.appends, 1)
	turn := convs.appends[0]
	require.Len(t, turn, 4)
	require.NotNil(t, turn[1].Parts[0].ToolCall)
	require.Equal(t, "echo", turn[1].Parts[0].ToolCall.Name)
	require.NotNil(t, turn[2].Parts[0].ToolResult)
	require.Equal(t, "tu_1", turn[2].Parts[0].ToolResult.ID)
	require.False(t, turn[2].Parts[0].ToolResult.IsError)
	require.Equal(t, "Done.", turn[3].Text())
}

func TestResolveEmptyFinalTextDegrades(t *testing.T) {
	// A turn the model closes without any text blocks must still reach the
	// user as the apology, and the transcript must record what was sent.
	sender := &scriptedSender{responses: []anthropic.Message{
		unmarshalMessage(t, `{"role": "assistant", "stop_reason": "end_turn", "content": []}`),
	}}
	convs := &fakeConversations{}
	a := newTestAgent(sender, convs, nil)

	reply := a.Resolve(context.Background(), TurnRequest{UserID: "15550001111", Text: "hi"})

	require.NotEmpty(t, reply)
	require.Equal(t, FallbackReply, reply)

	require.Len(t, convs.appends, 1)
	turn := convs.appends[0]
	last := turn[len(turn)-1]
	require.Equal(t, models.RoleModel, last.Role)
	require.Equal(t, FallbackReply, last.Text())
}

func TestResolveDisabledToolStillCompletes(t *testing.T) {
	// The model asks for a tool the operator switched off; the turn carries
	// on with the unavailable marker and still ends with a real reply.
	registry := NewRegistry([]string{"echo"})
	echo := &echoTool{}
	registry.Register(echo)

	sender := &scriptedSender{responses: []anthropic.Message{
		toolUseResponse(t, "tu_off", "echo", `{"value": "ping"}`),
		textResponse(t, "That capability is switched off right now."),
	}}
	convs := &fakeConversations{}
	composer := NewPromptComposer(&fakeRecruitingStore{})
	a := New("test-agent", "test-model", sender, registry, convs, composer)

	reply := a.Resolve(context.Background(), TurnRequest{UserID: "15550001111", Text: "run echo"})

	require.Equal(t, "That capability is switched off right now.", reply)
	require.Empty(t, echo.calls, "a disabled tool is never invoked")

	require.Len(t, convs.appends, 1)
	turn := convs.appends[0]
	require.Len(t, turn, 4)
	require.NotNil(t, turn[2].Parts[0].ToolResult)
	require.Equal(t, ToolUnavailableResult, turn[2].Parts[0].ToolResult.Content)
	require.False(t, turn[2].Parts[0].ToolResult.IsError)
}

func TestResolveProviderErrorPersistsNothing(t *testing.T) {
	sender := &scriptedSender{err: errors.New("upstream unavailable")}
	convs := &fakeConversations{}
	a := newTestAgent(sender, convs, nil)

	reply := a.Resolve(context.Background(), TurnRequest{UserID: "15550001111", Text: "hi"})

	require.Equal(t, FallbackReply, reply)
	require.Empty(t, convs.appends, "a failed turn leaves the transcript untouched")
}

func TestResolveToolIterationBudget(t *testing.T) {
	// The model keeps demanding tools forever; the loop must still terminate.
	sender := &scriptedSender{responses: []anthropic.Message{
		toolUseResponse(t, "tu_loop", "echo", `{"value": "again"}`),
	}}
	convs := &fakeConversations{}
	echo := &echoTool{}
	a := newTestAgent(sender, convs, []Tool{echo}, WithMaxToolIterations(3))

	reply := a.Resolve(context.Background(), TurnRequest{UserID: "15550001111", Text: "loop"})

	require.Equal(t, FallbackReply, reply)
	require.Len(t, sender.requests, 3, "exactly MaxToolIterations provider calls")
	require.Len(t, echo.calls, 3)

	require.Len(t, convs.appends, 1)
	turn := convs.appends[0]
	last := turn[len(turn)-1]
	require.Equal(t, models.RoleModel, last.Role)
	require.Equal(t, FallbackReply, last.Text(), "the transcript closes with the apology")
}

func TestResolveHistoryErrorDegrades(t *testing.T) {
	sender := &scriptedSender{responses: []anthropic.Message{textResponse(t, "Fresh start.")}}
	convs := &fakeConversations{historyErr: errors.New("db down")}
	a := newTestAgent(sender, convs, nil)

	reply := a.Resolve(context.Background(), TurnRequest{UserID: "15550001111", Text: "hi"})

	require.Equal(t, "Fresh start.", reply)
	require.Len(t, sender.requests, 1)
	// Only the new user message, no replayed history.
	require.Len(t, sender.requests[0].Messages, 1)
}

func TestResolveReplaysHistory(t *testing.T) {
	now := time.Now().UTC()
	convs := &fakeConversations{history: []models.Message{
		models.NewTextMessage(models.RoleUser, "earlier question", now.Add(-time.Hour)),
		models.NewTextMessage(models.RoleModel, "earlier answer", now.Add(-time.Hour)),
	}}
	sender := &scriptedSender{responses: []anthropic.Message{textResponse(t, "Continuing.")}}
	a := newTestAgent(sender, convs, nil)

	reply := a.Resolve(context.Background(), TurnRequest{UserID: "15550001111", Text: "follow-up"})

	require.Equal(t, "Continuing.", reply)
	require.Len(t, sender.requests, 1)
	require.Len(t, sender.requests[0].Messages, 3, "history plus the new user message")
}

func TestHistoryToParamsRoles(t *testing.T) {
	now := time.Now().UTC()
	params := historyToParams([]models.Message{
		models.NewTextMessage(models.RoleUser, "q", now),
		{
			Role: models.RoleModel,
			Parts: []models.Part{
				{Text: "checking"},
				{ToolCall: &models.ToolCallPart{ID: "tu_9", Name: "echo", Args: json.RawMessage(`{"value":"x"}`)}},
			},
			Timestamp: now,
		},
		{
			Role: models.RoleUser,
			Parts: []models.Part{
				{ToolResult: &models.ToolResultPart{ID: "tu_9", Name: "echo", Content: "x"}},
			},
			Timestamp: now,
		},
	})

	require.Len(t, params, 3)
	require.Equal(t, anthropic.MessageParamRoleUser, params[0].Role)
	require.Equal(t, anthropic.MessageParamRoleAssistant, params[1].Role)
	require.Equal(t, anthropic.MessageParamRoleUser, params[2].Role)
	require.Len(t, params[1].Content, 2)
	require.NotNil(t, params[1].Content[1].OfToolUse)
	require.NotNil(t, params[2].Content[0].OfToolResult)
}
