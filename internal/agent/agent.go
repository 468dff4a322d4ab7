package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"recruitassist-backend/internal/models"
)

// Replies used when the model cannot be consulted. OfflineReply is returned
// when no provider is configured at all; FallbackReply covers provider
// failures and exhausted tool budgets mid-turn.
const (
	OfflineReply  = "Thank you for your message. Our HR team will review your application soon."
	FallbackReply = "I apologize, but I'm experiencing some technical difficulties. Our HR team will follow up with you shortly."
)

const (
	defaultMaxToolIterations = 8
	defaultHistoryLimit      = 40
	maxResponseTokens        = 2048
)

// ConversationStore persists per-user conversation transcripts. Appends must
// be atomic: either the whole batch lands or none of it does.
type ConversationStore interface {
	ConversationHistory(ctx context.Context, agentName, phoneNumber string, limit int) ([]models.Message, error)
	AppendConversationMessages(ctx context.Context, agentName, phoneNumber string, msgs []models.Message) error
}

// TurnRequest is one inbound user message to resolve.
type TurnRequest struct {
	// UserID identifies the end user, e.g. a WhatsApp phone number. It keys
	// the conversation transcript.
	UserID string
	// Text is the user's message content.
	Text string
	// MediaURL, when set, is the resolved download reference of an
	// attachment. It is surfaced to the model as context; the bytes are not
	// fetched.
	MediaURL string
	// MimeType, when set, describes media the user attached alongside the
	// text.
	MimeType string
	// JobID scopes the turn to a specific job, pulling its custom
	// instructions into the system prompt.
	JobID *int64
	// Channel is the transport the message arrived on.
	Channel Channel
}

// Agent resolves user turns against the model, routing tool calls through its
// registry and persisting completed turns. An Agent is safe for concurrent
// use; each turn keeps all intermediate state on its own stack.
type Agent struct {
	name              string
	model             anthropic.Model
	sender            MessageSender
	registry          *Registry
	conversations     ConversationStore
	composer          *PromptComposer
	maxToolIterations int
	historyLimit      int
	now               func() time.Time
}

// Option customizes an Agent at construction.
type Option func(*Agent)

// WithMaxToolIterations bounds how many model round-trips a single turn may
// spend on tool calls. Values below 1 are ignored.
func WithMaxToolIterations(n int) Option {
	return func(a *Agent) {
		if n >= 1 {
			a.maxToolIterations = n
		}
	}
}

// WithHistoryLimit bounds how many prior messages are replayed to the model.
func WithHistoryLimit(n int) Option {
	return func(a *Agent) {
		if n >= 0 {
			a.historyLimit = n
		}
	}
}

// New creates an Agent. A nil sender puts the agent in offline mode: every
// turn answers with OfflineReply and nothing is persisted.
func New(name string, model anthropic.Model, sender MessageSender, registry *Registry, conversations ConversationStore, composer *PromptComposer, opts ...Option) *Agent {
	a := &Agent{
		name:              name,
		model:             model,
		sender:            sender,
		registry:          registry,
		conversations:     conversations,
		composer:          composer,
		maxToolIterations: defaultMaxToolIterations,
		historyLimit:      defaultHistoryLimit,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Resolve handles one user turn and always produces a user-facing reply.
// Provider failures surface as FallbackReply, never as an error: the person
// on the other end of the chat always hears something.
func (a *Agent) Resolve(ctx context.Context, req TurnRequest) string {
	if a.sender == nil {
		log.Printf("[Agent %s] no model provider configured, returning offline reply", a.name)
		return OfflineReply
	}

	reply, err := a.resolve(ctx, req, 0)
	if err != nil {
		log.Printf("ERROR [Agent %s] turn for %s failed: %v", a.name, req.UserID, err)
		return FallbackReply
	}
	return reply
}

// resolve runs the model loop for one turn at the given delegation depth.
// The loop sends the conversation to the model, executes any requested tool
// calls, and repeats until the model stops asking for tools or the iteration
// budget runs out. The completed turn is appended to the transcript in one
// atomic batch; a turn that errors out persists nothing.
func (a *Agent) resolve(ctx context.Context, req TurnRequest, depth int) (string, error) {
	prompt := a.composer.Compose(ctx, PromptContext{
		Identity:      req.UserID,
		Channel:       req.Channel,
		JobID:         req.JobID,
		MediaMimeType: req.MimeType,
		MediaURL:      req.MediaURL,
	})

	history, err := a.conversations.ConversationHistory(ctx, a.name, req.UserID, a.historyLimit)
	if err != nil {
		// A fresh-context answer beats no answer; continue without history.
		log.Printf("ERROR [Agent %s] could not load history for %s: %v", a.name, req.UserID, err)
		history = nil
	}

	messages := append(historyToParams(history), anthropic.NewUserMessage(anthropic.NewTextBlock(req.Text)))

	// turn accumulates everything this exchange adds to the transcript, to be
	// persisted in one batch once a final reply exists.
	turn := []models.Message{models.NewTextMessage(models.RoleUser, req.Text, a.now())}

	for i := 0; i < a.maxToolIterations; i++ {
		response, err := a.sender.SendMessage(ctx, anthropic.MessageNewParams{
			Model:     a.model,
			MaxTokens: maxResponseTokens,
			System:    []anthropic.TextBlockParam{{Text: prompt}},
			Messages:  messages,
			Tools:     a.registry.ToolParams(),
		})
		if err != nil {
			return "", fmt.Errorf("model request failed: %w", err)
		}

		var (
			texts      []string
			toolUses   []anthropic.ToolUseBlock
			modelParts []models.Part
		)
		for _, block := range response.Content {
			switch b := block.AsAny().(type) {
			case anthropic.TextBlock:
				texts = append(texts, b.Text)
				modelParts = append(modelParts, models.Part{Text: b.Text})
			case anthropic.ToolUseBlock:
				toolUses = append(toolUses, b)
				modelParts = append(modelParts, models.Part{ToolCall: &models.ToolCallPart{
					ID:   b.ID,
					Name: b.Name,
					Args: b.Input,
				}})
			default:
				log.Printf("[Agent %s] ignoring unexpected content block type %T", a.name, b)
			}
		}
		if len(modelParts) > 0 {
			turn = append(turn, models.Message{Role: models.RoleModel, Parts: modelParts, Timestamp: a.now()})
		}

		if response.StopReason != anthropic.StopReasonToolUse {
			reply := strings.Join(texts, "\n")
			// The user always hears something: a turn the model closes
			// without any text degrades to the apology, and the transcript
			// records what was actually sent.
			if strings.TrimSpace(reply) == "" {
				log.Printf("[Agent %s] model closed the turn without text for %s", a.name, req.UserID)
				reply = FallbackReply
				turn = append(turn, models.NewTextMessage(models.RoleModel, FallbackReply, a.now()))
			}
			a.persistTurn(ctx, req.UserID, turn)
			return reply, nil
		}

		resultBlocks := make([]anthropic.ContentBlockParamUnion, 0, len(toolUses))
		resultParts := make([]models.Part, 0, len(toolUses))
		for _, use := range toolUses {
			log.Printf("[Agent %s] invoking tool %s for %s", a.name, use.Name, req.UserID)
			result, isError := a.registry.Invoke(ctx, use.Name, ToolCall{
				Args:    use.Input,
				UserID:  req.UserID,
				Channel: req.Channel,
				Depth:   depth,
			})
			resultBlocks = append(resultBlocks, anthropic.ContentBlockParamUnion{
				OfToolResult: &anthropic.ToolResultBlockParam{
					ToolUseID: use.ID,
					Content: []anthropic.ToolResultBlockParamContentUnion{
						{OfText: &anthropic.TextBlockParam{Text: result}},
					},
					IsError: anthropic.Bool(isError),
				},
			})
			resultParts = append(resultParts, models.Part{ToolResult: &models.ToolResultPart{
				ID:      use.ID,
				Name:    use.Name,
				Content: result,
				IsError: isError,
			}})
		}

		messages = append(messages, response.ToParam(), anthropic.NewUserMessage(resultBlocks...))
		turn = append(turn, models.Message{Role: models.RoleUser, Parts: resultParts, Timestamp: a.now()})
	}

	// Budget exhausted with the model still asking for tools. Close the turn
	// with the apology so the transcript stays coherent.
	log.Printf("[Agent %s] tool iteration budget (%d) exhausted for %s", a.name, a.maxToolIterations, req.UserID)
	turn = append(turn, models.NewTextMessage(models.RoleModel, FallbackReply, a.now()))
	a.persistTurn(ctx, req.UserID, turn)
	return FallbackReply, nil
}

// persistTurn appends the turn's messages atomically. An append failure is
// logged and swallowed: the reply already exists and must still reach the
// user.
func (a *Agent) persistTurn(ctx context.Context, userID string, turn []models.Message) {
	if err := a.conversations.AppendConversationMessages(ctx, a.name, userID, turn); err != nil {
		log.Printf("ERROR [Agent %s] failed to persist turn for %s: %v", a.name, userID, err)
	}
}

// historyToParams replays persisted messages in the provider's wire shape.
// Tool calls replay as assistant tool_use blocks and tool results as user
// tool_result blocks, so the model sees past turns exactly as it produced
// them.
func historyToParams(history []models.Message) []anthropic.MessageParam {
	params := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, msg := range history {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Parts))
		for _, part := range msg.Parts {
			switch {
			case part.ToolCall != nil:
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    part.ToolCall.ID,
						Name:  part.ToolCall.Name,
						Input: part.ToolCall.Args,
					},
				})
			case part.ToolResult != nil:
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolResult: &anthropic.ToolResultBlockParam{
						ToolUseID: part.ToolResult.ID,
						Content: []anthropic.ToolResultBlockParamContentUnion{
							{OfText: &anthropic.TextBlockParam{Text: part.ToolResult.Content}},
						},
						IsError: anthropic.Bool(part.ToolResult.IsError),
					},
				})
			default:
				blocks = append(blocks, anthropic.NewTextBlock(part.Text))
			}
		}
		if len(blocks) == 0 {
			continue
		}
		if msg.Role == models.RoleModel {
			params = append(params, anthropic.NewAssistantMessage(blocks...))
		} else {
			params = append(params, anthropic.NewUserMessage(blocks...))
		}
	}
	return params
}
