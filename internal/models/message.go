package models

import (
	"encoding/json"
	"time"
)

// Conversation message roles. Only the end user and the model ever speak;
// tool results are carried inside user-role messages, mirroring how the
// provider expects them on the wire.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is a single entry in a conversation's history. Messages are
// append-only: once persisted they are never mutated or deleted.
// This structure is stored in the JSONB messages column of the
// 'conversations' table.
type Message struct {
	Role      string    `json:"role"` // RoleUser or RoleModel
	Parts     []Part    `json:"parts"`
	Timestamp time.Time `json:"timestamp"`
}

// Part is one content fragment of a Message: plain text, a tool call
// requested by the model, or the result fed back for a tool call. Exactly one
// field is set.
type Part struct {
	Text       string          `json:"text,omitempty"`
	ToolCall   *ToolCallPart   `json:"tool_call,omitempty"`
	ToolResult *ToolResultPart `json:"tool_result,omitempty"`
}

// ToolCallPart records a model-requested tool invocation.
type ToolCallPart struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// ToolResultPart records the outcome of a tool invocation.
type ToolResultPart struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// NewTextMessage builds a single-part text message with the given role.
func NewTextMessage(role, text string, at time.Time) Message {
	return Message{
		Role:      role,
		Parts:     []Part{{Text: text}},
		Timestamp: at,
	}
}

// Text concatenates the text parts of the message.
func (m Message) Text() string {
	var out string
	for _, p := range m.Parts {
		out += p.Text
	}
	return out
}
