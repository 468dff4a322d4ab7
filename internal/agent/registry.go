package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/anthropics/anthropic-sdk-go"
)

// ToolUnavailableResult is the uniform result returned when a disabled tool is
// invoked, or when delegation depth is exhausted. It is a normal result, not
// an error, so the model can explain the situation to the user instead of the
// turn crashing.
const ToolUnavailableResult = "This capability is currently unavailable."

// Tool is a named, schema-described function exposed to the model.
// Implementations must be safe for concurrent use: one registry serves every
// in-flight turn.
type Tool interface {
	// Param returns the tool definition sent to the model.
	Param() anthropic.ToolParam

	// Invoke performs the tool call. A returned error is reported to the
	// model as a structured error result; it never aborts the turn. Errors
	// wrapping ArgumentError indicate the model can retry with corrected
	// arguments.
	Invoke(ctx context.Context, call ToolCall) (string, error)
}

// ToolCall carries one model-requested invocation into a Tool.
type ToolCall struct {
	// Args is the raw JSON arguments chosen by the model.
	Args json.RawMessage
	// UserID identifies the end user of the enclosing turn.
	UserID string
	// Channel is the chat transport of the enclosing turn.
	Channel Channel
	// Depth is the delegation depth of the enclosing turn; 0 for the
	// outermost agent. Delegate tools increment it for nested turns.
	Depth int
}

// ArgumentError marks a tool failure that the model can recover from by
// fixing its arguments.
type ArgumentError struct {
	cause error
}

func (ae ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments: %s", ae.cause)
}

func (ae ArgumentError) Unwrap() error {
	return ae.cause
}

func NewArgumentError(cause error) ArgumentError {
	return ArgumentError{cause: cause}
}

// parseArgs unmarshals tool arguments, wrapping failures as ArgumentError.
func parseArgs(raw json.RawMessage, target any) error {
	if err := json.Unmarshal(raw, target); err != nil {
		return NewArgumentError(err)
	}
	return nil
}

// Registry holds the fixed set of tools exposed to the model. Tools are
// registered at construction time and the set is immutable afterwards.
// Enablement is resolved from configuration once, at construction, rather
// than consulted from globals on every call.
type Registry struct {
	tools    map[string]Tool
	order    []string
	disabled map[string]bool
}

// NewRegistry creates an empty registry. Tools named in disabledTools are
// registered but answer every invocation with ToolUnavailableResult.
func NewRegistry(disabledTools []string) *Registry {
	disabled := make(map[string]bool, len(disabledTools))
	for _, name := range disabledTools {
		disabled[name] = true
	}
	return &Registry{
		tools:    make(map[string]Tool),
		disabled: disabled,
	}
}

// Register adds a tool. Registering two tools with the same name is a
// programming error.
func (r *Registry) Register(t Tool) {
	name := t.Param().Name
	if _, dup := r.tools[name]; dup {
		panic(fmt.Sprintf("duplicate tool registered: %s", name))
	}
	r.tools[name] = t
	r.order = append(r.order, name)
}

// ToolParams returns the tool definitions for the provider request, in
// registration order.
func (r *Registry) ToolParams() []anthropic.ToolUnionParam {
	params := make([]anthropic.ToolUnionParam, 0, len(r.order))
	for _, name := range r.order {
		p := r.tools[name].Param()
		params = append(params, anthropic.ToolUnionParam{OfTool: &p})
	}
	return params
}

// Invoke resolves one tool call to a result string. The second return value
// reports whether the result is an error result. Invoke never returns a Go
// error: every failure mode is folded into a result the model can see and
// react to within the same turn.
func (r *Registry) Invoke(ctx context.Context, name string, call ToolCall) (string, bool) {
	tool, ok := r.tools[name]
	if !ok {
		log.Printf("[Registry] Invoke: unknown tool %q requested", name)
		return fmt.Sprintf("unknown tool: %s", name), true
	}

	if r.disabled[name] {
		log.Printf("[Registry] Invoke: tool %q is disabled", name)
		return ToolUnavailableResult, false
	}

	result, err := tool.Invoke(ctx, call)
	if err != nil {
		var ae ArgumentError
		if errors.As(err, &ae) {
			log.Printf("[Registry] Invoke: recoverable argument error in %q: %v", name, err)
			return ae.Error(), true
		}
		log.Printf("ERROR [Registry] Invoke: tool %q failed: %v", name, err)
		return fmt.Sprintf("tool %s failed: %s", name, err), true
	}
	return result, false
}
