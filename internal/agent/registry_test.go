package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name   string
	result string
	err    error
}

func (s *stubTool) Param() anthropic.ToolParam {
	return anthropic.ToolParam{
		Name:        s.name,
		Description: anthropic.String("stub"),
		InputSchema: anthropic.ToolInputSchemaParam{Properties: map[string]any{}},
	}
}

func (s *stubTool) Invoke(ctx context.Context, call ToolCall) (string, error) {
	return s.result, s.err
}

func TestRegistryInvokeSuccess(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&stubTool{name: "greet", result: "hello"})

	result, isError := r.Invoke(context.Background(), "greet", ToolCall{})
	require.Equal(t, "hello", result)
	require.False(t, isError)
}

func TestRegistryInvokeUnknownTool(t *testing.T) {
	r := NewRegistry(nil)

	result, isError := r.Invoke(context.Background(), "missing", ToolCall{})
	require.True(t, isError)
	require.Contains(t, result, "missing")
}

func TestRegistryInvokeDisabledTool(t *testing.T) {
	// Disabled tools stay registered and advertised, but answer with the
	// unavailable sentinel as a non-error result.
	r := NewRegistry([]string{"greet"})
	r.Register(&stubTool{name: "greet", result: "hello"})

	result, isError := r.Invoke(context.Background(), "greet", ToolCall{})
	require.Equal(t, ToolUnavailableResult, result)
	require.False(t, isError)

	params := r.ToolParams()
	require.Len(t, params, 1, "disabled tools are still advertised to the model")
}

func TestRegistryInvokeArgumentError(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&stubTool{name: "strict", err: NewArgumentError(errors.New("job_id is required"))})

	result, isError := r.Invoke(context.Background(), "strict", ToolCall{})
	require.True(t, isError)
	require.Contains(t, result, "invalid arguments")
	require.Contains(t, result, "job_id is required")
}

func TestRegistryInvokeWrappedArgumentError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewArgumentError(errors.New("bad value")))
	r := NewRegistry(nil)
	r.Register(&stubTool{name: "strict", err: wrapped})

	result, isError := r.Invoke(context.Background(), "strict", ToolCall{})
	require.True(t, isError)
	require.Contains(t, result, "bad value")
}

func TestRegistryInvokeGenericError(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&stubTool{name: "flaky", err: errors.New("connection reset")})

	result, isError := r.Invoke(context.Background(), "flaky", ToolCall{})
	require.True(t, isError)
	require.Contains(t, result, "flaky")
	require.Contains(t, result, "connection reset")
}

func TestRegistryToolParamsOrder(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&stubTool{name: "alpha"})
	r.Register(&stubTool{name: "beta"})
	r.Register(&stubTool{name: "gamma"})

	params := r.ToolParams()
	require.Len(t, params, 3)
	require.Equal(t, "alpha", params[0].OfTool.Name)
	require.Equal(t, "beta", params[1].OfTool.Name)
	require.Equal(t, "gamma", params[2].OfTool.Name)
}

func TestRegistryDuplicateRegistrationPanics(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&stubTool{name: "dup"})
	require.Panics(t, func() {
		r.Register(&stubTool{name: "dup"})
	})
}
