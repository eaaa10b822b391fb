// Copyright (c) Microsoft. All rights reserved.

package agentloop_test

import (
	"context"
	"sync"

	af "github.com/agentloop/agentloop-go/agentloop"
)

// mockClient is a ChatClient driven by test callbacks. It records a copy of
// every transcript it is called with.
type mockClient struct {
	responseFn func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.Response, error)
	streamFn   func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ResponseStream[af.ResponseUpdate], error)

	mu    sync.Mutex
	calls [][]af.Message
	opts  []*af.ChatOptions
}

func (m *mockClient) record(msgs []af.Message, opts *af.ChatOptions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]af.Message, len(msgs))
	copy(cp, msgs)
	m.calls = append(m.calls, cp)
	m.opts = append(m.opts, opts)
}

func (m *mockClient) Response(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.Response, error) {
	m.record(msgs, opts)
	return m.responseFn(ctx, msgs, opts)
}

func (m *mockClient) StreamResponse(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ResponseStream[af.ResponseUpdate], error) {
	m.record(msgs, opts)
	return m.streamFn(ctx, msgs, opts)
}

func (m *mockClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// scripted returns a responseFn that replays responses in order and repeats
// the last one once the script runs out.
func scripted(responses ...*af.Response) func(context.Context, []af.Message, *af.ChatOptions) (*af.Response, error) {
	var mu sync.Mutex
	i := 0
	return func(context.Context, []af.Message, *af.ChatOptions) (*af.Response, error) {
		mu.Lock()
		defer mu.Unlock()
		r := responses[min(i, len(responses)-1)]
		i++
		cp := *r
		return &cp, nil
	}
}

// closeCounter counts Close calls on a stream's underlying resource.
type closeCounter struct {
	mu sync.Mutex
	n  int
}

func (c *closeCounter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return nil
}

func (c *closeCounter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// streamOf builds a stream that yields updates and then err, if non-nil.
func streamOf(c *closeCounter, err error, updates ...af.ResponseUpdate) *af.ResponseStream[af.ResponseUpdate] {
	seq := func(yield func(af.ResponseUpdate, error) bool) {
		for _, u := range updates {
			if !yield(u, nil) {
				return
			}
		}
		if err != nil {
			yield(af.ResponseUpdate{}, err)
		}
	}
	return af.NewResponseStream(seq, c)
}

func textResponse(text string, usage af.Usage) *af.Response {
	return &af.Response{
		ID:    "resp-text",
		Model: "test-model",
		Choices: []af.Choice{{
			Message:      af.NewAssistantMessage(text),
			FinishReason: af.FinishReasonStop,
		}},
		Usage: usage,
	}
}

func toolCallResponse(usage af.Usage, calls ...af.ToolCall) *af.Response {
	return &af.Response{
		ID:    "resp-tools",
		Model: "test-model",
		Choices: []af.Choice{{
			Message:      af.NewToolCallMessage("", calls),
			FinishReason: af.FinishReasonToolCalls,
		}},
		Usage: usage,
	}
}

func usage(prompt, completion int) af.Usage {
	return af.Usage{PromptTokens: prompt, CompletionTokens: completion, TotalTokens: prompt + completion}
}

type weatherInput struct {
	Location string `json:"location" jsonschema:"description=City name,required"`
}

func weatherTool() *af.FunctionTool {
	return af.NewTypedTool("get_weather", "Get the weather for a location",
		func(ctx context.Context, args weatherInput) (any, error) {
			return map[string]any{"location": args.Location, "temperature": 22, "condition": "sunny"}, nil
		},
	)
}
