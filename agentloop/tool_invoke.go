// Copyright (c) Microsoft. All rights reserved.

package agentloop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxIterations is the iteration cap used when none is configured.
const DefaultMaxIterations = 10

// InvocationConfig controls the function invocation loop behavior.
type InvocationConfig struct {
	// MaxIterations is the maximum number of LLM round-trips for tool calling.
	// Default: 10.
	MaxIterations int

	// ParallelToolCalls runs the tool calls of one iteration concurrently.
	// Tool messages are still appended in call order.
	ParallelToolCalls bool
}

// DefaultInvocationConfig returns the default configuration.
func DefaultInvocationConfig() InvocationConfig {
	return InvocationConfig{MaxIterations: DefaultMaxIterations}
}

// errAbandoned unwinds the streaming loop when the consumer stops pulling.
var errAbandoned = errors.New("stream abandoned")

// invocation is the state of one simple-mode run. The transcript it holds
// belongs to this run alone and is dropped when the run ends.
type invocation struct {
	client   ChatClient
	registry *Registry
	opts     *ChatOptions
	config   InvocationConfig
	messages []Message
	usage    Usage

	// current is the stream of the iteration in flight, if any.
	current *ResponseStream[ResponseUpdate]
}

func newInvocation(client ChatClient, registry *Registry, messages []Message, opts *ChatOptions, config InvocationConfig) *invocation {
	if config.MaxIterations <= 0 {
		config.MaxIterations = DefaultMaxIterations
	}
	return &invocation{
		client:   client,
		registry: registry,
		opts:     opts,
		config:   config,
		messages: messages,
	}
}

// account folds one iteration's usage into the running totals.
func (inv *invocation) account(iteration int, u Usage) {
	if iteration == 1 {
		inv.usage = u
		return
	}
	inv.usage.Add(u)
}

// finish stamps the accumulated totals onto the last iteration's response.
func (inv *invocation) finish(resp *Response, iteration int) *Response {
	resp.Usage = inv.usage
	resp.Iterations = iteration
	return resp
}

// run drives the buffered tool-calling loop: call the model, execute the
// tools it asks for, append the results, and call it again until it stops
// asking or the iteration cap is reached.
func (inv *invocation) run(ctx context.Context) (*Response, error) {
	for iteration := 1; iteration <= inv.config.MaxIterations; iteration++ {
		slog.DebugContext(ctx, "agent iteration",
			"iteration", iteration,
			"message_count", len(inv.messages),
			"tool_count", inv.registry.Len(),
		)

		resp, err := inv.client.Response(ctx, inv.messages, inv.opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExecution, err)
		}
		inv.account(iteration, resp.Usage)

		calls := resp.ToolCalls()
		if len(calls) == 0 {
			return inv.finish(resp, iteration), nil
		}
		// Ids are filled in place so the response and the transcript agree.
		for i := range calls {
			if calls[i].ID == "" {
				calls[i].ID = newCallID()
			}
		}

		text, _ := resp.Text()
		if err := inv.executeTools(ctx, iteration, text, calls, nil); err != nil {
			return nil, err
		}
	}
	return nil, &MaxIterationsError{Limit: inv.config.MaxIterations}
}

// stream drives the same loop over streamed responses. first is the
// already-open stream of iteration 1. done receives the final response when
// the loop ends normally.
func (inv *invocation) stream(ctx context.Context, first *ResponseStream[ResponseUpdate], done func(*Response)) func(yield func(StreamEvent, error) bool) {
	inv.current = first
	return func(yield func(StreamEvent, error) bool) {
		emit := func(ev StreamEvent) bool { return yield(ev, nil) }

		for iteration := 1; ; iteration++ {
			if iteration > 1 {
				slog.DebugContext(ctx, "agent iteration",
					"iteration", iteration,
					"message_count", len(inv.messages),
					"tool_count", inv.registry.Len(),
				)
				s, err := inv.client.StreamResponse(ctx, inv.messages, inv.opts)
				if err != nil {
					yield(StreamEvent{}, fmt.Errorf("%w: %w", ErrExecution, err))
					return
				}
				inv.current = s
			}

			result, err := drainIteration(ctx, iteration, inv.current, emit)
			inv.current = nil
			if err != nil {
				if !errors.Is(err, errAbandoned) {
					yield(StreamEvent{}, err)
				}
				return
			}
			inv.account(iteration, result.Usage)

			if len(result.ToolCalls) == 0 {
				done(inv.finish(result.Response(), iteration))
				return
			}

			if err := inv.executeTools(ctx, iteration, result.Content, result.ToolCalls, emit); err != nil {
				if !errors.Is(err, errAbandoned) {
					yield(StreamEvent{}, err)
				}
				return
			}
			if !emit(StreamEvent{Type: EventIterationComplete, Iteration: iteration, Usage: inv.usage}) {
				return
			}
			if iteration >= inv.config.MaxIterations {
				yield(StreamEvent{}, &MaxIterationsError{Limit: inv.config.MaxIterations})
				return
			}
		}
	}
}

// close releases the stream of the iteration in flight, if any.
func (inv *invocation) close() error {
	if inv.current == nil {
		return nil
	}
	return inv.current.Close()
}

// drainIteration folds one streamed response into an IterationResult,
// surfacing each frame as a chunk event first. The stream is closed on
// every return path.
func drainIteration(ctx context.Context, iteration int, stream *ResponseStream[ResponseUpdate], emit func(StreamEvent) bool) (IterationResult, error) {
	defer stream.Close()

	acc := NewDeltaAccumulator()
	for update, err := range stream.All(ctx) {
		if err != nil {
			return IterationResult{}, fmt.Errorf("%w: %w", ErrExecution, err)
		}
		acc.Add(update)
		u := update
		if !emit(StreamEvent{Type: EventChunk, Iteration: iteration, Update: &u}) {
			return IterationResult{}, errAbandoned
		}
	}
	return acc.Result(), nil
}

// executeTools appends the assistant tool-call message, runs every call,
// and appends one tool message per call in call order. emit may be nil.
func (inv *invocation) executeTools(ctx context.Context, iteration int, content string, calls []ToolCall, emit func(StreamEvent) bool) error {
	if emit == nil {
		emit = func(StreamEvent) bool { return true }
	}
	inv.messages = append(inv.messages, NewToolCallMessage(content, calls))

	if inv.config.ParallelToolCalls && len(calls) > 1 {
		return inv.executeParallel(ctx, iteration, calls, emit)
	}

	for i := range calls {
		call := calls[i]
		if !emit(StreamEvent{Type: EventToolStart, Iteration: iteration, ToolCall: &call}) {
			return errAbandoned
		}
		res := inv.registry.Execute(ctx, call)
		logToolOutcome(ctx, res)
		inv.messages = append(inv.messages, res.Message())
		if !emit(StreamEvent{Type: EventToolResult, Iteration: iteration, ToolCall: &call, Result: &res}) {
			return errAbandoned
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (inv *invocation) executeParallel(ctx context.Context, iteration int, calls []ToolCall, emit func(StreamEvent) bool) error {
	for i := range calls {
		call := calls[i]
		if !emit(StreamEvent{Type: EventToolStart, Iteration: iteration, ToolCall: &call}) {
			return errAbandoned
		}
	}

	results := make([]ToolResult, len(calls))
	var g errgroup.Group
	for i, call := range calls {
		g.Go(func() error {
			results[i] = inv.registry.Execute(ctx, call)
			return nil
		})
	}
	_ = g.Wait()

	for i := range calls {
		call, res := calls[i], results[i]
		logToolOutcome(ctx, res)
		inv.messages = append(inv.messages, res.Message())
		if !emit(StreamEvent{Type: EventToolResult, Iteration: iteration, ToolCall: &call, Result: &res}) {
			return errAbandoned
		}
	}
	return ctx.Err()
}

func logToolOutcome(ctx context.Context, res ToolResult) {
	if res.Err == nil {
		return
	}
	slog.WarnContext(ctx, "tool invocation error",
		"tool", res.Name,
		"call_id", res.CallID,
		"kind", res.Err.Kind,
		"error", res.Err.Message,
	)
}
