// Copyright (c) Microsoft. All rights reserved.

package agentloop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Input is what a run is started from: a [Prompt] for the tool-calling loop
// or a [Request] for a single advanced round trip.
type Input interface {
	isInput()
}

// Prompt is simple-mode input. The run seeds its conversation with one user
// message, then loops between the model and the registered tools.
type Prompt string

// Request is advanced-mode input. The caller owns the transcript, the tool
// declarations and the tool choice; the run makes exactly one request and
// executes nothing locally.
type Request struct {
	Messages   []Message
	Tools      []ToolSpec
	ToolChoice ToolChoice
	Options    *ChatOptions
}

func (Prompt) isInput()  {}
func (Request) isInput() {}

// Agent is the top-level orchestrator. It composes a [ChatClient] with
// tools, middleware, and the tool-calling loop.
//
// Create one with [NewAgent] and functional options:
//
//	agent := agentloop.NewAgent(client,
//	    agentloop.WithName("assistant"),
//	    agentloop.WithInstructions("You are helpful."),
//	    agentloop.WithTools(weatherTool),
//	)
//
// An Agent holds no conversation state between runs and may be used from
// several goroutines at once.
type Agent struct {
	id                 string
	name               string
	description        string
	client             ChatClient
	instructions       string
	tools              []Tool
	defaultOptions     *ChatOptions
	agentMiddleware    []AgentMiddleware
	functionMiddleware []FunctionMiddleware
	invocationConfig   InvocationConfig
}

// AgentOption configures an [Agent] via [NewAgent].
type AgentOption func(*Agent)

// WithName sets the agent's display name.
func WithName(name string) AgentOption {
	return func(a *Agent) { a.name = name }
}

// WithDescription sets the agent's description.
func WithDescription(desc string) AgentOption {
	return func(a *Agent) { a.description = desc }
}

// WithInstructions sets the system instructions for the agent.
func WithInstructions(instructions string) AgentOption {
	return func(a *Agent) { a.instructions = instructions }
}

// WithTools adds tools to the agent's default tool set.
func WithTools(tools ...Tool) AgentOption {
	return func(a *Agent) { a.tools = append(a.tools, tools...) }
}

// WithDefaultOptions sets default [ChatOptions] for all requests.
func WithDefaultOptions(opts *ChatOptions) AgentOption {
	return func(a *Agent) { a.defaultOptions = opts }
}

// WithAgentMiddleware adds [AgentMiddleware] around buffered runs.
func WithAgentMiddleware(mws ...AgentMiddleware) AgentOption {
	return func(a *Agent) { a.agentMiddleware = append(a.agentMiddleware, mws...) }
}

// WithFunctionMiddleware adds [FunctionMiddleware] to the tool invocation pipeline.
func WithFunctionMiddleware(mws ...FunctionMiddleware) AgentOption {
	return func(a *Agent) { a.functionMiddleware = append(a.functionMiddleware, mws...) }
}

// WithInvocationConfig overrides the default [InvocationConfig] for the
// function calling loop.
func WithInvocationConfig(cfg InvocationConfig) AgentOption {
	return func(a *Agent) { a.invocationConfig = cfg }
}

// WithMaxIterations sets the iteration cap of the function calling loop.
func WithMaxIterations(n int) AgentOption {
	return func(a *Agent) { a.invocationConfig.MaxIterations = n }
}

// NewAgent creates an Agent with the given [ChatClient] and options.
func NewAgent(client ChatClient, opts ...AgentOption) *Agent {
	a := &Agent{
		id:               uuid.NewString(),
		client:           client,
		invocationConfig: DefaultInvocationConfig(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ID returns the agent's unique identifier.
func (a *Agent) ID() string { return a.id }

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.name }

// Description returns the agent's description.
func (a *Agent) Description() string { return a.description }

// RunOption configures a single [Agent.Run] or [Agent.RunStream] call.
type RunOption func(*runConfig)

type runConfig struct {
	tools   []Tool
	options *ChatOptions
}

// WithRunTools provides per-call tools, registered after the agent's own.
func WithRunTools(tools ...Tool) RunOption {
	return func(c *runConfig) { c.tools = append(c.tools, tools...) }
}

// WithRunOptions provides per-call [ChatOptions] overrides.
func WithRunOptions(opts *ChatOptions) RunOption {
	return func(c *runConfig) { c.options = opts }
}

// Run executes the agent to completion and returns the final response.
//
// A [Prompt] drives the tool-calling loop: the returned response carries the
// last iteration's choices, the usage summed over every iteration, and the
// iteration count. A [Request] makes a single round trip.
func (a *Agent) Run(ctx context.Context, in Input, opts ...RunOption) (*Response, error) {
	cfg := a.buildRunConfig(opts)
	handler := chainAgentMiddleware(a.buildHandler(cfg), a.agentMiddleware...)
	return handler(ctx, &AgentRequest{Input: in, Options: cfg.options})
}

// RunStream executes the agent and returns its events as they happen.
//
// The first request is issued before RunStream returns, so a rejected
// request surfaces here. Failures after that end the event sequence with
// the error. The caller must drain or Close the returned stream.
func (a *Agent) RunStream(ctx context.Context, in Input, opts ...RunOption) (*EventStream, error) {
	cfg := a.buildRunConfig(opts)

	switch in := in.(type) {
	case Prompt:
		inv, err := a.newPromptInvocation(ctx, in, cfg)
		if err != nil {
			return nil, err
		}
		first, err := a.client.StreamResponse(ctx, inv.messages, inv.opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExecution, err)
		}
		es := &EventStream{}
		seq := inv.stream(ctx, first, func(r *Response) { es.response = r })
		es.ResponseStream = NewResponseStream(seq, closerFunc(inv.close))
		return es, nil

	case Request:
		messages, opts := a.prepareRequest(in, cfg)
		first, err := a.client.StreamResponse(ctx, messages, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExecution, err)
		}
		es := &EventStream{}
		seq := func(yield func(StreamEvent, error) bool) {
			result, err := drainIteration(ctx, 1, first, func(ev StreamEvent) bool { return yield(ev, nil) })
			if err != nil {
				if !errors.Is(err, errAbandoned) {
					yield(StreamEvent{}, err)
				}
				return
			}
			resp := result.Response()
			resp.Iterations = 1
			es.response = resp
		}
		es.ResponseStream = NewResponseStream(seq, closerFunc(first.Close))
		return es, nil

	default:
		return nil, fmt.Errorf("%w: unsupported input type %T", ErrAgent, in)
	}
}

func (a *Agent) buildRunConfig(opts []RunOption) *runConfig {
	cfg := &runConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (a *Agent) buildHandler(cfg *runConfig) AgentHandler {
	return func(ctx context.Context, req *AgentRequest) (*Response, error) {
		// Middleware may have replaced the per-call options.
		cfg := &runConfig{tools: cfg.tools, options: req.Options}

		switch in := req.Input.(type) {
		case Prompt:
			inv, err := a.newPromptInvocation(ctx, in, cfg)
			if err != nil {
				return nil, err
			}
			return inv.run(ctx)

		case Request:
			messages, opts := a.prepareRequest(in, cfg)
			slog.DebugContext(ctx, "agent request",
				"agent_id", a.id,
				"message_count", len(messages),
				"tool_count", len(opts.Tools),
			)
			resp, err := a.client.Response(ctx, messages, opts)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrExecution, err)
			}
			resp.Iterations = 1
			return resp, nil

		default:
			return nil, fmt.Errorf("%w: unsupported input type %T", ErrAgent, req.Input)
		}
	}
}

// newPromptInvocation builds the per-call registry, options and transcript
// for a simple-mode run.
func (a *Agent) newPromptInvocation(ctx context.Context, prompt Prompt, cfg *runConfig) (*invocation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	registry := NewRegistry(a.tools...)
	for _, t := range cfg.tools {
		registry.Register(t)
	}
	registry.Use(a.functionMiddleware...)

	// Only registered tools are declared; the loop can execute nothing else.
	opts := a.prepareChatOptions(cfg.options)
	opts.Tools = registry.Specs()

	messages := PrependInstructions([]Message{NewUserMessage(string(prompt))}, opts.Instructions)

	slog.DebugContext(ctx, "agent run",
		"agent_id", a.id,
		"agent_name", a.name,
		"tool_count", registry.Len(),
		"max_iterations", a.invocationConfig.MaxIterations,
	)
	return newInvocation(a.client, registry, messages, opts, a.invocationConfig), nil
}

// prepareRequest resolves the transcript and options for an advanced-mode
// round trip. The caller's messages are copied, never mutated.
func (a *Agent) prepareRequest(req Request, cfg *runConfig) ([]Message, *ChatOptions) {
	opts := a.prepareChatOptions(MergeChatOptions(cfg.options, req.Options))
	opts.Tools = req.Tools
	if req.ToolChoice != "" {
		opts.ToolChoice = req.ToolChoice
	}

	messages := make([]Message, len(req.Messages))
	copy(messages, req.Messages)
	return PrependInstructions(messages, opts.Instructions), opts
}

func (a *Agent) prepareChatOptions(override *ChatOptions) *ChatOptions {
	opts := MergeChatOptions(a.defaultOptions, override)

	if a.instructions != "" {
		if opts.Instructions != "" {
			opts.Instructions = a.instructions + "\n" + opts.Instructions
		} else {
			opts.Instructions = a.instructions
		}
	}
	return opts
}
