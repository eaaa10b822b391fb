// Copyright (c) Microsoft. All rights reserved.

package agentloop

import "context"

// AgentHandler is the function signature for processing a buffered agent run.
type AgentHandler func(ctx context.Context, req *AgentRequest) (*Response, error)

// AgentRequest carries the inputs for an agent run through the middleware pipeline.
type AgentRequest struct {
	Input   Input
	Options *ChatOptions
}

// AgentMiddleware wraps an [AgentHandler] to add cross-cutting behavior.
// Middleware should call next to continue the chain, or return early to short-circuit.
type AgentMiddleware func(next AgentHandler) AgentHandler

// ChatHandler is the function signature for processing a chat request.
type ChatHandler func(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error)

// ChatMiddleware wraps a [ChatHandler] to add cross-cutting behavior.
// Provider packages apply it around their buffered request path.
type ChatMiddleware func(next ChatHandler) ChatHandler

// FunctionHandler is the function signature for invoking a tool with
// validated arguments.
type FunctionHandler func(ctx context.Context, tool Tool, args any) (any, error)

// FunctionMiddleware wraps a [FunctionHandler] to add cross-cutting behavior.
type FunctionMiddleware func(next FunctionHandler) FunctionHandler

// chainAgentMiddleware applies middleware in order (first in list = outermost wrapper).
func chainAgentMiddleware(handler AgentHandler, mws ...AgentMiddleware) AgentHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}

// ChainChatMiddleware applies middleware in order (first in list = outermost wrapper).
func ChainChatMiddleware(handler ChatHandler, mws ...ChatMiddleware) ChatHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}

// chainFunctionMiddleware applies middleware in order.
func chainFunctionMiddleware(handler FunctionHandler, mws ...FunctionMiddleware) FunctionHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}
