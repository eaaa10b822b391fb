// Copyright (c) Microsoft. All rights reserved.

package agentloop

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// ToolResult is the outcome of executing one tool call. Failures are
// reported through Err and an error payload in Content, never as a Go error,
// so a tool message can always be appended to the conversation.
type ToolResult struct {
	CallID  string
	Name    string
	Content string
	Value   any
	Err     *ToolError
}

// Message returns the tool-role message that answers the call.
func (r ToolResult) Message() Message {
	return NewToolMessage(r.CallID, r.Content)
}

// Registry maps tool names to tools for the duration of one run.
//
// Duplicate names resolve to the last registration, which keeps the
// position of the first one.
type Registry struct {
	tools      map[string]Tool
	order      []string
	middleware []FunctionMiddleware
}

// NewRegistry builds a registry from tools, registered in order.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds t, replacing any tool already registered under its name.
func (r *Registry) Register(t Tool) {
	if t == nil {
		return
	}
	name := t.Name()
	if _, exists := r.tools[name]; exists {
		slog.Warn("tool registered twice, keeping the last registration", "tool", name)
	} else {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Use appends function middleware that wraps every handler invocation.
func (r *Registry) Use(mws ...FunctionMiddleware) {
	r.middleware = append(r.middleware, mws...)
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.order) }

// Specs returns the wire projection of every tool in registration order.
func (r *Registry) Specs() []ToolSpec {
	if len(r.order) == 0 {
		return nil
	}
	specs := make([]ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, SpecOf(r.tools[name]))
	}
	return specs
}

// Execute decodes, validates, and runs one tool call.
func (r *Registry) Execute(ctx context.Context, call ToolCall) ToolResult {
	res := ToolResult{CallID: call.ID, Name: call.Name}

	tool, ok := r.tools[call.Name]
	if !ok {
		slog.WarnContext(ctx, "unknown tool called", "tool", call.Name, "call_id", call.ID)
		return res.fail(ToolErrorUnknownTool, fmt.Sprintf("unknown tool %q", call.Name), nil)
	}

	var raw any
	// Models omit arguments for parameterless calls.
	args := call.Arguments
	if args == "" {
		args = "{}"
	}
	if err := json.Unmarshal([]byte(args), &raw); err != nil {
		return res.fail(ToolErrorArgumentDecode, "invalid JSON arguments: "+err.Error(), err)
	}

	refined, err := tool.Validate(raw)
	if err != nil {
		return res.fail(ToolErrorValidation, err.Error(), err)
	}

	value, err := r.invoke(ctx, tool, refined)
	if err != nil {
		return res.fail(ToolErrorHandler, err.Error(), err)
	}

	content, err := marshalResult(value)
	if err != nil {
		return res.fail(ToolErrorHandler, "encode result: "+err.Error(), err)
	}
	res.Value = value
	res.Content = content
	slog.DebugContext(ctx, "tool executed", "tool", call.Name, "call_id", call.ID)
	return res
}

// invoke runs the handler through the function middleware. A panic in the
// handler or a middleware is reported as an error.
func (r *Registry) invoke(ctx context.Context, tool Tool, args any) (value any, err error) {
	defer func() {
		if p := recover(); p != nil {
			slog.ErrorContext(ctx, "tool handler panicked", "tool", tool.Name(), "panic", p)
			value, err = nil, fmt.Errorf("panic: %v", p)
		}
	}()

	handler := chainFunctionMiddleware(func(ctx context.Context, t Tool, a any) (any, error) {
		return t.Invoke(ctx, a)
	}, r.middleware...)
	return handler(ctx, tool, args)
}

func (r ToolResult) fail(kind ToolErrorKind, msg string, cause error) ToolResult {
	r.Err = &ToolError{
		Kind:     kind,
		ToolName: r.Name,
		CallID:   r.CallID,
		Message:  msg,
		Err:      cause,
	}
	payload, _ := json.Marshal(struct {
		Error   ToolErrorKind `json:"error"`
		Message string        `json:"message"`
	}{kind, msg})
	r.Content = string(payload)
	return r
}

// marshalResult renders a handler's return value as tool message content.
func marshalResult(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	return string(b), err
}
