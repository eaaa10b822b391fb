// Copyright (c) Microsoft. All rights reserved.

package agentloop

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrAgent is the base error for agent-related failures.
	ErrAgent = errors.New("agent error")

	// ErrExecution indicates a runtime failure during agent execution.
	ErrExecution = fmt.Errorf("%w: execution", ErrAgent)

	// ErrMaxIterations indicates the tool-calling loop hit its iteration cap
	// while the model was still requesting tools.
	ErrMaxIterations = fmt.Errorf("%w: max iterations reached", ErrExecution)

	// ErrStreamClosed is returned by Next after a stream has been closed.
	ErrStreamClosed = errors.New("stream closed")

	// ErrService is the base error for backend service failures.
	ErrService = errors.New("service error")

	// ErrContentFilter indicates the request was rejected by a content filter.
	ErrContentFilter = fmt.Errorf("%w: content filter", ErrService)

	// ErrInvalidRequest indicates the request was malformed or invalid.
	ErrInvalidRequest = fmt.Errorf("%w: invalid request", ErrService)

	// ErrInvalidResponse indicates the service returned an unexpected response.
	ErrInvalidResponse = fmt.Errorf("%w: invalid response", ErrService)

	// ErrAuth indicates an authentication or authorization failure.
	ErrAuth = fmt.Errorf("%w: authentication", ErrService)

	// ErrTransport indicates a network or read failure while talking to the service.
	ErrTransport = errors.New("transport error")

	// ErrTool is the base error for tool-related failures.
	ErrTool = errors.New("tool error")

	// ErrToolExecution indicates a failure during tool invocation.
	ErrToolExecution = fmt.Errorf("%w: execution", ErrTool)
)

// RequestError is returned when the service answers with a non-success
// status before any streaming begins. Use errors.As to extract it from a
// wrapped error chain.
type RequestError struct {
	StatusCode int
	Message    string
	Code       string
	Body       []byte
	Err        error
}

func (e *RequestError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("request failed with status %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

func (e *RequestError) Unwrap() error { return e.Err }

// TransportError wraps a network or body read failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// MaxIterationsError terminates a run whose model kept requesting tools
// after Limit iterations. No partial result accompanies it.
type MaxIterationsError struct {
	Limit int
}

func (e *MaxIterationsError) Error() string {
	return fmt.Sprintf("max tool iterations reached (%d)", e.Limit)
}

func (e *MaxIterationsError) Unwrap() error { return ErrMaxIterations }

// ToolErrorKind classifies a failed tool execution.
type ToolErrorKind string

const (
	ToolErrorUnknownTool    ToolErrorKind = "unknown_tool"
	ToolErrorArgumentDecode ToolErrorKind = "argument_decode"
	ToolErrorValidation     ToolErrorKind = "validation"
	ToolErrorHandler        ToolErrorKind = "handler"
)

// ToolError provides context for tool invocation failures. The executor
// reports it inside a [ToolResult]; it is never returned from a run.
type ToolError struct {
	Kind     ToolErrorKind
	ToolName string
	CallID   string
	Message  string
	Err      error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %q: %s: %s", e.ToolName, e.Kind, e.Message)
}

func (e *ToolError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrToolExecution, e.Err}
	}
	return []error{ErrToolExecution}
}
