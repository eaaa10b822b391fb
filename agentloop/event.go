// Copyright (c) Microsoft. All rights reserved.

package agentloop

import "context"

// EventType discriminates [StreamEvent] variants.
type EventType string

const (
	// EventChunk carries one decoded frame, surfaced as soon as it arrives.
	EventChunk EventType = "chunk"
	// EventToolStart is emitted before a tool call executes.
	EventToolStart EventType = "tool_start"
	// EventToolResult is emitted once a tool call has produced its result.
	EventToolResult EventType = "tool_result"
	// EventIterationComplete closes an iteration that executed tools.
	EventIterationComplete EventType = "iteration_complete"
)

// StreamEvent is one element of a streaming agent run.
//
// Update is set for chunk events. ToolCall is set for tool_start and
// tool_result events, Result for tool_result only. Usage on
// iteration_complete holds the running totals so far.
type StreamEvent struct {
	Type      EventType
	Iteration int
	Update    *ResponseUpdate
	ToolCall  *ToolCall
	Result    *ToolResult
	Usage     Usage
}

// Text returns the content fragment of a chunk event.
func (e StreamEvent) Text() string {
	if e.Update == nil {
		return ""
	}
	return e.Update.Content
}

// EventStream is the event sequence of a streaming agent run. Once it has
// been drained without error, Response returns the final result.
type EventStream struct {
	*ResponseStream[StreamEvent]
	response *Response
}

// Response returns the final response, or nil while the stream is still
// running or if it failed or was abandoned.
func (s *EventStream) Response() *Response { return s.response }

// FinalResponse drains any remaining events and returns the final response.
func (s *EventStream) FinalResponse(ctx context.Context) (*Response, error) {
	if _, err := s.Collect(ctx); err != nil {
		return nil, err
	}
	if s.response == nil {
		return nil, ErrStreamClosed
	}
	return s.response, nil
}
