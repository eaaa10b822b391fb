// Copyright (c) Microsoft. All rights reserved.

package agentloop

// Choice is one completion alternative returned by the model.
type Choice struct {
	Index        int
	Message      Message
	FinishReason FinishReason
}

// Response is the finalized result of a model call or of a whole agent run.
//
// For agent runs, Choices come from the final iteration while Usage holds
// the totals accumulated across every iteration. All convenience views read
// choice 0 only.
type Response struct {
	ID         string
	Model      string
	Choices    []Choice
	Usage      Usage
	Iterations int
	Raw        any
}

// Message returns the message of the primary choice, or nil if there is none.
func (r *Response) Message() *Message {
	if r == nil || len(r.Choices) == 0 {
		return nil
	}
	return &r.Choices[0].Message
}

// Text returns the primary choice's text. ok is false when there is no
// choice or the choice carries no content.
func (r *Response) Text() (text string, ok bool) {
	m := r.Message()
	if m == nil || m.Content == "" {
		return "", false
	}
	return m.Content, true
}

// FinishReason returns the primary choice's finish reason, if reported.
func (r *Response) FinishReason() (FinishReason, bool) {
	if r == nil || len(r.Choices) == 0 || r.Choices[0].FinishReason == "" {
		return "", false
	}
	return r.Choices[0].FinishReason, true
}

// ToolCalls returns the primary choice's tool calls, or nil if there are none.
func (r *Response) ToolCalls() []ToolCall {
	m := r.Message()
	if m == nil || len(m.ToolCalls) == 0 {
		return nil
	}
	return m.ToolCalls
}

// ToolCallDelta is a fragment of a tool call received while streaming.
// Index keys the call within one response; the remaining fields are present
// only on the frames that carry them.
type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// ResponseUpdate is one decoded streaming frame, mapped to framework types.
type ResponseUpdate struct {
	ID           string
	Model        string
	Role         Role
	Content      string
	ToolCalls    []ToolCallDelta
	FinishReason FinishReason
	Usage        *Usage
	Raw          any
}
