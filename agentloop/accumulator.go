// Copyright (c) Microsoft. All rights reserved.

package agentloop

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// IterationResult is what one model round trip produced once all of its
// streamed frames have been folded together.
type IterationResult struct {
	ID           string
	Model        string
	Role         Role
	Content      string
	FinishReason FinishReason
	ToolCalls    []ToolCall
	Usage        Usage
}

// Response wraps the result as a single-choice [Response].
func (r IterationResult) Response() *Response {
	return &Response{
		ID:    r.ID,
		Model: r.Model,
		Choices: []Choice{{
			Message: Message{
				Role:      r.Role,
				Content:   r.Content,
				ToolCalls: r.ToolCalls,
			},
			FinishReason: r.FinishReason,
		}},
		Usage: r.Usage,
	}
}

// partialToolCall tracks a tool call being assembled from streaming deltas.
// The first delta for an index fixes id and name; later deltas only extend
// the arguments.
type partialToolCall struct {
	id        string
	name      string
	arguments strings.Builder
}

// DeltaAccumulator folds the [ResponseUpdate] frames of one iteration into
// an [IterationResult]. It is not safe for concurrent use.
type DeltaAccumulator struct {
	id           string
	model        string
	role         Role
	content      strings.Builder
	finishReason FinishReason
	usage        Usage
	calls        map[int]*partialToolCall
}

// NewDeltaAccumulator returns an empty accumulator.
func NewDeltaAccumulator() *DeltaAccumulator {
	return &DeltaAccumulator{calls: make(map[int]*partialToolCall)}
}

// Add folds one frame into the accumulated state.
func (a *DeltaAccumulator) Add(u ResponseUpdate) {
	if u.ID != "" {
		a.id = u.ID
	}
	if u.Model != "" {
		a.model = u.Model
	}
	// Every non-empty role overwrites the previous one.
	if u.Role != "" {
		a.role = u.Role
	}
	a.content.WriteString(u.Content)
	if u.FinishReason != "" {
		a.finishReason = u.FinishReason
	}
	// Usage reported on a later frame replaces earlier reports; it is the
	// total for this response, not an increment.
	if u.Usage != nil {
		a.usage = *u.Usage
	}

	for _, d := range u.ToolCalls {
		partial, ok := a.calls[d.Index]
		if !ok {
			partial = &partialToolCall{id: d.ID, name: d.Name}
			a.calls[d.Index] = partial
		}
		partial.arguments.WriteString(d.Arguments)
	}
}

// Result finalizes the accumulated state. Tool calls are ordered by index
// regardless of arrival order. Argument strings are not validated here.
func (a *DeltaAccumulator) Result() IterationResult {
	res := IterationResult{
		ID:           a.id,
		Model:        a.model,
		Role:         a.role,
		Content:      a.content.String(),
		FinishReason: a.finishReason,
		Usage:        a.usage,
	}
	if res.Role == "" {
		res.Role = RoleAssistant
	}

	indexes := make([]int, 0, len(a.calls))
	for idx := range a.calls {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	for _, idx := range indexes {
		partial := a.calls[idx]
		id := partial.id
		if id == "" {
			id = newCallID()
			partial.id = id
		}
		res.ToolCalls = append(res.ToolCalls, ToolCall{
			ID:        id,
			Name:      partial.name,
			Arguments: partial.arguments.String(),
		})
	}
	return res
}

// newCallID returns a synthetic tool call id for providers that omit one.
func newCallID() string { return "call_" + uuid.NewString() }
