// Copyright (c) Microsoft. All rights reserved.

package agentloop

// Usage holds token consumption statistics for a model response, or the
// running totals of an agent run.
type Usage struct {
	PromptTokens      int `json:"prompt_tokens,omitempty"`
	CompletionTokens  int `json:"completion_tokens,omitempty"`
	TotalTokens       int `json:"total_tokens,omitempty"`
	CachedInputTokens int `json:"cached_input_tokens,omitempty"`
	ReasoningTokens   int `json:"reasoning_tokens,omitempty"`
}

// Add accumulates other into u field by field.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
	u.CachedInputTokens += other.CachedInputTokens
	u.ReasoningTokens += other.ReasoningTokens
}

// IsZero reports whether no counter is set.
func (u Usage) IsZero() bool {
	return u == Usage{}
}
