// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"encoding/json"

	af "github.com/agentloop/agentloop-go/agentloop"
)

// chatCompletionResponse is the OpenAI Chat Completions API response.
type chatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
	Usage   *usage   `json:"usage,omitempty"`
}

type choice struct {
	Index        int         `json:"index"`
	Message      respMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type respMessage struct {
	Role      string     `json:"role"`
	Content   *string    `json:"content"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
}

// usage accepts both naming schemes for the token details: the
// Responses-style input/output names and the Chat Completions
// prompt/completion names.
type usage struct {
	PromptTokens            int           `json:"prompt_tokens"`
	CompletionTokens        int           `json:"completion_tokens"`
	TotalTokens             int           `json:"total_tokens"`
	InputTokensDetails      *tokenDetails `json:"input_tokens_details,omitempty"`
	OutputTokensDetails     *tokenDetails `json:"output_tokens_details,omitempty"`
	PromptTokensDetails     *tokenDetails `json:"prompt_tokens_details,omitempty"`
	CompletionTokensDetails *tokenDetails `json:"completion_tokens_details,omitempty"`
}

type tokenDetails struct {
	CachedTokens    int `json:"cached_tokens"`
	ReasoningTokens int `json:"reasoning_tokens"`
}

func (u *usage) toUsage() af.Usage {
	out := af.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
	switch {
	case u.InputTokensDetails != nil:
		out.CachedInputTokens = u.InputTokensDetails.CachedTokens
	case u.PromptTokensDetails != nil:
		out.CachedInputTokens = u.PromptTokensDetails.CachedTokens
	}
	switch {
	case u.OutputTokensDetails != nil:
		out.ReasoningTokens = u.OutputTokensDetails.ReasoningTokens
	case u.CompletionTokensDetails != nil:
		out.ReasoningTokens = u.CompletionTokensDetails.ReasoningTokens
	}
	return out
}

// chatCompletionChunk is a single SSE chunk in streaming mode.
type chatCompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []chunkChoice `json:"choices"`
	Usage   *usage        `json:"usage,omitempty"`
}

type chunkChoice struct {
	Index        int        `json:"index"`
	Delta        chunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

type chunkDelta struct {
	Role      string          `json:"role,omitempty"`
	Content   *string         `json:"content,omitempty"`
	ToolCalls []toolCallDelta `json:"tool_calls,omitempty"`
}

// toolCallDelta is a tool call fragment. Only index is always present.
type toolCallDelta struct {
	Index    int          `json:"index"`
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"`
	Function functionCall `json:"function"`
}

// parseChatResponse converts the OpenAI response into framework types.
func parseChatResponse(raw *chatCompletionResponse) *af.Response {
	resp := &af.Response{
		ID:    raw.ID,
		Model: raw.Model,
	}

	if raw.Usage != nil {
		resp.Usage = raw.Usage.toUsage()
	}

	for _, c := range raw.Choices {
		msg := af.Message{Role: af.Role(c.Message.Role)}
		if msg.Role == "" {
			msg.Role = af.RoleAssistant
		}
		if c.Message.Content != nil {
			msg.Content = *c.Message.Content
		}
		for _, tc := range c.Message.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, af.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		resp.Choices = append(resp.Choices, af.Choice{
			Index:        c.Index,
			Message:      msg,
			FinishReason: mapFinishReason(c.FinishReason),
		})
	}

	return resp
}

// parseChunk converts a streaming chunk into a ResponseUpdate. Only the
// first choice is surfaced.
func parseChunk(chunk *chatCompletionChunk) *af.ResponseUpdate {
	update := &af.ResponseUpdate{
		ID:    chunk.ID,
		Model: chunk.Model,
	}

	if chunk.Usage != nil {
		u := chunk.Usage.toUsage()
		update.Usage = &u
	}

	if len(chunk.Choices) > 0 {
		c := chunk.Choices[0]

		if c.Delta.Role != "" {
			update.Role = af.Role(c.Delta.Role)
		}

		if c.FinishReason != nil {
			update.FinishReason = mapFinishReason(*c.FinishReason)
		}

		if c.Delta.Content != nil {
			update.Content = *c.Delta.Content
		}

		for _, tc := range c.Delta.ToolCalls {
			update.ToolCalls = append(update.ToolCalls, af.ToolCallDelta{
				Index:     tc.Index,
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
	}

	return update
}

// unmarshalChatResponse parses the JSON response body.
func unmarshalChatResponse(data []byte) (*chatCompletionResponse, error) {
	var resp chatCompletionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func mapFinishReason(s string) af.FinishReason {
	switch s {
	case "stop":
		return af.FinishReasonStop
	case "length":
		return af.FinishReasonLength
	case "tool_calls":
		return af.FinishReasonToolCalls
	case "content_filter":
		return af.FinishReasonContentFilter
	default:
		return af.FinishReason(s)
	}
}
