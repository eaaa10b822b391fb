// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"encoding/json"
	"strings"

	af "github.com/agentloop/agentloop-go/agentloop"
)

// chatRequest is the OpenAI Chat Completions API request body.
type chatRequest struct {
	Model            string            `json:"model"`
	Messages         []chatMessage     `json:"messages"`
	Temperature      *float64          `json:"temperature,omitempty"`
	TopP             *float64          `json:"top_p,omitempty"`
	MaxTokens        *int              `json:"max_completion_tokens,omitempty"`
	Stop             []string          `json:"stop,omitempty"`
	Seed             *int              `json:"seed,omitempty"`
	FrequencyPenalty *float64          `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64          `json:"presence_penalty,omitempty"`
	Tools            []toolSpec        `json:"tools,omitempty"`
	ToolChoice       any               `json:"tool_choice,omitempty"`
	User             string            `json:"user,omitempty"`
	Stream           bool              `json:"stream"`
	StreamOptions    *streamOptions    `json:"stream_options,omitempty"`
	ResponseFormat   any               `json:"response_format,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type chatMessage struct {
	Role       string     `json:"role"`
	Content    *string    `json:"content,omitempty"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

type toolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function functionCall `json:"function"`
}

type functionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type toolSpec struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type functionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// buildRequest converts framework types into an OpenAI API request.
func buildRequest(messages []af.Message, opts *af.ChatOptions, defaultModel string) *chatRequest {
	req := &chatRequest{
		Model: defaultModel,
	}
	if opts != nil {
		if opts.ModelID != "" {
			req.Model = opts.ModelID
		}
		req.Temperature = opts.Temperature
		req.TopP = opts.TopP
		req.MaxTokens = opts.MaxTokens
		req.Stop = opts.Stop
		req.Seed = opts.Seed
		req.FrequencyPenalty = opts.FrequencyPenalty
		req.PresencePenalty = opts.PresencePenalty
		req.User = opts.User
		req.Metadata = opts.Metadata
		req.ResponseFormat = opts.ResponseFormat
		req.Tools = convertTools(opts.Tools)

		// tool_choice without tools is rejected by the API.
		if len(req.Tools) > 0 {
			req.ToolChoice = convertToolChoice(opts.ToolChoice)
		}
	}

	req.Messages = convertMessages(messages)
	return req
}

func convertTools(specs []af.ToolSpec) []toolSpec {
	if len(specs) == 0 {
		return nil
	}
	out := make([]toolSpec, 0, len(specs))
	for _, t := range specs {
		out = append(out, toolSpec{
			Type: "function",
			Function: functionSpec{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

// convertMessages translates framework Messages into OpenAI chat messages.
func convertMessages(messages []af.Message) []chatMessage {
	result := make([]chatMessage, 0, len(messages))

	for _, msg := range messages {
		cm := chatMessage{Role: string(msg.Role)}

		switch msg.Role {
		case af.RoleTool:
			// The API requires content on tool messages, even when empty.
			content := msg.Content
			cm.Content = &content
			cm.ToolCallID = msg.ToolCallID

		case af.RoleAssistant:
			if msg.Content != "" {
				content := msg.Content
				cm.Content = &content
			}
			for _, tc := range msg.ToolCalls {
				cm.ToolCalls = append(cm.ToolCalls, toolCall{
					ID:   tc.ID,
					Type: "function",
					Function: functionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}

		default:
			content := msg.Content
			cm.Content = &content
		}

		result = append(result, cm)
	}

	return result
}

func convertToolChoice(tc af.ToolChoice) any {
	if tc == "" {
		return nil
	}
	switch tc {
	case af.ToolChoiceAuto:
		return "auto"
	case af.ToolChoiceRequired:
		return "required"
	case af.ToolChoiceNone:
		return "none"
	default:
		if name, ok := strings.CutPrefix(string(tc), "function:"); ok && name != "" {
			return map[string]any{
				"type": "function",
				"function": map[string]string{
					"name": name,
				},
			}
		}
		return string(tc)
	}
}
