// Copyright (c) Microsoft. All rights reserved.

package agentloop

// Role identifies the author of a [Message].
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// FinishReason indicates why the model stopped generating.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonToolCalls     FinishReason = "tool_calls"
	FinishReasonContentFilter FinishReason = "content_filter"
)

// ToolCall is a complete tool invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON-encoded arguments
}

// Message is a single entry in a conversation transcript.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// NewUserMessage creates a user-role [Message] from a text string.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// NewAssistantMessage creates an assistant-role [Message] from a text string.
func NewAssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// NewSystemMessage creates a system-role [Message] from a text string.
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// NewToolCallMessage creates the assistant message that carries the tool
// calls of one iteration. Content is whatever text the model produced
// alongside the calls, usually empty.
func NewToolCallMessage(content string, calls []ToolCall) Message {
	cp := make([]ToolCall, len(calls))
	copy(cp, calls)
	return Message{Role: RoleAssistant, Content: content, ToolCalls: cp}
}

// NewToolMessage creates a tool-role [Message] answering the call with callID.
func NewToolMessage(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}

// PrependInstructions inserts a system message at the beginning of the message
// list if instructions are non-empty and no system message already exists.
func PrependInstructions(messages []Message, instructions string) []Message {
	if instructions == "" {
		return messages
	}
	for _, m := range messages {
		if m.Role == RoleSystem {
			return messages
		}
	}
	return append([]Message{NewSystemMessage(instructions)}, messages...)
}
