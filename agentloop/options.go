// Copyright (c) Microsoft. All rights reserved.

package agentloop

import "maps"

// ToolChoice controls how the model selects tools.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceRequired ToolChoice = "required"
	ToolChoiceNone     ToolChoice = "none"
)

// ToolChoiceFunction returns a ToolChoice that forces the model to call
// the named function.
func ToolChoiceFunction(name string) ToolChoice {
	return ToolChoice("function:" + name)
}

// ChatOptions configures a single chat completion request.
// Pointer fields use nil to represent "unset" (use provider default).
type ChatOptions struct {
	ModelID          string
	Temperature      *float64
	TopP             *float64
	MaxTokens        *int
	Stop             []string
	Seed             *int
	FrequencyPenalty *float64
	PresencePenalty  *float64
	Tools            []ToolSpec
	ToolChoice       ToolChoice
	ResponseFormat   any // JSON Schema object or struct type descriptor
	Metadata         map[string]string
	User             string
	Instructions     string
}

// MergeChatOptions produces a new ChatOptions by overlaying override values
// onto base. Nil or zero-value fields in override do not overwrite base.
// Tools are merged by name: an override tool replaces the same-named base
// tool in place, new ones are appended. Metadata is merged into a fresh map
// with override keys winning. Instructions are concatenated.
func MergeChatOptions(base, override *ChatOptions) *ChatOptions {
	var merged ChatOptions
	if base != nil {
		merged = *base
	}
	if override == nil {
		return &merged
	}

	overlay(&merged.ModelID, override.ModelID)
	overlay(&merged.Temperature, override.Temperature)
	overlay(&merged.TopP, override.TopP)
	overlay(&merged.MaxTokens, override.MaxTokens)
	overlay(&merged.Seed, override.Seed)
	overlay(&merged.FrequencyPenalty, override.FrequencyPenalty)
	overlay(&merged.PresencePenalty, override.PresencePenalty)
	overlay(&merged.ToolChoice, override.ToolChoice)
	overlay(&merged.User, override.User)
	if len(override.Stop) > 0 {
		merged.Stop = override.Stop
	}
	if override.ResponseFormat != nil {
		merged.ResponseFormat = override.ResponseFormat
	}

	merged.Instructions = joinInstructions(merged.Instructions, override.Instructions)
	merged.Tools = mergeToolSpecs(merged.Tools, override.Tools)
	merged.Metadata = mergeMetadata(merged.Metadata, override.Metadata)
	return &merged
}

// overlay replaces *dst with v unless v is the zero value.
func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

func joinInstructions(base, extra string) string {
	switch {
	case extra == "":
		return base
	case base == "":
		return extra
	default:
		return base + "\n" + extra
	}
}

func mergeToolSpecs(base, override []ToolSpec) []ToolSpec {
	if len(override) == 0 {
		return base
	}
	out := make([]ToolSpec, 0, len(base)+len(override))
	pos := make(map[string]int, len(base)+len(override))
	for _, list := range [][]ToolSpec{base, override} {
		for _, t := range list {
			if i, ok := pos[t.Name]; ok {
				out[i] = t
				continue
			}
			pos[t.Name] = len(out)
			out = append(out, t)
		}
	}
	return out
}

func mergeMetadata(base, override map[string]string) map[string]string {
	if len(override) == 0 {
		return base
	}
	md := make(map[string]string, len(base)+len(override))
	maps.Copy(md, base)
	maps.Copy(md, override)
	return md
}
