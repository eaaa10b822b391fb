// Copyright (c) Microsoft. All rights reserved.

package agentloop

import (
	"context"
	"log/slog"
	"time"
)

// LoggingMiddleware returns an [AgentMiddleware] that logs agent runs using slog.
func LoggingMiddleware(logger *slog.Logger) AgentMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next AgentHandler) AgentHandler {
		return func(ctx context.Context, req *AgentRequest) (*Response, error) {
			start := time.Now()
			logger.InfoContext(ctx, "agent run started",
				"mode", inputMode(req.Input),
			)

			resp, err := next(ctx, req)

			duration := time.Since(start)
			if err != nil {
				logger.ErrorContext(ctx, "agent run failed",
					"duration", duration,
					"error", err,
				)
				return nil, err
			}

			finish, _ := resp.FinishReason()
			logger.InfoContext(ctx, "agent run completed",
				"duration", duration,
				"iterations", resp.Iterations,
				"finish_reason", finish,
				"prompt_tokens", resp.Usage.PromptTokens,
				"completion_tokens", resp.Usage.CompletionTokens,
				"total_tokens", resp.Usage.TotalTokens,
			)
			return resp, nil
		}
	}
}

func inputMode(in Input) string {
	switch in.(type) {
	case Prompt:
		return "simple"
	case Request:
		return "advanced"
	default:
		return "unknown"
	}
}
