// Copyright (c) Microsoft. All rights reserved.

package agentloop

import "context"

// ChatClient is the interface for interacting with an LLM backend.
// Provider packages (e.g., openai) implement this interface.
type ChatClient interface {
	// Response sends messages to the model and returns a complete response.
	Response(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error)

	// StreamResponse sends messages and returns a stream of decoded frames.
	// A non-success status is reported here, before the stream exists.
	StreamResponse(ctx context.Context, messages []Message, opts *ChatOptions) (*ResponseStream[ResponseUpdate], error)
}
