// Copyright (c) Microsoft. All rights reserved.

// Package openai provides an [agentloop.ChatClient] implementation for the
// OpenAI Chat Completions API and compatible endpoints.
//
// Create a client and pass it to [agentloop.NewAgent]:
//
//	client := openai.New(os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o-mini"),
//	)
//
//	agent := agentloop.NewAgent(client)
//
// The client supports buffered and streaming responses and tool calling.
// Streaming responses are decoded from server-sent events; the HTTP body is
// released as soon as the stream finishes, fails, or is closed.
//
// # Configuration
//
// Use functional options to configure the client:
//
//   - [WithModel]: set the default model
//   - [WithBaseURL]: override the API endpoint (e.g., Azure OpenAI)
//   - [WithAzureCredential]: authenticate with an Azure AD token
//   - [WithOrganization]: set the OpenAI organization header
//   - [WithHTTPClient]: provide a custom http.Client
//   - [WithHeaders]: add custom headers to every request
//   - [WithChatMiddleware]: wrap buffered requests
//
// # Errors
//
// A status of 400 or above surfaces as [agentloop.RequestError] carrying the
// raw body. Network and mid-stream read failures surface as
// [agentloop.TransportError].
//
// # Testing
//
// The client uses an unexported transport interface internally.
// For testing, provide a mock http.Client via [WithHTTPClient]
// with a custom RoundTripper.
package openai
