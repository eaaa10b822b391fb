// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"context"
	"fmt"
	"io"
	"net/http"

	af "github.com/agentloop/agentloop-go/agentloop"
)

const completionsPath = "/chat/completions"

// Client implements [af.ChatClient] using the OpenAI Chat Completions API.
// Use [New] to create one. A Client is safe for concurrent use.
type Client struct {
	tp      transport
	model   string
	handler af.ChatHandler
}

// Verify interface compliance at compile time.
var _ af.ChatClient = (*Client)(nil)

// New creates an OpenAI [Client] with the given API key and options.
//
//	client := openai.New(os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o-mini"),
//	)
func New(apiKey string, opts ...Option) *Client {
	cfg := &clientOptions{}
	for _, o := range opts {
		o(cfg)
	}
	c := &Client{
		tp:    newHTTPTransport(apiKey, cfg),
		model: cfg.model,
	}
	c.handler = af.ChainChatMiddleware(c.coreResponse, cfg.chatMiddleware...)
	return c
}

// Response sends a non-streaming chat completion request and returns the
// complete response.
func (c *Client) Response(ctx context.Context, messages []af.Message, opts *af.ChatOptions) (*af.Response, error) {
	return c.handler(ctx, messages, opts)
}

// coreResponse is the base implementation called by the middleware chain.
func (c *Client) coreResponse(ctx context.Context, messages []af.Message, opts *af.ChatOptions) (*af.Response, error) {
	req := buildRequest(messages, opts, c.model)

	resp, err := c.tp.do(ctx, http.MethodPost, completionsPath, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &af.TransportError{Op: "read response body", Err: err}
	}

	raw, err := unmarshalChatResponse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", af.ErrInvalidResponse, err)
	}

	result := parseChatResponse(raw)
	result.Raw = raw
	return result, nil
}

// StreamResponse sends a streaming chat completion request and returns a
// [af.ResponseStream] of decoded frames. A rejected request is returned as
// an error here; the response body is closed when the stream ends, fails,
// or is closed.
func (c *Client) StreamResponse(ctx context.Context, messages []af.Message, opts *af.ChatOptions) (*af.ResponseStream[af.ResponseUpdate], error) {
	req := buildRequest(messages, opts, c.model)
	req.Stream = true
	req.StreamOptions = &streamOptions{IncludeUsage: true}

	resp, err := c.tp.do(ctx, http.MethodPost, completionsPath, req)
	if err != nil {
		return nil, err
	}

	dec := newSSEDecoder(resp.Body)
	seq := func(yield func(af.ResponseUpdate, error) bool) {
		for chunk, err := range dec.chunks(ctx) {
			if err != nil {
				yield(af.ResponseUpdate{}, err)
				return
			}
			update := parseChunk(chunk)
			update.Raw = chunk
			if !yield(*update, nil) {
				return
			}
		}
	}

	return af.NewResponseStream(seq, resp.Body), nil
}
