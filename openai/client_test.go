// Copyright (c) Microsoft. All rights reserved.

package openai_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	af "github.com/agentloop/agentloop-go/agentloop"
	"github.com/agentloop/agentloop-go/openai"
)

// mockTransportFunc is a RoundTripper that delegates to a function.
type mockTransportFunc func(*http.Request) (*http.Response, error)

func (f mockTransportFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newMockHTTPClient(fn func(*http.Request) (*http.Response, error)) *http.Client {
	return &http.Client{Transport: mockTransportFunc(fn)}
}

func jsonResponse(status int, body any) *http.Response {
	b, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(b)),
	}
}

// trackingBody records whether the response body was closed.
type trackingBody struct {
	io.Reader
	closed int
}

func (b *trackingBody) Close() error {
	b.closed++
	return nil
}

func sseResponse(body *trackingBody) *http.Response {
	return &http.Response{
		StatusCode: 200,
		Header:     http.Header{"Content-Type": []string{"text/event-stream"}},
		Body:       body,
	}
}

func okResponse() *http.Response {
	return jsonResponse(200, map[string]any{
		"id": "chatcmpl-1", "model": "gpt-4o",
		"choices": []map[string]any{{
			"index": 0, "finish_reason": "stop",
			"message": map[string]any{"role": "assistant", "content": "ok"},
		}},
	})
}

func TestClient_Response_Basic(t *testing.T) {
	content := "Paris is the capital of France."
	apiResp := map[string]any{
		"id":     "chatcmpl-123",
		"object": "chat.completion",
		"model":  "gpt-4o",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message": map[string]any{
				"role":    "assistant",
				"content": content,
			},
		}},
		"usage": map[string]any{
			"prompt_tokens":     10,
			"completion_tokens": 8,
			"total_tokens":      18,
			"input_tokens_details": map[string]any{
				"cached_tokens": 4,
			},
			"output_tokens_details": map[string]any{
				"reasoning_tokens": 2,
			},
		},
	}

	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		if req.Method != "POST" {
			t.Errorf("method = %q", req.Method)
		}
		if req.URL.String() != "https://api.openai.com/v1/chat/completions" {
			t.Errorf("url = %q", req.URL.String())
		}
		if req.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("auth = %q", req.Header.Get("Authorization"))
		}

		body, _ := io.ReadAll(req.Body)
		var reqBody map[string]any
		json.Unmarshal(body, &reqBody)
		if reqBody["model"] != "gpt-4o" {
			t.Errorf("request model = %v", reqBody["model"])
		}
		if reqBody["stream"] != false {
			t.Errorf("stream = %v", reqBody["stream"])
		}
		if _, ok := reqBody["tools"]; ok {
			t.Errorf("tools sent without any declared")
		}

		return jsonResponse(200, apiResp), nil
	})

	client := openai.New("test-key",
		openai.WithModel("gpt-4o"),
		openai.WithHTTPClient(httpClient),
	)

	resp, err := client.Response(context.Background(),
		[]af.Message{af.NewUserMessage("What is the capital of France?")},
		nil,
	)
	if err != nil {
		t.Fatalf("Response: %v", err)
	}

	if resp.ID != "chatcmpl-123" {
		t.Errorf("ID = %q", resp.ID)
	}
	if resp.Model != "gpt-4o" {
		t.Errorf("Model = %q", resp.Model)
	}
	if fr, _ := resp.FinishReason(); fr != af.FinishReasonStop {
		t.Errorf("FinishReason = %q", fr)
	}
	want := af.Usage{PromptTokens: 10, CompletionTokens: 8, TotalTokens: 18, CachedInputTokens: 4, ReasoningTokens: 2}
	if resp.Usage != want {
		t.Errorf("Usage = %+v, want %+v", resp.Usage, want)
	}
	if text, ok := resp.Text(); !ok || text != content {
		t.Errorf("Text = %q, %v", text, ok)
	}
	if resp.ToolCalls() != nil {
		t.Errorf("ToolCalls = %v, want nil", resp.ToolCalls())
	}
}

func TestClient_Response_UsageDetailsFallback(t *testing.T) {
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, map[string]any{
			"id": "chatcmpl-1", "model": "gpt-4o",
			"choices": []map[string]any{{
				"index": 0, "finish_reason": "stop",
				"message": map[string]any{"role": "assistant", "content": "ok"},
			}},
			"usage": map[string]any{
				"prompt_tokens": 3, "completion_tokens": 5, "total_tokens": 8,
				"prompt_tokens_details":     map[string]any{"cached_tokens": 1},
				"completion_tokens_details": map[string]any{"reasoning_tokens": 4},
			},
		}), nil
	})

	client := openai.New("test-key", openai.WithHTTPClient(httpClient))
	resp, err := client.Response(context.Background(), []af.Message{af.NewUserMessage("hi")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Usage.CachedInputTokens != 1 || resp.Usage.ReasoningTokens != 4 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
}

func TestClient_Response_ToolCalls(t *testing.T) {
	apiResp := map[string]any{
		"id":    "chatcmpl-456",
		"model": "gpt-4o",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "tool_calls",
			"message": map[string]any{
				"role":    "assistant",
				"content": nil,
				"tool_calls": []map[string]any{{
					"id":   "call_abc",
					"type": "function",
					"function": map[string]any{
						"name":      "get_weather",
						"arguments": `{"location":"Paris"}`,
					},
				}},
			},
		}},
	}

	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, apiResp), nil
	})

	client := openai.New("test-key",
		openai.WithModel("gpt-4o"),
		openai.WithHTTPClient(httpClient),
	)

	resp, err := client.Response(context.Background(),
		[]af.Message{af.NewUserMessage("weather?")},
		nil,
	)
	if err != nil {
		t.Fatalf("Response: %v", err)
	}

	if fr, _ := resp.FinishReason(); fr != af.FinishReasonToolCalls {
		t.Errorf("FinishReason = %q", fr)
	}
	if _, ok := resp.Text(); ok {
		t.Error("Text should be absent for a null content")
	}

	calls := resp.ToolCalls()
	if len(calls) != 1 {
		t.Fatalf("tool calls = %d", len(calls))
	}
	want := af.ToolCall{ID: "call_abc", Name: "get_weather", Arguments: `{"location":"Paris"}`}
	if calls[0] != want {
		t.Errorf("call = %+v, want %+v", calls[0], want)
	}
}

func TestClient_Response_SerializesTranscript(t *testing.T) {
	var sent struct {
		Messages []map[string]any `json:"messages"`
		Tools    []map[string]any `json:"tools"`
	}
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		if err := json.Unmarshal(body, &sent); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		return okResponse(), nil
	})

	client := openai.New("test-key", openai.WithHTTPClient(httpClient))
	messages := []af.Message{
		af.NewSystemMessage("be brief"),
		af.NewUserMessage("weather in Paris?"),
		af.NewToolCallMessage("", []af.ToolCall{{ID: "call_1", Name: "get_weather", Arguments: `{"location":"Paris"}`}}),
		af.NewToolMessage("call_1", ""),
	}
	opts := &af.ChatOptions{Tools: []af.ToolSpec{{
		Name:        "get_weather",
		Description: "Get weather",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"location":{"type":"string"}}}`),
	}}}

	if _, err := client.Response(context.Background(), messages, opts); err != nil {
		t.Fatal(err)
	}

	if len(sent.Messages) != 4 {
		t.Fatalf("messages = %d", len(sent.Messages))
	}
	assistant := sent.Messages[2]
	if _, ok := assistant["content"]; ok {
		t.Errorf("assistant content = %v, want omitted", assistant["content"])
	}
	calls, _ := assistant["tool_calls"].([]any)
	if len(calls) != 1 {
		t.Fatalf("tool_calls = %v", assistant["tool_calls"])
	}
	call := calls[0].(map[string]any)
	if call["id"] != "call_1" || call["type"] != "function" {
		t.Errorf("tool call = %v", call)
	}
	fn := call["function"].(map[string]any)
	if fn["name"] != "get_weather" || fn["arguments"] != `{"location":"Paris"}` {
		t.Errorf("function = %v", fn)
	}

	tool := sent.Messages[3]
	if tool["role"] != "tool" || tool["tool_call_id"] != "call_1" {
		t.Errorf("tool message = %v", tool)
	}
	if content, ok := tool["content"]; !ok || content != "" {
		t.Errorf("tool content = %v, %v; want empty string", content, ok)
	}

	if len(sent.Tools) != 1 {
		t.Fatalf("tools = %d", len(sent.Tools))
	}
	if sent.Tools[0]["type"] != "function" {
		t.Errorf("tool type = %v", sent.Tools[0]["type"])
	}
	decl := sent.Tools[0]["function"].(map[string]any)
	if decl["name"] != "get_weather" {
		t.Errorf("tool name = %v", decl["name"])
	}
	if params, ok := decl["parameters"].(map[string]any); !ok || params["type"] != "object" {
		t.Errorf("parameters = %v", decl["parameters"])
	}
}

func TestClient_Response_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     map[string]any
		sentinel error
		code     string
	}{
		{
			name:   "401 Unauthorized",
			status: 401,
			body: map[string]any{
				"error": map[string]any{
					"message": "Invalid API key",
					"type":    "authentication_error",
				},
			},
			sentinel: af.ErrAuth,
		},
		{
			name:   "400 Bad Request",
			status: 400,
			body: map[string]any{
				"error": map[string]any{"message": "bad messages"},
			},
			sentinel: af.ErrInvalidRequest,
		},
		{
			name:   "Content Filter",
			status: 400,
			body: map[string]any{
				"error": map[string]any{
					"message": "content filtered",
					"code":    "content_filter",
				},
			},
			sentinel: af.ErrContentFilter,
			code:     "content_filter",
		},
		{
			name:     "500 Server Error",
			status:   500,
			body:     map[string]any{"oops": true},
			sentinel: af.ErrService,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
				return jsonResponse(tc.status, tc.body), nil
			})

			client := openai.New("bad-key",
				openai.WithModel("gpt-4o"),
				openai.WithHTTPClient(httpClient),
			)

			_, err := client.Response(context.Background(),
				[]af.Message{af.NewUserMessage("hi")},
				nil,
			)
			if err == nil {
				t.Fatal("expected error")
			}
			var reqErr *af.RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("expected RequestError, got %T", err)
			}
			if reqErr.StatusCode != tc.status {
				t.Errorf("StatusCode = %d", reqErr.StatusCode)
			}
			if reqErr.Code != tc.code {
				t.Errorf("Code = %q", reqErr.Code)
			}
			if len(reqErr.Body) == 0 {
				t.Error("raw body not preserved")
			}
			if !errors.Is(err, tc.sentinel) {
				t.Errorf("errors.Is(%v) = false", tc.sentinel)
			}
		})
	}
}

func TestClient_Response_TransportError(t *testing.T) {
	boom := errors.New("connection reset")
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return nil, boom
	})

	client := openai.New("test-key", openai.WithHTTPClient(httpClient))
	_, err := client.Response(context.Background(), []af.Message{af.NewUserMessage("hi")}, nil)

	var tErr *af.TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !errors.Is(err, af.ErrTransport) || !errors.Is(err, boom) {
		t.Errorf("error chain = %v", err)
	}
}

func TestClient_Response_InvalidJSON(t *testing.T) {
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader("not json"))}, nil
	})

	client := openai.New("test-key", openai.WithHTTPClient(httpClient))
	_, err := client.Response(context.Background(), []af.Message{af.NewUserMessage("hi")}, nil)
	if !errors.Is(err, af.ErrInvalidResponse) {
		t.Errorf("err = %v, want ErrInvalidResponse", err)
	}
}

func TestClient_StreamResponse(t *testing.T) {
	sseData := strings.Join([]string{
		`data: {"id":"chatcmpl-1","model":"gpt-4o","choices":[{"index":0,"delta":{"role":"assistant","content":"Hello"},"finish_reason":null}]}`,
		``,
		`data: {"id":"chatcmpl-1","model":"gpt-4o","choices":[{"index":0,"delta":{"content":", world!"},"finish_reason":null}]}`,
		``,
		`data: {"id":"chatcmpl-1","model":"gpt-4o","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
		``,
		`data: {"id":"chatcmpl-1","model":"gpt-4o","choices":[],"usage":{"prompt_tokens":5,"completion_tokens":3,"total_tokens":8}}`,
		``,
		`data: [DONE]`,
		``,
	}, "\n")

	body := &trackingBody{Reader: strings.NewReader(sseData)}
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		raw, _ := io.ReadAll(req.Body)
		var reqBody map[string]any
		json.Unmarshal(raw, &reqBody)
		if reqBody["stream"] != true {
			t.Errorf("stream = %v", reqBody["stream"])
		}
		so, _ := reqBody["stream_options"].(map[string]any)
		if so["include_usage"] != true {
			t.Errorf("stream_options = %v", reqBody["stream_options"])
		}
		return sseResponse(body), nil
	})

	client := openai.New("test-key",
		openai.WithModel("gpt-4o"),
		openai.WithHTTPClient(httpClient),
	)

	stream, err := client.StreamResponse(context.Background(),
		[]af.Message{af.NewUserMessage("hi")},
		nil,
	)
	if err != nil {
		t.Fatalf("StreamResponse: %v", err)
	}
	defer stream.Close()

	updates, err := stream.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(updates) != 4 {
		t.Fatalf("updates = %d, want 4", len(updates))
	}
	if updates[0].Role != af.RoleAssistant {
		t.Errorf("[0].Role = %q", updates[0].Role)
	}
	if updates[0].Content != "Hello" {
		t.Errorf("[0].Content = %q", updates[0].Content)
	}
	if updates[2].FinishReason != af.FinishReasonStop {
		t.Errorf("[2].FinishReason = %q", updates[2].FinishReason)
	}
	if updates[3].Usage == nil || updates[3].Usage.TotalTokens != 8 {
		t.Errorf("[3].Usage = %+v", updates[3].Usage)
	}
	if body.closed != 1 {
		t.Errorf("body closed %d times, want 1", body.closed)
	}

	acc := af.NewDeltaAccumulator()
	for _, u := range updates {
		acc.Add(u)
	}
	if got := acc.Result().Content; got != "Hello, world!" {
		t.Errorf("merged text = %q", got)
	}
}

func TestClient_StreamResponse_ToolCallDeltas(t *testing.T) {
	sseData := strings.Join([]string{
		`data: {"id":"c","choices":[{"index":0,"delta":{"role":"assistant","tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"get_weather","arguments":""}}]}}]}`,
		`data: {"id":"c","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"location\":"}}]}}]}`,
		`data: {"id":"c","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"Paris\"}"}}]}}]}`,
		`data: {"id":"c","choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`,
		`data: [DONE]`,
		``,
	}, "\n")

	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return sseResponse(&trackingBody{Reader: strings.NewReader(sseData)}), nil
	})
	client := openai.New("test-key", openai.WithHTTPClient(httpClient))

	stream, err := client.StreamResponse(context.Background(), []af.Message{af.NewUserMessage("hi")}, nil)
	if err != nil {
		t.Fatal(err)
	}

	acc := af.NewDeltaAccumulator()
	for u, err := range stream.All(context.Background()) {
		if err != nil {
			t.Fatal(err)
		}
		acc.Add(u)
	}

	res := acc.Result()
	if len(res.ToolCalls) != 1 {
		t.Fatalf("tool calls = %d", len(res.ToolCalls))
	}
	want := af.ToolCall{ID: "call_1", Name: "get_weather", Arguments: `{"location":"Paris"}`}
	if res.ToolCalls[0] != want {
		t.Errorf("call = %+v, want %+v", res.ToolCalls[0], want)
	}
	if res.FinishReason != af.FinishReasonToolCalls {
		t.Errorf("FinishReason = %q", res.FinishReason)
	}
}

func TestClient_StreamResponse_RequestError(t *testing.T) {
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(429, map[string]any{"error": map[string]any{"message": "slow down"}}), nil
	})
	client := openai.New("test-key", openai.WithHTTPClient(httpClient))

	stream, err := client.StreamResponse(context.Background(), []af.Message{af.NewUserMessage("hi")}, nil)
	if stream != nil {
		t.Error("stream should be nil on request error")
	}
	var reqErr *af.RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != 429 {
		t.Fatalf("err = %v", err)
	}
	if reqErr.Message != "slow down" {
		t.Errorf("Message = %q", reqErr.Message)
	}
}

func TestClient_StreamResponse_EarlyClose(t *testing.T) {
	sseData := strings.Repeat(`data: {"choices":[{"index":0,"delta":{"content":"x"}}]}`+"\n", 10) + "data: [DONE]\n"
	body := &trackingBody{Reader: strings.NewReader(sseData)}
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return sseResponse(body), nil
	})
	client := openai.New("test-key", openai.WithHTTPClient(httpClient))

	stream, err := client.StreamResponse(context.Background(), []af.Message{af.NewUserMessage("hi")}, nil)
	if err != nil {
		t.Fatal(err)
	}

	n := 0
	for _, err := range stream.All(context.Background()) {
		if err != nil {
			t.Fatal(err)
		}
		n++
		if n == 2 {
			break
		}
	}
	if body.closed != 1 {
		t.Errorf("body closed %d times after break, want 1", body.closed)
	}

	stream.Close()
	if body.closed != 1 {
		t.Errorf("body closed %d times after Close, want 1", body.closed)
	}
}

func TestClient_WithOptions(t *testing.T) {
	var sentOrg, sentURL string
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		sentOrg = req.Header.Get("OpenAI-Organization")
		sentURL = req.URL.String()
		return okResponse(), nil
	})

	client := openai.New("test-key",
		openai.WithModel("gpt-4o"),
		openai.WithBaseURL("https://example.test/openai/v1/"),
		openai.WithOrganization("org-abc"),
		openai.WithHTTPClient(httpClient),
	)

	_, err := client.Response(context.Background(),
		[]af.Message{af.NewUserMessage("hi")},
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}

	if sentOrg != "org-abc" {
		t.Errorf("org header = %q", sentOrg)
	}
	if sentURL != "https://example.test/openai/v1/chat/completions" {
		t.Errorf("url = %q", sentURL)
	}
}

func TestClient_APIKeyHeader(t *testing.T) {
	var auth, apiKey string
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		auth = req.Header.Get("Authorization")
		apiKey = req.Header.Get("api-key")
		return okResponse(), nil
	})

	client := openai.New("",
		openai.WithHeaders(map[string]string{"api-key": "azure-key"}),
		openai.WithHTTPClient(httpClient),
	)
	if _, err := client.Response(context.Background(), []af.Message{af.NewUserMessage("hi")}, nil); err != nil {
		t.Fatal(err)
	}
	if auth != "" {
		t.Errorf("Authorization = %q, want none", auth)
	}
	if apiKey != "azure-key" {
		t.Errorf("api-key = %q", apiKey)
	}
}

// staticCredential is an azcore.TokenCredential returning a fixed token.
type staticCredential struct {
	token  string
	scopes []string
}

func (c *staticCredential) GetToken(_ context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	c.scopes = opts.Scopes
	return azcore.AccessToken{Token: c.token, ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func TestClient_AzureCredential(t *testing.T) {
	var auth string
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		auth = req.Header.Get("Authorization")
		return okResponse(), nil
	})

	cred := &staticCredential{token: "aad-token"}
	client := openai.New("ignored",
		openai.WithAzureCredential(cred),
		openai.WithHTTPClient(httpClient),
	)
	if _, err := client.Response(context.Background(), []af.Message{af.NewUserMessage("hi")}, nil); err != nil {
		t.Fatal(err)
	}
	if auth != "Bearer aad-token" {
		t.Errorf("Authorization = %q", auth)
	}
	if len(cred.scopes) != 1 || cred.scopes[0] != "https://cognitiveservices.azure.com/.default" {
		t.Errorf("scopes = %v", cred.scopes)
	}
}

func TestClient_ChatMiddleware(t *testing.T) {
	var order []string
	mw := func(name string) af.ChatMiddleware {
		return func(next af.ChatHandler) af.ChatHandler {
			return func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.Response, error) {
				order = append(order, name)
				return next(ctx, msgs, opts)
			}
		}
	}
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		order = append(order, "http")
		return okResponse(), nil
	})

	client := openai.New("test-key",
		openai.WithHTTPClient(httpClient),
		openai.WithChatMiddleware(mw("outer"), mw("inner")),
	)
	if _, err := client.Response(context.Background(), []af.Message{af.NewUserMessage("hi")}, nil); err != nil {
		t.Fatal(err)
	}
	if strings.Join(order, ",") != "outer,inner,http" {
		t.Errorf("order = %v", order)
	}
}

func TestClient_ChatOptions_PassedThrough(t *testing.T) {
	var sentBody map[string]any
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		json.Unmarshal(body, &sentBody)
		return okResponse(), nil
	})

	temp := 0.3
	maxTok := 100
	client := openai.New("test-key",
		openai.WithModel("gpt-4o"),
		openai.WithHTTPClient(httpClient),
	)

	_, err := client.Response(context.Background(),
		[]af.Message{af.NewUserMessage("hi")},
		&af.ChatOptions{
			ModelID:     "gpt-4o-mini",
			Temperature: &temp,
			MaxTokens:   &maxTok,
			Tools:       []af.ToolSpec{{Name: "get_time"}},
			ToolChoice:  af.ToolChoiceFunction("get_time"),
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	if sentBody["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v", sentBody["model"])
	}
	if sentBody["temperature"] != 0.3 {
		t.Errorf("temperature = %v", sentBody["temperature"])
	}
	// max_completion_tokens in OpenAI API
	if sentBody["max_completion_tokens"] != float64(100) {
		t.Errorf("max_completion_tokens = %v", sentBody["max_completion_tokens"])
	}
	choice, _ := sentBody["tool_choice"].(map[string]any)
	fn, _ := choice["function"].(map[string]any)
	if choice["type"] != "function" || fn["name"] != "get_time" {
		t.Errorf("tool_choice = %v", sentBody["tool_choice"])
	}
}

func TestClient_ToolChoiceWithoutTools(t *testing.T) {
	var sentBody map[string]any
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		json.Unmarshal(body, &sentBody)
		return okResponse(), nil
	})

	client := openai.New("test-key", openai.WithHTTPClient(httpClient))
	_, err := client.Response(context.Background(),
		[]af.Message{af.NewUserMessage("hi")},
		&af.ChatOptions{ToolChoice: af.ToolChoiceNone},
	)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sentBody["tool_choice"]; ok {
		t.Errorf("tool_choice = %v, want omitted", sentBody["tool_choice"])
	}
}
