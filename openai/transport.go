// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	af "github.com/agentloop/agentloop-go/agentloop"
)

const defaultBaseURL = "https://api.openai.com/v1"

// cognitiveServicesScope is the token scope for Azure OpenAI and AI Foundry.
const cognitiveServicesScope = "https://cognitiveservices.azure.com/.default"

// transport is an unexported interface for HTTP communication.
// The default implementation uses net/http; tests inject a mock.
type transport interface {
	do(ctx context.Context, method, path string, body any) (*http.Response, error)
}

// httpTransport is the default transport using net/http.
type httpTransport struct {
	client          *http.Client
	baseURL         string
	apiKey          string
	org             string
	headers         map[string]string
	azureCredential azcore.TokenCredential
}

func newHTTPTransport(apiKey string, opts *clientOptions) *httpTransport {
	t := &httpTransport{
		client:          opts.httpClient,
		baseURL:         opts.baseURL,
		apiKey:          apiKey,
		org:             opts.organization,
		headers:         opts.headers,
		azureCredential: opts.azureCredential,
	}
	if t.client == nil {
		t.client = http.DefaultClient
	}
	if t.baseURL == "" {
		t.baseURL = defaultBaseURL
	}
	return t
}

// do sends one request. A status of 400 or above is returned as an
// [af.RequestError] with the body already read and closed; any other
// response is returned with its body open for the caller.
func (t *httpTransport) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal request: %v", af.ErrInvalidRequest, err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", af.ErrInvalidRequest, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if err := t.authorize(ctx, req); err != nil {
		return nil, err
	}
	if t.org != "" {
		req.Header.Set("OpenAI-Organization", t.org)
	}
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &af.TransportError{Op: "http request", Err: err}
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, parseErrorResponse(resp)
	}

	return resp, nil
}

func (t *httpTransport) authorize(ctx context.Context, req *http.Request) error {
	if t.azureCredential != nil {
		slog.DebugContext(ctx, "acquiring Azure AD token for Cognitive Services")
		token, err := t.azureCredential.GetToken(ctx, policy.TokenRequestOptions{
			Scopes: []string{cognitiveServicesScope},
		})
		if err != nil {
			return fmt.Errorf("%w: get azure token: %w", af.ErrAuth, err)
		}
		slog.DebugContext(ctx, "using Azure AD token authentication", "token_expires_on", token.ExpiresOn)
		req.Header.Set("Authorization", "Bearer "+token.Token)
		return nil
	}
	// Azure key auth sends "api-key" instead of a bearer token.
	if _, ok := t.headers["api-key"]; !ok && t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	return nil
}

// parseErrorResponse reads an error response body and returns a typed error.
func parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    any    `json:"code"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &apiErr)

	msg := apiErr.Error.Message
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	// Some gateways send numeric codes.
	var code string
	switch c := apiErr.Error.Code.(type) {
	case string:
		code = c
	case float64:
		code = fmt.Sprintf("%.0f", c)
	}

	reqErr := &af.RequestError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		Code:       code,
		Body:       body,
	}

	switch {
	case code == "content_filter":
		reqErr.Err = af.ErrContentFilter
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		reqErr.Err = af.ErrAuth
	case resp.StatusCode == http.StatusBadRequest:
		reqErr.Err = af.ErrInvalidRequest
	default:
		reqErr.Err = af.ErrService
	}

	return reqErr
}
