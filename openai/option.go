// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"maps"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	af "github.com/agentloop/agentloop-go/agentloop"
)

// clientOptions is what the [Option] values of one [New] call resolve to.
type clientOptions struct {
	baseURL         string
	organization    string
	httpClient      *http.Client
	headers         map[string]string
	model           string
	azureCredential azcore.TokenCredential
	chatMiddleware  []af.ChatMiddleware
}

// Option configures an OpenAI [Client].
type Option func(*clientOptions)

// WithBaseURL points the client at an OpenAI-compatible endpoint such as
// Azure OpenAI, a proxy, or a local runtime. A trailing slash is ignored.
func WithBaseURL(url string) Option {
	return func(o *clientOptions) { o.baseURL = strings.TrimRight(url, "/") }
}

// WithOrganization sets the OpenAI-Organization header.
func WithOrganization(org string) Option {
	return func(o *clientOptions) { o.organization = org }
}

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = client }
}

// WithHeaders adds headers to every request. Repeated calls accumulate; a
// later value for the same header wins. Setting "api-key" switches the
// client to Azure key authentication.
func WithHeaders(headers map[string]string) Option {
	return func(o *clientOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(headers))
		}
		maps.Copy(o.headers, headers)
	}
}

// WithModel sets the model used when [af.ChatOptions] names none.
func WithModel(model string) Option {
	return func(o *clientOptions) { o.model = model }
}

// WithAzureCredential authenticates with Azure AD. A token is obtained per
// request and the API key is not sent.
func WithAzureCredential(cred azcore.TokenCredential) Option {
	return func(o *clientOptions) { o.azureCredential = cred }
}

// WithChatMiddleware wraps the buffered request path. The first middleware
// is the outermost.
func WithChatMiddleware(mw ...af.ChatMiddleware) Option {
	return func(o *clientOptions) { o.chatMiddleware = append(o.chatMiddleware, mw...) }
}
