// Copyright (c) Microsoft. All rights reserved.

// Command agentchat is an interactive tool-calling chat against an OpenAI
// compatible endpoint.
//
// Usage with OpenAI:
//
//	export OPENAI_API_KEY=sk-...
//	go run ./cmd/agentchat
//
// Usage with Azure AI Foundry:
//
//	export AGENTLOOP_BASE_URL=https://<project>.services.ai.azure.com/openai/deployments/<deployment>
//	export AGENTLOOP_API_KEY=<your-key>      # or pass --azure-ad
//	go run ./cmd/agentchat --model gpt-4o
//
// Pass a prompt as arguments to run it once and exit.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
