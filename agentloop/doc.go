// Copyright (c) Microsoft. All rights reserved.

// Package agentloop drives multi-turn tool-calling conversations against a
// chat completion backend, in buffered and streamed modes.
//
// # Quick Start
//
// Create a ChatClient (e.g., from the openai package) and build an Agent:
//
//	client := openai.New(os.Getenv("OPENAI_API_KEY"), openai.WithModel("gpt-4o-mini"))
//
//	agent := agentloop.NewAgent(client,
//	    agentloop.WithInstructions("You are helpful."),
//	    agentloop.WithTools(weatherTool),
//	)
//
//	resp, err := agent.Run(ctx, agentloop.Prompt("What's the weather in Paris?"))
//	text, _ := resp.Text()
//
// # The loop
//
// A [Prompt] starts the tool-calling loop. Each iteration sends the whole
// transcript and the registered tools to the model. When the model asks for
// tools, the calls are executed through a [Registry] and their results are
// appended as tool messages before the next iteration. The loop ends when
// the model answers without tool calls, or fails with a
// [MaxIterationsError] once the cap in [InvocationConfig] is exhausted.
//
// Tool failures (unknown tool, bad JSON, failed validation, handler error)
// never fail the run. They become the content of the tool message so the
// model can correct itself.
//
// A [Request] bypasses the loop: one round trip with caller-supplied
// messages, tools and tool choice.
//
// # Streaming
//
// [Agent.RunStream] returns an [EventStream]. Every decoded frame is
// surfaced as a chunk event as soon as it arrives; tool execution is
// bracketed by tool_start and tool_result events. Streams are pull-based and
// must be drained or closed; closing releases the HTTP response body.
//
//	stream, err := agent.RunStream(ctx, agentloop.Prompt("Hi"))
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//	for ev, err := range stream.All(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(ev.Text())
//	}
//
// # Tools
//
// Use [NewTypedTool] for type-safe tools with automatic JSON Schema generation:
//
//	type WeatherArgs struct {
//	    Location string `json:"location" jsonschema:"description=City name,required"`
//	    Unit     string `json:"unit"     jsonschema:"enum=celsius|fahrenheit"`
//	}
//
//	tool := agentloop.NewTypedTool("get_weather", "Get current weather",
//	    func(ctx context.Context, args WeatherArgs) (any, error) {
//	        return fetchWeather(args.Location, args.Unit)
//	    },
//	)
//
// # Middleware
//
// Add cross-cutting behavior at three levels: agent (around Run), chat
// (around provider calls, see the openai package) and function (around tool
// handlers):
//
//	agent := agentloop.NewAgent(client,
//	    agentloop.WithAgentMiddleware(agentloop.LoggingMiddleware(logger)),
//	    agentloop.WithFunctionMiddleware(rateLimitMiddleware),
//	)
package agentloop
