// Copyright (c) Microsoft. All rights reserved.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/spf13/cobra"

	af "github.com/agentloop/agentloop-go/agentloop"
	"github.com/agentloop/agentloop-go/config"
	"github.com/agentloop/agentloop-go/openai"
)

const instructions = "You are a helpful assistant. When asked about the weather, use the get_weather tool. " +
	"When asked about the time, use the get_time tool. Keep responses concise."

type flags struct {
	stream        bool
	model         string
	baseURL       string
	maxIterations int
	parallelTools bool
	configFile    string
	debug         bool
	azureAD       bool
}

func newRootCommand() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           "agentchat [prompt]",
		Short:         "Chat with a tool-calling assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args)
		},
	}

	fl := cmd.Flags()
	fl.BoolVarP(&f.stream, "stream", "s", false, "stream responses and tool events")
	fl.StringVarP(&f.model, "model", "m", "", "model to use (default from config)")
	fl.StringVar(&f.baseURL, "base-url", "", "API base URL (default from config)")
	fl.IntVar(&f.maxIterations, "max-iterations", 0, "maximum tool-calling iterations per prompt")
	fl.BoolVar(&f.parallelTools, "parallel-tools", false, "run the tool calls of one iteration concurrently")
	fl.StringVarP(&f.configFile, "config", "c", "", "config file (yaml, json or toml)")
	fl.BoolVar(&f.debug, "debug", false, "enable debug logging")
	fl.BoolVar(&f.azureAD, "azure-ad", false, "authenticate with Azure AD (DefaultAzureCredential)")

	return cmd
}

func run(cmd *cobra.Command, f flags, args []string) error {
	level := slog.LevelWarn
	if f.debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), level))

	cfg, err := config.Load(configOptions(cmd, f)...)
	if err != nil {
		slog.Error("load config", "error", err)
		return err
	}

	client, err := newChatClient(cfg, f.azureAD)
	if err != nil {
		slog.Error("create client", "error", err)
		return err
	}

	agent := af.NewAgent(client,
		af.WithName("assistant"),
		af.WithInstructions(instructions),
		af.WithTools(weatherTool(), timeTool()),
		af.WithInvocationConfig(cfg.Invocation()),
		af.WithAgentMiddleware(af.LoggingMiddleware(slog.Default())),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	if len(args) > 0 {
		return ask(ctx, out, agent, strings.Join(args, " "), f.stream)
	}
	return repl(ctx, cmd.InOrStdin(), out, agent, f.stream)
}

// configOptions turns explicitly set flags into config overrides.
func configOptions(cmd *cobra.Command, f flags) []config.Option {
	var opts []config.Option
	changed := cmd.Flags().Changed
	if f.configFile != "" {
		opts = append(opts, config.WithFile(f.configFile))
	}
	if changed("model") {
		opts = append(opts, config.WithModel(f.model))
	}
	if changed("base-url") {
		opts = append(opts, config.WithBaseURL(f.baseURL))
	}
	if changed("max-iterations") {
		opts = append(opts, config.WithMaxToolIterations(f.maxIterations))
	}
	if changed("parallel-tools") {
		opts = append(opts, config.WithParallelToolCalls(f.parallelTools))
	}
	return opts
}

// newChatClient creates an OpenAI-compatible client. Azure endpoints get the
// api-key header, or an Azure AD token when azureAD is set.
func newChatClient(cfg *config.Config, azureAD bool) (*openai.Client, error) {
	opts := []openai.Option{
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
	}

	if azureAD {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("create azure credential: %w", err)
		}
		slog.Info("using Azure AD authentication", "endpoint", cfg.BaseURL)
		return openai.New("", append(opts, openai.WithAzureCredential(cred))...), nil
	}

	if cfg.APIKey == "" {
		return nil, errors.New("no API key: set AGENTLOOP_API_KEY or OPENAI_API_KEY, or pass --azure-ad")
	}
	if isAzureEndpoint(cfg.BaseURL) {
		// Azure uses api-key header instead of Bearer token
		opts = append(opts, openai.WithHeaders(map[string]string{"api-key": cfg.APIKey}))
	}
	return openai.New(cfg.APIKey, opts...), nil
}

func isAzureEndpoint(baseURL string) bool {
	u, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return strings.HasSuffix(host, ".azure.com") || strings.HasSuffix(host, ".azure-api.net")
}

func repl(ctx context.Context, in io.Reader, out io.Writer, agent *af.Agent, stream bool) error {
	fmt.Fprintln(out, "Chat with the assistant (type 'quit' to exit, 'stream ' prefix streams one prompt)")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			return nil
		}

		streamOnce := stream
		if rest, ok := strings.CutPrefix(input, "stream "); ok {
			input, streamOnce = rest, true
		}

		if err := ask(ctx, out, agent, input, streamOnce); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		fmt.Fprintln(out)
	}
}

func ask(ctx context.Context, out io.Writer, agent *af.Agent, prompt string, stream bool) error {
	if stream {
		return askStream(ctx, out, agent, prompt)
	}

	resp, err := agent.Run(ctx, af.Prompt(prompt))
	if err != nil {
		return err
	}
	text, _ := resp.Text()
	fmt.Fprintf(out, "Assistant: %s\n", text)
	printUsage(out, resp)
	return nil
}

func askStream(ctx context.Context, out io.Writer, agent *af.Agent, prompt string) error {
	events, err := agent.RunStream(ctx, af.Prompt(prompt))
	if err != nil {
		return err
	}
	defer events.Close()

	fmt.Fprint(out, "Assistant: ")
	for ev, err := range events.All(ctx) {
		if err != nil {
			fmt.Fprintln(out)
			return err
		}
		switch ev.Type {
		case af.EventChunk:
			fmt.Fprint(out, ev.Text())
		case af.EventToolStart:
			fmt.Fprintf(out, "\n  [calling %s %s]", ev.ToolCall.Name, ev.ToolCall.Arguments)
		case af.EventToolResult:
			fmt.Fprintf(out, "\n  [%s -> %s]\n", ev.ToolCall.Name, ev.Result.Content)
		}
	}
	fmt.Fprintln(out)
	printUsage(out, events.Response())
	return nil
}

func printUsage(out io.Writer, resp *af.Response) {
	if resp == nil || resp.Usage.TotalTokens == 0 {
		return
	}
	fmt.Fprintf(out, "  [tokens: %d in, %d out, %d iterations]\n",
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Iterations)
}
