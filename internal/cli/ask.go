// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question handler for llmchat.
//
// Command: ask
// Short:   Ask a single question and print the reply
//
// Examples:
//   llmchat ask "What is a goroutine?"
//   git diff | llmchat ask
//   llmchat --no-filter ask "Count to 100"
//
// The reply goes to stdout with nothing around it, so it can be piped.
// Warnings go to stderr. A request failure prints the error text and exits
// with ExitNetworkError.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jeranaias/llmchat/internal/config"
	"github.com/jeranaias/llmchat/internal/conversation"
	"github.com/jeranaias/llmchat/internal/llm"
	"github.com/jeranaias/llmchat/internal/repetition"
	"github.com/jeranaias/llmchat/internal/util"
)

// MaxStdinQuery is the largest question read from stdin (1MB).
const MaxStdinQuery = 1 << 20

// AskRequest holds everything a one-shot question needs.
type AskRequest struct {
	Query         string
	SystemPrompt  string
	Client        *llm.Client
	Detector      repetition.Detector
	FilterEnabled bool
	Render        func(string) string
}

// HandleAsk handles the "ask" command.
func HandleAsk(ctx context.Context, args Args, cfg *config.Config) error {
	query := args.Query
	if query == "" && !IsTTY() {
		data, err := io.ReadAll(io.LimitReader(os.Stdin, MaxStdinQuery))
		if err != nil {
			return NewCommandError("ask", "read", "could not read question from stdin", err)
		}
		query = strings.TrimSpace(string(data))
	}
	if query == "" {
		return &UsageError{Message: `ask needs a question, e.g. llmchat ask "What is a mutex?"`}
	}

	req := AskRequest{
		Query: query,
		Client: llm.NewClientWithConfig(&llm.ClientConfig{
			Endpoint: llm.DefaultEndpoint,
			Options:  cfg.Sampling.Options(),
		}),
		Detector:      cfg.Filter.Detector(),
		FilterEnabled: cfg.Filter.Enabled,
	}

	if path, err := cfg.SystemPromptPath(); err == nil {
		prompt, err := config.LoadSystemPrompt(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: "+err.Error()))
		}
		req.SystemPrompt = prompt
	}

	if cfg.Chat.Markdown && IsStdoutTTY() {
		if render, err := newMarkdownRenderer(GetTerminalWidth()); err == nil {
			req.Render = render
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runAsk(ctx, req, os.Stdout, os.Stderr)
}

// runAsk sends one question and writes the reply to out.
func runAsk(ctx context.Context, req AskRequest, out, errOut io.Writer) error {
	history := conversation.New(req.SystemPrompt)

	reply, err := req.Client.Complete(ctx, history.Messages(), req.Query)
	if err != nil {
		util.Warnf("[ask] request failed: %v", err)
		if llm.IsCanceled(err) {
			return &ReportedError{Code: ExitGeneralError, Err: err}
		}
		fmt.Fprintln(out, req.Client.FormatError(err))
		return &ReportedError{Code: ExitNetworkError, Err: err}
	}

	if req.FilterEnabled {
		result := req.Detector.Filter(reply)
		if result.Found {
			fmt.Fprintln(errOut, WarningStyle.Render(RepetitionWarning))
			reply = result.Text
		}
	}

	if req.Render != nil {
		fmt.Fprint(out, req.Render(reply))
		return nil
	}
	fmt.Fprintln(out, reply)
	return nil
}
