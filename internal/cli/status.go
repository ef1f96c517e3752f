// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command handler for llmchat.
//
// Command: status
// Short:   Check that the LLM server is reachable
// Aliases: s
//
// Shows the endpoint, whether it answers, the models it serves, and the
// sampling and filter settings a session would use.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/llmchat/internal/config"
	"github.com/jeranaias/llmchat/internal/llm"
	"github.com/jeranaias/llmchat/internal/ui/styles"
	"github.com/jeranaias/llmchat/internal/util"
)

// StatusTimeout bounds the model listing request.
const StatusTimeout = 3 * time.Second

// =============================================================================
// HANDLE STATUS
// =============================================================================

// HandleStatus handles the "status" command.
func HandleStatus(ctx context.Context, cfg *config.Config) error {
	client := llm.NewClientWithConfig(&llm.ClientConfig{
		Endpoint: llm.DefaultEndpoint,
		Options:  cfg.Sampling.Options(),
	})
	return runStatus(ctx, client, cfg, os.Stdout, ConsoleTheme(os.Stdout))
}

// runStatus prints the status report. It returns a ReportedError with
// ExitNetworkError when the server does not answer.
func runStatus(ctx context.Context, client *llm.Client, cfg *config.Config, out io.Writer, theme *styles.Theme) error {
	ctx, cancel := context.WithTimeout(ctx, StatusTimeout)
	defer cancel()

	models, listErr := client.ListModels(ctx)

	separator := strings.Repeat("=", 41)
	fmt.Fprintln(out)
	fmt.Fprintln(out, theme.Banner.Render("llmchat Status"))
	fmt.Fprintln(out, theme.Muted.Render(separator))
	fmt.Fprintln(out)

	// Server section
	fmt.Fprintln(out, theme.Heading.Render("Server"))
	printStatusRow(out, theme, "Endpoint:", client.Endpoint())
	if listErr != nil {
		printStatusRow(out, theme, "Server:", theme.RenderError("Not reachable"))
		printStatusRow(out, theme, "", theme.Muted.Render(errorCause(listErr)))
	} else {
		printStatusRow(out, theme, "Server:", theme.RenderSuccess("Running"))
		printStatusRow(out, theme, "Models:", formatModels(models))
	}
	fmt.Fprintln(out)

	// Sampling section
	opts := client.Options()
	fmt.Fprintln(out, theme.Heading.Render("Sampling"))
	printStatusRow(out, theme, "Preset:", strings.ToLower(cfg.Sampling.Preset))
	printStatusRow(out, theme, "Temperature:", fmt.Sprintf("%g", opts.Temperature))
	printStatusRow(out, theme, "Max tokens:", fmt.Sprintf("%d", opts.MaxTokens))
	printStatusRow(out, theme, "Penalties:", formatPenalties(opts))
	fmt.Fprintln(out)

	// Filter section
	fmt.Fprintln(out, theme.Heading.Render("Repetition Filter"))
	if cfg.Filter.Enabled {
		d := cfg.Filter.Detector()
		printStatusRow(out, theme, "Filter:", theme.RenderSuccess("Enabled"))
		printStatusRow(out, theme, "Min block:", fmt.Sprintf("%d lines", d.MinChunkSize))
		printStatusRow(out, theme, "Max copies:", fmt.Sprintf("%d", d.MaxRepetitions))
	} else {
		printStatusRow(out, theme, "Filter:", theme.RenderWarning("Disabled"))
	}
	fmt.Fprintln(out)

	// Files section
	fmt.Fprintln(out, theme.Heading.Render("Files"))
	printStatusRow(out, theme, "System prompt:", formatPromptStatus(cfg))
	if path, err := config.SettingsPath(); err == nil {
		printStatusRow(out, theme, "Settings:", formatFileStatus(path))
	}
	fmt.Fprintln(out)

	if listErr != nil {
		util.Warnf("[status] %s not reachable: %v", client.ModelsURL(), listErr)
		return &ReportedError{Code: ExitNetworkError, Err: listErr}
	}
	return nil
}

func printStatusRow(out io.Writer, theme *styles.Theme, label, value string) {
	fmt.Fprintf(out, "  %s %s\n", theme.Muted.Render(util.PadRight(label, 15)), value)
}

// errorCause returns the innermost useful message of a client error.
func errorCause(err error) string {
	var ce *llm.ClientError
	if errors.As(err, &ce) && ce.Cause != nil {
		return ce.Cause.Error()
	}
	return err.Error()
}

func formatModels(models []llm.ModelInfo) string {
	if len(models) == 0 {
		return "none listed"
	}
	ids := make([]string, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}
	return strings.Join(ids, ", ")
}

func formatPenalties(opts llm.Options) string {
	s := fmt.Sprintf("frequency %g, presence %g", opts.FrequencyPenalty, opts.PresencePenalty)
	if opts.RepetitionPenalty != nil {
		s += fmt.Sprintf(", repetition %g", *opts.RepetitionPenalty)
	}
	return s
}

func formatPromptStatus(cfg *config.Config) string {
	path, err := cfg.SystemPromptPath()
	if err != nil {
		return err.Error()
	}
	prompt, err := config.LoadSystemPrompt(path)
	switch {
	case err != nil:
		return fmt.Sprintf("%s (unreadable)", cfg.Chat.SystemPromptFile)
	case prompt == "":
		return fmt.Sprintf("%s (none)", cfg.Chat.SystemPromptFile)
	default:
		return fmt.Sprintf("%s (%d lines)", cfg.Chat.SystemPromptFile, util.LineCount(prompt))
	}
}

func formatFileStatus(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path + " (not found, using defaults)"
	}
	return path
}
