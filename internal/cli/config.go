// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Configuration command handler for llmchat.
//
// Command: config [subcommand]
// Short:   Show settings and file locations
//
// Subcommands:
//   show (default)      Print the effective settings as TOML
//   path                Print the file locations
//   init                Write the defaults to ~/.llmchat.toml
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/llmchat/internal/config"
	"github.com/jeranaias/llmchat/internal/util"
)

// =============================================================================
// HANDLE CONFIG
// =============================================================================

// HandleConfig handles the "config" command.
func HandleConfig(args Args, cfg *config.Config) error {
	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(os.Stdout, cfg)

	case "path", "paths":
		return handleConfigPath(os.Stdout, os.Stderr, cfg)

	case "init":
		path, err := config.SettingsPath()
		if err != nil {
			return NewCommandError("config", "init", "could not locate settings file", err)
		}
		return handleConfigInit(os.Stdout, path)

	default:
		return &UsageError{Message: fmt.Sprintf("unknown config subcommand: %s", args.Subcommand)}
	}
}

// handleConfigShow prints the effective configuration as TOML.
func handleConfigShow(out io.Writer, cfg *config.Config) error {
	fmt.Fprintln(out, "# Effective llmchat settings (file, then LLMCHAT_* environment, then flags)")
	fmt.Fprint(out, cfg.String())
	return nil
}

// handleConfigPath prints the file locations, noting the ones that are missing.
func handleConfigPath(out, errOut io.Writer, cfg *config.Config) error {
	settings, err := config.SettingsPath()
	if err != nil {
		return NewCommandError("config", "path", "could not locate settings file", err)
	}
	prompt, err := cfg.SystemPromptPath()
	if err != nil {
		return NewCommandError("config", "path", "could not locate system prompt", err)
	}
	history, err := cfg.InputHistoryPath()
	if err != nil {
		return NewCommandError("config", "path", "could not locate input history", err)
	}
	logFile, err := cfg.LogFilePath()
	if err != nil {
		return NewCommandError("config", "path", "could not locate log file", err)
	}

	rows := []struct {
		label string
		path  string
	}{
		{"settings", settings},
		{"system_prompt", prompt},
		{"input_history", history},
		{"log", logFile},
	}

	for _, r := range rows {
		if r.path == "" {
			fmt.Fprintf(out, "%s (disabled)\n", util.PadRight(r.label+":", 15))
			continue
		}
		fmt.Fprintf(out, "%s %s\n", util.PadRight(r.label+":", 15), r.path)
		if _, err := os.Stat(r.path); errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(errOut, "%s %s does not exist\n", WarningStyle.Render("Note:"), r.path)
		}
	}
	return nil
}

// handleConfigInit writes the default settings to path. An existing file is
// never overwritten.
func handleConfigInit(out io.Writer, path string) error {
	if _, err := os.Stat(path); err == nil {
		return NewCommandError("config", "init", "settings file already exists", errors.New(path))
	}

	if err := config.Save(config.Default(), path); err != nil {
		return NewCommandError("config", "init", "could not write settings file", err)
	}

	util.Infof("[config] wrote default settings to %s", path)
	fmt.Fprintf(out, "Wrote default settings to %s\n", path)
	return nil
}
