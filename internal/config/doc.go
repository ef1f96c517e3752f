// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for llmchat.
//
// Two files are read from the home directory:
//
//   - ~/.llmchat: optional system prompt, plain text, trimmed
//   - ~/.llmchat.toml: optional settings (sampling, filter, chat, log)
//
// # Key Types
//
//   - Config: settings with Sampling, Filter, Chat and Log sections
//   - ValidationError, ValidateErrors: range check failures
//   - ReadError: system prompt file exists but could not be read
//
// # Configuration Precedence
//
// Settings are resolved in this order, later wins:
//   - Built-in defaults
//   - ~/.llmchat.toml
//   - Environment variables (LLMCHAT_*)
//   - Command-line flags (applied by the cli package)
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
//	}
//
//	path, _ := cfg.SystemPromptPath()
//	prompt, err := config.LoadSystemPrompt(path)
package config
