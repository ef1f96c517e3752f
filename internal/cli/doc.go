// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for llmchat.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed command-line arguments with global and command-specific flags
//   - ChatSession: The interactive REPL state (history, client, filter, console)
//   - LineReader: Source of user input; ChatCLI is the terminal implementation
//
// # Usage
//
// Parse and execute commands:
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdChat:
//	    return cli.HandleChat(ctx, cfg)
//	case cli.CmdAsk:
//	    return cli.HandleAsk(ctx, args, cfg)
//	// ... other commands
//	}
//
// # Commands Overview
//
//   - chat: Interactive chat session (default)
//   - ask: Single question query
//   - status: Server reachability and effective settings
//   - config: Settings display, file paths and defaults
//
// Handlers return errors; GetExitCode maps them to process exit codes.
package cli
