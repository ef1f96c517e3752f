// llmchat - chat with a local LLM from the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/llmchat/internal/cli"
	"github.com/jeranaias/llmchat/internal/config"
	"github.com/jeranaias/llmchat/internal/util"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run())
}

func run() int {
	// Parse CLI arguments
	cmd, args := cli.Parse()

	if args.Err != nil {
		cli.DisplayError(os.Stderr, args.Err)
		return cli.GetExitCode(args.Err)
	}

	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion()
		return cli.ExitSuccess
	case cli.CmdHelp:
		cli.PrintUsage()
		return cli.ExitSuccess
	}

	// Keep diagnostics off the console until the log destination is known
	util.SetupLogging(io.Discard, util.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v (using defaults)\n", cli.WarningStyle.Render("Warning:"), err)
	}

	args.ApplyTo(cfg)
	if err := cfg.Validate(); err != nil {
		usageErr := &cli.UsageError{Message: fmt.Sprintf("invalid option: %v", err)}
		cli.DisplayError(os.Stderr, usageErr)
		return cli.GetExitCode(usageErr)
	}

	logCloser, err := cli.SetupLogging(cfg, args.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", cli.WarningStyle.Render("Warning:"), err)
	}
	defer logCloser.Close()

	util.Debugf("[main] llmchat %s command=%s", Version, cmd)

	ctx := context.Background()

	// Route to appropriate handler
	switch cmd {
	case cli.CmdChat:
		err = cli.HandleChat(ctx, cfg)
	case cli.CmdAsk:
		err = cli.HandleAsk(ctx, args, cfg)
	case cli.CmdStatus:
		err = cli.HandleStatus(ctx, cfg)
	case cli.CmdConfig:
		err = cli.HandleConfig(args, cfg)
	}

	if err != nil {
		util.Errorf("[main] %s: %v", cmd, err)
		cli.DisplayError(os.Stderr, err)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
