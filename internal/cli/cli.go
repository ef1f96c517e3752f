// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Argument parsing and usage text for llmchat.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/jeranaias/llmchat/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdChat Command = iota
	CmdAsk
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdChat:
		return "chat"
	case CmdAsk:
		return "ask"
	case CmdStatus:
		return "status"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	}
	return "unknown"
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet     bool
	Verbose   bool
	Markdown  bool
	NoFilter  bool
	Preset    string
	MinChunk  int // 0 keeps the configured value
	MaxRepeat int // 0 keeps the configured value

	// Command-specific
	Query      string
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string

	// Err is the first usage problem found while parsing, if any.
	Err error
}

const usageText = `llmchat - chat with a local LLM from the terminal

Sends your messages to an OpenAI-compatible server at localhost:1234 and
prints the replies. Replies that loop on the same block of lines are cut
at the first repeat.

Usage:
  llmchat                    Interactive chat (default)
  llmchat chat               Interactive chat
  llmchat ask "question"     Ask a single question and print the reply
  llmchat status, s          Check that the server is reachable
  llmchat config [show|path|init]
                             Show settings, file paths, or write defaults
  llmchat version            Show version information
  llmchat help               Show this help

Chat Commands (type during a session):
  /help                      List session commands
  /clear                     Forget the conversation (keeps the system prompt)
  /history                   List the messages sent so far
  /system [text]             Show or replace the system prompt
  /save <file>               Write a transcript (.md or .json)
  /status                    Show session details
  /quit                      End the session
  exit, quit, Ctrl+C, Ctrl+D End the session

Global Flags:
  --preset NAME     Sampling preset: standard or tuned (default: tuned)
  --no-filter       Show replies without repetition filtering
  --min-chunk N     Smallest repeated block, in lines (default: 50)
  --max-repeat N    Copies of a block that count as looping (default: 2)
  --markdown        Render replies as markdown on a terminal
  -q, --quiet       Skip the startup banner
  -v, --verbose     Write debug logs to stderr

Files:
  ~/.llmchat           System prompt, sent as the first message when present
  ~/.llmchat.toml      Optional settings (see: llmchat config init)
  ~/.llmchat_history   Input recall for the You: prompt

Examples:
  llmchat                              Start chatting
  llmchat ask "What is a mutex?"       One-shot question
  echo "Summarise this" | llmchat ask  Question from stdin
  llmchat --preset standard            Plain sampling settings
  llmchat --min-chunk 5 --max-repeat 3 Stricter loop detection

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	printVersion(os.Stdout)
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "llmchat version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
}

// Parse parses os.Args and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given arguments (without the program name).
func ParseArgs(argv []string) (Command, Args) {
	// Parse global flags first
	remaining, parsedArgs := parseGlobalFlags(argv)

	// No command means an interactive session
	if len(remaining) == 0 {
		return CmdChat, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "chat":
		if len(remaining) > 0 && parsedArgs.Err == nil {
			parsedArgs.Err = &UsageError{Message: fmt.Sprintf("chat takes no arguments, got %q", strings.Join(remaining, " "))}
		}
		return CmdChat, parsedArgs

	case "ask":
		parsedArgs.Query = strings.TrimSpace(strings.Join(remaining, " "))
		return CmdAsk, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		if parsedArgs.Err == nil {
			parsedArgs.Err = &UsageError{Message: fmt.Sprintf("unknown command: %s", cmd)}
		}
		return CmdHelp, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
// Everything after "--" is passed through untouched.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	setErr := func(format string, a ...any) {
		if parsedArgs.Err == nil {
			parsedArgs.Err = &UsageError{Message: fmt.Sprintf(format, a...)}
		}
	}

	// value returns the argument of a flag given as "--flag value" or "--flag=value".
	value := func(i *int, arg, name string) (string, bool) {
		if v, ok := strings.CutPrefix(arg, name+"="); ok {
			return v, true
		}
		if arg != name {
			return "", false
		}
		if *i+1 >= len(args) {
			setErr("%s requires a value", name)
			return "", true
		}
		*i++
		return args[*i], true
	}

	positiveInt := func(name, v string) int {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			setErr("%s must be a positive integer, got %q", name, v)
			return 0
		}
		return n
	}

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "--":
			remaining = append(remaining, args[i+1:]...)
			return remaining, parsedArgs
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--markdown", "--md":
			parsedArgs.Markdown = true
		case "--no-filter":
			parsedArgs.NoFilter = true
		default:
			if v, ok := value(&i, arg, "--preset"); ok {
				parsedArgs.Preset = strings.ToLower(v)
			} else if v, ok := value(&i, arg, "--min-chunk"); ok {
				if v != "" {
					parsedArgs.MinChunk = positiveInt("--min-chunk", v)
				}
			} else if v, ok := value(&i, arg, "--max-repeat"); ok {
				if v != "" {
					parsedArgs.MaxRepeat = positiveInt("--max-repeat", v)
				}
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	args.Subcommand = "show"
	if len(remaining) > 0 {
		args.Subcommand = strings.ToLower(remaining[0])
	}
}

// ApplyTo overlays command-line flags on cfg. Flags win over the settings
// file and the environment.
func (a Args) ApplyTo(cfg *config.Config) {
	if a.Preset != "" {
		cfg.Sampling.Preset = a.Preset
	}
	if a.NoFilter {
		cfg.Filter.Enabled = false
	}
	if a.MinChunk > 0 {
		cfg.Filter.MinChunkSize = a.MinChunk
	}
	if a.MaxRepeat > 0 {
		cfg.Filter.MaxRepetitions = a.MaxRepeat
	}
	if a.Markdown {
		cfg.Chat.Markdown = true
	}
	if a.Quiet {
		cfg.Chat.ShowBanner = false
	}
	if a.Verbose {
		cfg.Log.Level = "debug"
	}
}
