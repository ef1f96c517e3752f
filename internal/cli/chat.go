// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for llmchat.
//
// Handles the default command, a REPL that sends each line to the LLM
// together with everything said so far and prints the reply.
//
// Command: chat
// Short:   Start an interactive chat session
//
// Interactive Commands (during chat):
//   /help               Show available commands
//   /clear              Clear conversation history
//   /history            Show conversation history
//   /system [text]      Show or replace the system prompt
//   /save <file>        Write a transcript
//   /status             Show session details
//   /quit               Exit chat
//   Ctrl+C              Exit chat, also while waiting for a reply
//   Ctrl+D              Exit chat
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/llmchat/internal/config"
	"github.com/jeranaias/llmchat/internal/conversation"
	"github.com/jeranaias/llmchat/internal/export"
	"github.com/jeranaias/llmchat/internal/llm"
	"github.com/jeranaias/llmchat/internal/repetition"
	"github.com/jeranaias/llmchat/internal/ui/styles"
	"github.com/jeranaias/llmchat/internal/util"
)

// Console text of the chat protocol.
const (
	PromptText        = "You: "
	ExitHint          = "Type 'exit', 'quit', or press Ctrl+C to end the conversation."
	RepetitionWarning = "[Warning: Repetitive content was detected and removed from response]"
	Farewell          = "Goodbye!"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ErrInterrupted is returned by a LineReader when the user presses Ctrl+C
// at the prompt.
var ErrInterrupted = errors.New("input interrupted")

// LineReader reads one line of user input. It returns io.EOF at end of
// input and ErrInterrupted on Ctrl+C.
type LineReader interface {
	ReadInput(prompt string) (string, error)
}

// ChatCLI provides input history and line editing for interactive chat.
// Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI. Input lines are recalled from and saved
// to historyFile; an empty path keeps recall in memory only.
func NewChatCLI(historyFile string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}

	// Load existing history
	cli.LoadHistory()

	return cli
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if c.historyFile == "" {
		return
	}
	f, err := os.Open(c.historyFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			util.Warnf("[chat] could not open input history %s: %v", c.historyFile, err)
		}
		return
	}
	defer f.Close()

	if _, err := c.line.ReadHistory(f); err != nil {
		util.Warnf("[chat] could not read input history %s: %v", c.historyFile, err)
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrInterrupted
		}
		return "", err
	}

	// Add non-empty input to history
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}

	return input, nil
}

// SaveHistory persists input history to file with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if c.historyFile == "" {
		return
	}

	var buf bytes.Buffer
	if _, err := c.line.WriteHistory(&buf); err != nil {
		util.Warnf("[chat] could not encode input history: %v", err)
		return
	}
	if err := util.AtomicWriteFile(c.historyFile, buf.Bytes(), 0600); err != nil {
		util.Warnf("[chat] could not save input history %s: %v", c.historyFile, err)
	}
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatSession holds the state for an interactive chat session.
type ChatSession struct {
	// Conversation history, owned by the session
	History *conversation.History

	// Client sends each exchange to the LLM
	Client *llm.Client

	// Repetition filter applied to every reply
	Detector      repetition.Detector
	FilterEnabled bool

	// Console
	Input  LineReader
	Out    io.Writer
	Theme  *styles.Theme
	Render func(string) string // markdown renderer; nil prints replies verbatim
	Width  int

	// Startup
	ShowBanner        bool
	SystemPromptPath  string // file read once at startup; empty skips it
	SystemPromptLabel string // path as shown to the user

	// Preset is the sampling preset name, for /status and transcripts
	Preset string

	// Tracking
	StartTime time.Time
	Filtered  int // replies truncated by the filter
}

// NewChatSession creates a chat session from configuration, writing to out.
// The caller sets Input before calling Run.
func NewChatSession(cfg *config.Config, out io.Writer) *ChatSession {
	client := llm.NewClientWithConfig(&llm.ClientConfig{
		Endpoint: llm.DefaultEndpoint,
		Options:  cfg.Sampling.Options(),
	})

	promptPath, err := cfg.SystemPromptPath()
	if err != nil {
		util.Warnf("[chat] %v", err)
		promptPath = ""
	}

	session := &ChatSession{
		History:           conversation.New(""),
		Client:            client,
		Detector:          cfg.Filter.Detector(),
		FilterEnabled:     cfg.Filter.Enabled,
		Out:               out,
		Theme:             ConsoleTheme(out),
		Width:             GetTerminalWidth(),
		ShowBanner:        cfg.Chat.ShowBanner,
		SystemPromptPath:  promptPath,
		SystemPromptLabel: cfg.Chat.SystemPromptFile,
		Preset:            strings.ToLower(cfg.Sampling.Preset),
		StartTime:         time.Now(),
	}

	if cfg.Chat.Markdown && IsStdoutTTY() {
		render, err := newMarkdownRenderer(session.Width)
		if err != nil {
			util.Warnf("[chat] markdown rendering disabled: %v", err)
		} else {
			session.Render = render
		}
	}

	return session
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat runs an interactive session on the terminal.
func HandleChat(ctx context.Context, cfg *config.Config) error {
	session := NewChatSession(cfg, os.Stdout)

	historyPath, err := cfg.InputHistoryPath()
	if err != nil {
		util.Warnf("[chat] input history disabled: %v", err)
		historyPath = ""
	}

	// Ensure input history is saved on exit
	input := NewChatCLI(historyPath)
	defer input.Close()
	session.Input = input

	return session.Run(ctx)
}

// Run prints the banner, loads the system prompt and runs the REPL until
// the user leaves. Request failures are shown as replies and never end the
// session; only a failure to read input is returned.
func (s *ChatSession) Run(ctx context.Context) error {
	if s.Theme == nil {
		s.Theme = styles.PlainTheme(s.Out)
	}
	if s.StartTime.IsZero() {
		s.StartTime = time.Now()
	}

	if s.ShowBanner {
		s.printWelcome()
	}
	s.loadSystemPrompt()

	util.Infof("[chat] session %s started endpoint=%s preset=%s filter=%t",
		s.History.ID, s.Client.Endpoint(), s.Preset, s.FilterEnabled)
	defer func() {
		util.Infof("[chat] session %s ended exchanges=%d filtered=%d",
			s.History.ID, s.History.Turns(), s.Filtered)
	}()

	// Main REPL loop
	for {
		if ctx.Err() != nil {
			fmt.Fprintf(s.Out, "\n\n%s\n", Farewell)
			return nil
		}

		line, err := s.Input.ReadInput(PromptText)
		if err != nil {
			switch {
			case errors.Is(err, ErrInterrupted):
				fmt.Fprintf(s.Out, "\n\n%s\n", Farewell)
				return nil
			case errors.Is(err, io.EOF):
				fmt.Fprintf(s.Out, "\n%s\n", Farewell)
				return nil
			default:
				return fmt.Errorf("failed to read input: %w", err)
			}
		}

		if !s.handleLine(ctx, line) {
			return nil
		}
	}
}

// handleLine processes one line of input. It returns false when the
// session should end.
func (s *ChatSession) handleLine(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)

	// Skip empty input
	if input == "" {
		return true
	}

	// Handle exit/quit without slash
	if isExitCommand(input) {
		fmt.Fprintln(s.Out, Farewell)
		return false
	}

	// Handle slash commands
	if strings.HasPrefix(input, "/") {
		shouldContinue, err := s.handleSlashCommand(input)
		if err != nil {
			fmt.Fprintln(s.Out, s.Theme.RenderError(err.Error()))
		}
		if !shouldContinue {
			fmt.Fprintln(s.Out, Farewell)
		}
		return shouldContinue
	}

	return s.exchange(ctx, input)
}

// isExitCommand reports whether input asks to end the session.
func isExitCommand(input string) bool {
	return strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit")
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// exchange sends input with the history so far, filters and prints the
// reply, then records both messages. It returns false if the user
// interrupted while waiting.
func (s *ChatSession) exchange(ctx context.Context, input string) bool {
	reqCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	reply := s.Client.Send(reqCtx, s.History.Messages(), input)
	interrupted := reqCtx.Err() != nil
	stop()

	if interrupted {
		fmt.Fprintf(s.Out, "\n\n%s\n", Farewell)
		return false
	}

	if s.FilterEnabled {
		result := s.Detector.Filter(reply)
		if result.Found {
			s.Filtered++
			util.Infof("[chat] truncated reply: block of %d lines repeated %d times at line %d",
				result.ChunkSize, result.Repetitions, result.Start)
			fmt.Fprintln(s.Out, s.Theme.Warning.Render(RepetitionWarning))
			reply = result.Text
		}
	}

	s.displayReply(reply)
	s.History.AddExchange(input, reply)
	return true
}

// displayReply prints the reply under the assistant label.
func (s *ChatSession) displayReply(reply string) {
	label := s.Theme.AssistantLabel.Render("Assistant:")
	if s.Render != nil && !strings.HasPrefix(reply, "Error: ") {
		fmt.Fprintf(s.Out, "\n%s\n%s\n", label, s.Render(reply))
		return
	}
	fmt.Fprintf(s.Out, "\n%s %s\n\n", label, reply)
}

// loadSystemPrompt reads the system prompt file once. A read failure is
// reported and the session continues without a prompt.
func (s *ChatSession) loadSystemPrompt() {
	if s.SystemPromptPath == "" {
		return
	}

	prompt, err := config.LoadSystemPrompt(s.SystemPromptPath)
	if err != nil {
		util.Warnf("[chat] %v", err)
		fmt.Fprintln(s.Out, s.Theme.Warning.Render("Warning: "+err.Error()))
		return
	}
	if prompt == "" {
		return
	}

	s.History.SetSystemPrompt(prompt)
	if s.ShowBanner {
		label := s.SystemPromptLabel
		if label == "" {
			label = s.SystemPromptPath
		}
		fmt.Fprintln(s.Out, s.Theme.Notice.Render(fmt.Sprintf("[System prompt loaded from %s]", label)))
		fmt.Fprintln(s.Out)
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (shouldContinue, error) where shouldContinue=false means exit.
func (s *ChatSession) handleSlashCommand(cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	rest := strings.TrimSpace(strings.TrimPrefix(cmd, parts[0]))

	switch command {
	case "/help", "/h", "/?", "/":
		s.printHelp()
		return true, nil

	case "/clear", "/c":
		s.History.Clear()
		fmt.Fprintln(s.Out, s.Theme.Command.Render("[Conversation cleared]"))
		return true, nil

	case "/history":
		s.printHistory()
		return true, nil

	case "/system":
		return true, s.handleSystemCommand(rest)

	case "/save":
		return true, s.handleSaveCommand(rest)

	case "/status", "/s":
		s.printStatus()
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// handleSystemCommand shows the system prompt, or replaces it with text.
func (s *ChatSession) handleSystemCommand(text string) error {
	if text == "" {
		prompt, ok := s.History.SystemPrompt()
		if !ok {
			fmt.Fprintln(s.Out, s.Theme.Muted.Render("[No system prompt]"))
			return nil
		}
		fmt.Fprintf(s.Out, "%s %s\n", s.Theme.Heading.Render("System:"), prompt)
		return nil
	}

	s.History.SetSystemPrompt(text)
	fmt.Fprintln(s.Out, s.Theme.RenderSuccess("System prompt updated"))
	return nil
}

// handleSaveCommand writes the conversation to path.
func (s *ChatSession) handleSaveCommand(path string) error {
	if path == "" {
		return errors.New("usage: /save <file>")
	}

	written, err := export.WriteFile(s.History, path, &export.Options{
		IncludeMetadata: true,
		IncludeSystem:   true,
		Endpoint:        s.Client.Endpoint(),
		Preset:          s.Preset,
	})
	if err != nil {
		return fmt.Errorf("could not save transcript: %w", err)
	}

	fmt.Fprintln(s.Out, s.Theme.RenderSuccess("Saved transcript to "+written))
	return nil
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the connection banner.
func (s *ChatSession) printWelcome() {
	fmt.Fprintln(s.Out, s.Theme.Banner.Render("Chat Interface - Connected to "+endpointHost(s.Client.Endpoint())))
	fmt.Fprintln(s.Out, s.Theme.Hint.Render(ExitHint))
	fmt.Fprintln(s.Out)
}

// printHelp prints available commands.
func (s *ChatSession) printHelp() {
	fmt.Fprintln(s.Out)
	fmt.Fprintln(s.Out, s.Theme.Heading.Render("Available Commands"))
	fmt.Fprintln(s.Out, s.Theme.Muted.Render(strings.Repeat("─", 20)))

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/clear, /c", "Clear conversation history"},
		{"/history", "Show conversation history"},
		{"/system [text]", "Show or replace the system prompt"},
		{"/save <file>", "Write a transcript (.md or .json)"},
		{"/status, /s", "Show session details"},
		{"/quit, /q", "Exit chat"},
	}

	for _, c := range commands {
		fmt.Fprintf(s.Out, "  %s  %s\n",
			s.Theme.Command.Render(util.PadRight(c.cmd, 16)),
			c.desc)
	}

	fmt.Fprintln(s.Out)
	fmt.Fprintln(s.Out, s.Theme.Hint.Render("Tip: exit or quit also end the session, as do Ctrl+C and Ctrl+D"))
	fmt.Fprintln(s.Out)
}

// printHistory prints conversation history, one line per message.
func (s *ChatSession) printHistory() {
	messages := s.History.Messages()
	if len(messages) == 0 {
		fmt.Fprintln(s.Out, s.Theme.Muted.Render("[No messages yet]"))
		return
	}

	fmt.Fprintln(s.Out)
	fmt.Fprintln(s.Out, s.Theme.Heading.Render(fmt.Sprintf("Conversation History (%d messages)", len(messages))))
	fmt.Fprintln(s.Out, s.Theme.Muted.Render(strings.Repeat("─", 25)))

	width := s.Width
	if width <= 0 {
		width = DefaultTerminalWidth
	}

	for i, msg := range messages {
		var role string
		switch msg.Role {
		case llm.RoleUser:
			role = s.Theme.UserLabel.Render("You")
		case llm.RoleAssistant:
			role = s.Theme.AssistantLabel.Render("Assistant")
		default:
			role = s.Theme.Heading.Render("System")
		}

		prefix := fmt.Sprintf("  %d. ", i+1)
		room := width - util.StringWidth(prefix) - util.StringWidth(msg.Role.String()) - 4
		if room < 10 {
			room = 10
		}
		fmt.Fprintf(s.Out, "%s%s: %s\n", prefix, role, util.Preview(msg.Content, room))
	}

	fmt.Fprintln(s.Out)
}

// printStatus prints session details.
func (s *ChatSession) printStatus() {
	elapsed := time.Since(s.StartTime).Round(time.Second)

	filter := "off"
	if s.FilterEnabled {
		filter = fmt.Sprintf("on (blocks of %d+ lines, %d copies)",
			s.Detector.MinChunkSize, s.Detector.MaxRepetitions)
	}

	rows := []struct {
		label string
		value string
	}{
		{"Session:", s.History.ID},
		{"Endpoint:", s.Client.Endpoint()},
		{"Preset:", s.Preset},
		{"Filter:", filter},
		{"Exchanges:", fmt.Sprintf("%d", s.History.Turns())},
		{"Truncated:", fmt.Sprintf("%d replies", s.Filtered)},
		{"Duration:", elapsed.String()},
	}

	fmt.Fprintln(s.Out)
	fmt.Fprintln(s.Out, s.Theme.Heading.Render("Session Status"))
	fmt.Fprintln(s.Out, s.Theme.Muted.Render(strings.Repeat("─", 20)))
	for _, r := range rows {
		fmt.Fprintf(s.Out, "  %s %s\n", s.Theme.Muted.Render(util.PadRight(r.label, 11)), r.value)
	}
	fmt.Fprintln(s.Out)
}

// endpointHost returns host:port of the endpoint, or the endpoint itself
// if it does not parse.
func endpointHost(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}
	return u.Host
}
