// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/llmchat/internal/llm"
	"github.com/jeranaias/llmchat/internal/repetition"
	"github.com/jeranaias/llmchat/internal/util"
)

// File names under the user's home directory.
const (
	SystemPromptFile = ".llmchat"
	SettingsFile     = ".llmchat.toml"
	InputHistoryFile = ".llmchat_history"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete llmchat configuration.
type Config struct {
	// Sampling parameters sent with every request
	Sampling SamplingConfig `toml:"sampling"`

	// Repetition filter applied to every reply
	Filter FilterConfig `toml:"filter"`

	// Interactive session behaviour
	Chat ChatConfig `toml:"chat"`

	// Diagnostic logging
	Log LogConfig `toml:"log"`
}

// SamplingConfig selects a preset and optionally overrides its values.
// Unset overrides keep the preset's value.
type SamplingConfig struct {
	// Preset is "standard" or "tuned"
	Preset string `toml:"preset"`

	Temperature       *float64 `toml:"temperature,omitempty"`
	MaxTokens         int      `toml:"max_tokens,omitempty"`
	FrequencyPenalty  *float64 `toml:"frequency_penalty,omitempty"`
	PresencePenalty   *float64 `toml:"presence_penalty,omitempty"`
	RepetitionPenalty *float64 `toml:"repetition_penalty,omitempty"`
}

// FilterConfig configures repetition detection.
type FilterConfig struct {
	Enabled        bool `toml:"enabled"`
	MinChunkSize   int  `toml:"min_chunk_size"`
	MaxRepetitions int  `toml:"max_repetitions"`
}

// ChatConfig configures the interactive session.
type ChatConfig struct {
	// SystemPromptFile holds the optional system prompt (default ~/.llmchat)
	SystemPromptFile string `toml:"system_prompt_file"`

	// InputHistoryFile stores recalled input lines (default ~/.llmchat_history).
	// Empty disables input recall persistence.
	InputHistoryFile string `toml:"input_history_file"`

	// Markdown renders replies with glamour when stdout is a terminal
	Markdown bool `toml:"markdown"`

	// ShowBanner prints the connection banner at startup
	ShowBanner bool `toml:"show_banner"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level"`

	// File receives log output. Empty discards it.
	File string `toml:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Sampling: SamplingConfig{
			Preset:    llm.PresetTuned,
			MaxTokens: 2048,
		},
		Filter: FilterConfig{
			Enabled:        true,
			MinChunkSize:   repetition.DefaultMinChunkSize,
			MaxRepetitions: repetition.DefaultMaxRepetitions,
		},
		Chat: ChatConfig{
			SystemPromptFile: "~/" + SystemPromptFile,
			InputHistoryFile: "~/" + InputHistoryFile,
			Markdown:         false,
			ShowBanner:       true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// SetDefaults fills zero-value fields that have no meaningful zero.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Sampling.Preset == "" {
		c.Sampling.Preset = defaults.Sampling.Preset
	}
	if c.Sampling.MaxTokens == 0 {
		c.Sampling.MaxTokens = defaults.Sampling.MaxTokens
	}
	if c.Filter.MinChunkSize == 0 {
		c.Filter.MinChunkSize = defaults.Filter.MinChunkSize
	}
	if c.Filter.MaxRepetitions == 0 {
		c.Filter.MaxRepetitions = defaults.Filter.MaxRepetitions
	}
	if c.Chat.SystemPromptFile == "" {
		c.Chat.SystemPromptFile = defaults.Chat.SystemPromptFile
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// Options returns the sampling options: the preset with overrides applied.
func (s SamplingConfig) Options() llm.Options {
	opts, ok := llm.OptionsForPreset(strings.ToLower(s.Preset))
	if !ok {
		opts = llm.TunedOptions()
	}
	if s.Temperature != nil {
		opts.Temperature = *s.Temperature
	}
	if s.MaxTokens > 0 {
		opts.MaxTokens = s.MaxTokens
	}
	if s.FrequencyPenalty != nil {
		opts.FrequencyPenalty = *s.FrequencyPenalty
	}
	if s.PresencePenalty != nil {
		opts.PresencePenalty = *s.PresencePenalty
	}
	if s.RepetitionPenalty != nil {
		v := *s.RepetitionPenalty
		opts.RepetitionPenalty = &v
	}
	return opts
}

// Detector returns the repetition detector for these settings.
func (f FilterConfig) Detector() repetition.Detector {
	return repetition.NewDetector(f.MinChunkSize, f.MaxRepetitions)
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// SettingsPath returns the path to the TOML settings file.
func SettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, SettingsFile), nil
}

// SystemPromptPath returns the expanded system prompt file path.
func (c *Config) SystemPromptPath() (string, error) {
	return util.ExpandHome(c.Chat.SystemPromptFile)
}

// InputHistoryPath returns the expanded input recall file path, or "" when disabled.
func (c *Config) InputHistoryPath() (string, error) {
	if c.Chat.InputHistoryFile == "" {
		return "", nil
	}
	return util.ExpandHome(c.Chat.InputHistoryFile)
}

// LogFilePath returns the expanded log file path, or "" when logging is discarded.
func (c *Config) LogFilePath() (string, error) {
	if c.Log.File == "" {
		return "", nil
	}
	return util.ExpandHome(c.Log.File)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads ~/.llmchat.toml if it exists, then applies environment
// overrides, defaults and validation. When the file cannot be decoded the
// defaults are returned together with the error, so callers can warn and
// carry on.
func Load() (*Config, error) {
	path, err := SettingsPath()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		cfg.SetDefaults()
		return cfg, err
	}
	return LoadFromPath(path)
}

// LoadFromPath is Load for an explicit settings file. A missing file is not
// an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	var loadErr error

	if _, statErr := os.Stat(path); statErr == nil {
		if err := LoadTOML(cfg, path); err != nil {
			loadErr = fmt.Errorf("failed to load settings from %s: %w", path, err)
			cfg = Default()
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		util.Warnf("[config] %v (using defaults)", err)
		if loadErr == nil {
			loadErr = fmt.Errorf("invalid config: %w", err)
		}
		cfg = Default()
	}

	return cfg, loadErr
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current values. Unknown keys are an error.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Save writes cfg to path as TOML, atomically.
func Save(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# llmchat settings\n")
	buf.WriteString("# Environment variables LLMCHAT_* override these values.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// String returns the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}

// =============================================================================
// SYSTEM PROMPT
// =============================================================================

// ErrConfigRead is matched by errors from LoadSystemPrompt when the file
// exists but cannot be read.
var ErrConfigRead = errors.New("could not read config file")

// ReadError reports a system prompt file that exists but could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("Could not read config file %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrConfigRead) true for every ReadError.
func (e *ReadError) Is(target error) bool {
	return target == ErrConfigRead
}

// LoadSystemPrompt returns the trimmed contents of the file at path.
// A missing file yields "" and no error. A file that exists but cannot be
// read yields "" and a *ReadError; the session continues without a prompt.
func LoadSystemPrompt(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", &ReadError{Path: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &ReadError{Path: path, Err: err}
	}
	return strings.TrimSpace(string(data)), nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks value ranges and returns ValidateErrors when any fail.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if _, ok := llm.OptionsForPreset(strings.ToLower(c.Sampling.Preset)); !ok {
		errs = append(errs, ValidationError{
			Field:   "sampling.preset",
			Message: fmt.Sprintf("invalid preset '%s', must be one of: standard, tuned", c.Sampling.Preset),
		})
	}
	if t := c.Sampling.Temperature; t != nil && (*t < 0 || *t > 2) {
		errs = append(errs, ValidationError{
			Field:   "sampling.temperature",
			Message: fmt.Sprintf("must be between 0 and 2, got %v", *t),
		})
	}
	if c.Sampling.MaxTokens < 0 {
		errs = append(errs, ValidationError{
			Field:   "sampling.max_tokens",
			Message: fmt.Sprintf("must be positive, got %d", c.Sampling.MaxTokens),
		})
	}
	for field, p := range map[string]*float64{
		"sampling.frequency_penalty": c.Sampling.FrequencyPenalty,
		"sampling.presence_penalty":  c.Sampling.PresencePenalty,
	} {
		if p != nil && (*p < -2 || *p > 2) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("must be between -2 and 2, got %v", *p),
			})
		}
	}
	if p := c.Sampling.RepetitionPenalty; p != nil && *p <= 0 {
		errs = append(errs, ValidationError{
			Field:   "sampling.repetition_penalty",
			Message: fmt.Sprintf("must be greater than 0, got %v", *p),
		})
	}

	if c.Filter.MinChunkSize < 1 {
		errs = append(errs, ValidationError{
			Field:   "filter.min_chunk_size",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Filter.MinChunkSize),
		})
	}
	if c.Filter.MaxRepetitions < 2 {
		errs = append(errs, ValidationError{
			Field:   "filter.max_repetitions",
			Message: fmt.Sprintf("must be at least 2, got %d", c.Filter.MaxRepetitions),
		})
	}

	if _, err := util.ParseLogLevel(c.Log.Level); err != nil {
		errs = append(errs, ValidationError{Field: "log.level", Message: err.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies LLMCHAT_* environment variables.
//
// Supported variables:
//   - LLMCHAT_PRESET: overrides sampling.preset
//   - LLMCHAT_TEMPERATURE: overrides sampling.temperature
//   - LLMCHAT_MAX_TOKENS: overrides sampling.max_tokens
//   - LLMCHAT_FILTER: "0" or "false" disables the repetition filter
//   - LLMCHAT_MIN_CHUNK: overrides filter.min_chunk_size
//   - LLMCHAT_MAX_REPEAT: overrides filter.max_repetitions
//   - LLMCHAT_SYSTEM_PROMPT_FILE: overrides chat.system_prompt_file
//   - LLMCHAT_MARKDOWN: overrides chat.markdown
//   - LLMCHAT_LOG_LEVEL: overrides log.level
//   - LLMCHAT_LOG_FILE: overrides log.file
//
// Values that fail to parse are logged and ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("LLMCHAT_PRESET"); v != "" {
		c.Sampling.Preset = v
	}
	if v := os.Getenv("LLMCHAT_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Sampling.Temperature = &f
		} else {
			util.Warnf("[config] ignoring LLMCHAT_TEMPERATURE=%q: %v", v, err)
		}
	}
	if v := os.Getenv("LLMCHAT_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Sampling.MaxTokens = n
		} else {
			util.Warnf("[config] ignoring LLMCHAT_MAX_TOKENS=%q: %v", v, err)
		}
	}
	if v := os.Getenv("LLMCHAT_FILTER"); v != "" {
		c.Filter.Enabled = parseBool(v)
	}
	if v := os.Getenv("LLMCHAT_MIN_CHUNK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Filter.MinChunkSize = n
		} else {
			util.Warnf("[config] ignoring LLMCHAT_MIN_CHUNK=%q: %v", v, err)
		}
	}
	if v := os.Getenv("LLMCHAT_MAX_REPEAT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Filter.MaxRepetitions = n
		} else {
			util.Warnf("[config] ignoring LLMCHAT_MAX_REPEAT=%q: %v", v, err)
		}
	}
	if v := os.Getenv("LLMCHAT_SYSTEM_PROMPT_FILE"); v != "" {
		c.Chat.SystemPromptFile = v
	}
	if v := os.Getenv("LLMCHAT_MARKDOWN"); v != "" {
		c.Chat.Markdown = parseBool(v)
	}
	if v := os.Getenv("LLMCHAT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LLMCHAT_LOG_FILE"); v != "" {
		c.Log.File = v
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
