// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync/atomic"
)

// =============================================================================
// LOG LEVELS
// =============================================================================

// LogLevel controls which diagnostic messages reach the log.
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// String returns the level name as it appears in log lines.
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int32(l))
}

// ParseLogLevel converts a level name such as "debug" or "WARN" to a LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", s)
}

// =============================================================================
// LOGGER SETUP
// =============================================================================

var minLevel atomic.Int32

func init() {
	minLevel.Store(int32(LevelInfo))
}

// SetupLogging points the standard logger at w and sets the minimum level.
// Diagnostics never go to stdout; the conversation owns it.
func SetupLogging(w io.Writer, level LogLevel) {
	if w == nil {
		w = io.Discard
	}
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	minLevel.Store(int32(level))
}

// CurrentLogLevel returns the active minimum level.
func CurrentLogLevel() LogLevel {
	return LogLevel(minLevel.Load())
}

func logf(level LogLevel, format string, args ...any) {
	if level < CurrentLogLevel() {
		return
	}
	log.Printf("["+level.String()+"] "+format, args...)
}

// Debugf logs at debug level.
func Debugf(format string, args ...any) { logf(LevelDebug, format, args...) }

// Infof logs at info level.
func Infof(format string, args ...any) { logf(LevelInfo, format, args...) }

// Warnf logs at warn level.
func Warnf(format string, args ...any) { logf(LevelWarn, format, args...) }

// Errorf logs at error level.
func Errorf(format string, args ...any) { logf(LevelError, format, args...) }
