// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jeranaias/llmchat/internal/config"
	"github.com/jeranaias/llmchat/internal/util"
)

// nopCloser closes nothing.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetupLogging routes diagnostic logs according to cfg. With verbose they
// go to stderr; otherwise to the configured log file, or nowhere. The
// returned closer must be closed on exit.
func SetupLogging(cfg *config.Config, verbose bool) (io.Closer, error) {
	level, err := util.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		level = util.LevelInfo
	}

	if verbose {
		util.SetupLogging(os.Stderr, util.LevelDebug)
		return nopCloser{}, nil
	}

	path, err := cfg.LogFilePath()
	if err != nil || path == "" {
		util.SetupLogging(io.Discard, level)
		return nopCloser{}, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		util.SetupLogging(io.Discard, level)
		return nopCloser{}, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		util.SetupLogging(io.Discard, level)
		return nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
	}

	util.SetupLogging(f, level)
	return f, nil
}
