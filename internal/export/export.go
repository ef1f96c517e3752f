// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/llmchat/internal/conversation"
	"github.com/jeranaias/llmchat/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for conversation exporters.
type Exporter interface {
	// Export converts a conversation to the target format and returns the content.
	Export(h *conversation.History) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md").
	FileExtension() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// IncludeMetadata adds a header with session ID, endpoint and timestamps.
	IncludeMetadata bool

	// IncludeSystem includes the system prompt in the transcript.
	IncludeSystem bool

	// Endpoint is recorded in the metadata header.
	Endpoint string

	// Preset is the sampling preset name recorded in the metadata header.
	Preset string

	// Now overrides the export timestamp. Zero means time.Now().
	Now time.Time
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		IncludeMetadata: true,
		IncludeSystem:   true,
	}
}

func (o *Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ForPath picks an exporter from the file extension of path.
// ".json" selects JSON; anything else selects Markdown.
func ForPath(path string, opts *Options) Exporter {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONExporter(opts)
	default:
		return NewMarkdownExporter(opts)
	}
}

// WriteFile exports h to path, choosing the format from the extension.
// A path without an extension gets the exporter's. The file is written
// atomically. The final path is returned.
func WriteFile(h *conversation.History, path string, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("no output file given")
	}

	path, err := util.ExpandHome(path)
	if err != nil {
		return "", err
	}

	exporter := ForPath(path, opts)
	if filepath.Ext(path) == "" {
		path += exporter.FileExtension()
	}

	content, err := exporter.Export(h)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	util.Infof("[export] wrote %d bytes to %s", len(content), path)
	return path, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
