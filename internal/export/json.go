// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeranaias/llmchat/internal/conversation"
	"github.com/jeranaias/llmchat/internal/llm"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports conversations to JSON. The messages array has the
// same shape as the request body, so a transcript can be replayed.
type JSONExporter struct {
	options *Options
}

// jsonTranscript is the document written by JSONExporter.
type jsonTranscript struct {
	ID         string        `json:"id"`
	Endpoint   string        `json:"endpoint,omitempty"`
	Preset     string        `json:"preset,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	ExportedAt time.Time     `json:"exported_at"`
	Messages   []llm.Message `json:"messages"`
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a conversation to indented JSON.
func (e *JSONExporter) Export(h *conversation.History) ([]byte, error) {
	if h == nil {
		return nil, fmt.Errorf("conversation is nil")
	}

	msgs := make([]llm.Message, 0, h.Len())
	for _, m := range h.Messages() {
		if m.Role == llm.RoleSystem && !e.options.IncludeSystem {
			continue
		}
		msgs = append(msgs, m)
	}

	doc := jsonTranscript{
		ID:         h.ID,
		CreatedAt:  h.CreatedAt,
		ExportedAt: e.options.now(),
		Messages:   msgs,
	}
	if e.options.IncludeMetadata {
		doc.Endpoint = e.options.Endpoint
		doc.Preset = e.options.Preset
	}

	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
