// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/jeranaias/llmchat/internal/conversation"
	"github.com/jeranaias/llmchat/internal/llm"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a conversation to Markdown format.
func (e *MarkdownExporter) Export(h *conversation.History) ([]byte, error) {
	if h == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if h.IsEmpty() {
		return nil, fmt.Errorf("conversation has no messages")
	}

	var sb strings.Builder

	sb.WriteString("# Conversation\n\n")

	if e.options.IncludeMetadata {
		sb.WriteString(fmt.Sprintf("- **Session**: %s\n", h.ID))
		if e.options.Endpoint != "" {
			sb.WriteString(fmt.Sprintf("- **Endpoint**: %s\n", e.options.Endpoint))
		}
		if e.options.Preset != "" {
			sb.WriteString(fmt.Sprintf("- **Preset**: %s\n", e.options.Preset))
		}
		sb.WriteString(fmt.Sprintf("- **Started**: %s\n", formatTimestamp(h.CreatedAt)))
		sb.WriteString(fmt.Sprintf("- **Exchanges**: %d\n", h.Turns()))
		sb.WriteString("\n---\n\n")
	}

	msgs := h.Messages()
	written := 0
	for _, msg := range msgs {
		if msg.Role == llm.RoleSystem && !e.options.IncludeSystem {
			continue
		}
		if written > 0 {
			sb.WriteString("---\n\n")
		}
		sb.WriteString(fmt.Sprintf("### %s\n\n", roleLabel(msg.Role)))
		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n\n")
		written++
	}

	sb.WriteString(fmt.Sprintf("*Exported from llmchat on %s*\n",
		e.options.now().Format("January 2, 2006 at 3:04 PM")))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// roleLabel returns the heading used for a message role.
func roleLabel(role llm.Role) string {
	switch role {
	case llm.RoleUser:
		return "You"
	case llm.RoleAssistant:
		return "Assistant"
	case llm.RoleSystem:
		return "System"
	case "":
		return "Unknown"
	default:
		runes := []rune(string(role))
		return strings.ToUpper(string(runes[0])) + string(runes[1:])
	}
}
