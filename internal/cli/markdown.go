// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// newMarkdownRenderer returns a function rendering markdown for terminal
// display at the given width. Content that fails to render is returned as is.
func newMarkdownRenderer(width int) (func(string) string, error) {
	if width <= 0 {
		width = DefaultTerminalWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err != nil {
		return nil, err
	}

	return func(content string) string {
		rendered, err := r.Render(content)
		if err != nil {
			return content
		}
		return strings.TrimRight(rendered, "\n") + "\n"
	}, nil
}
