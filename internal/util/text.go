// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ellipsis is appended to text cut by TruncateWidth.
const Ellipsis = "..."

// StringWidth returns the display width of s in terminal columns.
// Wide characters (CJK, most emoji) count as 2.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateWidth cuts s to at most maxWidth columns, ending with Ellipsis
// when anything was removed. Multi-byte characters are never split.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= len(Ellipsis) {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, Ellipsis)
}

// PadRight pads s with spaces to width columns.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Preview flattens s onto one line and truncates it to maxWidth columns.
// Runs of whitespace, newlines included, become a single space.
func Preview(s string, maxWidth int) string {
	return TruncateWidth(strings.Join(strings.Fields(s), " "), maxWidth)
}

// LineCount returns the number of lines in s, counting a final line without
// a newline. An empty string has zero lines.
func LineCount(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
