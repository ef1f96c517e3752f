// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
)

func TestPlainTheme_NoEscapes(t *testing.T) {
	theme := PlainTheme(&bytes.Buffer{})

	rendered := []string{
		theme.Banner.Render("Chat Interface"),
		theme.AssistantLabel.Render("Assistant:"),
		theme.Warning.Render("[Warning]"),
		theme.Error.Render("Error: boom"),
	}
	want := []string{"Chat Interface", "Assistant:", "[Warning]", "Error: boom"}

	for i, got := range rendered {
		if got != want[i] {
			t.Errorf("rendered %q, want %q", got, want[i])
		}
		if strings.Contains(got, "\x1b[") {
			t.Errorf("plain theme emitted escape sequence: %q", got)
		}
	}
}

func TestColorTheme_EmitsEscapes(t *testing.T) {
	theme := NewTheme(&bytes.Buffer{}, termenv.TrueColor)

	got := theme.Error.Render("boom")
	if !strings.Contains(got, "\x1b[") {
		t.Errorf("expected ANSI sequence, got %q", got)
	}
	if !strings.Contains(got, "boom") {
		t.Errorf("text missing from %q", got)
	}
	if theme.ColorProfile != termenv.TrueColor {
		t.Errorf("ColorProfile = %v", theme.ColorProfile)
	}
}

func TestStatusHelpers(t *testing.T) {
	theme := PlainTheme(&bytes.Buffer{})

	testCases := []struct {
		got  string
		want string
	}{
		{theme.RenderSuccess("saved"), "[OK] saved"},
		{theme.RenderError("failed"), "[X] failed"},
		{theme.RenderWarning("careful"), "[!] careful"},
		{theme.RenderInfo("note"), "[i] note"},
		{theme.RenderStatus(true, "up"), "[OK] up"},
		{theme.RenderStatus(false, "down"), "[X] down"},
	}

	for _, tc := range testCases {
		if tc.got != tc.want {
			t.Errorf("got %q, want %q", tc.got, tc.want)
		}
	}
}
