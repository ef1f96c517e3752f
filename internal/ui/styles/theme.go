// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styles used by the line-oriented console.
// Styles are bound to a renderer, so the same Theme writes plain text to a
// pipe and colored text to a terminal.
type Theme struct {
	// Terminal capabilities
	ColorProfile termenv.Profile
	Renderer     *lipgloss.Renderer

	Banner         lipgloss.Style
	Hint           lipgloss.Style
	Notice         lipgloss.Style
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Warning        lipgloss.Style
	Error          lipgloss.Style
	Success        lipgloss.Style
	Heading        lipgloss.Style
	Command        lipgloss.Style
	Muted          lipgloss.Style
}

// NewTheme creates a theme rendering to w with the given color profile.
func NewTheme(w io.Writer, profile termenv.Profile) *Theme {
	r := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	r.SetColorProfile(profile)

	t := &Theme{
		ColorProfile: profile,
		Renderer:     r,
	}
	t.initStyles()
	return t
}

// PlainTheme creates a theme that never emits escape sequences.
func PlainTheme(w io.Writer) *Theme {
	return NewTheme(w, termenv.Ascii)
}

func (t *Theme) initStyles() {
	r := t.Renderer

	t.Banner = r.NewStyle().Bold(true).Foreground(Cyan)
	t.Hint = r.NewStyle().Foreground(TextMuted)
	t.Notice = r.NewStyle().Foreground(TextSecondary).Italic(true)
	t.UserLabel = r.NewStyle().Bold(true).Foreground(Cyan)
	t.AssistantLabel = r.NewStyle().Bold(true).Foreground(Purple)
	t.Warning = r.NewStyle().Foreground(Amber)
	t.Error = r.NewStyle().Foreground(Rose)
	t.Success = r.NewStyle().Foreground(Emerald)
	t.Heading = r.NewStyle().Bold(true).Foreground(Purple)
	t.Command = r.NewStyle().Foreground(Cyan)
	t.Muted = r.NewStyle().Foreground(TextMuted)
}

// =============================================================================
// STATUS HELPERS
// =============================================================================

// RenderSuccess renders a success message with its indicator.
func (t *Theme) RenderSuccess(message string) string {
	return t.Success.Render(StatusIndicators.Success + " " + message)
}

// RenderError renders an error message with its indicator.
func (t *Theme) RenderError(message string) string {
	return t.Error.Render(StatusIndicators.Error + " " + message)
}

// RenderWarning renders a warning message with its indicator.
func (t *Theme) RenderWarning(message string) string {
	return t.Warning.Render(StatusIndicators.Warning + " " + message)
}

// RenderInfo renders an info message with its indicator.
func (t *Theme) RenderInfo(message string) string {
	return t.Notice.Render(StatusIndicators.Info + " " + message)
}

// RenderStatus renders success or error depending on ok.
func (t *Theme) RenderStatus(ok bool, message string) string {
	if ok {
		return t.RenderSuccess(message)
	}
	return t.RenderError(message)
}
