// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the color palette and console styles for llmchat.
//
// All colors use Lip Gloss AdaptiveColor for automatic light/dark
// detection. A Theme binds the styles to one output and color profile:
//
//	theme := styles.NewTheme(os.Stdout, termenv.ColorProfile())
//	fmt.Println(theme.AssistantLabel.Render("Assistant:"))
//
// With termenv.Ascii (or PlainTheme) every style renders its input
// unchanged, which keeps piped output and tests byte-exact.
package styles
