// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes chat transcripts to disk.
//
// # Key Types
//
//   - Exporter: converts a conversation.History to bytes
//   - MarkdownExporter: human-readable transcript
//   - JSONExporter: messages in request-body shape
//   - Options: metadata and system prompt inclusion
//
// # Usage
//
//	path, err := export.WriteFile(history, "chat.md", &export.Options{
//	    IncludeMetadata: true,
//	    Endpoint:        client.Endpoint(),
//	})
package export
