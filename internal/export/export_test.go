// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/llmchat/internal/conversation"
	"github.com/jeranaias/llmchat/internal/llm"
)

func sampleHistory() *conversation.History {
	h := conversation.New("You are terse.")
	h.AddExchange("What is Go?", "A programming language.")
	h.AddExchange("Who made it?", "Google.")
	return h
}

var fixedNow = time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC)

// =============================================================================
// MARKDOWN TESTS
// =============================================================================

func TestMarkdownExport(t *testing.T) {
	h := sampleHistory()
	exporter := NewMarkdownExporter(&Options{
		IncludeMetadata: true,
		IncludeSystem:   true,
		Endpoint:        llm.DefaultEndpoint,
		Preset:          "tuned",
		Now:             fixedNow,
	})

	out, err := exporter.Export(h)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	result := string(out)

	for _, want := range []string{
		"# Conversation",
		"- **Session**: " + h.ID,
		"- **Endpoint**: " + llm.DefaultEndpoint,
		"- **Preset**: tuned",
		"- **Exchanges**: 2",
		"### System\n\nYou are terse.",
		"### You\n\nWhat is Go?",
		"### Assistant\n\nA programming language.",
		"*Exported from llmchat on March 1, 2025 at 2:30 PM*",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("missing %q in:\n%s", want, result)
		}
	}

	if strings.Index(result, "What is Go?") > strings.Index(result, "Who made it?") {
		t.Error("messages out of order")
	}
}

func TestMarkdownExport_NoSystemNoMetadata(t *testing.T) {
	exporter := NewMarkdownExporter(&Options{Now: fixedNow})

	out, err := exporter.Export(sampleHistory())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	result := string(out)

	if strings.Contains(result, "You are terse.") {
		t.Error("system prompt should be omitted")
	}
	if strings.Contains(result, "**Session**") {
		t.Error("metadata should be omitted")
	}
	if !strings.HasPrefix(result, "# Conversation\n\n### You") {
		t.Errorf("unexpected start:\n%s", result)
	}
}

func TestMarkdownExport_Empty(t *testing.T) {
	exporter := NewMarkdownExporter(nil)

	if _, err := exporter.Export(conversation.New("sys")); err == nil {
		t.Error("expected error for a conversation without exchanges")
	}
	if _, err := exporter.Export(nil); err == nil {
		t.Error("expected error for nil conversation")
	}
}

// =============================================================================
// JSON TESTS
// =============================================================================

func TestJSONExport(t *testing.T) {
	h := sampleHistory()
	exporter := NewJSONExporter(&Options{IncludeSystem: true, IncludeMetadata: true, Endpoint: "http://x/v1/chat/completions", Now: fixedNow})

	out, err := exporter.Export(h)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var doc jsonTranscript
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.ID != h.ID {
		t.Errorf("ID = %q, want %q", doc.ID, h.ID)
	}
	if doc.Endpoint != "http://x/v1/chat/completions" {
		t.Errorf("Endpoint = %q", doc.Endpoint)
	}
	if len(doc.Messages) != 5 || doc.Messages[0].Role != llm.RoleSystem {
		t.Errorf("Messages = %+v", doc.Messages)
	}
	if !doc.ExportedAt.Equal(fixedNow) {
		t.Errorf("ExportedAt = %v", doc.ExportedAt)
	}
}

func TestJSONExport_WithoutSystem(t *testing.T) {
	exporter := NewJSONExporter(&Options{})

	out, err := exporter.Export(sampleHistory())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var doc jsonTranscript
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(doc.Messages) != 4 || doc.Messages[0].Role != llm.RoleUser {
		t.Errorf("Messages = %+v", doc.Messages)
	}
	if doc.Endpoint != "" {
		t.Errorf("Endpoint should be omitted without metadata, got %q", doc.Endpoint)
	}
}

// =============================================================================
// FILE TESTS
// =============================================================================

func TestForPath(t *testing.T) {
	testCases := []struct {
		path string
		ext  string
	}{
		{"chat.md", ".md"},
		{"chat.JSON", ".json"},
		{"chat.txt", ".md"},
		{"chat", ".md"},
	}

	for _, tc := range testCases {
		if got := ForPath(tc.path, nil).FileExtension(); got != tc.ext {
			t.Errorf("ForPath(%q) extension = %q, want %q", tc.path, got, tc.ext)
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteFile(sampleHistory(), filepath.Join(dir, "transcript"), nil)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if filepath.Ext(path) != ".md" {
		t.Errorf("path = %q, want .md extension added", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if !strings.Contains(string(content), "A programming language.") {
		t.Errorf("unexpected content:\n%s", content)
	}
}

func TestWriteFile_JSON(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "chat.json")

	path, err := WriteFile(sampleHistory(), target, nil)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if path != target {
		t.Errorf("path = %q, want %q", path, target)
	}

	content, _ := os.ReadFile(path)
	if !json.Valid(content) {
		t.Errorf("not JSON:\n%s", content)
	}
}

func TestWriteFile_Errors(t *testing.T) {
	if _, err := WriteFile(sampleHistory(), "  ", nil); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := WriteFile(conversation.New(""), filepath.Join(t.TempDir(), "a.md"), nil); err == nil {
		t.Error("expected error for empty conversation")
	}
}
