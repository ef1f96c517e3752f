// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation holds the in-memory message history of a chat session.
package conversation

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/llmchat/internal/llm"
)

// =============================================================================
// HISTORY TYPE
// =============================================================================

// History is the ordered message list sent with every request.
//
// Messages are kept in chronological order. An optional system message may
// sit at index 0. User/assistant alternation is expected but not enforced.
// History is owned by a single goroutine and is not persisted.
type History struct {
	// Identity
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	messages []llm.Message
}

// New creates a history. A non-empty systemPrompt becomes the first message.
func New(systemPrompt string) *History {
	now := time.Now()
	h := &History{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		messages:  make([]llm.Message, 0, 8),
	}
	if systemPrompt != "" {
		h.messages = append(h.messages, llm.NewSystemMessage(systemPrompt))
	}
	return h
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Add appends a message.
func (h *History) Add(msg llm.Message) {
	h.messages = append(h.messages, msg)
	h.UpdatedAt = time.Now()
}

// AddExchange appends a user message followed by the assistant's reply.
// The reply is recorded as shown to the user, error text included.
func (h *History) AddExchange(userInput, reply string) {
	h.Add(llm.NewUserMessage(userInput))
	h.Add(llm.NewAssistantMessage(reply))
}

// Messages returns a copy of the messages in order.
func (h *History) Messages() []llm.Message {
	out := make([]llm.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of messages, system message included.
func (h *History) Len() int {
	return len(h.messages)
}

// IsEmpty reports whether there are no user or assistant messages.
func (h *History) IsEmpty() bool {
	for _, m := range h.messages {
		if m.Role != llm.RoleSystem {
			return false
		}
	}
	return true
}

// Turns returns the number of assistant replies.
func (h *History) Turns() int {
	n := 0
	for _, m := range h.messages {
		if m.Role == llm.RoleAssistant {
			n++
		}
	}
	return n
}

// Last returns the most recent message. ok is false when history is empty.
func (h *History) Last() (msg llm.Message, ok bool) {
	if len(h.messages) == 0 {
		return llm.Message{}, false
	}
	return h.messages[len(h.messages)-1], true
}

// =============================================================================
// SYSTEM PROMPT
// =============================================================================

// SystemPrompt returns the leading system message content, if any.
func (h *History) SystemPrompt() (string, bool) {
	if len(h.messages) > 0 && h.messages[0].Role == llm.RoleSystem {
		return h.messages[0].Content, true
	}
	return "", false
}

// SetSystemPrompt replaces the leading system message, inserts one when
// there is none, or removes it when prompt is empty.
func (h *History) SetSystemPrompt(prompt string) {
	_, has := h.SystemPrompt()
	switch {
	case prompt == "" && has:
		h.messages = append(h.messages[:0:0], h.messages[1:]...)
	case prompt == "":
		return
	case has:
		h.messages[0] = llm.NewSystemMessage(prompt)
	default:
		h.messages = append([]llm.Message{llm.NewSystemMessage(prompt)}, h.messages...)
	}
	h.UpdatedAt = time.Now()
}

// Clear drops every message except the leading system message.
func (h *History) Clear() {
	prompt, has := h.SystemPrompt()
	h.messages = h.messages[:0:0]
	if has {
		h.messages = append(h.messages, llm.NewSystemMessage(prompt))
	}
	h.UpdatedAt = time.Now()
}
