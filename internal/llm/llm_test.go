// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"encoding/json"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello")

	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want 'user'", msg.Role)
	}
	if msg.Content != "Hello" {
		t.Errorf("Content = %q, want 'Hello'", msg.Content)
	}
}

func TestNewAssistantMessage(t *testing.T) {
	msg := NewAssistantMessage("Response")

	if msg.Role != RoleAssistant {
		t.Errorf("Role = %q, want 'assistant'", msg.Role)
	}
	if msg.Content != "Response" {
		t.Errorf("Content = %q, want 'Response'", msg.Content)
	}
}

func TestNewSystemMessage(t *testing.T) {
	msg := NewSystemMessage("You are terse.")

	if msg.Role != RoleSystem {
		t.Errorf("Role = %q, want 'system'", msg.Role)
	}
	if msg.Content != "You are terse." {
		t.Errorf("Content = %q", msg.Content)
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleSystem, RoleUser, RoleAssistant} {
		if !r.Valid() {
			t.Errorf("%q should be valid", r)
		}
	}
	if Role("tool").Valid() {
		t.Error("'tool' should not be valid")
	}
}

func TestMessageJSON(t *testing.T) {
	data, err := json.Marshal(NewUserMessage("hi"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"role":"user","content":"hi"}` {
		t.Errorf("got %s", data)
	}
}

// =============================================================================
// OPTIONS TESTS
// =============================================================================

func TestStandardOptions(t *testing.T) {
	opts := StandardOptions()

	if opts.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", opts.Temperature)
	}
	if opts.MaxTokens != 2048 {
		t.Errorf("MaxTokens = %d, want 2048", opts.MaxTokens)
	}
	if opts.FrequencyPenalty != 0.3 || opts.PresencePenalty != 0.3 {
		t.Errorf("penalties = %v/%v, want 0.3/0.3", opts.FrequencyPenalty, opts.PresencePenalty)
	}
	if opts.RepetitionPenalty != nil {
		t.Errorf("RepetitionPenalty should be unset, got %v", *opts.RepetitionPenalty)
	}
}

func TestTunedOptions(t *testing.T) {
	opts := TunedOptions()

	if opts.Temperature != 0.6 {
		t.Errorf("Temperature = %v, want 0.6", opts.Temperature)
	}
	if opts.FrequencyPenalty != 0.8 || opts.PresencePenalty != 0.6 {
		t.Errorf("penalties = %v/%v, want 0.8/0.6", opts.FrequencyPenalty, opts.PresencePenalty)
	}
	if opts.RepetitionPenalty == nil || *opts.RepetitionPenalty != 1.15 {
		t.Errorf("RepetitionPenalty = %v, want 1.15", opts.RepetitionPenalty)
	}
}

func TestOptionsForPreset(t *testing.T) {
	if _, ok := OptionsForPreset(PresetStandard); !ok {
		t.Error("standard preset not found")
	}
	if opts, ok := OptionsForPreset(PresetTuned); !ok || opts.Temperature != 0.6 {
		t.Errorf("tuned preset = %+v, %v", opts, ok)
	}
	if _, ok := OptionsForPreset("creative"); ok {
		t.Error("unknown preset should not be found")
	}
}

// =============================================================================
// REQUEST TESTS
// =============================================================================

func TestChatRequestJSON_Standard(t *testing.T) {
	req := NewChatRequest([]Message{NewUserMessage("hi")}, StandardOptions())

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	for _, key := range []string{"messages", "temperature", "max_tokens", "stream", "frequency_penalty", "presence_penalty"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing field %q in %s", key, data)
		}
	}
	if _, ok := fields["repetition_penalty"]; ok {
		t.Errorf("repetition_penalty should be omitted: %s", data)
	}
	if fields["stream"] != false {
		t.Errorf("stream = %v, want false", fields["stream"])
	}
}

func TestChatRequestJSON_Tuned(t *testing.T) {
	req := NewChatRequest(nil, TunedOptions())

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if fields["repetition_penalty"] != 1.15 {
		t.Errorf("repetition_penalty = %v, want 1.15", fields["repetition_penalty"])
	}
}
