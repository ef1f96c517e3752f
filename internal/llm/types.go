// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the wire value of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message represents a chat message in the conversation.
// Messages are values; once created they are not modified.
type Message struct {
	Role    Role   `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // The message content
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// =============================================================================
// SAMPLING OPTIONS
// =============================================================================

// Options contains the sampling parameters sent with every request.
type Options struct {
	Temperature      float64 // 0.0-2.0
	MaxTokens        int     // Max tokens to generate
	FrequencyPenalty float64 // Penalizes tokens by how often they already appeared
	PresencePenalty  float64 // Penalizes tokens that appeared at all

	// RepetitionPenalty is sent only when set. Not every server honours it.
	RepetitionPenalty *float64
}

// Preset names accepted by OptionsForPreset.
const (
	PresetStandard = "standard"
	PresetTuned    = "tuned"
)

// StandardOptions returns the plain sampling defaults.
func StandardOptions() Options {
	return Options{
		Temperature:      0.7,
		MaxTokens:        2048,
		FrequencyPenalty: 0.3,
		PresencePenalty:  0.3,
	}
}

// TunedOptions returns sampling defaults with stronger anti-repetition settings.
func TunedOptions() Options {
	penalty := 1.15
	return Options{
		Temperature:       0.6,
		MaxTokens:         2048,
		FrequencyPenalty:  0.8,
		PresencePenalty:   0.6,
		RepetitionPenalty: &penalty,
	}
}

// OptionsForPreset returns the options for a named preset.
// The second result is false for an unknown name.
func OptionsForPreset(name string) (Options, bool) {
	switch name {
	case PresetStandard:
		return StandardOptions(), true
	case PresetTuned:
		return TunedOptions(), true
	}
	return Options{}, false
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ChatRequest is the request body for /v1/chat/completions.
type ChatRequest struct {
	Messages          []Message `json:"messages"`
	Temperature       float64   `json:"temperature"`
	MaxTokens         int       `json:"max_tokens"`
	Stream            bool      `json:"stream"`
	FrequencyPenalty  float64   `json:"frequency_penalty"`
	PresencePenalty   float64   `json:"presence_penalty"`
	RepetitionPenalty *float64  `json:"repetition_penalty,omitempty"`
}

// NewChatRequest builds a non-streaming request from messages and options.
func NewChatRequest(messages []Message, opts Options) ChatRequest {
	return ChatRequest{
		Messages:          messages,
		Temperature:       opts.Temperature,
		MaxTokens:         opts.MaxTokens,
		Stream:            false,
		FrequencyPenalty:  opts.FrequencyPenalty,
		PresencePenalty:   opts.PresencePenalty,
		RepetitionPenalty: opts.RepetitionPenalty,
	}
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ChatResponse is the response from /v1/chat/completions.
type ChatResponse struct {
	ID      string   `json:"id,omitempty"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice is one completion alternative. Only the first is used.
type Choice struct {
	Index        int              `json:"index"`
	Message      *ResponseMessage `json:"message"`
	FinishReason string           `json:"finish_reason,omitempty"`
}

// ResponseMessage is the message inside a choice. Content is a pointer so
// that a missing or null field can be told apart from an empty reply.
type ResponseMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

// Usage reports token counts when the server provides them.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// =============================================================================
// MODEL TYPES
// =============================================================================

// ModelInfo describes a model served by the endpoint.
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// ListModelsResponse is the response from /v1/models.
type ListModelsResponse struct {
	Data []ModelInfo `json:"data"`
}
