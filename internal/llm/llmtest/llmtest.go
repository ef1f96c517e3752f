// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llmtest provides an in-process OpenAI-compatible endpoint for tests.
//
// Endpoints:
//   - POST /v1/chat/completions - canned or computed chat completions
//   - GET  /v1/models          - configured model list
//   - GET  /health             - health check
//
// Requests are validated the way a real server would validate them, so
// tests see the same 4xx responses a misbehaving client would get.
package llmtest

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jeranaias/llmchat/internal/llm"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// CompletionsPath is the chat completions route.
	CompletionsPath = "/v1/chat/completions"

	// ModelsPath is the model listing route.
	ModelsPath = "/v1/models"

	// DefaultReply is returned once the canned replies run out.
	DefaultReply = "ok"

	// MaxMessageCount is the maximum number of messages in a request.
	MaxMessageCount = 100

	// MaxRequestBodySize is the maximum accepted request body (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// MaxTokensLimit is the maximum value for max_tokens.
	MaxTokensLimit = 128000

	// MaxTemperature is the maximum value for temperature.
	MaxTemperature = 2.0
)

// validateMessages rejects empty conversations and unknown roles.
func validateMessages(messages []llm.Message) error {
	if len(messages) == 0 {
		return fmt.Errorf("messages array is required")
	}
	if len(messages) > MaxMessageCount {
		return fmt.Errorf("too many messages (max %d)", MaxMessageCount)
	}
	for i, msg := range messages {
		if !msg.Role.Valid() {
			return fmt.Errorf("invalid role '%s' at message %d: must be one of user, assistant, system", msg.Role, i)
		}
	}
	return nil
}

// ============================================================================
// SERVER
// ============================================================================

// ReplyFunc computes a reply for a validated request.
type ReplyFunc func(req llm.ChatRequest) string

// Stats tracks request counts.
type Stats struct {
	Completions int64
	Rejected    int64
	ModelLists  int64
}

// Server is a fake LLM endpoint backed by httptest.
type Server struct {
	mu       sync.Mutex
	replies  []string
	reply    ReplyFunc
	models   []string
	requests []llm.ChatRequest

	completions atomic.Int64
	rejected    atomic.Int64
	modelLists  atomic.Int64

	srv *httptest.Server
}

// New starts a server that answers with replies in order, then DefaultReply.
// The server is closed when the test ends.
func New(t testing.TB, replies ...string) *Server {
	t.Helper()
	s := &Server{
		replies: replies,
		models:  []string{"local-model"},
	}
	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(s.srv.Close)
	return s
}

// routes registers the HTTP handlers.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+CompletionsPath, s.handleChatCompletions)
	mux.HandleFunc("GET "+ModelsPath, s.handleModels)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.srv.URL
}

// Endpoint returns the full chat completions URL.
func (s *Server) Endpoint() string {
	return s.srv.URL + CompletionsPath
}

// Close shuts the server down early, leaving its endpoint unreachable.
func (s *Server) Close() {
	s.srv.Close()
}

// SetReplyFunc replaces the canned replies with a computed reply.
func (s *Server) SetReplyFunc(fn ReplyFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply = fn
}

// SetModels sets the ids reported by the models endpoint.
func (s *Server) SetModels(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models = ids
}

// Requests returns a copy of every accepted chat request.
func (s *Server) Requests() []llm.ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.ChatRequest(nil), s.requests...)
}

// Stats returns a snapshot of the request counters.
func (s *Server) Stats() Stats {
	return Stats{
		Completions: s.completions.Load(),
		Rejected:    s.rejected.Load(),
		ModelLists:  s.modelLists.Load(),
	}
}

// ============================================================================
// CHAT COMPLETIONS HANDLER
// ============================================================================

// handleChatCompletions handles POST /v1/chat/completions.
func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req llm.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.reject(w, "Invalid JSON: "+err.Error())
		return
	}

	if err := validateMessages(req.Messages); err != nil {
		s.reject(w, err.Error())
		return
	}
	if req.MaxTokens < 0 || req.MaxTokens > MaxTokensLimit {
		s.reject(w, fmt.Sprintf("max_tokens must be between 0 and %d", MaxTokensLimit))
		return
	}
	if req.Temperature < 0 || req.Temperature > MaxTemperature {
		s.reject(w, fmt.Sprintf("temperature must be between 0 and %.1f", MaxTemperature))
		return
	}
	if req.Stream {
		s.reject(w, "streaming is not supported")
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	reply := DefaultReply
	switch {
	case s.reply != nil:
		reply = s.reply(req)
	case len(s.replies) > 0:
		reply = s.replies[0]
		s.replies = s.replies[1:]
	}
	model := "local-model"
	if len(s.models) > 0 {
		model = s.models[0]
	}
	s.mu.Unlock()
	s.completions.Add(1)

	promptTokens := 0
	for _, m := range req.Messages {
		promptTokens += len(strings.Fields(m.Content))
	}
	completionTokens := len(strings.Fields(reply))

	s.writeJSON(w, http.StatusOK, llm.ChatResponse{
		ID:    generateResponseID(),
		Model: model,
		Choices: []llm.Choice{{
			Index:        0,
			Message:      &llm.ResponseMessage{Role: string(llm.RoleAssistant), Content: &reply},
			FinishReason: "stop",
		}},
		Usage: &llm.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	})
}

// ============================================================================
// MODELS AND HEALTH HANDLERS
// ============================================================================

// handleModels handles GET /v1/models.
func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	s.modelLists.Add(1)

	s.mu.Lock()
	models := make([]llm.ModelInfo, 0, len(s.models))
	for _, id := range s.models {
		models = append(models, llm.ModelInfo{ID: id, Object: "model", OwnedBy: "llmtest"})
	}
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, llm.ListModelsResponse{Data: models})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ============================================================================
// HELPERS
// ============================================================================

// reject counts and writes a 400 response.
func (s *Server) reject(w http.ResponseWriter, message string) {
	s.rejected.Add(1)
	s.writeError(w, http.StatusBadRequest, message)
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
			"type":    "invalid_request_error",
			"code":    status,
		},
	})
}

// generateResponseID generates a unique response ID.
func generateResponseID() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return "chatcmpl-" + hex.EncodeToString(bytes)
}
