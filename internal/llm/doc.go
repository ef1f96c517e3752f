// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm provides the HTTP client for a local OpenAI-compatible LLM server.
//
// The client posts the full conversation to /v1/chat/completions as a
// single non-streaming request and returns the content of the first choice.
// There is no retry, backoff, or timeout by default.
//
// # Key Types
//
//   - Client: sends conversations and lists models
//   - Message: a role/content pair
//   - Options: sampling parameters, with StandardOptions and TunedOptions presets
//   - ClientError: typed failure (connection, timeout, cancelled, invalid response)
//
// # Usage
//
//	client := llm.NewClientWithConfig(&llm.ClientConfig{
//	    Options: llm.TunedOptions(),
//	})
//
//	// Complete returns typed errors.
//	reply, err := client.Complete(ctx, history, "Explain goroutines")
//
//	// Send renders failures as "Error: ..." text instead.
//	reply = client.Send(ctx, history, "Explain goroutines")
package llm
