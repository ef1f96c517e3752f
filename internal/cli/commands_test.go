// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/llmchat/internal/config"
	"github.com/jeranaias/llmchat/internal/llm"
	"github.com/jeranaias/llmchat/internal/llm/llmtest"
	"github.com/jeranaias/llmchat/internal/repetition"
	"github.com/jeranaias/llmchat/internal/ui/styles"
	"github.com/jeranaias/llmchat/internal/util"
)

// =============================================================================
// ASK TESTS (ask.go)
// =============================================================================

func newAskRequest(endpoint, query string) AskRequest {
	return AskRequest{
		Query: query,
		Client: llm.NewClientWithConfig(&llm.ClientConfig{
			Endpoint: endpoint,
			Options:  llm.StandardOptions(),
		}),
		Detector:      repetition.DefaultDetector(),
		FilterEnabled: true,
	}
}

func TestRunAsk_PrintsReply(t *testing.T) {
	fake := llmtest.New(t, "A mutex is a lock.")
	req := newAskRequest(fake.Endpoint(), "What is a mutex?")
	req.SystemPrompt = "You are terse."

	var out, errOut bytes.Buffer
	require.NoError(t, runAsk(context.Background(), req, &out, &errOut))

	assert.Equal(t, "A mutex is a lock.\n", out.String())
	assert.Empty(t, errOut.String())

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, []llm.Message{
		llm.NewSystemMessage("You are terse."),
		llm.NewUserMessage("What is a mutex?"),
	}, reqs[0].Messages)
	assert.Nil(t, reqs[0].RepetitionPenalty, "standard preset sends no repetition_penalty")
}

func TestRunAsk_FilterWarningGoesToStderr(t *testing.T) {
	fake := llmtest.New(t, repeatedBlock(2, 4))
	req := newAskRequest(fake.Endpoint(), "loop")
	req.Detector = repetition.NewDetector(2, 2)

	var out, errOut bytes.Buffer
	require.NoError(t, runAsk(context.Background(), req, &out, &errOut))

	assert.Equal(t, "line a\nline b\n\n"+repetition.Marker+"\n", out.String())
	assert.Contains(t, errOut.String(), RepetitionWarning)
}

func TestRunAsk_ConnectionFailure(t *testing.T) {
	fake := llmtest.New(t)
	endpoint := fake.Endpoint()
	fake.Close()

	var out, errOut bytes.Buffer
	err := runAsk(context.Background(), newAskRequest(endpoint, "hello"), &out, &errOut)

	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, GetExitCode(err))
	assert.True(t, strings.HasPrefix(out.String(), "Error: Could not connect to LLM at "+endpoint))

	var buf bytes.Buffer
	DisplayError(&buf, err)
	assert.Empty(t, buf.String(), "the failure was already printed")
}

func TestRunAsk_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var out, errOut bytes.Buffer
	err := runAsk(context.Background(), newAskRequest(server.URL, "hello"), &out, &errOut)

	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, GetExitCode(err))
	assert.Contains(t, out.String(), "HTTP Error 500: Internal Server Error")
}

func TestRunAsk_Canceled(t *testing.T) {
	fake := llmtest.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, errOut bytes.Buffer
	err := runAsk(ctx, newAskRequest(fake.Endpoint(), "hello"), &out, &errOut)

	require.Error(t, err)
	assert.Equal(t, ExitGeneralError, GetExitCode(err))
	assert.Empty(t, out.String())
}

// =============================================================================
// STATUS TESTS (status.go)
// =============================================================================

func statusConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cfg := config.Default()
	cfg.Chat.SystemPromptFile = filepath.Join(t.TempDir(), "absent")
	return cfg
}

func TestRunStatus_Running(t *testing.T) {
	fake := llmtest.New(t)
	fake.SetModels("qwen2.5-7b-instruct", "llama-3.1-8b")

	cfg := statusConfig(t)
	client := llm.NewClientWithConfig(&llm.ClientConfig{
		Endpoint: fake.Endpoint(),
		Options:  cfg.Sampling.Options(),
	})

	var out bytes.Buffer
	err := runStatus(context.Background(), client, cfg, &out, styles.PlainTheme(&out))
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "[OK] Running")
	assert.Contains(t, output, "qwen2.5-7b-instruct, llama-3.1-8b")
	assert.Contains(t, output, "repetition 1.15")
	assert.Contains(t, output, "50 lines")
	assert.Contains(t, output, "(none)")
	assert.Contains(t, output, "not found, using defaults")
}

func TestRunStatus_NotReachable(t *testing.T) {
	fake := llmtest.New(t)
	endpoint := fake.Endpoint()
	fake.Close()

	cfg := statusConfig(t)
	cfg.Filter.Enabled = false
	client := llm.NewClientWithConfig(&llm.ClientConfig{Endpoint: endpoint})

	var out bytes.Buffer
	err := runStatus(context.Background(), client, cfg, &out, styles.PlainTheme(&out))

	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, GetExitCode(err))
	assert.Contains(t, out.String(), "[X] Not reachable")
	assert.Contains(t, out.String(), "[!] Disabled")
}

// =============================================================================
// CONFIG TESTS (config.go)
// =============================================================================

func TestHandleConfigShow(t *testing.T) {
	cfg := config.Default()
	cfg.Filter.MinChunkSize = 7

	var out bytes.Buffer
	require.NoError(t, handleConfigShow(&out, cfg))

	var decoded config.Config
	_, err := toml.Decode(out.String(), &decoded)
	require.NoError(t, err, "show output is valid TOML")
	assert.Equal(t, 7, decoded.Filter.MinChunkSize)
}

func TestHandleConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".llmchat.toml")

	var out bytes.Buffer
	require.NoError(t, handleConfigInit(&out, path))
	assert.Contains(t, out.String(), path)

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Filter, cfg.Filter)

	err = handleConfigInit(&out, path)
	require.Error(t, err, "an existing file is never overwritten")
	var cmdErr *CommandError
	assert.True(t, errors.As(err, &cmdErr))
}

func TestHandleConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".llmchat"), []byte("prompt"), 0600))

	cfg := config.Default()

	var out, errOut bytes.Buffer
	require.NoError(t, handleConfigPath(&out, &errOut, cfg))

	assert.Contains(t, out.String(), filepath.Join(home, ".llmchat.toml"))
	assert.Contains(t, out.String(), filepath.Join(home, ".llmchat"))
	assert.Contains(t, out.String(), "(disabled)", "no log file by default")
	assert.Contains(t, errOut.String(), filepath.Join(home, ".llmchat.toml")+" does not exist")
	assert.NotContains(t, errOut.String(), filepath.Join(home, ".llmchat")+" does not exist")
}

func TestHandleConfig_UnknownSubcommand(t *testing.T) {
	err := HandleConfig(Args{Subcommand: "frobnicate"}, config.Default())
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

// =============================================================================
// LOGGING TESTS (logging.go)
// =============================================================================

func TestSetupLogging_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "llmchat.log")
	cfg := config.Default()
	cfg.Log.File = path
	cfg.Log.Level = "warn"

	closer, err := SetupLogging(cfg, false)
	require.NoError(t, err)
	t.Cleanup(func() { util.SetupLogging(os.Stderr, util.LevelInfo) })

	util.Infof("hidden")
	util.Warnf("shown %d", 42)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[WARN] shown 42")
	assert.NotContains(t, string(data), "hidden")
}

func TestSetupLogging_Verbose(t *testing.T) {
	cfg := config.Default()
	closer, err := SetupLogging(cfg, true)
	require.NoError(t, err)
	t.Cleanup(func() { util.SetupLogging(os.Stderr, util.LevelInfo) })

	assert.Equal(t, util.LevelDebug, util.CurrentLogLevel())
	assert.NoError(t, closer.Close())
}
