// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-collector/pkg/types"
)

func geminiCfg() types.SummarizerConfig {
	return types.SummarizerConfig{
		AIConfig: types.AIConfig{APIKey: "test-key", Model: "gemini-1.5-flash"},
		Backend:  types.BackendGemini,
		Timeout:  5 * time.Second,
	}
}

func TestGeminiGenerate(t *testing.T) {
	var gotBody geminiRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-1.5-flash:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"text": "part one "},
					{"text": "part two"},
				}}},
			},
		})
	}))
	defer ts.Close()

	orig := geminiAPIBase
	geminiAPIBase = ts.URL
	defer func() { geminiAPIBase = orig }()

	b, err := NewGeminiBackend(geminiCfg())
	require.NoError(t, err)

	text, err := b.Generate(context.Background(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, "part one part two", text)

	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "the prompt", gotBody.Contents[0].Parts[0].Text)
}

func TestGeminiGenerateAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limit exceeded"},
		})
	}))
	defer ts.Close()

	orig := geminiAPIBase
	geminiAPIBase = ts.URL
	defer func() { geminiAPIBase = orig }()

	b, err := NewGeminiBackend(geminiCfg())
	require.NoError(t, err)

	_, err = b.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 429")
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestGeminiGenerateNoCandidates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer ts.Close()

	orig := geminiAPIBase
	geminiAPIBase = ts.URL
	defer func() { geminiAPIBase = orig }()

	b, err := NewGeminiBackend(geminiCfg())
	require.NoError(t, err)

	_, err = b.Generate(context.Background(), "p")
	assert.Error(t, err)
}

func TestNewGeminiBackendRequiresKey(t *testing.T) {
	_, err := NewGeminiBackend(types.SummarizerConfig{})
	assert.Error(t, err)
}
