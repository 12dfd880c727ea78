// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-collector/pkg/types"
)

// mockBackend records prompts and answers from a canned response, or fails
// for titles listed in failFor.
type mockBackend struct {
	mu       sync.Mutex
	prompts  []string
	response string
	failFor  string
}

func (m *mockBackend) Name() string { return "mock" }

func (m *mockBackend) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.failFor != "" && strings.Contains(prompt, m.failFor) {
		return "", fmt.Errorf("quota exceeded")
	}
	return m.response, nil
}

func (m *mockBackend) recorded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

const longAbstract = "This abstract is comfortably longer than the fifty-character threshold used by the summarizer."

// --- GenerateSummary ---

func TestGenerateSummaryUsesAbstract(t *testing.T) {
	backend := &mockBackend{response: "generated prose"}
	s := New(backend, io.Discard)

	got := s.GenerateSummary(context.Background(), "Paper A", longAbstract, []string{"ml"})
	assert.Equal(t, "generated prose", got)

	prompts := backend.recorded()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], longAbstract)
	assert.Contains(t, prompts[0], "Paper A")
	assert.Contains(t, prompts[0], "ml")
}

func TestGenerateSummaryShortAbstractSubstituted(t *testing.T) {
	backend := &mockBackend{response: "ok"}
	s := New(backend, io.Discard)

	s.GenerateSummary(context.Background(), "Paper B", "too short", nil)

	prompts := backend.recorded()
	require.Len(t, prompts, 1)
	// The raw short abstract must never reach the backend.
	assert.NotContains(t, prompts[0], "**Abstract**: too short")
	assert.Contains(t, prompts[0], "No abstract is available for this paper. Title: Paper B")
}

func TestGenerateSummaryMissingAbstractSubstituted(t *testing.T) {
	backend := &mockBackend{response: "ok"}
	s := New(backend, io.Discard)

	s.GenerateSummary(context.Background(), "Paper C", "", nil)

	prompts := backend.recorded()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "No abstract is available for this paper. Title: Paper C")
}

func TestGenerateSummaryFailureBecomesPlaceholder(t *testing.T) {
	backend := &mockBackend{failFor: "Paper D"}
	s := New(backend, io.Discard)

	got := s.GenerateSummary(context.Background(), "Paper D", longAbstract, nil)
	assert.Contains(t, got, "summary generation failed")
	assert.Contains(t, got, "quota exceeded")
}

func TestGenerateSummaryEmptyResponse(t *testing.T) {
	backend := &mockBackend{response: "   "}
	s := New(backend, io.Discard)

	got := s.GenerateSummary(context.Background(), "Paper E", longAbstract, nil)
	assert.Equal(t, "no summary could be generated", got)
}

// --- SummarizeBatch ---

func TestSummarizeBatch(t *testing.T) {
	backend := &mockBackend{response: "prose"}
	s := New(backend, io.Discard)

	papers := []types.PaperRecord{
		{Title: "First", Abstract: longAbstract},
		{Title: "Second", Abstract: longAbstract},
		{Abstract: "no title, untouched"},
	}

	out := s.SummarizeBatch(context.Background(), papers)
	require.Len(t, out, 3)

	assert.Equal(t, "prose", out[0].Summary)
	assert.NotEmpty(t, out[0].SummaryGeneratedAt)
	assert.Equal(t, "prose", out[1].Summary)
	assert.Empty(t, out[2].Summary)
	assert.Empty(t, out[2].SummaryGeneratedAt)

	// Input order preserved regardless of completion order.
	assert.Equal(t, "First", out[0].Title)
	assert.Equal(t, "Second", out[1].Title)
}

func TestSummarizeBatchOneFailureDoesNotAbort(t *testing.T) {
	backend := &mockBackend{response: "prose", failFor: "Broken Paper"}
	s := New(backend, io.Discard)

	papers := []types.PaperRecord{
		{Title: "Fine One", Abstract: longAbstract},
		{Title: "Broken Paper", Abstract: longAbstract},
		{Title: "Fine Two", Abstract: longAbstract},
	}

	out := s.SummarizeBatch(context.Background(), papers)
	require.Len(t, out, 3)
	assert.Equal(t, "prose", out[0].Summary)
	assert.Contains(t, out[1].Summary, "summary generation failed")
	assert.Equal(t, "prose", out[2].Summary)
}

func TestSummarizeBatchEmpty(t *testing.T) {
	s := New(&mockBackend{}, io.Discard)
	assert.Empty(t, s.SummarizeBatch(context.Background(), nil))
}

// --- CreateExecutiveSummary ---

func TestCreateExecutiveSummaryCapsTitles(t *testing.T) {
	backend := &mockBackend{response: "trend analysis"}
	s := New(backend, io.Discard)

	var papers []types.PaperRecord
	for i := 0; i < 15; i++ {
		papers = append(papers, types.PaperRecord{Title: fmt.Sprintf("Paper %02d", i)})
	}

	got := s.CreateExecutiveSummary(context.Background(), papers)
	assert.Equal(t, "trend analysis", got)

	prompts := backend.recorded()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Paper 09")
	assert.NotContains(t, prompts[0], "Paper 10")
	assert.Contains(t, prompts[0], "Future directions")
}

func TestCreateExecutiveSummaryNoPapers(t *testing.T) {
	backend := &mockBackend{response: "unused"}
	s := New(backend, io.Discard)

	got := s.CreateExecutiveSummary(context.Background(), nil)
	assert.Equal(t, "no papers to summarize", got)
	assert.Empty(t, backend.recorded())
}

func TestCreateExecutiveSummaryFailure(t *testing.T) {
	backend := &mockBackend{failFor: "Only Paper"}
	s := New(backend, io.Discard)

	got := s.CreateExecutiveSummary(context.Background(), []types.PaperRecord{{Title: "Only Paper"}})
	assert.Contains(t, got, "executive summary generation failed")
}

// --- backend selection ---

func TestNewBackendSelection(t *testing.T) {
	cfg := types.SummarizerConfig{AIConfig: types.AIConfig{APIKey: "k"}}

	cfg.Backend = types.BackendGemini
	b, err := NewBackend(cfg)
	require.NoError(t, err)
	assert.Equal(t, "gemini", b.Name())

	cfg.Backend = types.BackendOpenAI
	b, err = NewBackend(cfg)
	require.NoError(t, err)
	assert.Equal(t, "openai", b.Name())

	cfg.Backend = "other"
	_, err = NewBackend(cfg)
	assert.Error(t, err)
}

func TestNewBackendRequiresKey(t *testing.T) {
	_, err := NewBackend(types.SummarizerConfig{Backend: types.BackendGemini})
	assert.Error(t, err)
}
