// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize produces prose summaries of paper records through a
// generative-text backend.
//
// Summarization is best-effort by contract: a failed or empty generation
// call becomes a placeholder summary string on the record, never an error
// to the caller, so one failing record cannot abort a batch.
package summarize

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/paper-collector/pkg/types"
)

// minAbstractLen is the shortest abstract worth sending as-is. Below this
// the title-substituted placeholder is sent instead, so every record with
// a title still gets a summary attempt.
const minAbstractLen = 50

// maxExecutiveTitles caps how many titles feed the executive summary.
const maxExecutiveTitles = 10

// Backend is a single generative-text service. Each implementation turns
// one prompt into one prose completion.
type Backend interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewBackend selects the configured backend implementation.
func NewBackend(cfg types.SummarizerConfig) (Backend, error) {
	switch cfg.Backend {
	case types.BackendOpenAI:
		return NewOpenAIBackend(cfg)
	case types.BackendGemini, "":
		return NewGeminiBackend(cfg)
	default:
		return nil, fmt.Errorf("unknown summarizer backend %q", cfg.Backend)
	}
}

// Summarizer generates per-paper and cross-paper summaries.
type Summarizer struct {
	backend Backend
	warn    io.Writer
}

// New returns a Summarizer over the given backend. Warnings about
// individual failed calls go to warn.
func New(backend Backend, warn io.Writer) *Summarizer {
	return &Summarizer{backend: backend, warn: warn}
}

// GenerateSummary produces a five-section summary (topic, purpose, method,
// findings, significance) for one paper. A missing or short abstract is
// replaced with a no-abstract placeholder built from the title. Failures
// are converted to placeholder strings embedding the error.
func (s *Summarizer) GenerateSummary(ctx context.Context, title, abstract string, keywords []string) string {
	if len(abstract) < minAbstractLen {
		fmt.Fprintf(s.warn, "warning: no usable abstract, summarizing from title: %s\n", truncateTitle(title))
		abstract = noAbstractPlaceholder(title)
	}

	text, err := s.backend.Generate(ctx, summaryPrompt(title, abstract, keywords))
	if err != nil {
		fmt.Fprintf(s.warn, "warning: summary generation failed for %s: %v\n", truncateTitle(title), err)
		return fmt.Sprintf("summary generation failed: %v", err)
	}
	if strings.TrimSpace(text) == "" {
		return "no summary could be generated"
	}
	return text
}

// SummarizeBatch generates summaries for all records concurrently, one
// independent call per record, and maps results back onto the records.
// The returned slice has the same length and order as the input; records
// without a title pass through unchanged.
func (s *Summarizer) SummarizeBatch(ctx context.Context, papers []types.PaperRecord) []types.PaperRecord {
	out := make([]types.PaperRecord, len(papers))
	copy(out, papers)

	var wg sync.WaitGroup
	for i := range out {
		if out[i].Title == "" {
			continue
		}
		wg.Add(1)
		go func(rec *types.PaperRecord) {
			defer wg.Done()
			rec.Summary = s.GenerateSummary(ctx, rec.Title, rec.Abstract, rec.Keywords)
			rec.SummaryGeneratedAt = time.Now().Format(time.RFC3339)
		}(&out[i])
	}
	wg.Wait()
	return out
}

// CreateExecutiveSummary asks for a single cross-paper trend analysis
// (fields, common themes, trends, future directions) over at most ten
// titles. This is a distinct prompt shape, not a reduction over the
// per-paper summaries.
func (s *Summarizer) CreateExecutiveSummary(ctx context.Context, papers []types.PaperRecord) string {
	if len(papers) == 0 {
		return "no papers to summarize"
	}

	var titles []string
	for _, p := range papers {
		if len(titles) == maxExecutiveTitles {
			break
		}
		title := p.Title
		if title == "" {
			title = "Unknown"
		}
		titles = append(titles, title)
	}

	text, err := s.backend.Generate(ctx, executivePrompt(titles))
	if err != nil {
		fmt.Fprintf(s.warn, "warning: executive summary generation failed: %v\n", err)
		return fmt.Sprintf("executive summary generation failed: %v", err)
	}
	if strings.TrimSpace(text) == "" {
		return "executive summary generation failed: empty response"
	}
	return text
}

// noAbstractPlaceholder is the input substituted when a record has no
// usable abstract.
func noAbstractPlaceholder(title string) string {
	return "No abstract is available for this paper. Title: " + title
}

func truncateTitle(title string) string {
	if len(title) <= 50 {
		return title
	}
	return title[:50] + "..."
}
