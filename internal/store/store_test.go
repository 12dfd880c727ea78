// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-collector/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(types.StorageConfig{OutputDir: t.TempDir()}, io.Discard)
	require.NoError(t, err)
	return s
}

func samplePapers() []types.PaperRecord {
	return []types.PaperRecord{
		{
			Title:        "AI Research Survey",
			Authors:      "Hong",
			Abstract:     "A survey of AI research.",
			Year:         "2024",
			FulltextLink: "https://example.com/p1.pdf",
			Keywords:     []string{"AI"},
		},
		{
			Title:   "Deep Learning Applications",
			Authors: "Kim",
			Year:    "2024",
		},
	}
}

// --- session lifecycle ---

func TestNewCreatesSessionAndManifest(t *testing.T) {
	s := newTestStore(t)

	assert.True(t, strings.HasPrefix(s.Session(), "session_"))

	info, err := os.Stat(s.SessionDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	manifest, err := os.ReadFile(filepath.Join(s.SessionDir(), "session.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), s.Session())
	assert.Contains(t, string(manifest), "output_dir:")
}

// --- save / load round trip ---

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	papers := samplePapers()

	path, err := s.SavePapers(papers, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "papers_"))

	loaded := s.LoadPapers(path)
	assert.Equal(t, papers, loaded)
}

func TestSaveLoadRoundTripEmpty(t *testing.T) {
	s := newTestStore(t)

	path, err := s.SavePapers(nil, "empty.json")
	require.NoError(t, err)

	assert.Empty(t, s.LoadPapers(path))
}

func TestSaveWritesMetadataHeader(t *testing.T) {
	s := newTestStore(t)

	path, err := s.SavePapers(samplePapers(), "")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total_count": 2`)
	assert.Contains(t, string(data), `"session": "`+s.Session()+`"`)
}

func TestLoadPapersBareList(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(s.SessionDir(), "bare.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title":"Bare","is_free":true}]`), 0o644))

	papers := s.LoadPapers(path)
	require.Len(t, papers, 1)
	assert.Equal(t, "Bare", papers[0].Title)
	assert.True(t, papers[0].IsFree)
}

func TestLoadPapersMissingFile(t *testing.T) {
	s := newTestStore(t)
	assert.Empty(t, s.LoadPapers(filepath.Join(s.SessionDir(), "nope.json")))
}

func TestLoadPapersMalformedJSON(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(s.SessionDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"papers": [`), 0o644))

	assert.Empty(t, s.LoadPapers(path))
}

// --- append ---

func TestAppendPaperToNamedDocument(t *testing.T) {
	s := newTestStore(t)
	path, err := s.SavePapers(samplePapers(), "papers_base.json")
	require.NoError(t, err)

	_, err = s.AppendPaper(types.PaperRecord{Title: "Third"}, path)
	require.NoError(t, err)

	papers := s.LoadPapers(path)
	require.Len(t, papers, 3)
	assert.Equal(t, "Third", papers[2].Title)
}

func TestAppendPaperEmptySessionCreatesDocument(t *testing.T) {
	s := newTestStore(t)

	path, err := s.AppendPaper(types.PaperRecord{Title: "Only"}, "")
	require.NoError(t, err)

	papers := s.LoadPapers(path)
	require.Len(t, papers, 1)
	assert.Equal(t, "Only", papers[0].Title)
}

// --- statistics ---

func TestComputeStatistics(t *testing.T) {
	papers := []types.PaperRecord{
		{Title: "A", Abstract: "x", FulltextLink: "u", Keywords: []string{"k"}, Summary: "s", Year: "2023"},
		{Title: "B", Abstract: "y", Year: "2024"},
		{Title: "C"},
	}

	stats := ComputeStatistics(papers)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.HasAbstract)
	assert.Equal(t, 1, stats.HasFulltext)
	assert.Equal(t, 1, stats.HasKeywords)
	assert.Equal(t, 1, stats.HasSummary)
	assert.Equal(t, map[string]int{"2023": 1, "2024": 1, "Unknown": 1}, stats.Years)
}

func TestComputeStatisticsEmpty(t *testing.T) {
	stats := ComputeStatistics(nil)
	assert.Equal(t, types.Statistics{Total: 0}, stats)
}

func TestStatisticsIdempotent(t *testing.T) {
	s := newTestStore(t)
	path, err := s.SavePapers(samplePapers(), "")
	require.NoError(t, err)

	first := s.Statistics(path)
	second := s.Statistics(path)
	assert.Equal(t, first, second)
}

// --- merge ---

func TestMergeSessionsDeduplicatesByTitle(t *testing.T) {
	baseDir := t.TempDir()

	makeSession := func(id string, papers []types.PaperRecord) {
		t.Helper()
		dir := filepath.Join(baseDir, id)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		doc := types.CollectionDocument{
			Metadata: types.DocumentMetadata{TotalCount: len(papers), Session: id},
			Papers:   papers,
		}
		require.NoError(t, writeDocument(filepath.Join(dir, "papers_0001.json"), doc))
	}

	makeSession("session_a", []types.PaperRecord{
		{Title: "X", Authors: "First"},
		{Title: "Y"},
	})
	makeSession("session_b", []types.PaperRecord{
		{Title: "X", Authors: "Second"},
		{Title: "Z"},
	})

	s, err := New(types.StorageConfig{OutputDir: baseDir}, io.Discard)
	require.NoError(t, err)

	path, err := s.MergeSessions([]string{"session_a", "session_b"}, "merged.json")
	require.NoError(t, err)

	merged := s.LoadPapers(path)
	require.Len(t, merged, 3)

	titles := make(map[string]types.PaperRecord)
	for _, p := range merged {
		titles[p.Title] = p
	}
	// First occurrence wins.
	assert.Equal(t, "First", titles["X"].Authors)
	assert.Contains(t, titles, "Y")
	assert.Contains(t, titles, "Z")
}

func TestMergeSessionsSkipsMissingSession(t *testing.T) {
	s := newTestStore(t)
	path, err := s.MergeSessions([]string{"session_missing"}, "merged.json")
	require.NoError(t, err)
	assert.Empty(t, s.LoadPapers(path))
}

func TestDeduplicateByTitleCaseSensitive(t *testing.T) {
	papers := []types.PaperRecord{
		{Title: "Attention"},
		{Title: "attention"},
		{Title: "Attention "},
	}
	// Whitespace and case variants are distinct titles by policy.
	assert.Len(t, DeduplicateByTitle(papers), 3)
}

// --- AI export filter ---

func TestExportForAI(t *testing.T) {
	s := newTestStore(t)
	path, err := s.SavePapers([]types.PaperRecord{
		{Title: "With Abstract", Abstract: "text"},
		{Title: "No Abstract"},
		{Abstract: "orphan abstract"},
	}, "")
	require.NoError(t, err)

	ready := s.ExportForAI(path)
	require.Len(t, ready, 1)
	assert.Equal(t, "With Abstract", ready[0].Title)
}

func TestTimestampedNamesSortChronologically(t *testing.T) {
	early := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).Format(timestampLayout)
	late := time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC).Format(timestampLayout)
	assert.Less(t, early, late)
}
