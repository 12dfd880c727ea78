// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists collected paper records as session-scoped JSON
// documents and computes aggregate statistics over them.
//
// A session is created once per Store lifetime and is immutable once
// created: new documents are added as new files, never rewritten in place
// except through the explicit append and merge operations.
package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-collector/pkg/types"
)

const (
	sessionPrefix   = "session_"
	paperFilePrefix = "papers_"
	manifestFile    = "session.yaml"
	timestampLayout = "20060102_150405"
)

// nowFunc returns the current time. Tests override it for stable names.
var nowFunc = time.Now

// Store manages one collection session under a base directory.
type Store struct {
	baseDir string
	session string
	warn    io.Writer
}

// sessionManifest is the YAML header written when a session is created.
type sessionManifest struct {
	Session   string `yaml:"session"`
	CreatedAt string `yaml:"created_at"`
	OutputDir string `yaml:"output_dir"`
}

// New creates the base directory and a fresh timestamp-named session under
// it, writing the session manifest. Warnings from permissive operations go
// to warn.
func New(cfg types.StorageConfig, warn io.Writer) (*Store, error) {
	baseDir := cfg.OutputDir
	if baseDir == "" {
		baseDir = "./results"
	}

	session := sessionPrefix + nowFunc().Format(timestampLayout)
	sessionDir := filepath.Join(baseDir, session)
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session directory %s: %w", sessionDir, err)
	}

	manifest := sessionManifest{
		Session:   session,
		CreatedAt: nowFunc().Format(time.RFC3339),
		OutputDir: baseDir,
	}
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("marshaling session manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(sessionDir, manifestFile), data, 0o644); err != nil {
		return nil, fmt.Errorf("writing session manifest: %w", err)
	}

	return &Store{baseDir: baseDir, session: session, warn: warn}, nil
}

// Session returns the session identifier.
func (s *Store) Session() string { return s.session }

// SessionDir returns the session directory path.
func (s *Store) SessionDir() string { return filepath.Join(s.baseDir, s.session) }

// SavePapers writes a collection document for the current session and
// returns its path. When filename is empty a timestamped name is generated.
func (s *Store) SavePapers(papers []types.PaperRecord, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("%s%s.json", paperFilePrefix, nowFunc().Format(timestampLayout))
	}
	path := filepath.Join(s.SessionDir(), filename)

	if papers == nil {
		papers = []types.PaperRecord{}
	}
	doc := types.CollectionDocument{
		Metadata: types.DocumentMetadata{
			TotalCount:  len(papers),
			CollectedAt: nowFunc().Format(time.RFC3339),
			Session:     s.session,
		},
		Papers: papers,
	}

	if err := writeDocument(path, doc); err != nil {
		return "", err
	}
	return path, nil
}

// LoadPapers reads a collection document. It is permissive: it accepts
// either a metadata-wrapped document or a bare record list, and a missing
// file or malformed JSON yields an empty list with a warning, not an error.
func (s *Store) LoadPapers(path string) []types.PaperRecord {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(s.warn, "warning: cannot read %s: %v\n", path, err)
		return nil
	}

	// Bare record list first; an object document fails this and falls
	// through to the wrapped form.
	var bare []types.PaperRecord
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare
	}

	var doc types.CollectionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		fmt.Fprintf(s.warn, "warning: malformed document %s: %v\n", path, err)
		return nil
	}
	return doc.Papers
}

// AppendPaper adds one record to an existing document. When path is empty
// the newest document of the current session is extended, or a new one is
// created if the session has none.
func (s *Store) AppendPaper(paper types.PaperRecord, path string) (string, error) {
	if path == "" {
		newest, err := s.newestDocument()
		if err != nil {
			return "", err
		}
		if newest == "" {
			return s.SavePapers([]types.PaperRecord{paper}, "")
		}
		path = newest
	}

	papers := append(s.LoadPapers(path), paper)
	return s.SavePapers(papers, filepath.Base(path))
}

// newestDocument returns the lexically last papers_*.json in the current
// session (timestamped names sort chronologically), or "" when none exist.
func (s *Store) newestDocument() (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.SessionDir(), paperFilePrefix+"*.json"))
	if err != nil {
		return "", fmt.Errorf("listing session documents: %w", err)
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// Statistics recomputes the aggregate counts for a stored document.
func (s *Store) Statistics(path string) types.Statistics {
	return ComputeStatistics(s.LoadPapers(path))
}

// ComputeStatistics derives aggregate counts from a record set. It always
// scans the full set; calling it twice on unchanged data yields identical
// results.
func ComputeStatistics(papers []types.PaperRecord) types.Statistics {
	stats := types.Statistics{Total: len(papers)}
	if len(papers) == 0 {
		return stats
	}

	stats.Years = make(map[string]int)
	for _, p := range papers {
		if p.Abstract != "" {
			stats.HasAbstract++
		}
		if p.FulltextLink != "" {
			stats.HasFulltext++
		}
		if len(p.Keywords) > 0 {
			stats.HasKeywords++
		}
		if p.Summary != "" {
			stats.HasSummary++
		}
		year := p.Year
		if year == "" {
			year = "Unknown"
		}
		stats.Years[year]++
	}
	return stats
}

// MergeSessions unions the documents of the given sessions into one
// document under the base directory, de-duplicating by exact title match.
// The first occurrence of a title wins; later duplicates are dropped.
// Near-duplicate titles with whitespace or case differences are NOT merged.
func (s *Store) MergeSessions(sessionIDs []string, outputFilename string) (string, error) {
	var all []types.PaperRecord
	for _, id := range sessionIDs {
		sessionDir := filepath.Join(s.baseDir, id)
		if _, err := os.Stat(sessionDir); err != nil {
			fmt.Fprintf(s.warn, "warning: session not found: %s\n", id)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(sessionDir, paperFilePrefix+"*.json"))
		if err != nil {
			return "", fmt.Errorf("listing documents for %s: %w", id, err)
		}
		sort.Strings(matches)
		for _, path := range matches {
			all = append(all, s.LoadPapers(path)...)
		}
	}

	unique := DeduplicateByTitle(all)

	path := filepath.Join(s.baseDir, outputFilename)
	doc := types.CollectionDocument{
		Metadata: types.DocumentMetadata{
			TotalCount: len(unique),
			MergedFrom: sessionIDs,
			MergedAt:   nowFunc().Format(time.RFC3339),
		},
		Papers: unique,
	}
	if err := writeDocument(path, doc); err != nil {
		return "", err
	}
	return path, nil
}

// DeduplicateByTitle drops records whose exact title was already seen.
// Records without a title are dropped as well.
func DeduplicateByTitle(papers []types.PaperRecord) []types.PaperRecord {
	seen := make(map[string]bool, len(papers))
	unique := make([]types.PaperRecord, 0, len(papers))
	for _, p := range papers {
		if p.Title == "" || seen[p.Title] {
			continue
		}
		seen[p.Title] = true
		unique = append(unique, p)
	}
	return unique
}

// ExportForAI filters a stored document down to records that carry both a
// title and an abstract, the inputs the summarizer needs.
func (s *Store) ExportForAI(path string) []types.PaperRecord {
	var ready []types.PaperRecord
	for _, p := range s.LoadPapers(path) {
		if strings.TrimSpace(p.Title) != "" && p.Abstract != "" {
			ready = append(ready, p)
		}
	}
	return ready
}

// writeDocument marshals a document as indented JSON and writes it whole.
func writeDocument(path string, doc types.CollectionDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing document %s: %w", path, err)
	}
	return nil
}
