// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-collector pipeline.
package types

// PaperRecord holds the metadata collected for a single paper. Records are
// independent of each other; every field except Title is optional and
// best-effort. Timestamps are RFC 3339 strings so that documents written by
// earlier runs load without reinterpretation.
type PaperRecord struct {
	// Title is the paper title. A record without a title is invalid.
	Title string `json:"title" yaml:"title"`

	// Authors is the author line as shown on the search result,
	// kept as free text rather than split into a list.
	Authors string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Journal is the venue name from the detail page.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// Publication is the venue/issue line from the search result.
	Publication string `json:"publication,omitempty" yaml:"publication,omitempty"`

	// Year is a four-digit publication year token, loosely validated.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// Abstract is the full abstract from the detail page; may be empty.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// AbstractPreview is the truncated abstract shown on the result list.
	AbstractPreview string `json:"abstract_preview,omitempty" yaml:"abstract_preview,omitempty"`

	// Keywords lists the paper keywords in page order.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Link is the detail page URL.
	Link string `json:"link,omitempty" yaml:"link,omitempty"`

	// FulltextLink is the full-text URL when one was found.
	FulltextLink string `json:"fulltext_link,omitempty" yaml:"fulltext_link,omitempty"`

	// FulltextOnclick carries the raw onclick handler of the full-text
	// button when only a script link was available.
	FulltextOnclick string `json:"fulltext_onclick,omitempty" yaml:"fulltext_onclick,omitempty"`

	// IsFree reports whether the open-access heuristics matched.
	IsFree bool `json:"is_free" yaml:"is_free"`

	// Summary is the generated prose summary, set by the summarizer stage.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// SummaryGeneratedAt is when the summary was generated (RFC 3339).
	SummaryGeneratedAt string `json:"summary_generated_at,omitempty" yaml:"summary_generated_at,omitempty"`

	// CollectedAt is when the record was collected (RFC 3339).
	CollectedAt string `json:"collected_at,omitempty" yaml:"collected_at,omitempty"`
}

// DocumentMetadata is the header of a persisted collection document.
type DocumentMetadata struct {
	// TotalCount is the number of papers in the document.
	TotalCount int `json:"total_count" yaml:"total_count"`

	// CollectedAt is the document write time (RFC 3339).
	CollectedAt string `json:"collected_at,omitempty" yaml:"collected_at,omitempty"`

	// Session is the session identifier that owns the document.
	Session string `json:"session,omitempty" yaml:"session,omitempty"`

	// MergedFrom lists source session IDs for documents produced by a merge.
	MergedFrom []string `json:"merged_from,omitempty" yaml:"merged_from,omitempty"`

	// MergedAt is the merge time for merged documents (RFC 3339).
	MergedAt string `json:"merged_at,omitempty" yaml:"merged_at,omitempty"`
}

// CollectionDocument is the JSON document shape written by the storage stage:
// a metadata header wrapping the record list.
type CollectionDocument struct {
	Metadata DocumentMetadata `json:"metadata" yaml:"metadata"`
	Papers   []PaperRecord    `json:"papers" yaml:"papers"`
}

// Statistics holds aggregate counts over a record set. Counts are always
// recomputed from the full set, never maintained incrementally, so they
// cannot drift from the underlying data.
type Statistics struct {
	Total       int            `json:"total" yaml:"total"`
	HasAbstract int            `json:"has_abstract" yaml:"has_abstract"`
	HasFulltext int            `json:"has_fulltext" yaml:"has_fulltext"`
	HasKeywords int            `json:"has_keywords" yaml:"has_keywords"`
	HasSummary  int            `json:"has_summary" yaml:"has_summary"`
	Years       map[string]int `json:"years,omitempty" yaml:"years,omitempty"`
}

// OutputFiles maps output kinds to the paths written for them. Entries are
// filled in as each export stage completes; a stage failure leaves the
// entries written so far in place.
type OutputFiles struct {
	JSON   string `json:"json,omitempty" yaml:"json,omitempty"`
	Excel  string `json:"excel,omitempty" yaml:"excel,omitempty"`
	Report string `json:"report,omitempty" yaml:"report,omitempty"`
}

// CollectionResult is the engine's output. On stage failure Success is
// false, Error describes the fault, and Papers/Files hold everything
// produced before it. Partial results are retained, never rolled back.
type CollectionResult struct {
	Success          bool          `json:"success" yaml:"success"`
	Papers           []PaperRecord `json:"papers" yaml:"papers"`
	Files            OutputFiles   `json:"files" yaml:"files"`
	Statistics       Statistics    `json:"statistics" yaml:"statistics"`
	Error            string        `json:"error,omitempty" yaml:"error,omitempty"`
	ExecutiveSummary string        `json:"executive_summary,omitempty" yaml:"executive_summary,omitempty"`
}
