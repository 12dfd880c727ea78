// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine chains the scraper, summarizer, storage, and exporter
// into one collection pipeline and reports its progress to observers.
package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/paper-collector/internal/export"
	"github.com/pdiddy/paper-collector/internal/extract"
	"github.com/pdiddy/paper-collector/internal/scrape"
	"github.com/pdiddy/paper-collector/internal/store"
	"github.com/pdiddy/paper-collector/internal/summarize"
	"github.com/pdiddy/paper-collector/pkg/types"
)

// State names the pipeline's position. Per-record failures never change
// it; only an unrecoverable error moves it to StateFailed.
type State string

const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing-browser"
	StateSearching    State = "searching"
	StateEnriching    State = "enriching-details"
	StateValidating   State = "validating"
	StateSummarizing  State = "summarizing"
	StatePersisting   State = "persisting"
	StateExporting    State = "exporting"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Progress checkpoints at the state transitions. The searching band runs
// from 10 up to 40, split across the keywords.
const (
	progressInit       = 5
	progressSearchBase = 10
	progressSearchBand = 30
	progressValidating = 50
	progressSummarize  = 60
	progressPersist    = 80
	progressExport     = 90
	progressDone       = 100
)

// source is the browser-backed paper supplier the pipeline consumes.
// *scrape.Scraper satisfies it.
type source interface {
	SearchPapers(ctx context.Context, keyword string, maxPapers int) ([]types.PaperRecord, error)
	PaperDetails(ctx context.Context, link string) (types.PaperRecord, error)
	Close() error
}

// Engine owns one pipeline configuration and runs collections against it.
// A single run is active at a time per instance.
type Engine struct {
	cfg        types.PipelineConfig
	summarizer *summarize.Summarizer
	store      *store.Store
	exporter   *export.Exporter
	observers  []Observer
	w          io.Writer

	// newSource opens a browser session. Tests swap it for a fake.
	newSource func(ctx context.Context) (source, error)
}

// New wires the pipeline stages together. The summarizer may be nil, in
// which case the summarizing stage is skipped.
func New(cfg types.PipelineConfig, summarizer *summarize.Summarizer, st *store.Store, exporter *export.Exporter, w io.Writer) *Engine {
	e := &Engine{
		cfg:        cfg,
		summarizer: summarizer,
		store:      st,
		exporter:   exporter,
		w:          w,
	}
	e.newSource = func(context.Context) (source, error) {
		browser, err := scrape.NewBrowser(cfg.Scraper.NavigationTimeout)
		if err != nil {
			return nil, err
		}
		return scrape.NewScraper(browser, cfg.Scraper, w), nil
	}
	return e
}

// AddObserver registers an observer for progress, status, error, and
// result notifications. Not safe to call during a run.
func (e *Engine) AddObserver(obs Observer) {
	e.observers = append(e.observers, obs)
}

// Run executes the full pipeline synchronously and returns its result.
// The result carries the error rather than returning one so that partial
// output files stay visible to the caller.
func (e *Engine) Run(ctx context.Context, keywords []string, maxPapers int) types.CollectionResult {
	return e.run(ctx, keywords, maxPapers, nil)
}

func (e *Engine) run(ctx context.Context, keywords []string, maxPapers int, stop *Task) types.CollectionResult {
	var result types.CollectionResult

	if len(keywords) == 0 {
		return e.fail(result, nil, fmt.Errorf("no search keywords given"))
	}

	e.status(StateInitializing, "Initializing browser...")
	e.progress(progressInit)

	src, err := e.newSource(ctx)
	if err != nil {
		return e.fail(result, nil, fmt.Errorf("initializing browser: %w", err))
	}

	perKeyword := maxPapers / len(keywords)

	var collected []types.PaperRecord
	for idx, keyword := range keywords {
		if stop.stopped() {
			fmt.Fprintf(e.w, "stop requested, finishing with %d papers\n", len(collected))
			break
		}
		if err := ctx.Err(); err != nil {
			return e.fail(result, src, err)
		}

		e.status(StateSearching, fmt.Sprintf("Searching %q...", keyword))
		e.progress(progressSearchBase + idx*progressSearchBand/len(keywords))

		papers, err := src.SearchPapers(ctx, keyword, perKeyword)
		if err != nil {
			return e.fail(result, src, fmt.Errorf("searching %q: %w", keyword, err))
		}

		collected = append(collected, e.enrich(ctx, src, papers)...)
	}

	// The browser is no longer needed once collection ends. Closing it
	// here keeps it out of the summarization and export stages.
	if err := src.Close(); err != nil {
		fmt.Fprintf(e.w, "warning: closing browser: %v\n", err)
	}

	e.status(StateValidating, "Validating records...")
	e.progress(progressValidating)

	validated := make([]types.PaperRecord, 0, len(collected))
	for _, rec := range collected {
		if extract.Validate(rec) {
			validated = append(validated, rec)
		}
	}

	if e.summarizer != nil && len(validated) > 0 {
		e.status(StateSummarizing, "Generating AI summaries...")
		e.progress(progressSummarize)

		validated = e.summarizer.SummarizeBatch(ctx, validated)
		result.ExecutiveSummary = e.summarizer.CreateExecutiveSummary(ctx, validated)
	}

	e.status(StatePersisting, "Saving results...")
	e.progress(progressPersist)

	jsonPath, err := e.store.SavePapers(validated, "")
	if err != nil {
		return e.fail(result, nil, fmt.Errorf("saving papers: %w", err))
	}
	result.Files.JSON = jsonPath

	e.status(StateExporting, "Writing workbook...")
	e.progress(progressExport)

	excelPath, err := e.exporter.ExportPapers(validated, "")
	if err != nil {
		return e.fail(result, nil, fmt.Errorf("exporting workbook: %w", err))
	}
	result.Files.Excel = excelPath

	if result.ExecutiveSummary != "" {
		reportPath, err := e.exporter.ExportSummaryReport(validated, result.ExecutiveSummary, "")
		if err != nil {
			return e.fail(result, nil, fmt.Errorf("exporting report: %w", err))
		}
		result.Files.Report = reportPath
	}

	result.Statistics = e.store.Statistics(jsonPath)
	result.Papers = validated
	result.Success = true

	e.status(StateDone, fmt.Sprintf("Collection complete: %d papers", len(validated)))
	e.progress(progressDone)
	e.emitResult(result)
	return result
}

// enrich overlays detail-page fields on each record that has a link.
// Detail failures are absorbed; the search-result fields stand.
func (e *Engine) enrich(ctx context.Context, src source, papers []types.PaperRecord) []types.PaperRecord {
	for i := range papers {
		if papers[i].Link == "" {
			continue
		}
		e.status(StateEnriching, fmt.Sprintf("Collecting details... (%d/%d)", i+1, len(papers)))
		det, err := src.PaperDetails(ctx, papers[i].Link)
		if err != nil {
			fmt.Fprintf(e.w, "warning: details for %q: %v\n", papers[i].Title, err)
			continue
		}
		extract.MergeDetail(&papers[i], det)
	}
	return papers
}

// fail finalizes a run that cannot continue. The browser is closed before
// returning so a mid-pipeline error never leaks the session.
func (e *Engine) fail(result types.CollectionResult, src source, err error) types.CollectionResult {
	if src != nil {
		if cerr := src.Close(); cerr != nil {
			fmt.Fprintf(e.w, "warning: closing browser: %v\n", cerr)
		}
	}
	result.Success = false
	result.Error = err.Error()
	e.emitError(err.Error())
	e.status(StateFailed, fmt.Sprintf("Collection failed: %v", err))
	e.emitResult(result)
	return result
}

// LoadAndExport re-renders a previously saved JSON document as a workbook
// without running a collection.
func (e *Engine) LoadAndExport(jsonPath, filename string) (string, error) {
	papers := e.store.LoadPapers(jsonPath)
	if len(papers) == 0 {
		return "", fmt.Errorf("no papers loaded from %s", jsonPath)
	}
	return e.exporter.ExportPapers(papers, filename)
}

func (e *Engine) status(state State, message string) {
	fmt.Fprintf(e.w, "[%s] %s\n", state, message)
	for _, obs := range e.observers {
		obs.OnStatus(state, message)
	}
}

func (e *Engine) progress(percent int) {
	for _, obs := range e.observers {
		obs.OnProgress(percent)
	}
}

func (e *Engine) emitError(message string) {
	for _, obs := range e.observers {
		obs.OnError(message)
	}
}

func (e *Engine) emitResult(result types.CollectionResult) {
	for _, obs := range e.observers {
		obs.OnResult(result)
	}
}
