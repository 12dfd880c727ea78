// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders paper records into formatted spreadsheet workbooks.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/paper-collector/internal/extract"
	"github.com/pdiddy/paper-collector/internal/store"
	"github.com/pdiddy/paper-collector/pkg/types"
)

const (
	sheetPapers  = "Papers"
	sheetStats   = "Statistics"
	sheetSummary = "Executive Summary"
	sheetMerged  = "Merged Papers"

	timestampLayout = "20060102_150405"

	// maxAbstractLen is the abstract truncation point in the record sheet.
	maxAbstractLen = 500
)

// nowFunc returns the current time. Tests override it for stable names.
var nowFunc = time.Now

// paperColumns is the record sheet header, in column order.
var paperColumns = []string{
	"Title", "Authors", "Year", "Journal", "Keywords",
	"Abstract", "AI Summary", "Fulltext Link", "Collected At",
}

// columnWidths maps record sheet columns to display widths.
var columnWidths = map[string]float64{
	"A": 40, "B": 20, "C": 10, "D": 25, "E": 30,
	"F": 50, "G": 50, "H": 30, "I": 20,
}

// Exporter writes workbooks into an output directory.
type Exporter struct {
	outputDir string
	warn      io.Writer
}

// New creates the output directory and returns an Exporter. Warnings from
// permissive operations go to warn.
func New(cfg types.ExportConfig, warn io.Writer) (*Exporter, error) {
	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = "./results"
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}
	return &Exporter{outputDir: outputDir, warn: warn}, nil
}

// ExportPapers writes a workbook with one sheet of per-record rows and one
// sheet of aggregate statistics, and returns its path. When filename is
// empty a timestamped name is generated.
func (e *Exporter) ExportPapers(papers []types.PaperRecord, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("papers_%s.xlsx", nowFunc().Format(timestampLayout))
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetPapers); err != nil {
		return "", fmt.Errorf("renaming sheet: %w", err)
	}
	if err := e.writePaperSheet(f, sheetPapers, papers); err != nil {
		return "", err
	}
	if err := e.writeStatsSheet(f, papers); err != nil {
		return "", err
	}

	return e.save(f, filename)
}

// ExportSummaryReport writes a workbook that adds an executive-summary
// sheet ahead of the record and statistics sheets.
func (e *Exporter) ExportSummaryReport(papers []types.PaperRecord, executiveSummary, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("report_%s.xlsx", nowFunc().Format(timestampLayout))
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return "", fmt.Errorf("renaming sheet: %w", err)
	}
	if err := e.writeSummarySheet(f, executiveSummary); err != nil {
		return "", err
	}

	if _, err := f.NewSheet(sheetPapers); err != nil {
		return "", fmt.Errorf("creating sheet %s: %w", sheetPapers, err)
	}
	if err := e.writePaperSheet(f, sheetPapers, papers); err != nil {
		return "", err
	}
	if err := e.writeStatsSheet(f, papers); err != nil {
		return "", err
	}

	return e.save(f, filename)
}

// MergeWorkbooks unions the record sheets of multiple workbooks into one,
// de-duplicating by exact title with the same first-seen-wins policy the
// storage merge uses. Unreadable inputs are skipped with a warning.
func (e *Exporter) MergeWorkbooks(paths []string, outputFilename string) (string, error) {
	var all []types.PaperRecord
	for _, path := range paths {
		papers, err := readPaperSheet(path)
		if err != nil {
			fmt.Fprintf(e.warn, "warning: cannot read workbook %s: %v\n", path, err)
			continue
		}
		all = append(all, papers...)
	}

	unique := store.DeduplicateByTitle(all)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetMerged); err != nil {
		return "", fmt.Errorf("renaming sheet: %w", err)
	}
	if err := e.writePaperSheet(f, sheetMerged, unique); err != nil {
		return "", err
	}

	return e.save(f, outputFilename)
}

// writePaperSheet writes the header and one row per record, then styles
// the sheet.
func (e *Exporter) writePaperSheet(f *excelize.File, sheet string, papers []types.PaperRecord) error {
	if err := f.SetSheetRow(sheet, "A1", &paperColumns); err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}

	for i, p := range papers {
		row := []any{
			p.Title,
			p.Authors,
			p.Year,
			journalOf(p),
			joinKeywords(p.Keywords),
			truncateAbstract(p.Abstract),
			p.Summary,
			linkOf(p),
			p.CollectedAt,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	return e.styleSheet(f, sheet, len(papers), len(paperColumns))
}

// writeStatsSheet recomputes the aggregate statistics and writes them as
// item/value rows.
func (e *Exporter) writeStatsSheet(f *excelize.File, papers []types.PaperRecord) error {
	if _, err := f.NewSheet(sheetStats); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheetStats, err)
	}

	stats := store.ComputeStatistics(papers)
	rows := [][]any{
		{"Item", "Value"},
		{"Total papers", stats.Total},
		{"Papers with abstract", stats.HasAbstract},
		{"Papers with fulltext link", stats.HasFulltext},
		{"Papers with keywords", stats.HasKeywords},
		{"Papers with AI summary", stats.HasSummary},
	}

	years := make([]string, 0, len(stats.Years))
	for year := range stats.Years {
		years = append(years, year)
	}
	sort.Strings(years)
	for _, year := range years {
		rows = append(rows, []any{fmt.Sprintf("Papers from %s", year), stats.Years[year]})
	}

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(sheetStats, cell, &row); err != nil {
			return fmt.Errorf("writing statistics row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(sheetStats, "A", "A", 30); err != nil {
		return fmt.Errorf("setting statistics column width: %w", err)
	}

	return e.styleSheet(f, sheetStats, len(rows)-1, 2)
}

// writeSummarySheet writes the executive-summary prose in one wide,
// wrapped cell.
func (e *Exporter) writeSummarySheet(f *excelize.File, executiveSummary string) error {
	if err := f.SetCellValue(sheetSummary, "A1", "Executive Summary"); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}
	if err := f.SetCellValue(sheetSummary, "A2", executiveSummary); err != nil {
		return fmt.Errorf("writing summary body: %w", err)
	}
	if err := f.SetColWidth(sheetSummary, "A", "A", 100); err != nil {
		return fmt.Errorf("setting summary column width: %w", err)
	}

	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("creating wrap style: %w", err)
	}
	if err := f.SetCellStyle(sheetSummary, "A2", "A2", wrap); err != nil {
		return fmt.Errorf("styling summary body: %w", err)
	}
	return nil
}

// styleSheet applies the header fill, cell borders, and wrap alignment.
func (e *Exporter) styleSheet(f *excelize.File, sheet string, dataRows, cols int) error {
	border := []excelize.Border{
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center", Vertical: "center", WrapText: true,
		},
		Border: border,
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	dataStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    border,
	})
	if err != nil {
		return fmt.Errorf("creating data style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return fmt.Errorf("resolving last column: %w", err)
	}

	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	if dataRows > 0 {
		last := fmt.Sprintf("%s%d", lastCol, dataRows+1)
		if err := f.SetCellStyle(sheet, "A2", last, dataStyle); err != nil {
			return fmt.Errorf("styling rows: %w", err)
		}
		for row := 2; row <= dataRows+1; row++ {
			if err := f.SetRowHeight(sheet, row, 60); err != nil {
				return fmt.Errorf("setting row height: %w", err)
			}
		}
	}

	if sheet == sheetPapers || sheet == sheetMerged {
		for col, width := range columnWidths {
			if err := f.SetColWidth(sheet, col, col, width); err != nil {
				return fmt.Errorf("setting column width: %w", err)
			}
		}
	}
	return nil
}

// save writes the workbook into the output directory.
func (e *Exporter) save(f *excelize.File, filename string) (string, error) {
	path := filepath.Join(e.outputDir, filename)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("writing workbook %s: %w", path, err)
	}
	return path, nil
}

// readPaperSheet loads the record sheet of a previously exported workbook
// back into records, mapping columns by the fixed header order.
func readPaperSheet(path string) ([]types.PaperRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := sheetPapers
	rows, err := f.GetRows(sheet)
	if err != nil {
		sheet = sheetMerged
		if rows, err = f.GetRows(sheet); err != nil {
			return nil, fmt.Errorf("no record sheet found: %w", err)
		}
	}

	var papers []types.PaperRecord
	for i, row := range rows {
		if i == 0 {
			continue
		}
		get := func(idx int) string {
			if idx < len(row) {
				return row[idx]
			}
			return ""
		}
		rec := types.PaperRecord{
			Title:        get(0),
			Authors:      get(1),
			Year:         get(2),
			Journal:      get(3),
			Abstract:     get(5),
			Summary:      get(6),
			FulltextLink: get(7),
			CollectedAt:  get(8),
		}
		if kw := get(4); kw != "" {
			rec.Keywords = extract.SplitKeywords(kw)
		}
		papers = append(papers, rec)
	}
	return papers, nil
}

// journalOf prefers the detail-page journal over the result-list
// publication line.
func journalOf(p types.PaperRecord) string {
	if p.Journal != "" {
		return p.Journal
	}
	return p.Publication
}

// linkOf prefers the full-text link over the detail page link.
func linkOf(p types.PaperRecord) string {
	if p.FulltextLink != "" {
		return p.FulltextLink
	}
	return p.Link
}

func joinKeywords(keywords []string) string {
	return strings.Join(keywords, ", ")
}

// truncateAbstract cuts the abstract at the display limit, marking the cut
// with an ellipsis.
func truncateAbstract(abstract string) string {
	runes := []rune(abstract)
	if len(runes) <= maxAbstractLen {
		return abstract
	}
	return string(runes[:maxAbstractLen]) + "..."
}
