// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract parses raw page payloads into structured paper records.
// Extraction is tolerant of missing fields: every selector is a priority
// list of candidates and the first non-empty match wins, which absorbs
// layout variation across result types. Only the title is required for a
// record to be valid.
package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-collector/pkg/types"
)

// yearPattern matches a four-digit publication year token.
var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// whitespaceRuns matches runs of whitespace collapsed by CleanText.
var whitespaceRuns = regexp.MustCompile(`\s+`)

// Result-list selector candidates, in priority order.
var (
	titleSelectors = []string{"p.title a", ".title a", "div.cont p.title a", "a.tit"}

	authorSelectors = []string{"p.writer", ".writer", "span.writer", "p.etc span:first-child"}

	publicationSelectors = []string{"p.etc", ".etc", "span.source"}

	previewSelectors = []string{"p.preAbstract", ".preAbstract", "p.abstract", "span.preAbstract", "div.abstract"}
)

// Detail-page selector candidates, in priority order.
var (
	detailTitleSelectors = []string{"#thesisInfoDiv > div.thesisInfoTop > h3", "h3.title"}

	detailAbstractSelectors = []string{
		"#soptionview p",
		"#additionalInfoDiv p.text",
		"div.abstract_layer p",
		"div.thesisInfo p.text",
		"p.abstractTxt",
		".addInfo p.text",
		`div[id*="abstract"] p`,
	}

	detailFulltextSelectors = []string{
		"a.btn_orig",
		"a.originView",
		`#thesisInfoDiv a[onclick*="openFulltext"]`,
		`a[href*="link.riss.kr"]`,
	}

	detailAuthorSelectors  = []string{".infoDetailL .writer", ".writer"}
	detailJournalSelectors = []string{".infoDetailL .assigned", ".assigned"}
	detailYearSelectors    = []string{".infoDetailL .year", ".year"}
)

// minDetailAbstractLen rejects selector matches too short to be a real
// abstract (navigation text, captions).
const minDetailAbstractLen = 50

// CleanText normalizes whitespace runs to single spaces, trims the ends,
// and decodes the four common HTML entities. No other sanitization is done.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = whitespaceRuns.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	return s
}

// Validate reports whether a record carries enough data to keep. A record
// is valid iff it has a non-empty title; abstract and full-text link are
// preferred but optional, since partial records still carry search value.
func Validate(rec types.PaperRecord) bool {
	return strings.TrimSpace(rec.Title) != ""
}

// firstText returns the cleaned text of the first candidate selector that
// matches a non-empty element under sel.
func firstText(sel *goquery.Selection, candidates []string) string {
	for _, c := range candidates {
		if text := CleanText(sel.Find(c).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// absolutize prefixes baseURL onto site-relative links.
func absolutize(link, baseURL string) string {
	if link == "" || strings.HasPrefix(link, "http") {
		return link
	}
	return baseURL + link
}

// ResultItems returns the per-paper item selections within a search-results
// page. Two container selectors are tried because list markup differs
// between result types.
func ResultItems(doc *goquery.Document) *goquery.Selection {
	items := doc.Find(".srchResultListW .cont")
	if items.Length() == 0 {
		items = doc.Find(".srchResultListW li .cont")
	}
	return items
}

// FromResultItem extracts a paper record from one search-result item.
// It returns ok=false when no title could be found, which marks the item
// as invalid rather than producing a junk record.
func FromResultItem(item *goquery.Selection, baseURL string) (types.PaperRecord, bool) {
	var rec types.PaperRecord

	for _, c := range titleSelectors {
		link := item.Find(c).First()
		if title := CleanText(link.Text()); title != "" {
			rec.Title = title
			if href, exists := link.Attr("href"); exists {
				rec.Link = absolutize(href, baseURL)
			}
			break
		}
	}
	if rec.Title == "" {
		return types.PaperRecord{}, false
	}

	if authors := firstText(item, authorSelectors); authors != "" {
		rec.Authors = strings.TrimSpace(strings.TrimPrefix(authors, "저자:"))
	}

	if pub := firstText(item, publicationSelectors); pub != "" {
		rec.Publication = pub
		if year := yearPattern.FindString(pub); year != "" {
			rec.Year = year
		}
	}

	rec.AbstractPreview = firstText(item, previewSelectors)
	if rec.AbstractPreview == "" {
		rec.AbstractPreview = previewFromText(item.Text())
	}

	if onclick := fulltextOnclick(item); onclick != "" {
		rec.FulltextOnclick = onclick
	}

	rec.CollectedAt = time.Now().Format(time.RFC3339)
	return rec, true
}

// previewFromText falls back to scanning the item's raw text for an
// abstract marker line followed by a long line.
func previewFromText(text string) string {
	if !strings.Contains(text, "초록") && !strings.Contains(text, "Abstract") {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !strings.Contains(line, "초록") && !strings.Contains(line, "Abstract") {
			continue
		}
		if i+1 < len(lines) && len(lines[i+1]) > 100 {
			return CleanText(lines[i+1])
		}
	}
	return ""
}

// fulltextOnclick returns the onclick handler of a full-text button on the
// result item, if one exists.
func fulltextOnclick(item *goquery.Selection) string {
	btn := item.Find(`a.btn_orig, a.originView, a[onclick*="openFulltext"]`).First()
	onclick, _ := btn.Attr("onclick")
	return onclick
}

// FromDetailHTML extracts the detail-page fields for a paper. The returned
// record is a partial overlay: only fields the page actually yielded are
// set, and MergeDetail applies them over the summary-level record.
func FromDetailHTML(html, baseURL string) (types.PaperRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return types.PaperRecord{}, err
	}

	var det types.PaperRecord
	det.Title = firstText(doc.Selection, detailTitleSelectors)

	for _, c := range detailAbstractSelectors {
		if text := CleanText(doc.Find(c).First().Text()); len(text) > minDetailAbstractLen {
			det.Abstract = text
			break
		}
	}

	for _, c := range detailFulltextSelectors {
		elem := doc.Find(c).First()
		if elem.Length() == 0 {
			continue
		}
		href, hasHref := elem.Attr("href")
		onclick, hasOnclick := elem.Attr("onclick")
		if hasHref && href != "" && href != "#" {
			det.FulltextLink = absolutize(href, baseURL)
		} else if hasOnclick && onclick != "" {
			det.FulltextOnclick = onclick
		}
		break
	}

	det.Authors = firstText(doc.Selection, detailAuthorSelectors)
	det.Journal = firstText(doc.Selection, detailJournalSelectors)

	if yearText := firstText(doc.Selection, detailYearSelectors); yearText != "" {
		if year := yearPattern.FindString(yearText); year != "" {
			det.Year = year
		}
	}

	det.Keywords = extractKeywords(doc)
	return det, nil
}

// extractKeywords reads the keyword list, falling back to splitting a
// comma-separated keyword line.
func extractKeywords(doc *goquery.Document) []string {
	var keywords []string
	doc.Find(".keyword_list a").Each(func(_ int, s *goquery.Selection) {
		if kw := CleanText(s.Text()); kw != "" {
			keywords = append(keywords, kw)
		}
	})
	if len(keywords) > 0 {
		return keywords
	}

	text := firstText(doc.Selection, []string{".keyword", ".keywords"})
	if text == "" {
		return nil
	}
	return SplitKeywords(text)
}

// SplitKeywords derives an ordered keyword list from a comma-separated string.
func SplitKeywords(text string) []string {
	var keywords []string
	for _, part := range strings.Split(text, ",") {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// MergeDetail overlays the non-empty detail fields onto a summary-level
// record. Detail data wins because the detail page is the richer source.
func MergeDetail(rec *types.PaperRecord, det types.PaperRecord) {
	if det.Title != "" {
		rec.Title = det.Title
	}
	if det.Authors != "" {
		rec.Authors = det.Authors
	}
	if det.Journal != "" {
		rec.Journal = det.Journal
	}
	if det.Year != "" {
		rec.Year = det.Year
	}
	if det.Abstract != "" {
		rec.Abstract = det.Abstract
	}
	if det.FulltextLink != "" {
		rec.FulltextLink = det.FulltextLink
	}
	if det.FulltextOnclick != "" {
		rec.FulltextOnclick = det.FulltextOnclick
	}
	if len(det.Keywords) > 0 {
		rec.Keywords = det.Keywords
	}
}
