// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-collector/pkg/types"
)

// mockSession serves a scripted sequence of result pages. Click on the
// next-page control advances to the following page.
type mockSession struct {
	pages     []string
	pageIdx   int
	attrs     map[string]string
	evalText  string
	navigated []string
	clicked   []string
	closed    bool
}

func (m *mockSession) Navigate(_ context.Context, url string) error {
	m.navigated = append(m.navigated, url)
	return nil
}

func (m *mockSession) WaitVisible(_ context.Context, selector string) error {
	if !strings.Contains(m.current(), strings.TrimPrefix(selector, ".")) {
		return fmt.Errorf("selector %s not found", selector)
	}
	return nil
}

func (m *mockSession) OuterHTML(_ context.Context) (string, error) {
	return m.current(), nil
}

func (m *mockSession) Click(_ context.Context, selector string) error {
	m.clicked = append(m.clicked, selector)
	if selector == nextButtonSelector || selector == nextButtonAltSelector {
		if m.pageIdx+1 < len(m.pages) {
			m.pageIdx++
		}
	}
	return nil
}

func (m *mockSession) Exists(_ context.Context, selector string) (bool, error) {
	switch selector {
	case nextButtonSelector:
		return strings.Contains(m.current(), `class="next"`), nil
	case nextButtonAltSelector:
		return strings.Contains(m.current(), "다음페이지"), nil
	case abstractToggleSelector:
		return strings.Contains(m.current(), "soptionview"), nil
	}
	return false, nil
}

func (m *mockSession) Attribute(_ context.Context, _, name string) (string, error) {
	return m.attrs[name], nil
}

func (m *mockSession) Evaluate(_ context.Context, _ string, out any) error {
	s, ok := out.(*string)
	if !ok {
		return fmt.Errorf("unexpected evaluate target %T", out)
	}
	*s = m.evalText
	return nil
}

func (m *mockSession) Close() error {
	m.closed = true
	return nil
}

func (m *mockSession) current() string {
	if m.pageIdx >= len(m.pages) {
		return ""
	}
	return m.pages[m.pageIdx]
}

func resultItem(title, link string, free bool) string {
	marker := ""
	if free {
		marker = `<span class="free">무료</span>`
	}
	return fmt.Sprintf(`<div class="cont">
		<p class="title"><a href=%q>%s</a></p>
		<p class="writer">Kim, Lee</p>
		<p class="etc">Journal of Testing, 2024</p>
		%s
	</div>`, link, title, marker)
}

func resultPage(nextEnabled bool, items ...string) string {
	paging := ""
	if nextEnabled {
		paging = `<div class="Paging"><a class="next" href="#">다음</a></div>`
	}
	return fmt.Sprintf(`<html><body>
		<div class="srchResultListW">%s</div>
		%s
	</body></html>`, strings.Join(items, "\n"), paging)
}

func testConfig() types.ScraperConfig {
	cfg := types.DefaultPipelineConfig().Scraper
	cfg.DetailDelay = 0
	return cfg
}

func TestSearchPapersSinglePage(t *testing.T) {
	session := &mockSession{pages: []string{
		resultPage(false,
			resultItem("Free Paper", "/detail/1", true),
			resultItem("Paid Paper", "/detail/2", false),
		),
	}}
	s := NewScraper(session, testConfig(), io.Discard)

	papers, err := s.SearchPapers(context.Background(), "AI", 10)
	require.NoError(t, err)
	require.Len(t, papers, 1, "paid paper filtered out")
	assert.Equal(t, "Free Paper", papers[0].Title)
	assert.True(t, papers[0].IsFree)
	assert.Equal(t, "https://www.riss.kr/detail/1", papers[0].Link)
	require.Len(t, session.navigated, 1)
	assert.Contains(t, session.navigated[0], "query=AI")
	assert.Contains(t, session.navigated[0], "pageSize=20")
}

func TestSearchPapersIncludesPaidWhenNotFreeOnly(t *testing.T) {
	session := &mockSession{pages: []string{
		resultPage(false,
			resultItem("Free Paper", "/detail/1", true),
			resultItem("Paid Paper", "/detail/2", false),
		),
	}}
	cfg := testConfig()
	cfg.FreeOnly = false
	s := NewScraper(session, cfg, io.Discard)

	papers, err := s.SearchPapers(context.Background(), "AI", 10)
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.False(t, papers[1].IsFree)
}

func TestSearchPapersPaginates(t *testing.T) {
	session := &mockSession{pages: []string{
		resultPage(true, resultItem("First", "/d/1", true)),
		resultPage(false, resultItem("Second", "/d/2", true)),
	}}
	s := NewScraper(session, testConfig(), io.Discard)

	papers, err := s.SearchPapers(context.Background(), "ML", 10)
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, "First", papers[0].Title)
	assert.Equal(t, "Second", papers[1].Title)
	assert.Contains(t, session.clicked, nextButtonSelector)
}

func TestSearchPapersStopsAtMax(t *testing.T) {
	session := &mockSession{pages: []string{
		resultPage(true,
			resultItem("One", "/d/1", true),
			resultItem("Two", "/d/2", true),
			resultItem("Three", "/d/3", true),
		),
	}}
	s := NewScraper(session, testConfig(), io.Discard)

	papers, err := s.SearchPapers(context.Background(), "AI", 2)
	require.NoError(t, err)
	assert.Len(t, papers, 2)
	assert.Empty(t, session.clicked, "no pagination past the cap")
}

func TestSearchPapersDisabledNextEndsWalk(t *testing.T) {
	session := &mockSession{
		pages: []string{
			resultPage(true, resultItem("Only", "/d/1", true)),
			resultPage(false, resultItem("Unreachable", "/d/2", true)),
		},
		attrs: map[string]string{"class": "next disabled"},
	}
	s := NewScraper(session, testConfig(), io.Discard)

	papers, err := s.SearchPapers(context.Background(), "AI", 10)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "Only", papers[0].Title)
}

func TestSearchPapersRespectsPageCap(t *testing.T) {
	pages := make([]string, 12)
	for i := range pages {
		pages[i] = resultPage(true, resultItem(fmt.Sprintf("Paper %02d", i), fmt.Sprintf("/d/%d", i), true))
	}
	cfg := testConfig()
	session := &mockSession{pages: pages}
	s := NewScraper(session, cfg, io.Discard)

	papers, err := s.SearchPapers(context.Background(), "AI", 100)
	require.NoError(t, err)
	assert.Len(t, papers, cfg.MaxPages)
}

func TestSearchPapersNoResults(t *testing.T) {
	session := &mockSession{pages: []string{"<html><body>검색 결과가 없습니다</body></html>"}}
	var log strings.Builder
	s := NewScraper(session, testConfig(), &log)

	papers, err := s.SearchPapers(context.Background(), "없는검색어", 10)
	require.NoError(t, err, "empty result page is not an error")
	assert.Empty(t, papers)
	assert.Contains(t, log.String(), "no search results")
}

func TestSearchPapersZeroBudget(t *testing.T) {
	session := &mockSession{}
	s := NewScraper(session, testConfig(), io.Discard)

	papers, err := s.SearchPapers(context.Background(), "AI", 0)
	require.NoError(t, err)
	assert.Empty(t, papers)
	assert.Empty(t, session.navigated)
}

const detailPage = `<html><body>
	<div id="thesisInfoDiv">
		<div class="thesisInfoTop"><h3>Detailed Title</h3></div>
	</div>
	<a id="soptionview" href="#">초록보기</a>
	<div id="soptionview2"></div>
	<div class="abstract_layer"><p>This study investigates paper collection pipelines in considerable depth, with results and analysis.</p></div>
	<a class="btn_orig" href="/link/fulltext">원문보기</a>
</body></html>`

func TestPaperDetails(t *testing.T) {
	session := &mockSession{pages: []string{detailPage}}
	s := NewScraper(session, testConfig(), io.Discard)

	det, err := s.PaperDetails(context.Background(), "https://www.riss.kr/detail/1")
	require.NoError(t, err)
	assert.Equal(t, "Detailed Title", det.Title)
	assert.Contains(t, det.Abstract, "paper collection pipelines")
	assert.Equal(t, "https://www.riss.kr/link/fulltext", det.FulltextLink)
	assert.Contains(t, session.clicked, abstractToggleSelector, "abstract toggle clicked")
}

func TestPaperDetailsAbstractProbeFallback(t *testing.T) {
	probed := strings.Repeat("layout-free abstract text about this study ", 5)
	session := &mockSession{
		pages: []string{`<html><body>
			<div id="thesisInfoDiv"><div class="thesisInfoTop"><h3>Bare Page</h3></div></div>
		</body></html>`},
		evalText: probed,
	}
	s := NewScraper(session, testConfig(), io.Discard)

	det, err := s.PaperDetails(context.Background(), "https://www.riss.kr/detail/2")
	require.NoError(t, err)
	assert.Contains(t, det.Abstract, "layout-free abstract text")
}

func TestPaperDetailsShortProbeIgnored(t *testing.T) {
	session := &mockSession{
		pages:    []string{`<html><body><h3 class="title">Short</h3></body></html>`},
		evalText: "too short",
	}
	s := NewScraper(session, testConfig(), io.Discard)

	det, err := s.PaperDetails(context.Background(), "https://www.riss.kr/detail/3")
	require.NoError(t, err)
	assert.Empty(t, det.Abstract)
}

func TestCloseDelegatesToSession(t *testing.T) {
	session := &mockSession{}
	s := NewScraper(session, testConfig(), io.Discard)
	require.NoError(t, s.Close())
	assert.True(t, session.closed)
}
