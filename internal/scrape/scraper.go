// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-collector/internal/extract"
	"github.com/pdiddy/paper-collector/pkg/types"
)

const (
	resultListSelector = ".srchResultListW"

	// The next-page control moves around between RISS layouts.
	nextButtonSelector    = "div.Paging a.next"
	nextButtonAltSelector = `a[title="다음페이지"]`

	// Some detail pages hide the abstract behind a toggle.
	abstractToggleSelector = "a#soptionview, button.btn_option"

	toggleSettleDelay = time.Second
)

// abstractProbeJS scans the detail page for a paragraph that reads like an
// abstract when none of the known containers matched. Navigation chrome is
// excluded by its recurring menu strings.
const abstractProbeJS = `(() => {
	const elements = document.querySelectorAll('p, div');
	for (const elem of elements) {
		const text = elem.textContent || '';
		if (text.length > 200 && text.length < 5000) {
			if (text.includes('연구') || text.includes('분석') ||
				text.includes('결과') || text.includes('this') ||
				text.includes('study') || text.includes('research')) {
				if (!text.includes('RISS') && !text.includes('로그인') &&
					!text.includes('회원가입') && !text.includes('MyRISS')) {
					return text.trim();
				}
			}
		}
	}
	return '';
})()`

// Scraper collects paper records from RISS search results through a browser
// Session. Progress lines go to w.
type Scraper struct {
	session Session
	cfg     types.ScraperConfig
	w       io.Writer
}

// NewScraper wires a session to the result-list and detail-page flows.
func NewScraper(session Session, cfg types.ScraperConfig, w io.Writer) *Scraper {
	return &Scraper{session: session, cfg: cfg, w: w}
}

// searchURL builds the keyword search URL for Korean academic papers.
func (s *Scraper) searchURL(keyword string) string {
	q := url.QueryEscape(keyword)
	return fmt.Sprintf(
		"%s/search/Search.do?isDetailSearch=N&searchGubun=true&viewYn=OP&query=%s&queryText=&strQuery=%s&colName=re_a_kor&pageNumber=1&pageSize=%d",
		s.cfg.BaseURL, q, q, s.cfg.PageSize)
}

// SearchPapers searches one keyword and walks result pages until maxPapers
// records are collected, the next-page control is exhausted, or the page
// cap is hit. With FreeOnly set, records without an open-access signal are
// skipped.
func (s *Scraper) SearchPapers(ctx context.Context, keyword string, maxPapers int) ([]types.PaperRecord, error) {
	if maxPapers <= 0 {
		return nil, nil
	}
	if err := s.session.Navigate(ctx, s.searchURL(keyword)); err != nil {
		return nil, err
	}
	if err := s.session.WaitVisible(ctx, resultListSelector); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// A missing result list means the keyword matched nothing.
		fmt.Fprintf(s.w, "  %q: no search results\n", keyword)
		return nil, nil
	}

	var papers []types.PaperRecord
	for page := 1; page <= s.cfg.MaxPages; page++ {
		collected, err := s.collectPage(ctx)
		if err != nil {
			return papers, err
		}
		for _, rec := range collected {
			papers = append(papers, rec)
			if len(papers) >= maxPapers {
				fmt.Fprintf(s.w, "  %q: collected %d papers\n", keyword, len(papers))
				return papers, nil
			}
		}
		fmt.Fprintf(s.w, "  %q: page %d done, %d papers so far\n", keyword, page, len(papers))

		if page == s.cfg.MaxPages {
			break
		}
		moved, err := s.nextPage(ctx)
		if err != nil {
			return papers, err
		}
		if !moved {
			break
		}
	}
	return papers, nil
}

// collectPage parses the current result page into records.
func (s *Scraper) collectPage(ctx context.Context) ([]types.PaperRecord, error) {
	html, err := s.session.OuterHTML(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing result page: %w", err)
	}

	var papers []types.PaperRecord
	extract.ResultItems(doc).Each(func(_ int, item *goquery.Selection) {
		rec, ok := extract.FromResultItem(item, s.cfg.BaseURL)
		if !ok {
			return
		}
		rec.IsFree = extract.IsFreeItem(item)
		if s.cfg.FreeOnly && !rec.IsFree {
			return
		}
		papers = append(papers, rec)
	})
	return papers, nil
}

// nextPage advances to the next result page. It reports false when the
// control is missing or disabled, which marks the last page.
func (s *Scraper) nextPage(ctx context.Context) (bool, error) {
	selector := nextButtonSelector
	found, err := s.session.Exists(ctx, selector)
	if err != nil {
		return false, err
	}
	if !found {
		selector = nextButtonAltSelector
		if found, err = s.session.Exists(ctx, selector); err != nil || !found {
			return false, err
		}
	}

	class, err := s.session.Attribute(ctx, selector, "class")
	if err != nil {
		return false, err
	}
	if strings.Contains(class, "disabled") {
		return false, nil
	}

	if err := s.session.Click(ctx, selector); err != nil {
		return false, err
	}
	if err := s.session.WaitVisible(ctx, resultListSelector); err != nil {
		return false, fmt.Errorf("waiting for next result page: %w", err)
	}
	return true, nil
}

// PaperDetails loads a detail page and returns the fields found there. The
// result is a partial record meant to be merged over the search-result one.
func (s *Scraper) PaperDetails(ctx context.Context, link string) (types.PaperRecord, error) {
	if err := s.session.Navigate(ctx, link); err != nil {
		return types.PaperRecord{}, err
	}
	if err := sleep(ctx, s.cfg.DetailDelay); err != nil {
		return types.PaperRecord{}, err
	}

	// Reveal the abstract when it sits behind a toggle. A failed click is
	// not fatal, the probes below still run.
	if found, err := s.session.Exists(ctx, abstractToggleSelector); err == nil && found {
		if err := s.session.Click(ctx, abstractToggleSelector); err == nil {
			if err := sleep(ctx, toggleSettleDelay); err != nil {
				return types.PaperRecord{}, err
			}
		}
	}

	html, err := s.session.OuterHTML(ctx)
	if err != nil {
		return types.PaperRecord{}, err
	}
	det, err := extract.FromDetailHTML(html, s.cfg.BaseURL)
	if err != nil {
		return types.PaperRecord{}, err
	}

	if det.Abstract == "" {
		var probed string
		if err := s.session.Evaluate(ctx, abstractProbeJS, &probed); err == nil {
			if len([]rune(probed)) > 100 {
				det.Abstract = extract.CleanText(probed)
			}
		}
	}
	return det, nil
}

// Close shuts the underlying session down.
func (s *Scraper) Close() error {
	return s.session.Close()
}

// sleep waits for d unless the context ends first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
