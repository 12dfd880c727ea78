// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Open-access signals, checked in order. A record is accepted as freely
// viewable when ANY of them matches. The list mirrors the markup of the
// target site.
var (
	// freeIconSelectors match free/open icons and full-text buttons.
	freeIconSelectors = []string{
		`img[src*="free"]`,
		`img[src*="open"]`,
		"span.free",
		".originView",
		"a.btn_orig",
	}

	// freeLabelTexts match span labels announcing a viewable full text.
	freeLabelTexts = []string{"무료", "원문보기"}

	// freeOnclickMarkers match script handlers that open the full text.
	freeOnclickMarkers = []string{"openFulltext", "viewOriginal", "fn_origView"}

	// freeHrefMarkers match link targets that point at the full text.
	freeHrefMarkers = []string{"openFulltext", "original", "fulltext"}
)

// IsFreeItem reports whether the page-structure heuristics mark this
// search-result item as open access.
func IsFreeItem(item *goquery.Selection) bool {
	for _, sel := range freeIconSelectors {
		if item.Find(sel).Length() > 0 {
			return true
		}
	}

	found := false
	item.Find("span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		for _, label := range freeLabelTexts {
			if strings.Contains(text, label) {
				found = true
				return false
			}
		}
		return true
	})
	if found {
		return true
	}

	item.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if onclick, ok := a.Attr("onclick"); ok {
			for _, marker := range freeOnclickMarkers {
				if strings.Contains(onclick, marker) {
					found = true
					return false
				}
			}
		}
		if href, ok := a.Attr("href"); ok {
			for _, marker := range freeHrefMarkers {
				if strings.Contains(href, marker) {
					found = true
					return false
				}
			}
		}
		return true
	})
	return found
}
