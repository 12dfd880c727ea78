// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape drives a headless browser through RISS search results and
// detail pages, returning paper records parsed from page snapshots.
package scrape

import (
	"context"
)

// Session is a single browser tab. The scraper only ever needs page
// navigation, DOM snapshots, and a few element probes, so the interface
// stays narrow enough to fake in tests.
type Session interface {
	// Navigate loads a URL and waits for the page to be ready.
	Navigate(ctx context.Context, url string) error
	// WaitVisible blocks until the selector matches a visible element.
	WaitVisible(ctx context.Context, selector string) error
	// OuterHTML returns a snapshot of the full document markup.
	OuterHTML(ctx context.Context) (string, error)
	// Click clicks the first element matching the selector.
	Click(ctx context.Context, selector string) error
	// Exists reports whether the selector matches any element.
	Exists(ctx context.Context, selector string) (bool, error)
	// Attribute returns the named attribute of the first match, or "" when
	// the element or attribute is absent.
	Attribute(ctx context.Context, selector, name string) (string, error)
	// Evaluate runs a JavaScript expression and unmarshals its result.
	Evaluate(ctx context.Context, expression string, out any) error
	// Close shuts the browser down. Safe to call more than once.
	Close() error
}
