// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// Browser is the chromedp-backed Session. It owns one headless Chrome
// process with a single tab.
type Browser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	timeout     time.Duration

	closeOnce sync.Once
}

// NewBrowser launches headless Chrome and opens a tab. timeout bounds each
// individual page action.
func NewBrowser(timeout time.Duration) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("lang", "ko-KR"),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// An empty run forces the browser process to start so launch failures
	// surface here instead of on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	return &Browser{
		ctx:         browserCtx,
		cancel:      browserCancel,
		allocCancel: allocCancel,
		timeout:     timeout,
	}, nil
}

// run executes actions against the tab, bounded by the action timeout and
// by the caller's context.
func (b *Browser) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tctx, cancel := context.WithTimeout(b.ctx, b.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(tctx, actions...) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

func (b *Browser) Navigate(ctx context.Context, url string) error {
	if err := b.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

func (b *Browser) WaitVisible(ctx context.Context, selector string) error {
	if err := b.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("waiting for %s: %w", selector, err)
	}
	return nil
}

func (b *Browser) OuterHTML(ctx context.Context) (string, error) {
	var html string
	if err := b.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("capturing page markup: %w", err)
	}
	return html, nil
}

func (b *Browser) Click(ctx context.Context, selector string) error {
	if err := b.run(ctx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("clicking %s: %w", selector, err)
	}
	return nil
}

func (b *Browser) Exists(ctx context.Context, selector string) (bool, error) {
	var found bool
	expr := fmt.Sprintf("document.querySelector(%q) !== null", selector)
	if err := b.run(ctx, chromedp.Evaluate(expr, &found)); err != nil {
		return false, fmt.Errorf("probing %s: %w", selector, err)
	}
	return found, nil
}

func (b *Browser) Attribute(ctx context.Context, selector, name string) (string, error) {
	var value string
	expr := fmt.Sprintf(
		"(() => { const el = document.querySelector(%q); return el && el.getAttribute(%q) || \"\"; })()",
		selector, name)
	if err := b.run(ctx, chromedp.Evaluate(expr, &value)); err != nil {
		return "", fmt.Errorf("reading %s of %s: %w", name, selector, err)
	}
	return value, nil
}

func (b *Browser) Evaluate(ctx context.Context, expression string, out any) error {
	return b.run(ctx, chromedp.Evaluate(expression, out))
}

// Close tears the browser process down.
func (b *Browser) Close() error {
	b.closeOnce.Do(func() {
		b.cancel()
		b.allocCancel()
	})
	return nil
}
