// Package browser drives a headless Chrome tab for pages that build their
// forms client-side.
//
// Snapshot captures the live DOM with layout annotations so the static
// pipeline (scan, label, match) runs unchanged on rendered pages. Fill
// plans computed against a snapshot replay on the same tab through Apply,
// and Watch streams form-relevant mutations into a debounced rescan.
// Requires Chrome or Chromium on the system.
package browser

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/formscout/formscout/internal/dom"
)

// MinContentLength is the minimum extracted text length for a plain HTTP
// fetch to count as rendered. Shorter pages are likely JavaScript shells.
const MinContentLength = 500

// DefaultMaxNodes bounds how many elements the capture script annotates.
const DefaultMaxNodes = 5000

// DefaultSettle is the post-load wait for client-side rendering to finish.
const DefaultSettle = 3 * time.Second

// DefaultTimeout bounds a single navigate-and-capture cycle.
const DefaultTimeout = 45 * time.Second

// ShouldRender reports whether statically fetched HTML is too thin to scan,
// indicating the page renders its content in JavaScript. Script bodies do
// not count as content; a bundle-heavy shell page is exactly the case this
// exists to catch.
func ShouldRender(htmlText string) bool {
	doc, err := dom.ParseString(htmlText, "")
	if err != nil {
		return true
	}
	body := doc.Query("body")
	if body == nil {
		return true
	}
	text := body.TextExcluding("script", "style", "noscript")
	return len(strings.TrimSpace(text)) < MinContentLength
}

// Options configures a Session.
type Options struct {
	// Timeout bounds each navigate-and-capture cycle.
	Timeout time.Duration
	// Settle is the extra wait after load for scripts to build the page.
	Settle time.Duration
	// MaxNodes caps how many elements the capture script annotates.
	MaxNodes int
	Verbose  bool
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Settle <= 0 {
		o.Settle = DefaultSettle
	}
	if o.MaxNodes <= 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	return o
}

// Session is one live Chrome tab. It persists across snapshots so fill
// plans and mutation watching operate on the same page instance.
type Session struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	opts        Options
}

// NewSession launches the browser and registers the mutation hook so it
// survives navigations. Close releases the tab and the browser process.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	opts = opts.withDefaults()
	if opts.Verbose {
		log.Printf("[BROWSER] Starting headless browser")
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:         browserCtx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
		opts:        opts,
	}
	err := s.run(opts.Timeout, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(watchHookScript).Do(ctx)
		return err
	}))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return s, nil
}

// Close shuts the tab and the browser process down.
func (s *Session) Close() {
	s.cancelCtx()
	s.cancelAlloc()
}

// Navigate loads url and waits for client-side rendering to settle.
func (s *Session) Navigate(url string) error {
	if s.opts.Verbose {
		log.Printf("[BROWSER] Navigating: %s", url)
	}
	err := s.run(s.opts.Timeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(s.opts.Settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Cookie banners sit over the form on many boards; dismissal is
			// best effort and must not eat the whole navigation budget.
			clickCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			_ = chromedp.Click(`button[id*="accept" i], button[class*="accept" i]`,
				chromedp.NodeVisible, chromedp.ByQuery).Do(clickCtx)
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("browser navigation failed: %w", err)
	}
	return nil
}

// Snapshot captures the current page as an annotated static document. The
// capture script stamps data-fs-rect and data-fs-hidden on every element,
// inlines open shadow roots as declarative templates, and inlines
// same-origin iframe documents as srcdoc attributes, so the whole page
// parses into one dom.Document.
func (s *Session) Snapshot() (*dom.Document, error) {
	var (
		stamped int
		html    string
		pageURL string
	)
	err := s.run(s.opts.Timeout,
		chromedp.Location(&pageURL),
		chromedp.Evaluate(annotationScript(s.opts.MaxNodes), &stamped, evalOpts),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot capture failed: %w", err)
	}
	if s.opts.Verbose {
		log.Printf("[BROWSER] Annotated %d element(s), captured %d bytes", stamped, len(html))
	}
	doc, err := dom.ParseString(html, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return doc, nil
}

// Render navigates a throwaway session to url and returns the annotated
// snapshot. Callers that go on to fill or watch the page hold their own
// Session instead, so the plan replays against the same tab.
func Render(ctx context.Context, url string, opts Options) (*dom.Document, error) {
	s, err := NewSession(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	if err := s.Navigate(url); err != nil {
		return nil, err
	}
	return s.Snapshot()
}

// run executes actions on the session tab under an operation timeout.
// Canceling the derived context ends the operation, not the browser.
func (s *Session) run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx := s.ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return chromedp.Run(ctx, actions...)
}

func evalOpts(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithReturnByValue(true).WithSilent(true)
}
