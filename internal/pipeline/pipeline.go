// Package pipeline orchestrates page acquisition, form scanning, and
// filling so the CLI and the HTTP server share one flow.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/formscout/formscout/internal/browser"
	"github.com/formscout/formscout/internal/dom"
	"github.com/formscout/formscout/internal/fetch"
	"github.com/formscout/formscout/internal/jobdesc"
	"github.com/formscout/formscout/internal/scan"
)

// ProgressEvent is one progress update during a pipeline operation.
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback receives progress updates as they occur.
type ProgressCallback func(event ProgressEvent)

// Source names one page to scan. Exactly one of the fields must be set.
type Source struct {
	URL      string
	FilePath string
	HTML     string
}

// Validate checks that the source addresses exactly one page.
func (s Source) Validate() error {
	set := 0
	for _, v := range []string{s.URL, s.FilePath, s.HTML} {
		if strings.TrimSpace(v) != "" {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("source requires exactly one of url, file, or html")
	}
	return nil
}

// Options tunes a scan.
type Options struct {
	// UseBrowser permits the headless-browser fallback when fetched HTML is
	// too thin to scan. It never forces a render on pages that ship their
	// forms in the initial response.
	UseBrowser bool
	// ForceExtract runs the scored job-description heuristic even on
	// recognized platforms whose selectors came up empty.
	ForceExtract bool
	Browser      browser.Options
	// Fetcher serves URL sources; a default cached fetcher is built when nil.
	Fetcher    *fetch.CachedFetcher
	Verbose    bool
	OnProgress ProgressCallback
}

// ScanOutcome is the serializable result of one scan.
type ScanOutcome struct {
	Generation     uint64              `json:"generation"`
	Fields         []scan.Summary      `json:"fields"`
	JobDescription *jobdesc.Extraction `json:"job_description,omitempty"`
	PageURL        string              `json:"page_url,omitempty"`
	Rendered       bool                `json:"rendered"`
	FromCache      bool                `json:"from_cache"`
	Stats          scan.Stats          `json:"-"`
}

func emitProgress(opts *Options, step, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{Step: step, Message: message, Content: content})
	}
}

// Scan acquires the page named by src, replaces session's field list, and
// extracts the job description. The returned outcome reflects the new
// generation.
func Scan(ctx context.Context, session *scan.Session, src Source, opts Options) (*ScanOutcome, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	doc, outcome, err := acquire(ctx, src, &opts)
	if err != nil {
		return nil, err
	}
	return index(session, doc, outcome, &opts), nil
}

// ScanLive snapshots the page a live session currently shows and rescans
// it. The watch loop and the live fill path go through here so field
// selectors always refer to the page instance the browser holds.
func ScanLive(session *scan.Session, bsess *browser.Session, opts Options) (*ScanOutcome, error) {
	doc, err := bsess.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot page: %w", err)
	}
	outcome := &ScanOutcome{Rendered: true}
	return index(session, doc, outcome, &opts), nil
}

// index replaces the session's field list from doc and runs job-description
// extraction, completing outcome.
func index(session *scan.Session, doc *dom.Document, outcome *ScanOutcome, opts *Options) *ScanOutcome {
	gen, fields := session.Rescan(doc)
	outcome.Generation = gen
	outcome.Stats = scan.Summarize(fields)
	_, outcome.Fields = session.Summaries()
	if opts.Verbose {
		log.Printf("[SCAN] Generation %d: %s", gen, outcome.Stats)
	}
	emitProgress(opts, "scan", outcome.Stats.String(), nil)

	if ext, ok := jobdesc.Extract(doc, opts.ForceExtract); ok {
		outcome.JobDescription = ext
		if opts.Verbose {
			log.Printf("[SCAN] Job description: %d chars via %s (%s)",
				len(ext.Text), ext.Source, ext.Platform)
		}
		emitProgress(opts, "extract",
			fmt.Sprintf("job description found via %s", ext.Source), nil)
	}

	return outcome
}

// acquire turns a Source into a parsed document, applying the
// fetch-then-render fallback for URL sources.
func acquire(ctx context.Context, src Source, opts *Options) (*dom.Document, *ScanOutcome, error) {
	outcome := &ScanOutcome{}

	switch {
	case src.HTML != "":
		doc, err := dom.ParseString(src.HTML, "")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse supplied HTML: %w", err)
		}
		return doc, outcome, nil

	case src.FilePath != "":
		data, err := os.ReadFile(src.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", src.FilePath, err)
		}
		doc, err := dom.ParseString(string(data), src.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse %s: %w", src.FilePath, err)
		}
		outcome.PageURL = src.FilePath
		return doc, outcome, nil

	default:
		outcome.PageURL = src.URL
		fetcher := opts.Fetcher
		if fetcher == nil {
			fetcher = fetch.NewCachedFetcher(nil)
		}
		res, err := fetcher.Fetch(ctx, src.URL)
		if err != nil {
			return nil, nil, err
		}
		outcome.FromCache = res.FromCache
		emitProgress(opts, "fetch",
			fmt.Sprintf("fetched %d bytes (cache hit: %v)", len(res.HTML), res.FromCache), nil)

		if opts.UseBrowser && browser.ShouldRender(res.HTML) {
			if opts.Verbose {
				log.Printf("[SCAN] Fetched content too thin, rendering %s", src.URL)
			}
			doc, renderErr := browser.Render(ctx, src.URL, opts.Browser)
			if renderErr == nil {
				outcome.Rendered = true
				emitProgress(opts, "render", "rendered in headless browser", nil)
				return doc, outcome, nil
			}
			// A missing or broken Chrome degrades to the fetched HTML
			// rather than failing the scan.
			if opts.Verbose {
				log.Printf("[SCAN] Browser rendering failed: %v, using fetched HTML", renderErr)
			}
		}

		doc, err := dom.ParseString(res.HTML, src.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse fetched HTML: %w", err)
		}
		return doc, outcome, nil
	}
}
