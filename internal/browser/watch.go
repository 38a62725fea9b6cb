package browser

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/formscout/formscout/internal/watch"
)

// DefaultPollInterval is how often the page's mutation queue drains.
const DefaultPollInterval = 250 * time.Millisecond

// Watch drains form-relevant page mutations into w until ctx is done. The
// in-page hook queues observer records; polling them out keeps the
// transport free of devtools callback plumbing and survives navigations,
// where the hook reinstalls through the registered new-document script.
// Returns the ctx error on shutdown.
func (s *Session) Watch(ctx context.Context, w *watch.Watcher, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if err := s.run(s.opts.Timeout, chromedp.Evaluate(watchHookScript, nil)); err != nil {
		return fmt.Errorf("failed to install mutation hook: %w", err)
	}
	if s.opts.Verbose {
		log.Printf("[BROWSER] Watching for form mutations every %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.ctx.Done():
			return s.ctx.Err()
		case <-ticker.C:
			var muts []watch.Mutation
			if err := s.run(4*interval, chromedp.Evaluate(drainScript, &muts, evalOpts)); err != nil {
				// Navigations tear the evaluation context down mid-flight;
				// the next tick drains from the fresh document.
				if s.opts.Verbose {
					log.Printf("[BROWSER] Mutation drain failed: %v", err)
				}
				continue
			}
			for _, m := range muts {
				w.Notify(m)
			}
		}
	}
}
