package browser

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/chromedp/chromedp"

	"github.com/formscout/formscout/internal/fill"
)

// StepResult reports one live fill step.
type StepResult struct {
	Selector string
	Value    string
	OK       bool
	Err      error
}

// Apply replays a fill plan against the live page. Each step assigns
// through the native value setter and dispatches input, change, and blur,
// the same sequence the static engine records. Steps run in order and a
// failed step does not stop the rest.
func (s *Session) Apply(steps []fill.Step) []StepResult {
	results := make([]StepResult, 0, len(steps))
	for _, step := range steps {
		res := StepResult{Selector: step.Selector, Value: step.Value}
		var ok bool
		err := s.run(s.opts.Timeout, chromedp.Evaluate(step.Script, &ok, evalOpts))
		switch {
		case err != nil:
			res.Err = fmt.Errorf("fill script failed on %s: %w", step.Selector, err)
		case !ok:
			res.Err = fmt.Errorf("fill script reported no effect on %s", step.Selector)
		default:
			res.OK = true
		}
		if s.opts.Verbose {
			if res.OK {
				log.Printf("[BROWSER] Filled %s", step.Selector)
			} else {
				log.Printf("[BROWSER] Fill failed: %v", res.Err)
			}
		}
		results = append(results, res)
	}
	return results
}

// Upload attaches a local file to the file input addressed by selector.
// File inputs cannot be scripted with a value, so this goes through the
// devtools file chooser instead of a fill script.
func (s *Session) Upload(selector, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve upload path %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("upload file missing: %w", err)
	}
	err = s.run(s.opts.Timeout, chromedp.SetUploadFiles(selector, []string{abs}, chromedp.ByQuery))
	if err != nil {
		return fmt.Errorf("failed to attach %s to %s: %w", filepath.Base(abs), selector, err)
	}
	if s.opts.Verbose {
		log.Printf("[BROWSER] Attached %s to %s", filepath.Base(abs), selector)
	}
	return nil
}
