package pipeline

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/formscout/formscout/internal/browser"
	"github.com/formscout/formscout/internal/classify"
	"github.com/formscout/formscout/internal/fill"
	"github.com/formscout/formscout/internal/llm"
	"github.com/formscout/formscout/internal/profile"
	"github.com/formscout/formscout/internal/scan"
)

// maxConcurrentAnswers bounds parallel generation calls during a smart fill.
const maxConcurrentAnswers = 3

// Fill skip and failure reasons surfaced in acks.
const (
	reasonFileNeedsBrowser = "file inputs need the live browser"
	reasonHasValue         = "already has a value"
	reasonUnclassified     = "unclassified"
	reasonNoProfileValue   = "no profile value"
	reasonNotApplied       = "value did not apply"
	reasonAnswerFailed     = "answer generation failed"
	reasonAmbiguousFile    = "ambiguous file input"
	reasonNoFile           = "no file configured"
)

// FillOutcome acknowledges one field of a fill pass. Filled false with an
// empty Reason never occurs; a miss always says why.
type FillOutcome struct {
	Index    int               `json:"index"`
	Label    string            `json:"label,omitempty"`
	Category classify.Category `json:"category"`
	Value    string            `json:"value,omitempty"`
	Filled   bool              `json:"filled"`
	Reason   string            `json:"reason,omitempty"`
}

// Filler applies profile values to a scanned session.
type Filler struct {
	Session *scan.Session
	Profile *profile.Profile
	Engine  *fill.Engine
	// Composer enables generated answers in SmartFill; nil restricts the
	// pass to profile-backed values.
	Composer *llm.Composer
	// JobDescription grounds generated answers when present.
	JobDescription string
	// DryRun resolves values and verifies fill plans without writing to the
	// document or the live page.
	DryRun     bool
	Verbose    bool
	OnProgress ProgressCallback
}

// write commits one resolved value, or only checks that a plan exists when
// DryRun is set.
func (f *Filler) write(fld *scan.Field, value string) bool {
	if f.DryRun {
		_, ok := fill.Plan(fld, []string{value})
		return ok
	}
	return f.Engine.Fill(fld, value)
}

// QuickFill fills every profile-backed field of the given generation in the
// static document. Fields that already hold a value, carry no
// classification, or have nothing in the profile are skipped with a reason.
func (f *Filler) QuickFill(generation uint64) ([]FillOutcome, error) {
	if err := f.Session.VerifyGeneration(generation); err != nil {
		return nil, err
	}
	_, fields := f.Session.Fields()

	outs := make([]FillOutcome, 0, len(fields))
	for i, fld := range fields {
		out := FillOutcome{Index: i, Label: fld.Label, Category: fld.Category}
		switch {
		case fld.Kind == scan.KindFile:
			out.Reason = reasonFileNeedsBrowser
		case fld.HasValue():
			out.Reason = reasonHasValue
		case fld.Category == classify.CategoryUnknown:
			out.Reason = reasonUnclassified
		default:
			values, ok := f.Profile.ValuesFor(fld.Category, fld.Label)
			if !ok {
				out.Reason = reasonNoProfileValue
				break
			}
			out.Value = values[0]
			if f.write(fld, values[0]) {
				out.Filled = true
			} else {
				out.Reason = reasonNotApplied
			}
		}
		outs = append(outs, out)
	}
	f.progress("quickfill", outs)
	return outs, nil
}

// answerTask pairs one open outcome with the field a generation call can
// serve.
type answerTask struct {
	out   *FillOutcome
	field *scan.Field
	cover bool
}

// answerTasks collects the custom questions and cover letters the profile
// had nothing for.
func (f *Filler) answerTasks(fields []*scan.Field, outs []FillOutcome) []answerTask {
	var tasks []answerTask
	for i := range outs {
		out := &outs[i]
		if out.Reason != reasonNoProfileValue {
			continue
		}
		fld := fields[out.Index]
		switch {
		case fld.Category == classify.CategoryCoverLetter && fld.Kind == scan.KindTextarea:
			tasks = append(tasks, answerTask{out, fld, true})
		case fld.Category == classify.CategoryCustomQuestion &&
			(fld.Kind == scan.KindTextarea || fld.Kind == scan.KindText):
			tasks = append(tasks, answerTask{out, fld, false})
		}
	}
	return tasks
}

// generateAnswers runs the generation calls for tasks concurrently and
// returns answers and failures slot for slot. A failed call only marks its
// own slot; the group itself never errors.
func (f *Filler) generateAnswers(ctx context.Context, tasks []answerTask) ([]string, []error) {
	answers := make([]string, len(tasks))
	failures := make([]error, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentAnswers)
	for ti, tk := range tasks {
		g.Go(func() error {
			var answer string
			var genErr error
			if tk.cover {
				answer, genErr = f.Composer.CoverLetter(gctx, llm.CoverLetterContext{
					ApplicantName:  f.Profile.DisplayName(),
					JobDescription: f.JobDescription,
					Notes:          f.Profile.Notes,
				})
			} else {
				answer, genErr = f.Composer.AnswerQuestion(gctx, llm.QuestionContext{
					Label:          tk.field.Label,
					JobDescription: f.JobDescription,
					Notes:          f.Profile.Notes,
					MaxChars:       tk.field.MaxLength,
				})
			}
			answers[ti], failures[ti] = answer, genErr
			return nil
		})
	}
	_ = g.Wait()
	return answers, failures
}

// SmartFill runs QuickFill and then generates answers for the custom
// questions and cover letters the profile could not cover. Generation calls
// run concurrently; the document mutations apply afterward, in field order,
// because the static document is not safe for concurrent writes. A failed
// generation skips its field rather than failing the pass.
func (f *Filler) SmartFill(ctx context.Context, generation uint64) ([]FillOutcome, error) {
	outs, err := f.QuickFill(generation)
	if err != nil {
		return nil, err
	}
	if f.Composer == nil {
		return outs, nil
	}
	_, fields := f.Session.Fields()
	tasks := f.answerTasks(fields, outs)
	if len(tasks) == 0 {
		return outs, nil
	}

	answers, failures := f.generateAnswers(ctx, tasks)
	for ti, tk := range tasks {
		if failures[ti] != nil {
			tk.out.Reason = reasonAnswerFailed
			if f.Verbose {
				log.Printf("[FILL] %q: %v", tk.field.Label, failures[ti])
			}
			continue
		}
		tk.out.Value = answers[ti]
		if f.write(tk.field, answers[ti]) {
			tk.out.Filled = true
			tk.out.Reason = ""
		} else {
			tk.out.Reason = reasonNotApplied
		}
	}
	f.progress("smartfill", outs)
	return outs, ctx.Err()
}

// Live replays a fill against the live page the snapshot came from. Value
// resolution, option matching, and answer generation run on the static
// side; the browser session only executes scripts and file attachments.
func (f *Filler) Live(ctx context.Context, sess *browser.Session, generation uint64) ([]FillOutcome, error) {
	if err := f.Session.VerifyGeneration(generation); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, fields := f.Session.Fields()

	outs := make([]FillOutcome, 0, len(fields))
	for i, fld := range fields {
		out := FillOutcome{Index: i, Label: fld.Label, Category: fld.Category}
		switch {
		case fld.Kind == scan.KindFile:
			out = f.liveUpload(sess, fld, out)
		case fld.HasValue():
			out.Reason = reasonHasValue
		case fld.Category == classify.CategoryUnknown:
			out.Reason = reasonUnclassified
		default:
			values, ok := f.Profile.ValuesFor(fld.Category, fld.Label)
			if !ok {
				out.Reason = reasonNoProfileValue
				break
			}
			out.Value = values[0]
			steps, ok := fill.Plan(fld, values)
			if !ok {
				out.Reason = reasonNotApplied
				break
			}
			if f.DryRun || applySteps(sess, steps) {
				out.Filled = true
			} else {
				out.Reason = reasonNotApplied
			}
		}
		outs = append(outs, out)
	}

	if f.Composer != nil {
		if tasks := f.answerTasks(fields, outs); len(tasks) > 0 {
			answers, failures := f.generateAnswers(ctx, tasks)
			for ti, tk := range tasks {
				if failures[ti] != nil {
					tk.out.Reason = reasonAnswerFailed
					if f.Verbose {
						log.Printf("[FILL] %q: %v", tk.field.Label, failures[ti])
					}
					continue
				}
				tk.out.Value = answers[ti]
				steps, ok := fill.Plan(tk.field, []string{answers[ti]})
				if !ok {
					tk.out.Reason = reasonNotApplied
					continue
				}
				if f.DryRun || applySteps(sess, steps) {
					tk.out.Filled = true
					tk.out.Reason = ""
				} else {
					tk.out.Reason = reasonNotApplied
				}
			}
		}
	}

	f.progress("livefill", outs)
	return outs, ctx.Err()
}

// applySteps runs one plan on the live page and reports whether every step
// landed.
func applySteps(sess *browser.Session, steps []fill.Step) bool {
	ok := true
	for _, res := range sess.Apply(steps) {
		if !res.OK {
			ok = false
		}
	}
	return ok
}

// liveUpload attaches the configured document to a file input. Generic file
// inputs stay untouched; guessing which document they want risks submitting
// the wrong one.
func (f *Filler) liveUpload(sess *browser.Session, fld *scan.Field, out FillOutcome) FillOutcome {
	var path string
	switch fld.Category {
	case classify.CategoryResumeUpload:
		path = f.Profile.ResumePath
	case classify.CategoryCoverLetterUpload:
		path = f.Profile.CoverLetterPath
	default:
		out.Reason = reasonAmbiguousFile
		return out
	}
	if path == "" {
		out.Reason = reasonNoFile
		return out
	}
	if !f.DryRun {
		if err := sess.Upload(fld.Selector(), path); err != nil {
			out.Reason = fmt.Sprintf("upload failed: %v", err)
			return out
		}
	}
	out.Value = path
	out.Filled = true
	return out
}

func (f *Filler) progress(step string, outs []FillOutcome) {
	filled := 0
	for _, o := range outs {
		if o.Filled {
			filled++
		}
	}
	if f.Verbose {
		log.Printf("[FILL] %s: %d/%d fields filled", step, filled, len(outs))
	}
	if f.OnProgress != nil {
		f.OnProgress(ProgressEvent{
			Step:    step,
			Message: fmt.Sprintf("%d of %d fields filled", filled, len(outs)),
			Content: outs,
		})
	}
}
