// Package watch coalesces DOM mutation notifications into debounced
// rescans.
//
// Pages mutate constantly; only mutations whose subtree carries form
// elements matter, and rapid bursts collapse into one rescan after a quiet
// period. Rescans are not cancelable: one in flight runs to completion and a
// newer one supersedes its output through the session's last-write-wins
// replacement.
package watch

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/formscout/formscout/internal/dom"
)

// DefaultDebounce is the quiet period before a rescan fires.
const DefaultDebounce = 500 * time.Millisecond

// Mutation is one DOM change notification from the page.
type Mutation struct {
	// Kind is the observer record type (childList, attributes); informational.
	Kind string `json:"kind,omitempty"`
	// Subtree is the serialized markup of the touched subtree.
	Subtree string `json:"subtree"`
}

// TouchesForm reports whether the mutation's subtree contains form content
// worth a rescan.
func (m Mutation) TouchesForm() bool {
	if strings.TrimSpace(m.Subtree) == "" {
		return false
	}
	doc, err := dom.ParseString(m.Subtree, "")
	if err != nil {
		return false
	}
	return doc.Query("form, input, select, textarea") != nil
}

// Config tunes a Watcher.
type Config struct {
	// Delay overrides DefaultDebounce when positive.
	Delay   time.Duration
	Verbose bool
}

// Watcher debounces qualifying mutations and invokes the rescan callback
// once per quiet period.
type Watcher struct {
	delay   time.Duration
	verbose bool
	rescan  func()

	mu      sync.Mutex
	timer   *time.Timer
	pending int
	stopped bool
}

// New builds a watcher around a rescan callback.
func New(cfg Config, rescan func()) *Watcher {
	delay := cfg.Delay
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Watcher{delay: delay, verbose: cfg.Verbose, rescan: rescan}
}

// Notify feeds one mutation in. Non-form mutations are dropped; qualifying
// ones restart the debounce window.
func (w *Watcher) Notify(m Mutation) {
	if !m.TouchesForm() {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.pending++
	if w.timer == nil {
		w.timer = time.AfterFunc(w.delay, w.fire)
	} else {
		w.timer.Reset(w.delay)
	}
}

// Flush fires any pending rescan immediately. Useful at shutdown and in
// tests.
func (w *Watcher) Flush() {
	w.fire()
}

// Stop drops pending work and ignores further notifications. A rescan
// already running is not interrupted.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	w.pending = 0
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	n := w.pending
	w.pending = 0
	stopped := w.stopped
	w.mu.Unlock()

	if n == 0 || stopped {
		return
	}
	if w.verbose {
		log.Printf("[WATCH] %d mutation(s) coalesced, rescanning", n)
	}
	w.rescan()
}
