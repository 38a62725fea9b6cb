package scan

import (
	"fmt"
	"sync"

	"github.com/formscout/formscout/internal/classify"
	"github.com/formscout/formscout/internal/dom"
	"github.com/formscout/formscout/internal/match"
)

// ErrStaleGeneration rejects operations that reference a superseded scan.
var ErrStaleGeneration = fmt.Errorf("stale field reference: a newer scan replaced the field list")

// ErrFieldOutOfRange rejects references whose index does not exist in the
// current field list.
var ErrFieldOutOfRange = fmt.Errorf("field index out of range")

// ErrNoScan is returned when a session is queried before its first scan.
var ErrNoScan = fmt.Errorf("no scan has run yet")

// Ref addresses one field within one specific scan. A Ref from an older
// generation is rejected rather than silently resolved against whatever the
// index now holds.
type Ref struct {
	Generation uint64 `json:"generation"`
	Index      int    `json:"index"`
}

// Session owns the scan state for one page: the latest document, the current
// field list, and a monotonically increasing generation stamp. The list is
// replaced wholesale on every rescan; concurrent rescans settle by
// last-write-wins.
type Session struct {
	mu         sync.Mutex
	doc        *dom.Document
	generation uint64
	fields     []*Field
}

// NewSession returns an empty session; Rescan populates it.
func NewSession() *Session {
	return &Session{}
}

// Rescan replaces the session's field list from a fresh document and bumps
// the generation. It returns the new generation and the new list.
func (s *Session) Rescan(doc *dom.Document) (uint64, []*Field) {
	fields := Scan(doc)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.fields = fields
	s.generation++
	return s.generation, append([]*Field(nil), fields...)
}

// Generation returns the current scan generation; zero means no scan yet.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Document returns the document of the latest scan, or nil.
func (s *Session) Document() *dom.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Fields returns the current generation and a copy of the field list.
func (s *Session) Fields() (uint64, []*Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation, append([]*Field(nil), s.fields...)
}

// VerifyGeneration confirms gen still addresses the current field list.
// Whole-list operations call this instead of resolving field by field.
func (s *Session) VerifyGeneration(gen uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == 0 {
		return ErrNoScan
	}
	if gen != s.generation {
		return fmt.Errorf("%w: have generation %d, reference carries %d",
			ErrStaleGeneration, s.generation, gen)
	}
	return nil
}

// Resolve validates a field reference against the current generation.
func (s *Session) Resolve(ref Ref) (*Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == 0 {
		return nil, ErrNoScan
	}
	if ref.Generation != s.generation {
		return nil, fmt.Errorf("%w: have generation %d, reference carries %d",
			ErrStaleGeneration, s.generation, ref.Generation)
	}
	if ref.Index < 0 || ref.Index >= len(s.fields) {
		return nil, fmt.Errorf("%w: index %d, list holds %d", ErrFieldOutOfRange, ref.Index, len(s.fields))
	}
	return s.fields[ref.Index], nil
}

// Summary is the serializable view of one field. Element handles never leave
// the process; the selector string is the only cross-boundary address.
type Summary struct {
	Index       int               `json:"index"`
	Kind        Kind              `json:"kind"`
	Category    classify.Category `json:"category"`
	Confidence  float64           `json:"confidence"`
	Label       string            `json:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Required    bool              `json:"required"`
	HasValue    bool              `json:"hasValue"`
	Selector    string            `json:"selector,omitempty"`
	Options     []match.Option    `json:"options,omitempty"`
}

// Summaries serializes the current field list. Values and option selection
// states are re-snapshotted from the document at call time.
func (s *Session) Summaries() (uint64, []Summary) {
	s.mu.Lock()
	fields := append([]*Field(nil), s.fields...)
	gen := s.generation
	s.mu.Unlock()

	out := make([]Summary, len(fields))
	for i, f := range fields {
		out[i] = Summary{
			Index:       i,
			Kind:        f.Kind,
			Category:    f.Category,
			Confidence:  f.Confidence,
			Label:       f.Label,
			Placeholder: f.Placeholder,
			Required:    f.Required,
			HasValue:    f.HasValue(),
			Selector:    f.Selector(),
			Options:     refreshedOptions(f),
		}
	}
	return gen, out
}

// refreshedOptions re-reads option selection state so serialized summaries
// reflect the document as it stands now, not as it stood at scan time.
func refreshedOptions(f *Field) []match.Option {
	switch f.Kind {
	case KindSelect:
		if el := f.Primary(); el != nil {
			return selectOptions(el)
		}
	case KindRadioGroup, KindCheckboxGroup:
		out := make([]match.Option, len(f.Options))
		copy(out, f.Options)
		for i, el := range f.Elements {
			if i < len(out) {
				out[i].Selected = el.Checked()
			}
		}
		return out
	}
	return f.Options
}
