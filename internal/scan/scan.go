// Package scan detects and classifies fillable fields in a document
// snapshot.
//
// A scan walks every searchable root (main tree, inlined frames, open shadow
// roots), filters to visible elements, and produces normalized field
// descriptors in encounter order: a primary pass over text-like inputs,
// textareas, and selects; a second pass over file inputs; and a third pass
// grouping radio and checkbox inputs by name into logical fields. The field
// list is rebuilt wholesale on every scan, never patched.
package scan

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/formscout/formscout/internal/classify"
	"github.com/formscout/formscout/internal/dom"
	"github.com/formscout/formscout/internal/label"
	"github.com/formscout/formscout/internal/match"
)

// Kind discriminates how a field is filled.
type Kind string

const (
	KindText          Kind = "text"
	KindTextarea      Kind = "textarea"
	KindSelect        Kind = "select"
	KindRadioGroup    Kind = "radio-group"
	KindCheckboxGroup Kind = "checkbox-group"
	KindFile          Kind = "file"
)

// textSelector is the primary-pass query. Hidden and button-like input types
// never hold user answers; radio, checkbox, and file inputs get their own
// passes.
const textSelector = `input:not([type="hidden"]):not([type="submit"]):not([type="button"])` +
	`:not([type="reset"]):not([type="image"]):not([type="checkbox"])` +
	`:not([type="radio"]):not([type="file"]), textarea, select`

const (
	fileSelector  = `input[type="file"]`
	groupSelector = `input[type="radio"], input[type="checkbox"]`
)

// optionLabelMax bounds how much adjacent text an option label may absorb.
const optionLabelMax = 80

// Field is one detected fillable unit. Radio and checkbox groups aggregate
// all same-named inputs into a single Field whose Elements holds every
// member in encounter order.
type Field struct {
	Elements    []*dom.Element
	Kind        Kind
	Category    classify.Category
	Confidence  float64
	Label       string
	Placeholder string
	MaxLength   int
	Required    bool
	Name        string
	Options     []match.Option
}

// Primary returns the field's representative element: the element itself, or
// the first group member.
func (f *Field) Primary() *dom.Element {
	if len(f.Elements) == 0 {
		return nil
	}
	return f.Elements[0]
}

// Selector returns a CSS selector addressing the primary element on the live
// page.
func (f *Field) Selector() string {
	if el := f.Primary(); el != nil {
		return el.Selector()
	}
	return ""
}

// CurrentValues re-snapshots the field's value set from the document. Values
// are never cached between serializations.
func (f *Field) CurrentValues() []string {
	switch f.Kind {
	case KindRadioGroup, KindCheckboxGroup:
		var out []string
		for _, el := range f.Elements {
			if el.Checked() {
				out = append(out, inputValue(el))
			}
		}
		return out
	default:
		if el := f.Primary(); el != nil {
			if v := el.Value(); v != "" {
				return []string{v}
			}
		}
		return nil
	}
}

// CurrentValue returns the first current value, or "".
func (f *Field) CurrentValue() string {
	vals := f.CurrentValues()
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// HasValue reports whether the field currently holds any value.
func (f *Field) HasValue() bool {
	return len(f.CurrentValues()) > 0
}

// Scan rebuilds the full field list from the document. It never fails:
// pathological markup just yields fewer fields.
func Scan(doc *dom.Document) []*Field {
	s := &scanner{seen: make(map[*html.Node]bool)}
	roots := doc.Roots()
	for _, root := range roots {
		s.textPass(root)
	}
	for _, root := range roots {
		s.filePass(root)
	}
	for _, root := range roots {
		s.groupPass(root)
	}
	s.finishGroups()
	return s.fields
}

type scanner struct {
	fields []*Field
	seen   map[*html.Node]bool
	groups []*Field
	byName map[groupKey]*Field
}

// groupKey partitions radio/checkbox groups. The owning document is part of
// the key so same-named groups in different frames never merge.
type groupKey struct {
	doc  *dom.Document
	name string
}

func (s *scanner) claim(el *dom.Element) bool {
	if s.seen[el.Node()] {
		return false
	}
	s.seen[el.Node()] = true
	return el.Visible()
}

func (s *scanner) textPass(root *dom.Root) {
	for _, el := range root.QueryAll(textSelector) {
		if !s.claim(el) {
			continue
		}
		s.fields = append(s.fields, buildField(el))
	}
}

func (s *scanner) filePass(root *dom.Root) {
	for _, el := range root.QueryAll(fileSelector) {
		if !s.claim(el) {
			continue
		}
		labelText, _ := label.Resolve(el)
		res := classify.ClassifyFile(classify.Collect(el, labelText))
		s.fields = append(s.fields, &Field{
			Elements:   []*dom.Element{el},
			Kind:       KindFile,
			Category:   res.Category,
			Confidence: res.Confidence,
			Label:      labelText,
			Required:   el.Required(),
			Name:       el.Name(),
		})
	}
}

func (s *scanner) groupPass(root *dom.Root) {
	if s.byName == nil {
		s.byName = make(map[groupKey]*Field)
	}
	for _, el := range root.QueryAll(groupSelector) {
		if !s.claim(el) {
			continue
		}
		kind := KindRadioGroup
		if el.Type() == "checkbox" {
			kind = KindCheckboxGroup
		}
		opt := match.Option{
			Value:    inputValue(el),
			Label:    optionLabel(el),
			Selected: el.Checked(),
		}
		name := el.Name()
		if name == "" {
			// An unnamed toggle cannot belong to a group; it stands alone.
			s.groups = append(s.groups, &Field{
				Elements: []*dom.Element{el},
				Kind:     kind,
				Options:  []match.Option{opt},
			})
			continue
		}
		key := groupKey{doc: el.Document(), name: name}
		if g, ok := s.byName[key]; ok && g.Kind == kind {
			g.Elements = append(g.Elements, el)
			g.Options = append(g.Options, opt)
			continue
		}
		g := &Field{
			Elements: []*dom.Element{el},
			Kind:     kind,
			Name:     name,
			Options:  []match.Option{opt},
		}
		s.byName[key] = g
		s.groups = append(s.groups, g)
	}
}

// finishGroups classifies each assembled group once its full membership is
// known, then appends groups in encounter order.
func (s *scanner) finishGroups() {
	for _, g := range s.groups {
		first := g.Primary()
		groupLabel, ok := label.ResolveGroup(first)
		if !ok && len(g.Options) > 0 {
			groupLabel = g.Options[0].Label
		}
		g.Label = groupLabel
		res := classify.Classify(classify.Collect(first, groupLabel))
		g.Category = res.Category
		g.Confidence = res.Confidence
		g.Required = anyRequired(g.Elements)
		s.fields = append(s.fields, g)
	}
	s.groups = nil
}

func buildField(el *dom.Element) *Field {
	labelText, _ := label.Resolve(el)
	res := classify.Classify(classify.Collect(el, labelText))

	f := &Field{
		Elements:    []*dom.Element{el},
		Category:    res.Category,
		Confidence:  res.Confidence,
		Label:       labelText,
		Placeholder: el.Attr("placeholder"),
		Required:    el.Required(),
		Name:        el.Name(),
	}
	if n, ok := el.MaxLength(); ok {
		f.MaxLength = n
	}
	switch el.Tag() {
	case "textarea":
		f.Kind = KindTextarea
		res = classify.ApplyTextareaHeuristic(res, labelText)
		f.Category = res.Category
		f.Confidence = res.Confidence
	case "select":
		f.Kind = KindSelect
		f.Options = selectOptions(el)
	default:
		f.Kind = KindText
	}
	return f
}

func selectOptions(el *dom.Element) []match.Option {
	var out []match.Option
	for _, o := range el.QueryAll("option") {
		val, ok := o.AttrOK("value")
		text := o.Text()
		if !ok {
			val = text
		}
		out = append(out, match.Option{
			Value:    val,
			Label:    text,
			Selected: o.HasAttr("selected"),
		})
	}
	return out
}

// inputValue mirrors browser semantics for checkable inputs: a missing value
// attribute submits as "on".
func inputValue(el *dom.Element) string {
	if v, ok := el.AttrOK("value"); ok {
		return v
	}
	return "on"
}

// optionLabel finds the display text for one radio/checkbox choice: its
// label[for], wrapping label, trailing text, or value.
func optionLabel(el *dom.Element) string {
	if id := el.ID(); id != "" {
		for _, lab := range el.Document().QueryAll("label[for]") {
			if lab.Attr("for") == id {
				if t := lab.Text(); t != "" {
					return t
				}
			}
		}
	}
	if wrap := el.Closest("label"); wrap != nil {
		if t := wrap.TextExcluding("input", "select", "textarea"); t != "" {
			return t
		}
	}
	if next := el.NextElement(); next != nil {
		if t := next.Text(); t != "" && len(t) <= optionLabelMax {
			return t
		}
	}
	return inputValue(el)
}

func anyRequired(els []*dom.Element) bool {
	for _, el := range els {
		if el.Required() {
			return true
		}
	}
	return false
}

// Stats summarizes a scan for logging.
type Stats struct {
	Total      int
	Classified int
	ByKind     map[Kind]int
}

// Summarize tallies a field list for log lines and scan acknowledgements.
func Summarize(fields []*Field) Stats {
	st := Stats{ByKind: make(map[Kind]int)}
	for _, f := range fields {
		st.Total++
		st.ByKind[f.Kind]++
		if f.Category != classify.CategoryUnknown {
			st.Classified++
		}
	}
	return st
}

// String renders the stats compactly for log output.
func (st Stats) String() string {
	var b strings.Builder
	for _, k := range []Kind{KindText, KindTextarea, KindSelect, KindRadioGroup, KindCheckboxGroup, KindFile} {
		if n := st.ByKind[k]; n > 0 {
			if b.Len() > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%d", k, n)
		}
	}
	return fmt.Sprintf("%d fields, %d classified (%s)", st.Total, st.Classified, b.String())
}
