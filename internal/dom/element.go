package dom

import (
	"errors"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrDetached is returned when an operation targets an element that is no
// longer attached to its document tree.
var ErrDetached = errors.New("element is detached from the document")

// ErrNoSuchOption is returned by SetValue on a select element when no option
// carries the requested value.
var ErrNoSuchOption = errors.New("select has no option with the requested value")

// Element is an opaque handle to one element node in a snapshot.
type Element struct {
	doc  *Document
	sel  *goquery.Selection
	node *html.Node
}

// Node exposes the underlying parse node. Callers use it only as an identity
// key (deduplication across overlapping roots).
func (e *Element) Node() *html.Node { return e.node }

// Document returns the owning snapshot document.
func (e *Element) Document() *Document { return e.doc }

// Tag returns the lowercased element tag name.
func (e *Element) Tag() string { return strings.ToLower(e.node.Data) }

// Attr returns the attribute value, or "" when absent.
func (e *Element) Attr(name string) string {
	v, _ := e.sel.Attr(name)
	return v
}

// AttrOK returns the attribute value and whether it is present.
func (e *Element) AttrOK(name string) (string, bool) {
	return e.sel.Attr(name)
}

// HasAttr reports whether the attribute is present, regardless of value.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.sel.Attr(name)
	return ok
}

// ID returns the id attribute.
func (e *Element) ID() string { return e.Attr("id") }

// Name returns the name attribute.
func (e *Element) Name() string { return e.Attr("name") }

// Type returns the lowercased type attribute. For input elements with no
// type, browsers default to "text" and so does this accessor.
func (e *Element) Type() string {
	t := strings.ToLower(strings.TrimSpace(e.Attr("type")))
	if t == "" && e.Tag() == "input" {
		return "text"
	}
	return t
}

// Multiple reports whether the element carries the multiple attribute.
func (e *Element) Multiple() bool { return e.HasAttr("multiple") }

// Required reports whether the element is marked required, either natively or
// through aria-required.
func (e *Element) Required() bool {
	return e.HasAttr("required") || strings.EqualFold(e.Attr("aria-required"), "true")
}

// MaxLength returns the parsed maxlength attribute when present and valid.
func (e *Element) MaxLength() (int, bool) {
	raw, ok := e.AttrOK("maxlength")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Text returns the element's full descendant text with runs of whitespace
// collapsed to single spaces.
func (e *Element) Text() string {
	return collapseSpace(e.sel.Text())
}

// OwnText returns only the element's direct text children, whitespace
// collapsed.
func (e *Element) OwnText() string {
	var b strings.Builder
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteString(" ")
		}
	}
	return collapseSpace(b.String())
}

// TextExcluding returns descendant text while skipping the subtrees of the
// given tags. Label resolution uses it to strip a wrapped control's own text
// out of its label.
func (e *Element) TextExcluding(tags ...string) string {
	skip := make(map[string]bool, len(tags))
	for _, t := range tags {
		skip[strings.ToLower(t)] = true
	}
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skip[strings.ToLower(n.Data)] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return collapseSpace(b.String())
}

// Value returns the element's current value following browser semantics:
// the value attribute for inputs, the text content for textareas, and the
// selected (or default first) option's value for selects.
func (e *Element) Value() string {
	switch e.Tag() {
	case "textarea":
		return strings.TrimSpace(e.sel.Text())
	case "select":
		opts := e.sel.Find("option")
		var first, selected string
		var haveFirst, haveSelected bool
		opts.EachWithBreak(func(_ int, o *goquery.Selection) bool {
			val := optionValue(o)
			if !haveFirst {
				first, haveFirst = val, true
			}
			if _, ok := o.Attr("selected"); ok {
				selected, haveSelected = val, true
				return false
			}
			return true
		})
		if haveSelected {
			return selected
		}
		if haveFirst && !e.Multiple() {
			return first
		}
		return ""
	default:
		return e.Attr("value")
	}
}

// SetValue writes a value into the element following tag semantics. For
// selects the matching option becomes the single selected one; a missing
// option yields ErrNoSuchOption so callers can surface the mismatch instead
// of silently writing an inert value.
func (e *Element) SetValue(value string) error {
	if e.Detached() {
		return ErrDetached
	}
	switch e.Tag() {
	case "textarea":
		e.setTextContent(value)
		return nil
	case "select":
		opts := e.sel.Find("option")
		found := false
		opts.EachWithBreak(func(_ int, o *goquery.Selection) bool {
			found = optionValue(o) == value
			return !found
		})
		if !found {
			return ErrNoSuchOption
		}
		opts.Each(func(_ int, o *goquery.Selection) {
			if optionValue(o) == value {
				o.SetAttr("selected", "selected")
			} else {
				o.RemoveAttr("selected")
			}
		})
		return nil
	default:
		e.sel.SetAttr("value", value)
		return nil
	}
}

// Checked reports the checked state of a radio or checkbox input.
func (e *Element) Checked() bool { return e.HasAttr("checked") }

// SetChecked flips the checked state of a radio or checkbox input. Checking a
// radio clears the rest of its name group within the same document.
func (e *Element) SetChecked(checked bool) error {
	if e.Detached() {
		return ErrDetached
	}
	if !checked {
		e.sel.RemoveAttr("checked")
		return nil
	}
	if e.Type() == "radio" {
		if name := e.Name(); name != "" {
			e.doc.sel.Find(`input[type="radio"]`).Each(func(_ int, s *goquery.Selection) {
				if v, _ := s.Attr("name"); v == name {
					s.RemoveAttr("checked")
				}
			})
		}
	}
	e.sel.SetAttr("checked", "checked")
	return nil
}

// DispatchEvent records a synthetic event against the document's dispatch
// log. Static documents have no listeners; the log exists so fill behavior is
// observable and so the live executor can replay an identical sequence.
func (e *Element) DispatchEvent(typ string, bubbles bool) error {
	if e.Detached() {
		return ErrDetached
	}
	e.doc.record(Event{Target: e, Type: typ, Bubbles: bubbles})
	return nil
}

// BoundingBox returns the annotated layout rect when the snapshot carries
// one. Plain fetched HTML has no layout, so ok is false and spatial
// heuristics contribute nothing.
func (e *Element) BoundingBox() (Rect, bool) {
	raw, ok := e.AttrOK(rectAttr)
	if !ok {
		return Rect{}, false
	}
	return parseRectAttr(raw)
}

// Visible reports whether the element would be rendered. It honors the
// capture script's data-fs-hidden verdict first, then falls back to static
// signals: hidden inputs, the hidden attribute, aria-hidden, inline
// display/visibility/opacity styles, and a zero-area annotated rect.
func (e *Element) Visible() bool {
	if v, ok := e.AttrOK(hiddenAttr); ok {
		return !(v == "1" || strings.EqualFold(v, "true"))
	}
	if e.Type() == "hidden" {
		return false
	}
	for n := e.node; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if nodeHasAttr(n, "hidden") {
			return false
		}
		if strings.EqualFold(nodeAttr(n, "aria-hidden"), "true") {
			return false
		}
		if styleHidden(nodeAttr(n, "style")) {
			return false
		}
	}
	if rect, ok := e.BoundingBox(); ok && rect.Area() == 0 {
		return false
	}
	return true
}

// Parent returns the parent element, or nil at the top of the tree.
func (e *Element) Parent() *Element {
	for n := e.node.Parent; n != nil; n = n.Parent {
		if n.Type == html.ElementNode {
			return e.elementFor(n)
		}
	}
	return nil
}

// NextElement returns the immediately following sibling element, or nil.
func (e *Element) NextElement() *Element {
	for n := e.node.NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode {
			return e.elementFor(n)
		}
	}
	return nil
}

// PrevElement returns the immediately preceding sibling element, or nil.
func (e *Element) PrevElement() *Element {
	for n := e.node.PrevSibling; n != nil; n = n.PrevSibling {
		if n.Type == html.ElementNode {
			return e.elementFor(n)
		}
	}
	return nil
}

// PrevElements returns all preceding sibling elements, nearest first.
func (e *Element) PrevElements() []*Element {
	var out []*Element
	for n := e.node.PrevSibling; n != nil; n = n.PrevSibling {
		if n.Type == html.ElementNode {
			out = append(out, e.elementFor(n))
		}
	}
	return out
}

// Ancestors returns up to max ancestor elements, nearest first.
func (e *Element) Ancestors(max int) []*Element {
	var out []*Element
	for n := e.node.Parent; n != nil && len(out) < max; n = n.Parent {
		if n.Type == html.ElementNode {
			out = append(out, e.elementFor(n))
		}
	}
	return out
}

// Closest returns the nearest ancestor (including the element itself)
// matching selector, or nil.
func (e *Element) Closest(selector string) *Element {
	s := e.sel.Closest(selector)
	if s.Length() == 0 {
		return nil
	}
	return &Element{doc: e.doc, sel: s.First(), node: s.Nodes[0]}
}

// Matches reports whether the element matches the CSS selector.
func (e *Element) Matches(selector string) bool {
	return e.sel.Is(selector)
}

// QueryAll runs a CSS selector against the element's subtree.
func (e *Element) QueryAll(selector string) []*Element {
	return selectionToElements(e.doc, e.sel.Find(selector))
}

// Query returns the first subtree match, or nil.
func (e *Element) Query(selector string) *Element {
	els := e.QueryAll(selector)
	if len(els) == 0 {
		return nil
	}
	return els[0]
}

// Detached reports whether the element has been removed from its document
// tree, which makes it unusable for fills.
func (e *Element) Detached() bool {
	n := e.node
	for n.Parent != nil {
		n = n.Parent
	}
	return n.Type != html.DocumentNode
}

// Detach removes the element from the tree. Tests use it to simulate a
// framework re-render invalidating held handles.
func (e *Element) Detach() {
	e.sel.Remove()
}

func (e *Element) elementFor(n *html.Node) *Element {
	return &Element{doc: e.doc, sel: newSingleSelection(n, e.doc.sel), node: n}
}

func (e *Element) setTextContent(value string) {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: value})
}

func optionValue(o *goquery.Selection) string {
	if v, ok := o.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(o.Text())
}

func nodeAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeHasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func styleHidden(style string) bool {
	if style == "" {
		return false
	}
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.ToLower(strings.TrimSpace(v))
		switch k {
		case "display":
			if v == "none" {
				return true
			}
		case "visibility":
			if v == "hidden" || v == "collapse" {
				return true
			}
		case "opacity":
			if f, err := strconv.ParseFloat(v, 64); err == nil && f == 0 {
				return true
			}
		}
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
