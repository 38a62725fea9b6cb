// Package dom provides a static document model for form analysis.
//
// A Document wraps a parsed HTML snapshot (typically captured from a live page
// by the browser package, or fetched directly over HTTP) and exposes elements
// as opaque handles so detection, labeling, and fill logic can run without a
// browser attached. Snapshots carry optional layout annotations
// (data-fs-rect, data-fs-hidden) stamped by the capture script; when absent,
// geometry-dependent heuristics degrade gracefully.
package dom

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// MaxWalkNodes bounds the root-discovery tree walk so pathological pages
// cannot make a scan quadratic.
const MaxWalkNodes = 2500

// Annotation attribute names stamped by the snapshot capture script.
const (
	rectAttr   = "data-fs-rect"
	hiddenAttr = "data-fs-hidden"
)

// Event is a synthetic DOM event recorded against the static document.
// The live executor replays the same sequence against the real page.
type Event struct {
	Target  *Element
	Type    string
	Bubbles bool
}

// Rect is an element bounding box in page coordinates.
type Rect struct {
	X, Y, W, H float64
}

// CenterX returns the horizontal midpoint of the rect.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical midpoint of the rect.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Bottom returns the lower edge of the rect.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Right returns the right edge of the rect.
func (r Rect) Right() float64 { return r.X + r.W }

// Area returns the rect area in square pixels.
func (r Rect) Area() float64 { return r.W * r.H }

// eventLog collects dispatched events for a document and all of its inline
// frame documents, preserving global dispatch order.
type eventLog struct {
	events []Event
}

// Document is one parsed HTML snapshot.
type Document struct {
	sel    *goquery.Document
	url    string
	log    *eventLog
	frames []*Document
}

// RootKind discriminates the searchable subtrees of a snapshot.
type RootKind string

const (
	// RootDocument is the main document tree.
	RootDocument RootKind = "document"
	// RootFrame is an inlined same-origin iframe document.
	RootFrame RootKind = "frame"
	// RootShadow is an open shadow root serialized as a declarative template.
	RootShadow RootKind = "shadow"
)

// Root is a searchable subtree: the main document, an inlined frame document,
// or an open shadow root.
type Root struct {
	Kind  RootKind
	doc   *Document
	scope *goquery.Selection
}

// Parse reads an HTML snapshot into a Document. pageURL is informational and
// may be empty for fragments.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	gq, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc := &Document{
		sel: gq,
		url: pageURL,
		log: &eventLog{},
	}
	doc.parseFrames()
	return doc, nil
}

// ParseString is a convenience wrapper over Parse for in-memory markup.
func ParseString(markup, pageURL string) (*Document, error) {
	return Parse(strings.NewReader(markup), pageURL)
}

// parseFrames parses every iframe[srcdoc] into its own sub-document sharing
// this document's event log. Cross-origin frames never appear in a snapshot
// (the capture script cannot read them), so their absence here is expected.
func (d *Document) parseFrames() {
	d.sel.Find("iframe[srcdoc]").Each(func(_ int, s *goquery.Selection) {
		markup, _ := s.Attr("srcdoc")
		if strings.TrimSpace(markup) == "" {
			return
		}
		gq, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
		if err != nil {
			return
		}
		d.frames = append(d.frames, &Document{sel: gq, url: d.url, log: d.log})
	})
}

// URL returns the page URL the snapshot was captured from.
func (d *Document) URL() string { return d.url }

// Roots enumerates the searchable subtrees of the snapshot: the main tree,
// every inlined frame document, and every open shadow root found by a bounded
// walk (MaxWalkNodes). Elements reachable through more than one root must be
// deduplicated by the caller.
func (d *Document) Roots() []*Root {
	roots := []*Root{{Kind: RootDocument, doc: d, scope: d.sel.Selection}}
	for _, frame := range d.frames {
		roots = append(roots, &Root{Kind: RootFrame, doc: frame, scope: frame.sel.Selection})
	}
	visited := 0
	var walk func(n *html.Node)
	collect := func(n *html.Node, doc *Document) {
		if n.Type != html.ElementNode || n.Data != "template" {
			return
		}
		for _, a := range n.Attr {
			if a.Key == "shadowrootmode" && strings.EqualFold(a.Val, "open") {
				scope := newSingleSelection(n, doc.sel)
				roots = append(roots, &Root{Kind: RootShadow, doc: doc, scope: scope})
				return
			}
		}
	}
	walkDoc := func(doc *Document) {
		walk = func(n *html.Node) {
			if n == nil || visited >= MaxWalkNodes {
				return
			}
			visited++
			collect(n, doc)
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
		for _, n := range doc.sel.Nodes {
			walk(n)
		}
	}
	walkDoc(d)
	for _, frame := range d.frames {
		walkDoc(frame)
	}
	return roots
}

// QueryAll runs a CSS selector against the main tree only. Scans that need
// frame and shadow coverage should iterate Roots instead.
func (d *Document) QueryAll(selector string) []*Element {
	return selectionToElements(d, d.sel.Find(selector))
}

// Query returns the first match of selector in the main tree, or nil.
func (d *Document) Query(selector string) *Element {
	els := d.QueryAll(selector)
	if len(els) == 0 {
		return nil
	}
	return els[0]
}

// Events returns every event dispatched against this document (and its inline
// frames) in dispatch order.
func (d *Document) Events() []Event {
	return d.log.events
}

// EventsFor filters the dispatch log down to a single target element.
func (d *Document) EventsFor(el *Element) []Event {
	var out []Event
	for _, ev := range d.log.events {
		if ev.Target.node == el.node {
			out = append(out, ev)
		}
	}
	return out
}

// ClearEvents drops the recorded dispatch log. Useful between fill passes in
// tests.
func (d *Document) ClearEvents() {
	d.log.events = nil
}

func (d *Document) record(ev Event) {
	d.log.events = append(d.log.events, ev)
}

// QueryAll runs a CSS selector scoped to this root's subtree.
func (r *Root) QueryAll(selector string) []*Element {
	return selectionToElements(r.doc, r.scope.Find(selector))
}

func selectionToElements(doc *Document, sel *goquery.Selection) []*Element {
	out := make([]*Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Element{doc: doc, sel: s, node: s.Nodes[0]})
	})
	return out
}

// newSingleSelection wraps one node in a selection bound to owner's document
// so relative queries still work.
func newSingleSelection(n *html.Node, owner *goquery.Document) *goquery.Selection {
	return owner.FindNodes(n)
}

func parseRectAttr(val string) (Rect, bool) {
	parts := strings.Split(val, ",")
	if len(parts) != 4 {
		return Rect{}, false
	}
	nums := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Rect{}, false
		}
		nums[i] = f
	}
	return Rect{X: nums[0], Y: nums[1], W: nums[2], H: nums[3]}, true
}
