// Package label resolves human-readable labels for form elements.
//
// Pages rarely wire labels the way the HTML spec intends, so resolution is a
// weighted candidate search across six tiers: direct association, ARIA and
// data attributes, sibling text, ancestor containers, spatial proximity (when
// the snapshot carries layout annotations), and attribute fallbacks. The
// highest-weight surviving candidate wins; absence is a normal outcome, not
// an error.
package label

import (
	"regexp"
	"strings"

	"github.com/formscout/formscout/internal/dom"
)

// Candidate weights per tier. Ties keep the earlier (higher-priority) tier.
const (
	weightLabelFor       = 100
	weightWrappingLabel  = 95
	weightAriaLabelledBy = 95
	weightAriaLabel      = 90

	weightDataAttr        = 80
	weightAriaDescribedBy = 60

	weightSiblingLabelish = 85
	weightSiblingText     = 70

	ancestorLabelishBase = 75
	ancestorSiblingBase  = 70
	ancestorDecayPerHop  = 5
	maxAncestorHops      = 7

	weightSpatialFirst  = 50
	weightSpatialSecond = 40
	weightSpatialThird  = 30

	weightPlaceholder = 25
	weightTestID      = 20
	weightNameAttr    = 15
)

// Spatial search window, in page pixels.
const (
	aboveMaxVertical    = 150
	aboveMaxHorizontal  = 200
	leftMaxHorizontal   = 300
	leftMaxVerticalSkew = 50
)

const controlTags = "input, select, textarea, button"

// labelishSelector matches elements whose class or id advertises label
// intent, plus the structural label carriers.
const labelishSelector = `legend, h1, h2, h3, h4, h5, h6,` +
	` [class*="label"], [id*="label"],` +
	` [class*="title"], [id*="title"],` +
	` [class*="question"], [id*="question"],` +
	` [class*="prompt"], [id*="prompt"],` +
	` [class*="field-name"], [id*="field-name"]`

// dataLabelAttrs is the fixed list of data-* attributes pages use to carry
// display labels.
var dataLabelAttrs = []string{
	"data-label", "data-field-label", "data-title",
	"data-name", "data-field-name", "data-question",
}

// stopWords are generic UI strings that carry no field meaning.
var stopWords = map[string]bool{
	"select":           true,
	"search":           true,
	"type here":        true,
	"enter":            true,
	"choose":           true,
	"combobox":         true,
	"textbox":          true,
	"input":            true,
	"dropdown":         true,
	"click here":       true,
	"required":         true,
	"optional":         true,
	"submit":           true,
	"please select":    true,
	"select an option": true,
	"select one":       true,
	"none":             true,
}

var (
	safeIDPattern     = regexp.MustCompile(`^[^"\\]+$`)
	hexHashPattern    = regexp.MustCompile(`^[0-9a-fA-F]{8,}$`)
	alnumPattern      = regexp.MustCompile(`^[A-Za-z0-9]{8,}$`)
	digitPattern      = regexp.MustCompile(`[0-9]`)
	camelBoundary     = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	separatorPattern  = regexp.MustCompile(`[_\-.\[\]]+`)
	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// Candidate is one weighted label candidate, retained for diagnostics.
type Candidate struct {
	Text   string
	Weight int
	Source string
}

// Resolve returns the best-guess label for an element. ok is false when no
// candidate survives filtering.
func Resolve(el *dom.Element) (string, bool) {
	best := Best(Candidates(el))
	if best == nil {
		return "", false
	}
	return best.Text, true
}

// Best picks the highest-weight candidate, earlier entries winning ties.
func Best(cands []Candidate) *Candidate {
	var best *Candidate
	for i := range cands {
		if best == nil || cands[i].Weight > best.Weight {
			best = &cands[i]
		}
	}
	return best
}

// ResolveGroup resolves a label for a radio/checkbox group anchored at one
// member. Wrapping-label and sibling text are skipped here since they name
// the individual choice, not the group: the enclosing fieldset legend wins,
// then labelish containers found on the ancestor walk.
func ResolveGroup(el *dom.Element) (string, bool) {
	if fs := el.Closest("fieldset"); fs != nil {
		if lg := fs.Query("legend"); lg != nil {
			if t, ok := cleanse(lg.Text()); ok {
				return t, true
			}
		}
	}
	var out []Candidate
	collectAncestors(el, func(text string, weight int, source string) {
		if t, ok := cleanse(text); ok {
			out = append(out, Candidate{Text: t, Weight: weight, Source: source})
		}
	})
	if best := Best(out); best != nil {
		return best.Text, true
	}
	return "", false
}

// Candidates collects every surviving weighted candidate for an element in
// tier order.
func Candidates(el *dom.Element) []Candidate {
	var out []Candidate
	add := func(text string, weight int, source string) {
		if t, ok := cleanse(text); ok {
			out = append(out, Candidate{Text: t, Weight: weight, Source: source})
		}
	}

	collectDirect(el, add)
	collectAttributes(el, add)
	collectSibling(el, add)
	collectAncestors(el, add)
	collectSpatial(el, add)
	collectFallback(el, add)
	return out
}

type addFunc func(text string, weight int, source string)

func collectDirect(el *dom.Element, add addFunc) {
	if id := el.ID(); id != "" {
		if lab := labelFor(el.Document(), id); lab != nil {
			add(lab.TextExcluding("input", "select", "textarea", "button"), weightLabelFor, "label[for]")
		}
	}
	if wrap := el.Closest("label"); wrap != nil {
		add(wrap.TextExcluding("input", "select", "textarea", "button"), weightWrappingLabel, "wrapping label")
	}
	if refs := el.Attr("aria-labelledby"); refs != "" {
		add(referencedText(el.Document(), refs), weightAriaLabelledBy, "aria-labelledby")
	}
	add(el.Attr("aria-label"), weightAriaLabel, "aria-label")
}

func collectAttributes(el *dom.Element, add addFunc) {
	for _, attr := range dataLabelAttrs {
		add(el.Attr(attr), weightDataAttr, attr)
	}
	if refs := el.Attr("aria-describedby"); refs != "" {
		add(referencedText(el.Document(), refs), weightAriaDescribedBy, "aria-describedby")
	}
}

func collectSibling(el *dom.Element, add addFunc) {
	prev := el.PrevElement()
	if prev == nil {
		return
	}
	text := prev.TextExcluding("input", "select", "textarea", "button")
	if prev.Tag() == "label" || looksLabelish(prev) {
		add(text, weightSiblingLabelish, "preceding label sibling")
		return
	}
	switch prev.Tag() {
	case "div", "span", "p", "td", "th", "b", "strong", "legend", "dt":
		add(text, weightSiblingText, "preceding text sibling")
	}
}

func collectAncestors(el *dom.Element, add addFunc) {
	for level, anc := range el.Ancestors(maxAncestorHops) {
		decay := ancestorDecayPerHop * level
		if found := firstLabelishDescendant(anc, el); found != nil {
			add(found.TextExcluding("input", "select", "textarea", "button"),
				ancestorLabelishBase-decay, "ancestor labelish")
		}
		for _, sib := range anc.PrevElements() {
			text := sib.TextExcluding("input", "select", "textarea", "button")
			if text != "" {
				add(text, ancestorSiblingBase-decay, "ancestor preceding sibling")
				break
			}
		}
	}
}

// collectSpatial uses annotated bounding boxes to find short text blocks
// directly above or to the left of the element. Snapshots without layout
// annotations contribute nothing here.
func collectSpatial(el *dom.Element, add addFunc) {
	target, ok := el.BoundingBox()
	if !ok {
		return
	}
	type scored struct {
		text string
		dist float64
	}
	var found []scored
	for _, cand := range el.Document().QueryAll("*") {
		if cand.Node() == el.Node() || cand.Matches(controlTags) {
			continue
		}
		rect, ok := cand.BoundingBox()
		if !ok {
			continue
		}
		text := cand.OwnText()
		if text == "" || contains(cand, el) {
			continue
		}
		if d, ok := spatialDistance(rect, target); ok {
			found = append(found, scored{text: text, dist: d})
		}
	}
	// Insertion sort keeps the three closest; candidate sets are tiny.
	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && found[j].dist < found[j-1].dist; j-- {
			found[j], found[j-1] = found[j-1], found[j]
		}
	}
	weights := []int{weightSpatialFirst, weightSpatialSecond, weightSpatialThird}
	for i, s := range found {
		if i >= len(weights) {
			break
		}
		add(s.text, weights[i], "spatial")
	}
}

// spatialDistance scores a candidate rect against the target. Above-the-field
// text pays a small horizontal penalty; left-of-field text pays a larger
// vertical one.
func spatialDistance(cand, target dom.Rect) (float64, bool) {
	dv := target.Y - cand.Bottom()
	dhEdge := abs(cand.X - target.X)
	if dv >= 0 && dv <= aboveMaxVertical && dhEdge <= aboveMaxHorizontal {
		return dv + dhEdge*0.1, true
	}
	dh := target.X - cand.Right()
	dvCenter := abs(cand.CenterY() - target.CenterY())
	if dh >= 0 && dh <= leftMaxHorizontal && dvCenter <= leftMaxVerticalSkew {
		return dh + dvCenter*0.5, true
	}
	return 0, false
}

func collectFallback(el *dom.Element, add addFunc) {
	add(el.Attr("placeholder"), weightPlaceholder, "placeholder")
	if tid := el.Attr("data-testid"); tid != "" {
		add(Humanize(tid), weightTestID, "data-testid")
	}
	if name := el.Name(); name != "" && !LooksLikeHash(name) {
		add(Humanize(name), weightNameAttr, "name")
	}
}

// labelFor finds the <label for="..."> pointing at the given id within the
// element's own document.
func labelFor(doc *dom.Document, id string) *dom.Element {
	for _, lab := range doc.QueryAll("label[for]") {
		if lab.Attr("for") == id {
			return lab
		}
	}
	return nil
}

// referencedText resolves a space-separated id list and concatenates the
// referenced elements' text in reference order.
func referencedText(doc *dom.Document, refs string) string {
	var parts []string
	for _, id := range strings.Fields(refs) {
		if !safeIDPattern.MatchString(id) {
			continue
		}
		if ref := doc.Query(`[id="` + id + `"]`); ref != nil {
			if t := ref.Text(); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}

func firstLabelishDescendant(anc, target *dom.Element) *dom.Element {
	for _, cand := range anc.QueryAll(labelishSelector) {
		if cand.Node() == target.Node() || contains(cand, target) {
			continue
		}
		return cand
	}
	return nil
}

func looksLabelish(el *dom.Element) bool {
	probe := strings.ToLower(el.Attr("class") + " " + el.ID())
	for _, marker := range []string{"label", "title", "question", "prompt", "field-name"} {
		if strings.Contains(probe, marker) {
			return true
		}
	}
	return false
}

// contains reports whether target sits inside cand's subtree.
func contains(cand, target *dom.Element) bool {
	for n := target.Node().Parent; n != nil; n = n.Parent {
		if n == cand.Node() {
			return true
		}
	}
	return false
}

// cleanse trims, length-filters, and stoplist-filters candidate text.
func cleanse(text string) (string, bool) {
	t := strings.TrimSpace(multiSpacePattern.ReplaceAllString(text, " "))
	if len(t) <= 1 || len(t) >= 500 {
		return "", false
	}
	if stopWords[strings.ToLower(t)] {
		return "", false
	}
	return t, true
}

// Humanize turns an attribute identifier into readable text: camelCase,
// snake_case, kebab-case, and bracketed form names all become spaced words
// with the first letter capitalized.
func Humanize(raw string) string {
	s := separatorPattern.ReplaceAllString(raw, " ")
	s = camelBoundary.ReplaceAllString(s, "$1 $2")
	s = strings.TrimSpace(multiSpacePattern.ReplaceAllString(s, " "))
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	return strings.ToUpper(s[:1]) + s[1:]
}

// LooksLikeHash reports whether an attribute value reads as a generated
// identifier rather than words: long hex runs, or 8+ alphanumerics that mix
// in digits without any separator structure.
func LooksLikeHash(s string) bool {
	if hexHashPattern.MatchString(s) && digitPattern.MatchString(s) {
		return true
	}
	if !alnumPattern.MatchString(s) {
		return false
	}
	digits := len(digitPattern.FindAllString(s, -1))
	return digits*10 >= len(s)*3
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
