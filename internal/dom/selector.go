package dom

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var cssIdentPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Selector builds a CSS selector that uniquely addresses the element within
// its document. The live executor uses it to re-locate the element on the
// real page, so the path must survive serialization: ids when unique and
// safe, otherwise a tag:nth-of-type chain anchored at the nearest unique id
// or the document root.
func (e *Element) Selector() string {
	var segments []string
	for n := e.node; n != nil && n.Type == html.ElementNode; {
		if id := nodeAttr(n, "id"); id != "" && cssIdentPattern.MatchString(id) && e.doc.idCount(id) == 1 {
			segments = append([]string{"#" + id}, segments...)
			return strings.Join(segments, " > ")
		}
		segments = append([]string{nthOfTypeSegment(n)}, segments...)
		parent := n.Parent
		for parent != nil && parent.Type != html.ElementNode {
			parent = parent.Parent
		}
		n = parent
	}
	return strings.Join(segments, " > ")
}

func nthOfTypeSegment(n *html.Node) string {
	tag := strings.ToLower(n.Data)
	if tag == "html" || tag == "body" || tag == "head" {
		return tag
	}
	index := 1
	sameType := 1
	for sib := n.PrevSibling; sib != nil; sib = sib.PrevSibling {
		if sib.Type == html.ElementNode && strings.EqualFold(sib.Data, n.Data) {
			index++
		}
	}
	for sib := n.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type == html.ElementNode && strings.EqualFold(sib.Data, n.Data) {
			sameType++
		}
	}
	if index == 1 && sameType == 1 {
		return tag
	}
	return fmt.Sprintf("%s:nth-of-type(%d)", tag, index)
}

// idCount counts elements carrying the given id. Real pages duplicate ids
// often enough that the selector builder cannot trust them blindly.
func (d *Document) idCount(id string) int {
	count := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && nodeAttr(n, "id") == id {
			count++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range d.sel.Nodes {
		walk(n)
	}
	return count
}
