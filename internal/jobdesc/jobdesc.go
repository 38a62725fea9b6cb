// Package jobdesc extracts job-description text from application pages.
//
// Extraction is deliberately approximate: an ordered selector pass per
// detected platform, then a generic selector pass, then (when forced or when
// the platform is unknown) a scored heuristic over content blocks. False
// positives and negatives are expected; callers treat absence as "no
// description found", never as an error.
package jobdesc

import (
	"regexp"
	"strings"

	"github.com/formscout/formscout/internal/dom"
)

const (
	// selectorMinLen is the trimmed-text threshold for a selector hit.
	selectorMinLen = 200
	// heuristicMinLen and heuristicMaxLen bound content blocks considered by
	// the scored fallback.
	heuristicMinLen = 300
	heuristicMaxLen = 60000
	// anchorFractionMax skips navigation-heavy blocks.
	anchorFractionMax = 0.4
	// keywordBonus rewards blocks that read like a posting.
	keywordBonus = 20.0
)

// jobKeywords marks text that reads like a job posting body.
var jobKeywords = regexp.MustCompile(`(?i)responsibilit|qualificat|requirement|` +
	`what you.?ll do|about the (role|job|team)|benefits|experience|skills`)

// Source records which stage produced an extraction.
type Source string

const (
	// SourcePlatform means a platform-specific selector matched.
	SourcePlatform Source = "platform"
	// SourceGeneric means a generic fallback selector matched.
	SourceGeneric Source = "generic"
	// SourceHeuristic means the scored content-block fallback matched.
	SourceHeuristic Source = "heuristic"
)

// Extraction is one successful job-description find.
type Extraction struct {
	Platform Platform `json:"platform"`
	Text     string   `json:"text"`
	Source   Source   `json:"source"`
	Selector string   `json:"selector,omitempty"`
	Score    float64  `json:"score,omitempty"`
}

// Extract pulls the job-description text out of a page snapshot. force runs
// the scored heuristic even for recognized platforms whose selectors came up
// empty. ok is false when nothing qualified.
func Extract(doc *dom.Document, force bool) (*Extraction, bool) {
	platform := DetectPlatform(doc.URL())

	if ext, ok := bySelectors(doc, PlatformSelectors(platform), platform, SourcePlatform); ok {
		return ext, true
	}
	if ext, ok := bySelectors(doc, GenericSelectors(), platform, SourceGeneric); ok {
		return ext, true
	}
	if force || platform == PlatformUnknown {
		if ext, ok := byScore(doc, platform); ok {
			return ext, true
		}
	}
	return nil, false
}

func bySelectors(doc *dom.Document, selectors []string, platform Platform, source Source) (*Extraction, bool) {
	for _, sel := range selectors {
		for _, el := range doc.QueryAll(sel) {
			text := el.Text()
			if len(text) > selectorMinLen {
				return &Extraction{
					Platform: platform,
					Text:     text,
					Source:   source,
					Selector: sel,
				}, true
			}
		}
	}
	return nil, false
}

// byScore scans content blocks and keeps the best-scoring one: length-based
// score plus a keyword bonus, with navigation-heavy blocks skipped by anchor
// text fraction.
func byScore(doc *dom.Document, platform Platform) (*Extraction, bool) {
	var best *Extraction
	for _, el := range doc.QueryAll("div, section, article, main") {
		text := el.Text()
		l := len(text)
		if l < heuristicMinLen || l > heuristicMaxLen {
			continue
		}
		if anchorFraction(el, l) > anchorFractionMax {
			continue
		}
		score := float64(l) / 100
		if jobKeywords.MatchString(text) {
			score += keywordBonus
		}
		if best == nil || score > best.Score {
			best = &Extraction{
				Platform: platform,
				Text:     text,
				Source:   SourceHeuristic,
				Score:    score,
			}
		}
	}
	return best, best != nil
}

// anchorFraction estimates how much of a block's text lives inside links.
// Nested anchors may double-count; the estimate only needs to flag
// navigation clusters.
func anchorFraction(el *dom.Element, total int) float64 {
	if total == 0 {
		return 0
	}
	anchored := 0
	for _, a := range el.QueryAll("a") {
		anchored += len(a.Text())
	}
	return float64(anchored) / float64(total)
}

// Snippet returns a log-friendly prefix of extracted text.
func Snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
