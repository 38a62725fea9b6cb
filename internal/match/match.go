// Package match fuzzy-matches target values against closed option
// vocabularies (selects, radio groups, checkbox groups).
package match

import (
	"regexp"
	"strings"
)

// Option is one choice in a closed-vocabulary field.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

var (
	yesPattern  = regexp.MustCompile(`(?i)yes|true|1`)
	noPattern   = regexp.MustCompile(`(?i)no|false|0`)
	tokenSplit  = regexp.MustCompile(`[,\n]+`)
	yesSynonyms = map[string]bool{"yes": true, "true": true, "1": true}
	noSynonyms  = map[string]bool{"no": true, "false": true, "0": true}
)

// BestOption resolves a textual target against the options through a
// cascade: exact match, substring either direction, comma/newline token
// match, then yes/no normalization. ok is false when nothing matches at any
// stage; callers treat that as "could not fill", not an error.
func BestOption(options []Option, target string) (string, bool) {
	want := normalize(target)
	if want == "" || len(options) == 0 {
		return "", false
	}
	if v, ok := exact(options, want); ok {
		return v, true
	}
	if v, ok := substring(options, want); ok {
		return v, true
	}
	for _, token := range tokens(want) {
		if v, ok := exact(options, token); ok {
			return v, true
		}
		if v, ok := substring(options, token); ok {
			return v, true
		}
	}
	if v, ok := boolean(options, want); ok {
		return v, true
	}
	return "", false
}

// BestOptions resolves several targets at once, deduplicating the matched
// option values while preserving target order. Checkbox groups accept lists.
func BestOptions(options []Option, targets []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range targets {
		if v, ok := BestOption(options, t); ok && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func exact(options []Option, want string) (string, bool) {
	for _, opt := range options {
		if normalize(opt.Value) == want || normalize(opt.Label) == want {
			return opt.Value, true
		}
	}
	return "", false
}

func substring(options []Option, want string) (string, bool) {
	for _, opt := range options {
		lab := normalize(opt.Label)
		val := normalize(opt.Value)
		if lab != "" && (strings.Contains(lab, want) || strings.Contains(want, lab)) {
			return opt.Value, true
		}
		if val != "" && strings.Contains(val, want) {
			return opt.Value, true
		}
	}
	return "", false
}

func boolean(options []Option, want string) (string, bool) {
	var pattern *regexp.Regexp
	switch {
	case yesSynonyms[want]:
		pattern = yesPattern
	case noSynonyms[want]:
		pattern = noPattern
	default:
		return "", false
	}
	for _, opt := range options {
		if pattern.MatchString(opt.Value) || pattern.MatchString(opt.Label) {
			return opt.Value, true
		}
	}
	return "", false
}

func tokens(want string) []string {
	var out []string
	for _, t := range tokenSplit.Split(want, -1) {
		t = strings.TrimSpace(t)
		if t != "" && t != want {
			out = append(out, t)
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
