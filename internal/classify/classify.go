// Package classify assigns semantic categories to detected form fields.
//
// Classification runs over the lower-cased concatenation of an element's
// identifying attributes and resolved label. Autocomplete tokens are checked
// first against a direct lookup table and short-circuit at full confidence;
// otherwise ordered per-category regex tables are scored with a
// pattern-length over hints-length ratio. The ratio is a crude ranking
// device, not a calibrated probability; downstream thresholds are tuned
// against this exact scale, so it stays as is.
package classify

import (
	"regexp"
	"strings"

	"github.com/formscout/formscout/internal/dom"
)

// Category is the closed set of semantic field classifications.
type Category string

const (
	CategoryFirstName         Category = "firstName"
	CategoryLastName          Category = "lastName"
	CategoryFullName          Category = "fullName"
	CategoryEmail             Category = "email"
	CategoryPhone             Category = "phone"
	CategoryLocation          Category = "location"
	CategoryLinkedIn          Category = "linkedin"
	CategoryGitHub            Category = "github"
	CategoryPortfolio         Category = "portfolio"
	CategoryResume            Category = "resume"
	CategoryResumeUpload      Category = "resumeUpload"
	CategoryCoverLetter       Category = "coverLetter"
	CategoryCoverLetterUpload Category = "coverLetterUpload"
	CategoryFileUpload        Category = "fileUpload"
	CategorySalary            Category = "salary"
	CategoryStartDate         Category = "startDate"
	CategoryYearsExperience   Category = "yearsExperience"
	CategoryWorkAuthorization Category = "workAuthorization"
	CategoryCanRelocate       Category = "canRelocate"
	CategoryReferral          Category = "referral"
	CategoryGender            Category = "gender"
	CategoryVeteranStatus     Category = "veteranStatus"
	CategoryDisability        Category = "disability"
	CategoryCustomQuestion    Category = "customQuestion"
	CategoryUnknown           Category = "unknown"
)

// Result pairs a category with its heuristic confidence in [0,1].
// Confidence 0 accompanies unknown, with one exception: the textarea
// long-label reclassification keeps the unknown score while renaming the
// category (see ApplyTextareaHeuristic).
type Result struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}

// fileUploadConfidence is the fixed score for file inputs: when a file
// picker carries intent keywords at all, the signal is strong.
const fileUploadConfidence = 0.9

// textareaLabelThreshold is the label length beyond which an unclassified
// textarea is presumed to be an open-ended application question.
const textareaLabelThreshold = 20

// Hints are the text signals a field offers the classifier.
type Hints struct {
	Name         string
	ID           string
	Placeholder  string
	AriaLabel    string
	Autocomplete string
	DataField    string
	DataName     string
	Label        string
	Legend       string
}

// Collect gathers classifier hints from an element plus its resolved label
// and any enclosing fieldset legend.
func Collect(el *dom.Element, labelText string) Hints {
	h := Hints{
		Name:         el.Name(),
		ID:           el.ID(),
		Placeholder:  el.Attr("placeholder"),
		AriaLabel:    el.Attr("aria-label"),
		Autocomplete: el.Attr("autocomplete"),
		DataField:    el.Attr("data-field"),
		DataName:     el.Attr("data-name"),
		Label:        labelText,
	}
	if fs := el.Closest("fieldset"); fs != nil {
		if legend := fs.Query("legend"); legend != nil {
			h.Legend = legend.Text()
		}
	}
	return h
}

// Join flattens the hints into the lower-cased search text patterns run
// against.
func (h Hints) Join() string {
	parts := make([]string, 0, 9)
	for _, p := range []string{
		h.Name, h.ID, h.Placeholder, h.AriaLabel, h.Autocomplete,
		h.DataField, h.DataName, h.Label, h.Legend,
	} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// autocompleteTable maps standard autocomplete tokens straight to
// categories. A hit here is authoritative.
var autocompleteTable = map[string]Category{
	"given-name":     CategoryFirstName,
	"family-name":    CategoryLastName,
	"name":           CategoryFullName,
	"email":          CategoryEmail,
	"tel":            CategoryPhone,
	"tel-national":   CategoryPhone,
	"street-address": CategoryLocation,
	"address-line1":  CategoryLocation,
	"address-level1": CategoryLocation,
	"address-level2": CategoryLocation,
	"postal-code":    CategoryLocation,
	"country":        CategoryLocation,
	"country-name":   CategoryLocation,
	"url":            CategoryPortfolio,
}

type patternSet struct {
	category Category
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// categoryPatterns is evaluated in declaration order; equal confidences keep
// the earlier category. Pattern length doubles as specificity, so the more
// spelled-out variants sit alongside their short forms deliberately.
var categoryPatterns = []patternSet{
	{CategoryFirstName, compileAll(`first.?name`, `\bfname\b`, `given.?name`, `forename`)},
	{CategoryLastName, compileAll(`last.?name`, `\blname\b`, `surname`, `family.?name`)},
	{CategoryFullName, compileAll(`full.?name`, `legal.?name`, `complete.?name`, `your.?name`, `\bname\b`)},
	{CategoryEmail, compileAll(`e.?mail.?address`, `e.?mail`)},
	{CategoryPhone, compileAll(`phone.?number`, `contact.?number`, `telephone`, `\bphone\b`, `mobile`, `\bcell\b`)},
	{CategoryLocation, compileAll(`current.?location`, `\bcity\b`, `\bstate\b`, `\baddress\b`, `country`, `zip.?code`, `postal.?code`, `location`, `province`)},
	{CategoryLinkedIn, compileAll(`linked.?in`)},
	{CategoryGitHub, compileAll(`git.?hub`)},
	{CategoryPortfolio, compileAll(`portfolio`, `personal.?site`, `personal.?website`, `website`, `\burl\b`, `\bblog\b`)},
	{CategoryResume, compileAll(`resume`, `\bcv\b`, `curriculum.?vitae`)},
	{CategoryCoverLetter, compileAll(`cover.?letter`, `covering.?letter`, `motivation.?letter`, `letter.?of.?interest`)},
	{CategorySalary, compileAll(`salary.?expectation`, `expected.?salary`, `desired.?salary`, `compensation`, `salary.?requirement`, `\bsalary\b`, `desired.?pay`)},
	{CategoryStartDate, compileAll(`start.?date`, `available.?date`, `date.?available`, `when.?can.?you.?start`, `notice.?period`, `availability`)},
	{CategoryYearsExperience, compileAll(`years.?of.?experience`, `years.?experience`, `experience.?years`, `how.?many.?years`)},
	{CategoryWorkAuthorization, compileAll(`work.?authorization`, `authorized.?to.?work`, `legally.?authorized`, `right.?to.?work`, `work.?permit`, `eligible.?to.?work`, `sponsorship`, `work.?auth`, `\bvisa\b`, `employment.?eligibility`)},
	{CategoryCanRelocate, compileAll(`willing.?to.?relocate`, `open.?to.?relocation`, `relocation`, `relocat`, `willing.?to.?move`)},
	{CategoryReferral, compileAll(`how.?did.?you.?hear`, `hear.?about.?us`, `referral.?source`, `referred.?by`, `referr`)},
	{CategoryGender, compileAll(`gender.?identity`, `\bgender\b`, `\bsex\b`, `pronouns`)},
	{CategoryVeteranStatus, compileAll(`protected.?veteran`, `veteran.?status`, `veteran`, `military.?service`, `armed.?forces`)},
	{CategoryDisability, compileAll(`disability.?status`, `disabilit`, `handicap`, `impairment`)},
	{CategoryCustomQuestion, compileAll(`why.?do.?you.?want`, `why.?are.?you.?interested`, `tell.?us.?about`, `describe.?your`, `what.?interests.?you`, `anything.?else`, `additional.?information`)},
}

var (
	resumeFilePattern = regexp.MustCompile(`resume|\bcv\b|curriculum`)
	coverFilePattern  = regexp.MustCompile(`cover.?letter|covering.?letter`)
)

// Classify scores the hints and returns the best category. Autocomplete
// tokens short-circuit; otherwise every matching pattern contributes
// patternLength/hintsLength (clamped to 1) and the best ratio wins.
func Classify(h Hints) Result {
	if cat, ok := lookupAutocomplete(h.Autocomplete); ok {
		return Result{Category: cat, Confidence: 1.0}
	}
	joined := h.Join()
	if joined == "" {
		return Result{Category: CategoryUnknown, Confidence: 0}
	}
	best := Result{Category: CategoryUnknown, Confidence: 0}
	for _, set := range categoryPatterns {
		for _, p := range set.patterns {
			if !p.MatchString(joined) {
				continue
			}
			conf := float64(len(p.String())) / float64(len(joined))
			if conf > 1 {
				conf = 1
			}
			if conf > best.Confidence {
				best = Result{Category: set.category, Confidence: conf}
			}
		}
	}
	return best
}

// ClassifyFile categorizes a file input by intent keywords at a fixed high
// confidence.
func ClassifyFile(h Hints) Result {
	joined := h.Join()
	switch {
	case resumeFilePattern.MatchString(joined):
		return Result{Category: CategoryResumeUpload, Confidence: fileUploadConfidence}
	case coverFilePattern.MatchString(joined):
		return Result{Category: CategoryCoverLetterUpload, Confidence: fileUploadConfidence}
	default:
		return Result{Category: CategoryFileUpload, Confidence: fileUploadConfidence}
	}
}

// ApplyTextareaHeuristic reclassifies an unknown textarea with a long
// resolved label as an open-ended question. The confidence deliberately
// stays at the original unknown score.
func ApplyTextareaHeuristic(r Result, labelText string) Result {
	if r.Category == CategoryUnknown && len(labelText) > textareaLabelThreshold {
		r.Category = CategoryCustomQuestion
	}
	return r
}

func lookupAutocomplete(value string) (Category, bool) {
	for _, token := range strings.Fields(strings.ToLower(value)) {
		if cat, ok := autocompleteTable[token]; ok {
			return cat, true
		}
	}
	return CategoryUnknown, false
}

// QuickFillable reports whether a category maps onto a direct profile value
// rather than needing generated text.
func QuickFillable(cat Category) bool {
	switch cat {
	case CategoryFirstName, CategoryLastName, CategoryFullName, CategoryEmail,
		CategoryPhone, CategoryLocation, CategoryLinkedIn, CategoryGitHub,
		CategoryPortfolio, CategorySalary, CategoryStartDate,
		CategoryYearsExperience, CategoryWorkAuthorization, CategoryCanRelocate,
		CategoryReferral, CategoryGender, CategoryVeteranStatus, CategoryDisability:
		return true
	default:
		return false
	}
}

// Generative reports whether a category calls for AI-composed text.
func Generative(cat Category) bool {
	return cat == CategoryCustomQuestion || cat == CategoryCoverLetter
}
