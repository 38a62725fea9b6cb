// Package profile holds the local applicant data that backs quick fills and
// the reusable answer bank.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/formscout/formscout/internal/classify"
	"github.com/formscout/formscout/internal/schemas"
)

// Location is the applicant's home base.
type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country,omitempty"`
}

// String renders the location the way application forms usually want it,
// "City, State".
func (l Location) String() string {
	parts := make([]string, 0, 2)
	if l.City != "" {
		parts = append(parts, l.City)
	}
	if l.State != "" {
		parts = append(parts, l.State)
	}
	if len(parts) == 0 && l.Country != "" {
		return l.Country
	}
	return strings.Join(parts, ", ")
}

// Links are the applicant's public URLs.
type Links struct {
	LinkedIn  string `json:"linkedin,omitempty" validate:"omitempty,url"`
	GitHub    string `json:"github,omitempty" validate:"omitempty,url"`
	Portfolio string `json:"portfolio,omitempty" validate:"omitempty,url"`
}

// Profile is one applicant's fill data. The struct mirrors
// schemas/profile.schema.json; Load enforces both.
type Profile struct {
	FirstName string `json:"first_name" validate:"required,min=1"`
	LastName  string `json:"last_name" validate:"required,min=1"`
	FullName  string `json:"full_name,omitempty"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty"`

	Location Location `json:"location,omitempty"`
	Links    Links    `json:"links,omitempty"`

	ResumePath      string `json:"resume_path,omitempty"`
	CoverLetterPath string `json:"cover_letter_path,omitempty"`

	SalaryExpectation string `json:"salary_expectation,omitempty"`
	StartDate         string `json:"start_date,omitempty"`
	YearsOfExperience int    `json:"years_of_experience,omitempty" validate:"omitempty,min=0,max=60"`

	// Yes/no-shaped answers stay strings so the option matcher can map them
	// onto whatever choices a form offers.
	WorkAuthorization string `json:"work_authorization,omitempty"`
	WillingToRelocate string `json:"willing_to_relocate,omitempty"`
	Referral          string `json:"referral,omitempty"`
	Gender            string `json:"gender,omitempty"`
	VeteranStatus     string `json:"veteran_status,omitempty"`
	DisabilityStatus  string `json:"disability_status,omitempty"`

	// Notes is free-form background handed to text generation.
	Notes string `json:"notes,omitempty"`

	// AnswerBank maps question fragments to canned answers, consulted before
	// any generation call.
	AnswerBank map[string]string `json:"answer_bank,omitempty"`
}

// Validate checks the profile's struct-level constraints.
func (p *Profile) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// DisplayName returns the full name, assembled from the parts when the
// full_name field is empty.
func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// QuickFillValue resolves a classification category to this profile's value
// for it. The second return is false when the profile has nothing to offer,
// which callers treat as "skip", never as an error.
func (p *Profile) QuickFillValue(cat classify.Category) (string, bool) {
	var v string
	switch cat {
	case classify.CategoryFirstName:
		v = p.FirstName
	case classify.CategoryLastName:
		v = p.LastName
	case classify.CategoryFullName:
		v = p.DisplayName()
	case classify.CategoryEmail:
		v = p.Email
	case classify.CategoryPhone:
		v = p.Phone
	case classify.CategoryLocation:
		v = p.Location.String()
	case classify.CategoryLinkedIn:
		v = p.Links.LinkedIn
	case classify.CategoryGitHub:
		v = p.Links.GitHub
	case classify.CategoryPortfolio:
		v = p.Links.Portfolio
	case classify.CategorySalary:
		v = p.SalaryExpectation
	case classify.CategoryStartDate:
		v = p.StartDate
	case classify.CategoryYearsExperience:
		if p.YearsOfExperience > 0 {
			v = strconv.Itoa(p.YearsOfExperience)
		}
	case classify.CategoryWorkAuthorization:
		v = p.WorkAuthorization
	case classify.CategoryCanRelocate:
		v = p.WillingToRelocate
	case classify.CategoryReferral:
		v = p.Referral
	case classify.CategoryGender:
		v = p.Gender
	case classify.CategoryVeteranStatus:
		v = p.VeteranStatus
	case classify.CategoryDisability:
		v = p.DisabilityStatus
	default:
		return "", false
	}
	if v == "" {
		return "", false
	}
	return v, true
}

// ValuesFor resolves the fill values for a classified, labeled field.
// Custom questions consult the answer bank; every other category maps
// through QuickFillValue. ok false means the profile has nothing to offer.
func (p *Profile) ValuesFor(cat classify.Category, label string) ([]string, bool) {
	if cat == classify.CategoryCustomQuestion {
		answer, ok := p.AnswerFor(label)
		if !ok {
			return nil, false
		}
		return []string{answer}, true
	}
	v, ok := p.QuickFillValue(cat)
	if !ok {
		return nil, false
	}
	return []string{v}, true
}

// AnswerFor looks a resolved field label up in the answer bank. Keys match
// case-insensitively as substrings in either direction; among several hits
// the longest key wins.
func (p *Profile) AnswerFor(label string) (string, bool) {
	if len(p.AnswerBank) == 0 {
		return "", false
	}
	needle := normalizeQuestion(label)
	if needle == "" {
		return "", false
	}

	if answer, ok := p.AnswerBank[label]; ok {
		return answer, true
	}

	bestLen := 0
	var best string
	found := false
	for key, answer := range p.AnswerBank {
		k := normalizeQuestion(key)
		if k == "" {
			continue
		}
		if k == needle || strings.Contains(needle, k) || strings.Contains(k, needle) {
			if len(k) > bestLen {
				bestLen = len(k)
				best = answer
				found = true
			}
		}
	}
	return best, found
}

func normalizeQuestion(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Parse validates raw profile JSON against the bundled schema and the
// struct constraints, then decodes it.
func Parse(data []byte) (*Profile, error) {
	if err := schemas.Validate(schemas.Profile, data); err != nil {
		return nil, fmt.Errorf("profile rejected by schema: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile failed validation: %w", err)
	}
	return &p, nil
}

// Load reads and parses a profile file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}
