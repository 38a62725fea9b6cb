package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formscout/formscout/internal/classify"
)

func fullProfile() *Profile {
	return &Profile{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "+1 555 0100",
		Location:  Location{City: "San Francisco", State: "CA", Zip: "94105", Country: "United States"},
		Links: Links{
			LinkedIn:  "https://linkedin.com/in/ada",
			GitHub:    "https://github.com/ada",
			Portfolio: "https://ada.dev",
		},
		ResumePath:        "/tmp/resume.pdf",
		SalaryExpectation: "$180,000",
		StartDate:         "Two weeks from offer",
		YearsOfExperience: 7,
		WorkAuthorization: "yes",
		WillingToRelocate: "no",
		Referral:          "Grace Hopper",
		Gender:            "Female",
		VeteranStatus:     "No",
		DisabilityStatus:  "Prefer not to say",
		Notes:             "Backend engineer, distributed systems.",
		AnswerBank: map[string]string{
			"notice period":                "Two weeks",
			"Why do you want to work here": "I admire the team's engineering culture.",
			"salary":                       "$180,000",
		},
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Profile)
		wantErr bool
	}{
		{"complete profile", func(p *Profile) {}, false},
		{"missing first name", func(p *Profile) { p.FirstName = "" }, true},
		{"missing last name", func(p *Profile) { p.LastName = "" }, true},
		{"bad email", func(p *Profile) { p.Email = "not-an-email" }, true},
		{"bad linkedin url", func(p *Profile) { p.Links.LinkedIn = "linkedin dot com" }, true},
		{"years out of range", func(p *Profile) { p.YearsOfExperience = 99 }, true},
		{"optional fields empty", func(p *Profile) {
			p.Phone = ""
			p.Links = Links{}
			p.AnswerBank = nil
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fullProfile()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuickFillValue_AllCategories(t *testing.T) {
	p := fullProfile()
	tests := []struct {
		cat  classify.Category
		want string
	}{
		{classify.CategoryFirstName, "Ada"},
		{classify.CategoryLastName, "Lovelace"},
		{classify.CategoryFullName, "Ada Lovelace"},
		{classify.CategoryEmail, "ada@example.com"},
		{classify.CategoryPhone, "+1 555 0100"},
		{classify.CategoryLocation, "San Francisco, CA"},
		{classify.CategoryLinkedIn, "https://linkedin.com/in/ada"},
		{classify.CategoryGitHub, "https://github.com/ada"},
		{classify.CategoryPortfolio, "https://ada.dev"},
		{classify.CategorySalary, "$180,000"},
		{classify.CategoryStartDate, "Two weeks from offer"},
		{classify.CategoryYearsExperience, "7"},
		{classify.CategoryWorkAuthorization, "yes"},
		{classify.CategoryCanRelocate, "no"},
		{classify.CategoryReferral, "Grace Hopper"},
		{classify.CategoryGender, "Female"},
		{classify.CategoryVeteranStatus, "No"},
		{classify.CategoryDisability, "Prefer not to say"},
	}
	for _, tt := range tests {
		t.Run(string(tt.cat), func(t *testing.T) {
			got, ok := p.QuickFillValue(tt.cat)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuickFillValue_FullNamePreferred(t *testing.T) {
	p := fullProfile()
	p.FullName = "Augusta Ada King"
	got, ok := p.QuickFillValue(classify.CategoryFullName)
	require.True(t, ok)
	assert.Equal(t, "Augusta Ada King", got)
}

func TestQuickFillValue_MissesReportFalse(t *testing.T) {
	p := &Profile{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}

	_, ok := p.QuickFillValue(classify.CategoryPhone)
	assert.False(t, ok, "empty profile value is a miss, not an empty fill")

	_, ok = p.QuickFillValue(classify.CategoryYearsExperience)
	assert.False(t, ok, "zero years is a miss")

	_, ok = p.QuickFillValue(classify.CategoryCoverLetter)
	assert.False(t, ok, "generative categories never quick-fill")

	_, ok = p.QuickFillValue(classify.CategoryUnknown)
	assert.False(t, ok)
}

func TestQuickFillValue_LocationFallsBackToCountry(t *testing.T) {
	p := fullProfile()
	p.Location = Location{Country: "Iceland"}
	got, ok := p.QuickFillValue(classify.CategoryLocation)
	require.True(t, ok)
	assert.Equal(t, "Iceland", got)
}

func TestAnswerFor_Lookup(t *testing.T) {
	p := fullProfile()

	tests := []struct {
		name  string
		label string
		want  string
		found bool
	}{
		{"exact key", "notice period", "Two weeks", true},
		{"label contains key", "What is your notice period?", "Two weeks", true},
		{"key contains label", "why do you want to work", "I admire the team's engineering culture.", true},
		{"case insensitive", "NOTICE PERIOD", "Two weeks", true},
		{"whitespace collapsed", "  notice   period  ", "Two weeks", true},
		{"no match", "favorite color", "", false},
		{"empty label", "   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := p.AnswerFor(tt.label)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestAnswerFor_LongestKeyWins(t *testing.T) {
	p := &Profile{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		AnswerBank: map[string]string{
			"salary":              "$180,000",
			"salary expectations": "$180,000 to $200,000 depending on equity",
		},
	}
	got, found := p.AnswerFor("What are your salary expectations for this role?")
	require.True(t, found)
	assert.Equal(t, "$180,000 to $200,000 depending on equity", got)
}

func TestAnswerFor_EmptyBank(t *testing.T) {
	p := &Profile{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	_, found := p.AnswerFor("notice period")
	assert.False(t, found)
}

func TestValuesFor(t *testing.T) {
	p := fullProfile()

	vals, ok := p.ValuesFor(classify.CategoryEmail, "Email address")
	require.True(t, ok)
	assert.Equal(t, []string{"ada@example.com"}, vals)

	vals, ok = p.ValuesFor(classify.CategoryCustomQuestion, "What is your notice period?")
	require.True(t, ok)
	assert.Equal(t, []string{"Two weeks"}, vals)

	_, ok = p.ValuesFor(classify.CategoryCustomQuestion, "favorite color")
	assert.False(t, ok)

	_, ok = p.ValuesFor(classify.CategoryUnknown, "mystery")
	assert.False(t, ok)
}

func TestParse_SchemaRejectsUnknownKeys(t *testing.T) {
	doc := `{
		"first_name": "Ada",
		"last_name": "Lovelace",
		"email": "ada@example.com",
		"linkedin": "https://linkedin.com/in/ada"
	}`
	_, err := Parse([]byte(doc))
	require.Error(t, err, "top-level linkedin belongs under links")
	assert.Contains(t, err.Error(), "schema")
}

func TestParse_ValidDocument(t *testing.T) {
	doc := `{
		"first_name": "Ada",
		"last_name": "Lovelace",
		"email": "ada@example.com",
		"location": {"city": "London", "country": "United Kingdom"},
		"answer_bank": {"notice period": "Two weeks"}
	}`
	p, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", p.DisplayName())
	assert.Equal(t, "London", p.Location.City)

	got, found := p.AnswerFor("notice period")
	require.True(t, found)
	assert.Equal(t, "Two weeks", got)
}

func TestLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.json")
	doc := `{
		"first_name": "Ada",
		"last_name": "Lovelace",
		"email": "ada@example.com",
		"years_of_experience": 7
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, p.YearsOfExperience)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read profile")
}
