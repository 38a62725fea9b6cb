// Package llm - answers.go turns field contexts into generated application
// text.
package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/formscout/formscout/internal/prompts"
)

// DefaultAnswerMaxChars bounds generated answers when the form imposes no
// maxlength of its own.
const DefaultAnswerMaxChars = 900

// QuestionContext carries what the generator needs for one open-ended
// application question.
type QuestionContext struct {
	Label          string
	JobDescription string
	Notes          string
	MaxChars       int
}

// CoverLetterContext carries what the generator needs for a cover letter.
type CoverLetterContext struct {
	ApplicantName  string
	JobDescription string
	Notes          string
}

// Composer produces application text through an LLM client.
type Composer struct {
	client Client
}

// NewComposer wraps a client.
func NewComposer(client Client) *Composer {
	return &Composer{client: client}
}

// AnswerQuestion drafts a first-person answer to one application question.
func (c *Composer) AnswerQuestion(ctx context.Context, qc QuestionContext) (string, error) {
	if strings.TrimSpace(qc.Label) == "" {
		return "", fmt.Errorf("question label is empty")
	}
	max := qc.MaxChars
	if max <= 0 {
		max = DefaultAnswerMaxChars
	}

	prompt, err := prompts.Render(prompts.AnswersFile, "application-question", map[string]string{
		"Label":          qc.Label,
		"JobDescription": orNotProvided(qc.JobDescription),
		"Notes":          orNotProvided(qc.Notes),
		"MaxChars":       strconv.Itoa(max),
	})
	if err != nil {
		return "", err
	}

	out, err := c.client.GenerateContent(ctx, prompt, TierStandard)
	if err != nil {
		return "", fmt.Errorf("failed to answer %q: %w", qc.Label, err)
	}
	answer := strings.TrimSpace(out)
	if answer == "" {
		return "", fmt.Errorf("empty answer for %q", qc.Label)
	}
	return Shorten(answer, max), nil
}

// CoverLetter drafts a cover letter body.
func (c *Composer) CoverLetter(ctx context.Context, cc CoverLetterContext) (string, error) {
	name := cc.ApplicantName
	if name == "" {
		name = "the applicant"
	}

	prompt, err := prompts.Render(prompts.AnswersFile, "cover-letter", map[string]string{
		"ApplicantName":  name,
		"JobDescription": orNotProvided(cc.JobDescription),
		"Notes":          orNotProvided(cc.Notes),
	})
	if err != nil {
		return "", err
	}

	out, err := c.client.GenerateContent(ctx, prompt, TierAdvanced)
	if err != nil {
		return "", fmt.Errorf("failed to compose cover letter: %w", err)
	}
	letter := strings.TrimSpace(out)
	if letter == "" {
		return "", fmt.Errorf("empty cover letter")
	}
	return letter, nil
}

// DraftProfile extracts applicant profile JSON from free-form text (a pasted
// resume, a bio). The result still has to pass the profile schema before
// anything trusts it.
func (c *Composer) DraftProfile(ctx context.Context, freeText string) ([]byte, error) {
	if strings.TrimSpace(freeText) == "" {
		return nil, fmt.Errorf("no source text to extract a profile from")
	}

	prompt := BuildExtractionPrompt(ProfileSchema(), freeText)
	out, err := c.client.GenerateJSON(ctx, prompt, TierStandard)
	if err != nil {
		return nil, fmt.Errorf("failed to draft profile: %w", err)
	}
	return []byte(CleanJSONBlock(out)), nil
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not provided)"
	}
	return s
}
