package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/formscout/formscout/internal/classify"
	"github.com/formscout/formscout/internal/jobdesc"
	"github.com/formscout/formscout/internal/match"
	"github.com/formscout/formscout/internal/pipeline"
	"github.com/formscout/formscout/internal/scan"
)

func TestPrintFields(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	fields := []scan.Summary{
		{
			Index:      0,
			Kind:       scan.KindText,
			Category:   classify.CategoryEmail,
			Confidence: 0.9,
			Label:      "Email address",
			Required:   true,
		},
		{
			Index:    1,
			Kind:     scan.KindSelect,
			Category: classify.CategoryGender,
			Label:    "Gender",
			Options: []match.Option{
				{Value: "f", Label: "Female"},
				{Value: "m", Label: "Male"},
				{Value: "n", Label: "Non-binary"},
				{Value: "p", Label: "Prefer not to say"},
			},
		},
	}

	p.PrintFields(3, fields)
	output := buf.String()

	assert.Contains(t, output, "DETECTED FIELDS (generation 3)")
	assert.Contains(t, output, "Detected 2 fields")
	assert.Contains(t, output, "email")
	assert.Contains(t, output, "Email address")
	assert.Contains(t, output, "required")
	assert.Contains(t, output, "90%")
	assert.Contains(t, output, "Female, Male, Non-binary")
	assert.Contains(t, output, "and 1 more")
}

func TestPrintFields_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFields(1, nil)

	assert.Contains(t, buf.String(), "NO FILLABLE FIELDS DETECTED")
}

func TestPrintFillResults(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	results := []pipeline.FillOutcome{
		{Index: 0, Label: "Email address", Filled: true, Value: "ada@example.com"},
		{Index: 1, Label: "Resume", Filled: false, Reason: "file inputs need the live browser"},
	}

	p.PrintFillResults(results)
	output := buf.String()

	assert.Contains(t, output, "FILL RESULTS")
	assert.Contains(t, output, "Filled 1 of 2 fields")
	assert.Contains(t, output, "✓ Email address")
	assert.Contains(t, output, "ada@example.com")
	assert.Contains(t, output, "✗ Resume")
	assert.Contains(t, output, "file inputs need the live browser")
}

func TestPrintFillResults_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFillResults(nil)

	assert.Empty(t, buf.String())
}

func TestPrintJobDescription(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	ext := &jobdesc.Extraction{
		Platform: jobdesc.PlatformGreenhouse,
		Source:   jobdesc.SourcePlatform,
		Selector: "#content",
		Text:     "We are hiring a senior backend engineer to build form tooling.",
	}

	p.PrintJobDescription(ext)
	output := buf.String()

	assert.Contains(t, output, "JOB DESCRIPTION")
	assert.Contains(t, output, "greenhouse")
	assert.Contains(t, output, "platform")
	assert.Contains(t, output, "#content")
	assert.Contains(t, output, "We are hiring a senior backend")
}

func TestPrintJobDescription_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJobDescription(nil)

	assert.Empty(t, buf.String())
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	fields := []scan.Summary{
		{
			Index: 0,
			Kind:  scan.KindTextarea,
			Label: "Please describe a situation in which you had to balance several competing priorities at once",
		},
	}

	p.PrintFields(1, fields)
	output := buf.String()

	// Should contain box characters
	assert.True(t, strings.Contains(output, "┌"))
	assert.True(t, strings.Contains(output, "└"))
	assert.True(t, strings.Contains(output, "│"))
}
