// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "ApplicantProfile")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", ["string"], {"key": "value"}
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "\"string\""
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Omit optional fields the text says nothing about.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// ProfileSchema returns the extraction schema for bootstrapping an applicant
// profile from free-form text (a pasted resume, a bio, an old application).
// The output is meant to be fed through the profile schema validator before
// anything trusts it.
func ProfileSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "ApplicantProfile",
		Description: `You are an expert resume parser. COPY FACTS VERBATIM - do not paraphrase or embellish.
Your task is to extract an applicant's contact details and application basics from raw text.
IMPORTANT: Only extract what the text actually states. Leave out anything not present.`,
		Fields: []SchemaField{
			{
				Name:        "first_name",
				Description: "Applicant's given name",
				Required:    true,
			},
			{
				Name:        "last_name",
				Description: "Applicant's family name",
				Required:    true,
			},
			{
				Name:        "email",
				Description: "Email address exactly as written",
				Required:    true,
			},
			{
				Name:        "phone",
				Description: "Phone number exactly as written",
			},
			{
				Name:        "location",
				Type:        `{"city": "string", "state": "string", "zip": "string", "country": "string"}`,
				Description: "Home location parts, only those stated",
			},
			{
				Name:        "links",
				Type:        `{"linkedin": "string", "github": "string", "portfolio": "string"}`,
				Description: "Public profile URLs, only those stated",
			},
			{
				Name:        "years_of_experience",
				Type:        "integer",
				Description: "Total years of professional experience if stated",
			},
			{
				Name:        "notes",
				Description: "One-paragraph factual summary of the applicant's background, roles, and specialties",
			},
		},
	}
}
