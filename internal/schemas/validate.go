// Package schemas bundles the JSON Schemas for formscout's on-disk artifacts
// and validates documents against them.
package schemas

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var bundled embed.FS

// Profile is the schema for applicant profile files.
const Profile = "profile.schema.json"

// FieldError is a single schema violation at one field path.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates every violation found in one document.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "document violates %s:\n", ve.Schema)
	for i, fe := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, fe.Field, fe.Message)
	}
	return sb.String()
}

// Names lists the bundled schema files.
func Names() []string {
	entries, err := bundled.ReadDir(".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// Source returns the raw bytes of a bundled schema.
func Source(name string) ([]byte, error) {
	raw, err := bundled.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}
	return raw, nil
}

// Validate checks a JSON document against a bundled schema. A nil return
// means the document conforms; schema violations come back as a
// *ValidationError listing every offending field.
func Validate(name string, document []byte) error {
	raw, err := Source(name)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(raw),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return fmt.Errorf("validating against %s: %w", name, err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{
		Schema: name,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}
