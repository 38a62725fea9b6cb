// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/formscout/formscout/internal/jobdesc"
	"github.com/formscout/formscout/internal/pipeline"
	"github.com/formscout/formscout/internal/scan"
)

// boxWidth is the default width for formatted output boxes
const boxWidth = 60

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintFields outputs the detected field list of one scan generation.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFields(generation uint64, fields []scan.Summary) {
	if len(fields) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO FILLABLE FIELDS DETECTED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Detected %d fields:\n\n", len(fields)))

	for i, f := range fields {
		sb.WriteString(fmt.Sprintf("#%-3d %-14s %s\n", f.Index, f.Kind, f.Category))

		desc := f.Label
		if desc == "" {
			desc = f.Placeholder
		}
		if desc != "" {
			if len(desc) > 45 {
				desc = desc[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("     %s\n", desc))
		}

		var marks []string
		if f.Required {
			marks = append(marks, "required")
		}
		if f.HasValue {
			marks = append(marks, "has value")
		}
		if f.Confidence > 0 {
			marks = append(marks, fmt.Sprintf("%.0f%%", f.Confidence*100))
		}
		if len(marks) > 0 {
			sb.WriteString(fmt.Sprintf("     [%s]\n", strings.Join(marks, " ")))
		}

		if len(f.Options) > 0 {
			count := min(len(f.Options), 3)
			labels := make([]string, 0, count)
			for _, o := range f.Options[:count] {
				labels = append(labels, o.Label)
			}
			opts := strings.Join(labels, ", ")
			if len(opts) > 40 {
				opts = opts[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("     options: %s", opts))
			if len(f.Options) > 3 {
				sb.WriteString(fmt.Sprintf(" ... and %d more", len(f.Options)-3))
			}
			sb.WriteString("\n")
		}

		if i < len(fields)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("DETECTED FIELDS (generation %d)", generation),
		strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFillResults outputs per-field fill acknowledgements.
func (p *Printer) PrintFillResults(results []pipeline.FillOutcome) {
	if len(results) == 0 {
		return
	}

	filled := 0
	for _, r := range results {
		if r.Filled {
			filled++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Filled %d of %d fields:\n\n", filled, len(results)))

	for i, r := range results {
		label := r.Label
		if label == "" {
			label = fmt.Sprintf("field #%d", r.Index)
		}
		if len(label) > 40 {
			label = label[:37] + "..."
		}

		if r.Filled {
			value := r.Value
			if len(value) > 40 {
				value = value[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("✓ %s\n", label))
			sb.WriteString(fmt.Sprintf("  %s\n", value))
		} else {
			sb.WriteString(fmt.Sprintf("✗ %s\n", label))
			if r.Reason != "" {
				sb.WriteString(fmt.Sprintf("  (%s)\n", r.Reason))
			}
		}
		if i < len(results)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("FILL RESULTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobDescription outputs a summary of an extracted job posting.
func (p *Printer) PrintJobDescription(ext *jobdesc.Extraction) {
	if ext == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Platform: %s\n", ext.Platform))
	sb.WriteString(fmt.Sprintf("Source:   %s\n", ext.Source))
	if ext.Selector != "" {
		sel := ext.Selector
		if len(sel) > 45 {
			sel = sel[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("Selector: %s\n", sel))
	}
	sb.WriteString(fmt.Sprintf("Length:   %d chars\n", len(ext.Text)))

	snippet := strings.TrimSpace(ext.Text)
	if snippet != "" {
		if len(snippet) > 150 {
			snippet = snippet[:147] + "..."
		}
		sb.WriteString("\n")
		for _, line := range strings.Split(snippet, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	p.printBox("JOB DESCRIPTION", strings.TrimSuffix(sb.String(), "\n"))
}
