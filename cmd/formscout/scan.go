package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/formscout/formscout/internal/browser"
	"github.com/formscout/formscout/internal/observability"
	"github.com/formscout/formscout/internal/pipeline"
	"github.com/formscout/formscout/internal/scan"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a page and list its fillable form fields",
	Long:  "Scan a page from a URL or a local HTML file, resolve field labels, classify each field, and print the detected fields.",
	RunE:  runScan,
}

var (
	scanURL        string
	scanFile       string
	scanUseBrowser bool
	scanJSON       bool
	scanVerbose    bool
)

func init() {
	scanCmd.Flags().StringVarP(&scanURL, "url", "u", "", "URL of the page to scan (mutually exclusive with --file)")
	scanCmd.Flags().StringVarP(&scanFile, "file", "f", "", "Path to a local HTML file (mutually exclusive with --url)")
	scanCmd.Flags().BoolVar(&scanUseBrowser, "use-browser", false, "Allow headless browser rendering for script-built pages (requires Chrome)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Print the scan result as JSON")
	scanCmd.Flags().BoolVarP(&scanVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(scanCmd)
}

func runScan(_ *cobra.Command, _ []string) error {
	src, err := resolveSource(scanURL, scanFile)
	if err != nil {
		return err
	}

	session := scan.NewSession()
	outcome, err := pipeline.Scan(context.Background(), session, src, pipeline.Options{
		UseBrowser: scanUseBrowser,
		Verbose:    scanVerbose,
		Browser:    browser.Options{Verbose: scanVerbose},
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if scanJSON {
		return printJSON(outcome)
	}

	observability.NewPrinter(os.Stdout).PrintFields(outcome.Generation, outcome.Fields)
	if outcome.JobDescription != nil {
		fmt.Fprintf(os.Stdout, "Job description detected: %d chars via %s (see the extract command)\n",
			len(outcome.JobDescription.Text), outcome.JobDescription.Source)
	}
	return nil
}
