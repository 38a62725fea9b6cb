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

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the job description from a posting page",
	Long:  "Extract the job description text from a URL or a local HTML file using platform-specific selectors, with a scored content heuristic as fallback.",
	RunE:  runExtract,
}

var (
	extractURL        string
	extractFile       string
	extractUseBrowser bool
	extractForce      bool
	extractJSON       bool
	extractVerbose    bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractURL, "url", "u", "", "URL of the posting page (mutually exclusive with --file)")
	extractCmd.Flags().StringVarP(&extractFile, "file", "f", "", "Path to a local HTML file (mutually exclusive with --url)")
	extractCmd.Flags().BoolVar(&extractUseBrowser, "use-browser", false, "Allow headless browser rendering for script-built pages (requires Chrome)")
	extractCmd.Flags().BoolVar(&extractForce, "force", false, "Run the scored heuristic even when platform selectors find nothing")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "Print the extraction as JSON")
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(_ *cobra.Command, _ []string) error {
	src, err := resolveSource(extractURL, extractFile)
	if err != nil {
		return err
	}

	session := scan.NewSession()
	outcome, err := pipeline.Scan(context.Background(), session, src, pipeline.Options{
		UseBrowser:   extractUseBrowser,
		ForceExtract: extractForce,
		Verbose:      extractVerbose,
		Browser:      browser.Options{Verbose: extractVerbose},
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	if outcome.JobDescription == nil {
		return fmt.Errorf("no job description found; --force widens the search to scored content blocks")
	}

	if extractJSON {
		return printJSON(outcome.JobDescription)
	}

	observability.NewPrinter(os.Stdout).PrintJobDescription(outcome.JobDescription)
	fmt.Fprintln(os.Stdout)
	fmt.Fprintln(os.Stdout, outcome.JobDescription.Text)
	return nil
}
