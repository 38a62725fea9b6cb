package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/formscout/formscout/internal/browser"
	"github.com/formscout/formscout/internal/config"
	"github.com/formscout/formscout/internal/fill"
	"github.com/formscout/formscout/internal/llm"
	"github.com/formscout/formscout/internal/observability"
	"github.com/formscout/formscout/internal/pipeline"
	"github.com/formscout/formscout/internal/profile"
	"github.com/formscout/formscout/internal/scan"
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Scan a form and fill it from an applicant profile",
	Long: `Scan a page, classify its fields, and fill every field the profile covers.

By default the fill runs against the scanned snapshot and reports per-field
outcomes without touching the live page; --apply drives a headless browser
and commits the values to the page itself.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runFill,
}

var (
	fillConfigPath string
	fillURL        string
	fillFile       string
	fillProfile    string
	fillAPIKey     string
	fillSmart      bool
	fillApply      bool
	fillDryRun     bool
	fillUseBrowser bool
	fillTimeout    int
	fillMaxNodes   int
	fillJSON       bool
	fillVerbose    bool
)

func init() {
	// Config file flag (processed first)
	fillCmd.Flags().StringVar(&fillConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	fillCmd.Flags().StringVarP(&fillURL, "url", "u", "", "URL of the form page (mutually exclusive with --file)")
	fillCmd.Flags().StringVarP(&fillFile, "file", "f", "", "Path to a local HTML file (mutually exclusive with --url)")
	fillCmd.Flags().StringVarP(&fillProfile, "profile", "p", "", "Path to applicant profile JSON")
	fillCmd.Flags().BoolVar(&fillSmart, "smart", false, "Generate answers for custom questions and cover letters with AI")
	fillCmd.Flags().BoolVar(&fillApply, "apply", false, "Commit values to the live page through a headless browser (requires Chrome)")
	fillCmd.Flags().BoolVar(&fillDryRun, "dry-run", false, "Resolve values and verify fill plans without writing anything")
	fillCmd.Flags().BoolVar(&fillUseBrowser, "use-browser", false, "Allow headless browser rendering for script-built pages (requires Chrome)")
	fillCmd.Flags().IntVar(&fillTimeout, "timeout", 0, "Browser operation timeout in seconds")
	fillCmd.Flags().IntVar(&fillMaxNodes, "max-nodes", 0, "Node budget for the page capture script")
	fillCmd.Flags().BoolVar(&fillJSON, "json", false, "Print per-field outcomes as JSON")
	fillCmd.Flags().BoolVarP(&fillVerbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	fillCmd.Flags().StringVar(&fillAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	rootCmd.AddCommand(fillCmd)
}

func runFill(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if fillConfigPath != "" {
		loadedCfg, err := config.LoadConfig(fillConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
		if fillVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", fillConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("profile") {
		cfg.ProfilePath = fillProfile
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = fillAPIKey
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = fillUseBrowser
	}
	if cmd.Flags().Changed("timeout") {
		cfg.TimeoutSecs = fillTimeout
	}
	if cmd.Flags().Changed("max-nodes") {
		cfg.MaxScanNodes = fillMaxNodes
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = fillVerbose
	}

	// Step 3: Validate required inputs
	src, err := resolveSource(fillURL, fillFile)
	if err != nil {
		return err
	}
	if fillApply && fillURL == "" {
		return fmt.Errorf("--apply drives a live browser and needs --url")
	}
	if cfg.ProfilePath == "" {
		return fmt.Errorf("a profile is required (via --profile or config)")
	}
	prof, err := profile.Load(cfg.ProfilePath)
	if err != nil {
		return err
	}

	// Step 4: API key handling (only needed for --smart)
	var composer *llm.Composer
	if fillSmart {
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv("GEMINI_API_KEY")
		}
		if cfg.APIKey == "" {
			return fmt.Errorf("--smart needs a GEMINI_API_KEY environment variable or --api-key flag")
		}
		client, err := llm.NewClient(ctx, nil, cfg.APIKey)
		if err != nil {
			return fmt.Errorf("failed to create AI client: %w", err)
		}
		defer client.Close()
		composer = llm.NewComposer(client)
	}

	// Step 5: Scan, statically or through a live browser session
	session := scan.NewSession()
	opts := pipeline.Options{
		UseBrowser: cfg.UseBrowser,
		Verbose:    cfg.Verbose,
		Browser:    browserOptions(cfg),
	}

	var bsess *browser.Session
	var outcome *pipeline.ScanOutcome
	if fillApply {
		bsess, err = browser.NewSession(ctx, opts.Browser)
		if err != nil {
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer bsess.Close()
		if err := bsess.Navigate(fillURL); err != nil {
			return fmt.Errorf("failed to load %s: %w", fillURL, err)
		}
		outcome, err = pipeline.ScanLive(session, bsess, opts)
	} else {
		outcome, err = pipeline.Scan(ctx, session, src, opts)
	}
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	// Step 6: Fill
	filler := &pipeline.Filler{
		Session:  session,
		Profile:  prof,
		Engine:   fill.New(cfg.Verbose),
		Composer: composer,
		DryRun:   fillDryRun,
		Verbose:  cfg.Verbose,
	}
	if outcome.JobDescription != nil {
		filler.JobDescription = outcome.JobDescription.Text
	}

	var outs []pipeline.FillOutcome
	switch {
	case fillApply:
		outs, err = filler.Live(ctx, bsess, outcome.Generation)
	case fillSmart:
		outs, err = filler.SmartFill(ctx, outcome.Generation)
	default:
		outs, err = filler.QuickFill(outcome.Generation)
	}
	if err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}

	if fillJSON {
		return printJSON(outs)
	}
	if fillDryRun {
		fmt.Fprintln(os.Stdout, "Dry run: nothing was written")
	}
	observability.NewPrinter(os.Stdout).PrintFillResults(outs)
	return nil
}
