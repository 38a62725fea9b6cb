package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/formscout/formscout/internal/browser"
	"github.com/formscout/formscout/internal/config"
	"github.com/formscout/formscout/internal/observability"
	"github.com/formscout/formscout/internal/pipeline"
	"github.com/formscout/formscout/internal/scan"
	"github.com/formscout/formscout/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a live page and rescan when its form changes",
	Long: `Open a page in a headless browser and keep the field list current: form
mutations are debounced and each quiet period triggers a rescan whose fields
are printed. Runs until interrupted.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runWatch,
}

var (
	watchConfigPath string
	watchURL        string
	watchDebounce   int
	watchTimeout    int
	watchMaxNodes   int
	watchVerbose    bool
)

func init() {
	watchCmd.Flags().StringVar(&watchConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	watchCmd.Flags().StringVarP(&watchURL, "url", "u", "", "URL of the page to watch (required)")
	watchCmd.Flags().IntVar(&watchDebounce, "debounce", 0, "Quiet period in milliseconds before a mutation burst triggers a rescan")
	watchCmd.Flags().IntVar(&watchTimeout, "timeout", 0, "Browser operation timeout in seconds")
	watchCmd.Flags().IntVar(&watchMaxNodes, "max-nodes", 0, "Node budget for the page capture script")
	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "Print detailed debug information")

	watchCmd.MarkFlagRequired("url")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	// Step 1: Load config file if provided
	var cfg config.Config
	if watchConfigPath != "" {
		loadedCfg, err := config.LoadConfig(watchConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	if cmd.Flags().Changed("debounce") {
		cfg.DebounceMs = watchDebounce
	}
	if cmd.Flags().Changed("timeout") {
		cfg.TimeoutSecs = watchTimeout
	}
	if cmd.Flags().Changed("max-nodes") {
		cfg.MaxScanNodes = watchMaxNodes
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = watchVerbose
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bsess, err := browser.NewSession(ctx, browserOptions(cfg))
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer bsess.Close()
	if err := bsess.Navigate(watchURL); err != nil {
		return fmt.Errorf("failed to load %s: %w", watchURL, err)
	}

	session := scan.NewSession()
	printer := observability.NewPrinter(os.Stdout)
	opts := pipeline.Options{Verbose: cfg.Verbose, Browser: browserOptions(cfg)}

	outcome, err := pipeline.ScanLive(session, bsess, opts)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	printer.PrintFields(outcome.Generation, outcome.Fields)

	// The rescan callback fires on the watcher's timer goroutine; the scan
	// session locks internally and the printer writes whole blocks.
	watcher := watch.New(watch.Config{
		Delay:   time.Duration(cfg.DebounceMs) * time.Millisecond,
		Verbose: cfg.Verbose,
	}, func() {
		out, rescanErr := pipeline.ScanLive(session, bsess, opts)
		if rescanErr != nil {
			fmt.Fprintf(os.Stderr, "rescan failed: %v\n", rescanErr)
			return
		}
		printer.PrintFields(out.Generation, out.Fields)
	})
	defer watcher.Stop()

	fmt.Fprintf(os.Stdout, "Watching %s for form changes (Ctrl+C to stop)\n", watchURL)
	err = bsess.Watch(ctx, watcher, 0)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stdout, "Stopped.")
		return nil
	}
	return err
}
