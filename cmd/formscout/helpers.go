package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/formscout/formscout/internal/browser"
	"github.com/formscout/formscout/internal/config"
	"github.com/formscout/formscout/internal/pipeline"
)

// resolveSource validates the shared --url/--file flag pair and builds the
// scan source from it.
func resolveSource(url, file string) (pipeline.Source, error) {
	if url == "" && file == "" {
		return pipeline.Source{}, fmt.Errorf("either --url or --file must be provided")
	}
	if url != "" && file != "" {
		return pipeline.Source{}, fmt.Errorf("--url and --file are mutually exclusive; provide only one")
	}
	return pipeline.Source{URL: url, FilePath: file}, nil
}

// browserOptions maps config values onto browser session options. Zero
// values fall through to the session defaults.
func browserOptions(cfg config.Config) browser.Options {
	return browser.Options{
		Timeout:  time.Duration(cfg.TimeoutSecs) * time.Second,
		MaxNodes: cfg.MaxScanNodes,
		Verbose:  cfg.Verbose,
	}
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
