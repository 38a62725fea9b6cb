package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/formscout/formscout/internal/config"
	"github.com/formscout/formscout/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes scan, fill, and quick-fill endpoints plus
a server-sent event stream of scan progress.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runServe,
}

var (
	serveConfigPath string
	servePort       int
	serveProfile    string
	serveAPIKey     string
	serveUseBrowser bool
	serveVerbose    bool
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVarP(&serveProfile, "profile", "p", "", "Path to applicant profile JSON")
	serveCmd.Flags().StringVar(&serveAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	serveCmd.Flags().BoolVar(&serveUseBrowser, "use-browser", false, "Allow headless browser rendering for script-built pages (requires Chrome)")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Step 1: Load config file if provided
	var cfg config.Config
	if serveConfigPath != "" {
		loadedCfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("profile") {
		cfg.ProfilePath = serveProfile
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = serveAPIKey
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = serveUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = serveVerbose
	}

	// Step 3: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.Config{Port: 8080})

	// Step 4: API key from environment when not set elsewhere. The server
	// runs without one; smart fills are just unavailable.
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		ProfilePath: cfg.ProfilePath,
		APIKey:      cfg.APIKey,
		UseBrowser:  cfg.UseBrowser,
		Verbose:     cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
