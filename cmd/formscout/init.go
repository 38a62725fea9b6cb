package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/formscout/formscout/internal/llm"
	"github.com/formscout/formscout/internal/profile"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Draft an applicant profile from free-form text with AI",
	Long:  "Read a resume or bio as plain text, extract an applicant profile from it with AI, validate the result against the profile schema, and write it as JSON.",
	RunE:  runInit,
}

var (
	initFrom   string
	initOut    string
	initAPIKey string
)

func init() {
	initCmd.Flags().StringVar(&initFrom, "from", "", "Path to a plain-text resume or bio (required)")
	initCmd.Flags().StringVarP(&initOut, "out", "o", "", "Path for the profile JSON (required)")
	initCmd.Flags().StringVar(&initAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	initCmd.MarkFlagRequired("from")
	initCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	text, err := os.ReadFile(initFrom)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", initFrom, err)
	}

	apiKey := initAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	client, err := llm.NewClient(ctx, nil, apiKey)
	if err != nil {
		return fmt.Errorf("failed to create AI client: %w", err)
	}
	defer client.Close()

	draft, err := llm.NewComposer(client).DraftProfile(ctx, string(text))
	if err != nil {
		return err
	}

	// The draft only gets written once it passes the same schema Load enforces
	if _, err := profile.Parse(draft); err != nil {
		return fmt.Errorf("drafted profile failed validation: %w", err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, draft, "", "  "); err == nil {
		draft = append(buf.Bytes(), '\n')
	}
	if err := os.WriteFile(initOut, draft, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", initOut, err)
	}

	fmt.Fprintf(os.Stdout, "Profile written to %s\n", initOut)
	fmt.Fprintf(os.Stdout, "Review it before filling; extraction is only as good as the source text.\n")
	return nil
}
