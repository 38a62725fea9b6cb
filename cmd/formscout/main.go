// Package main provides the formscout command-line interface.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "formscout",
	Short: "Form understanding and filling for job applications",
	Long:  "Formscout scans web forms, classifies what each field asks for, and fills them from an applicant profile, with optional AI-generated answers for free-text questions.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
