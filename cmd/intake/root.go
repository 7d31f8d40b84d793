package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "Intake is a schema-driven multi-step questionnaire engine",
	Long:  `Intake renders a multi-step questionnaire from a declarative schema, tracks answers with conditional visibility, persists progress locally, and drives a single rate-limit-aware submission.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("schema", "schema.json", "Path to the questionnaire schema (JSON or YAML)")
	rootCmd.PersistentFlags().String("tag", "intake", "Form tag (storage namespace and submission header)")
}
