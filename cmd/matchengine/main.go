// Package main provides the matchengine command line entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "matchengine",
	Short: "Vacancy/candidate matching and scoring engine",
	Long:  "matchengine scores how well a candidate fits a vacancy: it anonymizes both documents, extracts skills with an LLM, matches them semantically, checks compliance rules, and emits a versioned JSON report.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (YAML)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
