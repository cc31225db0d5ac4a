package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recruitech/matchengine/internal/config"
	"github.com/recruitech/matchengine/internal/ingestion"
	"github.com/recruitech/matchengine/internal/logger"
)

var (
	matchRequestPath   string
	matchVacancyPath   string
	matchCandidatePath string
	matchOutputPath    string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score one (vacancy, candidate) pair and print the report",
	Long: `Run the full matching pipeline once and write the JSON report to stdout.

The request is read either from a single file with --request, or assembled
from separate vacancy and candidate files with --vacancy and --candidate.`,
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringVarP(&matchRequestPath, "request", "r", "", "Path to a JSON file holding the full match request")
	matchCmd.Flags().StringVar(&matchVacancyPath, "vacancy", "", "Path to a JSON file holding the vacancy document")
	matchCmd.Flags().StringVar(&matchCandidatePath, "candidate", "", "Path to a JSON file holding the candidate document")
	matchCmd.Flags().StringVarP(&matchOutputPath, "output", "o", "", "Write the report to this file instead of stdout")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	req, err := loadRequest()
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.JSONLog, cfg.Debug)
	if err != nil {
		return err
	}

	eng, err := buildEngine(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer eng.close()

	doc, err := eng.pipeline.Run(context.Background(), req)
	if err != nil {
		return err
	}

	if matchOutputPath != "" {
		if err := os.WriteFile(matchOutputPath, doc, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	}

	fmt.Println(string(doc))
	return nil
}

func loadRequest() (*ingestion.MatchRequest, error) {
	if matchRequestPath != "" {
		if matchVacancyPath != "" || matchCandidatePath != "" {
			return nil, fmt.Errorf("--request is mutually exclusive with --vacancy/--candidate")
		}
		var req ingestion.MatchRequest
		if err := readJSONFile(matchRequestPath, &req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	if matchVacancyPath == "" || matchCandidatePath == "" {
		return nil, fmt.Errorf("either --request, or both --vacancy and --candidate, are required")
	}

	var req ingestion.MatchRequest
	if err := readJSONFile(matchVacancyPath, &req.Vacancy); err != nil {
		return nil, err
	}
	if err := readJSONFile(matchCandidatePath, &req.Candidate); err != nil {
		return nil, err
	}
	return &req, nil
}

func readJSONFile(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
