package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/recruitech/matchengine/internal/config"
	"github.com/recruitech/matchengine/internal/logger"
	"github.com/recruitech/matchengine/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the match endpoint for scoring (vacancy, candidate) pairs.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.JSONLog, cfg.Debug)
	if err != nil {
		return err
	}

	eng, err := buildEngine(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer eng.close()

	srv := server.New(server.Config{Port: cfg.Server.Port}, eng.pipeline, log)
	return srv.Start()
}
