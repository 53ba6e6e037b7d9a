package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talentmatch/backend/internal/config"
	"github.com/talentmatch/backend/internal/db"
	"github.com/talentmatch/backend/internal/inbox"
	"github.com/talentmatch/backend/internal/ledger"
	"github.com/talentmatch/backend/internal/logger"
	"github.com/talentmatch/backend/internal/server"
)

var (
	servePort     int
	serveJSONLogs bool
	serveDebug    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the TalentMatch REST endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveJSONLogs, "json-logs", true, "Emit logs as JSON")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.NewServer()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	pwCfg, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(serveJSONLogs, serveDebug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	if err := store.Bootstrap(ctx); err != nil {
		return fmt.Errorf("failed to bootstrap schema: %w", err)
	}

	inboxSvc := inbox.New(store, log)
	apps := ledger.New(store, inboxSvc, log)
	srv := server.New(store, apps, inboxSvc, server.NewJWTService(jwtCfg), pwCfg, log)

	return srv.ListenAndServe(ctx, cfg.Port)
}
