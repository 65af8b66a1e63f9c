package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filebox/internal/config"
	"filebox/internal/logger"
	"filebox/internal/metrics"
	"filebox/internal/server"
	"filebox/internal/storage"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the file-storage façade API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("listen", ":8080", "Listen address")
	serveCmd.Flags().Duration("url-ttl", 15*time.Minute, "Lifetime of issued presigned URLs")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cmd.SilenceUsage = true

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	client, err := storage.NewMinIOClient(storage.Config{
		Endpoint:  cfg.Store.Endpoint,
		AccessKey: cfg.Store.AccessKey,
		SecretKey: cfg.Store.SecretKey,
		Bucket:    cfg.Store.Bucket,
		Secure:    cfg.Store.Secure,
	})
	if err != nil {
		return fmt.Errorf("failed to create store client: %w", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Received shutdown signal, gracefully stopping...")
		cancel()
	}()

	srv := server.New(cfg.Server, client, metrics.New(), log)
	return srv.Run(ctx)
}
