package main

import (
	"fmt"
	"path/filepath"

	"filebox/internal/config"
	"filebox/internal/logger"
	"filebox/internal/metrics"
	"filebox/internal/storage"
	"filebox/internal/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror a local directory tree into the object store",
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().String("dir", "", "Local directory to mirror (required)")
	syncCmd.Flags().String("prefix", "", "Remote key prefix")
	syncCmd.Flags().Int("concurrency", 5, "Number of concurrent uploads")
	syncCmd.Flags().Bool("dry-run", false, "Log intended uploads without transferring")
	syncCmd.Flags().String("metrics-listen", "", "Expose /metrics on this address during the run")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateSync(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Config is valid; runtime failures from here on are not usage errors
	cmd.SilenceUsage = true

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	root, err := filepath.Abs(cfg.Sync.Dir)
	if err != nil {
		return fmt.Errorf("failed to resolve directory: %w", err)
	}

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

	entries, err := sync.Walk(root)
	if err != nil {
		return err
	}

	collector := metrics.New()
	if cfg.Sync.MetricsListen != "" {
		go func() {
			if err := collector.StartServer(cfg.Sync.MetricsListen); err != nil {
				log.Error("Failed to start metrics server", zap.Error(err))
			}
		}()
	}

	job := sync.Job{
		Root:        root,
		Prefix:      cfg.Sync.Prefix,
		Concurrency: cfg.Sync.Concurrency,
		DryRun:      cfg.Sync.DryRun,
	}

	log.Info("Starting sync",
		zap.String("dir", root),
		zap.String("prefix", job.Prefix),
		zap.Int("concurrency", job.Concurrency),
		zap.Bool("dry_run", job.DryRun),
		zap.Int("files", len(entries)),
	)

	uploader := sync.NewUploader(job, client, collector, log)
	results := uploader.Run(cmd.Context(), entries)

	summary := sync.Summarize(results)
	log.Info("Sync completed",
		zap.Int("uploaded", summary.Uploaded),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.String("bytes", sync.FormatBytes(summary.Bytes)),
	)

	return summary.Err()
}
