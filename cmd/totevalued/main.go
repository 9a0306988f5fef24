// Package main provides the entry point for the tote value daemon, which
// periodically refreshes race snapshots and serves health and metrics
// endpoints.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/tote-value/internal/config"
	"github.com/yourusername/tote-value/internal/database"
	"github.com/yourusername/tote-value/internal/datasource"
	"github.com/yourusername/tote-value/internal/health"
	"github.com/yourusername/tote-value/internal/logger"
	"github.com/yourusername/tote-value/internal/metrics"
	"github.com/yourusername/tote-value/internal/repository"
	"github.com/yourusername/tote-value/internal/scheduler"
	"github.com/yourusername/tote-value/internal/service"
)

// Build information - set via ldflags
var (
	Version = "dev"
)

var (
	configFile string
	log        *logrus.Logger
	cfg        *config.Config
	db         *database.DB
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:     "totevalued",
	Version: Version,
	Short:   "Tote value snapshot refresh daemon",
	Long:    `Runs the scheduled snapshot refresh pipeline, persists raw race snapshots and serves health and metrics endpoints.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	log = logger.NewLogger(cfg.App.LogLevel)
	return nil
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	source := datasource.NewToteAPISource(&cfg.ToteAPI, log)
	snapshotRepo := repository.NewPostgresSnapshotRepository(db)
	snapshots := service.NewSnapshotService(source, snapshotRepo, cfg.ToteAPI.CacheTTL(), log)

	refreshTimeout := time.Duration(cfg.Refresh.TimeoutSeconds) * time.Second
	sched := scheduler.NewScheduler(snapshots, source, cfg.Refresh.Races, refreshTimeout, log)
	if err := sched.ScheduleRefresh(cfg.Refresh.CronSchedule); err != nil {
		return err
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        cfg.Health.Port,
		Logger:      log,
		DB:          db,
	})
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Port)
	}

	sched.Start()
	healthServer.SetReady(true)
	log.WithFields(logrus.Fields{
		"schedule": cfg.Refresh.CronSchedule,
		"races":    len(cfg.Refresh.Races),
	}).Info("Tote value daemon started")

	// Block until interrupted
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.WithField("signal", sig.String()).Info("Shutting down")

	healthServer.SetReady(false)
	sched.Stop()
	cancel()
	return nil
}

func serveMetrics(port int) {
	metrics.InitRegistry()
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.WithField("port", port).Info("Metrics server starting")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Error("Metrics server error")
	}
}
