// Package main provides the one-shot value-bet analysis CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/tote-value/internal/analysis"
	"github.com/yourusername/tote-value/internal/config"
	"github.com/yourusername/tote-value/internal/datasource"
	"github.com/yourusername/tote-value/internal/logger"
	"github.com/yourusername/tote-value/internal/models"
	"github.com/yourusername/tote-value/internal/service"
)

// Build information - set via ldflags
var (
	Version = "dev"
)

var (
	configFile string
	raceName   string
	market     string
	showAll    bool
	gated      bool
	log        *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&raceName, "race", "r", "", "Race name, e.g. \"FLEMINGTON RACE 4\"")
	rootCmd.Flags().StringVarP(&market, "market", "m", "both", "Market to analyse: exacta, trifecta or both")
	rootCmd.Flags().BoolVar(&showAll, "all", false, "Show every combination instead of only the top value bets")
	rootCmd.Flags().BoolVar(&gated, "gated", false, "Apply pool and dilution gates to the --all view")
	rootCmd.MarkFlagRequired("race")
}

var rootCmd = &cobra.Command{
	Use:     "analyze",
	Version: Version,
	Short:   "Analyse a race's tote pools for value bets",
	Long:    `Fetches the current odds snapshot for a race and ranks exacta and trifecta combinations whose tote odds beat the fair-odds estimate.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalysis()
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
	cfg, err = config.LoadWithDefaults(configFile)
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

func runAnalysis() error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ToteAPI.Timeout()+10*time.Second)
	defer cancel()

	source := datasource.NewToteAPISource(&cfg.ToteAPI, log)
	snapshots := service.NewSnapshotService(source, nil, cfg.ToteAPI.CacheTTL(), log)
	analyzer := analysis.NewAnalyzer(log)
	settings := cfg.ValueBets.Settings()

	snapshot, err := snapshots.GetSnapshot(ctx, raceName)
	if err != nil {
		return err
	}

	if market == "exacta" || market == "both" {
		records, err := exactaRecords(analyzer, snapshot, settings)
		if err != nil {
			return err
		}
		printExacta(records)
	}
	if market == "trifecta" || market == "both" {
		records, err := trifectaRecords(analyzer, snapshot, settings)
		if err != nil {
			return err
		}
		printTrifecta(records)
	}
	return nil
}

func exactaRecords(analyzer *analysis.Analyzer, snapshot *models.RaceSnapshot, settings models.ValueBetSettings) ([]models.ExactaValueBet, error) {
	if !showAll {
		return analyzer.TopExactaBets(snapshot, settings)
	}
	if gated {
		return analyzer.AllExactaCalculationsGated(snapshot, settings)
	}
	return analyzer.AllExactaCalculationsUnfiltered(snapshot, settings)
}

func trifectaRecords(analyzer *analysis.Analyzer, snapshot *models.RaceSnapshot, settings models.ValueBetSettings) ([]models.TrifectaValueBet, error) {
	if !showAll {
		return analyzer.TopTrifectaBets(snapshot, settings)
	}
	if gated {
		return analyzer.AllTrifectaCalculationsGated(snapshot, settings)
	}
	return analyzer.AllTrifectaCalculationsUnfiltered(snapshot, settings)
}

func printExacta(records []models.ExactaValueBet) {
	fmt.Printf("EXACTA (%d combinations)\n", len(records))
	if len(records) == 0 {
		fmt.Println("  no value bets found above threshold")
		return
	}
	for _, r := range records {
		fmt.Printf("  %-8s %-40s tote %8s  fair %8s  value %7s%%  eff %8s\n",
			r.Key(), r.Display(),
			r.ToteOdds.StringFixed(2), r.FairOdds.StringFixed(2),
			r.ValuePercent.StringFixed(1), r.EffectiveOdds.StringFixed(2))
	}
}

func printTrifecta(records []models.TrifectaValueBet) {
	fmt.Printf("TRIFECTA (%d combinations)\n", len(records))
	if len(records) == 0 {
		fmt.Println("  no value bets found above threshold")
		return
	}
	for _, r := range records {
		fmt.Printf("  %-10s %-56s tote %8s  fair %8s  value %7s%%  eff %8s\n",
			r.Key(), r.Display(),
			r.ToteOdds.StringFixed(2), r.FairOdds.StringFixed(2),
			r.ValuePercent.StringFixed(1), r.EffectiveOdds.StringFixed(2))
	}
}
