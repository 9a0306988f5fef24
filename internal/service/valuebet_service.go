package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/tote-value/internal/analysis"
	"github.com/yourusername/tote-value/internal/logger"
	"github.com/yourusername/tote-value/internal/models"
)

// RaceReport holds the ranked value bets for both combination markets of
// one race.
type RaceReport struct {
	RaceName     string                    `json:"race_name"`
	ExactaBets   []models.ExactaValueBet   `json:"exacta_bets"`
	TrifectaBets []models.TrifectaValueBet `json:"trifecta_bets"`
	GeneratedAt  time.Time                 `json:"generated_at"`
}

// ValueBetService combines snapshot acquisition with the analysis engine
// to produce per-race value-bet reports.
type ValueBetService struct {
	snapshots      *SnapshotService
	analyzer       *analysis.Analyzer
	settings       models.ValueBetSettings
	analysisLogger *logger.AnalysisLogger
}

// NewValueBetService creates a value-bet service.
func NewValueBetService(
	snapshots *SnapshotService,
	analyzer *analysis.Analyzer,
	settings models.ValueBetSettings,
	log *logrus.Logger,
) *ValueBetService {
	return &ValueBetService{
		snapshots:      snapshots,
		analyzer:       analyzer,
		settings:       settings,
		analysisLogger: logger.NewAnalysisLogger(log),
	}
}

// AnalyzeRace fetches the snapshot for a race and returns its top value
// bets for both combination markets.
func (v *ValueBetService) AnalyzeRace(ctx context.Context, raceName string) (*RaceReport, error) {
	snapshot, err := v.snapshots.GetSnapshot(ctx, raceName)
	if err != nil {
		return nil, err
	}
	return v.analyzeSnapshot(snapshot)
}

// AnalyzeRaces analyzes every named race, skipping races whose snapshots
// cannot be fetched.
func (v *ValueBetService) AnalyzeRaces(ctx context.Context, raceNames []string) []*RaceReport {
	reports := make([]*RaceReport, 0, len(raceNames))
	for _, raceName := range raceNames {
		report, err := v.AnalyzeRace(ctx, raceName)
		if err != nil {
			continue
		}
		reports = append(reports, report)
	}
	return reports
}

func (v *ValueBetService) analyzeSnapshot(snapshot *models.RaceSnapshot) (*RaceReport, error) {
	start := time.Now()

	exacta, err := v.analyzer.TopExactaBets(snapshot, v.settings)
	if err != nil {
		return nil, err
	}
	trifecta, err := v.analyzer.TopTrifectaBets(snapshot, v.settings)
	if err != nil {
		return nil, err
	}

	combinations := len(snapshot.ExactaOdds) + len(snapshot.TrifectaOdds)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	v.analysisLogger.LogAnalysisRun(snapshot.RaceName, "exacta+trifecta", combinations, len(exacta)+len(trifecta), elapsed)

	for i := range exacta {
		v.analysisLogger.LogValueBet(snapshot.RaceName, analysis.MarketExacta, exacta[i].Key(), exacta[i].ValuePercent.StringFixed(2))
	}
	for i := range trifecta {
		v.analysisLogger.LogValueBet(snapshot.RaceName, analysis.MarketTrifecta, trifecta[i].Key(), trifecta[i].ValuePercent.StringFixed(2))
	}

	return &RaceReport{
		RaceName:     snapshot.RaceName,
		ExactaBets:   exacta,
		TrifectaBets: trifecta,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}
