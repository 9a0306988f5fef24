package logger

import (
	"github.com/sirupsen/logrus"
)

// AnalysisLogger provides structured logging for value-bet analysis runs.
type AnalysisLogger struct {
	logger *logrus.Logger
}

// NewAnalysisLogger creates a new analysis logger
func NewAnalysisLogger(logger *logrus.Logger) *AnalysisLogger {
	return &AnalysisLogger{logger: logger}
}

// LogAnalysisRun logs one completed analysis for a race and market.
func (l *AnalysisLogger) LogAnalysisRun(raceName, market string, combinationsEvaluated, valueBetsFound int, durationMs float64) {
	l.logger.WithFields(logrus.Fields{
		"component":              "analysis",
		"race_name":              raceName,
		"market":                 market,
		"combinations_evaluated": combinationsEvaluated,
		"value_bets_found":       valueBetsFound,
		"duration_ms":            durationMs,
	}).Info("Analysis run completed")
}

// LogSnapshotRefresh logs a snapshot refresh for a race.
func (l *AnalysisLogger) LogSnapshotRefresh(raceName string, runnerCount int, cached bool) {
	l.logger.WithFields(logrus.Fields{
		"component":    "snapshot",
		"race_name":    raceName,
		"runner_count": runnerCount,
		"cached":       cached,
	}).Info("Snapshot refreshed")
}

// LogValueBet logs one value bet surviving all filters.
func (l *AnalysisLogger) LogValueBet(raceName, market, key string, valuePercent string) {
	l.logger.WithFields(logrus.Fields{
		"component":     "analysis",
		"race_name":     raceName,
		"market":        market,
		"combination":   key,
		"value_percent": valuePercent,
	}).Info("Value bet found")
}
