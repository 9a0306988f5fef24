// Package analysis turns race snapshots into ranked value-bet
// recommendations for exacta and trifecta tote markets.
package analysis

import (
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/tote-value/internal/metrics"
	"github.com/yourusername/tote-value/internal/models"
	"github.com/yourusername/tote-value/internal/pricing"
)

// Market labels used for logging and metrics.
const (
	MarketExacta   = "exacta"
	MarketTrifecta = "trifecta"
)

// Analyzer produces value-bet lists from immutable race snapshots. It holds
// no mutable state, so concurrent calls with different snapshots and
// settings are independent and safe.
type Analyzer struct {
	logger *logrus.Logger
}

// NewAnalyzer creates an analyzer. A nil logger discards log output.
func NewAnalyzer(logger *logrus.Logger) *Analyzer {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Analyzer{logger: logger}
}

// TopExactaBets returns the highest-value exacta combinations that clear
// the configured pool, dilution and value-threshold filters, sorted
// descending by value percent and truncated to the top-bet count.
// Data-quality problems shrink the result set; only invalid settings
// produce an error.
func (a *Analyzer) TopExactaBets(snapshot *models.RaceSnapshot, settings models.ValueBetSettings) ([]models.ExactaValueBet, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { metrics.RecordAnalysis(MarketExacta, time.Since(start).Seconds()) }()

	if snapshot == nil || !snapshot.HasValidData() {
		return nil, nil
	}

	pool := snapshot.ExactaPool.Net
	dilution, ok := a.passesPoolGates(MarketExacta, snapshot.RaceName, pool, settings)
	if !ok {
		return nil, nil
	}

	records := a.exactaRecords(snapshot, pool, dilution)
	records = filterExactaByThreshold(records, settings.ValueThresholdPercent)
	sortExactaByValue(records)
	records = truncateExacta(records, settings.TopBetCount)

	metrics.ValueBetsFoundTotal.WithLabelValues(MarketExacta).Add(float64(len(records)))
	a.logger.WithFields(logrus.Fields{
		"race":    snapshot.RaceName,
		"market":  MarketExacta,
		"results": len(records),
	}).Debug("Top value bets computed")
	return records, nil
}

// TopTrifectaBets mirrors TopExactaBets for the trifecta market.
func (a *Analyzer) TopTrifectaBets(snapshot *models.RaceSnapshot, settings models.ValueBetSettings) ([]models.TrifectaValueBet, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { metrics.RecordAnalysis(MarketTrifecta, time.Since(start).Seconds()) }()

	if snapshot == nil || !snapshot.HasValidData() {
		return nil, nil
	}

	pool := snapshot.TrifectaPool.Net
	dilution, ok := a.passesPoolGates(MarketTrifecta, snapshot.RaceName, pool, settings)
	if !ok {
		return nil, nil
	}

	records := a.trifectaRecords(snapshot, pool, dilution)
	records = filterTrifectaByThreshold(records, settings.ValueThresholdPercent)
	sortTrifectaByValue(records)
	records = truncateTrifecta(records, settings.TopBetCount)

	metrics.ValueBetsFoundTotal.WithLabelValues(MarketTrifecta).Add(float64(len(records)))
	a.logger.WithFields(logrus.Fields{
		"race":    snapshot.RaceName,
		"market":  MarketTrifecta,
		"results": len(records),
	}).Debug("Top value bets computed")
	return records, nil
}

// AllExactaCalculationsUnfiltered returns every exacta combination with a
// positive fair probability, sorted descending by value percent. Neither
// the pool/dilution gates nor the threshold and count filters apply; this
// is the exhaustive view for display and export.
func (a *Analyzer) AllExactaCalculationsUnfiltered(snapshot *models.RaceSnapshot, settings models.ValueBetSettings) ([]models.ExactaValueBet, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if snapshot == nil || !snapshot.HasValidData() {
		return nil, nil
	}

	pool := snapshot.ExactaPool.Net
	dilution := pricing.DilutionFactor(pool, settings.DefaultStake)
	records := a.exactaRecords(snapshot, pool, dilution)
	sortExactaByValue(records)
	return records, nil
}

// AllExactaCalculationsGated is the exhaustive exacta view with the
// minimum-pool and dilution gates applied. Threshold and count filters
// still do not apply.
func (a *Analyzer) AllExactaCalculationsGated(snapshot *models.RaceSnapshot, settings models.ValueBetSettings) ([]models.ExactaValueBet, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if snapshot == nil || !snapshot.HasValidData() {
		return nil, nil
	}

	pool := snapshot.ExactaPool.Net
	dilution, ok := a.passesPoolGates(MarketExacta, snapshot.RaceName, pool, settings)
	if !ok {
		return nil, nil
	}
	records := a.exactaRecords(snapshot, pool, dilution)
	sortExactaByValue(records)
	return records, nil
}

// AllTrifectaCalculationsUnfiltered mirrors AllExactaCalculationsUnfiltered
// for the trifecta market.
func (a *Analyzer) AllTrifectaCalculationsUnfiltered(snapshot *models.RaceSnapshot, settings models.ValueBetSettings) ([]models.TrifectaValueBet, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if snapshot == nil || !snapshot.HasValidData() {
		return nil, nil
	}

	pool := snapshot.TrifectaPool.Net
	dilution := pricing.DilutionFactor(pool, settings.DefaultStake)
	records := a.trifectaRecords(snapshot, pool, dilution)
	sortTrifectaByValue(records)
	return records, nil
}

// AllTrifectaCalculationsGated mirrors AllExactaCalculationsGated for the
// trifecta market.
func (a *Analyzer) AllTrifectaCalculationsGated(snapshot *models.RaceSnapshot, settings models.ValueBetSettings) ([]models.TrifectaValueBet, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if snapshot == nil || !snapshot.HasValidData() {
		return nil, nil
	}

	pool := snapshot.TrifectaPool.Net
	dilution, ok := a.passesPoolGates(MarketTrifecta, snapshot.RaceName, pool, settings)
	if !ok {
		return nil, nil
	}
	records := a.trifectaRecords(snapshot, pool, dilution)
	sortTrifectaByValue(records)
	return records, nil
}

// passesPoolGates applies the minimum-pool and maximum-dilution gates.
// It returns the dilution factor for the pool and whether analysis
// should proceed.
func (a *Analyzer) passesPoolGates(market, race string, poolNet decimal.Decimal, settings models.ValueBetSettings) (decimal.Decimal, bool) {
	if poolNet.LessThan(settings.MinimumPoolSize) {
		a.logger.WithFields(logrus.Fields{
			"race":     race,
			"market":   market,
			"pool_net": poolNet,
			"min_pool": settings.MinimumPoolSize,
		}).Debug("Pool below minimum size, skipping analysis")
		return decimal.Zero, false
	}

	dilution := pricing.DilutionFactor(poolNet, settings.DefaultStake)
	dilutionPercent := pricing.DilutionPercent(dilution)
	if dilutionPercent.GreaterThan(settings.MaxDilutionPercent) {
		a.logger.WithFields(logrus.Fields{
			"race":             race,
			"market":           market,
			"dilution_percent": dilutionPercent,
			"max_dilution":     settings.MaxDilutionPercent,
		}).Debug("Stake dilution above maximum, skipping analysis")
		return decimal.Zero, false
	}
	return dilution, true
}

// exactaRecords evaluates every exacta combination in the snapshot.
// Malformed keys, non-positive tote odds and non-positive fair
// probabilities are omitted, never reported as errors. Keys are visited
// in sorted order so repeated runs produce identical output.
func (a *Analyzer) exactaRecords(snapshot *models.RaceSnapshot, poolNet, dilution decimal.Decimal) []models.ExactaValueBet {
	var records []models.ExactaValueBet
	for _, key := range sortedKeys(snapshot.ExactaOdds) {
		metrics.CombinationsEvaluatedTotal.WithLabelValues(MarketExacta).Inc()

		first, second, ok := parseExactaKey(key)
		if !ok {
			metrics.CombinationsSkippedTotal.WithLabelValues(MarketExacta).Inc()
			continue
		}
		toteOdds := snapshot.ExactaOdds[key]
		if !toteOdds.IsPositive() {
			metrics.CombinationsSkippedTotal.WithLabelValues(MarketExacta).Inc()
			continue
		}
		fairProbability := pricing.FairExactaProbability(first, second, snapshot.WinOdds)
		if !fairProbability.IsPositive() {
			metrics.CombinationsSkippedTotal.WithLabelValues(MarketExacta).Inc()
			continue
		}

		fairOdds := pricing.FairOdds(fairProbability)
		records = append(records, models.ExactaValueBet{
			First:          first,
			Second:         second,
			FirstName:      snapshot.RunnerName(first),
			SecondName:     snapshot.RunnerName(second),
			ToteOdds:       toteOdds,
			FairOdds:       fairOdds,
			ValuePercent:   pricing.ValuePercent(fairOdds, toteOdds),
			PoolSize:       poolNet,
			DilutionFactor: dilution,
			EffectiveOdds:  pricing.EffectiveOdds(toteOdds, dilution),
			RaceName:       snapshot.RaceName,
		})
	}
	return records
}

// trifectaRecords mirrors exactaRecords for three-runner combinations.
func (a *Analyzer) trifectaRecords(snapshot *models.RaceSnapshot, poolNet, dilution decimal.Decimal) []models.TrifectaValueBet {
	var records []models.TrifectaValueBet
	for _, key := range sortedKeys(snapshot.TrifectaOdds) {
		metrics.CombinationsEvaluatedTotal.WithLabelValues(MarketTrifecta).Inc()

		first, second, third, ok := parseTrifectaKey(key)
		if !ok {
			metrics.CombinationsSkippedTotal.WithLabelValues(MarketTrifecta).Inc()
			continue
		}
		toteOdds := snapshot.TrifectaOdds[key]
		if !toteOdds.IsPositive() {
			metrics.CombinationsSkippedTotal.WithLabelValues(MarketTrifecta).Inc()
			continue
		}
		fairProbability := pricing.FairTrifectaProbability(first, second, third, snapshot.WinOdds)
		if !fairProbability.IsPositive() {
			metrics.CombinationsSkippedTotal.WithLabelValues(MarketTrifecta).Inc()
			continue
		}

		fairOdds := pricing.FairOdds(fairProbability)
		records = append(records, models.TrifectaValueBet{
			First:          first,
			Second:         second,
			Third:          third,
			FirstName:      snapshot.RunnerName(first),
			SecondName:     snapshot.RunnerName(second),
			ThirdName:      snapshot.RunnerName(third),
			ToteOdds:       toteOdds,
			FairOdds:       fairOdds,
			ValuePercent:   pricing.ValuePercent(fairOdds, toteOdds),
			PoolSize:       poolNet,
			DilutionFactor: dilution,
			EffectiveOdds:  pricing.EffectiveOdds(toteOdds, dilution),
			RaceName:       snapshot.RaceName,
		})
	}
	return records
}

func filterExactaByThreshold(records []models.ExactaValueBet, threshold decimal.Decimal) []models.ExactaValueBet {
	filtered := records[:0]
	for _, r := range records {
		if r.ValuePercent.GreaterThanOrEqual(threshold) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func filterTrifectaByThreshold(records []models.TrifectaValueBet, threshold decimal.Decimal) []models.TrifectaValueBet {
	filtered := records[:0]
	for _, r := range records {
		if r.ValuePercent.GreaterThanOrEqual(threshold) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Ties on value percent keep key order; the sort must stay stable.
func sortExactaByValue(records []models.ExactaValueBet) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ValuePercent.GreaterThan(records[j].ValuePercent)
	})
}

func sortTrifectaByValue(records []models.TrifectaValueBet) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ValuePercent.GreaterThan(records[j].ValuePercent)
	})
}

func truncateExacta(records []models.ExactaValueBet, count int) []models.ExactaValueBet {
	if len(records) > count {
		return records[:count]
	}
	return records
}

func truncateTrifecta(records []models.TrifectaValueBet, count int) []models.TrifectaValueBet {
	if len(records) > count {
		return records[:count]
	}
	return records
}

func sortedKeys(odds map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(odds))
	for key := range odds {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
