package analysis

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/tote-value/internal/models"
	"github.com/yourusername/tote-value/internal/pricing"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testSettings() models.ValueBetSettings {
	return models.DefaultValueBetSettings()
}

func exactaSnapshot() *models.RaceSnapshot {
	return &models.RaceSnapshot{
		RaceName: "FLEMINGTON RACE 4",
		EventID:  "evt-100",
		WinOdds: map[int]decimal.Decimal{
			1: d("2"),
			2: d("4"),
			3: d("6"),
		},
		RunnerNames: map[int]string{
			1: "Alpha",
			2: "Beta",
		},
		ExactaOdds: map[string]decimal.Decimal{
			"1-2": d("12"),
		},
		ExactaPool: models.PoolTotals{Gross: d("6500"), Net: d("6000")},
	}
}

func trifectaSnapshot() *models.RaceSnapshot {
	return &models.RaceSnapshot{
		RaceName: "FLEMINGTON RACE 5",
		WinOdds: map[int]decimal.Decimal{
			1: d("2"),
			2: d("4"),
			3: d("4"),
		},
		RunnerNames: map[int]string{
			1: "Alpha",
			2: "Beta",
			3: "Gamma",
		},
		TrifectaOdds: map[string]decimal.Decimal{
			"1-2-3": d("20"),
		},
		TrifectaPool: models.PoolTotals{Net: d("8000")},
	}
}

func TestTopExactaBetsEndToEnd(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	settings := testSettings()

	records, err := analyzer.TopExactaBets(exactaSnapshot(), settings)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, 1, record.First)
	assert.Equal(t, 2, record.Second)
	assert.Equal(t, "Alpha", record.FirstName)
	assert.Equal(t, "Beta", record.SecondName)
	assert.Equal(t, "1-2", record.Key())
	assert.Equal(t, "1. Alpha → 2. Beta", record.Display())
	assert.Equal(t, "FLEMINGTON RACE 4", record.RaceName)

	// Fair probability 0.5 * 0.25 / 0.5 = 0.25, fair odds 4, value 200%.
	assert.True(t, record.FairOdds.Equal(d("4")), "fair odds %s", record.FairOdds)
	assert.True(t, record.ValuePercent.Equal(d("200")), "value %s", record.ValuePercent)
	assert.True(t, record.PoolSize.Equal(d("6000")))

	expectedDilution := pricing.DilutionFactor(d("6000"), settings.DefaultStake)
	assert.True(t, record.DilutionFactor.Equal(expectedDilution))
	assert.True(t, record.EffectiveOdds.Equal(record.ToteOdds.Mul(expectedDilution)))
}

func TestTopExactaBetsBelowMinimumPool(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	snapshot := exactaSnapshot()
	snapshot.ExactaPool.Net = d("4000")

	records, err := analyzer.TopExactaBets(snapshot, testSettings())
	require.NoError(t, err)
	assert.Empty(t, records)

	// The gated exhaustive view applies the same pool gate.
	gatedRecords, err := analyzer.AllExactaCalculationsGated(snapshot, testSettings())
	require.NoError(t, err)
	assert.Empty(t, gatedRecords)

	// The unfiltered view does not.
	allRecords, err := analyzer.AllExactaCalculationsUnfiltered(snapshot, testSettings())
	require.NoError(t, err)
	assert.Len(t, allRecords, 1)
}

func TestTopExactaBetsDilutionGate(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	snapshot := exactaSnapshot()
	snapshot.ExactaPool.Net = d("1000")

	settings := testSettings()
	settings.MinimumPoolSize = d("500")

	// 1000 / 1100 dilutes by ~9.1%, above the 5% maximum.
	records, err := analyzer.TopExactaBets(snapshot, settings)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTopExactaBetsMissingOrInvalidSnapshot(t *testing.T) {
	analyzer := NewAnalyzer(nil)

	records, err := analyzer.TopExactaBets(nil, testSettings())
	require.NoError(t, err)
	assert.Empty(t, records)

	// A single WIN odds entry is not enough to analyse.
	snapshot := exactaSnapshot()
	snapshot.WinOdds = map[int]decimal.Decimal{1: d("2")}
	records, err = analyzer.TopExactaBets(snapshot, testSettings())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestInvalidSettingsRejected(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	settings := testSettings()
	settings.ValueThresholdPercent = d("-1")

	_, err := analyzer.TopExactaBets(exactaSnapshot(), settings)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidConfiguration))

	settings = testSettings()
	settings.TopBetCount = 0
	_, err = analyzer.AllExactaCalculationsUnfiltered(exactaSnapshot(), settings)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidConfiguration))
}

func TestUnparsableKeysAreSkipped(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	snapshot := exactaSnapshot()
	snapshot.ExactaOdds = map[string]decimal.Decimal{
		"1-2":   d("12"),
		"1-2-3": d("30"),
		"a-b":   d("9"),
		"1_2":   d("9"),
		"":      d("9"),
	}

	records, err := analyzer.TopExactaBets(snapshot, testSettings())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1-2", records[0].Key())
}

func TestNonPositiveToteOddsSkipped(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	snapshot := exactaSnapshot()
	snapshot.ExactaOdds = map[string]decimal.Decimal{
		"1-2": d("0"),
		"2-1": d("-4"),
	}

	records, err := analyzer.AllExactaCalculationsUnfiltered(snapshot, testSettings())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCombinationWithoutFairEstimateSkipped(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	snapshot := exactaSnapshot()
	// Runner 9 has no WIN odds, so no fair probability exists.
	snapshot.ExactaOdds = map[string]decimal.Decimal{"1-9": d("50")}

	records, err := analyzer.AllExactaCalculationsUnfiltered(snapshot, testSettings())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestThresholdMonotonicity(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	snapshot := exactaSnapshot()
	snapshot.ExactaOdds = map[string]decimal.Decimal{
		"1-2": d("12"), // value 200
		"1-3": d("14"), // value 133.3...
		"2-1": d("7"),  // value 16.66...
		"3-1": d("10"), // value 0
	}

	previous := -1
	for _, threshold := range []string{"0", "20", "80", "250"} {
		settings := testSettings()
		settings.ValueThresholdPercent = d(threshold)

		records, err := analyzer.TopExactaBets(snapshot, settings)
		require.NoError(t, err)
		if previous >= 0 {
			assert.LessOrEqual(t, len(records), previous,
				"raising threshold to %s grew the result set", threshold)
		}
		previous = len(records)
	}
}

func TestIdempotence(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	snapshot := exactaSnapshot()
	snapshot.ExactaOdds = map[string]decimal.Decimal{
		"1-2": d("12"),
		"1-3": d("14"),
		"2-1": d("7"),
		"2-3": d("25"),
	}

	first, err := analyzer.AllExactaCalculationsUnfiltered(snapshot, testSettings())
	require.NoError(t, err)
	second, err := analyzer.AllExactaCalculationsUnfiltered(snapshot, testSettings())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTieBreakIsStable(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	snapshot := exactaSnapshot()
	// Runners 2 and 3 at identical WIN odds with identical tote odds
	// produce identical value percentages.
	snapshot.WinOdds = map[int]decimal.Decimal{1: d("2"), 2: d("4"), 3: d("4")}
	snapshot.ExactaOdds = map[string]decimal.Decimal{
		"1-3": d("12"),
		"1-2": d("12"),
	}

	records, err := analyzer.TopExactaBets(snapshot, testSettings())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1-2", records[0].Key())
	assert.Equal(t, "1-3", records[1].Key())
}

func TestTopBetCountTruncates(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	snapshot := exactaSnapshot()
	snapshot.ExactaOdds = map[string]decimal.Decimal{
		"1-2": d("12"), // value 200
		"1-3": d("14"), // value 133.3...
		"2-3": d("40"), // value 122.2...
	}

	settings := testSettings()
	settings.TopBetCount = 1

	records, err := analyzer.TopExactaBets(snapshot, settings)
	require.NoError(t, err)
	require.Len(t, records, 1)

	all, err := analyzer.AllExactaCalculationsUnfiltered(snapshot, settings)
	require.NoError(t, err)
	assert.True(t, records[0].ValuePercent.Equal(all[0].ValuePercent))
}

func TestRunnerNameFallback(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	snapshot := exactaSnapshot()
	snapshot.ExactaOdds = map[string]decimal.Decimal{"2-3": d("60")}

	records, err := analyzer.AllExactaCalculationsUnfiltered(snapshot, testSettings())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Beta", records[0].FirstName)
	assert.Equal(t, "#3", records[0].SecondName)
}

func TestTopTrifectaBetsEndToEnd(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	settings := testSettings()

	records, err := analyzer.TopTrifectaBets(trifectaSnapshot(), settings)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "1-2-3", record.Key())
	assert.Equal(t, "1. Alpha → 2. Beta → 3. Gamma", record.Display())

	// Fair probability 0.5 * (0.25/0.5) * (0.25/0.25) = 0.25, fair odds 4,
	// value (20/4 - 1) * 100 = 400%.
	assert.True(t, record.FairOdds.Equal(d("4")), "fair odds %s", record.FairOdds)
	assert.True(t, record.ValuePercent.Equal(d("400")), "value %s", record.ValuePercent)
	assert.True(t, record.PoolSize.Equal(d("8000")))
}

func TestTrifectaGatesUseTrifectaPool(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	snapshot := trifectaSnapshot()
	snapshot.TrifectaPool.Net = d("4000")

	records, err := analyzer.TopTrifectaBets(snapshot, testSettings())
	require.NoError(t, err)
	assert.Empty(t, records)

	gatedRecords, err := analyzer.AllTrifectaCalculationsGated(snapshot, testSettings())
	require.NoError(t, err)
	assert.Empty(t, gatedRecords)

	allRecords, err := analyzer.AllTrifectaCalculationsUnfiltered(snapshot, testSettings())
	require.NoError(t, err)
	assert.Len(t, allRecords, 1)
}

func TestTrifectaUnparsableKeys(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	snapshot := trifectaSnapshot()
	snapshot.TrifectaOdds = map[string]decimal.Decimal{
		"1-2-3": d("20"),
		"1-2":   d("20"),
		"x-y-z": d("20"),
	}

	records, err := analyzer.TopTrifectaBets(snapshot, testSettings())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1-2-3", records[0].Key())
}
