package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validSnapshot() *RaceSnapshot {
	return &RaceSnapshot{
		RaceName:    "ASCOT RACE 1",
		WinOdds:     map[int]decimal.Decimal{1: d("2"), 2: d("4")},
		RunnerNames: map[int]string{1: "Alpha"},
		ExactaOdds:  map[string]decimal.Decimal{"1-2": d("9")},
		ExactaPool:  PoolTotals{Net: d("5000")},
	}
}

func TestHasValidData(t *testing.T) {
	assert.True(t, validSnapshot().HasValidData())
}

func TestHasValidDataRequiresTwoWinOdds(t *testing.T) {
	snapshot := validSnapshot()
	snapshot.WinOdds = map[int]decimal.Decimal{1: d("2")}
	assert.False(t, snapshot.HasValidData())

	snapshot.WinOdds = nil
	assert.False(t, snapshot.HasValidData())
}

func TestHasValidDataRequiresCombinationMarket(t *testing.T) {
	snapshot := validSnapshot()

	// Exacta odds without a positive net pool do not qualify.
	snapshot.ExactaPool.Net = decimal.Zero
	assert.False(t, snapshot.HasValidData())

	// A trifecta market with a positive pool qualifies on its own.
	snapshot.TrifectaOdds = map[string]decimal.Decimal{"1-2-3": d("30")}
	snapshot.TrifectaPool.Net = d("2000")
	assert.True(t, snapshot.HasValidData())

	// A positive pool without odds does not qualify either.
	snapshot.TrifectaOdds = nil
	assert.False(t, snapshot.HasValidData())
}

func TestRunnerNameFallback(t *testing.T) {
	snapshot := validSnapshot()
	assert.Equal(t, "Alpha", snapshot.RunnerName(1))
	assert.Equal(t, "#2", snapshot.RunnerName(2))
	assert.Equal(t, "#14", snapshot.RunnerName(14))
}

func TestWinOddsFor(t *testing.T) {
	snapshot := validSnapshot()
	assert.True(t, snapshot.WinOddsFor(1).Equal(d("2")))
	assert.True(t, snapshot.WinOddsFor(9).IsZero())
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	snapshot := validSnapshot()
	payload, err := json.Marshal(snapshot)
	require.NoError(t, err)

	var decoded RaceSnapshot
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, snapshot.RaceName, decoded.RaceName)
	assert.True(t, decoded.WinOdds[2].Equal(d("4")))
	assert.True(t, decoded.ExactaOdds["1-2"].Equal(d("9")))
	assert.True(t, decoded.ExactaPool.Net.Equal(d("5000")))
}

func TestExactaValueBetKeyAndDisplay(t *testing.T) {
	bet := &ExactaValueBet{First: 3, Second: 7, FirstName: "Alpha", SecondName: "Beta"}
	assert.Equal(t, "3-7", bet.Key())
	assert.Equal(t, "3. Alpha → 7. Beta", bet.Display())
}

func TestTrifectaValueBetKeyAndDisplay(t *testing.T) {
	bet := &TrifectaValueBet{
		First: 3, Second: 7, Third: 1,
		FirstName: "Alpha", SecondName: "Beta", ThirdName: "Gamma",
	}
	assert.Equal(t, "3-7-1", bet.Key())
	assert.Equal(t, "3. Alpha → 7. Beta → 1. Gamma", bet.Display())
}
