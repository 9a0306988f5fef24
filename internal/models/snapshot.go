package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PoolTotals holds the monetary figures for a single tote pool
type PoolTotals struct {
	Gross     decimal.Decimal `db:"gross" json:"gross"`
	Net       decimal.Decimal `db:"net" json:"net"`
	CarryIn   decimal.Decimal `db:"carry_in" json:"carry_in"`
	Guarantee decimal.Decimal `db:"guarantee" json:"guarantee"`
	TopUp     decimal.Decimal `db:"top_up" json:"top_up"`
}

// RaceSnapshot is a point-in-time view of one race's tote markets.
// It aggregates WIN odds, runner names, EXACTA/TRIFECTA combination odds
// and pool totals. Snapshots are value objects: each refresh produces a
// new snapshot and existing ones are never mutated.
type RaceSnapshot struct {
	ID           uuid.UUID                  `db:"id" json:"id"`
	RaceName     string                     `db:"race_name" json:"race_name" validate:"required"`
	EventID      string                     `db:"event_id" json:"event_id"`
	WinOdds      map[int]decimal.Decimal    `json:"win_odds"`
	RunnerNames  map[int]string             `json:"runner_names"`
	ExactaOdds   map[string]decimal.Decimal `json:"exacta_odds"`
	TrifectaOdds map[string]decimal.Decimal `json:"trifecta_odds"`
	WinPool      PoolTotals                 `json:"win_pool"`
	ExactaPool   PoolTotals                 `json:"exacta_pool"`
	TrifectaPool PoolTotals                 `json:"trifecta_pool"`
	FetchedAt    time.Time                  `db:"fetched_at" json:"fetched_at"`
}

// HasValidData reports whether the snapshot carries enough data to analyse:
// at least two WIN odds entries and at least one combination market with
// odds and a positive net pool.
func (s *RaceSnapshot) HasValidData() bool {
	if len(s.WinOdds) < 2 {
		return false
	}
	exactaOK := len(s.ExactaOdds) > 0 && s.ExactaPool.Net.IsPositive()
	trifectaOK := len(s.TrifectaOdds) > 0 && s.TrifectaPool.Net.IsPositive()
	return exactaOK || trifectaOK
}

// RunnerName returns the display name for a runner number, falling back
// to "#<number>" when the name is not known.
func (s *RaceSnapshot) RunnerName(number int) string {
	if name, ok := s.RunnerNames[number]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("#%d", number)
}

// WinOddsFor returns the WIN odds for a runner, or zero when absent.
func (s *RaceSnapshot) WinOddsFor(number int) decimal.Decimal {
	if odds, ok := s.WinOdds[number]; ok {
		return odds
	}
	return decimal.Zero
}

// RunnerCount returns the number of runners with WIN odds.
func (s *RaceSnapshot) RunnerCount() int {
	return len(s.WinOdds)
}
