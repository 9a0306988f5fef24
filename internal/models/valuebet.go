package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ExactaValueBet is one recommended exacta combination. Records are derived
// per analysis call and recomputed on every run.
type ExactaValueBet struct {
	First          int             `json:"first"`
	Second         int             `json:"second"`
	FirstName      string          `json:"first_name"`
	SecondName     string          `json:"second_name"`
	ToteOdds       decimal.Decimal `json:"tote_odds"`
	FairOdds       decimal.Decimal `json:"fair_odds"`
	ValuePercent   decimal.Decimal `json:"value_percent"`
	PoolSize       decimal.Decimal `json:"pool_size"`
	DilutionFactor decimal.Decimal `json:"dilution_factor"`
	EffectiveOdds  decimal.Decimal `json:"effective_odds"`
	RaceName       string          `json:"race_name"`
}

// Key returns the combination key, e.g. "3-7".
func (b *ExactaValueBet) Key() string {
	return fmt.Sprintf("%d-%d", b.First, b.Second)
}

// Display returns a human readable description, e.g. "3. Horse A → 7. Horse B".
func (b *ExactaValueBet) Display() string {
	return fmt.Sprintf("%d. %s → %d. %s", b.First, b.FirstName, b.Second, b.SecondName)
}

// TrifectaValueBet is one recommended trifecta combination.
type TrifectaValueBet struct {
	First          int             `json:"first"`
	Second         int             `json:"second"`
	Third          int             `json:"third"`
	FirstName      string          `json:"first_name"`
	SecondName     string          `json:"second_name"`
	ThirdName      string          `json:"third_name"`
	ToteOdds       decimal.Decimal `json:"tote_odds"`
	FairOdds       decimal.Decimal `json:"fair_odds"`
	ValuePercent   decimal.Decimal `json:"value_percent"`
	PoolSize       decimal.Decimal `json:"pool_size"`
	DilutionFactor decimal.Decimal `json:"dilution_factor"`
	EffectiveOdds  decimal.Decimal `json:"effective_odds"`
	RaceName       string          `json:"race_name"`
}

// Key returns the combination key, e.g. "3-7-1".
func (b *TrifectaValueBet) Key() string {
	return fmt.Sprintf("%d-%d-%d", b.First, b.Second, b.Third)
}

// Display returns a human readable description.
func (b *TrifectaValueBet) Display() string {
	return fmt.Sprintf("%d. %s → %d. %s → %d. %s",
		b.First, b.FirstName, b.Second, b.SecondName, b.Third, b.ThirdName)
}
