package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OddsTypeBase is the default odds-type selector. It is a transport-layer
// filter and is not consulted by the analysis engine itself.
const OddsTypeBase = "Base"

// ValueBetSettings configures a single analysis run. Settings are treated
// as immutable for the duration of a call.
type ValueBetSettings struct {
	ValueThresholdPercent decimal.Decimal `mapstructure:"value_threshold_percent" json:"value_threshold_percent" validate:"required"`
	MinimumPoolSize       decimal.Decimal `mapstructure:"minimum_pool_size" json:"minimum_pool_size"`
	MaxDilutionPercent    decimal.Decimal `mapstructure:"max_dilution_percent" json:"max_dilution_percent"`
	DefaultStake          decimal.Decimal `mapstructure:"default_stake" json:"default_stake"`
	TopBetCount           int             `mapstructure:"top_bet_count" json:"top_bet_count" validate:"required,gt=0"`
	OddsType              string          `mapstructure:"odds_type" json:"odds_type"`
}

// DefaultValueBetSettings returns the standard configuration:
// 10% value threshold, 5000 minimum pool, 5% maximum dilution,
// 100 default stake and top 5 bets.
func DefaultValueBetSettings() ValueBetSettings {
	return ValueBetSettings{
		ValueThresholdPercent: decimal.NewFromInt(10),
		MinimumPoolSize:       decimal.NewFromInt(5000),
		MaxDilutionPercent:    decimal.NewFromInt(5),
		DefaultStake:          decimal.NewFromInt(100),
		TopBetCount:           5,
		OddsType:              OddsTypeBase,
	}
}

// Validate rejects settings that would silently mis-compute an analysis.
// All returned errors wrap ErrInvalidConfiguration.
func (s ValueBetSettings) Validate() error {
	if s.ValueThresholdPercent.IsNegative() {
		return fmt.Errorf("%w: value threshold percent must not be negative", ErrInvalidConfiguration)
	}
	if s.MinimumPoolSize.IsNegative() {
		return fmt.Errorf("%w: minimum pool size must not be negative", ErrInvalidConfiguration)
	}
	if s.MaxDilutionPercent.IsNegative() {
		return fmt.Errorf("%w: max dilution percent must not be negative", ErrInvalidConfiguration)
	}
	if s.DefaultStake.IsNegative() {
		return fmt.Errorf("%w: default stake must not be negative", ErrInvalidConfiguration)
	}
	if s.TopBetCount <= 0 {
		return fmt.Errorf("%w: top bet count must be positive", ErrInvalidConfiguration)
	}
	return nil
}
