package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/tote-value/internal/config"
	"github.com/yourusername/tote-value/internal/models"
	"github.com/yourusername/tote-value/internal/pricing"
)

const (
	poolTypeWin      = "WIN"
	poolTypeExacta   = "EXACTA"
	poolTypeTrifecta = "TRIFECTA"

	raceQuery = `query Race($name: String!) {
  race(name: $name) {
    name
    eventId
    runners { number name winOdds }
    exactaOdds { key odds }
    trifectaOdds { key odds }
    pools { type gross net carryIn guarantee topUp }
  }
}`

	raceListQuery = `query Races($date: String!) {
  races(date: $date) { name }
}`
)

// ToteAPISource fetches race snapshots from the upstream tote GraphQL API.
type ToteAPISource struct {
	url    string
	apiKey string
	client *RateLimitedHTTPClient
	logger *logrus.Logger
}

// NewToteAPISource creates a tote API source from configuration.
func NewToteAPISource(cfg *config.ToteAPIConfig, logger *logrus.Logger) *ToteAPISource {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.Timeout()
	httpCfg.MaxRetries = cfg.MaxRetries
	httpCfg.RateLimit = cfg.RateLimit

	return &ToteAPISource{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: NewRateLimitedHTTPClient(httpCfg, logger),
		logger: logger,
	}
}

// Name returns the name of the data source
func (s *ToteAPISource) Name() string {
	return "tote_api"
}

// graphQLRequest is the JSON body of a GraphQL POST
type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type runnerPayload struct {
	Number  int    `json:"number"`
	Name    string `json:"name"`
	WinOdds string `json:"winOdds"`
}

type combinationPayload struct {
	Key  string `json:"key"`
	Odds string `json:"odds"`
}

type poolPayload struct {
	Type      string `json:"type"`
	Gross     string `json:"gross"`
	Net       string `json:"net"`
	CarryIn   string `json:"carryIn"`
	Guarantee string `json:"guarantee"`
	TopUp     string `json:"topUp"`
}

type racePayload struct {
	Name         string               `json:"name"`
	EventID      string               `json:"eventId"`
	Runners      []runnerPayload      `json:"runners"`
	ExactaOdds   []combinationPayload `json:"exactaOdds"`
	TrifectaOdds []combinationPayload `json:"trifectaOdds"`
	Pools        []poolPayload        `json:"pools"`
}

// FetchSnapshot retrieves the current snapshot for one race.
func (s *ToteAPISource) FetchSnapshot(ctx context.Context, raceName string) (*models.RaceSnapshot, error) {
	var response struct {
		Data struct {
			Race *racePayload `json:"race"`
		} `json:"data"`
		Errors []graphQLError `json:"errors"`
	}

	err := s.execute(ctx, raceQuery, map[string]interface{}{"name": raceName}, &response)
	if err != nil {
		return nil, err
	}
	if len(response.Errors) > 0 {
		return nil, fmt.Errorf("tote API returned errors: %s", response.Errors[0].Message)
	}
	if response.Data.Race == nil {
		return nil, models.ErrSnapshotNotFound
	}

	return s.buildSnapshot(response.Data.Race), nil
}

// ListRaceNames retrieves the names of races scheduled on a date.
func (s *ToteAPISource) ListRaceNames(ctx context.Context, date time.Time) ([]string, error) {
	var response struct {
		Data struct {
			Races []struct {
				Name string `json:"name"`
			} `json:"races"`
		} `json:"data"`
		Errors []graphQLError `json:"errors"`
	}

	err := s.execute(ctx, raceListQuery, map[string]interface{}{"date": date.Format("2006-01-02")}, &response)
	if err != nil {
		return nil, err
	}
	if len(response.Errors) > 0 {
		return nil, fmt.Errorf("tote API returned errors: %s", response.Errors[0].Message)
	}

	names := make([]string, 0, len(response.Data.Races))
	for _, race := range response.Data.Races {
		names = append(names, race.Name)
	}
	return names, nil
}

// execute posts a GraphQL query and decodes the response
func (s *ToteAPISource) execute(ctx context.Context, query string, variables map[string]interface{}, response interface{}) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", s.apiKey)

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("tote API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tote API returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(data, response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// buildSnapshot normalises the API payload into an immutable snapshot.
// Unparseable odds are treated as absent rather than failing the fetch.
func (s *ToteAPISource) buildSnapshot(race *racePayload) *models.RaceSnapshot {
	winOdds := make(map[int]decimal.Decimal, len(race.Runners))
	runnerNames := make(map[int]string, len(race.Runners))
	haveWinMarket := false

	for _, runner := range race.Runners {
		if runner.Name != "" {
			runnerNames[runner.Number] = runner.Name
		}
		odds, err := decimal.NewFromString(runner.WinOdds)
		if err != nil {
			continue
		}
		winOdds[runner.Number] = odds
		if odds.IsPositive() {
			haveWinMarket = true
		}
	}

	// No WIN market at all: fall back to deterministic placeholder odds
	// so combination analysis still has a fair-probability basis.
	if !haveWinMarket && len(race.Runners) > 0 {
		winOdds = pricing.SyntheticWinOdds(len(race.Runners))
		s.logger.WithField("race", race.Name).Warn("No WIN market, using synthetic odds")
	}

	snapshot := &models.RaceSnapshot{
		ID:           uuid.New(),
		RaceName:     race.Name,
		EventID:      race.EventID,
		WinOdds:      winOdds,
		RunnerNames:  runnerNames,
		ExactaOdds:   parseCombinationOdds(race.ExactaOdds),
		TrifectaOdds: parseCombinationOdds(race.TrifectaOdds),
		FetchedAt:    time.Now().UTC(),
	}

	for _, pool := range race.Pools {
		totals := parsePoolTotals(pool)
		switch pool.Type {
		case poolTypeWin:
			snapshot.WinPool = totals
		case poolTypeExacta:
			snapshot.ExactaPool = totals
		case poolTypeTrifecta:
			snapshot.TrifectaPool = totals
		}
	}

	return snapshot
}

func parseCombinationOdds(payloads []combinationPayload) map[string]decimal.Decimal {
	odds := make(map[string]decimal.Decimal, len(payloads))
	for _, p := range payloads {
		d, err := decimal.NewFromString(p.Odds)
		if err != nil {
			continue
		}
		odds[p.Key] = d
	}
	return odds
}

func parsePoolTotals(pool poolPayload) models.PoolTotals {
	return models.PoolTotals{
		Gross:     parseDecimalOrZero(pool.Gross),
		Net:       parseDecimalOrZero(pool.Net),
		CarryIn:   parseDecimalOrZero(pool.CarryIn),
		Guarantee: parseDecimalOrZero(pool.Guarantee),
		TopUp:     parseDecimalOrZero(pool.TopUp),
	}
}

func parseDecimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
