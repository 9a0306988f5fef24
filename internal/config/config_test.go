// Package config provides configuration management for the tote value service.
package config

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/yourusername/tote-value/internal/models"
)

const (
	validConfigPath              = "testdata/valid_config.yaml"
	expansionConfigPath          = "testdata/expansion_config.yaml"
	nonexistentConfigPath        = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	expectedNonNilConfig         = "expected non-nil config"
	toteValueName                = "tote-value"
	developmentEnv               = "development"
	invalidEnv                   = "invalid"
	localhostHost                = "localhost"
	postgresPort                 = 5432
	testAppName                  = "test-app"
	testDBPassword               = "TEST_DB_PASSWORD"
	testToteAPIKey               = "TEST_TOTE_API_KEY"
	expandedSecretValue          = "expanded_secret_value"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}

	if cfg.App.Name != toteValueName {
		t.Errorf("expected app name '%s', got '%s'", toteValueName, cfg.App.Name)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.Database.Host != localhostHost {
		t.Errorf("expected database host '%s', got '%s'", localhostHost, cfg.Database.Host)
	}

	if cfg.Database.Port != postgresPort {
		t.Errorf("expected database port %d, got %d", postgresPort, cfg.Database.Port)
	}

	if cfg.ToteAPI.URL != "https://tote.example.com/graphql" {
		t.Errorf("unexpected tote API URL '%s'", cfg.ToteAPI.URL)
	}

	if cfg.ValueBets.TopBetCount != 5 {
		t.Errorf("expected top bet count 5, got %d", cfg.ValueBets.TopBetCount)
	}

	if len(cfg.Refresh.Races) != 2 {
		t.Errorf("expected 2 tracked races, got %d", len(cfg.Refresh.Races))
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	os.Setenv("TOTE_VALUE_APP_NAME", testAppName)
	defer os.Unsetenv("TOTE_VALUE_APP_NAME")

	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != testAppName {
		t.Errorf("expected app name '%s' from environment, got '%s'", testAppName, cfg.App.Name)
	}
}

// TestLoadConfigExpansion tests ${VAR} expansion inside the config file
func TestLoadConfigExpansion(t *testing.T) {
	os.Setenv(testDBPassword, expandedSecretValue)
	os.Setenv(testToteAPIKey, "expanded-api-key")
	defer os.Unsetenv(testDBPassword)
	defer os.Unsetenv(testToteAPIKey)

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Database.Password != expandedSecretValue {
		t.Errorf("expected expanded password '%s', got '%s'", expandedSecretValue, cfg.Database.Password)
	}

	if cfg.ToteAPI.APIKey != "expanded-api-key" {
		t.Errorf("expected expanded API key, got '%s'", cfg.ToteAPI.APIKey)
	}
}

// TestLoadWithDefaultsMissingFile tests that defaults apply without a file
func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}

	if cfg.App.Name != toteValueName {
		t.Errorf("expected default app name '%s', got '%s'", toteValueName, cfg.App.Name)
	}

	if cfg.ValueBets.ValueThresholdPercent != 10 {
		t.Errorf("expected default value threshold 10, got %v", cfg.ValueBets.ValueThresholdPercent)
	}

	if cfg.ValueBets.MinimumPoolSize != 5000 {
		t.Errorf("expected default minimum pool size 5000, got %v", cfg.ValueBets.MinimumPoolSize)
	}

	if cfg.Metrics.Port != 9090 {
		t.Errorf("expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}

	if cfg.Refresh.CronSchedule != "*/1 * * * *" {
		t.Errorf("unexpected default refresh schedule '%s'", cfg.Refresh.CronSchedule)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	err = Validate(cfg)
	if err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests validation of invalid environment
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = invalidEnv
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
}

// TestValidateInvalidLogLevel tests validation of invalid log level
func TestValidateInvalidLogLevel(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.LogLevel = "verbose"
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
}

// TestValidateNegativeThreshold tests that negative engine settings are rejected
func TestValidateNegativeThreshold(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.ValueBets.ValueThresholdPercent = -1
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for negative value threshold")
	}

	if !errors.Is(err, models.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

// TestValidateConnectionPool tests that idle connections cannot exceed the pool
func TestValidateConnectionPool(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Database.MaxIdleConnections = cfg.Database.MaxConnections + 1
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for excess idle connections")
	}
}

// TestValidateProductionSSL tests that production refuses disabled SSL
func TestValidateProductionSSL(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = "production"
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for production with ssl_mode disable")
	}
}

// TestConnectionString tests PostgreSQL connection string generation
func TestConnectionString(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	connStr := cfg.Database.ConnectionString()
	if connStr == "" {
		t.Fatal("expected non-empty connection string")
	}

	if !strings.Contains(connStr, "host=localhost") {
		t.Errorf("expected host in connection string, got '%s'", connStr)
	}

	if !strings.Contains(connStr, "dbname=tote_value") {
		t.Errorf("expected database name in connection string, got '%s'", connStr)
	}
}

// TestSettingsConversion tests that configuration converts to exact decimal settings
func TestSettingsConversion(t *testing.T) {
	vb := ValueBetsConfig{
		ValueThresholdPercent: 12.5,
		MinimumPoolSize:       4000,
		MaxDilutionPercent:    5,
		DefaultStake:          100,
		TopBetCount:           3,
	}

	settings := vb.Settings()

	if !settings.ValueThresholdPercent.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("unexpected threshold %s", settings.ValueThresholdPercent)
	}

	if settings.TopBetCount != 3 {
		t.Errorf("expected top bet count 3, got %d", settings.TopBetCount)
	}

	if settings.OddsType != models.OddsTypeBase {
		t.Errorf("expected default odds type '%s', got '%s'", models.OddsTypeBase, settings.OddsType)
	}

	if err := settings.Validate(); err != nil {
		t.Errorf("expected converted settings to validate, got %v", err)
	}
}

// TestIsProduction tests production environment check
func TestIsProduction(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: "production"},
	}

	if !cfg.IsProduction() {
		t.Error("expected IsProduction() to return true")
	}

	cfg.App.Environment = developmentEnv
	if cfg.IsProduction() {
		t.Error("expected IsProduction() to return false")
	}
}
