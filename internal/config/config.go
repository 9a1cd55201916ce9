package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/openregatta/timing-sync/internal/platform/logging"
)

// envNameByField maps validated struct fields back to the environment
// variables operators actually set.
var envNameByField = map[string]string{
	"DBURL":              "DB_URL",
	"ClockCasterBaseURL": "CLOCKCASTER_BASE_URL",
	"ProviderID":         "PROVIDER_ID",
}

// Config stores runtime configuration for the ingest service.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	DBURL                   string `validate:"required"`
	DBDisablePreparedBinary bool
	ClockCasterBaseURL      string `validate:"required,url"`
	ClockCasterTimeout      time.Duration
	ClockCasterMaxRetries   int
	PollInterval            time.Duration
	PollMaxAttempts         int
	SnapshotDir             string
	StatusEnabled           bool
	StatusAddr              string
	ProviderID              int64 `validate:"gt=0"`
	ReferenceYear           int
	LogLevel                logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	clockCasterTimeout, err := time.ParseDuration(getEnv("CLOCKCASTER_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CLOCKCASTER_TIMEOUT: %w", err)
	}
	if clockCasterTimeout <= 0 {
		return Config{}, fmt.Errorf("CLOCKCASTER_TIMEOUT must be > 0")
	}

	clockCasterMaxRetries, err := getEnvAsInt("CLOCKCASTER_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse CLOCKCASTER_MAX_RETRIES: %w", err)
	}
	if clockCasterMaxRetries < 0 {
		return Config{}, fmt.Errorf("CLOCKCASTER_MAX_RETRIES must be >= 0")
	}

	pollInterval, err := time.ParseDuration(getEnv("POLL_INTERVAL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse POLL_INTERVAL: %w", err)
	}
	if pollInterval <= 0 {
		return Config{}, fmt.Errorf("POLL_INTERVAL must be > 0")
	}

	pollMaxAttempts, err := getEnvAsInt("POLL_MAX_ATTEMPTS", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse POLL_MAX_ATTEMPTS: %w", err)
	}
	if pollMaxAttempts < 0 {
		return Config{}, fmt.Errorf("POLL_MAX_ATTEMPTS must be >= 0")
	}

	statusEnabled, err := strconv.ParseBool(getEnv("STATUS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATUS_ENABLED: %w", err)
	}
	statusAddr := strings.TrimSpace(getEnv("STATUS_ADDR", ":8090"))
	if statusEnabled && statusAddr == "" {
		return Config{}, fmt.Errorf("STATUS_ADDR is required when STATUS_ENABLED=true")
	}

	providerID, err := getEnvAsInt("PROVIDER_ID", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_ID: %w", err)
	}

	referenceYear, err := getEnvAsInt("REFERENCE_YEAR", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse REFERENCE_YEAR: %w", err)
	}
	if referenceYear < 0 {
		return Config{}, fmt.Errorf("REFERENCE_YEAR must be >= 0")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cfg := Config{
		AppEnv:                  appEnv,
		ServiceName:             getEnv("APP_SERVICE_NAME", "timing-sync"),
		ServiceVersion:          getEnv("APP_SERVICE_VERSION", "dev"),
		DBURL:                   strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary: dbDisablePreparedBinary,
		ClockCasterBaseURL:      strings.TrimSpace(getEnv("CLOCKCASTER_BASE_URL", "https://pdx.clockcaster.com")),
		ClockCasterTimeout:      clockCasterTimeout,
		ClockCasterMaxRetries:   clockCasterMaxRetries,
		PollInterval:            pollInterval,
		PollMaxAttempts:         pollMaxAttempts,
		SnapshotDir:             strings.TrimSpace(getEnv("SNAPSHOT_DIR", ".")),
		StatusEnabled:           statusEnabled,
		StatusAddr:              statusAddr,
		ProviderID:              int64(providerID),
		ReferenceYear:           referenceYear,
		LogLevel:                parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}

	if err := validator.New().Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			field := fieldErrs[0].StructField()
			if envName, ok := envNameByField[field]; ok {
				field = envName
			}
			return Config{}, fmt.Errorf("invalid configuration: %s failed %q validation", field, fieldErrs[0].Tag())
		}
		return Config{}, fmt.Errorf("validate configuration: %w", err)
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
