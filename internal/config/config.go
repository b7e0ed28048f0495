package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// Config holds runtime configuration values for the Travel AI server.
type Config struct {
	DBPath         string
	ServerPort     int
	LogLevel       string
	LLMEndpoint    string
	LLMAPIKey      string
	LLMModels      []string
	SentryDSN      string
	Environment    string
	OutputDir      string
	ShutdownGrace  time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	RateLimitTTL   time.Duration
}

const (
	defaultDBPath         = "./data/travelai.db"
	defaultServerPort     = 8080
	defaultLogLevel       = "info"
	defaultEnvironment    = "development"
	defaultOutputDir      = "./output"
	defaultShutdownGrace  = 10 * time.Second
	defaultRateLimitRPS   = 5
	defaultRateLimitBurst = 10
	defaultRateLimitTTL   = 5 * time.Minute
)

// Load reads configuration values from environment variables, applying defaults where necessary.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:         getEnv("DB_PATH", defaultDBPath),
		LogLevel:       getEnv("LOG_LEVEL", defaultLogLevel),
		LLMEndpoint:    os.Getenv("LLM_ENDPOINT"),
		LLMAPIKey:      os.Getenv("LLM_API_KEY"),
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		Environment:    getEnv("ENV", defaultEnvironment),
		OutputDir:      getEnv("OUTPUT_DIR", defaultOutputDir),
		ShutdownGrace:  defaultShutdownGrace,
		RateLimitRPS:   defaultRateLimitRPS,
		RateLimitBurst: defaultRateLimitBurst,
		RateLimitTTL:   defaultRateLimitTTL,
	}

	if modelsJSON := os.Getenv("LLM_MODELS"); modelsJSON != "" {
		models, err := parseModels(modelsJSON)
		if err != nil {
			return nil, eris.Wrap(err, "parsing LLM_MODELS")
		}
		cfg.LLMModels = models
	}

	portValue := getEnv("SERVER_PORT", strconv.Itoa(defaultServerPort))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid SERVER_PORT value: %s", portValue)
	}
	cfg.ServerPort = port

	if rpsValue := os.Getenv("RATE_LIMIT_RPS"); rpsValue != "" {
		rps, err := strconv.ParseFloat(rpsValue, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid RATE_LIMIT_RPS value: %s", rpsValue)
		}
		cfg.RateLimitRPS = rps
	}

	if burstValue := os.Getenv("RATE_LIMIT_BURST"); burstValue != "" {
		burst, err := strconv.Atoi(burstValue)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid RATE_LIMIT_BURST value: %s", burstValue)
		}
		cfg.RateLimitBurst = burst
	}

	if ttlValue := os.Getenv("RATE_LIMIT_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid RATE_LIMIT_TTL value: %s", ttlValue)
		}
		cfg.RateLimitTTL = ttl
	}

	if graceValue := os.Getenv("SHUTDOWN_GRACE"); graceValue != "" {
		grace, err := time.ParseDuration(graceValue)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid SHUTDOWN_GRACE value: %s", graceValue)
		}
		cfg.ShutdownGrace = grace
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseModels(raw string) ([]string, error) {
	// Accept either a JSON array of strings or an object with a `models` field.
	var arrayInput []string
	if err := json.Unmarshal([]byte(raw), &arrayInput); err == nil {
		return arrayInput, nil
	}

	var objectInput struct {
		Models []string `json:"models"`
	}
	if err := json.Unmarshal([]byte(raw), &objectInput); err != nil {
		return nil, eris.Wrap(err, "decoding JSON")
	}

	if len(objectInput.Models) == 0 {
		return nil, eris.New("models list is empty")
	}

	return objectInput.Models, nil
}
