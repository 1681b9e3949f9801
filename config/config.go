// Package config reads process configuration from the environment, after
// loading any .env files.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultPort      = "8080"
	defaultRateLimit = 60
)

// LLM holds the provider settings. Missing keys are not errors here; the
// provider gateway decides what an incomplete configuration means.
type LLM struct {
	Provider      string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiKey     string
	GeminiModel   string
	MockMode      bool
}

type Config struct {
	Port          string
	LogLevel      slog.Level
	RateLimit     int
	ScoringConfig string
	CorsOrigins   []string
	LLM           LLM

	// TrustClientIDHeader lets X-Test-Client-ID pick the rate-limit bucket.
	// Leave it off outside tests: any caller can set the header.
	TrustClientIDHeader bool
}

// Load reads the environment once. envFiles default to ".env"; a missing
// file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Debug("Skipping .env ...", "error", err)
	}

	port := getEnv("PORT", defaultPort)
	if err := validatePort(port); err != nil {
		return nil, fmt.Errorf("invalid port: %w", err)
	}

	rateLimit := defaultRateLimit
	if raw := os.Getenv("RATE_LIMIT"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			slog.Warn("Invalid RATE_LIMIT, using default", "value", raw, "default", defaultRateLimit)
		} else {
			rateLimit = n
		}
	}

	return &Config{
		Port:          port,
		LogLevel:      parseLevel(os.Getenv("LOG_LEVEL")),
		RateLimit:     rateLimit,
		ScoringConfig: os.Getenv("SCORING_CONFIG"),
		CorsOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
		LLM: LLM{
			Provider:      os.Getenv("LLM_PROVIDER"),
			OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:   os.Getenv("OPENAI_MODEL"),
			OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
			GeminiKey:     os.Getenv("GEMINI_API_KEY"),
			GeminiModel:   os.Getenv("GEMINI_MODEL"),
			MockMode:      parseBool(os.Getenv("MOCK_MODE")),
		},

		TrustClientIDHeader: parseBool(os.Getenv("TRUST_CLIENT_ID_HEADER")),
	}, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func validatePort(port string) error {
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return errors.New("port must be a number")
	}
	if portNum < 1 || portNum > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func parseLevel(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
