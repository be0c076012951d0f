// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// AnalysisConfig bounds the cost and pace of a visibility run
type AnalysisConfig struct {
	MaxAnalyzedPrompts int
	PromptsPerTopic    int
	Pacing             time.Duration
	CallTimeout        time.Duration
	Workers            int
	ModelLabel         string
}

// ResilienceConfig controls retries and the circuit breaker around the responder
type ResilienceConfig struct {
	MaxRetries      int
	RetryBaseDelay  time.Duration
	BreakerFailures int
	BreakerTimeout  time.Duration
}

type Config struct {
	Port              string
	Environment       string
	InngestEventKey   string
	InngestSigningKey string

	// Responder selection: mock, openai, anthropic or gemini
	ResponderProvider string
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	AnthropicAPIKey   string
	AnthropicModel    string
	GeminiAPIKey      string
	GeminiModel       string
	GeminiBaseURL     string
	MockSeed          int64

	Analysis   AnalysisConfig
	Resilience ResilienceConfig

	SessionTTL time.Duration
	// AnalysisDispatch is "local" (in-process goroutine) or "inngest"
	AnalysisDispatch string
	PolicyFile       string
	SlackWebhookURL  string
	SentryDSN        string
	LogLevel         string
	LogFile          string
}

func Load() *Config {
	config := &Config{
		Port:              getEnv("PORT", "8000"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		InngestEventKey:   os.Getenv("INNGEST_EVENT_KEY"),
		InngestSigningKey: os.Getenv("INNGEST_SIGNING_KEY"),

		ResponderProvider: strings.ToLower(getEnv("RESPONDER_PROVIDER", "mock")),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4.1"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:    getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		MockSeed:          int64(getEnvInt("MOCK_SEED", 42)),

		SessionTTL:       getEnvDuration("SESSION_TTL", 2*time.Hour),
		AnalysisDispatch: strings.ToLower(getEnv("ANALYSIS_DISPATCH", "local")),
		PolicyFile:       os.Getenv("POLICY_FILE"),
		SlackWebhookURL:  os.Getenv("SLACK_WEBHOOK_URL"),
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          os.Getenv("LOG_FILE"),
	}

	config.Analysis = AnalysisConfig{
		MaxAnalyzedPrompts: getEnvInt("ANALYSIS_MAX_PROMPTS", 10),
		PromptsPerTopic:    getEnvInt("ANALYSIS_PROMPTS_PER_TOPIC", 10),
		Pacing:             getEnvDuration("ANALYSIS_PACING", 500*time.Millisecond),
		CallTimeout:        getEnvDuration("ANALYSIS_CALL_TIMEOUT", 60*time.Second),
		Workers:            getEnvInt("ANALYSIS_WORKERS", 1),
		ModelLabel:         getEnv("ANALYSIS_MODEL_LABEL", ""),
	}

	config.Resilience = ResilienceConfig{
		MaxRetries:      getEnvInt("RESPONDER_MAX_RETRIES", 2),
		RetryBaseDelay:  getEnvDuration("RESPONDER_RETRY_BASE_DELAY", 500*time.Millisecond),
		BreakerFailures: getEnvInt("RESPONDER_BREAKER_FAILURES", 5),
		BreakerTimeout:  getEnvDuration("RESPONDER_BREAKER_TIMEOUT", 30*time.Second),
	}

	return config
}

// IsDevelopment reports whether signing verification may be skipped
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("500ms") or plain milliseconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
