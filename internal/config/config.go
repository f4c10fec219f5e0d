package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/futig/faq-assistant/internal/entity"
	pkgRetry "github.com/futig/faq-assistant/internal/pkg/retry"
	"github.com/joho/godotenv"
)

const defaultCorpusFile = "internal/config/qa_corpus.json"

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// Lexical matcher configuration
	MatcherCfg MatcherConfig `envPrefix:"MATCHER_"`

	// Question bank (loaded from JSON file)
	CorpusFile string `env:"CORPUS_FILE"`
	Corpus     entity.Corpus

	// Generative service configuration
	LLMConnectorCfg LLMConnectorConfig `envPrefix:"LLM_"`

	// Session storage configuration
	SessionCfg SessionConfig `envPrefix:"SESSION_"`

	// User input limits
	InputCfg InputConfig `envPrefix:"INPUT_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// MatcherConfig holds the BM25 parameters and the default operating point
type MatcherConfig struct {
	Threshold float64 `env:"THRESHOLD" envDefault:"0.75"`
	K1        float64 `env:"K1" envDefault:"1.5"`
	B         float64 `env:"B" envDefault:"0.75"`
	Epsilon   float64 `env:"EPSILON" envDefault:"0.25"`
	Normalize bool    `env:"NORMALIZE" envDefault:"false"`
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	Provider            string  `env:"PROVIDER" envDefault:"openai"`
	Model               string  `env:"MODEL" envDefault:"gpt-4o"`
	Temperature         float32 `env:"TEMPERATURE" envDefault:"0.7"`
	MaxTokens           int     `env:"MAX_TOKENS" envDefault:"1000"`
	APIKey              string  `env:"API_KEY"`
	ChatCompletionsPath string  `env:"CHAT_COMPLETIONS_ENDPOINT" envDefault:"/chat/completions"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	MaxIdleConnsPerHost   int           `env:"MAX_IDLE_CONNS_PER_HOST" envDefault:"10"`
	Url                   string        `env:"SERVICE_URL" envDefault:"https://api.openai.com/v1"`
}

// SessionConfig controls how long idle conversations are kept in memory
type SessionConfig struct {
	TTL             time.Duration `env:"TTL" envDefault:"2h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
}

type InputConfig struct {
	MaxTextLength int `env:"MAX_TEXT_LENGTH" envDefault:"4000"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string               `env:"BOT_TOKEN"`
	UpdateTimeout      int                  `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int                  `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int                  `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int                  `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
	SendRetry          pkgRetry.RetryConfig `envPrefix:"SEND_RETRY_"`
}

// corpusFile represents the structure of qa_corpus.json
type corpusFile struct {
	Questions []entity.QAEntry `json:"questions"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads the configuration from the process environment, validates it and loads the corpus
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := loadCorpus(cfg); err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	// Validate matcher configuration
	if math.IsNaN(cfg.MatcherCfg.Threshold) || math.IsInf(cfg.MatcherCfg.Threshold, 0) {
		errors = append(errors, fmt.Sprintf("MATCHER_THRESHOLD must be a finite number, got %v", cfg.MatcherCfg.Threshold))
	}

	if cfg.MatcherCfg.K1 < 0 {
		errors = append(errors, fmt.Sprintf("MATCHER_K1 must not be negative, got %v", cfg.MatcherCfg.K1))
	}

	if cfg.MatcherCfg.B < 0 || cfg.MatcherCfg.B > 1 {
		errors = append(errors, fmt.Sprintf("MATCHER_B must be between 0 and 1, got %v", cfg.MatcherCfg.B))
	}

	// Validate generative service configuration
	switch cfg.LLMConnectorCfg.Provider {
	case "openai", "http":
	default:
		errors = append(errors, fmt.Sprintf("LLM_PROVIDER must be one of openai, http, got %q", cfg.LLMConnectorCfg.Provider))
	}

	if cfg.LLMConnectorCfg.MaxTokens < 1 {
		errors = append(errors, fmt.Sprintf("LLM_MAX_TOKENS must be positive, got %d", cfg.LLMConnectorCfg.MaxTokens))
	}

	if cfg.LLMConnectorCfg.RequestTimeout <= 0 || cfg.LLMConnectorCfg.RequestTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("LLM_TIMEOUT must be between 0 and 5m, got %s", cfg.LLMConnectorCfg.RequestTimeout))
	}

	// Validate session configuration
	if cfg.SessionCfg.TTL <= 0 {
		errors = append(errors, fmt.Sprintf("SESSION_TTL must be positive, got %s", cfg.SessionCfg.TTL))
	}

	if cfg.InputCfg.MaxTextLength < 1 {
		errors = append(errors, fmt.Sprintf("INPUT_MAX_TEXT_LENGTH must be positive, got %d", cfg.InputCfg.MaxTextLength))
	}

	// Validate Telegram configuration
	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func loadCorpus(cfg *Config) error {
	path := cfg.CorpusFile
	if path == "" {
		path = defaultCorpusFile
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if cfg.CorpusFile != "" {
			return fmt.Errorf("corpus file not found: %s", path)
		}
		fmt.Printf("Warning: corpus file not found at %s, using built-in corpus\n", path)
		cfg.Corpus = entity.DefaultCorpus
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read corpus file: %w", err)
	}

	corpus, err := ParseCorpus(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	cfg.Corpus = corpus

	fmt.Printf("Loaded %d corpus entries from %s\n", len(cfg.Corpus), path)
	return nil
}

// ParseCorpus decodes a {"questions": [{"question": ..., "answer": ...}]} document
func ParseCorpus(data []byte) (entity.Corpus, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: corpus file is empty", entity.ErrEmptyCorpus)
	}

	var file corpusFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse corpus JSON: %w", err)
	}

	if len(file.Questions) == 0 {
		return nil, fmt.Errorf("%w: corpus file contains no questions", entity.ErrEmptyCorpus)
	}

	for i, entry := range file.Questions {
		if strings.TrimSpace(entry.Question) == "" || entry.Answer == "" {
			return nil, fmt.Errorf("%w: entry %d needs both question and answer", entity.ErrInvalidCorpus, i)
		}
	}

	return entity.Corpus(file.Questions), nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
