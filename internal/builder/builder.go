package builder

import (
	"fmt"
	"net/http"
	"time"

	"github.com/futig/faq-assistant/internal/api"
	chatapi "github.com/futig/faq-assistant/internal/api/chat"
	"github.com/futig/faq-assistant/internal/config"
	"github.com/futig/faq-assistant/internal/integration/llm"
	"github.com/futig/faq-assistant/internal/matcher"
	"github.com/futig/faq-assistant/internal/pkg/formatter"
	"github.com/futig/faq-assistant/internal/pkg/validator"
	"github.com/futig/faq-assistant/internal/repository"
	"github.com/futig/faq-assistant/internal/telegram"
	"github.com/futig/faq-assistant/internal/usecase/chat"
	"go.uber.org/zap"
)

// requestTimeoutMargin keeps the HTTP deadline above the generative service deadline
const requestTimeoutMargin = 5 * time.Second

// components are shared by the HTTP server and the Telegram bot
type components struct {
	cfg        *config.Config
	logger     *zap.Logger
	sessionUC  *chat.ChatUsecase
	validator  *validator.Validator
	formatters *formatter.Factory
}

func buildComponents() (*components, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.Int("corpus_size", len(cfg.Corpus)),
	)

	// Initialize matcher
	bm25, err := NewMatcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("build matcher: %w", err)
	}
	logger.Info("Matcher initialized",
		zap.Float64("threshold", cfg.MatcherCfg.Threshold),
		zap.Bool("normalize", cfg.MatcherCfg.Normalize),
	)

	// Initialize generative service connector (with mock support)
	completer := NewCompleter(cfg, logger)

	// Initialize repositories
	sessionRepo := repository.NewSessionMemory(cfg.SessionCfg.TTL, cfg.SessionCfg.CleanupInterval)
	logger.Info("Repositories initialized", zap.Duration("session_ttl", cfg.SessionCfg.TTL))

	// Initialize use cases
	orchestrator := chat.NewOrchestrator(bm25, completer, OrchestratorConfig(cfg))
	sessionUC := chat.NewUsecase(sessionRepo, orchestrator, logger)
	logger.Info("Use cases initialized")

	return &components{
		cfg:        cfg,
		logger:     logger,
		sessionUC:  sessionUC,
		validator:  validator.NewValidator(cfg.InputCfg),
		formatters: formatter.NewFactory(),
	}, nil
}

// NewMatcher indexes the configured corpus
func NewMatcher(cfg *config.Config) (*matcher.Matcher, error) {
	opts := []matcher.Option{
		matcher.WithK1(cfg.MatcherCfg.K1),
		matcher.WithB(cfg.MatcherCfg.B),
		matcher.WithEpsilon(cfg.MatcherCfg.Epsilon),
	}
	if cfg.MatcherCfg.Normalize {
		opts = append(opts, matcher.WithTokenizer(matcher.NormalizingTokenizer))
	}

	return matcher.New(cfg.Corpus, opts...)
}

// NewCompleter picks the generative service connector from the configuration
func NewCompleter(cfg *config.Config, logger *zap.Logger) chat.Completer {
	if cfg.EnableMocks {
		logger.Info("Using mock connector for the generative service")
		return llm.NewMockConnector()
	}

	logger.Info("Using real connector for the generative service",
		zap.String("provider", cfg.LLMConnectorCfg.Provider),
		zap.String("model", cfg.LLMConnectorCfg.Model),
	)

	if cfg.LLMConnectorCfg.Provider == "http" {
		return llm.NewConnector(cfg.LLMConnectorCfg)
	}
	return llm.NewOpenAIConnector(cfg.LLMConnectorCfg)
}

// OrchestratorConfig maps the configuration onto the turn policy
func OrchestratorConfig(cfg *config.Config) chat.OrchestratorConfig {
	return chat.OrchestratorConfig{
		Threshold:         cfg.MatcherCfg.Threshold,
		Model:             cfg.LLMConnectorCfg.Model,
		Temperature:       cfg.LLMConnectorCfg.Temperature,
		MaxTokens:         cfg.LLMConnectorCfg.MaxTokens,
		DefaultCredential: cfg.LLMConnectorCfg.APIKey,
		FallbackTimeout:   cfg.LLMConnectorCfg.RequestTimeout,
	}
}

func Build() (*App, error) {
	c, err := buildComponents()
	if err != nil {
		return nil, err
	}

	// Setup API handlers
	chatHandler := chatapi.NewHandler(c.sessionUC, c.validator, c.formatters)
	c.logger.Info("API handlers initialized")

	// Setup router
	requestTimeout := c.cfg.LLMConnectorCfg.RequestTimeout + requestTimeoutMargin
	router := api.SetupRouter(chatHandler, c.logger, requestTimeout)
	c.logger.Info("HTTP router configured", zap.Duration("request_timeout", requestTimeout))

	// Create HTTP server
	server := &http.Server{
		Addr:         c.cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	c.logger.Info("Application built successfully",
		zap.String("environment", c.cfg.Environment),
		zap.String("server_addr", c.cfg.ServerAddr),
	)

	return &App{
		server: server,
		logger: c.logger,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (telegram.Bot, *zap.Logger, error) {
	c, err := buildComponents()
	if err != nil {
		return nil, nil, err
	}

	if c.cfg.TelegramCfg.BotToken == "" {
		return nil, c.logger, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	chatSessions := repository.NewChatSessionMemory(c.cfg.SessionCfg.TTL, c.cfg.SessionCfg.CleanupInterval)

	bot, err := telegram.NewBot(&c.cfg.TelegramCfg, chatSessions, c.sessionUC, c.validator, c.formatters, c.logger)
	if err != nil {
		return nil, c.logger, fmt.Errorf("initialize telegram bot: %w", err)
	}

	c.logger.Info("Telegram bot built successfully",
		zap.String("environment", c.cfg.Environment),
	)

	return bot, c.logger, nil
}
