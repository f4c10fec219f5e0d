package telegram

import (
	"context"
	"fmt"

	"github.com/futig/faq-assistant/internal/config"
	"github.com/futig/faq-assistant/internal/pkg/formatter"
	"github.com/futig/faq-assistant/internal/pkg/validator"
	"github.com/futig/faq-assistant/internal/telegram/bot"
	"github.com/futig/faq-assistant/internal/telegram/handlers"
	"github.com/futig/faq-assistant/internal/telegram/keyboard"
	"github.com/futig/faq-assistant/internal/telegram/state"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot authorizes the token and wires the handlers
func NewBot(
	cfg *config.TelegramConfig,
	storage state.Storage,
	chatUC handlers.ChatUsecase,
	validator *validator.Validator,
	formats *formatter.Factory,
	logger *zap.Logger,
) (Bot, error) {
	api, err := bot.NewAPI(cfg, logger)
	if err != nil {
		return nil, err
	}

	b, err := newBot(api, cfg, storage, chatUC, validator, formats, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("telegram bot initialized successfully")
	return b, nil
}

func newBot(
	api bot.Updater,
	cfg *config.TelegramConfig,
	storage state.Storage,
	chatUC handlers.ChatUsecase,
	validator *validator.Validator,
	formats *formatter.Factory,
	logger *zap.Logger,
) (*bot.Bot, error) {
	stateManager := state.NewManager(storage, chatUC)
	sender := handlers.NewMessageSender(api, &cfg.SendRetry)
	kb := keyboard.NewBuilder()

	b := bot.New(api, cfg, logger)

	registered := []handlers.Handler{
		handlers.NewChatHandler(api, sender, stateManager, chatUC, validator, kb),
		handlers.NewCommandHandler(sender, stateManager, chatUC, validator, formats, kb),
		handlers.NewCallbackHandler(sender, stateManager, chatUC, formats, kb),
	}
	for _, h := range registered {
		if err := b.RegisterHandler(h); err != nil {
			return nil, fmt.Errorf("register handler: %w", err)
		}
	}

	return b, nil
}
