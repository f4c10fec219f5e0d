package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/futig/faq-assistant/internal/config"
	"github.com/futig/faq-assistant/internal/telegram/handlers"
	"github.com/futig/faq-assistant/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	mu       sync.Mutex
	updates  chan tgbotapi.Update
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 10)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var texts []string
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

type recordingHandler struct {
	route    string
	err      error
	messages chan *handlers.Message
}

func newRecordingHandler(route string) *recordingHandler {
	return &recordingHandler{route: route, messages: make(chan *handlers.Message, 10)}
}

func (h *recordingHandler) Handle(_ context.Context, msg *handlers.Message) error {
	h.messages <- msg
	return h.err
}

func (h *recordingHandler) GetRoute() string { return h.route }

func testConfig() *config.TelegramConfig {
	return &config.TelegramConfig{
		UpdateTimeout:      1,
		RateLimitPerMinute: 60,
		RateLimitBurst:     10,
		ShutdownTimeout:    1,
	}
}

func receive(t *testing.T, ch <-chan *handlers.Message) *handlers.Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("handler was not called")
		return nil
	}
}

func startBot(t *testing.T, api *fakeAPI, hs ...handlers.Handler) *Bot {
	t.Helper()

	b := New(api, testConfig(), zap.NewNop())
	for _, h := range hs {
		require.NoError(t, b.RegisterHandler(h))
	}
	require.NoError(t, b.Start(context.Background()))
	t.Cleanup(func() { _ = b.Stop() })
	return b
}

func TestBot_RoutesTextAndCommands(t *testing.T) {
	api := newFakeAPI()
	text := newRecordingHandler(handlers.RouteText)
	commands := newRecordingHandler(handlers.RouteCommand)
	startBot(t, api, text, commands)

	api.updates <- tgbotapi.Update{UpdateID: 1, Message: &tgbotapi.Message{
		MessageID: 3,
		From:      &tgbotapi.User{ID: 9},
		Chat:      &tgbotapi.Chat{ID: 5},
		Text:      "What does EVA do?",
	}}

	msg := receive(t, text.messages)
	assert.Equal(t, int64(5), msg.ChatID)
	assert.Equal(t, int64(9), msg.UserID)
	assert.Equal(t, 3, msg.MessageID)
	assert.Equal(t, "What does EVA do?", msg.Text)

	api.updates <- tgbotapi.Update{UpdateID: 2, Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 9},
		Chat:     &tgbotapi.Chat{ID: 5},
		Text:     "/threshold 1.5",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len("/threshold")}},
	}}

	cmd := receive(t, commands.messages)
	assert.Equal(t, "threshold", cmd.Command)
	assert.Equal(t, "1.5", cmd.CommandArgs)
	assert.Empty(t, cmd.Text)
}

func TestBot_CallbackIsAnsweredAndRouted(t *testing.T) {
	api := newFakeAPI()
	callbacks := newRecordingHandler(handlers.RouteCallback)
	startBot(t, api, callbacks)

	api.updates <- tgbotapi.Update{UpdateID: 1, CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: 9},
		Message: &tgbotapi.Message{MessageID: 4, Chat: &tgbotapi.Chat{ID: 5}},
		Data:    "action:reset",
	}}

	msg := receive(t, callbacks.messages)
	assert.Equal(t, "action:reset", msg.CallbackData)
	assert.Equal(t, "cb-1", msg.CallbackID)

	api.mu.Lock()
	defer api.mu.Unlock()
	require.NotEmpty(t, api.requests)
	answer, ok := api.requests[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "cb-1", answer.CallbackQueryID)
}

func TestBot_HandlerErrorSendsGenericMessage(t *testing.T) {
	api := newFakeAPI()
	text := newRecordingHandler(handlers.RouteText)
	text.err = errors.New("boom")
	b := startBot(t, api, text)

	api.updates <- tgbotapi.Update{UpdateID: 1, Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 1},
		Chat: &tgbotapi.Chat{ID: 2},
		Text: "hi",
	}}
	receive(t, text.messages)

	require.NoError(t, b.Stop())
	assert.Contains(t, api.sentTexts(), render.ErrGeneric)
}

func TestBot_NonTextMessage(t *testing.T) {
	api := newFakeAPI()
	b := startBot(t, api, newRecordingHandler(handlers.RouteText))

	api.updates <- tgbotapi.Update{UpdateID: 1, Message: &tgbotapi.Message{
		From:  &tgbotapi.User{ID: 1},
		Chat:  &tgbotapi.Chat{ID: 2},
		Photo: []tgbotapi.PhotoSize{{FileID: "x"}},
	}}

	assert.Eventually(t, func() bool {
		for _, text := range api.sentTexts() {
			if text == render.ErrTextOnly {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, b.Stop())
}

func TestBot_RegisterHandlerRejectsUnknownRoute(t *testing.T) {
	b := New(newFakeAPI(), testConfig(), zap.NewNop())
	assert.Error(t, b.RegisterHandler(newRecordingHandler("ASK_USER_GOAL")))
}
