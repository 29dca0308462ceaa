package telegram

import (
	"context"
	"net/http"
	"time"

	"gold-analyst/config"
	"gold-analyst/internal/dto"
	"gold-analyst/internal/service"
	"gold-analyst/pkg/cache"
	"gold-analyst/pkg/logger"
	"gold-analyst/pkg/middleware"
	"gold-analyst/pkg/telegram"
	"gold-analyst/pkg/utils"

	"github.com/labstack/echo/v4"
	"gopkg.in/telebot.v3"
)

type TelegramBotHandler struct {
	ctx           context.Context
	cfg           *config.Config
	bot           *telebot.Bot
	log           *logger.Logger
	telegram      *telegram.TelegramRateLimiter
	echo          *echo.Echo
	service       *service.Service
	inmemoryCache cache.Cache
	runAsync      func(fn func())
}

func NewTelegramBotHandler(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	bot *telebot.Bot,
	telegram *telegram.TelegramRateLimiter,
	echo *echo.Echo,
	service *service.Service,
	inmemoryCache cache.Cache,
) *TelegramBotHandler {
	return &TelegramBotHandler{
		ctx:           ctx,
		cfg:           cfg,
		log:           log,
		bot:           bot,
		telegram:      telegram,
		echo:          echo,
		service:       service,
		inmemoryCache: inmemoryCache,
		runAsync:      utils.GoSafe,
	}
}

// Setup registers the command handlers and, in webhook mode, the webhook route.
// It must run before the HTTP server starts.
func (t *TelegramBotHandler) Setup() {
	t.RegisterHandlers()

	if t.cfg.Telegram.WebhookURL == "" {
		return
	}
	t.log.Info("Setting webhook URL", logger.StringField("webhook_url", t.cfg.Telegram.WebhookURL))
	if err := t.bot.SetWebhook(&telebot.Webhook{
		Endpoint: &telebot.WebhookEndpoint{PublicURL: t.cfg.Telegram.WebhookURL},
	}); err != nil {
		t.log.Error("Failed to set telegram webhook", logger.ErrorField(err))
	}
	t.echo.POST("/api/v1/telegram/webhook", t.handleWebhook)
}

// Start receives updates by long polling until Stop is called. In webhook mode
// updates arrive through the HTTP server and Start returns immediately.
func (t *TelegramBotHandler) Start() {
	if t.cfg.Telegram.WebhookURL != "" {
		t.log.Info("Telegram bot receiving updates via webhook")
		return
	}
	t.log.Info("Starting Telegram bot long polling...")
	t.bot.Start()
}

func (t *TelegramBotHandler) handleWebhook(c echo.Context) error {
	var update telebot.Update
	if err := c.Bind(&update); err != nil {
		t.log.ErrorContext(t.ctx, "Cannot bind JSON", logger.ErrorField(err))
		badRequest := dto.NewBadRequestResponse(err.Error())
		return c.JSON(http.StatusBadRequest, badRequest)
	}
	t.bot.ProcessUpdate(update)
	return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "ok", nil))
}

func (t *TelegramBotHandler) Stop() {
	t.log.Info("Stopping Telegram bot...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopDone := make(chan struct{})
	go func() {
		if t.cfg.Telegram.WebhookURL == "" {
			t.bot.Stop()
		}
		close(stopDone)
	}()

	select {
	case <-stopDone:
		t.log.Info("Telegram bot stopped successfully")
	case <-ctx.Done():
		t.log.Warn("Timeout while stopping bot, forcing shutdown")
	}
}

func (t *TelegramBotHandler) WithContext(handler func(ctx context.Context, c telebot.Context) error) func(c telebot.Context) error {
	return middleware.WithContext(t.ctx, t.cfg.Telegram.TimeoutDuration, handler)
}
