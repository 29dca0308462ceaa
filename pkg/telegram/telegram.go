package telegram

import (
	"context"
	"strconv"
	"sync"
	"time"

	"gold-analyst/config"
	"gold-analyst/pkg/logger"
	"gold-analyst/pkg/ratelimit"
	"gold-analyst/pkg/utils"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// Bot is the part of *telebot.Bot the rate limiter sends through.
type Bot interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
	Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error)
	Delete(msg telebot.Editable) error
}

// TelegramRateLimiter sends through the bot while respecting the global,
// per-user and per-chat Telegram limits.
type TelegramRateLimiter struct {
	cfg           *config.TelegramConfig
	log           *logger.Logger
	bot           Bot
	globalLimiter *rate.Limiter
	userLimiters  *ratelimit.LimiterStore
	chatLimiters  *ratelimit.LimiterStore
	editMu        sync.Mutex
	wg            sync.WaitGroup
}

func NewTelegramRateLimiter(cfg *config.TelegramConfig, log *logger.Logger, bot Bot) *TelegramRateLimiter {
	global := perSecond(cfg.MaxGlobalRequestPerSecond, 30)
	user := perSecond(cfg.MaxUserRequestPerSecond, 1)

	return &TelegramRateLimiter{
		cfg:           cfg,
		log:           log,
		bot:           bot,
		globalLimiter: rate.NewLimiter(rate.Limit(global), global),
		userLimiters:  ratelimit.NewLimiterStore(rate.Limit(user), user),
		chatLimiters:  ratelimit.NewLimiterStore(rate.Limit(user), user),
	}
}

func perSecond(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func (t *TelegramRateLimiter) Send(ctx context.Context, c telebot.Context, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	if err := t.checkRateLimit(ctx, senderID(c), c.Chat().ID); err != nil {
		return nil, err
	}
	msg, err := t.bot.Send(c.Chat(), what, opts...)
	if err != nil {
		t.log.ErrorContext(ctx, "Failed to send message", logger.ErrorField(err))
		return nil, err
	}
	return msg, nil
}

// SendTo pushes a message to a chat outside of any update (scheduled results, alerts).
func (t *TelegramRateLimiter) SendTo(ctx context.Context, chatID int64, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	if err := t.checkRateLimit(ctx, chatID, chatID); err != nil {
		return nil, err
	}
	return t.bot.Send(&telebot.Chat{ID: chatID}, what, opts...)
}

func (t *TelegramRateLimiter) Edit(ctx context.Context, c telebot.Context, msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	if err := t.checkRateLimit(ctx, senderID(c), c.Chat().ID); err != nil {
		return nil, err
	}

	t.editMu.Lock()
	defer t.editMu.Unlock()
	return t.bot.Edit(msg, what, opts...)
}

func (t *TelegramRateLimiter) Delete(ctx context.Context, c telebot.Context, msg telebot.Editable) error {
	if err := t.checkRateLimit(ctx, senderID(c), c.Chat().ID); err != nil {
		return err
	}
	t.editMu.Lock()
	defer t.editMu.Unlock()
	return t.bot.Delete(msg)
}

func (t *TelegramRateLimiter) Respond(ctx context.Context, c telebot.Context, resp ...*telebot.CallbackResponse) error {
	if err := t.checkRateLimit(ctx, senderID(c), c.Chat().ID); err != nil {
		return err
	}
	return c.Respond(resp...)
}

func senderID(c telebot.Context) int64 {
	if c.Sender() != nil {
		return c.Sender().ID
	}
	return c.Chat().ID
}

func (t *TelegramRateLimiter) checkRateLimit(ctx context.Context, senderID int64, chatID int64) error {
	chatLimiter := t.chatLimiters.GetLimiter(strconv.FormatInt(chatID, 10))
	userLimiter := t.userLimiters.GetLimiter(strconv.FormatInt(senderID, 10))

	if err := chatLimiter.Wait(ctx); err != nil {
		t.log.ErrorContext(ctx, "Failed to wait for chat rate limit", logger.ErrorField(err))
		return err
	}
	if err := t.globalLimiter.Wait(ctx); err != nil {
		t.log.ErrorContext(ctx, "Failed to wait for global rate limit", logger.ErrorField(err))
		return err
	}
	if err := userLimiter.Wait(ctx); err != nil {
		t.log.ErrorContext(ctx, "Failed to wait for user rate limit", logger.ErrorField(err))
		return err
	}
	return nil
}

func (t *TelegramRateLimiter) StartCleanupExpired(ctx context.Context) {
	interval := t.cfg.RateLimitCleanupDuration
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	expire := t.cfg.RateLimitExpireDuration
	if expire <= 0 {
		expire = 30 * time.Minute
	}

	t.wg.Add(1)
	utils.GoSafe(func() {
		defer t.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				t.log.Info("Received signal to stop Telegram rate limiter cleanup expired")
				return
			case <-ticker.C:
				removed := t.userLimiters.Cleanup(expire) + t.chatLimiters.Cleanup(expire)
				if removed > 0 {
					t.log.Debug("Removed idle Telegram limiters", logger.IntField("removed", removed))
				}
			}
		}
	})
}

func (t *TelegramRateLimiter) StopCleanupExpired() {
	t.wg.Wait()
	t.log.Info("Telegram rate limiter stopped")
}
