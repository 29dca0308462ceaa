package middleware

import (
	"context"
	"time"

	"gopkg.in/telebot.v3"
)

// WithContext gives each update a context derived from rootCtx that ends after timeout.
func WithContext(rootCtx context.Context, timeout time.Duration, handler func(ctx context.Context, c telebot.Context) error) func(c telebot.Context) error {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return func(c telebot.Context) error {
		ctx, cancel := context.WithTimeout(rootCtx, timeout)
		defer cancel()

		return handler(ctx, c)
	}
}

// RestrictChat drops updates from every chat except chatID. Zero allows all chats.
func RestrictChat(chatID int64) telebot.MiddlewareFunc {
	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			if chatID != 0 && (c.Chat() == nil || c.Chat().ID != chatID) {
				return nil
			}
			return next(c)
		}
	}
}
