package telegram

import (
	"context"
	"fmt"
	"strings"

	"gold-analyst/pkg/cache"
	"gold-analyst/pkg/middleware"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) RegisterHandlers() {
	t.bot.Use(middleware.RestrictChat(t.cfg.Telegram.ChatID))

	t.bot.Handle("/start", t.WithContext(t.handleStart))
	t.bot.Handle("/help", t.WithContext(t.handleHelp))
	t.bot.Handle("/cancel", t.WithContext(t.handleCancel))

	t.bot.Handle("/analyze", t.WithContext(t.handleAnalyze))

	t.bot.Handle("/prefs", t.WithContext(t.handlePreferences))
	t.bot.Handle("/lot", t.WithContext(t.handleLotSize))
	t.bot.Handle("/target", t.WithContext(t.handleProfitTarget))
	t.bot.Handle("/risk", t.WithContext(t.handleRiskProfile))
	t.bot.Handle(&btnRiskProfile, t.WithContext(t.handleBtnRiskProfile))

	t.bot.Handle("/history", t.WithContext(t.handleHistory))
	t.bot.Handle("/show", t.WithContext(t.handleShowHistory))
	t.bot.Handle("/delete", t.WithContext(t.handleDeleteHistory))
	t.bot.Handle(&btnHistoryShow, t.WithContext(t.handleBtnHistoryShow))
	t.bot.Handle(&btnHistoryDelete, t.WithContext(t.handleBtnHistoryDelete))
	t.bot.Handle(&btnHistoryBack, t.WithContext(t.handleBtnHistoryBack))

	t.bot.Handle(telebot.OnText, t.WithContext(t.handleConversation))
}

func (t *TelegramBotHandler) handleConversation(ctx context.Context, c telebot.Context) error {
	userID := senderID(c)
	state, ok := cache.GetFromCache[int](t.inmemoryCache, fmt.Sprintf(UserStateKey, userID))
	if !ok || state == StateIdle {
		return t.handleTextMessage(ctx, c)
	}

	switch state {
	case StateWaitingLotSize:
		return t.applyLotSize(ctx, c, c.Text())
	case StateWaitingProfitTarget:
		return t.applyProfitTarget(ctx, c, c.Text())
	default:
		t.ResetUserState(userID)
		_, err := t.telegram.Send(ctx, c, messageNoConversation)
		return err
	}
}

func (t *TelegramBotHandler) handleTextMessage(ctx context.Context, c telebot.Context) error {
	if strings.HasPrefix(c.Text(), "/") {
		return nil
	}
	_, err := t.telegram.Send(ctx, c, messageUnknownCommand)
	return err
}

func (t *TelegramBotHandler) handleCancel(ctx context.Context, c telebot.Context) error {
	userID := senderID(c)
	defer t.ResetUserState(userID)

	if state, ok := cache.GetFromCache[int](t.inmemoryCache, fmt.Sprintf(UserStateKey, userID)); ok && state != StateIdle {
		_, err := t.telegram.Send(ctx, c, "✅ Cancelled.")
		return err
	}
	return nil
}

func (t *TelegramBotHandler) SetUserState(userID int64, state int) {
	t.inmemoryCache.Set(fmt.Sprintf(UserStateKey, userID), state, userStateTTL)
}

func (t *TelegramBotHandler) ResetUserState(userID int64) {
	t.inmemoryCache.Delete(fmt.Sprintf(UserStateKey, userID))
}

func senderID(c telebot.Context) int64 {
	if c.Sender() != nil {
		return c.Sender().ID
	}
	return c.Chat().ID
}
