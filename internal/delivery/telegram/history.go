package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"gold-analyst/internal/model"
	"gold-analyst/pkg/logger"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) historyView() (string, *telebot.ReplyMarkup) {
	state := t.service.SessionService.State()
	history := state.History
	if len(history) == 0 {
		return messageHistoryEmpty, &telebot.ReplyMarkup{}
	}

	limit := t.cfg.Telegram.MaxShowHistory
	if limit <= 0 || limit > len(history) {
		limit = len(history)
	}
	shown := history[:limit]

	menu := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(shown))
	for i, e := range shown {
		rows = append(rows, menu.Row(
			menu.Data(strconv.Itoa(i+1)+". "+historyLabel(e), btnHistoryShow.Unique, e.ID),
			menu.Data("🗑", btnHistoryDelete.Unique, e.ID),
		))
	}
	menu.Inline(rows...)
	return formatHistoryList(shown, state.SelectedID, len(history)), menu
}

func (t *TelegramBotHandler) handleHistory(ctx context.Context, c telebot.Context) error {
	text, menu := t.historyView()
	_, err := t.telegram.Send(ctx, c, text, menu, telebot.ModeHTML)
	return err
}

// resolveHistoryID accepts a 1-based position from /history or a full id.
func (t *TelegramBotHandler) resolveHistoryID(arg string) string {
	arg = strings.TrimSpace(arg)
	if n, err := strconv.Atoi(arg); err == nil {
		history := t.service.SessionService.History()
		if n >= 1 && n <= len(history) {
			return history[n-1].ID
		}
	}
	return arg
}

func (t *TelegramBotHandler) handleShowHistory(ctx context.Context, c telebot.Context) error {
	if len(c.Args()) == 0 {
		return t.handleHistory(ctx, c)
	}
	return t.showHistory(ctx, c, t.resolveHistoryID(c.Args()[0]), nil)
}

func (t *TelegramBotHandler) handleDeleteHistory(ctx context.Context, c telebot.Context) error {
	if len(c.Args()) == 0 {
		return t.handleHistory(ctx, c)
	}
	id := t.resolveHistoryID(c.Args()[0])
	if _, err := t.service.SessionService.GetHistory(id); err != nil {
		_, err := t.telegram.Send(ctx, c, messageHistoryNotFound)
		return err
	}
	if err := t.service.SessionService.DeleteHistory(ctx, id); err != nil {
		_, err := t.telegram.Send(ctx, c, commonErrorInternal)
		return err
	}
	_, err := t.telegram.Send(ctx, c, "🗑 Analysis deleted.")
	return err
}

func (t *TelegramBotHandler) handleBtnHistoryShow(ctx context.Context, c telebot.Context) error {
	if err := t.telegram.Respond(ctx, c); err != nil {
		t.log.ErrorContext(ctx, "Failed to respond callback", logger.ErrorField(err))
	}
	return t.showHistory(ctx, c, c.Data(), c.Message())
}

func (t *TelegramBotHandler) handleBtnHistoryDelete(ctx context.Context, c telebot.Context) error {
	if err := t.service.SessionService.DeleteHistory(ctx, c.Data()); err != nil {
		return t.telegram.Respond(ctx, c, &telebot.CallbackResponse{Text: commonErrorInternal})
	}
	if err := t.telegram.Respond(ctx, c, &telebot.CallbackResponse{Text: "Deleted"}); err != nil {
		t.log.ErrorContext(ctx, "Failed to respond callback", logger.ErrorField(err))
	}
	text, menu := t.historyView()
	_, err := t.telegram.Edit(ctx, c, c.Message(), text, menu, telebot.ModeHTML)
	return err
}

func (t *TelegramBotHandler) handleBtnHistoryBack(ctx context.Context, c telebot.Context) error {
	if err := t.telegram.Respond(ctx, c); err != nil {
		t.log.ErrorContext(ctx, "Failed to respond callback", logger.ErrorField(err))
	}
	text, menu := t.historyView()
	_, err := t.telegram.Edit(ctx, c, c.Message(), text, menu, telebot.ModeHTML)
	return err
}

// showHistory selects the entry and renders it, editing msg when given.
func (t *TelegramBotHandler) showHistory(ctx context.Context, c telebot.Context, id string, msg *telebot.Message) error {
	entry, err := t.service.SessionService.SelectHistory(id)
	if errors.Is(err, model.ErrHistoryNotFound) {
		_, err := t.telegram.Send(ctx, c, messageHistoryNotFound)
		return err
	}
	if err != nil {
		return err
	}

	text := formatAnalysis(t.cfg.App.Instrument, entry.Timestamp, entry.Analysis, entry.Plan, entry.Preferences) +
		"\n" + formatPreferences(entry.Preferences)

	menu := &telebot.ReplyMarkup{}
	menu.Inline(menu.Row(
		menu.Data(btnHistoryBack.Text, btnHistoryBack.Unique),
		menu.Data("🗑 Delete", btnHistoryDelete.Unique, entry.ID),
	))

	if msg != nil {
		_, err = t.telegram.Edit(ctx, c, msg, text, menu, telebot.ModeHTML, telebot.NoPreview)
		return err
	}
	_, err = t.telegram.Send(ctx, c, text, menu, telebot.ModeHTML, telebot.NoPreview)
	return err
}
