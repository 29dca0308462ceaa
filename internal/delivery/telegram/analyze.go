package telegram

import (
	"context"
	"errors"
	"time"

	"gold-analyst/internal/model"
	"gold-analyst/pkg/logger"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) handleAnalyze(ctx context.Context, c telebot.Context) error {
	if t.service.SessionService.Status() == model.SessionRunning {
		_, err := t.telegram.Send(ctx, c, messageAnalysisInFlight)
		return err
	}

	msg, err := t.telegram.Send(ctx, c, messageAnalysisRunning)
	if err != nil {
		return err
	}

	t.runAsync(func() {
		newCtx, cancel := context.WithTimeout(t.ctx, t.analysisTimeout())
		defer cancel()

		result, err := t.service.SessionService.TriggerAnalysis(newCtx)
		if errors.Is(err, model.ErrAnalysisInProgress) {
			t.edit(newCtx, c, msg, messageAnalysisInFlight)
			return
		}
		if err != nil {
			t.log.DebugContext(newCtx, "Telegram analysis failed", logger.ErrorField(err))
			t.edit(newCtx, c, msg, "❌ "+model.AnalysisFailedMessage)
			return
		}

		state := t.service.SessionService.State()
		timestamp := ""
		if len(state.History) > 0 && state.History[0].ID == result.Analysis.ID {
			timestamp = state.History[0].Timestamp
		}
		text := formatAnalysis(t.cfg.App.Instrument, timestamp, result.Analysis, result.Plan, state.Preferences)
		t.edit(newCtx, c, msg, text, telebot.ModeHTML, telebot.NoPreview)
	})
	return nil
}

func (t *TelegramBotHandler) analysisTimeout() time.Duration {
	if t.cfg.Scheduler.TimeoutDuration > 0 {
		return t.cfg.Scheduler.TimeoutDuration
	}
	return 3 * time.Minute
}

func (t *TelegramBotHandler) edit(ctx context.Context, c telebot.Context, msg *telebot.Message, what interface{}, opts ...interface{}) {
	if _, err := t.telegram.Edit(ctx, c, msg, what, opts...); err != nil {
		t.log.ErrorContext(ctx, "Failed to edit message", logger.ErrorField(err))
	}
}

// NotifyResult pushes a scheduled analysis to the configured chat.
func (t *TelegramBotHandler) NotifyResult(ctx context.Context, result *model.AnalysisResult) {
	if t.cfg.Telegram.ChatID == 0 || result == nil {
		return
	}
	state := t.service.SessionService.State()
	timestamp := ""
	if len(state.History) > 0 && state.History[0].ID == result.Analysis.ID {
		timestamp = state.History[0].Timestamp
	}
	text := "⏰ <b>Scheduled analysis</b>\n\n" + formatAnalysis(t.cfg.App.Instrument, timestamp, result.Analysis, result.Plan, state.Preferences)
	if _, err := t.telegram.SendTo(ctx, t.cfg.Telegram.ChatID, text, telebot.ModeHTML, telebot.NoPreview); err != nil {
		t.log.ErrorContext(ctx, "Failed to send scheduled analysis", logger.ErrorField(err))
	}
}
