package telegram

import (
	"context"
	"math"
	"strconv"
	"strings"

	"gold-analyst/internal/model"
	"gold-analyst/pkg/logger"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) handlePreferences(ctx context.Context, c telebot.Context) error {
	_, err := t.telegram.Send(ctx, c, formatPreferences(t.service.SessionService.Preferences()), telebot.ModeHTML)
	return err
}

func (t *TelegramBotHandler) handleLotSize(ctx context.Context, c telebot.Context) error {
	if len(c.Args()) == 0 {
		t.SetUserState(senderID(c), StateWaitingLotSize)
		_, err := t.telegram.Send(ctx, c, messageAskLotSize)
		return err
	}
	return t.applyLotSize(ctx, c, c.Args()[0])
}

func (t *TelegramBotHandler) handleProfitTarget(ctx context.Context, c telebot.Context) error {
	if len(c.Args()) == 0 {
		t.SetUserState(senderID(c), StateWaitingProfitTarget)
		_, err := t.telegram.Send(ctx, c, messageAskProfitTarget)
		return err
	}
	return t.applyProfitTarget(ctx, c, c.Args()[0])
}

func (t *TelegramBotHandler) applyLotSize(ctx context.Context, c telebot.Context, input string) error {
	lot, err := parseLotSize(input)
	if err != nil {
		_, err := t.telegram.Send(ctx, c, messageInvalidLotSize)
		return err
	}
	t.ResetUserState(senderID(c))
	prefs := t.service.SessionService.UpdatePreferences(model.PreferencesPatch{LotSize: &lot})
	t.log.InfoContext(ctx, "Lot size updated", logger.FloatField("lot_size", lot))
	_, err = t.telegram.Send(ctx, c, "✅ Lot size updated.\n\n"+formatPreferences(prefs), telebot.ModeHTML)
	return err
}

func (t *TelegramBotHandler) applyProfitTarget(ctx context.Context, c telebot.Context, input string) error {
	target, err := parseProfitTarget(input)
	if err != nil {
		_, err := t.telegram.Send(ctx, c, messageInvalidTarget)
		return err
	}
	t.ResetUserState(senderID(c))
	prefs := t.service.SessionService.UpdatePreferences(model.PreferencesPatch{ProfitTarget: &target})
	t.log.InfoContext(ctx, "Profit target updated", logger.IntField("profit_target", target))
	_, err = t.telegram.Send(ctx, c, "✅ Profit target updated.\n\n"+formatPreferences(prefs), telebot.ModeHTML)
	return err
}

func (t *TelegramBotHandler) handleRiskProfile(ctx context.Context, c telebot.Context) error {
	if len(c.Args()) > 0 {
		return t.applyRiskProfile(ctx, c, c.Args()[0])
	}

	menu := &telebot.ReplyMarkup{}
	buttons := make([]telebot.Btn, 0, len(model.RiskProfiles()))
	for _, r := range model.RiskProfiles() {
		buttons = append(buttons, menu.Data(string(r), btnRiskProfile.Unique, string(r)))
	}
	menu.Inline(menu.Row(buttons...))
	_, err := t.telegram.Send(ctx, c, messageChooseRiskProfile, menu)
	return err
}

func (t *TelegramBotHandler) handleBtnRiskProfile(ctx context.Context, c telebot.Context) error {
	if err := t.telegram.Respond(ctx, c); err != nil {
		t.log.ErrorContext(ctx, "Failed to respond callback", logger.ErrorField(err))
	}
	return t.applyRiskProfile(ctx, c, c.Data())
}

func (t *TelegramBotHandler) applyRiskProfile(ctx context.Context, c telebot.Context, input string) error {
	risk, err := model.ParseRiskProfile(input)
	if err != nil {
		_, err := t.telegram.Send(ctx, c, "❌ Unknown risk profile. Use Conservative, Balanced or Aggressive.")
		return err
	}
	prefs := t.service.SessionService.UpdatePreferences(model.PreferencesPatch{RiskProfile: &risk})
	_, err = t.telegram.Send(ctx, c, "✅ Risk profile updated.\n\n"+formatPreferences(prefs), telebot.ModeHTML)
	return err
}

func parseLotSize(input string) (float64, error) {
	lot, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(input, ",", ".")), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(lot) || math.IsInf(lot, 0) || lot <= 0 {
		return 0, strconv.ErrRange
	}
	return lot, nil
}

func parseProfitTarget(input string) (int, error) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(input), "$")
	target, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, err
	}
	if target <= 0 {
		return 0, strconv.ErrRange
	}
	return target, nil
}
