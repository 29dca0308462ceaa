package telegram

import (
	"context"

	"gopkg.in/telebot.v3"
)

const commandList = `📈 /analyze - Run a fresh XAU/USD analysis
⚙️ /prefs - Show your lot size, profit target and risk profile
📏 /lot <size> - Set the lot size (e.g. /lot 0.1)
🎯 /target <usd> - Set the profit target (e.g. /target 200)
🛡 /risk <profile> - Conservative, Balanced or Aggressive
🗂 /history - Browse saved analyses
🔍 /show <n|id> - Open a saved analysis
🗑 /delete <n|id> - Delete a saved analysis
❌ /cancel - Cancel the current input`

func (t *TelegramBotHandler) handleStart(ctx context.Context, c telebot.Context) error {
	message := "👋 <b>Welcome to Gold Analyst!</b> 🤖\n" +
		"I produce support/resistance based technical analysis for XAU/USD with one planned limit order per run.\n\n" +
		commandList +
		"\n\n🚀 Try /analyze to get your first analysis."
	_, err := t.telegram.Send(ctx, c, message, telebot.ModeHTML)
	return err
}

func (t *TelegramBotHandler) handleHelp(ctx context.Context, c telebot.Context) error {
	message := "❓ <b>How to use Gold Analyst</b>\n\n" +
		commandList +
		"\n\n💡 <b>Tips</b>\n" +
		"1. Set /lot and /risk before running /analyze; every run uses the current preferences.\n" +
		"2. Opening a saved analysis also restores the preferences it was made with.\n" +
		"3. Plans are limit orders: wait for price to reach the entry.\n\n" +
		"📌 Analyses are generated automatically. Always do your own research."
	_, err := t.telegram.Send(ctx, c, message, telebot.ModeHTML)
	return err
}
