package telegram

import "gopkg.in/telebot.v3"

var (
	btnRiskProfile   telebot.Btn = telebot.Btn{Unique: "btn_risk_profile"}
	btnHistoryShow   telebot.Btn = telebot.Btn{Unique: "btn_history_show"}
	btnHistoryDelete telebot.Btn = telebot.Btn{Unique: "btn_history_delete"}
	btnHistoryBack   telebot.Btn = telebot.Btn{Text: "⬅️ Back to history", Unique: "btn_history_back"}
)

const (
	messageAnalysisRunning   = "⏳ Analyzing XAU/USD, this can take a minute..."
	messageAnalysisInFlight  = "⏳ An analysis is already running. Please wait for it to finish."
	messageNoConversation    = "You are not in an active conversation. Use /help to see the available commands."
	messageUnknownCommand    = "I don't recognize that. Use /help to see the available commands."
	messageHistoryEmpty      = "📭 No saved analyses yet. Run /analyze to create one."
	messageHistoryNotFound   = "❌ That analysis is no longer in history."
	messageInvalidLotSize    = "❌ Lot size must be a positive number, e.g. 0.05"
	messageInvalidTarget     = "❌ Profit target must be a positive whole dollar amount, e.g. 150"
	messageAskLotSize        = "Send the lot size to use (e.g. 0.05), or /cancel."
	messageAskProfitTarget   = "Send the profit target in USD (e.g. 150), or /cancel."
	messageChooseRiskProfile = "Choose a risk profile:"
	commonErrorInternal      = "Something went wrong, please try again."
)
