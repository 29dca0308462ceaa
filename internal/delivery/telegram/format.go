package telegram

import (
	"fmt"
	"html"
	"strings"

	"gold-analyst/internal/dto"
	"gold-analyst/internal/model"
	"gold-analyst/pkg/utils"
)

func trendEmoji(trend model.Trend) string {
	switch trend {
	case model.TrendBullish:
		return "🟢"
	case model.TrendBearish:
		return "🔴"
	default:
		return "⚪"
	}
}

func joinPrices(levels []float64) string {
	if len(levels) == 0 {
		return "-"
	}
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = utils.FormatPrice(l)
	}
	return strings.Join(parts, ", ")
}

func joinText(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	escaped := make([]string, len(items))
	for i, s := range items {
		escaped[i] = html.EscapeString(s)
	}
	return strings.Join(escaped, "; ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return html.EscapeString(s)
}

// formatAnalysis renders an analysis and its plan in Telegram HTML.
func formatAnalysis(instrument, timestamp string, analysis model.Analysis, plan *model.TradePlan, prefs model.Preferences) string {
	sb := &strings.Builder{}

	sb.WriteString(fmt.Sprintf("📊 <b>%s Analysis</b>\n", html.EscapeString(instrument)))
	if timestamp != "" {
		sb.WriteString(fmt.Sprintf("🕒 %s\n", html.EscapeString(timestamp)))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s <b>Trend:</b> %s\n", trendEmoji(analysis.Trend), analysis.Trend))
	sb.WriteString(fmt.Sprintf("🏗 <b>Structure:</b> %s\n", orDash(analysis.Structure)))
	sb.WriteString(fmt.Sprintf("🌊 <b>Volatility:</b> %s\n", orDash(analysis.Volatility)))
	sb.WriteString(fmt.Sprintf("🧭 <b>Session bias:</b> %s\n", orDash(analysis.Bias)))
	sb.WriteString(fmt.Sprintf("🧱 <b>Support:</b> %s\n", joinPrices(analysis.SupportLevels)))
	sb.WriteString(fmt.Sprintf("🚧 <b>Resistance:</b> %s\n", joinPrices(analysis.ResistanceLevels)))
	sb.WriteString(fmt.Sprintf("💧 <b>Liquidity:</b> %s\n", joinText(analysis.LiquidityZones)))
	if len(analysis.NewsWarnings) > 0 {
		sb.WriteString(fmt.Sprintf("⚠️ <b>News:</b> %s\n", joinText(analysis.NewsWarnings)))
	}

	sb.WriteString("\n")
	sb.WriteString(formatPlan(plan, prefs))

	if len(analysis.GroundingSources) > 0 {
		sb.WriteString("\n📚 <b>Sources</b>\n")
		for i, src := range analysis.GroundingSources {
			title := src.Title
			if title == "" {
				title = src.URI
			}
			sb.WriteString(fmt.Sprintf("%d. <a href=\"%s\">%s</a>\n", i+1, html.EscapeString(src.URI), html.EscapeString(title)))
		}
	}
	return sb.String()
}

func formatPlan(plan *model.TradePlan, prefs model.Preferences) string {
	if plan == nil {
		return "🤷 <i>No actionable setup right now.</i>\n"
	}

	sb := &strings.Builder{}
	sb.WriteString(fmt.Sprintf("🎯 <b>Trade Plan: %s LIMIT</b>\n", plan.Direction))
	sb.WriteString(fmt.Sprintf("• Entry: <code>%s</code>\n", utils.FormatPrice(plan.EntryPrice)))
	sb.WriteString(fmt.Sprintf("• Take profit: <code>%s</code>\n", utils.FormatPrice(plan.TakeProfit)))
	sb.WriteString(fmt.Sprintf("• Stop loss: <code>%s</code>\n", utils.FormatPrice(plan.StopLoss)))
	if plan.RiskReward != "" {
		sb.WriteString(fmt.Sprintf("• R:R: %s\n", html.EscapeString(plan.RiskReward)))
	}
	if plan.Confidence > 0 {
		sb.WriteString(fmt.Sprintf("• Confidence: %s\n", utils.FormatPercent(plan.Confidence)))
	}
	if plan.TimeHorizon != "" {
		sb.WriteString(fmt.Sprintf("• Horizon: %s\n", html.EscapeString(plan.TimeHorizon)))
	}
	if exposure := dto.NewPlanExposure(plan, prefs.LotSize); exposure != nil {
		sb.WriteString(fmt.Sprintf("• At %g lot: risk %s, reward %s\n",
			exposure.LotSize, utils.FormatUSD(-exposure.RiskUSD), utils.FormatUSD(exposure.RewardUSD)))
	}
	if plan.ExpectedProfit != 0 {
		sb.WriteString(fmt.Sprintf("• Expected: %s (target $%d)\n", utils.FormatUSD(plan.ExpectedProfit), prefs.ProfitTarget))
	}
	sb.WriteString(fmt.Sprintf("• Status: %s", plan.Status))
	if plan.Timestamp != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", html.EscapeString(plan.Timestamp)))
	}
	sb.WriteString("\n")
	return sb.String()
}

func formatPreferences(prefs model.Preferences) string {
	return fmt.Sprintf("⚙️ <b>Preferences</b>\n• Lot size: <code>%g</code>\n• Profit target: <code>$%d</code>\n• Risk profile: <code>%s</code>",
		prefs.LotSize, prefs.ProfitTarget, html.EscapeString(string(prefs.RiskProfile)))
}

// historyLabel is the one-line summary used in lists and buttons.
func historyLabel(entry model.HistoryEntry) string {
	label := fmt.Sprintf("%s %s %s", trendEmoji(entry.Analysis.Trend), entry.Timestamp, entry.Analysis.Trend)
	if entry.Plan != nil {
		label += fmt.Sprintf(" | %s @ %s", entry.Plan.Direction, utils.FormatPrice(entry.Plan.EntryPrice))
	}
	return label
}

func formatHistoryList(entries []model.HistoryEntry, selectedID string, capacity int) string {
	sb := &strings.Builder{}
	sb.WriteString(fmt.Sprintf("🗂 <b>Saved analyses</b> (%d/%d)\n\n", len(entries), capacity))
	for i, e := range entries {
		marker := ""
		if e.ID == selectedID {
			marker = " 👈"
		}
		sb.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, html.EscapeString(historyLabel(e)), marker))
	}
	sb.WriteString("\nTap an entry to open it, or use /show &lt;n&gt; and /delete &lt;n&gt;.")
	return sb.String()
}
