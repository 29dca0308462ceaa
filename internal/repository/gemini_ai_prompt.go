package repository

import (
	"fmt"
	"math"
	"strings"

	"gold-analyst/internal/dto"
	"gold-analyst/internal/model"

	"google.golang.org/genai"
)

// DefaultInstrument is the only symbol the analyst covers.
const DefaultInstrument = "XAU/USD"

var riskInstructions = map[model.RiskProfile]string{
	model.RiskConservative: "Conservative profile: prioritize wide, high-reliability reversal zones on higher timeframes (H4/D1). " +
		"Place the entry only at a major support/resistance confluence, keep the stop beyond the zone and favour a high win probability over reward size.",
	model.RiskBalanced: "Balanced profile: use mid-timeframe (H1/H4) swing levels. " +
		"Target a reward:risk near 1:2 to 1:3 with the stop behind the most recent swing.",
	model.RiskAggressive: "Aggressive profile: use short-timeframe (M5/M15) momentum and breakout zones. " +
		"Keep the stop distance tight and choose a reward-maximizing target even at a lower estimated win probability.",
}

// RiskInstruction returns the fixed instruction fragment for a profile.
func RiskInstruction(profile model.RiskProfile) (string, bool) {
	s, ok := riskInstructions[profile]
	return s, ok
}

// BuildAnalysisRequest derives the provider request from preferences. It does no I/O.
func BuildAnalysisRequest(instrument string, prefs model.Preferences, enableSearch bool) (dto.AnalysisRequest, error) {
	if math.IsNaN(prefs.LotSize) || math.IsInf(prefs.LotSize, 0) || prefs.LotSize <= 0 {
		return dto.AnalysisRequest{}, fmt.Errorf("%w: lot size must be a positive number, got %v", model.ErrRequestBuild, prefs.LotSize)
	}
	if prefs.ProfitTarget <= 0 {
		return dto.AnalysisRequest{}, fmt.Errorf("%w: profit target must be a positive amount, got %d", model.ErrRequestBuild, prefs.ProfitTarget)
	}
	instruction, ok := RiskInstruction(prefs.RiskProfile)
	if !ok {
		return dto.AnalysisRequest{}, fmt.Errorf("%w: unknown risk profile %q", model.ErrRequestBuild, prefs.RiskProfile)
	}
	if instrument == "" {
		instrument = DefaultInstrument
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Perform a detailed technical analysis for %s (Gold) based on real-time data.\n", instrument))
	sb.WriteString("Focus on Support & Resistance (S/R) zones.\n\n")

	sb.WriteString("User parameters:\n")
	sb.WriteString(fmt.Sprintf("- Lot Size: %g\n", prefs.LotSize))
	sb.WriteString(fmt.Sprintf("- Risk: %s\n", prefs.RiskProfile))
	sb.WriteString(fmt.Sprintf("- Profit Target: $%d\n\n", prefs.ProfitTarget))

	sb.WriteString("### Risk profile rules:\n")
	sb.WriteString(instruction)
	sb.WriteString("\n\n")

	sb.WriteString(`### Determine:
1. Trend (Bullish/Bearish/Neutral)
2. Market Structure (HH/HL, LH/LL, ranges, breaks of structure)
3. Key S/R levels
4. Liquidity Zones
5. Session Bias (New York/London/Asia)
6. Exactly one PLANNED LIMIT ORDER consistent with the risk profile above. Do not suggest a market entry at the current price unless price is exactly at a level. Omit "plan" entirely when there is no actionable setup.

Size the expected profit for the given lot size (1 lot = 100 oz) and compare it with the profit target.
Express confidence as a decimal between 0 and 1.
Respond with JSON only, matching the response schema.`)

	return dto.AnalysisRequest{
		Instrument:      instrument,
		Preferences:     prefs,
		RiskInstruction: instruction,
		Prompt:          sb.String(),
		Schema:          AnalysisResponseSchema(),
		EnableSearch:    enableSearch,
	}, nil
}

// AnalysisResponseSchema is the fixed output contract sent with every request.
func AnalysisResponseSchema() *genai.Schema {
	number := func(desc string) *genai.Schema { return &genai.Schema{Type: genai.TypeNumber, Description: desc} }
	text := func(desc string) *genai.Schema { return &genai.Schema{Type: genai.TypeString, Description: desc} }

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"analysis": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"trend":            {Type: genai.TypeString, Enum: []string{"Bullish", "Bearish", "Neutral"}},
					"structure":        text("Market structure description"),
					"volatility":       text("Current volatility regime"),
					"supportLevels":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeNumber}},
					"resistanceLevels": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeNumber}},
					"liquidityZones":   {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"bias":             text("Session bias (New York/London/Asia)"),
					"newsWarnings":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				},
				Required: []string{"trend", "structure", "supportLevels", "resistanceLevels"},
			},
			"plan": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"direction":      {Type: genai.TypeString, Enum: []string{"BUY", "SELL"}},
					"entryPrice":     number("Limit order entry price"),
					"takeProfit":     number("Take profit price"),
					"stopLoss":       number("Stop loss price"),
					"riskReward":     text("Risk to reward ratio, e.g. 1:2.5"),
					"expectedProfit": number("Expected profit in USD for the lot size"),
					"timeHorizon":    text("Expected holding time"),
					"confidence":     number("Confidence between 0 and 1"),
				},
				Required: []string{"direction", "entryPrice", "takeProfit", "stopLoss"},
			},
		},
		Required: []string{"analysis"},
	}
}
