package repository

import (
	"testing"
	"time"

	"gold-analyst/internal/dto"
	"gold-analyst/internal/model"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validResponse = `{
  "analysis": {
    "id": "provider-id",
    "trend": "Bullish",
    "structure": "HH/HL on H4",
    "volatility": "Elevated",
    "supportLevels": [2380.5, 2365],
    "resistanceLevels": [2410, 2432.25],
    "liquidityZones": ["Asian session low"],
    "bias": "London continuation",
    "newsWarnings": ["US CPI at 12:30 GMT"]
  },
  "plan": {
    "direction": "BUY",
    "entryPrice": 2381,
    "takeProfit": 2410,
    "stopLoss": 2372,
    "riskReward": "1:3.2",
    "expectedProfit": 145,
    "timeHorizon": "4-8 hours",
    "confidence": 0.68,
    "status": "Active",
    "timestamp": "provider-time"
  }
}`

var parseNow = time.Date(2026, time.October, 16, 9, 30, 15, 0, time.UTC)

func parse(t *testing.T, text string, sources ...model.GroundingSource) (*model.AnalysisResult, error) {
	t.Helper()
	return parseAnalysisResponse(goValidator.New(), &dto.AIRawResponse{Text: text, Sources: sources}, "client-id", parseNow)
}

func TestParseAnalysisResponse_Valid(t *testing.T) {
	sources := []model.GroundingSource{{Title: "Kitco", URI: "https://www.kitco.com"}}
	got, err := parse(t, validResponse, sources...)
	require.NoError(t, err)

	assert.Equal(t, model.Analysis{
		ID:               "client-id",
		Trend:            model.TrendBullish,
		Structure:        "HH/HL on H4",
		Volatility:       "Elevated",
		SupportLevels:    []float64{2380.5, 2365},
		ResistanceLevels: []float64{2410, 2432.25},
		LiquidityZones:   []string{"Asian session low"},
		Bias:             "London continuation",
		NewsWarnings:     []string{"US CPI at 12:30 GMT"},
		GroundingSources: sources,
	}, got.Analysis)

	require.NotNil(t, got.Plan)
	assert.Equal(t, model.TradePlan{
		Direction:      model.DirectionBuy,
		EntryPrice:     2381,
		TakeProfit:     2410,
		StopLoss:       2372,
		RiskReward:     "1:3.2",
		ExpectedProfit: 145,
		TimeHorizon:    "4-8 hours",
		Confidence:     0.68,
		Status:         model.StatusWaiting,
		Timestamp:      "09:30:15",
	}, *got.Plan)
}

func TestParseAnalysisResponse_OptionalParts(t *testing.T) {
	text := "```json\n" + `{"analysis":{"trend":"neutral","structure":"Range","supportLevels":[],"resistanceLevels":[2400]},"plan":null}` + "\n```"
	got, err := parse(t, text)
	require.NoError(t, err)

	assert.Nil(t, got.Plan)
	assert.Equal(t, model.TrendNeutral, got.Analysis.Trend)
	assert.Equal(t, []float64{}, got.Analysis.SupportLevels)
	assert.Equal(t, []string{}, got.Analysis.LiquidityZones)
	assert.Equal(t, []string{}, got.Analysis.NewsWarnings)
	assert.Equal(t, []model.GroundingSource{}, got.Analysis.GroundingSources)
}

func TestParseAnalysisResponse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "not json", text: "Gold looks bullish today"},
		{name: "truncated json", text: `{"analysis": {"trend": "Bullish"`},
		{name: "missing analysis", text: `{"plan":{"direction":"BUY","entryPrice":1,"takeProfit":2,"stopLoss":0.5}}`},
		{name: "missing resistanceLevels", text: `{"analysis":{"trend":"Bullish","structure":"x","supportLevels":[1]}}`},
		{name: "missing trend", text: `{"analysis":{"structure":"x","supportLevels":[1],"resistanceLevels":[2]}}`},
		{name: "unknown trend", text: `{"analysis":{"trend":"Sideways","structure":"x","supportLevels":[1],"resistanceLevels":[2]}}`},
		{name: "levels wrong type", text: `{"analysis":{"trend":"Bullish","structure":"x","supportLevels":["a"],"resistanceLevels":[2]}}`},
		{name: "plan missing stopLoss", text: `{"analysis":{"trend":"Bullish","structure":"x","supportLevels":[1],"resistanceLevels":[2]},"plan":{"direction":"BUY","entryPrice":1,"takeProfit":2}}`},
		{name: "plan bad direction", text: `{"analysis":{"trend":"Bullish","structure":"x","supportLevels":[1],"resistanceLevels":[2]},"plan":{"direction":"HOLD","entryPrice":1,"takeProfit":2,"stopLoss":0.5}}`},
		{name: "confidence out of range", text: `{"analysis":{"trend":"Bullish","structure":"x","supportLevels":[1],"resistanceLevels":[2]},"plan":{"direction":"SELL","entryPrice":1,"takeProfit":0.5,"stopLoss":2,"confidence":68}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parse(t, tt.text)
			assert.ErrorIs(t, err, model.ErrSchemaViolation)
			assert.Nil(t, got)
		})
	}
}

func TestParseAnalysisResponse_ZeroPricesArePresent(t *testing.T) {
	text := `{"analysis":{"trend":"Bearish","structure":"x","supportLevels":[1],"resistanceLevels":[2]},"plan":{"direction":"sell","entryPrice":0,"takeProfit":0,"stopLoss":0}}`
	got, err := parse(t, text)
	require.NoError(t, err)
	require.NotNil(t, got.Plan)
	assert.Equal(t, model.DirectionSell, got.Plan.Direction)
	assert.Equal(t, 0.0, got.Plan.Confidence)
}
