package dto

import (
	"gold-analyst/internal/model"

	"google.golang.org/genai"
)

// AnalysisRequest is everything a transport needs to ask for one analysis.
type AnalysisRequest struct {
	Instrument      string
	Preferences     model.Preferences
	RiskInstruction string
	Prompt          string
	Schema          *genai.Schema
	EnableSearch    bool
}

// AIRawResponse is the provider answer before validation.
type AIRawResponse struct {
	Text    string
	Sources []model.GroundingSource
}

// AIMarketAnalysisResponse mirrors the response schema. Pointer fields tell
// "missing" apart from zero values.
type AIMarketAnalysisResponse struct {
	Analysis *AIMarketAnalysis `json:"analysis" validate:"required"`
	Plan     *AITradePlan      `json:"plan"`
}

type AIMarketAnalysis struct {
	Trend            *string   `json:"trend" validate:"required,oneof=Bullish Bearish Neutral"`
	Structure        *string   `json:"structure" validate:"required"`
	Volatility       string    `json:"volatility"`
	SupportLevels    []float64 `json:"supportLevels" validate:"required"`
	ResistanceLevels []float64 `json:"resistanceLevels" validate:"required"`
	LiquidityZones   []string  `json:"liquidityZones"`
	Bias             string    `json:"bias"`
	NewsWarnings     []string  `json:"newsWarnings"`
}

type AITradePlan struct {
	Direction      *string  `json:"direction" validate:"required,oneof=BUY SELL"`
	EntryPrice     *float64 `json:"entryPrice" validate:"required"`
	TakeProfit     *float64 `json:"takeProfit" validate:"required"`
	StopLoss       *float64 `json:"stopLoss" validate:"required"`
	RiskReward     string   `json:"riskReward"`
	ExpectedProfit float64  `json:"expectedProfit"`
	TimeHorizon    string   `json:"timeHorizon"`
	Confidence     *float64 `json:"confidence" validate:"omitempty,min=0,max=1"`
}

// REST wire format of models/{model}:generateContent.

type GeminiAPIRequest struct {
	Contents         []Content         `json:"contents"`
	Tools            []GeminiTool      `json:"tools,omitempty"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiTool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

type GenerationConfig struct {
	ResponseMIMEType string        `json:"responseMimeType,omitempty"`
	ResponseSchema   *genai.Schema `json:"responseSchema,omitempty"`
}

type GeminiAPIResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is a candidate response from the Gemini API.
type Candidate struct {
	Content           Content            `json:"content"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

type GroundingMetadata struct {
	GroundingChunks []GroundingChunk `json:"groundingChunks"`
}

type GroundingChunk struct {
	Web *GroundingChunkWeb `json:"web,omitempty"`
}

type GroundingChunkWeb struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

type GeminiCountTokensRequest struct {
	Contents []Content `json:"contents"`
}

type GeminiCountTokensResponse struct {
	TotalTokens int `json:"totalTokens"`
}
