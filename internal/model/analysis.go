package model

type Trend string

const (
	TrendBullish Trend = "Bullish"
	TrendBearish Trend = "Bearish"
	TrendNeutral Trend = "Neutral"
)

type TradeDirection string

const (
	DirectionBuy  TradeDirection = "BUY"
	DirectionSell TradeDirection = "SELL"
)

type TradeStatus string

const (
	StatusWaiting     TradeStatus = "Waiting for entry"
	StatusApproaching TradeStatus = "Price approaching entry zone"
	StatusInvalidated TradeStatus = "Entry invalidated"
	StatusActive      TradeStatus = "Active"
)

// GroundingSource is a web citation the provider used while grounding the answer.
type GroundingSource struct {
	Title string `json:"title,omitempty"`
	URI   string `json:"uri,omitempty"`
}

type Analysis struct {
	ID               string            `json:"id"`
	Trend            Trend             `json:"trend"`
	Structure        string            `json:"structure"`
	Volatility       string            `json:"volatility"`
	SupportLevels    []float64         `json:"supportLevels"`
	ResistanceLevels []float64         `json:"resistanceLevels"`
	LiquidityZones   []string          `json:"liquidityZones"`
	Bias             string            `json:"bias"`
	NewsWarnings     []string          `json:"newsWarnings"`
	GroundingSources []GroundingSource `json:"groundingSources"`
}

// Clone returns a copy that shares no backing arrays with a.
func (a Analysis) Clone() Analysis {
	a.SupportLevels = cloneSlice(a.SupportLevels)
	a.ResistanceLevels = cloneSlice(a.ResistanceLevels)
	a.LiquidityZones = cloneSlice(a.LiquidityZones)
	a.NewsWarnings = cloneSlice(a.NewsWarnings)
	a.GroundingSources = cloneSlice(a.GroundingSources)
	return a
}

type TradePlan struct {
	Direction      TradeDirection `json:"direction"`
	EntryPrice     float64        `json:"entryPrice"`
	TakeProfit     float64        `json:"takeProfit"`
	StopLoss       float64        `json:"stopLoss"`
	RiskReward     string         `json:"riskReward"`
	ExpectedProfit float64        `json:"expectedProfit"`
	TimeHorizon    string         `json:"timeHorizon"`
	Confidence     float64        `json:"confidence"`
	Status         TradeStatus    `json:"status"`
	Timestamp      string         `json:"timestamp"`
}

// Clone copies the plan; a nil plan stays nil.
func (p *TradePlan) Clone() *TradePlan {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// AnalysisResult is one successful run: an analysis and, when the provider
// found an actionable setup, a plan.
type AnalysisResult struct {
	Analysis Analysis   `json:"analysis"`
	Plan     *TradePlan `json:"plan"`
}

func (r AnalysisResult) Clone() AnalysisResult {
	return AnalysisResult{Analysis: r.Analysis.Clone(), Plan: r.Plan.Clone()}
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
