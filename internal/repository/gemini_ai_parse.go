package repository

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gold-analyst/internal/dto"
	"gold-analyst/internal/model"
	"gold-analyst/pkg/utils"

	goValidator "github.com/go-playground/validator/v10"
)

// parseAnalysisResponse validates the provider JSON and turns it into a result.
// Identity and plan status/timestamp always come from the caller, never from the provider.
func parseAnalysisResponse(validator *goValidator.Validate, raw *dto.AIRawResponse, id string, now time.Time) (*model.AnalysisResult, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty response", model.ErrSchemaViolation)
	}

	body := utils.StripCodeFence(raw.Text)
	var resp dto.AIMarketAnalysisResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("%w: response is not valid JSON: %w", model.ErrSchemaViolation, err)
	}

	canonicalize(&resp)
	if err := validator.Struct(resp); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrSchemaViolation, err)
	}

	a := resp.Analysis
	analysis := model.Analysis{
		ID:               id,
		Trend:            model.Trend(*a.Trend),
		Structure:        *a.Structure,
		Volatility:       a.Volatility,
		SupportLevels:    a.SupportLevels,
		ResistanceLevels: a.ResistanceLevels,
		LiquidityZones:   orEmpty(a.LiquidityZones),
		Bias:             a.Bias,
		NewsWarnings:     orEmpty(a.NewsWarnings),
		GroundingSources: orEmpty(raw.Sources),
	}

	var plan *model.TradePlan
	if p := resp.Plan; p != nil {
		plan = &model.TradePlan{
			Direction:      model.TradeDirection(*p.Direction),
			EntryPrice:     *p.EntryPrice,
			TakeProfit:     *p.TakeProfit,
			StopLoss:       *p.StopLoss,
			RiskReward:     p.RiskReward,
			ExpectedProfit: p.ExpectedProfit,
			TimeHorizon:    p.TimeHorizon,
			Status:         model.StatusWaiting,
			Timestamp:      utils.ClockTime(now),
		}
		if p.Confidence != nil {
			plan.Confidence = *p.Confidence
		}
	}

	return &model.AnalysisResult{Analysis: analysis, Plan: plan}, nil
}

// canonicalize fixes letter case of enum values ("bullish", "buy") before validation.
func canonicalize(resp *dto.AIMarketAnalysisResponse) {
	if resp.Analysis != nil && resp.Analysis.Trend != nil {
		for _, t := range []model.Trend{model.TrendBullish, model.TrendBearish, model.TrendNeutral} {
			if strings.EqualFold(strings.TrimSpace(*resp.Analysis.Trend), string(t)) {
				v := string(t)
				resp.Analysis.Trend = &v
			}
		}
	}
	if resp.Plan != nil && resp.Plan.Direction != nil {
		v := strings.ToUpper(strings.TrimSpace(*resp.Plan.Direction))
		resp.Plan.Direction = &v
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
