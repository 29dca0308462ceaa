package dto

import (
	"math"

	"gold-analyst/internal/model"
	"gold-analyst/pkg/utils"
)

// SessionState is the complete observable surface of a session.
type SessionState struct {
	Status      model.SessionStatus  `json:"status"`
	Loading     bool                 `json:"loading"`
	Error       string               `json:"error,omitempty"`
	Preferences model.Preferences    `json:"preferences"`
	Analysis    *model.Analysis      `json:"analysis"`
	Plan        *model.TradePlan     `json:"plan"`
	Exposure    *PlanExposure        `json:"exposure,omitempty"`
	History     []model.HistoryEntry `json:"history"`
	SelectedID  string               `json:"selectedId,omitempty"`
}

// PlanExposure is the dollar risk and reward of a plan at a given lot size.
type PlanExposure struct {
	LotSize   float64 `json:"lotSize"`
	RiskUSD   float64 `json:"riskUsd"`
	RewardUSD float64 `json:"rewardUsd"`
}

func NewPlanExposure(plan *model.TradePlan, lotSize float64) *PlanExposure {
	if plan == nil || math.IsNaN(lotSize) || math.IsInf(lotSize, 0) {
		return nil
	}
	return &PlanExposure{
		LotSize:   lotSize,
		RiskUSD:   utils.PriceDistanceUSD(plan.EntryPrice, plan.StopLoss, lotSize),
		RewardUSD: utils.PriceDistanceUSD(plan.EntryPrice, plan.TakeProfit, lotSize),
	}
}
