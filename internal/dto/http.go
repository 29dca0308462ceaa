package dto

import (
	"net/http"

	"gold-analyst/internal/model"
)

type BaseResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func NewBaseResponse(code int, message string, data interface{}) *BaseResponse {
	return &BaseResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

func NewBadRequestResponse(message string) *BaseResponse {
	return NewBaseResponse(http.StatusBadRequest, message, nil)
}

func NewSuccessResponse(message string, data interface{}) *BaseResponse {
	return NewBaseResponse(http.StatusOK, message, data)
}

func NewErrorResponse(code int, message string) *BaseResponse {
	return NewBaseResponse(code, message, nil)
}

// AnalysisResponse is returned after a successful run.
type AnalysisResponse struct {
	Analysis model.Analysis   `json:"analysis"`
	Plan     *model.TradePlan `json:"plan"`
	Exposure *PlanExposure    `json:"exposure,omitempty"`
}

// UpdatePreferencesRequest is a partial preferences update; absent fields are kept.
type UpdatePreferencesRequest struct {
	LotSize      *float64 `json:"lotSize" validate:"omitempty,gt=0"`
	ProfitTarget *int     `json:"profitTarget" validate:"omitempty,gt=0"`
	RiskProfile  *string  `json:"riskProfile" validate:"omitempty"`
}
