package http

import (
	"errors"
	"net/http"

	"gold-analyst/internal/dto"
	"gold-analyst/internal/model"
	"gold-analyst/pkg/logger"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupSession(base *echo.Group) {
	v1 := base.Group("/v1")
	{
		v1.GET("/session", h.GetSession)
		v1.GET("/preferences", h.GetPreferences)
		v1.PUT("/preferences", h.UpdatePreferences)
		v1.POST("/analysis", h.TriggerAnalysis)
		v1.DELETE("/analysis/error", h.DismissError)
	}
}

func (h *HttpAPIHandler) GetSession(c echo.Context) error {
	response := dto.NewSuccessResponse("OK", h.service.SessionService.State())
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) GetPreferences(c echo.Context) error {
	response := dto.NewSuccessResponse("OK", h.service.SessionService.Preferences())
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) UpdatePreferences(c echo.Context) error {
	var req dto.UpdatePreferencesRequest
	if err := c.Bind(&req); err != nil {
		response := dto.NewBadRequestResponse("invalid request body")
		return c.JSON(response.Code, response)
	}
	if err := h.validator.Struct(req); err != nil {
		response := dto.NewBadRequestResponse(err.Error())
		return c.JSON(response.Code, response)
	}

	patch := model.PreferencesPatch{LotSize: req.LotSize, ProfitTarget: req.ProfitTarget}
	if req.RiskProfile != nil {
		risk, err := model.ParseRiskProfile(*req.RiskProfile)
		if err != nil {
			response := dto.NewBadRequestResponse(err.Error())
			return c.JSON(response.Code, response)
		}
		patch.RiskProfile = &risk
	}

	response := dto.NewSuccessResponse("Preferences updated", h.service.SessionService.UpdatePreferences(patch))
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) TriggerAnalysis(c echo.Context) error {
	ctx := c.Request().Context()
	result, err := h.service.SessionService.TriggerAnalysis(ctx)
	if errors.Is(err, model.ErrAnalysisInProgress) {
		response := dto.NewErrorResponse(http.StatusConflict, "Analysis already in progress")
		return c.JSON(response.Code, response)
	}
	if err != nil {
		h.log.DebugContext(ctx, "Analysis request failed", logger.ErrorField(err))
		response := dto.NewErrorResponse(http.StatusBadGateway, model.AnalysisFailedMessage)
		return c.JSON(response.Code, response)
	}

	prefs := h.service.SessionService.Preferences()
	response := dto.NewSuccessResponse("Analysis completed", dto.AnalysisResponse{
		Analysis: result.Analysis,
		Plan:     result.Plan,
		Exposure: dto.NewPlanExposure(result.Plan, prefs.LotSize),
	})
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) DismissError(c echo.Context) error {
	h.service.SessionService.DismissError()
	response := dto.NewSuccessResponse("Error dismissed", nil)
	return c.JSON(response.Code, response)
}
