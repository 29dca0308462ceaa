package http

import (
	"errors"
	"net/http"

	"gold-analyst/internal/dto"
	"gold-analyst/internal/model"
	"gold-analyst/pkg/logger"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupHistory(base *echo.Group) {
	v1 := base.Group("/v1/history")
	{
		v1.GET("", h.ListHistory)
		v1.DELETE("", h.ClearHistory)
		v1.GET("/:id", h.GetHistory)
		v1.POST("/:id/select", h.SelectHistory)
		v1.DELETE("/:id", h.DeleteHistory)
	}
}

func (h *HttpAPIHandler) ListHistory(c echo.Context) error {
	response := dto.NewSuccessResponse("OK", h.service.SessionService.History())
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) GetHistory(c echo.Context) error {
	entry, err := h.service.SessionService.GetHistory(c.Param("id"))
	if err != nil {
		return h.historyError(c, err)
	}
	response := dto.NewSuccessResponse("OK", entry)
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) SelectHistory(c echo.Context) error {
	if _, err := h.service.SessionService.SelectHistory(c.Param("id")); err != nil {
		return h.historyError(c, err)
	}
	response := dto.NewSuccessResponse("History entry selected", h.service.SessionService.State())
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) DeleteHistory(c echo.Context) error {
	if err := h.service.SessionService.DeleteHistory(c.Request().Context(), c.Param("id")); err != nil {
		return h.historyError(c, err)
	}
	response := dto.NewSuccessResponse("History entry deleted", h.service.SessionService.History())
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) ClearHistory(c echo.Context) error {
	if err := h.service.SessionService.ClearHistory(c.Request().Context()); err != nil {
		return h.historyError(c, err)
	}
	response := dto.NewSuccessResponse("History cleared", nil)
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) historyError(c echo.Context, err error) error {
	if errors.Is(err, model.ErrHistoryNotFound) {
		response := dto.NewErrorResponse(http.StatusNotFound, "History entry not found")
		return c.JSON(response.Code, response)
	}
	h.log.ErrorContext(c.Request().Context(), "History request failed", logger.ErrorField(err))
	response := dto.NewErrorResponse(http.StatusInternalServerError, "Failed to update history")
	return c.JSON(response.Code, response)
}
