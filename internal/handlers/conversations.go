package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inboxai/inboxd/internal/auth"
	"github.com/inboxai/inboxd/internal/conversation"
)

// ConversationsHandler serves the dashboard inbox: listing threads and
// flipping the per-thread AI toggle.
type ConversationsHandler struct {
	service *conversation.Service
	logger  *slog.Logger
}

func NewConversationsHandler(log *slog.Logger, service *conversation.Service) *ConversationsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ConversationsHandler{
		service: service,
		logger:  log.With(slog.String("handler", "conversations")),
	}
}

func (h *ConversationsHandler) Register(e *echo.Echo) {
	group := e.Group("/api/conversations")
	group.GET("/:platform", h.List)
	group.PATCH("/:id/toggle-ai", h.ToggleAI)
}

func (h *ConversationsHandler) List(c echo.Context) error {
	tenantID, err := auth.TenantIDFromContext(c)
	if err != nil {
		return err
	}
	platform := c.Param("platform")
	if platform != "instagram" && platform != "facebook" {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported platform")
	}

	conversations, err := h.service.List(c.Request().Context(), tenantID, platform)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, conversations)
}

type toggleAIRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *ConversationsHandler) ToggleAI(c echo.Context) error {
	tenantID, err := auth.TenantIDFromContext(c)
	if err != nil {
		return err
	}

	var req toggleAIRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	thread, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if thread.TenantID != tenantID {
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}

	updated, err := h.service.SetAI(c.Request().Context(), thread.ID, req.Enabled)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}
