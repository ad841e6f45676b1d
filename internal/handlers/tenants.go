package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inboxai/inboxd/internal/auth"
	"github.com/inboxai/inboxd/internal/tenant"
)

// TenantsHandler serves the authenticated tenant's own profile and the
// platform-level AI switches.
type TenantsHandler struct {
	service   *tenant.Service
	jwtSecret string
	logger    *slog.Logger
}

func NewTenantsHandler(log *slog.Logger, service *tenant.Service, jwtSecret string) *TenantsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TenantsHandler{
		service:   service,
		jwtSecret: jwtSecret,
		logger:    log.With(slog.String("handler", "tenants")),
	}
}

func (h *TenantsHandler) Register(e *echo.Echo) {
	e.GET("/api/tenants/me", h.GetMe)
	e.POST("/api/tenants/refresh-token", h.RefreshToken)

	group := e.Group("/api/platform")
	group.GET("/:platform/ai-status", h.GetAIStatus)
	group.PATCH("/:platform/ai-status", h.SetAIStatus)
}

func (h *TenantsHandler) GetMe(c echo.Context) error {
	tenantID, err := auth.TenantIDFromContext(c)
	if err != nil {
		return err
	}
	me, err := h.service.GetByID(c.Request().Context(), tenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "tenant not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, me)
}

type refreshTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *TenantsHandler) RefreshToken(c echo.Context) error {
	token, expiresAt, err := auth.RefreshTokenFromContext(c, h.jwtSecret, 24*time.Hour)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, refreshTokenResponse{Token: token, ExpiresAt: expiresAt})
}

type aiStatusResponse struct {
	Platform string `json:"platform"`
	Enabled  bool   `json:"enabled"`
}

func (h *TenantsHandler) GetAIStatus(c echo.Context) error {
	tenantID, err := auth.TenantIDFromContext(c)
	if err != nil {
		return err
	}
	platform := c.Param("platform")
	if platform != "instagram" && platform != "facebook" {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported platform")
	}

	me, err := h.service.GetByID(c.Request().Context(), tenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "tenant not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, aiStatusResponse{Platform: platform, Enabled: me.AIEnabledFor(platform)})
}

type setAIStatusRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *TenantsHandler) SetAIStatus(c echo.Context) error {
	tenantID, err := auth.TenantIDFromContext(c)
	if err != nil {
		return err
	}
	platform := c.Param("platform")
	if platform != "instagram" && platform != "facebook" {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported platform")
	}

	var req setAIStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.service.SetPlatformAI(c.Request().Context(), tenantID, platform, req.Enabled)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "tenant not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, aiStatusResponse{Platform: platform, Enabled: updated.AIEnabledFor(platform)})
}
