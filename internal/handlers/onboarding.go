package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inboxai/inboxd/internal/auth"
	"github.com/inboxai/inboxd/internal/config"
	"github.com/inboxai/inboxd/internal/onboarding"
	"github.com/inboxai/inboxd/internal/tenant"
)

type authURLBuilder interface {
	AuthCodeURL(redirectURI, state string) string
}

// OnboardingHandler owns the OAuth entrypoint, the callback and the
// pending-session endpoints.
type OnboardingHandler struct {
	service     *onboarding.Service
	authURLs    authURLBuilder
	serverURL   string
	frontendURL string
	jwtSecret   string
	jwtTTL      time.Duration
	logger      *slog.Logger
}

func NewOnboardingHandler(log *slog.Logger, service *onboarding.Service, authURLs authURLBuilder, cfg config.Config) *OnboardingHandler {
	if log == nil {
		log = slog.Default()
	}
	jwtTTL, err := time.ParseDuration(cfg.Auth.JWTExpiresIn)
	if err != nil || jwtTTL <= 0 {
		jwtTTL = 24 * time.Hour
	}
	return &OnboardingHandler{
		service:     service,
		authURLs:    authURLs,
		serverURL:   strings.TrimRight(cfg.Server.PublicURL, "/"),
		frontendURL: strings.TrimRight(cfg.Frontend.BaseURL, "/"),
		jwtSecret:   cfg.Auth.JWTSecret,
		jwtTTL:      jwtTTL,
		logger:      log.With(slog.String("handler", "onboarding")),
	}
}

func (h *OnboardingHandler) Register(e *echo.Echo) {
	e.GET("/auth/instagram", h.Login)
	e.GET("/auth/instagram/callback", h.Callback)

	group := e.Group("/api/onboarding")
	group.GET("/sessions/:id", h.GetSession)
	group.POST("/sessions/:id/email", h.AddEmail)
	group.POST("/finalize", h.Finalize)
}

func (h *OnboardingHandler) redirectURI() string {
	return h.serverURL + "/auth/instagram/callback"
}

// Login redirects the browser into the platform's login dialog.
func (h *OnboardingHandler) Login(c echo.Context) error {
	return c.Redirect(http.StatusFound, h.authURLs.AuthCodeURL(h.redirectURI(), ""))
}

// Callback runs the onboarding pipeline and routes the browser to the
// frontend's next screen. Failures stop the flow with a plain HTTP
// error: 400 when the dialog was cancelled or no page qualifies, 403
// when the platform rejected the exchange or withheld a scope.
func (h *OnboardingHandler) Callback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "authorization code missing")
	}

	result, err := h.service.Start(c.Request().Context(), code, h.redirectURI())
	if err != nil {
		h.logger.Error("onboarding start failed", slog.Any("error", err))
		switch {
		case errors.Is(err, onboarding.ErrNoEligiblePages):
			return echo.NewHTTPError(http.StatusBadRequest, "no eligible pages for this account")
		case errors.Is(err, onboarding.ErrUpstreamAuth):
			return echo.NewHTTPError(http.StatusForbidden, "upstream authentication failed")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "onboarding failed")
		}
	}

	screen := "/onboarding/select-page"
	if result.NeedsEmail {
		screen = "/onboarding/enter-email"
	}
	return c.Redirect(http.StatusFound, h.frontendURL+screen+"?sessionId="+url.QueryEscape(result.Session.ID))
}

func (h *OnboardingHandler) GetSession(c echo.Context) error {
	session, err := h.service.GetSession(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, onboarding.ErrSessionExpired) {
			return echo.NewHTTPError(http.StatusNotFound, "session expired")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, session)
}

type addEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *OnboardingHandler) AddEmail(c echo.Context) error {
	var req addEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.service.AddEmail(c.Request().Context(), c.Param("id"), req.Email)
	if err != nil {
		if errors.Is(err, onboarding.ErrSessionExpired) {
			return echo.NewHTTPError(http.StatusNotFound, "session expired")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, session)
}

type finalizeResponse struct {
	Tenant    tenant.Tenant `json:"tenant"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
}

func (h *OnboardingHandler) Finalize(c echo.Context) error {
	var req onboarding.FinalizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.service.Finalize(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, onboarding.ErrTermsNotAccepted), errors.Is(err, onboarding.ErrInvalidSelection):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, onboarding.ErrSessionExpired):
			return echo.NewHTTPError(http.StatusNotFound, "session expired")
		case errors.Is(err, onboarding.ErrPageAlreadyLinked):
			return echo.NewHTTPError(http.StatusConflict, "page already linked to another account")
		case errors.Is(err, onboarding.ErrUpstreamAuth):
			return echo.NewHTTPError(http.StatusInternalServerError, "upstream authentication failed")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	token, expiresAt, err := auth.GenerateToken(created.ID, created.Email, h.jwtSecret, h.jwtTTL)
	if err != nil {
		h.logger.Error("failed to issue dashboard token", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}
	return c.JSON(http.StatusOK, finalizeResponse{Tenant: created, Token: token, ExpiresAt: expiresAt})
}
