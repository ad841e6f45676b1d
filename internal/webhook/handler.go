// Package webhook receives message deliveries from the platform and
// routes them to tenants.
package webhook

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inboxai/inboxd/internal/logger"
)

const eventProcessTimeout = 30 * time.Second

type router interface {
	Route(ctx context.Context, platform string, event MessagingEvent) error
}

// Handler owns the GET verification handshake and the POST delivery
// endpoint. Deliveries are acknowledged before processing starts; the
// platform retries on anything but a fast 200.
type Handler struct {
	verifyToken string
	processor   router
	inflight    sync.WaitGroup
	logger      *slog.Logger
}

func NewHandler(verifyToken string, processor router) *Handler {
	return &Handler{
		verifyToken: verifyToken,
		processor:   processor,
		logger:      logger.L.With(slog.String("handler", "webhook")),
	}
}

// Register registers the webhook routes.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/webhook", h.Verify)
	e.POST("/webhook", h.Receive)
}

// Verify answers the subscription handshake. The challenge is echoed
// byte for byte.
func (h *Handler) Verify(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")

	if mode == "" || token == "" {
		return c.NoContent(http.StatusBadRequest)
	}
	if mode != "subscribe" || token != h.verifyToken {
		h.logger.Warn("webhook verification rejected", slog.String("mode", mode))
		return c.NoContent(http.StatusForbidden)
	}
	return c.String(http.StatusOK, challenge)
}

// Receive acknowledges a delivery and fans its events out to the
// processor in the background.
func (h *Handler) Receive(c echo.Context) error {
	var envelope Envelope
	if err := c.Bind(&envelope); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	// The platform retry-storms on anything but a fast 200, so even a
	// delivery for an object we do not speak gets the ack. It is simply
	// never fanned out.
	platform, ok := envelope.Platform()
	if !ok {
		h.logger.Warn("delivery for unsupported object dropped", slog.String("object", envelope.Object))
		return c.String(http.StatusOK, "EVENT_RECEIVED")
	}

	for _, entry := range envelope.Entry {
		for _, event := range entry.Messaging {
			h.inflight.Add(1)
			go h.process(context.WithoutCancel(c.Request().Context()), platform, event)
		}
	}

	return c.String(http.StatusOK, "EVENT_RECEIVED")
}

func (h *Handler) process(ctx context.Context, platform string, event MessagingEvent) {
	defer h.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic while processing delivery", slog.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	if err := h.processor.Route(ctx, platform, event); err != nil {
		h.logger.Error("failed to process delivery",
			slog.String("platform", platform),
			slog.String("sender_id", event.Sender.ID),
			slog.Any("error", err))
	}
}

// Drain waits for in-flight event processing, bounded by the context.
func (h *Handler) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
