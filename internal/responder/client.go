// Package responder dispatches inbound messages to the external AI
// responder service.
package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/inboxai/inboxd/internal/config"
	"github.com/inboxai/inboxd/internal/logger"
)

const internalAPIKeyHeader = "X-Internal-API-Key"

// BookingIntegration identifies the tenant's booking backend so the
// responder can schedule appointments on their behalf.
type BookingIntegration struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key,omitempty"`
}

// ProcessMessageRequest is the dispatch payload for one inbound message.
type ProcessMessageRequest struct {
	UserID             string             `json:"user_id"`
	MessageText        string             `json:"message_text"`
	SheetID            string             `json:"sheet_id,omitempty"`
	PageAccessToken    string             `json:"page_access_token"`
	BookingIntegration BookingIntegration `json:"booking_integration"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

func NewClient(cfg config.ResponderConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		logger:     logger.L.With(slog.String("client", "responder")),
	}
}

// ProcessMessage hands one message to the responder. The caller decides
// whether the result is fatal; the router logs and swallows failures.
func (c *Client) ProcessMessage(ctx context.Context, payload ProcessMessageRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal process-message payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/process-message", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build process-message request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(internalAPIKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch message: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("responder returned status %d", resp.StatusCode)
	}
	return nil
}
