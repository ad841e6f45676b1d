// Package conversation maintains the per-contact message ledger and its
// AI toggle.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/inboxai/inboxd/internal/db"
	"github.com/inboxai/inboxd/internal/db/sqlc"
	"github.com/inboxai/inboxd/internal/logger"
)

var ErrNotFound = errors.New("conversation not found")

// Conversation is one contact thread on one platform of a tenant.
type Conversation struct {
	ID               string    `json:"id"`
	TenantID         string    `json:"tenant_id"`
	Platform         string    `json:"platform"`
	ContactID        string    `json:"contact_id"`
	ContactName      string    `json:"contact_name,omitempty"`
	ContactAvatarURL string    `json:"contact_avatar_url,omitempty"`
	LastMessage      string    `json:"last_message,omitempty"`
	LastMessageAt    time.Time `json:"last_message_at,omitzero"`
	AIEnabled        bool      `json:"ai_enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UpsertParams records one inbound message against a thread. Contact
// name and avatar only stick on the first insert; the ledger fields
// converge to the newest message.
type UpsertParams struct {
	TenantID         string
	Platform         string
	ContactID        string
	ContactName      string
	ContactAvatarURL string
	LastMessage      string
	LastMessageAt    time.Time
}

type Service struct {
	queries *sqlc.Queries
	logger  *slog.Logger
}

func NewService(queries *sqlc.Queries) *Service {
	return &Service{
		queries: queries,
		logger:  logger.L.With(slog.String("service", "conversation")),
	}
}

func (s *Service) Get(ctx context.Context, id string) (Conversation, error) {
	conversationID, err := db.ParseUUID(id)
	if err != nil {
		return Conversation{}, fmt.Errorf("parse conversation id: %w", err)
	}
	row, err := s.queries.GetConversationByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Conversation{}, ErrNotFound
		}
		return Conversation{}, fmt.Errorf("get conversation: %w", err)
	}
	return fromRow(row), nil
}

// GetByKey looks up the thread for a tenant, platform and contact.
func (s *Service) GetByKey(ctx context.Context, tenantID, platform, contactID string) (Conversation, error) {
	id, err := db.ParseUUID(tenantID)
	if err != nil {
		return Conversation{}, fmt.Errorf("parse tenant id: %w", err)
	}
	row, err := s.queries.GetConversationByKey(ctx, sqlc.GetConversationByKeyParams{
		TenantID:  id,
		Platform:  platform,
		ContactID: contactID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Conversation{}, ErrNotFound
		}
		return Conversation{}, fmt.Errorf("get conversation by key: %w", err)
	}
	return fromRow(row), nil
}

// List returns a tenant's threads on one platform, newest first.
func (s *Service) List(ctx context.Context, tenantID, platform string) ([]Conversation, error) {
	id, err := db.ParseUUID(tenantID)
	if err != nil {
		return nil, fmt.Errorf("parse tenant id: %w", err)
	}
	rows, err := s.queries.ListConversationsByTenantPlatform(ctx, sqlc.ListConversationsByTenantPlatformParams{
		TenantID: id,
		Platform: platform,
	})
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	conversations := make([]Conversation, 0, len(rows))
	for _, row := range rows {
		conversations = append(conversations, fromRow(row))
	}
	return conversations, nil
}

// UpsertMessage records one inbound message. The store guards the ledger
// so out-of-order deliveries never roll last_message backwards.
func (s *Service) UpsertMessage(ctx context.Context, params UpsertParams) (Conversation, error) {
	tenantID, err := db.ParseUUID(params.TenantID)
	if err != nil {
		return Conversation{}, fmt.Errorf("parse tenant id: %w", err)
	}
	row, err := s.queries.UpsertConversationMessage(ctx, sqlc.UpsertConversationMessageParams{
		TenantID:         tenantID,
		Platform:         params.Platform,
		ContactID:        params.ContactID,
		ContactName:      textOrNull(params.ContactName),
		ContactAvatarUrl: textOrNull(params.ContactAvatarURL),
		LastMessage:      textOrNull(params.LastMessage),
		LastMessageAt:    pgtype.Timestamptz{Time: params.LastMessageAt, Valid: !params.LastMessageAt.IsZero()},
	})
	if err != nil {
		return Conversation{}, fmt.Errorf("upsert conversation: %w", err)
	}
	return fromRow(row), nil
}

// SetAI flips the per-thread AI toggle.
func (s *Service) SetAI(ctx context.Context, id string, enabled bool) (Conversation, error) {
	conversationID, err := db.ParseUUID(id)
	if err != nil {
		return Conversation{}, fmt.Errorf("parse conversation id: %w", err)
	}
	row, err := s.queries.SetConversationAi(ctx, sqlc.SetConversationAiParams{
		ID:        conversationID,
		AiEnabled: enabled,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Conversation{}, ErrNotFound
		}
		return Conversation{}, fmt.Errorf("set conversation ai: %w", err)
	}
	s.logger.Info("conversation ai toggled",
		slog.String("conversation_id", id),
		slog.Bool("enabled", enabled))
	return fromRow(row), nil
}

func fromRow(row sqlc.Conversation) Conversation {
	return Conversation{
		ID:               db.UUIDString(row.ID),
		TenantID:         db.UUIDString(row.TenantID),
		Platform:         row.Platform,
		ContactID:        row.ContactID,
		ContactName:      row.ContactName.String,
		ContactAvatarURL: row.ContactAvatarUrl.String,
		LastMessage:      row.LastMessage.String,
		LastMessageAt:    row.LastMessageAt.Time,
		AIEnabled:        row.AiEnabled,
		CreatedAt:        row.CreatedAt.Time,
		UpdatedAt:        row.UpdatedAt.Time,
	}
}

func textOrNull(value string) pgtype.Text {
	if value == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: value, Valid: true}
}
