package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inboxai/inboxd/internal/conversation"
	"github.com/inboxai/inboxd/internal/logger"
	"github.com/inboxai/inboxd/internal/meta"
	"github.com/inboxai/inboxd/internal/responder"
	"github.com/inboxai/inboxd/internal/tenant"
)

const placeholderAvatarURL = "https://picsum.photos/seed/placeholder/100/100"

type tenantDirectory interface {
	GetByPageID(ctx context.Context, pageID string) (tenant.Tenant, error)
}

type conversationLedger interface {
	GetByKey(ctx context.Context, tenantID, platform, contactID string) (conversation.Conversation, error)
	UpsertMessage(ctx context.Context, params conversation.UpsertParams) (conversation.Conversation, error)
}

type contactProfiles interface {
	GetContactProfile(ctx context.Context, contactID, pageToken string) (meta.ContactProfile, error)
}

type dispatcher interface {
	ProcessMessage(ctx context.Context, payload responder.ProcessMessageRequest) error
}

// Processor routes one messaging event: tenant lookup, ledger update,
// gating, AI dispatch.
type Processor struct {
	tenants       tenantDirectory
	conversations conversationLedger
	contacts      contactProfiles
	responder     dispatcher
	logger        *slog.Logger
}

func NewProcessor(tenants tenantDirectory, conversations conversationLedger, contacts contactProfiles, dispatch dispatcher) *Processor {
	return &Processor{
		tenants:       tenants,
		conversations: conversations,
		contacts:      contacts,
		responder:     dispatch,
		logger:        logger.L.With(slog.String("service", "webhook_processor")),
	}
}

// Route processes one inbound event. Deliveries for unknown pages and
// events that carry no customer text are dropped without touching the
// store. The ledger is updated before gating, so a muted conversation
// still records the message.
func (p *Processor) Route(ctx context.Context, platform string, event MessagingEvent) error {
	if event.Message == nil || event.Message.IsEcho || event.Message.Text == "" {
		return nil
	}

	contactID := event.Sender.ID
	pageID := event.Recipient.ID

	owner, err := p.tenants.GetByPageID(ctx, pageID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			p.logger.Warn("delivery for unknown page dropped",
				slog.String("platform", platform),
				slog.String("page_id", pageID))
			return nil
		}
		return fmt.Errorf("resolve tenant: %w", err)
	}

	params := conversation.UpsertParams{
		TenantID:      owner.ID,
		Platform:      platform,
		ContactID:     contactID,
		LastMessage:   event.Message.Text,
		LastMessageAt: event.EventTime(),
	}

	_, err = p.conversations.GetByKey(ctx, owner.ID, platform, contactID)
	if errors.Is(err, conversation.ErrNotFound) {
		params.ContactName, params.ContactAvatarURL = p.enrichContact(ctx, contactID, owner.PageAccessToken)
	} else if err != nil {
		return fmt.Errorf("look up conversation: %w", err)
	}

	thread, err := p.conversations.UpsertMessage(ctx, params)
	if err != nil {
		return fmt.Errorf("record message: %w", err)
	}

	if !owner.AIEnabledFor(platform) || !thread.AIEnabled {
		p.logger.Debug("ai disabled, message recorded only",
			slog.String("tenant_id", owner.ID),
			slog.String("conversation_id", thread.ID))
		return nil
	}

	// Dispatch failures are not delivery failures. The message is
	// already in the ledger.
	if err := p.responder.ProcessMessage(ctx, responder.ProcessMessageRequest{
		UserID:          contactID,
		MessageText:     event.Message.Text,
		SheetID:         owner.SheetID,
		PageAccessToken: owner.PageAccessToken,
		BookingIntegration: responder.BookingIntegration{
			Provider: owner.BookingProvider,
			APIKey:   owner.BookingAPIKey,
		},
	}); err != nil {
		p.logger.Warn("ai dispatch failed",
			slog.String("tenant_id", owner.ID),
			slog.String("conversation_id", thread.ID),
			slog.Any("error", err))
	}
	return nil
}

// enrichContact fetches the sender's profile for a new thread. When the
// fetch fails or the platform withholds the name, the thread gets an
// identifiable placeholder instead.
func (p *Processor) enrichContact(ctx context.Context, contactID, pageToken string) (string, string) {
	profile, err := p.contacts.GetContactProfile(ctx, contactID, pageToken)
	if err == nil && profile.Name != "" {
		return profile.Name, profile.AvatarURL
	}

	if err != nil {
		p.logger.Warn("contact profile fetch failed, using placeholder",
			slog.String("contact_id", contactID),
			slog.Any("error", err))
	} else {
		p.logger.Warn("contact profile has no name, using placeholder",
			slog.String("contact_id", contactID))
	}
	suffix := contactID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return "User " + suffix, placeholderAvatarURL
}
