package webhook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inboxai/inboxd/internal/conversation"
	"github.com/inboxai/inboxd/internal/meta"
	"github.com/inboxai/inboxd/internal/responder"
	"github.com/inboxai/inboxd/internal/tenant"
)

type fakeTenants struct {
	byPage map[string]tenant.Tenant
}

func (f *fakeTenants) GetByPageID(_ context.Context, pageID string) (tenant.Tenant, error) {
	if owner, ok := f.byPage[pageID]; ok {
		return owner, nil
	}
	return tenant.Tenant{}, tenant.ErrNotFound
}

type fakeLedger struct {
	existing  map[string]conversation.Conversation
	aiEnabled bool
	upserts   []conversation.UpsertParams
}

func (f *fakeLedger) GetByKey(_ context.Context, tenantID, platform, contactID string) (conversation.Conversation, error) {
	if thread, ok := f.existing[tenantID+"/"+platform+"/"+contactID]; ok {
		return thread, nil
	}
	return conversation.Conversation{}, conversation.ErrNotFound
}

func (f *fakeLedger) UpsertMessage(_ context.Context, params conversation.UpsertParams) (conversation.Conversation, error) {
	f.upserts = append(f.upserts, params)
	return conversation.Conversation{
		ID:          "thread-1",
		TenantID:    params.TenantID,
		Platform:    params.Platform,
		ContactID:   params.ContactID,
		LastMessage: params.LastMessage,
		AIEnabled:   f.aiEnabled,
	}, nil
}

type fakeContacts struct {
	profile meta.ContactProfile
	err     error
	calls   int
}

func (f *fakeContacts) GetContactProfile(context.Context, string, string) (meta.ContactProfile, error) {
	f.calls++
	return f.profile, f.err
}

type fakeDispatcher struct {
	err      error
	payloads []responder.ProcessMessageRequest
}

func (f *fakeDispatcher) ProcessMessage(_ context.Context, payload responder.ProcessMessageRequest) error {
	f.payloads = append(f.payloads, payload)
	return f.err
}

func textEvent(sender, recipient, text string) MessagingEvent {
	return MessagingEvent{
		Sender:    Participant{ID: sender},
		Recipient: Participant{ID: recipient},
		Timestamp: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC).UnixMilli(),
		Message:   &Message{MID: "m1", Text: text},
	}
}

func instagramTenant(aiInstagram bool) tenant.Tenant {
	return tenant.Tenant{
		ID:              "00000000-0000-0000-0000-000000000001",
		Email:           "owner@example.com",
		PageID:          "p1",
		PageAccessToken: "pt-1",
		SheetID:         "sheet-1",
		BookingProvider: "setmore",
		BookingAPIKey:   "book-key",
		AIInstagram:     aiInstagram,
		AIFacebook:      true,
	}
}

func TestRouteGatingMatrix(t *testing.T) {
	tests := []struct {
		name           string
		tenantAI       bool
		conversationAI bool
		wantDispatch   bool
	}{
		{"both enabled", true, true, true},
		{"tenant muted", false, true, false},
		{"conversation muted", true, false, false},
		{"both muted", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &fakeLedger{aiEnabled: tt.conversationAI}
			dispatch := &fakeDispatcher{}
			processor := NewProcessor(
				&fakeTenants{byPage: map[string]tenant.Tenant{"p1": instagramTenant(tt.tenantAI)}},
				ledger,
				&fakeContacts{profile: meta.ContactProfile{Name: "Grace"}},
				dispatch,
			)

			err := processor.Route(context.Background(), "instagram", textEvent("c9", "p1", "hi"))
			require.NoError(t, err)

			// the ledger records the message regardless of gating
			require.Len(t, ledger.upserts, 1)
			assert.Equal(t, "hi", ledger.upserts[0].LastMessage)

			if tt.wantDispatch {
				require.Len(t, dispatch.payloads, 1)
				payload := dispatch.payloads[0]
				assert.Equal(t, "c9", payload.UserID)
				assert.Equal(t, "hi", payload.MessageText)
				assert.Equal(t, "sheet-1", payload.SheetID)
				assert.Equal(t, "pt-1", payload.PageAccessToken)
				assert.Equal(t, "setmore", payload.BookingIntegration.Provider)
				assert.Equal(t, "book-key", payload.BookingIntegration.APIKey)
			} else {
				assert.Empty(t, dispatch.payloads)
			}
		})
	}
}

func TestRouteUnknownPageDropped(t *testing.T) {
	ledger := &fakeLedger{aiEnabled: true}
	dispatch := &fakeDispatcher{}
	processor := NewProcessor(&fakeTenants{}, ledger, &fakeContacts{}, dispatch)

	err := processor.Route(context.Background(), "instagram", textEvent("c9", "p-unknown", "hi"))
	require.NoError(t, err)
	assert.Empty(t, ledger.upserts)
	assert.Empty(t, dispatch.payloads)
}

func TestRouteDiscardsEchoAndNonText(t *testing.T) {
	ledger := &fakeLedger{aiEnabled: true}
	processor := NewProcessor(
		&fakeTenants{byPage: map[string]tenant.Tenant{"p1": instagramTenant(true)}},
		ledger,
		&fakeContacts{},
		&fakeDispatcher{},
	)
	ctx := context.Background()

	echoed := textEvent("p1", "c9", "our reply")
	echoed.Message.IsEcho = true
	require.NoError(t, processor.Route(ctx, "instagram", echoed))

	attachment := textEvent("c9", "p1", "")
	require.NoError(t, processor.Route(ctx, "instagram", attachment))

	noMessage := MessagingEvent{Sender: Participant{ID: "c9"}, Recipient: Participant{ID: "p1"}}
	require.NoError(t, processor.Route(ctx, "instagram", noMessage))

	assert.Empty(t, ledger.upserts)
}

func TestRouteEnrichesNewConversations(t *testing.T) {
	ledger := &fakeLedger{aiEnabled: true}
	contacts := &fakeContacts{profile: meta.ContactProfile{Name: "Grace", AvatarURL: "https://cdn/g.jpg"}}
	processor := NewProcessor(
		&fakeTenants{byPage: map[string]tenant.Tenant{"p1": instagramTenant(true)}},
		ledger,
		contacts,
		&fakeDispatcher{},
	)

	require.NoError(t, processor.Route(context.Background(), "instagram", textEvent("c9", "p1", "hi")))
	require.Len(t, ledger.upserts, 1)
	assert.Equal(t, "Grace", ledger.upserts[0].ContactName)
	assert.Equal(t, "https://cdn/g.jpg", ledger.upserts[0].ContactAvatarURL)
}

func TestRouteSkipsEnrichmentForKnownConversations(t *testing.T) {
	owner := instagramTenant(true)
	ledger := &fakeLedger{
		aiEnabled: true,
		existing: map[string]conversation.Conversation{
			owner.ID + "/instagram/c9": {ID: "thread-1", ContactName: "Grace"},
		},
	}
	contacts := &fakeContacts{}
	processor := NewProcessor(
		&fakeTenants{byPage: map[string]tenant.Tenant{"p1": owner}},
		ledger,
		contacts,
		&fakeDispatcher{},
	)

	require.NoError(t, processor.Route(context.Background(), "instagram", textEvent("c9", "p1", "again")))
	assert.Equal(t, 0, contacts.calls)
	require.Len(t, ledger.upserts, 1)
	assert.Empty(t, ledger.upserts[0].ContactName)
}

func TestRouteEnrichmentFallbackPlaceholder(t *testing.T) {
	ledger := &fakeLedger{aiEnabled: true}
	processor := NewProcessor(
		&fakeTenants{byPage: map[string]tenant.Tenant{"p1": instagramTenant(true)}},
		ledger,
		&fakeContacts{err: errors.New("profile not visible")},
		&fakeDispatcher{},
	)

	require.NoError(t, processor.Route(context.Background(), "instagram", textEvent("1784299951", "p1", "hi")))
	require.Len(t, ledger.upserts, 1)
	assert.Equal(t, "User 9951", ledger.upserts[0].ContactName)
	assert.Equal(t, placeholderAvatarURL, ledger.upserts[0].ContactAvatarURL)
}

func TestRouteEnrichmentNamelessProfilePlaceholder(t *testing.T) {
	ledger := &fakeLedger{aiEnabled: true}
	processor := NewProcessor(
		&fakeTenants{byPage: map[string]tenant.Tenant{"p1": instagramTenant(true)}},
		ledger,
		&fakeContacts{profile: meta.ContactProfile{AvatarURL: "https://cdn/anon.jpg"}},
		&fakeDispatcher{},
	)

	require.NoError(t, processor.Route(context.Background(), "instagram", textEvent("1784299951", "p1", "hi")))
	require.Len(t, ledger.upserts, 1)
	assert.Equal(t, "User 9951", ledger.upserts[0].ContactName)
	assert.Equal(t, placeholderAvatarURL, ledger.upserts[0].ContactAvatarURL)
}

func TestRouteDispatchFailureIsSwallowed(t *testing.T) {
	ledger := &fakeLedger{aiEnabled: true}
	processor := NewProcessor(
		&fakeTenants{byPage: map[string]tenant.Tenant{"p1": instagramTenant(true)}},
		ledger,
		&fakeContacts{profile: meta.ContactProfile{Name: "Grace"}},
		&fakeDispatcher{err: errors.New("responder unreachable")},
	)

	err := processor.Route(context.Background(), "instagram", textEvent("c9", "p1", "hi"))
	require.NoError(t, err)
	require.Len(t, ledger.upserts, 1)
}
