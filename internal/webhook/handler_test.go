package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRouter struct {
	mu     sync.Mutex
	block  chan struct{}
	events []MessagingEvent
}

func (r *recordingRouter) Route(_ context.Context, _ string, event MessagingEvent) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingRouter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func performVerify(t *testing.T, handler *Handler, params url.Values) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/webhook?"+params.Encode(), nil)
	rec := httptest.NewRecorder()
	require.NoError(t, handler.Verify(e.NewContext(req, rec)))
	return rec
}

func TestVerifyHandshake(t *testing.T) {
	handler := NewHandler("secret-verify", &recordingRouter{})

	tests := []struct {
		name          string
		mode          string
		token         string
		challenge     string
		wantStatus    int
		wantChallenge bool
	}{
		{"valid handshake", "subscribe", "secret-verify", "1158201444", http.StatusOK, true},
		{"wrong token", "subscribe", "wrong", "1158201444", http.StatusForbidden, false},
		{"wrong mode", "unsubscribe", "secret-verify", "1158201444", http.StatusForbidden, false},
		{"missing mode", "", "secret-verify", "1158201444", http.StatusBadRequest, false},
		{"missing token", "subscribe", "", "1158201444", http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := url.Values{}
			if tt.mode != "" {
				params.Set("hub.mode", tt.mode)
			}
			if tt.token != "" {
				params.Set("hub.verify_token", tt.token)
			}
			params.Set("hub.challenge", tt.challenge)

			rec := performVerify(t, handler, params)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantChallenge {
				assert.Equal(t, tt.challenge, rec.Body.String())
			} else {
				assert.NotEqual(t, tt.challenge, rec.Body.String())
			}
		})
	}
}

const instagramDelivery = `{
	"object": "instagram",
	"entry": [{
		"id": "p1",
		"time": 1740000000,
		"messaging": [{
			"sender": {"id": "c9"},
			"recipient": {"id": "p1"},
			"timestamp": 1740000000000,
			"message": {"mid": "m1", "text": "hi"}
		}]
	}]
}`

func performReceive(t *testing.T, handler *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, handler.Receive(e.NewContext(req, rec)))
	return rec
}

func TestReceiveAcksBeforeProcessing(t *testing.T) {
	router := &recordingRouter{block: make(chan struct{})}
	handler := NewHandler("secret-verify", router)

	rec := performReceive(t, handler, instagramDelivery)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EVENT_RECEIVED", rec.Body.String())
	// the ack came back while the processor was still blocked
	assert.Equal(t, 0, router.count())

	close(router.block)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, handler.Drain(ctx))
	assert.Equal(t, 1, router.count())
}

func TestReceiveFansOutAllEvents(t *testing.T) {
	router := &recordingRouter{}
	handler := NewHandler("secret-verify", router)

	body := `{
		"object": "page",
		"entry": [
			{"id": "p1", "messaging": [
				{"sender": {"id": "c1"}, "recipient": {"id": "p1"}, "message": {"text": "one"}},
				{"sender": {"id": "c2"}, "recipient": {"id": "p1"}, "message": {"text": "two"}}
			]},
			{"id": "p2", "messaging": [
				{"sender": {"id": "c3"}, "recipient": {"id": "p2"}, "message": {"text": "three"}}
			]}
		]
	}`
	rec := performReceive(t, handler, body)
	assert.Equal(t, http.StatusOK, rec.Code)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, handler.Drain(ctx))
	assert.Equal(t, 3, router.count())
}

func TestReceiveAcksUnsupportedObjectWithoutRouting(t *testing.T) {
	router := &recordingRouter{}
	handler := NewHandler("secret-verify", router)

	body := `{
		"object": "whatsapp_business_account",
		"entry": [{"id": "p1", "messaging": [
			{"sender": {"id": "c1"}, "recipient": {"id": "p1"}, "message": {"text": "hi"}}
		]}]
	}`
	rec := performReceive(t, handler, body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EVENT_RECEIVED", rec.Body.String())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, handler.Drain(ctx))
	assert.Equal(t, 0, router.count())
}

func TestDrainWaitsForInflightEvents(t *testing.T) {
	router := &recordingRouter{block: make(chan struct{})}
	handler := NewHandler("secret-verify", router)

	performReceive(t, handler, instagramDelivery)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, handler.Drain(ctx), context.DeadlineExceeded)

	close(router.block)
	ctx, cancel = context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, handler.Drain(ctx))
	assert.Equal(t, 1, router.count())
}

func TestReceiveMalformedBody(t *testing.T) {
	handler := NewHandler("secret-verify", &recordingRouter{})

	rec := performReceive(t, handler, `{"object": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnvelopePlatform(t *testing.T) {
	platform, ok := Envelope{Object: "instagram"}.Platform()
	require.True(t, ok)
	assert.Equal(t, "instagram", platform)

	platform, ok = Envelope{Object: "page"}.Platform()
	require.True(t, ok)
	assert.Equal(t, "facebook", platform)

	_, ok = Envelope{Object: "whatsapp_business_account"}.Platform()
	assert.False(t, ok)
}
