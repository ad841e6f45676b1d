package meta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inboxai/inboxd/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(config.MetaConfig{
		AppID:          "app-1",
		AppSecret:      "secret-1",
		GraphBaseURL:   server.URL,
		GraphVersion:   "v19.0",
		OAuthDialogURL: server.URL + "/dialog/oauth",
	})
	return client, server
}

func TestAuthCodeURL(t *testing.T) {
	client, server := newTestClient(t, http.NotFoundHandler())

	raw := client.AuthCodeURL("https://example.com/cb", "state-1")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, server.URL+"/dialog/oauth", parsed.Scheme+"://"+parsed.Host+parsed.Path)
	query := parsed.Query()
	assert.Equal(t, "app-1", query.Get("client_id"))
	assert.Equal(t, "https://example.com/cb", query.Get("redirect_uri"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "state-1", query.Get("state"))
	scope := query.Get("scope")
	assert.Contains(t, scope, "pages_messaging")
	// without the email scope every onboarding would be forced through
	// the enter-email branch
	assert.Contains(t, scope, "email")
	assert.Contains(t, scope, "public_profile")
}

func TestExchangeLongLivedUserToken(t *testing.T) {
	var gotQuery url.Values
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v19.0/oauth/access_token", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"long-lived","token_type":"bearer","expires_in":5183944}`))
	}))

	token, err := client.ExchangeLongLivedUserToken(context.Background(), "short-lived")
	require.NoError(t, err)
	assert.Equal(t, "long-lived", token)
	assert.Equal(t, "fb_exchange_token", gotQuery.Get("grant_type"))
	assert.Equal(t, "short-lived", gotQuery.Get("fb_exchange_token"))
	assert.Equal(t, "app-1", gotQuery.Get("client_id"))
	assert.Equal(t, "secret-1", gotQuery.Get("client_secret"))
}

func TestDebugTokenScopes(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/debug_token", r.URL.Path)
		assert.Equal(t, "user-token", r.URL.Query().Get("input_token"))
		assert.Equal(t, "app-1|secret-1", r.URL.Query().Get("access_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"app_id":"app-1","is_valid":true,"scopes":["pages_messaging","pages_show_list"]}}`))
	}))

	scopes, err := client.DebugTokenScopes(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, []string{"pages_messaging", "pages_show_list"}, scopes)
}

func TestDebugTokenScopesInvalidToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"is_valid":false}}`))
	}))

	_, err := client.DebugTokenScopes(context.Background(), "user-token")
	require.ErrorIs(t, err, ErrUpstream)
}

func TestGetProfile(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v19.0/me", r.URL.Path)
		assert.Equal(t, "id,name,email,picture", r.URL.Query().Get("fields"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u1","name":"Ada","email":"ada@example.com","picture":{"data":{"url":"https://cdn/p.jpg"}}}`))
	}))

	profile, err := client.GetProfile(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, Profile{ID: "u1", Name: "Ada", Email: "ada@example.com", AvatarURL: "https://cdn/p.jpg"}, profile)
}

func TestListMessagingPagesFiltersUnlinkedPages(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v19.0/me/accounts", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":"p1","name":"Linked","access_token":"pt-1","picture":{"data":{"url":"https://cdn/p1.jpg"}},"instagram_business_account":{"id":"ig-1"}},
			{"id":"p2","name":"Unlinked","access_token":"pt-2"}
		]}`))
	}))

	pages, err := client.ListMessagingPages(context.Background(), "user-token")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "p1", pages[0].ID)
	assert.Equal(t, "ig-1", pages[0].InstagramID)
	assert.Equal(t, "pt-1", pages[0].AccessToken)
}

func TestListMessagingPagesFollowsPaging(t *testing.T) {
	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/v19.0/me/accounts", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"p1","name":"One","access_token":"pt-1","instagram_business_account":{"id":"ig-1"}}],` +
			`"paging":{"next":"` + server.URL + `/v19.0/me/accounts/page2"}}`))
	})
	mux.HandleFunc("/v19.0/me/accounts/page2", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"p2","name":"Two","access_token":"pt-2","instagram_business_account":{"id":"ig-2"}}]}`))
	})
	client, srv := newTestClient(t, mux)
	server = srv

	pages, err := client.ListMessagingPages(context.Background(), "user-token")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "p1", pages[0].ID)
	assert.Equal(t, "p2", pages[1].ID)
}

func TestGetPageOwnerBusiness(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v19.0/p1", r.URL.Path)
		assert.Equal(t, "owner_business", r.URL.Query().Get("fields"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"p1","owner_business":{"id":"biz-1","name":"Acme"}}`))
	}))

	businessID, err := client.GetPageOwnerBusiness(context.Background(), "p1", "pt-1")
	require.NoError(t, err)
	assert.Equal(t, "biz-1", businessID)
}

func TestGetPageOwnerBusinessAbsent(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"p1"}`))
	}))

	businessID, err := client.GetPageOwnerBusiness(context.Background(), "p1", "pt-1")
	require.NoError(t, err)
	assert.Empty(t, businessID)
}

func TestSubscribePageWebhooks(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v19.0/p1/subscribed_apps", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "messages", r.PostForm.Get("subscribed_fields"))
		assert.Equal(t, "pt-1", r.PostForm.Get("access_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))

	require.NoError(t, client.SubscribePageWebhooks(context.Background(), "p1", "pt-1"))
}

func TestSubscribePageWebhooksFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"insufficient permission","type":"OAuthException","code":200}}`))
	}))

	err := client.SubscribePageWebhooks(context.Background(), "p1", "pt-1")
	require.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "insufficient permission")
}

func TestGetContactProfile(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v19.0/c9", r.URL.Path)
		assert.Equal(t, "name,profile_pic", r.URL.Query().Get("fields"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Grace","profile_pic":"https://cdn/g.jpg"}`))
	}))

	contact, err := client.GetContactProfile(context.Background(), "c9", "pt-1")
	require.NoError(t, err)
	assert.Equal(t, ContactProfile{Name: "Grace", AvatarURL: "https://cdn/g.jpg"}, contact)
}
