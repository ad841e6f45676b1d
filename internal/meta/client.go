// Package meta talks to the Meta Graph API: OAuth token exchange, page
// discovery, webhook subscription management and contact profile lookups.
package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/inboxai/inboxd/internal/config"
	"github.com/inboxai/inboxd/internal/logger"
)

// ErrUpstream wraps any Graph API failure so callers can map the whole
// family to a single auth failure without inspecting HTTP details.
var ErrUpstream = errors.New("graph api request failed")

// Client is a bounded-timeout Graph API client. All methods take a
// context and return ErrUpstream-wrapped errors on non-2xx responses.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	version     string
	dialogURL   string
	appID       string
	appSecret   string
	systemToken string
	logger      *slog.Logger
}

func NewClient(cfg config.MetaConfig) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout()},
		baseURL:     strings.TrimRight(cfg.GraphBaseURL, "/"),
		version:     cfg.GraphVersion,
		dialogURL:   cfg.OAuthDialogURL,
		appID:       cfg.AppID,
		appSecret:   cfg.AppSecret,
		systemToken: cfg.SystemUserToken,
		logger:      logger.L.With(slog.String("client", "meta")),
	}
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + c.version + path
}

func (c *Client) oauthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.appID,
		ClientSecret: c.appSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"public_profile",
			"email",
			"instagram_basic",
			"instagram_manage_messages",
			"pages_show_list",
			"pages_messaging",
			"pages_manage_metadata",
			"business_management",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.dialogURL,
			TokenURL: c.endpoint("/oauth/access_token"),
		},
	}
}

// AuthCodeURL builds the login dialog URL the onboarding entrypoint
// redirects the browser to.
func (c *Client) AuthCodeURL(redirectURI, state string) string {
	return c.oauthConfig(redirectURI).AuthCodeURL(state)
}

// ExchangeCode trades the dialog callback code for a short-lived user token.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.oauthConfig(redirectURI).Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: exchange code: %v", ErrUpstream, err)
	}
	return token.AccessToken, nil
}

// ExchangeLongLivedUserToken upgrades a short-lived user token via the
// fb_exchange_token grant.
func (c *Client) ExchangeLongLivedUserToken(ctx context.Context, shortToken string) (string, error) {
	return c.exchangeLongLived(ctx, shortToken)
}

// ExchangeLongLivedPageToken upgrades a page-scoped token through the same
// grant. The endpoint is shared with the user token upgrade; keeping two
// entrypoints keeps the call sites honest about which token they hold.
func (c *Client) ExchangeLongLivedPageToken(ctx context.Context, pageToken string) (string, error) {
	return c.exchangeLongLived(ctx, pageToken)
}

func (c *Client) exchangeLongLived(ctx context.Context, token string) (string, error) {
	query := url.Values{}
	query.Set("grant_type", "fb_exchange_token")
	query.Set("client_id", c.appID)
	query.Set("client_secret", c.appSecret)
	query.Set("fb_exchange_token", token)

	var resp tokenResponse
	if err := c.get(ctx, c.endpoint("/oauth/access_token"), query, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty long-lived token", ErrUpstream)
	}
	return resp.AccessToken, nil
}

// DebugTokenScopes returns the granted permission scopes of a user token,
// inspected with the app access token.
func (c *Client) DebugTokenScopes(ctx context.Context, userToken string) ([]string, error) {
	query := url.Values{}
	query.Set("input_token", userToken)
	query.Set("access_token", c.appID+"|"+c.appSecret)

	var resp debugTokenResponse
	if err := c.get(ctx, c.baseURL+"/debug_token", query, &resp); err != nil {
		return nil, err
	}
	if !resp.Data.IsValid {
		return nil, fmt.Errorf("%w: token is not valid", ErrUpstream)
	}
	return resp.Data.Scopes, nil
}

// GetProfile fetches the authenticating user's profile.
func (c *Client) GetProfile(ctx context.Context, userToken string) (Profile, error) {
	query := url.Values{}
	query.Set("fields", "id,name,email,picture")
	query.Set("access_token", userToken)

	var resp profileResponse
	if err := c.get(ctx, c.endpoint("/me"), query, &resp); err != nil {
		return Profile{}, err
	}
	return Profile{
		ID:        resp.ID,
		Name:      resp.Name,
		Email:     resp.Email,
		AvatarURL: resp.Picture.Data.URL,
	}, nil
}

// ListMessagingPages returns the pages the user administers that have a
// linked Instagram business account, following pagination.
func (c *Client) ListMessagingPages(ctx context.Context, userToken string) ([]Page, error) {
	query := url.Values{}
	query.Set("fields", "id,name,access_token,picture,instagram_business_account")
	query.Set("access_token", userToken)

	endpoint := c.endpoint("/me/accounts")
	var pages []Page
	for endpoint != "" {
		var resp accountsResponse
		if err := c.get(ctx, endpoint, query, &resp); err != nil {
			return nil, err
		}
		for _, item := range resp.Data {
			page := Page{
				ID:          item.ID,
				Name:        item.Name,
				AccessToken: item.AccessToken,
				AvatarURL:   item.Picture.Data.URL,
			}
			if item.InstagramBusinessAccount != nil {
				page.InstagramID = item.InstagramBusinessAccount.ID
			}
			if page.InstagramID == "" {
				continue
			}
			pages = append(pages, page)
		}
		endpoint = resp.Paging.Next
		query = nil
	}
	return pages, nil
}

// GetPageOwnerBusiness returns the owning business id of a page, or empty
// when the page has none.
func (c *Client) GetPageOwnerBusiness(ctx context.Context, pageID, pageToken string) (string, error) {
	query := url.Values{}
	query.Set("fields", "owner_business")
	query.Set("access_token", pageToken)

	var resp ownerBusinessResponse
	if err := c.get(ctx, c.endpoint("/"+pageID), query, &resp); err != nil {
		return "", err
	}
	if resp.OwnerBusiness == nil {
		return "", nil
	}
	return resp.OwnerBusiness.ID, nil
}

// SubscribePageWebhooks subscribes the app to message deliveries of a page.
func (c *Client) SubscribePageWebhooks(ctx context.Context, pageID, accessToken string) error {
	form := url.Values{}
	form.Set("subscribed_fields", "messages")
	form.Set("access_token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("/"+pageID+"/subscribed_apps"), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build subscribe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp subscribeResponse
	if err := c.do(req, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: subscribed_apps did not report success", ErrUpstream)
	}
	return nil
}

// SystemToken returns the platform service token used when webhook
// subscriptions are registered with an app-level credential.
func (c *Client) SystemToken() string {
	return c.systemToken
}

// GetContactProfile fetches a message sender's public profile with the
// page access token.
func (c *Client) GetContactProfile(ctx context.Context, contactID, pageToken string) (ContactProfile, error) {
	query := url.Values{}
	query.Set("fields", "name,profile_pic")
	query.Set("access_token", pageToken)

	var resp contactProfileResponse
	if err := c.get(ctx, c.endpoint("/"+contactID), query, &resp); err != nil {
		return ContactProfile{}, err
	}
	return ContactProfile{Name: resp.Name, AvatarURL: resp.ProfilePic}, nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	if len(query) > 0 {
		endpoint = endpoint + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build graph request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var gerr graphError
		if json.Unmarshal(body, &gerr) == nil && gerr.Error.Message != "" {
			c.logger.Warn("graph api error",
				slog.Int("status", resp.StatusCode),
				slog.Int("code", gerr.Error.Code),
				slog.String("message", gerr.Error.Message))
			return fmt.Errorf("%w: %s (code %d)", ErrUpstream, gerr.Error.Message, gerr.Error.Code)
		}
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return nil
}
