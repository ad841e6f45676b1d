// Package onboarding runs the OAuth onboarding pipeline: token exchange,
// page discovery, pending-session bookkeeping and tenant creation.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/inboxai/inboxd/internal/config"
	"github.com/inboxai/inboxd/internal/logger"
	"github.com/inboxai/inboxd/internal/meta"
	"github.com/inboxai/inboxd/internal/tenant"
)

const requiredScope = "pages_messaging"

// Page filter and subscription credential modes, selected by config.
const (
	PageFilterInstagram     = "instagram"
	PageFilterBusinessOwner = "business_owner"

	SubscribeCredentialPage = "page"
	SubscribeCredentialApp  = "app"
)

type gateway interface {
	ExchangeCode(ctx context.Context, code, redirectURI string) (string, error)
	ExchangeLongLivedUserToken(ctx context.Context, shortToken string) (string, error)
	ExchangeLongLivedPageToken(ctx context.Context, pageToken string) (string, error)
	DebugTokenScopes(ctx context.Context, userToken string) ([]string, error)
	GetProfile(ctx context.Context, userToken string) (meta.Profile, error)
	ListMessagingPages(ctx context.Context, userToken string) ([]meta.Page, error)
	GetPageOwnerBusiness(ctx context.Context, pageID, pageToken string) (string, error)
	SubscribePageWebhooks(ctx context.Context, pageID, accessToken string) error
	SystemToken() string
}

type tenantDirectory interface {
	GetByPageID(ctx context.Context, pageID string) (tenant.Tenant, error)
	UpsertFromOnboarding(ctx context.Context, params tenant.UpsertParams) (tenant.Tenant, error)
}

type sessionStore interface {
	Upsert(ctx context.Context, session Session, ttl time.Duration) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	SetEmail(ctx context.Context, id, email string) (Session, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	gateway  gateway
	tenants  tenantDirectory
	sessions sessionStore
	cfg      config.OnboardingConfig
	logger   *slog.Logger
}

func NewService(gw gateway, tenants tenantDirectory, sessions sessionStore, cfg config.OnboardingConfig) *Service {
	return &Service{
		gateway:  gw,
		tenants:  tenants,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger.L.With(slog.String("service", "onboarding")),
	}
}

// Start runs the callback half of the pipeline: code for tokens, scope
// check, profile, eligible pages, pending session. The chain fails fast;
// nothing is persisted unless every upstream call succeeds.
func (s *Service) Start(ctx context.Context, code, redirectURI string) (StartResult, error) {
	shortToken, err := s.gateway.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		return StartResult{}, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}
	userToken, err := s.gateway.ExchangeLongLivedUserToken(ctx, shortToken)
	if err != nil {
		return StartResult{}, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}

	scopes, err := s.gateway.DebugTokenScopes(ctx, userToken)
	if err != nil {
		return StartResult{}, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}
	if !slices.Contains(scopes, requiredScope) {
		return StartResult{}, fmt.Errorf("%w: scope %s not granted", ErrUpstreamAuth, requiredScope)
	}

	profile, err := s.gateway.GetProfile(ctx, userToken)
	if err != nil {
		return StartResult{}, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}

	pages, err := s.gateway.ListMessagingPages(ctx, userToken)
	if err != nil {
		return StartResult{}, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}
	candidates, err := s.filterPages(ctx, pages)
	if err != nil {
		return StartResult{}, err
	}
	if len(candidates) == 0 {
		return StartResult{}, ErrNoEligiblePages
	}

	session, err := s.sessions.Upsert(ctx, Session{
		PlatformUserID: profile.ID,
		DisplayName:    profile.Name,
		Email:          profile.Email,
		AvatarURL:      profile.AvatarURL,
		Pages:          candidates,
	}, s.cfg.SessionTTL())
	if err != nil {
		return StartResult{}, err
	}

	s.logger.Info("onboarding session started",
		slog.String("session_id", session.ID),
		slog.String("platform_user_id", session.PlatformUserID),
		slog.Int("candidate_pages", len(session.Pages)))
	return StartResult{Session: session, NeedsEmail: session.NeedsEmail()}, nil
}

func (s *Service) filterPages(ctx context.Context, pages []meta.Page) ([]CandidatePage, error) {
	candidates := make([]CandidatePage, 0, len(pages))
	for _, page := range pages {
		if s.cfg.PageFilter == PageFilterBusinessOwner {
			businessID, err := s.gateway.GetPageOwnerBusiness(ctx, page.ID, page.AccessToken)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
			}
			if businessID == "" {
				continue
			}
		}
		candidates = append(candidates, CandidatePage{
			ID:          page.ID,
			Name:        page.Name,
			AccessToken: page.AccessToken,
			AvatarURL:   page.AvatarURL,
		})
	}
	return candidates, nil
}

// GetSession returns a live pending session.
func (s *Service) GetSession(ctx context.Context, id string) (Session, error) {
	return s.sessions.Get(ctx, id)
}

// AddEmail records the email collected on the enter-email screen.
func (s *Service) AddEmail(ctx context.Context, id, email string) (Session, error) {
	return s.sessions.SetEmail(ctx, id, email)
}

// Finalize turns a pending session and a selected page into a tenant.
// The session is consumed on success, so finalize is single-shot.
func (s *Service) Finalize(ctx context.Context, req FinalizeRequest) (tenant.Tenant, error) {
	if !req.AcceptTerms {
		return tenant.Tenant{}, ErrTermsNotAccepted
	}

	session, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return tenant.Tenant{}, err
	}

	candidate, ok := session.candidate(req.PageID)
	if !ok {
		return tenant.Tenant{}, ErrInvalidSelection
	}

	email := session.Email
	if req.Email != "" {
		email = req.Email
	}
	if email == "" {
		return tenant.Tenant{}, fmt.Errorf("%w: email is required", ErrInvalidSelection)
	}

	pageToken, err := s.gateway.ExchangeLongLivedPageToken(ctx, candidate.AccessToken)
	if err != nil {
		return tenant.Tenant{}, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}

	existing, err := s.tenants.GetByPageID(ctx, candidate.ID)
	if err != nil && !errors.Is(err, tenant.ErrNotFound) {
		return tenant.Tenant{}, err
	}
	if err == nil && existing.Email != email {
		return tenant.Tenant{}, ErrPageAlreadyLinked
	}

	created, err := s.tenants.UpsertFromOnboarding(ctx, tenant.UpsertParams{
		DisplayName:     session.DisplayName,
		Email:           email,
		AvatarURL:       session.AvatarURL,
		BusinessName:    req.BusinessName,
		PlatformUserID:  session.PlatformUserID,
		PageID:          candidate.ID,
		PageAccessToken: pageToken,
		SheetID:         s.cfg.DefaultSheetID,
		BookingProvider: req.BookingProvider,
		BookingAPIKey:   req.BookingAPIKey,
		TermsVersion:    s.cfg.TermsVersion,
	})
	if err != nil {
		return tenant.Tenant{}, err
	}

	// Webhook registration is best effort. The tenant exists either way
	// and the subscription can be repaired out of band.
	if err := s.gateway.SubscribePageWebhooks(ctx, candidate.ID, s.subscribeToken(pageToken)); err != nil {
		s.logger.Warn("webhook subscription failed",
			slog.String("tenant_id", created.ID),
			slog.String("page_id", candidate.ID),
			slog.Any("error", err))
	}

	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		s.logger.Warn("failed to delete consumed session",
			slog.String("session_id", session.ID),
			slog.Any("error", err))
	}

	s.logger.Info("onboarding finalized",
		slog.String("tenant_id", created.ID),
		slog.String("page_id", candidate.ID))
	return created, nil
}

func (s *Service) subscribeToken(pageToken string) string {
	if s.cfg.SubscribeCredential == SubscribeCredentialApp {
		if token := s.gateway.SystemToken(); token != "" {
			return token
		}
	}
	return pageToken
}
