// Package tenant is the directory of onboarded businesses.
package tenant

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

var ErrNotFound = errors.New("tenant not found")

// Tenant is an onboarded business account with its linked page.
type Tenant struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"display_name"`
	Email           string    `json:"email"`
	AvatarURL       string    `json:"avatar_url,omitempty"`
	BusinessName    string    `json:"business_name,omitempty"`
	SheetID         string    `json:"sheet_id,omitempty"`
	PlatformUserID  string    `json:"platform_user_id,omitempty"`
	PageID          string    `json:"page_id,omitempty"`
	PageAccessToken string    `json:"-"`
	Plan            string    `json:"plan"`
	AIInstagram     bool      `json:"ai_instagram"`
	AIFacebook      bool      `json:"ai_facebook"`
	BookingProvider string    `json:"booking_provider"`
	BookingAPIKey   string    `json:"-"`
	TermsVersion    string    `json:"terms_version,omitempty"`
	TermsAgreedAt   time.Time `json:"terms_agreed_at,omitzero"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AIEnabledFor reports the tenant-level kill switch for a platform.
// Unknown platforms are treated as disabled.
func (t Tenant) AIEnabledFor(platform string) bool {
	switch platform {
	case "instagram":
		return t.AIInstagram
	case "facebook":
		return t.AIFacebook
	default:
		return false
	}
}

// UpsertParams carries the finalize-time identity of a tenant. Sheet id
// and terms fields only apply on first insert.
type UpsertParams struct {
	DisplayName     string
	Email           string
	AvatarURL       string
	BusinessName    string
	PlatformUserID  string
	PageID          string
	PageAccessToken string
	SheetID         string
	BookingProvider string
	BookingAPIKey   string
	TermsVersion    string
}

type Service struct {
	queries *sqlc.Queries
	logger  *slog.Logger
}

func NewService(queries *sqlc.Queries) *Service {
	return &Service{
		queries: queries,
		logger:  logger.L.With(slog.String("service", "tenant")),
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (Tenant, error) {
	tenantID, err := db.ParseUUID(id)
	if err != nil {
		return Tenant{}, fmt.Errorf("parse tenant id: %w", err)
	}
	row, err := s.queries.GetTenantByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, ErrNotFound
		}
		return Tenant{}, fmt.Errorf("get tenant: %w", err)
	}
	return fromRow(row), nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (Tenant, error) {
	row, err := s.queries.GetTenantByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, ErrNotFound
		}
		return Tenant{}, fmt.Errorf("get tenant by email: %w", err)
	}
	return fromRow(row), nil
}

func (s *Service) GetByPageID(ctx context.Context, pageID string) (Tenant, error) {
	row, err := s.queries.GetTenantByPageID(ctx, pgtype.Text{String: pageID, Valid: true})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, ErrNotFound
		}
		return Tenant{}, fmt.Errorf("get tenant by page: %w", err)
	}
	return fromRow(row), nil
}

// UpsertFromOnboarding creates or refreshes a tenant keyed by email.
// Re-onboarding overwrites the identity and page link while keeping the
// first-insert defaults.
func (s *Service) UpsertFromOnboarding(ctx context.Context, params UpsertParams) (Tenant, error) {
	row, err := s.queries.UpsertTenantFromOnboarding(ctx, sqlc.UpsertTenantFromOnboardingParams{
		DisplayName:     textOrNull(params.DisplayName),
		Email:           params.Email,
		AvatarUrl:       textOrNull(params.AvatarURL),
		BusinessName:    textOrNull(params.BusinessName),
		PlatformUserID:  textOrNull(params.PlatformUserID),
		PageID:          textOrNull(params.PageID),
		PageAccessToken: textOrNull(params.PageAccessToken),
		SheetID:         textOrNull(params.SheetID),
		BookingProvider: params.BookingProvider,
		BookingApiKey:   textOrNull(params.BookingAPIKey),
		TermsVersion:    textOrNull(params.TermsVersion),
	})
	if err != nil {
		return Tenant{}, fmt.Errorf("upsert tenant: %w", err)
	}
	s.logger.Info("tenant upserted",
		slog.String("tenant_id", db.UUIDString(row.ID)),
		slog.String("page_id", row.PageID.String))
	return fromRow(row), nil
}

// SetPlatformAI flips a tenant's AI flag for one platform.
func (s *Service) SetPlatformAI(ctx context.Context, id, platform string, enabled bool) (Tenant, error) {
	if platform != "instagram" && platform != "facebook" {
		return Tenant{}, fmt.Errorf("unsupported platform %q", platform)
	}
	tenantID, err := db.ParseUUID(id)
	if err != nil {
		return Tenant{}, fmt.Errorf("parse tenant id: %w", err)
	}
	row, err := s.queries.SetTenantPlatformAi(ctx, sqlc.SetTenantPlatformAiParams{
		ID:       tenantID,
		Platform: platform,
		Enabled:  enabled,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, ErrNotFound
		}
		return Tenant{}, fmt.Errorf("set platform ai: %w", err)
	}
	return fromRow(row), nil
}

func fromRow(row sqlc.Tenant) Tenant {
	return Tenant{
		ID:              db.UUIDString(row.ID),
		DisplayName:     row.DisplayName.String,
		Email:           row.Email,
		AvatarURL:       row.AvatarUrl.String,
		BusinessName:    row.BusinessName.String,
		SheetID:         row.SheetID.String,
		PlatformUserID:  row.PlatformUserID.String,
		PageID:          row.PageID.String,
		PageAccessToken: row.PageAccessToken.String,
		Plan:            row.Plan,
		AIInstagram:     row.AiInstagram,
		AIFacebook:      row.AiFacebook,
		BookingProvider: row.BookingProvider,
		BookingAPIKey:   row.BookingApiKey.String,
		TermsVersion:    row.TermsVersion.String,
		TermsAgreedAt:   row.TermsAgreedAt.Time,
		CreatedAt:       row.CreatedAt.Time,
		UpdatedAt:       row.UpdatedAt.Time,
	}
}

func textOrNull(value string) pgtype.Text {
	if value == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: value, Valid: true}
}
