package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/inboxai/inboxd/internal/db"
	"github.com/inboxai/inboxd/internal/db/sqlc"
)

// storedPage is the jsonb shape of a candidate page. Unlike the API
// shape it keeps the page token, which lives server-side only.
type storedPage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Store persists pending sessions. Reads only see rows whose TTL has
// not elapsed; the sweeper removes the rest.
type Store struct {
	queries *sqlc.Queries
}

func NewStore(queries *sqlc.Queries) *Store {
	return &Store{queries: queries}
}

// Upsert stores a session keyed by the authenticating user, restarting
// the TTL. Returning from the dialog twice refreshes the same row.
func (s *Store) Upsert(ctx context.Context, session Session, ttl time.Duration) (Session, error) {
	pages := make([]storedPage, 0, len(session.Pages))
	for _, page := range session.Pages {
		pages = append(pages, storedPage{
			ID:          page.ID,
			Name:        page.Name,
			AccessToken: page.AccessToken,
			AvatarURL:   page.AvatarURL,
		})
	}
	encoded, err := json.Marshal(pages)
	if err != nil {
		return Session{}, fmt.Errorf("encode candidate pages: %w", err)
	}

	row, err := s.queries.UpsertOnboardingSession(ctx, sqlc.UpsertOnboardingSessionParams{
		PlatformUserID: session.PlatformUserID,
		DisplayName:    textOrNull(session.DisplayName),
		Email:          textOrNull(session.Email),
		AvatarUrl:      textOrNull(session.AvatarURL),
		Pages:          encoded,
		ExpiresAt:      pgtype.Timestamptz{Time: time.Now().Add(ttl), Valid: true},
	})
	if err != nil {
		return Session{}, fmt.Errorf("upsert onboarding session: %w", err)
	}
	return sessionFromRow(row)
}

// Get returns a live session or ErrSessionExpired.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	sessionID, err := db.ParseUUID(id)
	if err != nil {
		return Session{}, fmt.Errorf("parse session id: %w", err)
	}
	row, err := s.queries.GetOnboardingSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrSessionExpired
		}
		return Session{}, fmt.Errorf("get onboarding session: %w", err)
	}
	return sessionFromRow(row)
}

// SetEmail records the email entered on the enter-email screen.
func (s *Store) SetEmail(ctx context.Context, id, email string) (Session, error) {
	sessionID, err := db.ParseUUID(id)
	if err != nil {
		return Session{}, fmt.Errorf("parse session id: %w", err)
	}
	row, err := s.queries.SetOnboardingSessionEmail(ctx, sqlc.SetOnboardingSessionEmailParams{
		ID:    sessionID,
		Email: textOrNull(email),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrSessionExpired
		}
		return Session{}, fmt.Errorf("set session email: %w", err)
	}
	return sessionFromRow(row)
}

// Delete removes a consumed session so a second finalize cannot reuse it.
func (s *Store) Delete(ctx context.Context, id string) error {
	sessionID, err := db.ParseUUID(id)
	if err != nil {
		return fmt.Errorf("parse session id: %w", err)
	}
	if err := s.queries.DeleteOnboardingSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete onboarding session: %w", err)
	}
	return nil
}

// DeleteExpired hard-deletes rows past their TTL, returning the count.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	removed, err := s.queries.DeleteExpiredOnboardingSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return removed, nil
}

func sessionFromRow(row sqlc.OnboardingSession) (Session, error) {
	var stored []storedPage
	if len(row.Pages) > 0 {
		if err := json.Unmarshal(row.Pages, &stored); err != nil {
			return Session{}, fmt.Errorf("decode candidate pages: %w", err)
		}
	}
	pages := make([]CandidatePage, 0, len(stored))
	for _, page := range stored {
		pages = append(pages, CandidatePage{
			ID:          page.ID,
			Name:        page.Name,
			AccessToken: page.AccessToken,
			AvatarURL:   page.AvatarURL,
		})
	}
	return Session{
		ID:             db.UUIDString(row.ID),
		PlatformUserID: row.PlatformUserID,
		DisplayName:    row.DisplayName.String,
		Email:          row.Email.String,
		AvatarURL:      row.AvatarUrl.String,
		Pages:          pages,
		ExpiresAt:      row.ExpiresAt.Time,
	}, nil
}

func textOrNull(value string) pgtype.Text {
	if value == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: value, Valid: true}
}
