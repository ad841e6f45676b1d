package onboarding

import "time"

// CandidatePage is one page offered on the select-page screen. The
// page-scoped token is held server-side only and never serialized out.
type CandidatePage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"-"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Session is a pending onboarding, keyed by the authenticating user.
type Session struct {
	ID             string          `json:"id"`
	PlatformUserID string          `json:"platform_user_id"`
	DisplayName    string          `json:"display_name,omitempty"`
	Email          string          `json:"email,omitempty"`
	AvatarURL      string          `json:"avatar_url,omitempty"`
	Pages          []CandidatePage `json:"pages"`
	ExpiresAt      time.Time       `json:"expires_at"`
}

// NeedsEmail reports whether finalize still needs an email address for
// this session.
func (s Session) NeedsEmail() bool {
	return s.Email == ""
}

func (s Session) candidate(pageID string) (CandidatePage, bool) {
	for _, page := range s.Pages {
		if page.ID == pageID {
			return page, true
		}
	}
	return CandidatePage{}, false
}

// StartResult is the callback outcome: the stored session plus the
// branch the frontend should route to.
type StartResult struct {
	Session    Session
	NeedsEmail bool
}

// FinalizeRequest completes onboarding for one selected page.
type FinalizeRequest struct {
	SessionID       string `json:"session_id" validate:"required,uuid4"`
	PageID          string `json:"page_id" validate:"required"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
	BusinessName    string `json:"business_name,omitempty"`
	AcceptTerms     bool   `json:"accept_terms"`
	BookingProvider string `json:"booking_provider,omitempty" validate:"omitempty,oneof=none setmore square"`
	BookingAPIKey   string `json:"booking_api_key,omitempty"`
}
