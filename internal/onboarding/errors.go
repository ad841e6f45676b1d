package onboarding

import "errors"

var (
	// ErrUpstreamAuth covers every Graph API failure inside the
	// onboarding chain. The chain is atomic: any upstream failure
	// leaves no tenant behind.
	ErrUpstreamAuth = errors.New("upstream authentication failed")

	// ErrNoEligiblePages means the user completed the login dialog but
	// administers no page that passes the eligibility filter.
	ErrNoEligiblePages = errors.New("no eligible pages")

	// ErrSessionExpired means the pending session is gone, either by
	// TTL or because finalize already consumed it.
	ErrSessionExpired = errors.New("onboarding session expired")

	// ErrInvalidSelection means the chosen page is not one of the
	// session's candidates.
	ErrInvalidSelection = errors.New("selected page is not a candidate")

	// ErrTermsNotAccepted rejects finalize without terms acceptance.
	ErrTermsNotAccepted = errors.New("terms of service not accepted")

	// ErrPageAlreadyLinked means another tenant already owns the page.
	ErrPageAlreadyLinked = errors.New("page already linked to another tenant")
)
