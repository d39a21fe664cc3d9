package ports

import (
	"github.com/salonkit/leadgate/internal/core/domain"
)

// Credentials carries the raw values a request may present, extracted by the
// transport layer. Only the first non-empty source is consulted, in the
// order: Bearer, APIKey, AdminKey.
type Credentials struct {
	Bearer        string
	APIKey        string
	AdminKey      string
	SessionCookie string
}

// AuthService classifies request credentials and manages admin sessions.
type AuthService interface {
	// Classify resolves the presented credential against the configured
	// secret pools. A valid admin_session cookie also yields TierAdmin.
	Classify(creds Credentials) domain.Tier

	// IssueSession returns a signed admin session token and its lifetime in
	// seconds.
	IssueSession() (token string, maxAge int, err error)

	// VerifySession checks a session token's signature and expiry.
	VerifySession(token string) error
}
