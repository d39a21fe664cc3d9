package service

import (
	"time"

	"github.com/salonkit/leadgate/internal/core/domain"
	"github.com/salonkit/leadgate/internal/core/ports"
)

const defaultSessionTTL = 30 * 24 * time.Hour

// AuthService classifies presented credentials and manages the admin session
// cookie lifecycle.
type AuthService struct {
	pools CredentialPools
	codec *TokenCodec
	ttl   time.Duration
}

func NewAuthService(pools CredentialPools, sessionSecret string, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &AuthService{
		pools: pools,
		codec: NewTokenCodec(sessionSecret),
		ttl:   sessionTTL,
	}
}

// Classify resolves the request's credential to a tier. Only the first
// non-empty header source is consulted; the session cookie is a fallback for
// browser-based admin access when no header credential is present.
func (s *AuthService) Classify(creds ports.Credentials) domain.Tier {
	token := creds.Bearer
	if token == "" {
		token = creds.APIKey
	}
	if token == "" {
		token = creds.AdminKey
	}
	if token != "" {
		return s.pools.Classify(token)
	}

	if creds.SessionCookie != "" && s.VerifySession(creds.SessionCookie) == nil {
		return domain.TierAdmin
	}
	return domain.TierNone
}

// IssueSession signs a fresh admin session token.
func (s *AuthService) IssueSession() (string, int, error) {
	now := time.Now().Unix()
	token, err := s.codec.Issue(SessionClaims{
		Role:      domain.RoleAdmin,
		IssuedAt:  now,
		ExpiresAt: now + int64(s.ttl.Seconds()),
	})
	if err != nil {
		return "", 0, err
	}
	return token, int(s.ttl.Seconds()), nil
}

// VerifySession checks signature, expiry, and the admin role claim.
func (s *AuthService) VerifySession(token string) error {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return err
	}
	if claims.Role != domain.RoleAdmin {
		return ErrInvalidToken
	}
	return nil
}
