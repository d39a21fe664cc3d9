package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid session token")
var ErrTokenExpired = errors.New("session token expired")

// SessionClaims is the signed payload carried by the admin_session cookie.
// The payload is visible to the client; only integrity is guaranteed, which
// is fine because it carries nothing but a role claim and timestamps.
type SessionClaims struct {
	Role      string `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// TokenCodec issues and verifies compact two-part signed tokens:
// base64url(payloadJSON) "." base64url(HMAC-SHA256(payloadJSON)).
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), now: time.Now}
}

// Issue serializes claims and appends the HMAC tag.
func (c *TokenCodec) Issue(claims SessionClaims) (string, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString(payload) + "." + enc.EncodeToString(c.sign(payload)), nil
}

// Verify checks the tag against a recomputed HMAC over the decoded payload
// bytes and then the expiry. Malformed structure or an undecodable component
// fails with ErrInvalidToken; a past exp fails with ErrTokenExpired.
func (c *TokenCodec) Verify(token string) (*SessionClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, ErrInvalidToken
	}

	enc := base64.RawURLEncoding
	payload, err := enc.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidToken
	}
	tag, err := enc.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !hmac.Equal(tag, c.sign(payload)) {
		return nil, ErrInvalidToken
	}

	var claims SessionClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt != 0 && claims.ExpiresAt <= c.now().Unix() {
		return nil, ErrTokenExpired
	}
	return &claims, nil
}

func (c *TokenCodec) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}
