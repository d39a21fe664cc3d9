package service

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/salonkit/leadgate/internal/core/domain"
)

// CredentialPools holds the configured secret sets per tier. Secrets pasted
// into deployment dashboards routinely pick up trailing newlines or zero-width
// characters, so both sides of every comparison are normalized first.
//
// A pool entry may also be a bcrypt hash (recognised by its $2 prefix); the
// presented token is then checked against the hash instead of compared
// directly, which keeps plaintext secrets out of the environment.
type CredentialPools struct {
	API   []string
	Admin []string
}

// NewCredentialPools normalizes the given secrets and drops empty entries.
func NewCredentialPools(api, admin []string) CredentialPools {
	return CredentialPools{
		API:   normalizeAll(api),
		Admin: normalizeAll(admin),
	}
}

// Classify resolves a presented token to a tier. The admin pool wins over the
// API pool; an empty or unmatched token classifies as TierNone. Pure function
// of (token, pools).
func (p CredentialPools) Classify(token string) domain.Tier {
	token = NormalizeSecret(token)
	if token == "" {
		return domain.TierNone
	}
	if matchAny(token, p.Admin) {
		return domain.TierAdmin
	}
	if matchAny(token, p.API) {
		return domain.TierAPI
	}
	return domain.TierNone
}

func matchAny(token string, pool []string) bool {
	matched := false
	for _, secret := range pool {
		// No early exit: every entry is compared so timing does not reveal
		// which pool position matched.
		if secretEqual(token, secret) {
			matched = true
		}
	}
	return matched
}

func secretEqual(got, want string) bool {
	if isBcryptHash(want) {
		return bcrypt.CompareHashAndPassword([]byte(want), []byte(got)) == nil
	}
	if subtle.ConstantTimeEq(int32(len(got)), int32(len(want))) == 0 {
		// Length mismatch: still run a same-length comparison so the only
		// information leaked is the length itself.
		subtle.ConstantTimeCompare([]byte(got), []byte(got))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// NormalizeSecret strips newlines, zero-width runes, and surrounding
// whitespace from a secret or presented token.
func NormalizeSecret(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n',
			'\u200b', '\u200c', '\u200d', // zero-width space/joiners
			'\u2060', '\ufeff': // word joiner, BOM
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

func normalizeAll(secrets []string) []string {
	out := make([]string, 0, len(secrets))
	for _, s := range secrets {
		if n := NormalizeSecret(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}
