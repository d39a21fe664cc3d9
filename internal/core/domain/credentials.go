package domain

// RoleAdmin is the role claim carried by admin session tokens.
const RoleAdmin = "admin"

// Tier is the authorization level granted by a presented credential.
// Admin access is a strict superset of API access.
type Tier string

const (
	TierNone  Tier = "none"
	TierAPI   Tier = "api"
	TierAdmin Tier = "admin"
)

// Allows reports whether a credential of tier t satisfies the required tier.
func (t Tier) Allows(required Tier) bool {
	switch required {
	case TierNone:
		return true
	case TierAPI:
		return t == TierAPI || t == TierAdmin
	case TierAdmin:
		return t == TierAdmin
	}
	return false
}
