package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/salonkit/leadgate/internal/api/metrics"
	"github.com/salonkit/leadgate/internal/core/domain"
	"github.com/salonkit/leadgate/internal/core/ports"
)

// SessionCookieName is the admin session cookie set by /admin/login.
const SessionCookieName = "admin_session"

// tierContextKey is where RequireTier stores the classified tier.
const tierContextKey = "auth_tier"

// ExtractCredentials pulls every credential source a request may carry.
// Classification order is decided by the auth service, not here.
func ExtractCredentials(c echo.Context) ports.Credentials {
	creds := ports.Credentials{
		APIKey:   c.Request().Header.Get("X-Api-Key"),
		AdminKey: c.Request().Header.Get("X-Admin-Key"),
	}

	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			creds.Bearer = strings.TrimSpace(parts[1])
		}
	}

	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		creds.SessionCookie = cookie.Value
	}

	return creds
}

// RequireTier classifies the request's credentials and rejects it unless the
// resulting tier covers required. The classified tier is stored on the
// context for handlers that want it.
func RequireTier(auth ports.AuthService, required domain.Tier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tier := auth.Classify(ExtractCredentials(c))
			c.Set(tierContextKey, tier)

			if !tier.Allows(required) {
				metrics.AuthFailuresTotal.WithLabelValues(string(required)).Inc()
				c.Response().Header().Set("X-Auth-Mode", string(required))
				return c.JSON(http.StatusUnauthorized, map[string]any{
					"ok":    false,
					"error": "unauthorized",
					"need":  string(required),
				})
			}

			return next(c)
		}
	}
}

// TierFromContext returns the tier RequireTier stored, or TierNone.
func TierFromContext(c echo.Context) domain.Tier {
	if tier, ok := c.Get(tierContextKey).(domain.Tier); ok {
		return tier
	}
	return domain.TierNone
}
