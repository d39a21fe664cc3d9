package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/salonkit/leadgate/internal/api/middleware"
	"github.com/salonkit/leadgate/internal/core/domain"
	"github.com/salonkit/leadgate/internal/core/ports"
)

// AdminHandler exchanges an admin secret for a signed session cookie, so the
// browser dashboard does not need to hold the secret past login.
type AdminHandler struct {
	auth   ports.AuthService
	secure bool
	logger zerolog.Logger
}

// NewAdminHandler creates an AdminHandler. secure controls the cookie's
// Secure flag; disable it only for local plain-HTTP development.
func NewAdminHandler(auth ports.AuthService, secure bool, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{auth: auth, secure: secure, logger: logger}
}

type loginRequest struct {
	Key string `json:"key" form:"key"`
}

// Login verifies the admin key and sets the session cookie.
//
// @Summary      Admin login
// @Description  Accepts the admin key via X-Admin-Key header, body, or ?key= and sets the session cookie.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Success      200  {object}  loginResponse
// @Failure      401  {object}  api.ErrorEnvelope
// @Router       /admin/login [post]
func (h *AdminHandler) Login(c echo.Context) error {
	key := c.Request().Header.Get("X-Admin-Key")
	if key == "" {
		var req loginRequest
		if err := c.Bind(&req); err == nil {
			key = req.Key
		}
	}
	if key == "" {
		key = c.QueryParam("key")
	}

	tier := h.auth.Classify(ports.Credentials{AdminKey: key})
	if tier != domain.TierAdmin {
		h.logger.Warn().Str("remote", c.RealIP()).Msg("admin login rejected")
		return domain.ErrUnauthorized
	}

	token, maxAge, err := h.auth.IssueSession()
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info().Str("remote", c.RealIP()).Msg("admin session issued")
	return c.JSON(http.StatusOK, loginResponse{OK: true, Role: domain.RoleAdmin})
}

// Logout clears the session cookie. It succeeds whether or not a valid
// session was presented.
//
// @Summary      Admin logout
// @Tags         admin
// @Produce      json
// @Success      200  {object}  okResponse
// @Router       /admin/logout [get]
func (h *AdminHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, okResponse{OK: true})
}
