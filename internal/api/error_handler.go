package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/salonkit/leadgate/internal/core/domain"
	"github.com/salonkit/leadgate/internal/core/service"
)

// ErrorEnvelope is the canonical failure body: ok:false plus a stable error
// code and an optional human-readable detail.
type ErrorEnvelope struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to stable error codes and HTTP statuses.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Guarantees every failure renders the JSON envelope — a caller never
//     sees a bare transport-level 5xx.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, ErrorEnvelope) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code := "bad_request"
		switch he.Code {
		case http.StatusNotFound:
			code = "not_found"
		case http.StatusMethodNotAllowed:
			code = "method_not_allowed"
		case http.StatusUnauthorized:
			code = "unauthorized"
		}
		return he.Code, ErrorEnvelope{Error: code, Detail: fmt.Sprintf("%v", he.Message)}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrorEnvelope{Error: "invalid_params", Detail: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorEnvelope{Error: "unauthorized"}
	case errors.Is(err, domain.ErrUnknownAction):
		return http.StatusNotFound, ErrorEnvelope{Error: "unknown_action"}
	case errors.Is(err, domain.ErrLeadNotFound):
		return http.StatusNotFound, ErrorEnvelope{Error: "not_found"}
	case errors.Is(err, service.ErrUnknownVersion):
		return http.StatusBadRequest, ErrorEnvelope{Error: "unknown_version", Detail: err.Error()}
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, ErrorEnvelope{Error: "upstream_error", Detail: err.Error()}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, ErrorEnvelope{Error: "internal_error"}
}
