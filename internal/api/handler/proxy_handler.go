package handler

import (
	"io"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/salonkit/leadgate/internal/api/metrics"
	"github.com/salonkit/leadgate/internal/core/ports"
	"github.com/salonkit/leadgate/internal/core/service"
)

// ProxyHandler relays selected paths to the configured upstream origin with
// the resolved tenant attached. The upstream's status and headers pass
// through unchanged; only transport failures are rewritten into the error
// envelope (as upstream_error).
type ProxyHandler struct {
	forwarder ports.Forwarder
	resolver  service.TenantResolver
	logger    zerolog.Logger
}

func NewProxyHandler(forwarder ports.Forwarder, resolver service.TenantResolver, logger zerolog.Logger) *ProxyHandler {
	return &ProxyHandler{forwarder: forwarder, resolver: resolver, logger: logger}
}

// Forward relays the request and streams the upstream response back.
func (h *ProxyHandler) Forward(c echo.Context) error {
	req := c.Request()
	tenant := h.resolver.Resolve(req.Header.Get("X-Tenant"), c.QueryParam("tenant"), req.Host)

	// Go keeps the Host outside the header map; put it back so the forwarder
	// can translate it into X-Forwarded-Host.
	header := req.Header.Clone()
	header.Set("Host", req.Host)

	start := time.Now()
	resp, err := h.forwarder.Forward(req.Context(), req.URL.RequestURI(), req.Method, header, req.Body, tenant)
	metrics.UpstreamForwardDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respHeader := c.Response().Header()
	for name, values := range resp.Header {
		for _, v := range values {
			respHeader.Add(name, v)
		}
	}
	c.Response().WriteHeader(resp.StatusCode)
	if _, err := io.Copy(c.Response(), resp.Body); err != nil {
		h.logger.Warn().Err(err).Str("path", req.URL.Path).Msg("proxy stream interrupted")
	}
	return nil
}
