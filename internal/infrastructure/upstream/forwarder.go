// Package upstream implements the gateway's forwarding collaborator: selected
// paths are relayed to a configured origin with the resolved tenant and API
// credential injected.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/salonkit/leadgate/internal/core/domain"
	"github.com/salonkit/leadgate/internal/core/ports"
)

const defaultRequestTimeout = 30 * time.Second

// Hop-by-hop headers that must not travel to the origin.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Forwarder relays requests to a single upstream origin over HTTP.
type Forwarder struct {
	base   *url.URL
	apiKey string
	client *http.Client
	logger zerolog.Logger
}

// New parses baseURL and returns a Forwarder. apiKey is injected as X-Api-Key
// on every forwarded request.
func New(baseURL, apiKey string, timeout time.Duration, logger zerolog.Logger) (*Forwarder, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("upstream url: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Forwarder{
		base:   base,
		apiKey: apiKey,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Relay redirects to the caller instead of following them.
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}, nil
}

// Forward sends the request to the origin, streaming body untouched. The
// transport-level Host and hop-by-hop headers are stripped; X-Api-Key,
// X-Tenant and X-Forwarded-Host are set before departure. Transport failures
// surface as domain.ErrUpstream.
func (f *Forwarder) Forward(ctx context.Context, path, method string, header http.Header, body io.Reader, tenant string) (*ports.UpstreamResponse, error) {
	target := *f.base
	if u, err := url.Parse(path); err == nil {
		target.Path = u.Path
		target.RawQuery = u.RawQuery
	} else {
		target.Path = path
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrUpstream, err)
	}

	h := header.Clone()
	if h == nil {
		h = http.Header{}
	}
	for _, name := range hopHeaders {
		h.Del(name)
	}
	if host := h.Get("Host"); host != "" {
		h.Del("Host")
		h.Set("X-Forwarded-Host", host)
	}
	if f.apiKey != "" {
		h.Set("X-Api-Key", f.apiKey)
	}
	h.Set("X-Tenant", tenant)
	req.Header = h

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn().Err(err).Str("path", path).Msg("upstream request failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	return &ports.UpstreamResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}
