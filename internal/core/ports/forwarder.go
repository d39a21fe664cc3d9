package ports

import (
	"context"
	"io"
	"net/http"
)

// UpstreamResponse relays an upstream reply without transformation.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// Forwarder delivers a request to the configured upstream origin, injecting
// the resolved tenant and API credential headers before departure. The body
// is streamed, not buffered. Transport failures map to domain.ErrUpstream.
type Forwarder interface {
	Forward(ctx context.Context, path, method string, header http.Header, body io.Reader, tenant string) (*UpstreamResponse, error)
}
