package ports

import (
	"context"

	"github.com/salonkit/leadgate/internal/core/domain"
)

// LeadNotifier relays a captured lead to an outbound webhook. Failures are
// logged, never surfaced to the submitting client.
type LeadNotifier interface {
	Notify(ctx context.Context, lead domain.Lead) error
}
