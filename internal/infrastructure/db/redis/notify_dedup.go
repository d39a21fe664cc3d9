package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const notifyDedupTTL = time.Hour

// NotifyDedup suppresses repeated webhook notifications for the same
// (tenant, email) within a short window, so a visitor double-submitting a
// form does not page the sales channel twice.
// Key format: notify:<tenant>:<email>
type NotifyDedup struct {
	client *redis.Client
}

func NewNotifyDedup(client *redis.Client) *NotifyDedup {
	return &NotifyDedup{client: client}
}

// IsDuplicate reports whether this (tenant, email) was already notified
// within the dedup window.
func (d *NotifyDedup) IsDuplicate(ctx context.Context, tenant, email string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(tenant, email)).Result()
	if err != nil {
		return false, fmt.Errorf("notify dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that a notification went out (expires after notifyDedupTTL).
func (d *NotifyDedup) Mark(ctx context.Context, tenant, email string) error {
	return d.client.Set(ctx, d.key(tenant, email), "1", notifyDedupTTL).Err()
}

func (d *NotifyDedup) key(tenant, email string) string {
	return fmt.Sprintf("notify:%s:%s", tenant, email)
}
