package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/salonkit/leadgate/internal/core/domain"
	"github.com/salonkit/leadgate/internal/core/ports"
)

const scanBatch = 100

// LeadRepository is the key-value variant of the lead store for deployments
// without MongoDB.
//
// Key layout:
//
//	lead:<tenant>:<id>               JSON-encoded lead document
//	lead_email_index:<tenant>:<email> id owning that (tenant, email) pair
//
// The email index is the uniqueness constraint: SetNX is the store's native
// conditional put, so two concurrent first submissions race on a single
// atomic operation and the loser merges into the winner's id. Documents are
// written whole, never field-by-field, so a merged record is always one
// writer's coherent view.
type LeadRepository struct {
	client *redis.Client
}

func NewLeadRepository(client *redis.Client) *LeadRepository {
	return &LeadRepository{client: client}
}

func (r *LeadRepository) Upsert(ctx context.Context, lead *domain.Lead) (*ports.UpsertResult, error) {
	idxKey := emailIndexKey(lead.Tenant, lead.Email)

	created, err := r.client.SetNX(ctx, idxKey, lead.ID, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("upsert lead: claim email index: %w", err)
	}

	if !created {
		id, err := r.client.Get(ctx, idxKey).Result()
		if err != nil {
			return nil, fmt.Errorf("upsert lead: read email index: %w", err)
		}
		lead.ID = id

		// Preserve the original created_at across merges.
		raw, err := r.client.Get(ctx, leadKey(lead.Tenant, id)).Bytes()
		if err == nil {
			var existing domain.Lead
			if json.Unmarshal(raw, &existing) == nil && existing.CreatedAt != 0 {
				lead.CreatedAt = existing.CreatedAt
			}
		} else if !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("upsert lead: read existing: %w", err)
		}
	}

	doc, err := json.Marshal(lead)
	if err != nil {
		return nil, fmt.Errorf("upsert lead: encode: %w", err)
	}
	if err := r.client.Set(ctx, leadKey(lead.Tenant, lead.ID), doc, 0).Err(); err != nil {
		return nil, fmt.Errorf("upsert lead: write: %w", err)
	}

	return &ports.UpsertResult{ID: lead.ID, Duplicate: !created}, nil
}

// List scans the tenant's key prefix page by page and sorts by created_at
// descending. An unknown tenant yields an empty slice.
func (r *LeadRepository) List(ctx context.Context, tenant string) ([]domain.Lead, error) {
	pattern := leadKey(tenant, "*")
	leads := []domain.Lead{}

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("list leads: scan: %w", err)
		}
		if len(keys) > 0 {
			values, err := r.client.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, fmt.Errorf("list leads: mget: %w", err)
			}
			for _, v := range values {
				raw, ok := v.(string)
				if !ok {
					continue
				}
				var lead domain.Lead
				if err := json.Unmarshal([]byte(raw), &lead); err != nil {
					continue
				}
				leads = append(leads, lead)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	sort.Slice(leads, func(i, j int) bool { return leads[i].CreatedAt > leads[j].CreatedAt })
	return leads, nil
}

// Delete removes the lead document and, when it still points at this id, the
// email index entry. Missing ids are a no-op.
func (r *LeadRepository) Delete(ctx context.Context, tenant, id string) error {
	raw, err := r.client.Get(ctx, leadKey(tenant, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}

	var lead domain.Lead
	if json.Unmarshal(raw, &lead) == nil && lead.Email != "" {
		idxKey := emailIndexKey(tenant, lead.Email)
		owner, err := r.client.Get(ctx, idxKey).Result()
		if err == nil && owner == id {
			_ = r.client.Del(ctx, idxKey).Err()
		}
	}

	if err := r.client.Del(ctx, leadKey(tenant, id)).Err(); err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	return nil
}

// EnsureSchema is a no-op for the key-value layout.
func (r *LeadRepository) EnsureSchema(ctx context.Context) error {
	return nil
}

// Describe reports the key prefixes the store uses.
func (r *LeadRepository) Describe(ctx context.Context) (*ports.SchemaInfo, error) {
	return &ports.SchemaInfo{
		Driver: "redis",
		Tables: []ports.SchemaItem{
			{Name: "lead:<tenant>:<id>", Spec: "JSON lead document"},
		},
		Indexes: []ports.SchemaItem{
			{Name: "lead_email_index:<tenant>:<email>", Target: "lead", Spec: "unique (tenant, email) -> id"},
		},
	}, nil
}

func leadKey(tenant, id string) string {
	return fmt.Sprintf("lead:%s:%s", tenant, id)
}

func emailIndexKey(tenant, email string) string {
	return fmt.Sprintf("lead_email_index:%s:%s", tenant, email)
}
