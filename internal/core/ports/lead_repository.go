package ports

import (
	"context"

	"github.com/salonkit/leadgate/internal/core/domain"
)

// UpsertResult reports the outcome of an insert-or-merge.
type UpsertResult struct {
	ID string
	// Duplicate is true when an existing (tenant, email) record was merged
	// instead of a new one being created.
	Duplicate bool
}

// LeadRepository defines persistence operations for leads. Implementations
// must resolve (tenant, email) conflicts with the store's native conditional
// write, never a read-then-write race.
type LeadRepository interface {
	// Upsert inserts lead or merges it into the existing record for
	// (lead.Tenant, lead.Email). On merge the stored id and created_at are
	// preserved; name, channel and note take the incoming values.
	Upsert(ctx context.Context, lead *domain.Lead) (*UpsertResult, error)

	// List returns all leads for tenant ordered by created_at descending.
	// A tenant with no data yields an empty slice, not an error.
	List(ctx context.Context, tenant string) ([]domain.Lead, error)

	// Delete removes a lead by id. Deleting a missing id is a no-op.
	Delete(ctx context.Context, tenant, id string) error

	// EnsureSchema prepares the backing structures (table, uniqueness
	// constraint on (tenant, email)). Idempotent and safe under concurrent
	// callers.
	EnsureSchema(ctx context.Context) error

	// Describe returns a human-readable inventory of the backing structures
	// for the admin.db.tables action.
	Describe(ctx context.Context) (*SchemaInfo, error)
}

// SchemaInfo is the store introspection result.
type SchemaInfo struct {
	Driver  string       `json:"driver"`
	Tables  []SchemaItem `json:"tables"`
	Indexes []SchemaItem `json:"indexes"`
}

// SchemaItem names one table/collection or index.
type SchemaItem struct {
	Name   string `json:"name"`
	Target string `json:"tbl_name,omitempty"`
	Spec   string `json:"sql,omitempty"`
}
