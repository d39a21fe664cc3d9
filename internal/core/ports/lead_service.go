package ports

import (
	"context"

	"github.com/salonkit/leadgate/internal/core/domain"
)

// UpsertLeadInput carries a submission from either the public form or the
// lead.add action. Tenant is already resolved (non-empty) by the caller.
type UpsertLeadInput struct {
	Tenant  string
	Name    string
	Email   string
	Channel string
	Note    string
}

// LeadResult is returned after a successful upsert.
type LeadResult struct {
	ID        string
	Duplicate bool
}

// LeadService defines the lead use-cases behind the dispatcher.
type LeadService interface {
	// Upsert validates input (non-empty tenant/name/email, email shape),
	// lowercases the email, and performs the idempotent insert-or-merge.
	Upsert(ctx context.Context, input UpsertLeadInput) (*LeadResult, error)
	List(ctx context.Context, tenant string) ([]domain.Lead, error)
	Delete(ctx context.Context, tenant, id string) error
	// ExportCSV renders the tenant's leads as UTF-8 CSV with a BOM so the
	// file opens cleanly in Excel.
	ExportCSV(ctx context.Context, tenant string) ([]byte, error)
	Migrate(ctx context.Context, version string) (*MigrateResult, error)
	DescribeSchema(ctx context.Context) (*SchemaInfo, error)
}

// MigrateResult reports the outcome of admin.db.migrate.
type MigrateResult struct {
	Version string
	Changed bool
}
