package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/salonkit/leadgate/internal/core/domain"
	"github.com/salonkit/leadgate/internal/core/ports"
)

type stubLeadRepository struct {
	upsertFn   func(ctx context.Context, lead *domain.Lead) (*ports.UpsertResult, error)
	listFn     func(ctx context.Context, tenant string) ([]domain.Lead, error)
	deleteFn   func(ctx context.Context, tenant, id string) error
	ensureFn   func(ctx context.Context) error
	describeFn func(ctx context.Context) (*ports.SchemaInfo, error)
}

func (s *stubLeadRepository) Upsert(ctx context.Context, lead *domain.Lead) (*ports.UpsertResult, error) {
	return s.upsertFn(ctx, lead)
}

func (s *stubLeadRepository) List(ctx context.Context, tenant string) ([]domain.Lead, error) {
	return s.listFn(ctx, tenant)
}

func (s *stubLeadRepository) Delete(ctx context.Context, tenant, id string) error {
	return s.deleteFn(ctx, tenant, id)
}

func (s *stubLeadRepository) EnsureSchema(ctx context.Context) error {
	return s.ensureFn(ctx)
}

func (s *stubLeadRepository) Describe(ctx context.Context) (*ports.SchemaInfo, error) {
	return s.describeFn(ctx)
}

type recordingDispatcher struct {
	leads []domain.Lead
}

func (d *recordingDispatcher) Enqueue(lead domain.Lead) {
	d.leads = append(d.leads, lead)
}

func TestLeadService_Upsert_Success(t *testing.T) {
	var stored *domain.Lead
	repo := &stubLeadRepository{
		upsertFn: func(ctx context.Context, lead *domain.Lead) (*ports.UpsertResult, error) {
			stored = lead
			return &ports.UpsertResult{ID: lead.ID, Duplicate: false}, nil
		},
	}
	svc := NewLeadService(repo, nil, zerolog.Nop())

	res, err := svc.Upsert(context.Background(), ports.UpsertLeadInput{
		Tenant:  " acme ",
		Name:    "  Jane Doe ",
		Email:   "Jane@Example.COM",
		Channel: "instagram",
		Note:    "first visit",
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if res.Duplicate {
		t.Fatal("expected new lead, got duplicate")
	}
	if stored == nil {
		t.Fatal("repository was not called")
	}
	if stored.Tenant != "acme" || stored.Name != "Jane Doe" {
		t.Fatalf("fields not trimmed: %+v", stored)
	}
	if stored.Email != "jane@example.com" {
		t.Fatalf("email not lowercased: %q", stored.Email)
	}
	if stored.ToolID != domain.DefaultToolID {
		t.Fatalf("tool id = %q", stored.ToolID)
	}
	if len(stored.ID) != 32 || stored.ID != strings.ToUpper(stored.ID) {
		t.Fatalf("expected 32-char uppercase hex id, got %q", stored.ID)
	}
	if stored.CreatedAt == 0 {
		t.Fatal("createdAt not set")
	}
}

func TestLeadService_Upsert_Validation(t *testing.T) {
	repo := &stubLeadRepository{
		upsertFn: func(ctx context.Context, lead *domain.Lead) (*ports.UpsertResult, error) {
			t.Fatal("repository must not be called on invalid input")
			return nil, nil
		},
	}
	svc := NewLeadService(repo, nil, zerolog.Nop())

	cases := []struct {
		name  string
		input ports.UpsertLeadInput
	}{
		{"missing tenant", ports.UpsertLeadInput{Name: "Jane", Email: "j@x.io"}},
		{"missing name", ports.UpsertLeadInput{Tenant: "acme", Email: "j@x.io"}},
		{"missing email", ports.UpsertLeadInput{Tenant: "acme", Name: "Jane"}},
		{"email without at", ports.UpsertLeadInput{Tenant: "acme", Name: "Jane", Email: "j.x.io"}},
		{"email without dot", ports.UpsertLeadInput{Tenant: "acme", Name: "Jane", Email: "j@xio"}},
		{"email with space", ports.UpsertLeadInput{Tenant: "acme", Name: "Jane", Email: "j a@x.io"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Upsert(context.Background(), tc.input); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestLeadService_Upsert_ClampsLongFields(t *testing.T) {
	var stored *domain.Lead
	repo := &stubLeadRepository{
		upsertFn: func(ctx context.Context, lead *domain.Lead) (*ports.UpsertResult, error) {
			stored = lead
			return &ports.UpsertResult{ID: lead.ID}, nil
		},
	}
	svc := NewLeadService(repo, nil, zerolog.Nop())

	_, err := svc.Upsert(context.Background(), ports.UpsertLeadInput{
		Tenant: "acme",
		Name:   strings.Repeat("n", 500),
		Email:  "j@x.io",
		Note:   strings.Repeat("x", 5000),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if len(stored.Name) != 100 {
		t.Fatalf("name length = %d, want 100", len(stored.Name))
	}
	if len(stored.Note) != 2000 {
		t.Fatalf("note length = %d, want 2000", len(stored.Note))
	}
}

func TestLeadService_Upsert_DuplicateKeepsStoredID(t *testing.T) {
	repo := &stubLeadRepository{
		upsertFn: func(ctx context.Context, lead *domain.Lead) (*ports.UpsertResult, error) {
			return &ports.UpsertResult{ID: "EXISTING000000000000000000000000", Duplicate: true}, nil
		},
	}
	dispatcher := &recordingDispatcher{}
	svc := NewLeadService(repo, dispatcher, zerolog.Nop())

	res, err := svc.Upsert(context.Background(), ports.UpsertLeadInput{
		Tenant: "acme", Name: "Jane", Email: "j@x.io",
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !res.Duplicate || res.ID != "EXISTING000000000000000000000000" {
		t.Fatalf("unexpected result: %+v", res)
	}
	// The notification carries the surviving id, not the discarded one.
	if len(dispatcher.leads) != 1 || dispatcher.leads[0].ID != res.ID {
		t.Fatalf("unexpected dispatch: %+v", dispatcher.leads)
	}
}

func TestLeadService_ExportCSV(t *testing.T) {
	repo := &stubLeadRepository{
		listFn: func(ctx context.Context, tenant string) ([]domain.Lead, error) {
			return []domain.Lead{
				{ID: "A1", ToolID: domain.DefaultToolID, Name: "Jane, Doe", Email: "j@x.io", Channel: "web", Note: "says \"hi\"", CreatedAt: 1700000000},
			}, nil
		},
	}
	svc := NewLeadService(repo, nil, zerolog.Nop())

	data, err := svc.ExportCSV(context.Background(), "acme")
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "\uFEFF") {
		t.Fatal("missing UTF-8 BOM")
	}
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(out, "\uFEFF")), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != "id,toolId,name,email,channel,note,createdAt" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], `"Jane, Doe"`) {
		t.Fatalf("comma field not quoted: %q", lines[1])
	}
	if !strings.Contains(lines[1], "1700000000") {
		t.Fatalf("createdAt missing: %q", lines[1])
	}
}

func TestLeadService_Migrate(t *testing.T) {
	ensured := false
	repo := &stubLeadRepository{
		describeFn: func(ctx context.Context) (*ports.SchemaInfo, error) {
			return &ports.SchemaInfo{Driver: "mongodb"}, nil
		},
		ensureFn: func(ctx context.Context) error {
			ensured = true
			return nil
		},
	}
	svc := NewLeadService(repo, nil, zerolog.Nop())

	res, err := svc.Migrate(context.Background(), "")
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if res.Version != SchemaVersion || !res.Changed {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !ensured {
		t.Fatal("EnsureSchema was not called")
	}
}

func TestLeadService_Migrate_Idempotent(t *testing.T) {
	repo := &stubLeadRepository{
		describeFn: func(ctx context.Context) (*ports.SchemaInfo, error) {
			return &ports.SchemaInfo{
				Driver: "mongodb",
				Tables: []ports.SchemaItem{{Name: "leads"}},
			}, nil
		},
		ensureFn: func(ctx context.Context) error { return nil },
	}
	svc := NewLeadService(repo, nil, zerolog.Nop())

	res, err := svc.Migrate(context.Background(), SchemaVersion)
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if res.Changed {
		t.Fatal("existing schema must report Changed=false")
	}
}

func TestLeadService_Migrate_UnknownVersion(t *testing.T) {
	svc := NewLeadService(&stubLeadRepository{}, nil, zerolog.Nop())
	if _, err := svc.Migrate(context.Background(), "v99"); !errors.Is(err, ErrUnknownVersion) {
		t.Fatalf("expected ErrUnknownVersion, got %v", err)
	}
}

func TestLeadService_List_RequiresTenant(t *testing.T) {
	svc := NewLeadService(&stubLeadRepository{}, nil, zerolog.Nop())
	if _, err := svc.List(context.Background(), "  "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLeadService_Delete_RequiresID(t *testing.T) {
	svc := NewLeadService(&stubLeadRepository{}, nil, zerolog.Nop())
	if err := svc.Delete(context.Background(), "acme", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
