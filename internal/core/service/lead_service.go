package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/csv"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/salonkit/leadgate/internal/core/domain"
	"github.com/salonkit/leadgate/internal/core/ports"
)

// ErrUnknownVersion is returned by Migrate for an unrecognised schema version.
var ErrUnknownVersion = errors.New("unknown migration version")

// SchemaVersion is the only migration target currently understood.
const SchemaVersion = "v3"

// Field limits applied to free-text input before storage.
const (
	maxNameLen    = 100
	maxChannelLen = 40
	maxNoteLen    = 2000
)

var emailRx = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Dispatcher accepts captured leads for fire-and-forget relay. Enqueue must
// not block the caller.
type Dispatcher interface {
	Enqueue(lead domain.Lead)
}

// LeadService implements the lead use-cases over a pluggable repository.
type LeadService struct {
	repo       ports.LeadRepository
	dispatcher Dispatcher // optional
	logger     zerolog.Logger
}

func NewLeadService(repo ports.LeadRepository, dispatcher Dispatcher, logger zerolog.Logger) *LeadService {
	return &LeadService{repo: repo, dispatcher: dispatcher, logger: logger}
}

// Upsert validates and normalizes the submission, then performs the
// insert-or-merge. createdAt is epoch seconds set on first insert and
// preserved on merge. No storage mutation happens on validation failure.
func (s *LeadService) Upsert(ctx context.Context, input ports.UpsertLeadInput) (*ports.LeadResult, error) {
	tenant := strings.TrimSpace(input.Tenant)
	name := clamp(strings.TrimSpace(input.Name), maxNameLen)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if tenant == "" {
		return nil, fmt.Errorf("%w: tenant required", domain.ErrInvalidInput)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	}
	if !emailRx.MatchString(email) {
		return nil, fmt.Errorf("%w: email invalid", domain.ErrInvalidInput)
	}

	lead := domain.Lead{
		ID:        newLeadID(),
		Tenant:    tenant,
		ToolID:    domain.DefaultToolID,
		Name:      name,
		Email:     email,
		Channel:   clamp(strings.TrimSpace(input.Channel), maxChannelLen),
		Note:      clamp(strings.TrimSpace(input.Note), maxNoteLen),
		CreatedAt: time.Now().Unix(),
	}

	res, err := s.repo.Upsert(ctx, &lead)
	if err != nil {
		s.logger.Error().Err(err).Str("tenant", tenant).Msg("lead upsert failed")
		return nil, err
	}

	s.logger.Info().
		Str("tenant", tenant).
		Str("lead_id", res.ID).
		Bool("duplicate", res.Duplicate).
		Msg("lead captured")

	if s.dispatcher != nil {
		lead.ID = res.ID
		s.dispatcher.Enqueue(lead)
	}

	return &ports.LeadResult{ID: res.ID, Duplicate: res.Duplicate}, nil
}

// List returns the tenant's leads, newest first.
func (s *LeadService) List(ctx context.Context, tenant string) ([]domain.Lead, error) {
	tenant = strings.TrimSpace(tenant)
	if tenant == "" {
		return nil, fmt.Errorf("%w: tenant required", domain.ErrInvalidInput)
	}
	return s.repo.List(ctx, tenant)
}

// Delete removes a single lead. Unknown ids succeed silently.
func (s *LeadService) Delete(ctx context.Context, tenant, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id required", domain.ErrInvalidInput)
	}
	return s.repo.Delete(ctx, strings.TrimSpace(tenant), strings.TrimSpace(id))
}

// ExportCSV renders the tenant's leads as CSV prefixed with a UTF-8 BOM so
// Excel detects the encoding.
func (s *LeadService) ExportCSV(ctx context.Context, tenant string) ([]byte, error) {
	leads, err := s.List(ctx, tenant)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("\uFEFF")
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "toolId", "name", "email", "channel", "note", "createdAt"})
	for _, l := range leads {
		_ = w.Write([]string{l.ID, l.ToolID, l.Name, l.Email, l.Channel, l.Note, strconv.FormatInt(l.CreatedAt, 10)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Migrate runs the idempotent schema preparation. A schema that already
// exists reports Changed=false; that is success, not a conflict.
func (s *LeadService) Migrate(ctx context.Context, version string) (*ports.MigrateResult, error) {
	if version == "" {
		version = SchemaVersion
	}
	if version != SchemaVersion {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVersion, version)
	}

	info, err := s.repo.Describe(ctx)
	if err != nil {
		return nil, err
	}
	existed := len(info.Tables) > 0

	if err := s.repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return &ports.MigrateResult{Version: version, Changed: !existed}, nil
}

// DescribeSchema exposes the store layout for the admin surface.
func (s *LeadService) DescribeSchema(ctx context.Context) (*ports.SchemaInfo, error) {
	return s.repo.Describe(ctx)
}

// newLeadID returns a 32-char uppercase hex id from 16 random bytes.
func newLeadID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%032X", time.Now().UnixNano())
	}
	return fmt.Sprintf("%X", b)
}

func clamp(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
