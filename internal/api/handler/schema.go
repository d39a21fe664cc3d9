package handler

import (
	"github.com/salonkit/leadgate/internal/core/domain"
)

// leadRequest is the submission body shared by lead.add, lead.submit and the
// public form endpoint. Tenant is optional; when absent it is resolved from
// the request (header, query, host) instead.
type leadRequest struct {
	Tenant  string `json:"tenant" form:"tenant"`
	Name    string `json:"name" form:"name" validate:"required,max=100"`
	Email   string `json:"email" form:"email" validate:"required,email"`
	Channel string `json:"channel" form:"channel" validate:"max=40"`
	Note    string `json:"note" form:"note" validate:"max=2000"`
}

// deleteRequest identifies the lead targeted by lead.delete.
type deleteRequest struct {
	Tenant string `json:"tenant"`
	ID     string `json:"id" validate:"required"`
}

// tenantRequest is the body form accepted by lead.list and lead.export; the
// tenant field overrides header/query/host resolution.
type tenantRequest struct {
	Tenant string `json:"tenant"`
}

// migrateRequest optionally pins admin.db.migrate to a schema version.
type migrateRequest struct {
	Version string `json:"version"`
}

type leadResponse struct {
	OK        bool   `json:"ok"`
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

type leadListResponse struct {
	OK    bool          `json:"ok"`
	Count int           `json:"count"`
	Items []domain.Lead `json:"items"`
}

type actionsResponse struct {
	OK      bool     `json:"ok"`
	Actions []string `json:"actions"`
}

type echoResponse struct {
	OK     bool                `json:"ok"`
	Method string              `json:"method"`
	Query  map[string][]string `json:"query"`
	Body   any                 `json:"body,omitempty"`
}

type deleteResponse struct {
	OK      bool   `json:"ok"`
	Deleted string `json:"deleted"`
}

type migrateResponse struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
	Changed bool   `json:"changed"`
}

type schemaResponse struct {
	OK      bool             `json:"ok"`
	Driver  string           `json:"driver"`
	Tables  []schemaItemView `json:"tables"`
	Indexes []schemaItemView `json:"indexes"`
}

type schemaItemView struct {
	Name   string `json:"name"`
	Target string `json:"tbl_name,omitempty"`
	Spec   string `json:"sql,omitempty"`
}

type tenantListResponse struct {
	OK    bool            `json:"ok"`
	Items []domain.Tenant `json:"items"`
}

type loginResponse struct {
	OK   bool   `json:"ok"`
	Role string `json:"role"`
}

type okResponse struct {
	OK bool `json:"ok"`
}
