package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/salonkit/leadgate/internal/api/metrics"
	"github.com/salonkit/leadgate/internal/api/middleware"
	"github.com/salonkit/leadgate/internal/core/domain"
	"github.com/salonkit/leadgate/internal/core/ports"
	"github.com/salonkit/leadgate/internal/core/service"
)

// publicActions need no credential at all.
var publicActions = map[string]bool{
	"__actions__": true,
	"lead.submit": true,
}

// adminActions require the admin tier; everything else (including unknown
// action names) requires at least the api tier.
var adminActions = map[string]bool{
	"lead.export":      true,
	"lead.delete":      true,
	"admin.db.tables":  true,
	"admin.db.migrate": true,
	"tenant.list":      true,
}

// ActionHandler is the single /api entrypoint: it reads ?action=, enforces
// the action's tier, and dispatches to the lead use-cases.
type ActionHandler struct {
	leads    ports.LeadService
	auth     ports.AuthService
	resolver service.TenantResolver
	catalog  []domain.Tenant
	logger   zerolog.Logger
}

func NewActionHandler(leads ports.LeadService, auth ports.AuthService, resolver service.TenantResolver, catalog []domain.Tenant, logger zerolog.Logger) *ActionHandler {
	return &ActionHandler{
		leads:    leads,
		auth:     auth,
		resolver: resolver,
		catalog:  catalog,
		logger:   logger,
	}
}

// Handle dispatches one action request.
//
// @Summary      Dispatch an API action
// @Description  Single entrypoint; the action query parameter selects the operation.
// @Tags         api
// @Accept       json
// @Produce      json
// @Param        action  query     string  true   "Action name, e.g. lead.add"
// @Param        tenant  query     string  false  "Tenant override"
// @Success      200     {object}  okResponse
// @Failure      400     {object}  api.ErrorEnvelope
// @Failure      401     {object}  api.ErrorEnvelope
// @Failure      404     {object}  api.ErrorEnvelope
// @Router       /api [post]
func (h *ActionHandler) Handle(c echo.Context) error {
	action := c.QueryParam("action")
	if action == "" {
		return fmt.Errorf("%w: action parameter required", domain.ErrInvalidInput)
	}

	allowed, err := h.authorize(c, action)
	if err != nil || !allowed {
		return err
	}

	err = h.dispatch(c, action)
	metrics.ActionsTotal.WithLabelValues(metricAction(action), outcome(err)).Inc()
	return err
}

// authorize enforces the action's tier. Rejections render the envelope
// directly so the need field and X-Auth-Mode header can be attached; in that
// case allowed is false and the returned error only reflects the write.
func (h *ActionHandler) authorize(c echo.Context, action string) (allowed bool, err error) {
	if publicActions[action] {
		return true, nil
	}

	required := domain.TierAPI
	if adminActions[action] {
		required = domain.TierAdmin
	}

	tier := h.auth.Classify(middleware.ExtractCredentials(c))
	if tier.Allows(required) {
		return true, nil
	}

	metrics.AuthFailuresTotal.WithLabelValues(string(required)).Inc()
	metrics.ActionsTotal.WithLabelValues(metricAction(action), "unauthorized").Inc()
	c.Response().Header().Set("X-Auth-Mode", string(required))
	return false, c.JSON(http.StatusUnauthorized, map[string]any{
		"ok":    false,
		"error": "unauthorized",
		"need":  string(required),
	})
}

func (h *ActionHandler) dispatch(c echo.Context, action string) error {
	switch action {
	case "__actions__":
		return h.listActions(c)
	case "__echo__":
		return h.echo(c)
	case "lead.add", "lead.submit":
		return h.addLead(c)
	case "lead.list":
		return h.listLeads(c)
	case "lead.export":
		return h.exportLeads(c)
	case "lead.delete":
		return h.deleteLead(c)
	case "tenant.list":
		return h.listTenants(c)
	case "admin.db.tables":
		return h.describeSchema(c)
	case "admin.db.migrate":
		return h.migrate(c)
	default:
		return domain.ErrUnknownAction
	}
}

func (h *ActionHandler) listActions(c echo.Context) error {
	names := make([]string, 0, len(publicActions)+len(adminActions)+3)
	for name := range publicActions {
		names = append(names, name)
	}
	for name := range adminActions {
		names = append(names, name)
	}
	names = append(names, "__echo__", "lead.add", "lead.list")
	sort.Strings(names)
	return c.JSON(http.StatusOK, actionsResponse{OK: true, Actions: names})
}

// echo reflects the request back; a connectivity probe for integrators.
func (h *ActionHandler) echo(c echo.Context) error {
	resp := echoResponse{
		OK:     true,
		Method: c.Request().Method,
		Query:  c.QueryParams(),
	}
	if raw, err := io.ReadAll(c.Request().Body); err == nil && len(raw) > 0 {
		var body any
		if json.Unmarshal(raw, &body) == nil {
			resp.Body = body
		} else {
			resp.Body = string(raw)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ActionHandler) addLead(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return echo.NewHTTPError(http.StatusMethodNotAllowed, "use POST")
	}

	var req leadRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	result, err := h.leads.Upsert(c.Request().Context(), ports.UpsertLeadInput{
		Tenant:  h.tenant(c, req.Tenant),
		Name:    req.Name,
		Email:   req.Email,
		Channel: req.Channel,
		Note:    req.Note,
	})
	if err != nil {
		return err
	}
	observeUpsert(result.Duplicate)

	return c.JSON(http.StatusOK, leadResponse{OK: true, ID: result.ID, Duplicate: result.Duplicate})
}

func (h *ActionHandler) listLeads(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return echo.NewHTTPError(http.StatusMethodNotAllowed, "use POST")
	}

	var req tenantRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrInvalidInput)
	}

	leads, err := h.leads.List(c.Request().Context(), h.tenant(c, req.Tenant))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, leadListResponse{OK: true, Count: len(leads), Items: leads})
}

func (h *ActionHandler) exportLeads(c echo.Context) error {
	var req tenantRequest
	if c.Request().Method == http.MethodPost {
		_ = c.Bind(&req)
	}
	tenant := h.tenant(c, req.Tenant)
	data, err := h.leads.ExportCSV(c.Request().Context(), tenant)
	if err != nil {
		return err
	}

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "leads_"+tenant+".csv"))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *ActionHandler) deleteLead(c echo.Context) error {
	var req deleteRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrInvalidInput)
	}
	if req.ID == "" {
		req.ID = c.QueryParam("id")
	}
	if err := c.Validate(&req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if err := h.leads.Delete(c.Request().Context(), h.tenant(c, req.Tenant), req.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteResponse{OK: true, Deleted: req.ID})
}

func (h *ActionHandler) listTenants(c echo.Context) error {
	tenants := h.catalog
	if tenants == nil {
		tenants = []domain.Tenant{}
	}
	return c.JSON(http.StatusOK, tenantListResponse{OK: true, Items: tenants})
}

func (h *ActionHandler) describeSchema(c echo.Context) error {
	info, err := h.leads.DescribeSchema(c.Request().Context())
	if err != nil {
		return err
	}

	resp := schemaResponse{
		OK:      true,
		Driver:  info.Driver,
		Tables:  make([]schemaItemView, 0, len(info.Tables)),
		Indexes: make([]schemaItemView, 0, len(info.Indexes)),
	}
	for _, t := range info.Tables {
		resp.Tables = append(resp.Tables, schemaItemView(t))
	}
	for _, i := range info.Indexes {
		resp.Indexes = append(resp.Indexes, schemaItemView(i))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ActionHandler) migrate(c echo.Context) error {
	var req migrateRequest
	if c.Request().Method == http.MethodPost {
		_ = c.Bind(&req)
	}
	if req.Version == "" {
		req.Version = c.QueryParam("v")
	}

	result, err := h.leads.Migrate(c.Request().Context(), req.Version)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, migrateResponse{OK: true, Version: result.Version, Changed: result.Changed})
}

// tenant resolves the effective tenant for this request: explicit body value,
// X-Tenant header, ?tenant=, host slug, then configured defaults.
func (h *ActionHandler) tenant(c echo.Context, fromBody string) string {
	explicit := fromBody
	if explicit == "" {
		explicit = c.Request().Header.Get("X-Tenant")
	}
	return h.resolver.Resolve(explicit, c.QueryParam("tenant"), c.Request().Host)
}

// metricAction keeps the action label bounded: unrecognized names collapse to
// "unknown".
func metricAction(action string) string {
	if publicActions[action] || adminActions[action] {
		return action
	}
	switch action {
	case "__echo__", "lead.add", "lead.list":
		return action
	}
	return "unknown"
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// observeUpsert counts a successful lead capture at the HTTP boundary.
func observeUpsert(duplicate bool) {
	result := "created"
	if duplicate {
		result = "merged"
	}
	metrics.LeadsUpsertedTotal.WithLabelValues(result).Inc()
}
