package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/salonkit/leadgate/internal/core/domain"
	"github.com/salonkit/leadgate/internal/core/ports"
	"github.com/salonkit/leadgate/internal/core/service"
)

// LeadFormHandler serves the unauthenticated lead capture endpoint embedded
// widgets POST to. It accepts both JSON and form-encoded bodies.
type LeadFormHandler struct {
	leads    ports.LeadService
	resolver service.TenantResolver
	logger   zerolog.Logger
}

func NewLeadFormHandler(leads ports.LeadService, resolver service.TenantResolver, logger zerolog.Logger) *LeadFormHandler {
	return &LeadFormHandler{leads: leads, resolver: resolver, logger: logger}
}

// Submit captures one lead from the public form.
//
// @Summary      Submit a lead
// @Tags         form
// @Accept       json
// @Produce      json
// @Param        body  body      leadRequest  true  "Lead details"
// @Success      200   {object}  leadResponse
// @Failure      400   {object}  api.ErrorEnvelope
// @Router       /form/lead [post]
func (h *LeadFormHandler) Submit(c echo.Context) error {
	var req leadRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	explicit := req.Tenant
	if explicit == "" {
		explicit = c.Request().Header.Get("X-Tenant")
	}
	tenant := h.resolver.Resolve(explicit, c.QueryParam("tenant"), c.Request().Host)

	result, err := h.leads.Upsert(c.Request().Context(), ports.UpsertLeadInput{
		Tenant:  tenant,
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

// Probe answers GET /form/lead: it reports the endpoint alive and makes sure
// the backing schema exists, so a freshly deployed tenant works on first POST.
func (h *LeadFormHandler) Probe(c echo.Context) error {
	if _, err := h.leads.Migrate(c.Request().Context(), ""); err != nil {
		h.logger.Warn().Err(err).Msg("schema probe failed")
		return err
	}
	return c.JSON(http.StatusOK, okResponse{OK: true})
}
