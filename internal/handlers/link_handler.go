package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/spenly/backend/internal/audit"
	"github.com/spenly/backend/internal/logger"
	"github.com/spenly/backend/internal/models"
	"github.com/spenly/backend/internal/services"
)

// LinkManager issues link codes and manages the owner's binding
type LinkManager interface {
	IssueCode(ctx context.Context, ownerID, currency, relayNumber string) (*services.IssuedCode, error)
	Status(ctx context.Context, ownerID string) (*models.LinkedIdentity, error)
	Unlink(ctx context.Context, ownerID string) (bool, error)
}

type LinkHandler struct {
	service     LinkManager
	relayNumber string
	validator   *services.ValidationHelper
}

func NewLinkHandler(service LinkManager, relayNumber string) *LinkHandler {
	return &LinkHandler{
		service:     service,
		relayNumber: relayNumber,
		validator:   services.NewValidationHelper(),
	}
}

type issueCodeRequest struct {
	Currency string `json:"currency,omitempty" validate:"omitempty,currency" example:"USD"`
}

type issueCodeResponse struct {
	Success bool `json:"success"`
	*services.IssuedCode
}

type linkStatusResponse struct {
	Linked   bool       `json:"linked"`
	Address  string     `json:"address,omitempty" example:"***0123"`
	LinkedAt *time.Time `json:"linkedAt,omitempty"`
	Currency string     `json:"currency,omitempty" example:"USD"`
}

// IssueCode creates a one-time WhatsApp link code
// @Summary Issue WhatsApp link code
// @Description Generate a single-use code the user sends to the WhatsApp number to link this account
// @Tags Link
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body issueCodeRequest false "Default currency for chat expenses"
// @Success 201 {object} issueCodeResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /link/codes [post]
func (h *LinkHandler) IssueCode(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req issueCodeRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, h.validator, &req) {
		return
	}

	issued, err := h.service.IssueCode(r.Context(), ownerID, req.Currency, h.relayNumber)
	if err != nil {
		l := logger.FromContext(r.Context())
		l.Error().Err(err).Str("owner_id", ownerID).Msg("issuing link code failed")
		services.SendErrorResponse(w, "Could not create link code", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusCreated, issueCodeResponse{Success: true, IssuedCode: issued})
}

// Status reports whether the account has a linked WhatsApp number
// @Summary WhatsApp link status
// @Tags Link
// @Produce json
// @Security BearerAuth
// @Success 200 {object} linkStatusResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /link/status [get]
func (h *LinkHandler) Status(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	identity, err := h.service.Status(r.Context(), ownerID)
	if err != nil {
		services.SendErrorResponse(w, "Could not load link status", http.StatusInternalServerError, nil)
		return
	}

	resp := linkStatusResponse{}
	if identity != nil {
		resp.Linked = true
		resp.Address = audit.MaskAddress(identity.MessagingAddress)
		resp.LinkedAt = &identity.LinkedAt
		resp.Currency = identity.Currency
	}
	writeJSON(w, http.StatusOK, resp)
}

// Unlink removes the WhatsApp binding
// @Summary Unlink WhatsApp
// @Tags Link
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,unlinked=bool}
// @Failure 401 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /link [delete]
func (h *LinkHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	removed, err := h.service.Unlink(r.Context(), ownerID)
	if err != nil {
		services.SendErrorResponse(w, "Could not unlink", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"unlinked": removed,
	})
}
