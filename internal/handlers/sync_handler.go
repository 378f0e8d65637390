package handlers

import (
	"net/http"

	"github.com/spenly/backend/internal/audit"
	"github.com/spenly/backend/internal/logger"
	"github.com/spenly/backend/internal/models"
	"github.com/spenly/backend/internal/services"
)

// SyncHandler serves the companion app's category upload and
// pending-transaction pickup
type SyncHandler struct {
	transactions services.TransactionStore
	categories   services.CategoryStore
	audit        *audit.Logger
	validator    *services.ValidationHelper
}

func NewSyncHandler(transactions services.TransactionStore, categories services.CategoryStore, auditLogger *audit.Logger) *SyncHandler {
	return &SyncHandler{
		transactions: transactions,
		categories:   categories,
		audit:        auditLogger,
		validator:    services.NewValidationHelper(),
	}
}

type categoriesRequest struct {
	Categories []models.Category `json:"categories" validate:"required,min=1,max=200,dive"`
}

type markSyncedRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=500,dive,uuid"`
}

// PutCategories replaces the owner's category set
// @Summary Upload categories
// @Description Replace the category set used to categorise chat expenses
// @Tags Sync
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body categoriesRequest true "Category set in display order"
// @Success 200 {object} object{success=bool,count=int}
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /categories [put]
func (h *SyncHandler) PutCategories(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req categoriesRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	if err := h.categories.ReplaceCategories(r.Context(), ownerID, req.Categories); err != nil {
		l := logger.FromContext(r.Context())
		l.Error().Err(err).Str("owner_id", ownerID).Msg("replacing categories failed")
		services.SendErrorResponse(w, "Could not save categories", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(req.Categories),
	})
}

// GetCategories returns the stored category set
// @Summary List categories
// @Tags Sync
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{categories=[]models.Category,defaults=[]string}
// @Failure 401 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /categories [get]
func (h *SyncHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	categories, err := h.categories.Categories(r.Context(), ownerID)
	if err != nil {
		services.SendErrorResponse(w, "Could not load categories", http.StatusInternalServerError, nil)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"categories": categories,
		"defaults":   services.DefaultCategories(),
	})
}

// PendingTransactions lists chat expenses not yet pulled by the app
// @Summary Pending chat transactions
// @Tags Sync
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{transactions=[]models.TransactionRecord,count=int}
// @Failure 401 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /transactions/pending [get]
func (h *SyncHandler) PendingTransactions(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	records, err := h.transactions.PendingTransactions(r.Context(), ownerID)
	if err != nil {
		services.SendErrorResponse(w, "Could not load transactions", http.StatusInternalServerError, nil)
		return
	}
	if records == nil {
		records = []models.TransactionRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": records,
		"count":        len(records),
	})
}

// MarkSynced flags pulled transactions as synced
// @Summary Acknowledge synced transactions
// @Tags Sync
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body markSyncedRequest true "Transaction ids"
// @Success 200 {object} object{success=bool,synced=int}
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /transactions/sync [post]
func (h *SyncHandler) MarkSynced(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req markSyncedRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	n, err := h.transactions.MarkSynced(r.Context(), ownerID, req.IDs)
	if err != nil {
		services.SendErrorResponse(w, "Could not update transactions", http.StatusInternalServerError, nil)
		return
	}
	if h.audit != nil {
		h.audit.LogSync(ownerID, n)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"synced":  n,
	})
}
