package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	projectdomain "agency-budget-go/internal/domain/project"
)

type budgetItemRequest struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type replaceItemsRequest struct {
	Items []budgetItemRequest `json:"items"`
}

type vatRateRequest struct {
	Rate       decimal.Decimal  `json:"rate"`
	CustomRate *decimal.Decimal `json:"custom_rate"`
}

func (h *Handlers) ReplaceItems(w http.ResponseWriter, r *http.Request) {
	projectID, category, ok := h.itemScope(w, r)
	if !ok {
		return
	}

	var req replaceItemsRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	inputs := make([]projectdomain.BudgetItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		inputs = append(inputs, budgetItemInput(item))
	}

	updated, err := h.Projects.ReplaceItems(r.Context(), projectID, category, inputs)
	if err != nil {
		h.itemError(w, "items.replace", projectID, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.Record())
}

func (h *Handlers) AddItem(w http.ResponseWriter, r *http.Request) {
	projectID, category, ok := h.itemScope(w, r)
	if !ok {
		return
	}

	var req budgetItemRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	updated, err := h.Projects.AddItem(r.Context(), projectID, category, budgetItemInput(req))
	if err != nil {
		h.itemError(w, "items.add", projectID, err)
		return
	}
	writeJSON(w, http.StatusCreated, updated.Record())
}

func (h *Handlers) UpdateItem(w http.ResponseWriter, r *http.Request) {
	projectID, category, ok := h.itemScope(w, r)
	if !ok {
		return
	}
	itemID := strings.TrimSpace(chi.URLParam(r, "item_id"))
	if itemID == "" {
		invalidRequest(w, "item_id is required")
		return
	}

	var req budgetItemRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	updated, err := h.Projects.UpdateItem(r.Context(), projectID, category, itemID, budgetItemInput(req))
	if err != nil {
		h.itemError(w, "items.update", projectID, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.Record())
}

func (h *Handlers) DeleteItem(w http.ResponseWriter, r *http.Request) {
	projectID, category, ok := h.itemScope(w, r)
	if !ok {
		return
	}
	itemID := strings.TrimSpace(chi.URLParam(r, "item_id"))
	if itemID == "" {
		invalidRequest(w, "item_id is required")
		return
	}

	updated, err := h.Projects.DeleteItem(r.Context(), projectID, category, itemID)
	if err != nil {
		h.itemError(w, "items.delete", projectID, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.Record())
}

// SetVatRate accepts the wire encoding: rate -1 plus custom_rate selects a
// custom percentage, any other rate is taken as-is.
func (h *Handlers) SetVatRate(w http.ResponseWriter, r *http.Request) {
	projectID, category, ok := h.itemScope(w, r)
	if !ok {
		return
	}

	var req vatRateRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	wire := projectdomain.CategoryVatRate{Category: category, Rate: req.Rate, CustomRate: req.CustomRate}
	updated, err := h.Projects.SetVatRate(r.Context(), projectID, category, wire.VatRate())
	if err != nil {
		h.itemError(w, "vat.set", projectID, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.Record())
}

func (h *Handlers) itemScope(w http.ResponseWriter, r *http.Request) (string, projectdomain.Category, bool) {
	projectID := projectIDParam(r)
	if projectID == "" {
		invalidRequest(w, "id is required")
		return "", "", false
	}
	category, err := categoryParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_category", "unknown category")
		return "", "", false
	}
	return projectID, category, true
}

func (h *Handlers) itemError(w http.ResponseWriter, op, projectID string, err error) {
	switch {
	case errors.Is(err, projectdomain.ErrProjectNotFound):
		h.log.BusinessError(op+": project not found", err, "project_id", projectID)
		writeError(w, http.StatusNotFound, "project_not_found", "project not found")
	case errors.Is(err, projectdomain.ErrItemNotFound):
		h.log.BusinessError(op+": item not found", err, "project_id", projectID)
		writeError(w, http.StatusNotFound, "item_not_found", "item not found")
	default:
		h.log.InternalError(op+": failed", err, "project_id", projectID)
		internalError(w)
	}
}

func budgetItemInput(req budgetItemRequest) projectdomain.BudgetItemInput {
	return projectdomain.BudgetItemInput{
		ID:          req.ID,
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
	}
}
