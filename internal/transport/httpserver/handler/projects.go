package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	projectdomain "agency-budget-go/internal/domain/project"
)

type projectRequest struct {
	Name              string          `json:"name" validate:"required"`
	Client            string          `json:"client"`
	Date              string          `json:"date" validate:"required"`
	Currency          string          `json:"currency" validate:"required,oneof=EUR USD GBP TRY"`
	ExchangeRate      decimal.Decimal `json:"exchange_rate"`
	IsInternational   bool            `json:"is_international"`
	ServiceFeePercent decimal.Decimal `json:"service_fee_percent"`
}

type projectListItem struct {
	projectdomain.Record
	Summary *summaryResponse `json:"summary,omitempty"`
}

type projectListResponse struct {
	Items []projectListItem `json:"items"`
	Total int               `json:"total"`
}

func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	items, err := h.Projects.List(r.Context())
	if err != nil {
		h.log.InternalError("projects.list: list failed", err)
		internalError(w)
		return
	}

	withSummary := r.URL.Query().Get("include") == "summary"

	response := make([]projectListItem, 0, len(items))
	for i := range items {
		item := projectListItem{Record: items[i].Record()}
		if withSummary {
			summary := h.summarize(&items[i], h.locale)
			item.Summary = &summary
		}
		response = append(response, item)
	}
	writeJSON(w, http.StatusOK, projectListResponse{Items: response, Total: len(response)})
}

func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}
	if msg, ok := h.validateRequest(req); !ok {
		invalidRequest(w, msg)
		return
	}

	date, err := projectdomain.ParseDate(req.Date)
	if err != nil {
		invalidRequest(w, "invalid date")
		return
	}
	currency, err := projectdomain.ParseCurrency(req.Currency)
	if err != nil {
		invalidRequest(w, "unknown currency")
		return
	}

	created, err := h.Projects.Create(r.Context(), projectdomain.CreateProjectInput{
		Name:              req.Name,
		Client:            req.Client,
		Date:              date,
		Currency:          currency,
		ExchangeRate:      req.ExchangeRate,
		IsInternational:   req.IsInternational,
		ServiceFeePercent: req.ServiceFeePercent,
	})
	if err != nil {
		h.log.InternalError("projects.create: create failed", err)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, created.Record())
}

func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID := projectIDParam(r)
	if projectID == "" {
		invalidRequest(w, "id is required")
		return
	}

	p, err := h.Projects.Get(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, projectdomain.ErrProjectNotFound) {
			h.log.BusinessError("projects.get: project not found", err, "project_id", projectID)
			writeError(w, http.StatusNotFound, "project_not_found", "project not found")
			return
		}
		h.log.InternalError("projects.get: get failed", err, "project_id", projectID)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, p.Record())
}

func (h *Handlers) UpdateProject(w http.ResponseWriter, r *http.Request) {
	projectID := projectIDParam(r)
	if projectID == "" {
		invalidRequest(w, "id is required")
		return
	}

	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}
	if msg, ok := h.validateRequest(req); !ok {
		invalidRequest(w, msg)
		return
	}

	date, err := projectdomain.ParseDate(req.Date)
	if err != nil {
		invalidRequest(w, "invalid date")
		return
	}
	currency, err := projectdomain.ParseCurrency(req.Currency)
	if err != nil {
		invalidRequest(w, "unknown currency")
		return
	}

	updated, err := h.Projects.Update(r.Context(), projectdomain.UpdateProjectInput{
		ID:                projectID,
		Name:              req.Name,
		Client:            req.Client,
		Date:              date,
		Currency:          currency,
		ExchangeRate:      req.ExchangeRate,
		IsInternational:   req.IsInternational,
		ServiceFeePercent: req.ServiceFeePercent,
	})
	if err != nil {
		if errors.Is(err, projectdomain.ErrProjectNotFound) {
			h.log.BusinessError("projects.update: project not found", err, "project_id", projectID)
			writeError(w, http.StatusNotFound, "project_not_found", "project not found")
			return
		}
		h.log.InternalError("projects.update: update failed", err, "project_id", projectID)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, updated.Record())
}

// DeleteProject requires an explicit confirm=true query parameter so a bare
// DELETE cannot drop a project and everything under it by accident.
func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID := projectIDParam(r)
	if projectID == "" {
		invalidRequest(w, "id is required")
		return
	}
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "confirm_required", "deletion requires confirm=true")
		return
	}

	if err := h.Projects.Delete(r.Context(), projectID); err != nil {
		if errors.Is(err, projectdomain.ErrProjectNotFound) {
			h.log.BusinessError("projects.delete: project not found", err, "project_id", projectID)
			writeError(w, http.StatusNotFound, "project_not_found", "project not found")
			return
		}
		h.log.InternalError("projects.delete: delete failed", err, "project_id", projectID)
		internalError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) validateRequest(req interface{}) (string, bool) {
	err := h.validate.Struct(req)
	if err == nil {
		return "", true
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return "invalid field " + strings.ToLower(fe.Field()), false
	}
	return "invalid request", false
}
