package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	projectdomain "agency-budget-go/internal/domain/project"
)

type paymentRequest struct {
	Date        string          `json:"date" validate:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type" validate:"required,oneof=incoming outgoing"`
}

type advanceRequest struct {
	Date        string          `json:"date" validate:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status" validate:"required,oneof=pending closed"`
	Supplier    string          `json:"supplier"`
}

type expenseRequest struct {
	Date        string          `json:"date" validate:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
}

func (h *Handlers) AddPayment(w http.ResponseWriter, r *http.Request) {
	projectID := projectIDParam(r)
	if projectID == "" {
		invalidRequest(w, "id is required")
		return
	}

	input, ok := h.paymentInput(w, r)
	if !ok {
		return
	}

	updated, err := h.Projects.AddPayment(r.Context(), projectID, input)
	if err != nil {
		h.ledgerError(w, "payments.add", projectID, err)
		return
	}
	writeJSON(w, http.StatusCreated, updated.Record())
}

func (h *Handlers) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	projectID := projectIDParam(r)
	paymentID := strings.TrimSpace(chi.URLParam(r, "payment_id"))
	if projectID == "" || paymentID == "" {
		invalidRequest(w, "id is required")
		return
	}

	input, ok := h.paymentInput(w, r)
	if !ok {
		return
	}

	updated, err := h.Projects.UpdatePayment(r.Context(), projectID, paymentID, input)
	if err != nil {
		h.ledgerError(w, "payments.update", projectID, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.Record())
}

func (h *Handlers) DeletePayment(w http.ResponseWriter, r *http.Request) {
	projectID := projectIDParam(r)
	paymentID := strings.TrimSpace(chi.URLParam(r, "payment_id"))
	if projectID == "" || paymentID == "" {
		invalidRequest(w, "id is required")
		return
	}

	updated, err := h.Projects.DeletePayment(r.Context(), projectID, paymentID)
	if err != nil {
		h.ledgerError(w, "payments.delete", projectID, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.Record())
}

func (h *Handlers) AddAdvance(w http.ResponseWriter, r *http.Request) {
	projectID := projectIDParam(r)
	if projectID == "" {
		invalidRequest(w, "id is required")
		return
	}

	input, ok := h.advanceInput(w, r)
	if !ok {
		return
	}

	updated, err := h.Projects.AddAdvance(r.Context(), projectID, input)
	if err != nil {
		h.ledgerError(w, "advances.add", projectID, err)
		return
	}
	writeJSON(w, http.StatusCreated, updated.Record())
}

func (h *Handlers) UpdateAdvance(w http.ResponseWriter, r *http.Request) {
	projectID := projectIDParam(r)
	advanceID := strings.TrimSpace(chi.URLParam(r, "advance_id"))
	if projectID == "" || advanceID == "" {
		invalidRequest(w, "id is required")
		return
	}

	input, ok := h.advanceInput(w, r)
	if !ok {
		return
	}

	updated, err := h.Projects.UpdateAdvance(r.Context(), projectID, advanceID, input)
	if err != nil {
		h.ledgerError(w, "advances.update", projectID, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.Record())
}

func (h *Handlers) DeleteAdvance(w http.ResponseWriter, r *http.Request) {
	projectID := projectIDParam(r)
	advanceID := strings.TrimSpace(chi.URLParam(r, "advance_id"))
	if projectID == "" || advanceID == "" {
		invalidRequest(w, "id is required")
		return
	}

	updated, err := h.Projects.DeleteAdvance(r.Context(), projectID, advanceID)
	if err != nil {
		h.ledgerError(w, "advances.delete", projectID, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.Record())
}

func (h *Handlers) AddExpense(w http.ResponseWriter, r *http.Request) {
	projectID := projectIDParam(r)
	if projectID == "" {
		invalidRequest(w, "id is required")
		return
	}

	input, ok := h.expenseInput(w, r)
	if !ok {
		return
	}

	updated, err := h.Projects.AddExpense(r.Context(), projectID, input)
	if err != nil {
		h.ledgerError(w, "expenses.add", projectID, err)
		return
	}
	writeJSON(w, http.StatusCreated, updated.Record())
}

func (h *Handlers) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	projectID := projectIDParam(r)
	expenseID := strings.TrimSpace(chi.URLParam(r, "expense_id"))
	if projectID == "" || expenseID == "" {
		invalidRequest(w, "id is required")
		return
	}

	input, ok := h.expenseInput(w, r)
	if !ok {
		return
	}

	updated, err := h.Projects.UpdateExpense(r.Context(), projectID, expenseID, input)
	if err != nil {
		h.ledgerError(w, "expenses.update", projectID, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.Record())
}

func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	projectID := projectIDParam(r)
	expenseID := strings.TrimSpace(chi.URLParam(r, "expense_id"))
	if projectID == "" || expenseID == "" {
		invalidRequest(w, "id is required")
		return
	}

	updated, err := h.Projects.DeleteExpense(r.Context(), projectID, expenseID)
	if err != nil {
		h.ledgerError(w, "expenses.delete", projectID, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.Record())
}

func (h *Handlers) paymentInput(w http.ResponseWriter, r *http.Request) (projectdomain.PaymentInput, bool) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return projectdomain.PaymentInput{}, false
	}
	if msg, ok := h.validateRequest(req); !ok {
		invalidRequest(w, msg)
		return projectdomain.PaymentInput{}, false
	}
	date, err := projectdomain.ParseDate(req.Date)
	if err != nil {
		invalidRequest(w, "invalid date")
		return projectdomain.PaymentInput{}, false
	}
	return projectdomain.PaymentInput{
		Date:        date,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        projectdomain.PaymentType(req.Type),
	}, true
}

func (h *Handlers) advanceInput(w http.ResponseWriter, r *http.Request) (projectdomain.AdvanceInput, bool) {
	var req advanceRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return projectdomain.AdvanceInput{}, false
	}
	if msg, ok := h.validateRequest(req); !ok {
		invalidRequest(w, msg)
		return projectdomain.AdvanceInput{}, false
	}
	date, err := projectdomain.ParseDate(req.Date)
	if err != nil {
		invalidRequest(w, "invalid date")
		return projectdomain.AdvanceInput{}, false
	}
	return projectdomain.AdvanceInput{
		Date:        date,
		Description: req.Description,
		Amount:      req.Amount,
		Status:      projectdomain.AdvanceStatus(req.Status),
		Supplier:    req.Supplier,
	}, true
}

func (h *Handlers) expenseInput(w http.ResponseWriter, r *http.Request) (projectdomain.ExpenseInput, bool) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return projectdomain.ExpenseInput{}, false
	}
	if msg, ok := h.validateRequest(req); !ok {
		invalidRequest(w, msg)
		return projectdomain.ExpenseInput{}, false
	}
	date, err := projectdomain.ParseDate(req.Date)
	if err != nil {
		invalidRequest(w, "invalid date")
		return projectdomain.ExpenseInput{}, false
	}
	return projectdomain.ExpenseInput{
		Date:        date,
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
	}, true
}

func (h *Handlers) ledgerError(w http.ResponseWriter, op, projectID string, err error) {
	switch {
	case errors.Is(err, projectdomain.ErrProjectNotFound):
		h.log.BusinessError(op+": project not found", err, "project_id", projectID)
		writeError(w, http.StatusNotFound, "project_not_found", "project not found")
	case errors.Is(err, projectdomain.ErrPaymentNotFound):
		h.log.BusinessError(op+": payment not found", err, "project_id", projectID)
		writeError(w, http.StatusNotFound, "payment_not_found", "payment not found")
	case errors.Is(err, projectdomain.ErrAdvanceNotFound):
		h.log.BusinessError(op+": advance not found", err, "project_id", projectID)
		writeError(w, http.StatusNotFound, "advance_not_found", "advance not found")
	case errors.Is(err, projectdomain.ErrExpenseNotFound):
		h.log.BusinessError(op+": expense not found", err, "project_id", projectID)
		writeError(w, http.StatusNotFound, "expense_not_found", "expense not found")
	case errors.Is(err, projectdomain.ErrInvalidPaymentType) || errors.Is(err, projectdomain.ErrInvalidStatus):
		invalidRequest(w, err.Error())
	default:
		h.log.InternalError(op+": failed", err, "project_id", projectID)
		internalError(w)
	}
}
