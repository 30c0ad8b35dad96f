package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"agency-budget-go/internal/domain/finance"
	projectdomain "agency-budget-go/internal/domain/project"
	"agency-budget-go/internal/export"
	"agency-budget-go/internal/moneyfmt"
)

type summaryResponse struct {
	ProjectID string                                       `json:"project_id"`
	Currency  projectdomain.Currency                       `json:"currency"`
	Locale    string                                       `json:"locale"`
	Category  map[projectdomain.Category]categoryBreakdown `json:"categories"`

	Subtotal       decimal.Decimal `json:"subtotal"`
	ServiceFee     decimal.Decimal `json:"service_fee"`
	TotalBeforeVat decimal.Decimal `json:"total_before_vat"`
	TotalVat       decimal.Decimal `json:"total_vat"`
	GrandTotal     decimal.Decimal `json:"grand_total"`

	GrandTotalReference decimal.Decimal `json:"grand_total_reference"`

	TotalIncomingPayments decimal.Decimal `json:"total_incoming_payments"`
	TotalOutgoingPayments decimal.Decimal `json:"total_outgoing_payments"`
	TotalAdvances         decimal.Decimal `json:"total_advances"`
	PendingAdvances       decimal.Decimal `json:"pending_advances"`
	TotalExpenses         decimal.Decimal `json:"total_expenses"`
	NetProfit             decimal.Decimal `json:"net_profit"`
	CashFlow              decimal.Decimal `json:"cash_flow"`

	Formatted map[string]string `json:"formatted"`
}

type categoryBreakdown struct {
	Total   decimal.Decimal `json:"total"`
	VatRate decimal.Decimal `json:"vat_rate"`
}

func (h *Handlers) ProjectSummary(w http.ResponseWriter, r *http.Request) {
	projectID := projectIDParam(r)
	if projectID == "" {
		invalidRequest(w, "id is required")
		return
	}

	p, err := h.Projects.Get(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, projectdomain.ErrProjectNotFound) {
			h.log.BusinessError("summary: project not found", err, "project_id", projectID)
			writeError(w, http.StatusNotFound, "project_not_found", "project not found")
			return
		}
		h.log.InternalError("summary: get failed", err, "project_id", projectID)
		internalError(w)
		return
	}

	locale := h.locale
	if value := strings.TrimSpace(r.URL.Query().Get("locale")); value != "" {
		locale = moneyfmt.Locale(value)
	}

	writeJSON(w, http.StatusOK, h.summarize(p, locale))
}

func (h *Handlers) summarize(p *projectdomain.Project, locale language.Tag) summaryResponse {
	summary := finance.Summarize(p)

	response := summaryResponse{
		ProjectID: p.ID,
		Currency:  p.Currency,
		Locale:    locale.String(),
		Category:  make(map[projectdomain.Category]categoryBreakdown, len(summary.CategoryTotals)),

		Subtotal:       summary.Subtotal,
		ServiceFee:     summary.ServiceFee,
		TotalBeforeVat: summary.TotalBeforeVat,
		TotalVat:       summary.TotalVat,
		GrandTotal:     summary.GrandTotal,

		GrandTotalReference: finance.ToReferenceCurrency(p, summary.GrandTotal),

		TotalIncomingPayments: summary.TotalIncomingPayments,
		TotalOutgoingPayments: summary.TotalOutgoingPayments,
		TotalAdvances:         summary.TotalAdvances,
		PendingAdvances:       summary.PendingAdvances,
		TotalExpenses:         summary.TotalExpenses,
		NetProfit:             summary.NetProfit,
		CashFlow:              summary.CashFlow,
	}
	for category, total := range summary.CategoryTotals {
		response.Category[category] = categoryBreakdown{Total: total, VatRate: summary.VatRates[category]}
	}

	format := func(amount decimal.Decimal) string {
		return moneyfmt.FormatWithReference(amount, p.Currency, p.ExchangeRate, locale)
	}
	response.Formatted = map[string]string{
		"subtotal":         format(summary.Subtotal),
		"service_fee":      format(summary.ServiceFee),
		"total_before_vat": format(summary.TotalBeforeVat),
		"total_vat":        format(summary.TotalVat),
		"grand_total":      format(summary.GrandTotal),
		"net_profit":       format(summary.NetProfit),
		"cash_flow":        format(summary.CashFlow),
	}
	return response
}

type overviewResponse struct {
	Projects int `json:"projects"`

	// Portfolio figures are in the reference currency; each project is
	// converted with its own static rate before summation.
	Currency        projectdomain.Currency `json:"currency"`
	GrandTotal      decimal.Decimal        `json:"grand_total"`
	ServiceFees     decimal.Decimal        `json:"service_fees"`
	NetProfit       decimal.Decimal        `json:"net_profit"`
	CashFlow        decimal.Decimal        `json:"cash_flow"`
	PendingAdvances decimal.Decimal        `json:"pending_advances"`

	Formatted map[string]string `json:"formatted"`
}

func (h *Handlers) Overview(w http.ResponseWriter, r *http.Request) {
	items, err := h.Projects.List(r.Context())
	if err != nil {
		h.log.InternalError("overview: list failed", err)
		internalError(w)
		return
	}

	locale := h.locale
	if value := strings.TrimSpace(r.URL.Query().Get("locale")); value != "" {
		locale = moneyfmt.Locale(value)
	}

	response := overviewResponse{
		Projects: len(items),
		Currency: projectdomain.ReferenceCurrency,
	}
	for i := range items {
		p := &items[i]
		response.GrandTotal = response.GrandTotal.Add(finance.ToReferenceCurrency(p, finance.GrandTotal(p)))
		response.ServiceFees = response.ServiceFees.Add(finance.ToReferenceCurrency(p, finance.ServiceFee(p)))
		response.NetProfit = response.NetProfit.Add(finance.ToReferenceCurrency(p, finance.NetProfit(p)))
		response.CashFlow = response.CashFlow.Add(finance.ToReferenceCurrency(p, finance.CashFlow(p)))
		response.PendingAdvances = response.PendingAdvances.Add(finance.ToReferenceCurrency(p, finance.PendingAdvances(p)))
	}

	response.Formatted = map[string]string{
		"grand_total":      moneyfmt.Format(response.GrandTotal, response.Currency, locale),
		"service_fees":     moneyfmt.Format(response.ServiceFees, response.Currency, locale),
		"net_profit":       moneyfmt.Format(response.NetProfit, response.Currency, locale),
		"cash_flow":        moneyfmt.Format(response.CashFlow, response.Currency, locale),
		"pending_advances": moneyfmt.Format(response.PendingAdvances, response.Currency, locale),
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) ExportProject(w http.ResponseWriter, r *http.Request) {
	projectID := projectIDParam(r)
	if projectID == "" {
		invalidRequest(w, "id is required")
		return
	}

	p, err := h.Projects.Get(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, projectdomain.ErrProjectNotFound) {
			h.log.BusinessError("export: project not found", err, "project_id", projectID)
			writeError(w, http.StatusNotFound, "project_not_found", "project not found")
			return
		}
		h.log.InternalError("export: get failed", err, "project_id", projectID)
		internalError(w)
		return
	}

	workbook, err := export.BudgetWorkbook(p)
	if err != nil {
		h.log.InternalError("export: build workbook failed", err, "project_id", projectID)
		internalError(w)
		return
	}
	defer workbook.Close()

	filename := p.Name
	if filename == "" {
		filename = p.ID
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".xlsx"))
	if err := workbook.Write(w); err != nil {
		h.log.InternalError("export: write workbook failed", err, "project_id", projectID)
	}
}
