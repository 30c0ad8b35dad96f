package finance

import (
	"github.com/shopspring/decimal"

	"agency-budget-go/internal/domain/project"
)

// Summary bundles every derived aggregate of one project snapshot. It is
// recomputed on each read; nothing here is stored.
type Summary struct {
	CategoryTotals map[project.Category]decimal.Decimal
	VatRates       map[project.Category]decimal.Decimal

	Subtotal       decimal.Decimal
	ServiceFee     decimal.Decimal
	TotalBeforeVat decimal.Decimal
	TotalVat       decimal.Decimal
	GrandTotal     decimal.Decimal

	TotalIncomingPayments decimal.Decimal
	TotalOutgoingPayments decimal.Decimal
	TotalAdvances         decimal.Decimal
	PendingAdvances       decimal.Decimal
	TotalExpenses         decimal.Decimal
	NetProfit             decimal.Decimal
	CashFlow              decimal.Decimal
}

func Summarize(p *project.Project) Summary {
	summary := Summary{
		CategoryTotals: make(map[project.Category]decimal.Decimal, len(project.Categories())),
		VatRates:       make(map[project.Category]decimal.Decimal, len(project.Categories())),

		Subtotal:       Subtotal(p),
		ServiceFee:     ServiceFee(p),
		TotalBeforeVat: TotalBeforeVat(p),
		TotalVat:       TotalVat(p),
		GrandTotal:     GrandTotal(p),

		TotalIncomingPayments: TotalIncomingPayments(p),
		TotalOutgoingPayments: TotalOutgoingPayments(p),
		TotalAdvances:         TotalAdvances(p),
		PendingAdvances:       PendingAdvances(p),
		TotalExpenses:         TotalExpenses(p),
		NetProfit:             NetProfit(p),
		CashFlow:              CashFlow(p),
	}
	for _, category := range project.Categories() {
		summary.CategoryTotals[category] = CategoryTotal(p, category)
		summary.VatRates[category] = VatRate(p, category)
	}
	return summary
}
