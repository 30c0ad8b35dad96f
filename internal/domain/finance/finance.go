// Package finance derives every monetary aggregate of a project from its raw
// line items. All functions are pure, total and safe to call concurrently:
// a nil project yields the identity value of each operation, never an error.
package finance

import (
	"github.com/shopspring/decimal"

	"agency-budget-go/internal/domain/project"
)

var (
	hundred = decimal.NewFromInt(100)

	// defaultVatPercent applies when a category has no configured entry.
	defaultVatPercent = decimal.NewFromInt(20)

	// serviceFeeVatPercent is a fixed business rule: the service fee is
	// always taxed at 20%, even on international (VAT-exempt) projects.
	// Not configurable.
	serviceFeeVatPercent = decimal.NewFromInt(20)
)

// VatRate returns the effective VAT percentage for one category.
// International projects are exempt across all categories, which
// short-circuits everything else.
func VatRate(p *project.Project, category project.Category) decimal.Decimal {
	if p != nil && p.IsInternational {
		return decimal.Zero
	}
	if p == nil {
		return defaultVatPercent
	}
	rate, ok := p.VatRates[category]
	if !ok {
		return defaultVatPercent
	}
	return rate.Percent()
}

// CategoryTotal sums the derived line totals of one category.
func CategoryTotal(p *project.Project, category project.Category) decimal.Decimal {
	total := decimal.Zero
	if p == nil {
		return total
	}
	for _, item := range p.Categories[category] {
		total = total.Add(item.Total)
	}
	return total
}

// Subtotal sums the five category totals in fixed category order.
func Subtotal(p *project.Project) decimal.Decimal {
	total := decimal.Zero
	for _, category := range project.Categories() {
		total = total.Add(CategoryTotal(p, category))
	}
	return total
}

// ServiceFee is the agency markup: subtotal scaled by the fee percentage.
func ServiceFee(p *project.Project) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return Subtotal(p).Mul(p.ServiceFeePercent).Div(hundred)
}

func TotalBeforeVat(p *project.Project) decimal.Decimal {
	return Subtotal(p).Add(ServiceFee(p))
}

// TotalVat sums per-category VAT plus the always-applied service fee VAT.
func TotalVat(p *project.Project) decimal.Decimal {
	total := decimal.Zero
	for _, category := range project.Categories() {
		vat := CategoryTotal(p, category).Mul(VatRate(p, category)).Div(hundred)
		total = total.Add(vat)
	}
	return total.Add(ServiceFee(p).Mul(serviceFeeVatPercent).Div(hundred))
}

func GrandTotal(p *project.Project) decimal.Decimal {
	return TotalBeforeVat(p).Add(TotalVat(p))
}

// ToReferenceCurrency converts an amount from the project currency into TRY
// using the project's single static rate. Identity for TRY projects.
func ToReferenceCurrency(p *project.Project, amount decimal.Decimal) decimal.Decimal {
	if p == nil || p.Currency == project.ReferenceCurrency {
		return amount
	}
	return amount.Mul(p.ExchangeRate)
}

func TotalIncomingPayments(p *project.Project) decimal.Decimal {
	return sumPayments(p, project.PaymentIncoming)
}

func TotalOutgoingPayments(p *project.Project) decimal.Decimal {
	return sumPayments(p, project.PaymentOutgoing)
}

func sumPayments(p *project.Project, paymentType project.PaymentType) decimal.Decimal {
	total := decimal.Zero
	if p == nil {
		return total
	}
	for _, payment := range p.Payments {
		if payment.Type == paymentType {
			total = total.Add(payment.Amount)
		}
	}
	return total
}

// TotalAdvances sums every advance regardless of status.
func TotalAdvances(p *project.Project) decimal.Decimal {
	total := decimal.Zero
	if p == nil {
		return total
	}
	for _, advance := range p.Advances {
		total = total.Add(advance.Amount)
	}
	return total
}

// PendingAdvances is the open supplier exposure: pending advances only.
func PendingAdvances(p *project.Project) decimal.Decimal {
	total := decimal.Zero
	if p == nil {
		return total
	}
	for _, advance := range p.Advances {
		if advance.Status == project.AdvancePending {
			total = total.Add(advance.Amount)
		}
	}
	return total
}

func TotalExpenses(p *project.Project) decimal.Decimal {
	total := decimal.Zero
	if p == nil {
		return total
	}
	for _, expense := range p.Expenses {
		total = total.Add(expense.Amount)
	}
	return total
}

// NetProfit treats the service fee as the agency's entire revenue; budget
// category totals are pass-through client costs.
func NetProfit(p *project.Project) decimal.Decimal {
	return ServiceFee(p).Sub(TotalExpenses(p))
}

func CashFlow(p *project.Project) decimal.Decimal {
	return TotalIncomingPayments(p).Sub(TotalOutgoingPayments(p)).Sub(TotalAdvances(p))
}
