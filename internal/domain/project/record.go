package project

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is the whole-row wire form of a project: the shape persisted by the
// store and pushed to realtime subscribers. Field names are snake_case and
// VAT entries use the sentinel encoding; translation between Record and
// Project happens only here, at the load/save boundary.
type Record struct {
	ID                string                    `json:"id"`
	Name              string                    `json:"name"`
	Client            string                    `json:"client"`
	Date              Date                      `json:"date"`
	Currency          Currency                  `json:"currency"`
	ExchangeRate      decimal.Decimal           `json:"exchange_rate"`
	IsInternational   bool                      `json:"is_international"`
	ServiceFeePercent decimal.Decimal           `json:"service_fee_percent"`
	Categories        map[Category][]BudgetItem `json:"categories"`
	CategoryVatRates  []CategoryVatRate         `json:"category_vat_rates"`
	Payments          []Payment                 `json:"payments"`
	Advances          []Advance                 `json:"advances"`
	Expenses          []Expense                 `json:"expenses"`
	CreatedAt         *time.Time                `json:"created_at,omitempty"`
	UpdatedAt         *time.Time                `json:"updated_at,omitempty"`
}

// Record converts a project into its wire form. VAT entries are emitted in
// the fixed category order.
func (p Project) Record() Record {
	record := Record{
		ID:                p.ID,
		Name:              p.Name,
		Client:            p.Client,
		Date:              p.Date,
		Currency:          p.Currency,
		ExchangeRate:      p.ExchangeRate,
		IsInternational:   p.IsInternational,
		ServiceFeePercent: p.ServiceFeePercent,
		Categories:        cloneCategories(p.Categories),
		Payments:          clonePayments(p.Payments),
		Advances:          cloneAdvances(p.Advances),
		Expenses:          cloneExpenses(p.Expenses),
	}
	for _, category := range Categories() {
		rate, ok := p.VatRates[category]
		if !ok {
			rate = defaultVatRate(category)
		}
		record.CategoryVatRates = append(record.CategoryVatRates, rate.Record(category))
	}
	if !p.CreatedAt.IsZero() {
		created := p.CreatedAt
		record.CreatedAt = &created
	}
	if !p.UpdatedAt.IsZero() {
		updated := p.UpdatedAt
		record.UpdatedAt = &updated
	}
	return record
}

// Project converts a loaded record into the domain shape, defaulting every
// absent field so the computation core never observes a malformed project:
// missing category lists become empty, missing VAT entries fall back to the
// category default, entries outside the five fixed keys are dropped, a
// non-positive exchange rate becomes 1, and item totals are recomputed.
func (r Record) Project() Project {
	p := Project{
		ID:                r.ID,
		Name:              r.Name,
		Client:            r.Client,
		Date:              r.Date,
		Currency:          r.Currency,
		ExchangeRate:      r.ExchangeRate,
		IsInternational:   r.IsInternational,
		ServiceFeePercent: r.ServiceFeePercent,
		Categories:        make(map[Category][]BudgetItem, len(Categories())),
		VatRates:          make(map[Category]VatRate, len(Categories())),
		Payments:          clonePayments(r.Payments),
		Advances:          cloneAdvances(r.Advances),
		Expenses:          cloneExpenses(r.Expenses),
	}

	if !p.Currency.Valid() {
		p.Currency = ReferenceCurrency
	}
	if !p.ExchangeRate.IsPositive() {
		p.ExchangeRate = decimal.NewFromInt(1)
	}

	for _, category := range Categories() {
		items := r.Categories[category]
		normalized := make([]BudgetItem, 0, len(items))
		for _, item := range items {
			normalized = append(normalized, NewBudgetItem(item.ID, item.Description, item.Quantity, item.UnitPrice))
		}
		p.Categories[category] = normalized
		p.VatRates[category] = defaultVatRate(category)
	}

	for _, entry := range r.CategoryVatRates {
		if _, ok := p.Categories[entry.Category]; !ok {
			continue
		}
		p.VatRates[entry.Category] = entry.VatRate()
	}

	if p.Payments == nil {
		p.Payments = []Payment{}
	}
	if p.Advances == nil {
		p.Advances = []Advance{}
	}
	if p.Expenses == nil {
		p.Expenses = []Expense{}
	}

	if r.CreatedAt != nil {
		p.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		p.UpdatedAt = *r.UpdatedAt
	}
	return p
}

func defaultVatRate(category Category) VatRate {
	if rate, ok := DefaultVatRates()[category]; ok {
		return rate
	}
	return FixedVat(decimal.NewFromInt(20))
}
