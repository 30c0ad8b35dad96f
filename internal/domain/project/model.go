package project

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyTRY Currency = "TRY"
)

// ReferenceCurrency is the currency every project converts into for
// cross-project comparison. One static rate per project, no rate history.
const ReferenceCurrency = CurrencyTRY

func (c Currency) Valid() bool {
	switch c {
	case CurrencyEUR, CurrencyUSD, CurrencyGBP, CurrencyTRY:
		return true
	}
	return false
}

func ParseCurrency(value string) (Currency, error) {
	currency := Currency(strings.ToUpper(strings.TrimSpace(value)))
	if !currency.Valid() {
		return "", fmt.Errorf("unknown currency %q", value)
	}
	return currency, nil
}

type Category string

const (
	CategoryRegistration  Category = "registration"
	CategoryAccommodation Category = "accommodation"
	CategoryTransfer      Category = "transfer"
	CategorySponsorship   Category = "sponsorship"
	CategoryOther         Category = "other"
)

// Categories returns the five fixed budget categories in stable order.
// Iteration over a project's category map must go through this list so that
// summation order is deterministic.
func Categories() []Category {
	return []Category{
		CategoryRegistration,
		CategoryAccommodation,
		CategoryTransfer,
		CategorySponsorship,
		CategoryOther,
	}
}

func ParseCategory(value string) (Category, error) {
	category := Category(strings.ToLower(strings.TrimSpace(value)))
	switch category {
	case CategoryRegistration, CategoryAccommodation, CategoryTransfer, CategorySponsorship, CategoryOther:
		return category, nil
	}
	return "", ErrUnknownCategory
}

// Date is a calendar date without a time component, rendered as YYYY-MM-DD.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(value string) (Date, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, err
	}
	return Date{parsed}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// BudgetItem is a single budget line. Total is derived and recomputed on
// every edit; it is never settable independently of Quantity and UnitPrice.
type BudgetItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// NewBudgetItem builds a line with the total invariant applied. Negative
// quantity and unit price are coerced to zero at this edit boundary.
func NewBudgetItem(id, description string, quantity int, unitPrice decimal.Decimal) BudgetItem {
	if quantity < 0 {
		quantity = 0
	}
	if unitPrice.IsNegative() {
		unitPrice = decimal.Zero
	}
	return BudgetItem{
		ID:          id,
		Description: strings.TrimSpace(description),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// VatRate is the per-category VAT configuration. Custom marks a user-entered
// rate; otherwise Rate holds one of the canonical fixed percentages.
type VatRate struct {
	Custom bool
	Rate   decimal.Decimal
}

func FixedVat(rate decimal.Decimal) VatRate {
	return VatRate{Rate: rate}
}

func CustomVat(rate decimal.Decimal) VatRate {
	return VatRate{Custom: true, Rate: rate}
}

// Percent returns the configured percentage regardless of variant. The
// international exemption is applied by the finance package, not here.
func (v VatRate) Percent() decimal.Decimal {
	return v.Rate
}

// RateCustomSentinel is the persisted encoding for "use custom_rate". The
// in-memory model uses the VatRate variant instead; the sentinel only exists
// at the storage and wire boundary.
var RateCustomSentinel = decimal.NewFromInt(-1)

// CategoryVatRate is the wire form of one VAT entry.
type CategoryVatRate struct {
	Category   Category         `json:"category"`
	Rate       decimal.Decimal  `json:"rate"`
	CustomRate *decimal.Decimal `json:"custom_rate,omitempty"`
}

func (r CategoryVatRate) VatRate() VatRate {
	if r.Rate.Equal(RateCustomSentinel) {
		custom := decimal.Zero
		if r.CustomRate != nil {
			custom = *r.CustomRate
		}
		return CustomVat(custom)
	}
	return FixedVat(r.Rate)
}

func (v VatRate) Record(category Category) CategoryVatRate {
	if v.Custom {
		custom := v.Rate
		return CategoryVatRate{Category: category, Rate: RateCustomSentinel, CustomRate: &custom}
	}
	return CategoryVatRate{Category: category, Rate: v.Rate}
}

type PaymentType string

const (
	PaymentIncoming PaymentType = "incoming"
	PaymentOutgoing PaymentType = "outgoing"
)

func (t PaymentType) Valid() bool {
	return t == PaymentIncoming || t == PaymentOutgoing
}

type Payment struct {
	ID          string          `json:"id"`
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        PaymentType     `json:"type"`
}

type AdvanceStatus string

const (
	AdvancePending AdvanceStatus = "pending"
	AdvanceClosed  AdvanceStatus = "closed"
)

func (s AdvanceStatus) Valid() bool {
	return s == AdvancePending || s == AdvanceClosed
}

// Advance is a prepayment to a supplier. Reopening a closed advance is
// permitted; the pending -> closed transition is not enforced as one-way.
type Advance struct {
	ID          string          `json:"id"`
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Status      AdvanceStatus   `json:"status"`
	Supplier    string          `json:"supplier"`
}

// Expense category is free text; by convention one of the five budget
// category keys, but not constrained to them.
type Expense struct {
	ID          string          `json:"id"`
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
}

// Project is the root aggregate. All child entities are owned exclusively by
// their project; nothing is shared across projects. Edits never mutate a
// snapshot in place: update functions return a new value.
type Project struct {
	ID                string
	Name              string
	Client            string
	Date              Date
	Currency          Currency
	ExchangeRate      decimal.Decimal
	IsInternational   bool
	ServiceFeePercent decimal.Decimal
	Categories        map[Category][]BudgetItem
	VatRates          map[Category]VatRate
	Payments          []Payment
	Advances          []Advance
	Expenses          []Expense
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DefaultVatRates returns the per-category defaults a fresh project starts
// with. Accommodation carries the reduced lodging rate; everything else the
// standard rate.
func DefaultVatRates() map[Category]VatRate {
	return map[Category]VatRate{
		CategoryRegistration:  FixedVat(decimal.NewFromInt(20)),
		CategoryAccommodation: FixedVat(decimal.NewFromInt(10)),
		CategoryTransfer:      FixedVat(decimal.NewFromInt(20)),
		CategorySponsorship:   FixedVat(decimal.NewFromInt(20)),
		CategoryOther:         FixedVat(decimal.NewFromInt(20)),
	}
}

// New returns a project with the full default shape: five empty category
// lists, five VAT entries at their defaults, empty ledgers, TRY at rate 1.
func New(id string) Project {
	categories := make(map[Category][]BudgetItem, len(Categories()))
	for _, category := range Categories() {
		categories[category] = []BudgetItem{}
	}
	return Project{
		ID:           id,
		Currency:     ReferenceCurrency,
		ExchangeRate: decimal.NewFromInt(1),
		Categories:   categories,
		VatRates:     DefaultVatRates(),
		Payments:     []Payment{},
		Advances:     []Advance{},
		Expenses:     []Expense{},
	}
}
