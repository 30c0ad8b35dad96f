package finance

import (
	"testing"

	"github.com/shopspring/decimal"

	"agency-budget-go/internal/domain/project"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func newTestProject() project.Project {
	p := project.New("test-project")
	for _, category := range project.Categories() {
		p.VatRates[category] = project.FixedVat(decimal.NewFromInt(20))
	}
	return p
}

func assertDecimal(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

func TestEndToEndScenario(t *testing.T) {
	p := newTestProject()
	p.ServiceFeePercent = decimal.NewFromInt(10)
	p = p.WithItems(project.CategoryRegistration, []project.BudgetItem{
		project.NewBudgetItem("item-1", "badges", 2, decimal.NewFromInt(100)),
	})

	assertDecimal(t, "CategoryTotal", CategoryTotal(&p, project.CategoryRegistration), dec("200"))
	assertDecimal(t, "Subtotal", Subtotal(&p), dec("200"))
	assertDecimal(t, "ServiceFee", ServiceFee(&p), dec("20"))
	assertDecimal(t, "TotalBeforeVat", TotalBeforeVat(&p), dec("220"))
	assertDecimal(t, "TotalVat", TotalVat(&p), dec("44"))
	assertDecimal(t, "GrandTotal", GrandTotal(&p), dec("264"))
}

func TestInternationalExemptsCategoriesButNotServiceFee(t *testing.T) {
	p := newTestProject()
	p.IsInternational = true
	p.ServiceFeePercent = decimal.NewFromInt(10)
	p = p.WithItems(project.CategorySponsorship, []project.BudgetItem{
		project.NewBudgetItem("item-1", "booth", 1, decimal.NewFromInt(1000)),
	})

	for _, category := range project.Categories() {
		assertDecimal(t, "VatRate "+string(category), VatRate(&p, category), decimal.Zero)
	}

	assertDecimal(t, "Subtotal", Subtotal(&p), dec("1000"))
	assertDecimal(t, "ServiceFee", ServiceFee(&p), dec("100"))
	// Category VAT is exempt, service fee VAT is not: 100 * 0.20 = 20.
	assertDecimal(t, "TotalVat", TotalVat(&p), dec("20"))
	assertDecimal(t, "GrandTotal", GrandTotal(&p), dec("1120"))
}

func TestVatRateCustomAndDefaults(t *testing.T) {
	p := newTestProject()
	p = p.WithVatRate(project.CategoryOther, project.CustomVat(dec("12.5")))
	assertDecimal(t, "custom rate", VatRate(&p, project.CategoryOther), dec("12.5"))

	// A custom entry without a configured rate resolves to zero.
	record := project.CategoryVatRate{Category: project.CategoryTransfer, Rate: project.RateCustomSentinel}
	p = p.WithVatRate(project.CategoryTransfer, record.VatRate())
	assertDecimal(t, "unset custom rate", VatRate(&p, project.CategoryTransfer), decimal.Zero)

	// A project built by hand with a missing entry falls back to 20.
	raw := project.Project{Categories: map[project.Category][]project.BudgetItem{}}
	assertDecimal(t, "missing entry", VatRate(&raw, project.CategoryRegistration), dec("20"))
}

func TestSubtotalSumsAllCategories(t *testing.T) {
	p := newTestProject()
	p = p.WithItems(project.CategoryRegistration, []project.BudgetItem{
		project.NewBudgetItem("a", "", 1, decimal.NewFromInt(100)),
	})
	p = p.WithItems(project.CategoryAccommodation, []project.BudgetItem{
		project.NewBudgetItem("b", "", 3, decimal.NewFromInt(50)),
		project.NewBudgetItem("c", "", 2, dec("10.25")),
	})

	want := decimal.Zero
	for _, category := range project.Categories() {
		want = want.Add(CategoryTotal(&p, category))
	}
	assertDecimal(t, "Subtotal", Subtotal(&p), want)
	assertDecimal(t, "Subtotal value", Subtotal(&p), dec("270.50"))
}

func TestGrandTotalIdentities(t *testing.T) {
	p := newTestProject()
	p.ServiceFeePercent = dec("7.5")
	p.IsInternational = false
	p = p.WithItems(project.CategoryTransfer, []project.BudgetItem{
		project.NewBudgetItem("a", "", 4, dec("33.33")),
	})
	p = p.WithVatRate(project.CategoryTransfer, project.FixedVat(decimal.NewFromInt(10)))

	assertDecimal(t, "TotalBeforeVat", TotalBeforeVat(&p), Subtotal(&p).Add(ServiceFee(&p)))
	assertDecimal(t, "GrandTotal", GrandTotal(&p), TotalBeforeVat(&p).Add(TotalVat(&p)))
}

func TestToReferenceCurrency(t *testing.T) {
	p := newTestProject()
	p.Currency = project.CurrencyTRY
	p.ExchangeRate = dec("48.7")
	assertDecimal(t, "identity for TRY", ToReferenceCurrency(&p, dec("100")), dec("100"))

	p.Currency = project.CurrencyEUR
	assertDecimal(t, "EUR conversion", ToReferenceCurrency(&p, dec("100")), dec("4870"))
}

func TestAnalysisAggregates(t *testing.T) {
	p := newTestProject()
	p.ServiceFeePercent = decimal.NewFromInt(10)
	p = p.WithItems(project.CategoryRegistration, []project.BudgetItem{
		project.NewBudgetItem("a", "", 1, decimal.NewFromInt(1000)),
	})
	p = p.WithPayments([]project.Payment{
		{ID: "p1", Amount: dec("500"), Type: project.PaymentIncoming},
		{ID: "p2", Amount: dec("120"), Type: project.PaymentIncoming},
		{ID: "p3", Amount: dec("80"), Type: project.PaymentOutgoing},
	})
	p = p.WithAdvances([]project.Advance{
		{ID: "a1", Amount: dec("200"), Status: project.AdvancePending},
		{ID: "a2", Amount: dec("50"), Status: project.AdvanceClosed},
	})
	p = p.WithExpenses([]project.Expense{
		{ID: "e1", Amount: dec("30")},
		{ID: "e2", Amount: dec("12.50")},
	})

	assertDecimal(t, "incoming", TotalIncomingPayments(&p), dec("620"))
	assertDecimal(t, "outgoing", TotalOutgoingPayments(&p), dec("80"))
	assertDecimal(t, "advances", TotalAdvances(&p), dec("250"))
	assertDecimal(t, "pending advances", PendingAdvances(&p), dec("200"))
	assertDecimal(t, "expenses", TotalExpenses(&p), dec("42.50"))
	assertDecimal(t, "net profit", NetProfit(&p), dec("57.50"))
	assertDecimal(t, "cash flow", CashFlow(&p), dec("290"))
}

func TestEmptyLedgersYieldZero(t *testing.T) {
	p := newTestProject()
	assertDecimal(t, "cash flow", CashFlow(&p), decimal.Zero)
	assertDecimal(t, "net profit", NetProfit(&p), decimal.Zero)
	assertDecimal(t, "pending advances", PendingAdvances(&p), decimal.Zero)
}

func TestNilProjectIsIdentity(t *testing.T) {
	assertDecimal(t, "Subtotal", Subtotal(nil), decimal.Zero)
	assertDecimal(t, "ServiceFee", ServiceFee(nil), decimal.Zero)
	assertDecimal(t, "TotalVat", TotalVat(nil), decimal.Zero)
	assertDecimal(t, "GrandTotal", GrandTotal(nil), decimal.Zero)
	assertDecimal(t, "CashFlow", CashFlow(nil), decimal.Zero)
	assertDecimal(t, "VatRate", VatRate(nil, project.CategoryOther), dec("20"))
	assertDecimal(t, "conversion", ToReferenceCurrency(nil, dec("5")), dec("5"))
}

func TestSummarizeMatchesIndividualGetters(t *testing.T) {
	p := newTestProject()
	p.ServiceFeePercent = decimal.NewFromInt(10)
	p = p.WithItems(project.CategoryRegistration, []project.BudgetItem{
		project.NewBudgetItem("a", "", 2, decimal.NewFromInt(100)),
	})

	summary := Summarize(&p)
	assertDecimal(t, "summary subtotal", summary.Subtotal, Subtotal(&p))
	assertDecimal(t, "summary grand total", summary.GrandTotal, GrandTotal(&p))
	assertDecimal(t, "summary registration total", summary.CategoryTotals[project.CategoryRegistration], dec("200"))
	assertDecimal(t, "summary vat rate", summary.VatRates[project.CategoryRegistration], dec("20"))
}
