package project

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type fakeRepo struct {
	projects map[string]Project
	upserts  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{projects: make(map[string]Project)}
}

func (r *fakeRepo) List(ctx context.Context) ([]Project, error) {
	items := make([]Project, 0, len(r.projects))
	for _, p := range r.projects {
		items = append(items, p.Clone())
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	clone := p.Clone()
	return &clone, nil
}

func (r *fakeRepo) Upsert(ctx context.Context, p *Project) error {
	r.upserts++
	r.projects[p.ID] = p.Clone()
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := r.projects[id]; !ok {
		return false, nil
	}
	delete(r.projects, id)
	return true, nil
}

// fakeScheduler records scheduled snapshots without any timers; the newest
// snapshot per id is served back as pending.
type fakeScheduler struct {
	pending   map[string]Project
	cancelled []string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{pending: make(map[string]Project)}
}

func (s *fakeScheduler) Schedule(p Project) {
	s.pending[p.ID] = p.Clone()
}

func (s *fakeScheduler) Pending(id string) (Project, bool) {
	p, ok := s.pending[id]
	if !ok {
		return Project{}, false
	}
	return p.Clone(), true
}

func (s *fakeScheduler) PendingAll() []Project {
	items := make([]Project, 0, len(s.pending))
	for _, p := range s.pending {
		items = append(items, p.Clone())
	}
	return items
}

func (s *fakeScheduler) Cancel(id string) {
	s.cancelled = append(s.cancelled, id)
	delete(s.pending, id)
}

type fakePublisher struct {
	upserted []string
	deleted  []string
}

func (p *fakePublisher) ProjectUpserted(project Project) {
	p.upserted = append(p.upserted, project.ID)
}

func (p *fakePublisher) ProjectDeleted(id string) {
	p.deleted = append(p.deleted, id)
}

func newTestService() (*Service, *fakeRepo, *fakeScheduler, *fakePublisher) {
	repo := newFakeRepo()
	saver := newFakeScheduler()
	pub := &fakePublisher{}
	svc := NewService(repo, saver, pub)
	return svc, repo, saver, pub
}

func createInput(name string) CreateProjectInput {
	return CreateProjectInput{
		Name:         name,
		Client:       "Acme Events",
		Date:         NewDate(2025, time.June, 10),
		Currency:     CurrencyEUR,
		ExchangeRate: decimal.NewFromInt(48),
	}
}

func TestCreateProjectHasDefaultShape(t *testing.T) {
	svc, repo, _, pub := newTestService()

	created, err := svc.Create(context.Background(), createInput("Berlin Congress"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if len(created.Categories) != 5 {
		t.Fatalf("expected 5 category lists, got %d", len(created.Categories))
	}
	for _, category := range Categories() {
		items, ok := created.Categories[category]
		if !ok {
			t.Fatalf("missing category %s", category)
		}
		if len(items) != 0 {
			t.Fatalf("category %s: expected empty list", category)
		}
	}
	if len(created.VatRates) != 5 {
		t.Fatalf("expected 5 vat entries, got %d", len(created.VatRates))
	}
	if rate := created.VatRates[CategoryAccommodation]; !rate.Rate.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("accommodation default: got %s", rate.Rate)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	if repo.upserts != 1 {
		t.Fatalf("expected immediate persist, got %d upserts", repo.upserts)
	}
	if len(pub.upserted) != 1 || pub.upserted[0] != created.ID {
		t.Fatalf("expected upsert event for %s, got %v", created.ID, pub.upserted)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	svc, _, _, _ := newTestService()

	if _, err := svc.Create(context.Background(), CreateProjectInput{Name: "  ", Currency: CurrencyEUR}); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := svc.Create(context.Background(), CreateProjectInput{Name: "X", Currency: Currency("JPY")}); err == nil {
		t.Fatal("expected error for unknown currency")
	}
}

func TestCreateProjectCoercesRates(t *testing.T) {
	svc, _, _, _ := newTestService()

	input := createInput("Rates")
	input.ExchangeRate = decimal.Zero
	input.ServiceFeePercent = decimal.NewFromInt(-5)

	created, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.ExchangeRate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("exchange rate: got %s, want 1", created.ExchangeRate)
	}
	if !created.ServiceFeePercent.IsZero() {
		t.Fatalf("service fee percent: got %s, want 0", created.ServiceFeePercent)
	}
}

func TestEditsAreDebouncedNotPersisted(t *testing.T) {
	svc, repo, saver, _ := newTestService()

	created, err := svc.Create(context.Background(), createInput("Edit Flow"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.AddItem(context.Background(), created.ID, CategoryTransfer, BudgetItemInput{
		Description: "Airport shuttle",
		Quantity:    4,
		UnitPrice:   decimal.NewFromInt(150),
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	if repo.upserts != 1 {
		t.Fatalf("edit must not persist immediately, got %d upserts", repo.upserts)
	}
	pending, ok := saver.Pending(created.ID)
	if !ok {
		t.Fatal("expected pending snapshot")
	}
	if len(pending.Categories[CategoryTransfer]) != 1 {
		t.Fatal("pending snapshot missing the new item")
	}

	// Reads serve the pending snapshot, not the stale row.
	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Categories[CategoryTransfer]) != 1 {
		t.Fatal("get must overlay the pending snapshot")
	}
}

func TestItemTotalsRecomputed(t *testing.T) {
	svc, _, _, _ := newTestService()

	created, err := svc.Create(context.Background(), createInput("Totals"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.AddItem(context.Background(), created.ID, CategoryRegistration, BudgetItemInput{
		Description: "Badge",
		Quantity:    3,
		UnitPrice:   decimal.RequireFromString("12.50"),
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	item := updated.Categories[CategoryRegistration][0]
	if item.ID == "" {
		t.Fatal("expected generated item id")
	}
	if !item.Total.Equal(decimal.RequireFromString("37.50")) {
		t.Fatalf("total: got %s, want 37.50", item.Total)
	}

	updated, err = svc.UpdateItem(context.Background(), created.ID, CategoryRegistration, item.ID, BudgetItemInput{
		Description: "Badge",
		Quantity:    5,
		UnitPrice:   decimal.RequireFromString("12.50"),
	})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if got := updated.Categories[CategoryRegistration][0].Total; !got.Equal(decimal.RequireFromString("62.50")) {
		t.Fatalf("total after update: got %s, want 62.50", got)
	}
}

func TestUpdateItemNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	created, err := svc.Create(context.Background(), createInput("Missing Item"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.UpdateItem(context.Background(), created.ID, CategoryOther, "nope", BudgetItemInput{Quantity: 1})
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestDeleteItemRemovesExactlyOne(t *testing.T) {
	svc, _, _, _ := newTestService()

	created, err := svc.Create(context.Background(), createInput("Delete Item"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var last *Project
	for _, desc := range []string{"one", "two", "three"} {
		last, err = svc.AddItem(context.Background(), created.ID, CategoryOther, BudgetItemInput{Description: desc, Quantity: 1, UnitPrice: decimal.NewFromInt(10)})
		if err != nil {
			t.Fatalf("add item: %v", err)
		}
	}
	ids := make([]string, 0, 3)
	for _, item := range last.Categories[CategoryOther] {
		ids = append(ids, item.ID)
	}

	updated, err := svc.DeleteItem(context.Background(), created.ID, CategoryOther, ids[1])
	if err != nil {
		t.Fatalf("delete item: %v", err)
	}
	items := updated.Categories[CategoryOther]
	if len(items) != 2 {
		t.Fatalf("expected 2 items left, got %d", len(items))
	}
	if items[0].ID != ids[0] || items[1].ID != ids[2] {
		t.Fatal("wrong item removed")
	}
}

func TestReplaceItemsKeepsProvidedIDs(t *testing.T) {
	svc, _, _, _ := newTestService()

	created, err := svc.Create(context.Background(), createInput("Replace"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.ReplaceItems(context.Background(), created.ID, CategorySponsorship, []BudgetItemInput{
		{ID: "keep-me", Description: "Gold package", Quantity: 1, UnitPrice: decimal.NewFromInt(5000)},
		{Description: "Silver package", Quantity: 2, UnitPrice: decimal.NewFromInt(2500)},
	})
	if err != nil {
		t.Fatalf("replace items: %v", err)
	}

	items := updated.Categories[CategorySponsorship]
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "keep-me" {
		t.Fatalf("expected provided id to survive, got %s", items[0].ID)
	}
	if items[1].ID == "" {
		t.Fatal("expected generated id for the second item")
	}
}

func TestSetVatRateVariants(t *testing.T) {
	svc, _, _, _ := newTestService()

	created, err := svc.Create(context.Background(), createInput("VAT"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.SetVatRate(context.Background(), created.ID, CategoryTransfer, CustomVat(decimal.RequireFromString("12.5")))
	if err != nil {
		t.Fatalf("set vat: %v", err)
	}
	rate := updated.VatRates[CategoryTransfer]
	if !rate.Custom || !rate.Rate.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("custom rate not applied: %+v", rate)
	}

	updated, err = svc.SetVatRate(context.Background(), created.ID, CategoryTransfer, FixedVat(decimal.NewFromInt(20)))
	if err != nil {
		t.Fatalf("set vat: %v", err)
	}
	rate = updated.VatRates[CategoryTransfer]
	if rate.Custom || !rate.Rate.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("fixed rate not applied: %+v", rate)
	}
}

func TestPaymentLifecycle(t *testing.T) {
	svc, _, _, _ := newTestService()

	created, err := svc.Create(context.Background(), createInput("Payments"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.AddPayment(context.Background(), created.ID, PaymentInput{Type: PaymentType("sideways")})
	if !errors.Is(err, ErrInvalidPaymentType) {
		t.Fatalf("expected ErrInvalidPaymentType, got %v", err)
	}

	updated, err := svc.AddPayment(context.Background(), created.ID, PaymentInput{
		Date:        NewDate(2025, time.July, 1),
		Description: "Deposit",
		Amount:      decimal.NewFromInt(1000),
		Type:        PaymentIncoming,
	})
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}
	paymentID := updated.Payments[0].ID

	updated, err = svc.UpdatePayment(context.Background(), created.ID, paymentID, PaymentInput{
		Date:        NewDate(2025, time.July, 2),
		Description: "Deposit (corrected)",
		Amount:      decimal.NewFromInt(1200),
		Type:        PaymentIncoming,
	})
	if err != nil {
		t.Fatalf("update payment: %v", err)
	}
	if !updated.Payments[0].Amount.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("amount not updated: %s", updated.Payments[0].Amount)
	}

	updated, err = svc.DeletePayment(context.Background(), created.ID, paymentID)
	if err != nil {
		t.Fatalf("delete payment: %v", err)
	}
	if len(updated.Payments) != 0 {
		t.Fatalf("expected empty payments, got %d", len(updated.Payments))
	}

	_, err = svc.DeletePayment(context.Background(), created.ID, paymentID)
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestAdvanceReopenAllowed(t *testing.T) {
	svc, _, _, _ := newTestService()

	created, err := svc.Create(context.Background(), createInput("Advances"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.AddAdvance(context.Background(), created.ID, AdvanceInput{
		Date:     NewDate(2025, time.July, 5),
		Amount:   decimal.NewFromInt(500),
		Status:   AdvanceClosed,
		Supplier: "Hotel Astoria",
	})
	if err != nil {
		t.Fatalf("add advance: %v", err)
	}
	advanceID := updated.Advances[0].ID

	updated, err = svc.UpdateAdvance(context.Background(), created.ID, advanceID, AdvanceInput{
		Date:     NewDate(2025, time.July, 5),
		Amount:   decimal.NewFromInt(500),
		Status:   AdvancePending,
		Supplier: "Hotel Astoria",
	})
	if err != nil {
		t.Fatalf("reopen advance: %v", err)
	}
	if updated.Advances[0].Status != AdvancePending {
		t.Fatalf("expected pending, got %s", updated.Advances[0].Status)
	}
}

func TestExpenseCategoryIsFreeText(t *testing.T) {
	svc, _, _, _ := newTestService()

	created, err := svc.Create(context.Background(), createInput("Expenses"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.AddExpense(context.Background(), created.ID, ExpenseInput{
		Date:        NewDate(2025, time.August, 1),
		Description: "Taxi",
		Amount:      decimal.NewFromInt(30),
		Category:    "misc travel",
	})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}
	if updated.Expenses[0].Category != "misc travel" {
		t.Fatalf("category: got %q", updated.Expenses[0].Category)
	}
}

func TestDeleteCancelsPendingSave(t *testing.T) {
	svc, repo, saver, pub := newTestService()

	created, err := svc.Create(context.Background(), createInput("Doomed"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.AddExpense(context.Background(), created.ID, ExpenseInput{Amount: decimal.NewFromInt(1)}); err != nil {
		t.Fatalf("add expense: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(saver.cancelled) != 1 || saver.cancelled[0] != created.ID {
		t.Fatalf("expected autosave cancel for %s, got %v", created.ID, saver.cancelled)
	}
	if _, ok := repo.projects[created.ID]; ok {
		t.Fatal("row still present after delete")
	}
	if len(pub.deleted) != 1 || pub.deleted[0] != created.ID {
		t.Fatalf("expected delete event, got %v", pub.deleted)
	}

	if err := svc.Delete(context.Background(), created.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestListOverlaysPendingAndSortsNewestFirst(t *testing.T) {
	svc, repo, saver, _ := newTestService()

	older := New("older")
	older.Name = "Older"
	older.CreatedAt = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	newer := New("newer")
	newer.Name = "Newer"
	newer.CreatedAt = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	repo.projects["older"] = older
	repo.projects["newer"] = newer

	edited := older.Clone()
	edited.Name = "Older (edited)"
	saver.Schedule(edited)

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(items))
	}
	if items[0].ID != "newer" {
		t.Fatalf("expected newest first, got %s", items[0].ID)
	}
	if items[1].Name != "Older (edited)" {
		t.Fatalf("pending snapshot not overlaid: %q", items[1].Name)
	}
}

func TestMutationsNeverAliasStoredSnapshots(t *testing.T) {
	svc, repo, _, _ := newTestService()

	created, err := svc.Create(context.Background(), createInput("Aliasing"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.AddItem(context.Background(), created.ID, CategoryOther, BudgetItemInput{Description: "x", Quantity: 1, UnitPrice: decimal.NewFromInt(1)})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	updated.Categories[CategoryOther][0].Description = "mutated by caller"

	stored := repo.projects[created.ID]
	if len(stored.Categories[CategoryOther]) != 0 {
		t.Fatal("persisted row must not see unscheduled edits")
	}
}
