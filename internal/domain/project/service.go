package project

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	repo  Repository
	saver Scheduler
	pub   Publisher
	now   func() time.Time
}

func NewService(repo Repository, saver Scheduler, pub Publisher) *Service {
	if pub == nil {
		pub = NoopPublisher{}
	}
	return &Service{
		repo:  repo,
		saver: saver,
		pub:   pub,
		now:   time.Now,
	}
}

type CreateProjectInput struct {
	Name              string
	Client            string
	Date              Date
	Currency          Currency
	ExchangeRate      decimal.Decimal
	IsInternational   bool
	ServiceFeePercent decimal.Decimal
}

type UpdateProjectInput struct {
	ID                string
	Name              string
	Client            string
	Date              Date
	Currency          Currency
	ExchangeRate      decimal.Decimal
	IsInternational   bool
	ServiceFeePercent decimal.Decimal
}

type BudgetItemInput struct {
	ID          string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

type PaymentInput struct {
	Date        Date
	Description string
	Amount      decimal.Decimal
	Type        PaymentType
}

type AdvanceInput struct {
	Date        Date
	Description string
	Amount      decimal.Decimal
	Status      AdvanceStatus
	Supplier    string
}

type ExpenseInput struct {
	Date        Date
	Description string
	Amount      decimal.Decimal
	Category    string
}

// List returns all projects, newest first, with pending (not yet persisted)
// snapshots overlaid on what the store returned.
func (s *Service) List(ctx context.Context) ([]Project, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	pending := s.saver.PendingAll()
	if len(pending) > 0 {
		byID := make(map[string]Project, len(pending))
		for _, p := range pending {
			byID[p.ID] = p
		}
		for i := range items {
			if p, ok := byID[items[i].ID]; ok {
				items[i] = p
				delete(byID, p.ID)
			}
		}
		for _, p := range byID {
			items = append(items, p)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// Get prefers the pending in-memory snapshot over the persisted row: during
// a burst of edits the store lags behind by one debounce window.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	if p, ok := s.saver.Pending(id); ok {
		return &p, nil
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, input CreateProjectInput) (*Project, error) {
	if err := validateDetails(input.Name, input.Currency); err != nil {
		return nil, err
	}

	p := New(uuid.NewString())
	applyDetails(&p, input.Name, input.Client, input.Date, input.Currency, input.ExchangeRate, input.IsInternational, input.ServiceFeePercent)
	now := s.now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.Upsert(ctx, &p); err != nil {
		return nil, err
	}
	s.pub.ProjectUpserted(p)
	return &p, nil
}

func (s *Service) Update(ctx context.Context, input UpdateProjectInput) (*Project, error) {
	if err := validateDetails(input.Name, input.Currency); err != nil {
		return nil, err
	}
	return s.mutate(ctx, input.ID, func(p Project) (Project, error) {
		next := p.Clone()
		applyDetails(&next, input.Name, input.Client, input.Date, input.Currency, input.ExchangeRate, input.IsInternational, input.ServiceFeePercent)
		return next, nil
	})
}

// Delete removes the project row immediately; any pending autosave for it is
// cancelled first so a stale snapshot cannot resurrect the row.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.saver.Cancel(id)
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrProjectNotFound
	}
	s.pub.ProjectDeleted(id)
	return nil
}

func (s *Service) ReplaceItems(ctx context.Context, projectID string, category Category, inputs []BudgetItemInput) (*Project, error) {
	return s.mutate(ctx, projectID, func(p Project) (Project, error) {
		items := make([]BudgetItem, 0, len(inputs))
		for _, input := range inputs {
			id := strings.TrimSpace(input.ID)
			if id == "" {
				id = uuid.NewString()
			}
			items = append(items, NewBudgetItem(id, input.Description, input.Quantity, input.UnitPrice))
		}
		return p.WithItems(category, items), nil
	})
}

func (s *Service) AddItem(ctx context.Context, projectID string, category Category, input BudgetItemInput) (*Project, error) {
	return s.mutate(ctx, projectID, func(p Project) (Project, error) {
		items := append([]BudgetItem{}, p.Categories[category]...)
		items = append(items, NewBudgetItem(uuid.NewString(), input.Description, input.Quantity, input.UnitPrice))
		return p.WithItems(category, items), nil
	})
}

func (s *Service) UpdateItem(ctx context.Context, projectID string, category Category, itemID string, input BudgetItemInput) (*Project, error) {
	return s.mutate(ctx, projectID, func(p Project) (Project, error) {
		items := append([]BudgetItem{}, p.Categories[category]...)
		index := indexOf(len(items), func(i int) bool { return items[i].ID == itemID })
		if index < 0 {
			return Project{}, ErrItemNotFound
		}
		items[index] = NewBudgetItem(itemID, input.Description, input.Quantity, input.UnitPrice)
		return p.WithItems(category, items), nil
	})
}

func (s *Service) DeleteItem(ctx context.Context, projectID string, category Category, itemID string) (*Project, error) {
	return s.mutate(ctx, projectID, func(p Project) (Project, error) {
		items := append([]BudgetItem{}, p.Categories[category]...)
		index := indexOf(len(items), func(i int) bool { return items[i].ID == itemID })
		if index < 0 {
			return Project{}, ErrItemNotFound
		}
		items = append(items[:index], items[index+1:]...)
		return p.WithItems(category, items), nil
	})
}

func (s *Service) SetVatRate(ctx context.Context, projectID string, category Category, rate VatRate) (*Project, error) {
	return s.mutate(ctx, projectID, func(p Project) (Project, error) {
		return p.WithVatRate(category, rate), nil
	})
}

func (s *Service) AddPayment(ctx context.Context, projectID string, input PaymentInput) (*Project, error) {
	if !input.Type.Valid() {
		return nil, ErrInvalidPaymentType
	}
	return s.mutate(ctx, projectID, func(p Project) (Project, error) {
		payments := append([]Payment{}, p.Payments...)
		payments = append(payments, newPayment(uuid.NewString(), input))
		return p.WithPayments(payments), nil
	})
}

func (s *Service) UpdatePayment(ctx context.Context, projectID, paymentID string, input PaymentInput) (*Project, error) {
	if !input.Type.Valid() {
		return nil, ErrInvalidPaymentType
	}
	return s.mutate(ctx, projectID, func(p Project) (Project, error) {
		payments := append([]Payment{}, p.Payments...)
		index := indexOf(len(payments), func(i int) bool { return payments[i].ID == paymentID })
		if index < 0 {
			return Project{}, ErrPaymentNotFound
		}
		payments[index] = newPayment(paymentID, input)
		return p.WithPayments(payments), nil
	})
}

func (s *Service) DeletePayment(ctx context.Context, projectID, paymentID string) (*Project, error) {
	return s.mutate(ctx, projectID, func(p Project) (Project, error) {
		payments := append([]Payment{}, p.Payments...)
		index := indexOf(len(payments), func(i int) bool { return payments[i].ID == paymentID })
		if index < 0 {
			return Project{}, ErrPaymentNotFound
		}
		payments = append(payments[:index], payments[index+1:]...)
		return p.WithPayments(payments), nil
	})
}

func (s *Service) AddAdvance(ctx context.Context, projectID string, input AdvanceInput) (*Project, error) {
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.mutate(ctx, projectID, func(p Project) (Project, error) {
		advances := append([]Advance{}, p.Advances...)
		advances = append(advances, newAdvance(uuid.NewString(), input))
		return p.WithAdvances(advances), nil
	})
}

func (s *Service) UpdateAdvance(ctx context.Context, projectID, advanceID string, input AdvanceInput) (*Project, error) {
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.mutate(ctx, projectID, func(p Project) (Project, error) {
		advances := append([]Advance{}, p.Advances...)
		index := indexOf(len(advances), func(i int) bool { return advances[i].ID == advanceID })
		if index < 0 {
			return Project{}, ErrAdvanceNotFound
		}
		advances[index] = newAdvance(advanceID, input)
		return p.WithAdvances(advances), nil
	})
}

func (s *Service) DeleteAdvance(ctx context.Context, projectID, advanceID string) (*Project, error) {
	return s.mutate(ctx, projectID, func(p Project) (Project, error) {
		advances := append([]Advance{}, p.Advances...)
		index := indexOf(len(advances), func(i int) bool { return advances[i].ID == advanceID })
		if index < 0 {
			return Project{}, ErrAdvanceNotFound
		}
		advances = append(advances[:index], advances[index+1:]...)
		return p.WithAdvances(advances), nil
	})
}

func (s *Service) AddExpense(ctx context.Context, projectID string, input ExpenseInput) (*Project, error) {
	return s.mutate(ctx, projectID, func(p Project) (Project, error) {
		expenses := append([]Expense{}, p.Expenses...)
		expenses = append(expenses, newExpense(uuid.NewString(), input))
		return p.WithExpenses(expenses), nil
	})
}

func (s *Service) UpdateExpense(ctx context.Context, projectID, expenseID string, input ExpenseInput) (*Project, error) {
	return s.mutate(ctx, projectID, func(p Project) (Project, error) {
		expenses := append([]Expense{}, p.Expenses...)
		index := indexOf(len(expenses), func(i int) bool { return expenses[i].ID == expenseID })
		if index < 0 {
			return Project{}, ErrExpenseNotFound
		}
		expenses[index] = newExpense(expenseID, input)
		return p.WithExpenses(expenses), nil
	})
}

func (s *Service) DeleteExpense(ctx context.Context, projectID, expenseID string) (*Project, error) {
	return s.mutate(ctx, projectID, func(p Project) (Project, error) {
		expenses := append([]Expense{}, p.Expenses...)
		index := indexOf(len(expenses), func(i int) bool { return expenses[i].ID == expenseID })
		if index < 0 {
			return Project{}, ErrExpenseNotFound
		}
		expenses = append(expenses[:index], expenses[index+1:]...)
		return p.WithExpenses(expenses), nil
	})
}

// mutate loads the current snapshot, applies the edit, schedules a debounced
// save for the new snapshot and publishes it as a whole-row upsert.
func (s *Service) mutate(ctx context.Context, projectID string, fn func(Project) (Project, error)) (*Project, error) {
	current, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	next, err := fn(*current)
	if err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now().UTC()

	s.saver.Schedule(next)
	s.pub.ProjectUpserted(next)
	return &next, nil
}

func applyDetails(p *Project, name, client string, date Date, currency Currency, exchangeRate decimal.Decimal, isInternational bool, serviceFeePercent decimal.Decimal) {
	p.Name = strings.TrimSpace(name)
	p.Client = strings.TrimSpace(client)
	p.Date = date
	p.Currency = currency
	if exchangeRate.IsPositive() {
		p.ExchangeRate = exchangeRate
	} else {
		p.ExchangeRate = decimal.NewFromInt(1)
	}
	p.IsInternational = isInternational
	if serviceFeePercent.IsNegative() {
		serviceFeePercent = decimal.Zero
	}
	p.ServiceFeePercent = serviceFeePercent
}

func validateDetails(name string, currency Currency) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if !currency.Valid() {
		return fmt.Errorf("unknown currency %q", currency)
	}
	return nil
}

func newPayment(id string, input PaymentInput) Payment {
	return Payment{
		ID:          id,
		Date:        input.Date,
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount,
		Type:        input.Type,
	}
}

func newAdvance(id string, input AdvanceInput) Advance {
	return Advance{
		ID:          id,
		Date:        input.Date,
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount,
		Status:      input.Status,
		Supplier:    strings.TrimSpace(input.Supplier),
	}
}

func newExpense(id string, input ExpenseInput) Expense {
	return Expense{
		ID:          id,
		Date:        input.Date,
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount,
		Category:    strings.TrimSpace(input.Category),
	}
}

func indexOf(length int, match func(int) bool) int {
	for i := 0; i < length; i++ {
		if match(i) {
			return i
		}
	}
	return -1
}
