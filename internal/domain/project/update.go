package project

// Snapshot-replace update functions. Every edit produces a new Project value;
// the previous snapshot stays untouched so that change detection and autosave
// scheduling can rely on value identity.

func cloneCategories(categories map[Category][]BudgetItem) map[Category][]BudgetItem {
	cloned := make(map[Category][]BudgetItem, len(categories))
	for category, items := range categories {
		cloned[category] = append([]BudgetItem{}, items...)
	}
	return cloned
}

func cloneVatRates(rates map[Category]VatRate) map[Category]VatRate {
	cloned := make(map[Category]VatRate, len(rates))
	for category, rate := range rates {
		cloned[category] = rate
	}
	return cloned
}

func clonePayments(payments []Payment) []Payment {
	if payments == nil {
		return nil
	}
	return append([]Payment{}, payments...)
}

func cloneAdvances(advances []Advance) []Advance {
	if advances == nil {
		return nil
	}
	return append([]Advance{}, advances...)
}

func cloneExpenses(expenses []Expense) []Expense {
	if expenses == nil {
		return nil
	}
	return append([]Expense{}, expenses...)
}

// Clone returns a deep copy sharing no collections with the receiver.
func (p Project) Clone() Project {
	p.Categories = cloneCategories(p.Categories)
	p.VatRates = cloneVatRates(p.VatRates)
	p.Payments = clonePayments(p.Payments)
	p.Advances = cloneAdvances(p.Advances)
	p.Expenses = cloneExpenses(p.Expenses)
	return p
}

// WithItems replaces one category's item list.
func (p Project) WithItems(category Category, items []BudgetItem) Project {
	next := p.Clone()
	next.Categories[category] = append([]BudgetItem{}, items...)
	return next
}

// WithVatRate replaces one category's VAT configuration.
func (p Project) WithVatRate(category Category, rate VatRate) Project {
	next := p.Clone()
	next.VatRates[category] = rate
	return next
}

func (p Project) WithPayments(payments []Payment) Project {
	next := p.Clone()
	next.Payments = append([]Payment{}, payments...)
	return next
}

func (p Project) WithAdvances(advances []Advance) Project {
	next := p.Clone()
	next.Advances = append([]Advance{}, advances...)
	return next
}

func (p Project) WithExpenses(expenses []Expense) Project {
	next := p.Clone()
	next.Expenses = append([]Expense{}, expenses...)
	return next
}
