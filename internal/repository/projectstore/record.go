package projectstore

import (
	"time"

	"github.com/shopspring/decimal"

	"agency-budget-go/internal/domain/project"
)

// projectRow is the persisted shape of one project. Child collections are
// stored as JSON columns in their wire form, so a row read back goes through
// the same defaulting path as any other record load.
type projectRow struct {
	ID                string                                    `gorm:"primaryKey"`
	Name              string                                    `gorm:"not null"`
	Client            string                                    `gorm:"not null;default:''"`
	Date              string                                    `gorm:"not null"`
	Currency          string                                    `gorm:"size:3;not null"`
	ExchangeRate      decimal.Decimal                           `gorm:"type:numeric(20,6);not null"`
	IsInternational   bool                                      `gorm:"not null"`
	ServiceFeePercent decimal.Decimal                           `gorm:"type:numeric(20,6);not null"`
	Categories        map[project.Category][]project.BudgetItem `gorm:"serializer:json"`
	CategoryVatRates  []project.CategoryVatRate                 `gorm:"serializer:json"`
	Payments          []project.Payment                         `gorm:"serializer:json"`
	Advances          []project.Advance                         `gorm:"serializer:json"`
	Expenses          []project.Expense                         `gorm:"serializer:json"`
	CreatedAt         time.Time                                 `gorm:"autoCreateTime"`
	UpdatedAt         time.Time                                 `gorm:"autoUpdateTime"`
}

func (projectRow) TableName() string {
	return "projects"
}

func rowFromProject(p *project.Project) projectRow {
	record := p.Record()
	return projectRow{
		ID:                record.ID,
		Name:              record.Name,
		Client:            record.Client,
		Date:              record.Date.String(),
		Currency:          string(record.Currency),
		ExchangeRate:      record.ExchangeRate,
		IsInternational:   record.IsInternational,
		ServiceFeePercent: record.ServiceFeePercent,
		Categories:        record.Categories,
		CategoryVatRates:  record.CategoryVatRates,
		Payments:          record.Payments,
		Advances:          record.Advances,
		Expenses:          record.Expenses,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (r projectRow) toProject() project.Project {
	date, err := project.ParseDate(r.Date)
	if err != nil {
		date = project.Date{}
	}
	record := project.Record{
		ID:                r.ID,
		Name:              r.Name,
		Client:            r.Client,
		Date:              date,
		Currency:          project.Currency(r.Currency),
		ExchangeRate:      r.ExchangeRate,
		IsInternational:   r.IsInternational,
		ServiceFeePercent: r.ServiceFeePercent,
		Categories:        r.Categories,
		CategoryVatRates:  r.CategoryVatRates,
		Payments:          r.Payments,
		Advances:          r.Advances,
		Expenses:          r.Expenses,
	}
	if !r.CreatedAt.IsZero() {
		created := r.CreatedAt
		record.CreatedAt = &created
	}
	if !r.UpdatedAt.IsZero() {
		updated := r.UpdatedAt
		record.UpdatedAt = &updated
	}
	return record.Project()
}
