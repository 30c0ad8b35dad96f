// Package export renders a project's budget as an xlsx workbook.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"agency-budget-go/internal/domain/finance"
	"agency-budget-go/internal/domain/project"
)

const (
	sheetBudget   = "Budget"
	sheetPayments = "Payments"
	sheetAdvances = "Advances"
	sheetExpenses = "Expenses"
)

// BudgetWorkbook builds a workbook with the itemized budget, the three
// ledgers and the derived summary block. The caller owns closing the file.
func BudgetWorkbook(p *project.Project) (*excelize.File, error) {
	f := excelize.NewFile()
	summary := finance.Summarize(p)

	if err := f.SetSheetName("Sheet1", sheetBudget); err != nil {
		return nil, err
	}
	if err := writeBudgetSheet(f, p, summary); err != nil {
		return nil, err
	}
	if err := writePaymentsSheet(f, p); err != nil {
		return nil, err
	}
	if err := writeAdvancesSheet(f, p); err != nil {
		return nil, err
	}
	if err := writeExpensesSheet(f, p); err != nil {
		return nil, err
	}
	return f, nil
}

func writeBudgetSheet(f *excelize.File, p *project.Project, summary finance.Summary) error {
	setRow(f, sheetBudget, 1, "Project", p.Name)
	setRow(f, sheetBudget, 2, "Client", p.Client)
	setRow(f, sheetBudget, 3, "Date", p.Date.String())
	setRow(f, sheetBudget, 4, "Currency", string(p.Currency))

	row := 6
	setRow(f, sheetBudget, row, "Category", "Description", "Quantity", "Unit Price", "Total", "VAT %")
	row++

	for _, category := range project.Categories() {
		rate := summary.VatRates[category]
		for _, item := range p.Categories[category] {
			setRow(f, sheetBudget, row,
				string(category),
				item.Description,
				item.Quantity,
				item.UnitPrice.InexactFloat64(),
				item.Total.InexactFloat64(),
				rate.InexactFloat64(),
			)
			row++
		}
		setRow(f, sheetBudget, row, string(category)+" total", "", "", "", summary.CategoryTotals[category].InexactFloat64())
		row++
	}

	row++
	setRow(f, sheetBudget, row, "Subtotal", summary.Subtotal.InexactFloat64())
	row++
	setRow(f, sheetBudget, row, "Service Fee", summary.ServiceFee.InexactFloat64())
	row++
	setRow(f, sheetBudget, row, "Total Before VAT", summary.TotalBeforeVat.InexactFloat64())
	row++
	setRow(f, sheetBudget, row, "Total VAT", summary.TotalVat.InexactFloat64())
	row++
	setRow(f, sheetBudget, row, "Grand Total", summary.GrandTotal.InexactFloat64())
	row++
	setRow(f, sheetBudget, row, "Net Profit", summary.NetProfit.InexactFloat64())
	row++
	setRow(f, sheetBudget, row, "Cash Flow", summary.CashFlow.InexactFloat64())
	return nil
}

func writePaymentsSheet(f *excelize.File, p *project.Project) error {
	if _, err := f.NewSheet(sheetPayments); err != nil {
		return err
	}
	setRow(f, sheetPayments, 1, "Date", "Description", "Type", "Amount")
	for i, payment := range p.Payments {
		setRow(f, sheetPayments, i+2, payment.Date.String(), payment.Description, string(payment.Type), payment.Amount.InexactFloat64())
	}
	return nil
}

func writeAdvancesSheet(f *excelize.File, p *project.Project) error {
	if _, err := f.NewSheet(sheetAdvances); err != nil {
		return err
	}
	setRow(f, sheetAdvances, 1, "Date", "Supplier", "Description", "Status", "Amount")
	for i, advance := range p.Advances {
		setRow(f, sheetAdvances, i+2, advance.Date.String(), advance.Supplier, advance.Description, string(advance.Status), advance.Amount.InexactFloat64())
	}
	return nil
}

func writeExpensesSheet(f *excelize.File, p *project.Project) error {
	if _, err := f.NewSheet(sheetExpenses); err != nil {
		return err
	}
	setRow(f, sheetExpenses, 1, "Date", "Category", "Description", "Amount")
	for i, expense := range p.Expenses {
		setRow(f, sheetExpenses, i+2, expense.Date.String(), expense.Category, expense.Description, expense.Amount.InexactFloat64())
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) {
	for i, value := range values {
		cell := fmt.Sprintf("%s%d", columnName(i), row)
		_ = f.SetCellValue(sheet, cell, value)
	}
}

func columnName(index int) string {
	name, _ := excelize.ColumnNumberToName(index + 1)
	return name
}
