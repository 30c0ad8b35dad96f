// Package moneyfmt renders monetary amounts for display: exactly two
// fraction digits, thousands grouping per the target locale, the currency's
// conventional symbol as prefix, and an optional parallel reference-currency
// figure in parentheses for non-TRY projects.
package moneyfmt

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"agency-budget-go/internal/domain/project"
)

func Symbol(currency project.Currency) string {
	switch currency {
	case project.CurrencyEUR:
		return "€"
	case project.CurrencyUSD:
		return "$"
	case project.CurrencyGBP:
		return "£"
	case project.CurrencyTRY:
		return "₺"
	}
	return string(currency)
}

// Locale parses a BCP 47 tag, falling back to English on garbage input so
// formatting never fails.
func Locale(value string) language.Tag {
	tag, err := language.Parse(value)
	if err != nil {
		return language.English
	}
	return tag
}

func Format(amount decimal.Decimal, currency project.Currency, locale language.Tag) string {
	printer := message.NewPrinter(locale)
	value := amount.Round(2).InexactFloat64()
	return Symbol(currency) + printer.Sprintf("%v", number.Decimal(value,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// FormatWithReference appends the converted TRY figure in parentheses when
// the amount is not already in the reference currency.
func FormatWithReference(amount decimal.Decimal, currency project.Currency, exchangeRate decimal.Decimal, locale language.Tag) string {
	formatted := Format(amount, currency, locale)
	if currency == project.ReferenceCurrency {
		return formatted
	}
	converted := amount.Mul(exchangeRate)
	return formatted + " (" + Format(converted, project.ReferenceCurrency, locale) + ")"
}
