package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// Formato por localidad: separador de miles y espacio entre símbolo y cifra.
type localeStyle struct {
	group string
	gap   string
}

var (
	supportedLocales = []language.Tag{
		language.MustParse("es-CL"),
		language.MustParse("es-CO"),
		language.AmericanEnglish,
	}
	localeStyles = []localeStyle{
		{group: ".", gap: ""},
		{group: ".", gap: "\u00a0"},
		{group: ",", gap: ""},
	}
	localeMatcher = language.NewMatcher(supportedLocales)
)

var currencySymbols = map[string]string{
	"CLP": "$",
	"COP": "$",
	"USD": "$",
	"EUR": "€",
}

// CurrencyFormatter renders whole currency amounts for one fixed locale and
// currency. Output depends only on the amount, so one instance is shared by
// every calculator in the process.
type CurrencyFormatter struct {
	locale language.Tag
	unit   currency.Unit
	symbol string
	style  localeStyle
}

// NewCurrencyFormatter resolves locale against the supported locales. An empty
// code picks the currency of the locale's region.
func NewCurrencyFormatter(locale, code string) (*CurrencyFormatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return nil, fmt.Errorf("unsupported locale %q", locale)
	}

	var unit currency.Unit
	if code == "" {
		var c language.Confidence
		unit, c = currency.FromTag(tag)
		if c == language.No {
			return nil, fmt.Errorf("no currency for locale %q", locale)
		}
	} else {
		unit, err = currency.ParseISO(code)
		if err != nil {
			return nil, fmt.Errorf("parse currency %q: %w", code, err)
		}
	}

	symbol, ok := currencySymbols[unit.String()]
	if !ok {
		symbol = unit.String() + " "
	}
	return &CurrencyFormatter{
		locale: supportedLocales[idx],
		unit:   unit,
		symbol: symbol,
		style:  localeStyles[idx],
	}, nil
}

func (f *CurrencyFormatter) Locale() language.Tag   { return f.locale }
func (f *CurrencyFormatter) Currency() currency.Unit { return f.unit }

// Format renders amount with grouping and symbol and no decimals:
// 400000 under es-CL/CLP is "$400.000".
func (f *CurrencyFormatter) Format(amount int64) string {
	digits := humanize.Comma(amount)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if f.style.group != "," {
		digits = strings.ReplaceAll(digits, ",", f.style.group)
	}
	return sign + f.symbol + f.style.gap + digits
}
