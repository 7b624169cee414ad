// Package render substitutes {{placeholder}} tokens in message templates
// with locale-formatted metric values. Rendering is pure: same template and
// values always produce the same output, and unrecognized placeholders are
// left verbatim so partially-configured templates still render.
package render

import (
	"regexp"
	"strings"

	"github.com/zapflow/zapflow/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var placeholderRe = regexp.MustCompile(`\{\{([a-zA-Z0-9_]+)\}\}`)

// valueKind selects the formatting applied to a raw value.
type valueKind int

const (
	kindText valueKind = iota
	kindCount
	kindMoney
	kindPercent
	kindRatio
)

// Value is a raw value tagged with its formatting kind.
type Value struct {
	kind valueKind
	num  float64
	str  string
}

// Text is a pass-through string value.
func Text(s string) Value { return Value{kind: kindText, str: s} }

// Count formats with the locale's thousands separator (12345 -> "12.345" in pt-BR).
func Count(n int64) Value { return Value{kind: kindCount, num: float64(n)} }

// Money formats with the currency symbol and two locale decimals
// (12.5 -> "R$ 12,50" for BRL in pt-BR).
func Money(amount float64) Value { return Value{kind: kindMoney, num: amount} }

// Percent formats with two decimals and a trailing "%" (3.2 -> "3,20%").
func Percent(v float64) Value { return Value{kind: kindPercent, num: v} }

// Ratio formats with two decimals and a trailing "x" (2.5 -> "2,50x").
func Ratio(v float64) Value { return Value{kind: kindRatio, num: v} }

// Values maps placeholder names (without braces) to their values.
type Values map[string]Value

// Renderer renders templates for one locale and currency. The zero value is
// not usable; construct with NewRenderer.
type Renderer struct {
	printer *message.Printer
	symbol  string
}

// currencySymbols covers the currencies the product is sold in.
var currencySymbols = map[string]string{
	"BRL": "R$",
	"USD": "$",
	"EUR": "€",
}

// NewRenderer creates a renderer for the given BCP-47 locale and ISO-4217
// currency code. Unknown locales fall back to pt-BR; unknown currencies use
// the code itself as the symbol.
func NewRenderer(locale, currency string) *Renderer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.BrazilianPortuguese
	}

	symbol, ok := currencySymbols[strings.ToUpper(currency)]
	if !ok {
		symbol = strings.ToUpper(currency)
	}

	return &Renderer{
		printer: message.NewPrinter(tag),
		symbol:  symbol,
	}
}

// Render substitutes every known {{name}} token with its formatted value.
// Tokens with no entry in values pass through unchanged.
func (r *Renderer) Render(template string, values Values) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(token string) string {
		name := token[2 : len(token)-2]
		v, ok := values[name]
		if !ok {
			return token
		}
		return r.format(v)
	})
}

func (r *Renderer) format(v Value) string {
	switch v.kind {
	case kindCount:
		return r.printer.Sprintf("%d", int64(v.num))
	case kindMoney:
		return r.symbol + " " + r.printer.Sprintf("%.2f", v.num)
	case kindPercent:
		return r.printer.Sprintf("%.2f", v.num) + "%"
	case kindRatio:
		return r.printer.Sprintf("%.2f", v.num) + "x"
	default:
		return v.str
	}
}

// ReportValues maps a client metrics snapshot to the standard report
// placeholder set.
func ReportValues(m models.ClientMetrics) Values {
	return Values{
		"leads":       Count(m.Leads),
		"cpl":         Money(m.CPL),
		"spend":       Money(m.AdSpend),
		"conversions": Count(m.Conversions),
		"roas":        Ratio(m.ROAS),
	}
}
