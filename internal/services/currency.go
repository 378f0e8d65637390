package services

import (
	"strings"
	"unicode"
)

type currencyInfo struct {
	Code   string
	Symbol string
}

// currencies is the one table shared by the parser, the prompts and replies.
// Order matters for symbol detection: first symbol found in text wins.
var currencies = []currencyInfo{
	{Code: "USD", Symbol: "$"},
	{Code: "EUR", Symbol: "€"},
	{Code: "GBP", Symbol: "£"},
	{Code: "INR", Symbol: "₹"},
}

// CurrencySymbols returns the recognised symbols in table order
func CurrencySymbols() []string {
	out := make([]string, len(currencies))
	for i, c := range currencies {
		out[i] = c.Symbol
	}
	return out
}

// CurrencyForSymbol maps a symbol to its ISO code
func CurrencyForSymbol(symbol string) (string, bool) {
	for _, c := range currencies {
		if c.Symbol == symbol {
			return c.Code, true
		}
	}
	return "", false
}

// SymbolForCurrency returns the display symbol for an ISO code, or the code
// itself followed by a space when it has no symbol.
func SymbolForCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range currencies {
		if c.Code == code {
			return c.Symbol
		}
	}
	if code == "" {
		return ""
	}
	return code + " "
}

// DetectCurrency finds the first currency symbol in text, then a
// standalone ISO code from the table.
func DetectCurrency(text string) (string, bool) {
	for _, r := range text {
		if code, ok := CurrencyForSymbol(string(r)); ok {
			return code, true
		}
	}
	for _, word := range strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) }) {
		upper := strings.ToUpper(word)
		for _, c := range currencies {
			if upper == c.Code {
				return c.Code, true
			}
		}
	}
	return "", false
}

// NormalizeCurrency upper-cases a 3-letter code, falling back to def
func NormalizeCurrency(code, def string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return strings.ToUpper(def)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return strings.ToUpper(def)
		}
	}
	return code
}
