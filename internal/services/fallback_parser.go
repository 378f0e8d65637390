package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/spenly/backend/internal/models"
)

const genericVendor = "Expense"

var (
	relativeDatePattern = regexp.MustCompile(`(?i)\b(today|yesterday|tomorrow)\b`)
	explicitDatePattern = regexp.MustCompile(`\b(\d{1,2})[/\-](\d{1,2})(?:[/\-](\d{2,4}))?\b`)
	currencyCodePattern = regexp.MustCompile(`(?i)\b(usd|eur|gbp|inr)\b`)
	amountPattern       = regexp.MustCompile(`([$€£₹])?\s*(\d+(?:[.,]\d+)*)`)
	forPattern          = regexp.MustCompile(`(?i)^(.*?)\s*\bfor\b\s+(.+)$`)
	symbolPattern       = regexp.MustCompile(`[$€£₹]`)

	relativeDays = map[string]int{"today": 0, "yesterday": -1, "tomorrow": 1}
)

// ParseFallback extracts a transaction from text with regular expressions
// and the keyword table. It never fails; an amount of zero means nothing
// was found.
func ParseFallback(text, defaultCurrency string, today time.Time) models.ParsedTransaction {
	result := models.ParsedTransaction{
		Currency: NormalizeCurrency(defaultCurrency, "USD"),
		Date:     truncateDay(today),
		Source:   models.SourceText,
	}
	rest := strings.TrimSpace(text)

	if code, ok := DetectCurrency(rest); ok {
		result.Currency = code
	}

	if m := relativeDatePattern.FindStringSubmatchIndex(rest); m != nil {
		word := strings.ToLower(rest[m[2]:m[3]])
		result.Date = result.Date.AddDate(0, 0, relativeDays[word])
		rest = rest[:m[0]] + " " + rest[m[1]:]
	} else if m := explicitDatePattern.FindStringSubmatchIndex(rest); m != nil {
		if d, ok := explicitDate(rest, m, today); ok {
			result.Date = d
			rest = rest[:m[0]] + " " + rest[m[1]:]
		}
	}

	rest = currencyCodePattern.ReplaceAllString(rest, " ")

	if m := amountPattern.FindStringSubmatchIndex(rest); m != nil {
		if amount, ok := parseAmount(rest[m[4]:m[5]]); ok {
			result.Amount = amount
		}
		rest = rest[:m[0]] + " " + rest[m[1]:]
	}
	rest = symbolPattern.ReplaceAllString(rest, " ")

	result.Vendor, result.Note = splitVendorNote(tidy(rest))

	if category, ok := KeywordCategory(result.Vendor + " " + result.Note); ok {
		result.Category = category
	} else {
		result.Category = OtherExpenses
	}
	return result
}

// parseAmount treats the last separator as the decimal point when one or two
// digits follow it; every other separator is grouping.
func parseAmount(raw string) (decimal.Decimal, bool) {
	s := raw
	if last := strings.LastIndexAny(raw, ".,"); last >= 0 {
		frac := raw[last+1:]
		whole := strings.NewReplacer(".", "", ",", "").Replace(raw[:last])
		if len(frac) >= 1 && len(frac) <= 2 {
			s = whole + "." + frac
		} else {
			s = whole + frac
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// explicitDate reads month/day[/year] from the submatch indexes
func explicitDate(text string, m []int, today time.Time) (time.Time, bool) {
	month, _ := strconv.Atoi(text[m[2]:m[3]])
	day, _ := strconv.Atoi(text[m[4]:m[5]])
	year := today.Year()
	if m[6] >= 0 {
		year, _ = strconv.Atoi(text[m[6]:m[7]])
		if year < 100 {
			year += 2000
		}
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, today.Location())
	if d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func splitVendorNote(rest string) (string, string) {
	if rest == "" {
		return genericVendor, genericVendor
	}

	if m := forPattern.FindStringSubmatch(rest); m != nil {
		vendor := strings.TrimSpace(m[1])
		note := strings.TrimSpace(m[2])
		if vendor == "" {
			vendor = capitalize(note)
		}
		return vendor, note
	}

	words := strings.Fields(rest)
	if len(words) == 1 {
		return words[0], words[0]
	}
	return words[0], strings.Join(words[1:], " ")
}

// tidy collapses whitespace and trims dangling punctuation
func tidy(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
