package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/spenly/backend/internal/models"
	"github.com/spenly/backend/internal/oracle"
)

// CategoryPicker is the oracle side of category resolution
type CategoryPicker interface {
	PickCategory(ctx context.Context, vendor, note string, names []string) (string, error)
}

// CategoryResolver maps a parsed transaction onto the owner's category names
type CategoryResolver struct {
	picker  CategoryPicker
	timeout time.Duration
}

func NewCategoryResolver(picker CategoryPicker, timeout time.Duration) *CategoryResolver {
	return &CategoryResolver{picker: picker, timeout: timeout}
}

// Resolve returns a verbatim expense category name from categories, or
// "Uncategorized". With no synced categories the default vocabulary is used.
func (r *CategoryResolver) Resolve(ctx context.Context, vendor, note, suggested string, categories []models.Category) string {
	text := vendor + " " + note

	if len(categories) == 0 {
		if IsDefaultCategory(suggested) {
			return suggested
		}
		if name, ok := KeywordCategory(text); ok {
			return name
		}
		return Uncategorized
	}

	names := models.ExpenseNames(categories)
	if len(names) == 0 {
		return Uncategorized
	}

	var primary func(context.Context) (string, error)
	if r.picker != nil {
		primary = func(ctx context.Context) (string, error) {
			pick, err := r.picker.PickCategory(ctx, vendor, note, names)
			if err != nil {
				return "", err
			}
			if !contains(names, pick) {
				return "", fmt.Errorf("%w: category %q not in set", ErrUnexpectedAnswer, pick)
			}
			return pick, nil
		}
	}
	if pick := withFallback(ctx, "categorize", r.timeout, primary, func() string { return "" }); pick != "" {
		return pick
	}

	if contains(names, suggested) {
		return suggested
	}
	if name, ok := matchUserCategory(text, names); ok {
		return name
	}
	for _, n := range names {
		if strings.EqualFold(n, OtherExpenses) {
			return n
		}
	}
	return names[0]
}

// matchUserCategory looks for a user category named in the text, then for a
// user category that shares the keyword table's guess for the text.
func matchUserCategory(text string, names []string) (string, bool) {
	words := wordTokens(text)
	for _, n := range names {
		if containsPhrase(words, wordTokens(n)) {
			return n, true
		}
	}

	guess, ok := KeywordCategory(text)
	if !ok {
		return "", false
	}
	for _, n := range names {
		if strings.EqualFold(n, guess) {
			return n, true
		}
	}
	for _, n := range names {
		if g, ok := KeywordCategory(n); ok && g == guess {
			return n, true
		}
	}
	guessWords := strings.Fields(strings.ToLower(guess))
	for _, n := range names {
		for _, w := range strings.Fields(strings.ToLower(n)) {
			if len(w) >= 4 && contains(guessWords, w) {
				return n, true
			}
		}
	}
	return "", false
}

func wordTokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsPhrase reports whether phrase occurs as consecutive whole words
func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 {
		return false
	}
	for i := 0; i+len(phrase) <= len(words); i++ {
		match := true
		for j, p := range phrase {
			if words[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// PickCategory asks the oracle to choose one name from names
func (c *AIClient) PickCategory(ctx context.Context, vendor, note string, names []string) (string, error) {
	prompt := fmt.Sprintf(`Pick the best expense category for this transaction.
Vendor: %q
Note: %q
Categories:
- %s

Answer with the category name exactly as written above and nothing else.`, vendor, note, strings.Join(names, "\n- "))

	answer, err := c.completer.Complete(ctx, oracle.Request{
		Prompt:      prompt,
		Temperature: 0.3,
		MaxTokens:   20,
	})
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(answer), `"'.`), nil
}
