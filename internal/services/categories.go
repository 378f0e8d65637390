package services

import "strings"

const (
	OtherExpenses = "Other Expenses"
	Uncategorized = "Uncategorized"
)

type keywordCategory struct {
	Name     string
	Keywords []string
}

// keywordTable is scanned in order; the first category with a keyword
// contained in the text wins.
var keywordTable = []keywordCategory{
	{"Food & Dining", []string{"pizza", "burger", "restaurant", "cafe", "coffee", "lunch", "dinner", "breakfast", "food", "meal", "snack", "drink", "beverage"}},
	{"Transportation", []string{"cab", "taxi", "uber", "lyft", "bus", "train", "metro", "subway", "transport", "ride", "fuel", "gas", "petrol", "parking"}},
	{"Shopping", []string{"grocer", "supermarket", "pencil", "shopping", "store", "mall", "retail", "purchase", "amazon"}},
	{"Health & Fitness", []string{"vicks", "medicine", "pharmacy", "doctor", "hospital", "medical", "health", "fitness", "gym", "vitamin"}},
	{"Bills & Utilities", []string{"bill", "utility", "electric", "water", "internet", "phone"}},
	{"Entertainment", []string{"movie", "cinema", "netflix", "game", "concert"}},
	{"Education", []string{"book", "school", "education", "course", "tuition"}},
	{"Personal Care", []string{"haircut", "salon", "beauty", "spa"}},
}

// DefaultCategories is the fixed vocabulary offered to the extraction prompt
// and used when an owner has not synced any categories.
func DefaultCategories() []string {
	names := make([]string, 0, len(keywordTable)+1)
	for _, k := range keywordTable {
		names = append(names, k.Name)
	}
	return append(names, OtherExpenses)
}

// IsDefaultCategory reports whether name is in the default vocabulary
func IsDefaultCategory(name string) bool {
	for _, n := range DefaultCategories() {
		if n == name {
			return true
		}
	}
	return false
}

// KeywordCategory guesses a default category from free text
func KeywordCategory(text string) (string, bool) {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return "", false
	}
	for _, k := range keywordTable {
		for _, kw := range k.Keywords {
			if strings.Contains(lower, kw) {
				return k.Name, true
			}
		}
	}
	return "", false
}
