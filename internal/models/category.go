package models

// CategoryKind separates spending categories from income categories
type CategoryKind string

const (
	KindExpense CategoryKind = "expense"
	KindIncome  CategoryKind = "income"
)

// Category is one entry of an owner's synced category set
type Category struct {
	Name     string       `json:"name" db:"category_name" validate:"required,max=100"`
	Kind     CategoryKind `json:"kind" db:"category_type" validate:"required,oneof=expense income"`
	IsCustom bool         `json:"is_custom" db:"is_custom"`
}

// ExpenseNames returns the names of expense categories in their stored order
func ExpenseNames(categories []Category) []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		if c.Kind == KindExpense && c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return names
}
