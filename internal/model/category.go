package model

// CategoryType indicates whether a category collects income or expenses.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for credit transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for debit transactions.
	CategoryTypeExpense CategoryType = "expense"
)

// Category groups transactions under a user-visible name.
// Name acts as the natural key within a user scope.
type Category struct {
	UserID *string
	ID     string
	Name   string
	Type   CategoryType
}

// CategoryTypeFor maps a transaction type to the category type created for it.
func CategoryTypeFor(t TransactionType) CategoryType {
	if t == TransactionTypeCredit {
		return CategoryTypeIncome
	}
	return CategoryTypeExpense
}
