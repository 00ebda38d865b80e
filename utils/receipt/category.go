package receipt

import "strings"

// Expense categories offered to users and produced by classification.
const (
	CategoryFoodDining     = "Food & Dining"
	CategoryTransportation = "Transportation"
	CategoryShopping       = "Shopping"
	CategoryEntertainment  = "Entertainment"
	CategoryBillsUtilities = "Bills & Utilities"
	CategoryHealthcare     = "Healthcare"
	CategoryEducation      = "Education"
	CategoryTravel         = "Travel"
	CategoryPersonalCare   = "Personal Care"
	CategoryHomeGarden     = "Home & Garden"
	CategoryInsurance      = "Insurance"
	CategoryTaxes          = "Taxes"
	CategoryMiscellaneous  = "Miscellaneous"
)

// Categories returns the closed category taxonomy in display order.
func Categories() []string {
	return []string{
		CategoryFoodDining, CategoryTransportation, CategoryShopping,
		CategoryEntertainment, CategoryBillsUtilities, CategoryHealthcare,
		CategoryEducation, CategoryTravel, CategoryPersonalCare,
		CategoryHomeGarden, CategoryInsurance, CategoryTaxes,
		CategoryMiscellaneous,
	}
}

// IsCategory reports whether name belongs to the taxonomy.
func IsCategory(name string) bool {
	for _, c := range Categories() {
		if c == name {
			return true
		}
	}
	return false
}

// CategoryRule maps a category to the lowercase substrings that select it.
type CategoryRule struct {
	Category string
	Keywords []string
}

// CategoryTable is an ordered rule list. Earlier rules win.
type CategoryTable []CategoryRule

// DefaultCategoryTable returns the built-in keyword table. Shopping is
// checked before Food & Dining, so "coffee shop" is Shopping.
func DefaultCategoryTable() CategoryTable {
	return CategoryTable{
		{CategoryShopping, []string{"shop", "store", "mall", "market", "purchase", "buy", "retail", "walmart", "target", "amazon"}},
		{CategoryFoodDining, []string{"restaurant", "food", "cafe", "dinner", "lunch", "breakfast", "snack", "pizza", "burger", "coffee"}},
		{CategoryEntertainment, []string{"movie", "cinema", "concert", "entertainment", "show", "ticket", "netflix", "spotify"}},
		{CategoryHealthcare, []string{"hospital", "doctor", "medical", "pharmacy", "health", "clinic", "cvs", "walgreens"}},
		{CategoryBillsUtilities, []string{"bill", "utility", "electricity", "gas", "water", "internet", "phone", "cable"}},
		{CategoryTransportation, []string{"transport", "taxi", "bus", "train", "fuel", "gas station", "uber", "lyft", "exxon", "shell"}},
		{CategoryPersonalCare, []string{"salon", "barber", "spa", "beauty", "cosmetics", "skincare"}},
		{CategoryTravel, []string{"hotel", "flight", "airline", "booking", "airbnb"}},
		{CategoryHomeGarden, []string{"home depot", "lowes", "garden", "hardware"}},
		{CategoryInsurance, []string{"insurance", "policy", "premium"}},
		{CategoryEducation, []string{"school", "university", "education", "tuition"}},
		{CategoryTaxes, []string{"tax", "irs", "revenue"}},
	}
}

// Classifier assigns a category by keyword lookup.
type Classifier struct {
	table    CategoryTable
	fallback string
}

// NewClassifier copies table so later changes to it have no effect.
func NewClassifier(table CategoryTable) *Classifier {
	rules := make(CategoryTable, len(table))
	for i, r := range table {
		rules[i] = CategoryRule{Category: r.Category, Keywords: append([]string(nil), r.Keywords...)}
	}
	return &Classifier{table: rules, fallback: CategoryMiscellaneous}
}

// Classify returns the first category, in table order, with a keyword
// contained in text, or Miscellaneous.
func (c *Classifier) Classify(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range c.table {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Category
			}
		}
	}
	return c.fallback
}
