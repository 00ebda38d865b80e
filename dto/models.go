package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type DocumentType string

const (
	DocTypeImage DocumentType = "image"
	DocTypePDF   DocumentType = "pdf"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// TransactionSource records how a stored transaction was created.
type TransactionSource string

const (
	SourceManual  TransactionSource = "manual"
	SourceReceipt TransactionSource = "receipt"
	SourceImport  TransactionSource = "import"
)

// Recognition is the output of OCR or PDF text extraction.
type Recognition struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// ExtractedTransaction is an unreviewed transaction candidate built from a
// document.
type ExtractedTransaction struct {
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Confidence  int             `json:"confidence"`
}

// DocumentResult is everything extracted from one uploaded document.
type DocumentResult struct {
	ExtractedText    string                 `json:"extracted_text"`
	Confidence       float64                `json:"confidence"`
	Transactions     []ExtractedTransaction `json:"transactions"`
	TransactionCount int                    `json:"transaction_count"`
}

// Transaction is a stored, user-owned transaction.
type Transaction struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Type        TransactionType   `json:"type"`
	Category    string            `json:"category"`
	Amount      decimal.Decimal   `json:"amount"`
	Date        time.Time         `json:"date"`
	Description string            `json:"description"`
	Source      TransactionSource `json:"source"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	Type      TransactionType
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Pagination   Pagination    `json:"pagination"`
}

type AnalyticsOverview struct {
	TotalIncome       decimal.Decimal `json:"total_income"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	NetIncome         decimal.Decimal `json:"net_income"`
	TotalTransactions int             `json:"total_transactions"`
}

type CategoryTotal struct {
	Category   string          `json:"category"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

type MonthlyTotal struct {
	Month        string          `json:"month"` // "YYYY-MM"
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	IncomeCount  int             `json:"income_count"`
	ExpenseCount int             `json:"expense_count"`
}

type AnalyticsReport struct {
	Overview          AnalyticsOverview `json:"overview"`
	ExpenseCategories []CategoryTotal   `json:"expense_categories"`
	IncomeCategories  []CategoryTotal   `json:"income_categories"`
	Monthly           []MonthlyTotal    `json:"monthly"`
}
