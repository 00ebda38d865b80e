package dto

import (
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MaxCategoryLength    = 50
	MaxDescriptionLength = 500
	MaxBulkTransactions  = 100
	MaxListLimit         = 1000
)

var maxTransactionAmount = decimal.NewFromInt(999999999)

// ReceiptUploadRequest is a single uploaded receipt.
type ReceiptUploadRequest struct {
	File *multipart.FileHeader `form:"receipt" binding:"required"`
}

// Validate checks the file type by extension or declared content type.
func (r *ReceiptUploadRequest) Validate() error {
	if r.File == nil {
		return &ValidationError{Details: []string{"No file uploaded"}}
	}
	if _, ok := DetectDocumentType(r.File.Header.Get("Content-Type"), r.File.Filename); !ok {
		return &ValidationError{Details: []string{"Only image files and PDFs are allowed"}}
	}
	return nil
}

// DetectDocumentType maps an upload's content type, or failing that its file
// extension, to a document type.
func DetectDocumentType(contentType, filename string) (DocumentType, bool) {
	contentType = strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return DocTypeImage, true
	case strings.Contains(contentType, "application/pdf"):
		return DocTypePDF, true
	}

	lower := strings.ToLower(filename)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff"} {
		if strings.HasSuffix(lower, ext) {
			return DocTypeImage, true
		}
	}
	if strings.HasSuffix(lower, ".pdf") {
		return DocTypePDF, true
	}
	return "", false
}

// TransactionRequest creates a transaction.
type TransactionRequest struct {
	Type        TransactionType `json:"type" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date" binding:"required"`
	Description string          `json:"description"`
}

// Validate checks every field and returns all problems at once.
func (r *TransactionRequest) Validate() error {
	var details []string
	details = append(details, validateType(r.Type)...)
	details = append(details, validateCategory(r.Category)...)
	details = append(details, validateAmount(r.Amount)...)
	_, dateErrs := parseRequestDate(r.Date)
	details = append(details, dateErrs...)
	details = append(details, validateDescription(r.Description)...)
	if len(details) > 0 {
		return &ValidationError{Details: details}
	}
	return nil
}

// ToTransaction converts a validated request.
func (r *TransactionRequest) ToTransaction(userID string, source TransactionSource) Transaction {
	date, _ := parseRequestDate(r.Date)
	return Transaction{
		UserID:      userID,
		Type:        r.Type,
		Category:    strings.TrimSpace(r.Category),
		Amount:      r.Amount.Round(2),
		Date:        date,
		Description: strings.TrimSpace(r.Description),
		Source:      source,
	}
}

// TransactionUpdateRequest changes only the fields that are present.
type TransactionUpdateRequest struct {
	Type        *TransactionType `json:"type"`
	Category    *string          `json:"category"`
	Amount      *decimal.Decimal `json:"amount"`
	Date        *string          `json:"date"`
	Description *string          `json:"description"`
}

func (r *TransactionUpdateRequest) Validate() error {
	var details []string
	if r.Type != nil {
		details = append(details, validateType(*r.Type)...)
	}
	if r.Category != nil {
		details = append(details, validateCategory(*r.Category)...)
	}
	if r.Amount != nil {
		details = append(details, validateAmount(*r.Amount)...)
	}
	if r.Date != nil {
		_, errs := parseRequestDate(*r.Date)
		details = append(details, errs...)
	}
	if r.Description != nil {
		details = append(details, validateDescription(*r.Description)...)
	}
	if len(details) > 0 {
		return &ValidationError{Details: details}
	}
	return nil
}

// Apply copies the present fields onto tx.
func (r *TransactionUpdateRequest) Apply(tx *Transaction) {
	if r.Type != nil {
		tx.Type = *r.Type
	}
	if r.Category != nil {
		tx.Category = strings.TrimSpace(*r.Category)
	}
	if r.Amount != nil {
		tx.Amount = r.Amount.Round(2)
	}
	if r.Date != nil {
		tx.Date, _ = parseRequestDate(*r.Date)
	}
	if r.Description != nil {
		tx.Description = strings.TrimSpace(*r.Description)
	}
}

// BulkTransactionRequest carries reviewed receipt candidates.
type BulkTransactionRequest struct {
	Transactions []TransactionRequest `json:"transactions"`
}

func (r *BulkTransactionRequest) Validate() error {
	switch {
	case len(r.Transactions) == 0:
		return &ValidationError{Details: []string{"Please provide an array of transactions"}}
	case len(r.Transactions) > MaxBulkTransactions:
		return &ValidationError{Details: []string{fmt.Sprintf("Cannot process more than %d transactions at once", MaxBulkTransactions)}}
	}
	return nil
}

// TransactionQuery holds listing query parameters.
type TransactionQuery struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	Type      string `form:"type"`
	Category  string `form:"category"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

// ToFilter validates the query and fills in defaults.
func (q *TransactionQuery) ToFilter() (TransactionFilter, error) {
	var details []string
	f := TransactionFilter{Page: 1, Limit: 10, SortBy: "date", SortOrder: "desc", Category: q.Category}

	if q.Page != 0 {
		if q.Page < 1 {
			details = append(details, "Page must be a positive integer")
		}
		f.Page = q.Page
	}
	if q.Limit != 0 {
		if q.Limit < 1 || q.Limit > MaxListLimit {
			details = append(details, fmt.Sprintf("Limit must be between 1 and %d", MaxListLimit))
		}
		f.Limit = q.Limit
	}
	switch q.Type {
	case "", "all":
	case string(TransactionTypeIncome), string(TransactionTypeExpense):
		f.Type = TransactionType(q.Type)
	default:
		details = append(details, `Type must be "income", "expense", or "all"`)
	}
	switch q.SortBy {
	case "":
	case "date", "amount", "category", "createdAt":
		f.SortBy = q.SortBy
	default:
		details = append(details, "SortBy must be one of: date, amount, category, createdAt")
	}
	switch q.SortOrder {
	case "":
	case "asc", "desc":
		f.SortOrder = q.SortOrder
	default:
		details = append(details, `SortOrder must be "asc" or "desc"`)
	}

	start, end, rangeErrs := ParseDateRange(q.StartDate, q.EndDate)
	details = append(details, rangeErrs...)
	f.StartDate, f.EndDate = start, end

	if len(details) > 0 {
		return f, &ValidationError{Details: details}
	}
	return f, nil
}

// ParseDateRange parses optional start/end dates.
func ParseDateRange(startDate, endDate string) (start, end *time.Time, details []string) {
	if startDate != "" {
		if t, err := parseDate(startDate); err == nil {
			start = &t
		} else {
			details = append(details, "Start date must be a valid date")
		}
	}
	if endDate != "" {
		if t, err := parseDate(endDate); err == nil {
			end = &t
		} else {
			details = append(details, "End date must be a valid date")
		}
	}
	if start != nil && end != nil && start.After(*end) {
		details = append(details, "Start date must be before end date")
	}
	return start, end, details
}

func validateType(t TransactionType) []string {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense:
		return nil
	case "":
		return []string{"Transaction type is required"}
	}
	return []string{`Transaction type must be either "income" or "expense"`}
}

func validateCategory(c string) []string {
	c = strings.TrimSpace(c)
	switch {
	case c == "":
		return []string{"Category must be a non-empty string"}
	case len(c) > MaxCategoryLength:
		return []string{fmt.Sprintf("Category must be less than %d characters", MaxCategoryLength)}
	}
	return nil
}

// validateAmount checks the amount as it will be stored, rounded to cents.
func validateAmount(a decimal.Decimal) []string {
	a = a.Round(2)
	switch {
	case !a.IsPositive():
		return []string{"Amount must be greater than zero"}
	case a.GreaterThan(maxTransactionAmount):
		return []string{"Amount is too large"}
	}
	return nil
}

func validateDescription(d string) []string {
	if len(d) > MaxDescriptionLength {
		return []string{fmt.Sprintf("Description must be less than %d characters", MaxDescriptionLength)}
	}
	return nil
}

func parseRequestDate(s string) (time.Time, []string) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, []string{"Date is required"}
	}
	t, err := parseDate(s)
	if err != nil {
		return time.Time{}, []string{"Date must be a valid date"}
	}
	if t.After(time.Now().AddDate(1, 0, 0)) {
		return time.Time{}, []string{"Date cannot be more than one year in the future"}
	}
	return t, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.DateOnly, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
