package dto

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTransactionRequest() TransactionRequest {
	return TransactionRequest{
		Type:        TransactionTypeExpense,
		Category:    "Shopping",
		Amount:      decimal.RequireFromString("48.60"),
		Date:        "2024-03-14",
		Description: "Walmart Supercenter - purchase",
	}
}

func TestTransactionRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *TransactionRequest)
		wantErr string
	}{
		{name: "valid", mutate: func(r *TransactionRequest) {}},
		{name: "rfc3339 date", mutate: func(r *TransactionRequest) { r.Date = "2024-03-14T10:00:00Z" }},
		{name: "bad type", mutate: func(r *TransactionRequest) { r.Type = "transfer" }, wantErr: "income"},
		{name: "blank category", mutate: func(r *TransactionRequest) { r.Category = "  " }, wantErr: "Category"},
		{name: "long category", mutate: func(r *TransactionRequest) { r.Category = strings.Repeat("c", 51) }, wantErr: "Category"},
		{name: "zero amount", mutate: func(r *TransactionRequest) { r.Amount = decimal.Zero }, wantErr: "greater than zero"},
		{name: "amount below one cent", mutate: func(r *TransactionRequest) { r.Amount = decimal.RequireFromString("0.004") }, wantErr: "greater than zero"},
		{name: "amount rounding up to one cent", mutate: func(r *TransactionRequest) { r.Amount = decimal.RequireFromString("0.005") }},
		{name: "huge amount", mutate: func(r *TransactionRequest) { r.Amount = decimal.NewFromInt(1_000_000_000) }, wantErr: "too large"},
		{name: "missing date", mutate: func(r *TransactionRequest) { r.Date = "" }, wantErr: "Date is required"},
		{name: "garbage date", mutate: func(r *TransactionRequest) { r.Date = "yesterday" }, wantErr: "valid date"},
		{
			name:    "far future date",
			mutate:  func(r *TransactionRequest) { r.Date = time.Now().AddDate(2, 0, 0).Format(time.DateOnly) },
			wantErr: "future",
		},
		{name: "long description", mutate: func(r *TransactionRequest) { r.Description = strings.Repeat("d", 501) }, wantErr: "Description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validTransactionRequest()
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTransactionRequestToTransaction(t *testing.T) {
	req := validTransactionRequest()
	req.Category = " Shopping "
	req.Amount = decimal.RequireFromString("48.599")

	tx := req.ToTransaction("user-1", SourceReceipt)
	assert.Equal(t, "user-1", tx.UserID)
	assert.Equal(t, "Shopping", tx.Category)
	assert.Equal(t, "48.60", tx.Amount.StringFixed(2))
	assert.Equal(t, "2024-03-14", tx.Date.Format(time.DateOnly))
	assert.Equal(t, SourceReceipt, tx.Source)
}

func TestTransactionUpdateRequest(t *testing.T) {
	category := "Travel"
	amount := decimal.RequireFromString("9.99")
	req := TransactionUpdateRequest{Category: &category, Amount: &amount}
	require.NoError(t, req.Validate())

	tx := Transaction{Category: "Shopping", Description: "keep me", Amount: decimal.NewFromInt(1)}
	req.Apply(&tx)
	assert.Equal(t, "Travel", tx.Category)
	assert.Equal(t, "9.99", tx.Amount.StringFixed(2))
	assert.Equal(t, "keep me", tx.Description)

	bad := "bad"
	badType := TransactionType("gift")
	assert.ErrorIs(t, (&TransactionUpdateRequest{Date: &bad, Type: &badType}).Validate(), ErrValidation)
	assert.NoError(t, (&TransactionUpdateRequest{}).Validate())

	tiny := decimal.RequireFromString("0.001")
	assert.ErrorIs(t, (&TransactionUpdateRequest{Amount: &tiny}).Validate(), ErrValidation)
}

func TestBulkTransactionRequestValidate(t *testing.T) {
	assert.ErrorIs(t, (&BulkTransactionRequest{}).Validate(), ErrValidation)

	many := make([]TransactionRequest, MaxBulkTransactions+1)
	assert.ErrorIs(t, (&BulkTransactionRequest{Transactions: many}).Validate(), ErrValidation)

	assert.NoError(t, (&BulkTransactionRequest{Transactions: many[:1]}).Validate())
}

func TestTransactionQueryToFilter(t *testing.T) {
	f, err := (&TransactionQuery{}).ToFilter()
	require.NoError(t, err)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 10, f.Limit)
	assert.Equal(t, "date", f.SortBy)
	assert.Equal(t, "desc", f.SortOrder)
	assert.Empty(t, f.Type)

	f, err = (&TransactionQuery{
		Page: 2, Limit: 50, Type: "income", SortBy: "amount", SortOrder: "asc",
		StartDate: "2024-01-01", EndDate: "2024-12-31",
	}).ToFilter()
	require.NoError(t, err)
	assert.Equal(t, TransactionTypeIncome, f.Type)
	assert.Equal(t, 50, f.Limit)
	require.NotNil(t, f.StartDate)
	assert.Equal(t, 2024, f.StartDate.Year())

	_, err = (&TransactionQuery{Limit: 1001, Type: "gifts", SortBy: "merchant", SortOrder: "up"}).ToFilter()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Details, 4)

	_, err = (&TransactionQuery{StartDate: "2024-05-01", EndDate: "2024-01-01"}).ToFilter()
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDetectDocumentType(t *testing.T) {
	tests := []struct {
		contentType string
		filename    string
		want        DocumentType
		ok          bool
	}{
		{"image/jpeg", "r.jpg", DocTypeImage, true},
		{"application/pdf", "r.pdf", DocTypePDF, true},
		{"application/octet-stream", "scan.PNG", DocTypeImage, true},
		{"", "statement.pdf", DocTypePDF, true},
		{"text/plain", "notes.txt", "", false},
	}
	for _, tt := range tests {
		got, ok := DetectDocumentType(tt.contentType, tt.filename)
		assert.Equal(t, tt.ok, ok, tt.filename)
		assert.Equal(t, tt.want, got, tt.filename)
	}
}
