package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/expense-ocr/dto"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "receipts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, s *SQLiteStorage, userID string, typ dto.TransactionType, category, amount string, date time.Time) dto.Transaction {
	t.Helper()
	tx, err := s.SaveTransaction(context.Background(), dto.Transaction{
		UserID:      userID,
		Type:        typ,
		Category:    category,
		Amount:      decimal.RequireFromString(amount),
		Date:        date,
		Description: category + " " + amount,
		Source:      dto.SourceReceipt,
	})
	require.NoError(t, err)
	return tx
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.Migrate(context.Background()))

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, SchemaVersion, version)
}

func TestSaveAndGetTransaction(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	saved := seed(t, s, "user-1", dto.TransactionTypeExpense, "Shopping", "48.60", day(2024, 3, 14))
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := s.GetTransaction(ctx, "user-1", saved.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("48.60").Equal(got.Amount))
	assert.Equal(t, "Shopping", got.Category)
	assert.Equal(t, dto.SourceReceipt, got.Source)
	assert.True(t, day(2024, 3, 14).Equal(got.Date))

	_, err = s.GetTransaction(ctx, "user-2", saved.ID)
	assert.ErrorIs(t, err, dto.ErrTransactionNotFound)
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	saved := seed(t, s, "user-1", dto.TransactionTypeExpense, "Shopping", "10.00", day(2024, 1, 2))

	saved.Category = "Food & Dining"
	saved.Amount = decimal.RequireFromString("12.34")
	_, err := s.UpdateTransaction(ctx, saved)
	require.NoError(t, err)

	got, err := s.GetTransaction(ctx, "user-1", saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Food & Dining", got.Category)
	assert.Equal(t, "12.34", got.Amount.StringFixed(2))

	other := saved
	other.UserID = "user-2"
	_, err = s.UpdateTransaction(ctx, other)
	assert.ErrorIs(t, err, dto.ErrTransactionNotFound)

	require.NoError(t, s.DeleteTransaction(ctx, "user-1", saved.ID))
	assert.ErrorIs(t, s.DeleteTransaction(ctx, "user-1", saved.ID), dto.ErrTransactionNotFound)
}

func TestListTransactions(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	seed(t, s, "user-1", dto.TransactionTypeExpense, "Shopping", "30.00", day(2024, 1, 5))
	seed(t, s, "user-1", dto.TransactionTypeExpense, "Food & Dining", "5.00", day(2024, 2, 5))
	seed(t, s, "user-1", dto.TransactionTypeIncome, "Salary", "1000.00", day(2024, 2, 1))
	seed(t, s, "user-2", dto.TransactionTypeExpense, "Shopping", "99.00", day(2024, 2, 5))

	tests := []struct {
		name       string
		filter     dto.TransactionFilter
		wantTotal  int
		wantFirst  string
		wantPages  int
		wantLength int
	}{
		{
			name:       "defaults sort newest first",
			filter:     dto.TransactionFilter{Page: 1, Limit: 10, SortBy: "date", SortOrder: "desc"},
			wantTotal:  3,
			wantFirst:  "5.00",
			wantPages:  1,
			wantLength: 3,
		},
		{
			name:       "type filter",
			filter:     dto.TransactionFilter{Type: dto.TransactionTypeIncome, Page: 1, Limit: 10},
			wantTotal:  1,
			wantFirst:  "1000.00",
			wantPages:  1,
			wantLength: 1,
		},
		{
			name:       "category filter is a case-insensitive substring",
			filter:     dto.TransactionFilter{Category: "shop", Page: 1, Limit: 10},
			wantTotal:  1,
			wantFirst:  "30.00",
			wantPages:  1,
			wantLength: 1,
		},
		{
			name:       "amount ascending with paging",
			filter:     dto.TransactionFilter{Page: 1, Limit: 2, SortBy: "amount", SortOrder: "asc"},
			wantTotal:  3,
			wantFirst:  "5.00",
			wantPages:  2,
			wantLength: 2,
		},
		{
			name: "date range",
			filter: dto.TransactionFilter{
				StartDate: ptr(day(2024, 2, 1)),
				EndDate:   ptr(day(2024, 2, 28)),
				Page:      1,
				Limit:     10,
				SortBy:    "amount",
				SortOrder: "desc",
			},
			wantTotal:  2,
			wantFirst:  "1000.00",
			wantPages:  1,
			wantLength: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.ListTransactions(ctx, "user-1", tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, page.Pagination.Total)
			assert.Equal(t, tt.wantPages, page.Pagination.Pages)
			require.Len(t, page.Transactions, tt.wantLength)
			assert.Equal(t, tt.wantFirst, page.Transactions[0].Amount.StringFixed(2))
		})
	}
}

func TestListTransactionsEmpty(t *testing.T) {
	s := newTestStorage(t)
	page, err := s.ListTransactions(context.Background(), "nobody", dto.TransactionFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, page.Transactions)
	assert.Empty(t, page.Transactions)
	assert.Equal(t, 0, page.Pagination.Pages)
}

func TestTotals(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	seed(t, s, "user-1", dto.TransactionTypeExpense, "Shopping", "30.00", day(2024, 1, 5))
	seed(t, s, "user-1", dto.TransactionTypeExpense, "Shopping", "10.10", day(2024, 1, 20))
	seed(t, s, "user-1", dto.TransactionTypeIncome, "Salary", "1000.00", day(2024, 2, 1))

	rows, err := s.Totals(ctx, "user-1", nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2024-01", rows[0].Month)
	assert.Equal(t, dto.TransactionTypeExpense, rows[0].Type)
	assert.Equal(t, "40.10", rows[0].Total.StringFixed(2))
	assert.Equal(t, 2, rows[0].Count)

	assert.Equal(t, "2024-02", rows[1].Month)
	assert.Equal(t, "Salary", rows[1].Category)

	from := day(2024, 2, 1)
	rows, err = s.Totals(ctx, "user-1", &from, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func ptr[T any](v T) *T { return &v }
