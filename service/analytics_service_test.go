package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/expense-ocr/dto"
)

func TestAnalyticsReport(t *testing.T) {
	store := newTestStore(t)
	txs := NewTransactionService(store)
	ctx := context.Background()

	for _, req := range []dto.TransactionRequest{
		{Type: dto.TransactionTypeIncome, Category: "Salary", Amount: decimal.NewFromInt(1000), Date: "2024-01-31"},
		{Type: dto.TransactionTypeExpense, Category: "Shopping", Amount: decimal.NewFromInt(150), Date: "2024-01-10"},
		{Type: dto.TransactionTypeExpense, Category: "Food & Dining", Amount: decimal.NewFromInt(50), Date: "2024-01-12"},
		{Type: dto.TransactionTypeExpense, Category: "Shopping", Amount: decimal.NewFromInt(100), Date: "2024-02-03"},
	} {
		_, err := txs.Create(ctx, "user-1", req, dto.SourceManual)
		require.NoError(t, err)
	}

	report, err := NewAnalyticsService(store).Report(ctx, "user-1", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "1000.00", report.Overview.TotalIncome.StringFixed(2))
	assert.Equal(t, "300.00", report.Overview.TotalExpenses.StringFixed(2))
	assert.Equal(t, "700.00", report.Overview.NetIncome.StringFixed(2))
	assert.Equal(t, 4, report.Overview.TotalTransactions)

	require.Len(t, report.ExpenseCategories, 2)
	assert.Equal(t, "Shopping", report.ExpenseCategories[0].Category)
	assert.Equal(t, 2, report.ExpenseCategories[0].Count)
	assert.Equal(t, "83.33", report.ExpenseCategories[0].Percentage.StringFixed(2))
	assert.Equal(t, "16.67", report.ExpenseCategories[1].Percentage.StringFixed(2))

	require.Len(t, report.IncomeCategories, 1)
	assert.Equal(t, "100.00", report.IncomeCategories[0].Percentage.StringFixed(2))

	require.Len(t, report.Monthly, 2)
	assert.Equal(t, "2024-01", report.Monthly[0].Month)
	assert.Equal(t, "1000.00", report.Monthly[0].Income.StringFixed(2))
	assert.Equal(t, "200.00", report.Monthly[0].Expense.StringFixed(2))
	assert.Equal(t, 2, report.Monthly[0].ExpenseCount)
	assert.Equal(t, "2024-02", report.Monthly[1].Month)
	assert.Equal(t, 0, report.Monthly[1].IncomeCount)
}

func TestAnalyticsReportDateRangeAndEmpty(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, err := NewTransactionService(store).Create(ctx, "user-1", dto.TransactionRequest{
		Type: dto.TransactionTypeExpense, Category: "Travel", Amount: decimal.NewFromInt(20), Date: "2024-05-01",
	}, dto.SourceManual)
	require.NoError(t, err)

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	report, err := NewAnalyticsService(store).Report(ctx, "user-1", &from, nil)
	require.NoError(t, err)

	assert.True(t, report.Overview.NetIncome.IsZero())
	assert.Zero(t, report.Overview.TotalTransactions)
	assert.Empty(t, report.ExpenseCategories)
	assert.Empty(t, report.Monthly)
}
