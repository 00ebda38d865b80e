package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aashish23092/expense-ocr/dto"
)

var hundred = decimal.NewFromInt(100)

type AnalyticsService struct {
	store TransactionStore
}

func NewAnalyticsService(store TransactionStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// Report summarizes the user's transactions between start and end, either of
// which may be nil.
func (s *AnalyticsService) Report(ctx context.Context, userID string, start, end *time.Time) (*dto.AnalyticsReport, error) {
	rows, err := s.store.Totals(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load totals: %w", err)
	}

	var (
		overview = dto.AnalyticsOverview{TotalIncome: decimal.Zero, TotalExpenses: decimal.Zero}
		expenses = map[string]*dto.CategoryTotal{}
		incomes  = map[string]*dto.CategoryTotal{}
		months   = map[string]*dto.MonthlyTotal{}
	)

	for _, r := range rows {
		overview.TotalTransactions += r.Count

		m, ok := months[r.Month]
		if !ok {
			m = &dto.MonthlyTotal{Month: r.Month, Income: decimal.Zero, Expense: decimal.Zero}
			months[r.Month] = m
		}

		byCategory := expenses
		if r.Type == dto.TransactionTypeIncome {
			byCategory = incomes
			overview.TotalIncome = overview.TotalIncome.Add(r.Total)
			m.Income = m.Income.Add(r.Total)
			m.IncomeCount += r.Count
		} else {
			overview.TotalExpenses = overview.TotalExpenses.Add(r.Total)
			m.Expense = m.Expense.Add(r.Total)
			m.ExpenseCount += r.Count
		}

		c, ok := byCategory[r.Category]
		if !ok {
			c = &dto.CategoryTotal{Category: r.Category, Total: decimal.Zero}
			byCategory[r.Category] = c
		}
		c.Total = c.Total.Add(r.Total)
		c.Count += r.Count
	}
	overview.NetIncome = overview.TotalIncome.Sub(overview.TotalExpenses)

	report := &dto.AnalyticsReport{
		Overview:          overview,
		ExpenseCategories: categoryShares(expenses, overview.TotalExpenses),
		IncomeCategories:  categoryShares(incomes, overview.TotalIncome),
		Monthly:           make([]dto.MonthlyTotal, 0, len(months)),
	}
	for _, m := range months {
		report.Monthly = append(report.Monthly, *m)
	}
	sort.Slice(report.Monthly, func(i, j int) bool { return report.Monthly[i].Month < report.Monthly[j].Month })

	return report, nil
}

// categoryShares orders categories by total, largest first, with each
// category's percentage of typeTotal.
func categoryShares(byCategory map[string]*dto.CategoryTotal, typeTotal decimal.Decimal) []dto.CategoryTotal {
	out := make([]dto.CategoryTotal, 0, len(byCategory))
	for _, c := range byCategory {
		c.Percentage = decimal.Zero
		if typeTotal.IsPositive() {
			c.Percentage = c.Total.Div(typeTotal).Mul(hundred).Round(2)
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out
}
