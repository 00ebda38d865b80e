package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/expense-ocr/dto"
	"github.com/Aashish23092/expense-ocr/service"
)

type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GetReport handles GET /analytics
func (h *AnalyticsHandler) GetReport(c *gin.Context) {
	report, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

// GetOverview handles GET /analytics/overview
func (h *AnalyticsHandler) GetOverview(c *gin.Context) {
	report, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": report.Overview})
}

// GetCategoryBreakdown handles GET /analytics/categories
func (h *AnalyticsHandler) GetCategoryBreakdown(c *gin.Context) {
	report, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"expenses": report.ExpenseCategories,
		"income":   report.IncomeCategories,
	}})
}

// GetMonthlyTrends handles GET /analytics/monthly
func (h *AnalyticsHandler) GetMonthlyTrends(c *gin.Context) {
	report, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": report.Monthly})
}

func (h *AnalyticsHandler) report(c *gin.Context) (*dto.AnalyticsReport, bool) {
	start, end, details := dto.ParseDateRange(c.Query("startDate"), c.Query("endDate"))
	if len(details) > 0 {
		sendError(c, "Invalid date range", &dto.ValidationError{Details: details})
		return nil, false
	}

	report, err := h.analytics.Report(c.Request.Context(), currentUser(c), start, end)
	if err != nil {
		sendError(c, "Failed to build analytics", err)
		return nil, false
	}
	return report, true
}
