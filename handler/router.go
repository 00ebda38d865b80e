package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires every API route onto a gin engine.
func NewRouter(receipts *ReceiptHandler, transactions *TransactionHandler, analytics *AnalyticsHandler, maxMultipartMemory int64) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.MaxMultipartMemory = maxMultipartMemory

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Receipt OCR Expense Tracker",
		})
	})

	api := router.Group("/api/v1", RequireUser())
	{
		r := api.Group("/receipts")
		{
			r.POST("/preview", receipts.PreviewReceipt)
			r.POST("/process", receipts.ProcessReceipt)
			r.POST("/create-from-preview", receipts.CreateFromPreview)
		}

		t := api.Group("/transactions")
		{
			t.POST("", transactions.CreateTransaction)
			t.GET("", transactions.ListTransactions)
			t.GET("/categories", transactions.ListCategories)
			t.GET("/:id", transactions.GetTransaction)
			t.PUT("/:id", transactions.UpdateTransaction)
			t.DELETE("/:id", transactions.DeleteTransaction)
		}

		a := api.Group("/analytics")
		{
			a.GET("", analytics.GetReport)
			a.GET("/overview", analytics.GetOverview)
			a.GET("/categories", analytics.GetCategoryBreakdown)
			a.GET("/monthly", analytics.GetMonthlyTrends)
		}
	}

	return router
}
