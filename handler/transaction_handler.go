package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/expense-ocr/dto"
	"github.com/Aashish23092/expense-ocr/service"
	"github.com/Aashish23092/expense-ocr/utils/receipt"
)

type TransactionHandler struct {
	transactions *service.TransactionService
}

func NewTransactionHandler(transactions *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// CreateTransaction handles POST /transactions
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBadRequest(c, "Invalid request body", err)
		return
	}

	tx, err := h.transactions.Create(c.Request.Context(), currentUser(c), req, dto.SourceManual)
	if err != nil {
		sendError(c, "Failed to create transaction", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": tx})
}

// ListTransactions handles GET /transactions
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var query dto.TransactionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		sendBadRequest(c, "Invalid query parameters", err)
		return
	}

	page, err := h.transactions.List(c.Request.Context(), currentUser(c), query)
	if err != nil {
		sendError(c, "Failed to list transactions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": page})
}

// GetTransaction handles GET /transactions/:id
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	tx, err := h.transactions.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		sendError(c, "Failed to get transaction", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": tx})
}

// UpdateTransaction handles PUT /transactions/:id
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	var req dto.TransactionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBadRequest(c, "Invalid request body", err)
		return
	}

	tx, err := h.transactions.Update(c.Request.Context(), currentUser(c), c.Param("id"), req)
	if err != nil {
		sendError(c, "Failed to update transaction", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": tx})
}

// DeleteTransaction handles DELETE /transactions/:id
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	if err := h.transactions.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		sendError(c, "Failed to delete transaction", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Transaction deleted"})
}

// ListCategories handles GET /transactions/categories
func (h *TransactionHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": receipt.Categories()})
}
