package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/expense-ocr/dto"
	"github.com/Aashish23092/expense-ocr/service"
	"github.com/Aashish23092/expense-ocr/utils/receipt"
)

// maxExtractedTextExcerpt caps the OCR text echoed back by ProcessReceipt.
const maxExtractedTextExcerpt = 500

// DocumentProcessor turns an uploaded document into transaction candidates.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, data []byte, docType dto.DocumentType) (*dto.DocumentResult, error)
}

type ReceiptHandler struct {
	processor    DocumentProcessor
	transactions *service.TransactionService
	maxFileSize  int64
}

func NewReceiptHandler(processor DocumentProcessor, transactions *service.TransactionService, maxFileSize int64) *ReceiptHandler {
	return &ReceiptHandler{
		processor:    processor,
		transactions: transactions,
		maxFileSize:  maxFileSize,
	}
}

// PreviewReceipt handles POST /receipts/preview. Nothing is saved; the first
// candidate (or an editable placeholder) is returned for review.
func (h *ReceiptHandler) PreviewReceipt(c *gin.Context) {
	result, _, ok := h.processUpload(c)
	if !ok {
		return
	}

	preview := dto.ReceiptPreview{
		Description: "Transaction description",
		Amount:      "0",
		Category:    receipt.CategoryMiscellaneous,
		Date:        time.Now().Format(time.DateOnly),
	}
	if len(result.Transactions) > 0 {
		first := result.Transactions[0]
		preview = dto.ReceiptPreview{
			Description: first.Description,
			Amount:      first.Amount.StringFixed(2),
			Category:    first.Category,
			Date:        first.Date.Format(time.DateOnly),
		}
	}

	c.JSON(http.StatusOK, dto.ReceiptPreviewResponse{
		Success:    true,
		Message:    "Receipt processed successfully",
		Data:       preview,
		Confidence: result.Confidence,
	})
}

// ProcessReceipt handles POST /receipts/process and saves every candidate.
func (h *ReceiptHandler) ProcessReceipt(c *gin.Context) {
	result, fileName, ok := h.processUpload(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	logger := log.FromContext(ctx)
	userID := currentUser(c)

	created := []dto.Transaction{}
	for i, candidate := range result.Transactions {
		tx, err := h.transactions.CreateFromExtracted(ctx, userID, candidate, dto.SourceReceipt)
		if err != nil {
			logger.Warn("skipping receipt candidate", "index", i, "error", err)
			continue
		}
		created = append(created, tx)
	}

	c.JSON(http.StatusCreated, dto.ProcessReceiptResponse{
		Success:       true,
		Message:       fmt.Sprintf("Successfully processed receipt and created %d transactions", len(created)),
		ExtractedText: excerpt(result.ExtractedText, maxExtractedTextExcerpt),
		Transactions:  created,
		FileName:      fileName,
	})
}

// CreateFromPreview handles POST /receipts/create-from-preview with reviewed
// candidates. Invalid items are reported by index and do not block the rest.
func (h *ReceiptHandler) CreateFromPreview(c *gin.Context) {
	var req dto.BulkTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBadRequest(c, "Invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		sendError(c, "Invalid request", err)
		return
	}

	created, failed := h.transactions.CreateBulk(c.Request.Context(), currentUser(c), req.Transactions, dto.SourceReceipt)
	if failed == nil {
		failed = []dto.BulkItemError{}
	}

	c.JSON(http.StatusCreated, dto.BulkCreateResponse{
		Success: true,
		Message: fmt.Sprintf("%d transactions created from receipt preview", len(created)),
		Created: created,
		Errors:  failed,
	})
}

// processUpload validates the "receipt" upload and runs it through the
// pipeline. It writes the error response itself when it returns false.
func (h *ReceiptHandler) processUpload(c *gin.Context) (*dto.DocumentResult, string, bool) {
	var req dto.ReceiptUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		sendBadRequest(c, "No file uploaded", err)
		return nil, "", false
	}
	if err := req.Validate(); err != nil {
		sendError(c, "Invalid file", err)
		return nil, "", false
	}
	if req.File.Size > h.maxFileSize {
		sendError(c, "File too large", &dto.ValidationError{
			Details: []string{fmt.Sprintf("File must be at most %d bytes", h.maxFileSize)},
		})
		return nil, "", false
	}

	docType, _ := dto.DetectDocumentType(req.File.Header.Get("Content-Type"), req.File.Filename)
	logger := log.FromContext(c.Request.Context())
	logger.Info("Received receipt", "file", req.File.Filename, "size", req.File.Size, "type", docType)

	f, err := req.File.Open()
	if err != nil {
		sendError(c, "Failed to read upload", err)
		return nil, "", false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxFileSize+1))
	if err != nil {
		sendError(c, "Failed to read upload", err)
		return nil, "", false
	}

	result, err := h.processor.ProcessDocument(c.Request.Context(), data, docType)
	if err != nil {
		sendError(c, "Failed to process receipt", err)
		return nil, "", false
	}
	return result, req.File.Filename, true
}

// excerpt returns at most n runes of s.
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
