package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/expense-ocr/dto"
)

// sendError maps err onto a status and writes a structured error response.
func sendError(c *gin.Context, message string, err error) {
	status, code := classifyError(err)

	var details []string
	var verr *dto.ValidationError
	if errors.As(err, &verr) {
		details = verr.Details
	}

	logger := log.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.Error(message, "error", err)
	} else {
		logger.Warn(message, "error", err)
	}

	c.JSON(status, errorBody(status, code, message, details))
}

// sendBadRequest reports a malformed request that never reached a service.
func sendBadRequest(c *gin.Context, message string, err error) {
	log.FromContext(c.Request.Context()).Warn(message, "error", err)
	var details []string
	if err != nil {
		details = []string{err.Error()}
	}
	c.JSON(http.StatusBadRequest, errorBody(http.StatusBadRequest, "BAD_REQUEST", message, details))
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, dto.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, dto.ErrTransactionNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, dto.ErrUnsupportedDocumentType):
		return http.StatusUnsupportedMediaType, "UNSUPPORTED_DOCUMENT"
	case errors.Is(err, dto.ErrOcrProcessingFailed), errors.Is(err, dto.ErrPdfProcessingFailed):
		return http.StatusUnprocessableEntity, "PROCESSING_FAILED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func errorBody(status int, code, message string, details []string) dto.ErrorResponse {
	return dto.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    status,
		Details: details,
	}
}
