package dto

import (
	"errors"
	"strings"
)

// Custom errors
var (
	ErrUnsupportedDocumentType = errors.New("unsupported document type")
	ErrOcrProcessingFailed     = errors.New("OCR processing failed")
	ErrPdfProcessingFailed     = errors.New("PDF processing failed")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrValidation              = errors.New("validation failed")
)

// ValidationError lists every problem found in a request.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
