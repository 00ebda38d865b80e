package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Code    int      `json:"code"`
	Details []string `json:"details,omitempty"`
}

// ReceiptPreview is the single editable candidate shown before saving.
type ReceiptPreview struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Date        string `json:"date"` // "YYYY-MM-DD"
}

type ReceiptPreviewResponse struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	Data       ReceiptPreview `json:"data"`
	Confidence float64        `json:"confidence"`
}

type ProcessReceiptResponse struct {
	Success       bool          `json:"success"`
	Message       string        `json:"message"`
	ExtractedText string        `json:"extracted_text"`
	Transactions  []Transaction `json:"transactions"`
	FileName      string        `json:"file_name"`
}

// BulkItemError reports one rejected item of a bulk create.
type BulkItemError struct {
	Index       int                `json:"index"`
	Error       string             `json:"error"`
	Transaction TransactionRequest `json:"transaction"`
}

type BulkCreateResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Created []Transaction   `json:"created"`
	Errors  []BulkItemError `json:"errors"`
}
