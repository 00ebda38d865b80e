package service

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Aashish23092/expense-ocr/dto"
	"github.com/Aashish23092/expense-ocr/storage"
)

// TransactionStore persists user transactions.
type TransactionStore interface {
	SaveTransaction(ctx context.Context, tx dto.Transaction) (dto.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (dto.Transaction, error)
	UpdateTransaction(ctx context.Context, tx dto.Transaction) (dto.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
	ListTransactions(ctx context.Context, userID string, f dto.TransactionFilter) (dto.TransactionPage, error)
	Totals(ctx context.Context, userID string, start, end *time.Time) ([]storage.TotalRow, error)
}

type TransactionService struct {
	store TransactionStore
}

func NewTransactionService(store TransactionStore) *TransactionService {
	return &TransactionService{store: store}
}

// Create validates req and stores it for userID.
func (s *TransactionService) Create(ctx context.Context, userID string, req dto.TransactionRequest, source dto.TransactionSource) (dto.Transaction, error) {
	if err := req.Validate(); err != nil {
		return dto.Transaction{}, err
	}
	tx, err := s.store.SaveTransaction(ctx, req.ToTransaction(userID, source))
	if err != nil {
		return dto.Transaction{}, fmt.Errorf("failed to save transaction: %w", err)
	}
	log.FromContext(ctx).Info("Transaction created", "id", tx.ID, "source", source, "amount", tx.Amount)
	return tx, nil
}

// CreateFromExtracted stores a parsed candidate under the same rules as a
// manual entry.
func (s *TransactionService) CreateFromExtracted(ctx context.Context, userID string, et dto.ExtractedTransaction, source dto.TransactionSource) (dto.Transaction, error) {
	return s.Create(ctx, userID, RequestFromExtracted(et), source)
}

// CreateBulk stores each valid request and reports the rest by index.
func (s *TransactionService) CreateBulk(ctx context.Context, userID string, reqs []dto.TransactionRequest, source dto.TransactionSource) ([]dto.Transaction, []dto.BulkItemError) {
	created := []dto.Transaction{}
	var failed []dto.BulkItemError
	for i, req := range reqs {
		tx, err := s.Create(ctx, userID, req, source)
		if err != nil {
			failed = append(failed, dto.BulkItemError{Index: i, Error: err.Error(), Transaction: req})
			continue
		}
		created = append(created, tx)
	}
	return created, failed
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (dto.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) List(ctx context.Context, userID string, query dto.TransactionQuery) (dto.TransactionPage, error) {
	filter, err := query.ToFilter()
	if err != nil {
		return dto.TransactionPage{}, err
	}
	return s.store.ListTransactions(ctx, userID, filter)
}

// Update applies a partial update to one of the user's transactions.
func (s *TransactionService) Update(ctx context.Context, userID, id string, req dto.TransactionUpdateRequest) (dto.Transaction, error) {
	if err := req.Validate(); err != nil {
		return dto.Transaction{}, err
	}
	tx, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return dto.Transaction{}, err
	}
	req.Apply(&tx)
	return s.store.UpdateTransaction(ctx, tx)
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	return s.store.DeleteTransaction(ctx, userID, id)
}

// RequestFromExtracted converts a candidate into an editable request.
func RequestFromExtracted(et dto.ExtractedTransaction) dto.TransactionRequest {
	return dto.TransactionRequest{
		Type:        et.Type,
		Category:    et.Category,
		Amount:      et.Amount,
		Date:        et.Date.Format(time.DateOnly),
		Description: et.Description,
	}
}
