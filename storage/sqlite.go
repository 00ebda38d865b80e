// Package storage persists user transactions in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/shopspring/decimal"

	"github.com/Aashish23092/expense-ocr/dto"
)

const timeLayout = time.RFC3339Nano

// SQLiteStorage stores transactions in a single SQLite database.
type SQLiteStorage struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStorage opens (creating if needed) the database at dbPath and
// brings its schema up to date. ":memory:" opens a private in-memory database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dsn := dbPath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps writes serialized and in-memory databases shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStorage{db: db, now: time.Now}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SaveTransaction inserts tx with a fresh id and timestamps.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, tx dto.Transaction) (dto.Transaction, error) {
	now := s.now().UTC()
	tx.ID = uuid.NewString()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	if tx.Source == "" {
		tx.Source = dto.SourceManual
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, type, category, amount_cents, date, description, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, string(tx.Type), tx.Category, toCents(tx.Amount),
		formatTime(tx.Date), tx.Description, string(tx.Source),
		formatTime(tx.CreatedAt), formatTime(tx.UpdatedAt),
	)
	if err != nil {
		return dto.Transaction{}, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return tx, nil
}

// GetTransaction returns one of the user's transactions.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, userID, id string) (dto.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return dto.Transaction{}, dto.ErrTransactionNotFound
	}
	if err != nil {
		return dto.Transaction{}, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// UpdateTransaction overwrites the editable fields of tx.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, tx dto.Transaction) (dto.Transaction, error) {
	tx.UpdatedAt = s.now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET type = ?, category = ?, amount_cents = ?, date = ?, description = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		string(tx.Type), tx.Category, toCents(tx.Amount), formatTime(tx.Date), tx.Description,
		formatTime(tx.UpdatedAt), tx.ID, tx.UserID,
	)
	if err != nil {
		return dto.Transaction{}, fmt.Errorf("failed to update transaction: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return dto.Transaction{}, err
	}
	return tx, nil
}

// DeleteTransaction removes one of the user's transactions.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireAffected(res)
}

var sortColumns = map[string]string{
	"date":      "date",
	"amount":    "amount_cents",
	"category":  "category",
	"createdAt": "created_at",
}

// ListTransactions returns one page of the user's transactions.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, userID string, f dto.TransactionFilter) (dto.TransactionPage, error) {
	where, args := filterClause(userID, f.Type, f.Category, f.StartDate, f.EndDate)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return dto.TransactionPage{}, fmt.Errorf("failed to count transactions: %w", err)
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "date"
	}
	order := "DESC"
	if f.SortOrder == "asc" {
		order = "ASC"
	}
	page, limit := max(f.Page, 1), max(f.Limit, 1)

	query := `SELECT ` + transactionColumns + ` FROM transactions` + where +
		fmt.Sprintf(` ORDER BY %s %s, id %s LIMIT ? OFFSET ?`, column, order, order)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return dto.TransactionPage{}, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := []dto.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return dto.TransactionPage{}, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return dto.TransactionPage{}, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return dto.TransactionPage{
		Transactions: txs,
		Pagination: dto.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + limit - 1) / limit,
		},
	}, nil
}

// TotalRow is the sum and count of transactions sharing a type, category
// and month.
type TotalRow struct {
	Type     dto.TransactionType
	Category string
	Month    string
	Total    decimal.Decimal
	Count    int
}

// Totals groups the user's transactions by type, category and month.
func (s *SQLiteStorage) Totals(ctx context.Context, userID string, start, end *time.Time) ([]TotalRow, error) {
	where, args := filterClause(userID, "", "", start, end)
	rows, err := s.db.QueryContext(ctx, `
		SELECT type, category, substr(date, 1, 7) AS month, SUM(amount_cents), COUNT(*)
		FROM transactions`+where+`
		GROUP BY type, category, month
		ORDER BY month, type, category`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate transactions: %w", err)
	}
	defer rows.Close()

	var totals []TotalRow
	for rows.Next() {
		var (
			r     TotalRow
			typ   string
			cents int64
		)
		if err := rows.Scan(&typ, &r.Category, &r.Month, &cents, &r.Count); err != nil {
			return nil, fmt.Errorf("failed to scan totals: %w", err)
		}
		r.Type = dto.TransactionType(typ)
		r.Total = fromCents(cents)
		totals = append(totals, r)
	}
	return totals, rows.Err()
}

const transactionColumns = `id, user_id, type, category, amount_cents, date, description, source, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (dto.Transaction, error) {
	var (
		tx                         dto.Transaction
		typ, source                string
		cents                      int64
		date, createdAt, updatedAt string
	)
	if err := row.Scan(&tx.ID, &tx.UserID, &typ, &tx.Category, &cents, &date, &tx.Description, &source, &createdAt, &updatedAt); err != nil {
		return dto.Transaction{}, err
	}
	tx.Type = dto.TransactionType(typ)
	tx.Source = dto.TransactionSource(source)
	tx.Amount = fromCents(cents)

	var err error
	if tx.Date, err = time.Parse(timeLayout, date); err != nil {
		return dto.Transaction{}, fmt.Errorf("invalid stored date %q: %w", date, err)
	}
	if tx.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return dto.Transaction{}, fmt.Errorf("invalid stored created_at %q: %w", createdAt, err)
	}
	if tx.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return dto.Transaction{}, fmt.Errorf("invalid stored updated_at %q: %w", updatedAt, err)
	}
	return tx, nil
}

func filterClause(userID string, typ dto.TransactionType, category string, start, end *time.Time) (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{userID}
	if typ != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, string(typ))
	}
	if category != "" {
		clauses = append(clauses, "category LIKE ?")
		args = append(args, "%"+category+"%")
	}
	if start != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, formatTime(*start))
	}
	if end != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, formatTime(*end))
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return dto.ErrTransactionNotFound
	}
	return nil
}

// formatTime uses a fixed-width UTC layout so stored dates sort as text.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

func toCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
