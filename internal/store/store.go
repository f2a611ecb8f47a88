package store

import (
	"context"
	"errors"
	"time"

	"tindapos/backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

type Repository interface {
	ListTransactions(ctx context.Context, storeID string) ([]domain.Transaction, error)
	CreateTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error)
	FindTransactionByID(ctx context.Context, id string) (*domain.Transaction, error)
	FindTransactionByIdempotency(ctx context.Context, key string) (*domain.Transaction, error)
	VoidTransaction(ctx context.Context, id string, reason string, at time.Time) (*domain.Transaction, error)
	ListStaff(ctx context.Context, storeID string) ([]string, error)

	GetDailyFloat(ctx context.Context, storeID string, date string) (*domain.DailyFloat, error)
	UpsertDailyFloat(ctx context.Context, f domain.DailyFloat) error
	GetOpeningFloat(ctx context.Context, storeID string) (int64, bool, error)
	SetOpeningFloat(ctx context.Context, storeID string, floatCents int64) error

	CreateAdjustment(ctx context.Context, adj domain.CashAdjustment) (*domain.CashAdjustment, error)
	ListAdjustments(ctx context.Context, storeID string, from time.Time, to time.Time, limit int) ([]domain.CashAdjustment, error)
	SumAdjustments(ctx context.Context, storeID string, from time.Time, to time.Time) (int64, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, storeID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
