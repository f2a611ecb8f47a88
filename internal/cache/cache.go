package cache

import (
	"context"
	"time"

	"tindapos/backend/internal/domain"
)

// TransactionCache holds the last successfully fetched transaction list per
// store. The report path reads it when the backing store is unreachable, so a
// terminal can keep showing yesterday's numbers through an outage.
type TransactionCache interface {
	GetAll(ctx context.Context, storeID string) ([]domain.Transaction, bool, error)
	SetAll(ctx context.Context, storeID string, txs []domain.Transaction, ttl time.Duration) error
}

type NoopTransactionCache struct{}

func (NoopTransactionCache) GetAll(_ context.Context, _ string) ([]domain.Transaction, bool, error) {
	return nil, false, nil
}

func (NoopTransactionCache) SetAll(_ context.Context, _ string, _ []domain.Transaction, _ time.Duration) error {
	return nil
}
