package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"tindapos/backend/internal/domain"
	"tindapos/backend/internal/store"
)

func TestCreateTransactionRejectsDuplicateIdempotencyKey(t *testing.T) {
	s := New()
	ctx := context.Background()

	tx := domain.Transaction{
		ID:             "tx-1",
		StoreID:        "main-store",
		IdempotencyKey: "idem-1",
		Timestamp:      time.Now().UTC(),
		TotalCents:     1000,
		Items:          []domain.LineItem{{Name: "Cable", Quantity: 1, SubtotalCents: 1000}},
	}
	if _, err := s.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	tx.ID = "tx-2"
	if _, err := s.CreateTransaction(ctx, tx); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected duplicate idempotency key rejection, got %v", err)
	}

	found, err := s.FindTransactionByIdempotency(ctx, "idem-1")
	if err != nil || found.ID != "tx-1" {
		t.Fatalf("lookup by idempotency key failed: %v", err)
	}
}

func TestVoidTransactionLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	tx := domain.Transaction{
		ID:         "tx-void",
		Timestamp:  time.Now().UTC(),
		TotalCents: 1000,
		Status:     domain.TxStatusPaid,
		Items:      []domain.LineItem{{Name: "Cable", Quantity: 1, SubtotalCents: 1000}},
	}
	if _, err := s.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	at := time.Now().UTC()
	voided, err := s.VoidTransaction(ctx, "tx-void", "test", at)
	if err != nil {
		t.Fatalf("void failed: %v", err)
	}
	if voided.Status != domain.TxStatusVoided || voided.VoidedAt == nil {
		t.Fatalf("void did not stick: %+v", voided)
	}

	if _, err := s.VoidTransaction(ctx, "tx-void", "again", at); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("double void must fail with ErrInvalidInput, got %v", err)
	}
	if _, err := s.VoidTransaction(ctx, "tx-missing", "x", at); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing id must fail with ErrNotFound, got %v", err)
	}
}

func TestDailyFloatUpsertIsLastWriterWins(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, cents := range []int64{10000, 25000} {
		err := s.UpsertDailyFloat(ctx, domain.DailyFloat{
			StoreID:    "main-store",
			Date:       "2026-03-10",
			FloatCents: cents,
			SavedAt:    time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	saved, err := s.GetDailyFloat(ctx, "main-store", "2026-03-10")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if saved.FloatCents != 25000 {
		t.Fatalf("expected last value 25000, got %d", saved.FloatCents)
	}

	if _, err := s.GetDailyFloat(ctx, "main-store", "2026-03-11"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("unknown date must return ErrNotFound, got %v", err)
	}
}

func TestAdjustmentWindowSum(t *testing.T) {
	s := New()
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for i, adj := range []domain.CashAdjustment{
		{StoreID: "main-store", AmountCents: 1000, Reason: "found cash", RecordedAt: day.Add(9 * time.Hour)},
		{StoreID: "main-store", AmountCents: -400, Reason: "rider fee", RecordedAt: day.Add(15 * time.Hour)},
		{StoreID: "main-store", AmountCents: 9999, Reason: "next day", RecordedAt: day.AddDate(0, 0, 1)},
	} {
		if _, err := s.CreateAdjustment(ctx, adj); err != nil {
			t.Fatalf("adjustment %d failed: %v", i, err)
		}
	}

	total, err := s.SumAdjustments(ctx, "main-store", day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if total != 600 {
		t.Fatalf("expected window sum 600, got %d", total)
	}

	listed, err := s.ListAdjustments(ctx, "main-store", day, day.AddDate(0, 0, 1), 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 adjustments in the window, got %d", len(listed))
	}
}

func TestListTransactionsClonesRecords(t *testing.T) {
	s := New()
	ctx := context.Background()

	given := int64(5000)
	tx := domain.Transaction{
		ID:         "tx-clone",
		Timestamp:  time.Now().UTC(),
		TotalCents: 5000,
		Items: []domain.LineItem{
			{Name: "GCash Cash-Out", Quantity: 1, IsCashOut: true, CashOutCents: 5000, ActualGivenCents: &given},
		},
	}
	if _, err := s.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	listed, err := s.ListTransactions(ctx, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	*listed[0].Items[0].ActualGivenCents = 1

	again, err := s.ListTransactions(ctx, "")
	if err != nil {
		t.Fatalf("second list failed: %v", err)
	}
	if *again[0].Items[0].ActualGivenCents != 5000 {
		t.Fatalf("mutating a returned record must not affect the store")
	}
}
