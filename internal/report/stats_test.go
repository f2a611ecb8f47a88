package report

import (
	"testing"
	"time"

	"tindapos/backend/internal/domain"
)

func i64(v int64) *int64 { return &v }

func merchTx(totalCents int64, processedBy string, method string) domain.Transaction {
	return domain.Transaction{
		ID:            "tx-merch",
		Timestamp:     time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		ProcessedBy:   processedBy,
		PaymentMethod: method,
		TotalCents:    totalCents,
		Status:        domain.TxStatusPaid,
		Items: []domain.LineItem{
			{Name: "Screen Protector", Quantity: 1, SubtotalCents: totalCents},
		},
	}
}

func TestAggregateServiceRevenueIsRegularPlusFees(t *testing.T) {
	tx := domain.Transaction{
		ID:            "tx-svc",
		Timestamp:     time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		ProcessedBy:   "maria",
		PaymentMethod: domain.PaymentCash,
		TotalCents:    56000,
		Items: []domain.LineItem{
			{Name: "Phone Case", Quantity: 1, SubtotalCents: 5000},
			{Name: "GCash Cash-Out", Quantity: 1, IsCashOut: true, CashOutCents: 50000, ActualGivenCents: i64(50000), ServiceFeeCents: 1000},
		},
	}

	stats := Aggregate([]domain.Transaction{tx})

	if stats.TotalSalesCents != 6000 {
		t.Fatalf("expected revenue 6000 (merchandise + fee), got %d", stats.TotalSalesCents)
	}
	if stats.TotalCashOutCents != 50000 {
		t.Fatalf("expected cash-out principal 50000, got %d", stats.TotalCashOutCents)
	}
	if stats.CashOutFeeCents != 1000 {
		t.Fatalf("expected cash-out fee 1000, got %d", stats.CashOutFeeCents)
	}
	if stats.CashInFeeCents != 0 {
		t.Fatalf("expected no cash-in fee, got %d", stats.CashInFeeCents)
	}
}

func TestAggregatePrefersStoredActualRevenue(t *testing.T) {
	tx := domain.Transaction{
		ID:                 "tx-legacy",
		Timestamp:          time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
		PaymentMethod:      domain.PaymentCash,
		TotalCents:         51500,
		ActualRevenueCents: i64(1500),
		HasCashOut:         true,
		TotalCashOutCents:  i64(50000),
	}

	stats := Aggregate([]domain.Transaction{tx})

	if stats.TotalSalesCents != 1500 {
		t.Fatalf("expected stored actual revenue 1500, got %d", stats.TotalSalesCents)
	}
}

func TestAggregateEvenFeeSplitForBothDirections(t *testing.T) {
	// Transaction-level fee with both directions and no per-line breakdown:
	// the fee splits evenly with the cash-out side absorbing the odd centavo.
	tx := domain.Transaction{
		ID:                    "tx-both",
		Timestamp:             time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		PaymentMethod:         domain.PaymentGCash,
		TotalCents:            100501,
		HasCashIn:             true,
		HasCashOut:            true,
		TotalCashInCents:      i64(50000),
		TotalCashOutCents:     i64(50000),
		TotalActualGivenCents: i64(50000),
		TotalServiceFeeCents:  i64(501),
	}

	stats := Aggregate([]domain.Transaction{tx})

	if stats.CashInFeeCents != 250 {
		t.Fatalf("expected cash-in fee 250, got %d", stats.CashInFeeCents)
	}
	if stats.CashOutFeeCents != 251 {
		t.Fatalf("expected cash-out fee 251, got %d", stats.CashOutFeeCents)
	}
	if got := stats.CashInFeeCents + stats.CashOutFeeCents; got != 501 {
		t.Fatalf("fee buckets must sum to the full fee, got %d", got)
	}
}

func TestAggregateEstimatesFeeFromActualRevenue(t *testing.T) {
	// Oldest record shape: flags plus a stored actual revenue, nothing else.
	tx := domain.Transaction{
		ID:                 "tx-oldest",
		Timestamp:          time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC),
		PaymentMethod:      domain.PaymentCash,
		TotalCents:         20800,
		ActualRevenueCents: i64(800),
		HasCashIn:          true,
	}

	stats := Aggregate([]domain.Transaction{tx})

	if stats.CashInFeeCents != 800 {
		t.Fatalf("expected estimated cash-in fee 800, got %d", stats.CashInFeeCents)
	}
	if stats.TotalServiceFeeCents != 800 {
		t.Fatalf("expected total service fee 800, got %d", stats.TotalServiceFeeCents)
	}
}

func TestAggregateEstimatedFeeNeverNegative(t *testing.T) {
	tx := domain.Transaction{
		ID:                 "tx-negative",
		Timestamp:          time.Date(2026, 3, 10, 13, 30, 0, 0, time.UTC),
		PaymentMethod:      domain.PaymentCash,
		TotalCents:         5000,
		ActualRevenueCents: i64(2000),
		HasCashIn:          true,
		Items: []domain.LineItem{
			{Name: "Load Card", Quantity: 1, SubtotalCents: 3000},
		},
	}

	stats := Aggregate([]domain.Transaction{tx})

	if stats.CashInFeeCents != 0 {
		t.Fatalf("estimated fee must clamp at zero, got %d", stats.CashInFeeCents)
	}
}

func TestAggregateCashPaidTrackingRequiresCashPayment(t *testing.T) {
	base := domain.Transaction{
		Timestamp:  time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
		TotalCents: 51000,
		Items: []domain.LineItem{
			{Name: "GCash Cash-In", Quantity: 1, IsCashIn: true, CashOutCents: 50000, ActualGivenCents: i64(50000), ServiceFeeCents: 1000},
		},
	}

	cashTx := base
	cashTx.ID = "tx-cashpaid"
	cashTx.PaymentMethod = domain.PaymentCash
	walletTx := base
	walletTx.ID = "tx-walletpaid"
	walletTx.PaymentMethod = domain.PaymentGCash

	stats := Aggregate([]domain.Transaction{cashTx, walletTx})

	if stats.TotalCashInCents != 100000 {
		t.Fatalf("both loads count toward cash-in volume, got %d", stats.TotalCashInCents)
	}
	if stats.CashInPaidWithCash != 50000 {
		t.Fatalf("only the cash-paid load moves drawer cash, got %d", stats.CashInPaidWithCash)
	}
}

func TestAggregateDefaultsForMalformedRecords(t *testing.T) {
	tx := domain.Transaction{
		ID:         "tx-bare",
		TotalCents: 2500,
		// no timestamp, no processed-by, no payment method
	}

	stats := Aggregate([]domain.Transaction{tx})

	if stats.TotalTransactions != 1 {
		t.Fatalf("aggregation must not drop records with missing fields")
	}
	if stats.SalesByUser[domain.UnknownStaff] != 2500 {
		t.Fatalf("missing processed-by must bucket under %q", domain.UnknownStaff)
	}
	if stats.SalesByPaymentMethod["unknown"] != 2500 {
		t.Fatalf("missing payment method must bucket under unknown")
	}
}

func TestAggregateAveragesAndDiscounts(t *testing.T) {
	txA := merchTx(10000, "maria", domain.PaymentCash)
	txA.ID = "tx-a"
	txB := merchTx(5001, "jose", domain.PaymentCard)
	txB.ID = "tx-b"
	txB.Items[0].DiscountCents = 500
	txB.DiscountAuthorizedBy = "maria"

	stats := Aggregate([]domain.Transaction{txA, txB})

	if stats.AverageTransactionCents != 7500 {
		t.Fatalf("expected truncated average 7500, got %d", stats.AverageTransactionCents)
	}
	if stats.TotalDiscountCents != 500 || stats.DiscountedTransactions != 1 {
		t.Fatalf("discount tracking wrong: total=%d count=%d", stats.TotalDiscountCents, stats.DiscountedTransactions)
	}
	if stats.DiscountsByStaff["maria"] != 500 {
		t.Fatalf("discount must attribute to the authorizer")
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	stats := Aggregate(nil)

	if stats.TotalTransactions != 0 || stats.TotalSalesCents != 0 {
		t.Fatalf("empty input must produce zero totals")
	}
	if stats.AverageTransactionCents != 0 {
		t.Fatalf("empty input must not divide by zero")
	}
	if stats.SalesByUser == nil || stats.SalesByPaymentMethod == nil {
		t.Fatalf("maps must be initialized even for empty input")
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	txs := []domain.Transaction{
		merchTx(1000, "a", domain.PaymentCash),
		merchTx(2000, "b", domain.PaymentCard),
		merchTx(3000, "c", domain.PaymentGCash),
	}
	for i := range txs {
		txs[i].ID = "tx-" + txs[i].ProcessedBy
	}
	reversed := []domain.Transaction{txs[2], txs[1], txs[0]}

	forward := Aggregate(txs)
	backward := Aggregate(reversed)

	if forward.TotalSalesCents != backward.TotalSalesCents {
		t.Fatalf("totals must not depend on input order")
	}
	if forward.SalesByUser["b"] != backward.SalesByUser["b"] {
		t.Fatalf("per-user totals must not depend on input order")
	}
}
