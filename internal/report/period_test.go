package report

import (
	"testing"
	"time"

	"tindapos/backend/internal/domain"
)

func stamped(id string, ts time.Time, staff string) domain.Transaction {
	return domain.Transaction{
		ID:          id,
		Timestamp:   ts,
		ProcessedBy: staff,
		TotalCents:  1000,
		Status:      domain.TxStatusPaid,
	}
}

func TestWindowDaily(t *testing.T) {
	anchor := time.Date(2026, 3, 10, 15, 42, 7, 0, time.UTC)
	start, end := Window(domain.PeriodDaily, anchor)

	if !start.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("wrong daily start: %v", start)
	}
	if !end.Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("wrong daily end: %v", end)
	}
}

func TestWindowWeeklyStartsMonday(t *testing.T) {
	// 2026-03-08 is a Sunday; its week starts Monday 2026-03-02.
	anchor := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	start, end := Window(domain.PeriodWeekly, anchor)

	if !start.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("week must start on Monday, got %v", start)
	}
	if !end.Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("week must span 7 days, got %v", end)
	}

	// A Monday anchor is its own week start.
	monday := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	start, _ = Window(domain.PeriodWeekly, monday)
	if !start.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Monday anchor must start its own week, got %v", start)
	}
}

func TestFilterMonthEndBoundaryIsExclusive(t *testing.T) {
	anchor := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	lastInstant := stamped("tx-in", time.Date(2026, 4, 30, 23, 59, 59, 999000000, time.UTC), "maria")
	firstOfNext := stamped("tx-out", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), "maria")

	got := Filter([]domain.Transaction{lastInstant, firstOfNext}, domain.PeriodMonthly, anchor, domain.StaffFilterAll)

	if len(got) != 1 || got[0].ID != "tx-in" {
		t.Fatalf("month window must include the last instant and exclude the next month's first, got %d", len(got))
	}
}

func TestFilterStaff(t *testing.T) {
	anchor := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	txs := []domain.Transaction{
		stamped("tx-m", time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), "maria"),
		stamped("tx-j", time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), "jose"),
	}

	all := Filter(txs, domain.PeriodDaily, anchor, domain.StaffFilterAll)
	if len(all) != 2 {
		t.Fatalf("staff filter %q must match everyone, got %d", domain.StaffFilterAll, len(all))
	}

	onlyMaria := Filter(txs, domain.PeriodDaily, anchor, "maria")
	if len(onlyMaria) != 1 || onlyMaria[0].ID != "tx-m" {
		t.Fatalf("expected only maria's transaction")
	}
}

func TestFilterDropsInvalidTimestamps(t *testing.T) {
	anchor := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	txs := []domain.Transaction{
		stamped("tx-ok", time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), "maria"),
		{ID: "tx-bad", ProcessedBy: "maria", TotalCents: 1000},
	}

	got := Filter(txs, domain.PeriodDaily, anchor, domain.StaffFilterAll)
	if len(got) != 1 || got[0].ID != "tx-ok" {
		t.Fatalf("records without a valid timestamp must be dropped from windows")
	}
}

func TestWindowYearly(t *testing.T) {
	anchor := time.Date(2026, 7, 4, 12, 0, 0, 0, time.UTC)
	start, end := Window(domain.PeriodYearly, anchor)

	if start.Year() != 2026 || start.Month() != time.January || start.Day() != 1 {
		t.Fatalf("wrong yearly start: %v", start)
	}
	if end.Year() != 2027 || end.Month() != time.January || end.Day() != 1 {
		t.Fatalf("wrong yearly end: %v", end)
	}
}
