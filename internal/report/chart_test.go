package report

import (
	"testing"
	"time"

	"tindapos/backend/internal/domain"
)

func TestProjectBucketCounts(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		period string
		want   int
	}{
		{domain.PeriodDaily, 7},
		{domain.PeriodWeekly, 8},
		{domain.PeriodMonthly, 12},
		{domain.PeriodYearly, 5},
	}

	for _, tc := range cases {
		points := Project(nil, tc.period, now)
		if len(points) != tc.want {
			t.Fatalf("period %s: expected %d buckets, got %d", tc.period, tc.want, len(points))
		}
		for i := 1; i < len(points); i++ {
			if !points[i-1].BucketStart.Before(points[i].BucketStart) {
				t.Fatalf("period %s: buckets must be in ascending order", tc.period)
			}
		}
	}
}

func TestProjectAssignsToCurrentAndPastBuckets(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	txs := []domain.Transaction{
		{ID: "tx-today", Timestamp: now.Add(-time.Hour), TotalCents: 1000},
		{ID: "tx-3d", Timestamp: now.AddDate(0, 0, -3), TotalCents: 2000},
		{ID: "tx-old", Timestamp: now.AddDate(0, 0, -10), TotalCents: 9999},
		{ID: "tx-invalid", TotalCents: 5555},
	}

	points := Project(txs, domain.PeriodDaily, now)

	last := points[len(points)-1]
	if last.ValueCents != 1000 {
		t.Fatalf("expected 1000 in today's bucket, got %d", last.ValueCents)
	}
	threeDays := points[len(points)-4]
	if threeDays.ValueCents != 2000 {
		t.Fatalf("expected 2000 three days back, got %d", threeDays.ValueCents)
	}

	var total int64
	for _, p := range points {
		total += p.ValueCents
	}
	if total != 3000 {
		t.Fatalf("out-of-range and invalid records must not land anywhere, total %d", total)
	}
}

func TestProjectPrefersStoredActualRevenue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	actual := int64(1500)
	txs := []domain.Transaction{
		{ID: "tx-svc", Timestamp: now.Add(-time.Hour), TotalCents: 51500, ActualRevenueCents: &actual},
	}

	points := Project(txs, domain.PeriodDaily, now)

	if points[len(points)-1].ValueCents != 1500 {
		t.Fatalf("chart value must use actual revenue when stored, got %d", points[len(points)-1].ValueCents)
	}
}

func TestProjectKeepsEmptyBuckets(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	points := Project(nil, domain.PeriodMonthly, now)

	if len(points) != 12 {
		t.Fatalf("expected 12 buckets, got %d", len(points))
	}
	for _, p := range points {
		if p.ValueCents != 0 {
			t.Fatalf("empty data must yield zero-valued buckets")
		}
		if p.Label == "" || p.FullLabel == "" {
			t.Fatalf("every bucket needs labels")
		}
	}
}
