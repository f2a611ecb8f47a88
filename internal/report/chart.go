package report

import (
	"fmt"
	"time"

	"tindapos/backend/internal/domain"
)

// Bucket counts per period for the trailing trend series.
const (
	dailyBuckets   = 7
	weeklyBuckets  = 8
	monthlyBuckets = 12
	yearlyBuckets  = 5
)

// Project derives a fixed-length trailing series of revenue buckets anchored
// at now. This is a trend view, not a filtered view: it ignores any
// user-selected anchor date, and bucket values use the quick revenue rule
// (stored actual revenue, else nominal total) rather than the full
// resolution policy. Empty buckets are kept so the series length is stable.
func Project(txs []domain.Transaction, period string, now time.Time) []domain.ChartPoint {
	points := buildBuckets(period, now)
	if len(points) == 0 {
		return points
	}

	ends := bucketEnds(points, period)
	for _, tx := range txs {
		if !tx.HasValidTimestamp() {
			continue
		}
		for i := range points {
			if !tx.Timestamp.Before(points[i].BucketStart) && tx.Timestamp.Before(ends[i]) {
				points[i].ValueCents += chartRevenue(tx)
				break
			}
		}
	}
	return points
}

func chartRevenue(tx domain.Transaction) int64 {
	if tx.ActualRevenueCents != nil {
		return *tx.ActualRevenueCents
	}
	return tx.TotalCents
}

func buildBuckets(period string, now time.Time) []domain.ChartPoint {
	switch period {
	case domain.PeriodWeekly:
		points := make([]domain.ChartPoint, 0, weeklyBuckets)
		currentWeek := mondayOf(now)
		for i := weeklyBuckets - 1; i >= 0; i-- {
			start := currentWeek.AddDate(0, 0, -7*i)
			points = append(points, domain.ChartPoint{
				Label:       start.Format("Jan 2"),
				FullLabel:   fmt.Sprintf("Week of %s", start.Format("Jan 2, 2006")),
				BucketStart: start,
			})
		}
		return points
	case domain.PeriodMonthly:
		points := make([]domain.ChartPoint, 0, monthlyBuckets)
		currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		for i := monthlyBuckets - 1; i >= 0; i-- {
			start := currentMonth.AddDate(0, -i, 0)
			points = append(points, domain.ChartPoint{
				Label:       start.Format("Jan"),
				FullLabel:   start.Format("January 2006"),
				BucketStart: start,
			})
		}
		return points
	case domain.PeriodYearly:
		points := make([]domain.ChartPoint, 0, yearlyBuckets)
		currentYear := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		for i := yearlyBuckets - 1; i >= 0; i-- {
			start := currentYear.AddDate(-i, 0, 0)
			points = append(points, domain.ChartPoint{
				Label:       start.Format("2006"),
				FullLabel:   start.Format("2006"),
				BucketStart: start,
			})
		}
		return points
	default:
		points := make([]domain.ChartPoint, 0, dailyBuckets)
		today := midnightOf(now)
		for i := dailyBuckets - 1; i >= 0; i-- {
			start := today.AddDate(0, 0, -i)
			points = append(points, domain.ChartPoint{
				Label:       start.Format("Mon"),
				FullLabel:   start.Format("Jan 2"),
				BucketStart: start,
			})
		}
		return points
	}
}

func bucketEnds(points []domain.ChartPoint, period string) []time.Time {
	ends := make([]time.Time, len(points))
	for i := range points {
		switch period {
		case domain.PeriodWeekly:
			ends[i] = points[i].BucketStart.AddDate(0, 0, 7)
		case domain.PeriodMonthly:
			ends[i] = points[i].BucketStart.AddDate(0, 1, 0)
		case domain.PeriodYearly:
			ends[i] = points[i].BucketStart.AddDate(1, 0, 0)
		default:
			ends[i] = points[i].BucketStart.AddDate(0, 0, 1)
		}
	}
	return ends
}
