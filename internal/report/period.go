package report

import (
	"time"

	"tindapos/backend/internal/domain"
)

// Window returns the half-open [start, end) interval for the given period
// anchored at anchor. Weeks start on Monday. Unknown periods fall back to
// daily.
func Window(period string, anchor time.Time) (time.Time, time.Time) {
	switch period {
	case domain.PeriodWeekly:
		start := mondayOf(anchor)
		return start, start.AddDate(0, 0, 7)
	case domain.PeriodMonthly:
		start := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		return start, start.AddDate(0, 1, 0)
	case domain.PeriodYearly:
		start := time.Date(anchor.Year(), 1, 1, 0, 0, 0, 0, anchor.Location())
		return start, start.AddDate(1, 0, 0)
	default:
		start := midnightOf(anchor)
		return start, start.AddDate(0, 0, 1)
	}
}

// Filter returns the transactions whose timestamp falls in the window for
// (period, anchor) and whose processor matches staffFilter. Records without a
// valid timestamp are silently dropped; they are a data defect, not an error.
func Filter(txs []domain.Transaction, period string, anchor time.Time, staffFilter string) []domain.Transaction {
	start, end := Window(period, anchor)
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.HasValidTimestamp() {
			continue
		}
		if tx.Timestamp.Before(start) || !tx.Timestamp.Before(end) {
			continue
		}
		if staffFilter != "" && staffFilter != domain.StaffFilterAll && tx.ProcessedBy != staffFilter {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func midnightOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func mondayOf(t time.Time) time.Time {
	day := midnightOf(t)
	// time.Weekday puts Sunday at 0; shift so Monday is the week start.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
