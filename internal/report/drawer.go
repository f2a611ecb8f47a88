package report

import "tindapos/backend/internal/domain"

// Reconcile combines an aggregation result with the opening float and the
// period's signed manual adjustments into a drawer summary.
//
// A cash-out paid for with physical cash both credits the drawer (the
// customer hands over principal plus fee) and debits it (the shop hands back
// the principal): the CashOutPaidWithCash and CashOutGiven terms cancel the
// principal and the drawer nets out at the fee. When the cash-out was paid
// through a non-cash channel only the debit remains.
func Reconcile(stats domain.StatsResult, openingBalanceCents int64, adjustmentCents int64, period string) domain.DrawerSummary {
	cashOutGiven := stats.TotalActualGivenCents
	if cashOutGiven <= 0 {
		// Older records tracked only the nominal principal.
		cashOutGiven = stats.TotalCashOutCents
	}

	cashSales := stats.SalesByPaymentMethod[domain.PaymentCash]
	collected := cashSales + stats.CashInPaidWithCash + stats.CashOutPaidWithCash - cashOutGiven + adjustmentCents

	summary := domain.DrawerSummary{
		Period:              period,
		OpeningBalanceCents: openingBalanceCents,
		CashSalesCents:      cashSales,
		CashInPaidWithCash:  stats.CashInPaidWithCash,
		CashOutPaidWithCash: stats.CashOutPaidWithCash,
		CashOutGivenCents:   cashOutGiven,
		AdjustmentCents:     adjustmentCents,
		ToCollectCents:      collected,
	}

	// A closing balance only makes sense for a single day; across longer
	// periods the float is reset every morning and is not summed.
	if period == domain.PeriodDaily {
		closing := openingBalanceCents + collected
		summary.ClosingBalanceCents = &closing
	}

	return summary
}
