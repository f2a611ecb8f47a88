package report

import "tindapos/backend/internal/domain"

// Aggregate folds a transaction list into a StatsResult in one left-to-right
// pass. It never fails: malformed records contribute defaults and the fold
// continues. Ordering of the input does not affect any total.
func Aggregate(txs []domain.Transaction) domain.StatsResult {
	result := domain.StatsResult{
		SalesByUser:          make(map[string]int64),
		SalesByPaymentMethod: make(map[string]int64),
		ItemsSoldByName:      make(map[string]int),
		ItemsRevenueByName:   make(map[string]int64),
		DiscountsByStaff:     make(map[string]int64),
	}

	for _, tx := range txs {
		facts := collectFacts(tx)
		revenue := resolveRevenue(tx, facts)
		split := SplitFees(tx, facts)

		result.TotalSalesCents += revenue
		result.TotalTaxCents += tx.TaxCents
		result.TotalTransactions++
		result.TotalItems += len(tx.Items)

		user := tx.ProcessedBy
		if user == "" {
			user = domain.UnknownStaff
		}
		result.SalesByUser[user] += revenue

		method := tx.PaymentMethod
		if method == "" {
			method = "unknown"
		}
		result.SalesByPaymentMethod[method] += revenue

		for _, item := range tx.Items {
			if item.IsService() {
				continue
			}
			result.ItemsSoldByName[item.Name] += item.Quantity
			result.ItemsRevenueByName[item.Name] += item.SubtotalCents
		}

		if facts.hasService(tx) {
			cashIn, cashOutPrincipal, actualGiven := resolveCashFlow(tx, facts)
			result.TotalCashInCents += cashIn
			result.TotalCashOutCents += cashOutPrincipal
			result.TotalActualGivenCents += actualGiven
			result.CashInFeeCents += split.CashInCents
			result.CashOutFeeCents += split.CashOutCents
			result.TotalServiceFeeCents += split.Total()

			// Physical cash only moves through the drawer when the service
			// itself was paid for in cash.
			if tx.PaymentMethod == domain.PaymentCash {
				result.CashInPaidWithCash += cashIn
				result.CashOutPaidWithCash += actualGiven
			}
		}

		if facts.discountCents > 0 {
			result.TotalDiscountCents += facts.discountCents
			result.DiscountedTransactions++
			authorizer := tx.DiscountAuthorizedBy
			if authorizer == "" {
				authorizer = domain.UnknownStaff
			}
			result.DiscountsByStaff[authorizer] += facts.discountCents
		}
	}

	if result.TotalTransactions > 0 {
		result.AverageTransactionCents = result.TotalSalesCents / int64(result.TotalTransactions)
	}
	if result.DiscountedTransactions > 0 {
		result.AverageDiscountCents = result.TotalDiscountCents / int64(result.DiscountedTransactions)
	}

	return result
}

// collectFacts walks a transaction's line items once, splitting merchandise
// from e-wallet service lines and accumulating the per-direction amounts the
// revenue and fee rules work from.
func collectFacts(tx domain.Transaction) serviceFacts {
	var facts serviceFacts
	for _, item := range tx.Items {
		facts.discountCents += item.DiscountCents
		switch {
		case item.IsCashOut:
			facts.hasCashOutItem = true
			facts.itemCashOutCents += item.CashOutCents
			facts.itemActualGivenCents += orDefault(item.ActualGivenCents, item.CashOutCents)
			facts.itemCashOutFeeCents += item.ServiceFeeCents
		case item.IsCashIn:
			facts.hasCashInItem = true
			// For cash-in the "actual given" figure is the load delivered to
			// the customer's wallet, which is the principal unless the fee
			// was deducted from it.
			facts.itemCashInCents += orDefault(item.ActualGivenCents, item.CashOutCents)
			facts.itemCashInFeeCents += item.ServiceFeeCents
		default:
			facts.regularRevenueCents += item.SubtotalCents
		}
	}
	return facts
}

// resolveRevenue applies the revenue resolution policy: prefer the most
// specific stored figure, then reconstruct from parts, then degrade
// gracefully.
func resolveRevenue(tx domain.Transaction, facts serviceFacts) int64 {
	if !facts.hasService(tx) {
		return orDefault(tx.ActualRevenueCents, tx.TotalCents)
	}
	if tx.ActualRevenueCents != nil {
		return *tx.ActualRevenueCents
	}
	itemFees := facts.itemCashInFeeCents + facts.itemCashOutFeeCents
	if itemFees > 0 || facts.regularRevenueCents > 0 {
		return facts.regularRevenueCents + itemFees
	}
	return orDefault(tx.TotalServiceFeeCents, 0)
}

// resolveCashFlow produces the cash-in load, cash-out principal, and cash
// actually handed out for one transaction, preferring item-level figures and
// falling back to the transaction-level totals legacy records carry.
func resolveCashFlow(tx domain.Transaction, facts serviceFacts) (cashIn, cashOutPrincipal, actualGiven int64) {
	if facts.hasCashInItem {
		cashIn = facts.itemCashInCents
	} else if tx.HasCashIn {
		cashIn = orDefault(tx.TotalCashInCents, 0)
	}

	if facts.hasCashOutItem {
		cashOutPrincipal = facts.itemCashOutCents
		actualGiven = facts.itemActualGivenCents
	} else if tx.HasCashOut {
		cashOutPrincipal = orDefault(tx.TotalCashOutCents, 0)
		actualGiven = orDefault(tx.TotalActualGivenCents, cashOutPrincipal)
	}
	return cashIn, cashOutPrincipal, actualGiven
}

func orDefault(v *int64, fallback int64) int64 {
	if v != nil {
		return *v
	}
	return fallback
}
