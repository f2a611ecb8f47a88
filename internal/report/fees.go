package report

import "tindapos/backend/internal/domain"

// FeeSplit attributes a transaction's service fees to the cash-in and
// cash-out buckets.
type FeeSplit struct {
	CashInCents  int64
	CashOutCents int64
}

func (f FeeSplit) Total() int64 {
	return f.CashInCents + f.CashOutCents
}

// serviceFacts are the per-transaction intermediates the fee rules and the
// aggregator both need. Computed once per transaction in a single pass over
// its line items.
type serviceFacts struct {
	regularRevenueCents int64

	itemCashInCents      int64 // load amount delivered by cash-in lines
	itemCashOutCents     int64 // cash-out principal
	itemActualGivenCents int64 // cash physically handed out by cash-out lines
	itemCashInFeeCents   int64
	itemCashOutFeeCents  int64

	hasCashInItem  bool
	hasCashOutItem bool

	discountCents int64
}

func (f serviceFacts) hasCashIn(tx domain.Transaction) bool {
	return f.hasCashInItem || tx.HasCashIn
}

func (f serviceFacts) hasCashOut(tx domain.Transaction) bool {
	return f.hasCashOutItem || tx.HasCashOut
}

func (f serviceFacts) hasService(tx domain.Transaction) bool {
	return f.hasCashIn(tx) || f.hasCashOut(tx)
}

// feeRule inspects one transaction and either claims the fee attribution or
// passes to the next rule.
type feeRule func(tx domain.Transaction, facts serviceFacts) (FeeSplit, bool)

// feeRules is evaluated in order, first match wins. The ordering is
// deliberate: per-line fees are the precise source of truth, the
// transaction-level fee is next best, and the final rule reconstructs a fee
// from a historically stored actual revenue for legacy records that carry no
// fee breakdown at all.
var feeRules = []feeRule{feeFromItems, feeFromTransaction, feeFromActualRevenue}

// SplitFees runs the attribution rules for one transaction. Transactions with
// no e-wallet service component always get a zero split.
func SplitFees(tx domain.Transaction, facts serviceFacts) FeeSplit {
	if !facts.hasService(tx) {
		return FeeSplit{}
	}
	for _, rule := range feeRules {
		if split, ok := rule(tx, facts); ok {
			return split
		}
	}
	return FeeSplit{}
}

func feeFromItems(_ domain.Transaction, facts serviceFacts) (FeeSplit, bool) {
	if facts.itemCashInFeeCents == 0 && facts.itemCashOutFeeCents == 0 {
		return FeeSplit{}, false
	}
	return FeeSplit{
		CashInCents:  facts.itemCashInFeeCents,
		CashOutCents: facts.itemCashOutFeeCents,
	}, true
}

func feeFromTransaction(tx domain.Transaction, facts serviceFacts) (FeeSplit, bool) {
	if tx.TotalServiceFeeCents == nil || *tx.TotalServiceFeeCents <= 0 {
		return FeeSplit{}, false
	}
	return attribute(*tx.TotalServiceFeeCents, facts.hasCashIn(tx), facts.hasCashOut(tx)), true
}

func feeFromActualRevenue(tx domain.Transaction, facts serviceFacts) (FeeSplit, bool) {
	if tx.ActualRevenueCents == nil {
		return FeeSplit{}, false
	}
	fee := *tx.ActualRevenueCents - facts.regularRevenueCents
	if fee < 0 {
		fee = 0
	}
	return attribute(fee, facts.hasCashIn(tx), facts.hasCashOut(tx)), true
}

// attribute assigns a single fee figure to the direction(s) present. When a
// transaction carries both a cash-in and a cash-out there is no finer-grained
// data to split by, so the fee is divided evenly; with integer cents the
// cash-out side absorbs the odd centavo so the buckets always sum to fee.
func attribute(fee int64, hasCashIn bool, hasCashOut bool) FeeSplit {
	switch {
	case hasCashIn && hasCashOut:
		half := fee / 2
		return FeeSplit{CashInCents: half, CashOutCents: fee - half}
	case hasCashOut:
		return FeeSplit{CashOutCents: fee}
	case hasCashIn:
		return FeeSplit{CashInCents: fee}
	default:
		return FeeSplit{}
	}
}
