package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"tindapos/backend/internal/cache"
	"tindapos/backend/internal/domain"
	"tindapos/backend/internal/report"
	"tindapos/backend/internal/store"
	"tindapos/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

const dateLayout = "2006-01-02"

type Service struct {
	repo              store.Repository
	txCache           cache.TransactionCache
	cacheTTL          time.Duration
	defaultStoreID    string
	defaultFloatCents int64
}

func New(repo store.Repository, txCache cache.TransactionCache, cacheTTL time.Duration, defaultStoreID string, defaultFloatCents int64) *Service {
	if defaultStoreID == "" {
		defaultStoreID = "main-store"
	}
	if txCache == nil {
		txCache = cache.NoopTransactionCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}

	return &Service{
		repo:              repo,
		txCache:           txCache,
		cacheTTL:          cacheTTL,
		defaultStoreID:    defaultStoreID,
		defaultFloatCents: defaultFloatCents,
	}
}

// GenerateReport runs the full reporting pipeline for one window: fetch,
// filter, aggregate, reconcile. It also locks in today's opening float the
// first time business shows up for the day.
func (s *Service) GenerateReport(ctx context.Context, req domain.ReportRequest) (domain.ReportResponse, error) {
	if req.StoreID == "" {
		req.StoreID = s.defaultStoreID
	}
	period, err := normalizePeriod(req.Period)
	if err != nil {
		return domain.ReportResponse{}, err
	}
	staffFilter := strings.TrimSpace(req.StaffFilter)
	if staffFilter == "" {
		staffFilter = domain.StaffFilterAll
	}

	anchor := time.Now().UTC()
	if strings.TrimSpace(req.AnchorDate) != "" {
		parsed, err := time.Parse(dateLayout, req.AnchorDate)
		if err != nil {
			return domain.ReportResponse{}, fmt.Errorf("%w: anchor date must be YYYY-MM-DD", store.ErrInvalidInput)
		}
		anchor = parsed.UTC()
	}

	txs, fromCache, err := s.fetchTransactions(ctx, req.StoreID)
	if err != nil {
		return domain.ReportResponse{}, err
	}
	active := excludeVoided(txs)

	start, end := report.Window(period, anchor)
	filtered := report.Filter(active, period, anchor, staffFilter)
	stats := report.Aggregate(filtered)

	adjustments, err := s.repo.SumAdjustments(ctx, req.StoreID, start, end)
	if err != nil {
		log.Printf("[service] WARN: failed to sum adjustments store=%s: %v", req.StoreID, err)
		adjustments = 0
	}

	var opening int64
	if period == domain.PeriodDaily {
		opening, err = s.OpeningBalanceForDate(ctx, req.StoreID, anchor.Format(dateLayout))
	} else {
		opening, err = s.CurrentOpeningFloat(ctx, req.StoreID)
	}
	if err != nil {
		return domain.ReportResponse{}, err
	}

	drawer := report.Reconcile(stats, opening, adjustments, period)

	s.lockInTodayFloat(ctx, req.StoreID, active)

	return domain.ReportResponse{
		StoreID:     req.StoreID,
		Period:      period,
		WindowStart: start.Format(time.RFC3339),
		WindowEnd:   end.Format(time.RFC3339),
		StaffFilter: staffFilter,
		FromCache:   fromCache,
		Stats:       stats,
		Drawer:      drawer,
	}, nil
}

// Chart produces the trailing trend series for the store, always anchored at
// the current time regardless of any report anchor the user has selected.
func (s *Service) Chart(ctx context.Context, storeID string, period string) (domain.ChartResponse, error) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}
	period, err := normalizePeriod(period)
	if err != nil {
		return domain.ChartResponse{}, err
	}

	txs, _, err := s.fetchTransactions(ctx, storeID)
	if err != nil {
		return domain.ChartResponse{}, err
	}

	points := report.Project(excludeVoided(txs), period, time.Now().UTC())
	return domain.ChartResponse{StoreID: storeID, Period: period, Points: points}, nil
}

// fetchTransactions reads the store, falling back to the cached list when the
// store is unreachable. Successful reads refresh the cache best-effort.
func (s *Service) fetchTransactions(ctx context.Context, storeID string) ([]domain.Transaction, bool, error) {
	txs, err := s.repo.ListTransactions(ctx, storeID)
	if err != nil {
		cached, ok, cacheErr := s.txCache.GetAll(ctx, storeID)
		if cacheErr != nil {
			log.Printf("[service] WARN: transaction cache read failed store=%s: %v", storeID, cacheErr)
		}
		if ok {
			log.Printf("[service] WARN: store fetch failed (%v), serving %d cached transactions store=%s", err, len(cached), storeID)
			return cached, true, nil
		}
		return nil, false, err
	}

	if cacheErr := s.txCache.SetAll(ctx, storeID, txs, s.cacheTTL); cacheErr != nil {
		log.Printf("[service] WARN: transaction cache write failed store=%s: %v", storeID, cacheErr)
	}
	return txs, false, nil
}

// lockInTodayFloat persists today's opening float once at least one
// transaction exists for today, so that viewing today's report later shows
// the float that actually applied rather than whatever the setting has since
// become. Upserts are last-writer-wins keyed by date, so repeats are
// harmless.
func (s *Service) lockInTodayFloat(ctx context.Context, storeID string, txs []domain.Transaction) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	hasToday := false
	for _, tx := range txs {
		if tx.HasValidTimestamp() && !tx.Timestamp.Before(dayStart) && tx.Timestamp.Before(dayEnd) {
			hasToday = true
			break
		}
	}
	if !hasToday {
		return
	}

	current, err := s.CurrentOpeningFloat(ctx, storeID)
	if err != nil {
		log.Printf("[service] WARN: failed to read opening float store=%s: %v", storeID, err)
		return
	}
	err = s.repo.UpsertDailyFloat(ctx, domain.DailyFloat{
		StoreID:    storeID,
		Date:       dayStart.Format(dateLayout),
		FloatCents: current,
		SavedAt:    now,
	})
	if err != nil {
		log.Printf("[service] WARN: failed to lock in daily float store=%s: %v", storeID, err)
	}
}

// OpeningBalanceForDate returns the float that applies to the given calendar
// date: the locked-in historical value for past dates when one exists,
// otherwise the current setting. Today and future dates always use the
// current setting since it may still change intraday.
func (s *Service) OpeningBalanceForDate(ctx context.Context, storeID string, date string) (int64, error) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return 0, fmt.Errorf("%w: date must be YYYY-MM-DD", store.ErrInvalidInput)
	}

	today := time.Now().UTC().Format(dateLayout)
	if date < today {
		saved, err := s.repo.GetDailyFloat(ctx, storeID, date)
		if err == nil {
			return saved.FloatCents, nil
		}
		if !isNotFound(err) {
			return 0, err
		}
	}
	return s.CurrentOpeningFloat(ctx, storeID)
}

func (s *Service) CurrentOpeningFloat(ctx context.Context, storeID string) (int64, error) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}
	cents, found, err := s.repo.GetOpeningFloat(ctx, storeID)
	if err != nil {
		return 0, err
	}
	if !found {
		return s.defaultFloatCents, nil
	}
	return cents, nil
}

func (s *Service) SetOpeningFloat(ctx context.Context, req domain.FloatUpdateRequest) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return fmt.Errorf("admin role required")
	}
	if req.StoreID == "" {
		req.StoreID = s.defaultStoreID
	}
	if req.FloatCents < 0 {
		return store.ErrInvalidInput
	}

	if err := s.repo.SetOpeningFloat(ctx, req.StoreID, req.FloatCents); err != nil {
		return err
	}
	s.logAudit(ctx, req.StoreID, "float_set", "setting", "opening_float", fmt.Sprintf("float_cents=%d", req.FloatCents))
	return nil
}

// Checkout finalizes a sale: regular merchandise lines plus optional e-wallet
// service lines, priced and recorded in one transaction.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	if req.StoreID == "" {
		req.StoreID = s.defaultStoreID
	}
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.PaymentCash
	}
	if !isSupportedPaymentMethod(req.PaymentMethod) {
		return domain.CheckoutResponse{}, store.ErrInvalidInput
	}
	if req.TaxRatePercent < 0 || req.TaxRatePercent > 100 {
		return domain.CheckoutResponse{}, store.ErrInvalidInput
	}
	if len(req.Lines) == 0 {
		return domain.CheckoutResponse{}, store.ErrInvalidInput
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = xid.New("idem")
	}

	if existing, err := s.repo.FindTransactionByIdempotency(ctx, req.IdempotencyKey); err == nil {
		return domain.CheckoutResponse{Transaction: *existing, Duplicate: true}, nil
	} else if !isNotFound(err) {
		return domain.CheckoutResponse{}, err
	}

	built, err := buildTransactionLines(req.Lines)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	taxCents := int64(math.Round(float64(built.regularNetCents) * req.TaxRatePercent / 100))
	totalCents := built.regularNetCents + taxCents + built.servicePaidCents

	actor, _ := ActorFromContext(ctx)
	processedBy := actor.Username
	if processedBy == "" {
		processedBy = domain.UnknownStaff
	}

	tx := domain.Transaction{
		ID:             xid.New("tx"),
		StoreID:        req.StoreID,
		IdempotencyKey: req.IdempotencyKey,
		Timestamp:      time.Now().UTC(),
		ProcessedBy:    processedBy,
		PaymentMethod:  req.PaymentMethod,
		TotalCents:     totalCents,
		TaxCents:       taxCents,
		Items:          built.items,
		Status:         domain.TxStatusPaid,
		HasCashIn:      built.hasCashIn,
		HasCashOut:     built.hasCashOut,
	}

	if built.hasCashIn || built.hasCashOut {
		// Recognized income for a service transaction is merchandise plus
		// fees, never the principal passing through.
		actualRevenue := built.regularNetCents + taxCents + built.totalFeeCents
		tx.ActualRevenueCents = &actualRevenue
		tx.TotalServiceFeeCents = &built.totalFeeCents
	}
	if built.hasCashIn {
		tx.TotalCashInCents = &built.cashInLoadCents
	}
	if built.hasCashOut {
		tx.TotalCashOutCents = &built.cashOutPrincipalCents
		tx.TotalActualGivenCents = &built.cashOutGivenCents
	}
	if built.discountCents > 0 {
		tx.DiscountAuthorizedBy = strings.TrimSpace(req.DiscountAuthorizedBy)
		if tx.DiscountAuthorizedBy == "" {
			tx.DiscountAuthorizedBy = processedBy
		}
	}

	created, err := s.repo.CreateTransaction(ctx, tx)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	s.logAudit(ctx, req.StoreID, "checkout", "transaction", created.ID,
		fmt.Sprintf("total=%d,payment=%s,discount=%d,cash_in=%t,cash_out=%t",
			created.TotalCents, created.PaymentMethod, built.discountCents, built.hasCashIn, built.hasCashOut))

	return domain.CheckoutResponse{Transaction: *created}, nil
}

type builtLines struct {
	items                 []domain.LineItem
	regularNetCents       int64
	servicePaidCents      int64
	totalFeeCents         int64
	cashInLoadCents       int64
	cashOutPrincipalCents int64
	cashOutGivenCents     int64
	discountCents         int64
	hasCashIn             bool
	hasCashOut            bool
}

func buildTransactionLines(lines []domain.CheckoutLine) (builtLines, error) {
	var built builtLines
	built.items = make([]domain.LineItem, 0, len(lines))

	for _, line := range lines {
		switch strings.TrimSpace(line.Service) {
		case "":
			if line.Quantity < 1 || line.UnitPriceCents < 1 || line.DiscountCents < 0 {
				return builtLines{}, store.ErrInvalidInput
			}
			gross := int64(line.Quantity) * line.UnitPriceCents
			if line.DiscountCents > gross {
				return builtLines{}, store.ErrInvalidInput
			}
			net := gross - line.DiscountCents
			built.regularNetCents += net
			built.discountCents += line.DiscountCents
			built.items = append(built.items, domain.LineItem{
				Name:          strings.TrimSpace(line.Name),
				Quantity:      line.Quantity,
				SubtotalCents: net,
				DiscountCents: line.DiscountCents,
			})

		case domain.ServiceCashIn, domain.ServiceCashOut:
			item, paid, err := buildServiceLine(line)
			if err != nil {
				return builtLines{}, err
			}
			built.servicePaidCents += paid
			built.totalFeeCents += item.ServiceFeeCents
			if item.IsCashIn {
				if built.hasCashIn {
					return builtLines{}, store.ErrInvalidInput
				}
				built.hasCashIn = true
				built.cashInLoadCents = *item.ActualGivenCents
			} else {
				if built.hasCashOut {
					return builtLines{}, store.ErrInvalidInput
				}
				built.hasCashOut = true
				built.cashOutPrincipalCents = item.CashOutCents
				built.cashOutGivenCents = *item.ActualGivenCents
			}
			built.items = append(built.items, item)

		default:
			return builtLines{}, store.ErrInvalidInput
		}
	}

	return built, nil
}

// buildServiceLine prices one e-wallet service line. Under the counter fee
// mode the fee is charged on top of the principal; under the deducted mode it
// is taken out of the principal, so the amount actually delivered is
// principal minus fee. Returns the line and the amount the customer pays.
func buildServiceLine(line domain.CheckoutLine) (domain.LineItem, int64, error) {
	if line.PrincipalCents < 1 || line.FeeCents < 0 {
		return domain.LineItem{}, 0, store.ErrInvalidInput
	}
	mode := strings.TrimSpace(line.FeeMode)
	if mode == "" {
		mode = domain.FeeModeCounter
	}

	var delivered, paid int64
	switch mode {
	case domain.FeeModeCounter:
		delivered = line.PrincipalCents
		paid = line.PrincipalCents + line.FeeCents
	case domain.FeeModeDeducted:
		if line.FeeCents > line.PrincipalCents {
			return domain.LineItem{}, 0, store.ErrInvalidInput
		}
		delivered = line.PrincipalCents - line.FeeCents
		paid = line.PrincipalCents
	default:
		return domain.LineItem{}, 0, store.ErrInvalidInput
	}

	name := strings.TrimSpace(line.Name)
	item := domain.LineItem{
		Quantity:         1,
		CashOutCents:     line.PrincipalCents,
		ActualGivenCents: &delivered,
		ServiceFeeCents:  line.FeeCents,
	}
	if line.Service == domain.ServiceCashIn {
		item.IsCashIn = true
		if name == "" {
			name = "E-Wallet Cash-In"
		}
	} else {
		item.IsCashOut = true
		if name == "" {
			name = "E-Wallet Cash-Out"
		}
	}
	item.Name = name
	return item, paid, nil
}

func (s *Service) VoidTransaction(ctx context.Context, req domain.VoidTransactionRequest) (domain.VoidTransactionResponse, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.VoidTransactionResponse{}, fmt.Errorf("admin role required")
	}
	if req.TransactionID == "" {
		return domain.VoidTransactionResponse{}, store.ErrInvalidInput
	}
	if req.Reason == "" {
		req.Reason = "unspecified"
	}

	voidedAt := time.Now().UTC()
	tx, err := s.repo.VoidTransaction(ctx, req.TransactionID, req.Reason, voidedAt)
	if err != nil {
		return domain.VoidTransactionResponse{}, err
	}

	s.logAudit(ctx, tx.StoreID, "void_transaction", "transaction", tx.ID, req.Reason)

	return domain.VoidTransactionResponse{
		TransactionID: tx.ID,
		Status:        tx.Status,
		VoidedAt:      voidedAt.Format(time.RFC3339),
	}, nil
}

func (s *Service) ListTransactions(ctx context.Context, storeID string) (domain.TransactionListResponse, error) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}
	txs, _, err := s.fetchTransactions(ctx, storeID)
	if err != nil {
		return domain.TransactionListResponse{}, err
	}
	return domain.TransactionListResponse{Transactions: txs}, nil
}

func (s *Service) RecordAdjustment(ctx context.Context, req domain.AdjustmentCreateRequest) (domain.CashAdjustment, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.CashAdjustment{}, fmt.Errorf("authentication required")
	}
	if req.StoreID == "" {
		req.StoreID = s.defaultStoreID
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if req.AmountCents == 0 || req.Reason == "" {
		return domain.CashAdjustment{}, store.ErrInvalidInput
	}

	adj, err := s.repo.CreateAdjustment(ctx, domain.CashAdjustment{
		ID:          xid.New("adj"),
		StoreID:     req.StoreID,
		AmountCents: req.AmountCents,
		Reason:      req.Reason,
		RecordedBy:  actor.Username,
		RecordedAt:  time.Now().UTC(),
	})
	if err != nil {
		return domain.CashAdjustment{}, err
	}

	s.logAudit(ctx, req.StoreID, "cash_adjustment", "adjustment", adj.ID, fmt.Sprintf("amount=%d,reason=%s", adj.AmountCents, adj.Reason))
	return *adj, nil
}

func (s *Service) ListAdjustments(ctx context.Context, storeID string, date string) (domain.AdjustmentListResponse, error) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}

	var from time.Time
	if strings.TrimSpace(date) == "" {
		now := time.Now().UTC()
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.Parse(dateLayout, date)
		if err != nil {
			return domain.AdjustmentListResponse{}, store.ErrInvalidInput
		}
		from = parsed.UTC()
	}
	to := from.AddDate(0, 0, 1)

	adjustments, err := s.repo.ListAdjustments(ctx, storeID, from, to, 200)
	if err != nil {
		return domain.AdjustmentListResponse{}, err
	}
	return domain.AdjustmentListResponse{Adjustments: adjustments}, nil
}

func (s *Service) ListStaff(ctx context.Context, storeID string) (domain.StaffListResponse, error) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}
	staff, err := s.repo.ListStaff(ctx, storeID)
	if err != nil {
		return domain.StaffListResponse{}, err
	}
	return domain.StaffListResponse{Staff: staff}, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, storeID string, date string, limit int) ([]domain.AuditLog, error) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}
	if limit < 1 {
		limit = 100
	}

	var from time.Time
	if strings.TrimSpace(date) == "" {
		from = time.Now().UTC().Add(-24 * time.Hour)
	} else {
		parsed, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, store.ErrInvalidInput
		}
		from = parsed.UTC()
	}
	to := from.Add(24 * time.Hour)

	return s.repo.ListAuditLogs(ctx, storeID, from, to, limit)
}

func (s *Service) logAudit(ctx context.Context, storeID string, action string, entityType string, entityID string, detail string) {
	actor, _ := ActorFromContext(ctx)
	entry := domain.AuditLog{
		ID:            xid.New("audit"),
		StoreID:       storeID,
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		log.Printf("[service] WARN: failed to write audit log action=%s: %v", action, err)
	}
}

func normalizePeriod(period string) (string, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	switch period {
	case "":
		return domain.PeriodDaily, nil
	case domain.PeriodDaily, domain.PeriodWeekly, domain.PeriodMonthly, domain.PeriodYearly:
		return period, nil
	default:
		return "", fmt.Errorf("%w: unknown period %q", store.ErrInvalidInput, period)
	}
}

func isSupportedPaymentMethod(method string) bool {
	switch method {
	case domain.PaymentCash, domain.PaymentCard, domain.PaymentGCash, domain.PaymentGCashMaya:
		return true
	}
	return false
}

func excludeVoided(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Status == domain.TxStatusVoided {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
