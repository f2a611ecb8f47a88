package memory

import (
	"context"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tindapos/backend/internal/domain"
	"tindapos/backend/internal/store"
	"tindapos/backend/internal/xid"
)

// Store is an in-memory Repository for dev runs and tests.
type Store struct {
	mu                 sync.RWMutex
	transactionsByID   map[string]*domain.Transaction
	transactionsByIdem map[string]*domain.Transaction
	txOrder            []string
	dailyFloats        map[string]domain.DailyFloat // key: storeID + "|" + date
	openingFloats      map[string]int64
	adjustmentsByID    map[string]domain.CashAdjustment
	auditLogs          []domain.AuditLog
	usersByUsername    map[string]domain.UserAccount

	// failFetches simulates an unreachable backing store for cache-fallback
	// tests.
	failFetches bool
}

func New() *Store {
	return &Store{
		transactionsByID:   make(map[string]*domain.Transaction),
		transactionsByIdem: make(map[string]*domain.Transaction),
		dailyFloats:        make(map[string]domain.DailyFloat),
		openingFloats:      make(map[string]int64),
		adjustmentsByID:    make(map[string]domain.CashAdjustment),
		usersByUsername:    make(map[string]domain.UserAccount),
	}
}

// NewSeeded returns a store preloaded with dev credentials.
func NewSeeded() *Store {
	s := New()
	s.usersByUsername = seedUsers()
	return s
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD
// environment variables, with hardcoded dev defaults when unset. Production
// deployments use PostgreSQL (DATABASE_URL) and never hit this path.
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"cashier", cashierPwd, "cashier"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// SetFailFetches toggles simulated fetch failures. Test helper.
func (s *Store) SetFailFetches(fail bool) {
	s.mu.Lock()
	s.failFetches = fail
	s.mu.Unlock()
}

func (s *Store) ListTransactions(_ context.Context, storeID string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failFetches {
		return nil, store.ErrNotFound
	}

	out := make([]domain.Transaction, 0, len(s.txOrder))
	for _, id := range s.txOrder {
		tx := s.transactionsByID[id]
		if tx == nil || (storeID != "" && tx.StoreID != storeID) {
			continue
		}
		out = append(out, cloneTransaction(*tx))
	}
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	if tx.ID == "" || len(tx.Items) == 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactionsByID[tx.ID]; exists {
		return nil, store.ErrInvalidInput
	}
	if tx.IdempotencyKey != "" {
		if _, exists := s.transactionsByIdem[tx.IdempotencyKey]; exists {
			return nil, store.ErrInvalidInput
		}
	}

	stored := cloneTransaction(tx)
	s.transactionsByID[tx.ID] = &stored
	if tx.IdempotencyKey != "" {
		s.transactionsByIdem[tx.IdempotencyKey] = &stored
	}
	s.txOrder = append(s.txOrder, tx.ID)

	created := cloneTransaction(stored)
	return &created, nil
}

func (s *Store) FindTransactionByID(_ context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.transactionsByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := cloneTransaction(*tx)
	return &found, nil
}

func (s *Store) FindTransactionByIdempotency(_ context.Context, key string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.transactionsByIdem[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := cloneTransaction(*tx)
	return &found, nil
}

func (s *Store) VoidTransaction(_ context.Context, id string, reason string, at time.Time) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactionsByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if tx.Status == domain.TxStatusVoided {
		return nil, store.ErrInvalidInput
	}

	tx.Status = domain.TxStatusVoided
	tx.VoidReason = reason
	voidedAt := at
	tx.VoidedAt = &voidedAt

	voided := cloneTransaction(*tx)
	return &voided, nil
}

func (s *Store) ListStaff(_ context.Context, storeID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]struct{}{}
	for _, tx := range s.transactionsByID {
		if storeID != "" && tx.StoreID != storeID {
			continue
		}
		name := strings.TrimSpace(tx.ProcessedBy)
		if name == "" {
			name = domain.UnknownStaff
		}
		seen[name] = struct{}{}
	}

	staff := make([]string, 0, len(seen))
	for name := range seen {
		staff = append(staff, name)
	}
	sort.Strings(staff)
	return staff, nil
}

func floatKey(storeID string, date string) string {
	return storeID + "|" + date
}

func (s *Store) GetDailyFloat(_ context.Context, storeID string, date string) (*domain.DailyFloat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.dailyFloats[floatKey(storeID, date)]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := f
	return &found, nil
}

func (s *Store) UpsertDailyFloat(_ context.Context, f domain.DailyFloat) error {
	if f.StoreID == "" || f.Date == "" {
		return store.ErrInvalidInput
	}
	s.mu.Lock()
	s.dailyFloats[floatKey(f.StoreID, f.Date)] = f
	s.mu.Unlock()
	return nil
}

func (s *Store) GetOpeningFloat(_ context.Context, storeID string) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cents, ok := s.openingFloats[storeID]
	return cents, ok, nil
}

func (s *Store) SetOpeningFloat(_ context.Context, storeID string, floatCents int64) error {
	if storeID == "" || floatCents < 0 {
		return store.ErrInvalidInput
	}
	s.mu.Lock()
	s.openingFloats[storeID] = floatCents
	s.mu.Unlock()
	return nil
}

func (s *Store) CreateAdjustment(_ context.Context, adj domain.CashAdjustment) (*domain.CashAdjustment, error) {
	if adj.ID == "" {
		adj.ID = xid.New("adj")
	}
	if adj.RecordedAt.IsZero() {
		adj.RecordedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.adjustmentsByID[adj.ID] = adj
	s.mu.Unlock()

	created := adj
	return &created, nil
}

func (s *Store) ListAdjustments(_ context.Context, storeID string, from time.Time, to time.Time, limit int) ([]domain.CashAdjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CashAdjustment, 0, len(s.adjustmentsByID))
	for _, adj := range s.adjustmentsByID {
		if storeID != "" && adj.StoreID != storeID {
			continue
		}
		if adj.RecordedAt.Before(from) || !adj.RecordedAt.Before(to) {
			continue
		}
		out = append(out, adj)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) SumAdjustments(_ context.Context, storeID string, from time.Time, to time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := int64(0)
	for _, adj := range s.adjustmentsByID {
		if storeID != "" && adj.StoreID != storeID {
			continue
		}
		if adj.RecordedAt.Before(from) || !adj.RecordedAt.Before(to) {
			continue
		}
		total += adj.AmountCents
	}
	return total, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.auditLogs = append(s.auditLogs, entry)
	s.mu.Unlock()
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, storeID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AuditLog, 0, len(s.auditLogs))
	for _, entry := range s.auditLogs {
		if storeID != "" && entry.StoreID != storeID {
			continue
		}
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" {
		return store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrInvalidInput
	}
	user.Username = username
	s.usersByUsername[username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))

	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.usersByUsername[username]
	if !ok {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func cloneTransaction(tx domain.Transaction) domain.Transaction {
	cloned := tx
	cloned.Items = make([]domain.LineItem, len(tx.Items))
	copy(cloned.Items, tx.Items)
	for i := range cloned.Items {
		cloned.Items[i].ActualGivenCents = cloneInt64(tx.Items[i].ActualGivenCents)
	}
	cloned.VoidedAt = cloneTime(tx.VoidedAt)
	cloned.ActualRevenueCents = cloneInt64(tx.ActualRevenueCents)
	cloned.TotalCashInCents = cloneInt64(tx.TotalCashInCents)
	cloned.TotalCashOutCents = cloneInt64(tx.TotalCashOutCents)
	cloned.TotalActualGivenCents = cloneInt64(tx.TotalActualGivenCents)
	cloned.TotalServiceFeeCents = cloneInt64(tx.TotalServiceFeeCents)
	return cloned
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
