package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tindapos/backend/internal/domain"
	"tindapos/backend/internal/store"
	"tindapos/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const transactionColumns = `
	id, store_id, idempotency_key, ts, processed_by, payment_method,
	total_cents, tax_cents, items, status, void_reason, voided_at,
	actual_revenue_cents, total_cash_in_cents, total_cash_out_cents,
	total_actual_given_cents, total_service_fee_cents,
	has_cash_in, has_cash_out, discount_authorized_by`

func (s *Store) ListTransactions(ctx context.Context, storeID string) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE store_id = $1
		ORDER BY ts
	`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := make([]domain.Transaction, 0, 256)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		tx         domain.Transaction
		idemKey    sql.NullString
		voidReason sql.NullString
		voidedAt   sql.NullTime
		itemsJSON  []byte
		authorizer sql.NullString
	)
	err := row.Scan(
		&tx.ID, &tx.StoreID, &idemKey, &tx.Timestamp, &tx.ProcessedBy, &tx.PaymentMethod,
		&tx.TotalCents, &tx.TaxCents, &itemsJSON, &tx.Status, &voidReason, &voidedAt,
		&tx.ActualRevenueCents, &tx.TotalCashInCents, &tx.TotalCashOutCents,
		&tx.TotalActualGivenCents, &tx.TotalServiceFeeCents,
		&tx.HasCashIn, &tx.HasCashOut, &authorizer,
	)
	if err != nil {
		return nil, err
	}

	tx.IdempotencyKey = idemKey.String
	tx.VoidReason = voidReason.String
	if voidedAt.Valid {
		at := voidedAt.Time
		tx.VoidedAt = &at
	}
	tx.DiscountAuthorizedBy = authorizer.String

	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &tx.Items); err != nil {
			return nil, err
		}
	}
	return &tx, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	if tx.ID == "" || tx.StoreID == "" || len(tx.Items) == 0 {
		return nil, store.ErrInvalidInput
	}

	itemsJSON, err := json.Marshal(tx.Items)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
	`,
		tx.ID, tx.StoreID, nullString(tx.IdempotencyKey), tx.Timestamp, tx.ProcessedBy, tx.PaymentMethod,
		tx.TotalCents, tx.TaxCents, itemsJSON, tx.Status, nullString(tx.VoidReason), tx.VoidedAt,
		tx.ActualRevenueCents, tx.TotalCashInCents, tx.TotalCashOutCents,
		tx.TotalActualGivenCents, tx.TotalServiceFeeCents,
		tx.HasCashIn, tx.HasCashOut, nullString(tx.DiscountAuthorizedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	created := tx
	return &created, nil
}

func (s *Store) FindTransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = $1
	`, id)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return tx, nil
}

func (s *Store) FindTransactionByIdempotency(ctx context.Context, key string) (*domain.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE idempotency_key = $1
	`, key)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return tx, nil
}

func (s *Store) VoidTransaction(ctx context.Context, id string, reason string, at time.Time) (*domain.Transaction, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET status = $2, void_reason = $3, voided_at = $4
		WHERE id = $1 AND status <> $2
	`, id, domain.TxStatusVoided, reason, at)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Either missing or already voided; disambiguate for the caller.
		if _, err := s.FindTransactionByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, store.ErrInvalidInput
	}

	return s.FindTransactionByID(ctx, id)
}

func (s *Store) ListStaff(ctx context.Context, storeID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT COALESCE(NULLIF(processed_by, ''), 'Unknown')
		FROM transactions
		WHERE store_id = $1
		ORDER BY 1
	`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	staff := make([]string, 0, 16)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		staff = append(staff, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return staff, nil
}

func (s *Store) GetDailyFloat(ctx context.Context, storeID string, date string) (*domain.DailyFloat, error) {
	var f domain.DailyFloat
	err := s.db.QueryRowContext(ctx, `
		SELECT store_id, date, float_cents, saved_at
		FROM daily_floats
		WHERE store_id = $1 AND date = $2
	`, storeID, date).Scan(&f.StoreID, &f.Date, &f.FloatCents, &f.SavedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (s *Store) UpsertDailyFloat(ctx context.Context, f domain.DailyFloat) error {
	if f.StoreID == "" || f.Date == "" {
		return store.ErrInvalidInput
	}
	if f.SavedAt.IsZero() {
		f.SavedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_floats (store_id, date, float_cents, saved_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (store_id, date)
		DO UPDATE SET float_cents = EXCLUDED.float_cents, saved_at = EXCLUDED.saved_at
	`, f.StoreID, f.Date, f.FloatCents, f.SavedAt)
	return err
}

func (s *Store) GetOpeningFloat(ctx context.Context, storeID string) (int64, bool, error) {
	var cents int64
	err := s.db.QueryRowContext(ctx, `
		SELECT opening_float_cents FROM store_settings WHERE store_id = $1
	`, storeID).Scan(&cents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return cents, true, nil
}

func (s *Store) SetOpeningFloat(ctx context.Context, storeID string, floatCents int64) error {
	if storeID == "" || floatCents < 0 {
		return store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO store_settings (store_id, opening_float_cents, updated_at)
		VALUES ($1,$2,now())
		ON CONFLICT (store_id)
		DO UPDATE SET opening_float_cents = EXCLUDED.opening_float_cents, updated_at = now()
	`, storeID, floatCents)
	return err
}

func (s *Store) CreateAdjustment(ctx context.Context, adj domain.CashAdjustment) (*domain.CashAdjustment, error) {
	if adj.ID == "" {
		adj.ID = xid.New("adj")
	}
	if adj.RecordedAt.IsZero() {
		adj.RecordedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cash_adjustments (id, store_id, amount_cents, reason, recorded_by, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, adj.ID, adj.StoreID, adj.AmountCents, adj.Reason, adj.RecordedBy, adj.RecordedAt)
	if err != nil {
		return nil, err
	}
	created := adj
	return &created, nil
}

func (s *Store) ListAdjustments(ctx context.Context, storeID string, from time.Time, to time.Time, limit int) ([]domain.CashAdjustment, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, store_id, amount_cents, reason, recorded_by, recorded_at
		FROM cash_adjustments
		WHERE store_id = $1 AND recorded_at >= $2 AND recorded_at < $3
		ORDER BY recorded_at DESC
		LIMIT $4
	`, storeID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	adjustments := make([]domain.CashAdjustment, 0, limit)
	for rows.Next() {
		var adj domain.CashAdjustment
		if err := rows.Scan(&adj.ID, &adj.StoreID, &adj.AmountCents, &adj.Reason, &adj.RecordedBy, &adj.RecordedAt); err != nil {
			return nil, err
		}
		adjustments = append(adjustments, adj)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return adjustments, nil
}

func (s *Store) SumAdjustments(ctx context.Context, storeID string, from time.Time, to time.Time) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM cash_adjustments
		WHERE store_id = $1 AND recorded_at >= $2 AND recorded_at < $3
	`, storeID, from, to).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, store_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, entry.ID, entry.StoreID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, storeID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, store_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE store_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC
		LIMIT $4
	`, storeID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.StoreID, &entry.ActorUsername, &entry.ActorRole, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" {
		return store.ErrInvalidInput
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidInput
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $2 WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
