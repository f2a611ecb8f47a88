package domain

import "time"

// All monetary amounts are int64 centavos.

// LineItem is one line of a finalized sale. Regular merchandise lines carry a
// subtotal; e-wallet service lines (cash-in / cash-out) carry a principal
// amount, the cash physically handed over, and the service fee charged.
type LineItem struct {
	Name             string `json:"name"`
	Quantity         int    `json:"quantity"`
	SubtotalCents    int64  `json:"subtotal_cents"`
	IsCashIn         bool   `json:"is_cash_in,omitempty"`
	IsCashOut        bool   `json:"is_cash_out,omitempty"`
	CashOutCents     int64  `json:"cash_out_cents,omitempty"`
	ActualGivenCents *int64 `json:"actual_given_cents,omitempty"`
	ServiceFeeCents  int64  `json:"service_fee_cents,omitempty"`
	DiscountCents    int64  `json:"discount_cents,omitempty"`
}

// IsService reports whether the line is an e-wallet service rather than
// merchandise.
func (l LineItem) IsService() bool {
	return l.IsCashIn || l.IsCashOut
}

// Transaction is a finalized sale, read-only once created. The optional
// transaction-level totals exist because older records stored aggregate
// figures without a per-line breakdown.
type Transaction struct {
	ID             string     `json:"id"`
	StoreID        string     `json:"store_id"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
	ProcessedBy    string     `json:"processed_by"`
	PaymentMethod  string     `json:"payment_method"`
	TotalCents     int64      `json:"total_cents"`
	TaxCents       int64      `json:"tax_cents"`
	Items          []LineItem `json:"items"`
	Status         string     `json:"status"`
	VoidReason     string     `json:"void_reason,omitempty"`
	VoidedAt       *time.Time `json:"voided_at,omitempty"`

	ActualRevenueCents    *int64 `json:"actual_revenue_cents,omitempty"`
	TotalCashInCents      *int64 `json:"total_cash_in_cents,omitempty"`
	TotalCashOutCents     *int64 `json:"total_cash_out_cents,omitempty"`
	TotalActualGivenCents *int64 `json:"total_actual_given_cents,omitempty"`
	TotalServiceFeeCents  *int64 `json:"total_service_fee_cents,omitempty"`
	HasCashIn             bool   `json:"has_cash_in,omitempty"`
	HasCashOut            bool   `json:"has_cash_out,omitempty"`
	DiscountAuthorizedBy  string `json:"discount_authorized_by,omitempty"`
}

// HasValidTimestamp reports whether the record carried a parseable timestamp.
// Records decoded from legacy payloads may not; they still aggregate, but no
// period window can include them.
func (t Transaction) HasValidTimestamp() bool {
	return !t.Timestamp.IsZero()
}

// StatsResult is the output of one aggregation pass. Ephemeral, never
// persisted.
type StatsResult struct {
	TotalSalesCents         int64            `json:"total_sales_cents"`
	TotalTaxCents           int64            `json:"total_tax_cents"`
	TotalTransactions       int              `json:"total_transactions"`
	TotalItems              int              `json:"total_items"`
	AverageTransactionCents int64            `json:"average_transaction_cents"`
	SalesByUser             map[string]int64 `json:"sales_by_user"`
	SalesByPaymentMethod    map[string]int64 `json:"sales_by_payment_method"`

	TotalCashOutCents     int64 `json:"total_cash_out_cents"`
	TotalActualGivenCents int64 `json:"total_actual_given_cents"`
	TotalServiceFeeCents  int64 `json:"total_service_fee_cents"`
	TotalCashInCents      int64 `json:"total_cash_in_cents"`
	CashInFeeCents        int64 `json:"cash_in_fee_cents"`
	CashOutFeeCents       int64 `json:"cash_out_fee_cents"`
	CashInPaidWithCash    int64 `json:"cash_in_paid_with_cash_cents"`
	CashOutPaidWithCash   int64 `json:"cash_out_paid_with_cash_cents"`

	ItemsSoldByName    map[string]int   `json:"items_sold_by_name"`
	ItemsRevenueByName map[string]int64 `json:"items_revenue_by_name"`

	TotalDiscountCents     int64            `json:"total_discount_cents"`
	DiscountedTransactions int              `json:"discounted_transactions"`
	DiscountsByStaff       map[string]int64 `json:"discounts_by_staff"`
	AverageDiscountCents   int64            `json:"average_discount_cents"`
}

// DrawerSummary reconciles aggregated sales against the physical drawer.
// ClosingBalanceCents is only set for a daily period; multi-day periods report
// net collection assuming the float is reset each morning.
type DrawerSummary struct {
	Period              string `json:"period"`
	OpeningBalanceCents int64  `json:"opening_balance_cents"`
	CashSalesCents      int64  `json:"cash_sales_cents"`
	CashInPaidWithCash  int64  `json:"cash_in_paid_with_cash_cents"`
	CashOutPaidWithCash int64  `json:"cash_out_paid_with_cash_cents"`
	CashOutGivenCents   int64  `json:"cash_out_given_cents"`
	AdjustmentCents     int64  `json:"adjustment_cents"`
	ClosingBalanceCents *int64 `json:"closing_balance_cents,omitempty"`
	ToCollectCents      int64  `json:"to_collect_cents"`
}

// ChartPoint is one bucket of a trailing trend series.
type ChartPoint struct {
	Label       string    `json:"label"`
	FullLabel   string    `json:"full_label"`
	ValueCents  int64     `json:"value_cents"`
	BucketStart time.Time `json:"bucket_start"`
}

// DailyFloat is a locked-in opening balance for one calendar date.
type DailyFloat struct {
	StoreID    string    `json:"store_id"`
	Date       string    `json:"date"`
	FloatCents int64     `json:"float_cents"`
	SavedAt    time.Time `json:"saved_at"`
}

// CashAdjustment is a signed manual drawer movement (positive = cash added).
type CashAdjustment struct {
	ID          string    `json:"id"`
	StoreID     string    `json:"store_id"`
	AmountCents int64     `json:"amount_cents"`
	Reason      string    `json:"reason"`
	RecordedBy  string    `json:"recorded_by"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type AdjustmentCreateRequest struct {
	StoreID     string `json:"store_id"`
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason"`
}

type AdjustmentListResponse struct {
	Adjustments []CashAdjustment `json:"adjustments"`
}

// CheckoutLine in a request is either merchandise (name, qty, unit price) or
// an e-wallet service (direction, principal, fee, fee mode).
type CheckoutLine struct {
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	DiscountCents  int64  `json:"discount_cents"`

	Service        string `json:"service,omitempty"`
	PrincipalCents int64  `json:"principal_cents,omitempty"`
	FeeCents       int64  `json:"fee_cents,omitempty"`
	FeeMode        string `json:"fee_mode,omitempty"`
}

type CheckoutRequest struct {
	StoreID              string         `json:"store_id"`
	IdempotencyKey       string         `json:"idempotency_key"`
	PaymentMethod        string         `json:"payment_method"`
	TaxRatePercent       float64        `json:"tax_rate_percent"`
	DiscountAuthorizedBy string         `json:"discount_authorized_by,omitempty"`
	Lines                []CheckoutLine `json:"lines"`
}

type CheckoutResponse struct {
	Transaction Transaction `json:"transaction"`
	Duplicate   bool        `json:"duplicate"`
}

type VoidTransactionRequest struct {
	TransactionID string `json:"transaction_id"`
	Reason        string `json:"reason"`
}

type VoidTransactionResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	VoidedAt      string `json:"voided_at"`
}

// ReportRequest selects the window and staff scope for a summary report.
type ReportRequest struct {
	StoreID     string `json:"store_id"`
	Period      string `json:"period"`
	AnchorDate  string `json:"anchor_date"`
	StaffFilter string `json:"staff_filter"`
}

type ReportResponse struct {
	StoreID     string        `json:"store_id"`
	Period      string        `json:"period"`
	WindowStart string        `json:"window_start"`
	WindowEnd   string        `json:"window_end"`
	StaffFilter string        `json:"staff_filter"`
	FromCache   bool          `json:"from_cache,omitempty"`
	Stats       StatsResult   `json:"stats"`
	Drawer      DrawerSummary `json:"drawer"`
}

type ChartResponse struct {
	StoreID string       `json:"store_id"`
	Period  string       `json:"period"`
	Points  []ChartPoint `json:"points"`
}

type TransactionListResponse struct {
	Transactions []Transaction `json:"transactions"`
}

type FloatSettingResponse struct {
	StoreID    string `json:"store_id"`
	FloatCents int64  `json:"float_cents"`
}

type FloatUpdateRequest struct {
	StoreID    string `json:"store_id"`
	FloatCents int64  `json:"float_cents"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type StaffListResponse struct {
	Staff []string `json:"staff"`
}

type AuditLog struct {
	ID            string    `json:"id"`
	StoreID       string    `json:"store_id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type CashierCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CashierUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	PaymentCash      = "cash"
	PaymentCard      = "card"
	PaymentGCash     = "gcash"
	PaymentGCashMaya = "gcash/maya"
)

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

const (
	TxStatusPaid   = "paid"
	TxStatusVoided = "voided"
)

const (
	ServiceCashIn  = "cash_in"
	ServiceCashOut = "cash_out"
)

const (
	// FeeModeCounter charges the service fee on top of the principal; the
	// customer receives the full principal.
	FeeModeCounter = "counter"
	// FeeModeDeducted takes the fee out of the principal; actual cash given
	// is principal minus fee.
	FeeModeDeducted = "deducted"
)

// StaffFilterAll matches every staff member in report requests.
const StaffFilterAll = "all"

// UnknownStaff is the sentinel for records missing a processed-by name.
const UnknownStaff = "Unknown"
