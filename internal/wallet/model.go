package wallet

import "time"

type TransactionType string
type TransactionStatus string
type WithdrawalStatus string

const (
	TypeBookingCredit  TransactionType = "booking_credit"
	TypeBalanceRelease TransactionType = "balance_release"
	TypeWithdrawal     TransactionType = "withdrawal"
	TypeRefund         TransactionType = "refund"

	TxStatusPending   TransactionStatus = "pending"
	TxStatusCompleted TransactionStatus = "completed"

	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalApproved  WithdrawalStatus = "approved"
	WithdrawalRejected  WithdrawalStatus = "rejected"
	WithdrawalCompleted WithdrawalStatus = "completed"
)

// Wallet holds a company's running balances. Booking credits land in the
// pending balance and move to available after the payout hold.
type Wallet struct {
	ID                  int       `db:"id" json:"id"`
	CompanyID           int       `db:"company_id" json:"company_id"`
	AvailableCents      int64     `db:"available_cents" json:"available_cents"`
	PendingCents        int64     `db:"pending_cents" json:"pending_cents"`
	TotalEarnedCents    int64     `db:"total_earned_cents" json:"total_earned_cents"`
	TotalWithdrawnCents int64     `db:"total_withdrawn_cents" json:"total_withdrawn_cents"`
	Currency            string    `db:"currency" json:"currency"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is one append-only ledger entry. AmountCents is signed:
// positive entries add to the balance the entry applies to, negative
// entries take from it. BalanceBefore/BalanceAfter snapshot that balance
// at apply time and are never recomputed.
type Transaction struct {
	ID          int               `db:"id" json:"id"`
	WalletID    int               `db:"wallet_id" json:"wallet_id"`
	BookingID   *int              `db:"booking_id" json:"booking_id,omitempty"`
	Type        TransactionType   `db:"type" json:"type"`
	Status      TransactionStatus `db:"status" json:"status"`
	AmountCents int64             `db:"amount_cents" json:"amount_cents"`
	Description string            `db:"description" json:"description"`

	BalanceBeforeCents int64 `db:"balance_before_cents" json:"balance_before_cents"`
	BalanceAfterCents  int64 `db:"balance_after_cents" json:"balance_after_cents"`

	// Commission audit metadata, set on booking_credit entries only.
	GrossCents        *int64 `db:"gross_cents" json:"gross_cents,omitempty"`
	CommissionRateBps *int64 `db:"commission_rate_bps" json:"commission_rate_bps,omitempty"`
	CommissionCents   *int64 `db:"commission_cents" json:"commission_cents,omitempty"`
	NetCents          *int64 `db:"net_cents" json:"net_cents,omitempty"`

	// ReleasedAt marks when a booking_credit moved out of the hold. The only
	// field on a ledger entry that is ever written after creation.
	ReleasedAt *time.Time `db:"released_at" json:"released_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

type WithdrawalRequest struct {
	ID              int              `db:"id" json:"id"`
	WalletID        int              `db:"wallet_id" json:"wallet_id"`
	CompanyID       int              `db:"company_id" json:"company_id"`
	AmountCents     int64            `db:"amount_cents" json:"amount_cents"`
	Status          WithdrawalStatus `db:"status" json:"status"`
	BankName        string           `db:"bank_name" json:"bank_name"`
	AccountNumber   string           `db:"account_number" json:"account_number"`
	AccountHolder   string           `db:"account_holder" json:"account_holder"`
	RejectionReason *string          `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

type WithdrawRequestBody struct {
	AmountCents   int64  `json:"amount_cents" binding:"required,gt=0"`
	BankName      string `json:"bank_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	AccountHolder string `json:"account_holder" binding:"required"`
}

type RejectWithdrawalRequest struct {
	Reason string `json:"reason" binding:"required"`
}
