package wallet

import (
	"context"
	"time"
)

type Repository interface {
	GetOrCreateWallet(ctx context.Context, companyID int) (*Wallet, error)

	// CreditEarning appends one booking_credit entry into the pending balance.
	// The partial unique index on booking_id makes a second credit for the
	// same booking fail instead of double-crediting.
	CreditEarning(ctx context.Context, companyID, bookingID int, gross, commission, net, rateBps int64, description string) (*Transaction, error)

	// ReleaseMaturedCredits moves booking credits created before the cutoff
	// from pending to available, one balance_release entry per credit.
	// Returns how many credits were released.
	ReleaseMaturedCredits(ctx context.Context, cutoff time.Time) (int, error)

	// CreateWithdrawal checks the available balance and reserves the amount
	// in one transaction; the check and the decrement are atomic.
	CreateWithdrawal(ctx context.Context, companyID int, amountCents int64, bankName, accountNumber, accountHolder string) (*WithdrawalRequest, error)

	ApproveWithdrawal(ctx context.Context, requestID int) (*WithdrawalRequest, error)
	RejectWithdrawal(ctx context.Context, requestID int, reason string) (*WithdrawalRequest, error)
	CompleteWithdrawal(ctx context.Context, requestID int) (*WithdrawalRequest, error)

	GetTransactions(ctx context.Context, companyID int, limit, offset int) ([]Transaction, error)
	ListWithdrawalsByCompany(ctx context.Context, companyID int) ([]WithdrawalRequest, error)
	ListWithdrawalsByStatus(ctx context.Context, status WithdrawalStatus) ([]WithdrawalRequest, error)
}
