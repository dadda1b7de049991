package wallet

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrWithdrawalNotFound   = errors.New("withdrawal request not found")
	ErrWithdrawalNotPending = errors.New("withdrawal request is not pending")
	ErrAlreadyCredited      = errors.New("booking already credited")
)

const walletColumns = `
	id, company_id, available_cents, pending_cents, total_earned_cents,
	total_withdrawn_cents, currency, created_at, updated_at
`

const transactionColumns = `
	id, wallet_id, booking_id, type, status, amount_cents, description,
	balance_before_cents, balance_after_cents, gross_cents, commission_rate_bps,
	commission_cents, net_cents, released_at, created_at
`

const withdrawalColumns = `
	id, wallet_id, company_id, amount_cents, status, bank_name,
	account_number, account_holder, rejection_reason, created_at, updated_at
`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrCreateWallet(ctx context.Context, companyID int) (*Wallet, error) {
	w := &Wallet{}
	err := r.db.GetContext(ctx, w, `SELECT `+walletColumns+` FROM wallets WHERE company_id = $1`, companyID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO wallets (company_id)
		 VALUES ($1)
		 RETURNING `+walletColumns,
		companyID,
	).StructScan(w)
	if err != nil {
		return nil, err
	}

	return w, nil
}

func (r *repository) lockWallet(ctx context.Context, tx *sqlx.Tx, companyID int) (*Wallet, error) {
	var w Wallet
	err := tx.QueryRowxContext(ctx,
		`SELECT `+walletColumns+`
		 FROM wallets
		 WHERE company_id = $1
		 FOR UPDATE`,
		companyID,
	).StructScan(&w)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = tx.QueryRowxContext(ctx,
				`INSERT INTO wallets (company_id)
				 VALUES ($1)
				 RETURNING `+walletColumns,
				companyID,
			).StructScan(&w)
			if err != nil {
				return nil, err
			}
			return &w, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *repository) CreditEarning(ctx context.Context, companyID, bookingID int, gross, commission, net, rateBps int64, description string) (*Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var alreadyCredited bool
	err = tx.GetContext(ctx, &alreadyCredited,
		`SELECT EXISTS(
			SELECT 1 FROM wallet_transactions
			WHERE booking_id = $1 AND type = 'booking_credit'
		)`,
		bookingID,
	)
	if err != nil {
		return nil, err
	}
	if alreadyCredited {
		return nil, ErrAlreadyCredited
	}

	w, err := r.lockWallet(ctx, tx, companyID)
	if err != nil {
		return nil, err
	}

	newPending := w.PendingCents + net

	var entry Transaction
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO wallet_transactions (
			wallet_id, booking_id, type, status, amount_cents, description,
			balance_before_cents, balance_after_cents,
			gross_cents, commission_rate_bps, commission_cents, net_cents
		)
		VALUES ($1, $2, 'booking_credit', 'pending', $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+transactionColumns,
		w.ID, bookingID, net, description,
		w.PendingCents, newPending,
		gross, rateBps, commission, net,
	).StructScan(&entry)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets
		 SET pending_cents = $1, total_earned_cents = total_earned_cents + $2, updated_at = NOW()
		 WHERE id = $3`,
		newPending, net, w.ID,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *repository) ReleaseMaturedCredits(ctx context.Context, cutoff time.Time) (int, error) {
	var credits []Transaction
	err := r.db.SelectContext(ctx, &credits,
		`SELECT `+transactionColumns+`
		 FROM wallet_transactions
		 WHERE type = 'booking_credit' AND released_at IS NULL AND created_at < $1
		 ORDER BY created_at`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, credit := range credits {
		if err := r.releaseCredit(ctx, credit); err != nil {
			return released, err
		}
		released++
	}

	return released, nil
}

func (r *repository) releaseCredit(ctx context.Context, credit Transaction) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var w Wallet
	err = tx.QueryRowxContext(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE id = $1 FOR UPDATE`,
		credit.WalletID,
	).StructScan(&w)
	if err != nil {
		return err
	}

	// Re-check under the lock; a concurrent release run may have won.
	result, err := tx.ExecContext(ctx,
		`UPDATE wallet_transactions
		 SET released_at = NOW(), status = 'completed'
		 WHERE id = $1 AND released_at IS NULL`,
		credit.ID,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return tx.Commit()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_transactions (
			wallet_id, booking_id, type, status, amount_cents, description,
			balance_before_cents, balance_after_cents
		)
		VALUES ($1, $2, 'balance_release', 'completed', $3, $4, $5, $6)`,
		w.ID, credit.BookingID, credit.AmountCents, "payout hold released",
		w.AvailableCents, w.AvailableCents+credit.AmountCents,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets
		 SET available_cents = available_cents + $1,
			 pending_cents = pending_cents - $1,
			 updated_at = NOW()
		 WHERE id = $2`,
		credit.AmountCents, w.ID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) CreateWithdrawal(ctx context.Context, companyID int, amountCents int64, bankName, accountNumber, accountHolder string) (*WithdrawalRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	w, err := r.lockWallet(ctx, tx, companyID)
	if err != nil {
		return nil, err
	}

	if amountCents > w.AvailableCents {
		return nil, ErrInsufficientBalance
	}

	var request WithdrawalRequest
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO withdrawal_requests (wallet_id, company_id, amount_cents, bank_name, account_number, account_holder)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+withdrawalColumns,
		w.ID, companyID, amountCents, bankName, accountNumber, accountHolder,
	).StructScan(&request)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_transactions (
			wallet_id, type, status, amount_cents, description,
			balance_before_cents, balance_after_cents
		)
		VALUES ($1, 'withdrawal', 'pending', $2, $3, $4, $5)`,
		w.ID, -amountCents, "withdrawal requested",
		w.AvailableCents, w.AvailableCents-amountCents,
	)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets
		 SET available_cents = available_cents - $1, updated_at = NOW()
		 WHERE id = $2`,
		amountCents, w.ID,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &request, nil
}

func (r *repository) ApproveWithdrawal(ctx context.Context, requestID int) (*WithdrawalRequest, error) {
	var request WithdrawalRequest
	err := r.db.QueryRowxContext(ctx,
		`UPDATE withdrawal_requests
		 SET status = 'approved', updated_at = NOW()
		 WHERE id = $1 AND status = 'pending'
		 RETURNING `+withdrawalColumns,
		requestID,
	).StructScan(&request)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.withdrawalStateError(ctx, requestID)
		}
		return nil, err
	}

	return &request, nil
}

func (r *repository) RejectWithdrawal(ctx context.Context, requestID int, reason string) (*WithdrawalRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var request WithdrawalRequest
	err = tx.QueryRowxContext(ctx,
		`UPDATE withdrawal_requests
		 SET status = 'rejected', rejection_reason = $2, updated_at = NOW()
		 WHERE id = $1 AND status = 'pending'
		 RETURNING `+withdrawalColumns,
		requestID, reason,
	).StructScan(&request)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.withdrawalStateError(ctx, requestID)
		}
		return nil, err
	}

	var w Wallet
	err = tx.QueryRowxContext(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE id = $1 FOR UPDATE`,
		request.WalletID,
	).StructScan(&w)
	if err != nil {
		return nil, err
	}

	// Restore the reserved amount to available.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_transactions (
			wallet_id, type, status, amount_cents, description,
			balance_before_cents, balance_after_cents
		)
		VALUES ($1, 'refund', 'completed', $2, $3, $4, $5)`,
		w.ID, request.AmountCents, "withdrawal rejected",
		w.AvailableCents, w.AvailableCents+request.AmountCents,
	)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets
		 SET available_cents = available_cents + $1, updated_at = NOW()
		 WHERE id = $2`,
		request.AmountCents, w.ID,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &request, nil
}

func (r *repository) CompleteWithdrawal(ctx context.Context, requestID int) (*WithdrawalRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var request WithdrawalRequest
	err = tx.QueryRowxContext(ctx,
		`UPDATE withdrawal_requests
		 SET status = 'completed', updated_at = NOW()
		 WHERE id = $1 AND status = 'approved'
		 RETURNING `+withdrawalColumns,
		requestID,
	).StructScan(&request)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.withdrawalStateError(ctx, requestID)
		}
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets
		 SET total_withdrawn_cents = total_withdrawn_cents + $1, updated_at = NOW()
		 WHERE id = $2`,
		request.AmountCents, request.WalletID,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &request, nil
}

func (r *repository) withdrawalStateError(ctx context.Context, requestID int) error {
	exists, err := r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM withdrawal_requests WHERE id = $1)`, requestID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrWithdrawalNotFound
	}
	return ErrWithdrawalNotPending
}

func (r *repository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, args...)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *repository) GetTransactions(ctx context.Context, companyID int, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var walletID int
	err := r.db.GetContext(ctx, &walletID, `SELECT id FROM wallets WHERE company_id = $1`, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []Transaction{}, nil
		}
		return nil, err
	}

	var txs []Transaction
	err = r.db.SelectContext(ctx, &txs,
		`SELECT `+transactionColumns+`
		 FROM wallet_transactions
		 WHERE wallet_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		walletID, limit, offset,
	)
	if err != nil {
		return nil, err
	}

	return txs, nil
}

func (r *repository) ListWithdrawalsByCompany(ctx context.Context, companyID int) ([]WithdrawalRequest, error) {
	var requests []WithdrawalRequest
	err := r.db.SelectContext(ctx, &requests,
		`SELECT `+withdrawalColumns+`
		 FROM withdrawal_requests
		 WHERE company_id = $1
		 ORDER BY created_at DESC`,
		companyID,
	)
	if err != nil {
		return nil, err
	}

	return requests, nil
}

func (r *repository) ListWithdrawalsByStatus(ctx context.Context, status WithdrawalStatus) ([]WithdrawalRequest, error) {
	var requests []WithdrawalRequest
	err := r.db.SelectContext(ctx, &requests,
		`SELECT `+withdrawalColumns+`
		 FROM withdrawal_requests
		 WHERE status = $1
		 ORDER BY created_at`,
		status,
	)
	if err != nil {
		return nil, err
	}

	return requests, nil
}
