package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drivebook/internal/company"
	"drivebook/internal/logger"
	"drivebook/internal/metrics"
	"drivebook/internal/pricing"
	"drivebook/internal/user"
)

var ErrWithdrawalBelowMinimum = errors.New("withdrawal amount below minimum")

// WithdrawalNotifier delivers review-decision emails to company owners.
// Satisfied by *email.Service.
type WithdrawalNotifier interface {
	SendWithdrawalReviewed(ctx context.Context, to, name, status string, amountCents int64) error
}

type Service interface {
	GetWallet(ctx context.Context, ownerID, companyID int) (*Wallet, error)
	GetTransactions(ctx context.Context, ownerID, companyID, limit, offset int) ([]Transaction, error)
	RequestWithdrawal(ctx context.Context, ownerID, companyID int, req WithdrawRequestBody) (*WithdrawalRequest, error)
	ListWithdrawals(ctx context.Context, ownerID, companyID int) ([]WithdrawalRequest, error)

	// RecordEarning credits the net, commission-adjusted amount of a
	// completed booking. Called exactly once per booking by the completion
	// transition.
	RecordEarning(ctx context.Context, companyID, bookingID int, grossCents int64) (*Transaction, error)

	// ReleaseMaturedFunds moves booking credits older than the payout hold
	// from pending to available.
	ReleaseMaturedFunds(ctx context.Context) (int, error)

	ListPendingWithdrawals(ctx context.Context) ([]WithdrawalRequest, error)
	ApproveWithdrawal(ctx context.Context, requestID int) (*WithdrawalRequest, error)
	RejectWithdrawal(ctx context.Context, requestID int, reason string) (*WithdrawalRequest, error)
	CompleteWithdrawal(ctx context.Context, requestID int) (*WithdrawalRequest, error)
}

type service struct {
	repo        Repository
	companyRepo company.Repository
	userRepo    user.Repository
	notifier    WithdrawalNotifier

	commissionRateBps  int64
	payoutHoldDays     int
	minWithdrawalCents int64
}

func NewService(repo Repository, companyRepo company.Repository, userRepo user.Repository, notifier WithdrawalNotifier, commissionRateBps int64, payoutHoldDays int, minWithdrawalCents int64) Service {
	return &service{
		repo:               repo,
		companyRepo:        companyRepo,
		userRepo:           userRepo,
		notifier:           notifier,
		commissionRateBps:  commissionRateBps,
		payoutHoldDays:     payoutHoldDays,
		minWithdrawalCents: minWithdrawalCents,
	}
}

// notifyOwner emails the owning user about a review decision. Delivery is
// best effort: the state change has already committed, so a failed lookup or
// send only logs.
func (s *service) notifyOwner(ctx context.Context, request *WithdrawalRequest) {
	if s.notifier == nil || s.userRepo == nil {
		return
	}

	comp, err := s.companyRepo.GetByID(ctx, request.CompanyID)
	if err != nil {
		logger.Error("Failed to load company for withdrawal notification",
			"withdrawal_id", request.ID,
			"company_id", request.CompanyID,
			"error", err)
		return
	}

	owner, err := s.userRepo.FindByID(ctx, comp.OwnerID)
	if err != nil {
		logger.Error("Failed to load owner for withdrawal notification",
			"withdrawal_id", request.ID,
			"owner_id", comp.OwnerID,
			"error", err)
		return
	}

	if err := s.notifier.SendWithdrawalReviewed(ctx, owner.Email, owner.Name, string(request.Status), request.AmountCents); err != nil {
		logger.Error("Failed to queue withdrawal notification",
			"withdrawal_id", request.ID,
			"error", err)
	}
}

func (s *service) checkOwnership(ctx context.Context, ownerID, companyID int) error {
	comp, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return company.ErrCompanyNotFound
	}
	if comp.OwnerID != ownerID {
		return company.ErrNotCompanyOwner
	}
	return nil
}

func (s *service) GetWallet(ctx context.Context, ownerID, companyID int) (*Wallet, error) {
	if err := s.checkOwnership(ctx, ownerID, companyID); err != nil {
		return nil, err
	}

	return s.repo.GetOrCreateWallet(ctx, companyID)
}

func (s *service) GetTransactions(ctx context.Context, ownerID, companyID, limit, offset int) ([]Transaction, error) {
	if err := s.checkOwnership(ctx, ownerID, companyID); err != nil {
		return nil, err
	}

	return s.repo.GetTransactions(ctx, companyID, limit, offset)
}

func (s *service) RequestWithdrawal(ctx context.Context, ownerID, companyID int, req WithdrawRequestBody) (*WithdrawalRequest, error) {
	if err := s.checkOwnership(ctx, ownerID, companyID); err != nil {
		return nil, err
	}

	if req.AmountCents < s.minWithdrawalCents {
		return nil, ErrWithdrawalBelowMinimum
	}

	request, err := s.repo.CreateWithdrawal(ctx, companyID, req.AmountCents, req.BankName, req.AccountNumber, req.AccountHolder)
	if err != nil {
		return nil, err
	}

	metrics.RecordWithdrawal("requested")
	return request, nil
}

func (s *service) ListWithdrawals(ctx context.Context, ownerID, companyID int) ([]WithdrawalRequest, error) {
	if err := s.checkOwnership(ctx, ownerID, companyID); err != nil {
		return nil, err
	}

	return s.repo.ListWithdrawalsByCompany(ctx, companyID)
}

func (s *service) RecordEarning(ctx context.Context, companyID, bookingID int, grossCents int64) (*Transaction, error) {
	commission, net := pricing.CommissionCents(grossCents, s.commissionRateBps)
	description := fmt.Sprintf("earning for booking #%d", bookingID)

	entry, err := s.repo.CreditEarning(ctx, companyID, bookingID, grossCents, commission, net, s.commissionRateBps, description)
	if err != nil {
		return nil, err
	}

	metrics.RecordEarning(float64(net) / 100)
	return entry, nil
}

func (s *service) ReleaseMaturedFunds(ctx context.Context) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -s.payoutHoldDays)
	return s.repo.ReleaseMaturedCredits(ctx, cutoff)
}

func (s *service) ListPendingWithdrawals(ctx context.Context) ([]WithdrawalRequest, error) {
	return s.repo.ListWithdrawalsByStatus(ctx, WithdrawalPending)
}

func (s *service) ApproveWithdrawal(ctx context.Context, requestID int) (*WithdrawalRequest, error) {
	request, err := s.repo.ApproveWithdrawal(ctx, requestID)
	if err != nil {
		return nil, err
	}

	metrics.RecordWithdrawal("approved")
	s.notifyOwner(ctx, request)
	return request, nil
}

func (s *service) RejectWithdrawal(ctx context.Context, requestID int, reason string) (*WithdrawalRequest, error) {
	request, err := s.repo.RejectWithdrawal(ctx, requestID, reason)
	if err != nil {
		return nil, err
	}

	metrics.RecordWithdrawal("rejected")
	s.notifyOwner(ctx, request)
	return request, nil
}

func (s *service) CompleteWithdrawal(ctx context.Context, requestID int) (*WithdrawalRequest, error) {
	request, err := s.repo.CompleteWithdrawal(ctx, requestID)
	if err != nil {
		return nil, err
	}

	metrics.RecordWithdrawal("completed")
	s.notifyOwner(ctx, request)
	return request, nil
}
