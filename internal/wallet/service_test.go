package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"drivebook/internal/company"
	"drivebook/internal/user"
)

type MockWalletRepo struct{ mock.Mock }
type MockCompanyRepo struct{ mock.Mock }
type MockUserRepo struct{ mock.Mock }
type MockNotifier struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, name, email, phone, passwordHash, role string) (*user.User, error) {
	args := m.Called(ctx, name, email, phone, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotifier) SendWithdrawalReviewed(ctx context.Context, to, name, status string, amountCents int64) error {
	return m.Called(ctx, to, name, status, amountCents).Error(0)
}

func (m *MockWalletRepo) GetOrCreateWallet(ctx context.Context, companyID int) (*Wallet, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Wallet), args.Error(1)
}

func (m *MockWalletRepo) CreditEarning(ctx context.Context, companyID, bookingID int, gross, commission, net, rateBps int64, description string) (*Transaction, error) {
	args := m.Called(ctx, companyID, bookingID, gross, commission, net, rateBps, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Transaction), args.Error(1)
}

func (m *MockWalletRepo) ReleaseMaturedCredits(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

func (m *MockWalletRepo) CreateWithdrawal(ctx context.Context, companyID int, amountCents int64, bankName, accountNumber, accountHolder string) (*WithdrawalRequest, error) {
	args := m.Called(ctx, companyID, amountCents, bankName, accountNumber, accountHolder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WithdrawalRequest), args.Error(1)
}

func (m *MockWalletRepo) ApproveWithdrawal(ctx context.Context, requestID int) (*WithdrawalRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WithdrawalRequest), args.Error(1)
}

func (m *MockWalletRepo) RejectWithdrawal(ctx context.Context, requestID int, reason string) (*WithdrawalRequest, error) {
	args := m.Called(ctx, requestID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WithdrawalRequest), args.Error(1)
}

func (m *MockWalletRepo) CompleteWithdrawal(ctx context.Context, requestID int) (*WithdrawalRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WithdrawalRequest), args.Error(1)
}

func (m *MockWalletRepo) GetTransactions(ctx context.Context, companyID int, limit, offset int) ([]Transaction, error) {
	args := m.Called(ctx, companyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Transaction), args.Error(1)
}

func (m *MockWalletRepo) ListWithdrawalsByCompany(ctx context.Context, companyID int) ([]WithdrawalRequest, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]WithdrawalRequest), args.Error(1)
}

func (m *MockWalletRepo) ListWithdrawalsByStatus(ctx context.Context, status WithdrawalStatus) ([]WithdrawalRequest, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]WithdrawalRequest), args.Error(1)
}

func (m *MockCompanyRepo) Create(ctx context.Context, ownerID int, name string, ctype company.CompanyType, phone, address string) (*company.Company, error) {
	args := m.Called(ctx, ownerID, name, ctype, phone, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

func (m *MockCompanyRepo) GetByID(ctx context.Context, id int) (*company.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

func (m *MockCompanyRepo) ListByOwner(ctx context.Context, ownerID int) ([]company.Company, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]company.Company), args.Error(1)
}

func (m *MockCompanyRepo) ListAll(ctx context.Context) ([]company.Company, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]company.Company), args.Error(1)
}

func (m *MockCompanyRepo) Update(ctx context.Context, id int, name, phone, address string) (*company.Company, error) {
	args := m.Called(ctx, id, name, phone, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

func (m *MockCompanyRepo) SetActive(ctx context.Context, id int, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func ownedCompany() *company.Company {
	return &company.Company{ID: 10, OwnerID: 100, Type: company.TypeCarRental, IsActive: true}
}

func newTestService(repo *MockWalletRepo, companyRepo *MockCompanyRepo) Service {
	return NewService(repo, companyRepo, nil, nil, 1000, 3, 100000)
}

func TestService_RecordEarning(t *testing.T) {
	repo := new(MockWalletRepo)
	companyRepo := new(MockCompanyRepo)

	// 10% commission split computed before the repository call.
	repo.On("CreditEarning", mock.Anything, 10, 5, int64(13000), int64(1300), int64(11700), int64(1000), "earning for booking #5").
		Return(&Transaction{ID: 7, AmountCents: 11700, Status: TxStatusPending}, nil)

	service := newTestService(repo, companyRepo)
	entry, err := service.RecordEarning(context.Background(), 10, 5, 13000)

	assert.NoError(t, err)
	assert.Equal(t, int64(11700), entry.AmountCents)
	repo.AssertExpectations(t)
}

func TestService_RequestWithdrawal(t *testing.T) {
	body := WithdrawRequestBody{
		AmountCents:   150000,
		BankName:      "BNP",
		AccountNumber: "FR7612345",
		AccountHolder: "City Rentals",
	}

	t.Run("happy path", func(t *testing.T) {
		repo := new(MockWalletRepo)
		companyRepo := new(MockCompanyRepo)

		companyRepo.On("GetByID", mock.Anything, 10).Return(ownedCompany(), nil)
		repo.On("CreateWithdrawal", mock.Anything, 10, int64(150000), "BNP", "FR7612345", "City Rentals").
			Return(&WithdrawalRequest{ID: 3, Status: WithdrawalPending}, nil)

		service := newTestService(repo, companyRepo)
		request, err := service.RequestWithdrawal(context.Background(), 100, 10, body)

		assert.NoError(t, err)
		assert.Equal(t, WithdrawalPending, request.Status)
	})

	t.Run("below minimum", func(t *testing.T) {
		repo := new(MockWalletRepo)
		companyRepo := new(MockCompanyRepo)
		companyRepo.On("GetByID", mock.Anything, 10).Return(ownedCompany(), nil)

		small := body
		small.AmountCents = 5000

		service := newTestService(repo, companyRepo)
		_, err := service.RequestWithdrawal(context.Background(), 100, 10, small)

		assert.ErrorIs(t, err, ErrWithdrawalBelowMinimum)
		repo.AssertNotCalled(t, "CreateWithdrawal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wrong owner", func(t *testing.T) {
		repo := new(MockWalletRepo)
		companyRepo := new(MockCompanyRepo)
		companyRepo.On("GetByID", mock.Anything, 10).Return(ownedCompany(), nil)

		service := newTestService(repo, companyRepo)
		_, err := service.RequestWithdrawal(context.Background(), 999, 10, body)

		assert.ErrorIs(t, err, company.ErrNotCompanyOwner)
	})

	t.Run("insufficient balance bubbles up", func(t *testing.T) {
		repo := new(MockWalletRepo)
		companyRepo := new(MockCompanyRepo)
		companyRepo.On("GetByID", mock.Anything, 10).Return(ownedCompany(), nil)
		repo.On("CreateWithdrawal", mock.Anything, 10, int64(150000), "BNP", "FR7612345", "City Rentals").
			Return(nil, ErrInsufficientBalance)

		service := newTestService(repo, companyRepo)
		_, err := service.RequestWithdrawal(context.Background(), 100, 10, body)

		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})
}

func TestService_ReleaseMaturedFunds(t *testing.T) {
	repo := new(MockWalletRepo)
	companyRepo := new(MockCompanyRepo)

	repo.On("ReleaseMaturedCredits", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		// three days hold, allow scheduling slack
		expected := time.Now().AddDate(0, 0, -3)
		return cutoff.Sub(expected) < time.Minute && expected.Sub(cutoff) < time.Minute
	})).Return(2, nil)

	service := newTestService(repo, companyRepo)
	released, err := service.ReleaseMaturedFunds(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, released)
}

func TestService_GetWallet_OwnershipGate(t *testing.T) {
	repo := new(MockWalletRepo)
	companyRepo := new(MockCompanyRepo)
	companyRepo.On("GetByID", mock.Anything, 10).Return(ownedCompany(), nil)

	service := newTestService(repo, companyRepo)
	_, err := service.GetWallet(context.Background(), 999, 10)

	assert.ErrorIs(t, err, company.ErrNotCompanyOwner)
	repo.AssertNotCalled(t, "GetOrCreateWallet", mock.Anything, mock.Anything)
}

func TestService_ReviewWithdrawal_NotifiesOwner(t *testing.T) {
	owner := &user.User{ID: 100, Name: "Paul", Email: "paul@example.com"}

	t.Run("approval emails the owner", func(t *testing.T) {
		repo := new(MockWalletRepo)
		companyRepo := new(MockCompanyRepo)
		userRepo := new(MockUserRepo)
		notifier := new(MockNotifier)

		repo.On("ApproveWithdrawal", mock.Anything, 3).
			Return(&WithdrawalRequest{ID: 3, CompanyID: 10, AmountCents: 150000, Status: WithdrawalApproved}, nil)
		companyRepo.On("GetByID", mock.Anything, 10).Return(ownedCompany(), nil)
		userRepo.On("FindByID", mock.Anything, 100).Return(owner, nil)
		notifier.On("SendWithdrawalReviewed", mock.Anything, "paul@example.com", "Paul", "approved", int64(150000)).Return(nil)

		service := NewService(repo, companyRepo, userRepo, notifier, 1000, 3, 100000)
		request, err := service.ApproveWithdrawal(context.Background(), 3)

		assert.NoError(t, err)
		assert.Equal(t, WithdrawalApproved, request.Status)
		notifier.AssertExpectations(t)
	})

	t.Run("rejection emails the owner", func(t *testing.T) {
		repo := new(MockWalletRepo)
		companyRepo := new(MockCompanyRepo)
		userRepo := new(MockUserRepo)
		notifier := new(MockNotifier)

		repo.On("RejectWithdrawal", mock.Anything, 3, "bank details invalid").
			Return(&WithdrawalRequest{ID: 3, CompanyID: 10, AmountCents: 150000, Status: WithdrawalRejected}, nil)
		companyRepo.On("GetByID", mock.Anything, 10).Return(ownedCompany(), nil)
		userRepo.On("FindByID", mock.Anything, 100).Return(owner, nil)
		notifier.On("SendWithdrawalReviewed", mock.Anything, "paul@example.com", "Paul", "rejected", int64(150000)).Return(nil)

		service := NewService(repo, companyRepo, userRepo, notifier, 1000, 3, 100000)
		_, err := service.RejectWithdrawal(context.Background(), 3, "bank details invalid")

		assert.NoError(t, err)
		notifier.AssertExpectations(t)
	})

	t.Run("send failure does not fail the review", func(t *testing.T) {
		repo := new(MockWalletRepo)
		companyRepo := new(MockCompanyRepo)
		userRepo := new(MockUserRepo)
		notifier := new(MockNotifier)

		repo.On("CompleteWithdrawal", mock.Anything, 3).
			Return(&WithdrawalRequest{ID: 3, CompanyID: 10, AmountCents: 150000, Status: WithdrawalCompleted}, nil)
		companyRepo.On("GetByID", mock.Anything, 10).Return(ownedCompany(), nil)
		userRepo.On("FindByID", mock.Anything, 100).Return(owner, nil)
		notifier.On("SendWithdrawalReviewed", mock.Anything, "paul@example.com", "Paul", "completed", int64(150000)).Return(assert.AnError)

		service := NewService(repo, companyRepo, userRepo, notifier, 1000, 3, 100000)
		request, err := service.CompleteWithdrawal(context.Background(), 3)

		assert.NoError(t, err)
		assert.Equal(t, WithdrawalCompleted, request.Status)
	})

	t.Run("nil notifier is skipped", func(t *testing.T) {
		repo := new(MockWalletRepo)
		companyRepo := new(MockCompanyRepo)

		repo.On("ApproveWithdrawal", mock.Anything, 3).
			Return(&WithdrawalRequest{ID: 3, CompanyID: 10, AmountCents: 150000, Status: WithdrawalApproved}, nil)

		service := newTestService(repo, companyRepo)
		_, err := service.ApproveWithdrawal(context.Background(), 3)

		assert.NoError(t, err)
		companyRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}
