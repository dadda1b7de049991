package user

import (
	"context"
	"errors"
	"testing"

	"drivebook/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, name, email, phone, passwordHash, role string) (*User, error) {
	args := m.Called(ctx, name, email, phone, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name          string
		req           RegisterRequest
		setupMock     func(*MockRepository)
		expectError   bool
		expectedError error
	}{
		{
			name: "successful customer registration",
			req: RegisterRequest{
				Name:     "Test Customer",
				Email:    "customer@example.com",
				Phone:    "+37120000001",
				Password: "password123",
			},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "customer@example.com").Return(false, nil)
				m.On("Create", mock.Anything, "Test Customer", "customer@example.com", "+37120000001", mock.Anything, auth.RoleCustomer).Return(&User{
					ID:    1,
					Name:  "Test Customer",
					Email: "customer@example.com",
					Role:  auth.RoleCustomer,
				}, nil)
			},
			expectError: false,
		},
		{
			name: "owner registration",
			req: RegisterRequest{
				Name:     "Fleet Owner",
				Email:    "owner@example.com",
				Phone:    "+37120000002",
				Password: "password123",
				Role:     auth.RoleOwner,
			},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "owner@example.com").Return(false, nil)
				m.On("Create", mock.Anything, "Fleet Owner", "owner@example.com", "+37120000002", mock.Anything, auth.RoleOwner).Return(&User{
					ID:    2,
					Name:  "Fleet Owner",
					Email: "owner@example.com",
					Role:  auth.RoleOwner,
				}, nil)
			},
			expectError: false,
		},
		{
			name: "email already exists",
			req: RegisterRequest{
				Name:     "Test Customer",
				Email:    "existing@example.com",
				Password: "password123",
			},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "existing@example.com").Return(true, nil)
			},
			expectError:   true,
			expectedError: ErrEmailExists,
		},
		{
			name: "admin role cannot be self-assigned",
			req: RegisterRequest{
				Name:     "Wannabe Admin",
				Email:    "admin@example.com",
				Password: "password123",
				Role:     auth.RoleAdmin,
			},
			setupMock:     func(m *MockRepository) {},
			expectError:   true,
			expectedError: ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			tt.setupMock(mockRepo)

			service := NewService(mockRepo, "test-secret")
			user, accessToken, refreshToken, err := service.Register(context.Background(), tt.req)

			if tt.expectError {
				assert.Error(t, err)
				if tt.expectedError != nil {
					assert.Equal(t, tt.expectedError, err)
				}
				assert.Nil(t, user)
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.NotEmpty(t, accessToken)
				assert.NotEmpty(t, refreshToken)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	tests := []struct {
		name          string
		req           LoginRequest
		setupMock     func(*MockRepository)
		expectError   bool
		expectedError error
	}{
		{
			name: "successful login",
			req: LoginRequest{
				Email:    "customer@example.com",
				Password: "password123",
			},
			setupMock: func(m *MockRepository) {
				passwordHash, _ := auth.HashPassword("password123")
				m.On("FindByEmail", mock.Anything, "customer@example.com").Return(&User{
					ID:           1,
					Email:        "customer@example.com",
					PasswordHash: passwordHash,
					Role:         auth.RoleCustomer,
				}, nil)
			},
			expectError: false,
		},
		{
			name: "user not found",
			req: LoginRequest{
				Email:    "notfound@example.com",
				Password: "password123",
			},
			setupMock: func(m *MockRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, errors.New("not found"))
			},
			expectError:   true,
			expectedError: ErrInvalidCredentials,
		},
		{
			name: "wrong password",
			req: LoginRequest{
				Email:    "customer@example.com",
				Password: "wrong-password",
			},
			setupMock: func(m *MockRepository) {
				passwordHash, _ := auth.HashPassword("password123")
				m.On("FindByEmail", mock.Anything, "customer@example.com").Return(&User{
					ID:           1,
					Email:        "customer@example.com",
					PasswordHash: passwordHash,
					Role:         auth.RoleCustomer,
				}, nil)
			},
			expectError:   true,
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			tt.setupMock(mockRepo)

			service := NewService(mockRepo, "test-secret")
			user, accessToken, refreshToken, err := service.Login(context.Background(), tt.req)

			if tt.expectError {
				assert.Error(t, err)
				if tt.expectedError != nil {
					assert.Equal(t, tt.expectedError, err)
				}
				assert.Nil(t, user)
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.NotEmpty(t, accessToken)
				assert.NotEmpty(t, refreshToken)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestService_GetByID(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("FindByID", mock.Anything, 1).Return(&User{
		ID:    1,
		Name:  "Test Customer",
		Email: "customer@example.com",
		Role:  auth.RoleCustomer,
	}, nil)

	service := NewService(mockRepo, "test-secret")
	user, err := service.GetByID(context.Background(), 1)

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, 1, user.ID)
	mockRepo.AssertExpectations(t)
}

func TestService_GetByID_NotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("FindByID", mock.Anything, 99).Return(nil, errors.New("sql: no rows in result set"))

	service := NewService(mockRepo, "test-secret")
	user, err := service.GetByID(context.Background(), 99)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, user)
	mockRepo.AssertExpectations(t)
}

func TestService_RefreshToken(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("FindByID", mock.Anything, 1).Return(&User{
		ID:    1,
		Email: "customer@example.com",
		Role:  auth.RoleCustomer,
	}, nil)

	service := NewService(mockRepo, "test-secret")

	_, refreshToken, err := auth.GenerateTokens(1, "customer@example.com", auth.RoleCustomer, "test-secret", "test-secret")
	assert.NoError(t, err)

	newAccessToken, user, err := service.RefreshToken(context.Background(), refreshToken)

	assert.NoError(t, err)
	assert.NotEmpty(t, newAccessToken)
	assert.NotNil(t, user)
	assert.Equal(t, 1, user.ID)
	mockRepo.AssertExpectations(t)
}

func TestService_RefreshToken_Invalid(t *testing.T) {
	mockRepo := new(MockRepository)

	service := NewService(mockRepo, "test-secret")
	newAccessToken, user, err := service.RefreshToken(context.Background(), "garbage")

	assert.Error(t, err)
	assert.Empty(t, newAccessToken)
	assert.Nil(t, user)
	mockRepo.AssertExpectations(t)
}
