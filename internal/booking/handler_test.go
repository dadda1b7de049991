package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"drivebook/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CheckAvailability(ctx context.Context, vehicleID int, pickupDate, pickupTime, returnDate, returnTime string) (*AvailabilityResult, error) {
	args := m.Called(ctx, vehicleID, pickupDate, pickupTime, returnDate, returnTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AvailabilityResult), args.Error(1)
}

func (m *MockService) CreateBooking(ctx context.Context, customerID, vehicleID int, req CreateBookingRequest) (*Booking, error) {
	args := m.Called(ctx, customerID, vehicleID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) GetBooking(ctx context.Context, userID int, role string, bookingID int) (*Booking, error) {
	args := m.Called(ctx, userID, role, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) ConfirmBooking(ctx context.Context, ownerID, bookingID int) (*Booking, error) {
	args := m.Called(ctx, ownerID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) CancelBooking(ctx context.Context, userID int, role string, bookingID int) (*Booking, error) {
	args := m.Called(ctx, userID, role, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) MarkNoShow(ctx context.Context, ownerID, bookingID int) (*Booking, error) {
	args := m.Called(ctx, ownerID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) RecordPickup(ctx context.Context, ownerID, bookingID int, req PickupRequest) (*Booking, error) {
	args := m.Called(ctx, ownerID, bookingID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) RecordReturn(ctx context.Context, ownerID, bookingID int, req ReturnRequest) (*Booking, error) {
	args := m.Called(ctx, ownerID, bookingID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) CompleteBooking(ctx context.Context, ownerID, bookingID int) (*Booking, error) {
	args := m.Called(ctx, ownerID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) ListMyBookings(ctx context.Context, customerID int) ([]Booking, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Booking), args.Error(1)
}

func (m *MockService) ListCompanyBookings(ctx context.Context, ownerID, companyID int) ([]Booking, error) {
	args := m.Called(ctx, ownerID, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Booking), args.Error(1)
}

func (m *MockService) ListVehicleBookings(ctx context.Context, ownerID, vehicleID int) ([]Booking, error) {
	args := m.Called(ctx, ownerID, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Booking), args.Error(1)
}

// fakeAuth injects the context keys the real auth middleware sets.
func fakeAuth(userID int, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_role", role)
		c.Next()
	}
}

func setupRouter(svc Service, userID int, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)

	router := gin.New()
	router.Use(fakeAuth(userID, role))

	router.GET("/vehicles/:vehicleID/availability", h.CheckAvailability)
	router.POST("/vehicles/:vehicleID/bookings", h.CreateBooking)
	router.GET("/bookings/:bookingID", h.GetBooking)
	router.GET("/bookings", h.ListMyBookings)
	router.POST("/bookings/:bookingID/cancel", h.CancelBooking)
	router.POST("/pro/bookings/:bookingID/confirm", h.ConfirmBooking)
	router.POST("/pro/bookings/:bookingID/return", h.RecordReturn)

	return router
}

func TestHandler_CheckAvailability(t *testing.T) {
	svc := new(MockService)
	svc.On("CheckAvailability", mock.Anything, 3, "2024-07-01", "09:00", "2024-07-04", "09:00").Return(&AvailabilityResult{
		Available:        true,
		RentalDays:       3,
		PricePerDayCents: 4000,
		SubtotalCents:    12000,
	}, nil)

	router := setupRouter(svc, 1, auth.RoleCustomer)

	req := httptest.NewRequest("GET", "/vehicles/3/availability?pickup_date=2024-07-01&pickup_time=09:00&return_date=2024-07-04&return_time=09:00", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result AvailabilityResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Available)
	assert.Equal(t, 3, result.RentalDays)
	assert.Equal(t, int64(12000), result.SubtotalCents)
	svc.AssertExpectations(t)
}

func TestHandler_CheckAvailability_BadVehicleID(t *testing.T) {
	svc := new(MockService)
	router := setupRouter(svc, 1, auth.RoleCustomer)

	req := httptest.NewRequest("GET", "/vehicles/abc/availability", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_CheckAvailability_MalformedQuery(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"missing params", ""},
		{"bad date format", "pickup_date=01/07/2024&pickup_time=09:00&return_date=2024-07-04&return_time=09:00"},
		{"bad time format", "pickup_date=2024-07-01&pickup_time=9am&return_date=2024-07-04&return_time=09:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockService)
			router := setupRouter(svc, 1, auth.RoleCustomer)

			req := httptest.NewRequest("GET", "/vehicles/3/availability?"+tc.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "validation failed")
			svc.AssertNotCalled(t, "CheckAvailability",
				mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_CreateBooking(t *testing.T) {
	svc := new(MockService)
	svc.On("CreateBooking", mock.Anything, 1, 3, mock.MatchedBy(func(req CreateBookingRequest) bool {
		return req.CustomerName == "Janis Berzins" && req.PickupDate == "2024-07-01"
	})).Return(&Booking{ID: 5, VehicleID: 3, CustomerID: 1, Status: StatusPending}, nil)

	router := setupRouter(svc, 1, auth.RoleCustomer)

	body := map[string]interface{}{
		"customer_name":  "Janis Berzins",
		"customer_email": "janis@example.com",
		"customer_phone": "+37120000001",
		"national_id":    "123456-12345",
		"driver_license": "LV1234567",
		"pickup_date":    "2024-07-01",
		"pickup_time":    "09:00",
		"return_date":    "2024-07-04",
		"return_time":    "09:00",
	}
	data, _ := json.Marshal(body)

	req := httptest.NewRequest("POST", "/vehicles/3/bookings", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var b Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, 5, b.ID)
	assert.Equal(t, StatusPending, b.Status)
	svc.AssertExpectations(t)
}

func TestHandler_CreateBooking_MissingFields(t *testing.T) {
	svc := new(MockService)
	router := setupRouter(svc, 1, auth.RoleCustomer)

	req := httptest.NewRequest("POST", "/vehicles/3/bookings", bytes.NewBufferString(`{"customer_name":"Janis"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_CreateBooking_DateConflict(t *testing.T) {
	svc := new(MockService)
	svc.On("CreateBooking", mock.Anything, 1, 3, mock.Anything).Return(nil, ErrDateConflict)

	router := setupRouter(svc, 1, auth.RoleCustomer)

	body := map[string]interface{}{
		"customer_name":  "Janis Berzins",
		"customer_email": "janis@example.com",
		"customer_phone": "+37120000001",
		"national_id":    "123456-12345",
		"driver_license": "LV1234567",
		"pickup_date":    "2024-07-01",
		"pickup_time":    "09:00",
		"return_date":    "2024-07-04",
		"return_time":    "09:00",
	}
	data, _ := json.Marshal(body)

	req := httptest.NewRequest("POST", "/vehicles/3/bookings", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_GetBooking_NotFound(t *testing.T) {
	svc := new(MockService)
	svc.On("GetBooking", mock.Anything, 1, auth.RoleCustomer, 99).Return(nil, ErrBookingNotFound)

	router := setupRouter(svc, 1, auth.RoleCustomer)

	req := httptest.NewRequest("GET", "/bookings/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_CancelBooking_Forbidden(t *testing.T) {
	svc := new(MockService)
	svc.On("CancelBooking", mock.Anything, 2, auth.RoleCustomer, 5).Return(nil, ErrNotBookingOwner)

	router := setupRouter(svc, 2, auth.RoleCustomer)

	req := httptest.NewRequest("POST", "/bookings/5/cancel", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_ConfirmBooking_WrongState(t *testing.T) {
	svc := new(MockService)
	svc.On("ConfirmBooking", mock.Anything, 100, 5).Return(nil, ErrInvalidTransition)

	router := setupRouter(svc, 100, auth.RoleOwner)

	req := httptest.NewRequest("POST", "/pro/bookings/5/confirm", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_RecordReturn(t *testing.T) {
	mileage := 5500
	svc := new(MockService)
	svc.On("RecordReturn", mock.Anything, 100, 5, mock.MatchedBy(func(req ReturnRequest) bool {
		return req.Mileage != nil && *req.Mileage == 5500
	})).Return(&Booking{ID: 5, Status: StatusReturned, ReturnMileage: &mileage, TotalAmountCents: 13000}, nil)

	router := setupRouter(svc, 100, auth.RoleOwner)

	req := httptest.NewRequest("POST", "/pro/bookings/5/return", bytes.NewBufferString(`{"mileage": 5500}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var b Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, StatusReturned, b.Status)
	assert.Equal(t, int64(13000), b.TotalAmountCents)
	svc.AssertExpectations(t)
}

func TestHandler_ListMyBookings(t *testing.T) {
	svc := new(MockService)
	svc.On("ListMyBookings", mock.Anything, 1).Return([]Booking{
		{ID: 5, CustomerID: 1, Status: StatusConfirmed},
		{ID: 7, CustomerID: 1, Status: StatusCompleted},
	}, nil)

	router := setupRouter(svc, 1, auth.RoleCustomer)

	req := httptest.NewRequest("GET", "/bookings", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var bookings []Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bookings))
	assert.Len(t, bookings, 2)
	svc.AssertExpectations(t)
}
