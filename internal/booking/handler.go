package booking

import (
	"errors"
	"net/http"
	"strconv"

	"drivebook/internal/api"
	"drivebook/internal/auth"
	"drivebook/internal/company"
	"drivebook/internal/pricing"
	"drivebook/internal/vehicle"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) userAndParam(c *gin.Context, param string) (userID, paramID int, ok bool) {
	userID, authed := auth.GetUserID(c)
	if !authed {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return 0, 0, false
	}

	paramID, err := strconv.Atoi(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid " + param})
		return 0, 0, false
	}

	return userID, paramID, true
}

// writeBookingError maps service errors onto HTTP statuses. Returns false
// when the error is not one of the known booking failures.
func writeBookingError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
	case errors.Is(err, vehicle.ErrVehicleNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Vehicle not found"})
	case errors.Is(err, company.ErrCompanyNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Company not found"})
	case errors.Is(err, company.ErrNotCompanyOwner):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You can only manage bookings for your own company"})
	case errors.Is(err, ErrNotBookingOwner):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You can only cancel your own bookings"})
	case errors.Is(err, ErrDateConflict):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Vehicle is already booked for these dates"})
	case errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Booking is not in a state that allows this action"})
	case errors.Is(err, ErrVehicleUnavailable):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Vehicle is not open for booking"})
	case errors.Is(err, ErrBookingNotPickedUp):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Vehicle has not been picked up"})
	case errors.Is(err, ErrMileageRequired), errors.Is(err, ErrMileageNegative), errors.Is(err, pricing.ErrInvalidMileage):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, pricing.ErrInvalidRange), errors.Is(err, pricing.ErrRentalTooShort), errors.Is(err, pricing.ErrRentalTooLong):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	default:
		return false
	}
	return true
}

// availabilityQuery checks the raw query strings for shape before they reach
// the resolver; ordering and range bounds stay in the service.
type availabilityQuery struct {
	PickupDate string `form:"pickup_date" validate:"required,datetime=2006-01-02"`
	PickupTime string `form:"pickup_time" validate:"required,datetime=15:04"`
	ReturnDate string `form:"return_date" validate:"required,datetime=2006-01-02"`
	ReturnTime string `form:"return_time" validate:"required,datetime=15:04"`
}

// @Summary      Check vehicle availability
// @Description  Price quote and date-range availability for one vehicle. Advisory; booking re-validates.
// @Tags         bookings
// @Produce      json
// @Param        vehicleID   path  int    true  "Vehicle ID"
// @Param        pickup_date query string true  "Pickup date (YYYY-MM-DD)"
// @Param        pickup_time query string true  "Pickup time (HH:MM)"
// @Param        return_date query string true  "Return date (YYYY-MM-DD)"
// @Param        return_time query string true  "Return time (HH:MM)"
// @Success      200 {object} booking.AvailabilityResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /vehicles/{vehicleID}/availability [get]
func (h *Handler) CheckAvailability(c *gin.Context) {
	vehicleID, err := strconv.Atoi(c.Param("vehicleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid vehicle ID"})
		return
	}

	var q availabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if errs := api.ValidateStruct(q); len(errs) > 0 {
		api.RespondWithValidationErrors(c, errs)
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), vehicleID,
		q.PickupDate, q.PickupTime, q.ReturnDate, q.ReturnTime)
	if err != nil {
		if !writeBookingError(c, err) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary      Book a vehicle
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        vehicleID path int true "Vehicle ID"
// @Param        request body booking.CreateBookingRequest true "Booking details"
// @Success      201 {object} booking.Booking
// @Failure      400 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /vehicles/{vehicleID}/bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	customerID, vehicleID, ok := h.userAndParam(c, "vehicleID")
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), customerID, vehicleID, req)
	if err != nil {
		if !writeBookingError(c, err) {
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create booking"})
		}
		return
	}

	c.JSON(http.StatusCreated, b)
}

// @Summary      Booking details
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} booking.Booking
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /bookings/{bookingID} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	userID, bookingID, ok := h.userAndParam(c, "bookingID")
	if !ok {
		return
	}

	role, _ := auth.GetUserRole(c)
	b, err := h.service.GetBooking(c.Request.Context(), userID, role, bookingID)
	if err != nil {
		if !writeBookingError(c, err) {
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load booking"})
		}
		return
	}

	c.JSON(http.StatusOK, b)
}

// @Summary      My bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} booking.Booking
// @Router       /bookings [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	customerID, authed := auth.GetUserID(c)
	if !authed {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookings, err := h.service.ListMyBookings(c.Request.Context(), customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to list bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// @Summary      Cancel booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} booking.Booking
// @Failure      403 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	userID, bookingID, ok := h.userAndParam(c, "bookingID")
	if !ok {
		return
	}

	role, _ := auth.GetUserRole(c)
	b, err := h.service.CancelBooking(c.Request.Context(), userID, role, bookingID)
	if err != nil {
		if !writeBookingError(c, err) {
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, b)
}

// transition wraps the owner-side lifecycle endpoints that share the same
// shape: path param, service call, error mapping.
func (h *Handler) transition(c *gin.Context, do func(ownerID, bookingID int) (*Booking, error), failMsg string) {
	ownerID, bookingID, ok := h.userAndParam(c, "bookingID")
	if !ok {
		return
	}

	b, err := do(ownerID, bookingID)
	if err != nil {
		if !writeBookingError(c, err) {
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: failMsg})
		}
		return
	}

	c.JSON(http.StatusOK, b)
}

// @Summary      Confirm booking
// @Tags         pro,bookings
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} booking.Booking
// @Failure      403 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /pro/bookings/{bookingID}/confirm [post]
func (h *Handler) ConfirmBooking(c *gin.Context) {
	h.transition(c, func(ownerID, bookingID int) (*Booking, error) {
		return h.service.ConfirmBooking(c.Request.Context(), ownerID, bookingID)
	}, "Failed to confirm booking")
}

// @Summary      Mark booking no-show
// @Tags         pro,bookings
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} booking.Booking
// @Failure      403 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /pro/bookings/{bookingID}/no-show [post]
func (h *Handler) MarkNoShow(c *gin.Context) {
	h.transition(c, func(ownerID, bookingID int) (*Booking, error) {
		return h.service.MarkNoShow(c.Request.Context(), ownerID, bookingID)
	}, "Failed to mark booking as no-show")
}

// @Summary      Record vehicle pickup
// @Tags         pro,bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Param        request body booking.PickupRequest true "Pickup details"
// @Success      200 {object} booking.Booking
// @Failure      400 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /pro/bookings/{bookingID}/pick-up [post]
func (h *Handler) RecordPickup(c *gin.Context) {
	var req PickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	h.transition(c, func(ownerID, bookingID int) (*Booking, error) {
		return h.service.RecordPickup(c.Request.Context(), ownerID, bookingID, req)
	}, "Failed to record pickup")
}

// @Summary      Record vehicle return
// @Tags         pro,bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Param        request body booking.ReturnRequest true "Return details"
// @Success      200 {object} booking.Booking
// @Failure      400 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /pro/bookings/{bookingID}/return [post]
func (h *Handler) RecordReturn(c *gin.Context) {
	var req ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	h.transition(c, func(ownerID, bookingID int) (*Booking, error) {
		return h.service.RecordReturn(c.Request.Context(), ownerID, bookingID, req)
	}, "Failed to record return")
}

// @Summary      Complete booking
// @Description  Final settlement. Credits the company wallet net of commission.
// @Tags         pro,bookings
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} booking.Booking
// @Failure      403 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /pro/bookings/{bookingID}/complete [post]
func (h *Handler) CompleteBooking(c *gin.Context) {
	h.transition(c, func(ownerID, bookingID int) (*Booking, error) {
		return h.service.CompleteBooking(c.Request.Context(), ownerID, bookingID)
	}, "Failed to complete booking")
}

// @Summary      Company bookings
// @Tags         pro,bookings
// @Produce      json
// @Security     BearerAuth
// @Param        companyID path int true "Company ID"
// @Success      200 {array} booking.Booking
// @Failure      403 {object} api.ErrorResponse
// @Router       /pro/companies/{companyID}/bookings [get]
func (h *Handler) ListCompanyBookings(c *gin.Context) {
	ownerID, companyID, ok := h.userAndParam(c, "companyID")
	if !ok {
		return
	}

	bookings, err := h.service.ListCompanyBookings(c.Request.Context(), ownerID, companyID)
	if err != nil {
		if !writeBookingError(c, err) {
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to list bookings"})
		}
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// @Summary      Vehicle bookings
// @Tags         pro,bookings
// @Produce      json
// @Security     BearerAuth
// @Param        vehicleID path int true "Vehicle ID"
// @Success      200 {array} booking.Booking
// @Failure      403 {object} api.ErrorResponse
// @Router       /pro/vehicles/{vehicleID}/bookings [get]
func (h *Handler) ListVehicleBookings(c *gin.Context) {
	ownerID, vehicleID, ok := h.userAndParam(c, "vehicleID")
	if !ok {
		return
	}

	bookings, err := h.service.ListVehicleBookings(c.Request.Context(), ownerID, vehicleID)
	if err != nil {
		if !writeBookingError(c, err) {
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to list bookings"})
		}
		return
	}

	c.JSON(http.StatusOK, bookings)
}
