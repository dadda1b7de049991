package vehicle

import (
	"errors"
	"net/http"
	"strconv"

	"drivebook/internal/api"
	"drivebook/internal/auth"
	"drivebook/internal/company"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) writeOwnershipError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrVehicleNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Vehicle not found"})
	case errors.Is(err, company.ErrCompanyNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Company not found"})
	case errors.Is(err, company.ErrNotCompanyOwner):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You can only manage your own vehicles"})
	case errors.Is(err, ErrNotCarRentalCompany):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Vehicles can only be added to car rental companies"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
	}
}

// @Summary      List available vehicles
// @Description  Vehicles on the market from active companies.
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} vehicle.Vehicle
// @Failure      500 {object} api.ErrorResponse
// @Router       /vehicles [get]
func (h *Handler) ListVehicles(c *gin.Context) {
	vehicles, err := h.service.ListAvailableVehicles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch vehicles"})
		return
	}

	c.JSON(http.StatusOK, vehicles)
}

// @Summary      Get vehicle
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        vehicleID path int true "Vehicle ID"
// @Success      200 {object} vehicle.Vehicle
// @Failure      404 {object} api.ErrorResponse
// @Router       /vehicles/{vehicleID} [get]
func (h *Handler) GetVehicle(c *gin.Context) {
	vehicleID, err := strconv.Atoi(c.Param("vehicleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid vehicle ID"})
		return
	}

	v, err := h.service.GetVehicle(c.Request.Context(), vehicleID)
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Vehicle not found"})
		return
	}

	c.JSON(http.StatusOK, v)
}

// @Summary      Add a vehicle
// @Tags         pro,vehicles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body vehicle.CreateVehicleRequest true "Vehicle payload"
// @Success      201 {object} vehicle.Vehicle
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /pro/vehicles [post]
func (h *Handler) CreateVehicle(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	v, err := h.service.CreateVehicle(c.Request.Context(), userID, req)
	if err != nil {
		h.writeOwnershipError(c, err)
		return
	}

	c.JSON(http.StatusCreated, v)
}

// @Summary      List company vehicles
// @Tags         pro,vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        companyID path int true "Company ID"
// @Success      200 {array} vehicle.Vehicle
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /pro/companies/{companyID}/vehicles [get]
func (h *Handler) ListCompanyVehicles(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	companyID, err := strconv.Atoi(c.Param("companyID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid company ID"})
		return
	}

	vehicles, err := h.service.ListCompanyVehicles(c.Request.Context(), userID, companyID)
	if err != nil {
		h.writeOwnershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, vehicles)
}

// @Summary      Update a vehicle
// @Tags         pro,vehicles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        vehicleID path int true "Vehicle ID"
// @Param        request body vehicle.UpdateVehicleRequest true "Vehicle payload"
// @Success      200 {object} vehicle.Vehicle
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /pro/vehicles/{vehicleID} [put]
func (h *Handler) UpdateVehicle(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	vehicleID, err := strconv.Atoi(c.Param("vehicleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid vehicle ID"})
		return
	}

	var req UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	v, err := h.service.UpdateVehicle(c.Request.Context(), userID, vehicleID, req)
	if err != nil {
		h.writeOwnershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, v)
}

// @Summary      Toggle vehicle availability
// @Description  Pull a vehicle off the market or put it back, independent of bookings.
// @Tags         pro,vehicles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        vehicleID path int true "Vehicle ID"
// @Param        request body vehicle.SetAvailabilityRequest true "Availability flag"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /pro/vehicles/{vehicleID}/availability [post]
func (h *Handler) SetAvailability(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	vehicleID, err := strconv.Atoi(c.Param("vehicleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid vehicle ID"})
		return
	}

	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsAvailable == nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "is_available is required"})
		return
	}

	if err := h.service.SetVehicleAvailability(c.Request.Context(), userID, vehicleID, *req.IsAvailable); err != nil {
		h.writeOwnershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Vehicle availability updated"})
}

// @Summary      Delete a vehicle
// @Tags         pro,vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        vehicleID path int true "Vehicle ID"
// @Success      200 {object} api.MessageResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /pro/vehicles/{vehicleID} [delete]
func (h *Handler) DeleteVehicle(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	vehicleID, err := strconv.Atoi(c.Param("vehicleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid vehicle ID"})
		return
	}

	if err := h.service.DeleteVehicle(c.Request.Context(), userID, vehicleID); err != nil {
		h.writeOwnershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Vehicle deleted"})
}
