package company

import (
	"errors"
	"net/http"
	"strconv"

	"drivebook/internal/api"
	"drivebook/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Register a company
// @Description  Owner-only: create a new business (hotel, restaurant or car_rental). Starts inactive until approved.
// @Tags         pro,companies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body company.CreateCompanyRequest true "Company payload"
// @Success      201 {object} company.Company
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /pro/companies [post]
func (h *Handler) CreateCompany(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	company, err := h.service.CreateCompany(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrInvalidCompanyType) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "type must be hotel, restaurant or car_rental"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create company"})
		return
	}

	c.JSON(http.StatusCreated, company)
}

// @Summary      List my companies
// @Tags         pro,companies
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} company.Company
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /pro/companies [get]
func (h *Handler) ListMyCompanies(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	companies, err := h.service.ListMyCompanies(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch companies"})
		return
	}

	c.JSON(http.StatusOK, companies)
}

// @Summary      Update a company
// @Tags         pro,companies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyID path int true "Company ID"
// @Param        request body company.UpdateCompanyRequest true "Company payload"
// @Success      200 {object} company.Company
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /pro/companies/{companyID} [put]
func (h *Handler) UpdateCompany(c *gin.Context) {
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

	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	company, err := h.service.UpdateCompany(c.Request.Context(), userID, companyID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrCompanyNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Company not found"})
		case errors.Is(err, ErrNotCompanyOwner):
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You can only update your own companies"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update company"})
		}
		return
	}

	c.JSON(http.StatusOK, company)
}

// @Summary      List all companies
// @Description  Admin only.
// @Tags         admin,companies
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} company.Company
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/companies [get]
func (h *Handler) ListAllCompanies(c *gin.Context) {
	companies, err := h.service.ListAllCompanies(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch companies"})
		return
	}

	c.JSON(http.StatusOK, companies)
}

// @Summary      Activate a company
// @Description  Admin only. Inactive companies cannot take bookings.
// @Tags         admin,companies
// @Produce      json
// @Security     BearerAuth
// @Param        companyID path int true "Company ID"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/companies/{companyID}/activate [post]
func (h *Handler) ActivateCompany(c *gin.Context) {
	h.setActive(c, true, "Company activated")
}

// @Summary      Deactivate a company
// @Description  Admin only. Inactive companies cannot take bookings.
// @Tags         admin,companies
// @Produce      json
// @Security     BearerAuth
// @Param        companyID path int true "Company ID"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/companies/{companyID}/deactivate [post]
func (h *Handler) DeactivateCompany(c *gin.Context) {
	h.setActive(c, false, "Company deactivated")
}

func (h *Handler) setActive(c *gin.Context, active bool, message string) {
	companyID, err := strconv.Atoi(c.Param("companyID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid company ID"})
		return
	}

	if err := h.service.SetCompanyActive(c.Request.Context(), companyID, active); err != nil {
		if errors.Is(err, ErrCompanyNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Company not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update company"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: message})
}
