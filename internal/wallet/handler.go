package wallet

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

func (h *Handler) companyParam(c *gin.Context) (ownerID, companyID int, ok bool) {
	ownerID, authed := auth.GetUserID(c)
	if !authed {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return 0, 0, false
	}

	companyID, err := strconv.Atoi(c.Param("companyID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid company ID"})
		return 0, 0, false
	}

	return ownerID, companyID, true
}

func writeOwnershipError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, company.ErrCompanyNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Company not found"})
	case errors.Is(err, company.ErrNotCompanyOwner):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You can only access your own company's wallet"})
	default:
		return false
	}
	return true
}

// @Summary      Company wallet
// @Tags         pro,wallet
// @Produce      json
// @Security     BearerAuth
// @Param        companyID path int true "Company ID"
// @Success      200 {object} wallet.Wallet
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /pro/companies/{companyID}/wallet [get]
func (h *Handler) GetWallet(c *gin.Context) {
	ownerID, companyID, ok := h.companyParam(c)
	if !ok {
		return
	}

	w, err := h.service.GetWallet(c.Request.Context(), ownerID, companyID)
	if err != nil {
		if !writeOwnershipError(c, err) {
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load wallet"})
		}
		return
	}

	c.JSON(http.StatusOK, w)
}

// @Summary      Wallet transactions
// @Tags         pro,wallet
// @Produce      json
// @Security     BearerAuth
// @Param        companyID path int true "Company ID"
// @Param        limit query int false "Page size (default 50)"
// @Param        offset query int false "Offset"
// @Success      200 {array} wallet.Transaction
// @Failure      403 {object} api.ErrorResponse
// @Router       /pro/companies/{companyID}/wallet/transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	ownerID, companyID, ok := h.companyParam(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.service.GetTransactions(c.Request.Context(), ownerID, companyID, limit, offset)
	if err != nil {
		if !writeOwnershipError(c, err) {
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load transactions"})
		}
		return
	}

	c.JSON(http.StatusOK, txs)
}

// @Summary      Request withdrawal
// @Description  Reserves the amount from the available balance immediately.
// @Tags         pro,wallet
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyID path int true "Company ID"
// @Param        request body wallet.WithdrawRequestBody true "Withdrawal payload"
// @Success      201 {object} wallet.WithdrawalRequest
// @Failure      400 {object} api.ErrorResponse
// @Failure      402 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Router       /pro/companies/{companyID}/wallet/withdraw [post]
func (h *Handler) RequestWithdrawal(c *gin.Context) {
	ownerID, companyID, ok := h.companyParam(c)
	if !ok {
		return
	}

	var req WithdrawRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	request, err := h.service.RequestWithdrawal(c.Request.Context(), ownerID, companyID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientBalance):
			c.JSON(http.StatusPaymentRequired, api.ErrorResponse{Error: "Insufficient available balance"})
		case errors.Is(err, ErrWithdrawalBelowMinimum):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Withdrawal amount below minimum"})
		default:
			if !writeOwnershipError(c, err) {
				c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to request withdrawal"})
			}
		}
		return
	}

	c.JSON(http.StatusCreated, request)
}

// @Summary      List my withdrawal requests
// @Tags         pro,wallet
// @Produce      json
// @Security     BearerAuth
// @Param        companyID path int true "Company ID"
// @Success      200 {array} wallet.WithdrawalRequest
// @Failure      403 {object} api.ErrorResponse
// @Router       /pro/companies/{companyID}/wallet/withdrawals [get]
func (h *Handler) ListWithdrawals(c *gin.Context) {
	ownerID, companyID, ok := h.companyParam(c)
	if !ok {
		return
	}

	requests, err := h.service.ListWithdrawals(c.Request.Context(), ownerID, companyID)
	if err != nil {
		if !writeOwnershipError(c, err) {
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load withdrawals"})
		}
		return
	}

	c.JSON(http.StatusOK, requests)
}

// @Summary      List pending withdrawals
// @Description  Admin back-office review queue.
// @Tags         admin,wallet
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} wallet.WithdrawalRequest
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/withdrawals [get]
func (h *Handler) ListPendingWithdrawals(c *gin.Context) {
	requests, err := h.service.ListPendingWithdrawals(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load withdrawals"})
		return
	}

	c.JSON(http.StatusOK, requests)
}

// @Summary      Approve withdrawal
// @Tags         admin,wallet
// @Produce      json
// @Security     BearerAuth
// @Param        requestID path int true "Withdrawal request ID"
// @Success      200 {object} wallet.WithdrawalRequest
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/withdrawals/{requestID}/approve [post]
func (h *Handler) ApproveWithdrawal(c *gin.Context) {
	h.review(c, func(requestID int) (*WithdrawalRequest, error) {
		return h.service.ApproveWithdrawal(c.Request.Context(), requestID)
	})
}

// @Summary      Reject withdrawal
// @Description  Restores the reserved amount to the company's available balance.
// @Tags         admin,wallet
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        requestID path int true "Withdrawal request ID"
// @Param        request body wallet.RejectWithdrawalRequest true "Rejection reason"
// @Success      200 {object} wallet.WithdrawalRequest
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/withdrawals/{requestID}/reject [post]
func (h *Handler) RejectWithdrawal(c *gin.Context) {
	var req RejectWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	h.review(c, func(requestID int) (*WithdrawalRequest, error) {
		return h.service.RejectWithdrawal(c.Request.Context(), requestID, req.Reason)
	})
}

// @Summary      Complete withdrawal
// @Description  Marks an approved withdrawal as paid out.
// @Tags         admin,wallet
// @Produce      json
// @Security     BearerAuth
// @Param        requestID path int true "Withdrawal request ID"
// @Success      200 {object} wallet.WithdrawalRequest
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/withdrawals/{requestID}/complete [post]
func (h *Handler) CompleteWithdrawal(c *gin.Context) {
	h.review(c, func(requestID int) (*WithdrawalRequest, error) {
		return h.service.CompleteWithdrawal(c.Request.Context(), requestID)
	})
}

func (h *Handler) review(c *gin.Context, fn func(requestID int) (*WithdrawalRequest, error)) {
	requestID, err := strconv.Atoi(c.Param("requestID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request ID"})
		return
	}

	request, err := fn(requestID)
	if err != nil {
		switch {
		case errors.Is(err, ErrWithdrawalNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Withdrawal request not found"})
		case errors.Is(err, ErrWithdrawalNotPending):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Withdrawal request already reviewed"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update withdrawal"})
		}
		return
	}

	c.JSON(http.StatusOK, request)
}
