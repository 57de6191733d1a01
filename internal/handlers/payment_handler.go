package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/learnsphere/lms-service/internal/auth"
	"github.com/learnsphere/lms-service/internal/services"
	"github.com/learnsphere/lms-service/internal/utils"
)

type PaymentHandler struct {
	BaseHandler
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService, logger utils.Logger) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    NewBaseHandler(logger),
		paymentService: paymentService,
	}
}

// VerifyPayment reconciles a client-reported payment intent and enrolls the
// user on success. Safe to retry: a known intent returns the existing record.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	courseID := parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	var req struct {
		IntentID string `json:"intent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.IntentID) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "intent_id is required"})
		return
	}

	payment, err := h.paymentService.VerifyAndEnroll(c.Request.Context(), auth.UserIDFromContext(c), courseID, req.IntentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// GetMyPayments lists the current user's payment history.
func (h *PaymentHandler) GetMyPayments(c *gin.Context) {
	payments, err := h.paymentService.GetByUser(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, payments)
}
