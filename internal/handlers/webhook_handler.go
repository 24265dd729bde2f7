package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/teleotp/teleotp/internal/models"
	"github.com/teleotp/teleotp/internal/service"
)

// WebhookHandler receives OTP codes from the external monitoring agent.
type WebhookHandler struct {
	otpService *service.OTPService
	secret     string
	metrics    service.MetricsRecorder
	logger     *logrus.Logger
}

func NewWebhookHandler(otpService *service.OTPService, secret string, metrics service.MetricsRecorder, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		otpService: otpService,
		secret:     secret,
		metrics:    metrics,
		logger:     logger,
	}
}

type receiveOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
	OTPCode     string `json:"otp_code"`
}

// ReceiveOTP handles POST /webhooks/otp. The caller authenticates with the
// x-webhook-secret header, compared for exact equality against the configured
// value; an unconfigured secret rejects everything.
func (h *WebhookHandler) ReceiveOTP(c *gin.Context) {
	provided := c.GetHeader("x-webhook-secret")
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
		h.metrics.IncrementWebhookUnauthorized()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req receiveOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PhoneNumber == "" || req.OTPCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone_number and otp_code are required"})
		return
	}

	order, err := h.otpService.Deliver(c.Request.Context(), req.PhoneNumber, req.OTPCode)
	if err != nil {
		if err == models.ErrNoPendingOrder {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "No pending order found for this number",
				"details": gin.H{"phone_number": req.PhoneNumber},
			})
			return
		}

		h.logger.Errorf("Failed to deliver OTP for %s: %v", req.PhoneNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update order",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"order_id": order.OrderID,
	})
}
