package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/teleotp/teleotp/internal/models"
	"github.com/teleotp/teleotp/internal/service"
)

type HTTPHandler struct {
	authService      *service.AuthService
	marketService    *service.MarketService
	inventoryService *service.InventoryService
	otpService       *service.OTPService
	logger           *logrus.Logger
}

func NewHTTPHandler(
	authService *service.AuthService,
	marketService *service.MarketService,
	inventoryService *service.InventoryService,
	otpService *service.OTPService,
	logger *logrus.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		authService:      authService,
		marketService:    marketService,
		inventoryService: inventoryService,
		otpService:       otpService,
		logger:           logger,
	}
}

func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *HTTPHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if err == models.ErrEmailTaken {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.Errorf("Failed to register user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if err == models.ErrInvalidCredentials {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		h.logger.Errorf("Failed to log in user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *HTTPHandler) ListServices(c *gin.Context) {
	listings, err := h.marketService.ListServices(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Failed to list services: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": listings})
}

func (h *HTTPHandler) Purchase(c *gin.Context) {
	var req struct {
		ServiceID string `json:"service_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.marketService.Purchase(c.Request.Context(), c.GetString("user_id"), req.ServiceID)
	if err != nil {
		switch err {
		case models.ErrNoStock:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case models.ErrServiceNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case models.ErrServiceInactive:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Errorf("Failed to purchase number: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *HTTPHandler) ListOrders(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)

	orders, err := h.marketService.ListOrders(c.Request.Context(), c.GetString("user_id"), limit)
	if err != nil {
		h.logger.Errorf("Failed to list orders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *HTTPHandler) AdminAddService(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Price string `json:"price"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, err := h.inventoryService.AddService(c.Request.Context(), req.Name, req.Price)
	if err != nil {
		h.logger.Errorf("Failed to add service: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, svc)
}

func (h *HTTPHandler) AdminAddNumbers(c *gin.Context) {
	var req struct {
		Numbers string `json:"numbers" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := h.inventoryService.AddNumbers(c.Request.Context(), c.Param("id"), req.Numbers)
	if err != nil {
		if err == models.ErrServiceNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Errorf("Failed to add numbers: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"added": count})
}

func (h *HTTPHandler) AdminListServices(c *gin.Context) {
	inventory, err := h.inventoryService.ListServicesWithNumbers(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Failed to list inventory: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": inventory})
}

func (h *HTTPHandler) AdminDeleteNumber(c *gin.Context) {
	err := h.inventoryService.DeleteNumber(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch err {
		case models.ErrNumberNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case models.ErrNumberSold:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.logger.Errorf("Failed to delete number: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *HTTPHandler) AdminListOrders(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)

	orders, err := h.inventoryService.ListRecentOrders(c.Request.Context(), limit)
	if err != nil {
		h.logger.Errorf("Failed to list orders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// AdminSendOTP is the manual override: the operator types the code for a
// known order, bypassing the webhook entirely.
func (h *HTTPHandler) AdminSendOTP(c *gin.Context) {
	var req struct {
		OTPCode string `json:"otp_code" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.otpService.ManualDeliver(c.Request.Context(), c.Param("order_id"), req.OTPCode)
	if err != nil {
		if err == models.ErrOrderNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Errorf("Failed to deliver OTP manually: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"order_id": order.OrderID,
	})
}
