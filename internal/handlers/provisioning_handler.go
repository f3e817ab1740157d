package handlers

import (
	"net/http"

	"axone_backend/internal/appErrors"
	"axone_backend/internal/logger"
	"axone_backend/internal/services"
	"axone_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ProvisioningHandler struct {
	*BaseHandler
	provisioningService services.ProvisioningService
}

func NewProvisioningHandler(base *BaseHandler, provisioningService services.ProvisioningService) *ProvisioningHandler {
	return &ProvisioningHandler{
		BaseHandler:         base,
		provisioningService: provisioningService,
	}
}

// RegisterRoutes регистрирует маршруты подтверждения оплаты.
// Один и тот же обработчик доступен клиенту после возврата со шлюза и
// серверному колбэку шлюза - оба пути идемпотентны.
func (h *ProvisioningHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/verify", h.VerifyPayment)
	rg.POST("/webhooks/checkout", h.VerifyPayment)
}

// VerifyPayment подтверждает оплату и провиженит аккаунт.
//
// Ответы намеренно плоские (без конверта appErrors) - это внешний
// контракт для клиента и вебхука шлюза.
func (h *ProvisioningHandler) VerifyPayment(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.provisioningService.Provision(ctx, req.SessionID)
	if err != nil {
		h.respondProvisioningError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"userId":    result.UserID,
		"sessionId": result.SessionID,
		"created":   result.Created,
		"email":     result.Email,
	})
}

func (h *ProvisioningHandler) respondProvisioningError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *appErrors.AppError
	if !appErrors.As(err, &appErr) {
		logger.CtxWithError(ctx, "unexpected provisioning error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment verification error"})
		return
	}

	switch appErr.Code {
	case appErrors.CodeInvalidRequest:
		c.JSON(http.StatusBadRequest, gin.H{"error": appErr.Message})
	case appErrors.CodeSessionNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": appErr.Message})
	case appErrors.CodePaymentIncomplete:
		// Ретраибельный исход: клиент перепроверит позже
		resp := gin.H{"error": appErr.Message}
		if details, ok := appErr.Details.(map[string]string); ok {
			resp["status"] = details["status"]
			resp["paymentStatus"] = details["payment_status"]
		}
		c.JSON(http.StatusBadRequest, resp)
	default:
		// Какой под-шаг упал - только в логи, наружу общий текст
		logger.CtxWithError(ctx, "provisioning failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment verification error"})
	}
}
