package handlers

import (
	"net/http"
	"time"

	"axone_backend/internal/appErrors"
	"axone_backend/internal/auth"
	"axone_backend/internal/logger"
	"axone_backend/internal/models"
	"axone_backend/internal/services/dto"
	"axone_backend/internal/signup"

	"github.com/gin-gonic/gin"
)

type SignupHandler struct {
	*BaseHandler
	manager   *signup.Manager
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewSignupHandler(base *BaseHandler, manager *signup.Manager, jwtSecret []byte, jwtTTL time.Duration) *SignupHandler {
	return &SignupHandler{
		BaseHandler: base,
		manager:     manager,
		jwtSecret:   jwtSecret,
		jwtTTL:      jwtTTL,
	}
}

func (h *SignupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/signup")
	{
		grp.POST("/start", h.Start)
		grp.GET("/:id", h.GetState)
		grp.POST("/:id/form", h.SubmitForm)
		grp.POST("/:id/otp", h.VerifyCode)
		grp.POST("/:id/payment", h.BeginPayment)
		grp.POST("/:id/confirm", h.ConfirmPayment)
		grp.POST("/:id/onboarding", h.CompleteOnboarding)
	}
}

// Start начинает новый signup-флоу.
func (h *SignupHandler) Start(c *gin.Context) {
	orch, err := h.manager.Start()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	state := orch.Snapshot()
	logger.CtxInfo(c.Request.Context(), "signup flow started", "signup_id", state.ID)
	c.JSON(http.StatusCreated, stateResponse(&state))
}

// GetState возвращает текущий шаг флоу. Клиент зовет это после
// перезагрузки страницы, чтобы продолжить с места остановки.
func (h *SignupHandler) GetState(c *gin.Context) {
	orch, err := h.manager.Get(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	state := orch.Snapshot()
	c.JSON(http.StatusOK, stateResponse(&state))
}

// SubmitForm - шаг form.
func (h *SignupHandler) SubmitForm(c *gin.Context) {
	orch, err := h.manager.Get(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	var req dto.SignupFormRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	err = orch.SubmitForm(c.Request.Context(), signup.FormData{
		Email:         req.Email,
		Password:      req.Password,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		Country:       req.Country,
		Plan:          req.Plan,
		Currency:      req.Currency,
		TermsAccepted: req.TermsAccepted,
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	state := orch.Snapshot()
	c.JSON(http.StatusOK, stateResponse(&state))
}

// VerifyCode - шаг otp.
func (h *SignupHandler) VerifyCode(c *gin.Context) {
	orch, err := h.manager.Get(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	var req dto.VerifyCodeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := orch.VerifyCode(c.Request.Context(), req.Code); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	state := orch.Snapshot()
	c.JSON(http.StatusOK, stateResponse(&state))
}

// BeginPayment создает checkout-сессию и возвращает URL редиректа.
func (h *SignupHandler) BeginPayment(c *gin.Context) {
	orch, err := h.manager.Get(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	redirectURL, err := orch.BeginPayment(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"redirect_url": redirectURL})
}

// ConfirmPayment подтверждает оплату после возврата со шлюза.
func (h *SignupHandler) ConfirmPayment(c *gin.Context) {
	orch, err := h.manager.Get(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	var req dto.ConfirmPaymentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := orch.ConfirmPayment(c.Request.Context(), req.SessionID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	state := orch.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"state":  stateResponse(&state),
		"result": result,
	})
}

// CompleteOnboarding завершает онбординг и логинит пользователя. При
// неудачном входе клиент получает redirect на обычную страницу логина.
func (h *SignupHandler) CompleteOnboarding(c *gin.Context) {
	ctx := c.Request.Context()

	orch, err := h.manager.Get(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	ident, err := orch.CompleteOnboarding(ctx)
	if err != nil {
		// Неудачный вход не тупик: аккаунт уже создан, отправляем на
		// обычную страницу логина
		var appErr *appErrors.AppError
		if appErrors.As(err, &appErr) && appErr.Code == appErrors.CodeSignInFailed {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":    appErr.Message,
				"redirect": "/login",
			})
			return
		}
		h.HandleServiceError(c, err)
		return
	}

	h.manager.Forget(c.Param("id"))

	token, err := auth.GenerateToken(ident.ID, string(models.UserRoleIndividual), h.jwtSecret, h.jwtTTL)
	if err != nil {
		logger.CtxWithError(ctx, "token generation failed after onboarding", err, "user_id", ident.ID)
		// Аккаунт готов, просто токен не выдали - тоже на ручной логин
		c.JSON(http.StatusOK, gin.H{"redirect": "/login"})
		return
	}

	logger.CtxInfo(ctx, "signup flow completed", "user_id", ident.ID)
	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"user_id":  ident.ID,
		"email":    ident.Email,
		"redirect": "/dashboard",
	})
}

func stateResponse(state *signup.State) dto.SignupStateResponse {
	return dto.SignupStateResponse{
		ID:                  state.ID,
		Step:                string(state.Step),
		OTPVerified:         state.OTPVerified,
		PaymentCompleted:    state.PaymentCompleted,
		OnboardingCompleted: state.OnboardingCompleted,
	}
}
