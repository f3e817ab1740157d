package dto

// SignupFormRequest - данные шага form.
type SignupFormRequest struct {
	Email         string `json:"email" binding:"required" validate:"required,email"`
	Password      string `json:"password" binding:"required" validate:"required,min=8"`
	FirstName     string `json:"first_name" binding:"required" validate:"required"`
	LastName      string `json:"last_name" binding:"required" validate:"required"`
	Phone         string `json:"phone"`
	Country       string `json:"country"`
	Plan          string `json:"plan" binding:"required" validate:"required"`
	Currency      string `json:"currency" validate:"omitempty,is-currency"`
	TermsAccepted bool   `json:"terms_accepted"`
}

// VerifyCodeRequest - данные шага otp.
type VerifyCodeRequest struct {
	Code string `json:"code" binding:"required" validate:"required"`
}

// ConfirmPaymentRequest - подтверждение оплаты после возврата со шлюза.
// session_id опционален: если пусто, берется сессия, созданная на шаге
// payment этого же флоу.
type ConfirmPaymentRequest struct {
	SessionID string `json:"session_id"`
}

// SignupStateResponse - текущее состояние signup-флоу.
type SignupStateResponse struct {
	ID                  string `json:"id"`
	Step                string `json:"step"`
	OTPVerified         bool   `json:"otp_verified"`
	PaymentCompleted    bool   `json:"payment_completed"`
	OnboardingCompleted bool   `json:"onboarding_completed"`
}
