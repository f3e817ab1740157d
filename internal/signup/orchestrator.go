package signup

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"axone_backend/internal/appErrors"
	"axone_backend/internal/auth"
	"axone_backend/internal/billing"
	"axone_backend/internal/email"
	"axone_backend/internal/gateway"
	"axone_backend/internal/identity"
	"axone_backend/internal/logger"
	"axone_backend/internal/services/dto"
)

// Confirmer подтверждает оплату по checkout-сессии. Реализуется
// ProvisioningService; в распределенном деплое это может быть HTTP-вызов.
type Confirmer interface {
	Provision(ctx context.Context, sessionID string) (*dto.ProvisioningResult, error)
}

// Deps - зависимости оркестратора.
type Deps struct {
	Store      Store
	Identities identity.Client
	Gateway    gateway.Client
	Confirmer  Confirmer
	Mailer     email.Provider

	SuccessURL string
	CancelURL  string

	// Подтверждение оплаты: один ограниченный по времени вызов плюс
	// один ретрай с паузой.
	ConfirmTimeout time.Duration
	RetryBackoff   time.Duration
}

// Orchestrator ведет пользователя по шагам
// form -> otp -> payment -> onboarding -> dashboard.
//
// Каждый переход висит ровно на одном сетевом вызове; пока вызов в
// полете, повторный сабмит того же шага отбивается (ErrCallInFlight),
// а упавший вызов оставляет состояние на текущем шаге.
type Orchestrator struct {
	mu       sync.Mutex
	inFlight bool

	state *State
	deps  Deps
}

func New(state *State, deps Deps) *Orchestrator {
	if deps.ConfirmTimeout == 0 {
		deps.ConfirmTimeout = 15 * time.Second
	}
	if deps.RetryBackoff == 0 {
		deps.RetryBackoff = 2 * time.Second
	}
	return &Orchestrator{state: state, deps: deps}
}

// Snapshot возвращает копию текущего состояния.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return *o.state
}

// begin захватывает шаг: проверяет, что флоу на нужном шаге и что
// другой вызов не в полете.
func (o *Orchestrator) begin(step Step) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.inFlight {
		return appErrors.ErrCallInFlight
	}
	if o.state.Step != step {
		return appErrors.ErrSignupStepMismatch.WithDetails(map[string]string{
			"current_step": string(o.state.Step),
		})
	}
	o.inFlight = true
	return nil
}

func (o *Orchestrator) end() {
	o.mu.Lock()
	o.inFlight = false
	o.mu.Unlock()
}

// SubmitForm - шаг form: валидация, предсоздание identity (чтобы шагу
// otp было кого подтверждать), отправка кода.
func (o *Orchestrator) SubmitForm(ctx context.Context, form FormData) error {
	if err := o.begin(StepForm); err != nil {
		return err
	}
	defer o.end()

	if err := validateForm(&form); err != nil {
		return err
	}

	_, err := o.deps.Identities.Create(ctx, &identity.CreateParams{
		Email:          form.Email,
		Password:       form.Password,
		EmailConfirmed: false,
		Attributes: map[string]string{
			"first_name": form.FirstName,
			"last_name":  form.LastName,
			"phone":      form.Phone,
			"country":    form.Country,
		},
	})
	if err != nil {
		if appErrors.Is(err, identity.ErrIdentityExists) {
			return appErrors.ErrEmailAlreadyExists
		}
		logger.CtxWithError(ctx, "identity pre-creation failed", err, "email", form.Email)
		return appErrors.Wrap(err, appErrors.CodeExternalServiceError,
			"Could not start signup, please try again", http.StatusBadGateway)
	}

	code := generateCode()
	if err := o.deps.Mailer.SendVerificationCode(form.Email, code); err != nil {
		// Identity уже создана, но без кода шаг otp непроходим -
		// остаемся на form, пользователь сабмитит снова.
		logger.CtxWithError(ctx, "verification code send failed", err, "email", form.Email)
		return appErrors.Wrap(err, appErrors.CodeExternalServiceError,
			"Could not send the verification code, please try again", http.StatusBadGateway)
	}

	o.mu.Lock()
	o.state.Form = form
	o.state.ExpectedCode = code
	o.state.advance()
	o.mu.Unlock()

	return o.save(ctx)
}

// VerifyCode - шаг otp. Несовпадение кода не двигает состояние и не
// создает новых identity. Отмены у шага нет: либо код, либо уход.
func (o *Orchestrator) VerifyCode(ctx context.Context, code string) error {
	if err := o.begin(StepOTP); err != nil {
		return err
	}
	defer o.end()

	o.mu.Lock()
	expected := o.state.ExpectedCode
	o.mu.Unlock()

	if subtle.ConstantTimeCompare([]byte(code), []byte(expected)) != 1 {
		return appErrors.ErrInvalidCode
	}

	o.mu.Lock()
	o.state.OTPVerified = true
	o.state.ExpectedCode = ""
	o.state.advance()
	o.mu.Unlock()

	return o.save(ctx)
}

// BeginPayment создает checkout-сессию с метаданными и возвращает URL
// редиректа. Редирект безусловен: раз шаг payment достигнут, otp уже
// пройден. Состояние остается на payment до ConfirmPayment.
func (o *Orchestrator) BeginPayment(ctx context.Context) (string, error) {
	if err := o.begin(StepPayment); err != nil {
		return "", err
	}
	defer o.end()

	o.mu.Lock()
	form := o.state.Form
	o.mu.Unlock()

	session, err := o.deps.Gateway.CreateSession(ctx, &gateway.CreateSessionParams{
		AmountMinor: billing.AmountMinorFor(billing.ResolvePlan(form.Plan)),
		SuccessURL:  o.deps.SuccessURL,
		CancelURL:   o.deps.CancelURL,
		Metadata: gateway.SessionMetadata{
			Email:     form.Email,
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Phone:     form.Phone,
			Country:   form.Country,
			Password:  form.Password,
			Plan:      form.Plan,
			Currency:  form.Currency,
		},
	})
	if err != nil {
		logger.CtxWithError(ctx, "checkout session creation failed", err)
		return "", appErrors.Wrap(err, appErrors.CodeExternalServiceError,
			"Could not start payment, please try again", http.StatusBadGateway)
	}

	o.mu.Lock()
	o.state.SessionID = session.ID
	o.mu.Unlock()

	if err := o.save(ctx); err != nil {
		return "", err
	}
	return session.RedirectURL, nil
}

// ConfirmPayment запускает провижининг по сессии: один вызов с
// ограничением по времени и один ретрай с паузой. Таймаут наружу
// уходит как отдельный исход ErrProvisioningTimeout.
func (o *Orchestrator) ConfirmPayment(ctx context.Context, sessionID string) (*dto.ProvisioningResult, error) {
	if err := o.begin(StepPayment); err != nil {
		return nil, err
	}
	defer o.end()

	o.mu.Lock()
	if sessionID == "" {
		sessionID = o.state.SessionID
	} else {
		o.state.SessionID = sessionID
	}
	o.mu.Unlock()

	if sessionID == "" {
		return nil, appErrors.ErrInvalidRequest
	}

	result, err := o.provisionOnce(ctx, sessionID)
	if err != nil && isRetryable(err) {
		logger.CtxWarn(ctx, "payment confirmation failed, retrying once", "error", err.Error())
		time.Sleep(o.deps.RetryBackoff)
		result, err = o.provisionOnce(ctx, sessionID)
	}
	if err != nil {
		if appErrors.Is(err, context.DeadlineExceeded) {
			return nil, appErrors.ErrProvisioningTimeout
		}
		// PaymentIncomplete и прочие типизированные ошибки уходят
		// как есть, состояние не двигается
		return nil, err
	}

	o.mu.Lock()
	o.state.PaymentCompleted = true
	o.state.advance()
	o.mu.Unlock()

	if err := o.save(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

func (o *Orchestrator) provisionOnce(ctx context.Context, sessionID string) (*dto.ProvisioningResult, error) {
	cctx, cancel := context.WithTimeout(ctx, o.deps.ConfirmTimeout)
	defer cancel()
	return o.deps.Confirmer.Provision(cctx, sessionID)
}

// isRetryable: ретраим таймауты и фатальные сбои провижининга
// (транзиентные по своей природе - повторный вызов идемпотентен).
// Незавершенный платеж не ретраим: шлюз еще не увидел оплату,
// немедленный повтор ничего не изменит.
func isRetryable(err error) bool {
	if appErrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var appErr *appErrors.AppError
	if appErrors.As(err, &appErr) {
		return appErr.Code == appErrors.CodeProvisioningFailed
	}
	return true
}

// CompleteOnboarding - шаг onboarding: колбэк завершения срабатывает
// ровно один раз, затем вход с исходной парой email/пароль. Неудачный
// вход не зацикливает флоу - пользователь уходит на обычный логин.
func (o *Orchestrator) CompleteOnboarding(ctx context.Context) (*identity.Identity, error) {
	if err := o.begin(StepOnboarding); err != nil {
		return nil, err
	}
	defer o.end()

	o.mu.Lock()
	form := o.state.Form
	alreadyCompleted := o.state.OnboardingCompleted
	o.mu.Unlock()

	if !alreadyCompleted {
		o.mu.Lock()
		o.state.OnboardingCompleted = true
		o.mu.Unlock()
		if err := o.save(ctx); err != nil {
			return nil, err
		}
	}

	ident, err := o.deps.Identities.VerifyPassword(ctx, form.Email, form.Password)
	if err != nil {
		logger.CtxWithError(ctx, "post-onboarding sign-in failed", err, "email", form.Email)
		return nil, appErrors.ErrSignInFailed
	}

	o.mu.Lock()
	o.state.advance()
	id := o.state.ID
	o.mu.Unlock()

	// Флоу завершен, состояние (вместе с паролем) уничтожается
	if err := o.deps.Store.Delete(id); err != nil {
		logger.CtxWarn(ctx, "failed to delete signup state", "error", err.Error(), "signup_id", id)
	}

	return ident, nil
}

func (o *Orchestrator) save(ctx context.Context) error {
	o.mu.Lock()
	clone := *o.state
	o.mu.Unlock()

	if err := o.deps.Store.Save(&clone); err != nil {
		logger.CtxWithError(ctx, "failed to persist signup state", err, "signup_id", clone.ID)
		return appErrors.InternalError(err)
	}
	return nil
}

func validateForm(form *FormData) error {
	missing := map[string]string{}
	if form.Email == "" {
		missing["email"] = "This field is required"
	}
	if form.FirstName == "" {
		missing["first_name"] = "This field is required"
	}
	if form.LastName == "" {
		missing["last_name"] = "This field is required"
	}
	if form.Plan == "" {
		missing["plan"] = "This field is required"
	}
	if len(missing) > 0 {
		return appErrors.ValidationError(missing)
	}

	if err := auth.ValidatePassword(form.Password); err != nil {
		return appErrors.ErrWeakPassword
	}
	if !form.TermsAccepted {
		return appErrors.NewBadRequestError("Terms of service must be accepted")
	}
	return nil
}

func generateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		// crypto/rand не должен падать; нулевой код хуже, чем паника
		panic(fmt.Sprintf("signup: code generation: %v", err))
	}
	return fmt.Sprintf("%06d", n)
}
