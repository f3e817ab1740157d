package services

import (
	"context"
	"fmt"

	"axone_backend/internal/appErrors"
	"axone_backend/internal/billing"
	"axone_backend/internal/gateway"
	"axone_backend/internal/identity"
	"axone_backend/internal/logger"
	"axone_backend/internal/models"
	"axone_backend/internal/repositories"
	"axone_backend/internal/services/dto"

	"gorm.io/datatypes"
)

type ProvisioningService interface {
	Provision(ctx context.Context, sessionID string) (*dto.ProvisioningResult, error)
}

type provisioningServiceImpl struct {
	gatewayClient  gateway.Client
	identityClient identity.Client
	profileRepo    repositories.ProfileRepository
	studentRepo    repositories.StudentRepository
	paymentRepo    repositories.PaymentRepository

	defaultCurrency  string
	fallbackPassword string
}

func NewProvisioningService(
	gatewayClient gateway.Client,
	identityClient identity.Client,
	profileRepo repositories.ProfileRepository,
	studentRepo repositories.StudentRepository,
	paymentRepo repositories.PaymentRepository,
	defaultCurrency string,
	fallbackPassword string,
) ProvisioningService {
	return &provisioningServiceImpl{
		gatewayClient:    gatewayClient,
		identityClient:   identityClient,
		profileRepo:      profileRepo,
		studentRepo:      studentRepo,
		paymentRepo:      paymentRepo,
		defaultCurrency:  defaultCurrency,
		fallbackPassword: fallbackPassword,
	}
}

// Provision - идемпотентный провижининг аккаунта по checkout-сессии.
//
// Вызов безопасно повторять (ретраи, дубли вебхука, конкурентные
// запросы по одной сессии): перед каждой записью идет lookup, и ни
// одна существующая запись никогда не перезаписывается - только
// заполняются пробелы. Ретраев внутри нет, транспорт с ретраями
// снаружи.
func (s *provisioningServiceImpl) Provision(ctx context.Context, sessionID string) (*dto.ProvisioningResult, error) {
	// Предусловие 1: session id обязателен
	if sessionID == "" {
		return nil, appErrors.ErrInvalidRequest
	}

	ctx = logger.WithSessionID(ctx, sessionID)

	// Предусловие 2: сессия должна существовать у шлюза
	session, err := s.gatewayClient.RetrieveSession(ctx, sessionID)
	if err != nil {
		logger.CtxWithError(ctx, "checkout session fetch failed", err)
		return nil, appErrors.ErrSessionNotFound.WithError(err)
	}

	// Предусловие 3: платеж завершен. Незавершенный платеж - не
	// ошибка, вызывающий перепроверит позже. До этой точки НИЧЕГО не
	// пишем.
	if session.Status != gateway.SessionStatusComplete || session.PaymentStatus != gateway.PaymentStatePaid {
		return nil, appErrors.ErrPaymentIncomplete.WithDetails(map[string]string{
			"status":         string(session.Status),
			"payment_status": string(session.PaymentStatus),
		})
	}

	meta := session.Metadata
	if meta.Email == "" {
		logger.CtxError(ctx, "session metadata has no email")
		return nil, appErrors.ErrProvisioningFailed.WithError(fmt.Errorf("session %s: empty metadata email", sessionID))
	}

	created := false

	// Шаг 1-2: identity (email уникален на стороне провайдера)
	userID, identityCreated, err := s.ensureIdentity(ctx, &meta)
	if err != nil {
		logger.CtxWithError(ctx, "provisioning failed at identity step", err, "email", meta.Email)
		return nil, appErrors.ErrProvisioningFailed.WithError(err)
	}
	created = created || identityCreated
	ctx = logger.WithUserID(ctx, userID)

	// Шаг 3-4: профиль. Lookup по email, а не по id - так исторически
	// ищутся профили, заведенные до связки с Identity Provider.
	profileCreated, err := s.ensureProfile(userID, &meta)
	if err != nil {
		logger.CtxWithError(ctx, "provisioning failed at profile step", err)
		return nil, appErrors.ErrProvisioningFailed.WithError(err)
	}
	created = created || profileCreated

	// Шаг 5: ролевая запись учащегося
	studentCreated, err := s.ensureStudent(userID)
	if err != nil {
		logger.CtxWithError(ctx, "provisioning failed at student step", err)
		return nil, appErrors.ErrProvisioningFailed.WithError(err)
	}
	created = created || studentCreated

	result := &dto.ProvisioningResult{
		UserID:    userID,
		SessionID: sessionID,
		Email:     meta.Email,
	}

	// Шаг 6: дедуп леджера. Есть завершенный платеж - вся операция
	// считается no-op.
	if _, err := s.paymentRepo.FindCompletedByUserID(userID); err == nil {
		logger.CtxInfo(ctx, "completed payment already exists, provisioning is a no-op")
		result.Created = false
		return result, nil
	} else if !appErrors.Is(err, repositories.ErrPaymentNotFound) {
		logger.CtxWithError(ctx, "provisioning failed at payment lookup step", err)
		return nil, appErrors.ErrProvisioningFailed.WithError(err)
	}

	// Шаг 7: запись в леджер. ЕДИНСТВЕННЫЙ нефатальный шаг: доступ
	// пользователю уже открыт, пропуск в леджере доливается вне полосы.
	currency := meta.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	payment := &models.Payment{
		UserID:    userID,
		Amount:    float64(session.AmountMinor) / 100,
		Currency:  currency,
		Status:    models.PaymentStatusCompleted,
		Plan:      string(billing.ResolvePlan(meta.Plan)),
		SessionID: sessionID,
	}

	if err := s.paymentRepo.Create(payment); err != nil {
		logger.CtxWithError(ctx, "payment ledger write failed, continuing", err,
			"amount", payment.Amount, "currency", payment.Currency)
	} else {
		created = true
	}

	result.Created = created
	logger.CtxInfo(ctx, "provisioning complete", "created", created, "email", meta.Email)
	return result, nil
}

// ensureIdentity находит identity по email или создает новую.
// Дубликат при создании (конкурентный вызов) - перечитываем.
func (s *provisioningServiceImpl) ensureIdentity(ctx context.Context, meta *gateway.SessionMetadata) (string, bool, error) {
	existing, err := s.identityClient.FindByEmail(ctx, meta.Email)
	if err == nil {
		return existing.ID, false, nil
	}
	if !appErrors.Is(err, identity.ErrIdentityNotFound) {
		return "", false, fmt.Errorf("identity lookup: %w", err)
	}

	password := meta.Password
	if password == "" {
		// Задокументированное слабое место: сессия без пароля в
		// метаданных получает общий fallback из конфига.
		logger.CtxWarn(ctx, "session metadata has no password, using fallback", "email", meta.Email)
		password = s.fallbackPassword
	}

	newIdentity, err := s.identityClient.Create(ctx, &identity.CreateParams{
		Email:          meta.Email,
		Password:       password,
		EmailConfirmed: true,
		Attributes: map[string]string{
			"first_name": meta.FirstName,
			"last_name":  meta.LastName,
			"phone":      meta.Phone,
			"country":    meta.Country,
		},
	})
	if err == nil {
		return newIdentity.ID, true, nil
	}

	if appErrors.Is(err, identity.ErrIdentityExists) {
		// Проиграли гонку конкурентному Provision - не фатально
		refetched, ferr := s.identityClient.FindByEmail(ctx, meta.Email)
		if ferr != nil {
			return "", false, fmt.Errorf("identity refetch after duplicate: %w", ferr)
		}
		return refetched.ID, false, nil
	}

	return "", false, fmt.Errorf("identity create: %w", err)
}

func (s *provisioningServiceImpl) ensureProfile(userID string, meta *gateway.SessionMetadata) (bool, error) {
	_, err := s.profileRepo.FindByEmail(meta.Email)
	if err == nil {
		return false, nil
	}
	if !appErrors.Is(err, repositories.ErrProfileNotFound) {
		return false, fmt.Errorf("profile lookup: %w", err)
	}

	profile := &models.Profile{
		ID:          userID,
		Email:       meta.Email,
		DisplayName: displayName(meta.FirstName, meta.LastName, meta.Email),
		// B2C-флоу всегда заводит individual
		Role: models.UserRoleIndividual,
	}

	if err := s.profileRepo.Create(profile); err != nil {
		if appErrors.Is(err, repositories.ErrProfileAlreadyExists) {
			return false, nil
		}
		return false, fmt.Errorf("profile create: %w", err)
	}
	return true, nil
}

func (s *provisioningServiceImpl) ensureStudent(userID string) (bool, error) {
	_, err := s.studentRepo.FindByUserID(userID)
	if err == nil {
		return false, nil
	}
	if !appErrors.Is(err, repositories.ErrStudentNotFound) {
		return false, fmt.Errorf("student lookup: %w", err)
	}

	student := &models.Student{
		UserID:     userID,
		Progress:   datatypes.JSON([]byte(`{}`)),
		VRSessions: 0,
	}

	if err := s.studentRepo.Create(student); err != nil {
		if appErrors.Is(err, repositories.ErrStudentAlreadyExists) {
			return false, nil
		}
		return false, fmt.Errorf("student create: %w", err)
	}
	return true, nil
}

func displayName(firstName, lastName, email string) string {
	switch {
	case firstName != "" && lastName != "":
		return firstName + " " + lastName
	case firstName != "":
		return firstName
	default:
		return email
	}
}
