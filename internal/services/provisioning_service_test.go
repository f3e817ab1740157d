package services

import (
	"context"
	"testing"

	"axone_backend/internal/appErrors"
	"axone_backend/internal/gateway"
	"axone_backend/internal/identity"
	"axone_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type provisioningFixture struct {
	gateway  *fakeGatewayClient
	identity *fakeIdentityClient
	profiles *fakeProfileRepo
	students *fakeStudentRepo
	payments *fakePaymentRepo
	service  ProvisioningService
}

func newProvisioningFixture() *provisioningFixture {
	f := &provisioningFixture{
		gateway:  newFakeGatewayClient(),
		identity: newFakeIdentityClient(),
		profiles: newFakeProfileRepo(),
		students: newFakeStudentRepo(),
		payments: newFakePaymentRepo(),
	}
	f.service = NewProvisioningService(
		f.gateway, f.identity, f.profiles, f.students, f.payments,
		"EUR", "fallback-secret",
	)
	return f
}

func paidSession(id string) *gateway.CheckoutSession {
	return &gateway.CheckoutSession{
		ID:            id,
		Status:        gateway.SessionStatusComplete,
		PaymentStatus: gateway.PaymentStatePaid,
		AmountMinor:   49900,
		Metadata: gateway.SessionMetadata{
			Email:     "jane@example.com",
			FirstName: "Jane",
			LastName:  "Doe",
			Password:  "secret-password",
			Plan:      "pitch-mastery",
			Currency:  "USD",
		},
	}
}

func TestProvision_MissingSessionID(t *testing.T) {
	f := newProvisioningFixture()

	_, err := f.service.Provision(context.Background(), "")

	var appErr *appErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.CodeInvalidRequest, appErr.Code)
}

func TestProvision_SessionNotFound(t *testing.T) {
	f := newProvisioningFixture()

	_, err := f.service.Provision(context.Background(), "sess_missing")

	var appErr *appErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.CodeSessionNotFound, appErr.Code)
}

func TestProvision_PaymentIncomplete_NoWrites(t *testing.T) {
	f := newProvisioningFixture()
	session := paidSession("sess_1")
	session.Status = gateway.SessionStatusOpen
	session.PaymentStatus = gateway.PaymentStateUnpaid
	f.gateway.sessions["sess_1"] = session

	_, err := f.service.Provision(context.Background(), "sess_1")

	var appErr *appErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.CodePaymentIncomplete, appErr.Code)

	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "open", details["status"])
	assert.Equal(t, "unpaid", details["payment_status"])

	// До проверки статуса платежа ни одной записи
	assert.Zero(t, f.identity.createCalls)
	assert.Zero(t, f.profiles.createCalls)
	assert.Zero(t, f.students.createCalls)
	assert.Zero(t, f.payments.createCalls)
}

func TestProvision_MissingMetadataEmail(t *testing.T) {
	f := newProvisioningFixture()
	session := paidSession("sess_1")
	session.Metadata.Email = ""
	f.gateway.sessions["sess_1"] = session

	_, err := f.service.Provision(context.Background(), "sess_1")

	var appErr *appErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.CodeProvisioningFailed, appErr.Code)
	assert.Zero(t, f.identity.createCalls)
}

func TestProvision_FreshAccount(t *testing.T) {
	f := newProvisioningFixture()
	f.gateway.sessions["sess_1"] = paidSession("sess_1")

	result, err := f.service.Provision(context.Background(), "sess_1")
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.Equal(t, "sess_1", result.SessionID)
	assert.Equal(t, "jane@example.com", result.Email)
	assert.NotEmpty(t, result.UserID)

	profile, perr := f.profiles.FindByID(result.UserID)
	require.NoError(t, perr)
	assert.Equal(t, "Jane Doe", profile.DisplayName)
	assert.Equal(t, models.UserRoleIndividual, profile.Role)

	_, serr := f.students.FindByUserID(result.UserID)
	require.NoError(t, serr)

	require.Len(t, f.payments.payments, 1)
	payment := f.payments.payments[0]
	assert.Equal(t, 499.0, payment.Amount)
	assert.Equal(t, "USD", payment.Currency)
	assert.Equal(t, "premium", payment.Plan)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, "sess_1", payment.SessionID)
}

func TestProvision_SecondCallIsNoOp(t *testing.T) {
	f := newProvisioningFixture()
	f.gateway.sessions["sess_1"] = paidSession("sess_1")

	first, err := f.service.Provision(context.Background(), "sess_1")
	require.NoError(t, err)
	require.True(t, first.Created)

	second, err := f.service.Provision(context.Background(), "sess_1")
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.UserID, second.UserID)
	// Никаких новых записей
	assert.Equal(t, 1, f.identity.createCalls)
	assert.Equal(t, 1, f.profiles.createCalls)
	assert.Equal(t, 1, f.students.createCalls)
	assert.Len(t, f.payments.payments, 1)
}

func TestProvision_LostCreateRace(t *testing.T) {
	f := newProvisioningFixture()
	f.gateway.sessions["sess_1"] = paidSession("sess_1")
	f.identity.raceOnCreate = true

	result, err := f.service.Provision(context.Background(), "sess_1")
	require.NoError(t, err)

	// Identity досталась конкуренту, остальное дозаполнено
	assert.True(t, result.Created)
	assert.Equal(t, 1, f.identity.createCalls)
	_, perr := f.profiles.FindByEmail("jane@example.com")
	assert.NoError(t, perr)
}

func TestProvision_RepairsPartialAccount(t *testing.T) {
	f := newProvisioningFixture()
	f.gateway.sessions["sess_1"] = paidSession("sess_1")

	// Identity уже есть (прошлый прогон упал после ее создания)
	_, err := f.identity.Create(context.Background(), &identity.CreateParams{
		Email:    "jane@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)
	f.identity.createCalls = 0

	result, err := f.service.Provision(context.Background(), "sess_1")
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.Zero(t, f.identity.createCalls)
	assert.Equal(t, 1, f.profiles.createCalls)
	assert.Equal(t, 1, f.students.createCalls)
	assert.Len(t, f.payments.payments, 1)
}

func TestProvision_ExistingPaymentShortCircuitsLedger(t *testing.T) {
	f := newProvisioningFixture()
	f.gateway.sessions["sess_1"] = paidSession("sess_1")

	first, err := f.service.Provision(context.Background(), "sess_1")
	require.NoError(t, err)

	// Студент потерялся, но завершенный платеж остался
	delete(f.students.byUserID, first.UserID)
	f.students.createCalls = 0

	second, err := f.service.Provision(context.Background(), "sess_1")
	require.NoError(t, err)

	// Пробел дозаполнен, но наличие завершенного платежа делает
	// операцию no-op с точки зрения результата
	assert.False(t, second.Created)
	assert.Equal(t, 1, f.students.createCalls)
	assert.Len(t, f.payments.payments, 1)
}

func TestProvision_LedgerWriteIsNonFatal(t *testing.T) {
	f := newProvisioningFixture()
	f.gateway.sessions["sess_1"] = paidSession("sess_1")
	f.payments.createErr = assert.AnError

	result, err := f.service.Provision(context.Background(), "sess_1")
	require.NoError(t, err)

	// Аккаунт создан, пропуск в леджере доливается вне полосы
	assert.True(t, result.Created)
	assert.Empty(t, f.payments.payments)

	_, perr := f.profiles.FindByID(result.UserID)
	assert.NoError(t, perr)
}

func TestProvision_LedgerFailureOnExistingAccount(t *testing.T) {
	f := newProvisioningFixture()
	f.gateway.sessions["sess_1"] = paidSession("sess_1")

	first, err := f.service.Provision(context.Background(), "sess_1")
	require.NoError(t, err)

	// Леджер пуст (прошлая запись не прошла), повторная тоже падает
	f.payments.payments = nil
	f.payments.createErr = assert.AnError

	second, err := f.service.Provision(context.Background(), "sess_1")
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.UserID, second.UserID)
}

func TestProvision_CurrencyDefault(t *testing.T) {
	f := newProvisioningFixture()
	session := paidSession("sess_1")
	session.Metadata.Currency = ""
	f.gateway.sessions["sess_1"] = session

	_, err := f.service.Provision(context.Background(), "sess_1")
	require.NoError(t, err)

	require.Len(t, f.payments.payments, 1)
	assert.Equal(t, "EUR", f.payments.payments[0].Currency)
}

func TestProvision_FallbackPassword(t *testing.T) {
	f := newProvisioningFixture()
	session := paidSession("sess_1")
	session.Metadata.Password = ""
	f.gateway.sessions["sess_1"] = session

	_, err := f.service.Provision(context.Background(), "sess_1")
	require.NoError(t, err)

	require.NotNil(t, f.identity.lastCreateParams)
	assert.Equal(t, "fallback-secret", f.identity.lastCreateParams.Password)
	assert.True(t, f.identity.lastCreateParams.EmailConfirmed)
}

func TestProvision_IdentityLookupFailureIsFatal(t *testing.T) {
	f := newProvisioningFixture()
	f.gateway.sessions["sess_1"] = paidSession("sess_1")
	f.identity.findErr = assert.AnError

	_, err := f.service.Provision(context.Background(), "sess_1")

	var appErr *appErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.CodeProvisioningFailed, appErr.Code)
	assert.Zero(t, f.profiles.createCalls)
}
