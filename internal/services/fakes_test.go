package services

import (
	"context"
	"fmt"

	"axone_backend/internal/gateway"
	"axone_backend/internal/identity"
	"axone_backend/internal/models"
	"axone_backend/internal/repositories"
)

// --- Фейки внешних клиентов и репозиториев ---

type fakeGatewayClient struct {
	sessions    map[string]*gateway.CheckoutSession
	retrieveErr error
}

func newFakeGatewayClient() *fakeGatewayClient {
	return &fakeGatewayClient{sessions: make(map[string]*gateway.CheckoutSession)}
}

func (f *fakeGatewayClient) RetrieveSession(_ context.Context, sessionID string) (*gateway.CheckoutSession, error) {
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, gateway.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (f *fakeGatewayClient) CreateSession(_ context.Context, params *gateway.CreateSessionParams) (*gateway.CheckoutSession, error) {
	session := &gateway.CheckoutSession{
		ID:            fmt.Sprintf("sess_%d", len(f.sessions)+1),
		Status:        gateway.SessionStatusOpen,
		PaymentStatus: gateway.PaymentStateUnpaid,
		AmountMinor:   params.AmountMinor,
		RedirectURL:   "https://gateway.test/pay",
		Metadata:      params.Metadata,
	}
	f.sessions[session.ID] = session
	return session, nil
}

type fakeIdentityClient struct {
	byEmail map[string]*identity.Identity
	nextID  int

	findErr   error
	createErr error
	// имитация проигранной гонки: Create возвращает ErrIdentityExists,
	// но identity при этом появляется в byEmail
	raceOnCreate bool

	createCalls      int
	lastCreateParams *identity.CreateParams
}

func newFakeIdentityClient() *fakeIdentityClient {
	return &fakeIdentityClient{byEmail: make(map[string]*identity.Identity), nextID: 1}
}

func (f *fakeIdentityClient) FindByEmail(_ context.Context, email string) (*identity.Identity, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	ident, ok := f.byEmail[email]
	if !ok {
		return nil, identity.ErrIdentityNotFound
	}
	clone := *ident
	return &clone, nil
}

func (f *fakeIdentityClient) Create(_ context.Context, params *identity.CreateParams) (*identity.Identity, error) {
	f.createCalls++
	f.lastCreateParams = params

	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[params.Email]; ok {
		return nil, identity.ErrIdentityExists
	}

	ident := &identity.Identity{
		ID:             fmt.Sprintf("user-%d", f.nextID),
		Email:          params.Email,
		EmailConfirmed: params.EmailConfirmed,
		Attributes:     params.Attributes,
	}
	f.nextID++
	f.byEmail[params.Email] = ident

	if f.raceOnCreate {
		f.raceOnCreate = false
		return nil, identity.ErrIdentityExists
	}
	clone := *ident
	return &clone, nil
}

func (f *fakeIdentityClient) VerifyPassword(_ context.Context, email, _ string) (*identity.Identity, error) {
	ident, ok := f.byEmail[email]
	if !ok {
		return nil, identity.ErrBadCredentials
	}
	clone := *ident
	return &clone, nil
}

type fakeProfileRepo struct {
	byID map[string]*models.Profile

	createErr   error
	createCalls int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byID: make(map[string]*models.Profile)}
}

func (f *fakeProfileRepo) FindByID(id string) (*models.Profile, error) {
	profile, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	clone := *profile
	return &clone, nil
}

func (f *fakeProfileRepo) FindByEmail(email string) (*models.Profile, error) {
	for _, profile := range f.byID {
		if profile.Email == email {
			clone := *profile
			return &clone, nil
		}
	}
	return nil, repositories.ErrProfileNotFound
}

func (f *fakeProfileRepo) Create(profile *models.Profile) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byID[profile.ID]; ok {
		return repositories.ErrProfileAlreadyExists
	}
	clone := *profile
	f.byID[profile.ID] = &clone
	return nil
}

func (f *fakeProfileRepo) UpdateDisplayName(id, displayName string) error {
	profile, ok := f.byID[id]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	profile.DisplayName = displayName
	return nil
}

type fakeStudentRepo struct {
	byUserID map[string]*models.Student

	createErr   error
	createCalls int
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{byUserID: make(map[string]*models.Student)}
}

func (f *fakeStudentRepo) FindByUserID(userID string) (*models.Student, error) {
	student, ok := f.byUserID[userID]
	if !ok {
		return nil, repositories.ErrStudentNotFound
	}
	clone := *student
	return &clone, nil
}

func (f *fakeStudentRepo) Create(student *models.Student) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byUserID[student.UserID]; ok {
		return repositories.ErrStudentAlreadyExists
	}
	clone := *student
	f.byUserID[student.UserID] = &clone
	return nil
}

func (f *fakeStudentRepo) IncrementVRSessions(userID string) error {
	student, ok := f.byUserID[userID]
	if !ok {
		return repositories.ErrStudentNotFound
	}
	student.VRSessions++
	return nil
}

type fakePaymentRepo struct {
	payments []models.Payment

	createErr   error
	createCalls int
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{}
}

func (f *fakePaymentRepo) FindCompletedByUserID(userID string) (*models.Payment, error) {
	for i := range f.payments {
		if f.payments[i].UserID == userID && f.payments[i].Status == models.PaymentStatusCompleted {
			clone := f.payments[i]
			return &clone, nil
		}
	}
	return nil, repositories.ErrPaymentNotFound
}

func (f *fakePaymentRepo) Create(payment *models.Payment) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	f.payments = append(f.payments, *payment)
	return nil
}

func (f *fakePaymentRepo) ListByUserID(userID string) ([]models.Payment, error) {
	var result []models.Payment
	for i := range f.payments {
		if f.payments[i].UserID == userID {
			result = append(result, f.payments[i])
		}
	}
	return result, nil
}
