package services

import (
	"axone_backend/internal/appErrors"
	"axone_backend/internal/models"
	"axone_backend/internal/repositories"
)

type ProfileService interface {
	GetProfile(userID string) (*models.Profile, error)
	GetPaymentHistory(userID string) ([]models.Payment, error)
}

type profileServiceImpl struct {
	profileRepo repositories.ProfileRepository
	paymentRepo repositories.PaymentRepository
}

func NewProfileService(
	profileRepo repositories.ProfileRepository,
	paymentRepo repositories.PaymentRepository,
) ProfileService {
	return &profileServiceImpl{
		profileRepo: profileRepo,
		paymentRepo: paymentRepo,
	}
}

// GetProfile - профиль текущего пользователя вместе с ролевой записью
func (s *profileServiceImpl) GetProfile(userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.FindByID(userID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, appErrors.ErrProfileNotFound
		}
		return nil, appErrors.InternalError(err)
	}
	return profile, nil
}

// GetPaymentHistory - записи леджера пользователя (для отчетности)
func (s *profileServiceImpl) GetPaymentHistory(userID string) ([]models.Payment, error) {
	payments, err := s.paymentRepo.ListByUserID(userID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return payments, nil
}
