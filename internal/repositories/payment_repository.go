package repositories

import (
	"errors"

	"axone_backend/internal/models"

	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository interface {
	// FindCompletedByUserID возвращает любую завершенную запись
	// пользователя. Это и есть грубый дедуп-ключ леджера: "уже есть
	// completed платеж" = "сессия уже обработана". Сознательно широко,
	// ключ (userID, sessionID) - возможная миграция.
	FindCompletedByUserID(userID string) (*models.Payment, error)
	Create(payment *models.Payment) error
	ListByUserID(userID string) ([]models.Payment, error)
}

type PaymentRepositoryImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &PaymentRepositoryImpl{db: db}
}

func (r *PaymentRepositoryImpl) FindCompletedByUserID(userID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("user_id = ? AND status = ?", userID, models.PaymentStatusCompleted).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

func (r *PaymentRepositoryImpl) ListByUserID(userID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
