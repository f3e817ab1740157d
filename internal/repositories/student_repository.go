package repositories

import (
	"errors"

	"axone_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrStudentNotFound      = errors.New("student record not found")
	ErrStudentAlreadyExists = errors.New("student record already exists")
)

type StudentRepository interface {
	FindByUserID(userID string) (*models.Student, error)
	Create(student *models.Student) error
	IncrementVRSessions(userID string) error
}

type StudentRepositoryImpl struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &StudentRepositoryImpl{db: db}
}

func (r *StudentRepositoryImpl) FindByUserID(userID string) (*models.Student, error) {
	var student models.Student
	err := r.db.First(&student, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepositoryImpl) Create(student *models.Student) error {
	var existing models.Student
	if err := r.db.Where("user_id = ?", student.UserID).First(&existing).Error; err == nil {
		return ErrStudentAlreadyExists
	}

	return r.db.Create(student).Error
}

func (r *StudentRepositoryImpl) IncrementVRSessions(userID string) error {
	result := r.db.Model(&models.Student{}).Where("user_id = ?", userID).
		UpdateColumn("vr_sessions", gorm.Expr("vr_sessions + 1"))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStudentNotFound
	}
	return nil
}
