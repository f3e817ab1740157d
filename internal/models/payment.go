package models

// Payment - append-only запись в леджере платежей. Не дает доступа
// сама по себе, используется для отчетности.
type Payment struct {
	BaseModel
	UserID   string        `gorm:"type:uuid;not null;index"`
	Amount   float64       `gorm:"not null"` // в основных единицах валюты
	Currency string        `gorm:"type:varchar(3);not null"`
	Status   PaymentStatus `gorm:"type:varchar(20);default:'pending'"`
	Plan     string        `gorm:"type:varchar(20);not null"` // standard, premium
	// ID checkout-сессии, из которой создана запись. Дедупликация пока
	// идет по userID (см. PaymentRepository), колонка оставлена, чтобы
	// переход на ключ (userID, sessionID) не требовал миграции.
	SessionID string `gorm:"index"`
}
