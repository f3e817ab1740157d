package models

type UserRole string
type PaymentStatus string

const (
	// B2C-регистрация всегда создает individual; остальные роли
	// назначаются HR/админ-флоу.
	UserRoleIndividual UserRole = "individual"
	UserRoleEmployee   UserRole = "employee"
	UserRoleCoach      UserRole = "coach"
	UserRoleRH         UserRole = "rh"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)
