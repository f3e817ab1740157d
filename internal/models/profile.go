package models

import "time"

// Profile - учетная запись на стороне данных. ID совпадает с ID
// identity в Identity Provider (один-к-одному), поэтому без default.
type Profile struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	Email       string    `gorm:"uniqueIndex;not null"`
	DisplayName string    `gorm:"not null"`
	Role        UserRole  `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time `gorm:"default:now()"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`

	// Relations
	Student *Student `gorm:"foreignKey:UserID"`
}
