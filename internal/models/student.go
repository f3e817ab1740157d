package models

import (
	"time"

	"gorm.io/datatypes"
)

// Student - ролевая запись учащегося (роли individual/employee).
type Student struct {
	UserID     string         `gorm:"type:uuid;primaryKey"`
	Progress   datatypes.JSON `gorm:"type:jsonb"` // {"module_id": {...}, ...}
	VRSessions int            `gorm:"default:0"`
	CreatedAt  time.Time      `gorm:"default:now()"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
}
