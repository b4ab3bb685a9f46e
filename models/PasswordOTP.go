package models

import (
	"time"

	"gorm.io/gorm"
)

// PasswordOTP is a one-time 6-digit reset code. Consumed on first successful
// validation, expires 10 minutes after creation, never deleted.
type PasswordOTP struct {
	gorm.Model
	UserID    uint      `json:"userID" gorm:"index"`
	Code      string    `json:"-" gorm:"size:6"`
	ExpiresAt time.Time `json:"expiresAt"`
	Used      bool      `json:"used" gorm:"default:false"`
}
