package models

import (
	"gorm.io/gorm"
)

// Admin accounts live in their own table; whether a login matched the users
// or the admins table is what decides the caller's role.
type Admin struct {
	gorm.Model
	Username      string `json:"username" gorm:"uniqueIndex;size:64"`
	Email         string `json:"email" gorm:"uniqueIndex;size:256"`
	ContactNumber string `json:"contactNumber"`
	Password      string `json:"-"`
}
