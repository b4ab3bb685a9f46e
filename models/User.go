package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name          string `json:"name"`
	Username      string `json:"username" gorm:"uniqueIndex;size:64"`
	Email         string `json:"email" gorm:"uniqueIndex;size:256"`
	ContactNumber string `json:"contactNumber"`
	Password      string `json:"-"`
	Units         []Unit `json:"units,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
}
