package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusDenied    = "denied"
)

// Booking is a visit/rental request against a Unit. At most one booking per
// unit may be confirmed at a time; a (unit, user) pair may hold at most one
// active (pending or confirmed) booking.
type Booking struct {
	gorm.Model
	UnitID          uint      `json:"unitID" gorm:"index"`
	UserID          uint      `json:"userID" gorm:"index"`
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	ContactNumber   string    `json:"contactNumber"`
	NumPeople       int       `json:"numPeople"`
	TransactionType string    `json:"transactionType" gorm:"size:16"` // walk-in, online
	DateOfVisiting  time.Time `json:"dateOfVisiting"`
	Status          string    `json:"status" gorm:"size:16;index;default:pending"`

	Unit *Unit `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
