package models

import (
	"gorm.io/gorm"
)

// Inquiry is a message from a prospective renter to a unit's owner. Rows with
// ParentInquiryID set are replies threaded under the root inquiry.
type Inquiry struct {
	gorm.Model
	UnitID          uint   `json:"unitID" gorm:"index"`
	SenderID        uint   `json:"senderID" gorm:"index"`
	RecipientID     uint   `json:"recipientID" gorm:"index"`
	Message         string `json:"message" gorm:"type:text"`
	ParentInquiryID *uint  `json:"parentInquiryID" gorm:"index"`

	Unit      *Unit     `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
	Sender    *User     `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Recipient *User     `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
	Replies   []Inquiry `json:"replies,omitempty" gorm:"foreignKey:ParentInquiryID"`
}
