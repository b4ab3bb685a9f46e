package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

type Unit struct {
	gorm.Model
	OwnerID         uint    `json:"ownerID" gorm:"index"`
	BuildingName    string  `json:"buildingName"`
	UnitNumber      string  `json:"unitNumber"`
	Location        string  `json:"location"`
	Specifications  string  `json:"specifications" gorm:"type:text"`
	SpecialFeatures string  `json:"specialFeatures" gorm:"type:text"`
	Price           float64 `json:"price"`
	ContactPerson   string  `json:"contactPerson"`
	PhoneNumber     string  `json:"phoneNumber"`
	Images          string  `json:"images"` // JSON array of stored file paths
	IsAvailable     *bool   `json:"isAvailable" gorm:"default:true"`

	Owner     *User     `json:"owner,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
	Bookings  []Booking `json:"bookings,omitempty" gorm:"foreignKey:UnitID"`
	Inquiries []Inquiry `json:"inquiries,omitempty" gorm:"foreignKey:UnitID"`
}

// Custom JSON marshaling to convert the Images string column to an array
func (u *Unit) MarshalJSON() ([]byte, error) {
	type Alias Unit
	aux := &struct {
		Images []string `json:"images"`
		*Alias
	}{
		Images: []string{},
		Alias:  (*Alias)(u),
	}

	if u.Images != "" {
		var images []string
		if err := json.Unmarshal([]byte(u.Images), &images); err == nil {
			aux.Images = images
		}
	}

	return json.Marshal(aux)
}

// UnmarshalJSON accepts the array form of images and stores it back as text.
func (u *Unit) UnmarshalJSON(data []byte) error {
	type Alias Unit
	aux := &struct {
		Images []string `json:"images"`
		*Alias
	}{
		Alias: (*Alias)(u),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if aux.Images == nil {
		u.Images = ""
		return nil
	}
	encoded, err := json.Marshal(aux.Images)
	if err != nil {
		return err
	}
	u.Images = string(encoded)
	return nil
}

// ImagePaths returns the decoded image path array.
func (u *Unit) ImagePaths() []string {
	var images []string
	if u.Images != "" {
		json.Unmarshal([]byte(u.Images), &images)
	}
	return images
}
