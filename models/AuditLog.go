package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditLog struct {
	gorm.Model
	AdminID      uint           `json:"adminID" gorm:"index"`
	Action       string         `json:"action" gorm:"size:64;index"`
	ResourceType string         `json:"resourceType" gorm:"size:32"`
	ResourceID   uint           `json:"resourceID"`
	BeforeJSON   datatypes.JSON `json:"beforeJSON"`
	AfterJSON    datatypes.JSON `json:"afterJSON"`
	IPAddress    string         `json:"ipAddress" gorm:"size:64"`
}
