package utils

import (
	"encoding/json"
	"net"

	"may-space-server/models"
	"may-space-server/storage"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
)

// Audit records an admin mutation. The acting admin id must already be
// resolved by AdminIDHeaderMiddleware.
func Audit(ctx iris.Context, action, resourceType string, resourceID uint, before interface{}, after interface{}) {
	var beforeJSON, afterJSON datatypes.JSON
	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			beforeJSON = datatypes.JSON(b)
		}
	}
	if after != nil {
		if a, err := json.Marshal(after); err == nil {
			afterJSON = datatypes.JSON(a)
		}
	}

	var adminID uint
	if v := ctx.Values().Get("adminID"); v != nil {
		if id, ok := v.(uint); ok {
			adminID = id
		}
	}

	entry := models.AuditLog{
		AdminID:      adminID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		IPAddress:    clientIP(ctx),
	}
	storage.DB.Create(&entry)
}

func clientIP(ctx iris.Context) string {
	if ip := ctx.GetHeader("X-Forwarded-For"); ip != "" {
		return ip
	}
	ip, _, _ := net.SplitHostPort(ctx.RemoteAddr())
	return ip
}
