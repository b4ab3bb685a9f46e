package utils

import (
	"strconv"

	"may-space-server/models"
	"may-space-server/storage"

	"github.com/kataras/iris/v12"
)

// Identity travels as a bare id header (X-User-ID / X-Admin-ID). This is the
// trust boundary the API contract specifies, a stand-in for a real session
// mechanism; handlers read the resolved id from the request values.

func UserIDHeaderMiddleware(ctx iris.Context) {
	header := ctx.GetHeader("X-User-ID")
	if header == "" {
		CreateError(iris.StatusUnauthorized, "Unauthorized", "Missing X-User-ID header.", ctx)
		return
	}

	id, err := strconv.ParseUint(header, 10, 32)
	if err != nil {
		CreateError(iris.StatusUnauthorized, "Unauthorized", "Invalid X-User-ID header.", ctx)
		return
	}

	var user models.User
	res := storage.DB.Select("id").Limit(1).Find(&user, uint(id))
	if res.Error != nil {
		CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		CreateError(iris.StatusUnauthorized, "Unauthorized", "Unknown user.", ctx)
		return
	}

	ctx.Values().Set("userID", uint(id))
	ctx.Next()
}

func AdminIDHeaderMiddleware(ctx iris.Context) {
	header := ctx.GetHeader("X-Admin-ID")
	if header == "" {
		CreateError(iris.StatusUnauthorized, "Unauthorized", "Missing X-Admin-ID header.", ctx)
		return
	}

	id, err := strconv.ParseUint(header, 10, 32)
	if err != nil {
		CreateError(iris.StatusUnauthorized, "Unauthorized", "Invalid X-Admin-ID header.", ctx)
		return
	}

	var admin models.Admin
	res := storage.DB.Select("id").Limit(1).Find(&admin, uint(id))
	if res.Error != nil {
		CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		CreateForbidden(ctx)
		return
	}

	ctx.Values().Set("adminID", uint(id))
	ctx.Next()
}

// ActingUserID returns the identity resolved by UserIDHeaderMiddleware.
func ActingUserID(ctx iris.Context) uint {
	return ctx.Values().Get("userID").(uint)
}

// ActingAdminID returns the identity resolved by AdminIDHeaderMiddleware.
func ActingAdminID(ctx iris.Context) uint {
	return ctx.Values().Get("adminID").(uint)
}
