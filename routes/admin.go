package routes

import (
	"net/http"

	"may-space-server/models"
	"may-space-server/storage"
	"may-space-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

func pageParams(ctx iris.Context) (page, perPage int, offset int) {
	page = ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}
	perPage = ctx.URLParamIntDefault("per_page", 25)
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}
	return page, perPage, (page - 1) * perPage
}

// GET /admin/users
func AdminListUsers(ctx iris.Context) {
	page, perPage, offset := pageParams(ctx)

	var total int64
	storage.DB.Model(&models.User{}).Count(&total)

	var users []models.User
	if err := storage.DB.Order("created_at DESC").Limit(perPage).Offset(offset).Find(&users).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, users, page, perPage, total)
}

// DELETE /admin/users/:id removes the account and everything it owns.
func AdminDeleteUser(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var user models.User
	res := storage.DB.Limit(1).Find(&user, id)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		var units []models.Unit
		if err := tx.Where("owner_id = ?", id).Find(&units).Error; err != nil {
			return err
		}
		for i := range units {
			if err := deleteUnitCascade(tx, &units[i]); err != nil {
				return err
			}
		}

		// Rows the user created against other people's units.
		if err := tx.Where("user_id = ?", id).Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sender_id = ? OR recipient_id = ?", id, id).
			Delete(&models.Inquiry{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, id).Error
	})
	if txErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "user.delete", "user", id, user, nil)
	ctx.StatusCode(iris.StatusNoContent)
}

// GET /admin/units
func AdminListUnits(ctx iris.Context) {
	page, perPage, offset := pageParams(ctx)

	var total int64
	storage.DB.Model(&models.Unit{}).Count(&total)

	var units []models.Unit
	if err := storage.DB.Preload("Owner").Order("created_at DESC").
		Limit(perPage).Offset(offset).Find(&units).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, units, page, perPage, total)
}

// DELETE /admin/units/:id is a moderation delete, bypassing ownership.
func AdminDeleteUnit(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var unit models.Unit
	res := storage.DB.Limit(1).Find(&unit, id)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	if err := deleteUnitCascade(storage.DB, &unit); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "unit.delete", "unit", unit.ID, unit, nil)
	ctx.StatusCode(iris.StatusNoContent)
}

// GET /admin/activity
func AdminActivity(ctx iris.Context) {
	var logs []models.AuditLog
	storage.DB.Order("created_at DESC").Limit(100).Find(&logs)
	ctx.JSON(iris.Map{"data": logs, "meta": iris.Map{}, "links": iris.Map{}})
}
