package routes

import (
	"strings"

	"may-space-server/models"
	"may-space-server/storage"
	"may-space-server/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
)

func AdminRegister(ctx iris.Context) {
	var input RegisterAdminInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var count int64
	if err := storage.DB.Model(&models.Admin{}).
		Where("username = ? OR email = ?", input.Username, strings.ToLower(input.Email)).
		Count(&count).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if count > 0 {
		utils.CreateConflict("Username or email already registered.", ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(input.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	admin := models.Admin{
		Username:      input.Username,
		Email:         strings.ToLower(input.Email),
		ContactNumber: input.ContactNumber,
		Password:      hashedPassword,
	}

	if err := storage.DB.Create(&admin).Error; err != nil {
		if isDuplicateKeyError(err) {
			utils.CreateConflict("Username or email already registered.", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&admin)
}

func AdminLogin(ctx iris.Context) {
	var input LoginUserInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	errorMsg := "Invalid username or password."

	var admin models.Admin
	res := storage.DB.
		Where("username = ? OR email = ?", input.Username, strings.ToLower(input.Username)).
		Limit(1).Find(&admin)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(input.Password)) != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	ctx.JSON(&admin)
}

type RegisterAdminInput struct {
	Username      string `json:"username" validate:"required,min=3,max=64"`
	Email         string `json:"email" validate:"required,max=256,email"`
	ContactNumber string `json:"contactNumber" validate:"max=32"`
	Password      string `json:"password" validate:"required,min=8,max=256"`
}
