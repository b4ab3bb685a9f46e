package routes

import (
	"context"
	"strings"
	"time"

	"may-space-server/models"
	"may-space-server/services"
	"may-space-server/storage"
	"may-space-server/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
)

var bgContext = context.Background()

func Register(ctx iris.Context) {
	var userInput RegisterUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	taken, takenErr := userIdentifierTaken(userInput.Username, userInput.Email)
	if takenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if taken {
		utils.CreateConflict("Username or email already registered.", ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	newUser := models.User{
		Name:          userInput.Name,
		Username:      userInput.Username,
		Email:         strings.ToLower(userInput.Email),
		ContactNumber: userInput.ContactNumber,
		Password:      hashedPassword,
	}

	if err := storage.DB.Create(&newUser).Error; err != nil {
		// Unique index is the backstop for a concurrent duplicate register.
		if isDuplicateKeyError(err) {
			utils.CreateConflict("Username or email already registered.", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&newUser)
}

func Login(ctx iris.Context) {
	var userInput LoginUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	errorMsg := "Invalid username or password."

	var existingUser models.User
	res := storage.DB.
		Where("username = ? OR email = ?", userInput.Username, strings.ToLower(userInput.Username)).
		Limit(1).Find(&existingUser)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	passwordErr := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password))
	if passwordErr != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	ctx.JSON(&existingUser)
}

func ForgotPassword(ctx iris.Context) {
	var emailInput EmailRegisteredInput
	err := ctx.ReadJSON(&emailInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	email := strings.ToLower(emailInput.Email)

	var user models.User
	res := storage.DB.Where("email = ?", email).Limit(1).Find(&user)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		utils.CreateError(iris.StatusNotFound, "Not Found", "No account matches that email.", ctx)
		return
	}

	// One OTP request per email per minute.
	if storage.Redis != nil {
		key := "otp-request:" + email
		set, redisErr := storage.Redis.SetNX(bgContext, key, "1", time.Minute).Result()
		if redisErr == nil && !set {
			utils.CreateError(iris.StatusTooManyRequests, "Too Many Requests",
				"A reset code was sent recently. Please wait before requesting another.", ctx)
			return
		}
	}

	otp := models.PasswordOTP{
		UserID:    user.ID,
		Code:      utils.GenerateOTPCode(),
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	if err := storage.DB.Create(&otp).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// Delivery failures are logged by the mailer and deliberately do not fail
	// this request; the code row exists either way.
	emailErr := services.SendPasswordResetOTP(user.Email, otp.Code)

	ctx.JSON(iris.Map{"emailSent": emailErr == nil})
}

func ResetPassword(ctx iris.Context) {
	var input ResetPasswordInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	email := strings.ToLower(input.Email)

	var user models.User
	res := storage.DB.Where("email = ?", email).Limit(1).Find(&user)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid or expired reset code.", ctx)
		return
	}

	valid, otpErr := validateAndConsumeOTP(user.ID, input.OTP)
	if otpErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if !valid {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid or expired reset code.", ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(input.NewPassword)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if err := storage.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Update("password", hashedPassword).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"passwordReset": true})
}

// validateAndConsumeOTP marks the matching unused, unexpired code as used.
// The guarded update makes consumption single-use even under concurrent
// attempts with the same code.
func validateAndConsumeOTP(userID uint, code string) (bool, error) {
	res := storage.DB.Model(&models.PasswordOTP{}).
		Where("user_id = ? AND code = ? AND used = ? AND expires_at > ?", userID, code, false, time.Now()).
		Update("used", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func userIdentifierTaken(username, email string) (bool, error) {
	var count int64
	err := storage.DB.Model(&models.User{}).
		Where("username = ? OR email = ?", username, strings.ToLower(email)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func hashAndSaltPassword(password string) (hashedPassword string, err error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(strings.ToUpper(msg), "UNIQUE")
}

type RegisterUserInput struct {
	Name          string `json:"name" validate:"required,max=256"`
	Username      string `json:"username" validate:"required,min=3,max=64"`
	Email         string `json:"email" validate:"required,max=256,email"`
	ContactNumber string `json:"contactNumber" validate:"max=32"`
	Password      string `json:"password" validate:"required,min=8,max=256"`
}

type LoginUserInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type EmailRegisteredInput struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=256"`
}
