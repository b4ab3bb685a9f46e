package routes

import (
	"time"

	"may-space-server/models"
	"may-space-server/storage"
	"may-space-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type CreateBookingInput struct {
	UnitID          uint      `json:"unitID" validate:"required"`
	Name            string    `json:"name" validate:"required,max=256"`
	Address         string    `json:"address" validate:"required,max=512"`
	ContactNumber   string    `json:"contactNumber" validate:"required,max=32"`
	NumPeople       int       `json:"numPeople" validate:"required,gte=1,lte=50"`
	TransactionType string    `json:"transactionType" validate:"required,oneof=walk-in online"`
	DateOfVisiting  time.Time `json:"dateOfVisiting" validate:"required"`
}

func CreateBooking(ctx iris.Context) {
	userID := utils.ActingUserID(ctx)

	var input CreateBookingInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var booking models.Booking
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		var unit models.Unit
		res := tx.Limit(1).Find(&unit, input.UnitID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			utils.CreateNotFound(ctx)
			return errHandled
		}

		if unit.OwnerID == userID {
			utils.CreateConflict("You cannot book your own unit.", ctx)
			return errHandled
		}

		var confirmed int64
		if err := tx.Model(&models.Booking{}).
			Where("unit_id = ? AND status = ?", unit.ID, models.BookingStatusConfirmed).
			Count(&confirmed).Error; err != nil {
			return err
		}
		if confirmed > 0 {
			utils.CreateConflict("This unit already has a confirmed booking.", ctx)
			return errHandled
		}

		// A prior denied booking does not block a new request.
		var active int64
		if err := tx.Model(&models.Booking{}).
			Where("unit_id = ? AND user_id = ? AND status IN ?", unit.ID, userID,
				[]string{models.BookingStatusPending, models.BookingStatusConfirmed}).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			utils.CreateConflict("You already have an active booking for this unit.", ctx)
			return errHandled
		}

		booking = models.Booking{
			UnitID:          unit.ID,
			UserID:          userID,
			Name:            input.Name,
			Address:         input.Address,
			ContactNumber:   input.ContactNumber,
			NumPeople:       input.NumPeople,
			TransactionType: input.TransactionType,
			DateOfVisiting:  input.DateOfVisiting,
			Status:          models.BookingStatusPending,
		}
		return tx.Create(&booking).Error
	})

	if txErr == errHandled {
		return
	}
	if txErr != nil {
		// The partial unique index backstops the checks above when two
		// requests race.
		if isDuplicateKeyError(txErr) {
			utils.CreateConflict("You already have an active booking for this unit.", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	storage.DB.Preload("Unit").Preload("User").First(&booking, booking.ID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&booking)
}

// GetMyBookings returns the acting user's booking requests, newest first.
func GetMyBookings(ctx iris.Context) {
	userID := utils.ActingUserID(ctx)

	var bookings []models.Booking
	res := storage.DB.Preload("Unit").Preload("Unit.Owner").
		Where("user_id = ?", userID).Order("created_at DESC").Find(&bookings)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(bookings)
}

// GetRentedBookings returns bookings against units owned by the acting user.
func GetRentedBookings(ctx iris.Context) {
	userID := utils.ActingUserID(ctx)

	var bookings []models.Booking
	res := storage.DB.
		Joins("JOIN units u ON u.id = bookings.unit_id").
		Where("u.owner_id = ?", userID).
		Preload("Unit").
		Preload("User").
		Order("bookings.created_at DESC").
		Find(&bookings)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(bookings)
}

type UpdateBookingStatusInput struct {
	Status string `json:"status" validate:"required,oneof=confirmed denied"`
}

// UpdateBookingStatus is the owner's confirm/deny action.
//
// Status machine: pending -> confirmed (guarded by no other confirmed on the
// unit), pending -> denied, confirmed -> denied (reopens the unit). Nothing
// leaves denied. Confirming also bulk-denies the unit's other pending
// bookings and flips the unit unavailable.
func UpdateBookingStatus(ctx iris.Context) {
	id := ctx.Params().Get("id")
	userID := utils.ActingUserID(ctx)

	var input UpdateBookingStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var booking models.Booking
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Preload("Unit").Where("id = ?", id).Limit(1).Find(&booking)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 || booking.Unit == nil {
			utils.CreateNotFound(ctx)
			return errHandled
		}

		if booking.Unit.OwnerID != userID {
			utils.CreateForbidden(ctx)
			return errHandled
		}

		switch input.Status {
		case models.BookingStatusConfirmed:
			return confirmBooking(tx, &booking, ctx)
		default:
			return denyBooking(tx, &booking, ctx)
		}
	})

	if txErr == errHandled {
		return
	}
	if txErr != nil {
		if isDuplicateKeyError(txErr) {
			utils.CreateConflict("Another booking for this unit is already confirmed.", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	storage.DB.Preload("Unit").Preload("User").First(&booking, booking.ID)
	ctx.JSON(&booking)
}

// confirmBooking performs the transition as a single guarded UPDATE: it only
// succeeds while the booking is still pending and no other booking on the
// unit is confirmed, so two concurrent confirms cannot both win.
func confirmBooking(tx *gorm.DB, booking *models.Booking, ctx iris.Context) error {
	res := tx.Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, models.BookingStatusPending).
		Where("NOT EXISTS (SELECT 1 FROM bookings b2 WHERE b2.unit_id = ? AND b2.status = ? AND b2.id <> ? AND b2.deleted_at IS NULL)",
			booking.UnitID, models.BookingStatusConfirmed, booking.ID).
		Update("status", models.BookingStatusConfirmed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		utils.CreateConflict("Booking cannot be confirmed in its current state.", ctx)
		return errHandled
	}
	booking.Status = models.BookingStatusConfirmed

	// Everyone else still pending on this unit loses the race.
	if err := tx.Model(&models.Booking{}).
		Where("unit_id = ? AND id <> ? AND status = ?", booking.UnitID, booking.ID, models.BookingStatusPending).
		Update("status", models.BookingStatusDenied).Error; err != nil {
		return err
	}

	return tx.Model(&models.Unit{}).Where("id = ?", booking.UnitID).
		Update("is_available", false).Error
}

func denyBooking(tx *gorm.DB, booking *models.Booking, ctx iris.Context) error {
	if booking.Status == models.BookingStatusDenied {
		utils.CreateConflict("Booking is already denied.", ctx)
		return errHandled
	}

	wasConfirmed := booking.Status == models.BookingStatusConfirmed

	if err := tx.Model(&models.Booking{}).Where("id = ?", booking.ID).
		Update("status", models.BookingStatusDenied).Error; err != nil {
		return err
	}
	booking.Status = models.BookingStatusDenied

	// Denying a confirmed booking reopens the unit; denying a pending one has
	// no availability side effect.
	if wasConfirmed {
		return tx.Model(&models.Unit{}).Where("id = ?", booking.UnitID).
			Update("is_available", true).Error
	}
	return nil
}
