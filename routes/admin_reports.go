package routes

import (
	"time"

	"may-space-server/models"
	"may-space-server/storage"
	"may-space-server/utils"

	"github.com/kataras/iris/v12"
)

// GET /admin/report/statistics
func AdminReportStatistics(ctx iris.Context) {
	var totalUsers, totalUnits, totalBookings, availableUnits int64
	storage.DB.Model(&models.User{}).Count(&totalUsers)
	storage.DB.Model(&models.Unit{}).Count(&totalUnits)
	storage.DB.Model(&models.Booking{}).Count(&totalBookings)
	storage.DB.Model(&models.Unit{}).Where("is_available = ?", true).Count(&availableUnits)

	// Booking statuses are pending/confirmed/denied only.
	byStatus := iris.Map{}
	for _, status := range []string{
		models.BookingStatusPending,
		models.BookingStatusConfirmed,
		models.BookingStatusDenied,
	} {
		var n int64
		storage.DB.Model(&models.Booking{}).Where("status = ?", status).Count(&n)
		byStatus[status] = n
	}

	since7 := time.Now().AddDate(0, 0, -7)
	since30 := time.Now().AddDate(0, 0, -30)
	var newBookings7, newBookings30 int64
	storage.DB.Model(&models.Booking{}).Where("created_at >= ?", since7).Count(&newBookings7)
	storage.DB.Model(&models.Booking{}).Where("created_at >= ?", since30).Count(&newBookings30)

	ctx.JSON(iris.Map{
		"data": iris.Map{
			"total_users":        totalUsers,
			"total_units":        totalUnits,
			"total_bookings":     totalBookings,
			"available_units":    availableUnits,
			"bookings_by_status": byStatus,
			"new_bookings_7d":    newBookings7,
			"new_bookings_30d":   newBookings30,
		},
		"meta":  iris.Map{},
		"links": iris.Map{},
	})
}

// GET /admin/report/bookings?startDate&endDate&status
func AdminReportBookings(ctx iris.Context) {
	q := storage.DB.Model(&models.Booking{}).Preload("Unit").Preload("User")

	if startDate := ctx.URLParam("startDate"); startDate != "" {
		start, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "startDate must be YYYY-MM-DD.", ctx)
			return
		}
		q = q.Where("bookings.created_at >= ?", start)
	}
	if endDate := ctx.URLParam("endDate"); endDate != "" {
		end, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "endDate must be YYYY-MM-DD.", ctx)
			return
		}
		q = q.Where("bookings.created_at < ?", end.AddDate(0, 0, 1))
	}
	if status := ctx.URLParam("status"); status != "" {
		if status != models.BookingStatusPending &&
			status != models.BookingStatusConfirmed &&
			status != models.BookingStatusDenied {
			utils.CreateError(iris.StatusBadRequest, "Validation Error",
				"status must be pending, confirmed or denied.", ctx)
			return
		}
		q = q.Where("bookings.status = ?", status)
	}

	var bookings []models.Booking
	if err := q.Order("bookings.created_at DESC").Find(&bookings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"data": bookings, "meta": iris.Map{}, "links": iris.Map{}})
}

type userReportRow struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	UnitCount    int64  `json:"unitCount"`
	BookingCount int64  `json:"bookingCount"`
}

// GET /admin/report/users
func AdminReportUsers(ctx iris.Context) {
	var rows []userReportRow
	err := storage.DB.Model(&models.User{}).
		Select(`users.id, users.name, users.username, users.email,
			(SELECT COUNT(*) FROM units WHERE units.owner_id = users.id AND units.deleted_at IS NULL) AS unit_count,
			(SELECT COUNT(*) FROM bookings WHERE bookings.user_id = users.id AND bookings.deleted_at IS NULL) AS booking_count`).
		Order("users.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"data": rows, "meta": iris.Map{}, "links": iris.Map{}})
}
