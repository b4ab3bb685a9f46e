package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"may-space-server/models"
	"may-space-server/storage"
	"may-space-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestApp wires the full route tree against a fresh in-memory database.
func newTestApp(t *testing.T) *iris.Application {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	storage.Migrate(db)
	storage.DB = db

	t.Setenv("UPLOAD_DIR", t.TempDir())
	storage.InitializeUploads()

	app := iris.New()
	app.Validator = validator.New()

	user := app.Party("/user")
	{
		user.Post("/register", Register)
		user.Post("/login", Login)
	}

	auth := app.Party("/api/auth")
	{
		auth.Post("/forgot-password", ForgotPassword)
		auth.Post("/reset-password", ResetPassword)
	}

	units := app.Party("/units", utils.UserIDHeaderMiddleware)
	{
		units.Post("/", CreateUnit)
		units.Get("/", GetMyUnits)
		units.Get("/{id:uint}", GetUnit)
		units.Put("/{id:uint}", UpdateUnit)
		units.Delete("/{id:uint}", DeleteUnit)
	}

	public := app.Party("/public")
	{
		public.Get("/units", GetPublicUnits)
	}

	bookings := app.Party("/bookings", utils.UserIDHeaderMiddleware)
	{
		bookings.Post("/", CreateBooking)
		bookings.Get("/my", GetMyBookings)
		bookings.Get("/rented", GetRentedBookings)
		bookings.Put("/{id:uint}/status", UpdateBookingStatus)
	}

	inquiries := app.Party("/inquiries", utils.UserIDHeaderMiddleware)
	{
		inquiries.Post("/", CreateInquiry)
		inquiries.Post("/reply", ReplyToInquiry)
		inquiries.Get("/", GetInquiries)
	}

	admin := app.Party("/admin")
	{
		admin.Post("/register", AdminRegister)
		admin.Post("/login", AdminLogin)

		panel := admin.Party("/", utils.AdminIDHeaderMiddleware)
		panel.Get("/users", AdminListUsers)
		panel.Delete("/users/{id:uint}", AdminDeleteUser)
		panel.Get("/units", AdminListUnits)
		panel.Delete("/units/{id:uint}", AdminDeleteUnit)
		panel.Get("/activity", AdminActivity)
		panel.Get("/report/statistics", AdminReportStatistics)
		panel.Get("/report/bookings", AdminReportBookings)
		panel.Get("/report/users", AdminReportUsers)
		panel.Post("/export", AdminCreateExport)
		panel.Get("/export/{id:string}", AdminGetExport)
	}

	if err := app.Build(); err != nil {
		t.Fatalf("failed to build test app: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *iris.Application, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func userHeader(id uint) map[string]string {
	return map[string]string{"X-User-ID": fmt.Sprintf("%d", id)}
}

func adminHeader(id uint) map[string]string {
	return map[string]string{"X-Admin-ID": fmt.Sprintf("%d", id)}
}

func seedUser(t *testing.T, username string) models.User {
	t.Helper()
	hashed, err := hashAndSaltPassword("password123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{
		Name:     "Test " + username,
		Username: username,
		Email:    username + "@example.com",
		Password: hashed,
	}
	if err := storage.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func seedAdmin(t *testing.T, username string) models.Admin {
	t.Helper()
	hashed, err := hashAndSaltPassword("password123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	admin := models.Admin{
		Username: username,
		Email:    username + "@example.com",
		Password: hashed,
	}
	if err := storage.DB.Create(&admin).Error; err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}
	return admin
}

func seedUnit(t *testing.T, ownerID uint, unitNumber string) models.Unit {
	t.Helper()
	available := true
	unit := models.Unit{
		OwnerID:       ownerID,
		BuildingName:  "Maple Tower",
		UnitNumber:    unitNumber,
		Location:      "12 Maple St",
		Price:         950,
		ContactPerson: "Front Desk",
		PhoneNumber:   "555-0100",
		Images:        "[]",
		IsAvailable:   &available,
	}
	if err := storage.DB.Create(&unit).Error; err != nil {
		t.Fatalf("failed to seed unit: %v", err)
	}
	return unit
}

func seedBooking(t *testing.T, unitID, userID uint, status string) models.Booking {
	t.Helper()
	booking := models.Booking{
		UnitID:          unitID,
		UserID:          userID,
		Name:            "Visitor",
		Address:         "34 Oak Ave",
		ContactNumber:   "555-0101",
		NumPeople:       2,
		TransactionType: "walk-in",
		DateOfVisiting:  time.Now().Add(48 * time.Hour),
		Status:          status,
	}
	if err := storage.DB.Create(&booking).Error; err != nil {
		t.Fatalf("failed to seed booking: %v", err)
	}
	return booking
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", resp.Body.String(), err)
	}
}
