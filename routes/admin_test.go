package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"may-space-server/models"
	"may-space-server/storage"
)

func TestAdminHeaderAuth(t *testing.T) {
	app := newTestApp(t)
	admin := seedAdmin(t, "root1")

	// Missing header.
	resp := doJSON(t, app, http.MethodGet, "/admin/users", nil, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without X-Admin-ID, got %d", resp.Code)
	}

	// Unknown admin id.
	resp = doJSON(t, app, http.MethodGet, "/admin/users", nil, adminHeader(admin.ID+100))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unknown admin, got %d", resp.Code)
	}

	// A plain user id is not an admin id.
	user := seedUser(t, "plainuser")
	resp = doJSON(t, app, http.MethodGet, "/admin/users", nil,
		map[string]string{"X-User-ID": fmt.Sprintf("%d", user.ID)})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with only X-User-ID, got %d", resp.Code)
	}

	resp = doJSON(t, app, http.MethodGet, "/admin/users", nil, adminHeader(admin.ID))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid admin, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/admin/register", map[string]interface{}{
		"username": "superadmin",
		"email":    "admin@example.com",
		"password": "password123",
	}, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, app, http.MethodPost, "/admin/login", map[string]interface{}{
		"username": "superadmin",
		"password": "password123",
	}, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on admin login, got %d", resp.Code)
	}

	// An admin account does not exist in the users table.
	resp = doJSON(t, app, http.MethodPost, "/user/login", map[string]interface{}{
		"username": "superadmin",
		"password": "password123",
	}, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for admin on user login, got %d", resp.Code)
	}
}

func TestAdminListUsersPagination(t *testing.T) {
	app := newTestApp(t)
	admin := seedAdmin(t, "root2")
	for i := 0; i < 3; i++ {
		seedUser(t, fmt.Sprintf("pageuser%d", i))
	}

	resp := doJSON(t, app, http.MethodGet, "/admin/users?page=1&per_page=2", nil, adminHeader(admin.ID))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var page struct {
		Data []models.User `json:"data"`
		Meta struct {
			Page    int   `json:"page"`
			PerPage int   `json:"per_page"`
			Total   int64 `json:"total"`
		} `json:"meta"`
	}
	decodeBody(t, resp, &page)
	if len(page.Data) != 2 {
		t.Fatalf("expected 2 users on page, got %d", len(page.Data))
	}
	if page.Meta.Total != 3 {
		t.Fatalf("expected total 3, got %d", page.Meta.Total)
	}
}

func TestAdminStatistics(t *testing.T) {
	app := newTestApp(t)
	admin := seedAdmin(t, "root3")
	owner := seedUser(t, "statowner")
	renter := seedUser(t, "statrenter")
	unit := seedUnit(t, owner.ID, "D-401")

	seedBooking(t, unit.ID, renter.ID, models.BookingStatusPending)

	resp := doJSON(t, app, http.MethodGet, "/admin/report/statistics", nil, adminHeader(admin.ID))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Data struct {
			TotalUsers       int64            `json:"total_users"`
			TotalUnits       int64            `json:"total_units"`
			TotalBookings    int64            `json:"total_bookings"`
			AvailableUnits   int64            `json:"available_units"`
			BookingsByStatus map[string]int64 `json:"bookings_by_status"`
			NewBookings7d    int64            `json:"new_bookings_7d"`
		} `json:"data"`
	}
	decodeBody(t, resp, &body)

	if body.Data.TotalUsers != 2 {
		t.Fatalf("expected 2 users, got %d", body.Data.TotalUsers)
	}
	if body.Data.TotalUnits != 1 || body.Data.AvailableUnits != 1 {
		t.Fatalf("expected 1 available unit, got total=%d available=%d",
			body.Data.TotalUnits, body.Data.AvailableUnits)
	}
	if body.Data.BookingsByStatus["pending"] != 1 {
		t.Fatalf("expected 1 pending booking, got %v", body.Data.BookingsByStatus)
	}
	if _, ok := body.Data.BookingsByStatus["cancelled"]; ok {
		t.Fatal("cancelled is not a booking status")
	}
	if body.Data.NewBookings7d != 1 {
		t.Fatalf("expected 1 new booking in 7d, got %d", body.Data.NewBookings7d)
	}
}

func TestAdminReportBookingsStatusFilter(t *testing.T) {
	app := newTestApp(t)
	admin := seedAdmin(t, "root4")
	owner := seedUser(t, "filterowner")
	renterA := seedUser(t, "filterrentera")
	renterB := seedUser(t, "filterrenterb")
	unit := seedUnit(t, owner.ID, "D-402")

	seedBooking(t, unit.ID, renterA.ID, models.BookingStatusDenied)
	seedBooking(t, unit.ID, renterB.ID, models.BookingStatusPending)

	resp := doJSON(t, app, http.MethodGet, "/admin/report/bookings?status=denied", nil, adminHeader(admin.ID))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Data []models.Booking `json:"data"`
	}
	decodeBody(t, resp, &body)
	if len(body.Data) != 1 || body.Data[0].Status != models.BookingStatusDenied {
		t.Fatalf("expected exactly the denied booking, got %+v", body.Data)
	}

	resp = doJSON(t, app, http.MethodGet, "/admin/report/bookings?status=cancelled", nil, adminHeader(admin.ID))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", resp.Code)
	}
}

func TestAdminDeleteUserCascades(t *testing.T) {
	app := newTestApp(t)
	admin := seedAdmin(t, "root5")
	target := seedUser(t, "doomed")
	other := seedUser(t, "survivor")
	targetUnit := seedUnit(t, target.ID, "D-403")
	otherUnit := seedUnit(t, other.ID, "D-404")

	// The target also booked and inquired about someone else's unit.
	seedBooking(t, otherUnit.ID, target.ID, models.BookingStatusPending)
	seedBooking(t, targetUnit.ID, other.ID, models.BookingStatusPending)
	inquiry := models.Inquiry{
		UnitID:      otherUnit.ID,
		SenderID:    target.ID,
		RecipientID: other.ID,
		Message:     "Still available?",
	}
	if err := storage.DB.Create(&inquiry).Error; err != nil {
		t.Fatalf("failed to seed inquiry: %v", err)
	}

	resp := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/admin/users/%d", target.ID), nil, adminHeader(admin.ID))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", resp.Code, resp.Body.String())
	}

	var users, units, bookings, inquiries int64
	storage.DB.Model(&models.User{}).Where("id = ?", target.ID).Count(&users)
	storage.DB.Model(&models.Unit{}).Where("owner_id = ?", target.ID).Count(&units)
	storage.DB.Model(&models.Booking{}).Where("user_id = ? OR unit_id = ?", target.ID, targetUnit.ID).Count(&bookings)
	storage.DB.Model(&models.Inquiry{}).Where("sender_id = ? OR recipient_id = ?", target.ID, target.ID).Count(&inquiries)
	if users != 0 || units != 0 || bookings != 0 || inquiries != 0 {
		t.Fatalf("expected cascade, left users=%d units=%d bookings=%d inquiries=%d",
			users, units, bookings, inquiries)
	}

	// The other user and their unit are untouched.
	var survivors int64
	storage.DB.Model(&models.Unit{}).Where("id = ?", otherUnit.ID).Count(&survivors)
	if survivors != 1 {
		t.Fatal("unrelated unit must survive the cascade")
	}

	// The deletion is audited.
	var audit models.AuditLog
	res := storage.DB.Where("action = ? AND resource_id = ?", "user.delete", target.ID).Limit(1).Find(&audit)
	if res.RowsAffected == 0 {
		t.Fatal("expected an audit row for the deletion")
	}
	if audit.AdminID != admin.ID {
		t.Fatalf("expected audit admin %d, got %d", admin.ID, audit.AdminID)
	}
	if !json.Valid([]byte(audit.BeforeJSON)) {
		t.Fatalf("expected valid before snapshot, got %q", audit.BeforeJSON)
	}
}

func TestAdminDeleteUnit(t *testing.T) {
	app := newTestApp(t)
	admin := seedAdmin(t, "root6")
	owner := seedUser(t, "modowner")
	unit := seedUnit(t, owner.ID, "D-405")

	resp := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/admin/units/%d", unit.ID), nil, adminHeader(admin.ID))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}

	var count int64
	storage.DB.Model(&models.Unit{}).Where("id = ?", unit.ID).Count(&count)
	if count != 0 {
		t.Fatal("expected unit to be removed")
	}

	resp = doJSON(t, app, http.MethodGet, "/admin/activity", nil, adminHeader(admin.ID))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on activity, got %d", resp.Code)
	}
	var activity struct {
		Data []models.AuditLog `json:"data"`
	}
	decodeBody(t, resp, &activity)
	if len(activity.Data) != 1 || activity.Data[0].Action != "unit.delete" {
		t.Fatalf("expected one unit.delete audit entry, got %+v", activity.Data)
	}
}

func TestAdminExportJob(t *testing.T) {
	app := newTestApp(t)
	admin := seedAdmin(t, "root7")
	seedUser(t, "exportuser")

	resp := doJSON(t, app, http.MethodPost, "/admin/export",
		map[string]interface{}{"resource": "users"}, adminHeader(admin.ID))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	decodeBody(t, resp, &created)
	if created.Data.ID == "" {
		t.Fatal("expected a job id")
	}

	var job struct {
		Data exportJob `json:"data"`
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp = doJSON(t, app, http.MethodGet, "/admin/export/"+created.Data.ID, nil, adminHeader(admin.ID))
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 polling job, got %d", resp.Code)
		}
		decodeBody(t, resp, &job)
		if job.Data.Status == "done" || job.Data.Status == "failed" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("export job stuck in status %q", job.Data.Status)
		}
		time.Sleep(50 * time.Millisecond)
	}

	if job.Data.Status != "done" {
		t.Fatalf("expected job done, got %q (%s)", job.Data.Status, job.Data.Error)
	}
	if job.Data.FilePath == "" {
		t.Fatal("expected a file path on the finished job")
	}

	// Unknown resource is rejected up front.
	resp = doJSON(t, app, http.MethodPost, "/admin/export",
		map[string]interface{}{"resource": "payments"}, adminHeader(admin.ID))
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown resource, got %d", resp.Code)
	}
}
