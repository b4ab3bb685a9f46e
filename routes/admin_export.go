package routes

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"may-space-server/models"
	"may-space-server/storage"

	"github.com/kataras/iris/v12"
	"github.com/rs/zerolog"
)

type exportJob struct {
	ID        string `json:"id"`
	Resource  string `json:"resource"`
	Status    string `json:"status"` // pending, processing, done, failed
	FilePath  string `json:"filePath,omitempty"`
	Error     string `json:"error,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

var (
	exportJobs   = map[string]*exportJob{}
	exportJobsMu sync.Mutex

	exportLog = zerolog.New(os.Stderr).With().Timestamp().Str("component", "export").Logger()
)

// POST /admin/export { resource: "users" | "units" | "bookings" }
func AdminCreateExport(ctx iris.Context) {
	var body struct {
		Resource string `json:"resource"`
	}
	if err := ctx.ReadJSON(&body); err != nil {
		ctx.StatusCode(http.StatusUnprocessableEntity)
		ctx.JSON(iris.Map{"error": "invalid_payload", "message": "resource required"})
		return
	}
	switch body.Resource {
	case "users", "units", "bookings":
	default:
		ctx.StatusCode(http.StatusUnprocessableEntity)
		ctx.JSON(iris.Map{"error": "invalid_payload", "message": "resource must be users, units or bookings"})
		return
	}

	id := time.Now().Format("20060102150405.000000")
	job := &exportJob{ID: id, Resource: body.Resource, Status: "pending", CreatedAt: time.Now().Unix()}
	exportJobsMu.Lock()
	exportJobs[id] = job
	exportJobsMu.Unlock()

	go runExport(job)

	ctx.JSON(iris.Map{"data": iris.Map{"id": id, "status": job.Status}})
}

// GET /admin/export/:id
func AdminGetExport(ctx iris.Context) {
	id := ctx.Params().GetString("id")
	exportJobsMu.Lock()
	job, ok := exportJobs[id]
	exportJobsMu.Unlock()
	if !ok {
		ctx.StatusCode(http.StatusNotFound)
		ctx.JSON(iris.Map{"error": "not_found", "message": "job not found"})
		return
	}
	exportJobsMu.Lock()
	snapshot := *job
	exportJobsMu.Unlock()
	ctx.JSON(iris.Map{"data": snapshot})
}

func runExport(job *exportJob) {
	setExportStatus(job, "processing", "", "")

	data, err := buildExportCSV(job.Resource)
	if err != nil {
		exportLog.Error().Err(err).Str("resource", job.Resource).Msg("export failed")
		setExportStatus(job, "failed", "", err.Error())
		return
	}

	fileName := fmt.Sprintf("%s-%s.csv", job.Resource, job.ID)
	path, err := storage.WriteExportFile(fileName, data)
	if err != nil {
		exportLog.Error().Err(err).Str("resource", job.Resource).Msg("export write failed")
		setExportStatus(job, "failed", "", err.Error())
		return
	}

	setExportStatus(job, "done", path, "")
}

func setExportStatus(job *exportJob, status, filePath, errMsg string) {
	exportJobsMu.Lock()
	job.Status = status
	job.FilePath = filePath
	job.Error = errMsg
	exportJobsMu.Unlock()
}

func buildExportCSV(resource string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	switch resource {
	case "users":
		var users []models.User
		if err := storage.DB.Order("id").Find(&users).Error; err != nil {
			return nil, err
		}
		w.Write([]string{"id", "name", "username", "email", "contact_number", "created_at"})
		for _, u := range users {
			w.Write([]string{
				strconv.FormatUint(uint64(u.ID), 10),
				u.Name, u.Username, u.Email, u.ContactNumber,
				u.CreatedAt.Format(time.RFC3339),
			})
		}
	case "units":
		var units []models.Unit
		if err := storage.DB.Order("id").Find(&units).Error; err != nil {
			return nil, err
		}
		w.Write([]string{"id", "owner_id", "building_name", "unit_number", "location", "price", "is_available", "created_at"})
		for _, u := range units {
			available := u.IsAvailable != nil && *u.IsAvailable
			w.Write([]string{
				strconv.FormatUint(uint64(u.ID), 10),
				strconv.FormatUint(uint64(u.OwnerID), 10),
				u.BuildingName, u.UnitNumber, u.Location,
				strconv.FormatFloat(u.Price, 'f', 2, 64),
				strconv.FormatBool(available),
				u.CreatedAt.Format(time.RFC3339),
			})
		}
	case "bookings":
		var bookings []models.Booking
		if err := storage.DB.Order("id").Find(&bookings).Error; err != nil {
			return nil, err
		}
		w.Write([]string{"id", "unit_id", "user_id", "status", "transaction_type", "num_people", "date_of_visiting", "created_at"})
		for _, b := range bookings {
			w.Write([]string{
				strconv.FormatUint(uint64(b.ID), 10),
				strconv.FormatUint(uint64(b.UnitID), 10),
				strconv.FormatUint(uint64(b.UserID), 10),
				b.Status, b.TransactionType,
				strconv.Itoa(b.NumPeople),
				b.DateOfVisiting.Format(time.RFC3339),
				b.CreatedAt.Format(time.RFC3339),
			})
		}
	default:
		return nil, fmt.Errorf("unknown export resource %q", resource)
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
