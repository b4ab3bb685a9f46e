package routes

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"may-space-server/models"
	"may-space-server/storage"
	"may-space-server/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

func CreateUnit(ctx iris.Context) {
	userID := utils.ActingUserID(ctx)

	var input CreateUnitInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	imagesArr := insertImages(input.Images, fmt.Sprintf("unit_u%d", userID))
	if imagesArr == nil {
		imagesArr = []string{}
	}
	imagesJSON, _ := json.Marshal(imagesArr)

	available := true
	unit := models.Unit{
		OwnerID:         userID,
		BuildingName:    input.BuildingName,
		UnitNumber:      input.UnitNumber,
		Location:        input.Location,
		Specifications:  input.Specifications,
		SpecialFeatures: input.SpecialFeatures,
		Price:           input.Price,
		ContactPerson:   input.ContactPerson,
		PhoneNumber:     input.PhoneNumber,
		Images:          string(imagesJSON),
		IsAvailable:     &available,
	}

	if err := storage.DB.Create(&unit).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&unit)
}

// GetMyUnits returns the acting user's own listings.
func GetMyUnits(ctx iris.Context) {
	userID := utils.ActingUserID(ctx)

	var units []models.Unit
	res := storage.DB.Where("owner_id = ?", userID).Order("created_at DESC").Find(&units)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(units)
}

func GetUnit(ctx iris.Context) {
	id := ctx.Params().Get("id")

	unit := getUnitByID(id, ctx)
	if unit == nil {
		return
	}

	ctx.JSON(unit)
}

// GetPublicUnits is the unauthenticated listing feed.
func GetPublicUnits(ctx iris.Context) {
	var units []models.Unit
	res := storage.DB.Preload("Owner").Order("created_at DESC").Find(&units)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(units)
}

func UpdateUnit(ctx iris.Context) {
	id := ctx.Params().Get("id")

	unit := getUnitByID(id, ctx)
	if unit == nil {
		return
	}

	userID := utils.ActingUserID(ctx)
	if unit.OwnerID != userID {
		utils.CreateForbidden(ctx)
		return
	}

	var input UpdateUnitInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	oldImages := unit.ImagePaths()

	imagesArr := insertImages(input.Images, fmt.Sprintf("unit_%d", unit.ID))
	if imagesArr == nil {
		imagesArr = []string{}
	}
	imagesJSON, _ := json.Marshal(imagesArr)

	// Files dropped from the image set are removed best-effort.
	for _, old := range oldImages {
		if !slices.Contains(imagesArr, old) {
			storage.DeleteImageFile(old)
		}
	}

	unit.BuildingName = input.BuildingName
	unit.UnitNumber = input.UnitNumber
	unit.Location = input.Location
	unit.Specifications = input.Specifications
	unit.SpecialFeatures = input.SpecialFeatures
	unit.Price = input.Price
	unit.ContactPerson = input.ContactPerson
	unit.PhoneNumber = input.PhoneNumber
	unit.Images = string(imagesJSON)
	if input.IsAvailable != nil {
		unit.IsAvailable = input.IsAvailable
	}

	if err := storage.DB.Save(unit).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(unit)
}

func DeleteUnit(ctx iris.Context) {
	id := ctx.Params().Get("id")

	unit := getUnitByID(id, ctx)
	if unit == nil {
		return
	}

	userID := utils.ActingUserID(ctx)
	if unit.OwnerID != userID {
		utils.CreateForbidden(ctx)
		return
	}

	if err := deleteUnitCascade(storage.DB, unit); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

// deleteUnitCascade removes a unit together with its bookings and inquiries,
// then removes the unit's image files best-effort. Row deletes run in one
// transaction; file cleanup failures are logged by storage, never fatal.
func deleteUnitCascade(db *gorm.DB, unit *models.Unit) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("unit_id = ?", unit.ID).Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		if err := tx.Where("unit_id = ?", unit.ID).Delete(&models.Inquiry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Unit{}, unit.ID).Error
	})
	if err != nil {
		return err
	}

	for _, image := range unit.ImagePaths() {
		storage.DeleteImageFile(image)
	}
	return nil
}

func getUnitByID(id string, ctx iris.Context) *models.Unit {
	var unit models.Unit
	unitExists := storage.DB.Preload("Owner").Find(&unit, id)

	if unitExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil
	}

	if unitExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return nil
	}

	return &unit
}

// insertImages persists incoming image strings. Already-stored paths are kept
// as-is, anything else is treated as a base64 payload and written to disk.
func insertImages(images []string, prefix string) []string {
	var imagesArr []string
	for i, image := range images {
		if image == "" {
			continue
		}
		if strings.HasPrefix(image, "/uploads/") {
			// An existing stored path, keep the reference.
			imagesArr = append(imagesArr, image)
			continue
		}

		name := fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixNano()/int64(time.Millisecond), i)
		if path := storage.SaveBase64Image(image, name); path != "" {
			imagesArr = append(imagesArr, path)
		}
	}
	return imagesArr
}

type CreateUnitInput struct {
	BuildingName    string   `json:"buildingName" validate:"required,max=256"`
	UnitNumber      string   `json:"unitNumber" validate:"required,max=64"`
	Location        string   `json:"location" validate:"required,max=512"`
	Specifications  string   `json:"specifications"`
	SpecialFeatures string   `json:"specialFeatures"`
	Price           float64  `json:"price" validate:"required,gte=0"`
	ContactPerson   string   `json:"contactPerson" validate:"required,max=256"`
	PhoneNumber     string   `json:"phoneNumber" validate:"required,max=32"`
	Images          []string `json:"images"`
}

type UpdateUnitInput struct {
	BuildingName    string   `json:"buildingName" validate:"required,max=256"`
	UnitNumber      string   `json:"unitNumber" validate:"required,max=64"`
	Location        string   `json:"location" validate:"required,max=512"`
	Specifications  string   `json:"specifications"`
	SpecialFeatures string   `json:"specialFeatures"`
	Price           float64  `json:"price" validate:"required,gte=0"`
	ContactPerson   string   `json:"contactPerson" validate:"required,max=256"`
	PhoneNumber     string   `json:"phoneNumber" validate:"required,max=32"`
	Images          []string `json:"images"`
	IsAvailable     *bool    `json:"isAvailable"`
}
