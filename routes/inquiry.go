package routes

import (
	"may-space-server/models"
	"may-space-server/storage"
	"may-space-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type CreateInquiryInput struct {
	UnitID  uint   `json:"unitID" validate:"required"`
	Message string `json:"message" validate:"required,max=5000"`
}

func CreateInquiry(ctx iris.Context) {
	senderID := utils.ActingUserID(ctx)

	var input CreateInquiryInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var unit models.Unit
	res := storage.DB.Limit(1).Find(&unit, input.UnitID)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	if unit.OwnerID == senderID {
		utils.CreateError(iris.StatusBadRequest, "Validation Error",
			"You cannot send an inquiry about your own unit.", ctx)
		return
	}

	inquiry := models.Inquiry{
		UnitID:      unit.ID,
		SenderID:    senderID,
		RecipientID: unit.OwnerID,
		Message:     input.Message,
	}

	if err := storage.DB.Create(&inquiry).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&inquiry)
}

type ReplyToInquiryInput struct {
	ParentInquiryID uint   `json:"parentInquiryID" validate:"required"`
	Message         string `json:"message" validate:"required,max=5000"`
	RecipientID     uint   `json:"recipientID"`
}

// ReplyToInquiry threads a message under an existing root inquiry. The reply
// always belongs to the parent's unit, whatever recipient the sender stated.
func ReplyToInquiry(ctx iris.Context) {
	senderID := utils.ActingUserID(ctx)

	var input ReplyToInquiryInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var parent models.Inquiry
	res := storage.DB.Limit(1).Find(&parent, input.ParentInquiryID)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	recipientID := input.RecipientID
	if recipientID == 0 {
		// Default to the other side of the parent exchange.
		if parent.SenderID == senderID {
			recipientID = parent.RecipientID
		} else {
			recipientID = parent.SenderID
		}
	}

	// Replies always hang off the root of the thread, even when the stated
	// parent is itself a reply.
	parentID := parent.ID
	if parent.ParentInquiryID != nil {
		parentID = *parent.ParentInquiryID
	}
	reply := models.Inquiry{
		UnitID:          parent.UnitID,
		SenderID:        senderID,
		RecipientID:     recipientID,
		Message:         input.Message,
		ParentInquiryID: &parentID,
	}

	if err := storage.DB.Create(&reply).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&reply)
}

// GetInquiries returns the acting user's root inquiries (sent or received),
// newest first, each with its replies threaded oldest-first.
func GetInquiries(ctx iris.Context) {
	userID := utils.ActingUserID(ctx)

	var inquiries []models.Inquiry
	res := storage.DB.
		Where("parent_inquiry_id IS NULL AND (sender_id = ? OR recipient_id = ?)", userID, userID).
		Preload("Sender").
		Preload("Recipient").
		Preload("Unit").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("inquiries.created_at ASC")
		}).
		Preload("Replies.Sender").
		Preload("Replies.Recipient").
		Order("created_at DESC").
		Find(&inquiries)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(inquiries)
}
