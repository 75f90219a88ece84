package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studymate/server/model"
	"gorm.io/gorm"
)

// Values of delete_type on DELETE /studychatbox/delete/:id/.
const (
	deleteUserMessage = "user_message"
	deleteBotResponse = "bot_response"
)

// StudyChatHandler handles the study chatbox log.
type StudyChatHandler struct {
	db *gorm.DB
}

// NewStudyChatHandler creates a new StudyChatHandler.
func NewStudyChatHandler(db *gorm.DB) *StudyChatHandler {
	return &StudyChatHandler{db: db}
}

type studyChatRequest struct {
	Student     *int64 `json:"student"`
	UserMessage string `json:"user_message" binding:"required"`
	BotResponse string `json:"bot_response" binding:"required"`
	Category    string `json:"category" binding:"required"`
}

// List handles GET /studychatbox/all/.
func (h *StudyChatHandler) List(c *gin.Context) {
	var chats []model.StudyChatbox
	if err := h.db.WithContext(c.Request.Context()).
		Order("timestamp").Order("id").Find(&chats).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, "All chat messages fetched successfully", chats)
}

// Create handles POST /studychatbox/create/.
func (h *StudyChatHandler) Create(c *gin.Context) {
	var req studyChatRequest
	if !bindJSON(c, &req) {
		return
	}
	if !model.ValidStudyCategory(req.Category) {
		fail(c, http.StatusBadRequest, fmt.Sprintf("%q is not a valid choice.", req.Category))
		return
	}
	db := h.db.WithContext(c.Request.Context())
	if req.Student != nil {
		var n int64
		if err := db.Model(&model.Student{}).Where("id = ?", *req.Student).Count(&n).Error; err != nil {
			internalError(c, err)
			return
		}
		if n == 0 {
			fail(c, http.StatusBadRequest, "Student not found")
			return
		}
	}
	chat := model.StudyChatbox{
		StudentID:   req.Student,
		UserMessage: req.UserMessage,
		BotResponse: req.BotResponse,
		Category:    req.Category,
	}
	if err := db.Create(&chat).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Chat message created successfully", chat)
}

// ListByStudent handles GET /studychatbox/student/:student_id/.
func (h *StudyChatHandler) ListByStudent(c *gin.Context) {
	studentID, valid := pathID(c, "student_id", "Student not found")
	if !valid {
		return
	}
	var chats []model.StudyChatbox
	if err := h.db.WithContext(c.Request.Context()).
		Where("student_id = ?", studentID).
		Order("timestamp").Order("id").Find(&chats).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, fmt.Sprintf("Chats for student %d fetched successfully", studentID), chats)
}

// Delete handles DELETE /studychatbox/delete/:id/. A delete_type of
// user_message or bot_response blanks that side and keeps the row.
func (h *StudyChatHandler) Delete(c *gin.Context) {
	id, valid := pathID(c, "id", "Chat message not found")
	if !valid {
		return
	}
	var req struct {
		DeleteType string `json:"delete_type"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}
	db := h.db.WithContext(c.Request.Context())
	var chat model.StudyChatbox
	if err := db.First(&chat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Chat message not found")
			return
		}
		internalError(c, err)
		return
	}

	var err error
	var msg string
	switch req.DeleteType {
	case deleteUserMessage:
		err = db.Model(&chat).Update("user_message", "").Error
		msg = "User message cleared successfully"
	case deleteBotResponse:
		err = db.Model(&chat).Update("bot_response", "").Error
		msg = "Bot response cleared successfully"
	default:
		err = db.Delete(&chat).Error
		msg = "Chat message deleted successfully"
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
