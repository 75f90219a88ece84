package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/studymate/server/ai"
	"github.com/studymate/server/model"
	"gorm.io/gorm"
)

// WellnessHandler serves the wellness chatbot and its message log.
type WellnessHandler struct {
	db *gorm.DB
	ai *ai.Client
}

// NewWellnessHandler creates a new WellnessHandler.
func NewWellnessHandler(db *gorm.DB, client *ai.Client) *WellnessHandler {
	return &WellnessHandler{db: db, ai: client}
}

type wellnessRequest struct {
	Student *int64  `json:"student"`
	Message *string `json:"message" binding:"omitempty,min=1"`
	IsBot   *bool   `json:"is_bot"`
}

// Chat handles POST /wellness/. Nothing is stored; clients persist the
// exchange through /wellness_create/.
func (h *WellnessHandler) Chat(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		fail(c, http.StatusBadRequest, "Missing query")
		return
	}
	reply, err := h.ai.WellnessResponse(c.Request.Context(), req.Query)
	if err != nil {
		domainError(c, err)
		return
	}
	ok(c, http.StatusOK, "Response generated successfully", reply)
}

// List handles GET /wellness_chats/.
func (h *WellnessHandler) List(c *gin.Context) {
	var chats []model.WellnessChat
	if err := h.db.WithContext(c.Request.Context()).
		Order("timestamp").Order("id").Find(&chats).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, "All wellness chat messages fetched successfully", chats)
}

// ListByStudent handles GET /wellness_message/:student_id/.
func (h *WellnessHandler) ListByStudent(c *gin.Context) {
	studentID, valid := pathID(c, "student_id", "Student not found")
	if !valid {
		return
	}
	var chats []model.WellnessChat
	if err := h.db.WithContext(c.Request.Context()).
		Where("student_id = ?", studentID).
		Order("timestamp").Order("id").Find(&chats).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, fmt.Sprintf("Chats for student %d fetched successfully", studentID), chats)
}

// Create handles POST /wellness_create/.
func (h *WellnessHandler) Create(c *gin.Context) {
	var req wellnessRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Message == nil {
		fail(c, http.StatusBadRequest, "message is required")
		return
	}
	chat := model.WellnessChat{StudentID: req.Student, Message: *req.Message}
	if req.IsBot != nil {
		chat.IsBot = *req.IsBot
	}
	if !h.save(c, &chat, true) {
		return
	}
	ok(c, http.StatusCreated, "Wellness chat message created successfully", chat)
}

// Update handles PUT /wellness_update/:id/. Only supplied fields change.
func (h *WellnessHandler) Update(c *gin.Context) {
	chat, found := h.load(c)
	if !found {
		return
	}
	var req wellnessRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Student != nil {
		chat.StudentID = req.Student
	}
	if req.Message != nil {
		chat.Message = *req.Message
	}
	if req.IsBot != nil {
		chat.IsBot = *req.IsBot
	}
	if !h.save(c, chat, false) {
		return
	}
	ok(c, http.StatusOK, "Wellness chat message updated successfully", chat)
}

// Delete handles DELETE /wellness_delete/:id/.
func (h *WellnessHandler) Delete(c *gin.Context) {
	chat, found := h.load(c)
	if !found {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(chat).Error; err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Wellness chat message deleted successfully"})
}

func (h *WellnessHandler) save(c *gin.Context, chat *model.WellnessChat, create bool) bool {
	db := h.db.WithContext(c.Request.Context())
	if chat.StudentID != nil {
		var n int64
		if err := db.Model(&model.Student{}).Where("id = ?", *chat.StudentID).Count(&n).Error; err != nil {
			internalError(c, err)
			return false
		}
		if n == 0 {
			fail(c, http.StatusBadRequest, "Student not found")
			return false
		}
	}
	var err error
	if create {
		err = db.Create(chat).Error
	} else {
		err = db.Save(chat).Error
	}
	if err != nil {
		internalError(c, err)
		return false
	}
	return true
}

func (h *WellnessHandler) load(c *gin.Context) (*model.WellnessChat, bool) {
	id, valid := pathID(c, "id", "Chat message not found")
	if !valid {
		return nil, false
	}
	var chat model.WellnessChat
	if err := h.db.WithContext(c.Request.Context()).First(&chat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Chat message not found")
			return nil, false
		}
		internalError(c, err)
		return nil, false
	}
	return &chat, true
}
