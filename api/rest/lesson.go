package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studymate/server/model"
	"gorm.io/gorm"
)

// LessonHandler handles lessons inside the requester's dashboard modules.
type LessonHandler struct {
	db *gorm.DB
}

// NewLessonHandler creates a new LessonHandler.
func NewLessonHandler(db *gorm.DB) *LessonHandler {
	return &LessonHandler{db: db}
}

type lessonRequest struct {
	DashboardModule *int64  `json:"dashboard_module"`
	Title           *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description     *string `json:"description"`
}

// Create handles POST /lessons/create/.
func (h *LessonHandler) Create(c *gin.Context) {
	me, found := currentStudent(c, h.db)
	if !found {
		return
	}
	var req lessonRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.DashboardModule == nil {
		fail(c, http.StatusBadRequest, "Dashboard Module ID is required.")
		return
	}
	db := h.db.WithContext(c.Request.Context())
	owned, err := h.ownsModule(db, me.ID, *req.DashboardModule)
	if err != nil {
		internalError(c, err)
		return
	}
	if !owned {
		fail(c, http.StatusNotFound, "Invalid or unauthorized module ID.")
		return
	}
	if req.Title == nil {
		fail(c, http.StatusBadRequest, "title is required")
		return
	}

	l := model.Lesson{DashboardModuleID: *req.DashboardModule, Title: *req.Title}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if err := db.Create(&l).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Lesson created successfully", l)
}

// ListByModule handles GET /lessons/module/:module_id/.
func (h *LessonHandler) ListByModule(c *gin.Context) {
	me, found := currentStudent(c, h.db)
	if !found {
		return
	}
	moduleID, valid := pathID(c, "module_id", "Module not found")
	if !valid {
		return
	}
	db := h.db.WithContext(c.Request.Context())
	owned, err := h.ownsModule(db, me.ID, moduleID)
	if err != nil {
		internalError(c, err)
		return
	}
	if !owned {
		fail(c, http.StatusNotFound, "Module not found")
		return
	}
	lessons := []model.Lesson{}
	if err := db.Where("dashboard_module_id = ?", moduleID).Order("id").Find(&lessons).Error; err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lessons})
}

// Get handles GET /lessons/:id/.
func (h *LessonHandler) Get(c *gin.Context) {
	l, found := h.load(c)
	if !found {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": l})
}

// Update handles PUT /lessons/:id/. Only supplied fields change, and a
// lesson can only move to another module of the same student.
func (h *LessonHandler) Update(c *gin.Context) {
	l, found := h.load(c)
	if !found {
		return
	}
	var req lessonRequest
	if !bindJSON(c, &req) {
		return
	}
	db := h.db.WithContext(c.Request.Context())
	if req.DashboardModule != nil && *req.DashboardModule != l.DashboardModuleID {
		me, found := currentStudent(c, h.db)
		if !found {
			return
		}
		owned, err := h.ownsModule(db, me.ID, *req.DashboardModule)
		if err != nil {
			internalError(c, err)
			return
		}
		if !owned {
			fail(c, http.StatusBadRequest, "Invalid or unauthorized module ID.")
			return
		}
		l.DashboardModuleID = *req.DashboardModule
	}
	if req.Title != nil {
		l.Title = *req.Title
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if err := db.Save(l).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, "Lesson updated", l)
}

func (h *LessonHandler) ownsModule(db *gorm.DB, studentID, moduleID int64) (bool, error) {
	var n int64
	err := db.Model(&model.DashboardModule{}).
		Where("id = ? AND student_id = ?", moduleID, studentID).Count(&n).Error
	return n > 0, err
}

// load finds a lesson whose module belongs to the requester.
func (h *LessonHandler) load(c *gin.Context) (*model.Lesson, bool) {
	me, found := currentStudent(c, h.db)
	if !found {
		return nil, false
	}
	id, valid := pathID(c, "id", "Lesson not found")
	if !valid {
		return nil, false
	}
	var l model.Lesson
	err := h.db.WithContext(c.Request.Context()).
		Joins("JOIN dashboard_modules ON dashboard_modules.id = lessons.dashboard_module_id").
		Where("lessons.id = ? AND dashboard_modules.student_id = ?", id, me.ID).
		First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Lesson not found")
			return nil, false
		}
		internalError(c, err)
		return nil, false
	}
	return &l, true
}
