package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	mw "github.com/studymate/server/middleware"
	"github.com/studymate/server/model"
	"gorm.io/gorm"
)

// StudentHandler handles student profile endpoints.
type StudentHandler struct {
	db *gorm.DB
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(db *gorm.DB) *StudentHandler {
	return &StudentHandler{db: db}
}

type studentRequest struct {
	Name       string `json:"name" binding:"max=100"`
	Email      string `json:"email" binding:"required,email,max=100"`
	CourseName string `json:"course_name" binding:"max=100"`
}

// Details handles GET /get_user_and_student_details/.
func (h *StudentHandler) Details(c *gin.Context) {
	var user model.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, mw.GetUserID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "No student profile linked.")
			return
		}
		internalError(c, err)
		return
	}
	student, found := currentStudent(c, h.db)
	if !found {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":    gin.H{"id": user.ID, "username": user.Username},
		"student": student,
	})
}

// Create handles POST /create_student/. A user may own one profile.
func (h *StudentHandler) Create(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())
	userID := mw.GetUserID(c)

	var n int64
	if err := db.Model(&model.Student{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		internalError(c, err)
		return
	}
	if n > 0 {
		fail(c, http.StatusBadRequest, "Student profile already exists for this user.")
		return
	}

	var req studentRequest
	if !bindJSON(c, &req) {
		return
	}
	s := model.Student{UserID: &userID, Name: req.Name, Email: req.Email, CourseName: req.CourseName}
	if err := db.Create(&s).Error; err != nil {
		if isUniqueViolation(err) {
			fail(c, http.StatusBadRequest, "student with this email already exists.")
			return
		}
		internalError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Student created", s)
}

// Get handles GET /get_student/:id/.
func (h *StudentHandler) Get(c *gin.Context) {
	s, found := h.load(c)
	if !found {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student details fetched successfully", "student": s})
}

// Update handles PUT /update_student/:id/. Only the owner may edit a profile.
func (h *StudentHandler) Update(c *gin.Context) {
	s, found := h.load(c)
	if !found {
		return
	}
	if s.UserID == nil || *s.UserID != mw.GetUserID(c) {
		fail(c, http.StatusForbidden, "Unauthorized")
		return
	}
	var req studentRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Name != "" {
		s.Name = req.Name
	}
	if req.CourseName != "" {
		s.CourseName = req.CourseName
	}
	s.Email = req.Email
	if err := h.db.WithContext(c.Request.Context()).Save(s).Error; err != nil {
		if isUniqueViolation(err) {
			fail(c, http.StatusBadRequest, "Failed to update student")
			return
		}
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, "Student updated successfully", s)
}

// Delete handles DELETE /delete_student/:id/.
func (h *StudentHandler) Delete(c *gin.Context) {
	s, found := h.load(c)
	if !found {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(s).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, "Student deleted successfully", nil)
}

// List handles GET /get_all_students/.
func (h *StudentHandler) List(c *gin.Context) {
	var students []model.Student
	if err := h.db.WithContext(c.Request.Context()).Order("id").Find(&students).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, "All students fetched successfully", students)
}

func (h *StudentHandler) load(c *gin.Context) (*model.Student, bool) {
	id, valid := pathID(c, "id", "Student not found")
	if !valid {
		return nil, false
	}
	var s model.Student
	if err := h.db.WithContext(c.Request.Context()).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Student not found")
			return nil, false
		}
		internalError(c, err)
		return nil, false
	}
	return &s, true
}
