package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/studymate/server/model"
	"gorm.io/gorm"
)

// DashboardHandler manages the requester's dashboard modules.
type DashboardHandler struct {
	db *gorm.DB
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// List handles GET /dashboard-modules/.
func (h *DashboardHandler) List(c *gin.Context) {
	h.listByActive(c, true)
}

// Available handles GET /dashboard-modules/available/.
func (h *DashboardHandler) Available(c *gin.Context) {
	h.listByActive(c, false)
}

func (h *DashboardHandler) listByActive(c *gin.Context, active bool) {
	me, found := currentStudent(c, h.db)
	if !found {
		return
	}
	modules := []model.DashboardModule{}
	if err := h.db.WithContext(c.Request.Context()).
		Preload("SavedStudyPlan").
		Where("student_id = ? AND is_active = ?", me.ID, active).
		Order("id").Find(&modules).Error; err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": modules})
}

// Create handles POST /dashboard-modules/create/. The module always belongs
// to the requester.
func (h *DashboardHandler) Create(c *gin.Context) {
	me, found := currentStudent(c, h.db)
	if !found {
		return
	}
	var req struct {
		Title    string `json:"title" binding:"required,max=200"`
		IsActive *bool  `json:"is_active"`
	}
	if !bindJSON(c, &req) {
		return
	}
	m := model.DashboardModule{StudentID: me.ID, Title: req.Title, IsActive: true}
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		// gorm skips zero values for columns with a default.
		if req.IsActive != nil && !*req.IsActive {
			m.IsActive = false
			return tx.Model(&m).Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Module created successfully", m)
}

// Toggle handles POST /dashboard-modules/toggle/:module_id/.
func (h *DashboardHandler) Toggle(c *gin.Context) {
	m, found := h.own(c, "module_id")
	if !found {
		return
	}
	m.IsActive = !m.IsActive
	if err := h.db.WithContext(c.Request.Context()).
		Model(m).Update("is_active", m.IsActive).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, "Module toggled", m)
}

// Get handles GET /dashboard-modules/:id/.
func (h *DashboardHandler) Get(c *gin.Context) {
	m, found := h.own(c, "id")
	if !found {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": m})
}

// PlanForModule handles GET /modules/:module_id/study-plan/. It is public
// and answers an empty plan rather than 404.
func (h *DashboardHandler) PlanForModule(c *gin.Context) {
	content := ""
	id, err := strconv.ParseInt(c.Param("module_id"), 10, 64)
	if err == nil {
		var m model.DashboardModule
		err = h.db.WithContext(c.Request.Context()).
			Preload("SavedStudyPlan").First(&m, id).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			internalError(c, err)
			return
		}
		if err == nil && m.SavedStudyPlan != nil {
			content = m.SavedStudyPlan.PlanContent
		}
	}
	c.JSON(http.StatusOK, gin.H{"plan_content": content})
}

// own loads a module of the requester by the named path parameter.
func (h *DashboardHandler) own(c *gin.Context, param string) (*model.DashboardModule, bool) {
	me, found := currentStudent(c, h.db)
	if !found {
		return nil, false
	}
	id, valid := pathID(c, param, "Module not found")
	if !valid {
		return nil, false
	}
	var m model.DashboardModule
	err := h.db.WithContext(c.Request.Context()).
		Preload("SavedStudyPlan").
		Where("id = ? AND student_id = ?", id, me.ID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Module not found")
			return nil, false
		}
		internalError(c, err)
		return nil, false
	}
	return &m, true
}
