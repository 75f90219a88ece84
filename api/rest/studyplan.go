package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/studymate/server/ai"
	"github.com/studymate/server/model"
	"gorm.io/gorm"
)

// StudyPlanHandler generates study plans and stores the ones a student keeps.
type StudyPlanHandler struct {
	db *gorm.DB
	ai *ai.Client
}

// NewStudyPlanHandler creates a new StudyPlanHandler.
func NewStudyPlanHandler(db *gorm.DB, client *ai.Client) *StudyPlanHandler {
	return &StudyPlanHandler{db: db, ai: client}
}

// Generate handles POST /study_plan/.
func (h *StudyPlanHandler) Generate(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		fail(c, http.StatusBadRequest, "Missing prompt")
		return
	}
	plan, err := h.ai.StudyPlan(c.Request.Context(), req.Prompt)
	if err != nil {
		domainError(c, err)
		return
	}
	ok(c, http.StatusOK, "Study plan generated successfully", plan)
}

// Save handles POST /study-plans/save/. The plan is stored as saved and
// linked to one of the requester's dashboard modules.
func (h *StudyPlanHandler) Save(c *gin.Context) {
	me, found := currentStudent(c, h.db)
	if !found {
		return
	}
	var req struct {
		PlanContent string `json:"plan_content"`
		ModuleID    int64  `json:"module_id"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}
	if req.PlanContent == "" || req.ModuleID == 0 {
		fail(c, http.StatusBadRequest, "plan_content and module_id required.")
		return
	}

	var plan model.SavedStudyPlan
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var module model.DashboardModule
		if err := tx.Where("id = ? AND student_id = ?", req.ModuleID, me.ID).First(&module).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &requestError{status: http.StatusNotFound, msg: "Invalid module ID"}
			}
			return err
		}
		plan = model.SavedStudyPlan{StudentID: me.ID, PlanContent: req.PlanContent, Status: model.PlanSaved}
		if err := tx.Create(&plan).Error; err != nil {
			return err
		}
		return tx.Model(&module).Update("saved_study_plan_id", plan.ID).Error
	})
	if err != nil {
		writeRequestError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Saved to module", plan)
}

// Approve handles PUT /study-plans/approve/:plan_id/.
func (h *StudyPlanHandler) Approve(c *gin.Context) {
	me, found := currentStudent(c, h.db)
	if !found {
		return
	}
	id, valid := pathID(c, "plan_id", "Study plan not found.")
	if !valid {
		return
	}
	db := h.db.WithContext(c.Request.Context())
	var plan model.SavedStudyPlan
	if err := db.Where("id = ? AND student_id = ?", id, me.ID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Study plan not found.")
			return
		}
		internalError(c, err)
		return
	}
	plan.Status = model.PlanSaved
	if err := db.Save(&plan).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, "Study plan approved successfully.", plan)
}

// List handles GET /study-plans/.
func (h *StudyPlanHandler) List(c *gin.Context) {
	me, found := currentStudent(c, h.db)
	if !found {
		return
	}
	plans := []model.SavedStudyPlan{}
	if err := h.db.WithContext(c.Request.Context()).
		Where("student_id = ?", me.ID).Order("id").Find(&plans).Error; err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plans})
}
