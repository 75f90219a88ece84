package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studymate/server/model"
	"gorm.io/gorm"
)

// DiscussionHandler handles group discussion endpoints.
type DiscussionHandler struct {
	db *gorm.DB
}

// NewDiscussionHandler creates a new DiscussionHandler.
func NewDiscussionHandler(db *gorm.DB) *DiscussionHandler {
	return &DiscussionHandler{db: db}
}

type discussionRequest struct {
	Author  *int64  `json:"author"`
	Group   *int64  `json:"group"`
	Message *string `json:"message" binding:"omitempty,min=1"`
}

// List handles GET /discussions/.
func (h *DiscussionHandler) List(c *gin.Context) {
	var discussions []model.Discussion
	if err := h.db.WithContext(c.Request.Context()).Order("id").Find(&discussions).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, "All discussions fetched successfully", discussions)
}

// Get handles GET /get_discussion_by_id/:id/.
func (h *DiscussionHandler) Get(c *gin.Context) {
	d, found := h.load(c)
	if !found {
		return
	}
	ok(c, http.StatusOK, "Discussion fetched successfully", d)
}

// Create handles POST /create_discussion/.
func (h *DiscussionHandler) Create(c *gin.Context) {
	var req discussionRequest
	if !bindJSON(c, &req) {
		return
	}
	switch {
	case req.Author == nil:
		fail(c, http.StatusBadRequest, "author is required")
		return
	case req.Group == nil:
		fail(c, http.StatusBadRequest, "group is required")
		return
	case req.Message == nil:
		fail(c, http.StatusBadRequest, "message is required")
		return
	}
	d := model.Discussion{AuthorID: *req.Author, GroupID: *req.Group, Message: *req.Message}
	if !h.save(c, &d, true) {
		return
	}
	ok(c, http.StatusCreated, "Discussion created successfully", d)
}

// Update handles PUT /update_discussion/:id/. Only supplied fields change.
func (h *DiscussionHandler) Update(c *gin.Context) {
	d, found := h.load(c)
	if !found {
		return
	}
	var req discussionRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Author != nil {
		d.AuthorID = *req.Author
	}
	if req.Group != nil {
		d.GroupID = *req.Group
	}
	if req.Message != nil {
		d.Message = *req.Message
	}
	if !h.save(c, d, false) {
		return
	}
	ok(c, http.StatusOK, "Discussion updated successfully", d)
}

// Delete handles DELETE /delete_discussion/:id/.
func (h *DiscussionHandler) Delete(c *gin.Context) {
	d, found := h.load(c)
	if !found {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(d).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, "Discussion deleted successfully", nil)
}

func (h *DiscussionHandler) save(c *gin.Context, d *model.Discussion, create bool) bool {
	db := h.db.WithContext(c.Request.Context())

	var n int64
	if err := db.Model(&model.Student{}).Where("id = ?", d.AuthorID).Count(&n).Error; err != nil {
		internalError(c, err)
		return false
	}
	if n == 0 {
		fail(c, http.StatusBadRequest, "Student not found")
		return false
	}
	if err := db.Model(&model.Group{}).Where("id = ?", d.GroupID).Count(&n).Error; err != nil {
		internalError(c, err)
		return false
	}
	if n == 0 {
		fail(c, http.StatusBadRequest, "Group not found")
		return false
	}

	var err error
	if create {
		err = db.Create(d).Error
	} else {
		err = db.Save(d).Error
	}
	if err != nil {
		internalError(c, err)
		return false
	}
	return true
}

func (h *DiscussionHandler) load(c *gin.Context) (*model.Discussion, bool) {
	id, valid := pathID(c, "id", "Discussion not found")
	if !valid {
		return nil, false
	}
	var d model.Discussion
	if err := h.db.WithContext(c.Request.Context()).First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Discussion not found")
			return nil, false
		}
		internalError(c, err)
		return nil, false
	}
	return &d, true
}
