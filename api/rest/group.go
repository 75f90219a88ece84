package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studymate/server/model"
	"gorm.io/gorm"
)

// GroupHandler handles study group endpoints and membership.
type GroupHandler struct {
	db *gorm.DB
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(db *gorm.DB) *GroupHandler {
	return &GroupHandler{db: db}
}

// groupView renders members as a list of student ids.
type groupView struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Members     []int64   `json:"members"`
	IsPrivate   bool      `json:"is_private"`
	CreatedAt   time.Time `json:"created_at"`
	MaxStudents uint      `json:"max_students"`
}

func newGroupView(g *model.Group) groupView {
	return groupView{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Members:     g.MemberIDs(),
		IsPrivate:   g.IsPrivate,
		CreatedAt:   g.CreatedAt,
		MaxStudents: g.MaxStudents,
	}
}

type createGroupRequest struct {
	StudentID   int64   `json:"student_id"`
	Name        string  `json:"name" binding:"required,max=50"`
	Description string  `json:"description" binding:"max=500"`
	MaxStudents uint    `json:"max_students" binding:"required,min=1"`
	IsPrivate   bool    `json:"is_private"`
	Members     []int64 `json:"members"`
}

type updateGroupRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=50"`
	Description *string  `json:"description" binding:"omitempty,max=500"`
	MaxStudents *uint    `json:"max_students" binding:"omitempty,min=1"`
	IsPrivate   *bool    `json:"is_private"`
	Members     *[]int64 `json:"members"`
}

type memberRequest struct {
	StudentID int64 `json:"student_id"`
}

// Create handles POST /create_group/. The creating student always ends up
// a member.
func (h *GroupHandler) Create(c *gin.Context) {
	var req createGroupRequest
	if !bindJSON(c, &req) {
		return
	}

	var g model.Group
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var creator model.Student
		if err := tx.First(&creator, req.StudentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errCreatorNotFound
			}
			return err
		}
		members, found, err := studentsExist(tx, append(req.Members, creator.ID))
		if err != nil {
			return err
		}
		if !found {
			return errMemberNotFound
		}
		if uint(len(members)) > req.MaxStudents {
			return errGroupFull
		}

		g = model.Group{
			Name:        req.Name,
			Description: req.Description,
			MaxStudents: req.MaxStudents,
			IsPrivate:   req.IsPrivate,
			Members:     members,
		}
		return tx.Omit("Members.*").Create(&g).Error
	})
	if err != nil {
		h.writeErr(c, err)
		return
	}
	ok(c, http.StatusCreated, "Group created successfully", newGroupView(&g))
}

// List handles GET /groups/.
func (h *GroupHandler) List(c *gin.Context) {
	var groups []model.Group
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Members").Order("id").Find(&groups).Error; err != nil {
		internalError(c, err)
		return
	}
	views := make([]groupView, len(groups))
	for i := range groups {
		views[i] = newGroupView(&groups[i])
	}
	ok(c, http.StatusOK, "All groups fetched successfully", views)
}

// Get handles GET /get_group_by_id/:group_id/.
func (h *GroupHandler) Get(c *gin.Context) {
	g, found := h.load(c)
	if !found {
		return
	}
	ok(c, http.StatusOK, "Group fetched successfully", newGroupView(g))
}

// Update handles PUT /update_group/:group_id/. Only supplied fields change.
func (h *GroupHandler) Update(c *gin.Context) {
	g, found := h.load(c)
	if !found {
		return
	}
	var req updateGroupRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if req.Name != nil {
			g.Name = *req.Name
		}
		if req.Description != nil {
			g.Description = *req.Description
		}
		if req.MaxStudents != nil {
			g.MaxStudents = *req.MaxStudents
		}
		if req.IsPrivate != nil {
			g.IsPrivate = *req.IsPrivate
		}

		members := g.Members
		if req.Members != nil {
			var found bool
			var err error
			members, found, err = studentsExist(tx, *req.Members)
			if err != nil {
				return err
			}
			if !found {
				return errMemberNotFound
			}
		}
		if uint(len(members)) > g.MaxStudents {
			return errGroupFull
		}

		if err := tx.Omit("Members").Save(g).Error; err != nil {
			return err
		}
		if req.Members != nil {
			if err := replaceAssociation(tx, g, "Members", members, len(members)); err != nil {
				return err
			}
			g.Members = members
		}
		return nil
	})
	if err != nil {
		h.writeErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Group updated successfully", newGroupView(g))
}

// Delete handles DELETE /delete_group/:group_id/.
func (h *GroupHandler) Delete(c *gin.Context) {
	g, found := h.load(c)
	if !found {
		return
	}
	db := h.db.WithContext(c.Request.Context())
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(g).Association("Members").Clear(); err != nil {
			return err
		}
		return tx.Delete(g).Error
	})
	if err != nil {
		internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddMember handles POST /add_member/:group_id/.
func (h *GroupHandler) AddMember(c *gin.Context) {
	g, found := h.load(c)
	if !found {
		return
	}
	student, found := h.memberFromBody(c)
	if !found {
		return
	}
	for _, id := range g.MemberIDs() {
		if id == student.ID {
			fail(c, http.StatusBadRequest, "Student is already a member of this group")
			return
		}
	}
	if uint(len(g.Members)) >= g.MaxStudents {
		fail(c, errGroupFull.status, errGroupFull.msg)
		return
	}
	if err := h.db.WithContext(c.Request.Context()).
		Model(g).Association("Members").Append(student); err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, "Member added successfully", gin.H{"group_id": g.ID, "student_id": student.ID})
}

// RemoveMember handles DELETE /remove_member/:group_id/ with the student id
// in the body.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	g, found := h.load(c)
	if !found {
		return
	}
	student, found := h.memberFromBody(c)
	if !found {
		return
	}
	member := false
	for _, id := range g.MemberIDs() {
		if id == student.ID {
			member = true
			break
		}
	}
	if !member {
		fail(c, http.StatusBadRequest, "Student is not a member of this group")
		return
	}
	if err := h.db.WithContext(c.Request.Context()).
		Model(g).Association("Members").Delete(student); err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, "Member removed successfully", gin.H{"group_id": g.ID, "student_id": student.ID})
}

// Members handles GET /group_members/:group_id/.
func (h *GroupHandler) Members(c *gin.Context) {
	g, found := h.load(c)
	if !found {
		return
	}
	members := g.Members
	if members == nil {
		members = []model.Student{}
	}
	ok(c, http.StatusOK, "Group members fetched successfully", members)
}

func (h *GroupHandler) memberFromBody(c *gin.Context) (*model.Student, bool) {
	var req memberRequest
	if !bindOptionalJSON(c, &req) {
		return nil, false
	}
	if req.StudentID == 0 {
		fail(c, http.StatusBadRequest, "student_id is required")
		return nil, false
	}
	var s model.Student
	if err := h.db.WithContext(c.Request.Context()).First(&s, req.StudentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Student not found")
			return nil, false
		}
		internalError(c, err)
		return nil, false
	}
	return &s, true
}

func (h *GroupHandler) load(c *gin.Context) (*model.Group, bool) {
	id, valid := pathID(c, "group_id", "Group not found")
	if !valid {
		return nil, false
	}
	var g model.Group
	err := h.db.WithContext(c.Request.Context()).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("students.id") }).
		First(&g, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Group not found")
			return nil, false
		}
		internalError(c, err)
		return nil, false
	}
	return &g, true
}

var (
	errCreatorNotFound = &requestError{status: http.StatusBadRequest, msg: "Student not found"}
	errMemberNotFound  = &requestError{status: http.StatusBadRequest, msg: "One or more members do not exist"}
	errGroupFull       = &requestError{status: http.StatusBadRequest, msg: "Group is full"}
)

func (h *GroupHandler) writeErr(c *gin.Context, err error) {
	if isUniqueViolation(err) {
		fail(c, http.StatusBadRequest, "group with this name already exists.")
		return
	}
	writeRequestError(c, err)
}
