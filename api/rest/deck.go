package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studymate/server/model"
	"gorm.io/gorm"
)

// DeckHandler handles flashcard deck endpoints.
type DeckHandler struct {
	db *gorm.DB
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(db *gorm.DB) *DeckHandler {
	return &DeckHandler{db: db}
}

type deckRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	Description string `json:"description" binding:"max=500"`
	Owner       int64  `json:"owner" binding:"required"`
}

// List handles GET /decks/.
func (h *DeckHandler) List(c *gin.Context) {
	var decks []model.Deck
	if err := h.db.WithContext(c.Request.Context()).Order("id").Find(&decks).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, "All decks fetched successfully", decks)
}

// ListByStudent handles GET /decks/student/:student_id/.
func (h *DeckHandler) ListByStudent(c *gin.Context) {
	studentID, valid := pathID(c, "student_id", "Student not found")
	if !valid {
		return
	}
	var decks []model.Deck
	if err := h.db.WithContext(c.Request.Context()).
		Where("owner_id = ?", studentID).Order("id").Find(&decks).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, fmt.Sprintf("Decks for student %d fetched successfully", studentID), decks)
}

// Create handles POST /decks/create/.
func (h *DeckHandler) Create(c *gin.Context) {
	var req deckRequest
	if !bindJSON(c, &req) {
		return
	}
	d := model.Deck{Name: req.Name, Description: req.Description, OwnerID: req.Owner}
	if !h.save(c, &d, true) {
		return
	}
	ok(c, http.StatusCreated, "Deck created successfully", d)
}

// Update handles PUT /decks/update/:id/.
func (h *DeckHandler) Update(c *gin.Context) {
	d, found := h.load(c)
	if !found {
		return
	}
	var req deckRequest
	if !bindJSON(c, &req) {
		return
	}
	d.Name, d.Description, d.OwnerID = req.Name, req.Description, req.Owner
	if !h.save(c, d, false) {
		return
	}
	ok(c, http.StatusOK, "Deck updated successfully", d)
}

// Delete handles DELETE /decks/delete/:id/. Its flashcards go with it.
func (h *DeckHandler) Delete(c *gin.Context) {
	d, found := h.load(c)
	if !found {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(d).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, "Deck deleted successfully", nil)
}

func (h *DeckHandler) save(c *gin.Context, d *model.Deck, create bool) bool {
	db := h.db.WithContext(c.Request.Context())
	var owners int64
	if err := db.Model(&model.Student{}).Where("id = ?", d.OwnerID).Count(&owners).Error; err != nil {
		internalError(c, err)
		return false
	}
	if owners == 0 {
		fail(c, http.StatusBadRequest, "Student not found")
		return false
	}

	var err error
	if create {
		err = db.Create(d).Error
	} else {
		err = db.Save(d).Error
	}
	if err != nil {
		if isUniqueViolation(err) {
			fail(c, http.StatusBadRequest, "deck with this name already exists.")
			return false
		}
		internalError(c, err)
		return false
	}
	return true
}

func (h *DeckHandler) load(c *gin.Context) (*model.Deck, bool) {
	id, valid := pathID(c, "id", "Deck not found")
	if !valid {
		return nil, false
	}
	var d model.Deck
	if err := h.db.WithContext(c.Request.Context()).First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Deck not found")
			return nil, false
		}
		internalError(c, err)
		return nil, false
	}
	return &d, true
}
