package rest

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studymate/server/model"
	"gorm.io/gorm"
)

// FlashcardHandler handles flashcard endpoints.
type FlashcardHandler struct {
	db *gorm.DB
}

// NewFlashcardHandler creates a new FlashcardHandler.
func NewFlashcardHandler(db *gorm.DB) *FlashcardHandler {
	return &FlashcardHandler{db: db}
}

type flashcardRequest struct {
	FrontText        string     `json:"front_text" binding:"required"`
	BackText         string     `json:"back_text" binding:"required,max=1000"`
	DifficultyLevel  *string    `json:"difficulty_level" binding:"omitempty,max=50"`
	TimesReviewed    int        `json:"times_reviewed" binding:"min=0"`
	LastReviewedDate *time.Time `json:"last_reviewed_date"`
	Category         *string    `json:"category" binding:"omitempty,max=50"`
	Deck             int64      `json:"deck" binding:"required"`
}

func (r *flashcardRequest) apply(f *model.Flashcard) {
	f.FrontText = r.FrontText
	f.BackText = r.BackText
	f.DifficultyLevel = r.DifficultyLevel
	f.TimesReviewed = r.TimesReviewed
	f.LastReviewedDate = r.LastReviewedDate
	f.Category = r.Category
	f.DeckID = r.Deck
}

// List handles GET /flashcards/.
func (h *FlashcardHandler) List(c *gin.Context) {
	var cards []model.Flashcard
	if err := h.db.WithContext(c.Request.Context()).Order("id").Find(&cards).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, "All flashcards fetched successfully", cards)
}

// ListByDeck handles GET /flashcards/deck/:deck_id/.
func (h *FlashcardHandler) ListByDeck(c *gin.Context) {
	deckID, valid := pathID(c, "deck_id", "Deck not found")
	if !valid {
		return
	}
	var cards []model.Flashcard
	if err := h.db.WithContext(c.Request.Context()).
		Where("deck_id = ?", deckID).Order("id").Find(&cards).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, fmt.Sprintf("Flashcards for deck %d fetched successfully", deckID), cards)
}

// Create handles POST /flashcards/create/.
func (h *FlashcardHandler) Create(c *gin.Context) {
	var req flashcardRequest
	if !bindJSON(c, &req) {
		return
	}
	var f model.Flashcard
	req.apply(&f)
	if !h.deckExists(c, f.DeckID) {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&f).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Flashcard created successfully", f)
}

// Update handles PUT /flashcards/update/:id/.
func (h *FlashcardHandler) Update(c *gin.Context) {
	f, found := h.load(c)
	if !found {
		return
	}
	var req flashcardRequest
	if !bindJSON(c, &req) {
		return
	}
	req.apply(f)
	if !h.deckExists(c, f.DeckID) {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Save(f).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, "Flashcard updated successfully", f)
}

// Delete handles DELETE /flashcards/delete/:id/.
func (h *FlashcardHandler) Delete(c *gin.Context) {
	f, found := h.load(c)
	if !found {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(f).Error; err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, "Flashcard deleted successfully", nil)
}

func (h *FlashcardHandler) deckExists(c *gin.Context, deckID int64) bool {
	var n int64
	if err := h.db.WithContext(c.Request.Context()).
		Model(&model.Deck{}).Where("id = ?", deckID).Count(&n).Error; err != nil {
		internalError(c, err)
		return false
	}
	if n == 0 {
		fail(c, http.StatusBadRequest, "Deck not found")
		return false
	}
	return true
}

func (h *FlashcardHandler) load(c *gin.Context) (*model.Flashcard, bool) {
	id, valid := pathID(c, "id", "Flashcard not found")
	if !valid {
		return nil, false
	}
	var f model.Flashcard
	if err := h.db.WithContext(c.Request.Context()).First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Flashcard not found")
			return nil, false
		}
		internalError(c, err)
		return nil, false
	}
	return &f, true
}
