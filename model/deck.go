package model

import "time"

// Deck is a named collection of flashcards owned by a student.
type Deck struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	OwnerID     int64     `gorm:"index;not null" json:"owner"`
	Owner       *Student  `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Flashcard is one front/back card inside a deck.
type Flashcard struct {
	ID               int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	FrontText        string     `gorm:"type:text;not null" json:"front_text"`
	BackText         string     `gorm:"type:text;not null" json:"back_text"`
	DifficultyLevel  *string    `gorm:"size:50" json:"difficulty_level"`
	TimesReviewed    int        `gorm:"default:0" json:"times_reviewed"`
	LastReviewedDate *time.Time `json:"last_reviewed_date"`
	CreatedDate      time.Time  `gorm:"autoCreateTime" json:"created_date"`
	Category         *string    `gorm:"size:50" json:"category"`
	DeckID           int64      `gorm:"index;not null" json:"deck"`
	Deck             *Deck      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
