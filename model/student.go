package model

import (
	"time"

	"gorm.io/gorm"
)

const unknownName = "Unknown"

// Student is a learner profile. Decks, friendships, chat logs and dashboard
// modules all hang off it.
type Student struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     *int64    `gorm:"uniqueIndex" json:"user"`
	User       *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"uniqueIndex;size:100;not null" json:"email"`
	CourseName string    `gorm:"size:100;not null" json:"course_name"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Student) BeforeCreate(_ *gorm.DB) error {
	if s.Name == "" {
		s.Name = unknownName
	}
	if s.CourseName == "" {
		s.CourseName = unknownName
	}
	return nil
}
