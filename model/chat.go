package model

import "time"

// Study chat categories.
const (
	StudyCategoryFocusMode       = "FOCUS_MODE"
	StudyCategoryStudyPlans      = "STUDY_PLANS"
	StudyCategoryStudyTechniques = "STUDY_TECHNIQUES"
	StudyCategoryGeneral         = "GENERAL"
)

// ValidStudyCategory reports whether c is one of the study chat categories.
func ValidStudyCategory(c string) bool {
	switch c {
	case StudyCategoryFocusMode, StudyCategoryStudyPlans, StudyCategoryStudyTechniques, StudyCategoryGeneral:
		return true
	}
	return false
}

// StudyChatbox stores one user message / bot response exchange.
type StudyChatbox struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID   *int64    `gorm:"index" json:"student"`
	Student     *Student  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserMessage string    `gorm:"type:text" json:"user_message"`
	BotResponse string    `gorm:"type:text" json:"bot_response"`
	Category    string    `gorm:"size:50;not null" json:"category"`
	Timestamp   time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

func (StudyChatbox) TableName() string {
	return "study_chatbox"
}

// WellnessChat is one line of a wellness conversation, from the student or
// the bot.
type WellnessChat struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID *int64    `gorm:"index" json:"student"`
	Student   *Student  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
	IsBot     bool      `gorm:"not null;default:false" json:"is_bot"`
}
