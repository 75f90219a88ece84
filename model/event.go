package model

import "time"

// Event is a calendar entry. RecurringRule, when set, is a 5-field cron
// expression.
type Event struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EventTitle       string    `gorm:"size:255;not null" json:"event_title"`
	EventDescription *string   `gorm:"type:text" json:"event_description"`
	StartDatetime    time.Time `gorm:"not null" json:"start_datetime"`
	EndDatetime      time.Time `gorm:"not null" json:"end_datetime"`
	RecurringRule    *string   `gorm:"size:255" json:"recurring_rule"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Participants     []Student `gorm:"many2many:event_participants;constraint:OnDelete:CASCADE" json:"-"`
	Groups           []Group   `gorm:"many2many:event_groups;constraint:OnDelete:CASCADE" json:"-"`
}

func (e *Event) ParticipantIDs() []int64 {
	ids := make([]int64, len(e.Participants))
	for i, p := range e.Participants {
		ids[i] = p.ID
	}
	return ids
}

func (e *Event) GroupIDs() []int64 {
	ids := make([]int64, len(e.Groups))
	for i, g := range e.Groups {
		ids[i] = g.ID
	}
	return ids
}
