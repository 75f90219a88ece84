package model

import "time"

// Group is a study group with a membership cap.
type Group struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	MaxStudents uint      `gorm:"not null" json:"max_students"`
	IsPrivate   bool      `gorm:"not null;default:false" json:"is_private"`
	Members     []Student `gorm:"many2many:group_members;constraint:OnDelete:CASCADE" json:"-"`
}

// MemberIDs flattens the preloaded Members association.
func (g *Group) MemberIDs() []int64 {
	ids := make([]int64, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// Discussion is a message posted by a student inside a group.
type Discussion struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID  int64     `gorm:"index;not null" json:"author"`
	Author    *Student  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	GroupID   int64     `gorm:"index;not null" json:"group"`
	Group     *Group    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
}
