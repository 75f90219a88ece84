package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Friendship statuses. A blocked row records the blocker as sender.
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipRejected = "rejected"
	FriendshipBlocked  = "blocked"
)

// FriendshipHistory actions.
const (
	HistorySentRequest     = "sent_request"
	HistoryAcceptedRequest = "accepted_request"
	HistoryRejectedRequest = "rejected_request"
	HistoryBlocked         = "blocked"
	HistoryUnblocked       = "unblocked"
)

// ErrSelfFriendship is returned when a row would relate a student to themselves.
var ErrSelfFriendship = errors.New("a student cannot have a relationship with themselves")

// Friendship is a directed relationship between two students. One row per
// ordered pair; the same row is reused for blocks.
type Friendship struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID   int64     `gorm:"uniqueIndex:idx_friendship_pair;not null" json:"sender_id"`
	Sender     *Student  `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	ReceiverID int64     `gorm:"uniqueIndex:idx_friendship_pair;index;not null" json:"receiver_id"`
	Receiver   *Student  `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"receiver,omitempty"`
	Status     string    `gorm:"size:20;not null;default:pending" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (f *Friendship) BeforeSave(_ *gorm.DB) error {
	if f.SenderID == f.ReceiverID {
		return ErrSelfFriendship
	}
	if f.Status == "" {
		f.Status = FriendshipPending
	}
	return nil
}

// HasParty reports whether studentID is the sender or the receiver.
func (f *Friendship) HasParty(studentID int64) bool {
	return f.SenderID == studentID || f.ReceiverID == studentID
}

// Other returns the party that is not studentID.
func (f *Friendship) Other(studentID int64) int64 {
	if f.SenderID == studentID {
		return f.ReceiverID
	}
	return f.SenderID
}

// FriendshipHistory is an append-only trail of friendship actions. StudentID
// owns the log entry; ActionStudentID is whoever triggered it.
type FriendshipHistory struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID       int64     `gorm:"index;not null" json:"student"`
	Student         *Student  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ActionStudentID int64     `gorm:"not null;default:0" json:"action_student"`
	Action          string    `gorm:"size:50;not null" json:"action"`
	Timestamp       time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

func (FriendshipHistory) TableName() string {
	return "friendship_history"
}
