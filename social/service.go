package social

import (
	"context"
	"errors"
	"time"

	"github.com/studymate/server/metrics"
	"github.com/studymate/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Respond actions.
const (
	ActionAccepted = "accepted"
	ActionRejected = "rejected"
)

// transitionDeleted labels explicit deletes in the transition metric; they
// have no history action of their own.
const transitionDeleted = "deleted"

// Party identifies one side of a friendship in listings.
type Party struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FriendshipView is one row of GetFriendships.
type FriendshipView struct {
	ID        int64     `json:"id"`
	Sender    Party     `json:"sender"`
	Receiver  Party     `json:"receiver"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BlockedUser is the other party of a blocked row.
type BlockedUser struct {
	FriendshipID int64  `json:"friendship_id"`
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
}

// Service implements the friendship lifecycle over a single Friendship row
// per pair. A block rewrites that row so the blocker becomes the sender.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new social Service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// SendRequest creates a pending request from sender to receiverID. A previous
// rejected row between the pair is replaced; a blocked row refuses the request.
func (s *Service) SendRequest(ctx context.Context, senderID, receiverID int64) (*model.Friendship, error) {
	if receiverID == 0 {
		return nil, validation("Receiver ID is required")
	}
	if senderID == receiverID {
		return nil, validation("Cannot send friend request to yourself")
	}

	var created model.Friendship
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var receiver model.Student
		if err := tx.First(&receiver, receiverID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Student not found")
			}
			return err
		}

		existing, err := findPair(tx, senderID, receiverID)
		if err != nil {
			return err
		}
		if existing != nil {
			switch existing.Status {
			case model.FriendshipBlocked:
				return forbidden("Student is blocked")
			case model.FriendshipRejected:
				if err := tx.Delete(existing).Error; err != nil {
					return err
				}
			default:
				return conflict("Friendship already exists")
			}
		}

		created = model.Friendship{
			SenderID:   senderID,
			ReceiverID: receiverID,
			Status:     model.FriendshipPending,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		return appendHistory(tx, receiverID, senderID, model.HistorySentRequest)
	})
	if err != nil {
		return nil, s.fail("send request", err)
	}
	metrics.RecordFriendship(model.HistorySentRequest)
	return &created, nil
}

// RespondToRequest lets the receiver accept or reject a request. Rejecting
// deletes the row.
func (s *Service) RespondToRequest(ctx context.Context, responderID, friendshipID int64, action string) (*model.Friendship, error) {
	if action != ActionAccepted && action != ActionRejected {
		return nil, validation("Invalid action")
	}

	var f model.Friendship
	historyAction := model.HistoryAcceptedRequest
	if action == ActionRejected {
		historyAction = model.HistoryRejectedRequest
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&f, friendshipID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Friendship not found")
			}
			return err
		}
		if f.ReceiverID != responderID {
			return forbidden("Only the receiver can respond")
		}

		if action == ActionRejected {
			if err := appendHistory(tx, responderID, f.SenderID, historyAction); err != nil {
				return err
			}
			return tx.Delete(&f).Error
		}

		f.Status = model.FriendshipAccepted
		if err := tx.Save(&f).Error; err != nil {
			return err
		}
		return appendHistory(tx, responderID, f.SenderID, historyAction)
	})
	if err != nil {
		return nil, s.fail("respond to request", err)
	}
	metrics.RecordFriendship(historyAction)
	return &f, nil
}

// BlockFriend turns the row into a block owned by blockerID. No history entry
// is written for blocks.
func (s *Service) BlockFriend(ctx context.Context, blockerID, friendshipID int64) (*model.Friendship, error) {
	db := s.db.WithContext(ctx)

	var f model.Friendship
	if err := db.First(&f, friendshipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Friendship not found")
		}
		return nil, s.fail("block", err)
	}
	if !f.HasParty(blockerID) {
		return nil, forbidden("Unauthorized")
	}

	blocked := f.Other(blockerID)
	f.SenderID = blockerID
	f.ReceiverID = blocked
	f.Status = model.FriendshipBlocked
	if err := db.Save(&f).Error; err != nil {
		return nil, s.fail("block", err)
	}
	metrics.RecordFriendship(model.HistoryBlocked)
	return &f, nil
}

// UnblockFriend removes a blocked row. Either party may lift the block.
func (s *Service) UnblockFriend(ctx context.Context, requesterID, friendshipID int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var f model.Friendship
		err := tx.Where("id = ? AND status = ?", friendshipID, model.FriendshipBlocked).First(&f).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Friendship not found or not blocked")
			}
			return err
		}
		if !f.HasParty(requesterID) {
			return forbidden("Unauthorized")
		}
		if err := tx.Delete(&f).Error; err != nil {
			return err
		}
		return appendHistory(tx, requesterID, requesterID, model.HistoryUnblocked)
	})
	if err != nil {
		return s.fail("unblock", err)
	}
	metrics.RecordFriendship(model.HistoryUnblocked)
	return nil
}

// GetFriendships lists every row the student is part of, blocked rows included.
func (s *Service) GetFriendships(ctx context.Context, studentID int64) ([]FriendshipView, error) {
	var rows []model.Friendship
	err := s.db.WithContext(ctx).
		Preload("Sender").Preload("Receiver").
		Where("sender_id = ? OR receiver_id = ?", studentID, studentID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, s.fail("list friendships", err)
	}

	out := make([]FriendshipView, 0, len(rows))
	for i := range rows {
		f := &rows[i]
		out = append(out, FriendshipView{
			ID:        f.ID,
			Sender:    party(f.SenderID, f.Sender),
			Receiver:  party(f.ReceiverID, f.Receiver),
			Status:    f.Status,
			CreatedAt: f.CreatedAt,
			UpdatedAt: f.UpdatedAt,
		})
	}
	return out, nil
}

// GetBlockedUsers lists the other party of every blocked row the student is
// part of, whichever side of the block they are on.
func (s *Service) GetBlockedUsers(ctx context.Context, studentID int64) ([]BlockedUser, error) {
	var rows []model.Friendship
	err := s.db.WithContext(ctx).
		Preload("Sender").Preload("Receiver").
		Where("(sender_id = ? OR receiver_id = ?) AND status = ?", studentID, studentID, model.FriendshipBlocked).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, s.fail("list blocked", err)
	}

	out := make([]BlockedUser, 0, len(rows))
	for i := range rows {
		f := &rows[i]
		other := f.Receiver
		if f.SenderID != studentID {
			other = f.Sender
		}
		if other == nil {
			continue
		}
		out = append(out, BlockedUser{
			FriendshipID: f.ID,
			ID:           other.ID,
			Name:         other.Name,
			Email:        other.Email,
		})
	}
	return out, nil
}

// DeleteFriendship removes the row whatever its status.
func (s *Service) DeleteFriendship(ctx context.Context, requesterID, friendshipID int64) error {
	db := s.db.WithContext(ctx)

	var f model.Friendship
	if err := db.First(&f, friendshipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Not found")
		}
		return s.fail("delete", err)
	}
	if !f.HasParty(requesterID) {
		return forbidden("Unauthorized")
	}
	if err := db.Delete(&f).Error; err != nil {
		return s.fail("delete", err)
	}
	metrics.RecordFriendship(transitionDeleted)
	return nil
}

// History returns the student's own history log, newest first.
func (s *Service) History(ctx context.Context, studentID int64) ([]model.FriendshipHistory, error) {
	var entries []model.FriendshipHistory
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("timestamp DESC").Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, s.fail("history", err)
	}
	return entries, nil
}

// findPair returns the row between a and b in either direction, or nil.
func findPair(tx *gorm.DB, a, b int64) (*model.Friendship, error) {
	var rows []model.Friendship
	err := tx.Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("id").Limit(1).Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func appendHistory(tx *gorm.DB, studentID, actingID int64, action string) error {
	return tx.Create(&model.FriendshipHistory{
		StudentID:       studentID,
		ActionStudentID: actingID,
		Action:          action,
	}).Error
}

func party(id int64, s *model.Student) Party {
	p := Party{ID: id}
	if s != nil {
		p.Name = s.Name
	}
	return p
}

// fail passes domain errors through and logs anything else as a store failure.
func (s *Service) fail(op string, err error) error {
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	s.logger.Error("friendship store error", zap.String("op", op), zap.Error(err))
	return err
}
