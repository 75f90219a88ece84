package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studymate/server/social"
	"gorm.io/gorm"
)

// FriendshipHandler exposes the friendship lifecycle. Every route acts on
// behalf of the authenticated user's student profile.
type FriendshipHandler struct {
	db  *gorm.DB
	svc *social.Service
}

// NewFriendshipHandler creates a new FriendshipHandler.
func NewFriendshipHandler(db *gorm.DB, svc *social.Service) *FriendshipHandler {
	return &FriendshipHandler{db: db, svc: svc}
}

// Send handles POST /friendship/send/.
func (h *FriendshipHandler) Send(c *gin.Context) {
	me, found := currentStudent(c, h.db)
	if !found {
		return
	}
	var req struct {
		ReceiverID int64 `json:"receiver_id"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}
	if _, err := h.svc.SendRequest(c.Request.Context(), me.ID, req.ReceiverID); err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Friend request sent"})
}

// Respond handles POST /friendship/respond/:id/ with {"action": "accepted"|"rejected"}.
func (h *FriendshipHandler) Respond(c *gin.Context) {
	me, found := currentStudent(c, h.db)
	if !found {
		return
	}
	id, valid := pathID(c, "id", "Friendship not found")
	if !valid {
		return
	}
	var req struct {
		Action string `json:"action"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}
	if _, err := h.svc.RespondToRequest(c.Request.Context(), me.ID, id, req.Action); err != nil {
		domainError(c, err)
		return
	}
	msg := "Request accepted"
	if req.Action == social.ActionRejected {
		msg = "Request rejected"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// Block handles POST /friendship/block/:id/.
func (h *FriendshipHandler) Block(c *gin.Context) {
	me, found := currentStudent(c, h.db)
	if !found {
		return
	}
	id, valid := pathID(c, "id", "Friendship not found")
	if !valid {
		return
	}
	if _, err := h.svc.BlockFriend(c.Request.Context(), me.ID, id); err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Blocked user successfully"})
}

// Unblock handles POST /friendship/unblock/:id/.
func (h *FriendshipHandler) Unblock(c *gin.Context) {
	me, found := currentStudent(c, h.db)
	if !found {
		return
	}
	id, valid := pathID(c, "id", "Friendship not found or not blocked")
	if !valid {
		return
	}
	if err := h.svc.UnblockFriend(c.Request.Context(), me.ID, id); err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unblocked successfully"})
}

// List handles GET /friendship/. The body is a bare array.
func (h *FriendshipHandler) List(c *gin.Context) {
	me, found := currentStudent(c, h.db)
	if !found {
		return
	}
	views, err := h.svc.GetFriendships(c.Request.Context(), me.ID)
	if err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// Blocked handles GET /friendship/get_blocked/.
func (h *FriendshipHandler) Blocked(c *gin.Context) {
	me, found := currentStudent(c, h.db)
	if !found {
		return
	}
	users, err := h.svc.GetBlockedUsers(c.Request.Context(), me.ID)
	if err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Delete handles DELETE /friendship/delete/:id/.
func (h *FriendshipHandler) Delete(c *gin.Context) {
	me, found := currentStudent(c, h.db)
	if !found {
		return
	}
	id, valid := pathID(c, "id", "Not found")
	if !valid {
		return
	}
	if err := h.svc.DeleteFriendship(c.Request.Context(), me.ID, id); err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
}

// History handles GET /friendship/history/.
func (h *FriendshipHandler) History(c *gin.Context) {
	me, found := currentStudent(c, h.db)
	if !found {
		return
	}
	entries, err := h.svc.History(c.Request.Context(), me.ID)
	if err != nil {
		domainError(c, err)
		return
	}
	ok(c, http.StatusOK, "Friendship history fetched successfully", entries)
}
