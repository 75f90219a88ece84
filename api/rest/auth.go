package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studymate/server/cache"
	"github.com/studymate/server/config"
	mw "github.com/studymate/server/middleware"
	"github.com/studymate/server/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	passwordCost      = 12
	minPasswordLength = 8
)

const shortPasswordMsg = "Password must be at least 8 characters long."

// AuthHandler handles account REST endpoints.
type AuthHandler struct {
	db    *gorm.DB
	cache cache.Cache
	sec   config.SecurityConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, c cache.Cache, sec config.SecurityConfig) *AuthHandler {
	return &AuthHandler{db: db, cache: c, sec: sec}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required,min=2,max=150"`
	Password string `json:"password" binding:"required,max=72"`
}

// Register handles POST /register/.
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.Password) < minPasswordLength {
		fail(c, http.StatusBadRequest, shortPasswordMsg)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
	if err != nil {
		internalError(c, err)
		return
	}
	user := model.User{Username: req.Username, PasswordHash: string(hash)}
	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			fail(c, http.StatusBadRequest, "A user with that username already exists.")
			return
		}
		internalError(c, err)
		return
	}

	token, err := h.startSession(c.Request.Context(), user.ID)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user_id": user.ID,
	})
}

// Login handles POST /login/.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	var user model.User
	err := h.db.WithContext(c.Request.Context()).Where("username = ?", req.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusBadRequest, "Invalid credentials")
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		fail(c, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := h.startSession(c.Request.Context(), user.ID)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user_id": user.ID,
	})
}

// Logout handles POST /logout/. It drops the session of the bearer token if
// one is presented and always succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	if tok := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")); tok != "" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		_ = h.cache.Del(ctx, cache.SessionKey(tok))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

type resetPasswordRequest struct {
	Username    string `json:"username" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,max=72"`
}

// ResetPassword handles POST /reset-password/.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		fail(c, http.StatusBadRequest, shortPasswordMsg)
		return
	}

	db := h.db.WithContext(c.Request.Context())
	var user model.User
	err := db.Where("username = ?", req.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), passwordCost)
	if err != nil {
		internalError(c, err)
		return
	}
	if err := db.Model(&user).Update("password_hash", string(hash)).Error; err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

// startSession issues a JWT and records it in the session cache.
func (h *AuthHandler) startSession(ctx context.Context, userID int64) (string, error) {
	token, err := mw.GenerateToken(userID, h.sec.JWTSecret, h.sec.JWTTTLH)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.cache.Set(ctx, cache.SessionKey(token), strconv.FormatInt(userID, 10), h.sec.JWTTTLH); err != nil {
		return "", err
	}
	return token, nil
}
