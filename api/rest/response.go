package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/studymate/server/ai"
	mw "github.com/studymate/server/middleware"
	"github.com/studymate/server/model"
	"github.com/studymate/server/social"
	"gorm.io/gorm"
)

// ok writes the {"message", "data"} envelope used by CRUD endpoints.
func ok(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// internalError records err for the request logger and hides it from the client.
func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	fail(c, http.StatusInternalServerError, "internal error")
}

// domainError maps social and ai errors to their HTTP status.
func domainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, social.ErrValidation), errors.Is(err, social.ErrConflict):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, social.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, social.ErrForbidden):
		fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ai.ErrUpstream):
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, err.Error())
	default:
		internalError(c, err)
	}
}

// requestError aborts a transaction with a client-facing status and message.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

// writeRequestError answers with a requestError's status, or 500 for
// anything else.
func writeRequestError(c *gin.Context, err error) {
	var re *requestError
	if errors.As(err, &re) {
		fail(c, re.status, re.msg)
		return
	}
	internalError(c, err)
}

// pathID parses a positive integer path parameter; it answers 404 itself
// when the value is malformed.
func pathID(c *gin.Context, name, notFoundMsg string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusNotFound, notFoundMsg)
		return 0, false
	}
	return id, true
}

// bindJSON binds the request body and answers 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints where an empty body is allowed.
func bindOptionalJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// currentStudent loads the Student linked to the authenticated user.
func currentStudent(c *gin.Context, db *gorm.DB) (*model.Student, bool) {
	var s model.Student
	err := db.WithContext(c.Request.Context()).
		Where("user_id = ?", mw.GetUserID(c)).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, "No student profile linked.")
		return nil, false
	}
	if err != nil {
		internalError(c, err)
		return nil, false
	}
	return &s, true
}

// studentsExist reports whether every id names a student.
func studentsExist(db *gorm.DB, ids []int64) ([]model.Student, bool, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, true, nil
	}
	var students []model.Student
	if err := db.Where("id IN ?", ids).Find(&students).Error; err != nil {
		return nil, false, err
	}
	return students, len(students) == len(ids), nil
}

// replaceAssociation sets a many2many association to values; an empty set
// clears it.
func replaceAssociation(tx *gorm.DB, owner interface{}, name string, values interface{}, n int) error {
	assoc := tx.Model(owner).Association(name)
	if n == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(values)
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// isUniqueViolation detects duplicate-key errors from common database drivers.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already exists")
}
