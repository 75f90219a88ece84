package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studymate/server/cache"
	"github.com/studymate/server/config"
)

const (
	UserIDKey = "user_id"
	TokenKey  = "token"
)

// Auth validates the Bearer JWT token and checks the session cache. The
// session must exist and belong to the user named in the token.
func Auth(sec config.SecurityConfig, c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenStr, ok := bearerToken(ctx.GetHeader("Authorization"))
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := ParseToken(tokenStr, sec.JWTSecret)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		cacheCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		owner, err := c.Get(cacheCtx, cache.SessionKey(tokenStr))
		if err != nil || owner != strconv.FormatInt(claims.UserID, 10) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		ctx.Set(UserIDKey, claims.UserID)
		ctx.Set(TokenKey, tokenStr)
		ctx.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return tok, tok != ""
}

// GetUserID retrieves the authenticated user ID from the Gin context.
func GetUserID(c *gin.Context) int64 {
	return c.GetInt64(UserIDKey)
}

// GetToken returns the bearer token accepted by Auth.
func GetToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}
