package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func whitelistStatus(entries []string, remote string) int {
	r := gin.New()
	r.Use(IPWhitelist(entries))
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestIPWhitelist_Empty_AllowsAll(t *testing.T) {
	assert.Equal(t, http.StatusOK, whitelistStatus(nil, "1.2.3.4:1234"))
}

func TestIPWhitelist_SingleAddresses(t *testing.T) {
	allow := []string{"10.0.0.1", " 10.0.0.2 "}
	assert.Equal(t, http.StatusOK, whitelistStatus(allow, "10.0.0.1:5000"))
	assert.Equal(t, http.StatusOK, whitelistStatus(allow, "10.0.0.2:5000"))
	assert.Equal(t, http.StatusForbidden, whitelistStatus(allow, "10.0.0.3:5000"))
}

func TestIPWhitelist_CIDR(t *testing.T) {
	allow := []string{"10.1.0.0/16", "fd00::/8"}
	assert.Equal(t, http.StatusOK, whitelistStatus(allow, "10.1.200.7:80"))
	assert.Equal(t, http.StatusForbidden, whitelistStatus(allow, "10.2.0.1:80"))
	assert.Equal(t, http.StatusOK, whitelistStatus(allow, "[fd12::1]:80"))
	assert.Equal(t, http.StatusForbidden, whitelistStatus(allow, "[2001:db8::1]:80"))
}

func TestIPWhitelist_MalformedEntriesDenyAll(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, whitelistStatus([]string{"not-an-ip", "10.0.0.0/99"}, "10.0.0.1:80"))
}

func TestIPWhitelist_IPv4MappedClient(t *testing.T) {
	assert.Equal(t, http.StatusOK, whitelistStatus([]string{"127.0.0.1"}, "[::ffff:127.0.0.1]:80"))
}
