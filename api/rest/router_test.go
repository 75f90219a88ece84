package rest_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndex(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello from StudyMate!", decode(t, w)["message"])
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestNoRoute(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/no/such/route/", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not found", errorOf(t, w))
}

func TestMetricsDisabledByDefault(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
