package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studymate/server/ai"
	apirest "github.com/studymate/server/api/rest"
	"github.com/studymate/server/audit"
	"github.com/studymate/server/cache"
	"github.com/studymate/server/config"
	"github.com/studymate/server/social"
	"github.com/studymate/server/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TestServer wraps a real HTTP server with every StudyMate component wired
// together.
type TestServer struct {
	DB     *gorm.DB
	Cache  cache.Cache
	Audit  *audit.Service
	Gen    *ScriptedGenerator
	Server *httptest.Server
	URL    string // http://127.0.0.1:<port>
}

// ScriptedGenerator is a text generator that echoes a fixed reply.
type ScriptedGenerator struct {
	Reply string
	Err   error
	calls atomic.Int64
}

func (g *ScriptedGenerator) Generate(context.Context, string) (string, error) {
	g.calls.Add(1)
	return g.Reply, g.Err
}

// Calls reports how many prompts the generator has served.
func (g *ScriptedGenerator) Calls() int64 { return g.calls.Load() }

// NewTestServer creates a fully wired server for integration testing.
// It mirrors the dependency wiring in main.go.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// ---- Infrastructure ----
	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	logger := zap.NewNop()

	cfg := &config.Config{
		Security: config.SecurityConfig{
			JWTSecret:      "integration-test-secret",
			JWTTTLH:        72 * time.Hour,
			RateLimitRPS:   1000,
			RateLimitBurst: 2000,
		},
		Metrics: config.MetricsConfig{Enabled: true, AllowedIPs: []string{"127.0.0.1"}},
	}

	// ---- Services ----
	auditSvc := audit.New(db, logger)
	gen := &ScriptedGenerator{Reply: "Study Plan:\n- Time Blocks: 09:00-10:00"}

	ctx, cancel := context.WithCancel(context.Background())
	r := apirest.NewRouter(ctx, apirest.Deps{
		Config:  cfg,
		DB:      db,
		Cache:   c,
		Social:  social.NewService(db, logger),
		AI:      ai.NewClient(gen, logger),
		Auditor: auditSvc,
		Logger:  logger,
	})

	// ---- Start server ----
	server := httptest.NewServer(r)
	ts := &TestServer{
		DB:     db,
		Cache:  c,
		Audit:  auditSvc,
		Gen:    gen,
		Server: server,
		URL:    server.URL,
	}
	t.Cleanup(func() {
		server.Close()
		cancel()
		stopCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		auditSvc.Stop(stopCtx)
	})
	return ts
}

// --- HTTP helpers ---

func (ts *TestServer) do(t *testing.T, method, path string, body interface{}, token string) *http.Response {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		bodyReader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, bodyReader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// PostJSON sends a POST request with JSON body and optional Bearer token.
func (ts *TestServer) PostJSON(t *testing.T, path string, body interface{}, token string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodPost, path, body, token)
}

// Get sends a GET request with optional Bearer token.
func (ts *TestServer) Get(t *testing.T, path string, token string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodGet, path, nil, token)
}

// Delete sends a DELETE request with JSON body and optional Bearer token.
func (ts *TestServer) Delete(t *testing.T, path string, body interface{}, token string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodDelete, path, body, token)
}

// Put sends a PUT request with JSON body and optional Bearer token.
func (ts *TestServer) Put(t *testing.T, path string, body interface{}, token string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodPut, path, body, token)
}

// ReadJSON reads and decodes a JSON response body into the given target.
func ReadJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target), "body: %s", string(data))
}

// --- Account helpers ---

// Register creates an account and returns its session token.
func (ts *TestServer) Register(t *testing.T, username, password string) string {
	t.Helper()
	resp := ts.PostJSON(t, "/register/", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var result map[string]interface{}
	ReadJSON(t, resp, &result)
	return result["token"].(string)
}

// Login returns a fresh session token for an existing account.
func (ts *TestServer) Login(t *testing.T, username, password string) string {
	t.Helper()
	resp := ts.PostJSON(t, "/login/", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result map[string]interface{}
	ReadJSON(t, resp, &result)
	return result["token"].(string)
}

// Student is a registered account with a student profile.
type Student struct {
	ID    int64
	Name  string
	Token string
}

// NewStudent registers an account, creates its student profile and returns
// both.
func (ts *TestServer) NewStudent(t *testing.T, prefix string) Student {
	t.Helper()
	name := UniqueID(prefix)
	token := ts.Register(t, name, "password123")

	resp := ts.PostJSON(t, "/create_student/", map[string]string{
		"name":        name,
		"email":       name + "@example.com",
		"course_name": "Computer Science",
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var result struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	ReadJSON(t, resp, &result)
	return Student{ID: result.Data.ID, Name: name, Token: token}
}

var testCounter uint64

// UniqueID generates a unique string for test isolation.
func UniqueID(prefix string) string {
	n := atomic.AddUint64(&testCounter, 1)
	return fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixNano()%100000, n)
}
