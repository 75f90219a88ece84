package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studymate/server/ai"
	"github.com/studymate/server/api/rest"
	"github.com/studymate/server/cache"
	"github.com/studymate/server/config"
	mw "github.com/studymate/server/middleware"
	"github.com/studymate/server/model"
	"github.com/studymate/server/social"
	"github.com/studymate/server/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret"

// stubGenerator answers every prompt with reply, or fails with err.
type stubGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

type testServer struct {
	r     *gin.Engine
	db    *gorm.DB
	cache cache.Cache
	sec   config.SecurityConfig
	gen   *stubGenerator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	logger := zap.NewNop()

	cfg := &config.Config{
		Security: config.SecurityConfig{JWTSecret: testSecret, JWTTTLH: time.Hour},
	}
	gen := &stubGenerator{reply: "generated text"}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r := rest.NewRouter(ctx, rest.Deps{
		Config: cfg,
		DB:     db,
		Cache:  c,
		Social: social.NewService(db, logger),
		AI:     ai.NewClient(gen, logger),
		Logger: logger,
	})
	return &testServer{r: r, db: db, cache: c, sec: cfg.Security, gen: gen}
}

// login opens a session for the student's user and returns its bearer token.
func (ts *testServer) login(t *testing.T, s *model.Student) string {
	t.Helper()
	require.NotNil(t, s.UserID)
	token, err := mw.GenerateToken(*s.UserID, ts.sec.JWTSecret, ts.sec.JWTTTLH)
	require.NoError(t, err)
	require.NoError(t, ts.cache.Set(context.Background(), cache.SessionKey(token),
		strconv.FormatInt(*s.UserID, 10), time.Hour))
	return token
}

// do sends a JSON request. A nil body sends no body at all.
func (ts *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var resp []interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// dataOf returns the "data" field of an envelope as a map.
func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	data, ok := decode(t, w)["data"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	return data
}

// listOf returns the "data" field of an envelope as a list.
func listOf(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	data, ok := decode(t, w)["data"].([]interface{})
	require.True(t, ok, w.Body.String())
	return data
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decode(t, w)["error"].(string)
	return msg
}

func idPath(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10) + "/"
}
