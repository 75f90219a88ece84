package rest_test

import (
	"net/http"
	"testing"

	"github.com/studymate/server/model"
	"github.com/studymate/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type friendFixture struct {
	ts         *testServer
	alice, bob *model.Student
	carol      *model.Student
	aTok, bTok string
	cTok       string
}

func newFriendFixture(t *testing.T) *friendFixture {
	ts := newTestServer(t)
	f := &friendFixture{ts: ts}
	f.alice = testutil.CreateStudent(t, ts.db, "alice")
	f.bob = testutil.CreateStudent(t, ts.db, "bob")
	f.carol = testutil.CreateStudent(t, ts.db, "carol")
	f.aTok = ts.login(t, f.alice)
	f.bTok = ts.login(t, f.bob)
	f.cTok = ts.login(t, f.carol)
	return f
}

// send posts a request from tok to receiver and returns the new row id.
func (f *friendFixture) send(t *testing.T, tok string, receiver int64) int64 {
	t.Helper()
	w := f.ts.do(http.MethodPost, "/friendship/send/", map[string]interface{}{"receiver_id": receiver}, tok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Friend request sent", decode(t, w)["message"])

	var row model.Friendship
	require.NoError(t, f.ts.db.Order("id DESC").First(&row).Error)
	return row.ID
}

func TestFriendshipHTTP_RequiresAuth(t *testing.T) {
	f := newFriendFixture(t)
	w := f.ts.do(http.MethodGet, "/friendship/", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFriendshipHTTP_SendErrors(t *testing.T) {
	f := newFriendFixture(t)

	w := f.ts.do(http.MethodPost, "/friendship/send/", map[string]interface{}{}, f.aTok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Receiver ID is required", errorOf(t, w))

	w = f.ts.do(http.MethodPost, "/friendship/send/", map[string]interface{}{"receiver_id": f.alice.ID}, f.aTok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot send friend request to yourself", errorOf(t, w))

	w = f.ts.do(http.MethodPost, "/friendship/send/", map[string]interface{}{"receiver_id": 9999}, f.aTok)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Student not found", errorOf(t, w))

	f.send(t, f.aTok, f.bob.ID)
	w = f.ts.do(http.MethodPost, "/friendship/send/", map[string]interface{}{"receiver_id": f.alice.ID}, f.bTok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Friendship already exists", errorOf(t, w))
}

func TestFriendshipHTTP_RespondAccept(t *testing.T) {
	f := newFriendFixture(t)
	id := f.send(t, f.aTok, f.bob.ID)

	// Only the receiver may respond.
	w := f.ts.do(http.MethodPost, idPath("/friendship/respond/", id), map[string]string{"action": "accepted"}, f.aTok)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Only the receiver can respond", errorOf(t, w))

	w = f.ts.do(http.MethodPost, idPath("/friendship/respond/", id), map[string]string{"action": "maybe"}, f.bTok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid action", errorOf(t, w))

	w = f.ts.do(http.MethodPost, "/friendship/respond/9999/", map[string]string{"action": "accepted"}, f.bTok)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.ts.do(http.MethodPost, idPath("/friendship/respond/", id), map[string]string{"action": "accepted"}, f.bTok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Request accepted", decode(t, w)["message"])

	w = f.ts.do(http.MethodGet, "/friendship/", nil, f.aTok)
	require.Equal(t, http.StatusOK, w.Code)
	rows := decodeList(t, w)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]interface{})
	assert.Equal(t, "accepted", row["status"])
	assert.Equal(t, "alice", row["sender"].(map[string]interface{})["name"])
	assert.Equal(t, "bob", row["receiver"].(map[string]interface{})["name"])
}

func TestFriendshipHTTP_RespondReject(t *testing.T) {
	f := newFriendFixture(t)
	id := f.send(t, f.aTok, f.bob.ID)

	w := f.ts.do(http.MethodPost, idPath("/friendship/respond/", id), map[string]string{"action": "rejected"}, f.bTok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Request rejected", decode(t, w)["message"])

	w = f.ts.do(http.MethodGet, "/friendship/", nil, f.aTok)
	assert.Empty(t, decodeList(t, w))

	w = f.ts.do(http.MethodGet, "/friendship/history/", nil, f.bTok)
	require.Equal(t, http.StatusOK, w.Code)
	entries := listOf(t, w)
	require.Len(t, entries, 2)
	assert.Equal(t, "rejected_request", entries[0].(map[string]interface{})["action"])
	assert.Equal(t, "sent_request", entries[1].(map[string]interface{})["action"])
}

func TestFriendshipHTTP_BlockAndUnblock(t *testing.T) {
	f := newFriendFixture(t)
	id := f.send(t, f.aTok, f.bob.ID)

	w := f.ts.do(http.MethodPost, idPath("/friendship/block/", id), nil, f.cTok)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.ts.do(http.MethodPost, "/friendship/block/9999/", nil, f.bTok)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Friendship not found", errorOf(t, w))

	w = f.ts.do(http.MethodPost, idPath("/friendship/block/", id), nil, f.bTok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Blocked user successfully", decode(t, w)["message"])

	// Either side sees the other in the blocked list.
	w = f.ts.do(http.MethodGet, "/friendship/get_blocked/", nil, f.bTok)
	require.Equal(t, http.StatusOK, w.Code)
	blocked := decodeList(t, w)
	require.Len(t, blocked, 1)
	assert.EqualValues(t, f.alice.ID, blocked[0].(map[string]interface{})["id"])
	assert.EqualValues(t, id, blocked[0].(map[string]interface{})["friendship_id"])

	w = f.ts.do(http.MethodPost, "/friendship/send/", map[string]interface{}{"receiver_id": f.bob.ID}, f.aTok)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Student is blocked", errorOf(t, w))

	w = f.ts.do(http.MethodPost, idPath("/friendship/unblock/", id), nil, f.cTok)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.ts.do(http.MethodPost, idPath("/friendship/unblock/", id), nil, f.aTok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Unblocked successfully", decode(t, w)["message"])

	w = f.ts.do(http.MethodPost, idPath("/friendship/unblock/", id), nil, f.aTok)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Friendship not found or not blocked", errorOf(t, w))

	w = f.ts.do(http.MethodGet, "/friendship/get_blocked/", nil, f.bTok)
	assert.Empty(t, decodeList(t, w))
}

func TestFriendshipHTTP_Delete(t *testing.T) {
	f := newFriendFixture(t)
	id := f.send(t, f.aTok, f.bob.ID)

	w := f.ts.do(http.MethodDelete, idPath("/friendship/delete/", id), nil, f.cTok)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Unauthorized", errorOf(t, w))

	w = f.ts.do(http.MethodDelete, idPath("/friendship/delete/", id), nil, f.bTok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Deleted successfully", decode(t, w)["message"])

	w = f.ts.do(http.MethodDelete, idPath("/friendship/delete/", id), nil, f.bTok)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", errorOf(t, w))
}

func TestFriendshipHTTP_NoStudentProfile(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodPost, "/register/", map[string]string{"username": "nostudent", "password": "pass1234"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	token := decode(t, w)["token"].(string)

	w = ts.do(http.MethodGet, "/friendship/", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No student profile linked.", errorOf(t, w))
}
