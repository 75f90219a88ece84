package rest_test

import (
	"net/http"
	"testing"

	"github.com/studymate/server/model"
	"github.com/studymate/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscussionCRUD(t *testing.T) {
	ts := newTestServer(t)
	alice := testutil.CreateStudent(t, ts.db, "alice")
	g := model.Group{Name: "Physics", MaxStudents: 10}
	require.NoError(t, ts.db.Create(&g).Error)

	w := ts.do(http.MethodPost, "/create_discussion/", map[string]interface{}{
		"author": alice.ID, "group": g.ID, "message": "Anyone up for a study session?",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	d := dataOf(t, w)
	id := int64(d["id"].(float64))
	assert.EqualValues(t, alice.ID, d["author"])
	assert.EqualValues(t, g.ID, d["group"])

	w = ts.do(http.MethodGet, idPath("/get_discussion_by_id/", id), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Discussion fetched successfully", decode(t, w)["message"])

	w = ts.do(http.MethodPut, idPath("/update_discussion/", id), map[string]interface{}{"message": "Edited"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	d = dataOf(t, w)
	assert.Equal(t, "Edited", d["message"])
	assert.EqualValues(t, alice.ID, d["author"])

	w = ts.do(http.MethodGet, "/discussions/", nil, "")
	assert.Len(t, listOf(t, w), 1)

	w = ts.do(http.MethodDelete, idPath("/delete_discussion/", id), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Discussion deleted successfully", decode(t, w)["message"])

	w = ts.do(http.MethodGet, idPath("/get_discussion_by_id/", id), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Discussion not found", errorOf(t, w))
}

func TestDiscussion_Validation(t *testing.T) {
	ts := newTestServer(t)
	alice := testutil.CreateStudent(t, ts.db, "alice")

	w := ts.do(http.MethodPost, "/create_discussion/", map[string]interface{}{"author": alice.ID, "message": "hi"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/create_discussion/", map[string]interface{}{
		"author": alice.ID, "group": 77, "message": "hi",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Group not found", errorOf(t, w))
}
