package rest_test

import (
	"net/http"
	"testing"

	"github.com/studymate/server/model"
	"github.com/studymate/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createDeck(t *testing.T, ts *testServer, name string, owner int64) int64 {
	t.Helper()
	w := ts.do(http.MethodPost, "/decks/create/", map[string]interface{}{
		"name": name, "description": "d", "owner": owner,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return int64(dataOf(t, w)["id"].(float64))
}

func TestDeckCRUD(t *testing.T) {
	ts := newTestServer(t)
	alice := testutil.CreateStudent(t, ts.db, "alice")
	bob := testutil.CreateStudent(t, ts.db, "bob")

	id := createDeck(t, ts, "Biology", alice.ID)
	createDeck(t, ts, "Chemistry", bob.ID)

	w := ts.do(http.MethodGet, "/decks/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "All decks fetched successfully", decode(t, w)["message"])
	assert.Len(t, listOf(t, w), 2)

	w = ts.do(http.MethodGet, idPath("/decks/student/", alice.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, listOf(t, w), 1)

	w = ts.do(http.MethodPut, idPath("/decks/update/", id), map[string]interface{}{
		"name": "Biology II", "owner": alice.ID,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Biology II", dataOf(t, w)["name"])

	w = ts.do(http.MethodDelete, idPath("/decks/delete/", id), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Deck deleted successfully", decode(t, w)["message"])

	w = ts.do(http.MethodDelete, idPath("/decks/delete/", id), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Deck not found", errorOf(t, w))
}

func TestDeck_UniqueNameAndOwner(t *testing.T) {
	ts := newTestServer(t)
	alice := testutil.CreateStudent(t, ts.db, "alice")
	createDeck(t, ts, "Physics", alice.ID)

	w := ts.do(http.MethodPost, "/decks/create/", map[string]interface{}{"name": "Physics", "owner": alice.ID}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/decks/create/", map[string]interface{}{"name": "Other", "owner": 999}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFlashcardCRUD(t *testing.T) {
	ts := newTestServer(t)
	alice := testutil.CreateStudent(t, ts.db, "alice")
	deckID := createDeck(t, ts, "Spanish", alice.ID)

	w := ts.do(http.MethodPost, "/flashcards/create/", map[string]interface{}{
		"front_text": "hola", "back_text": "hello", "deck": deckID,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	card := dataOf(t, w)
	cardID := int64(card["id"].(float64))
	assert.EqualValues(t, 0, card["times_reviewed"])

	w = ts.do(http.MethodGet, idPath("/flashcards/deck/", deckID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, listOf(t, w), 1)

	w = ts.do(http.MethodPut, idPath("/flashcards/update/", cardID), map[string]interface{}{
		"front_text": "adiós", "back_text": "goodbye", "deck": deckID, "times_reviewed": 3,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 3, dataOf(t, w)["times_reviewed"])

	w = ts.do(http.MethodDelete, idPath("/flashcards/delete/", cardID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, "/flashcards/", nil, "")
	assert.Empty(t, listOf(t, w))
}

func TestFlashcard_UnknownDeck(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodPost, "/flashcards/create/", map[string]interface{}{
		"front_text": "q", "back_text": "a", "deck": 42,
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteDeck_RemovesFlashcards(t *testing.T) {
	ts := newTestServer(t)
	alice := testutil.CreateStudent(t, ts.db, "alice")
	deckID := createDeck(t, ts, "History", alice.ID)
	require.NoError(t, ts.db.Create(&model.Flashcard{FrontText: "q", BackText: "a", DeckID: deckID}).Error)

	require.Equal(t, http.StatusOK, ts.do(http.MethodDelete, idPath("/decks/delete/", deckID), nil, "").Code)

	var n int64
	require.NoError(t, ts.db.Model(&model.Flashcard{}).Count(&n).Error)
	assert.Zero(t, n)
}
