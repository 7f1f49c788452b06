package note

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*mux.Router, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewHandler(NewRepository(db))
	r := mux.NewRouter()
	nr := r.PathPrefix("/api/notes").Subrouter()
	nr.HandleFunc("", h.List).Methods(http.MethodGet)
	nr.HandleFunc("", h.Create).Methods(http.MethodPost)
	nr.HandleFunc("/{id}", h.Get).Methods(http.MethodGet)
	nr.HandleFunc("/{id}", h.Update).Methods(http.MethodPatch)
	nr.HandleFunc("/{id}", h.Delete).Methods(http.MethodDelete)
	return r, mock
}

func doRequest(r *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateNoteRequiresNotebookID(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := doRequest(r, http.MethodPost, "/api/notes", `{"title":"orphan"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "notebookId is required")
}

func TestCreateNoteRejectsUnknownNotebook(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM notebooks WHERE id = $1)")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	rec := doRequest(r, http.MethodPost, "/api/notes", `{"notebookId":"ghost","title":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "notebookId does not exist")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNote(t *testing.T) {
	r, mock := newTestRouter(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM notebooks WHERE id = $1)")).
		WithArgs("nb1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("INSERT INTO notes").
		WithArgs(sqlmock.AnyArg(), "nb1", "groceries", []byte(`{"text":"milk"}`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	rec := doRequest(r, http.MethodPost, "/api/notes", `{"notebookId":"nb1","title":"groceries","content":{"text":"milk"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"notebookId":"nb1"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNoteNotFound(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery("SELECT " + noteColumns + " FROM notes WHERE id").
		WillReturnRows(sqlmock.NewRows(strings.Split(noteColumns, ", ")))

	rec := doRequest(r, http.MethodGet, "/api/notes/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteNoteNotFound(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectExec("DELETE FROM notes WHERE id").
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := doRequest(r, http.MethodDelete, "/api/notes/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
