package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mjfernandes/outlay/internal/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// sqlite version of the schema; queries use $1 placeholders, which
// sqlite binds positionally just like Postgres does.
const testSchema = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	last_updated DATETIME NOT NULL
);
CREATE TABLE expenses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	amount REAL NOT NULL,
	description TEXT NOT NULL,
	category TEXT NOT NULL,
	date DATETIME NOT NULL
);
`

type testAPI struct {
	t      *testing.T
	router http.Handler
	db     *sqlx.DB
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	t.Setenv("ACCESS_SECRET", "test-secret")

	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { db.Close() })

	// in-memory sqlite is per-connection
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSchema)
	require.NoError(t, err, "create test schema")

	h := NewHandler(db)
	return &testAPI{t: t, router: h.Routes(), db: db}
}

// do sends a JSON request and returns the recorded response.
func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// doForm sends a form-encoded request, as /login expects.
func (a *testAPI) doForm(path string, form url.Values) *httptest.ResponseRecorder {
	a.t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) decode(rec *httptest.ResponseRecorder, v any) {
	a.t.Helper()
	require.NoError(a.t, json.NewDecoder(rec.Body).Decode(v))
}

func (a *testAPI) register(name, email, password string) models.User {
	a.t.Helper()

	rec := a.do(http.MethodPost, "/users/", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.Equal(a.t, http.StatusOK, rec.Code, "register %s: %s", email, rec.Body.String())

	var u models.User
	a.decode(rec, &u)
	return u
}

func (a *testAPI) login(email, password string) string {
	a.t.Helper()

	rec := a.doForm("/login", url.Values{
		"username": {email},
		"password": {password},
	})
	require.Equal(a.t, http.StatusOK, rec.Code, "login %s: %s", email, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	a.decode(rec, &resp)
	require.NotEmpty(a.t, resp.AccessToken)
	return resp.AccessToken
}

func (a *testAPI) createExpense(token string, amount float64, description string, category models.Category) models.Expense {
	a.t.Helper()

	rec := a.do(http.MethodPost, "/expenses/", token, map[string]any{
		"amount":      amount,
		"description": description,
		"category":    category,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, "create expense: %s", rec.Body.String())

	var e models.Expense
	a.decode(rec, &e)
	return e
}

// insertExpenseAt backdates a row directly, bypassing the handler.
func (a *testAPI) insertExpenseAt(userID int64, amount float64, description string, category models.Category, date time.Time) {
	a.t.Helper()

	_, err := a.db.Exec(`
		INSERT INTO expenses (user_id, amount, description, category, date)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, amount, description, category, date)
	require.NoError(a.t, err)
}
