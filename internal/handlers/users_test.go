package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/mjfernandes/outlay/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsers(t *testing.T) {
	api := newTestAPI(t)
	api.register("Alice", "alice@example.com", "secret1")
	api.register("Bob", "bob@example.com", "secret2")

	rec := api.do(http.MethodGet, "/users/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []models.User
	api.decode(rec, &users)
	require.Len(t, users, 2)
	assert.Equal(t, "Alice", users[0].Name)
	assert.Equal(t, "Bob", users[1].Name)
}

func TestGetUserWithExpenses(t *testing.T) {
	api := newTestAPI(t)

	u := api.register("Alice", "alice@example.com", "secret1")
	token := api.login("alice@example.com", "secret1")
	api.createExpense(token, 12.50, "lunch", models.CategoryGroceries)
	api.createExpense(token, 99.99, "headphones", models.CategoryElectronics)

	rec := api.do(http.MethodGet, fmt.Sprintf("/users/%d", u.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		models.User
		Expenses []models.Expense `json:"expenses"`
	}
	api.decode(rec, &resp)
	assert.Equal(t, u.ID, resp.ID)
	assert.Len(t, resp.Expenses, 2)
}

func TestGetUserNotFound(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/users/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateUserPartial(t *testing.T) {
	api := newTestAPI(t)
	u := api.register("Alice", "alice@example.com", "secret1")

	rec := api.do(http.MethodPatch, fmt.Sprintf("/users/%d", u.ID), "", map[string]string{
		"name": "Alicia",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.User
	api.decode(rec, &updated)
	assert.Equal(t, "Alicia", updated.Name)
	// untouched fields survive
	assert.Equal(t, "alice@example.com", updated.Email)
}

func TestUpdateUserPassword(t *testing.T) {
	api := newTestAPI(t)
	u := api.register("Alice", "alice@example.com", "secret1")

	rec := api.do(http.MethodPatch, fmt.Sprintf("/users/%d", u.ID), "", map[string]string{
		"password": "newsecret",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// old password no longer works, new one does
	recOld := api.doForm("/login", map[string][]string{
		"username": {"alice@example.com"},
		"password": {"secret1"},
	})
	assert.Equal(t, http.StatusUnauthorized, recOld.Code)

	token := api.login("alice@example.com", "newsecret")
	assert.NotEmpty(t, token)
}

func TestUpdateUserNotFound(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPatch, "/users/999", "", map[string]string{"name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateUserDuplicateEmail(t *testing.T) {
	api := newTestAPI(t)
	api.register("Alice", "alice@example.com", "secret1")
	bob := api.register("Bob", "bob@example.com", "secret2")

	rec := api.do(http.MethodPatch, fmt.Sprintf("/users/%d", bob.ID), "", map[string]string{
		"email": "alice@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
