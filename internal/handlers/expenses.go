package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/mjfernandes/outlay/internal/models"
	"github.com/mjfernandes/outlay/internal/utils"
)

type ExpenseHandler struct {
	DB *sqlx.DB
}

func NewExpenseHandler(db *sqlx.DB) *ExpenseHandler {
	return &ExpenseHandler{DB: db}
}

// expenseWithOwner nests the owning user's public projection.
type expenseWithOwner struct {
	models.Expense
	Owner models.User `json:"owner"`
}

func callerID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value(utils.CtxUserIDKey).(int64)
	return uid, ok
}

// ---------------------- CREATE ----------------------

func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(r)
	if !ok {
		utils.JSONChallenge(w, "not authorized")
		return
	}

	var body struct {
		Amount      float64         `json:"amount"`
		Description string          `json:"description"`
		Category    models.Category `json:"category"`
	}

	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	if !body.Category.Valid() {
		utils.JSONError(w, http.StatusBadRequest, "unknown category")
		return
	}

	expense := models.Expense{
		UserID:      uid,
		Amount:      body.Amount,
		Description: body.Description,
		Category:    body.Category,
		Date:        time.Now().UTC(),
	}

	err := h.DB.QueryRowx(`
		INSERT INTO expenses (user_id, amount, description, category, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, expense.UserID, expense.Amount, expense.Description, expense.Category, expense.Date).
		Scan(&expense.ID)

	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.JSON(w, http.StatusCreated, expense)
}

// ---------------------- GET ONE ----------------------

func (h *ExpenseHandler) GetExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(r)
	if !ok {
		utils.JSONChallenge(w, "not authorized")
		return
	}

	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var expense models.Expense

	// a row owned by someone else looks exactly like a missing row
	err := h.DB.Get(&expense, `
		SELECT id, user_id, amount, description, category, date
		FROM expenses
		WHERE id=$1 AND user_id=$2
	`, id, uid)

	if errors.Is(err, sql.ErrNoRows) {
		utils.JSONError(w, http.StatusNotFound, "Expense not found")
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	var owner models.User
	err = h.DB.Get(&owner, `
		SELECT id, name, email, password_hash, last_updated
		FROM users
		WHERE id=$1
	`, expense.UserID)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.JSON(w, http.StatusOK, expenseWithOwner{Expense: expense, Owner: owner})
}

// ---------------------- LIST ----------------------

func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(r)
	if !ok {
		utils.JSONChallenge(w, "not authorized")
		return
	}

	filter := models.TimeFilter(r.URL.Query().Get("time_filter"))
	if filter == "" {
		filter = models.FilterAll
	}
	if !filter.Valid() {
		utils.JSONError(w, http.StatusBadRequest, "unknown time_filter")
		return
	}

	var customDays int
	if filter == models.FilterCustom {
		n, err := strconv.Atoi(r.URL.Query().Get("custom"))
		if err != nil || n < 1 {
			utils.JSONError(w, http.StatusBadRequest, "custom must be a positive number of days")
			return
		}
		customDays = n
	}

	query := `
		SELECT id, user_id, amount, description, category, date
		FROM expenses
		WHERE user_id=$1
		ORDER BY date DESC
	`
	args := []interface{}{uid}

	if cutoff, bounded := filter.Cutoff(time.Now().UTC(), customDays); bounded {
		query = `
			SELECT id, user_id, amount, description, category, date
			FROM expenses
			WHERE user_id=$1 AND date >= $2
			ORDER BY date DESC
		`
		args = append(args, cutoff)
	}

	expenses := []models.Expense{}
	if err := h.DB.Select(&expenses, query, args...); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	if len(expenses) == 0 {
		utils.JSONError(w, http.StatusNotFound, "Expense not found")
		return
	}

	utils.JSON(w, http.StatusOK, expenses)
}

// ---------------------- UPDATE ----------------------

func (h *ExpenseHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(r)
	if !ok {
		utils.JSONChallenge(w, "not authorized")
		return
	}

	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var body struct {
		Amount      *float64         `json:"amount"`
		Description *string          `json:"description"`
		Category    *models.Category `json:"category"`
	}

	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	if body.Category != nil && !body.Category.Valid() {
		utils.JSONError(w, http.StatusBadRequest, "unknown category")
		return
	}

	var expense models.Expense
	err := h.DB.Get(&expense, `
		SELECT id, user_id, amount, description, category, date
		FROM expenses
		WHERE id=$1 AND user_id=$2
	`, id, uid)

	if errors.Is(err, sql.ErrNoRows) {
		utils.JSONError(w, http.StatusNotFound, "Expense not found")
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	if body.Amount != nil {
		expense.Amount = *body.Amount
	}
	if body.Description != nil {
		expense.Description = *body.Description
	}
	if body.Category != nil {
		expense.Category = *body.Category
	}

	_, err = h.DB.Exec(`
		UPDATE expenses
		SET amount=$1, description=$2, category=$3
		WHERE id=$4 AND user_id=$5
	`, expense.Amount, expense.Description, expense.Category, id, uid)

	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.JSON(w, http.StatusOK, expense)
}

// ---------------------- DELETE ----------------------

func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(r)
	if !ok {
		utils.JSONChallenge(w, "not authorized")
		return
	}

	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	res, err := h.DB.Exec(`DELETE FROM expenses WHERE id=$1 AND user_id=$2`, id, uid)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	affected, err := res.RowsAffected()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}
	if affected == 0 {
		utils.JSONError(w, http.StatusNotFound, "Expense not found")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Expense ID %d deleted", id),
	})
}
