package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mjfernandes/outlay/internal/models"
	"github.com/mjfernandes/outlay/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

type UserHandler struct {
	DB *sqlx.DB
}

func NewUserHandler(db *sqlx.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// userWithExpenses is the single-user projection with the owned rows nested.
type userWithExpenses struct {
	models.User
	Expenses []models.Expense `json:"expenses"`
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// sqlite used in tests reports constraint failures as plain text
	return err != nil && strings.Contains(err.Error(), "UNIQUE")
}

// ---------------------- CREATE ----------------------

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	if body.Name == "" || body.Email == "" || body.Password == "" {
		utils.JSONError(w, http.StatusBadRequest, "name, email and password required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user := models.User{
		Name:        body.Name,
		Email:       body.Email,
		Password:    string(hash),
		LastUpdated: time.Now().UTC(),
	}

	err = h.DB.QueryRowx(`
		INSERT INTO users (name, email, password_hash, last_updated)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, user.Name, user.Email, user.Password, user.LastUpdated).Scan(&user.ID)

	if isUniqueViolation(err) {
		utils.JSONError(w, http.StatusBadRequest, "email already registered")
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

// ---------------------- LIST ----------------------

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := []models.User{}

	err := h.DB.Select(&users, `
		SELECT id, name, email, password_hash, last_updated
		FROM users
		ORDER BY id
	`)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.JSON(w, http.StatusOK, users)
}

// ---------------------- GET ONE ----------------------

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var user models.User
	err := h.DB.Get(&user, `
		SELECT id, name, email, password_hash, last_updated
		FROM users
		WHERE id=$1
	`, id)

	if errors.Is(err, sql.ErrNoRows) {
		utils.JSONError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	expenses := []models.Expense{}
	err = h.DB.Select(&expenses, `
		SELECT id, user_id, amount, description, category, date
		FROM expenses
		WHERE user_id=$1
		ORDER BY date DESC
	`, id)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.JSON(w, http.StatusOK, userWithExpenses{User: user, Expenses: expenses})
}

// ---------------------- UPDATE ----------------------

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var body struct {
		Name     *string `json:"name"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}

	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	var user models.User
	err := h.DB.Get(&user, `
		SELECT id, name, email, password_hash, last_updated
		FROM users
		WHERE id=$1
	`, id)

	if errors.Is(err, sql.ErrNoRows) {
		utils.JSONError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	if body.Name != nil {
		user.Name = *body.Name
	}
	if body.Email != nil {
		user.Email = *body.Email
	}
	if body.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.JSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		user.Password = string(hash)
	}
	user.LastUpdated = time.Now().UTC()

	_, err = h.DB.Exec(`
		UPDATE users
		SET name=$1, email=$2, password_hash=$3, last_updated=$4
		WHERE id=$5
	`, user.Name, user.Email, user.Password, user.LastUpdated, id)

	if isUniqueViolation(err) {
		utils.JSONError(w, http.StatusBadRequest, "email already registered")
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.JSON(w, http.StatusOK, user)
}
