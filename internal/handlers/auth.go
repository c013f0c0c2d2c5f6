package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/mjfernandes/outlay/internal/models"
	"github.com/mjfernandes/outlay/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	DB *sqlx.DB
}

func NewAuthHandler(db *sqlx.DB) *AuthHandler {
	return &AuthHandler{DB: db}
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges form credentials (username = email) for a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		utils.JSONError(w, http.StatusBadRequest, "username and password required")
		return
	}

	var u models.User

	err := h.DB.Get(&u, `
		SELECT id, name, email, password_hash, last_updated
		FROM users
		WHERE email=$1
	`, username)

	if errors.Is(err, sql.ErrNoRows) {
		utils.JSONChallenge(w, "incorrect email or password")
		return
	}

	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		utils.JSONChallenge(w, "incorrect email or password")
		return
	}

	access, _, err := utils.GenerateToken(u.ID, u.Email, os.Getenv("ACCESS_SECRET"), os.Getenv("ACCESS_TTL"))
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "token error")
		return
	}

	utils.JSON(w, http.StatusOK, tokenResp{
		AccessToken: access,
		TokenType:   "bearer",
	})
}
