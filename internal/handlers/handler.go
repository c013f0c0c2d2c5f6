package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/mjfernandes/outlay/internal/middleware"
	"github.com/mjfernandes/outlay/internal/utils"
)

type Handler struct {
	DB       *sqlx.DB
	Auth     *AuthHandler
	Users    *UserHandler
	Expenses *ExpenseHandler
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		DB:       db,
		Auth:     NewAuthHandler(db),
		Users:    NewUserHandler(db),
		Expenses: NewExpenseHandler(db),
	}
}

// Routes wires the full HTTP surface onto a chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		utils.JSON(w, http.StatusOK, "Health check")
	})

	// Public
	r.Post("/login", h.Auth.Login)
	r.Post("/users/", h.Users.CreateUser)
	r.Get("/users/", h.Users.ListUsers)
	r.Get("/users/{id}", h.Users.GetUser)
	r.Patch("/users/{id}", h.Users.UpdateUser)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.DB))

		r.Post("/expenses/", h.Expenses.CreateExpense)
		r.Get("/expenses/", h.Expenses.ListExpenses)
		r.Get("/expenses/{id}", h.Expenses.GetExpense)
		r.Patch("/expenses/{id}", h.Expenses.UpdateExpense)
		r.Delete("/expenses/{id}", h.Expenses.DeleteExpense)
	})

	return r
}
