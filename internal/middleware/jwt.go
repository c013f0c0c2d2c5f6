package middleware

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mjfernandes/outlay/internal/utils"
)

// Auth verifies the bearer token and rejects requests whose subject
// user no longer exists. The user id is pushed into the request
// context on success.
func Auth(db *sqlx.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			auth := r.Header.Get("Authorization")
			if auth == "" {
				utils.JSONChallenge(w, "could not validate credentials")
				return
			}

			parts := strings.SplitN(auth, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				utils.JSONChallenge(w, "could not validate credentials")
				return
			}

			token := strings.TrimSpace(parts[1])
			if token == "" {
				utils.JSONChallenge(w, "could not validate credentials")
				return
			}

			claims, err := utils.VerifyToken(token, os.Getenv("ACCESS_SECRET"))
			if err != nil {
				utils.JSONChallenge(w, "could not validate credentials")
				return
			}

			uid := claims.SubjectInt()

			var exists bool
			err = db.Get(&exists, `SELECT EXISTS (SELECT 1 FROM users WHERE id=$1)`, uid)
			if err != nil || !exists {
				utils.JSONChallenge(w, "could not validate credentials")
				return
			}

			// push user ID into context
			ctx := context.WithValue(r.Context(), utils.CtxUserIDKey, uid)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
