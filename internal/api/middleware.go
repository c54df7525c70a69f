package api

import (
	"context"
	"net/http"
	"strings"

	"taskboard/internal/httperr"
	"taskboard/internal/model"
)

type contextKey int

const userKey contextKey = iota

// auth requires a Bearer access token and stashes the resolved user on the
// request context.
func (s *Server) auth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, r, httperr.Unauthorized("Access token required"))
			return
		}

		user, err := s.authSvc.VerifyAccess(r.Context(), token)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// currentUser returns the authenticated user stashed by the middleware.
func currentUser(r *http.Request) *model.User {
	user, _ := r.Context().Value(userKey).(*model.User)
	return user
}
