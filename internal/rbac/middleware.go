// Package rbac guards route groups by session identity and role membership.
package rbac

import (
	"context"
	"net/http"
	"strconv"

	"github.com/kontorapp/kontor/internal/shared"
)

// RoleReader resolves the role names held by a user.
type RoleReader interface {
	RolesForUser(ctx context.Context, userID int64) ([]string, error)
}

// Middleware builds auth guards around the session user.
type Middleware struct {
	roles RoleReader
}

// NewMiddleware constructs a Middleware.
func NewMiddleware(roles RoleReader) *Middleware {
	return &Middleware{roles: roles}
}

// RequireAuthenticated redirects anonymous requests to the login page.
func (m *Middleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := sessionUserID(r); !ok {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole allows the request through only when the session user holds
// the named role. Anonymous requests are sent to login; authenticated
// users without the role get 403.
func (m *Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := sessionUserID(r)
			if !ok {
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}
			held, err := m.roles.RolesForUser(r.Context(), userID)
			if err != nil {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			for _, name := range held {
				if name == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

func sessionUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
