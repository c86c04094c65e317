package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/verdantlabs/herbarium/internal/auth"
)

// Identity headers set by the authenticating gateway in front of this
// service. The service trusts them and performs no authentication itself.
const (
	headerUserID    = "X-User-Id"
	headerUserRoles = "X-User-Roles"
)

// IdentityMiddleware copies the gateway-supplied identity headers onto the
// request context. Requests without a valid user id pass through anonymous;
// handlers that need an actor reject them.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := uuid.Parse(strings.TrimSpace(r.Header.Get(headerUserID))); err == nil {
			actor := auth.Actor{ID: id}
			if raw := strings.TrimSpace(r.Header.Get(headerUserRoles)); raw != "" {
				for _, role := range strings.Split(raw, ",") {
					if role = strings.TrimSpace(role); role != "" {
						actor.Roles = append(actor.Roles, role)
					}
				}
			}
			r = r.WithContext(auth.ContextWithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}
