package middleware

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/response"
)

// RequirePermission checks if user has specific permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Unauthorized")
				return
			}

			if !user.HasPermission(actor.Role, permission) {
				slog.Debug("permission denied", "permission", permission, "role", actor.Role, "user_id", actor.UserID)
				response.HandleError(w, user.DeniedError(permission))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
