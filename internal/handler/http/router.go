package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AllowedOrigins []string
	LogLevel       slog.Level
}

type Handlers struct {
	Leave        LeaveHandler
	Notification NotificationHandler
	Employee     EmployeeHandler
}

func NewRouter(cfg RouterConfig, logger *slog.Logger, JWTService jwt.Service, limiter *middleware.RateLimiter, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{"Link", middleware.RequestIDHeader},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.RequestID)

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {

		// SSE authenticates with its own short-lived token
		r.With(middleware.RateLimit(limiter)).Get("/notifications/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(middleware.RateLimit(limiter))
			r.Use(chiMiddleware.AllowContentType("application/json"))

			r.Route("/leaves", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Post("/", h.Leave.CreateRequest)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveViewOwn))
					r.Get("/me", h.Leave.GetMyRequests)
					r.Get("/balance/me", h.Leave.GetMyBalance)

					// Requester, approver and admin office checks happen per request
					r.Get("/{id}", h.Leave.GetRequest)
					r.Put("/{id}", h.Leave.UpdateRequest)
					r.Delete("/{id}", h.Leave.DeleteRequest)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveViewTeam))
					r.Get("/", h.Leave.ListTeamRequests)
					r.Get("/pending", h.Leave.ListPendingRequests)
				})

				r.With(middleware.RequirePermission(user.PermissionLeaveReport)).
					Get("/leave-by-month/{year}", h.Leave.GetLeaveByMonth)

				// The assigned approver is checked per request
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveApprove))
					r.Put("/approve/{id}", h.Leave.ApproveRequest)
					r.Put("/reject/{id}", h.Leave.RejectRequest)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionNotificationViewOwn))
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Put("/read", h.Notification.MarkAllAsRead)
				r.Put("/fcm-token", h.Notification.RegisterPushToken)
				r.Get("/sse-token", h.Notification.GetSSEToken)
			})

			r.Route("/employees", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionEmployeeOnboard))
				r.Post("/", h.Employee.Onboard)
				r.Get("/{id}", h.Employee.GetByID)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	return r
}
