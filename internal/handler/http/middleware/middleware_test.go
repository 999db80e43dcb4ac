package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func echoActor(t *testing.T, got *user.Actor) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		require.True(t, ok)
		*got = actor
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthRequired(t *testing.T) {
	svc := jwt.NewJWTService("secret", time.Minute, time.Minute)
	access, _, err := svc.GenerateAccessToken("user-1", user.RoleManager)
	require.NoError(t, err)
	sse, _, err := svc.GenerateSSEToken("user-1")
	require.NoError(t, err)

	var got user.Actor
	handler := jwtauth.Verifier(svc.JWTAuth())(AuthRequired(echoActor(t, &got)))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"access token", "Bearer " + access, http.StatusNoContent},
		{"sse token", "Bearer " + sse, http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
	assert.Equal(t, user.Actor{UserID: "user-1", Role: user.RoleManager}, got)
}

func withActor(role user.Role) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return req.WithContext(WithActor(req.Context(), user.Actor{UserID: "u", Role: role}))
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

func TestRequirePermission(t *testing.T) {
	cases := []struct {
		name       string
		permission user.Permission
		role       user.Role
		want       int
		code       string
	}{
		{"employee creates leave", user.PermissionLeaveCreate, user.RoleEmployee, http.StatusOK, ""},
		{"employee team list", user.PermissionLeaveViewTeam, user.RoleEmployee, http.StatusForbidden, "MANAGER_ACCESS_REQUIRED"},
		{"manager team list", user.PermissionLeaveViewTeam, user.RoleManager, http.StatusOK, ""},
		{"employee report", user.PermissionLeaveReport, user.RoleEmployee, http.StatusForbidden, "MANAGER_ACCESS_REQUIRED"},
		{"manager onboard", user.PermissionEmployeeOnboard, user.RoleManager, http.StatusForbidden, "ADMIN_OFFICE_REQUIRED"},
		{"admin onboard", user.PermissionEmployeeOnboard, user.RoleAdminOffice, http.StatusOK, ""},
		{"unknown role", user.PermissionNotificationViewOwn, user.Role("owner"), http.StatusForbidden, "INSUFFICIENT_ROLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequirePermission(tc.permission)(ok).ServeHTTP(rec, withActor(tc.role))

			assert.Equal(t, tc.want, rec.Code)
			if tc.code != "" {
				assert.Contains(t, rec.Body.String(), tc.code)
			}
		})
	}
}

func TestRequirePermission_NoActor(t *testing.T) {
	rec := httptest.NewRecorder()
	RequirePermission(user.PermissionEmployeeOnboard)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	// Arrange
	limiter := NewRateLimiter(rate.Limit(0.001), 2)
	handler := RateLimit(limiter)(ok)

	// Act
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, withActor(user.RoleEmployee))
		codes = append(codes, rec.Code)
	}
	other := httptest.NewRecorder()
	handler.ServeHTTP(other, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(rate.Limit(1), 1)
	limiter.now = func() time.Time { return now }

	limiter.Allow("a")
	now = now.Add(10 * time.Minute)
	limiter.Allow("b")

	assert.Equal(t, 1, limiter.Cleanup(5*time.Minute))
}
