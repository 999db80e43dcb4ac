package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFCMSender_Send_Success(t *testing.T) {
	// Arrange
	var got fcmRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"name":"projects/demo/messages/123"}`))
	}))
	defer srv.Close()

	sender := NewFCMSenderWithClient(srv.Client(), srv.URL)
	msg := NewMessage("device-token", map[string]string{"type": "leave_submit", "leaveRequestId": "abc"})

	// Act
	id, err := sender.Send(context.Background(), msg)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "projects/demo/messages/123", id)
	assert.Equal(t, "device-token", got.Message.Token)
	assert.Equal(t, DefaultTitle, got.Message.Notification.Title)
	assert.Equal(t, DefaultBody, got.Message.Notification.Body)
	assert.Equal(t, "abc", got.Message.Data["leaveRequestId"])
}

func TestFCMSender_Send_Unregistered(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"not found status", http.StatusNotFound, `{"error":{"code":404,"status":"NOT_FOUND"}}`},
		{"unregistered detail", http.StatusBadRequest, `{"error":{"code":400,"status":"INVALID_ARGUMENT","details":[{"errorCode":"UNREGISTERED"}]}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewFCMSenderWithClient(srv.Client(), srv.URL).Send(context.Background(), NewMessage("t", nil))

			assert.ErrorIs(t, err, ErrTokenUnregistered)
		})
	}
}

func TestFCMSender_Send_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"backend unavailable"}}`))
	}))
	defer srv.Close()

	_, err := NewFCMSenderWithClient(srv.Client(), srv.URL).Send(context.Background(), NewMessage("t", nil))

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenUnregistered)
	assert.Contains(t, err.Error(), "backend unavailable")
}

func TestNewFCMSender_MissingCredentials(t *testing.T) {
	_, err := NewFCMSender(context.Background(), "demo", "/nonexistent/credentials.json")
	assert.Error(t, err)
}

func TestLogSender_Send(t *testing.T) {
	id, err := NewLogSender(nil).Send(context.Background(), NewMessage("abcdefghijkl", nil))

	require.NoError(t, err)
	assert.Contains(t, id, "log-")
	assert.Equal(t, "abcd****ijkl", mask("abcdefghijkl"))
	assert.Equal(t, "****", mask("short"))
}
