package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	fcmScope    = "https://www.googleapis.com/auth/firebase.messaging"
	fcmEndpoint = "https://fcm.googleapis.com/v1/projects/%s/messages:send"
)

// FCMSender sends through the Firebase Cloud Messaging HTTP v1 API.
type FCMSender struct {
	client   *http.Client
	endpoint string
}

// NewFCMSender authenticates with the service account JSON at
// credentialsFile.
func NewFCMSender(ctx context.Context, projectID, credentialsFile string) (*FCMSender, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read fcm credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, fcmScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fcm credentials: %w", err)
	}
	if projectID == "" {
		projectID = creds.ProjectID
	}
	if projectID == "" {
		return nil, fmt.Errorf("fcm project id is required")
	}

	client := oauth2.NewClient(ctx, creds.TokenSource)
	client.Timeout = 10 * time.Second

	return NewFCMSenderWithClient(client, fmt.Sprintf(fcmEndpoint, projectID)), nil
}

// NewFCMSenderWithClient uses client as-is. The client is expected to attach
// authorization itself.
func NewFCMSenderWithClient(client *http.Client, endpoint string) *FCMSender {
	return &FCMSender{client: client, endpoint: endpoint}
}

type fcmRequest struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string            `json:"token"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Name string `json:"name"`
}

type fcmError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			ErrorCode string `json:"errorCode"`
		} `json:"details"`
	} `json:"error"`
}

func (s *FCMSender) Send(ctx context.Context, msg Message) (string, error) {
	body, err := json.Marshal(fcmRequest{Message: fcmMessage{
		Token:        msg.Token,
		Notification: fcmNotification{Title: msg.Title, Body: msg.Body},
		Data:         msg.Data,
	}})
	if err != nil {
		return "", fmt.Errorf("failed to encode fcm message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fcm request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", fmt.Errorf("failed to read fcm response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", decodeFCMError(resp.StatusCode, raw)
	}

	var out fcmResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to decode fcm response: %w", err)
	}
	return out.Name, nil
}

func decodeFCMError(status int, raw []byte) error {
	var e fcmError
	_ = json.Unmarshal(raw, &e)

	if status == http.StatusNotFound || e.Error.Status == "NOT_FOUND" {
		return ErrTokenUnregistered
	}
	for _, d := range e.Error.Details {
		if d.ErrorCode == "UNREGISTERED" {
			return ErrTokenUnregistered
		}
	}

	msg := strings.TrimSpace(e.Error.Message)
	if msg == "" {
		msg = http.StatusText(status)
	}
	return fmt.Errorf("fcm send failed (%d): %s", status, msg)
}
