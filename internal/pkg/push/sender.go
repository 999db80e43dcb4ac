package push

import (
	"context"
	"errors"
)

// Fixed content of every push. Clients fetch details using Data.
const (
	DefaultTitle = "Notification"
	DefaultBody  = "You have new notification"
)

// ErrTokenUnregistered means the provider no longer accepts the token and it
// should be dropped.
var ErrTokenUnregistered = errors.New("push token is unregistered")

// Message is a provider-neutral push payload addressed to one device token.
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// NewMessage builds the standard payload for token.
func NewMessage(token string, data map[string]string) Message {
	return Message{Token: token, Title: DefaultTitle, Body: DefaultBody, Data: data}
}

// Sender delivers a single message and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}
