package push

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogSender logs messages instead of delivering them. Used in development.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) (string, error) {
	id := "log-" + uuid.NewString()
	s.logger.InfoContext(ctx, "push message",
		"message_id", id,
		"token", mask(msg.Token),
		"title", msg.Title,
		"data", msg.Data,
	)
	return id, nil
}

func mask(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}
