package application

import (
	"context"
	"time"

	"home-ai/internal/domain"
)

// RequestRecord is one handled conversation turn as persisted for audit.
type RequestRecord struct {
	RequestID  string
	CreatedAt  time.Time
	InputType  string
	InputText  string
	OutputText string
	Commands   []domain.ExecutedCommand
	Duration   time.Duration
}

// RequestStore persists request records. Logging failures are reported but
// never fail the conversation.
type RequestStore interface {
	LogRequest(ctx context.Context, rec RequestRecord) error
	RecentRequests(ctx context.Context, limit int) ([]RequestRecord, error)
}

type NoopStore struct{}

func (n *NoopStore) LogRequest(_ context.Context, _ RequestRecord) error {
	return nil
}

func (n *NoopStore) RecentRequests(_ context.Context, _ int) ([]RequestRecord, error) {
	return nil, nil
}
