package application

import "context"

// Notifier delivers an out-of-band note to the user, e.g. when a conversation
// changed device state.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _ string) error {
	return nil
}
