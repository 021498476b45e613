package ports

import "context"

// EventPublisher publishes authentication events for other services to audit
type EventPublisher interface {
	PublishLogin(ctx context.Context, address string, sessionID string) error
	PublishLogout(ctx context.Context, address string, sessionID string) error
}
