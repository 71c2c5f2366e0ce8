package core

import (
	"context"

	"github.com/dkeye/Kairos/internal/domain"
)

// PresenceMirror exposes presence to processes outside the hub.
// The hub stays the source of truth; mirror errors are only logged.
type PresenceMirror interface {
	Online(ctx context.Context, uid domain.UserID) error
	Offline(ctx context.Context, uid domain.UserID) error
}

// MessagePublisher streams accepted messages to downstream consumers.
type MessagePublisher interface {
	Publish(ctx context.Context, msg *domain.Message) error
}

type NopPresence struct{}

func (NopPresence) Online(context.Context, domain.UserID) error  { return nil }
func (NopPresence) Offline(context.Context, domain.UserID) error { return nil }

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *domain.Message) error { return nil }
