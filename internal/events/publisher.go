package events

import (
	"context"

	"github.com/JackobTheLion/share-it/internal/common/kafka"
)

// Publisher is the event emission contract used by the application layer.
// *kafka.Producer satisfies it; tests substitute a recorder.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}
