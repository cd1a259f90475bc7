package interfaces

import (
	"context"

	"github.com/ternarybob/docsi/internal/models"
)

// EventHandler handles one published event. A handler returning an error
// does not stop other subscribers from running; PublishSync collects
// handler errors, Publish logs and drops them.
type EventHandler func(ctx context.Context, event models.Event) error

// EventService is the process-wide pub/sub bus. It is the only permitted
// ambient state in the design: owned for the lifetime of the process by the
// Job Manager, threaded to every component that needs to emit or observe
// crawl events.
type EventService interface {
	Subscribe(eventType models.EventType, handler EventHandler) error
	Unsubscribe(eventType models.EventType, handler EventHandler) error
	Publish(ctx context.Context, event models.Event) error
	PublishSync(ctx context.Context, event models.Event) error
	Close() error
}
