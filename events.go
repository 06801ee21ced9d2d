package modregistry

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// CloudEvent is an alias for the CloudEvents Event type for convenience.
type CloudEvent = cloudevents.Event

// NewModuleEvent creates a properly formed CloudEvent for a module lifecycle
// transition. The module name travels as the "modulename" extension so
// observers can filter without decoding the data payload.
func NewModuleEvent(eventType, source, moduleName string, data any) cloudevents.Event {
	event := cloudevents.NewEvent()
	event.SetID(generateEventID())
	event.SetSource(source)
	event.SetType(eventType)
	event.SetTime(time.Now())
	event.SetSpecVersion(cloudevents.VersionV1)
	event.SetExtension("modulename", moduleName)
	if data != nil {
		_ = event.SetData(cloudevents.ApplicationJSON, data)
	}
	return event
}

// generateEventID produces a unique CloudEvent ID using UUIDv7, which embeds
// timestamp information for time-ordered uniqueness.
func generateEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails for any reason
		id = uuid.New()
	}
	return id.String()
}

// emit builds a lifecycle event and notifies observers. Must be called
// without holding the store lock so observers may re-enter the registry.
func (r *Registry) emit(ctx context.Context, eventType, moduleName string, data map[string]any) {
	event := NewModuleEvent(eventType, r.source, moduleName, data)
	if event.Time().IsZero() {
		event.SetTime(r.now())
	}
	r.notifyObservers(ctx, event)
}
