// Package modregistry event notifications use the Observer pattern with
// CloudEvents envelopes for a standardized, interoperable event format.
package modregistry

import (
	"context"
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Observer is implemented by objects that want lifecycle notifications from
// the registry. Dispatch is synchronous and in registration order, so
// observers should return quickly.
type Observer interface {
	// OnEvent is called for each event the observer subscribed to. An error
	// return is logged and never aborts the operation that emitted the event.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier used for registration tracking
	// and unregistration.
	ObserverID() string
}

// ObserverInfo describes a registered observer for debugging and monitoring.
type ObserverInfo struct {
	ID           string    `json:"id"`
	EventTypes   []string  `json:"eventTypes"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Event type constants emitted by the registry, in reverse domain notation
// per the CloudEvents specification.
const (
	EventTypeModuleRegistered  = "com.campusware.modregistry.module.registered"
	EventTypeModuleEnabled     = "com.campusware.modregistry.module.enabled"
	EventTypeModuleDisabled    = "com.campusware.modregistry.module.disabled"
	EventTypeModuleHealthCheck = "com.campusware.modregistry.module.healthcheck"
)

type observerRegistration struct {
	observer     Observer
	eventTypes   map[string]bool
	registeredAt time.Time
}

// RegisterObserver adds an observer. With no eventTypes the observer receives
// every event; otherwise only the listed types. Re-registering the same
// observer ID replaces its subscription but keeps its original position in
// the dispatch order.
func (r *Registry) RegisterObserver(observer Observer, eventTypes ...string) error {
	if observer == nil {
		return fmt.Errorf("%w: RegisterObserver", ErrObserverNil)
	}

	filter := make(map[string]bool, len(eventTypes))
	for _, eventType := range eventTypes {
		filter[eventType] = true
	}

	r.observerMu.Lock()
	defer r.observerMu.Unlock()

	for _, reg := range r.observers {
		if reg.observer.ObserverID() == observer.ObserverID() {
			reg.observer = observer
			reg.eventTypes = filter
			return nil
		}
	}
	r.observers = append(r.observers, &observerRegistration{
		observer:     observer,
		eventTypes:   filter,
		registeredAt: r.now(),
	})
	r.logger.Debug("Observer registered", "observerID", observer.ObserverID(), "eventTypes", eventTypes)
	return nil
}

// UnregisterObserver removes an observer by its ID. Idempotent: removing an
// observer that was never registered is not an error.
func (r *Registry) UnregisterObserver(observer Observer) error {
	if observer == nil {
		return fmt.Errorf("%w: UnregisterObserver", ErrObserverNil)
	}

	r.observerMu.Lock()
	defer r.observerMu.Unlock()

	for i, reg := range r.observers {
		if reg.observer.ObserverID() == observer.ObserverID() {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			r.logger.Debug("Observer unregistered", "observerID", observer.ObserverID())
			return nil
		}
	}
	return nil
}

// GetObservers returns information about currently registered observers in
// dispatch order.
func (r *Registry) GetObservers() []ObserverInfo {
	r.observerMu.RLock()
	defer r.observerMu.RUnlock()

	info := make([]ObserverInfo, 0, len(r.observers))
	for _, reg := range r.observers {
		types := make([]string, 0, len(reg.eventTypes))
		for eventType := range reg.eventTypes {
			types = append(types, eventType)
		}
		info = append(info, ObserverInfo{
			ID:           reg.observer.ObserverID(),
			EventTypes:   types,
			RegisteredAt: reg.registeredAt,
		})
	}
	return info
}

// notifyObservers dispatches an event to every interested observer,
// synchronously and in registration order. Observer panics are recovered and
// observer errors logged; neither stops dispatch to later observers nor
// propagates to the operation that triggered the event.
func (r *Registry) notifyObservers(ctx context.Context, event cloudevents.Event) {
	r.observerMu.RLock()
	registrations := append([]*observerRegistration(nil), r.observers...)
	r.observerMu.RUnlock()

	for _, reg := range registrations {
		if len(reg.eventTypes) > 0 && !reg.eventTypes[event.Type()] {
			continue
		}
		r.dispatch(ctx, reg.observer, event)
	}
}

func (r *Registry) dispatch(ctx context.Context, observer Observer, event cloudevents.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Observer panicked", "observerID", observer.ObserverID(), "event", event.Type(), "panic", rec)
		}
	}()

	if err := observer.OnEvent(ctx, event); err != nil {
		r.logger.Error("Observer error", "observerID", observer.ObserverID(), "event", event.Type(), "error", err)
	}
}

// FunctionalObserver wraps a handler function as an Observer. Convenient for
// quick listener registration without defining a struct.
type FunctionalObserver struct {
	id      string
	handler func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver creates an observer backed by the provided function.
func NewFunctionalObserver(id string, handler func(ctx context.Context, event cloudevents.Event) error) Observer {
	return &FunctionalObserver{id: id, handler: handler}
}

// OnEvent implements Observer by calling the handler function.
func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.handler(ctx, event)
}

// ObserverID implements Observer by returning the observer ID.
func (f *FunctionalObserver) ObserverID() string {
	return f.id
}
