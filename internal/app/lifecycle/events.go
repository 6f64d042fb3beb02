// internal/app/lifecycle/events.go
package lifecycle

import "go.mongodb.org/mongo-driver/bson/primitive"

// Event reports a completed membership transition for realtime fan-out.
// Action is one of models.ActionJoined/ActionLeft/ActionBanished.
type Event struct {
	GroupID primitive.ObjectID
	UserID  primitive.ObjectID
	Action  string
}

// Broadcaster delivers events to connected clients. Publish must not block:
// the engine fires and forgets, and does not wait for delivery.
type Broadcaster interface {
	Publish(ev Event)
}

// NopBroadcaster discards events. Useful in tests and tools.
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(Event) {}
