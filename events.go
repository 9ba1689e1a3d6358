package canopy

// EventType identifies a lifecycle transition published to an EventSink.
type EventType uint8

const (
	EventCreated     EventType = iota // registered with the engine
	EventInitialized                  // Initialize dispatched
	EventDestroyed                    // destroyed and removed from the engine
	EventRemoved                      // removed from the engine without being destroyed
)

var eventTypeNames = [...]string{
	EventCreated:     "created",
	EventInitialized: "initialized",
	EventDestroyed:   "destroyed",
	EventRemoved:     "removed",
}

// String returns the lower-case event name.
func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "unknown"
}

// LifecycleEvent describes one transition of an engine-registered object.
type LifecycleEvent struct {
	Type     EventType
	Name     string
	Sequence uint64
	// Index is the arena slot for game objects and -1 for everything else.
	// It is already -1 for destroyed game objects.
	Index int
	// Object is the participant itself. Sinks must not retain it past the
	// EventDestroyed notification.
	Object Lifecycle
}

// EventSink receives lifecycle events, typically an ECS bridge.
// When set on an Engine, every registered object's transitions are forwarded.
type EventSink interface {
	EmitEvent(event LifecycleEvent)
}

func newLifecycleEvent(t EventType, l Lifecycle) LifecycleEvent {
	ev := LifecycleEvent{
		Type:     t,
		Name:     l.object().Name,
		Sequence: l.Sequence(),
		Index:    -1,
		Object:   l,
	}
	if g, ok := l.(*GameObject); ok {
		ev.Index = g.Index()
	}
	return ev
}

func (e *Engine) emit(t EventType, l Lifecycle) {
	if e.sink == nil {
		return
	}
	e.sink.EmitEvent(newLifecycleEvent(t, l))
}
