// Package ecs provides ECS adapters for canopy.
package ecs

import (
	"github.com/phanxgames/canopy"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// LifecycleEventType is the Donburi event type for canopy lifecycle events.
// Subscribe to this in your ECS systems to receive created, initialized,
// destroyed, and removed notifications.
var LifecycleEventType = events.NewEventType[canopy.LifecycleEvent]()

// ObjectData mirrors the identity of an engine-registered object.
type ObjectData struct {
	Name        string
	Sequence    uint64
	Index       int
	Initialized bool
}

// ObjectComponent is attached to every mirrored entity.
var ObjectComponent = donburi.NewComponentType[ObjectData]()

// DonburiStore is an EventSink backed by a Donburi world. Each registered
// object gets an entity carrying ObjectComponent for as long as it stays
// registered; every event is also published to LifecycleEventType and can
// be consumed with events.Subscribe and ProcessEvents.
type DonburiStore struct {
	world    donburi.World
	entities map[uint64]donburi.Entity
}

var _ canopy.EventSink = (*DonburiStore)(nil)

// NewDonburiStore creates a store publishing into world.
func NewDonburiStore(world donburi.World) *DonburiStore {
	return &DonburiStore{world: world, entities: make(map[uint64]donburi.Entity)}
}

// World returns the backing Donburi world.
func (s *DonburiStore) World() donburi.World { return s.world }

// Entity returns the entity mirroring the object with the given sequence
// number.
func (s *DonburiStore) Entity(seq uint64) (donburi.Entity, bool) {
	e, ok := s.entities[seq]
	if !ok || !s.world.Valid(e) {
		return 0, false
	}
	return e, true
}

// Len returns the number of mirrored objects.
func (s *DonburiStore) Len() int { return len(s.entities) }

// EmitEvent updates the mirror entity and publishes the event.
func (s *DonburiStore) EmitEvent(event canopy.LifecycleEvent) {
	switch event.Type {
	case canopy.EventCreated:
		e := s.world.Create(ObjectComponent)
		ObjectComponent.SetValue(s.world.Entry(e), ObjectData{
			Name:     event.Name,
			Sequence: event.Sequence,
			Index:    event.Index,
		})
		s.entities[event.Sequence] = e
	case canopy.EventInitialized:
		if e, ok := s.Entity(event.Sequence); ok {
			ObjectComponent.Get(s.world.Entry(e)).Initialized = true
		}
	case canopy.EventDestroyed, canopy.EventRemoved:
		if e, ok := s.Entity(event.Sequence); ok {
			s.world.Remove(e)
		}
		delete(s.entities, event.Sequence)
	}
	LifecycleEventType.Publish(s.world, event)
}
