package ecs

import (
	"testing"

	"github.com/phanxgames/canopy"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func newTestEngine(t *testing.T, store *DonburiStore) *canopy.Engine {
	t.Helper()
	e := canopy.NewEngine(canopy.DefaultConfig(), nil)
	e.SetLogger(canopy.NopLogger())
	e.SetEventSink(store)
	return e
}

func TestNewDonburiStore(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)
	if store == nil {
		t.Fatal("NewDonburiStore returned nil")
	}
	if store.World() != world {
		t.Error("World() should return the backing world")
	}
}

func TestDonburiStore_MirrorsLifecycle(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)
	e := newTestEngine(t, store)

	g := e.NewGameObject("hero")
	ent, ok := store.Entity(g.Sequence())
	if !ok {
		t.Fatal("created object should have an entity")
	}
	data := ObjectComponent.Get(world.Entry(ent))
	if data.Name != "hero" || data.Sequence != g.Sequence() || data.Index != g.Index() {
		t.Errorf("mirror data = %+v", *data)
	}
	if data.Initialized {
		t.Error("object should not be initialized before the engine is")
	}

	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	if !ObjectComponent.Get(world.Entry(ent)).Initialized {
		t.Error("Initialize should mark the mirror initialized")
	}

	g.Destroy()
	if _, ok := store.Entity(g.Sequence()); ok {
		t.Error("destroyed object should lose its entity")
	}
	if world.Valid(ent) {
		t.Error("entity should be removed from the world")
	}
}

func TestDonburiStore_PublishesEvents(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)
	e := newTestEngine(t, store)

	var received []canopy.LifecycleEvent
	LifecycleEventType.Subscribe(world, func(w donburi.World, ev canopy.LifecycleEvent) {
		received = append(received, ev)
	})

	g := e.NewGameObject("crate")
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	g.Destroy()

	// Events are queued — process them.
	LifecycleEventType.ProcessEvents(world)

	// The main camera was created before the subscription; its events are
	// queued as well.
	var got []canopy.EventType
	for _, ev := range received {
		if ev.Name == "crate" {
			got = append(got, ev.Type)
		}
	}
	want := []canopy.EventType{canopy.EventCreated, canopy.EventInitialized, canopy.EventDestroyed}
	if len(got) != len(want) {
		t.Fatalf("crate events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDonburiStore_RemoveWithoutDestroy(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)
	e := newTestEngine(t, store)

	g := e.NewGameObject("ghost")
	before := store.Len()
	e.Remove(g)
	if store.Len() != before-1 {
		t.Errorf("Len = %d, want %d", store.Len(), before-1)
	}

	var types []canopy.EventType
	LifecycleEventType.Subscribe(world, func(w donburi.World, ev canopy.LifecycleEvent) {
		if ev.Name == "ghost" {
			types = append(types, ev.Type)
		}
	})
	events.ProcessAllEvents(world)
	if len(types) != 2 || types[1] != canopy.EventRemoved {
		t.Errorf("ghost events = %v, want [created removed]", types)
	}
}

func TestDonburiStore_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var count1, count2 int
	LifecycleEventType.Subscribe(world, func(w donburi.World, e canopy.LifecycleEvent) {
		count1++
	})
	LifecycleEventType.Subscribe(world, func(w donburi.World, e canopy.LifecycleEvent) {
		count2++
	})

	store.EmitEvent(canopy.LifecycleEvent{Type: canopy.EventCreated, Name: "x", Sequence: 1 << 40, Index: -1})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}
