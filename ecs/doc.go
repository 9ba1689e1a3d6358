// Package ecs provides ECS adapters for canopy's lifecycle events.
//
// The primary adapter is [NewDonburiStore], which mirrors every object the
// engine registers as an entity in a [Donburi] world and republishes the
// lifecycle transitions as typed events. Subscribe to [LifecycleEventType]
// in your ECS systems to receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	engine.SetEventSink(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
