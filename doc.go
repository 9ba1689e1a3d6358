// Package canopy is a retained-mode 2D scene engine for [Ebitengine].
//
// Canopy keeps a tree of positioned, rotated, and scaled game objects,
// drives every registered participant through a fixed per-frame lifecycle
// (initialize, update, draw-update), and resolves hierarchical transforms
// into screen space for culling and drawing.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens a window and drives
// the engine from the ebiten game loop:
//
//	e := canopy.NewEngine(canopy.DefaultConfig(), nil)
//	hero := e.NewGameObject("hero")
//	hero.Texture = heroImage
//	canopy.Run(e, canopy.RunOptions{QuitOnEscape: true})
//
// For full control, call the host contract yourself: [Engine.Initialize]
// once, [Engine.LoadContent] once, then [Engine.Update] and [Engine.Draw]
// every frame. Both return [ErrNotInitialized] when called too early.
//
// # Objects and scripts
//
// Every participant implements [Lifecycle] by embedding [Object]. A
// [GameObject] hosts [Script]s (embed [ScriptBase]) and forwards its
// lifecycle to them. Participants run in (update order, sequence) order;
// adding or removing participants while a pass runs is deferred until the
// pass ends.
//
//	type spin struct{ canopy.ScriptBase }
//
//	func (s *spin) Update(dt float64) {
//		g := s.GameObject()
//		g.SetRotation(g.Rotation() + dt)
//	}
//
//	hero.AddScript(&spin{ScriptBase: canopy.NewScriptBase("spin")})
//
// Tweens ([NewTweenPosition] and friends, via [gween]) and Tengo programs
// ([LoadTengoScript], with hot reload through [Engine.WatchScripts]) are
// scripts too.
//
// # Scene graph
//
// Game objects live in the engine's arena; parents and children are linked
// by index. World transforms are derived by walking the ancestor chain and
// world-space setters back-solve the local value. Reparenting that would
// create a cycle fails with [ErrCycle].
//
// # Drawing
//
// Each frame the [Camera] projects world-space objects, culls those outside
// the window, and the engine submits one [Sprite] per visible object to a
// [Renderer], ordered by draw order then creation sequence. Backends exist
// for ebiten ([EbitenRenderer]) and terminals ([TerminalRenderer], via
// tcell).
//
// Lifecycle events can be mirrored into a [Donburi] world with the
// canopy/ecs adapter.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package canopy
