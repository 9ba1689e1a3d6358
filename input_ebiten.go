package canopy

import "github.com/hajimehoshi/ebiten/v2"

// EbitenInput maps controls to keyboard keys, mouse buttons, and standard
// gamepad buttons. A control is active when any of its bindings is pressed.
type EbitenInput struct {
	keys    map[Control][]ebiten.Key
	mouse   map[Control][]ebiten.MouseButton
	gamepad map[Control][]ebiten.StandardGamepadButton
	order   []Control
}

// NewEbitenInput returns an input source with no bindings.
func NewEbitenInput() *EbitenInput {
	return &EbitenInput{
		keys:    make(map[Control][]ebiten.Key),
		mouse:   make(map[Control][]ebiten.MouseButton),
		gamepad: make(map[Control][]ebiten.StandardGamepadButton),
	}
}

func (in *EbitenInput) track(c Control) {
	for _, o := range in.order {
		if o == c {
			return
		}
	}
	in.order = append(in.order, c)
}

// BindKey maps keys to c.
func (in *EbitenInput) BindKey(c Control, keys ...ebiten.Key) *EbitenInput {
	in.track(c)
	in.keys[c] = append(in.keys[c], keys...)
	return in
}

// BindMouse maps mouse buttons to c.
func (in *EbitenInput) BindMouse(c Control, buttons ...ebiten.MouseButton) *EbitenInput {
	in.track(c)
	in.mouse[c] = append(in.mouse[c], buttons...)
	return in
}

// BindGamepad maps standard gamepad buttons to c. Every connected gamepad
// is checked.
func (in *EbitenInput) BindGamepad(c Control, buttons ...ebiten.StandardGamepadButton) *EbitenInput {
	in.track(c)
	in.gamepad[c] = append(in.gamepad[c], buttons...)
	return in
}

// Bound returns every control with at least one binding.
func (in *EbitenInput) Bound() []Control { return in.order }

// Active reports whether any binding of c is pressed.
func (in *EbitenInput) Active(c Control) bool {
	for _, k := range in.keys[c] {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	for _, b := range in.mouse[c] {
		if ebiten.IsMouseButtonPressed(b) {
			return true
		}
	}
	if buttons := in.gamepad[c]; len(buttons) > 0 {
		for _, id := range ebiten.AppendGamepadIDs(nil) {
			for _, b := range buttons {
				if ebiten.IsStandardGamepadButtonPressed(id, b) {
					return true
				}
			}
		}
	}
	return false
}
