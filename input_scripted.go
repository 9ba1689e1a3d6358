package canopy

import (
	"encoding/json"
	"fmt"
)

// inputStep is a single action in an input script.
type inputStep struct {
	Action  string  `json:"action"`
	Control Control `json:"control,omitempty"`
	Frames  int     `json:"frames,omitempty"`
}

// inputScript is the top-level JSON structure of an input script.
type inputScript struct {
	Steps []inputStep `json:"steps"`
}

// ScriptedInput replays a JSON input script, one step per frame, for
// automated runs and tests. Actions: "press" and "release" change a
// control's level, "tap" presses for exactly one frame, and "wait" holds
// the current state for the given number of frames.
type ScriptedInput struct {
	steps     []inputStep
	cursor    int
	waitCount int
	active    map[Control]bool
	tapped    []Control
	bound     []Control
	done      bool
}

// LoadInputScript parses a JSON input script.
func LoadInputScript(jsonData []byte) (*ScriptedInput, error) {
	var script inputScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("canopy: parse input script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("canopy: parse input script: no steps")
	}
	in := &ScriptedInput{steps: script.Steps, active: make(map[Control]bool)}
	seen := make(map[Control]bool)
	for i, st := range script.Steps {
		switch st.Action {
		case "press", "release", "tap":
			if st.Control == "" {
				return nil, fmt.Errorf("canopy: parse input script: step %d: %q needs a control", i, st.Action)
			}
			if !seen[st.Control] {
				seen[st.Control] = true
				in.bound = append(in.bound, st.Control)
			}
		case "wait":
		default:
			return nil, fmt.Errorf("canopy: parse input script: step %d: unknown action %q", i, st.Action)
		}
	}
	return in, nil
}

// Active reports the scripted level of c.
func (in *ScriptedInput) Active(c Control) bool { return in.active[c] }

// Bound returns every control the script mentions.
func (in *ScriptedInput) Bound() []Control { return in.bound }

// Done reports whether every step has been executed.
func (in *ScriptedInput) Done() bool { return in.done }

// Step advances the script by one frame. Controls polls it automatically.
func (in *ScriptedInput) Step() {
	for _, c := range in.tapped {
		in.active[c] = false
	}
	in.tapped = in.tapped[:0]

	if in.done {
		return
	}
	// Count down wait frames.
	if in.waitCount > 0 {
		in.waitCount--
		in.checkDone()
		return
	}
	if in.cursor >= len(in.steps) {
		in.done = true
		return
	}

	st := in.steps[in.cursor]
	in.cursor++

	switch st.Action {
	case "press":
		in.active[st.Control] = true
	case "release":
		in.active[st.Control] = false
	case "tap":
		in.active[st.Control] = true
		in.tapped = append(in.tapped, st.Control)
	case "wait":
		if st.Frames > 0 {
			in.waitCount = st.Frames - 1 // this frame counts as one
		}
	}
	in.checkDone()
}

func (in *ScriptedInput) checkDone() {
	if in.cursor >= len(in.steps) && in.waitCount == 0 && len(in.tapped) == 0 {
		in.done = true
	}
}
