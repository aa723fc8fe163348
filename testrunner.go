package stagefx

import (
	"encoding/json"
	"fmt"
)

// scriptStep is a single action in a replay script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Text   string  `json:"text,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// script is the top-level JSON structure for a replay script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

var knownActions = map[string]bool{
	"wait": true, "resize": true, "enter": true, "move": true, "leave": true,
	"sweep": true, "text": true, "skip": true, "screenshot": true,
}

// ScriptHost is what a TestRunner drives. Nil members ignore the steps
// aimed at them.
type ScriptHost struct {
	Signals *SyntheticSignals
	Liquid  *LiquidText
	Intro   *IntroSequencer
	Shots   *Screenshotter
}

// TestRunner replays scripted resizes, pointer gestures, text changes, skips
// and screenshots one step per frame, for automated visual checks.
//
//	{"steps": [
//	  {"action": "resize", "width": 800, "height": 300},
//	  {"action": "sweep", "fromX": 100, "fromY": 150, "toX": 700, "toY": 150, "frames": 30},
//	  {"action": "screenshot", "label": "mid-sweep"},
//	  {"action": "wait", "frames": 10}
//	]}
type TestRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON replay script.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var sc script
	if err := json.Unmarshal(jsonData, &sc); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range sc.Steps {
		if !knownActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: sc.Steps}, nil
}

// Done reports whether all steps have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// Step advances the runner by one frame. Call it once per host update,
// before polling the host's signals.
func (r *TestRunner) Step(h ScriptHost) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if h.Signals != nil && h.Signals.Pending() > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		if h.Shots != nil {
			h.Shots.Queue(st.Label)
		}
	case "resize":
		if h.Signals != nil {
			h.Signals.InjectResize(st.Width, st.Height)
		}
	case "enter":
		if h.Signals != nil {
			h.Signals.InjectEnter(st.X, st.Y)
		}
	case "move":
		if h.Signals != nil {
			h.Signals.InjectMove(st.X, st.Y)
		}
	case "leave":
		if h.Signals != nil {
			h.Signals.InjectLeave()
		}
	case "sweep":
		if h.Signals != nil {
			h.Signals.InjectSweep(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
		}
	case "text":
		if h.Liquid != nil {
			h.Liquid.SetText(st.Text)
		}
	case "skip":
		if h.Intro != nil {
			h.Intro.Skip()
		}
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	pending := h.Signals != nil && h.Signals.Pending() > 0
	if r.cursor >= len(r.steps) && r.waitCount == 0 && !pending {
		r.done = true
	}
}
