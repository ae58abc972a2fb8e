package sequence

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// clamp01 clamps x in [0,1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// smootherstep (cubic-ish) for ease="cubic"
func smootherstep(x float64) float64 {
	// 6x^5 - 15x^4 + 10x^3
	return x * x * x * (x*(x*6-15) + 10)
}

func easeApply(kind string, x float64) float64 {
	switch kind {
	case "smooth":
		// classic smoothstep 3x^2 - 2x^3
		return x * x * (3 - 2*x)
	case "cubic":
		return smootherstep(x)
	default:
		return x
	}
}

// Eval returns the value of the envelope at time t (seconds).
// If there are no keys, returns 0; if one key, returns its value.
// Keys must be sorted by T ascending.
func (e Envelope) Eval(t float64) float64 {
	n := len(e.Keys)
	if n == 0 {
		return 0
	}
	if t <= e.Keys[0].T {
		return e.Keys[0].V
	}
	if t >= e.Keys[n-1].T {
		return e.Keys[n-1].V
	}
	// first key strictly after t
	i := sort.Search(n, func(i int) bool { return e.Keys[i].T > t })
	a, b := e.Keys[i-1], e.Keys[i]
	den := b.T - a.T
	if den <= 0 {
		return b.V
	}
	u := easeApply(a.Ease, clamp01((t-a.T)/den))
	return a.V + (b.V-a.V)*u
}

// BoolEval thresholds the envelope at 0.5 into a boolean.
func (e Envelope) BoolEval(t float64) bool {
	return e.Eval(t) >= 0.5
}

// UnmarshalYAML reads a keyframe list, or a single number for a constant.
func (e *Envelope) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := n.Decode(&v); err != nil {
			return fmt.Errorf("envelope: %w", err)
		}
		e.Keys = []Keyframe{{T: 0, V: v}}
		return nil
	case yaml.SequenceNode:
		var keys []Keyframe
		if err := n.Decode(&keys); err != nil {
			return fmt.Errorf("envelope: %w", err)
		}
		sort.SliceStable(keys, func(i, j int) bool { return keys[i].T < keys[j].T })
		e.Keys = keys
		return nil
	default:
		return fmt.Errorf("envelope: line %d: want a number or a list of keyframes", n.Line)
	}
}

// MarshalYAML writes the keyframe list.
func (e Envelope) MarshalYAML() (interface{}, error) {
	return e.Keys, nil
}
