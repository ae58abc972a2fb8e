package ws

import (
	"fmt"
	"sort"

	diag "github.com/coreman2200/funtimes-embers/internal/diagnostics"
)

// LaunchMsg fires one emitter. Missing coordinates mean a random point.
type LaunchMsg struct {
	Effect string   `json:"effect"`
	Preset string   `json:"preset,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Z      *float64 `json:"z,omitempty"`
}

func (m LaunchMsg) at() *[3]float64 {
	if m.X == nil && m.Y == nil && m.Z == nil {
		return nil
	}
	var p [3]float64
	for i, v := range []*float64{m.X, m.Y, m.Z} {
		if v != nil {
			p[i] = *v
		}
	}
	return &p
}

// ControlMsg is one message on /control. Any combination of fields may be
// set; they are applied in field order.
type ControlMsg struct {
	Effect  string             `json:"effect,omitempty"`
	Preset  string             `json:"preset,omitempty"`
	Param   map[string]float64 `json:"param,omitempty"`
	Bool    map[string]bool    `json:"bool,omitempty"`
	Launch  *LaunchMsg         `json:"launch,omitempty"`
	Show    string             `json:"show,omitempty"`
	RunTest string             `json:"runTest,omitempty"`
}

func (h *Hub) apply(msg ControlMsg) []diag.Diagnostic {
	if h.Ctl == nil {
		return []diag.Diagnostic{{Severity: diag.Err, Code: "CONTROL.UNAVAILABLE", Summary: "no controller"}}
	}
	var out []diag.Diagnostic
	if msg.Effect != "" {
		err := h.Ctl.SetEffect(msg.Effect, msg.Preset)
		out = append(out, diag.FromError("EFFECT.SET", fmt.Sprintf("effect %s %s", msg.Effect, msg.Preset), err))
	}
	if len(msg.Param) > 0 {
		for _, k := range sortedKeys(msg.Param) {
			h.Ctl.SetParam(k, msg.Param[k])
		}
		out = append(out, diag.Diagnostic{
			Severity: diag.Info, Code: "PARAM.SET", Summary: "params updated",
			Evidence: map[string]any{"param": msg.Param},
		})
	}
	if len(msg.Bool) > 0 {
		for _, k := range sortedKeys(msg.Bool) {
			h.Ctl.SetBool(k, msg.Bool[k])
		}
		out = append(out, diag.Diagnostic{
			Severity: diag.Info, Code: "BOOL.SET", Summary: "bools updated",
			Evidence: map[string]any{"bool": msg.Bool},
		})
	}
	if l := msg.Launch; l != nil {
		err := h.Ctl.Launch(l.Effect, l.Preset, l.at())
		out = append(out, diag.FromError("LAUNCH", "launched "+l.Effect, err))
	}
	if msg.Show != "" {
		out = append(out, diag.FromError("SHOW", "show "+msg.Show, h.Ctl.Show(msg.Show)))
	}
	if msg.RunTest != "" {
		d := diag.FromError("TEST.RUNNING", "Running test", h.Ctl.RunTest(msg.RunTest))
		d.Detail = msg.RunTest
		if d.Severity == diag.Err {
			d.Code = "TEST.UNKNOWN"
			d.SuggestedFixes = []string{"use one of index_sweep, rgb_channels, plane_z"}
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		out = append(out, diag.Diagnostic{Severity: diag.Warn, Code: "CONTROL.EMPTY", Summary: "nothing to apply"})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
