// Package levels provides per-level route configuration: generation
// modes, theme presets, the policy resolver that merges level overrides
// over defaults, and the designer tooling built on top (validation,
// previews, test matrices, export/import).
package levels

import "fmt"

// Mode selects the route generation strategy for a level.
type Mode string

const (
	// ModeStatic replays the waypoints configured for the level.
	ModeStatic Mode = "static"
	// ModeDynamic generates the route procedurally from scratch.
	ModeDynamic Mode = "dynamic"
	// ModeHybrid uses configured waypoints as anchors and varies the
	// route between them.
	ModeHybrid Mode = "hybrid"
)

// AllModes lists every generation mode in a stable order.
func AllModes() []Mode {
	return []Mode{ModeStatic, ModeDynamic, ModeHybrid}
}

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStatic, ModeDynamic, ModeHybrid:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown path mode %q", s)
	}
}
