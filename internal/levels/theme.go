package levels

import (
	"fmt"
	"sort"
)

// ThemeConfig is a named bundle of generation-bias parameters. Higher
// StraightBias produces straighter walks; higher CurveComplexity adds
// more perpendicular variation between segments.
type ThemeConfig struct {
	StraightBias    float64  `yaml:"straight_bias"`    // 0..1
	CurveComplexity float64  `yaml:"curve_complexity"` // 0..1
	PathWidth       float64  `yaml:"path_width"`       // 10..200 canvas units
	ObstacleTypes   []string `yaml:"obstacle_types,omitempty"`
}

// Validate checks the theme parameters against their documented ranges.
func (t ThemeConfig) Validate() error {
	if t.StraightBias < 0 || t.StraightBias > 1 {
		return fmt.Errorf("straight_bias %.2f outside [0,1]", t.StraightBias)
	}
	if t.CurveComplexity < 0 || t.CurveComplexity > 1 {
		return fmt.Errorf("curve_complexity %.2f outside [0,1]", t.CurveComplexity)
	}
	if t.PathWidth < 10 || t.PathWidth > 200 {
		return fmt.Errorf("path_width %.1f outside [10,200]", t.PathWidth)
	}
	return nil
}

// Built-in theme presets. A levels config file may override these or
// add new ones.
func builtinThemes() map[string]ThemeConfig {
	return map[string]ThemeConfig{
		"classic": {
			StraightBias:    0.6,
			CurveComplexity: 0.4,
			PathWidth:       40,
			ObstacleTypes:   []string{"rock", "tree"},
		},
		"cyber": {
			StraightBias:    0.8,
			CurveComplexity: 0.3,
			PathWidth:       30,
			ObstacleTypes:   []string{"firewall", "node"},
		},
		"forest": {
			StraightBias:    0.3,
			CurveComplexity: 0.7,
			PathWidth:       50,
			ObstacleTypes:   []string{"tree", "river", "boulder"},
		},
		"volcano": {
			StraightBias:    0.4,
			CurveComplexity: 0.6,
			PathWidth:       35,
			ObstacleTypes:   []string{"lava", "crater"},
		},
		"arctic": {
			StraightBias:    0.7,
			CurveComplexity: 0.5,
			PathWidth:       45,
			ObstacleTypes:   []string{"ice", "crevasse"},
		},
	}
}

// ThemeNames returns the known theme names in sorted order.
func (t *Table) ThemeNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.themes))
	for name := range t.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Theme looks up a theme preset by name.
func (t *Table) Theme(name string) (ThemeConfig, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cfg, ok := t.themes[name]
	return cfg, ok
}
