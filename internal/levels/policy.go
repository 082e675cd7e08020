package levels

import (
	"sort"
	"sync"

	"github.com/vovakirdan/pathforge/internal/geom"
	"github.com/vovakirdan/pathforge/internal/validate"
)

// Constraints are the level-specific tightenings applied on top of the
// structural defaults. Angles are configured in degrees.
type Constraints struct {
	MaxTurnAngleDeg  float64 `yaml:"max_turn_angle_deg"`
	MinSegmentLength float64 `yaml:"min_segment_length"`
	MaxComplexity    float64 `yaml:"max_complexity"`
}

// LevelPolicy is the fully resolved route policy for one level. Values
// are immutable once resolved; Resolve returns a fresh copy each call.
type LevelPolicy struct {
	PathMode         Mode        `yaml:"path_mode"`
	AllowGeneration  bool        `yaml:"allow_generation"`
	PreserveLayout   bool        `yaml:"preserve_layout"`
	StaticWaypoints  geom.Path   `yaml:"static_waypoints,omitempty"`
	Constraints      Constraints `yaml:"constraints"`
	TargetDifficulty float64     `yaml:"target_difficulty"` // 0 = follow the progression curve
	Theme            string      `yaml:"theme"`
	BalanceEnabled   bool        `yaml:"balance_enabled"`
	BalanceThreshold float64     `yaml:"balance_threshold"`
}

// DifficultyTarget returns the policy's configured difficulty target,
// or the level progression curve when the policy leaves it unset.
func (p LevelPolicy) DifficultyTarget(levelID int) float64 {
	if p.TargetDifficulty > 0 {
		return p.TargetDifficulty
	}
	return validate.TargetDifficulty(levelID)
}

// Override holds the optional per-level deviations from the defaults.
// Nil fields inherit the default value during Resolve.
type Override struct {
	PathMode         *Mode          `yaml:"path_mode,omitempty"`
	AllowGeneration  *bool          `yaml:"allow_generation,omitempty"`
	PreserveLayout   *bool          `yaml:"preserve_layout,omitempty"`
	StaticWaypoints  []WaypointYAML `yaml:"static_waypoints,omitempty"`
	Constraints      *Constraints   `yaml:"constraints,omitempty"`
	TargetDifficulty *float64       `yaml:"target_difficulty,omitempty"`
	Theme            *string        `yaml:"theme,omitempty"`
	BalanceEnabled   *bool          `yaml:"balance_enabled,omitempty"`
	BalanceThreshold *float64       `yaml:"balance_threshold,omitempty"`
}

// WaypointYAML is the on-disk form of a configured waypoint.
type WaypointYAML struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// DefaultPolicy returns the base policy every level starts from.
func DefaultPolicy() LevelPolicy {
	return LevelPolicy{
		PathMode:        ModeDynamic,
		AllowGeneration: true,
		PreserveLayout:  false,
		Constraints: Constraints{
			MaxTurnAngleDeg:  135,
			MinSegmentLength: 10,
			MaxComplexity:    0.85,
		},
		Theme:            "classic",
		BalanceEnabled:   true,
		BalanceThreshold: 0.8,
	}
}

// Table holds the level configuration: an immutable base default plus
// per-level overrides, and the theme presets. Designer tooling may
// toggle generation per level at runtime, so access is mutex-guarded.
type Table struct {
	mu        sync.RWMutex
	defaults  LevelPolicy
	overrides map[int]Override
	themes    map[string]ThemeConfig
}

// NewTable creates a table with built-in themes and no overrides.
func NewTable() *Table {
	return &Table{
		defaults:  DefaultPolicy(),
		overrides: make(map[int]Override),
		themes:    builtinThemes(),
	}
}

// Resolve merges the level's override over the defaults and returns the
// resulting policy. The merge is pure: it never mutates the table, and
// repeated calls return equal values.
func (t *Table) Resolve(levelID int) LevelPolicy {
	t.mu.RLock()
	defer t.mu.RUnlock()

	policy := t.defaults
	ov, ok := t.overrides[levelID]
	if !ok {
		return policy
	}
	return mergePolicy(policy, ov)
}

// mergePolicy applies every non-nil override field onto the base policy.
func mergePolicy(base LevelPolicy, ov Override) LevelPolicy {
	if ov.PathMode != nil {
		base.PathMode = *ov.PathMode
	}
	if ov.AllowGeneration != nil {
		base.AllowGeneration = *ov.AllowGeneration
	}
	if ov.PreserveLayout != nil {
		base.PreserveLayout = *ov.PreserveLayout
	}
	if len(ov.StaticWaypoints) > 0 {
		path := make(geom.Path, 0, len(ov.StaticWaypoints))
		for _, w := range ov.StaticWaypoints {
			path = append(path, geom.Waypoint{X: w.X, Y: w.Y})
		}
		base.StaticWaypoints = path
	}
	if ov.Constraints != nil {
		base.Constraints = *ov.Constraints
	}
	if ov.TargetDifficulty != nil {
		base.TargetDifficulty = *ov.TargetDifficulty
	}
	if ov.Theme != nil {
		base.Theme = *ov.Theme
	}
	if ov.BalanceEnabled != nil {
		base.BalanceEnabled = *ov.BalanceEnabled
	}
	if ov.BalanceThreshold != nil {
		base.BalanceThreshold = *ov.BalanceThreshold
	}

	// Preserving the layout pins the mode to static regardless of what
	// the override asked for.
	if base.PreserveLayout {
		base.PathMode = ModeStatic
	}
	return base
}

// SetOverride installs or replaces the override for a level.
func (t *Table) SetOverride(levelID int, ov Override) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.overrides[levelID] = ov
}

// SetGenerationEnabled toggles procedural generation for one level.
// Disabling generation forces the level onto its static layout; the
// policy flag always wins over missing static waypoints, which are then
// handled by the generator's fallback ladder.
func (t *Table) SetGenerationEnabled(levelID int, enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ov := t.overrides[levelID]
	ov.AllowGeneration = &enabled
	t.overrides[levelID] = ov
}

// SetPreserveLayout toggles the preserve-static-layout flag for a level.
func (t *Table) SetPreserveLayout(levelID int, preserve bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ov := t.overrides[levelID]
	ov.PreserveLayout = &preserve
	t.overrides[levelID] = ov
}

// OverriddenLevels returns the IDs that carry an override, sorted.
func (t *Table) OverriddenLevels() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]int, 0, len(t.overrides))
	for id := range t.overrides {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
