package levels

import (
	"fmt"
	"math"

	"github.com/vovakirdan/pathforge/internal/geom"
	"github.com/vovakirdan/pathforge/internal/validate"
)

// redundantPointDist is the spacing below which two consecutive
// waypoints are considered duplicates worth removing.
const redundantPointDist = 2.0

// ValidationResult aggregates structural, balance and level-specific
// checks into one designer-facing outcome.
type ValidationResult struct {
	IsValid              bool
	Errors               []string
	Warnings             []string
	BalanceScore         float64
	ConstraintViolations []string
	Recommendations      []string
}

// Preservation resolves per-level policy and wraps the validator and
// balance checker into level-aware designer tooling.
type Preservation struct {
	table   *Table
	canvas  geom.Bounds
	balance *validate.BalanceChecker
}

// NewPreservation creates the designer tooling facade for a canvas.
func NewPreservation(table *Table, canvas geom.Bounds) *Preservation {
	if table == nil {
		table = NewTable()
	}
	return &Preservation{
		table:   table,
		canvas:  canvas,
		balance: validate.NewBalanceChecker(canvas),
	}
}

// Table returns the underlying level configuration table.
func (p *Preservation) Table() *Table { return p.table }

// RulesFor derives the structural rules for a level from its policy.
func (p *Preservation) RulesFor(levelID int) validate.Rules {
	policy := p.table.Resolve(levelID)
	rules := validate.DefaultRules()
	if policy.Constraints.MaxTurnAngleDeg > 0 {
		rules.Turn.Max = policy.Constraints.MaxTurnAngleDeg * math.Pi / 180
	}
	if policy.Constraints.MinSegmentLength > 0 {
		rules.Segment.MinLength = policy.Constraints.MinSegmentLength
	}
	return rules
}

// ValidatePathForLevel runs structural validation, balance scoring and
// the level-specific constraint checks, synthesizing human-readable
// recommendations. It has no hidden state: calling it twice on the same
// path and level returns identical results.
func (p *Preservation) ValidatePathForLevel(path geom.Path, levelID int, mode Mode) ValidationResult {
	policy := p.table.Resolve(levelID)
	rules := p.RulesFor(levelID)

	res := ValidationResult{}
	structural := validate.ValidatePathStructure(path, rules)
	res.Errors = append(res.Errors, structural.Errors...)
	res.Warnings = append(res.Warnings, structural.Warnings...)

	if len(path) >= 2 {
		breakdown := p.balance.ScoreTarget(path, policy.DifficultyTarget(levelID))
		res.BalanceScore = breakdown.Total
		res.Warnings = append(res.Warnings, breakdown.Warnings...)

		complexity := validate.Complexity(path)
		if policy.Constraints.MaxComplexity > 0 && complexity > policy.Constraints.MaxComplexity {
			res.ConstraintViolations = append(res.ConstraintViolations,
				fmt.Sprintf("complexity %.2f exceeds level maximum %.2f", complexity, policy.Constraints.MaxComplexity))
		}
		if mode == ModeStatic && policy.PreserveLayout && len(policy.StaticWaypoints) >= 2 {
			if len(path) != len(policy.StaticWaypoints) {
				res.ConstraintViolations = append(res.ConstraintViolations,
					"path deviates from the preserved static layout")
			}
		}
	}

	res.Recommendations = p.recommend(path, structural, res.ConstraintViolations)
	res.IsValid = len(res.Errors) == 0 && len(res.ConstraintViolations) == 0
	return res
}

// recommend turns raised warnings into concrete designer actions.
func (p *Preservation) recommend(path geom.Path, structural validate.Result, violations []string) []string {
	var recs []string

	sharp := 0
	for _, a := range validate.TurnAngles(path) {
		if math.Abs(a) > math.Pi/2 {
			sharp++
		}
	}
	if sharp > 2 {
		recs = append(recs, "apply a smoothing pass to soften sharp turns")
	}

	short := 0
	redundant := 0
	for _, seg := range validate.SegmentLengths(path) {
		if seg < redundantPointDist {
			redundant++
		} else if seg < 25 {
			short++
		}
	}
	if redundant > 0 {
		recs = append(recs, fmt.Sprintf("remove %d redundant waypoint(s) closer than %.0f units", redundant, redundantPointDist))
	}
	if short > 1 {
		recs = append(recs, "increase waypoint spacing: several segments are very short")
	}

	if len(structural.Errors) > 0 {
		recs = append(recs, "regenerate: structural constraints cannot be fixed by tweaks alone")
	}
	for range violations {
		recs = append(recs, "relax the level constraints or regenerate with a calmer theme")
		break
	}
	return recs
}

// SetGenerationEnabled toggles procedural generation for a level.
func (p *Preservation) SetGenerationEnabled(levelID int, enabled bool) {
	p.table.SetGenerationEnabled(levelID, enabled)
}

// SetPreserveLayout pins or unpins a level to its static layout.
func (p *Preservation) SetPreserveLayout(levelID int, preserve bool) {
	p.table.SetPreserveLayout(levelID, preserve)
}

// LevelSnapshot is the plain-data export of one level's configuration.
type LevelSnapshot struct {
	LevelID int         `yaml:"level_id"`
	Policy  LevelPolicy `yaml:"policy"`
}

// ExportLevelConfiguration yields the resolved configuration of a level
// as plain data.
func (p *Preservation) ExportLevelConfiguration(levelID int) LevelSnapshot {
	return LevelSnapshot{
		LevelID: levelID,
		Policy:  p.table.Resolve(levelID),
	}
}

// ImportLevelConfiguration restores a level's configuration from a
// snapshot, installing it as a full override.
func (p *Preservation) ImportLevelConfiguration(snap LevelSnapshot) error {
	if snap.LevelID < 0 {
		return fmt.Errorf("negative level id %d", snap.LevelID)
	}
	pol := snap.Policy
	waypoints := make([]WaypointYAML, 0, len(pol.StaticWaypoints))
	for _, w := range pol.StaticWaypoints {
		waypoints = append(waypoints, WaypointYAML{X: w.X, Y: w.Y})
	}
	constraints := pol.Constraints
	p.table.SetOverride(snap.LevelID, Override{
		PathMode:         &pol.PathMode,
		AllowGeneration:  &pol.AllowGeneration,
		PreserveLayout:   &pol.PreserveLayout,
		StaticWaypoints:  waypoints,
		Constraints:      &constraints,
		TargetDifficulty: &pol.TargetDifficulty,
		Theme:            &pol.Theme,
		BalanceEnabled:   &pol.BalanceEnabled,
		BalanceThreshold: &pol.BalanceThreshold,
	})
	return nil
}
