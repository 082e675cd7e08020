package validate

import (
	"fmt"
	"math"

	"github.com/vovakirdan/pathforge/internal/geom"
)

// LengthRules bounds the total path length. A path whose length falls
// within WarningMargin (a fraction of the bound) of either limit passes
// with a warning.
type LengthRules struct {
	Min           float64 `yaml:"min"`
	Max           float64 `yaml:"max"`
	WarningMargin float64 `yaml:"warning_margin"`
}

// TurnRules bounds per-vertex turn angles, in radians.
type TurnRules struct {
	Max           float64 `yaml:"max"`             // Hard limit per vertex
	SharpAngle    float64 `yaml:"sharp_angle"`     // Threshold counted as "sharp"
	MaxSharpTurns int     `yaml:"max_sharp_turns"` // Warn above this many sharp turns
}

// SegmentRules bounds individual segment lengths.
type SegmentRules struct {
	MinLength float64 `yaml:"min_length"`
	MaxLength float64 `yaml:"max_length"`
}

// Rules is the full structural rule set used by ValidatePathStructure.
type Rules struct {
	Length  LengthRules  `yaml:"length"`
	Turn    TurnRules    `yaml:"turn"`
	Segment SegmentRules `yaml:"segment"`
}

// DefaultRules returns the structural rules applied when a level does
// not override them.
func DefaultRules() Rules {
	return Rules{
		Length: LengthRules{
			Min:           250,
			Max:           4000,
			WarningMargin: 0.1,
		},
		Turn: TurnRules{
			Max:           135 * math.Pi / 180,
			SharpAngle:    90 * math.Pi / 180,
			MaxSharpTurns: 6,
		},
		Segment: SegmentRules{
			MinLength: 10,
			MaxLength: 300,
		},
	}
}

// Result carries the outcome of a structural validation pass.
// A path is structurally valid iff Errors is empty.
type Result struct {
	Errors   []string
	Warnings []string
}

// IsValid reports whether the path passed every hard constraint.
func (r Result) IsValid() bool {
	return len(r.Errors) == 0
}

// ValidatePathStructure checks a path against the structural rules, in
// order: arity, total length, per-vertex turn angle, per-segment length.
// It never mutates the path and is safe to call repeatedly.
func ValidatePathStructure(p geom.Path, rules Rules) Result {
	var res Result

	if len(p) < 2 {
		res.Errors = append(res.Errors, fmt.Sprintf("path needs at least 2 waypoints, got %d", len(p)))
		return res
	}

	total := PathLength(p)
	switch {
	case total < rules.Length.Min:
		res.Errors = append(res.Errors, fmt.Sprintf("path length %.1f below minimum %.1f", total, rules.Length.Min))
	case total > rules.Length.Max:
		res.Errors = append(res.Errors, fmt.Sprintf("path length %.1f above maximum %.1f", total, rules.Length.Max))
	case total < rules.Length.Min*(1+rules.Length.WarningMargin):
		res.Warnings = append(res.Warnings, fmt.Sprintf("path length %.1f close to minimum %.1f", total, rules.Length.Min))
	case total > rules.Length.Max*(1-rules.Length.WarningMargin):
		res.Warnings = append(res.Warnings, fmt.Sprintf("path length %.1f close to maximum %.1f", total, rules.Length.Max))
	}

	sharp := 0
	for i, a := range TurnAngles(p) {
		abs := math.Abs(a)
		if abs > rules.Turn.Max {
			res.Errors = append(res.Errors, fmt.Sprintf("turn at vertex %d is %.1f°, exceeds %.1f°",
				i+1, abs*180/math.Pi, rules.Turn.Max*180/math.Pi))
		}
		if abs > rules.Turn.SharpAngle {
			sharp++
		}
	}
	if rules.Turn.MaxSharpTurns > 0 && sharp > rules.Turn.MaxSharpTurns {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d sharp turns, more than %d", sharp, rules.Turn.MaxSharpTurns))
	}

	for i, seg := range SegmentLengths(p) {
		if seg < rules.Segment.MinLength {
			res.Errors = append(res.Errors, fmt.Sprintf("segment %d length %.1f below minimum %.1f", i, seg, rules.Segment.MinLength))
		} else if seg > rules.Segment.MaxLength {
			res.Warnings = append(res.Warnings, fmt.Sprintf("segment %d length %.1f above %.1f", i, seg, rules.Segment.MaxLength))
		}
	}

	return res
}
