package validate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/pathforge/internal/geom"
)

// zigzag builds a path of n segments of the given length, alternating
// heading by the given turn angle after every segment.
func zigzag(start geom.Waypoint, n int, segLen, turn float64) geom.Path {
	p := geom.Path{start}
	heading := 0.0
	cur := start
	for i := 0; i < n; i++ {
		cur = geom.Waypoint{
			X: cur.X + segLen*math.Cos(heading),
			Y: cur.Y + segLen*math.Sin(heading),
		}
		p = append(p, cur)
		if i%2 == 0 {
			heading += turn
		} else {
			heading -= turn
		}
	}
	return p
}

func TestValidatePathStructureArity(t *testing.T) {
	rules := DefaultRules()

	res := ValidatePathStructure(nil, rules)
	require.False(t, res.IsValid())
	assert.Contains(t, res.Errors[0], "at least 2 waypoints")

	res = ValidatePathStructure(geom.Path{{X: 100, Y: 100}}, rules)
	require.False(t, res.IsValid())
}

func TestValidatePathStructureLength(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name      string
		path      geom.Path
		wantValid bool
		wantWarn  bool
	}{
		{
			name:      "too short",
			path:      geom.Path{{X: 100, Y: 100}, {X: 180, Y: 100}},
			wantValid: false,
		},
		{
			name:      "comfortably inside bounds",
			path:      zigzag(geom.Waypoint{X: 100, Y: 300}, 10, 80, math.Pi/6),
			wantValid: true,
			wantWarn:  false,
		},
		{
			name:      "just above minimum warns",
			path:      geom.Path{{X: 100, Y: 100}, {X: 230, Y: 100}, {X: 360, Y: 100}},
			wantValid: true,
			wantWarn:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := ValidatePathStructure(tc.path, rules)
			assert.Equal(t, tc.wantValid, res.IsValid(), "errors: %v", res.Errors)
			if tc.wantWarn {
				assert.NotEmpty(t, res.Warnings)
			}
		})
	}
}

func TestValidatePathStructureTurnAngle(t *testing.T) {
	rules := DefaultRules()

	// A hairpin: the 160° turn at the middle vertex must be rejected.
	hairpin := geom.Path{
		{X: 100, Y: 300},
		{X: 400, Y: 300},
		{X: 120, Y: 320},
		{X: 400, Y: 340},
	}
	res := ValidatePathStructure(hairpin, rules)
	require.False(t, res.IsValid())
	assert.Contains(t, res.Errors[0], "turn at vertex")

	// Gentle 30° zigzag keeps every vertex under the 135° limit.
	gentle := zigzag(geom.Waypoint{X: 100, Y: 300}, 8, 100, math.Pi/6)
	res = ValidatePathStructure(gentle, rules)
	assert.True(t, res.IsValid(), "errors: %v", res.Errors)
}

// Any path accepted under default rules has no interior vertex turning
// more than 135 degrees.
func TestAcceptedPathTurnInvariant(t *testing.T) {
	rules := DefaultRules()
	paths := []geom.Path{
		zigzag(geom.Waypoint{X: 100, Y: 300}, 12, 60, math.Pi/5),
		zigzag(geom.Waypoint{X: 50, Y: 50}, 20, 40, math.Pi/8),
		{{X: 50, Y: 300}, {X: 350, Y: 300}, {X: 350, Y: 60}, {X: 650, Y: 60}},
	}

	for _, p := range paths {
		res := ValidatePathStructure(p, rules)
		if !res.IsValid() {
			continue
		}
		for _, a := range TurnAngles(p) {
			assert.LessOrEqual(t, math.Abs(a), rules.Turn.Max+1e-9)
		}
	}
}

func TestValidatePathStructureSegments(t *testing.T) {
	rules := DefaultRules()
	rules.Length.Min = 0

	tiny := geom.Path{{X: 100, Y: 100}, {X: 104, Y: 100}, {X: 300, Y: 100}}
	res := ValidatePathStructure(tiny, rules)
	require.False(t, res.IsValid())
	assert.Contains(t, res.Errors[0], "below minimum")

	long := geom.Path{{X: 100, Y: 100}, {X: 500, Y: 100}}
	res = ValidatePathStructure(long, rules)
	assert.True(t, res.IsValid())
	assert.NotEmpty(t, res.Warnings, "over-long segment should warn")
}

func TestValidateIsPure(t *testing.T) {
	rules := DefaultRules()
	p := zigzag(geom.Waypoint{X: 100, Y: 300}, 10, 80, math.Pi/6)
	before := p.Clone()

	first := ValidatePathStructure(p, rules)
	second := ValidatePathStructure(p, rules)

	assert.Equal(t, before, p, "validation must not mutate the path")
	assert.Equal(t, first, second)
}

func TestTurnAngles(t *testing.T) {
	// Right turn of 90° at the middle vertex.
	p := geom.Path{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	angles := TurnAngles(p)
	require.Len(t, angles, 1)
	assert.InDelta(t, math.Pi/2, angles[0], 1e-9)

	assert.Nil(t, TurnAngles(geom.Path{{X: 0, Y: 0}, {X: 1, Y: 1}}))
}

func TestComplexityBounds(t *testing.T) {
	paths := []geom.Path{
		{{X: 0, Y: 0}, {X: 100, Y: 0}},
		zigzag(geom.Waypoint{X: 0, Y: 0}, 15, 50, math.Pi/3),
		zigzag(geom.Waypoint{X: 0, Y: 0}, 30, 20, math.Pi/10),
	}
	for _, p := range paths {
		c := Complexity(p)
		assert.GreaterOrEqual(t, c, 0.0)
		assert.LessOrEqual(t, c, 1.0)
	}

	// A straight line with uniform segments has no spread at all.
	straight := geom.Path{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 100, Y: 0}, {X: 150, Y: 0}}
	assert.Zero(t, Complexity(straight))
}
