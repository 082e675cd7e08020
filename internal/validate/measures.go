// Package validate provides structural validation and gameplay-balance
// scoring for generated enemy routes. Like geom, it stays free of UI
// dependencies so the checks remain pure and testable.
package validate

import (
	"math"

	"github.com/vovakirdan/pathforge/internal/geom"
)

// PathLength returns the total Euclidean length of the path.
func PathLength(p geom.Path) float64 {
	return p.Length()
}

// TurnAngles returns the signed turn angle at every interior vertex,
// wrapped to (-π, π]. A path with fewer than three points has no turns.
func TurnAngles(p geom.Path) []float64 {
	if len(p) < 3 {
		return nil
	}
	angles := make([]float64, 0, len(p)-2)
	for i := 1; i < len(p)-1; i++ {
		in := p[i-1].BearingTo(p[i])
		out := p[i].BearingTo(p[i+1])
		angles = append(angles, geom.WrapAngle(out-in))
	}
	return angles
}

// SegmentLengths returns the length of each consecutive segment.
func SegmentLengths(p geom.Path) []float64 {
	if len(p) < 2 {
		return nil
	}
	lengths := make([]float64, 0, len(p)-1)
	for i := 1; i < len(p); i++ {
		lengths = append(lengths, p[i-1].Dist(p[i]))
	}
	return lengths
}

// Complexity returns a [0,1] scalar describing how hard a path is to
// traverse and defend: the average of two clamped normalized spreads,
// turn-angle standard deviation (against π/2) and segment-length
// standard deviation (against the mean segment length).
func Complexity(p geom.Path) float64 {
	turns := TurnAngles(p)
	absTurns := make([]float64, len(turns))
	for i, a := range turns {
		absTurns[i] = math.Abs(a)
	}
	turnSpread := geom.ClampF(geom.StdDev(absTurns)/(math.Pi/2), 0, 1)

	segs := SegmentLengths(p)
	segSpread := 0.0
	if len(segs) > 0 {
		mean := 0.0
		for _, s := range segs {
			mean += s
		}
		mean /= float64(len(segs))
		if mean > 0 {
			segSpread = geom.ClampF(geom.StdDev(segs)/mean, 0, 1)
		}
	}

	return (turnSpread + segSpread) / 2
}
