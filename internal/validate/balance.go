package validate

import (
	"math"

	"github.com/vovakirdan/pathforge/internal/geom"
)

// Score weighting and sub-score warning thresholds. The weights sum to 1.
const (
	coverageWeight   = 0.3
	varietyWeight    = 0.2
	difficultyWeight = 0.3
	strategicWeight  = 0.2

	coverageWarnBelow  = 0.5
	varietyWarnBelow   = 0.3
	difficultyWarnLow  = 0.4
	difficultyWarnHigh = 0.9
	strategicWarnBelow = 0.4

	// Distance references for coverage and strategic scoring.
	coverageSegmentRef = 200.0
	coverageEdgeRef    = 100.0
	chokeEdgeDist      = 100.0
	openEdgeDist       = 200.0

	chokeTargetRatio = 0.3
	openTargetRatio  = 0.4

	// DefaultBalanceThreshold is the minimum overall score a path must
	// reach to be accepted without a balance retry.
	DefaultBalanceThreshold = 0.8
)

// Breakdown is the per-term result of a balance scoring pass.
// Every field is within [0,1].
type Breakdown struct {
	Coverage   float64
	Variety    float64
	Difficulty float64
	Strategic  float64
	Total      float64
	Warnings   []string
}

// BalanceChecker scores structurally valid paths for gameplay fairness
// against a fixed canvas.
type BalanceChecker struct {
	canvas geom.Bounds
}

// NewBalanceChecker creates a checker for the given canvas bounds.
func NewBalanceChecker(canvas geom.Bounds) *BalanceChecker {
	return &BalanceChecker{canvas: canvas}
}

// TargetDifficulty returns the intended difficulty for a level,
// progressing from 0.3 at level 1 by 0.08 per level, capped at 0.95.
func TargetDifficulty(levelID int) float64 {
	return math.Min(0.95, 0.3+0.08*float64(levelID-1))
}

// Score computes the weighted balance score for a path at a given level,
// using the level progression curve as the difficulty target.
func (bc *BalanceChecker) Score(p geom.Path, levelID int) Breakdown {
	return bc.ScoreTarget(p, TargetDifficulty(levelID))
}

// ScoreTarget computes the weighted balance score against an explicit
// difficulty target in [0,1]. Level policies with a configured
// target_difficulty use this entry point.
// The result is always within [0,1] for any path with at least two points.
func (bc *BalanceChecker) ScoreTarget(p geom.Path, target float64) Breakdown {
	b := Breakdown{
		Coverage:   bc.coverage(p),
		Variety:    variety(p),
		Difficulty: difficulty(p, target),
		Strategic:  bc.strategicOptions(p),
	}
	b.Total = coverageWeight*b.Coverage +
		varietyWeight*b.Variety +
		difficultyWeight*b.Difficulty +
		strategicWeight*b.Strategic

	if b.Coverage < coverageWarnBelow {
		b.Warnings = append(b.Warnings, "low defensive coverage: towers cannot reach enough of the route")
	}
	if b.Variety < varietyWarnBelow {
		b.Warnings = append(b.Warnings, "low route variety: turns are too uniform")
	}
	if b.Difficulty < difficultyWarnLow || b.Difficulty > difficultyWarnHigh {
		b.Warnings = append(b.Warnings, "difficulty misaligned with level target")
	}
	if b.Strategic < strategicWarnBelow {
		b.Warnings = append(b.Warnings, "few strategic placement options along the route")
	}
	return b
}

// coverage measures how defensible the route is: shorter segments and
// segments running near a canvas edge are easier to cover with towers.
func (bc *BalanceChecker) coverage(p geom.Path) float64 {
	segs := SegmentLengths(p)
	if len(segs) == 0 {
		return 0
	}
	sum := 0.0
	for i, segLen := range segs {
		mid := p[i].Lerp(p[i+1], 0.5)
		lengthTerm := math.Max(0, 1-segLen/coverageSegmentRef)
		edgeTerm := math.Max(0, 1-bc.edgeDistance(mid)/coverageEdgeRef)
		sum += (lengthTerm + edgeTerm) / 2
	}
	return geom.ClampF(sum/float64(len(segs)), 0, 1)
}

// variety measures the spread of turn angles relative to π/4.
func variety(p geom.Path) float64 {
	turns := TurnAngles(p)
	if len(turns) == 0 {
		return 0
	}
	return geom.ClampF(geom.StdDev(turns)/(math.Pi/4), 0, 1)
}

// difficulty compares the path's geometric complexity against the
// requested difficulty target.
func difficulty(p geom.Path, target float64) float64 {
	return math.Max(0, 1-2*math.Abs(Complexity(p)-target))
}

// strategicOptions rewards routes whose waypoints offer a healthy mix of
// choke points (near an edge) and open areas (far from every edge).
func (bc *BalanceChecker) strategicOptions(p geom.Path) float64 {
	if len(p) == 0 {
		return 0
	}
	choke, open := 0, 0
	for _, w := range p {
		d := bc.edgeDistance(w)
		if d < chokeEdgeDist {
			choke++
		}
		if d >= openEdgeDist {
			open++
		}
	}
	n := float64(len(p))
	chokeTerm := math.Max(0, 1-2*math.Abs(float64(choke)/n-chokeTargetRatio))
	openTerm := math.Max(0, 1-2*math.Abs(float64(open)/n-openTargetRatio))
	return (chokeTerm + openTerm) / 2
}

// edgeDistance returns the distance from a point to the nearest canvas edge.
func (bc *BalanceChecker) edgeDistance(w geom.Waypoint) float64 {
	return math.Min(
		math.Min(w.X-bc.canvas.MinX, bc.canvas.MaxX-w.X),
		math.Min(w.Y-bc.canvas.MinY, bc.canvas.MaxY-w.Y),
	)
}
