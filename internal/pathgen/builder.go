package pathgen

import (
	"math"

	"github.com/vovakirdan/pathforge/internal/geom"
	"github.com/vovakirdan/pathforge/internal/levels"
)

const (
	// headingBlendLimit is the maximum deviation of the walk heading
	// from the direct bearing to the exit before it is blended back.
	headingBlendLimit = 60 * math.Pi / 180

	// exitStopFactor stops the walk once the remaining distance drops
	// below this many base segment lengths; the exit is then appended.
	exitStopFactor = 2.0

	// Step length jitter around the base segment length.
	stepJitter = 0.15
)

// Builder produces a stochastic polyline from entry to exit. The walk
// generally progresses toward the exit while exhibiting theme-controlled
// waviness; all randomness comes from the seeded draw stream.
type Builder struct {
	playable    geom.Bounds
	theme       levels.ThemeConfig
	rng         *Rand
	baseSegment float64
	maxIters    int
}

// NewBuilder creates a builder confined to the playable (inset) bounds.
func NewBuilder(playable geom.Bounds, theme levels.ThemeConfig, rng *Rand, maxIters int) *Builder {
	base := math.Min(playable.Width(), playable.Height()) / 8
	base = geom.ClampF(base, 40, 120)
	return &Builder{
		playable:    playable,
		theme:       theme,
		rng:         rng,
		baseSegment: base,
		maxIters:    maxIters,
	}
}

// Build walks from entry to exit. onStep, when non-nil, is invoked once
// per iteration and may abort the walk by returning an error (used for
// cooperative cancellation). The second return value reports whether
// the iteration cap was hit, yielding a partial walk.
func (b *Builder) Build(entry, exit geom.Waypoint, onStep func(iter int) error) (geom.Path, bool, error) {
	path := geom.Path{entry}
	cur := entry
	heading := entry.BearingTo(exit)

	// Perturbation shrinks as straight bias approaches 1.
	maxPerturb := (1 - b.theme.StraightBias) * math.Pi / 3

	capped := true
	for iter := 0; iter < b.maxIters; iter++ {
		if onStep != nil {
			if err := onStep(iter); err != nil {
				return nil, false, err
			}
		}

		if cur.Dist(exit) <= exitStopFactor*b.baseSegment {
			capped = false
			break
		}

		perturb := (b.rng.Draw("heading", iter)*2 - 1) * maxPerturb
		heading += perturb

		direct := cur.BearingTo(exit)
		if dev := geom.WrapAngle(heading - direct); math.Abs(dev) > headingBlendLimit {
			// Blend back inside the cone around the direct bearing.
			heading = direct + math.Copysign(headingBlendLimit, dev)*0.5
		}

		step := b.baseSegment * (1 + (b.rng.Draw("step", iter)*2-1)*stepJitter)
		next := geom.Waypoint{
			X: cur.X + step*math.Cos(heading),
			Y: cur.Y + step*math.Sin(heading),
		}
		next = b.playable.Clamp(next)

		path = append(path, next)
		cur = next
	}

	path = append(path, exit)
	return path, capped, nil
}

// AddVariations probabilistically inserts a perpendicular-offset
// midpoint between consecutive segments. The insertion probability is
// the theme's curve complexity; the offset scales with segment length
// and path width. Endpoints are never touched.
func (b *Builder) AddVariations(p geom.Path) geom.Path {
	if len(p) < 2 || b.theme.CurveComplexity <= 0 {
		return p
	}

	out := make(geom.Path, 0, len(p)*2)
	for i := 0; i < len(p)-1; i++ {
		out = append(out, p[i])
		if b.rng.Draw("vary", i) >= b.theme.CurveComplexity {
			continue
		}

		a, c := p[i], p[i+1]
		segLen := a.Dist(c)
		if segLen == 0 {
			continue
		}
		mid := a.Lerp(c, 0.5)

		// Unit perpendicular of the segment direction.
		px := -(c.Y - a.Y) / segLen
		py := (c.X - a.X) / segLen
		offset := (b.rng.Draw("vary-offset", i)*2 - 1) * segLen * 0.5 * b.theme.CurveComplexity

		out = append(out, b.playable.Clamp(geom.Waypoint{
			X: mid.X + px*offset,
			Y: mid.Y + py*offset,
		}))
	}
	out = append(out, p[len(p)-1])
	return out
}

// Smooth applies a 3-point weighted (1:2:1) moving average, scaled by
// intensity in [0,1]. The two endpoints are always preserved exactly.
func (b *Builder) Smooth(p geom.Path, intensity float64) geom.Path {
	if len(p) < 3 || intensity <= 0 {
		return p
	}
	intensity = geom.ClampF(intensity, 0, 1)

	out := p.Clone()
	for i := 1; i < len(p)-1; i++ {
		avg := geom.Waypoint{
			X: (p[i-1].X + 2*p[i].X + p[i+1].X) / 4,
			Y: (p[i-1].Y + 2*p[i].Y + p[i+1].Y) / 4,
		}
		out[i] = p[i].Lerp(avg, intensity)
	}
	return out
}
