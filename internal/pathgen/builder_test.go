package pathgen

import (
	"errors"
	"math"
	"testing"

	"github.com/vovakirdan/pathforge/internal/geom"
	"github.com/vovakirdan/pathforge/internal/levels"
)

func testTheme() levels.ThemeConfig {
	return levels.ThemeConfig{StraightBias: 0.6, CurveComplexity: 0.4, PathWidth: 40}
}

func testPlayable() geom.Bounds {
	return geom.Bounds{MaxX: 1200, MaxY: 600}.Inset(EdgeInset)
}

func inBounds(t *testing.T, b geom.Bounds, p geom.Path) {
	t.Helper()
	for i, w := range p {
		if !b.Contains(w) {
			t.Fatalf("waypoint %d (%.1f, %.1f) outside playable bounds", i, w.X, w.Y)
		}
	}
}

func TestBuildEndpoints(t *testing.T) {
	playable := testPlayable()
	entry := geom.Waypoint{X: playable.MinX, Y: 300}
	exit := geom.Waypoint{X: playable.MaxX, Y: 300}

	b := NewBuilder(playable, testTheme(), NewRand(1, 1), 250)
	path, capped, err := b.Build(entry, exit, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if capped {
		t.Error("walk across a 1200x600 canvas should not hit the iteration cap")
	}
	if len(path) < 2 {
		t.Fatalf("path has %d waypoints, need at least 2", len(path))
	}
	if path[0] != entry {
		t.Errorf("path starts at %v, expected entry %v", path[0], entry)
	}
	if path[len(path)-1] != exit {
		t.Errorf("path ends at %v, expected exit %v", path[len(path)-1], exit)
	}
	inBounds(t, playable, path)
}

func TestBuildDeterministic(t *testing.T) {
	playable := testPlayable()
	entry := geom.Waypoint{X: playable.MinX, Y: 275}
	exit := geom.Waypoint{X: playable.MaxX, Y: 275}

	build := func() geom.Path {
		b := NewBuilder(playable, testTheme(), NewRand(42, 3), 250)
		path, _, err := b.Build(entry, exit, nil)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		return path
	}

	a := build()
	c := build()
	if len(a) != len(c) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(c))
	}
	for i := range a {
		if a[i] != c[i] {
			t.Fatalf("paths diverged at waypoint %d: %v vs %v", i, a[i], c[i])
		}
	}
}

func TestBuildIterationCap(t *testing.T) {
	playable := testPlayable()
	entry := geom.Waypoint{X: playable.MinX, Y: 300}
	exit := geom.Waypoint{X: playable.MaxX, Y: 300}

	// A 2-iteration cap cannot cover the canvas, so the walk reports a
	// capped partial result with the exit still appended.
	b := NewBuilder(playable, testTheme(), NewRand(1, 1), 2)
	path, capped, err := b.Build(entry, exit, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !capped {
		t.Error("expected the iteration cap to be hit")
	}
	if path[len(path)-1] != exit {
		t.Error("capped walk should still end at the exit")
	}
}

func TestBuildStepAbort(t *testing.T) {
	playable := testPlayable()
	entry := geom.Waypoint{X: playable.MinX, Y: 300}
	exit := geom.Waypoint{X: playable.MaxX, Y: 300}

	sentinel := errors.New("stop")
	b := NewBuilder(playable, testTheme(), NewRand(1, 1), 250)
	_, _, err := b.Build(entry, exit, func(iter int) error {
		if iter >= 1 {
			return sentinel
		}
		return nil
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel abort error, got %v", err)
	}
}

func TestAddVariationsPreservesEndpoints(t *testing.T) {
	playable := testPlayable()
	b := NewBuilder(playable, testTheme(), NewRand(9, 2), 250)

	p := geom.Path{
		{X: 50, Y: 300}, {X: 400, Y: 260}, {X: 800, Y: 330}, {X: 1150, Y: 300},
	}
	out := b.AddVariations(p)

	if out[0] != p[0] || out[len(out)-1] != p[len(p)-1] {
		t.Error("variations must not move the endpoints")
	}
	if len(out) < len(p) {
		t.Errorf("variations shrank the path: %d -> %d", len(p), len(out))
	}
	inBounds(t, playable, out)
}

func TestAddVariationsZeroComplexity(t *testing.T) {
	theme := testTheme()
	theme.CurveComplexity = 0
	b := NewBuilder(testPlayable(), theme, NewRand(9, 2), 250)

	p := geom.Path{{X: 50, Y: 300}, {X: 1150, Y: 300}}
	out := b.AddVariations(p)
	if len(out) != len(p) {
		t.Errorf("zero complexity should insert nothing, got %d waypoints", len(out))
	}
}

func TestSmoothPreservesEndpoints(t *testing.T) {
	b := NewBuilder(testPlayable(), testTheme(), NewRand(1, 1), 250)

	p := geom.Path{
		{X: 50, Y: 300}, {X: 300, Y: 100}, {X: 600, Y: 500}, {X: 900, Y: 120}, {X: 1150, Y: 300},
	}
	out := b.Smooth(p, 1.0)

	if out[0] != p[0] || out[len(out)-1] != p[len(p)-1] {
		t.Error("smoothing must keep the endpoints exact")
	}
	if len(out) != len(p) {
		t.Errorf("smoothing changed the waypoint count: %d -> %d", len(p), len(out))
	}

	// Full-intensity smoothing pulls an interior zigzag point toward its
	// neighbors, so its offset from the straight baseline shrinks.
	before := math.Abs(p[2].Y - 300)
	after := math.Abs(out[2].Y - 300)
	if after >= before {
		t.Errorf("smoothing did not reduce the excursion: %.1f -> %.1f", before, after)
	}
}

func TestSmoothZeroIntensityIsIdentity(t *testing.T) {
	b := NewBuilder(testPlayable(), testTheme(), NewRand(1, 1), 250)
	p := geom.Path{{X: 50, Y: 300}, {X: 600, Y: 100}, {X: 1150, Y: 300}}
	out := b.Smooth(p, 0)
	for i := range p {
		if out[i] != p[i] {
			t.Fatalf("zero intensity changed waypoint %d", i)
		}
	}
}
