package pathgen

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/vovakirdan/pathforge/internal/geom"
	"github.com/vovakirdan/pathforge/internal/levels"
)

func newTestGenerator(t *testing.T, table *levels.Table) *Generator {
	t.Helper()
	g, err := NewGenerator(Config{
		CanvasWidth:  1200,
		CanvasHeight: 600,
		GridSize:     40,
	}, table)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	return g
}

func seedPtr(v int64) *int64 { return &v }

func TestNewGeneratorInputValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"canvas too narrow", Config{CanvasWidth: 100, CanvasHeight: 600, GridSize: 40}},
		{"canvas too short", Config{CanvasWidth: 1200, CanvasHeight: 50, GridSize: 40}},
		{"canvas too wide", Config{CanvasWidth: 20000, CanvasHeight: 600, GridSize: 40}},
		{"zero grid", Config{CanvasWidth: 1200, CanvasHeight: 600, GridSize: 0}},
		{"grid exceeds canvas", Config{CanvasWidth: 1200, CanvasHeight: 600, GridSize: 700}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(tt.cfg, nil)
			var ive *InputValidationError
			if !errors.As(err, &ive) {
				t.Fatalf("expected InputValidationError, got %v", err)
			}
		})
	}
}

func TestGenerateRequestValidation(t *testing.T) {
	g := newTestGenerator(t, nil)

	if _, err := g.Generate(Request{LevelID: -1, Seed: seedPtr(1)}); err == nil {
		t.Error("negative level id should fail")
	}
	if _, err := g.Generate(Request{LevelID: 1, Seed: seedPtr(1), Theme: "nope"}); err == nil {
		t.Error("unknown theme should fail")
	}
	if _, err := g.Generate(Request{LevelID: 1, Seed: seedPtr(1), Mode: levels.Mode("warp")}); err == nil {
		t.Error("unknown mode should fail")
	}
	bad := &levels.ThemeConfig{StraightBias: 2, CurveComplexity: 0.5, PathWidth: 40}
	if _, err := g.Generate(Request{LevelID: 1, Seed: seedPtr(1), CustomTheme: bad}); err == nil {
		t.Error("out-of-range custom theme should fail")
	}
}

// Construction never fails for a well-formed request: validation
// failures degrade to the fallback ladder instead of erroring out.
func TestGenerateAlwaysReturnsUsablePath(t *testing.T) {
	g := newTestGenerator(t, nil)

	for _, theme := range []string{"classic", "cyber", "forest", "volcano", "arctic"} {
		for _, mode := range levels.AllModes() {
			gp, err := g.Generate(Request{
				LevelID: 3, Seed: seedPtr(99), Theme: theme, Mode: mode,
			})
			if err != nil {
				t.Fatalf("%s/%s: %v", theme, mode, err)
			}
			if len(gp.Waypoints) < 2 {
				t.Fatalf("%s/%s: %d waypoints, need at least 2", theme, mode, len(gp.Waypoints))
			}
			for i, w := range gp.Waypoints {
				if !g.playable.Contains(w) {
					t.Fatalf("%s/%s: waypoint %d (%.1f, %.1f) outside playable area",
						theme, mode, i, w.X, w.Y)
				}
			}
		}
	}
}

func TestGenerateDeterministicAcrossInstances(t *testing.T) {
	run := func() *GeneratedPath {
		g := newTestGenerator(t, nil)
		gp, err := g.Generate(Request{
			LevelID: 1, Seed: seedPtr(42), Theme: "classic", Mode: levels.ModeDynamic,
		})
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		return gp
	}

	a := run()
	b := run()

	if len(a.Waypoints) != len(b.Waypoints) {
		t.Fatalf("waypoint counts differ: %d vs %d", len(a.Waypoints), len(b.Waypoints))
	}
	for i := range a.Waypoints {
		if a.Waypoints[i] != b.Waypoints[i] {
			t.Fatalf("waypoint %d differs: %v vs %v", i, a.Waypoints[i], b.Waypoints[i])
		}
	}
	if a.Meta.Seed != 42 || !a.Meta.SeedExplicit {
		t.Errorf("seed metadata = (%d, %v), expected (42, true)", a.Meta.Seed, a.Meta.SeedExplicit)
	}
	if a.Meta.RetryCount != b.Meta.RetryCount || a.Meta.IsFallback != b.Meta.IsFallback ||
		a.Meta.BalanceDegraded != b.Meta.BalanceDegraded {
		t.Error("retry/fallback metadata should be deterministic")
	}
	if a.Meta.TotalLength != b.Meta.TotalLength {
		t.Errorf("lengths differ: %f vs %f", a.Meta.TotalLength, b.Meta.TotalLength)
	}
}

func TestGenerateDifferentSeedsDiffer(t *testing.T) {
	g := newTestGenerator(t, nil)

	a, err := g.Generate(Request{LevelID: 1, Seed: seedPtr(1), Mode: levels.ModeDynamic})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := g.Generate(Request{LevelID: 1, Seed: seedPtr(2), Mode: levels.ModeDynamic})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	same := len(a.Waypoints) == len(b.Waypoints)
	if same {
		for i := range a.Waypoints {
			if a.Waypoints[i] != b.Waypoints[i] {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("different seeds produced identical paths")
	}
}

func TestGenerateDynamicScenario(t *testing.T) {
	g := newTestGenerator(t, nil)

	gp, err := g.Generate(Request{
		LevelID: 1, Seed: seedPtr(1), Theme: "cyber", Mode: levels.ModeDynamic,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// The entry sits on the playable boundary, at most the inset away
	// from a canvas edge.
	first := gp.Waypoints[0]
	edgeDist := math.Min(
		math.Min(first.X, 1200-first.X),
		math.Min(first.Y, 600-first.Y),
	)
	if edgeDist > EdgeInset {
		t.Errorf("first waypoint (%.1f, %.1f) is %.1f from the nearest edge, want <= %.0f",
			first.X, first.Y, edgeDist, EdgeInset)
	}

	if !gp.Meta.IsFallback && gp.Meta.TotalLength < 300 {
		t.Errorf("path length %.1f below the minimum span", gp.Meta.TotalLength)
	}
	if gp.Meta.Theme != "cyber" {
		t.Errorf("theme metadata = %q", gp.Meta.Theme)
	}
	if gp.Meta.Mode != levels.ModeDynamic {
		t.Errorf("mode metadata = %q", gp.Meta.Mode)
	}
}

func TestGenerateStaticUsesConfiguredWaypoints(t *testing.T) {
	table := levels.NewTable()
	table.SetOverride(2, levels.Override{
		StaticWaypoints: []levels.WaypointYAML{
			{X: 60, Y: 300}, {X: 400, Y: 200}, {X: 800, Y: 400}, {X: 1140, Y: 300},
		},
	})

	g := newTestGenerator(t, table)
	gp, err := g.Generate(Request{LevelID: 2, Seed: seedPtr(5), Mode: levels.ModeStatic})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := geom.Path{{X: 60, Y: 300}, {X: 400, Y: 200}, {X: 800, Y: 400}, {X: 1140, Y: 300}}
	if len(gp.Waypoints) != len(want) {
		t.Fatalf("got %d waypoints, want %d", len(gp.Waypoints), len(want))
	}
	for i := range want {
		if gp.Waypoints[i] != want[i] {
			t.Errorf("waypoint %d = %v, want %v", i, gp.Waypoints[i], want[i])
		}
	}
	if gp.Meta.IsFallback {
		t.Error("static layout should not be flagged as fallback")
	}
}

// Impossible structural constraints exhaust every retry; the generator
// must still hand back a usable degraded route.
func TestGenerateFallbackGuarantee(t *testing.T) {
	table := levels.NewTable()
	minSeg := 5000.0
	table.SetOverride(1, levels.Override{
		Constraints: &levels.Constraints{MinSegmentLength: minSeg},
	})

	g := newTestGenerator(t, table)
	gp, err := g.Generate(Request{LevelID: 1, Seed: seedPtr(7), Mode: levels.ModeDynamic})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !gp.Meta.IsFallback {
		t.Error("expected the fallback flag on an impossible constraint set")
	}
	if gp.Meta.BalanceDegraded {
		t.Error("a ladder fallback is not a balance shortfall")
	}
	if len(gp.Waypoints) < 2 {
		t.Fatalf("fallback path has %d waypoints", len(gp.Waypoints))
	}
	if gp.Meta.RetryCount == 0 {
		t.Error("expected at least one retry before falling back")
	}
	if len(gp.Meta.Validation.Warnings) == 0 {
		t.Error("fallback result should carry a warning")
	}
	if g.ErrorStats().Total == 0 {
		t.Error("failed attempts should be recorded in the error history")
	}
}

// An unreachable balance threshold exhausts the retries; the best
// structurally valid candidate is kept, but the shortfall must be
// visible in the metadata so tooling can tell it from a clean pass.
func TestGenerateBalanceShortfallFlagged(t *testing.T) {
	table := levels.NewTable()
	threshold := 1.1
	table.SetOverride(1, levels.Override{BalanceThreshold: &threshold})

	g := newTestGenerator(t, table)
	gp, err := g.Generate(Request{LevelID: 1, Seed: seedPtr(42), Mode: levels.ModeDynamic})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !gp.Meta.BalanceDegraded {
		t.Error("accepting a below-threshold path must set BalanceDegraded")
	}
	if gp.Meta.IsFallback {
		t.Error("a structurally valid route must not carry the ladder flag")
	}
	if gp.Meta.Balance.Total >= threshold {
		t.Errorf("balance %.2f should be below the %.2f threshold", gp.Meta.Balance.Total, threshold)
	}
	if gp.Meta.RetryCount == 0 {
		t.Error("expected retries before accepting the shortfall")
	}
	if !gp.Meta.Validation.IsValid() {
		t.Errorf("kept candidate must pass structural validation: %v", gp.Meta.Validation.Errors)
	}
	if len(gp.Meta.Recommendations) == 0 {
		t.Error("a shortfall should come with recommendations")
	}
}

// The same seed with different configured difficulty targets must yield
// identical geometry but different difficulty scoring.
func TestGenerateUsesConfiguredDifficultyTarget(t *testing.T) {
	run := func(target float64) *GeneratedPath {
		table := levels.NewTable()
		threshold := 0.0
		table.SetOverride(2, levels.Override{
			BalanceThreshold: &threshold,
			TargetDifficulty: &target,
		})
		g := newTestGenerator(t, table)
		gp, err := g.Generate(Request{LevelID: 2, Seed: seedPtr(9), Mode: levels.ModeDynamic})
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		return gp
	}

	low := run(0.05)
	high := run(0.95)

	if len(low.Waypoints) != len(high.Waypoints) {
		t.Fatalf("waypoint counts differ: %d vs %d", len(low.Waypoints), len(high.Waypoints))
	}
	for i := range low.Waypoints {
		if low.Waypoints[i] != high.Waypoints[i] {
			t.Fatalf("waypoint %d differs: %v vs %v", i, low.Waypoints[i], high.Waypoints[i])
		}
	}
	if low.Meta.Balance.Difficulty == high.Meta.Balance.Difficulty {
		t.Errorf("difficulty score ignored the configured target: %.4f both times",
			low.Meta.Balance.Difficulty)
	}
}

func TestGenerateStrictErrorsSurfaceFailure(t *testing.T) {
	table := levels.NewTable()
	table.SetOverride(1, levels.Override{
		Constraints: &levels.Constraints{MinSegmentLength: 5000},
	})

	g, err := NewGenerator(Config{
		CanvasWidth: 1200, CanvasHeight: 600, GridSize: 40, StrictErrors: true,
	}, table)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	_, err = g.Generate(Request{LevelID: 1, Seed: seedPtr(7), Mode: levels.ModeDynamic})
	var pve *PathValidationError
	if !errors.As(err, &pve) {
		t.Fatalf("expected PathValidationError, got %v", err)
	}
}

// Disabling generation forces static mode; with no static layout
// configured the fallback ladder takes over.
func TestGenerateDisabledWithoutStaticFallsBack(t *testing.T) {
	table := levels.NewTable()
	table.SetGenerationEnabled(6, false)

	g := newTestGenerator(t, table)
	gp, err := g.Generate(Request{LevelID: 6, Seed: seedPtr(3), Mode: levels.ModeDynamic})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gp.Meta.Mode != levels.ModeStatic {
		t.Errorf("mode = %q, disabled generation should force static", gp.Meta.Mode)
	}
	if !gp.Meta.IsFallback {
		t.Error("missing static layout should produce a fallback path")
	}
}

func TestGenerateHybridWithAnchors(t *testing.T) {
	table := levels.NewTable()
	table.SetOverride(4, levels.Override{
		StaticWaypoints: []levels.WaypointYAML{
			{X: 60, Y: 300}, {X: 600, Y: 150}, {X: 1140, Y: 300},
		},
	})

	g := newTestGenerator(t, table)
	gp, err := g.Generate(Request{LevelID: 4, Seed: seedPtr(11), Mode: levels.ModeHybrid})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// Anchors gain interpolated points between them.
	if len(gp.Waypoints) <= 3 {
		t.Errorf("hybrid path has %d waypoints, expected interpolation between anchors", len(gp.Waypoints))
	}
	for i, w := range gp.Waypoints {
		if !g.playable.Contains(w) {
			t.Fatalf("waypoint %d outside playable area", i)
		}
	}
}

func TestGenerateInProgressGuard(t *testing.T) {
	g := newTestGenerator(t, nil)
	g.inFlight.Store(true)

	if _, err := g.Generate(Request{LevelID: 1, Seed: seedPtr(1)}); !errors.Is(err, ErrGenerationInProgress) {
		t.Fatalf("expected ErrGenerationInProgress, got %v", err)
	}
	if _, err := g.GenerateAsync(context.Background(), Request{LevelID: 1, Seed: seedPtr(1)}); !errors.Is(err, ErrGenerationInProgress) {
		t.Fatalf("expected ErrGenerationInProgress from async, got %v", err)
	}

	g.inFlight.Store(false)
	if _, err := g.Generate(Request{LevelID: 1, Seed: seedPtr(1)}); err != nil {
		t.Fatalf("generation should succeed once the guard clears: %v", err)
	}
}

func TestGenerateAsyncMatchesSync(t *testing.T) {
	sync := newTestGenerator(t, nil)
	want, err := sync.Generate(Request{LevelID: 1, Seed: seedPtr(42), Mode: levels.ModeDynamic})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	g := newTestGenerator(t, nil)
	task, err := g.GenerateAsync(context.Background(), Request{
		LevelID: 1, Seed: seedPtr(42), Mode: levels.ModeDynamic,
	})
	if err != nil {
		t.Fatalf("GenerateAsync: %v", err)
	}

	var events []Progress
	for ev := range task.Progress() {
		events = append(events, ev)
	}
	got, err := task.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if len(events) == 0 {
		t.Error("expected at least one progress event")
	}
	if len(got.Waypoints) != len(want.Waypoints) {
		t.Fatalf("async waypoint count %d differs from sync %d", len(got.Waypoints), len(want.Waypoints))
	}
	for i := range want.Waypoints {
		if got.Waypoints[i] != want.Waypoints[i] {
			t.Fatalf("async waypoint %d differs from sync", i)
		}
	}

	// The guard must be released for the next run.
	if _, err := g.Generate(Request{LevelID: 1, Seed: seedPtr(1)}); err != nil {
		t.Fatalf("generation after async completion failed: %v", err)
	}
}

func TestGenerateAsyncCancellation(t *testing.T) {
	g := newTestGenerator(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task, err := g.GenerateAsync(ctx, Request{LevelID: 1, Seed: seedPtr(42), Mode: levels.ModeDynamic})
	if err != nil {
		t.Fatalf("GenerateAsync: %v", err)
	}

	gp, err := task.Wait()
	if gp != nil {
		t.Error("cancelled task should not return a path")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	select {
	case <-task.Done():
	default:
		t.Error("Done() should be closed after Wait() returns")
	}
}

func TestGenerateRecordsPerfStats(t *testing.T) {
	g := newTestGenerator(t, nil)
	if _, err := g.Generate(Request{LevelID: 1, Seed: seedPtr(8), Mode: levels.ModeDynamic}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	stats := g.Stats()
	if stats.Generations != 1 {
		t.Errorf("Generations = %d, want 1", stats.Generations)
	}
	if stats.AvgTime <= 0 {
		t.Error("AvgTime should be positive after a run")
	}
}

func TestRouteAdapterComplexityOverride(t *testing.T) {
	g := newTestGenerator(t, nil)
	c := 0.9
	seed := int64(13)

	path, info, err := g.Route(levels.RouteRequest{
		LevelID: 1, Seed: &seed, Theme: "classic", Mode: levels.ModeDynamic, CurveComplexity: &c,
	})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if len(path) < 2 {
		t.Fatalf("route has %d waypoints", len(path))
	}
	if info.Seed != seed {
		t.Errorf("info.Seed = %d, want %d", info.Seed, seed)
	}
}
