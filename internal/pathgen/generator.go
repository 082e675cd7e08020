package pathgen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/pathforge/internal/geom"
	"github.com/vovakirdan/pathforge/internal/levels"
	"github.com/vovakirdan/pathforge/internal/validate"
)

const (
	// EdgeInset keeps every waypoint this far inside the canvas bounds.
	EdgeInset = 50.0

	// Entry/exit must be at least this fraction of the smaller canvas
	// dimension apart.
	minSpanFraction = 0.7

	// Retry limits and walk iteration caps per run mode.
	prodRetryLimit   = 1
	devRetryLimit    = 3
	prodIterationCap = 250
	devIterationCap  = 500

	// Attempts at drawing a reachable exit before giving up.
	exitPickAttempts = 10
)

// Config configures a Generator instance.
type Config struct {
	CanvasWidth  float64
	CanvasHeight float64
	GridSize     float64 // Cell size used by the consuming game, in canvas units

	// Development raises the retry limit and iteration cap and logs
	// every handled error immediately.
	Development bool

	// StrictErrors re-raises after the fallback ladder instead of
	// returning a degraded path. Intended for test harnesses.
	StrictErrors bool

	ErrorHistorySize int
	Logger           *log.Logger
}

// Request names one generation call.
type Request struct {
	LevelID int
	// Seed is the explicit RNG seed; nil derives one from the wall
	// clock and is intentionally non-reproducible.
	Seed *int64
	// Theme is a preset name; CustomTheme, when set, takes precedence.
	Theme       string
	CustomTheme *levels.ThemeConfig
	Mode        levels.Mode
}

// Metadata annotates a generated path.
type Metadata struct {
	LevelID        int
	Seed           int64
	SeedExplicit   bool
	Theme          string
	Mode           levels.Mode
	TotalLength    float64
	Complexity     float64
	Bounds         geom.Bounds
	GenerationTime time.Duration
	RetryCount     int
	// IsFallback reports that the structural ladder produced the path.
	// BalanceDegraded reports that the path is structurally valid but
	// was accepted below the level's balance threshold after retries
	// ran out. Any degraded outcome sets at least one of the two.
	IsFallback      bool
	BalanceDegraded bool
	Validation      validate.Result
	Balance         validate.Breakdown
	Recommendations []string
}

// GeneratedPath is an accepted route plus its metadata. The waypoint
// slice must be treated as immutable once returned.
type GeneratedPath struct {
	Waypoints geom.Path
	Meta      Metadata
}

// Generator orchestrates route generation for one canvas. A single
// generation runs at a time per instance; concurrent calls fail fast
// with ErrGenerationInProgress.
type Generator struct {
	cfg      Config
	canvas   geom.Bounds
	playable geom.Bounds
	table    *levels.Table
	balance  *validate.BalanceChecker
	history  *ErrorHistory
	perf     perfTracker
	inFlight atomic.Bool
	logger   *log.Logger
}

// NewGenerator validates the configuration and builds a generator.
func NewGenerator(cfg Config, table *levels.Table) (*Generator, error) {
	if cfg.CanvasWidth < 4*EdgeInset || cfg.CanvasWidth > 16384 {
		return nil, &InputValidationError{Field: "canvas width",
			Reason: fmt.Sprintf("%.0f outside [%.0f, 16384]", cfg.CanvasWidth, 4*EdgeInset)}
	}
	if cfg.CanvasHeight < 4*EdgeInset || cfg.CanvasHeight > 16384 {
		return nil, &InputValidationError{Field: "canvas height",
			Reason: fmt.Sprintf("%.0f outside [%.0f, 16384]", cfg.CanvasHeight, 4*EdgeInset)}
	}
	if cfg.GridSize <= 0 || cfg.GridSize > math.Min(cfg.CanvasWidth, cfg.CanvasHeight) {
		return nil, &InputValidationError{Field: "grid size",
			Reason: fmt.Sprintf("%.1f outside (0, min(canvas dims)]", cfg.GridSize)}
	}
	if table == nil {
		table = levels.NewTable()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	canvas := geom.Bounds{MaxX: cfg.CanvasWidth, MaxY: cfg.CanvasHeight}
	return &Generator{
		cfg:      cfg,
		canvas:   canvas,
		playable: canvas.Inset(EdgeInset),
		table:    table,
		balance:  validate.NewBalanceChecker(canvas),
		history:  NewErrorHistory(cfg.ErrorHistorySize, cfg.Logger, cfg.Development),
		logger:   logger,
	}, nil
}

// Table exposes the level configuration table in use.
func (g *Generator) Table() *levels.Table { return g.table }

// Stats returns a snapshot of the performance counters.
func (g *Generator) Stats() PerfStats { return g.perf.snapshot() }

// ErrorStats returns per-category counts of handled errors.
func (g *Generator) ErrorStats() ErrorStats { return g.history.Stats() }

// ExportErrorHandlingData yields a plain-data snapshot of the error
// history and counters.
func (g *Generator) ExportErrorHandlingData() ErrorData { return g.history.Export() }

// ImportErrorHandlingData restores the error history from a snapshot.
func (g *Generator) ImportErrorHandlingData(data ErrorData) { g.history.Import(data) }

func (g *Generator) retryLimit() int {
	if g.cfg.Development {
		return devRetryLimit
	}
	return prodRetryLimit
}

func (g *Generator) iterationCap() int {
	if g.cfg.Development {
		return devIterationCap
	}
	return prodIterationCap
}

// Generate produces a route for the level synchronously. In default
// configuration it always returns a usable path: when every attempt
// fails validation the fallback ladder degrades down to a straight
// 2-point route flagged via Meta.IsFallback.
func (g *Generator) Generate(req Request) (*GeneratedPath, error) {
	if !g.inFlight.CompareAndSwap(false, true) {
		return nil, ErrGenerationInProgress
	}
	defer g.inFlight.Store(false)
	return g.generate(req, nil)
}

// stepHook is invoked during the geometric walk and at stage boundaries
// so the async path can yield and check for cancellation.
type stepHook func(stage Stage, iter int) error

func (g *Generator) generate(req Request, hook stepHook) (*GeneratedPath, error) {
	start := time.Now()

	theme, err := g.resolveTheme(req)
	if err != nil {
		return nil, err
	}
	if req.LevelID < 0 {
		return nil, &InputValidationError{Field: "level id", Reason: fmt.Sprintf("%d is negative", req.LevelID)}
	}
	mode := req.Mode
	if mode != "" {
		if _, err := levels.ParseMode(string(mode)); err != nil {
			return nil, &InputValidationError{Field: "mode", Reason: err.Error()}
		}
	}

	policy := g.table.Resolve(req.LevelID)
	if mode == "" {
		mode = policy.PathMode
	}
	// The policy flag always wins: a level with generation disabled is
	// forced onto its static layout; missing static waypoints are then
	// handled by the uniform fallback ladder below.
	if !policy.AllowGeneration {
		mode = levels.ModeStatic
	}

	seed, explicit := resolveSeed(req.Seed)
	rng := NewRand(seed, req.LevelID)
	rules := rulesFromPolicy(policy)

	if err := g.fireHook(hook, StageResolve, 0); err != nil {
		return nil, err
	}

	var (
		path       geom.Path
		vres       validate.Result
		bres       validate.Breakdown
		retries    int
		accepted   bool
		lastErr    error
		bestPath   geom.Path
		bestVres   validate.Result
		bestBres   validate.Breakdown
		haveScored bool
	)

	maxAttempts := g.retryLimit() + 1
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			retries++
			// A cleared cache makes the retry draw fresh values from
			// the same seeded stream.
			rng.ClearCache()
		}

		candidate, genErr := g.buildCandidate(mode, policy, theme, rng, attempt, hook)
		if genErr != nil {
			if isCancelled(genErr) {
				return nil, genErr
			}
			lastErr = genErr
			g.history.Record(categoryOf(genErr), req.LevelID, genErr)
			continue
		}

		if err := g.fireHook(hook, StageValidate, 0); err != nil {
			return nil, err
		}
		if err := checkFinite(candidate); err != nil {
			cerr := &CriticalError{Stage: "geometry", Err: err}
			lastErr = cerr
			g.history.Record(CategoryCritical, req.LevelID, cerr)
			if g.cfg.StrictErrors {
				return nil, cerr
			}
			continue
		}

		vres = validate.ValidatePathStructure(candidate, rules)
		if !vres.IsValid() {
			lastErr = &PathValidationError{LevelID: req.LevelID, Errors: vres.Errors}
			g.history.Record(CategoryValidation, req.LevelID, lastErr)
			continue
		}

		if err := g.fireHook(hook, StageBalance, 0); err != nil {
			return nil, err
		}
		if policy.BalanceEnabled {
			bres = g.balance.ScoreTarget(candidate, policy.DifficultyTarget(req.LevelID))
			if bres.Total < policy.BalanceThreshold {
				// Soft failure: keep the best-scoring structurally
				// valid candidate in case retries are exhausted.
				if !haveScored || bres.Total > bestBres.Total {
					bestPath, bestVres, bestBres = candidate, vres, bres
					haveScored = true
				}
				lastErr = fmt.Errorf("balance score %.2f below threshold %.2f", bres.Total, policy.BalanceThreshold)
				g.history.Record(CategoryBalance, req.LevelID, lastErr)
				continue
			}
		}

		path = candidate
		accepted = true
		break
	}

	fallback := false
	degraded := false
	var recommendations []string
	if !accepted {
		if haveScored {
			// Structurally valid but under the balance threshold:
			// accept the best candidate with recommendations rather
			// than degrading to a worse route. The outcome is still
			// flagged so callers can tell it apart from a clean pass.
			path, vres, bres = bestPath, bestVres, bestBres
			degraded = true
			recommendations = append(recommendations, bres.Warnings...)
			recommendations = append(recommendations, "consider regenerating with a different seed for better balance")
		} else {
			if g.cfg.StrictErrors {
				if lastErr == nil {
					lastErr = &PathValidationError{LevelID: req.LevelID, Errors: []string{"no candidate produced"}}
				}
				return nil, lastErr
			}
			path, vres = g.fallbackPath(policy, rng)
			if policy.BalanceEnabled {
				bres = g.balance.ScoreTarget(path, policy.DifficultyTarget(req.LevelID))
			}
			fallback = true
		}
	}
	recommendations = append(recommendations, vres.Warnings...)

	if err := g.fireHook(hook, StageFinalize, 0); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	g.perf.record(elapsed, fallback, retries)
	hits, misses := rng.CacheStats()
	g.perf.recordCache(hits, misses)

	g.logger.Debug("path generated",
		"level", req.LevelID, "mode", mode, "seed", seed,
		"waypoints", len(path), "fallback", fallback, "degraded", degraded,
		"retries", retries, "elapsed", elapsed)

	return &GeneratedPath{
		Waypoints: path,
		Meta: Metadata{
			LevelID:         req.LevelID,
			Seed:            seed,
			SeedExplicit:    explicit,
			Theme:           g.themeName(req),
			Mode:            mode,
			TotalLength:     path.Length(),
			Complexity:      validate.Complexity(path),
			Bounds:          path.BoundingBox(),
			GenerationTime:  elapsed,
			RetryCount:      retries,
			IsFallback:      fallback,
			BalanceDegraded: degraded,
			Validation:      vres,
			Balance:         bres,
			Recommendations: recommendations,
		},
	}, nil
}

// buildCandidate produces a raw route for one attempt in the requested
// mode, including post-processing.
func (g *Generator) buildCandidate(mode levels.Mode, policy levels.LevelPolicy, theme levels.ThemeConfig, rng *Rand, attempt int, hook stepHook) (geom.Path, error) {
	switch mode {
	case levels.ModeStatic:
		if len(policy.StaticWaypoints) < 2 {
			return nil, &PathValidationError{Errors: []string{"no static waypoints configured"}}
		}
		// Configured waypoints are taken verbatim, clamped into the
		// playable area so the bounds invariant holds.
		path := make(geom.Path, 0, len(policy.StaticWaypoints))
		for _, w := range policy.StaticWaypoints {
			path = append(path, g.playable.Clamp(w))
		}
		return path, nil

	case levels.ModeHybrid:
		if len(policy.StaticWaypoints) >= 2 {
			return g.buildHybrid(policy.StaticWaypoints, theme, rng)
		}
		// No anchors configured: hybrid degrades to a full dynamic walk.
		fallthrough

	case levels.ModeDynamic:
		entry, exit, err := g.pickEntryExit(rng, attempt)
		if err != nil {
			return nil, err
		}
		builder := NewBuilder(g.playable, theme, rng, g.iterationCap())
		var onStep func(int) error
		if hook != nil {
			onStep = func(iter int) error { return hook(StageBuild, iter) }
		}
		path, capped, err := builder.Build(entry, exit, onStep)
		if err != nil {
			return nil, err
		}
		if capped {
			g.perf.degenerate++
		}
		path = builder.AddVariations(path)
		path = builder.Smooth(path, 0.5+0.5*theme.CurveComplexity)
		return path, nil

	default:
		return nil, &InputValidationError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", mode)}
	}
}

// buildHybrid treats the configured waypoints as anchors, interpolating
// and jittering intermediate points scaled by the theme's curve
// complexity.
func (g *Generator) buildHybrid(anchors geom.Path, theme levels.ThemeConfig, rng *Rand) (geom.Path, error) {
	out := geom.Path{g.playable.Clamp(anchors[0])}
	for i := 0; i < len(anchors)-1; i++ {
		a := g.playable.Clamp(anchors[i])
		b := g.playable.Clamp(anchors[i+1])
		segLen := a.Dist(b)

		inserts := 1 + int(theme.CurveComplexity*2)
		for j := 1; j <= inserts; j++ {
			t := float64(j) / float64(inserts+1)
			mid := a.Lerp(b, t)
			if segLen > 0 {
				px := -(b.Y - a.Y) / segLen
				py := (b.X - a.X) / segLen
				offset := (rng.Draw("hybrid-jitter", i*8+j)*2 - 1) * segLen * 0.3 * theme.CurveComplexity
				mid.X += px * offset
				mid.Y += py * offset
			}
			out = append(out, g.playable.Clamp(mid))
		}
		out = append(out, b)
	}

	builder := NewBuilder(g.playable, theme, rng, g.iterationCap())
	return builder.Smooth(out, 0.5), nil
}

// pickEntryExit chooses an entry point on a random canvas edge and an
// exit on the facing edge at sufficient distance.
func (g *Generator) pickEntryExit(rng *Rand, attempt int) (geom.Waypoint, geom.Waypoint, error) {
	minDist := minSpanFraction * math.Min(g.cfg.CanvasWidth, g.cfg.CanvasHeight)

	edge := rng.Intn("entry-edge", attempt, 4)
	entry := g.edgePoint(edge, rng.Draw("entry-pos", attempt))

	for i := 0; i < exitPickAttempts; i++ {
		exit := g.edgePoint((edge+2)%4, rng.Draw("exit-pos", attempt*exitPickAttempts+i))
		if entry.Dist(exit) >= minDist {
			return entry, exit, nil
		}
	}
	return geom.Waypoint{}, geom.Waypoint{}, &ReachabilityError{
		Entry:   entry,
		Exit:    g.edgePoint((edge+2)%4, 0.5),
		MinDist: minDist,
	}
}

// edgePoint returns a point on the playable boundary of the given edge
// (0=left, 1=top, 2=right, 3=bottom) at fraction t along it.
func (g *Generator) edgePoint(edge int, t float64) geom.Waypoint {
	switch edge % 4 {
	case 0:
		return geom.Waypoint{X: g.playable.MinX, Y: g.playable.MinY + t*g.playable.Height()}
	case 1:
		return geom.Waypoint{X: g.playable.MinX + t*g.playable.Width(), Y: g.playable.MinY}
	case 2:
		return geom.Waypoint{X: g.playable.MaxX, Y: g.playable.MinY + t*g.playable.Height()}
	default:
		return geom.Waypoint{X: g.playable.MinX + t*g.playable.Width(), Y: g.playable.MaxY}
	}
}

// fallbackPath synthesizes a degraded but always-usable route: a
// jittered straight-line interpolation between entry and exit, and if
// even that fails structural arity, a minimal two-point path.
func (g *Generator) fallbackPath(policy levels.LevelPolicy, rng *Rand) (geom.Path, validate.Result) {
	entry := geom.Waypoint{X: g.playable.MinX, Y: g.playable.MinY + g.playable.Height()/2}
	exit := geom.Waypoint{X: g.playable.MaxX, Y: g.playable.MinY + g.playable.Height()/2}
	if len(policy.StaticWaypoints) >= 2 {
		entry = g.playable.Clamp(policy.StaticWaypoints[0])
		exit = g.playable.Clamp(policy.StaticWaypoints[len(policy.StaticWaypoints)-1])
	}

	const midpoints = 4
	path := geom.Path{entry}
	for i := 1; i <= midpoints; i++ {
		t := float64(i) / float64(midpoints+1)
		mid := entry.Lerp(exit, t)
		jitter := (rng.Draw("fallback-jitter", i)*2 - 1) * 20
		mid.Y += jitter
		path = append(path, g.playable.Clamp(mid))
	}
	path = append(path, exit)

	if err := checkFinite(path); err != nil || len(path) < 2 {
		// Last rung of the ladder: a direct two-point route.
		path = geom.Path{entry, exit}
	}

	res := validate.Result{
		Warnings: []string{"fallback path in use: primary generation failed repeatedly"},
	}
	return path, res
}

// resolveTheme validates and returns the effective theme config.
func (g *Generator) resolveTheme(req Request) (levels.ThemeConfig, error) {
	if req.CustomTheme != nil {
		if err := req.CustomTheme.Validate(); err != nil {
			return levels.ThemeConfig{}, &InputValidationError{Field: "theme", Reason: err.Error()}
		}
		return *req.CustomTheme, nil
	}
	name := req.Theme
	if name == "" {
		name = g.table.Resolve(req.LevelID).Theme
	}
	theme, ok := g.table.Theme(name)
	if !ok {
		return levels.ThemeConfig{}, &InputValidationError{Field: "theme", Reason: fmt.Sprintf("unknown theme %q", name)}
	}
	return theme, nil
}

func (g *Generator) themeName(req Request) string {
	if req.CustomTheme != nil {
		return "custom"
	}
	if req.Theme != "" {
		return req.Theme
	}
	return g.table.Resolve(req.LevelID).Theme
}

func (g *Generator) fireHook(hook stepHook, stage Stage, iter int) error {
	if hook == nil {
		return nil
	}
	return hook(stage, iter)
}

// rulesFromPolicy tightens the default structural rules with the
// level's constraints.
func rulesFromPolicy(policy levels.LevelPolicy) validate.Rules {
	rules := validate.DefaultRules()
	if policy.Constraints.MaxTurnAngleDeg > 0 {
		rules.Turn.Max = policy.Constraints.MaxTurnAngleDeg * math.Pi / 180
	}
	if policy.Constraints.MinSegmentLength > 0 {
		rules.Segment.MinLength = policy.Constraints.MinSegmentLength
	}
	return rules
}

// resolveSeed returns the effective seed and whether it was explicit.
func resolveSeed(seed *int64) (int64, bool) {
	if seed != nil {
		return *seed, true
	}
	return time.Now().UnixNano(), false
}

// checkFinite guards against NaN/Inf propagation out of geometry math.
func checkFinite(p geom.Path) error {
	for i, w := range p {
		if math.IsNaN(w.X) || math.IsNaN(w.Y) || math.IsInf(w.X, 0) || math.IsInf(w.Y, 0) {
			return fmt.Errorf("non-finite coordinate at waypoint %d", i)
		}
	}
	return nil
}

// isCancelled reports whether an error originated from cooperative
// cancellation rather than generation failure.
func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func categoryOf(err error) Category {
	switch err.(type) {
	case *InputValidationError:
		return CategoryInput
	case *PathValidationError:
		return CategoryValidation
	case *ReachabilityError:
		return CategoryReachability
	case *CriticalError:
		return CategoryCritical
	default:
		return CategoryValidation
	}
}
