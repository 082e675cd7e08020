package levels

import (
	"fmt"
	"time"

	"github.com/vovakirdan/pathforge/internal/geom"
)

// RouteRequest asks a RouteSource for one generated path.
type RouteRequest struct {
	LevelID int
	Seed    *int64
	Theme   string
	Mode    Mode
	// CurveComplexity, when set, overrides the theme's curve complexity
	// (used by the test matrix).
	CurveComplexity *float64
}

// RouteInfo summarizes how a route was produced.
type RouteInfo struct {
	Seed            int64
	IsFallback      bool
	BalanceDegraded bool
	Retries         int
	Duration        time.Duration
	BalanceScore    float64
}

// RouteSource produces routes on demand. The path generator implements
// it; tests may substitute a stub.
type RouteSource interface {
	Route(req RouteRequest) (geom.Path, RouteInfo, error)
}

// Preview is one generated variant with its independent validation.
type Preview struct {
	LevelID    int
	Theme      string
	Mode       Mode
	Seed       int64
	Path       geom.Path
	Info       RouteInfo
	Validation ValidationResult
}

// previewSeedStride spaces the deterministic seeds used for preview
// variants so neighbouring variants do not share draw prefixes.
const previewSeedStride = 7919

// GeneratePathPreviews produces perCombo variants for every theme×mode
// combination, each independently validated for the level. Empty theme
// or mode slices default to every known theme and mode.
func (p *Preservation) GeneratePathPreviews(src RouteSource, levelID, perCombo int, themes []string, modes []Mode) ([]Preview, error) {
	if src == nil {
		return nil, fmt.Errorf("nil route source")
	}
	if perCombo <= 0 {
		perCombo = 1
	}
	if len(themes) == 0 {
		themes = p.table.ThemeNames()
	}
	if len(modes) == 0 {
		modes = AllModes()
	}

	var previews []Preview
	variant := 0
	for _, theme := range themes {
		if _, ok := p.table.Theme(theme); !ok {
			return nil, fmt.Errorf("unknown theme %q", theme)
		}
		for _, mode := range modes {
			for n := 0; n < perCombo; n++ {
				variant++
				seed := int64(levelID+1)*previewSeedStride + int64(variant)
				path, info, err := src.Route(RouteRequest{
					LevelID: levelID,
					Seed:    &seed,
					Theme:   theme,
					Mode:    mode,
				})
				if err != nil {
					return nil, fmt.Errorf("preview %s/%s: %w", theme, mode, err)
				}
				previews = append(previews, Preview{
					LevelID:    levelID,
					Theme:      theme,
					Mode:       mode,
					Seed:       seed,
					Path:       path,
					Info:       info,
					Validation: p.ValidatePathForLevel(path, levelID, mode),
				})
			}
		}
	}
	return previews, nil
}
