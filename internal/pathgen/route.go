package pathgen

import (
	"fmt"

	"github.com/vovakirdan/pathforge/internal/geom"
	"github.com/vovakirdan/pathforge/internal/levels"
)

// Route implements levels.RouteSource so the designer tooling (previews
// and test matrices) can drive this generator.
func (g *Generator) Route(req levels.RouteRequest) (geom.Path, levels.RouteInfo, error) {
	genReq := Request{
		LevelID: req.LevelID,
		Seed:    req.Seed,
		Theme:   req.Theme,
		Mode:    req.Mode,
	}

	if req.CurveComplexity != nil {
		name := req.Theme
		if name == "" {
			name = g.table.Resolve(req.LevelID).Theme
		}
		theme, ok := g.table.Theme(name)
		if !ok {
			return nil, levels.RouteInfo{}, &InputValidationError{
				Field: "theme", Reason: fmt.Sprintf("unknown theme %q", name),
			}
		}
		theme.CurveComplexity = geom.ClampF(*req.CurveComplexity, 0, 1)
		genReq.CustomTheme = &theme
	}

	gp, err := g.Generate(genReq)
	if err != nil {
		return nil, levels.RouteInfo{}, err
	}
	return gp.Waypoints, levels.RouteInfo{
		Seed:            gp.Meta.Seed,
		IsFallback:      gp.Meta.IsFallback,
		BalanceDegraded: gp.Meta.BalanceDegraded,
		Retries:         gp.Meta.RetryCount,
		Duration:        gp.Meta.GenerationTime,
		BalanceScore:    gp.Meta.Balance.Total,
	}, nil
}
