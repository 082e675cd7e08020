package levels

import "fmt"

// Matrix defaults. The matrix is bounded: mode×theme×complexity tuples
// beyond MaxTests are skipped.
const (
	defaultMaxTests      = 30
	criticalPassRate     = 0.8
	matrixSeedStride     = 104729
	defaultComplexityLow = 0.3
	defaultComplexityMid = 0.5
	defaultComplexityHi  = 0.7
)

// MatrixOptions selects the tuples exercised by TestPathGeneration.
// Empty slices default to every mode, every known theme, and a
// low/mid/high complexity sweep.
type MatrixOptions struct {
	PathModes    []Mode
	Themes       []string
	Complexities []float64
	MaxTests     int
}

// MatrixResult is the outcome of one generation tuple.
type MatrixResult struct {
	Mode       Mode
	Theme      string
	Complexity float64
	Seed       int64
	Info       RouteInfo
	Validation ValidationResult
	Err        string
}

// MatrixSummary aggregates a full matrix run.
type MatrixSummary struct {
	LevelID  int
	Results  []MatrixResult
	Total    int
	Passed   int
	Warned   int
	Failed   int
	PassRate float64
	// Critical is set when the pass rate drops below 80%.
	Critical bool
}

// TestPathGeneration runs a bounded mode×theme×complexity matrix
// against the route source and aggregates pass/warning/error counts.
func (p *Preservation) TestPathGeneration(src RouteSource, levelID int, opts MatrixOptions) (MatrixSummary, error) {
	if src == nil {
		return MatrixSummary{}, fmt.Errorf("nil route source")
	}
	modes := opts.PathModes
	if len(modes) == 0 {
		modes = AllModes()
	}
	themes := opts.Themes
	if len(themes) == 0 {
		themes = p.table.ThemeNames()
	}
	complexities := opts.Complexities
	if len(complexities) == 0 {
		complexities = []float64{defaultComplexityLow, defaultComplexityMid, defaultComplexityHi}
	}
	maxTests := opts.MaxTests
	if maxTests <= 0 {
		maxTests = defaultMaxTests
	}

	summary := MatrixSummary{LevelID: levelID}
	for _, theme := range themes {
		if _, ok := p.table.Theme(theme); !ok {
			return MatrixSummary{}, fmt.Errorf("unknown theme %q", theme)
		}
	}

	n := 0
	for _, mode := range modes {
		for _, theme := range themes {
			for _, complexity := range complexities {
				if n >= maxTests {
					break
				}
				n++

				seed := int64(levelID+1)*matrixSeedStride + int64(n)
				c := complexity
				path, info, err := src.Route(RouteRequest{
					LevelID:         levelID,
					Seed:            &seed,
					Theme:           theme,
					Mode:            mode,
					CurveComplexity: &c,
				})

				result := MatrixResult{
					Mode:       mode,
					Theme:      theme,
					Complexity: complexity,
					Seed:       seed,
					Info:       info,
				}
				if err != nil {
					result.Err = err.Error()
					summary.Failed++
				} else {
					result.Validation = p.ValidatePathForLevel(path, levelID, mode)
					switch {
					case !result.Validation.IsValid:
						summary.Failed++
					case len(result.Validation.Warnings) > 0:
						summary.Passed++
						summary.Warned++
					default:
						summary.Passed++
					}
				}
				summary.Results = append(summary.Results, result)
			}
		}
	}

	summary.Total = len(summary.Results)
	if summary.Total > 0 {
		summary.PassRate = float64(summary.Passed) / float64(summary.Total)
	}
	summary.Critical = summary.PassRate < criticalPassRate
	return summary, nil
}
