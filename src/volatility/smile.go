package volatility

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"

	"github.com/optionflow/options-engine/src/optionmodels"
)

// MinSmilePoints is the fewest solved points a maturity slice needs before
// a spline smile is fit through it.
const MinSmilePoints = 4

// Smile is the implied volatility smile for a single maturity: a natural
// cubic spline (zero second derivative at the end knots) of implied
// volatility as a function of strike. Strikes outside the sampled range are
// clamped to the end knot value with an ExtrapolationWarning.
type Smile struct {
	Maturity float64
	Strikes  []float64
	Vols     []float64

	spline interp.NaturalCubic
}

// NewSmile fits a smile through the solved points of one maturity slice.
// Points sharing a strike are averaged before fitting.
func NewSmile(maturity float64, points []optionmodels.VolatilityPoint) (*Smile, error) {
	if len(points) < MinSmilePoints {
		return nil, &optionmodels.InsufficientDataError{Have: len(points), Need: MinSmilePoints}
	}

	sorted := make([]optionmodels.VolatilityPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Strike < sorted[j].Strike
	})

	strikes := make([]float64, 0, len(sorted))
	vols := make([]float64, 0, len(sorted))
	for _, point := range sorted {
		if n := len(strikes); n > 0 && point.Strike == strikes[n-1] {
			vols[n-1] = (vols[n-1] + point.ImpliedVol) / 2
			continue
		}

		strikes = append(strikes, point.Strike)
		vols = append(vols, point.ImpliedVol)
	}

	if len(strikes) < MinSmilePoints {
		return nil, &optionmodels.InsufficientDataError{Have: len(strikes), Need: MinSmilePoints}
	}

	smile := &Smile{
		Maturity: maturity,
		Strikes:  strikes,
		Vols:     vols,
	}

	if err := smile.spline.Fit(strikes, vols); err != nil {
		return nil, fmt.Errorf("NewSmile: failed to fit spline: %v", err)
	}

	return smile, nil
}

// Evaluate returns the interpolated implied volatility at the given strike.
func (s *Smile) Evaluate(strike float64) (float64, error) {
	if strike < s.Strikes[0] {
		return s.Vols[0], &optionmodels.ExtrapolationWarning{Strike: strike, Maturity: s.Maturity}
	}

	if last := len(s.Strikes) - 1; strike > s.Strikes[last] {
		return s.Vols[last], &optionmodels.ExtrapolationWarning{Strike: strike, Maturity: s.Maturity}
	}

	return s.spline.Predict(strike), nil
}
