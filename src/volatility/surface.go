package volatility

import (
	"math"
	"sort"
	"time"

	"github.com/fogleman/delaunay"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/optionflow/options-engine/src/optionmodels"
)

// VolatilitySurface interpolates implied volatility over the convex hull of
// its (strike, maturity) samples. The samples are Delaunay-triangulated on
// min-max normalized axes and evaluation is piecewise-linear barycentric
// within each triangle: exact at every sample, continuous across the hull,
// with O(h^2) interpolation error between samples for a smooth surface.
//
// The surface is immutable; a rebuild always produces a new instance.
type VolatilitySurface struct {
	ID      uuid.UUID
	BuiltAt time.Time
	Points  []optionmodels.VolatilityPoint
	Skipped []SkippedQuote

	smiles        map[float64]*Smile
	triangulation *delaunay.Triangulation
	strikeScale   axisScale
	maturityScale axisScale
}

type axisScale struct {
	min   float64
	width float64
}

func (a axisScale) normalize(x float64) float64 {
	if a.width == 0 {
		return 0
	}

	return (x - a.min) / a.width
}

func newVolatilitySurface(points []optionmodels.VolatilityPoint, skipped []SkippedQuote, smiles map[float64]*Smile) *VolatilitySurface {
	surface := &VolatilitySurface{
		ID:      uuid.New(),
		BuiltAt: time.Now().UTC(),
		Points:  points,
		Skipped: skipped,
		smiles:  smiles,
	}

	surface.strikeScale = scaleFor(points, func(p optionmodels.VolatilityPoint) float64 { return p.Strike })
	surface.maturityScale = scaleFor(points, func(p optionmodels.VolatilityPoint) float64 { return p.TimeToMaturity })

	samples := make([]delaunay.Point, len(points))
	for i, point := range points {
		samples[i] = delaunay.Point{
			X: surface.strikeScale.normalize(point.Strike),
			Y: surface.maturityScale.normalize(point.TimeToMaturity),
		}
	}

	triangulation, err := delaunay.Triangulate(samples)
	if err != nil || len(triangulation.Triangles) == 0 {
		// Collinear samples (e.g. a single maturity slice) cannot be
		// triangulated; every query degrades to the nearest sample.
		log.Warnf("VolatilitySurface: triangulation degenerate, all queries clamp to nearest sample: %v", err)
		triangulation = nil
	}

	surface.triangulation = triangulation
	return surface
}

func scaleFor(points []optionmodels.VolatilityPoint, value func(optionmodels.VolatilityPoint) float64) axisScale {
	min, max := math.Inf(1), math.Inf(-1)
	for _, point := range points {
		v := value(point)
		min = math.Min(min, v)
		max = math.Max(max, v)
	}

	return axisScale{min: min, width: max - min}
}

// Evaluate returns the interpolated implied volatility at (strike,
// maturity). Inside the convex hull of the samples the error is nil;
// outside it the value of the nearest sample is returned together with a
// non-fatal *optionmodels.ExtrapolationWarning.
func (s *VolatilitySurface) Evaluate(strike, maturity float64) (float64, error) {
	x := s.strikeScale.normalize(strike)
	y := s.maturityScale.normalize(maturity)

	if s.triangulation != nil {
		if value, ok := s.interpolate(x, y); ok {
			return value, nil
		}
	}

	return s.nearest(x, y), &optionmodels.ExtrapolationWarning{Strike: strike, Maturity: maturity}
}

// Maturities lists the distinct sampled maturities, ascending.
func (s *VolatilitySurface) Maturities() []float64 {
	seen := make(map[float64]bool)
	var maturities []float64
	for _, point := range s.Points {
		if !seen[point.TimeToMaturity] {
			seen[point.TimeToMaturity] = true
			maturities = append(maturities, point.TimeToMaturity)
		}
	}

	sort.Float64s(maturities)
	return maturities
}

// Smile returns the fitted smile for a sampled maturity, when that slice
// had enough points for spline interpolation.
func (s *VolatilitySurface) Smile(maturity float64) (*Smile, bool) {
	smile, ok := s.smiles[maturity]
	return smile, ok
}

const insideTolerance = 1e-12

func (s *VolatilitySurface) interpolate(x, y float64) (float64, bool) {
	tri := s.triangulation

	for t := 0; t < len(tri.Triangles); t += 3 {
		i, j, k := tri.Triangles[t], tri.Triangles[t+1], tri.Triangles[t+2]
		a, b, c := tri.Points[i], tri.Points[j], tri.Points[k]

		det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
		if math.Abs(det) < insideTolerance {
			continue
		}

		w1 := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / det
		w2 := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / det
		w3 := 1 - w1 - w2

		if w1 < -insideTolerance || w2 < -insideTolerance || w3 < -insideTolerance {
			continue
		}

		return w1*s.Points[i].ImpliedVol + w2*s.Points[j].ImpliedVol + w3*s.Points[k].ImpliedVol, true
	}

	return 0, false
}

func (s *VolatilitySurface) nearest(x, y float64) float64 {
	bestDistance := math.Inf(1)
	var bestVol float64

	for i, point := range s.Points {
		px := s.strikeScale.normalize(point.Strike)
		py := s.maturityScale.normalize(point.TimeToMaturity)

		distance := (px-x)*(px-x) + (py-y)*(py-y)
		if distance < bestDistance {
			bestDistance = distance
			bestVol = s.Points[i].ImpliedVol
		}
	}

	return bestVol
}
