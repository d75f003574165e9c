package volatility

import (
	"fmt"
	"math"

	"github.com/optionflow/options-engine/src/optionmodels"
	"github.com/optionflow/options-engine/src/pricing"
)

const (
	DefaultTolerance     = 1e-6
	DefaultMaxIterations = 100
	DefaultSeedVol       = 0.3

	bracketLow  = 1e-4
	bracketHigh = 5.0
	vegaFloor   = 1e-8
)

type solverSettings struct {
	tolerance     float64
	maxIterations int
	seed          float64
	treeSteps     int
}

type SolverOption func(*solverSettings)

func WithTolerance(tolerance float64) SolverOption {
	return func(s *solverSettings) {
		s.tolerance = tolerance
	}
}

func WithMaxIterations(maxIterations int) SolverOption {
	return func(s *solverSettings) {
		s.maxIterations = maxIterations
	}
}

// WithSeed overrides the Newton starting volatility. The default seed is
// the snapshot's volatility estimate, falling back to DefaultSeedVol.
func WithSeed(seed float64) SolverOption {
	return func(s *solverSettings) {
		s.seed = seed
	}
}

func WithTreeSteps(steps int) SolverOption {
	return func(s *solverSettings) {
		s.treeSteps = steps
	}
}

// ImpliedVolatility inverts an observed market price into the volatility
// that reproduces it under the given pricing model.
//
// The observed price must lie strictly inside the no-arbitrage band (for a
// call, max(S*e^(-qT) - K*e^(-rT), 0) < price < S*e^(-qT); the put band
// follows from parity); outside it the solver fails fast with an
// ArbitrageBoundViolation instead of iterating.
//
// The method is Newton-Raphson seeded from the snapshot's volatility
// estimate, using the analytic Vega for the closed-form model and a
// central-difference derivative for the tree. When the derivative falls
// below vegaFloor (deep ITM/OTM) or a step leaves the valid volatility
// domain, the solver switches to bisection on [1e-4, 5.0]. Convergence is
// an absolute price residual below the tolerance within the shared
// iteration budget; exhausting it returns MaxIterationsExceeded.
func ImpliedVolatility(contract optionmodels.OptionContract, snapshot optionmodels.MarketSnapshot, observedPrice float64, model optionmodels.PricingModel, opts ...SolverOption) (float64, error) {
	if err := contract.Validate(); err != nil {
		return 0, fmt.Errorf("ImpliedVolatility: %w", err)
	}

	if err := snapshot.Validate(); err != nil {
		return 0, fmt.Errorf("ImpliedVolatility: %w", err)
	}

	if err := model.Validate(); err != nil {
		return 0, fmt.Errorf("ImpliedVolatility: %w", err)
	}

	if contract.TimeToMaturity <= 0 {
		return 0, &optionmodels.InputValidationError{Field: "timeToMaturity", Value: contract.TimeToMaturity, Reason: "implied volatility is undefined at expiry"}
	}

	if observedPrice <= 0 {
		return 0, &optionmodels.InputValidationError{Field: "observedPrice", Value: observedPrice, Reason: "must be positive"}
	}

	settings := solverSettings{
		tolerance:     DefaultTolerance,
		maxIterations: DefaultMaxIterations,
		seed:          snapshot.VolatilityEstimate(),
		treeSteps:     pricing.DefaultTreeSteps,
	}
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.seed <= 0 {
		settings.seed = DefaultSeedVol
	}

	lower, upper := arbitrageBounds(contract, snapshot)
	if observedPrice <= lower || observedPrice >= upper {
		return 0, &optionmodels.ArbitrageBoundViolation{Price: observedPrice, Lower: lower, Upper: upper}
	}

	price := func(sigma float64) (float64, error) {
		if model == optionmodels.BlackScholes {
			return pricing.BlackScholesPrice(contract, snapshot, sigma)
		}
		return pricing.BinomialPrice(contract, snapshot, sigma, settings.treeSteps)
	}

	derivative := func(sigma float64) (float64, error) {
		if model == optionmodels.BlackScholes {
			return pricing.BlackScholesVega(contract, snapshot, sigma), nil
		}

		bump := 1e-4 * sigma
		up, err := price(sigma + bump)
		if err != nil {
			return 0, err
		}
		down, err := price(sigma - bump)
		if err != nil {
			return 0, err
		}
		return (up - down) / (2 * bump), nil
	}

	iterations := 0
	sigma := settings.seed

	for ; iterations < settings.maxIterations; iterations++ {
		current, err := price(sigma)
		if err != nil {
			// A non-priceable sigma (e.g. a degenerate lattice) is not
			// fatal: the bracket endpoints remain valid.
			break
		}

		residual := current - observedPrice
		if math.Abs(residual) < settings.tolerance {
			return sigma, nil
		}

		vega, err := derivative(sigma)
		if err != nil || math.Abs(vega) < vegaFloor {
			break
		}

		next := sigma - residual/vega
		if next <= bracketLow || next > bracketHigh {
			break
		}

		sigma = next
	}

	return bisect(price, observedPrice, settings, &iterations)
}

// bisect finishes a solve on [bracketLow, bracketHigh], sharing the
// iteration budget already spent by the Newton phase.
func bisect(price func(float64) (float64, error), observedPrice float64, settings solverSettings, iterations *int) (float64, error) {
	lo, hi := bracketLow, bracketHigh

	priceLo, err := price(lo)
	if err != nil {
		return 0, &optionmodels.NumericalDivergenceError{Op: "ImpliedVolatility: bracket low", Cause: err}
	}

	priceHi, err := price(hi)
	if err != nil {
		return 0, &optionmodels.NumericalDivergenceError{Op: "ImpliedVolatility: bracket high", Cause: err}
	}

	if (priceLo-observedPrice)*(priceHi-observedPrice) > 0 {
		return 0, &optionmodels.MaxIterationsExceeded{Iterations: *iterations}
	}

	for ; *iterations < settings.maxIterations; *iterations++ {
		mid := (lo + hi) / 2

		priceMid, err := price(mid)
		if err != nil {
			return 0, &optionmodels.NumericalDivergenceError{Op: "ImpliedVolatility: bisection", Cause: err}
		}

		residual := priceMid - observedPrice
		if math.Abs(residual) < settings.tolerance {
			return mid, nil
		}

		if (priceLo-observedPrice)*residual < 0 {
			hi = mid
		} else {
			lo = mid
			priceLo = priceMid
		}
	}

	return 0, &optionmodels.MaxIterationsExceeded{Iterations: *iterations}
}

func arbitrageBounds(contract optionmodels.OptionContract, snapshot optionmodels.MarketSnapshot) (float64, float64) {
	forward := snapshot.Spot * math.Exp(-snapshot.DividendYield*contract.TimeToMaturity)
	strikeDiscounted := contract.Strike * math.Exp(-snapshot.RiskFreeRate*contract.TimeToMaturity)

	if contract.OptionType == optionmodels.Call {
		return math.Max(forward-strikeDiscounted, 0), forward
	}

	return math.Max(strikeDiscounted-forward, 0), strikeDiscounted
}
