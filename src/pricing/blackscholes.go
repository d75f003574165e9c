package pricing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/optionflow/options-engine/src/optionmodels"
)

var stdNormal = distuv.UnitNormal

// BlackScholesPrice computes the Black-Scholes-Merton price of a European
// option with continuous dividend yield.
//
// Edge policy: TimeToMaturity = 0 returns the intrinsic value regardless of
// sigma; sigma <= 0 with a positive maturity collapses to the discounted
// forward intrinsic value (the riskless case). Neither is a failure.
func BlackScholesPrice(contract optionmodels.OptionContract, snapshot optionmodels.MarketSnapshot, sigma float64) (float64, error) {
	if err := contract.Validate(); err != nil {
		return 0, fmt.Errorf("BlackScholesPrice: %w", err)
	}

	if err := snapshot.Validate(); err != nil {
		return 0, fmt.Errorf("BlackScholesPrice: %w", err)
	}

	spot := snapshot.Spot
	strike := contract.Strike
	maturity := contract.TimeToMaturity

	if maturity <= 0 {
		return contract.IntrinsicValue(spot), nil
	}

	forward := spot * math.Exp(-snapshot.DividendYield*maturity)
	strikeDiscounted := strike * math.Exp(-snapshot.RiskFreeRate*maturity)

	if sigma <= 0 {
		if contract.OptionType == optionmodels.Call {
			return math.Max(forward-strikeDiscounted, 0), nil
		}
		return math.Max(strikeDiscounted-forward, 0), nil
	}

	d1, d2 := dValues(spot, strike, snapshot.RiskFreeRate, snapshot.DividendYield, sigma, maturity)

	if contract.OptionType == optionmodels.Call {
		return forward*stdNormal.CDF(d1) - strikeDiscounted*stdNormal.CDF(d2), nil
	}

	return strikeDiscounted*stdNormal.CDF(-d2) - forward*stdNormal.CDF(-d1), nil
}

// BlackScholesGreeks computes the closed-form sensitivities. Theta is
// reported as decay per calendar day. Degenerate inputs (zero maturity or
// non-positive sigma) price at a kink of the payoff where the derivatives
// are undefined, and yield a zero bundle.
func BlackScholesGreeks(contract optionmodels.OptionContract, snapshot optionmodels.MarketSnapshot, sigma float64) (optionmodels.Greeks, error) {
	if err := contract.Validate(); err != nil {
		return optionmodels.Greeks{}, fmt.Errorf("BlackScholesGreeks: %w", err)
	}

	if err := snapshot.Validate(); err != nil {
		return optionmodels.Greeks{}, fmt.Errorf("BlackScholesGreeks: %w", err)
	}

	maturity := contract.TimeToMaturity
	if maturity <= 0 || sigma <= 0 {
		return optionmodels.Greeks{}, nil
	}

	spot := snapshot.Spot
	strike := contract.Strike
	rate := snapshot.RiskFreeRate
	yield := snapshot.DividendYield

	d1, d2 := dValues(spot, strike, rate, yield, sigma, maturity)

	sqrtT := math.Sqrt(maturity)
	yieldFactor := math.Exp(-yield * maturity)
	rateFactor := math.Exp(-rate * maturity)
	density := stdNormal.Prob(d1)

	gamma := yieldFactor * density / (spot * sigma * sqrtT)
	vega := spot * yieldFactor * density * sqrtT

	var delta, theta, rho float64
	thetaDecay := -(spot * yieldFactor * density * sigma) / (2 * sqrtT)

	if contract.OptionType == optionmodels.Call {
		delta = yieldFactor * stdNormal.CDF(d1)
		theta = thetaDecay - rate*strike*rateFactor*stdNormal.CDF(d2) + yield*spot*yieldFactor*stdNormal.CDF(d1)
		rho = strike * maturity * rateFactor * stdNormal.CDF(d2)
	} else {
		delta = -yieldFactor * stdNormal.CDF(-d1)
		theta = thetaDecay + rate*strike*rateFactor*stdNormal.CDF(-d2) - yield*spot*yieldFactor*stdNormal.CDF(-d1)
		rho = -strike * maturity * rateFactor * stdNormal.CDF(-d2)
	}

	return optionmodels.Greeks{
		Delta:       delta,
		Gamma:       gamma,
		ThetaPerDay: theta / 365.0,
		Vega:        vega,
		Rho:         rho,
	}, nil
}

// BlackScholesVega is the analytic dPrice/dSigma, used as the Newton
// derivative by the implied volatility solver. Zero at the degenerate
// edges where the price no longer depends on sigma.
func BlackScholesVega(contract optionmodels.OptionContract, snapshot optionmodels.MarketSnapshot, sigma float64) float64 {
	maturity := contract.TimeToMaturity
	if maturity <= 0 || sigma <= 0 || snapshot.Spot <= 0 {
		return 0
	}

	d1, _ := dValues(snapshot.Spot, contract.Strike, snapshot.RiskFreeRate, snapshot.DividendYield, sigma, maturity)

	return snapshot.Spot * math.Exp(-snapshot.DividendYield*maturity) * stdNormal.Prob(d1) * math.Sqrt(maturity)
}

func dValues(spot, strike, rate, yield, sigma, maturity float64) (float64, float64) {
	volSqrtT := sigma * math.Sqrt(maturity)
	d1 := (math.Log(spot/strike) + (rate-yield+0.5*sigma*sigma)*maturity) / volSqrtT
	return d1, d1 - volSqrtT
}
